package persistence

import "strings"

// Sort columns are whitelisted per table; anything else falls back to
// created_at so request input never reaches the ORDER BY clause raw.
var sortableColumns = map[string]map[string]bool{
	"users": {
		"username":   true,
		"email":      true,
		"role":       true,
		"status":     true,
		"created_at": true,
		"updated_at": true,
	},
	"invitations": {
		"email":      true,
		"role":       true,
		"status":     true,
		"expires_at": true,
		"created_at": true,
	},
	"customers": {
		"name":       true,
		"company":    true,
		"email":      true,
		"status":     true,
		"created_at": true,
		"updated_at": true,
	},
	"catalog_items": {
		"sku":        true,
		"name":       true,
		"category":   true,
		"base_price": true,
		"status":     true,
		"created_at": true,
		"updated_at": true,
	},
	"orders": {
		"order_number":  true,
		"customer_name": true,
		"status":        true,
		"total":         true,
		"created_at":    true,
		"updated_at":    true,
	},
}

// sortClause builds a safe ORDER BY clause for the given table
func sortClause(table, sortBy, sortOrder string) string {
	column := "created_at"
	if cols, ok := sortableColumns[table]; ok && cols[strings.ToLower(sortBy)] {
		column = strings.ToLower(sortBy)
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}

	return column + " " + direction
}

// paginate converts page/pageSize into offset/limit, guarding against
// zero and runaway page sizes
func paginate(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return (page - 1) * pageSize, pageSize
}
