package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SystemHandler handles operational endpoints
type SystemHandler struct {
	BaseHandler
	db      *gorm.DB
	version string
	started time.Time
}

// NewSystemHandler creates a system handler
func NewSystemHandler(db *gorm.DB, version string, log *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(log),
		db:          db,
		version:     version,
		started:     time.Now(),
	}
}

// Health handles GET /health. It reports degraded with a 503 when the
// database is unreachable.
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	dbStatus := "ok"
	httpStatus := http.StatusOK

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			status = "degraded"
			dbStatus = "unreachable"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":   status,
		"database": dbStatus,
		"version":  h.version,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}
