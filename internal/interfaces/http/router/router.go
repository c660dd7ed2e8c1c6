package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/infrastructure/auth"
	"github.com/threadcraft/backend/internal/infrastructure/config"
	"github.com/threadcraft/backend/internal/infrastructure/logger"
	"github.com/threadcraft/backend/internal/interfaces/http/handler"
	"github.com/threadcraft/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Invitation *handler.InvitationHandler
	Customer   *handler.CustomerHandler
	Catalog    *handler.CatalogHandler
	Order      *handler.OrderHandler
	Image      *handler.ImageHandler
	Audit      *handler.AuditHandler
	System     *handler.SystemHandler
}

// Dependencies carries what the router needs beyond the handlers
type Dependencies struct {
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist
	HTTPConfig     config.HTTPConfig
	Logger         *zap.Logger
}

// New builds the gin engine with the full middleware chain and all
// application routes mounted under /api/v1.
func New(h Handlers, deps Dependencies) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: deps.HTTPConfig.CORSAllowOrigins,
		AllowMethods: deps.HTTPConfig.CORSAllowMethods,
		AllowHeaders: deps.HTTPConfig.CORSAllowHeaders,
	}))
	engine.Use(middleware.BodyLimit(deps.HTTPConfig.MaxBodySize))

	if deps.HTTPConfig.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(
			deps.HTTPConfig.RateLimitRequests,
			deps.HTTPConfig.RateLimitWindow,
		)
		engine.Use(middleware.RateLimit(limiter))
	}

	jwtConfig := middleware.DefaultJWTConfig(deps.JWTService)
	jwtConfig.TokenBlacklist = deps.TokenBlacklist
	jwtConfig.Logger = deps.Logger
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	engine.GET("/health", h.System.Health)

	v1 := engine.Group("/api/v1")
	v1.GET("/health", h.System.Health)

	registerAuthRoutes(v1, h, deps)
	registerIdentityRoutes(v1, h)
	registerCRMRoutes(v1, h)
	registerCatalogRoutes(v1, h)
	registerOrderRoutes(v1, h)
	registerAuditRoutes(v1, h)

	return engine
}

func registerAuthRoutes(v1 *gin.RouterGroup, h Handlers, deps Dependencies) {
	group := v1.Group("/auth")

	// Login and refresh carry their own tighter rate limit since they
	// are the brute-force surface
	if deps.HTTPConfig.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(
			deps.HTTPConfig.AuthRateLimitRequests,
			deps.HTTPConfig.AuthRateLimitWindow,
		)
		group.POST("/login", middleware.RateLimit(limiter), h.Auth.Login)
		group.POST("/refresh", middleware.RateLimit(limiter), h.Auth.Refresh)
	} else {
		group.POST("/login", h.Auth.Login)
		group.POST("/refresh", h.Auth.Refresh)
	}

	group.POST("/logout", h.Auth.Logout)
	group.GET("/me", h.Auth.Me)
	group.PUT("/password", h.Auth.ChangePassword)
}

func registerIdentityRoutes(v1 *gin.RouterGroup, h Handlers) {
	identityGroup := v1.Group("/identity")

	// Public invitation routes: the token is the credential
	identityGroup.GET("/invitations/token/:token", h.Invitation.GetByToken)
	identityGroup.POST("/invitations/accept", h.Invitation.Accept)

	users := identityGroup.Group("/users", middleware.RequireAdmin())
	{
		users.POST("", h.User.Create)
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.PATCH("/:id", h.User.Update)
		users.PUT("/:id/role", h.User.ChangeRole)
		users.POST("/:id/activate", h.User.Activate)
		users.POST("/:id/deactivate", h.User.Deactivate)
		users.POST("/:id/unlock", h.User.Unlock)
		users.PUT("/:id/customer", h.User.LinkCustomer)
		users.DELETE("/:id", h.User.Delete)
	}

	invitations := identityGroup.Group("/invitations", middleware.RequireAdmin())
	{
		invitations.POST("", h.Invitation.Create)
		invitations.GET("", h.Invitation.List)
		invitations.GET("/:id", h.Invitation.Get)
		invitations.DELETE("/:id", h.Invitation.Revoke)
	}
}

func registerCRMRoutes(v1 *gin.RouterGroup, h Handlers) {
	customers := v1.Group("/crm/customers",
		middleware.RequireRole(identity.RoleSalesperson))
	{
		customers.POST("", h.Customer.Create)
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
		customers.PATCH("/:id", h.Customer.Update)
		customers.POST("/:id/archive", h.Customer.Archive)
		customers.POST("/:id/restore", h.Customer.Restore)
	}
}

func registerCatalogRoutes(v1 *gin.RouterGroup, h Handlers) {
	items := v1.Group("/catalog/items")

	// Reads are open to any authenticated role
	items.GET("", h.Catalog.List)
	items.GET("/:id", h.Catalog.Get)

	writes := items.Group("", middleware.RequireAdmin())
	{
		writes.POST("", h.Catalog.Create)
		writes.PATCH("/:id", h.Catalog.Update)
		writes.PUT("/:id/image", h.Catalog.SetImage)
		writes.POST("/:id/activate", h.Catalog.Activate)
		writes.POST("/:id/deactivate", h.Catalog.Deactivate)
		writes.POST("/:id/discontinue", h.Catalog.Discontinue)
		writes.DELETE("/:id", h.Catalog.Delete)
	}
}

func registerOrderRoutes(v1 *gin.RouterGroup, h Handlers) {
	orders := v1.Group("/orders")

	// The order service applies per-role scoping; routes only gate the
	// operations that are staff-only outright
	orders.POST("", middleware.RequireRole(identity.RoleSalesperson, identity.RoleCustomer), h.Order.Create)
	orders.GET("", h.Order.List)
	orders.GET("/stats/summary", middleware.RequireRole(identity.RoleSalesperson), h.Order.Stats)
	orders.GET("/:id", h.Order.Get)
	orders.PATCH("/:id", middleware.RequireRole(identity.RoleSalesperson, identity.RoleCustomer), h.Order.Update)
	orders.DELETE("/:id", middleware.RequireRole(identity.RoleSalesperson), h.Order.Delete)

	orders.POST("/:id/submit-design", middleware.RequireRole(identity.RoleSalesperson, identity.RoleCustomer), h.Order.SubmitDesign)
	orders.POST("/:id/start-design", middleware.RequireRole(identity.RoleDesigner), h.Order.StartDesign)
	orders.POST("/:id/approve-design", middleware.RequireRole(identity.RoleSalesperson, identity.RoleCustomer), h.Order.ApproveDesign)
	orders.POST("/:id/start-production", middleware.RequireRole(identity.RoleManufacturer), h.Order.StartProduction)
	orders.POST("/:id/complete", middleware.RequireRole(identity.RoleManufacturer), h.Order.Complete)
	orders.POST("/:id/cancel", middleware.RequireRole(identity.RoleSalesperson, identity.RoleCustomer), h.Order.Cancel)

	orders.PUT("/:id/assign/designer", middleware.RequireRole(identity.RoleSalesperson), h.Order.AssignDesigner)
	orders.PUT("/:id/assign/manufacturer", middleware.RequireRole(identity.RoleSalesperson), h.Order.AssignManufacturer)

	orders.POST("/:id/images", h.Image.Upload)
	orders.GET("/:id/images", h.Image.List)
	orders.DELETE("/:id/images/:imageId", h.Image.Delete)
}

func registerAuditRoutes(v1 *gin.RouterGroup, h Handlers) {
	logs := v1.Group("/audit/logs", middleware.RequireAdmin())
	{
		logs.GET("", h.Audit.List)
		logs.GET("/:id", h.Audit.Get)
	}
}
