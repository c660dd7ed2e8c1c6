package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	catalogapp "github.com/threadcraft/backend/internal/application/catalog"
	crmapp "github.com/threadcraft/backend/internal/application/crm"
	designapp "github.com/threadcraft/backend/internal/application/design"
	identityapp "github.com/threadcraft/backend/internal/application/identity"
	orderapp "github.com/threadcraft/backend/internal/application/order"
	"github.com/threadcraft/backend/internal/infrastructure/auth"
	"github.com/threadcraft/backend/internal/infrastructure/config"
	"github.com/threadcraft/backend/internal/infrastructure/logger"
	"github.com/threadcraft/backend/internal/infrastructure/persistence"
	"github.com/threadcraft/backend/internal/infrastructure/storage"
	"github.com/threadcraft/backend/internal/interfaces/http/handler"
	"github.com/threadcraft/backend/internal/interfaces/http/router"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.App.Env != "production" {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to migrate database schema: %w", err)
		}
	}

	blacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	store, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiry),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}
	bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.EnsureBucket(bucketCtx); err != nil {
		cancelBucket()
		return fmt.Errorf("failed to ensure storage bucket: %w", err)
	}
	cancelBucket()

	jwtService := auth.NewJWTService(cfg.JWT)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	invitationRepo := persistence.NewGormInvitationRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	itemRepo := persistence.NewGormCatalogItemRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	imageRepo := persistence.NewGormImageRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)

	// Application services
	recorder := auditapp.NewRecorder(auditRepo, log)
	auditQuery := auditapp.NewQueryService(auditRepo)

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist,
		identityapp.AuthServiceConfig{
			MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
			LockDuration:     cfg.Auth.LockoutDuration,
		}, log)
	userService := identityapp.NewUserService(userRepo, recorder, log)
	invitationService := identityapp.NewInvitationService(invitationRepo, userRepo, recorder, cfg.Auth.InvitationTTL, log)
	customerService := crmapp.NewCustomerService(customerRepo, recorder, log)
	itemService := catalogapp.NewItemService(itemRepo, orderRepo, recorder, log)
	orderService := orderapp.NewService(orderRepo, customerRepo, itemRepo, userRepo,
		recorder, decimal.NewFromFloat(cfg.Order.TaxRate), log)
	imageService := designapp.NewImageService(imageRepo, orderRepo, store, recorder,
		designapp.VariantSizes{
			Thumbnail: cfg.Image.ThumbnailSize,
			Medium:    cfg.Image.MediumSize,
			Large:     cfg.Image.LargeSize,
		}, cfg.Image.MaxUploadSize, log)

	engine := router.New(router.Handlers{
		Auth:       handler.NewAuthHandler(authService, log),
		User:       handler.NewUserHandler(userService, log),
		Invitation: handler.NewInvitationHandler(invitationService, log),
		Customer:   handler.NewCustomerHandler(customerService, log),
		Catalog:    handler.NewCatalogHandler(itemService, log),
		Order:      handler.NewOrderHandler(orderService, userRepo, log),
		Image:      handler.NewImageHandler(imageService, userRepo, log),
		Audit:      handler.NewAuditHandler(auditQuery, log),
		System:     handler.NewSystemHandler(db.DB, version, log),
	}, router.Dependencies{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		HTTPConfig:     cfg.HTTP,
		Logger:         log,
	})

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return fmt.Errorf("failed to set trusted proxies: %w", err)
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("Server exited")
	return nil
}
