// Package main provides the main entry point for the Simurgh shipping rate platform
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/simurgh-post/simurgh/app/handlers"
	"github.com/simurgh-post/simurgh/app/middleware"
	"github.com/simurgh-post/simurgh/app/router"
	"github.com/simurgh-post/simurgh/app/services"
	businessflow "github.com/simurgh-post/simurgh/business_flow"
	"github.com/simurgh-post/simurgh/config"
	_ "github.com/simurgh-post/simurgh/docs"
	"github.com/simurgh-post/simurgh/models"
	"github.com/simurgh-post/simurgh/repository"
	"github.com/simurgh-post/simurgh/utils"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Simurgh application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger to a rotating file when configured
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	} else {
		log.SetOutput(rotator)
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// migrateDatabase creates or updates the schema, including the partial unique
// index that guards concurrent rate promotions.
func migrateDatabase(db *gorm.DB) error {
	// Enum types must exist before AutoMigrate touches columns typed on them
	enumStatements := []string{
		`DO $$ BEGIN CREATE TYPE rate_row_status AS ENUM ('pending', 'active', 'disabled'); EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		`DO $$ BEGIN CREATE TYPE rate_batch_status AS ENUM ('pending', 'approved', 'rejected'); EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
	}
	for _, stmt := range enumStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create enum type: %w", err)
		}
	}

	return db.AutoMigrate(
		&models.RateBatch{},
		&models.RateRow{},
		&models.ServiceSetting{},
		&models.Admin{},
		&models.AuditLog{},
	)
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if client == nil {
		return cancel
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// ensureBootstrapAdmin creates the initial operations account when no admin
// with the configured username exists yet.
func ensureBootstrapAdmin(db *gorm.DB, cfg config.AdminConfig, bcryptCost int) error {
	if cfg.BootstrapUsername == "" || cfg.BootstrapPassword == "" {
		return nil
	}

	adminRepo := repository.NewAdminRepository(db)
	existing, err := adminRepo.ByUsername(context.Background(), cfg.BootstrapUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapPassword), bcryptCost)
	if err != nil {
		return err
	}

	admin := models.Admin{
		UUID:         uuid.New(),
		Username:     cfg.BootstrapUsername,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	if err := adminRepo.Save(context.Background(), &admin); err != nil {
		return err
	}

	log.Printf("Bootstrap admin %q created", cfg.BootstrapUsername)
	return nil
}

// ensureDefaultServiceSettings seeds the customer-facing lane catalog on a
// fresh database. Runs only when the table is empty so admin edits survive
// restarts.
func ensureDefaultServiceSettings(db *gorm.DB) error {
	settingRepo := repository.NewServiceSettingRepository(db)

	count, err := settingRepo.Count(context.Background(), models.ServiceSettingFilter{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.ServiceSetting{
		{Carrier: "DHL", Service: "express", DisplayName: "DHL Express", IsActive: utils.ToPtr(true), SortOrder: 10},
		{Carrier: "DHL", Service: "economy", DisplayName: "DHL Economy", IsActive: utils.ToPtr(true), SortOrder: 20},
		{Carrier: "UPS", Service: "standard", DisplayName: "UPS Standard", IsActive: utils.ToPtr(true), SortOrder: 30},
		{Carrier: "FedEx", Service: "priority", DisplayName: "FedEx International Priority", IsActive: utils.ToPtr(true), SortOrder: 40},
	}
	for i := range defaults {
		defaults[i].UUID = uuid.New()
		defaults[i].CreatedAt = utils.UTCNow()
		defaults[i].UpdatedAt = utils.UTCNow()
		if err := settingRepo.Save(context.Background(), &defaults[i]); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d default service settings", len(defaults))
	return nil
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := migrateDatabase(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.DefaultTTL)
	stopFuncs = append(stopFuncs, cancel)

	if err := ensureBootstrapAdmin(db, cfg.Admin, cfg.Security.BcryptCost); err != nil {
		return nil, fmt.Errorf("failed to ensure bootstrap admin: %w", err)
	}

	if err := ensureDefaultServiceSettings(db); err != nil {
		return nil, fmt.Errorf("failed to seed service settings: %w", err)
	}

	// Initialize repositories
	batchRepo := repository.NewRateBatchRepository(db)
	rowRepo := repository.NewRateRowRepository(db)
	settingRepo := repository.NewServiceSettingRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Captcha service for admin login
	captchaSvc, err := services.NewCaptchaServiceRotate(cfg.Security.CaptchaTTL, cfg.Security.CaptchaPadding, cfg.Security.CaptchaImagePx)
	if err != nil {
		return nil, err
	}

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// External duty estimation provider
	var dutyService services.DutyEstimator
	if cfg.Duty.Enabled {
		dutyService = services.NewDutyEstimator(&cfg.Duty)
	}

	// A nil *redis.Client must not end up inside the interface value
	var cacheClient redis.UniversalClient
	if rc != nil {
		cacheClient = rc
	}

	// Initialize flows
	ingestionFlow := businessflow.NewIngestionFlow(batchRepo, rowRepo, auditRepo, db)
	approvalFlow := businessflow.NewApprovalFlow(batchRepo, rowRepo, auditRepo, db)
	quoteFlow := businessflow.NewQuoteFlow(rowRepo, settingRepo, dutyService, cacheClient, cfg.Quote)
	rateFlow := businessflow.NewRateFlow(rowRepo, auditRepo, db)
	settingFlow := businessflow.NewServiceSettingFlow(settingRepo, auditRepo, db)
	adminAuthFlow := businessflow.NewAdminAuthFlow(adminRepo, auditRepo, tokenService, captchaSvc)

	// Initialize handlers
	quoteHandler := handlers.NewQuoteHandler(quoteFlow, settingFlow)
	batchHandler := handlers.NewBatchAdminHandler(ingestionFlow, approvalFlow)
	rateHandler := handlers.NewRateAdminHandler(rateFlow)
	settingHandler := handlers.NewServiceSettingAdminHandler(settingFlow)
	authHandler := handlers.NewAdminAuthHandler(adminAuthFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		quoteHandler,
		batchHandler,
		rateHandler,
		settingHandler,
		authHandler,
		authMiddleware,
	)

	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
