package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_sync/internal/cache"
	"github.com/GTDGit/catalog_sync/internal/clock"
	"github.com/GTDGit/catalog_sync/internal/config"
	"github.com/GTDGit/catalog_sync/internal/database"
	"github.com/GTDGit/catalog_sync/internal/handler"
	"github.com/GTDGit/catalog_sync/internal/metrics"
	"github.com/GTDGit/catalog_sync/internal/middleware"
	"github.com/GTDGit/catalog_sync/internal/repository"
	"github.com/GTDGit/catalog_sync/internal/service"
	"github.com/GTDGit/catalog_sync/internal/sse"
	"github.com/GTDGit/catalog_sync/internal/worker"
	"github.com/GTDGit/catalog_sync/pkg/shopify"
)

// main is the application entrypoint for the catalog sync API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting catalog sync api")

	if err := cfg.Shopify.Validate(); err != nil {
		log.Error().Err(err).Msg("shopify configuration invalid")
		fmt.Fprintf(os.Stderr, "shopify configuration invalid: %v\n", err)
		os.Exit(1)
	}

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.RunMigrations(db.DB, cfg.DB.MigrationsPath); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis when configured
	var (
		redisClient *cache.RedisClient
		syncLock    service.SyncLock
		detailCache service.ProductDetailCache
		invalidator handler.DetailInvalidator
		redisPinger handler.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")

		productCache := cache.NewProductCache(redisClient, cfg.Cache.ProductDetailTTL)
		syncLock = cache.NewSyncLock(redisClient, cfg.Sync.LockTTL)
		detailCache = productCache
		invalidator = productCache
		redisPinger = redisClient
	} else {
		log.Warn().Msg("REDIS_HOST not set: detail cache disabled, sync lock is process-local")
	}

	// 4. Initialize Shopify client
	shopClient := shopify.NewClient(shopify.Config{
		ShopURL:     cfg.Shopify.ShopURL,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
		Timeout:     cfg.Shopify.Timeout,
	})

	// 5. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	jobRepo := repository.NewSyncJobRepository(db)

	// 6. Initialize services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := sse.NewHub()
	syncSvc := service.NewSyncService(service.SyncDeps{
		Credentials:  cfg.Shopify,
		Catalog:      service.NewShopifyCatalog(shopClient),
		Fetcher:      service.NewFetcher(cfg.Sync.PageSize, cfg.Sync.MaxPages),
		Upserter:     service.NewUpserter(service.NewProductStore(productRepo), clock.New(), cfg.Sync.StampMode),
		Jobs:         jobRepo,
		Notifier:     sse.NewHubNotifier(hub),
		FetchTimeout: cfg.Sync.FetchTimeout,
	})
	syncTrigger := service.NewSyncTrigger(ctx, syncSvc, syncLock)
	productSvc := service.NewProductService(productRepo, shopClient, detailCache)
	adminAuthSvc := service.NewAdminAuthService(cfg.Admin)

	// 6a. Fail jobs a previous process left behind
	if err := syncTrigger.RecoverInterrupted(ctx, jobRepo); err != nil {
		log.Warn().Err(err).Msg("skipped interrupted job recovery")
	}

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(db, redisPinger, productRepo, syncTrigger.Running),
		Sync:    handler.NewSyncHandler(syncTrigger, jobRepo),
		Product: handler.NewProductHandler(productSvc),
		Webhook: handler.NewWebhookHandler(syncTrigger, invalidator, cfg.Shopify.APISecret),
		Auth:    handler.NewAuthHandler(adminAuthSvc),
		SSE:     handler.NewSSEHandler(hub, cfg.Admin.JWTSecret),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware(cfg.Admin.JWTSecret)
	loginLimiter := middleware.NewLoginRateLimiter()
	go loginLimiter.Cleanup(ctx.Done())
	if cfg.Admin.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set: sync and admin routes are unauthenticated")
	}

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	setupRoutes(router, handlers, jwtMw, loginLimiter)

	// 10. Start workers
	if cfg.Sync.Interval > 0 {
		go worker.NewSyncWorker(syncTrigger, cfg.Sync.Interval).Start(ctx)
	} else {
		log.Info().Msg("SYNC_INTERVAL is 0: periodic sync disabled")
	}

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers and running syncs
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	syncTrigger.Wait()
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Sync    *handler.SyncHandler
	Product *handler.ProductHandler
	Webhook *handler.WebhookHandler
	Auth    *handler.AuthHandler
	SSE     *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.LoginRateLimiter) {
	// Shopify webhooks (HMAC verified)
	router.POST("/webhook/shopify/products", handlers.Webhook.HandleProductsWebhook)

	router.GET("/v1/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Synced catalog
	products := router.Group("/v1/products")
	{
		products.GET("", handlers.Product.GetProducts)
		products.GET("/:id", handlers.Product.GetProduct)
		products.GET("/:id/detail", handlers.Product.GetProductDetail)
	}

	// Sync trigger and job status
	sync := router.Group("/v1/sync")
	sync.Use(jwtMiddleware.Handle())
	{
		sync.POST("", handlers.Sync.TriggerSync)
		sync.GET("/jobs", handlers.Sync.ListJobs)
		sync.GET("/jobs/:id", handlers.Sync.GetJob)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", loginLimiter.Handle(), handlers.Auth.Login)
	// EventSource cannot send headers; the SSE handler checks ?token itself.
	admin.GET("/sync/events", handlers.SSE.Stream)
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
