package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_sync/internal/cache"
	"github.com/GTDGit/catalog_sync/internal/clock"
	"github.com/GTDGit/catalog_sync/internal/config"
	"github.com/GTDGit/catalog_sync/internal/database"
	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/repository"
	"github.com/GTDGit/catalog_sync/internal/service"
	"github.com/GTDGit/catalog_sync/internal/utils"
	"github.com/GTDGit/catalog_sync/pkg/shopify"
)

// main runs one catalog sync and exits non-zero if it failed.
func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	setupLogger(cfg.Env)

	// Credentials are checked before any network or database I/O.
	if err := cfg.Shopify.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(&cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		return 1
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB, cfg.DB.MigrationsPath); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		return 1
	}

	var syncLock service.SyncLock
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			return 1
		}
		defer redisClient.Close()
		syncLock = cache.NewSyncLock(redisClient, cfg.Sync.LockTTL)
	}

	shopClient := shopify.NewClient(shopify.Config{
		ShopURL:     cfg.Shopify.ShopURL,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
		Timeout:     cfg.Shopify.Timeout,
	})

	productRepo := repository.NewProductRepository(db)
	syncSvc := service.NewSyncService(service.SyncDeps{
		Credentials:  cfg.Shopify,
		Catalog:      service.NewShopifyCatalog(shopClient),
		Fetcher:      service.NewFetcher(cfg.Sync.PageSize, cfg.Sync.MaxPages),
		Upserter:     service.NewUpserter(service.NewProductStore(productRepo), clock.New(), cfg.Sync.StampMode),
		Jobs:         repository.NewSyncJobRepository(db),
		FetchTimeout: cfg.Sync.FetchTimeout,
	})
	trigger := service.NewSyncTrigger(ctx, syncSvc, syncLock)

	job, err := trigger.RunNow(ctx, models.SyncTriggerCLI)
	if err != nil {
		if errors.Is(err, utils.ErrSyncInProgress) {
			fmt.Fprintln(os.Stderr, "sync failed: another sync is already running")
			return 1
		}
		fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
		return 1
	}

	fmt.Printf("synced %d products (succeeded=%d failed=%d)\n",
		job.RecordsFetched, job.SuccessCount, job.FailureCount)
	return 0
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	// stdout carries the summary line, so logs go to stderr
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
