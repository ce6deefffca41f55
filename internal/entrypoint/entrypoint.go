// Package entrypoint wires all components together and runs the server.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/athenareader/athena/internal/auth"
	"github.com/athenareader/athena/internal/cache"
	"github.com/athenareader/athena/internal/config"
	"github.com/athenareader/athena/internal/covers"
	"github.com/athenareader/athena/internal/database"
	"github.com/athenareader/athena/internal/fulltext"
	http_controllers "github.com/athenareader/athena/internal/http"
	"github.com/athenareader/athena/internal/library"
	"github.com/athenareader/athena/internal/metadata"
	"github.com/athenareader/athena/internal/scheduler"
	"github.com/athenareader/athena/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Athena v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Upstream clients
	metadataClient := metadata.NewClient(metadata.Options{
		BaseURL:      cfg.Resolver.MetadataBaseURL,
		Timeout:      cfg.Resolver.MetadataTimeout,
		RetryBackoff: cfg.Resolver.RetryBackoff,
	})

	fulltextClient := fulltext.NewClient(metadataClient, fulltext.Options{
		GutenbergBaseURL: cfg.Resolver.GutenbergBaseURL,
		GutendexBaseURL:  cfg.Resolver.GutendexBaseURL,
		ArchiveBaseURL:   cfg.Resolver.ArchiveBaseURL,
		Timeout:          cfg.Resolver.ContentTimeout,
	})

	contentResolver := fulltext.NewResolver(fulltextClient, metadataClient)

	coverCache, err := covers.NewCache(cfg.Covers.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize cover cache: %v", err)
	}

	// Resolution cache in front of both resolvers
	resolutionCache := cache.New(metadataClient, contentResolver, cache.Options{
		MetadataTTL:     cfg.Cache.MetadataTTL,
		NegativeTTL:     cfg.Cache.NegativeTTL,
		ContentCapacity: cfg.Cache.ContentCapacity,
	})

	// Periodic sweep of expired cache entries
	sweepScheduler := scheduler.NewCacheSweepScheduler(resolutionCache, cfg.Cache.SweepSchedule)
	if err := sweepScheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start cache sweep scheduler: %v", err)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.DefaultConfig()
		taskCfg.Workers = cfg.Tasks.Workers
		taskCfg.ReleaseAfter = cfg.Tasks.ReleaseAfter
		taskCfg.CleanupInterval = cfg.Tasks.CleanupInterval

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewPrefetchContentQueue(resolutionCache),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Authentication
	authService, err := auth.NewService(db, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}
	defer authService.Close()
	if cfg.Auth.TokenSecret == "" {
		log.Printf("Generated token secret (set AUTH_TOKEN_SECRET to persist sessions across restarts)")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:    db,
		AuthService: authService,
		Cache:       resolutionCache,
		Library:     library.NewAggregator(db, resolutionCache),
		Catalog:     fulltextClient,
		Covers:      coverCache,
		TaskClient:  taskClient,
		DemoMode:    cfg.Global.DemoMode,
		Version:     version,
	}

	if cfg.Global.DemoMode {
		log.Println("Demo mode enabled: write operations are disabled")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		sweepScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
