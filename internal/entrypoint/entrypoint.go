// Package entrypoint assembles the application: configuration,
// database, services, background workers and the HTTP server with
// graceful shutdown.
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

	"github.com/avolkau/bookvault/internal/access"
	"github.com/avolkau/bookvault/internal/auth"
	"github.com/avolkau/bookvault/internal/catalog"
	"github.com/avolkau/bookvault/internal/config"
	"github.com/avolkau/bookvault/internal/covers"
	"github.com/avolkau/bookvault/internal/database"
	"github.com/avolkau/bookvault/internal/database/books"
	http_controllers "github.com/avolkau/bookvault/internal/http"
	"github.com/avolkau/bookvault/internal/scheduler"
	"github.com/avolkau/bookvault/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then drains it
// within the configured shutdown timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown signal received, waiting up to %v", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before the listener so in-flight requests
	// can still enqueue work.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the application together and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookvault v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	authService := auth.NewService(db.DB, cfg.Auth)
	authMiddleware := auth.NewMiddleware(authService)
	accessService := access.NewService(db.DB)

	catalogClient := catalog.NewGoogleBooksClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	coverCache, err := covers.NewCache(cfg.Covers.CacheDir)
	if err != nil {
		log.Fatalf("Failed to initialize cover cache: %v", err)
	}
	log.Printf("Cover cache initialized at %s", cfg.Covers.CacheDir)

	booksRepo := books.NewRepository(db.DB)

	// Task queue for cover prefetching
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewFetchCoverQueue(booksRepo, coverCache))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Nightly cover cache cleanup
	cleanup := scheduler.NewCoversCleanupScheduler(coverCache, cfg.Covers.Retention, cfg.Covers.CleanupSchedule)
	if err := cleanup.Start(); err != nil {
		log.Fatalf("Failed to start cover cleanup scheduler: %v", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		AccessService:  accessService,
		CatalogClient:  catalogClient,
		CoverCache:     coverCache,
		TaskClient:     taskClient,
		Version:        version,
	})

	onShutdown := func(ctx context.Context) {
		cleanup.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
