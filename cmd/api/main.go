//	@title			MemeWall API
//	@version		1.0
//	@description	Storage gateway behind the MemeWall meme gallery.
//
//	@host		localhost:8080
//	@BasePath	/api/v1

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/memewall/service/internal/config"
	"github.com/memewall/service/internal/db"
	"github.com/memewall/service/internal/gateway"
	"github.com/memewall/service/internal/journal"
	"github.com/memewall/service/internal/logging"
	appMiddleware "github.com/memewall/service/internal/middleware"
	"github.com/memewall/service/internal/page"
	"github.com/memewall/service/internal/storage"
	"github.com/memewall/service/internal/ws"

	_ "github.com/memewall/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.IsProduction())
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("object storage init failed: %w", err)
	}
	defer closeStore()

	// Wire dependencies: storage → gateway → handlers
	var (
		opts    []gateway.Option
		history gateway.History
	)
	if cfg.JournalEnabled() {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}

		repo := journal.NewRepository(pool)
		opts = append(opts, gateway.WithRecorder(repo))
		history = repo
	} else {
		logger.Info("DATABASE_URL not set, upload journal disabled")
	}

	gw := gateway.New(store, logger, opts...)

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	registry := page.NewRegistry(page.Deps{
		Gateway:  gw,
		Notifier: hub,
		Logger:   logger,
	}, cfg.SessionIdleTimeout, cfg.MaxSessions)
	go registry.Run(ctx, time.Minute)

	mediaHandler := gateway.NewHandler(gw, history, hub, cfg.MaxUploadBytes, logger)
	pageHandler := page.NewHandler(registry, hub, cfg.MaxUploadBytes, cfg.IsProduction(), logger)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI at /swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
		r.Get("/media", mediaHandler.ListMedia)
		r.Post("/media", mediaHandler.UploadMedia)
		r.Get("/uploads", mediaHandler.ListUploads)
	})

	if disk, ok := store.(*storage.DiskStorage); ok {
		r.Handle(config.DiskPublicPath+"/*", http.StripPrefix(config.DiskPublicPath+"/", http.FileServer(http.Dir(disk.Dir()))))
	}

	// Page
	pageHandler.Routes(r)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		// Batch uploads hold the response until every file settles.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.AppEnv, "storage", cfg.StorageDriver)
		logger.Info("swagger UI available", "url", "http://localhost:"+cfg.Port+"/swagger/")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// openStorage builds the backend selected by STORAGE_DRIVER. The returned
// func releases it.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverMinio:
		s, err := storage.NewMinioStorage(ctx, storage.MinioOptions{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.StoragePublicBase,
			UseSSL:     cfg.StorageUseSSL,
		})
		return s, func() {}, err
	case config.DriverGCS:
		s, err := storage.NewGCSStorage(ctx, cfg.StorageBucket, cfg.StoragePublicBase)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.DriverDisk:
		s, err := storage.NewDiskStorage(cfg.StorageDir, cfg.StoragePublicBase)
		return s, func() {}, err
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
