//	@title			S3 Upload Gateway API
//	@version		1.0
//	@description	Validates uploads and stores them in S3-compatible object storage; browses, downloads and deletes stored objects.
//
//	@host		localhost:8000
//	@BasePath	/

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/s3loader/service/internal/config"
	"github.com/s3loader/service/internal/credentials"
	"github.com/s3loader/service/internal/logging"
	"github.com/s3loader/service/internal/metrics"
	appMiddleware "github.com/s3loader/service/internal/middleware"
	"github.com/s3loader/service/internal/objects"
	"github.com/s3loader/service/internal/response"
	"github.com/s3loader/service/internal/storage"
	"github.com/s3loader/service/internal/upload"

	_ "github.com/s3loader/service/docs/swagger"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.AppEnv)

	newBackend, err := storage.NewBackendFunc(storage.Settings{
		Driver:    cfg.StorageDriver,
		Endpoint:  cfg.StorageEndpoint,
		UseSSL:    cfg.StorageUseSSL,
		PathStyle: cfg.StoragePathStyle,
	})
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	registry := metrics.NewRegistry()
	observer, err := metrics.NewObserver(metrics.DefaultNamespace, registry)
	if err != nil {
		log.Fatalf("metrics init failed: %v", err)
	}

	retries := cfg.MaxRetries
	if retries == 0 {
		retries = -1 // UPLOAD_MAX_RETRIES=0 means a single attempt
	}
	stores := storage.NewFactory(newBackend, storage.Options{
		MaxRetries: retries,
		BaseDelay:  cfg.RetryBaseDelay,
		Observer:   observer,
	})

	// Wire dependencies: storage factory → service → handler
	uploadHandler := upload.NewHandler(upload.NewService(cfg, stores), cfg)
	objectsHandler := objects.NewHandler(objects.NewService(cfg, stores))

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     newRouter(cfg, uploadHandler, objectsHandler, metrics.Handler(registry)),
		ReadTimeout: 15 * time.Minute,
		// uploads of several GiB and their retries outlast a short write timeout
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithFields(log.Fields{
			"port":    cfg.Port,
			"env":     cfg.AppEnv,
			"driver":  cfg.StorageDriver,
			"region":  cfg.AWSRegion,
			"bucket":  cfg.S3BucketName,
			"max_mib": cfg.MaxFileSizeMB(),
		}).Info("server listening")
		log.Infof("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Info("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func newRouter(cfg *config.Config, uploadHandler *upload.Handler, objectsHandler *objects.Handler, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.RequestID)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Content-Type",
			credentials.AccessKeyHeader, credentials.SecretKeyHeader,
		},
		ExposedHeaders:   []string{appMiddleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(appMiddleware.Credentials)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"status": "healthy"})
	})

	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// Swagger UI at /swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Post("/upload", uploadHandler.Upload)
	r.Get("/config", uploadHandler.Config)

	r.Get("/buckets", objectsHandler.ListBuckets)
	r.Get("/buckets/{bucket}/objects", objectsHandler.ListObjects)
	r.Get("/download/{bucket}/*", objectsHandler.Download)
	r.Delete("/delete/{bucket}", objectsHandler.Delete)

	return r
}
