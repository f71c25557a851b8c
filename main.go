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

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ftllc/credit-enroll-pro-sub001/config"
	"github.com/ftllc/credit-enroll-pro-sub001/handler"
	"github.com/ftllc/credit-enroll-pro-sub001/middleware"
	"github.com/ftllc/credit-enroll-pro-sub001/pipeline"
	"github.com/ftllc/credit-enroll-pro-sub001/pkg/logger"
	"github.com/ftllc/credit-enroll-pro-sub001/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	ctx := context.Background()

	// Database pool
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Object store for templates, stored signatures, and archived artifacts
	objects, err := service.NewObjectStore(&cfg.Minio)
	if err != nil {
		slog.Error("failed to initialize object store", "error", err)
		os.Exit(1)
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		slog.Error("failed to ensure bucket", "error", err)
		os.Exit(1)
	}

	// Stores
	enrollments, err := service.NewEnrollmentStore(ctx, pool)
	if err != nil {
		slog.Error("failed to initialize enrollment store", "error", err)
		os.Exit(1)
	}
	templates, err := service.NewTemplateStore(ctx, pool, objects)
	if err != nil {
		slog.Error("failed to initialize template store", "error", err)
		os.Exit(1)
	}

	// Compositing worker pool
	worker := &pipeline.Worker{
		Templates: templates,
		Jobs:      enrollments,
		Filler:    service.NewPdftkFiller(cfg.FormFill.PdftkPath),
		Objects:   objects,
		Archive:   objects,
	}
	dispatcher := pipeline.NewDispatcher(
		worker,
		cfg.Worker.QueueSize,
		time.Duration(cfg.Worker.DispatchTimeoutMS)*time.Millisecond,
		time.Duration(cfg.Worker.JobTimeoutSec)*time.Second,
	)
	dispatcher.Start(cfg.Worker.Workers)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg, enrollments)
	packageHandler := handler.NewPackageHandler(enrollments, dispatcher)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Add custom middleware
	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(middleware.RateLimit(100, time.Minute)) // Rate limiting: 100 requests per minute

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/session", authHandler.CreateSession)
		// Internal server-to-server trigger; callers use a ~0.5s timeout
		// and never wait for the body.
		api.POST("/packages/trigger", packageHandler.Trigger)
	}

	// Session-owned routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentSession)
		protected.GET("/enrollments/:id/package/status", packageHandler.Status)
		protected.GET("/enrollments/:id/package/download", packageHandler.Download)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Drain in-flight compositing jobs before exit
	dispatcher.Stop()

	slog.Info("server exited gracefully")
}
