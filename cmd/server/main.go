package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tripcast/api/internal/config"
	"github.com/tripcast/api/internal/dataset"
	"github.com/tripcast/api/internal/eventbus"
	"github.com/tripcast/api/internal/handlers"
	"github.com/tripcast/api/internal/llm"
	"github.com/tripcast/api/internal/metrics"
	"github.com/tripcast/api/internal/middleware"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	// Initialize logger with stdout sync
	zapConfig := zap.NewProductionConfig()
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapConfig.Level = level
	}
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("tripcast API starting...",
		zap.String("version", "0.1.0"),
		zap.String("environment", cfg.Environment),
	)

	// Notification hub; every generation narrates its progress into it
	hub := eventbus.NewHub(logger)
	defer hub.Close()

	// Optional NATS mirror so other processes can follow the notifications
	var mirror *eventbus.Mirror
	if cfg.NATSURL != "" {
		mirror, err = eventbus.ConnectMirror(cfg.NATSURL, logger)
		if err != nil {
			logger.Error("failed to connect to NATS, notifications stay local", zap.Error(err))
			mirror = nil
		} else {
			defer mirror.Close()
			stop := mirror.Run(hub)
			defer stop()
			logger.Info("connected to NATS", zap.String("url", cfg.NATSURL))
		}
	}

	logger.Info("Loading activity dataset...")
	store, err := dataset.Open(cfg.DatasetPath, logger)
	if err != nil {
		logger.Fatal("failed to load dataset", zap.Error(err))
	}
	if err := store.Watch(ctx); err != nil {
		logger.Error("dataset watch unavailable, edits need a restart", zap.Error(err))
	}

	generator := llm.NewClient(cfg.GeneratorBaseURL, cfg.GeneratorAPIKey, cfg.GeneratorModel,
		llm.WithHTTPClient(&http.Client{Timeout: cfg.GeneratorTimeout}),
		llm.WithLogger(logger),
	)
	if !generator.Configured() {
		logger.Warn("GENERATOR_API_KEY is not set, plan requests will be rejected")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	breaker := middleware.NewCircuitBreaker()
	breaker.OnStateChange = func(from, to middleware.CircuitState) {
		logger.Warn("generator circuit state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	planCache := gocache.New(cfg.CacheTTL, cfg.CacheTTL)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		middleware.InternalError(c, "internal server error")
	}))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID())

	router.NoRoute(func(c *gin.Context) {
		middleware.NotFound(c, "route not found")
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check handlers
	healthHandler := handlers.NewHealthHandler(generator, store, mirror, hub, breaker)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/deep", healthHandler.DeepHealth)

	logger.Info("Router initialized, setting up handlers...")

	planHandler := handlers.NewPlanHandler(generator, hub, breaker, planCache, m, logger)
	activitiesHandler := handlers.NewActivitiesHandler(store)
	exportHandler := handlers.NewExportHandler()
	debugHandler := handlers.NewDebugHandler(hub, m, logger)

	// API v1 routes with default rate limiting
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimitMiddleware(middleware.NewDefaultRateLimiter())) // 100 req/min
	{
		v1.GET("/activities", activitiesHandler.List)
		v1.GET("/debug/ws", debugHandler.Stream)
		v1.POST("/plan/export", exportHandler.Export)

		// Plan generation - stricter rate limit + circuit breaker
		plan := v1.Group("/plan")
		plan.Use(middleware.RateLimitMiddleware(middleware.NewStrictRateLimiter())) // 20 req/min
		plan.Use(middleware.CircuitBreakerMiddleware(breaker))
		{
			plan.POST("", planHandler.GeneratePlan)
		}
	}

	// Create HTTP server. WriteTimeout stays off: plan responses stream
	// for the whole generation, the generator timeout bounds them.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}
