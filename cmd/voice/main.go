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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vorexhq/fleet-assistant/internal/assistant"
	"github.com/vorexhq/fleet-assistant/internal/fleet"
	"github.com/vorexhq/fleet-assistant/internal/voice"
	"github.com/vorexhq/fleet-assistant/pkg/common"
	"github.com/vorexhq/fleet-assistant/pkg/config"
	"github.com/vorexhq/fleet-assistant/pkg/database"
	"github.com/vorexhq/fleet-assistant/pkg/errors"
	"github.com/vorexhq/fleet-assistant/pkg/logger"
	"github.com/vorexhq/fleet-assistant/pkg/middleware"
	"github.com/vorexhq/fleet-assistant/pkg/resilience"
	"go.uber.org/zap"
)

const (
	serviceName = "voice-service"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := logger.Init(cfg.Server.Environment, serviceName); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting voice service",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	if cfg.Sentry.Enabled {
		if err := errors.InitSentry(cfg.Sentry, serviceName, version); err != nil {
			logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
		} else {
			defer errors.Flush(2 * time.Second)
		}
	}

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	var remote assistant.RemoteClient
	if cfg.Gemini.APIKey != "" {
		client := assistant.NewGeminiClient(cfg.Gemini)
		if cfg.Breaker.Enabled {
			client.SetCircuitBreaker(resilience.NewCircuitBreaker(resilience.Settings{
				Name:             "gemini",
				Interval:         time.Duration(cfg.Breaker.IntervalSeconds) * time.Second,
				Timeout:          time.Duration(cfg.Breaker.TimeoutSeconds) * time.Second,
				FailureThreshold: uint32(cfg.Breaker.FailureThreshold),
				SuccessThreshold: uint32(cfg.Breaker.SuccessThreshold),
			}, nil))
		}
		remote = client
		logger.Info("Remote model configured", zap.String("model", cfg.Gemini.Model))
	} else {
		logger.Warn("GEMINI_API_KEY not set, running in mock mode")
	}

	fleetRepo := fleet.NewRepository(db)
	fleetService := fleet.NewService(fleetRepo)

	assistantService := assistant.NewService(fleetService, remote)
	assistantService.Sessions().StartJanitor(rootCtx, 5*time.Minute, 30*time.Minute)

	hub := voice.NewHub()
	go hub.Run()
	gateway := voice.NewGateway(assistantService, hub)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithSentry())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	router.GET("/health/live", common.LivenessProbe(serviceName, version))
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, map[string]func() error{
		"database": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(ctx)
		},
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/ws/voice/:driverID", gateway.HandleVoice)

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
