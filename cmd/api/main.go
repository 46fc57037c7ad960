package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/careflowhq/frontdesk/internal/config"
	"github.com/careflowhq/frontdesk/internal/feed"
	feedredis "github.com/careflowhq/frontdesk/internal/feed/redis"
	appointmentHandler "github.com/careflowhq/frontdesk/internal/handler/appointment"
	departmentHandler "github.com/careflowhq/frontdesk/internal/handler/department"
	healthHandler "github.com/careflowhq/frontdesk/internal/handler/health"
	patientHandler "github.com/careflowhq/frontdesk/internal/handler/patient"
	queueHandler "github.com/careflowhq/frontdesk/internal/handler/queue"
	"github.com/careflowhq/frontdesk/internal/middleware"
	"github.com/careflowhq/frontdesk/internal/repository/postgres"
	"github.com/careflowhq/frontdesk/internal/router"
	bookingService "github.com/careflowhq/frontdesk/internal/service/booking"
	"github.com/careflowhq/frontdesk/internal/service/notification"
	queuestatsService "github.com/careflowhq/frontdesk/internal/service/queuestats"
	registryService "github.com/careflowhq/frontdesk/internal/service/registry"
	visitService "github.com/careflowhq/frontdesk/internal/service/visit"
	"github.com/careflowhq/frontdesk/pkg/clock"
	"github.com/careflowhq/frontdesk/pkg/logger"
	messagingredis "github.com/careflowhq/frontdesk/pkg/messaging/redis"
	"github.com/careflowhq/frontdesk/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	registryRepo := postgres.NewRegistryRepository(db)
	visitRepo := postgres.NewVisitRepository(db)
	bookingStore := postgres.NewBookingStore(db)

	// Load the department/practitioner registry
	registry, err := registryService.NewServiceFromRepository(context.Background(), registryRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load registry")
	}

	// Initialize the queue feed
	upstream, err := feedredis.NewFeed(feedredis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to queue feed")
	}
	cachedFeed := feed.NewCachedFeed(upstream, feed.HistoryConfig{
		SnapshotTTL: time.Duration(cfg.Feed.SnapshotTTLSeconds) * time.Second,
		HistoryTTL:  time.Duration(cfg.Feed.HistoryTTLMinutes) * time.Minute,
		Depth:       cfg.Feed.HistoryDepth,
	})

	// Initialize message broker for booking/queue events
	zl := log.Logger
	broker, err := messagingredis.NewRedisBroker(messagingredis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to message broker")
	}
	defer broker.Close()

	appMetrics := metrics.NewMetrics("frontdesk", "api")

	var notifier notification.Notifier = notification.NoopNotifier{}
	if cfg.SMTP.Host != "" {
		notifier = notification.NewEmailNotifier(cfg.SMTP)
	}

	// Initialize services
	statsSvc := queuestatsService.NewService(registry, cachedFeed, appMetrics)
	visitSvc := visitService.NewService(visitRepo, registry, appLogger, appMetrics)
	bookingSvc := bookingService.NewService(
		bookingStore, registry, clock.New(), notifier, broker, appLogger, appMetrics)

	// Initialize handlers
	r := router.NewRouter(
		departmentHandler.NewHandler(registry),
		queueHandler.NewHandler(statsSvc),
		patientHandler.NewHandler(visitSvc),
		appointmentHandler.NewHandler(bookingSvc),
		healthHandler.NewHandler(db),
		router.Config{
			RateLimit:      rate.Limit(100),
			RateBurst:      200,
			WriteRateLimit: rate.Limit(10),
			WriteRateBurst: 20,
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "frontdesk",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
}
