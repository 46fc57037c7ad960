package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/careflowhq/frontdesk/internal/feed"
	feedredis "github.com/careflowhq/frontdesk/internal/feed/redis"
	"github.com/careflowhq/frontdesk/internal/repository/postgres"
	queuestatsService "github.com/careflowhq/frontdesk/internal/service/queuestats"
	registryService "github.com/careflowhq/frontdesk/internal/service/registry"
	"github.com/careflowhq/frontdesk/internal/worker"
	"github.com/careflowhq/frontdesk/pkg/logger"
	messagingredis "github.com/careflowhq/frontdesk/pkg/messaging/redis"
	"github.com/careflowhq/frontdesk/pkg/metrics"

	dbconfig "github.com/careflowhq/frontdesk/internal/config"
)

// workerConfig is read from the environment; the poller runs headless
// alongside the API and only needs connection settings.
type workerConfig struct {
	DatabaseHost     string `envconfig:"DB_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DB_PORT" default:"5432"`
	DatabaseUser     string `envconfig:"DB_USER" default:"frontdesk"`
	DatabasePassword string `envconfig:"DB_PASSWORD" required:"true"`
	DatabaseName     string `envconfig:"DB_NAME" default:"frontdesk"`
	DatabaseSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379"`

	PollIntervalSeconds int `envconfig:"POLL_INTERVAL_SECONDS" default:"15"`
}

func main() {
	var cfg workerConfig
	if err := envconfig.Process("frontdesk", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(dbconfig.DatabaseConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Name:     cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	registry, err := registryService.NewServiceFromRepository(
		context.Background(), postgres.NewRegistryRepository(db))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load registry")
	}

	upstream, err := feedredis.NewFeed(feedredis.Config{URL: cfg.RedisURL})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to queue feed")
	}
	cachedFeed := feed.NewCachedFeed(upstream, feed.HistoryConfig{})

	zl := log.Logger
	broker, err := messagingredis.NewRedisBroker(messagingredis.Config{URL: cfg.RedisURL}, &zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to message broker")
	}
	defer broker.Close()

	statsSvc := queuestatsService.NewService(
		registry, cachedFeed, metrics.NewMetrics("frontdesk", "worker"))

	poller := worker.NewPoller(statsSvc, registry, broker, worker.PollerConfig{
		PollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
	}, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")
	cancel()
}
