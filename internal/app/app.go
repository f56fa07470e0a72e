package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/catalog"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/config"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/event"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/event/consumer"
	handler "github.com/romindigital/ikirezi-bookstore-sub002/internal/handler/http"
	redisrepo "github.com/romindigital/ikirezi-bookstore-sub002/internal/repository/redis"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/service"
	"github.com/romindigital/ikirezi-bookstore-sub002/pkg/database"
	"github.com/romindigital/ikirezi-bookstore-sub002/pkg/health"
	pkgkafka "github.com/romindigital/ikirezi-bookstore-sub002/pkg/kafka"
	"github.com/romindigital/ikirezi-bookstore-sub002/pkg/middleware"
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	consumers  []*pkgkafka.Consumer
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Redis backs the recent-search log and shopper preferences.
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	logger.Info("redis client initialized", slog.String("addr", cfg.Redis().Addr()))

	recentRepo := redisrepo.NewRecentSearchRepository(redisClient, cfg.RecentSearchTTL)
	prefsRepo := redisrepo.NewPreferenceRepository(redisClient)

	// The in-memory index is populated from the book event stream.
	index := catalog.NewIndex()

	// Analytics producer.
	var producer *pkgkafka.Producer
	var eventProducer *event.Producer
	if cfg.AnalyticsEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		eventProducer = event.NewProducer(producer, logger)
		logger.Info("analytics producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	catalogService := service.NewCatalogService(index, recentRepo, prefsRepo, eventProducer, logger, cfg.PopularSearches)

	// Kafka consumers for book events.
	eventConsumer := consumer.NewConsumer(catalogService, logger)

	topics := []string{
		consumer.TopicBookCreated,
		consumer.TopicBookUpdated,
		consumer.TopicBookDeleted,
	}

	var consumers []*pkgkafka.Consumer
	for _, topic := range topics {
		consumerCfg := pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  "catalog-service",
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6, // 10 MB
		}
		c := pkgkafka.NewConsumer(consumerCfg, eventConsumer.Handle, logger)
		consumers = append(consumers, c)
	}
	logger.Info("kafka consumers initialized",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.Int("topic_count", len(topics)),
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	// HTTP router.
	router := handler.NewRouter(catalogService, healthHandler, logger, middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Environment:    cfg.Environment,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		consumers:  consumers,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		c := c
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
