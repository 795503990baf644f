package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	flashcardservice "cardsync/contexts/study/flashcard-service"
	"cardsync/contexts/study/flashcard-service/adapters/events"
	flashcardmemory "cardsync/contexts/study/flashcard-service/adapters/memory"
	flashcardpostgres "cardsync/contexts/study/flashcard-service/adapters/postgres"
	"cardsync/contexts/study/flashcard-service/ports"
	"cardsync/internal/platform/config"
	"cardsync/internal/platform/db"
	"cardsync/internal/platform/httpserver"
	"cardsync/internal/platform/loopback"
	"cardsync/internal/platform/messaging"
	"cardsync/internal/platform/telemetry"
	"cardsync/internal/shared/replication"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const busBufferSize = 64

type FlashcardApp struct {
	server        *httpserver.Server
	replicator    *events.Replicator
	janitor       *loopback.MemoryCache
	sweepInterval time.Duration
	closers       closers
	logger        *slog.Logger
}

func BuildFlashcardService(ctx context.Context) (*FlashcardApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return buildFlashcardService(ctx, cfg, NewLogger(cfg, nil))
}

func buildFlashcardService(ctx context.Context, cfg config.Config, base *slog.Logger) (_ *FlashcardApp, err error) {
	logger := base.With("service", cfg.ServiceName, "instance_id", cfg.InstanceID, "process", "flashcard-service")
	app := &FlashcardApp{logger: logger, sweepInterval: cfg.LoopbackSweepInterval}
	defer func() {
		if err != nil {
			_ = app.closers.closeAll(logger)
		}
	}()

	flashcards, err := buildFlashcardRepository(ctx, cfg, logger, &app.closers)
	if err != nil {
		return nil, err
	}

	transport, err := buildTransport(cfg, logger, &app.closers)
	if err != nil {
		return nil, err
	}

	replicationMetrics, err := telemetry.NewReplication(nil)
	if err != nil {
		return nil, err
	}
	cache, janitor, err := buildLoopbackCache(ctx, cfg, logger, &app.closers)
	if err != nil {
		return nil, err
	}
	app.janitor = janitor

	app.replicator = events.NewReplicator(events.Config{
		Publisher:      transport,
		Subscriber:     transport,
		Cache:          cache,
		Flashcards:     flashcards,
		Topic:          cfg.FlashcardTopic,
		InstanceID:     cfg.InstanceID,
		PublishTimeout: cfg.PublishTimeout,
		Metrics:        replicationMetrics,
		Logger:         logger,
	})

	module := flashcardservice.NewModule(flashcardservice.Dependencies{
		Flashcards: flashcards,
		Changes:    app.replicator,
		Instance: ports.InstanceInfo{
			ServiceName: cfg.ServiceName,
			InstanceID:  cfg.InstanceID,
			Port:        cfg.HTTPPort,
		},
		Logger: logger,
	})
	app.server = httpserver.NewFlashcardServer(module, logger, normalizeAddr(cfg.HTTPPort))
	return app, nil
}

func buildFlashcardRepository(ctx context.Context, cfg config.Config, logger *slog.Logger, c *closers) (ports.FlashcardRepository, error) {
	if cfg.PostgresDSN == "" {
		logger.Info("using in-memory flashcard store",
			"event", "bootstrap_store_memory",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		return flashcardmemory.NewStore(nil), nil
	}

	pg, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	c.add("postgres", pg.Close)

	repo := flashcardpostgres.NewRepository(pg.DB, logger)
	if err := repo.Migrate(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

type changeTransport interface {
	replication.EventPublisher
	replication.EventSubscriber
}

func buildTransport(cfg config.Config, logger *slog.Logger, c *closers) (changeTransport, error) {
	switch cfg.Transport {
	case config.TransportRabbitMQ:
		rabbit, err := messaging.DialRabbitMQ(cfg.RabbitMQURL, messaging.RabbitMQConfig{
			Exchange:    cfg.RabbitMQExchange,
			QueueExpiry: cfg.RabbitMQQueueExpiry,
			// a malformed event never becomes valid; drop it instead of looping
			Requeue: func(err error) bool {
				return !errors.Is(err, replication.ErrMalformedEvent)
			},
		}, logger)
		if err != nil {
			return nil, err
		}
		c.add("rabbitmq", rabbit.Close)
		return rabbit, nil
	case config.TransportMemory:
		return messaging.NewBus(busBufferSize, logger), nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
}

// buildLoopbackCache returns the cache and, for the in-memory backend, the
// cache again so its sweeper can be run.
func buildLoopbackCache(
	ctx context.Context,
	cfg config.Config,
	logger *slog.Logger,
	c *closers,
) (replication.LoopbackCache, *loopback.MemoryCache, error) {
	switch cfg.LoopbackBackend {
	case config.LoopbackRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		c.add("redis", client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		cache, err := loopback.NewRedisCache(client, cfg.InstanceID, cfg.LoopbackTTL)
		if err != nil {
			return nil, nil, err
		}
		return cache, nil, nil
	case config.LoopbackMemory:
		metrics, err := telemetry.NewLoopback(nil)
		if err != nil {
			return nil, nil, err
		}
		cache := loopback.NewMemoryCache(
			loopback.WithTTL(cfg.LoopbackTTL),
			loopback.WithMetrics(metrics),
			loopback.WithLogger(logger),
		)
		return cache, cache, nil
	default:
		return nil, nil, fmt.Errorf("unsupported loopback backend %q", cfg.LoopbackBackend)
	}
}

// Run serves HTTP, consumes replicated changes and sweeps the loopback cache
// until ctx is done or one of them fails.
func (a *FlashcardApp) Run(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)

	if err := a.replicator.Start(gctx); err != nil {
		return err
	}
	if a.janitor != nil {
		group.Go(func() error {
			return a.janitor.Run(gctx, a.sweepInterval)
		})
	}
	serve(gctx, group, a.server)

	a.logger.Info("flashcard service started",
		"event", "bootstrap_flashcard_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"addr", a.server.Addr(),
	)
	return group.Wait()
}

func (a *FlashcardApp) Close() error {
	return a.closers.closeAll(a.logger)
}
