package bootstrap

import (
	"context"
	"log/slog"

	quizservice "cardsync/contexts/study/quiz-service"
	"cardsync/contexts/study/quiz-service/adapters/flashcardclient"
	quizmemory "cardsync/contexts/study/quiz-service/adapters/memory"
	quizpostgres "cardsync/contexts/study/quiz-service/adapters/postgres"
	"cardsync/contexts/study/quiz-service/ports"
	"cardsync/internal/platform/circuitbreaker"
	"cardsync/internal/platform/config"
	"cardsync/internal/platform/db"
	"cardsync/internal/platform/httpserver"
	"cardsync/internal/platform/telemetry"

	"golang.org/x/sync/errgroup"
)

type QuizApp struct {
	server  *httpserver.Server
	guarded *flashcardclient.Guarded
	closers closers
	logger  *slog.Logger
}

func BuildQuizService(ctx context.Context) (*QuizApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return buildQuizService(ctx, cfg, NewLogger(cfg, nil))
}

func buildQuizService(ctx context.Context, cfg config.Config, base *slog.Logger) (_ *QuizApp, err error) {
	logger := base.With("service", cfg.ServiceName, "instance_id", cfg.InstanceID, "process", "quiz-service")
	app := &QuizApp{logger: logger}
	defer func() {
		if err != nil {
			_ = app.closers.closeAll(logger)
		}
	}()

	quizzes, err := buildQuizRepository(ctx, cfg, logger, &app.closers)
	if err != nil {
		return nil, err
	}

	breakerMetrics, err := telemetry.NewBreaker(nil)
	if err != nil {
		return nil, err
	}
	app.guarded, err = flashcardclient.NewGuarded(
		flashcardclient.NewClient(cfg.FlashcardServiceURL, nil),
		flashcardclient.GuardedConfig{
			Breaker: circuitbreaker.Config{
				FailureThreshold: cfg.BreakerFailureThreshold,
				Window:           cfg.BreakerWindow,
				Cooldown:         cfg.BreakerCooldown,
				CallTimeout:      cfg.BreakerCallTimeout,
			},
			Metrics: breakerMetrics,
			Logger:  logger,
		},
	)
	if err != nil {
		return nil, err
	}

	module := quizservice.NewModule(quizservice.Dependencies{
		Quizzes:    quizzes,
		Flashcards: app.guarded,
		Guards:     app.guarded,
		Logger:     logger,
	})
	app.server = httpserver.NewQuizServer(module, logger, normalizeAddr(cfg.HTTPPort))
	return app, nil
}

func buildQuizRepository(ctx context.Context, cfg config.Config, logger *slog.Logger, c *closers) (ports.QuizRepository, error) {
	if cfg.PostgresDSN == "" {
		logger.Info("using in-memory quiz store",
			"event", "bootstrap_store_memory",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		return quizmemory.NewStore(nil), nil
	}

	pg, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	c.add("postgres", pg.Close)

	repo := quizpostgres.NewRepository(pg.DB, logger)
	if err := repo.Migrate(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (a *QuizApp) Run(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)
	serve(gctx, group, a.server)

	a.logger.Info("quiz service started",
		"event", "bootstrap_quiz_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"addr", a.server.Addr(),
	)
	return group.Wait()
}

func (a *QuizApp) Close() error {
	return a.closers.closeAll(a.logger)
}
