package flashcardclient

import (
	"context"
	"log/slog"

	"cardsync/contexts/study/quiz-service/domain/entities"
	"cardsync/contexts/study/quiz-service/ports"
	"cardsync/internal/platform/circuitbreaker"
	"cardsync/internal/platform/telemetry"
)

const (
	CardsBreakerName = "flashcard-service.cards"
	InfoBreakerName  = "flashcard-service.info"
)

// Remote is the unguarded flashcard-service API.
type Remote interface {
	ListFlashcards(ctx context.Context) ([]entities.Flashcard, error)
	ServiceInfo(ctx context.Context) (entities.FlashcardServiceInfo, error)
}

// Guarded puts each Remote operation behind its own guard so that a failing
// listing does not trip the info endpoint and vice versa.
type Guarded struct {
	cards *circuitbreaker.Guard[struct{}, ports.FlashcardListing]
	info  *circuitbreaker.Guard[struct{}, ports.FlashcardServiceStatus]
}

type GuardedConfig struct {
	Breaker circuitbreaker.Config
	Metrics *telemetry.Breaker
	Logger  *slog.Logger
	// OnStateChange is optional and sees transitions of both guards.
	OnStateChange circuitbreaker.StateChangeListener
}

func NewGuarded(remote Remote, cfg GuardedConfig) (*Guarded, error) {
	opts := []circuitbreaker.Option{
		circuitbreaker.WithLogger(cfg.Logger),
		circuitbreaker.WithMetrics(cfg.Metrics),
		circuitbreaker.WithStateChangeListener(cfg.OnStateChange),
	}

	cardsCfg := cfg.Breaker
	cardsCfg.Name = CardsBreakerName
	cards, err := circuitbreaker.NewGuard(cardsCfg,
		func(ctx context.Context, _ struct{}) (ports.FlashcardListing, error) {
			items, err := remote.ListFlashcards(ctx)
			if err != nil {
				return ports.FlashcardListing{}, err
			}
			return ports.FlashcardListing{Flashcards: items, Available: true}, nil
		},
		func(struct{}) ports.FlashcardListing {
			return ports.FlashcardListing{Available: false}
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}

	infoCfg := cfg.Breaker
	infoCfg.Name = InfoBreakerName
	info, err := circuitbreaker.NewGuard(infoCfg,
		func(ctx context.Context, _ struct{}) (ports.FlashcardServiceStatus, error) {
			status, err := remote.ServiceInfo(ctx)
			if err != nil {
				return ports.FlashcardServiceStatus{}, err
			}
			return ports.FlashcardServiceStatus{Info: status, Available: true}, nil
		},
		func(struct{}) ports.FlashcardServiceStatus {
			return ports.FlashcardServiceStatus{Available: false}
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}

	return &Guarded{cards: cards, info: info}, nil
}

func (g *Guarded) ListFlashcards(ctx context.Context) ports.FlashcardListing {
	return g.cards.Invoke(ctx, struct{}{}).Value
}

func (g *Guarded) ServiceInfo(ctx context.Context) ports.FlashcardServiceStatus {
	return g.info.Invoke(ctx, struct{}{}).Value
}

func (g *Guarded) Snapshots() []circuitbreaker.Snapshot {
	return []circuitbreaker.Snapshot{g.cards.Snapshot(), g.info.Snapshot()}
}

func (g *Guarded) GuardStatuses() []ports.GuardStatus {
	snapshots := g.Snapshots()
	statuses := make([]ports.GuardStatus, 0, len(snapshots))
	for _, snapshot := range snapshots {
		statuses = append(statuses, ports.GuardStatus{
			Name:  snapshot.Name,
			State: string(snapshot.State),
			Counts: ports.GuardCounts{
				Requests:             snapshot.Counts.Requests,
				TotalSuccesses:       snapshot.Counts.TotalSuccesses,
				TotalFailures:        snapshot.Counts.TotalFailures,
				ConsecutiveSuccesses: snapshot.Counts.ConsecutiveSuccesses,
				ConsecutiveFailures:  snapshot.Counts.ConsecutiveFailures,
			},
		})
	}
	return statuses
}
