package events

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"cardsync/contexts/study/flashcard-service/domain/entities"
	"cardsync/contexts/study/flashcard-service/ports"
	"cardsync/internal/platform/telemetry"
	"cardsync/internal/shared/replication"
)

const (
	DefaultTopic = "flashcard"
	EventType    = "flashcard.changed"
	ServiceName  = "flashcard-service"
)

// flashcardPayload is the wire snapshot of a flashcard. Its json names are
// also the field names the change fingerprint is computed over.
type flashcardPayload struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

func (p flashcardPayload) EntityID() string {
	return strconv.Itoa(p.ID)
}

func payloadFromEntity(flashcard entities.Flashcard) flashcardPayload {
	return flashcardPayload{
		ID:       flashcard.ID,
		Question: flashcard.Question,
		Answer:   flashcard.Answer,
		Category: flashcard.Category,
	}
}

func (p flashcardPayload) toEntity() entities.Flashcard {
	return entities.Flashcard{
		ID:       p.ID,
		Question: p.Question,
		Answer:   p.Answer,
		Category: p.Category,
	}
}

type Config struct {
	Publisher      replication.EventPublisher
	Subscriber     replication.EventSubscriber
	Cache          replication.LoopbackCache
	Flashcards     ports.FlashcardRepository
	Topic          string
	InstanceID     string
	PublishTimeout time.Duration
	Metrics        *telemetry.Replication
	Logger         *slog.Logger
}

// Replicator keeps the flashcards of every instance in step. It publishes
// local changes and applies changes published by other instances.
type Replicator struct {
	publisher replication.Publisher[flashcardPayload]
	consumer  replication.Consumer[flashcardPayload]
}

func NewReplicator(cfg Config) *Replicator {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	// one group per instance: every instance must see every change
	group := ServiceName + "." + cfg.InstanceID

	return &Replicator{
		publisher: replication.Publisher[flashcardPayload]{
			Transport:     cfg.Publisher,
			Cache:         cfg.Cache,
			Topic:         topic,
			EventType:     EventType,
			SourceService: ServiceName,
			SourceID:      cfg.InstanceID,
			Timeout:       cfg.PublishTimeout,
			Metrics:       cfg.Metrics,
			Logger:        cfg.Logger,
		},
		consumer: replication.Consumer[flashcardPayload]{
			Subscriber:    cfg.Subscriber,
			Store:         store{flashcards: cfg.Flashcards},
			Cache:         cfg.Cache,
			Topic:         topic,
			ConsumerGroup: group,
			Metrics:       cfg.Metrics,
			Logger:        cfg.Logger,
		},
	}
}

func (r *Replicator) PublishChange(ctx context.Context, op ports.ChangeOperation, flashcard entities.Flashcard) error {
	return r.publisher.PublishChange(ctx, replication.Operation(op), payloadFromEntity(flashcard))
}

// Start subscribes the change consumer. Deliveries are processed until ctx ends.
func (r *Replicator) Start(ctx context.Context) error {
	return r.consumer.Start(ctx)
}

func (r *Replicator) Handle(ctx context.Context, envelope replication.Envelope) error {
	return r.consumer.Handle(ctx, envelope)
}

type store struct {
	flashcards ports.FlashcardRepository
}

func (s store) Save(ctx context.Context, payload flashcardPayload) error {
	return s.flashcards.Save(ctx, payload.toEntity())
}

func (s store) Delete(ctx context.Context, payload flashcardPayload) error {
	return s.flashcards.Delete(ctx, payload.ID)
}
