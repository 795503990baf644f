package replication

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cardsync/internal/platform/telemetry"

	"github.com/google/uuid"
)

const (
	defaultPublishTimeout = 5 * time.Second
	envelopeSchemaVersion = 1
)

// Publisher broadcasts locally committed changes.
type Publisher[T Entity] struct {
	Transport     EventPublisher
	Cache         LoopbackCache
	Topic         string
	EventType     string
	SourceService string
	SourceID      string
	Timeout       time.Duration
	Clock         Clock
	IDGenerator   IDGenerator
	Metrics       *telemetry.Replication
	Logger        *slog.Logger
}

// PublishChange records the change fingerprint and then emits the change.
//
// The fingerprint is always recorded before the transport sees the event, so
// an echo can never overtake its own registration. When the transport fails
// the fingerprint is dropped again and a *DeliveryError is returned.
func (p Publisher[T]) PublishChange(ctx context.Context, op Operation, payload T) error {
	logger := resolveLogger(p.Logger)

	change, err := NewChangeEvent(op, payload)
	if err != nil {
		return err
	}
	envelope, err := p.envelope(ctx, change)
	if err != nil {
		return err
	}

	if err := p.Cache.Remember(ctx, change.Fingerprint); err != nil {
		logger.Error("loopback remember failed",
			"event", "replication_loopback_remember_failed",
			"module", "internal/shared/replication",
			"layer", "shared",
			"operation", op,
			"entity_id", payload.EntityID(),
			"error", err.Error(),
		)
		return &DeliveryError{Operation: op, EntityID: payload.EntityID(), Topic: p.Topic, Err: err}
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	if err := p.Transport.Publish(publishCtx, p.Topic, envelope); err != nil {
		if forgetErr := p.Cache.Forget(context.WithoutCancel(ctx), change.Fingerprint); forgetErr != nil {
			logger.Warn("loopback forget after failed publish failed",
				"event", "replication_loopback_forget_failed",
				"module", "internal/shared/replication",
				"layer", "shared",
				"fingerprint", change.Fingerprint,
				"error", forgetErr.Error(),
			)
		}
		p.Metrics.DeliveryFailed(ctx, p.Topic, string(op))
		logger.Warn("change delivery failed",
			"event", "replication_delivery_failed",
			"module", "internal/shared/replication",
			"layer", "shared",
			"topic", p.Topic,
			"operation", op,
			"entity_id", payload.EntityID(),
			"event_id", envelope.EventID,
			"error", err.Error(),
		)
		return &DeliveryError{Operation: op, EntityID: payload.EntityID(), Topic: p.Topic, Err: err}
	}

	p.Metrics.Published(ctx, p.Topic, string(op))
	logger.Debug("change published",
		"event", "replication_change_published",
		"module", "internal/shared/replication",
		"layer", "shared",
		"topic", p.Topic,
		"operation", op,
		"entity_id", payload.EntityID(),
		"event_id", envelope.EventID,
		"fingerprint", change.Fingerprint,
	)
	return nil
}

func (p Publisher[T]) envelope(ctx context.Context, change ChangeEvent[T]) (Envelope, error) {
	data, err := json.Marshal(change)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode change event: %w", err)
	}

	eventID := ""
	if p.IDGenerator != nil {
		eventID, err = p.IDGenerator.NewID(ctx)
		if err != nil {
			return Envelope{}, fmt.Errorf("generate event id: %w", err)
		}
	} else {
		eventID = uuid.NewString()
	}

	now := time.Now().UTC()
	if p.Clock != nil {
		now = p.Clock.Now().UTC()
	}

	return Envelope{
		EventID:       eventID,
		EventType:     p.EventType,
		OccurredAt:    now,
		SourceService: p.SourceService,
		SourceID:      p.SourceID,
		SchemaVersion: envelopeSchemaVersion,
		PartitionKey:  change.Payload.EntityID(),
		Fingerprint:   change.Fingerprint,
		Data:          data,
	}, nil
}

func (p Publisher[T]) timeout() time.Duration {
	if p.Timeout <= 0 {
		return defaultPublishTimeout
	}
	return p.Timeout
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
