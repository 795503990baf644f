package replication

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cardsync/internal/platform/telemetry"
)

// Consumer applies changes authored elsewhere and discards this instance's echoes.
type Consumer[T Entity] struct {
	Subscriber    EventSubscriber
	Store         Store[T]
	Cache         LoopbackCache
	Topic         string
	ConsumerGroup string
	Metrics       *telemetry.Replication
	Logger        *slog.Logger
}

// Start registers Handle for the consumer topic.
func (c Consumer[T]) Start(ctx context.Context) error {
	if err := c.Subscriber.Subscribe(ctx, c.Topic, c.ConsumerGroup, c.Handle); err != nil {
		return fmt.Errorf("subscribe %q: %w", c.Topic, err)
	}
	resolveLogger(c.Logger).Info("change consumer started",
		"event", "replication_consumer_started",
		"module", "internal/shared/replication",
		"layer", "shared",
		"topic", c.Topic,
		"consumer_group", c.ConsumerGroup,
	)
	return nil
}

// Handle processes one delivered envelope. It is safe to call concurrently and
// to call again with the same envelope.
func (c Consumer[T]) Handle(ctx context.Context, envelope Envelope) error {
	logger := resolveLogger(c.Logger)

	var change ChangeEvent[T]
	if err := json.Unmarshal(envelope.Data, &change); err != nil {
		logger.Error("change event decode failed",
			"event", "replication_decode_failed",
			"module", "internal/shared/replication",
			"layer", "shared",
			"event_id", envelope.EventID,
			"error", err.Error(),
		)
		return fmt.Errorf("%w: decode: %v", ErrMalformedEvent, err)
	}
	if !change.Operation.Valid() {
		return fmt.Errorf("%w: operation %q", ErrMalformedEvent, change.Operation)
	}

	// The transported fingerprint is advisory; the recomputed one is authoritative.
	fingerprint, err := Fingerprint(change.Operation, change.Payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if change.Fingerprint != "" && change.Fingerprint != fingerprint {
		logger.Warn("transported fingerprint mismatch",
			"event", "replication_fingerprint_mismatch",
			"module", "internal/shared/replication",
			"layer", "shared",
			"event_id", envelope.EventID,
			"transported", change.Fingerprint,
			"computed", fingerprint,
		)
	}

	own, err := c.Cache.Claim(ctx, fingerprint)
	if err != nil {
		return fmt.Errorf("claim loopback fingerprint: %w", err)
	}
	if own {
		c.Metrics.Suppressed(ctx, c.Topic)
		logger.Debug("own change echo discarded",
			"event", "replication_echo_suppressed",
			"module", "internal/shared/replication",
			"layer", "shared",
			"event_id", envelope.EventID,
			"operation", change.Operation,
			"entity_id", change.Payload.EntityID(),
			"fingerprint", fingerprint,
		)
		return nil
	}

	if err := c.apply(ctx, change); err != nil {
		c.Metrics.ApplyFailed(ctx, c.Topic, string(change.Operation))
		logger.Error("change apply failed",
			"event", "replication_apply_failed",
			"module", "internal/shared/replication",
			"layer", "shared",
			"event_id", envelope.EventID,
			"operation", change.Operation,
			"entity_id", change.Payload.EntityID(),
			"error", err.Error(),
		)
		return &ApplyError{Operation: change.Operation, EntityID: change.Payload.EntityID(), Err: err}
	}

	c.Metrics.Applied(ctx, c.Topic, string(change.Operation))
	logger.Info("remote change applied",
		"event", "replication_change_applied",
		"module", "internal/shared/replication",
		"layer", "shared",
		"event_id", envelope.EventID,
		"source_service", envelope.SourceService,
		"source_instance_id", envelope.SourceID,
		"operation", change.Operation,
		"entity_id", change.Payload.EntityID(),
	)
	return nil
}

func (c Consumer[T]) apply(ctx context.Context, change ChangeEvent[T]) error {
	switch change.Operation {
	case OperationCreate, OperationUpdate:
		return c.Store.Save(ctx, change.Payload)
	case OperationDelete:
		return c.Store.Delete(ctx, change.Payload)
	default:
		return ErrInvalidOperation
	}
}
