// Package replication carries entity changes between service instances over an
// event transport while suppressing the echo of an instance's own writes.
//
// Publisher records a fingerprint of every outgoing change in a LoopbackCache
// before handing the change to the transport. Consumer claims that fingerprint
// when the same change comes back and discards it; changes authored elsewhere
// are applied to local storage with upsert/delete semantics so redelivery is
// harmless.
package replication

import (
	"context"
	"time"

	contractsv1 "cardsync/contracts/gen/events/v1"
)

type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	default:
		return false
	}
}

// Entity is a replicated payload. EntityID is used as partition key and for logs.
type Entity interface {
	EntityID() string
}

// ChangeEvent is one replicated mutation.
type ChangeEvent[T Entity] struct {
	Operation   Operation `json:"operation"`
	Payload     T         `json:"payload"`
	Fingerprint string    `json:"fingerprint"`
}

// NewChangeEvent builds an event with its fingerprint filled in.
func NewChangeEvent[T Entity](op Operation, payload T) (ChangeEvent[T], error) {
	if !op.Valid() {
		return ChangeEvent[T]{}, ErrInvalidOperation
	}
	fingerprint, err := Fingerprint(op, payload)
	if err != nil {
		return ChangeEvent[T]{}, err
	}
	return ChangeEvent[T]{
		Operation:   op,
		Payload:     payload,
		Fingerprint: fingerprint,
	}, nil
}

// Envelope is the transport-level event shape.
type Envelope = contractsv1.Envelope

// EventPublisher hands an envelope to the transport. Implementations must honor
// ctx cancellation so a slow broker cannot stall the caller.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event Envelope) error
}

// EventSubscriber registers a handler invoked for every delivered envelope.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, Envelope) error,
	) error
}

// LoopbackCache tracks fingerprints of changes this instance published and has
// not yet seen come back.
type LoopbackCache interface {
	Remember(ctx context.Context, fingerprint string) error
	// Claim atomically checks for and removes one pending occurrence.
	Claim(ctx context.Context, fingerprint string) (bool, error)
	Forget(ctx context.Context, fingerprint string) error
	Contains(ctx context.Context, fingerprint string) (bool, error)
}

// Store is the storage collaborator remote changes are applied to.
// Save must upsert and Delete must succeed when the entity is already absent.
type Store[T Entity] interface {
	Save(ctx context.Context, entity T) error
	Delete(ctx context.Context, entity T) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
