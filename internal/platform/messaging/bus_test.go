package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToEverySubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(8, nil)

	var (
		mu       sync.Mutex
		received = map[string][]string{}
	)
	record := func(group string) func(context.Context, Envelope) error {
		return func(_ context.Context, event Envelope) error {
			mu.Lock()
			defer mu.Unlock()
			received[group] = append(received[group], event.EventID)
			return nil
		}
	}

	require.NoError(t, bus.Subscribe(ctx, "flashcard", "replica-a", record("replica-a")))
	require.NoError(t, bus.Subscribe(ctx, "flashcard", "replica-b", record("replica-b")))
	require.NoError(t, bus.Subscribe(ctx, "quiz", "replica-a", record("quiz")))

	require.NoError(t, bus.Publish(ctx, "flashcard", Envelope{EventID: "evt-1"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received["replica-a"]) == 1 && len(received["replica-b"]) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, received["quiz"])
}

func TestBusPublishHonorsContextWhenSubscriberIsFull(t *testing.T) {
	subCtx, cancelSub := context.WithCancel(context.Background())
	defer cancelSub()

	bus := NewBus(1, nil)
	block := make(chan struct{})
	defer close(block)

	require.NoError(t, bus.Subscribe(subCtx, "flashcard", "slow", func(context.Context, Envelope) error {
		<-block
		return nil
	}))

	// first event is held by the handler, second fills the buffer
	require.NoError(t, bus.Publish(context.Background(), "flashcard", Envelope{EventID: "1"}))
	require.NoError(t, bus.Publish(context.Background(), "flashcard", Envelope{EventID: "2"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := bus.Publish(ctx, "flashcard", Envelope{EventID: "3"})
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestBusUnsubscribesOnCancel(t *testing.T) {
	bus := NewBus(1, nil)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, bus.Subscribe(ctx, "flashcard", "g", func(context.Context, Envelope) error { return nil }))
	cancel()

	require.Eventually(t, func() bool {
		bus.mu.RLock()
		defer bus.mu.RUnlock()
		return len(bus.subscribers["flashcard"]) == 0
	}, time.Second, 5*time.Millisecond)

	assert.NoError(t, bus.Publish(context.Background(), "flashcard", Envelope{EventID: "x"}))
}
