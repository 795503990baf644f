package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("flashcard service unavailable")

type remote struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (r *remote) call(_ context.Context, id int) (string, error) {
	r.calls.Add(1)
	if r.fail.Load() {
		return "", errUnavailable
	}
	return "card", nil
}

func fallback(int) string { return "fallback" }

func testConfig() Config {
	return Config{
		Name:             "flashcards",
		FailureThreshold: 5,
		Window:           time.Minute,
		Cooldown:         50 * time.Millisecond,
		CallTimeout:      time.Second,
	}
}

func TestGuardPassesThroughWhileHealthy(t *testing.T) {
	r := &remote{}
	g, err := NewGuard(testConfig(), r.call, fallback)
	require.NoError(t, err)

	result := g.Invoke(context.Background(), 1)

	assert.Equal(t, "card", result.Value)
	assert.False(t, result.Degraded)
	assert.Equal(t, StateClosed, result.State)
	assert.Equal(t, uint32(1), g.Counts().TotalSuccesses)
}

func TestGuardReturnsFallbackOnFailureWhileClosed(t *testing.T) {
	r := &remote{}
	r.fail.Store(true)
	g, err := NewGuard(testConfig(), r.call, fallback)
	require.NoError(t, err)

	result := g.Invoke(context.Background(), 1)

	assert.Equal(t, "fallback", result.Value)
	assert.True(t, result.Degraded)
	assert.Equal(t, StateClosed, result.State)
}

func TestGuardOpensAfterThresholdAndShortCircuits(t *testing.T) {
	r := &remote{}
	r.fail.Store(true)

	var transitions []string
	g, err := NewGuard(testConfig(), r.call, fallback, WithStateChangeListener(func(_ string, from, to State) {
		transitions = append(transitions, string(from)+"->"+string(to))
	}))
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		g.Invoke(context.Background(), 1)
		assert.Equal(t, StateClosed, g.State())
	}
	g.Invoke(context.Background(), 1)
	assert.Equal(t, StateOpen, g.State())
	assert.Equal(t, int32(5), r.calls.Load())

	result := g.Invoke(context.Background(), 1)
	assert.True(t, result.Degraded)
	assert.Equal(t, StateOpen, result.State)
	assert.Equal(t, int32(5), r.calls.Load(), "open guard must not reach the remote")
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestGuardRecoversAfterCooldown(t *testing.T) {
	r := &remote{}
	r.fail.Store(true)
	g, err := NewGuard(testConfig(), r.call, fallback)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		g.Invoke(context.Background(), 1)
	}
	require.Equal(t, StateOpen, g.State())

	require.Eventually(t, func() bool {
		return g.State() == StateHalfOpen
	}, time.Second, 5*time.Millisecond)

	r.fail.Store(false)
	result := g.Invoke(context.Background(), 1)

	assert.False(t, result.Degraded)
	assert.Equal(t, "card", result.Value)
	assert.Equal(t, StateClosed, g.State())
	assert.Equal(t, Counts{}, g.Counts())
}

func TestGuardReopensWhenTrialFails(t *testing.T) {
	r := &remote{}
	r.fail.Store(true)
	g, err := NewGuard(testConfig(), r.call, fallback)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		g.Invoke(context.Background(), 1)
	}
	require.Eventually(t, func() bool {
		return g.State() == StateHalfOpen
	}, time.Second, 5*time.Millisecond)

	result := g.Invoke(context.Background(), 1)

	assert.True(t, result.Degraded)
	assert.Equal(t, StateOpen, g.State())
	assert.Equal(t, int32(6), r.calls.Load())
}

func TestGuardAllowsSingleTrialWhileHalfOpen(t *testing.T) {
	var (
		calls   atomic.Int32
		fail    atomic.Bool
		started = make(chan struct{}, 1)
		release = make(chan struct{})
	)
	fail.Store(true)
	call := func(ctx context.Context, _ int) (string, error) {
		calls.Add(1)
		if fail.Load() {
			return "", errUnavailable
		}
		started <- struct{}{}
		<-release
		return "card", nil
	}

	g, err := NewGuard(testConfig(), call, fallback)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		g.Invoke(context.Background(), 1)
	}
	require.Eventually(t, func() bool {
		return g.State() == StateHalfOpen
	}, time.Second, 5*time.Millisecond)

	fail.Store(false)
	var wg sync.WaitGroup
	wg.Add(1)
	var trial Result[string]
	go func() {
		defer wg.Done()
		trial = g.Invoke(context.Background(), 1)
	}()
	<-started

	concurrent := g.Invoke(context.Background(), 2)
	assert.True(t, concurrent.Degraded)
	assert.Equal(t, int32(6), calls.Load())

	close(release)
	wg.Wait()
	assert.False(t, trial.Degraded)
	assert.Equal(t, StateClosed, g.State())
}

func TestGuardCountsTimeoutAsFailure(t *testing.T) {
	cfg := testConfig()
	cfg.CallTimeout = 20 * time.Millisecond

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	g, err := NewGuard(cfg, func(context.Context, int) (string, error) {
		<-release
		return "late", nil
	}, fallback)
	require.NoError(t, err)

	start := time.Now()
	result := g.Invoke(context.Background(), 1)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.True(t, result.Degraded)
	assert.Equal(t, "fallback", result.Value)
	assert.Equal(t, uint32(1), g.Counts().ConsecutiveFailures)
}

func TestGuardTreatsPanicAsFailure(t *testing.T) {
	g, err := NewGuard(testConfig(), func(context.Context, int) (string, error) {
		panic("boom")
	}, fallback)
	require.NoError(t, err)

	result := g.Invoke(context.Background(), 1)

	assert.True(t, result.Degraded)
	assert.Equal(t, uint32(1), g.Counts().TotalFailures)
}

func TestNewGuardValidation(t *testing.T) {
	_, err := NewGuard[int, string](Config{}, nil, fallback)
	assert.Error(t, err)

	_, err = NewGuard[int, string](Config{}, (&remote{}).call, nil)
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, uint32(DefaultFailureThreshold), cfg.FailureThreshold)
	assert.Equal(t, DefaultWindow, cfg.Window)
	assert.Equal(t, DefaultCooldown, cfg.Cooldown)
	assert.Equal(t, DefaultCallTimeout, cfg.CallTimeout)
}

func TestSnapshot(t *testing.T) {
	g, err := NewGuard(testConfig(), (&remote{}).call, fallback)
	require.NoError(t, err)
	g.Invoke(context.Background(), 1)

	snapshot := g.Snapshot()

	assert.Equal(t, "flashcards", snapshot.Name)
	assert.Equal(t, StateClosed, snapshot.State)
	assert.Equal(t, uint32(1), snapshot.Counts.Requests)
}
