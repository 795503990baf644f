package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cardsync/internal/platform/telemetry"

	"github.com/sony/gobreaker"
)

// Guard wraps one remote operation. Invoke never fails: when the call errors,
// times out, or the guard is open, the fallback answers instead.
type Guard[Req any, Resp any] struct {
	cfg       Config
	breaker   *gobreaker.CircuitBreaker
	call      func(context.Context, Req) (Resp, error)
	fallback  func(Req) Resp
	metrics   *telemetry.Breaker
	logger    *slog.Logger
	listeners []StateChangeListener
}

type Option func(*guardOptions)

type guardOptions struct {
	metrics   *telemetry.Breaker
	logger    *slog.Logger
	listeners []StateChangeListener
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *guardOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(metrics *telemetry.Breaker) Option {
	return func(o *guardOptions) {
		o.metrics = metrics
	}
}

func WithStateChangeListener(listener StateChangeListener) Option {
	return func(o *guardOptions) {
		if listener != nil {
			o.listeners = append(o.listeners, listener)
		}
	}
}

func NewGuard[Req any, Resp any](
	cfg Config,
	call func(context.Context, Req) (Resp, error),
	fallback func(Req) Resp,
	opts ...Option,
) (*Guard[Req, Resp], error) {
	if call == nil {
		return nil, errors.New("guarded call is required")
	}
	if fallback == nil {
		return nil, errors.New("fallback is required")
	}

	options := guardOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}

	g := &Guard[Req, Resp]{
		cfg:       cfg.withDefaults(),
		call:      call,
		fallback:  fallback,
		metrics:   options.metrics,
		logger:    options.logger,
		listeners: options.listeners,
	}

	threshold := g.cfg.FailureThreshold
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        g.cfg.Name,
		MaxRequests: 1,
		Interval:    g.cfg.Window,
		Timeout:     g.cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			g.handleStateChange(name, fromGobreaker(from), fromGobreaker(to))
		},
	})
	return g, nil
}

func (g *Guard[Req, Resp]) Invoke(ctx context.Context, req Req) Result[Resp] {
	value, err := g.breaker.Execute(func() (any, error) {
		return g.attempt(ctx, req)
	})
	if err == nil {
		resp, _ := value.(Resp)
		return Result[Resp]{Value: resp, State: g.State()}
	}

	state := g.State()
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		g.logger.Debug("guarded call short-circuited",
			"event", "breaker_short_circuit",
			"module", "internal/platform/circuitbreaker",
			"layer", "platform",
			"breaker", g.cfg.Name,
			"state", string(state),
		)
	default:
		g.logger.Warn("guarded call failed",
			"event", "breaker_call_failed",
			"module", "internal/platform/circuitbreaker",
			"layer", "platform",
			"breaker", g.cfg.Name,
			"state", string(state),
			"error", err.Error(),
		)
	}
	g.metrics.Fallback(ctx, g.cfg.Name, string(state))

	return Result[Resp]{Value: g.fallback(req), Degraded: true, State: state}
}

type outcome[T any] struct {
	value T
	err   error
}

// attempt runs the call on its own goroutine so a call that ignores its
// context still cannot hold the caller past CallTimeout.
func (g *Guard[Req, Resp]) attempt(ctx context.Context, req Req) (Resp, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	defer cancel()

	done := make(chan outcome[Resp], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[Resp]{err: fmt.Errorf("guarded call panicked: %v", r)}
			}
		}()
		value, err := g.call(callCtx, req)
		done <- outcome[Resp]{value: value, err: err}
	}()

	select {
	case result := <-done:
		return result.value, result.err
	case <-callCtx.Done():
		var zero Resp
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w after %s", ErrCallTimeout, g.cfg.CallTimeout)
		}
		return zero, callCtx.Err()
	}
}

func (g *Guard[Req, Resp]) State() State {
	return fromGobreaker(g.breaker.State())
}

func (g *Guard[Req, Resp]) Counts() Counts {
	counts := g.breaker.Counts()
	return Counts{
		Requests:             counts.Requests,
		TotalSuccesses:       counts.TotalSuccesses,
		TotalFailures:        counts.TotalFailures,
		ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
		ConsecutiveFailures:  counts.ConsecutiveFailures,
	}
}

func (g *Guard[Req, Resp]) Snapshot() Snapshot {
	return Snapshot{Name: g.cfg.Name, State: g.State(), Counts: g.Counts()}
}

func (g *Guard[Req, Resp]) Name() string {
	return g.cfg.Name
}

func (g *Guard[Req, Resp]) handleStateChange(name string, from State, to State) {
	level := slog.LevelInfo
	if to == StateOpen {
		level = slog.LevelWarn
	}
	g.logger.Log(context.Background(), level, "circuit breaker state changed",
		"event", "breaker_state_changed",
		"module", "internal/platform/circuitbreaker",
		"layer", "platform",
		"breaker", name,
		"from", string(from),
		"to", string(to),
	)
	g.metrics.StateChanged(context.Background(), name, string(from), string(to))
	for _, listener := range g.listeners {
		listener(name, from, to)
	}
}
