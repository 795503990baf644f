// Package circuitbreaker guards calls to a remote dependency. After repeated
// failures the guard stops calling the dependency for a cooldown period and
// answers with a fallback value instead.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

const (
	DefaultFailureThreshold = 5
	DefaultWindow           = 60 * time.Second
	DefaultCooldown         = 30 * time.Second
	DefaultCallTimeout      = 2 * time.Second
)

var ErrCallTimeout = errors.New("guarded call timed out")

// Config holds guard settings. Zero values take the defaults.
type Config struct {
	Name string
	// FailureThreshold is the number of consecutive failures that opens the guard.
	FailureThreshold uint32
	// Window is how often failure counts reset while closed.
	Window time.Duration
	// Cooldown is how long the guard stays open before a trial call.
	Cooldown    time.Duration
	CallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "remote"
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	return c
}

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
	StateUnknown  State = "unknown"
)

func fromGobreaker(state gobreaker.State) State {
	switch state {
	case gobreaker.StateClosed:
		return StateClosed
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateUnknown
	}
}

// Counts are the statistics of the current generation. They reset on every
// state change and every Window while closed.
type Counts struct {
	Requests             uint32 `json:"requests"`
	TotalSuccesses       uint32 `json:"total_successes"`
	TotalFailures        uint32 `json:"total_failures"`
	ConsecutiveSuccesses uint32 `json:"consecutive_successes"`
	ConsecutiveFailures  uint32 `json:"consecutive_failures"`
}

// Result is what a guarded invocation produced. Degraded is true when Value
// came from the fallback.
type Result[T any] struct {
	Value    T
	Degraded bool
	State    State
}

type Snapshot struct {
	Name   string `json:"name"`
	State  State  `json:"state"`
	Counts Counts `json:"counts"`
}

// StateChangeListener is called synchronously on every transition. It must
// not call back into the guard.
type StateChangeListener func(name string, from State, to State)
