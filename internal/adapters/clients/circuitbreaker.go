package clients

import (
	"sync"
	"time"

	"github.com/jsamuelsen/pay-public-api/internal/platform/config"
	"github.com/jsamuelsen/pay-public-api/internal/platform/telemetry"
)

// State is the position of a circuit breaker. Its integer value is what the
// downstream_circuit_state gauge publishes.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{StateClosed: "closed", StateOpen: "open", StateHalfOpen: "half-open"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

// BreakerOption customises a CircuitBreaker.
type BreakerOption func(*CircuitBreaker)

// WithStateListener calls fn on its own goroutine after every transition.
func WithStateListener(fn func(from, to State)) BreakerOption {
	return func(cb *CircuitBreaker) { cb.listener = fn }
}

func withClock(now func() time.Time) BreakerOption {
	return func(cb *CircuitBreaker) { cb.now = now }
}

// CircuitBreaker stops calls to a connector that keeps failing.
//
// A closed breaker opens after MaxFailures consecutive failures. Once
// Timeout has passed since it opened, up to HalfOpenLimit probes are let
// through; HalfOpenLimit successes close it again and any failure reopens it.
type CircuitBreaker struct {
	downstream string
	cfg        config.CircuitBreakerConfig
	listener   func(from, to State)
	now        func() time.Time

	mu       sync.Mutex
	state    State
	openedAt time.Time
	streak   int // consecutive failures when closed, successes when half-open
	probes   int // outstanding half-open probes
}

// NewCircuitBreaker returns a closed breaker for downstream. Zero limits in
// cfg fall back to the configuration defaults.
func NewCircuitBreaker(downstream string, cfg config.CircuitBreakerConfig, opts ...BreakerOption) *CircuitBreaker {
	cfg.MaxFailures = cmpOr(cfg.MaxFailures, config.DefaultClientCircuitMaxFailures)
	cfg.HalfOpenLimit = cmpOr(cfg.HalfOpenLimit, config.DefaultClientCircuitHalfOpenLimit)

	cb := &CircuitBreaker{downstream: downstream, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(cb)
	}

	telemetry.SetCircuitState(downstream, int(StateClosed))

	return cb
}

func cmpOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}

	return v
}

// Allow reports whether a call may go to the connector. The first caller
// after the open timeout moves the breaker to half-open as its first probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.cfg.Timeout {
			return false
		}

		cb.moveTo(StateHalfOpen)
	}

	if cb.state == StateHalfOpen {
		if cb.probes >= cb.cfg.HalfOpenLimit {
			return false
		}

		cb.probes++
	}

	return true
}

// RecordSuccess records a call the connector answered without a 5xx.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.streak = 0
	case StateHalfOpen:
		cb.probes--
		cb.streak++

		if cb.streak >= cb.cfg.HalfOpenLimit {
			cb.moveTo(StateClosed)
		}
	}
}

// RecordFailure records a transport error or 5xx from the connector.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.streak++

		if cb.streak >= cb.cfg.MaxFailures {
			cb.moveTo(StateOpen)
		}
	case StateHalfOpen:
		cb.probes--
		cb.moveTo(StateOpen)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// moveTo changes state and resets the counters. Caller holds mu.
func (cb *CircuitBreaker) moveTo(next State) {
	prev := cb.state
	if prev == next {
		return
	}

	cb.state = next
	cb.streak = 0

	switch next {
	case StateOpen:
		cb.openedAt = cb.now()
	case StateClosed:
		cb.probes = 0
	}

	telemetry.SetCircuitState(cb.downstream, int(next))

	if cb.listener != nil {
		go cb.listener(prev, next)
	}
}
