package clients

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/pay-public-api/internal/platform/config"
)

// newTestBreaker returns a breaker with a controllable clock.
func newTestBreaker(maxFailures, halfOpenLimit int) (*CircuitBreaker, *time.Time) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	cb := NewCircuitBreaker("connector", config.CircuitBreakerConfig{
		MaxFailures:   maxFailures,
		Timeout:       30 * time.Second,
		HalfOpenLimit: halfOpenLimit,
	}, withClock(func() time.Time { return now }))

	return cb, &now
}

func TestCircuitBreaker_Transitions(t *testing.T) {
	tests := []struct {
		name  string
		steps func(cb *CircuitBreaker, now *time.Time)
		want  State
		allow bool
	}{
		{
			name:  "starts closed",
			steps: func(*CircuitBreaker, *time.Time) {},
			want:  StateClosed,
			allow: true,
		},
		{
			name: "opens after consecutive failures",
			steps: func(cb *CircuitBreaker, _ *time.Time) {
				cb.RecordFailure()
				cb.RecordFailure()
				cb.RecordFailure()
			},
			want:  StateOpen,
			allow: false,
		},
		{
			name: "success resets the failure count",
			steps: func(cb *CircuitBreaker, _ *time.Time) {
				cb.RecordFailure()
				cb.RecordFailure()
				cb.RecordSuccess()
				cb.RecordFailure()
				cb.RecordFailure()
			},
			want:  StateClosed,
			allow: true,
		},
		{
			name: "stays open until the timeout passes",
			steps: func(cb *CircuitBreaker, now *time.Time) {
				for range 3 {
					cb.RecordFailure()
				}
				*now = now.Add(29 * time.Second)
			},
			want:  StateOpen,
			allow: false,
		},
		{
			name: "half-open probe that fails reopens",
			steps: func(cb *CircuitBreaker, now *time.Time) {
				for range 3 {
					cb.RecordFailure()
				}
				*now = now.Add(31 * time.Second)
				cb.Allow()
				cb.RecordFailure()
			},
			want:  StateOpen,
			allow: false,
		},
		{
			name: "half-open probes that succeed close",
			steps: func(cb *CircuitBreaker, now *time.Time) {
				for range 3 {
					cb.RecordFailure()
				}
				*now = now.Add(31 * time.Second)
				cb.Allow()
				cb.RecordSuccess()
				cb.Allow()
				cb.RecordSuccess()
			},
			want:  StateClosed,
			allow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, now := newTestBreaker(3, 2)

			tt.steps(cb, now)

			assert.Equal(t, tt.want, cb.State())
			assert.Equal(t, tt.allow, cb.Allow())
		})
	}
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	cb, now := newTestBreaker(1, 2)

	cb.RecordFailure()
	*now = now.Add(time.Minute)

	assert.True(t, cb.Allow(), "first probe")
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.True(t, cb.Allow(), "second probe")
	assert.False(t, cb.Allow(), "probes beyond the limit are refused")

	cb.RecordSuccess()
	assert.True(t, cb.Allow(), "a finished probe frees its slot")
}

func TestCircuitBreaker_OpenTimeoutCountsFromOpening(t *testing.T) {
	cb, now := newTestBreaker(2, 1)

	cb.RecordFailure()
	*now = now.Add(25 * time.Second)
	cb.RecordFailure()
	require.Equal(t, StateOpen, cb.State())

	*now = now.Add(10 * time.Second)
	assert.False(t, cb.Allow(), "timeout runs from when the breaker opened")

	*now = now.Add(25 * time.Second)
	assert.True(t, cb.Allow())
	assert.Equal(t, StateHalfOpen, cb.State())
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker("direct-debit-connector", config.CircuitBreakerConfig{Timeout: time.Second})

	assert.Equal(t, config.DefaultClientCircuitMaxFailures, cb.cfg.MaxFailures)
	assert.Equal(t, config.DefaultClientCircuitHalfOpenLimit, cb.cfg.HalfOpenLimit)
}

func TestCircuitBreaker_StateListener(t *testing.T) {
	changes := make(chan [2]State, 1)
	cb := NewCircuitBreaker("connector", config.CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute},
		WithStateListener(func(from, to State) { changes <- [2]State{from, to} }))

	cb.RecordFailure()

	select {
	case got := <-changes:
		assert.Equal(t, [2]State{StateClosed, StateOpen}, got)
	case <-time.After(time.Second):
		require.Fail(t, "state change callback not invoked")
	}
}

func TestCircuitBreaker_Concurrent(t *testing.T) {
	cb := NewCircuitBreaker("connector", config.CircuitBreakerConfig{
		MaxFailures:   100,
		Timeout:       time.Second,
		HalfOpenLimit: 10,
	})

	var (
		wg     sync.WaitGroup
		allows atomic.Int64
	)

	for range 1000 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if !cb.Allow() {
				return
			}

			if allows.Add(1)%2 == 0 {
				cb.RecordSuccess()
			} else {
				cb.RecordFailure()
			}
		}()
	}

	wg.Wait()

	assert.Contains(t, []State{StateClosed, StateOpen, StateHalfOpen}, cb.State())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
		{State(-1), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}
