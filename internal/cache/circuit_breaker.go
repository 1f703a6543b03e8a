package cache

import (
	"errors"
	"sync"
	"time"
)

type CircuitBreakerState int

const (
	CircuitBreakerClosed CircuitBreakerState = iota
	CircuitBreakerOpen
	CircuitBreakerHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case CircuitBreakerOpen:
		return "open"
	case CircuitBreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	MaxFailures      int
	Timeout          time.Duration
	HalfOpenMaxCalls int
}

func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// CircuitBreaker stops calling a failing backend for Timeout after
// MaxFailures consecutive errors, then lets HalfOpenMaxCalls probes through.
// Any failed probe reopens it; that many successful probes close it.
type CircuitBreaker struct {
	mu            sync.Mutex
	state         CircuitBreakerState
	failures      int
	probes        int
	probeSuccess  int
	openedAt      time.Time
	cfg           CircuitBreakerConfig
	now           func() time.Time
	onStateChange func(from, to CircuitBreakerState)
}

func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	cfg := *config
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 1
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// OnStateChange registers a callback invoked with the lock released.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to CircuitBreakerState)) {
	cb.mu.Lock()
	cb.onStateChange = fn
	cb.mu.Unlock()
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitBreakerOpen
	}
	err := fn()
	cb.record(err == nil)
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	var from, to CircuitBreakerState
	changed := false
	allowed := false

	switch cb.state {
	case CircuitBreakerClosed:
		allowed = true
	case CircuitBreakerOpen:
		if cb.now().Sub(cb.openedAt) >= cb.cfg.Timeout {
			from, to, changed = cb.state, CircuitBreakerHalfOpen, true
			cb.state = CircuitBreakerHalfOpen
			cb.probes, cb.probeSuccess = 1, 0
			allowed = true
		}
	case CircuitBreakerHalfOpen:
		if cb.probes < cb.cfg.HalfOpenMaxCalls {
			cb.probes++
			allowed = true
		}
	}
	hook := cb.onStateChange
	cb.mu.Unlock()

	if changed && hook != nil {
		hook(from, to)
	}
	return allowed
}

func (cb *CircuitBreaker) record(success bool) {
	cb.mu.Lock()
	from := cb.state
	switch cb.state {
	case CircuitBreakerClosed:
		if success {
			cb.failures = 0
		} else {
			cb.failures++
			if cb.failures >= cb.cfg.MaxFailures {
				cb.trip()
			}
		}
	case CircuitBreakerHalfOpen:
		if !success {
			cb.trip()
			break
		}
		cb.probeSuccess++
		if cb.probeSuccess >= cb.cfg.HalfOpenMaxCalls {
			cb.state = CircuitBreakerClosed
			cb.failures, cb.probes, cb.probeSuccess = 0, 0, 0
		}
	}
	to := cb.state
	hook := cb.onStateChange
	cb.mu.Unlock()

	if from != to && hook != nil {
		hook(from, to)
	}
}

// trip must be called with mu held.
func (cb *CircuitBreaker) trip() {
	cb.state = CircuitBreakerOpen
	cb.openedAt = cb.now()
	cb.probes, cb.probeSuccess = 0, 0
}

func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Stats() map[string]interface{} {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return map[string]interface{}{
		"state":           cb.state.String(),
		"failure_count":   cb.failures,
		"probe_successes": cb.probeSuccess,
		"max_failures":    cb.cfg.MaxFailures,
		"timeout_seconds": cb.cfg.Timeout.Seconds(),
	}
}
