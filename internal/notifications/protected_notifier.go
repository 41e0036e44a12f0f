package notifications

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type ProtectedNotifierConfig struct {
	Timeout          time.Duration // per call
	FailureThreshold int           // consecutive failures that open the circuit
	Cooldown         time.Duration // open time before a trial call is let through
	HalfOpenMaxCalls int           // concurrent trial calls while half-open
}

func (c ProtectedNotifierConfig) withDefaults() ProtectedNotifierConfig {
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Second
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 3
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 15 * time.Second
	}
	if c.HalfOpenMaxCalls <= 0 {
		c.HalfOpenMaxCalls = 1
	}
	return c
}

type breakerState string

const (
	stateClosed   breakerState = "closed"
	stateOpen     breakerState = "open"
	stateHalfOpen breakerState = "half_open"
)

// ProtectedNotifier bounds each call with a timeout and stops calling a failing
// provider until a cooldown has passed.
type ProtectedNotifier struct {
	inner Notifier
	cfg   ProtectedNotifierConfig
	now   func() time.Time

	mu       sync.Mutex
	state    breakerState
	failures int
	openedAt time.Time
	trials   int
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig) *ProtectedNotifier {
	return &ProtectedNotifier{
		inner: inner,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		state: stateClosed,
	}
}

func (n *ProtectedNotifier) PlayerRegistered(ctx context.Context, input PlayerRegisteredInput) error {
	trial, ok := n.acquire()
	if !ok {
		return ErrCircuitOpen
	}

	callCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	err := n.inner.PlayerRegistered(callCtx, input)
	n.release(trial, err)

	return err
}

// acquire decides whether a call may go out; trial reports a half-open trial call.
func (n *ProtectedNotifier) acquire() (trial bool, ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == stateOpen && n.now().Sub(n.openedAt) >= n.cfg.Cooldown {
		n.state = stateHalfOpen
		n.trials = 0
	}

	switch n.state {
	case stateOpen:
		return false, false
	case stateHalfOpen:
		if n.trials >= n.cfg.HalfOpenMaxCalls {
			return false, false
		}
		n.trials++
		return true, true
	default:
		return false, true
	}
}

func (n *ProtectedNotifier) release(trial bool, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if trial && n.trials > 0 {
		n.trials--
	}

	if err == nil {
		n.state = stateClosed
		n.failures = 0
		return
	}

	n.failures++

	if trial || n.failures >= n.cfg.FailureThreshold {
		n.state = stateOpen
		n.openedAt = n.now()
	}
}

// State reports the breaker position.
func (n *ProtectedNotifier) State() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return string(n.state)
}
