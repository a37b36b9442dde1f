package feed

import (
	"errors"
	"sync"
	"time"
)

// ErrProviderSuspended is returned while a provider's breaker is open
// after repeated fetch failures.
var ErrProviderSuspended = errors.New("provider suspended after repeated failures")

type breakerState string

const (
	breakerClosed   breakerState = "CLOSED"
	breakerOpen     breakerState = "OPEN"
	breakerHalfOpen breakerState = "HALF_OPEN"
)

// breaker keeps a long-running watch from hammering a remote feed that
// keeps failing. Consecutive failures open it; after the cooldown one
// probe request is let through, and enough probe successes close it
// again.
type breaker struct {
	failureThreshold int
	successThreshold int
	cooldown         time.Duration

	mu          sync.Mutex
	st          breakerState
	failures    int
	successes   int
	lastFailure time.Time
}

func newBreaker(failureThreshold, successThreshold int, cooldown time.Duration) *breaker {
	return &breaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		cooldown:         cooldown,
		st:               breakerClosed,
	}
}

// allow reports whether a request may proceed, transitioning from open
// to half-open once the cooldown has passed.
func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.st == breakerOpen {
		if time.Since(b.lastFailure) < b.cooldown {
			return ErrProviderSuspended
		}
		b.transition(breakerHalfOpen)
	}
	return nil
}

func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.st {
	case breakerHalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.transition(breakerClosed)
		}
	case breakerClosed:
		b.failures = 0
	}
}

func (b *breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = time.Now()
	switch b.st {
	case breakerClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.transition(breakerOpen)
		}
	case breakerHalfOpen:
		b.transition(breakerOpen)
	}
}

func (b *breaker) transition(st breakerState) {
	b.st = st
	b.failures = 0
	b.successes = 0
}

func (b *breaker) state() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.st
}
