package feed

import (
	"testing"
	"time"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := newBreaker(3, 1, time.Minute)

	for i := 0; i < 2; i++ {
		b.recordFailure()
		if err := b.allow(); err != nil {
			t.Fatalf("Breaker rejected request after %d failures: %v", i+1, err)
		}
	}

	b.recordFailure()
	if b.state() != breakerOpen {
		t.Fatalf("State after threshold = %s, want %s", b.state(), breakerOpen)
	}
	if err := b.allow(); err != ErrProviderSuspended {
		t.Errorf("allow() while open = %v, want ErrProviderSuspended", err)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := newBreaker(3, 1, time.Minute)

	b.recordFailure()
	b.recordFailure()
	b.recordSuccess()
	b.recordFailure()
	b.recordFailure()

	if b.state() != breakerClosed {
		t.Errorf("State = %s, want %s (success should reset the count)", b.state(), breakerClosed)
	}
}

func TestBreakerHalfOpenProbeAfterCooldown(t *testing.T) {
	b := newBreaker(1, 2, 20*time.Millisecond)

	b.recordFailure()
	if b.state() != breakerOpen {
		t.Fatalf("State = %s, want %s", b.state(), breakerOpen)
	}

	time.Sleep(30 * time.Millisecond)
	if err := b.allow(); err != nil {
		t.Fatalf("allow() after cooldown = %v, want probe allowed", err)
	}
	if b.state() != breakerHalfOpen {
		t.Fatalf("State = %s, want %s", b.state(), breakerHalfOpen)
	}

	// One success is not enough to close with successThreshold 2.
	b.recordSuccess()
	if b.state() != breakerHalfOpen {
		t.Errorf("State after 1 probe success = %s, want %s", b.state(), breakerHalfOpen)
	}
	b.recordSuccess()
	if b.state() != breakerClosed {
		t.Errorf("State after 2 probe successes = %s, want %s", b.state(), breakerClosed)
	}
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	b := newBreaker(1, 1, 20*time.Millisecond)

	b.recordFailure()
	time.Sleep(30 * time.Millisecond)
	if err := b.allow(); err != nil {
		t.Fatalf("allow() after cooldown = %v", err)
	}

	b.recordFailure()
	if b.state() != breakerOpen {
		t.Errorf("State after failed probe = %s, want %s", b.state(), breakerOpen)
	}
	if err := b.allow(); err != ErrProviderSuspended {
		t.Errorf("allow() after failed probe = %v, want ErrProviderSuspended", err)
	}
}
