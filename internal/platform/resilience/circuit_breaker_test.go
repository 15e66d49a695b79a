package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b := NewCircuitBreaker(2, 5*time.Second, 1)

	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open trial call to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open trial call, got %s", state)
	}
}

func TestCircuitBreaker_CallIgnoresNonFailures(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute, 1)
	errBadInput := errors.New("bad input")
	errTransient := errors.New("transient")

	isFailure := func(err error) bool { return errors.Is(err, errTransient) }

	if err := b.Call(func() error { return errBadInput }, isFailure); !errors.Is(err, errBadInput) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after non-failure error, got %s", state)
	}

	if err := b.Call(func() error { return errTransient }, isFailure); !errors.Is(err, errTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after transient failure, got %s", state)
	}

	called := false
	err := b.Call(func() error { called = true; return nil }, isFailure)
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected rejected call while open, err=%v called=%v", err, called)
	}
}

func TestCircuitBreaker_NilPassesThrough(t *testing.T) {
	var b *CircuitBreaker
	calls := 0
	for range 3 {
		_ = b.Call(func() error { calls++; return errors.New("boom") }, nil)
	}
	if calls != 3 || b.State() != CircuitStateClosed {
		t.Fatalf("nil breaker should never trip: calls=%d state=%s", calls, b.State())
	}
	if NewCircuitBreakerFromConfig(CircuitBreakerConfig{Enabled: false}) != nil {
		t.Fatalf("disabled config should build a nil breaker")
	}
}

func TestCircuitBreaker_ReportsStateChanges(t *testing.T) {
	var changes []string
	b := NewCircuitBreakerFromConfig(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Second,
		HalfOpenMaxReq:   1,
		Name:             "discord",
		OnStateChange: func(name string, from, to CircuitState) {
			changes = append(changes, name+":"+string(from)+"->"+string(to))
		},
	})
	now := time.Date(2026, 5, 2, 20, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	_ = b.Call(func() error { return errors.New("502") }, nil)
	now = now.Add(2 * time.Second)
	_ = b.Call(func() error { return nil }, nil)

	want := []string{"discord:closed->open", "discord:open->half_open", "discord:half_open->closed"}
	if len(changes) != len(want) {
		t.Fatalf("unexpected transitions: %v", changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("transition %d: got %s want %s", i, changes[i], want[i])
		}
	}
}
