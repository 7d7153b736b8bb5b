package retry

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	if p.Mode != BackoffLinear {
		t.Errorf("expected linear mode, got %s", p.Mode)
	}
}

func TestNewPolicyFallbacks(t *testing.T) {
	p := NewPolicy("warp", 0, 0, -1)
	def := DefaultPolicy()
	if p != def {
		t.Errorf("invalid settings should fall back to defaults, got %+v", p)
	}
}

func TestDelayModes(t *testing.T) {
	cases := []struct {
		mode  BackoffMode
		retry int
		want  time.Duration
	}{
		{BackoffFixed, 1, time.Second},
		{BackoffFixed, 5, time.Second},
		{BackoffLinear, 3, 3 * time.Second},
		{BackoffExponential, 1, time.Second},
		{BackoffExponential, 3, 4 * time.Second},
		{BackoffExponential, 10, 30 * time.Second}, // capped
	}
	for _, tc := range cases {
		p := NewPolicy(tc.mode, time.Second, 30*time.Second, 3)
		if got := p.Delay(tc.retry); got != tc.want {
			t.Errorf("%s retry %d: expected %v, got %v", tc.mode, tc.retry, tc.want, got)
		}
	}
}

func TestDelayZeroForNonPositiveRetry(t *testing.T) {
	p := DefaultPolicy()
	if p.Delay(0) != 0 {
		t.Error("retry 0 should have no delay")
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 3)
	var delays []time.Duration
	attempts := 0

	err := Do(p, func(d time.Duration) { delays = append(delays, d) }, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if len(delays) != 2 {
		t.Errorf("expected 2 sleeps, got %d", len(delays))
	}
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 2)
	attempts := 0

	err := Do(p, func(time.Duration) {}, func() error {
		attempts++
		return errors.New("still broken")
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", attempts)
	}
}
