package api

import (
	"testing"
	"time"
)

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	if p.MaxAttempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", p.MaxAttempts)
	}
	if p.InitialBackoff != time.Second {
		t.Fatalf("expected 1s initial backoff, got %v", p.InitialBackoff)
	}
	if p.BackoffMultiplier != 7 {
		t.Fatalf("expected multiplier 7, got %v", p.BackoffMultiplier)
	}
	if p.MaxBackoff != 2*time.Minute {
		t.Fatalf("expected 2m cap, got %v", p.MaxBackoff)
	}

	for _, code := range []int{429, 500, 503, 504} {
		if !p.Retryable(code) {
			t.Fatalf("expected %d retryable", code)
		}
	}
	for _, code := range []int{400, 401, 404} {
		if p.Retryable(code) {
			t.Fatalf("expected %d fatal", code)
		}
	}
}

func TestRetryPolicy_DelayGrowsAndCaps(t *testing.T) {
	p := RetryPolicy{
		InitialBackoff:    time.Second,
		BackoffMultiplier: 7,
		MaxBackoff:        2 * time.Minute,
	}

	if d := p.Delay(1); d != time.Second {
		t.Fatalf("attempt 1: expected 1s, got %v", d)
	}
	if d := p.Delay(2); d != 7*time.Second {
		t.Fatalf("attempt 2: expected 7s, got %v", d)
	}
	if d := p.Delay(3); d != 49*time.Second {
		t.Fatalf("attempt 3: expected 49s, got %v", d)
	}
	// 343s exceeds the 120s cap.
	if d := p.Delay(4); d != 2*time.Minute {
		t.Fatalf("attempt 4: expected cap, got %v", d)
	}
	if d := p.Delay(10); d != 2*time.Minute {
		t.Fatalf("attempt 10: expected cap, got %v", d)
	}
}

func TestRetryPolicy_DelayEdgeCases(t *testing.T) {
	// No backoff configured means immediate retries.
	var p RetryPolicy
	if d := p.Delay(3); d != 0 {
		t.Fatalf("expected immediate retry, got %v", d)
	}

	// Multiplier <= 0 defaults to 2.
	p = RetryPolicy{InitialBackoff: time.Second}
	if d := p.Delay(2); d != 2*time.Second {
		t.Fatalf("expected default doubling, got %v", d)
	}

	// Constant backoff.
	p = RetryPolicy{InitialBackoff: 500 * time.Millisecond, BackoffMultiplier: 1}
	if d := p.Delay(5); d != 500*time.Millisecond {
		t.Fatalf("expected constant backoff, got %v", d)
	}
}
