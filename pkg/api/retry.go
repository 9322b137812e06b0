package api

import (
	"slices"
	"time"
)

// RetryPolicy controls how external generator and checker calls are
// retried on transient failure. MaxAttempts includes the first attempt:
//
//	MaxAttempts = 1 => no retries (just the initial call)
//	MaxAttempts = 5 => initial call + up to 4 retries
//
// Only failures carrying a code in RetryableCodes (and per-attempt
// timeouts) are retried; everything else is fatal on first occurrence.
type RetryPolicy struct {
	MaxAttempts int

	// InitialBackoff is the delay before the first retry. It is not
	// applied before the first attempt. If zero, retries are immediate.
	InitialBackoff time.Duration

	// BackoffMultiplier grows the delay after each failed attempt.
	// Values <= 0 default to 2.0.
	BackoffMultiplier float64

	// MaxBackoff caps the per-retry delay; if <= 0, there is no cap.
	MaxBackoff time.Duration

	// RetryableCodes is the set of failure codes that count as transient.
	RetryableCodes []int
}

// DefaultRetryPolicy returns the policy used when none is configured:
// five attempts backing off from one second by a factor of seven, retrying
// rate-limit and server-side failure codes.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       5,
		InitialBackoff:    time.Second,
		BackoffMultiplier: 7,
		MaxBackoff:        2 * time.Minute,
		RetryableCodes:    []int{429, 500, 503, 504},
	}
}

// Retryable reports whether the given failure code is in the policy's
// retryable set.
func (p RetryPolicy) Retryable(code int) bool {
	return slices.Contains(p.RetryableCodes, code)
}

// Delay returns the backoff before the retry that follows the given
// 1-based failed attempt: InitialBackoff grown by BackoffMultiplier per
// prior attempt, capped at MaxBackoff.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.InitialBackoff <= 0 || attempt < 1 {
		return 0
	}
	mult := p.BackoffMultiplier
	if mult <= 0 {
		mult = 2.0
	}
	d := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * mult)
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}
