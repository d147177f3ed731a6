package llm

import (
	"math/rand/v2"
	"time"
)

// RetryConfig controls how connection attempts to the generator are retried.
// Retry applies only until the response stream is open: a fragment stream is
// not restartable, so a failure after the first fragment is never retried.
type RetryConfig struct {
	// MaxAttempts is the total number of connection attempts.
	MaxAttempts int

	// BackoffBase is the wait after the first failed attempt.
	BackoffBase time.Duration

	// BackoffMultiplier grows the wait on each further attempt.
	BackoffMultiplier float64

	// MaxBackoff caps the wait between attempts.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the retry settings used when none are given.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       2 * time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
}

// backoff computes the wait before the next attempt, with +/- 25% jitter so
// concurrent clients do not retry in lockstep.
func (rc RetryConfig) backoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= rc.BackoffMultiplier
	}

	wait := time.Duration(float64(rc.BackoffBase) * multiplier)
	if wait > rc.MaxBackoff {
		wait = rc.MaxBackoff
	}

	jitter := float64(wait) * 0.25 * (rand.Float64()*2 - 1)
	return wait + time.Duration(jitter)
}
