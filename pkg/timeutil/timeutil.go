package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// DurationPtr is a helper function to create a pointer to a time.Duration
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}

// MaxDuration returns the largest duration in durations, or zero for an
// empty slice. It does not mutate its input.
func MaxDuration(durations []time.Duration) time.Duration {
	var max time.Duration
	for i, d := range durations {
		if i == 0 || d > max {
			max = d
		}
	}
	return max
}

// ComputeJitter returns a uniformly distributed random duration in [0, max).
// A non-positive max always yields zero.
func ComputeJitter(max time.Duration, rng rand.Rand) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(int64(max)))
}

// ExponentialBackoffDelay computes the delay before the next attempt given
// the attempt number (1-indexed, the attempt that just failed), a jitter
// bound, a seeded random source, and the backoff parameters. The result is
// capped at MaxDuration. A BackoffParam with Multiplier 1.0 yields a fixed
// delay regardless of attempt number, which is how the indexing handoff's
// flat 60-second backoff is expressed through the same engine used for
// exponential cases.
func ExponentialBackoffDelay(attempt int, jitter time.Duration, rng rand.Rand, param BackoffParam) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	raw := float64(param.InitialDuration()) * math.Pow(param.Multiplier(), float64(attempt-1))
	delay := time.Duration(raw)

	if cap := param.MaxDuration(); cap > 0 && delay > cap {
		delay = cap
	}

	return delay + ComputeJitter(jitter, rng)
}
