package listener

import (
	"math"
	"math/rand/v2"
	"time"
)

// ExponentialBackoff returns the wait before resubscribe attempt n.
func ExponentialBackoff(attempt int) time.Duration {
	base := 500 * time.Millisecond
	capDelay := 30 * time.Second

	// attempt=0 => 500ms
	// attempt=1 => 1s
	// attempt=2 => 2s
	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(base) * multiple)

	if delay > capDelay || delay <= 0 {
		delay = capDelay
	}

	// up to 250ms jitter
	delay += time.Duration(rand.IntN(250)) * time.Millisecond
	return delay
}
