package retention

import (
	"math"
	"math/rand"
	"time"
)

func ExponentialBackoff(attempt int) time.Duration {
	base := 2 * time.Second

	capDelay := 5 * time.Minute
	// attempt=0 => 2s
	// attempt=1 => 4s
	// attempt=2 => 8s

	multiple := math.Pow(2, float64(attempt))

	delay := capDelay
	if raw := float64(base) * multiple; raw < float64(capDelay) {
		delay = time.Duration(raw)
	}

	// small jitter (0–250ms) so several workers do not hit the store together
	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}
