package lib

import (
	"math/rand/v2"
	"time"
)

// Jitter returns a random delay between zero and min(maxDelay, base * 2^attempt), known as full jitter.
func Jitter(base, maxDelay time.Duration, attempt int) time.Duration {
	ceiling := min(maxDelay, base*time.Duration(1<<min(attempt, 30)))
	if ceiling <= 0 {
		return 0
	}
	return rand.N(ceiling)
}
