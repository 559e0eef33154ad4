package utils

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/artie-labs/minisync/lib"
)

// WithJitteredRetries calls f until it succeeds, sleeping a jittered exponential backoff between attempts. It gives up
// after maxAttempts calls or once ctx is done.
func WithJitteredRetries[T any](ctx context.Context, base, maxDelay time.Duration, maxAttempts int, f func(attempt int) (T, error)) (T, error) {
	maxAttempts = max(maxAttempts, 1)
	var result T
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			sleepDuration := lib.Jitter(base, maxDelay, attempt)
			slog.Info("An error occurred, retrying after delay...",
				slog.Duration("sleep", sleepDuration),
				slog.Int("attemptsLeft", maxAttempts-attempt),
				slog.Any("err", err),
			)

			select {
			case <-ctx.Done():
				return result, errors.Join(err, ctx.Err())
			case <-time.After(sleepDuration):
			}
		}

		result, err = f(attempt)
		if err == nil {
			return result, nil
		}
	}
	return result, err
}
