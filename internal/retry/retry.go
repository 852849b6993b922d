package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Timeout    time.Duration
}

// WithRetry runs operation until it succeeds, the retry budget is exhausted,
// or ctx is cancelled. Each attempt gets its own timeout context.
func WithRetry[T any](ctx context.Context, config Config, operation func(context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		opCtx, cancel := context.WithTimeout(ctx, config.Timeout)
		result, err := operation(opCtx)
		cancel()

		if err == nil {
			return result, nil
		}

		log.Debug().
			Err(err).
			Int("attempt", attempt+1).
			Msg("Operation failed")

		if attempt < config.MaxRetries {
			delay := backoffDelay(attempt, config.BaseDelay, config.MaxDelay)
			log.Debug().
				Dur("delay", delay).
				Int("next_attempt", attempt+2).
				Msg("Retrying after delay")

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
		return zero, fmt.Errorf("operation failed after %d attempts: %w", config.MaxRetries+1, err)
	}
	return zero, fmt.Errorf("unexpected: exceeded retry loop")
}

func backoffDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	// Cap attempt at 30 to prevent overflow (2^30 is safe for int)
	safeAttempt := min(attempt, 30)
	delay := time.Duration(1<<safeAttempt) * baseDelay

	if delay > maxDelay {
		delay = maxDelay
	}

	// Jitter between 0.5x and 1.5x to avoid thundering herd
	jitter := 0.5 + rand.Float64()
	delay = time.Duration(float64(delay) * jitter)

	if delay > maxDelay {
		delay = maxDelay
	}

	return delay
}
