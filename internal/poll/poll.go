package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Until invokes probe at the configured interval until it reports done,
// the overall timeout elapses, or the context is cancelled. A probe error
// ends the wait immediately.
func Until[T any](ctx context.Context, config Config, probe func(context.Context) (T, bool, error)) (T, error) {
	var zero T

	deadline := time.Now().Add(config.Timeout)
	attempt := 0

	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		attempt++
		result, done, err := probe(ctx)
		if err != nil {
			return zero, err
		}
		if done {
			log.Debug().
				Int("attempts", attempt).
				Msg("Poll condition met")
			return result, nil
		}

		if time.Now().After(deadline) {
			return zero, fmt.Errorf("condition not met after %s (%d attempts)", config.Timeout, attempt)
		}

		log.Debug().
			Int("attempt", attempt).
			Dur("interval", config.Interval).
			Msg("Condition not met, waiting")

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(config.Interval):
		}
	}
}
