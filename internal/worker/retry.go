package worker

import (
	"context"
	"log/slog"
	"time"
)

// Retry runs fn up to attempts times with a fixed delay between tries,
// returning the last error when the budget is exhausted. Retried units must
// be idempotent at the granularity of "redo this batch/scan from scratch".
func Retry(
	ctx context.Context,
	log *slog.Logger,
	attempts int,
	delay time.Duration,
	name string,
	fn func(ctx context.Context) error,
) error {
	var err error

	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil || attempt >= attempts {
			return err
		}

		log.WarnContext(ctx, "Unit of work failed, retrying",
			"unit", name, "attempt", attempt, "max_attempts", attempts, "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
