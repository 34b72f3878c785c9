package stage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bookvoice/internal/library"
	"bookvoice/internal/logging"
	"bookvoice/internal/services"
)

// Options controls one stage execution for one book.
type Options struct {
	Logger  *slog.Logger
	Handler Handler
	Book    *library.Book
	// Acquire blocks until the stage's gate slot is available. It is called
	// once per attempt so a failed attempt never holds its slot across the
	// retry backoff. Nil means the stage is ungated.
	Acquire func(ctx context.Context) error
	// Release returns the gate slot. Nil when Acquire is nil.
	Release func()
	// Backoff is the wait between attempts.
	Backoff time.Duration
}

// Run executes a stage with bounded retries. The gate slot is held only
// while an attempt is in flight; in particular a timed-out conversion
// releases the mutex before its retry waits. Returns the last error when
// all attempts fail or the first terminal error.
//
// Run cancellation never interrupts an attempt mid-flight: the attempt runs
// on a context detached from ctx's cancellation (per-attempt timeouts still
// apply), and ctx is consulted only at the attempt boundaries — before
// acquiring the gate and before a retry wait. A transfer or conversion that
// is already underway when the run is cancelled finishes its stage; the
// caller aborts the book at the next stage boundary.
func Run(ctx context.Context, opts Options) error {
	if opts.Handler == nil {
		return fmt.Errorf("stage handler required")
	}
	if opts.Book == nil {
		return fmt.Errorf("book required")
	}
	logger := logging.WithContext(ctx, opts.Logger)

	attempts := opts.Handler.Retries() + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.Acquire != nil {
			if err := opts.Acquire(ctx); err != nil {
				return err
			}
		}
		opts.Book.Status = opts.Handler.Processing()
		if attempt == 1 {
			logger.Info("stage started",
				logging.String(logging.FieldEventType, "stage_start"),
			)
		} else {
			logger.Info("stage retrying",
				logging.String(logging.FieldEventType, "stage_retry"),
				logging.Int("attempt", attempt),
			)
		}

		err := opts.Handler.Execute(context.WithoutCancel(ctx), opts.Book)
		if opts.Release != nil {
			opts.Release()
		}
		if err == nil {
			logger.Info("stage completed",
				logging.String(logging.FieldEventType, "stage_complete"),
			)
			return nil
		}
		lastErr = err

		if !services.IsRetryable(err) || attempt == attempts {
			logger.Error("stage failed",
				logging.String(logging.FieldEventType, "stage_failure"),
				logging.Int("attempt", attempt),
				logging.Error(err),
			)
			return err
		}
		logger.Warn("stage attempt failed",
			logging.Int("attempt", attempt),
			logging.Error(err),
		)
		if opts.Backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.Backoff):
			}
		}
	}
	return lastErr
}
