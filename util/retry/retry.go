//go:generate mockgen -destination mock_retry/mock_retry.go github.com/jljohnson/mindmup/util/retry Coordinator
package retry

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jljohnson/mindmup/app/logger"
	"github.com/jljohnson/mindmup/util/backoff"
	"github.com/jljohnson/mindmup/util/clock"
)

var log = logger.NewNamed("mindmup.retry")

// Task is a single attempt of an operation
type Task func(ctx context.Context) error

// ShouldRetry decides whether a failed attempt is followed by another one.
// It may keep state, e.g. Times counts down an attempt budget.
type ShouldRetry func(err error) bool

// Times allows n retries after the first attempt, n+1 tries in total
func Times(n int) ShouldRetry {
	return func(error) bool {
		if n <= 0 {
			return false
		}
		n--
		return true
	}
}

// If retries only errors matching cond; the budget is consumed only by matching errors
func If(cond func(err error) bool, budget ShouldRetry) ShouldRetry {
	return func(err error) bool {
		return cond(err) && budget(err)
	}
}

// Coordinator repeats a task until it succeeds or shouldRetry says stop.
// It never inspects errors itself: classification belongs to shouldRetry.
type Coordinator interface {
	// Retry runs task, waiting for the next backoff value between attempts.
	// A nil backoff re-invokes the task immediately. The last error is returned unchanged
	// when the budget is exhausted.
	Retry(ctx context.Context, task Task, shouldRetry ShouldRetry, b backoff.Backoff) error
}

type Option func(c *coordinator)

func WithClock(cl clock.Clock) Option {
	return func(c *coordinator) {
		c.clock = cl
	}
}

func New(opts ...Option) Coordinator {
	c := &coordinator{clock: clock.Real()}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	return c
}

type coordinator struct {
	clock clock.Clock
}

func (c *coordinator) Retry(ctx context.Context, task Task, shouldRetry ShouldRetry, b backoff.Backoff) error {
	for attempt := 1; ; attempt++ {
		err := task(ctx)
		if err == nil {
			return nil
		}
		if shouldRetry == nil || !shouldRetry(err) {
			return err
		}
		if b != nil {
			delay := b()
			log.DebugCtx(ctx, "retry scheduled", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
			select {
			case <-ctx.Done():
				return errors.Join(err, ctx.Err())
			case <-c.clock.After(delay):
			}
		} else if ctx.Err() != nil {
			return errors.Join(err, ctx.Err())
		}
	}
}

// Do is Retry for tasks producing a value
func Do[T any](ctx context.Context, c Coordinator, task func(ctx context.Context) (T, error), shouldRetry ShouldRetry, b backoff.Backoff) (res T, err error) {
	err = c.Retry(ctx, func(ctx context.Context) (err error) {
		res, err = task(ctx)
		return
	}, shouldRetry, b)
	return
}
