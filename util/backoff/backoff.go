// Package backoff produces delay sequences used between retry attempts.
//
// A Backoff is stateful: every call returns the next delay of its sequence.
// Create a fresh one per retry sequence, usually through a Factory, so that
// independent operations never share a counter.
package backoff

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const maxShift = 62

// Sequence kinds accepted by NewFactory
const (
	KindLinear      = "linear"
	KindExponential = "exponential"
	KindConstant    = "constant"
)

var ErrUnknownKind = errors.New("unknown backoff kind")

// Backoff returns the next delay on each call.
type Backoff func() time.Duration

// Factory creates a fresh Backoff for every top-level operation.
type Factory func() Backoff

// Linear returns step, 2*step, 3*step, ...
func Linear(step time.Duration) Backoff {
	var n int64
	return func() time.Duration {
		n++
		if step > 0 && n > math.MaxInt64/int64(step) {
			return time.Duration(math.MaxInt64)
		}
		return time.Duration(n) * step
	}
}

// LinearBackoff is the default policy of the map repository: 1s, 2s, 3s, ...
func LinearBackoff() Backoff {
	return Linear(time.Second)
}

// Constant always returns d.
func Constant(d time.Duration) Backoff {
	return func() time.Duration {
		return d
	}
}

// Exponential returns base, 2*base, 4*base, ... saturating at math.MaxInt64.
func Exponential(base time.Duration) Backoff {
	var attempt int
	return func() time.Duration {
		d := exponential(base, attempt)
		if attempt < maxShift {
			attempt++
		}
		return d
	}
}

func exponential(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	multiplier := int64(1) << attempt
	if int64(base) > math.MaxInt64/multiplier {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(int64(base) * multiplier)
}

// WithCap limits every delay of b to max.
func WithCap(b Backoff, max time.Duration) Backoff {
	return func() time.Duration {
		if d := b(); d < max {
			return d
		}
		return max
	}
}

// NewFactory returns a Factory of kind sequences starting at step. An empty kind is linear.
// A positive max caps every delay.
func NewFactory(kind string, step, max time.Duration) (Factory, error) {
	var newBackoff func(step time.Duration) Backoff
	switch kind {
	case "", KindLinear:
		newBackoff = Linear
	case KindExponential:
		newBackoff = Exponential
	case KindConstant:
		newBackoff = Constant
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return func() Backoff {
		b := newBackoff(step)
		if max > 0 {
			b = WithCap(b, max)
		}
		return b
	}, nil
}
