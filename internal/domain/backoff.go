package domain

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// BackoffPolicy hands out the wait schedule for one submission loop. Each
// call returns a fresh schedule, so concurrent workers never share state.
type BackoffPolicy interface {
	NewBackOff() backoff.BackOff
}

// BackoffFunc adapts a plain constructor to BackoffPolicy.
type BackoffFunc func() backoff.BackOff

func (f BackoffFunc) NewBackOff() backoff.BackOff { return f() }

// NewBackoffPolicy builds the policy named by kind. The exponential policy
// doubles from base and is capped at maxDelay when maxDelay is set.
func NewBackoffPolicy(kind string, base, maxDelay time.Duration) (BackoffPolicy, error) {
	switch kind {
	case "", BackoffNone:
		return BackoffFunc(func() backoff.BackOff { return &backoff.ZeroBackOff{} }), nil
	case BackoffFixed:
		return BackoffFunc(func() backoff.BackOff { return backoff.NewConstantBackOff(base) }), nil
	case BackoffExponential:
		return BackoffFunc(func() backoff.BackOff { return newExponentialBackOff(base, maxDelay) }), nil
	default:
		return nil, fmt.Errorf("unknown backoff policy %q", kind)
	}
}

func newExponentialBackOff(base, maxDelay time.Duration) *backoff.ExponentialBackOff {
	if maxDelay <= 0 {
		maxDelay = time.Duration(math.MaxInt64 / 4)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = maxDelay
	b.Reset()

	return b
}

// sleepContext waits for d or until ctx is done. backoff.Stop and other
// non-positive waits return at once.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
