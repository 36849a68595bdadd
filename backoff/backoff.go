// Package backoff retries an operation: a few immediate retries, then a few
// at a fixed delay, then exponentially growing ones up to a cap.
package backoff

import (
	"context"
	"fmt"
	"time"

	"github.com/andreyvit/formkit/logging"
)

type Policy struct {
	Immediate int

	Fixed      int
	FixedDelay time.Duration

	Growing  int
	MaxDelay time.Duration // no cap when zero
	Factor   float64       // 2 when zero
}

// ConnectPolicy gives a freshly started backing service about half a minute
// to come up.
var ConnectPolicy = Policy{
	Immediate:  1,
	Fixed:      2,
	FixedDelay: 500 * time.Millisecond,
	Growing:    5,
	MaxDelay:   10 * time.Second,
}

func (p Policy) String() string {
	return fmt.Sprintf("%d + %d/%v + %d", p.Immediate, p.Fixed, p.FixedDelay, p.Growing)
}

// Delay returns the wait after the given number of failed attempts, or false
// when no retries are left.
func (p Policy) Delay(failures int) (time.Duration, bool) {
	if failures <= 0 {
		panic(fmt.Sprintf("backoff: invalid failure count %d", failures))
	}
	retry := failures - 1
	if retry < p.Immediate {
		return 0, true
	}
	retry -= p.Immediate
	if retry < p.Fixed {
		return p.FixedDelay, true
	}
	retry -= p.Fixed
	if retry >= p.Growing {
		return 0, false
	}

	factor := p.Factor
	if factor == 0 {
		factor = 2
	}
	delay := time.Duration(factor*float64(p.FixedDelay) + 0.5)
	for ; retry > 0; retry-- {
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			break
		}
		delay = time.Duration(factor*float64(delay) + 0.5)
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay, true
}

// Retry calls f until it succeeds, the policy runs out of retries or ctx is
// done, and returns the last error.
func Retry(ctx context.Context, p Policy, what string, f func(ctx context.Context) error) error {
	for failures := 1; ; failures++ {
		err := f(ctx)
		if err == nil {
			return nil
		}
		delay, ok := p.Delay(failures)
		if !ok {
			return fmt.Errorf("%s: giving up after %d attempts: %w", what, failures, err)
		}
		logging.From(ctx).Warn("backoff: retrying", "what", what, "attempt", failures, "delay", delay, "err", err)
		if delay == 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: %w (last error: %v)", what, ctx.Err(), err)
		}
	}
}
