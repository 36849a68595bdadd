package formserver

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/andreyvit/formkit/httperrors"
	"github.com/andreyvit/formkit/logging"
)

var ErrTooManyRequests = httperrors.TooManyRequests

const DefaultIdleTimeout = 10 * time.Minute

type RateLimitSettings struct {
	PerSec rate.Limit
	Burst  int

	// MaxDelay is how long a request may be held back before it is refused.
	MaxDelay time.Duration

	// IdleTimeout is how long an unused key's state is kept. It is never
	// shorter than the time to refill a full burst; DefaultIdleTimeout when
	// zero.
	IdleTimeout time.Duration
}

// RateLimiter limits submissions per client key. Keys are typically remote
// IP addresses; the empty key is shared by all clients.
type RateLimiter struct {
	Settings RateLimitSettings
	Now      func() time.Time

	mut       sync.Mutex
	limiters  map[string]*keyLimiter
	lastPrune time.Time
}

type keyLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(settings RateLimitSettings) *RateLimiter {
	return &RateLimiter{
		Settings: settings,
		Now:      time.Now,
		limiters: make(map[string]*keyLimiter),
	}
}

func (limiter *RateLimiter) Limiter(key string) *rate.Limiter {
	return limiter.limiterAt(key, limiter.Now())
}

func (limiter *RateLimiter) limiterAt(key string, now time.Time) *rate.Limiter {
	limiter.mut.Lock()
	defer limiter.mut.Unlock()
	limiter.pruneLocked(now)
	kl := limiter.limiters[key]
	if kl == nil {
		kl = &keyLimiter{lim: rate.NewLimiter(limiter.Settings.PerSec, limiter.Settings.Burst)}
		limiter.limiters[key] = kl
	}
	kl.lastSeen = now
	return kl.lim
}

// pruneLocked forgets keys idle for longer than IdleTimeout, scanning at most
// once per IdleTimeout.
func (limiter *RateLimiter) pruneLocked(now time.Time) {
	idle := limiter.idleTimeout()
	if now.Sub(limiter.lastPrune) < idle {
		return
	}
	limiter.lastPrune = now
	for key, kl := range limiter.limiters {
		if now.Sub(kl.lastSeen) > idle {
			delete(limiter.limiters, key)
		}
	}
}

func (limiter *RateLimiter) idleTimeout() time.Duration {
	idle := limiter.Settings.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	if perSec := limiter.Settings.PerSec; perSec > 0 && perSec != rate.Inf {
		refill := time.Duration(float64(limiter.Settings.Burst) / float64(perSec) * float64(time.Second))
		if refill > idle {
			idle = refill
		}
	}
	return idle
}

// Len returns the number of keys being tracked.
func (limiter *RateLimiter) Len() int {
	limiter.mut.Lock()
	defer limiter.mut.Unlock()
	return len(limiter.limiters)
}

// Enforce takes one event from key's budget. A short wait is slept off; a
// wait longer than MaxDelay fails with ErrTooManyRequests.
func (limiter *RateLimiter) Enforce(ctx context.Context, key string) error {
	if limiter == nil {
		return nil
	}
	now := limiter.Now()
	rsrv := limiter.limiterAt(key, now).ReserveN(now, 1)
	if !rsrv.OK() {
		logging.From(ctx).Info("ratelimit: burst exhausted", "key", key)
		return ErrTooManyRequests
	}
	delay := rsrv.DelayFrom(now)
	if delay > limiter.Settings.MaxDelay {
		rsrv.CancelAt(now)
		logging.From(ctx).Info("ratelimit: hard rate limit exceeded", "key", key, "refused_delay_ms", delay.Milliseconds())
		return ErrTooManyRequests
	}
	if delay > 0 {
		logging.From(ctx).Debug("ratelimit: soft rate limit exceeded", "key", key, "delay_ms", delay.Milliseconds())
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			rsrv.CancelAt(now)
			return ctx.Err()
		}
	}
	return nil
}
