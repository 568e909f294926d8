package limiter

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// New returns a Limiter that lets one request through immediately and
// then at most one request per delay.
func New(name string, delay time.Duration) *Limiter {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Limiter{
		name: name,
		lim:  rate.NewLimiter(limit, 1),
	}
}

// A Limiter spaces out requests to one upstream. It also remembers when
// the upstream last asked us to back off.
type Limiter struct {
	name string
	lim  *rate.Limiter

	mu     sync.Mutex
	nextAt time.Time
}

// Wait blocks until the next request may be made, or the context is done.
func (lim *Limiter) Wait(ctx context.Context) error {
	lim.mu.Lock()
	nextAt := lim.nextAt
	lim.mu.Unlock()

	if !nextAt.IsZero() {
		if dur := time.Until(nextAt); dur > 0 {
			if dur > time.Second {
				log.Info().
					Str("limiter", lim.name).
					Dur("wait", dur.Truncate(time.Second)).
					Msg("waiting for upstream backoff")
			}

			timer := time.NewTimer(dur)
			defer timer.Stop()
		wait:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				break wait
			}
		}
	}

	return lim.lim.Wait(ctx)
}

// SetNextAt records a Retry-After header value (in seconds). No further
// request passes Wait until that much time has gone by. An empty or
// unparseable value backs off for a minute.
func (lim *Limiter) SetNextAt(retryAfter string) {
	seconds, err := strconv.ParseInt(retryAfter, 10, 64)
	if err != nil || seconds < 0 {
		seconds = 60
	}
	waitTime := time.Duration(seconds)*time.Second + time.Second

	lim.mu.Lock()
	defer lim.mu.Unlock()
	lim.nextAt = time.Now().Add(waitTime)
}

// NextAt returns the backoff deadline, or the zero time if there is none.
func (lim *Limiter) NextAt() time.Time {
	lim.mu.Lock()
	defer lim.mu.Unlock()
	return lim.nextAt
}
