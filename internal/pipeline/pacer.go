package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// Pacer spaces provider requests with a token bucket. Callers take one token
// per request; cache hits never reach the pacer.
type Pacer struct {
	limiter *rate.Limiter
	clock   clockwork.Clock
}

// NewPacer creates a pacer allowing perSecond requests with the given burst.
// A non-positive rate disables pacing. A nil clock uses real time.
func NewPacer(perSecond float64, burst int, clock clockwork.Clock) *Pacer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	p := &Pacer{clock: clock}
	if perSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return p
}

// Wait blocks until a request may be issued and returns how long it waited.
// If ctx ends first the reserved token is returned to the bucket.
func (p *Pacer) Wait(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if p.limiter == nil {
		return 0, nil
	}

	now := p.clock.Now()
	r := p.limiter.ReserveN(now, 1)
	if !r.OK() {
		return 0, fmt.Errorf("pacer: burst %d too small", p.limiter.Burst())
	}
	delay := r.DelayFrom(now)
	if delay <= 0 {
		return 0, nil
	}

	timer := p.clock.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		r.CancelAt(p.clock.Now())
		return p.clock.Since(now), ctx.Err()
	case <-timer.Chan():
		return delay, nil
	}
}
