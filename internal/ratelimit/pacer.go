package ratelimit

import (
	"context"
	"time"
)

// Pacer spaces successive outbound verification calls.
type Pacer interface {
	Pause(ctx context.Context) error
}

// DelayPacer pauses for a fixed duration between calls. The upstream
// verification endpoint enforces an implicit rate limit; a fixed gap
// between serialized calls is enough to stay under it without external
// coordination.
type DelayPacer struct {
	delay time.Duration
}

func NewDelayPacer(delay time.Duration) *DelayPacer {
	if delay < 0 {
		delay = 0
	}
	return &DelayPacer{delay: delay}
}

func (p *DelayPacer) Delay() time.Duration {
	if p == nil {
		return 0
	}
	return p.delay
}

func (p *DelayPacer) Pause(ctx context.Context) error {
	if p == nil || p.delay <= 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
