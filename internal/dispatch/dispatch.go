// Package dispatch delivers verification codes out of band.
package dispatch

import (
	"context"
	"time"
)

// Dispatcher sends a verification code to the address. The bool reports
// whether delivery was accepted; err carries transport failures.
type Dispatcher interface {
	Send(ctx context.Context, email, code string) (bool, error)
}

// DefaultSimulatedDelay matches the original flow's artificial delivery delay.
const DefaultSimulatedDelay = time.Second

// Simulated models out-of-band delivery with a fixed artificial delay and no
// failure path: it always reports success unless the context is cancelled.
type Simulated struct {
	Delay time.Duration
}

// NewSimulated returns a simulated dispatcher. delay <= 0 uses
// DefaultSimulatedDelay.
func NewSimulated(delay time.Duration) *Simulated {
	if delay <= 0 {
		delay = DefaultSimulatedDelay
	}
	return &Simulated{Delay: delay}
}

// Send waits for the artificial delay and reports success. Does not log the code.
func (s *Simulated) Send(ctx context.Context, email, code string) (bool, error) {
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-timer.C:
		return true, nil
	}
}
