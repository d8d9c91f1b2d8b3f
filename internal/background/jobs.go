package background

import (
	"context"
	"fmt"
	"time"

	"jobscout/internal/provider"
)

// Task names registered by the server
const (
	TaskSessionSweep  = "session_sweep"
	TaskProviderProbe = "provider_probe"
)

// Sweeper drops idle sessions
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}

// Prober checks provider connectivity
type Prober interface {
	CheckConnection(ctx context.Context) provider.ConnectionStatus
}

// SweepTask closes sessions idle for longer than maxIdle
func SweepTask(s Sweeper, maxIdle time.Duration) TaskFunc {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Sweep(maxIdle)
		return nil
	}
}

// ProbeTask checks the provider and hands every result to publish. A
// failed probe is reported as a task failure.
func ProbeTask(p Prober, publish func(provider.ConnectionStatus)) TaskFunc {
	return func(ctx context.Context) error {
		status := p.CheckConnection(ctx)
		if publish != nil {
			publish(status)
		}
		if !status.OK {
			return fmt.Errorf("provider unreachable: %s", status.Message)
		}
		return nil
	}
}
