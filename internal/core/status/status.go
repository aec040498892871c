// Package status tracks backend connectivity as a tri-state liveness
// signal. It is a deliberately simple fixed-interval poll, not a
// reconnection protocol: no backoff, no jitter, no retries.
package status

import (
	"context"
	"time"

	"github.com/minjae-ko/docchat/internal/core/api"
)

// State is the connectivity flag gating UI interactivity.
type State int

const (
	// Checking is the initial state before the first probe completes.
	Checking State = iota
	Online
	Offline
)

func (s State) String() string {
	switch s {
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return "checking"
	}
}

// Classify maps one health probe outcome to a state. Any transport failure
// (timeout, refused connection, non-2xx) counts as offline, as does a
// reachable backend that does not report the healthy sentinel.
func Classify(h *api.HealthStatus, err error) State {
	if err != nil || h == nil {
		return Offline
	}
	if h.Status == api.HealthyStatus {
		return Online
	}
	return Offline
}

// Monitor polls the health endpoint on a fixed interval and delivers state
// transitions on a channel. Used by the CLI watch mode; the TUI drives its
// own probe ticks through the event loop instead.
type Monitor struct {
	client   *api.Client
	interval time.Duration
}

func NewMonitor(client *api.Client, interval time.Duration) *Monitor {
	return &Monitor{client: client, interval: interval}
}

// Run probes immediately and then on every tick, sending each result until
// ctx is cancelled. The channel is closed on return.
func (m *Monitor) Run(ctx context.Context) <-chan State {
	states := make(chan State, 1)

	go func() {
		defer close(states)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			h, err := m.client.Health(ctx)
			select {
			case states <- Classify(h, err):
			case <-ctx.Done():
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return states
}
