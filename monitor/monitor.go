// Package monitor watches one unattended install until it reaches a
// terminal state.
//
// Polling "until shut off" alone cannot tell a legitimately slow install
// from one hung waiting for input that never arrives (a bad config, an
// unreachable endpoint). The disk-activity heuristic converts that infinite
// hang into a bounded, diagnosable failure: a running domain whose I/O
// counters stop advancing for the stuck threshold is declared stuck well
// before the overall timeout.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/hatchery/config"
	"github.com/projecteru2/hatchery/hypervisor"
	"github.com/projecteru2/hatchery/types"
)

// Monitor polls a domain's state machine until completion or failure.
type Monitor struct {
	hv       hypervisor.Hypervisor
	timeout  time.Duration
	interval time.Duration
	stuck    time.Duration
}

// New creates a Monitor with thresholds from config.
func New(hv hypervisor.Hypervisor, mc config.MonitorConfig) *Monitor {
	return &Monitor{
		hv:       hv,
		timeout:  time.Duration(mc.TimeoutSeconds) * time.Second,
		interval: time.Duration(mc.PollIntervalSeconds) * time.Second,
		stuck:    time.Duration(mc.StuckThresholdSeconds) * time.Second,
	}
}

// Await blocks until the install reaches a terminal state:
//
//   - shut off            → nil. A clean power-off at the end of an
//     unattended install is the success signal; the install media is
//     expected to power the machine down when done.
//   - crashed / not found → ErrCrashed / ErrNotFound, immediately.
//   - paused              → resumed; not terminal.
//   - running, no new disk I/O for the stuck threshold (after activity was
//     seen at least once) → ErrStuck.
//   - overall timeout exceeded while non-terminal → ErrTimeout.
func (m *Monitor) Await(ctx context.Context, name string) error {
	logger := log.WithFunc("monitor.Await")
	deadline := time.Now().Add(m.timeout)

	var (
		lastBytes    int64
		seenActivity bool
		lastProgress = time.Now()
	)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		state, err := m.hv.State(ctx, name)
		if err != nil {
			return fmt.Errorf("query state of %s: %w", name, err)
		}

		switch state {
		case types.StateShutOff:
			logger.Infof(ctx, "%s powered off — install complete", name)
			return nil

		case types.StateCrashed:
			return fmt.Errorf("%s: %w", name, types.ErrCrashed)

		case types.StateNotFound:
			return fmt.Errorf("%s: %w", name, types.ErrNotFound)

		case types.StatePaused:
			logger.Warnf(ctx, "%s paused during install — resuming", name)
			if err := m.hv.Resume(ctx, name); err != nil {
				logger.Warnf(ctx, "resume %s: %v", name, err)
			}

		case types.StateRunning:
			// A counter read failure is treated as "no new activity", not
			// as an error: a transient virsh hiccup must not fail an
			// otherwise healthy install.
			bytes, err := m.hv.BlockActivity(ctx, name)
			if err == nil && bytes != lastBytes {
				lastBytes = bytes
				seenActivity = true
				lastProgress = time.Now()
			} else if seenActivity && time.Since(lastProgress) > m.stuck {
				return fmt.Errorf("%s: no disk activity for %s: %w", name, m.stuck, types.ErrStuck)
			}

		default:
			// Transitional or unknown state — keep polling against the
			// overall timeout.
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%s: still %s after %s: %w", name, state, m.timeout, types.ErrTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.interval):
		}
	}
}
