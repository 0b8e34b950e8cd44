package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/hatchery/hypervisor"
	"github.com/projecteru2/hatchery/types"
)

// fakeHypervisor scripts a state sequence and disk counter sequence; the
// last element of each repeats once exhausted.
type fakeHypervisor struct {
	states  []types.InstallState
	bytes   []int64
	stateI  int
	bytesI  int
	resumed int
}

func (f *fakeHypervisor) Available() error { return nil }

func (f *fakeHypervisor) DomainExists(context.Context, string) (bool, error) { return false, nil }

func (f *fakeHypervisor) Install(context.Context, hypervisor.InstallRequest) error { return nil }

func (f *fakeHypervisor) State(context.Context, string) (types.InstallState, error) {
	s := f.states[f.stateI]
	if f.stateI < len(f.states)-1 {
		f.stateI++
	}
	return s, nil
}

func (f *fakeHypervisor) BlockActivity(context.Context, string) (int64, error) {
	if len(f.bytes) == 0 {
		return 0, nil
	}
	b := f.bytes[f.bytesI]
	if f.bytesI < len(f.bytes)-1 {
		f.bytesI++
	}
	return b, nil
}

func (f *fakeHypervisor) Resume(context.Context, string) error {
	f.resumed++
	return nil
}

func (f *fakeHypervisor) HostAddress(context.Context) (string, error) { return "192.168.122.1", nil }

func fastMonitor(hv hypervisor.Hypervisor, timeout, stuck time.Duration) *Monitor {
	return &Monitor{hv: hv, timeout: timeout, interval: time.Millisecond, stuck: stuck}
}

func TestAwaitShutOffSucceeds(t *testing.T) {
	hv := &fakeHypervisor{
		states: []types.InstallState{types.StateRunning, types.StateRunning, types.StateShutOff},
		bytes:  []int64{100, 200},
	}
	m := fastMonitor(hv, time.Second, time.Second)
	require.NoError(t, m.Await(context.Background(), "web-01"))
}

func TestAwaitCrashedFailsImmediately(t *testing.T) {
	hv := &fakeHypervisor{states: []types.InstallState{types.StateCrashed}}
	m := fastMonitor(hv, time.Second, time.Second)
	err := m.Await(context.Background(), "web-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrCrashed)
}

func TestAwaitNotFoundFailsImmediately(t *testing.T) {
	hv := &fakeHypervisor{states: []types.InstallState{types.StateNotFound}}
	m := fastMonitor(hv, time.Second, time.Second)
	err := m.Await(context.Background(), "web-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestAwaitPausedResumes(t *testing.T) {
	hv := &fakeHypervisor{
		states: []types.InstallState{types.StatePaused, types.StateRunning, types.StateShutOff},
	}
	m := fastMonitor(hv, time.Second, time.Second)
	require.NoError(t, m.Await(context.Background(), "web-01"))
	assert.Equal(t, 1, hv.resumed)
}

func TestAwaitStuckBeforeTimeout(t *testing.T) {
	// Activity is seen once, then the counter freezes: stuck must trip well
	// before the overall timeout.
	hv := &fakeHypervisor{
		states: []types.InstallState{types.StateRunning},
		bytes:  []int64{100, 100},
	}
	m := fastMonitor(hv, 10*time.Second, 20*time.Millisecond)

	start := time.Now()
	err := m.Await(context.Background(), "web-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStuck)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAwaitNoActivityEverHitsTimeout(t *testing.T) {
	// The counter never advances from its initial zero, so the stuck
	// heuristic stays unarmed and the overall deadline decides.
	hv := &fakeHypervisor{
		states: []types.InstallState{types.StateRunning},
		bytes:  []int64{0},
	}
	m := fastMonitor(hv, 30*time.Millisecond, 10*time.Millisecond)
	err := m.Await(context.Background(), "web-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTimeout)
}

func TestAwaitContextCancelled(t *testing.T) {
	hv := &fakeHypervisor{states: []types.InstallState{types.StateRunning}}
	m := fastMonitor(hv, time.Minute, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := m.Await(ctx, "web-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
