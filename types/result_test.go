package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatchRunRequired(t *testing.T) {
	specs := []*VMSpec{
		{Distro: "debian12", Hostname: "a"},
		{Distro: "alma9", Hostname: "b"},
		{Distro: "debian12", Hostname: "c"},
		{Distro: "alma9", Hostname: "d"},
	}
	run := NewBatchRun("test", specs)

	// distinct, first-seen order
	assert.Equal(t, []string{"debian12", "alma9"}, run.Required)
	assert.False(t, run.StartedAt.IsZero())
}

func TestBatchRunCounts(t *testing.T) {
	run := NewBatchRun("test", nil)
	run.Record(VMResult{Hostname: "a", Phase: PhaseDone})
	run.Record(VMResult{Hostname: "b", Phase: PhaseMonitor, Err: errors.New("boom")})
	run.Record(VMResult{Hostname: "c", Phase: PhaseDone})

	assert.Equal(t, 2, run.Succeeded())
	assert.Equal(t, 1, run.Failed())
	require.Len(t, run.Results, 3)
	assert.True(t, run.Results[0].OK())
	assert.False(t, run.Results[1].OK())
}
