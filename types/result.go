package types

import "time"

// Phase names the pipeline stage a VM result came from.
type Phase string

const (
	PhaseRender    Phase = "render"
	PhaseProvision Phase = "provision"
	PhaseMonitor   Phase = "monitor"
	PhaseDone      Phase = "done"
)

// VMResult is the recorded outcome for one spec. Results are appended as
// each VM completes and never edited retroactively.
type VMResult struct {
	Hostname string
	Distro   string
	Phase    Phase
	Err      error
	// ConfigPath is set when the rendered config was retained for debugging
	// (failure case only).
	ConfigPath string
	Elapsed    time.Duration
}

// OK reports whether the VM installed successfully.
func (r VMResult) OK() bool { return r.Err == nil }

// BatchRun is the state of one orchestrator invocation.
type BatchRun struct {
	ID    string
	Specs []*VMSpec
	// Required is the distinct set of distributions across Specs; each
	// distribution's media is fetched at most once per run.
	Required []string
	// Results holds one entry per spec, in spec order, once the run is
	// terminal.
	Results []VMResult

	StartedAt  time.Time
	FinishedAt time.Time
}

// NewBatchRun derives the required-distribution set from the ordered specs.
func NewBatchRun(id string, specs []*VMSpec) *BatchRun {
	seen := make(map[string]struct{}, len(specs))
	var required []string
	for _, s := range specs {
		if _, ok := seen[s.Distro]; ok {
			continue
		}
		seen[s.Distro] = struct{}{}
		required = append(required, s.Distro)
	}
	return &BatchRun{ID: id, Specs: specs, Required: required, StartedAt: time.Now()}
}

// Record appends one result.
func (b *BatchRun) Record(r VMResult) { b.Results = append(b.Results, r) }

// Succeeded counts successful results.
func (b *BatchRun) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

// Failed counts failed results.
func (b *BatchRun) Failed() int { return len(b.Results) - b.Succeeded() }
