// Package batch owns the end-to-end provisioning run: media pre-fetch,
// delivery endpoint lifecycle, and the strictly ordered fail-soft VM loop.
package batch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/projecteru2/core/log"

	"github.com/projecteru2/hatchery/cleanup"
	"github.com/projecteru2/hatchery/config"
	"github.com/projecteru2/hatchery/deliver"
	"github.com/projecteru2/hatchery/hypervisor"
	"github.com/projecteru2/hatchery/media"
	"github.com/projecteru2/hatchery/monitor"
	"github.com/projecteru2/hatchery/progress"
	"github.com/projecteru2/hatchery/provision"
	"github.com/projecteru2/hatchery/secret"
	"github.com/projecteru2/hatchery/types"
)

// Downloader is the media surface the orchestrator pre-fetches through.
// Implemented by *media.Downloader.
type Downloader interface {
	Ensure(ctx context.Context, profile *types.DistroProfile, tracker progress.Tracker) error
	EnsureBoot(ctx context.Context, profile *types.DistroProfile, tracker progress.Tracker) error
}

// Provisioner launches one VM's install. Implemented by *provision.Provisioner.
type Provisioner interface {
	Provision(ctx context.Context, spec *types.VMSpec, profile *types.DistroProfile, ep provision.ConfigServer) (configPath string, err error)
}

// Awaiter watches one install to a terminal state. Implemented by *monitor.Monitor.
type Awaiter interface {
	Await(ctx context.Context, name string) error
}

// EndpointStarter starts the confirmed delivery endpoint.
// Swapped in tests; the default is deliver.Start.
type EndpointStarter func(ctx context.Context, dir string, port int, pidFile string) (*deliver.Endpoint, error)

// Orchestrator holds the run-scoped collaborators. All state for one
// invocation lives here and in the BatchRun it produces — no globals.
type Orchestrator struct {
	conf  *config.Config
	dl    Downloader
	prov  Provisioner
	mon   Awaiter
	stack *cleanup.Stack

	start   EndpointStarter
	tracker progress.Tracker
}

// New wires an Orchestrator from the real components.
func New(conf *config.Config, hv hypervisor.Hypervisor, stack *cleanup.Stack, tracker progress.Tracker) (*Orchestrator, error) {
	dl, err := media.New(conf)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		conf:    conf,
		dl:      dl,
		prov:    provision.New(conf, hv, secret.OpenSSL{}),
		mon:     monitor.New(hv, conf.Monitor),
		stack:   stack,
		start:   deliver.Start,
		tracker: tracker,
	}, nil
}

// Run executes one batch. The returned BatchRun has exactly one result per
// spec unless a setup-phase error (pre-fetch, endpoint start) or ctx
// cancellation aborted the run before or between VMs; those are the only
// error returns. One VM's failure never skips the remaining specs.
func (o *Orchestrator) Run(ctx context.Context, specs []*types.VMSpec) (*types.BatchRun, error) {
	logger := log.WithFunc("batch.Run")
	run := types.NewBatchRun(uuid.NewString(), specs)

	// Bulk pre-fetch: every distinct distribution's media and boot
	// artifacts, before any VM work. A failure here aborts cheaply —
	// nothing has been provisioned yet.
	for _, name := range run.Required {
		profile, err := types.LookupDistro(name)
		if err != nil {
			return run, err
		}
		if err := o.dl.Ensure(ctx, profile, o.tracker); err != nil {
			return run, fmt.Errorf("pre-fetch media for %s: %w", name, err)
		}
		if err := o.dl.EnsureBoot(ctx, profile, o.tracker); err != nil {
			return run, fmt.Errorf("extract boot artifacts for %s: %w", name, err)
		}
	}

	// One endpoint serves the whole run; its port is an exclusive
	// singleton. Stopped through the cleanup stack on every exit path.
	ep, err := o.start(ctx, o.conf.ServeDir(), o.conf.ServePort, o.conf.ServePIDFile())
	if err != nil {
		return run, fmt.Errorf("start delivery endpoint: %w", err)
	}
	o.stack.Register("delivery endpoint", ep.Stop)

	for _, spec := range run.Specs {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		run.Record(o.runOne(ctx, spec, ep))
	}

	run.FinishedAt = time.Now()
	logger.Infof(ctx, "batch %s finished: %d/%d succeeded", run.ID, run.Succeeded(), len(run.Results))
	return run, nil
}

// runOne executes a single spec's pipeline and converts any failure into a
// recorded result. The rendered config is deleted on success and retained
// on failure — deliberately, so the operator can inspect what the installer
// was fed.
func (o *Orchestrator) runOne(ctx context.Context, spec *types.VMSpec, ep *deliver.Endpoint) types.VMResult {
	logger := log.WithFunc("batch.runOne")
	started := time.Now()
	result := types.VMResult{Hostname: spec.Hostname, Distro: spec.Distro}

	profile, err := types.LookupDistro(spec.Distro)
	if err != nil {
		result.Phase, result.Err = types.PhaseProvision, err
		return result
	}

	configPath, err := o.prov.Provision(ctx, spec, profile, ep)
	if err != nil {
		logger.Warnf(ctx, "provision %s: %v", spec.Hostname, err)
		result.Phase, result.Err = types.PhaseProvision, err
		result.ConfigPath = configPath
		result.Elapsed = time.Since(started)
		return result
	}

	if err := o.mon.Await(ctx, spec.Hostname); err != nil {
		logger.Warnf(ctx, "monitor %s: %v", spec.Hostname, err)
		result.Phase, result.Err = types.PhaseMonitor, err
		result.ConfigPath = configPath
		result.Elapsed = time.Since(started)
		return result
	}

	if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
		logger.Warnf(ctx, "remove rendered config %s: %v", configPath, err)
	}
	result.Phase = types.PhaseDone
	result.Elapsed = time.Since(started)
	return result
}
