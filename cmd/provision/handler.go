package provision

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	"github.com/projecteru2/hatchery/cleanup"
	"github.com/projecteru2/hatchery/cmd/core"
	"github.com/projecteru2/hatchery/config"
	"github.com/projecteru2/hatchery/types"
)

// Handler implements Actions.
type Handler struct {
	core.BaseHandler
}

// NewHandler creates a provision handler.
func NewHandler(confProvider func() *config.Config) Handler {
	return Handler{core.BaseHandler{ConfProvider: confProvider}}
}

// Provision runs the full pipeline for exactly one VM. The distribution is
// the subcommand name; everything else comes from positional args. Unlike
// batch, a VM-level failure here is the command's failure.
func (h Handler) Provision(cmd *cobra.Command, args []string) error {
	ctx, conf, err := h.Init(cmd)
	if err != nil {
		return err
	}
	logger := log.WithFunc("cmd.provision.Provision")

	spec, err := parseSpec(cmd.Name(), args)
	if err != nil {
		return err
	}
	if err := spec.Validate(conf.Limits); err != nil {
		return err
	}

	stack := cleanup.New()
	defer func() {
		if err := stack.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warnf(ctx, "cleanup: %v", err)
		}
	}()

	orch, err := core.InitOrchestrator(conf, stack, core.MediaTracker())
	if err != nil {
		return err
	}

	run, err := orch.Run(ctx, []*types.VMSpec{spec})
	if err != nil {
		return err
	}
	r := run.Results[0]
	if !r.OK() {
		if r.ConfigPath != "" {
			return fmt.Errorf("%s failed at %s (config retained: %s): %w", r.Hostname, r.Phase, r.ConfigPath, r.Err)
		}
		return fmt.Errorf("%s failed at %s: %w", r.Hostname, r.Phase, r.Err)
	}
	fmt.Printf("%s installed and shut off after %s\n", r.Hostname, r.Elapsed.Round(time.Second))
	return nil
}

// parseSpec maps the 7 positional args onto a VMSpec. Bounds are enforced
// by Validate, not here; this only handles shape.
func parseSpec(distro string, args []string) (*types.VMSpec, error) {
	ram, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("%w: RAM_MIB %q is not a number", types.ErrValidation, args[1])
	}
	vcpus, err := strconv.Atoi(args[2])
	if err != nil {
		return nil, fmt.Errorf("%w: VCPUS %q is not a number", types.ErrValidation, args[2])
	}
	disk, err := strconv.Atoi(args[3])
	if err != nil {
		return nil, fmt.Errorf("%w: DISK_GIB %q is not a number", types.ErrValidation, args[3])
	}
	return &types.VMSpec{
		Distro:       distro,
		Hostname:     args[0],
		RAMMiB:       ram,
		VCPUs:        vcpus,
		DiskGiB:      disk,
		Timezone:     args[4],
		UserPassword: args[5],
		RootPassword: args[6],
	}, nil
}
