package core

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projecteru2/hatchery/batch"
	"github.com/projecteru2/hatchery/cleanup"
	"github.com/projecteru2/hatchery/config"
	"github.com/projecteru2/hatchery/hypervisor"
	"github.com/projecteru2/hatchery/hypervisor/libvirt"
	"github.com/projecteru2/hatchery/progress"
)

// BaseHandler provides shared config access for all command handlers.
type BaseHandler struct {
	ConfProvider func() *config.Config
}

// Init returns the command context and validated config in one call.
func (h BaseHandler) Init(cmd *cobra.Command) (context.Context, *config.Config, error) {
	conf, err := h.Conf()
	if err != nil {
		return nil, nil, err
	}
	return CommandContext(cmd), conf, nil
}

// Conf validates and returns the config. All handlers call this first.
func (h BaseHandler) Conf() (*config.Config, error) {
	if h.ConfProvider == nil {
		return nil, fmt.Errorf("config provider is nil")
	}
	conf := h.ConfProvider()
	if conf == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	return conf, nil
}

// CommandContext returns command context, falling back to Background.
func CommandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// InitHypervisor builds the libvirt backend and verifies the toolchain is
// usable. A failure here is setup-fatal for the whole run.
func InitHypervisor(conf *config.Config) (hypervisor.Hypervisor, error) {
	hv := libvirt.New(conf)
	if err := hv.Available(); err != nil {
		return nil, fmt.Errorf("hypervisor toolchain: %w", err)
	}
	return hv, nil
}

// InitOrchestrator wires the batch orchestrator over the real components.
func InitOrchestrator(conf *config.Config, stack *cleanup.Stack, tracker progress.Tracker) (*batch.Orchestrator, error) {
	if err := conf.EnsureDirs(); err != nil {
		return nil, err
	}
	hv, err := InitHypervisor(conf)
	if err != nil {
		return nil, err
	}
	o, err := batch.New(conf, hv, stack, tracker)
	if err != nil {
		return nil, fmt.Errorf("init orchestrator: %w", err)
	}
	return o, nil
}
