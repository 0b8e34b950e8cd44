package config

import (
	coretypes "github.com/projecteru2/core/types"

	"github.com/projecteru2/hatchery/types"
)

// Config holds global hatchery configuration.
type Config struct {
	// RootDir is the base directory for persistent data: media cache,
	// extracted boot artifacts, rendered configs, disk images.
	RootDir string `json:"root_dir"`
	// RunDir is the runtime directory: serve PID file, mount point.
	RunDir string `json:"run_dir"`

	// ServePort is the fixed port the delivery endpoint binds on all
	// interfaces. Exclusive: a stale listener is terminated before use.
	ServePort int `json:"serve_port"`

	// Limits bounds the fields of every VMSpec.
	Limits types.SpecLimits `json:"limits"`
	// Monitor holds the poll/stuck/timeout thresholds.
	Monitor MonitorConfig `json:"monitor"`

	// MaxBatchSize caps the VM count of one interactive batch.
	MaxBatchSize int `json:"max_batch_size"`

	// VirtInstallBinary and VirshBinary override the toolchain paths.
	VirtInstallBinary string `json:"virt_install_binary"`
	VirshBinary       string `json:"virsh_binary"`
	// LibvirtNetwork is the virtual network VMs attach to; its bridge
	// address is the host address installers fetch configs from.
	LibvirtNetwork string `json:"libvirt_network"`

	// Log configuration, uses eru core's ServerLogConfig.
	Log coretypes.ServerLogConfig `json:"log"`
}

// MonitorConfig holds the installation-monitor thresholds.
// They are configuration, not constants, so tests can shrink them.
type MonitorConfig struct {
	// TimeoutSeconds is the overall install deadline.
	TimeoutSeconds int `json:"timeout_seconds"`
	// PollIntervalSeconds is the domain-state poll interval.
	PollIntervalSeconds int `json:"poll_interval_seconds"`
	// StuckThresholdSeconds is how long zero incremental disk I/O is
	// tolerated on a running domain before the install counts as stuck.
	StuckThresholdSeconds int `json:"stuck_threshold_seconds"`
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		RootDir:   "/var/lib/hatchery",
		RunDir:    "/run/hatchery",
		ServePort: 8089,
		Limits:    types.DefaultSpecLimits(),
		Monitor: MonitorConfig{
			TimeoutSeconds:        1800,
			PollIntervalSeconds:   10,
			StuckThresholdSeconds: 300,
		},
		MaxBatchSize:      10,
		VirtInstallBinary: "virt-install",
		VirshBinary:       "virsh",
		LibvirtNetwork:    "default",
		Log: coretypes.ServerLogConfig{
			Level:      "info",
			MaxSize:    500,
			MaxAge:     28,
			MaxBackups: 3,
		},
	}
}
