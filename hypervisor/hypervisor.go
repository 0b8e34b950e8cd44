// Package hypervisor defines the surface hatchery needs from a VM-management
// toolchain. The libvirt subpackage implements it over virt-install/virsh;
// tests substitute fakes.
package hypervisor

import (
	"context"

	"github.com/projecteru2/hatchery/types"
)

// InstallRequest carries everything needed to launch one unattended install.
type InstallRequest struct {
	Name    string
	RAMMiB  int
	VCPUs   int
	Variant string

	DiskPath  string
	MediaPath string
	// ConfigURL is where the installer fetches its unattended config.
	ConfigURL string
	// ConfigKind selects the boot parameter name the installer expects
	// (types.ConfigKickstart or types.ConfigPreseed).
	ConfigKind string
}

// Hypervisor drives the external VM toolchain.
type Hypervisor interface {
	// Available verifies the toolchain is present and usable.
	// Called once during setup; failure is run-fatal.
	Available() error

	// DomainExists reports whether a domain with the name is already known.
	DomainExists(ctx context.Context, name string) (bool, error)

	// Install launches the unattended install. Blocks until the install
	// environment has booted, not until the OS install finishes — that is
	// the monitor's job.
	Install(ctx context.Context, req InstallRequest) error

	// State reports the domain's current lifecycle state.
	State(ctx context.Context, name string) (types.InstallState, error)

	// BlockActivity returns the domain's cumulative disk I/O byte counter
	// (reads + writes across all block devices).
	BlockActivity(ctx context.Context, name string) (int64, error)

	// Resume un-pauses a paused domain.
	Resume(ctx context.Context, name string) error

	// HostAddress returns the address on the VM network through which the
	// guest can reach services on this host.
	HostAddress(ctx context.Context) (string, error)
}
