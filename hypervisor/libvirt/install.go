package libvirt

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/hatchery/hypervisor"
	"github.com/projecteru2/hatchery/types"
)

// Install launches an unattended install with virt-install.
//
// --wait 0 combined with --noautoconsole makes virt-install return once the
// install environment has booted; the OS install itself keeps running inside
// the domain and is watched by the monitor.
func (l *Libvirt) Install(ctx context.Context, req hypervisor.InstallRequest) error {
	args := []string{
		"--name", req.Name,
		"--memory", fmt.Sprintf("%d", req.RAMMiB),
		"--vcpus", fmt.Sprintf("%d", req.VCPUs),
		"--os-variant", req.Variant,
		"--disk", fmt.Sprintf("path=%s,format=qcow2,bus=virtio", req.DiskPath),
		"--network", fmt.Sprintf("network=%s,model=virtio", l.conf.LibvirtNetwork),
		"--location", req.MediaPath,
		"--extra-args", installerArgs(req),
		"--graphics", "none",
		"--console", "pty,target_type=serial",
		"--noautoconsole",
		"--wait", "0",
	}

	log.WithFunc("libvirt.Install").Infof(ctx, "virt-install %s (variant %s, config %s)", req.Name, req.Variant, req.ConfigURL)

	out, err := exec.CommandContext(ctx, l.conf.VirtInstallBinary, args...).CombinedOutput() //nolint:gosec // configured binary
	if err != nil {
		return fmt.Errorf("virt-install %s: %s: %w", req.Name, firstLine(string(out)), err)
	}
	return nil
}

// installerArgs builds the kernel command line pointing the unattended
// installer at the rendered config on the delivery endpoint.
func installerArgs(req hypervisor.InstallRequest) string {
	switch req.ConfigKind {
	case types.ConfigPreseed:
		return fmt.Sprintf("auto=true priority=critical url=%s console=ttyS0", req.ConfigURL)
	default: // kickstart
		return fmt.Sprintf("inst.ks=%s console=ttyS0", req.ConfigURL)
	}
}
