// Package libvirt drives VM installs through the libvirt CLI toolchain
// (virt-install, virsh).
package libvirt

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/projecteru2/hatchery/config"
	"github.com/projecteru2/hatchery/hypervisor"
)

const typ = "libvirt"

// compile-time interface check.
var _ hypervisor.Hypervisor = (*Libvirt)(nil)

// Libvirt implements hypervisor.Hypervisor by exec'ing virt-install/virsh.
type Libvirt struct {
	conf *config.Config
}

// New creates a Libvirt backend.
func New(conf *config.Config) *Libvirt {
	return &Libvirt{conf: conf}
}

func (l *Libvirt) Type() string { return typ }

// Available checks both toolchain binaries resolve and virsh can talk to
// the daemon. Run before any batch work so a missing dependency or a
// permission problem aborts the run cheaply.
func (l *Libvirt) Available() error {
	for _, bin := range []string{l.conf.VirtInstallBinary, l.conf.VirshBinary} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("required tool %s not found: %w", bin, err)
		}
	}
	if out, err := exec.Command(l.conf.VirshBinary, "version", "--daemon").CombinedOutput(); err != nil { //nolint:gosec // configured binary
		return fmt.Errorf("virsh cannot reach libvirt: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// DomainExists queries virsh for the domain name. A clean "not found" error
// from virsh means false; any other failure is reported.
func (l *Libvirt) DomainExists(ctx context.Context, name string) (bool, error) {
	out, err := l.virsh(ctx, "domstate", name)
	if err != nil {
		if isNotFound(out) {
			return false, nil
		}
		return false, fmt.Errorf("virsh domstate %s: %s: %w", name, firstLine(out), err)
	}
	return true, nil
}

// Resume un-pauses a paused domain.
func (l *Libvirt) Resume(ctx context.Context, name string) error {
	if out, err := l.virsh(ctx, "resume", name); err != nil {
		return fmt.Errorf("virsh resume %s: %s: %w", name, firstLine(out), err)
	}
	return nil
}

// virsh runs one virsh subcommand and returns its combined output.
func (l *Libvirt) virsh(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, l.conf.VirshBinary, args...).CombinedOutput() //nolint:gosec // configured binary, internal args
	return string(out), err
}

func isNotFound(out string) bool {
	return strings.Contains(out, "failed to get domain") ||
		strings.Contains(out, "Domain not found")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
