// Package provision drives the hypervisor toolchain to create one VM and
// launch its unattended install.
package provision

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/hatchery/config"
	"github.com/projecteru2/hatchery/hypervisor"
	"github.com/projecteru2/hatchery/render"
	"github.com/projecteru2/hatchery/secret"
	"github.com/projecteru2/hatchery/types"
)

// ConfigServer is the delivery endpoint surface the provisioner needs:
// turning a served file name into a URL reachable from the VM network.
// Implemented by *deliver.Endpoint.
type ConfigServer interface {
	URL(hostAddr, file string) string
}

// Provisioner creates VMs. One instance serves the whole batch.
type Provisioner struct {
	conf   *config.Config
	hv     hypervisor.Hypervisor
	hasher secret.Hasher
}

// New creates a Provisioner.
func New(conf *config.Config, hv hypervisor.Hypervisor, hasher secret.Hasher) *Provisioner {
	return &Provisioner{conf: conf, hv: hv, hasher: hasher}
}

// Provision runs one VM's pipeline up to the launched install and returns
// the rendered config path. Each step has an independent failure mode that
// aborts this VM only, never the batch. The created domain and disk persist
// after return regardless of ultimate success.
func (p *Provisioner) Provision(ctx context.Context, spec *types.VMSpec, profile *types.DistroProfile, ep ConfigServer) (string, error) {
	logger := log.WithFunc("provision.Provision")

	// Revalidate at the point of use; the orchestrator validated once
	// already, but a spec is cheap to check and expensive to trust.
	if err := spec.Validate(p.conf.Limits); err != nil {
		return "", err
	}

	// Conflicts are hard stops before any allocating action: hatchery never
	// overwrites an existing domain or disk image.
	if exists, err := p.hv.DomainExists(ctx, spec.Hostname); err != nil {
		return "", fmt.Errorf("check domain %s: %w", spec.Hostname, err)
	} else if exists {
		return "", fmt.Errorf("domain %s: %w", spec.Hostname, types.ErrConflict)
	}
	diskPath := p.conf.DiskPath(spec.Hostname)
	if _, err := os.Stat(diskPath); err == nil {
		return "", fmt.Errorf("disk image %s: %w", diskPath, types.ErrConflict)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat disk image %s: %w", diskPath, err)
	}

	userHash, err := p.hasher.Hash(ctx, spec.UserPassword)
	if err != nil {
		return "", fmt.Errorf("hash user password: %w", err)
	}
	rootHash, err := p.hasher.Hash(ctx, spec.RootPassword)
	if err != nil {
		return "", fmt.Errorf("hash root password: %w", err)
	}
	spec.WipeSecrets()

	configPath, err := render.RenderToFile(p.conf.TemplateDir(), p.conf.ServeDir(), profile, render.Vars{
		Hostname:     spec.Hostname,
		Username:     username(spec.Hostname),
		UserPassHash: userHash,
		RootPassHash: rootHash,
		Timezone:     spec.Timezone,
	})
	if err != nil {
		return "", err
	}

	if err := p.allocateDisk(ctx, diskPath, spec.DiskGiB); err != nil {
		return configPath, err
	}

	hostAddr, err := p.hv.HostAddress(ctx)
	if err != nil {
		return configPath, fmt.Errorf("resolve host address: %w", err)
	}
	url := ep.URL(hostAddr, spec.Hostname+".cfg")

	if err := p.hv.Install(ctx, hypervisor.InstallRequest{
		Name:       spec.Hostname,
		RAMMiB:     spec.RAMMiB,
		VCPUs:      spec.VCPUs,
		Variant:    profile.Variant,
		DiskPath:   diskPath,
		MediaPath:  p.conf.MediaPath(profile),
		ConfigURL:  url,
		ConfigKind: profile.ConfigKind,
	}); err != nil {
		return configPath, err
	}

	logger.Infof(ctx, "install launched for %s (disk %s)", spec.Hostname, diskPath)
	return configPath, nil
}

// allocateDisk creates the VM's qcow2 disk image.
func (p *Provisioner) allocateDisk(ctx context.Context, path string, sizeGiB int) error {
	out, err := exec.CommandContext(ctx, "qemu-img", "create", "-f", "qcow2", //nolint:gosec // controlled paths
		path, fmt.Sprintf("%dG", sizeGiB)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("qemu-img create %s: %s: %w", path, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// username derives the default account name from the hostname: the first
// label, lowercased, which the hostname validation already constrains to a
// safe charset.
func username(hostname string) string {
	name := strings.ToLower(hostname)
	if i := strings.IndexAny(name, ".-"); i > 0 {
		name = name[:i]
	}
	return name
}
