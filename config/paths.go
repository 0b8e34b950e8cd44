package config

import (
	"path/filepath"

	"github.com/projecteru2/hatchery/types"
	"github.com/projecteru2/hatchery/utils"
)

// MediaDir is the shared ISO cache, one file per distribution release.
func (c *Config) MediaDir() string { return filepath.Join(c.RootDir, "media") }

// MediaPath is the cached ISO for a distribution.
func (c *Config) MediaPath(p *types.DistroProfile) string {
	return filepath.Join(c.MediaDir(), p.MediaFile)
}

// MediaLockFile guards the media cache against concurrent runs.
func (c *Config) MediaLockFile() string { return filepath.Join(c.MediaDir(), ".lock") }

// BootDir holds the extracted kernel/initrd pair for one distribution.
func (c *Config) BootDir(distro string) string {
	return filepath.Join(c.RootDir, "boot", distro)
}

// KernelPath is the extracted kernel for a distribution.
func (c *Config) KernelPath(distro string) string {
	return filepath.Join(c.BootDir(distro), "vmlinuz")
}

// InitrdPath is the extracted initial ramdisk for a distribution.
func (c *Config) InitrdPath(distro string) string {
	return filepath.Join(c.BootDir(distro), "initrd")
}

// TemplateDir holds the unattended-install templates.
func (c *Config) TemplateDir() string { return filepath.Join(c.RootDir, "templates") }

// TemplatePath is the template file for a distribution.
func (c *Config) TemplatePath(p *types.DistroProfile) string {
	return filepath.Join(c.TemplateDir(), p.Template)
}

// ServeDir holds per-VM rendered configs for the delivery endpoint.
func (c *Config) ServeDir() string { return filepath.Join(c.RootDir, "serve") }

// ServePIDFile records the delivery endpoint's process identity; removed on
// clean shutdown, consulted to terminate a stale listener from a prior run.
func (c *Config) ServePIDFile() string { return filepath.Join(c.RunDir, "serve.pid") }

// MountDir is the transient ISO mount point for boot-artifact extraction.
func (c *Config) MountDir() string { return filepath.Join(c.RunDir, "mnt") }

// DiskDir holds per-VM disk images. Operator-owned; nothing deletes them.
func (c *Config) DiskDir() string { return filepath.Join(c.RootDir, "disks") }

// DiskPath is the disk image for one VM.
func (c *Config) DiskPath(hostname string) string {
	return filepath.Join(c.DiskDir(), hostname+".qcow2")
}

// EnsureDirs creates every directory hatchery writes under.
func (c *Config) EnsureDirs() error {
	return utils.EnsureDirs(
		c.MediaDir(),
		filepath.Join(c.RootDir, "boot"),
		c.ServeDir(),
		c.DiskDir(),
		c.RunDir,
		c.MountDir(),
	)
}
