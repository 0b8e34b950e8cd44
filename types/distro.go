package types

import (
	"fmt"
	"sort"
)

// DistroProfile is the static description of one supported distribution.
// Immutable; the set of profiles is closed and known at build time.
type DistroProfile struct {
	// Name is the distribution identifier operators use.
	Name string
	// MediaURL is where the installation ISO is downloaded from.
	MediaURL string
	// MediaFile is the ISO file name inside the media cache, named after
	// the distribution's release.
	MediaFile string
	// Variant is passed to the hypervisor for OS-specific defaults
	// (virt-install --os-variant).
	Variant string
	// Template is the unattended-install template file name.
	Template string
	// KernelPaths and InitrdPaths are ordered candidate paths inside the
	// mounted ISO; the first existing entry of each wins.
	KernelPaths []string
	InitrdPaths []string
	// ConfigKind selects the boot parameter the installer expects for the
	// rendered config URL ("ks" for kickstart, "preseed" for preseed).
	ConfigKind string
}

const (
	ConfigKickstart = "ks"
	ConfigPreseed   = "preseed"
)

var distros = map[string]*DistroProfile{
	"alma9": {
		Name:        "alma9",
		MediaURL:    "https://repo.almalinux.org/almalinux/9/isos/x86_64/AlmaLinux-9-latest-x86_64-minimal.iso",
		MediaFile:   "AlmaLinux-9-latest-x86_64-minimal.iso",
		Variant:     "almalinux9",
		Template:    "alma9.ks.in",
		KernelPaths: []string{"images/pxeboot/vmlinuz", "isolinux/vmlinuz"},
		InitrdPaths: []string{"images/pxeboot/initrd.img", "isolinux/initrd.img"},
		ConfigKind:  ConfigKickstart,
	},
	"rocky9": {
		Name:        "rocky9",
		MediaURL:    "https://download.rockylinux.org/pub/rocky/9/isos/x86_64/Rocky-9-latest-x86_64-minimal.iso",
		MediaFile:   "Rocky-9-latest-x86_64-minimal.iso",
		Variant:     "rocky9",
		Template:    "rocky9.ks.in",
		KernelPaths: []string{"images/pxeboot/vmlinuz", "isolinux/vmlinuz"},
		InitrdPaths: []string{"images/pxeboot/initrd.img", "isolinux/initrd.img"},
		ConfigKind:  ConfigKickstart,
	},
	"debian12": {
		Name:        "debian12",
		MediaURL:    "https://cdimage.debian.org/debian-cd/current/amd64/iso-cd/debian-12.8.0-amd64-netinst.iso",
		MediaFile:   "debian-12.8.0-amd64-netinst.iso",
		Variant:     "debian12",
		Template:    "debian12.preseed.in",
		KernelPaths: []string{"install.amd/vmlinuz", "install/vmlinuz"},
		InitrdPaths: []string{"install.amd/initrd.gz", "install/initrd.gz"},
		ConfigKind:  ConfigPreseed,
	},
	"ubuntu2204": {
		Name:        "ubuntu2204",
		MediaURL:    "https://cdimage.ubuntu.com/ubuntu/releases/22.04/release/ubuntu-22.04.5-live-server-amd64.iso",
		MediaFile:   "ubuntu-22.04.5-live-server-amd64.iso",
		Variant:     "ubuntu22.04",
		Template:    "ubuntu2204.preseed.in",
		KernelPaths: []string{"casper/vmlinuz", "install/vmlinuz"},
		InitrdPaths: []string{"casper/initrd", "install/initrd.gz"},
		ConfigKind:  ConfigPreseed,
	},
}

// LookupDistro resolves a distribution identifier.
// Unknown identifiers wrap ErrValidation — the set is closed.
func LookupDistro(name string) (*DistroProfile, error) {
	p, ok := distros[name]
	if !ok {
		return nil, fmt.Errorf("unknown distribution %q (supported: %v): %w", name, DistroNames(), ErrValidation)
	}
	return p, nil
}

// DistroNames returns the supported identifiers in stable order.
func DistroNames() []string {
	names := make([]string, 0, len(distros))
	for name := range distros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
