package types

import (
	"fmt"
	"regexp"
	"time"
)

// hostnameRE allows alphanumerics separated by single hyphens or dots.
// Anchored so no leading/trailing/doubled separator can slip through.
var hostnameRE = regexp.MustCompile(`^[a-zA-Z0-9]+([-.][a-zA-Z0-9]+)*$`)

// SpecLimits bounds the resource fields of a VMSpec.
// Values come from config so tests can shrink them.
type SpecLimits struct {
	MinRAMMiB  int `json:"min_ram_mib"`
	MaxRAMMiB  int `json:"max_ram_mib"`
	MinVCPUs   int `json:"min_vcpus"`
	MaxVCPUs   int `json:"max_vcpus"`
	MinDiskGiB int `json:"min_disk_gib"`
	MaxDiskGiB int `json:"max_disk_gib"`
	// MinPasswordLen is the minimum length for both passwords.
	MinPasswordLen int `json:"min_password_len"`
}

// DefaultSpecLimits returns the documented bounds.
func DefaultSpecLimits() SpecLimits {
	return SpecLimits{
		MinRAMMiB:      1024,
		MaxRAMMiB:      16384,
		MinVCPUs:       1,
		MaxVCPUs:       16,
		MinDiskGiB:     10,
		MaxDiskGiB:     500,
		MinPasswordLen: 8,
	}
}

// VMSpec is one VM's declarative intent. A spec is validated before it is
// accepted into a batch and never mutated afterwards, except that the
// provisioner wipes the cleartext passwords once they are hashed.
type VMSpec struct {
	Distro   string `json:"distro"`
	Hostname string `json:"hostname"`
	RAMMiB   int    `json:"ram_mib"`
	VCPUs    int    `json:"vcpus"`
	DiskGiB  int    `json:"disk_gib"`
	Timezone string `json:"timezone"`

	// Secrets — never serialized, wiped after hashing.
	UserPassword string `json:"-"`
	RootPassword string `json:"-"`
}

// Validate checks every field against the limits. The first violation is
// returned wrapping ErrValidation; a spec that passes has no out-of-bounds
// field and a resolvable timezone.
func (s *VMSpec) Validate(limits SpecLimits) error {
	if _, err := LookupDistro(s.Distro); err != nil {
		return err
	}
	if s.Hostname == "" || len(s.Hostname) > 63 || !hostnameRE.MatchString(s.Hostname) {
		return fmt.Errorf("hostname %q: %w", s.Hostname, ErrValidation)
	}
	if s.RAMMiB < limits.MinRAMMiB || s.RAMMiB > limits.MaxRAMMiB {
		return fmt.Errorf("ram %d MiB outside [%d, %d]: %w", s.RAMMiB, limits.MinRAMMiB, limits.MaxRAMMiB, ErrValidation)
	}
	if s.VCPUs < limits.MinVCPUs || s.VCPUs > limits.MaxVCPUs {
		return fmt.Errorf("vcpus %d outside [%d, %d]: %w", s.VCPUs, limits.MinVCPUs, limits.MaxVCPUs, ErrValidation)
	}
	if s.DiskGiB < limits.MinDiskGiB || s.DiskGiB > limits.MaxDiskGiB {
		return fmt.Errorf("disk %d GiB outside [%d, %d]: %w", s.DiskGiB, limits.MinDiskGiB, limits.MaxDiskGiB, ErrValidation)
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil || s.Timezone == "" || s.Timezone == "Local" {
		return fmt.Errorf("timezone %q: %w", s.Timezone, ErrValidation)
	}
	if len(s.UserPassword) < limits.MinPasswordLen {
		return fmt.Errorf("user password shorter than %d: %w", limits.MinPasswordLen, ErrValidation)
	}
	if len(s.RootPassword) < limits.MinPasswordLen {
		return fmt.Errorf("root password shorter than %d: %w", limits.MinPasswordLen, ErrValidation)
	}
	return nil
}

// WipeSecrets clears the cleartext passwords. Called once hashes exist.
func (s *VMSpec) WipeSecrets() {
	s.UserPassword = ""
	s.RootPassword = ""
}
