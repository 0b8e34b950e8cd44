package batch

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	units "github.com/docker/go-units"
	"golang.org/x/term"

	"github.com/projecteru2/hatchery/config"
	"github.com/projecteru2/hatchery/types"
)

// errCancelled reports the operator declining the confirmation prompt.
var errCancelled = fmt.Errorf("cancelled by operator")

// prompter collects VM specifications from the operator.
type prompter struct {
	in  *bufio.Reader
	out *os.File
}

func newPrompter() *prompter {
	return &prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// collect obtains count and one validated spec per VM. An invalid spec is
// re-prompted, never stored — a batch only ever holds accepted specs.
func (p *prompter) collect(conf *config.Config) ([]*types.VMSpec, error) {
	count, err := p.askInt(fmt.Sprintf("Number of VMs to provision [1-%d]: ", conf.MaxBatchSize), 1, conf.MaxBatchSize)
	if err != nil {
		return nil, err
	}

	specs := make([]*types.VMSpec, 0, count)
	seen := make(map[string]struct{}, count)
	for i := 1; i <= count; i++ {
		fmt.Fprintf(p.out, "\n--- VM %d of %d ---\n", i, count)
		for {
			spec, err := p.askSpec(conf)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[spec.Hostname]; dup {
				fmt.Fprintf(p.out, "hostname %q already used in this batch, try again\n", spec.Hostname)
				continue
			}
			if err := spec.Validate(conf.Limits); err != nil {
				fmt.Fprintf(p.out, "invalid spec: %v — try again\n", err)
				continue
			}
			seen[spec.Hostname] = struct{}{}
			specs = append(specs, spec)
			break
		}
	}
	return specs, nil
}

func (p *prompter) askSpec(conf *config.Config) (*types.VMSpec, error) {
	distro, err := p.askChoice("Distribution", types.DistroNames())
	if err != nil {
		return nil, err
	}
	hostname, err := p.ask("Hostname: ")
	if err != nil {
		return nil, err
	}
	ramMiB, err := p.askSize(fmt.Sprintf("RAM [%d-%d MiB, e.g. 2048 or 2G]: ", conf.Limits.MinRAMMiB, conf.Limits.MaxRAMMiB), units.MiB)
	if err != nil {
		return nil, err
	}
	vcpus, err := p.askInt(fmt.Sprintf("vCPUs [%d-%d]: ", conf.Limits.MinVCPUs, conf.Limits.MaxVCPUs), conf.Limits.MinVCPUs, conf.Limits.MaxVCPUs)
	if err != nil {
		return nil, err
	}
	diskGiB, err := p.askSize(fmt.Sprintf("Disk [%d-%d GiB, e.g. 40 or 40G]: ", conf.Limits.MinDiskGiB, conf.Limits.MaxDiskGiB), units.GiB)
	if err != nil {
		return nil, err
	}
	timezone, err := p.ask("Timezone (e.g. Europe/Amsterdam): ")
	if err != nil {
		return nil, err
	}
	userPw, err := p.askPassword("User password: ")
	if err != nil {
		return nil, err
	}
	rootPw, err := p.askPassword("Root password: ")
	if err != nil {
		return nil, err
	}

	return &types.VMSpec{
		Distro:       distro,
		Hostname:     hostname,
		RAMMiB:       ramMiB,
		VCPUs:        vcpus,
		DiskGiB:      diskGiB,
		Timezone:     timezone,
		UserPassword: userPw,
		RootPassword: rootPw,
	}, nil
}

func (p *prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) askInt(prompt string, min, max int) (int, error) {
	for {
		s, err := p.ask(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < min || n > max {
			fmt.Fprintf(p.out, "enter a number between %d and %d\n", min, max)
			continue
		}
		return n, nil
	}
}

// askSize reads a size either as a plain number of units or as a human
// string ("4G", "512M") converted to the requested unit.
func (p *prompter) askSize(prompt string, unit int64) (int, error) {
	s, err := p.ask(prompt)
	if err != nil {
		return 0, err
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	bytes, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}
	return int(bytes / unit), nil
}

func (p *prompter) askChoice(name string, choices []string) (string, error) {
	fmt.Fprintf(p.out, "%s:\n", name)
	for i, c := range choices {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, c)
	}
	n, err := p.askInt(fmt.Sprintf("Choice [1-%d]: ", len(choices)), 1, len(choices))
	if err != nil {
		return "", err
	}
	return choices[n-1], nil
}

// askPassword reads without echo when stdin is a terminal, with a repeat
// for confirmation. Falls back to plain reads when piped.
func (p *prompter) askPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return p.ask(prompt)
	}
	for {
		fmt.Fprint(p.out, prompt)
		first, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		fmt.Fprint(p.out, "Repeat: ")
		second, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if string(first) != string(second) {
			fmt.Fprintln(p.out, "passwords do not match, try again")
			continue
		}
		return string(first), nil
	}
}

// confirm shows the batch summary and asks for an explicit yes/no before
// any provisioning begins.
func (p *prompter) confirm(ctx context.Context, specs []*types.VMSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "\nAbout to provision %d VM(s):\n", len(specs))
	for _, s := range specs {
		fmt.Fprintf(p.out, "  %-20s %-12s %5d MiB  %2d vCPU  %4d GiB  %s\n",
			s.Hostname, s.Distro, s.RAMMiB, s.VCPUs, s.DiskGiB, s.Timezone)
	}
	answer, err := p.ask("Proceed? [y/N]: ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		return errCancelled
	}
	return nil
}
