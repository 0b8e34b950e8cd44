package libvirt

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/projecteru2/hatchery/types"
)

// State maps `virsh domstate` output onto the install state machine.
// A disappeared domain is reported as StateNotFound, not as an error — the
// monitor treats it as a terminal failure in its own right.
func (l *Libvirt) State(ctx context.Context, name string) (types.InstallState, error) {
	out, err := l.virsh(ctx, "domstate", name)
	if err != nil {
		if isNotFound(out) {
			return types.StateNotFound, nil
		}
		return types.StateUnknown, fmt.Errorf("virsh domstate %s: %s: %w", name, firstLine(out), err)
	}
	return parseDomState(out), nil
}

// parseDomState normalizes virsh's human-readable state line.
func parseDomState(out string) types.InstallState {
	switch firstLine(out) {
	case "running":
		return types.StateRunning
	case "paused":
		return types.StatePaused
	case "shut off":
		return types.StateShutOff
	case "crashed":
		return types.StateCrashed
	case "in shutdown", "pmsuspended", "idle", "blocked":
		return types.StateUnknown
	default:
		return types.StateUnknown
	}
}

// BlockActivity sums rd_bytes + wr_bytes over every block device attached
// to the domain. The monitor only compares successive values, so the
// absolute number is meaningless; what matters is whether it advances.
func (l *Libvirt) BlockActivity(ctx context.Context, name string) (int64, error) {
	devOut, err := l.virsh(ctx, "domblklist", name)
	if err != nil {
		return 0, fmt.Errorf("virsh domblklist %s: %s: %w", name, firstLine(devOut), err)
	}

	var total int64
	for _, dev := range parseBlockDevices(devOut) {
		statOut, err := l.virsh(ctx, "domblkstat", name, dev)
		if err != nil {
			return 0, fmt.Errorf("virsh domblkstat %s %s: %s: %w", name, dev, firstLine(statOut), err)
		}
		total += parseBlockBytes(statOut)
	}
	return total, nil
}

// parseBlockDevices extracts target device names from `virsh domblklist`.
// Output shape:
//
//	 Target   Source
//	--------------------------------
//	 vda      /var/lib/hatchery/disks/web1.qcow2
//	 sda      -
func parseBlockDevices(out string) []string {
	var devs []string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "Target") || strings.HasPrefix(line, "---") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 1 {
			devs = append(devs, fields[0])
		}
	}
	return devs
}

// parseBlockBytes sums the rd_bytes and wr_bytes counters from
// `virsh domblkstat` output (lines like "vda rd_bytes 123456").
func parseBlockBytes(out string) int64 {
	var total int64
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 3 {
			continue
		}
		switch fields[1] {
		case "rd_bytes", "wr_bytes":
			if v, err := strconv.ParseInt(fields[2], 10, 64); err == nil {
				total += v
			}
		}
	}
	return total
}
