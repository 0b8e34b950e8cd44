package core

import (
	"fmt"
	"os"

	units "github.com/docker/go-units"

	"github.com/projecteru2/hatchery/progress"
	"github.com/projecteru2/hatchery/progress/media"
)

// MediaTracker prints coarse download/extract progress to stderr so it
// never interleaves with prompts or reports on stdout.
func MediaTracker() progress.Tracker {
	var inLine bool
	return progress.NewTracker(func(ev media.Event) {
		switch ev.Phase {
		case media.PhaseDownload:
			if ev.BytesTotal > 0 {
				fmt.Fprintf(os.Stderr, "\rfetch %s: %s / %s", ev.Distro,
					units.HumanSize(float64(ev.BytesDone)), units.HumanSize(float64(ev.BytesTotal)))
			} else {
				fmt.Fprintf(os.Stderr, "\rfetch %s: %s", ev.Distro, units.HumanSize(float64(ev.BytesDone)))
			}
			inLine = true
		case media.PhaseExtract:
			if inLine {
				fmt.Fprintln(os.Stderr)
				inLine = false
			}
			fmt.Fprintf(os.Stderr, "extract boot artifacts for %s\n", ev.Distro)
		case media.PhaseDone:
			if inLine {
				fmt.Fprintln(os.Stderr)
				inLine = false
			}
			fmt.Fprintf(os.Stderr, "%s media ready\n", ev.Distro)
		}
	})
}
