package batch

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	"github.com/projecteru2/hatchery/cleanup"
	"github.com/projecteru2/hatchery/cmd/core"
	"github.com/projecteru2/hatchery/config"
	"github.com/projecteru2/hatchery/types"
)

// Handler implements Actions.
type Handler struct {
	core.BaseHandler
}

// NewHandler creates a batch handler.
func NewHandler(confProvider func() *config.Config) Handler {
	return Handler{core.BaseHandler{ConfProvider: confProvider}}
}

// Run drives one interactive batch: collect, confirm, provision, report.
// A VM-level failure is reflected in the report, not in the exit status;
// only setup failures and operator cancellation return an error.
func (h Handler) Run(cmd *cobra.Command, _ []string) error {
	ctx, conf, err := h.Init(cmd)
	if err != nil {
		return err
	}
	logger := log.WithFunc("cmd.batch.Run")

	p := newPrompter()
	specs, err := p.collect(conf)
	if err != nil {
		return err
	}
	if err := p.confirm(ctx, specs); err != nil {
		return err
	}

	stack := cleanup.New()
	defer func() {
		// Scoped resources are released even when the run context was
		// cancelled by an interrupt.
		if err := stack.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warnf(ctx, "cleanup: %v", err)
		}
	}()

	orch, err := core.InitOrchestrator(conf, stack, core.MediaTracker())
	if err != nil {
		return err
	}

	run, err := orch.Run(ctx, specs)
	if err != nil {
		printReport(run)
		return err
	}
	printReport(run)
	return nil
}

// printReport renders the end-of-batch summary. Failed VMs keep their
// rendered config on disk; the path is shown so the operator can inspect it.
func printReport(run *types.BatchRun) {
	if run == nil {
		return
	}
	fmt.Printf("\nBatch %s: %d succeeded, %d failed, %d of %d attempted\n",
		run.ID, run.Succeeded(), run.Failed(), len(run.Results), len(run.Specs))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HOSTNAME\tDISTRO\tRESULT\tELAPSED\tDETAIL")
	for _, r := range run.Results {
		detail := ""
		if r.OK() {
			detail = "installed and shut off"
		} else {
			detail = r.Err.Error()
			if r.ConfigPath != "" {
				detail += " (config retained: " + r.ConfigPath + ")"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Hostname, r.Distro, resultWord(r), r.Elapsed.Round(time.Second), detail)
	}
	w.Flush()
}

func resultWord(r types.VMResult) string {
	if r.OK() {
		return "ok"
	}
	return "failed at " + string(r.Phase)
}
