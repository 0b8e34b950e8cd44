package batch

import "github.com/spf13/cobra"

// Actions defines the batch-level operations.
type Actions interface {
	Run(cmd *cobra.Command, args []string) error
}

// Commands builds the batch command set.
func Commands(h Actions) []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "batch",
			Short: "Interactively collect VM specs and provision them one at a time",
			Long: `Prompts for a number of VMs and a full specification for each, shows a
summary, and after explicit confirmation downloads the required media,
renders the unattended-install configs, and installs every VM in order.
One VM failing does not stop the batch; a report is printed at the end.`,
			Args: cobra.NoArgs,
			RunE: h.Run,
		},
	}
}
