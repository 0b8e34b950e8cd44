package others

import "github.com/spf13/cobra"

// Actions defines the informational operations.
type Actions interface {
	Distros(cmd *cobra.Command, args []string) error
	Version(cmd *cobra.Command, args []string) error
}

// Commands builds the informational command set.
func Commands(h Actions) []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "distros",
			Short: "List the supported distributions",
			Args:  cobra.NoArgs,
			RunE:  h.Distros,
		},
		{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			RunE:  h.Version,
		},
	}
}
