package provision

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projecteru2/hatchery/types"
)

// Actions defines the single-VM provisioning operations.
type Actions interface {
	Provision(cmd *cobra.Command, args []string) error
}

// Commands builds one subcommand per supported distribution, e.g.
// `hatchery provision alma9 web01 4096 4 60 Europe/Amsterdam upw rpw`.
func Commands(h Actions) []*cobra.Command {
	root := &cobra.Command{
		Use:   "provision",
		Short: "Provision a single VM non-interactively",
	}
	for _, name := range types.DistroNames() {
		root.AddCommand(&cobra.Command{
			Use:   fmt.Sprintf("%s HOSTNAME RAM_MIB VCPUS DISK_GIB TIMEZONE USER_PASSWORD ROOT_PASSWORD", name),
			Short: fmt.Sprintf("Provision one %s VM", name),
			Args:  cobra.ExactArgs(7),
			RunE:  h.Provision,
		})
	}
	return []*cobra.Command{root}
}
