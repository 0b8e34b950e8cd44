package others

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/projecteru2/hatchery/cmd/core"
	"github.com/projecteru2/hatchery/config"
	"github.com/projecteru2/hatchery/types"
	"github.com/projecteru2/hatchery/version"
)

// Handler implements Actions.
type Handler struct {
	core.BaseHandler
}

// NewHandler creates an informational handler.
func NewHandler(confProvider func() *config.Config) Handler {
	return Handler{core.BaseHandler{ConfProvider: confProvider}}
}

// Distros prints the supported distributions and their install config kind.
func (h Handler) Distros(_ *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCONFIG\tVARIANT\tMEDIA")
	for _, name := range types.DistroNames() {
		profile, err := types.LookupDistro(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", profile.Name, profile.ConfigKind, profile.Variant, profile.MediaFile)
	}
	return w.Flush()
}

// Version prints the build banner.
func (h Handler) Version(_ *cobra.Command, _ []string) error {
	fmt.Print(version.String())
	return nil
}
