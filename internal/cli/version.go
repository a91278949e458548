package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the geokernel release.
const Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/geokernel"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the geokernel version",
		Args:  cobra.NoArgs,
		// version needs no config
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "geokernel v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
