package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/geokernel/internal/sqlite"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create config.yaml and the model store",
		Long:  "Write a default config.yaml if none exists, then create the data directory and models.db.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := writeConfigIfMissing(a.configDir, a.flags.dataDir)
			if err != nil {
				return sysError(fmt.Errorf("write config: %w", err))
			}

			store := sqlite.NewBackend()
			if err := store.Attach(a.cfg); err != nil {
				return sysError(fmt.Errorf("initialize store: %w", err))
			}
			if err := store.Detach(); err != nil {
				return sysError(fmt.Errorf("finalize store: %w", err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "geokernel initialized")
			if created {
				fmt.Fprintln(out, "  config:", a.configDir, "(new)")
			} else {
				fmt.Fprintln(out, "  config:", a.configDir)
			}
			fmt.Fprintln(out, "  data:  ", a.cfg.DataDir)
			return nil
		},
	}
}
