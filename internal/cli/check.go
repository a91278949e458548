package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Report topology inconsistencies in a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadModel(args[0])
			if err != nil {
				return err
			}
			errs := m.Check()
			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				if errs == nil {
					errs = []string{}
				}
				if err := writeJSON(out, errs); err != nil {
					return err
				}
			} else {
				for _, e := range errs {
					fmt.Fprintln(out, e)
				}
			}
			if len(errs) > 0 {
				return userError(fmt.Errorf("%s: %d check violations", args[0], len(errs)))
			}
			if !a.flags.jsonMode {
				fmt.Fprintln(out, "ok")
			}
			return nil
		},
	}
}
