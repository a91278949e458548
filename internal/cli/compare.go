package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/geokernel/pkg/model"
)

func newCompareCmd(a *app) *cobra.Command {
	var strict bool
	var cf *compareFlags
	cmd := &cobra.Command{
		Use:   "compare <reference> <candidate>",
		Short: "Score a candidate model against a reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.loadModel(args[0])
			if err != nil {
				return err
			}
			cand, err := a.loadModel(args[1])
			if err != nil {
				return err
			}
			r := model.Compare(ref, cand, a.compareOptions(cmd, cf))
			if a.flags.jsonMode {
				if err := writeJSON(cmd.OutOrStdout(), r); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), r.String())
			}
			if strict && !r.Match() {
				return userError(fmt.Errorf("models do not match (%d%%)", r.Percent))
			}
			return nil
		},
	}
	cf = addCompareFlags(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 1 when the models do not match")
	return cmd
}
