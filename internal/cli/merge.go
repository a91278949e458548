package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

func newMergeCmd(a *app) *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:   "merge <out> <in>...",
		Short: "Merge models that share a common ancestor",
		Long: "merge loads the first input and merges every further input into it in\n" +
			"order. Models must descend from one another; a slot edited on both sides\n" +
			"is a conflict and nothing is written.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, ins := args[0], args[1:]
			m, err := a.loadModel(ins[0])
			if err != nil {
				return err
			}
			for _, in := range ins[1:] {
				donor, err := a.loadModel(in)
				if err != nil {
					return err
				}
				if err := m.Merge(donor); err != nil {
					if errors.Is(err, types.ErrMergeConflict) || errors.Is(err, types.ErrDataTypeMismatch) {
						return userError(fmt.Errorf("merge %s: %w", in, err))
					}
					return sysError(fmt.Errorf("merge %s: %w", in, err))
				}
			}
			if purge {
				m.Purge()
			}
			if err := a.saveModel(out, m); err != nil {
				return err
			}
			return a.report(cmd, out, m.Counts())
		},
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "compact deleted slots after merging")
	return cmd
}

func newPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <in> <out>",
		Short: "Compact a model by dropping deleted slots",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadModel(args[0])
			if err != nil {
				return err
			}
			before := m.Geom().Len(types.Posi)
			m.Purge()
			a.log.Debug("purged", "dropped_posis", before-m.Geom().Len(types.Posi))
			if err := a.saveModel(args[1], m); err != nil {
				return err
			}
			return a.report(cmd, args[1], m.Counts())
		},
	}
}
