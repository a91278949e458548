package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/geokernel/pkg/model"
)

// gradeResult is one row of the grade report.
type gradeResult struct {
	Candidate string       `json:"candidate"`
	Result    model.Result `json:"result"`
}

func newGradeCmd(a *app) *cobra.Command {
	var workers int
	var cf *compareFlags
	cmd := &cobra.Command{
		Use:   "grade <reference> <candidate>...",
		Short: "Score many candidate models against one reference in parallel",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers <= 0 {
				workers = a.cfg.GradeWorkers
			}
			ref, err := a.loadModel(args[0])
			if err != nil {
				return err
			}
			rows, err := a.grade(cmd.Context(), ref, args[1:], workers, a.compareOptions(cmd, cf))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return writeJSON(out, rows)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CANDIDATE\tPERCENT\tSCORE")
			for _, row := range rows {
				fmt.Fprintf(tw, "%s\t%d%%\t%d/%d\n", row.Candidate, row.Result.Percent, row.Result.Score, row.Result.Total)
			}
			return tw.Flush()
		},
	}
	cf = addCompareFlags(cmd)
	cmd.Flags().IntVar(&workers, "workers", 0, "candidates graded in parallel (default: grade.workers from config)")
	return cmd
}

// grade compares every candidate file against ref. Each worker gets its
// own copy of the reference. The first load error cancels the rest.
func (a *app) grade(ctx context.Context, ref *model.Model, cands []string, workers int, opts model.Options) ([]gradeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	refs := make([]*model.Model, len(cands))
	for i := range cands {
		refs[i] = ref.Clone()
	}
	rows := make([]gradeResult, len(cands))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, path := range cands {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cand, err := a.loadModel(path)
			if err != nil {
				return err
			}
			rows[i] = gradeResult{Candidate: path, Result: model.Compare(refs[i], cand, opts)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}
