package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/geokernel/internal/modelio"
	"github.com/mesh-intelligence/geokernel/pkg/model"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// loadModel reads a model file. Missing files and bad payloads are user
// errors; other read failures are system errors.
func (a *app) loadModel(path string) (*model.Model, error) {
	m, err := modelio.Load(path, model.WithLogger(a.log.WithModel(path)))
	if err != nil {
		return nil, classify(err)
	}
	return m, nil
}

// saveModel writes a model file.
func (a *app) saveModel(path string, m *model.Model) error {
	if err := modelio.Save(path, m); err != nil {
		return classify(err)
	}
	a.log.Debug("model written", "path", path)
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, modelio.ErrUnknownExt),
		errors.Is(err, types.ErrInvalidPayload),
		errors.Is(err, types.ErrDataTypeMismatch):
		return userError(err)
	}
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	if errors.As(err, &syn) || errors.As(err, &typ) {
		return userError(err)
	}
	return sysError(err)
}

// compareFlags overrides the compare.* config keys for one invocation.
type compareFlags struct {
	normalize bool
	geom      bool
	attribs   bool
}

func addCompareFlags(cmd *cobra.Command) *compareFlags {
	f := &compareFlags{}
	cmd.Flags().BoolVar(&f.normalize, "normalize", true, "normalize both models before comparing")
	cmd.Flags().BoolVar(&f.geom, "check-geom", true, "compare the number of entities of each kind")
	cmd.Flags().BoolVar(&f.attribs, "check-attribs", true, "compare attribute names and data types")
	return f
}

// compareOptions starts from the config and applies the flags the user set.
func (a *app) compareOptions(cmd *cobra.Command, f *compareFlags) model.Options {
	opts := model.Options{
		Normalize:           a.cfg.Normalize,
		CheckGeomEquality:   a.cfg.CheckGeomEquality,
		CheckAttribEquality: a.cfg.CheckAttribEquality,
	}
	if cmd.Flags().Changed("normalize") {
		opts.Normalize = f.normalize
	}
	if cmd.Flags().Changed("check-geom") {
		opts.CheckGeomEquality = f.geom
	}
	if cmd.Flags().Changed("check-attribs") {
		opts.CheckAttribEquality = f.attribs
	}
	return opts
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return sysError(fmt.Errorf("encode output: %w", err))
	}
	return nil
}

// countsReport is the JSON form of a written model summary.
type countsReport struct {
	Path   string                `json:"path"`
	Counts map[types.EntType]int `json:"counts"`
}

// report prints the live object counts of a written model.
func (a *app) report(cmd *cobra.Command, path string, counts map[types.EntType]int) error {
	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return writeJSON(out, countsReport{Path: path, Counts: counts})
	}
	fmt.Fprintf(out, "%s: %s\n", path, formatCounts(counts))
	return nil
}

func formatCounts(counts map[types.EntType]int) string {
	parts := make([]string, 0, len(types.TopLevel))
	for _, k := range types.TopLevel {
		parts = append(parts, fmt.Sprintf("%d %s", counts[k], k.Plural()))
	}
	return strings.Join(parts, ", ")
}
