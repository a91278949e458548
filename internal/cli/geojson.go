package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/geokernel/internal/geojson"
	"github.com/mesh-intelligence/geokernel/pkg/model"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Convert external formats into model files",
	}
	var elevation float64
	gj := &cobra.Command{
		Use:   "geojson <in.geojson> <out>",
		Short: "Convert a GeoJSON FeatureCollection into a model file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return classify(err)
			}
			m := model.New(model.WithLogger(a.log.WithModel(args[1])))
			imp, err := geojson.Import(m, data, geojson.ImportOptions{Elevation: elevation, Logger: a.log})
			if err != nil {
				if errors.Is(err, geojson.ErrUnsupportedGeometry) {
					return userError(err)
				}
				return userError(fmt.Errorf("import %s: %w", args[0], err))
			}
			a.log.Info("geojson imported", "points", len(imp.Points), "plines", len(imp.Plines),
				"pgons", len(imp.Pgons), "colls", len(imp.Colls))
			if err := a.saveModel(args[1], m); err != nil {
				return err
			}
			return a.report(cmd, args[1], m.Counts())
		},
	}
	gj.Flags().Float64Var(&elevation, "elevation", 0, "z of features without an elevation property")
	cmd.AddCommand(gj)
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert model files into external formats",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "geojson <in> <out.geojson>",
		Short: "Write the points, polylines and polygons of a model as GeoJSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadModel(args[0])
			if err != nil {
				return err
			}
			data, err := geojson.Export(m)
			if err != nil {
				return sysError(err)
			}
			if err := os.WriteFile(args[1], data, 0o644); err != nil {
				return sysError(fmt.Errorf("write %s: %w", args[1], err))
			}
			return a.report(cmd, args[1], m.Counts())
		},
	})
	return cmd
}
