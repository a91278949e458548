// Package geojson moves objects between a model and GeoJSON feature
// collections. Coordinates map one to one: GeoJSON x and y become model x
// and y, and z comes from an elevation.
package geojson

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/paulmach/orb"
	geo "github.com/paulmach/orb/geojson"

	"github.com/mesh-intelligence/geokernel/internal/logging"
	"github.com/mesh-intelligence/geokernel/pkg/attribs"
	"github.com/mesh-intelligence/geokernel/pkg/model"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// ElevationProp is the feature property that carries the z coordinate of
// a flat object. It is read on import and written on export when z is not
// zero.
const ElevationProp = "elevation"

// ErrUnsupportedGeometry is returned for geometries without a model
// object, such as GeometryCollection.
var ErrUnsupportedGeometry = errors.New("unsupported geojson geometry")

// ImportOptions configures Import.
type ImportOptions struct {
	// Elevation is the z coordinate of features without an elevation
	// property.
	Elevation float64
	Logger    *logging.Logger
}

// Imported lists the objects created by one import.
type Imported struct {
	Points []int
	Plines []int
	Pgons  []int
	Colls  []int
}

// Import parses a FeatureCollection and adds one object per feature.
// Multi geometries become a collection of objects that carries the
// feature properties. Properties whose type clashes with an existing
// attribute are logged and skipped.
func Import(m *model.Model, data []byte, opts ImportOptions) (Imported, error) {
	var out Imported
	fc, err := geo.UnmarshalFeatureCollection(data)
	if err != nil {
		return out, fmt.Errorf("parsing geojson: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = logging.NoopLogger()
	}
	imp := importer{m: m, log: log, out: &out}
	for n, f := range fc.Features {
		z := opts.Elevation
		if e, ok := f.Properties[ElevationProp].(float64); ok {
			z = e
		}
		if err := imp.feature(f, z); err != nil {
			return out, fmt.Errorf("feature %d: %w", n, err)
		}
	}
	return out, nil
}

type importer struct {
	m   *model.Model
	log *logging.Logger
	out *Imported
}

func (imp importer) feature(f *geo.Feature, z float64) error {
	var (
		k types.EntType
		i int
	)
	if hasEmptyPolygon(f.Geometry) {
		return fmt.Errorf("%w: polygon without rings", ErrUnsupportedGeometry)
	}
	switch g := f.Geometry.(type) {
	case orb.Point:
		k, i = types.Point, imp.point(g, z)
	case orb.LineString:
		k, i = types.Pline, imp.pline(g, z)
	case orb.Polygon:
		k, i = types.Pgon, imp.pgon(g, z)
	case orb.MultiPoint:
		pts := make([]int, len(g))
		for n, p := range g {
			pts[n] = imp.point(p, z)
		}
		k, i = types.Coll, imp.coll(pts, nil, nil)
	case orb.MultiLineString:
		pls := make([]int, len(g))
		for n, ls := range g {
			pls[n] = imp.pline(ls, z)
		}
		k, i = types.Coll, imp.coll(nil, pls, nil)
	case orb.MultiPolygon:
		pgs := make([]int, len(g))
		for n, pg := range g {
			pgs[n] = imp.pgon(pg, z)
		}
		k, i = types.Coll, imp.coll(nil, nil, pgs)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedGeometry, f.Geometry)
	}
	imp.props(k, i, f.Properties)
	return nil
}

func (imp importer) posis(pts []orb.Point, z float64) []int {
	out := make([]int, len(pts))
	for n, p := range pts {
		out[n] = imp.m.AddPosi([3]float64{p[0], p[1], z})
	}
	return out
}

func (imp importer) point(p orb.Point, z float64) int {
	pt := imp.m.Geom().AddPoint(imp.posis([]orb.Point{p}, z)[0])
	imp.out.Points = append(imp.out.Points, pt)
	return pt
}

// pline adds a polyline. A line string of more than two points that ends
// where it starts becomes a closed polyline.
func (imp importer) pline(ls orb.LineString, z float64) int {
	pts := []orb.Point(ls)
	closed := len(pts) > 2 && pts[0] == pts[len(pts)-1]
	if closed {
		pts = pts[:len(pts)-1]
	}
	pl := imp.m.Geom().AddPline(imp.posis(pts, z), closed)
	imp.out.Plines = append(imp.out.Plines, pl)
	return pl
}

// pgon adds a polygon. The closing point of every ring is dropped and the
// outer ring is wound counter clockwise, keeping its first point, so the
// face points up.
func (imp importer) pgon(pg orb.Polygon, z float64) int {
	rings := make([][]int, 0, len(pg))
	for n, r := range pg {
		pts := slices.Clone([]orb.Point(r))
		if len(pts) > 1 && r.Closed() {
			pts = pts[:len(pts)-1]
		}
		if n == 0 && r.Orientation() == orb.CW {
			slices.Reverse(pts[1:])
		}
		rings = append(rings, imp.posis(pts, z))
	}
	i := imp.m.AddPgon(rings[0], rings[1:]...)
	imp.out.Pgons = append(imp.out.Pgons, i)
	return i
}

func hasEmptyPolygon(g orb.Geometry) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return len(g) == 0
	case orb.MultiPolygon:
		return slices.ContainsFunc(g, func(p orb.Polygon) bool { return len(p) == 0 })
	}
	return false
}

func (imp importer) coll(pts, pls, pgs []int) int {
	c := imp.m.Geom().AddColl(-1, pts, pls, pgs)
	imp.out.Colls = append(imp.out.Colls, c)
	return c
}

func (imp importer) props(k types.EntType, i int, props geo.Properties) {
	for _, name := range types.SortedKeys(props) {
		v := props[name]
		if v == nil || name == ElevationProp {
			continue
		}
		if err := imp.m.SetAttribVal(k, i, name, v); err != nil {
			imp.log.WarnContext(context.Background(), "skipping feature property",
				"property", name, "kind", k.String(), "index", i, "error", err)
		}
	}
}

// Export writes every live point, polyline and polygon as a feature.
// Attributes of the object become properties; built-in attributes are
// left out. An object whose positions share a non-zero z gets an
// elevation property.
func Export(m *model.Model) ([]byte, error) {
	fc := geo.NewFeatureCollection()
	g := m.Geom()
	for _, pt := range g.Ents(types.Point) {
		p := g.VertPosi(g.PointVert(pt))
		fc.Append(exportFeature(m, types.Point, pt, xy(m, p)))
	}
	for _, pl := range g.Ents(types.Pline) {
		w := g.PlineWire(pl)
		posis := g.WirePosis(w)
		if g.IsWireClosed(w) && len(posis) > 0 {
			posis = append(posis, posis[0])
		}
		fc.Append(exportFeature(m, types.Pline, pl, orb.LineString(points(m, posis))))
	}
	for _, pg := range g.Ents(types.Pgon) {
		f := g.PgonFace(pg)
		poly := orb.Polygon{ring(m, g.WirePosis(g.FaceOuter(f)))}
		for _, h := range g.FaceHoles(f) {
			poly = append(poly, ring(m, g.WirePosis(h)))
		}
		fc.Append(exportFeature(m, types.Pgon, pg, poly))
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding geojson: %w", err)
	}
	return b, nil
}

func xy(m *model.Model, p int) orb.Point {
	xyz := m.Attribs().PosiCoords(p)
	return orb.Point{xyz[0], xyz[1]}
}

func points(m *model.Model, posis []int) []orb.Point {
	out := make([]orb.Point, len(posis))
	for n, p := range posis {
		out[n] = xy(m, p)
	}
	return out
}

func ring(m *model.Model, posis []int) orb.Ring {
	r := orb.Ring(points(m, posis))
	if len(r) > 0 && !r.Closed() {
		r = append(r, r[0])
	}
	return r
}

func exportFeature(m *model.Model, k types.EntType, i int, g orb.Geometry) *geo.Feature {
	f := geo.NewFeature(g)
	a := m.Attribs()
	for _, name := range a.Names(k) {
		if attribs.IsBuiltIn(name) {
			continue
		}
		if v, ok := a.Val(k, i, name); ok && v != nil {
			f.Properties[name] = v
		}
	}
	if z, ok := flatZ(m, k, i); ok && z != 0 {
		f.Properties[ElevationProp] = z
	}
	return f
}

// flatZ returns the z shared by every position of an object.
func flatZ(m *model.Model, k types.EntType, i int) (float64, bool) {
	posis := m.Geom().NavAnyToPosi(k, i)
	if len(posis) == 0 {
		return 0, false
	}
	z := m.Attribs().PosiCoords(posis[0])[2]
	for _, p := range posis[1:] {
		if m.Attribs().PosiCoords(p)[2] != z {
			return 0, false
		}
	}
	return z, true
}
