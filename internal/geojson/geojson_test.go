package geojson

import (
	"testing"

	"github.com/paulmach/orb"
	geo "github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/geokernel/pkg/model"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

const sampleFC = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "well", "elevation": 3},
     "geometry": {"type": "Point", "coordinates": [1, 2]}},
    {"type": "Feature", "properties": {"name": "fence"},
     "geometry": {"type": "LineString", "coordinates": [[0, 0], [4, 0], [4, 4], [0, 0]]}},
    {"type": "Feature", "properties": {"name": "yard", "area": 12},
     "geometry": {"type": "Polygon", "coordinates": [
        [[0, 0], [0, 4], [4, 4], [4, 0], [0, 0]],
        [[1, 1], [2, 1], [2, 2], [1, 2], [1, 1]]]}},
    {"type": "Feature", "properties": {"name": "trees"},
     "geometry": {"type": "MultiPoint", "coordinates": [[5, 5], [6, 6]]}}
  ]
}`

func TestImport(t *testing.T) {
	m := model.New()
	got, err := Import(m, []byte(sampleFC), ImportOptions{Elevation: 1})
	require.NoError(t, err)
	assert.Empty(t, m.Check())

	assert.Equal(t, []int{0, 1, 2}, got.Points)
	assert.Equal(t, []int{0}, got.Plines)
	assert.Equal(t, []int{0}, got.Pgons)
	assert.Equal(t, []int{0}, got.Colls)

	g, a := m.Geom(), m.Attribs()

	well := g.VertPosi(g.PointVert(0))
	assert.Equal(t, [3]float64{1, 2, 3}, a.PosiCoords(well))
	assert.False(t, a.HasAttrib(types.Point, ElevationProp))

	w := g.PlineWire(0)
	assert.True(t, g.IsWireClosed(w))
	assert.Len(t, g.WirePosis(w), 3)

	f := g.PgonFace(0)
	outer := g.WirePosis(g.FaceOuter(f))
	require.Len(t, outer, 4)
	assert.Equal(t, [3]float64{0, 0, 1}, a.PosiCoords(outer[0]))
	assert.Equal(t, [3]float64{4, 0, 1}, a.PosiCoords(outer[1]), "outer ring is wound counter clockwise")
	assert.Len(t, g.FaceHoles(f), 1)
	assert.NotEmpty(t, g.FaceTris(f))

	v, ok := a.Val(types.Pgon, 0, "area")
	require.True(t, ok)
	assert.Equal(t, 12.0, v)
	v, _ = a.Val(types.Coll, 0, "name")
	assert.Equal(t, "trees", v)
	assert.Equal(t, []int{1, 2}, g.CollMembers(0, types.Point))
}

func TestImportSkipsClashingProperty(t *testing.T) {
	fc := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "properties": {"height": 3}, "geometry": {"type": "Point", "coordinates": [0, 0]}},
	  {"type": "Feature", "properties": {"height": "tall"}, "geometry": {"type": "Point", "coordinates": [1, 0]}}]}`
	m := model.New()
	_, err := Import(m, []byte(fc), ImportOptions{})
	require.NoError(t, err)
	_, ok := m.Attribs().Val(types.Point, 1, "height")
	assert.False(t, ok)
}

func TestImportErrors(t *testing.T) {
	_, err := Import(model.New(), []byte("{"), ImportOptions{})
	assert.Error(t, err)

	fc := `{"type": "FeatureCollection", "features": [{"type": "Feature", "properties": {},
	  "geometry": {"type": "GeometryCollection", "geometries": []}}]}`
	_, err = Import(model.New(), []byte(fc), ImportOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)
}

func TestExport(t *testing.T) {
	m := model.New()
	_, err := Import(m, []byte(sampleFC), ImportOptions{})
	require.NoError(t, err)

	b, err := Export(m)
	require.NoError(t, err)
	fc, err := geo.UnmarshalFeatureCollection(b)
	require.NoError(t, err)
	require.Len(t, fc.Features, 5)

	well := fc.Features[0]
	assert.Equal(t, orb.Point{1, 2}, well.Geometry)
	assert.Equal(t, 3.0, well.Properties[ElevationProp])
	assert.Equal(t, "well", well.Properties["name"])
	_, hasElev := fc.Features[1].Properties[ElevationProp]
	assert.False(t, hasElev, "objects at z 0 carry no elevation")

	fence, ok := fc.Features[3].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, fence, 4)
	assert.Equal(t, fence[0], fence[3])

	yard, ok := fc.Features[4].Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, yard, 2)
	assert.True(t, yard[0].Closed())
	assert.Equal(t, orb.CCW, yard[0].Orientation())
}

func TestExportImportRoundTrip(t *testing.T) {
	fc := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "properties": {"name": "a", "elevation": 2}, "geometry": {"type": "Point", "coordinates": [1, 1]}},
	  {"type": "Feature", "properties": {"name": "b"}, "geometry": {"type": "LineString", "coordinates": [[0, 0], [3, 1]]}},
	  {"type": "Feature", "properties": {"name": "c"}, "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [2, 0], [2, 2], [0, 0]]]}}]}`
	ref := model.New()
	_, err := Import(ref, []byte(fc), ImportOptions{})
	require.NoError(t, err)

	b, err := Export(ref)
	require.NoError(t, err)
	back := model.New()
	_, err = Import(back, b, ImportOptions{})
	require.NoError(t, err)

	r := model.Compare(ref, back, model.DefaultOptions())
	assert.True(t, r.Match(), r.String())
}
