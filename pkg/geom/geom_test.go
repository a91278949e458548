package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

type coordMap map[int][3]float64

func (m coordMap) PosiCoords(p int) [3]float64 { return m[p] }

type fixture struct {
	g      *Geom
	coords coordMap
}

func newFixture() *fixture {
	f := &fixture{g: New(nil), coords: coordMap{}}
	f.g.SetCoords(f.coords)
	return f
}

func (f *fixture) posi(x, y, z float64) int {
	p := f.g.AddPosi()
	f.coords[p] = [3]float64{x, y, z}
	return p
}

func (f *fixture) posis(pts ...[3]float64) []int {
	out := make([]int, len(pts))
	for i, p := range pts {
		out[i] = f.posi(p[0], p[1], p[2])
	}
	return out
}

func (f *fixture) square(x, y, size float64) []int {
	return f.posis(
		[3]float64{x, y, 0},
		[3]float64{x + size, y, 0},
		[3]float64{x + size, y + size, 0},
		[3]float64{x, y + size, 0},
	)
}

// sample builds one point, one open polyline, one polygon with a hole
// and a collection holding all three.
func sample(t *testing.T) *fixture {
	t.Helper()
	f := newFixture()
	pt := f.g.AddPoint(f.posi(10, 10, 0))
	pl := f.g.AddPline(f.posis([3]float64{0, 5, 0}, [3]float64{1, 6, 0}, [3]float64{2, 5, 0}), false)
	pg, err := f.g.AddPgon(f.square(0, 0, 4), f.square(1, 1, 2))
	require.NoError(t, err)
	f.g.AddColl(-1, []int{pt}, []int{pl}, []int{pg})
	require.Empty(t, f.g.Check())
	return f
}

func TestAddPgonBuildsConsistentTopology(t *testing.T) {
	f := newFixture()
	pg, err := f.g.AddPgon(f.square(0, 0, 1))
	require.NoError(t, err)

	face := f.g.PgonFace(pg)
	assert.Len(t, f.g.FaceTris(face), 2)
	assert.Equal(t, 1, f.g.NumEnts(types.Wire))
	assert.Equal(t, 4, f.g.NumEnts(types.Edge))
	assert.Equal(t, 4, f.g.NumEnts(types.Vert))
	assert.True(t, f.g.IsWireClosed(f.g.FaceOuter(face)))
	assert.Empty(t, f.g.Check())
}

func TestAddPgonWithoutCoordsLeavesNoTris(t *testing.T) {
	g := New(nil)
	ps := []int{g.AddPosi(), g.AddPosi(), g.AddPosi()}
	pg, err := g.AddPgon(ps)
	assert.ErrorIs(t, err, ErrNoCoords)
	assert.True(t, g.Has(types.Pgon, pg))
	assert.Empty(t, g.FaceTris(g.PgonFace(pg)))
}

func TestAddPline(t *testing.T) {
	tests := []struct {
		name      string
		closed    bool
		wantEdges int
	}{
		{"open", false, 2},
		{"closed", true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ps := f.posis([3]float64{0, 0, 0}, [3]float64{1, 0, 0}, [3]float64{1, 1, 0})
			pl := f.g.AddPline(ps, tt.closed)
			w := f.g.PlineWire(pl)
			assert.Len(t, f.g.WireEdges(w), tt.wantEdges)
			assert.Equal(t, tt.closed, f.g.IsWireClosed(w))
			assert.Equal(t, ps, f.g.WirePosis(w))
			assert.Empty(t, f.g.Check())
		})
	}
}

func TestNavPgonToPosiMatchesManualWalk(t *testing.T) {
	f := sample(t)
	for _, pg := range f.g.Ents(types.Pgon) {
		var want []int
		seen := map[int]bool{}
		for _, w := range f.g.FaceWires(f.g.PgonFace(pg)) {
			for _, e := range f.g.WireEdges(w) {
				for _, v := range f.g.EdgeVerts(e) {
					p := f.g.VertPosi(v)
					if !seen[p] {
						seen[p] = true
						want = append(want, p)
					}
				}
			}
		}
		assert.Equal(t, want, f.g.Nav(types.Pgon, types.Posi, pg))
	}
}

func TestNav(t *testing.T) {
	f := sample(t)
	g := f.g

	t.Run("same kind", func(t *testing.T) {
		assert.Equal(t, []int{0}, g.Nav(types.Pgon, types.Pgon, 0))
	})
	t.Run("down to tris only when asked", func(t *testing.T) {
		assert.Len(t, g.Nav(types.Pgon, types.Tri, 0), 8)
		assert.Len(t, g.Nav(types.Pgon, types.Wire, 0), 2)
	})
	t.Run("up from a position", func(t *testing.T) {
		p := g.NavAnyToPosi(types.Pgon, 0)[0]
		assert.Equal(t, []int{0}, g.Nav(types.Posi, types.Pgon, p))
		assert.Equal(t, []int{0}, g.Nav(types.Posi, types.Coll, p))
	})
	t.Run("collection down", func(t *testing.T) {
		assert.Len(t, g.Nav(types.Coll, types.Posi, 0), 1+3+8)
	})
	t.Run("edge up to its polyline", func(t *testing.T) {
		e := g.WireEdges(g.PlineWire(0))[0]
		assert.Equal(t, []int{e}, g.Nav(types.Edge, types.Edge, e))
		assert.Equal(t, []int{0}, g.Nav(types.Edge, types.Pline, e))
	})
	t.Run("sideways through positions", func(t *testing.T) {
		e := g.WireEdges(g.FaceOuter(g.PgonFace(0)))[0]
		tris := g.Nav(types.Edge, types.Tri, e)
		assert.NotEmpty(t, tris)
		for _, tri := range tris {
			f, ok := g.TriFace(tri)
			require.True(t, ok)
			assert.Equal(t, g.PgonFace(0), f)
		}
		assert.Empty(t, g.Nav(types.Point, types.Pgon, 0))
	})
}

func TestReverseWire(t *testing.T) {
	t.Run("open polyline", func(t *testing.T) {
		f := newFixture()
		ps := f.posis([3]float64{0, 0, 0}, [3]float64{1, 0, 0}, [3]float64{2, 0, 0})
		pl := f.g.AddPline(ps, false)
		w := f.g.PlineWire(pl)
		require.NoError(t, f.g.Reverse(w))
		assert.Equal(t, []int{ps[2], ps[1], ps[0]}, f.g.WirePosis(w))
		assert.Empty(t, f.g.Check())
	})
	t.Run("polygon outer", func(t *testing.T) {
		f := newFixture()
		pg, err := f.g.AddPgon(f.square(0, 0, 2))
		require.NoError(t, err)
		face := f.g.PgonFace(pg)
		require.NoError(t, f.g.Reverse(f.g.FaceOuter(face)))
		assert.Len(t, f.g.FaceTris(face), 2)
		assert.Empty(t, f.g.Check())
	})
}

func TestShiftClosedWire(t *testing.T) {
	f := newFixture()
	ps := f.square(0, 0, 1)
	pg, err := f.g.AddPgon(ps)
	require.NoError(t, err)
	w := f.g.FaceOuter(f.g.PgonFace(pg))

	f.g.Shift(w, 1)
	assert.Equal(t, []int{ps[1], ps[2], ps[3], ps[0]}, f.g.WirePosis(w))
	f.g.Shift(w, -1)
	assert.Equal(t, ps, f.g.WirePosis(w))
	assert.Empty(t, f.g.Check())
}

func TestShiftOpenWireIsNoop(t *testing.T) {
	f := newFixture()
	ps := f.posis([3]float64{0, 0, 0}, [3]float64{1, 0, 0}, [3]float64{2, 0, 0})
	w := f.g.PlineWire(f.g.AddPline(ps, false))
	f.g.Shift(w, 1)
	assert.Equal(t, ps, f.g.WirePosis(w))
}

func TestSetFaceHoles(t *testing.T) {
	f := newFixture()
	pg, err := f.g.AddPgon(f.square(0, 0, 4), f.square(1, 1, 2))
	require.NoError(t, err)
	face := f.g.PgonFace(pg)
	hole := f.g.FaceHoles(face)[0]

	require.NoError(t, f.g.SetFaceHoles(face, nil))
	assert.Len(t, f.g.FaceTris(face), 2)
	_, ok := f.g.WireFace(hole)
	assert.False(t, ok)

	require.NoError(t, f.g.SetFaceHoles(face, []int{hole}))
	assert.Len(t, f.g.FaceTris(face), 8)
	assert.Empty(t, f.g.Check())
}

func TestDeleteObjectsKeepsStoreConsistent(t *testing.T) {
	f := sample(t)
	f.g.DelPgon(0)
	f.g.DelPline(0)
	f.g.DelPoint(0)

	assert.Empty(t, f.g.Check())
	assert.Equal(t, 0, f.g.NumEnts(types.Vert))
	assert.Equal(t, 0, f.g.NumEnts(types.Tri))
	assert.Equal(t, Deleted, f.g.State(types.Pgon, 0))
	assert.Equal(t, Absent, f.g.State(types.Pgon, 1))

	coll, ok := f.g.Coll(0)
	require.True(t, ok)
	assert.Empty(t, coll.Pgons)

	removed := f.g.DelUnusedPosis(f.g.Ents(types.Posi))
	assert.Len(t, removed, 12)
	assert.Equal(t, 0, f.g.NumEnts(types.Posi))
	assert.Empty(t, f.g.Check())
}

func TestCollections(t *testing.T) {
	f := sample(t)
	g := f.g
	child := g.AddColl(0, nil, nil, []int{0})
	grand := g.AddColl(child, []int{0}, nil, nil)

	assert.Equal(t, []int{child, 0}, g.CollAncestors(grand))
	assert.ErrorIs(t, g.SetCollParent(0, grand), types.ErrCollCycle)
	assert.ErrorIs(t, g.SetCollParent(0, 0), types.ErrCollCycle)

	require.NoError(t, g.CollAddEnts(child, []int{0, 0}, []int{0}, nil))
	assert.Equal(t, []int{0}, g.CollMembers(child, types.Point))
	assert.ElementsMatch(t, []int{0, child, grand}, g.ObjColls(types.Point, 0))

	require.NoError(t, g.CollRemoveEnts(child, []int{0}, nil, nil))
	assert.Empty(t, g.CollMembers(child, types.Point))
	assert.Empty(t, g.Check())

	g.RemColl(child)
	assert.Equal(t, -1, g.CollParent(grand))
	assert.Empty(t, g.Check())
}

func TestTimestampsPropagateToObjects(t *testing.T) {
	f := sample(t)
	g := f.g
	before, ok := g.EntTs(types.Pgon, 0)
	require.True(t, ok)

	v := g.WireVerts(g.FaceOuter(g.PgonFace(0)))[0]
	g.UpdateObjsTs(types.Vert, v)
	after, _ := g.EntTs(types.Pgon, 0)
	assert.Greater(t, after, before)

	g.UpdateObjsTs(types.Coll, 0)
	collTs, _ := g.EntTs(types.Coll, 0)
	ptTs, _ := g.EntTs(types.Point, 0)
	assert.Equal(t, collTs, ptTs)
}

func TestTopoObj(t *testing.T) {
	f := sample(t)
	g := f.g
	face := g.PgonFace(0)

	kind, i, ok := g.TopoObj(types.Tri, g.FaceTris(face)[0])
	require.True(t, ok)
	assert.Equal(t, types.Pgon, kind)
	assert.Equal(t, 0, i)

	kind, _, ok = g.TopoObj(types.Vert, g.PointVert(0))
	require.True(t, ok)
	assert.Equal(t, types.Point, kind)

	_, _, ok = g.TopoObj(types.Posi, 0)
	assert.False(t, ok)
}

func TestClockForkDiverges(t *testing.T) {
	c := NewClock()
	c.Next()
	fork := c.Fork()
	assert.Equal(t, c.Now()>>saltBits, fork.Now()>>saltBits)
	assert.NotEqual(t, c.Next(), fork.Next())

	c.Observe(fork.Now() + 5<<saltBits)
	assert.Equal(t, fork.Now()>>saltBits+5, c.Now()>>saltBits)
}

func TestClockSaltUsesFullWidth(t *testing.T) {
	mask := 1<<saltBits - 1
	wide := false
	for range 64 {
		salt := NewClock().Now() & mask
		assert.NotZero(t, salt)
		if salt >= 1<<16 {
			wide = true
		}
	}
	assert.True(t, wide)
	assert.Zero(t, NewClock().Next()>>saltBits-1)
}
