package geom

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

func TestGetSetDataRoundTrip(t *testing.T) {
	f := sample(t)
	f.g.AddPoint(f.posi(5, 5, 5))
	f.g.DelPline(0)
	f.g.RemPosi(1)
	f.g.SetSelected([]types.EntRef{{Kind: types.Pgon, Index: 0}})
	require.Empty(t, f.g.Check())

	data := f.g.GetData()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	var decoded types.GeomData
	require.NoError(t, json.Unmarshal(raw, &decoded))

	g2 := New(nil)
	g2.SetCoords(f.coords)
	require.NoError(t, g2.SetData(decoded))
	assert.Empty(t, g2.Check())
	assert.Equal(t, data, g2.GetData())
	assert.Equal(t, Deleted, g2.State(types.Posi, 1))
	assert.Equal(t, Deleted, g2.State(types.Pline, 0))
}

func TestSetDataRejectsRaggedPayload(t *testing.T) {
	d := types.GeomData{PosisI: []int{0, 1}, PosisTs: []types.Ref{1}}
	err := New(nil).SetData(d)
	assert.ErrorIs(t, err, types.ErrInvalidPayload)
}

func TestDumpCopiesIndexForIndex(t *testing.T) {
	f := sample(t)
	f.g.DelPoint(0)

	dst := New(nil)
	dst.Dump(f.g)
	assert.Equal(t, f.g.GetData(), dst.GetData())
	assert.Empty(t, dst.Check())

	// no aliasing between the two stores
	dst.AddPoint(dst.AddPosi())
	require.NoError(t, dst.Reverse(dst.PlineWire(0)))
	assert.NotEqual(t, f.g.GetData(), dst.GetData())
	assert.Empty(t, f.g.Check())
}

func TestMerge(t *testing.T) {
	t.Run("unmodified clone", func(t *testing.T) {
		f := sample(t)
		clone := f.g.Clone(f.g.Clock().Fork())
		before := f.g.GetData()
		require.NoError(t, f.g.Merge(clone))
		assert.Equal(t, before, f.g.GetData())
	})

	t.Run("independent edits conflict", func(t *testing.T) {
		f := sample(t)
		clone := f.g.Clone(f.g.Clock().Fork())
		f.g.UpdateEntTs(types.Posi, 2)
		clone.UpdateEntTs(types.Posi, 2)

		err := f.g.Merge(clone)
		require.ErrorIs(t, err, types.ErrMergeConflict)
		var ce *types.ConflictError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, types.Posi, ce.Kind)
		assert.Equal(t, 2, ce.Index)
		assert.Contains(t, err.Error(), "positions")
	})

	t.Run("deleted on one side conflicts", func(t *testing.T) {
		f := sample(t)
		clone := f.g.Clone(f.g.Clock().Fork())
		clone.DelPoint(0)
		assert.ErrorIs(t, f.g.Merge(clone), types.ErrMergeConflict)
	})

	t.Run("donor additions are copied", func(t *testing.T) {
		f := sample(t)
		clone := f.g.Clone(f.g.Clock().Fork())
		p := clone.AddPosi()
		pt := clone.AddPoint(p)

		require.NoError(t, f.g.Merge(clone))
		assert.True(t, f.g.Has(types.Point, pt))
		want, _ := clone.EntTs(types.Point, pt)
		got, _ := f.g.EntTs(types.Point, pt)
		assert.Equal(t, want, got)
		assert.Empty(t, f.g.Check())
	})

	t.Run("objects added on both sides conflict", func(t *testing.T) {
		f := sample(t)
		clone := f.g.Clone(f.g.Clock().Fork())
		before := f.g.GetData()
		f.g.AddPoint(0)
		clone.AddPline([]int{1, 2}, false)
		added := f.g.GetData()

		err := f.g.Merge(clone)
		require.ErrorIs(t, err, types.ErrMergeConflict)
		var ce *types.ConflictError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, types.Point, ce.Kind)
		assert.Equal(t, 1, ce.Index)
		assert.Equal(t, added, f.g.GetData())
		assert.NotEqual(t, before, added)
		assert.Empty(t, f.g.Check())
	})

	t.Run("polygon and polyline added on both sides conflict", func(t *testing.T) {
		f := sample(t)
		clone := f.g.Clone(f.g.Clock().Fork())
		clone.SetCoords(f.coords)
		pl := f.g.AddPline([]int{4, 5}, false)
		_, err := clone.AddPgon([]int{0, 1, 2})
		require.NoError(t, err)

		err = f.g.Merge(clone)
		var ce *types.ConflictError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, types.Pline, ce.Kind)
		assert.Equal(t, pl, ce.Index)
		assert.Empty(t, f.g.Check())
	})

	t.Run("corrupt timestamp table", func(t *testing.T) {
		f := sample(t)
		other := f.g.Clone(NewClock())
		other.DelEntTs(types.Pgon, 0)
		assert.ErrorIs(t, f.g.Merge(other), types.ErrTimestampCorrupt)
	})
}

func TestPurge(t *testing.T) {
	f := newFixture()
	var pts []int
	for i := 0; i < 3; i++ {
		pts = append(pts, f.g.AddPoint(f.posi(float64(i), 0, 0)))
	}
	f.g.DelPoint(pts[1])
	f.g.RemPosi(1)
	f.g.SetSelected([]types.EntRef{{Kind: types.Point, Index: 2}, {Kind: types.Point, Index: 1}})

	r := f.g.Purge()
	assert.Equal(t, []int{0, -1, 1}, r[types.Point])
	assert.Equal(t, []int{0, -1, 1}, r[types.Posi])
	assert.Equal(t, 2, f.g.Len(types.Point))
	assert.Equal(t, 2, f.g.Len(types.Posi))
	assert.Equal(t, 1, f.g.VertPosi(f.g.PointVert(1)))
	assert.Equal(t, []types.EntRef{{Kind: types.Point, Index: 1}}, f.g.Selected())
	assert.Empty(t, f.g.Check())
}

func TestDumpSelect(t *testing.T) {
	f := newFixture()
	_, err := f.g.AddPgon(f.square(0, 0, 1))
	require.NoError(t, err)
	pg, err := f.g.AddPgon(f.square(5, 5, 1))
	require.NoError(t, err)
	f.g.AddColl(-1, nil, nil, []int{0, pg})

	sel := NewEntSets()
	sel.Add(types.Pgon, pg)
	dst := New(nil)
	dst.DumpSelect(f.g, sel)

	assert.Equal(t, []int{pg}, dst.Ents(types.Pgon))
	assert.Equal(t, f.g.NavAnyToPosi(types.Pgon, pg), dst.Ents(types.Posi))
	assert.Equal(t, 0, dst.NumEnts(types.Coll))
	assert.Empty(t, dst.Check())

	sel.Add(types.Coll, 0)
	dst = New(nil)
	dst.DumpSelect(f.g, sel)
	assert.Equal(t, 2, dst.NumEnts(types.Pgon))
	assert.Empty(t, dst.Check())
}
