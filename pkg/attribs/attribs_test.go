package attribs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/geokernel/pkg/geom"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

func TestNewHasXYZ(t *testing.T) {
	a := New()
	assert.Equal(t, []string{XYZ}, a.Names(types.Posi))
	dt, err := a.DataType(types.Posi, XYZ)
	require.NoError(t, err)
	assert.Equal(t, types.DataTypeList, dt)
	assert.Equal(t, [3]float64{}, a.PosiCoords(7))
}

func TestPosiCoords(t *testing.T) {
	a := New()
	a.SetPosiCoords(2, [3]float64{1, 2, 3})
	assert.Equal(t, [3]float64{1, 2, 3}, a.PosiCoords(2))

	v, ok := a.Val(types.Posi, 2, XYZ)
	require.True(t, ok)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, v)
}

func TestAddAttrib(t *testing.T) {
	tests := []struct {
		name    string
		kind    types.EntType
		attrib  string
		dtype   types.DataType
		wantErr error
	}{
		{"new column", types.Pgon, "height", types.DataTypeNumber, nil},
		{"same type again", types.Posi, XYZ, types.DataTypeList, nil},
		{"different type", types.Posi, XYZ, types.DataTypeString, types.ErrAttribExists},
		{"bad type", types.Pgon, "x", types.DataType("float"), types.ErrDataTypeMismatch},
		{"kind without table", types.Tri, "x", types.DataTypeNumber, types.ErrUnknownEntType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().AddAttrib(tt.kind, tt.attrib, tt.dtype)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSetVal(t *testing.T) {
	a := New()
	require.NoError(t, a.SetVal(types.Pgon, 0, "name", "roof"))
	dt, err := a.DataType(types.Pgon, "name")
	require.NoError(t, err)
	assert.Equal(t, types.DataTypeString, dt)

	err = a.SetVal(types.Pgon, 1, "name", 3)
	assert.ErrorIs(t, err, types.ErrDataTypeMismatch)

	// explicit null is distinct from no value
	require.NoError(t, a.SetVal(types.Pgon, 1, "name", nil))
	v, ok := a.Val(types.Pgon, 1, "name")
	assert.True(t, ok)
	assert.Nil(t, v)
	_, ok = a.Val(types.Pgon, 2, "name")
	assert.False(t, ok)

	assert.ErrorIs(t, a.SetVal(types.Pgon, 0, "missing", nil), types.ErrAttribNotFound)

	a.DelVal(types.Pgon, 0, "name")
	assert.Equal(t, []int{1}, a.Indices(types.Pgon, "name"))
}

func TestValuesAreCopied(t *testing.T) {
	a := New()
	in := map[string]any{"k": []any{1.0}}
	require.NoError(t, a.SetVal(types.Coll, 0, "props", in))
	in["k"] = "changed"

	v, _ := a.Val(types.Coll, 0, "props")
	v.(map[string]any)["k"] = "changed again"

	got, _ := a.Val(types.Coll, 0, "props")
	assert.Equal(t, map[string]any{"k": []any{1.0}}, got)
}

func TestRenameAndDeleteAttrib(t *testing.T) {
	a := New()
	require.NoError(t, a.SetVal(types.Point, 0, "a", 1))
	require.NoError(t, a.SetVal(types.Point, 0, "b", 2))

	require.NoError(t, a.RenameAttrib(types.Point, "a", "c"))
	assert.Equal(t, []string{"c", "b"}, a.Names(types.Point))
	assert.ErrorIs(t, a.RenameAttrib(types.Point, "c", "b"), types.ErrAttribExists)

	require.NoError(t, a.DelAttrib(types.Point, "c"))
	assert.Equal(t, []string{"b"}, a.Names(types.Point))
	assert.ErrorIs(t, a.DelAttrib(types.Posi, XYZ), types.ErrAttribExists)
}

func TestModelAttribs(t *testing.T) {
	a := New()
	require.NoError(t, a.SetModelVal("sun", []float64{0, 0, 1}))
	require.NoError(t, a.SetModelVal("hour", 12))
	require.NoError(t, a.SetModelVal("sun", []float64{1, 0, 0}))

	assert.Equal(t, []string{"sun", "hour"}, a.ModelNames())
	assert.True(t, a.HasAttrib(types.Mod, "hour"))
	v, ok := a.ModelVal("sun")
	require.True(t, ok)
	assert.Equal(t, []any{1.0, 0.0, 0.0}, v)
}

func TestGetDataGroupsRuns(t *testing.T) {
	a := New()
	require.NoError(t, a.SetVals(types.Pgon, []int{3, 0, 1}, "type", "wall"))
	require.NoError(t, a.SetVal(types.Pgon, 2, "type", "roof"))

	d := a.GetData()
	require.Len(t, d.Pgons, 1)
	assert.Equal(t, []types.AttribEntry{
		{Indices: []int{0, 1, 3}, Value: "wall"},
		{Indices: []int{2}, Value: "roof"},
	}, d.Pgons[0].Data)
}

func TestSetDataRoundTrip(t *testing.T) {
	a := New()
	a.SetPosiCoords(0, [3]float64{1, 2, 3})
	a.SetPosiCoords(1, [3]float64{4, 5, 6})
	require.NoError(t, a.SetVal(types.Vert, 0, "rgb", []float64{1, 0, 0}))
	require.NoError(t, a.SetVal(types.Coll, 0, "props", map[string]any{"a": true}))
	require.NoError(t, a.AddAttrib(types.Point, "label", types.DataTypeString))
	require.NoError(t, a.SetVal(types.Point, 0, "label", nil))
	require.NoError(t, a.SetModelVal("title", "demo"))

	raw, err := json.Marshal(a.GetData())
	require.NoError(t, err)
	var d types.AttribsData
	require.NoError(t, json.Unmarshal(raw, &d))

	b := New()
	require.NoError(t, b.SetData(d))
	assert.Equal(t, a.GetData(), b.GetData())
	assert.Equal(t, [3]float64{4, 5, 6}, b.PosiCoords(1))
}

func TestSetDataRejectsWrongValueType(t *testing.T) {
	d := types.AttribsData{
		Pgons: []types.AttribData{{
			Name:     "h",
			DataType: types.DataTypeNumber,
			Data:     []types.AttribEntry{{Indices: []int{0}, Value: "tall"}},
		}},
	}
	assert.ErrorIs(t, New().SetData(d), types.ErrDataTypeMismatch)
}

func TestMerge(t *testing.T) {
	a := New()
	require.NoError(t, a.SetVal(types.Pgon, 0, "h", 1))
	b := New()
	require.NoError(t, b.SetVal(types.Pgon, 0, "h", 2))
	require.NoError(t, b.SetVal(types.Pgon, 1, "h", 3))
	require.NoError(t, b.SetModelVal("m", "x"))

	require.NoError(t, a.Merge(b))
	v, _ := a.Val(types.Pgon, 0, "h")
	assert.Equal(t, 2.0, v)
	assert.Equal(t, []int{0, 1}, a.Indices(types.Pgon, "h"))
	assert.True(t, a.HasModelAttrib("m"))

	c := New()
	require.NoError(t, c.SetVal(types.Pgon, 5, "h", "tall"))
	before := a.GetData()
	err := a.Merge(c)
	assert.ErrorIs(t, err, types.ErrDataTypeMismatch)
	assert.Contains(t, err.Error(), "cannot merge attributes with different data types")
	assert.Equal(t, before, a.GetData())
}

func TestDumpSelectAndRemap(t *testing.T) {
	a := New()
	for i := 0; i < 4; i++ {
		a.SetPosiCoords(i, [3]float64{float64(i), 0, 0})
	}
	require.NoError(t, a.SetModelVal("m", 1))

	sel := geom.NewEntSets()
	sel.Add(types.Posi, 1, 3)
	b := New()
	b.DumpSelect(a, sel)
	assert.Equal(t, []int{1, 3}, b.Indices(types.Posi, XYZ))
	assert.True(t, b.HasModelAttrib("m"))

	b.Remap(geom.Remap{types.Posi: {-1, 0, -1, 1}})
	assert.Equal(t, []int{0, 1}, b.Indices(types.Posi, XYZ))
	assert.Equal(t, [3]float64{3, 0, 0}, b.PosiCoords(1))
}

func TestCloneIsIndependent(t *testing.T) {
	a := New()
	a.SetPosiCoords(0, [3]float64{1, 1, 1})
	b := a.Clone()
	b.SetPosiCoords(0, [3]float64{2, 2, 2})
	assert.Equal(t, [3]float64{1, 1, 1}, a.PosiCoords(0))
	assert.Equal(t, a.Names(types.Posi), b.Names(types.Posi))
}

func TestCompare(t *testing.T) {
	ref := New()
	require.NoError(t, ref.SetVal(types.Pgon, 0, "h", 1))
	require.NoError(t, ref.SetVal(types.Pgon, 0, "type", "wall"))
	require.NoError(t, ref.SetVal(types.Vert, 0, "rgb", []float64{1, 1, 1}))

	t.Run("identical", func(t *testing.T) {
		score, total, comments := ref.Compare(ref.Clone())
		assert.Equal(t, 2, total)
		assert.Equal(t, 2, score)
		assert.Equal(t, []string{"Attributes all match, both name and data type."}, comments)
	})

	t.Run("wrong type and extra", func(t *testing.T) {
		cand := New()
		require.NoError(t, cand.SetVal(types.Pgon, 0, "h", "1"))
		require.NoError(t, cand.SetVal(types.Pgon, 0, "type", "wall"))
		require.NoError(t, cand.SetVal(types.Pgon, 0, "extra", true))
		require.NoError(t, cand.SetVal(types.Vert, 0, "rgb", []float64{1, 1, 1}))

		score, total, comments := ref.Compare(cand)
		assert.Equal(t, 2, total)
		assert.Equal(t, 0, score)
		assert.Contains(t, comments,
			`The "h" polygons attribute datatype is wrong. It is "string" but it should be "number".`)
		assert.Contains(t, comments,
			"There are additional polygons attributes. The following attributes are not required: [extra].")
	})

	t.Run("missing", func(t *testing.T) {
		cand := New()
		score, total, comments := ref.Compare(cand)
		assert.Equal(t, 2, total)
		assert.Equal(t, 0, score)
		assert.Contains(t, comments, `The "h" polygons attribute is missing.`)
		assert.Contains(t, comments, "Mismatch: Model has too few vertices attributes.")
	})
}
