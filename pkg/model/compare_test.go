package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

func findComment(r Result, text string) (Comment, bool) {
	for _, c := range r.Comments {
		if c.Text == text {
			return c, true
		}
	}
	return Comment{}, false
}

func TestCompareIdentical(t *testing.T) {
	m := sample(t)
	r := Compare(m, m.Clone(), DefaultOptions())
	assert.True(t, r.Match())
	assert.Equal(t, 100, r.Percent)
	assert.Equal(t, []Comment{{Text: "RESULT: The two models match."}}, r.Comments)
}

func TestCompareDoesNotModifyInputs(t *testing.T) {
	m := sample(t)
	cand := m.Clone()
	require.NoError(t, cand.Geom().Reverse(cand.Geom().PlineWire(0)))
	before, candBefore := m.GetData(), cand.GetData()
	Compare(m, cand, DefaultOptions())
	assert.Equal(t, before, m.GetData())
	assert.Equal(t, candBefore, cand.GetData())
}

func TestCompareIgnoresCreationOrder(t *testing.T) {
	ref := New()
	ref.Geom().AddPline([]int{
		ref.AddPosi([3]float64{0, 0, 0}),
		ref.AddPosi([3]float64{3, 0, 0}),
		ref.AddPosi([3]float64{3, 2, 0}),
	}, false)
	ref.AddPgon(square(ref, 5, 5, 2))

	cand := New()
	cand.AddPgon([]int{
		cand.AddPosi([3]float64{7, 7, 0}),
		cand.AddPosi([3]float64{5, 7, 0}),
		cand.AddPosi([3]float64{5, 5, 0}),
		cand.AddPosi([3]float64{7, 5, 0}),
	})
	cand.Geom().AddPline([]int{
		cand.AddPosi([3]float64{3, 2, 0}),
		cand.AddPosi([3]float64{3, 0, 0}),
		cand.AddPosi([3]float64{0, 0, 0}),
	}, false)

	r := Compare(ref, cand, DefaultOptions())
	assert.True(t, r.Match(), r.String())
}

func TestCompareCountMismatch(t *testing.T) {
	m := sample(t)
	cand := m.Clone()
	cand.Geom().DelPoint(0)

	r := Compare(m, cand, DefaultOptions())
	assert.False(t, r.Match())
	c, ok := findComment(r, "Comparing the number of entities in the two models.")
	require.True(t, ok)
	assert.Contains(t, c.Details, "Mismatch: the model has 0 points but it should have 1.")
	c, ok = findComment(r, "Comparing objects in the two models.")
	require.True(t, ok)
	assert.Contains(t, c.Details, "Mismatch: 1 points entities could not be found.")
	assert.Equal(t, "RESULT: The two models do not match.", r.Comments[len(r.Comments)-1].Text)
	assert.Less(t, r.Percent, 100)
}

func TestCompareTranslated(t *testing.T) {
	m := sample(t)
	cand := m.Clone()
	for _, p := range cand.Geom().Ents(types.Posi) {
		xyz := cand.Attribs().PosiCoords(p)
		xyz[0] += 10
		cand.SetPosiCoords(p, xyz)
	}

	r := Compare(m, cand, DefaultOptions())
	assert.False(t, r.Match())
	c, ok := findComment(r, "An analysis of the geometry suggests there might be some objects that are translated.")
	require.True(t, ok, r.String())
	require.Len(t, c.Details, 3)
	for _, d := range c.Details {
		assert.Contains(t, d, "[10,0,0]")
	}
	assert.Contains(t, c.Details[0], "there is a point object")
}

func TestCompareReversedPolygon(t *testing.T) {
	ref := New()
	ref.AddPgon(square(ref, 0, 0, 4))
	cand := ref.Clone()
	g := cand.Geom()
	require.NoError(t, g.Reverse(g.FaceOuter(g.PgonFace(0))))

	r := Compare(ref, cand, DefaultOptions())
	assert.False(t, r.Match())
	c, ok := findComment(r, "An analysis of the geometry suggests there might be some objects that are translated.")
	require.True(t, ok, r.String())
	assert.Equal(t, []string{
		"It looks like there is a polygon object that has the correct shape but that is reversed.",
	}, c.Details)
}

func TestCompareModelAttribs(t *testing.T) {
	ref := sample(t)
	require.NoError(t, ref.SetMaterial("brick", map[string]any{"type": BasicMaterial, "color": []float64{1, 0, 0}}, 0))

	cand := ref.Clone()
	require.NoError(t, cand.DefineMaterial("brick", map[string]any{"color": []float64{0, 1, 0}}))

	r := Compare(ref, cand, DefaultOptions())
	assert.False(t, r.Match())
	c, ok := findComment(r, "Comparing model attributes in the two models.")
	require.True(t, ok)
	assert.Equal(t, []string{`Mismatch: the value for model attribute "brick" is incorrect.`}, c.Details)
}

func TestCompareOptionsSkipPasses(t *testing.T) {
	m := sample(t)
	r := Compare(m, m.Clone(), Options{})
	assert.True(t, r.Match())

	cand := m.Clone()
	cand.Geom().DelPoint(0)
	r = Compare(m, cand, Options{CheckAttribEquality: true})
	_, ok := findComment(r, "Comparing the number of entities in the two models.")
	assert.False(t, ok)
}

func TestResultString(t *testing.T) {
	r := Result{Percent: 50, Score: 1, Total: 2}
	r.add("heading", "detail")
	assert.Equal(t, "Percentage: 50%\nScore: 1/2\n- heading\n  - detail\n", r.String())
}

func TestNormalize(t *testing.T) {
	m := New()
	pl := m.Geom().AddPline([]int{
		m.AddPosi([3]float64{2, 1, 0}),
		m.AddPosi([3]float64{1, 0, 0}),
		m.AddPosi([3]float64{0, 0, 0}),
	}, false)
	pg := m.AddPgon(square(m, 0, 0, 10), square(m, 5, 5, 2), square(m, 1, 1, 2))

	require.NoError(t, m.Normalize())
	g := m.Geom()
	first := g.VertPosi(g.WireVerts(g.PlineWire(pl))[0])
	assert.Equal(t, [3]float64{0, 0, 0}, m.Attribs().PosiCoords(first))

	holes := g.FaceHoles(g.PgonFace(pg))
	require.Len(t, holes, 2)
	hole := g.VertPosi(g.WireVerts(holes[0])[0])
	assert.Equal(t, [3]float64{1, 1, 0}, m.Attribs().PosiCoords(hole))
	assert.Empty(t, m.Check())

	once := m.GetData()
	require.NoError(t, m.Normalize())
	assert.Equal(t, once, m.GetData())
}

func TestValFprint(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"nil", nil, "."},
		{"rounds to two decimals", 1.23456, "1.23"},
		{"negative zero", -0.001, "0"},
		{"string", "wall", "wall"},
		{"bool", true, "true"},
		{"list", []any{1.0, 2.5, "a"}, "1,2.5,a"},
		{"dict sorted by key", map[string]any{"b": 2.0, "a": 1.0}, "a=1b=2"},
		{"typed slice", []float64{0.125, 3}, "0.13,3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valFprint(tt.v))
		})
	}
}

func TestFlipFprint(t *testing.T) {
	assert.Equal(t, "a|d|c|b", flipFprint("a|b|c|d"))
	assert.Equal(t, "a", flipFprint("a"))
}

func TestVecString(t *testing.T) {
	assert.Equal(t, "[10,0,-0.5]", vecString([3]float64{10, -0.0000001, -0.5}))
}
