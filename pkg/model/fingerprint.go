package model

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

const (
	valPrecision  = 1e2
	normPrecision = 1e4
	vecPrecision  = 1e6
)

// roundHalfUp rounds half values toward positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func formatNum(x float64) string {
	// adding zero turns -0 into 0
	return strconv.FormatFloat(x+0, 'f', -1, 64)
}

// valFprint renders an attribute value as a comparison string. Numbers
// are rounded to two decimals.
func valFprint(v any) string {
	switch x := v.(type) {
	case nil:
		return "."
	case float64:
		return formatNum(roundHalfUp(x*valPrecision) / valPrecision)
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = valFprint(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		var b strings.Builder
		for _, k := range types.SortedKeys(x) {
			b.WriteString(k + "=" + valFprint(x[k]))
		}
		return b.String()
	default:
		norm, _, err := types.NormalizeValue(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return valFprint(norm)
	}
}

// padding translates coordinates so the bounding box starts at the
// origin and records the digit count of the scaled extent per axis.
type padding struct {
	trans [3]float64
	width [3]int
}

// newPadding computes the translation of m and the widths of its extent.
func newPadding(m *Model) padding {
	minXYZ := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxXYZ := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range m.geom.Ents(types.Posi) {
		xyz := m.attribs.PosiCoords(p)
		for i := range 3 {
			minXYZ[i] = min(minXYZ[i], xyz[i])
			maxXYZ[i] = max(maxXYZ[i], xyz[i])
		}
	}
	var pad padding
	for i := range 3 {
		if math.IsInf(minXYZ[i], 0) {
			continue
		}
		pad.trans[i] = -minXYZ[i]
		ext := roundHalfUp((maxXYZ[i] + pad.trans[i]) * normPrecision)
		pad.width[i] = len(strconv.FormatFloat(ext, 'f', 0, 64))
	}
	return pad
}

// widen grows the widths of p to cover other.
func (p padding) widen(other padding) padding {
	for i := range 3 {
		p.width[i] = max(p.width[i], other.width[i])
	}
	return p
}

// normFprint renders the translated, scaled and zero padded coordinates
// of every position under an entity.
func (m *Model) normFprint(k types.EntType, i int, pad padding) string {
	posis := m.geom.NavAnyToPosi(k, i)
	parts := make([]string, len(posis))
	for n, p := range posis {
		xyz := m.attribs.PosiCoords(p)
		coords := make([]string, 3)
		for a := range 3 {
			r := roundHalfUp((xyz[a] + pad.trans[a]) * normPrecision)
			s := strconv.FormatFloat(r+0, 'f', 0, 64)
			if pad.width[a] > len(s) {
				s = strings.Repeat("0", pad.width[a]-len(s)) + s
			}
			coords[a] = s
		}
		parts[n] = strings.Join(coords, ",")
	}
	return strings.Join(parts, "|")
}

// xyzFprint renders the coordinates of every position under an entity,
// shifted by trans.
func (m *Model) xyzFprint(k types.EntType, i int, trans [3]float64) string {
	posis := m.geom.NavAnyToPosi(k, i)
	parts := make([]string, len(posis))
	for n, p := range posis {
		xyz := m.attribs.PosiCoords(p)
		parts[n] = valFprint([]any{xyz[0] + trans[0], xyz[1] + trans[1], xyz[2] + trans[2]})
	}
	return strings.Join(parts, "|")
}

// objLevels lists, per object kind, the topological levels that make up
// its fingerprint, positions first.
var objLevels = map[types.EntType][]types.EntType{
	types.Point: {types.Posi, types.Vert, types.Point},
	types.Pline: {types.Posi, types.Vert, types.Edge, types.Wire, types.Pline},
	types.Pgon:  {types.Posi, types.Vert, types.Edge, types.Wire, types.Face, types.Pgon},
}

// entFprint renders one object. Levels without whitelisted attributes are
// skipped; values within a level are joined with @ and levels with #.
func (m *Model) entFprint(k types.EntType, i int, names map[types.EntType][]string) string {
	var levels []string
	for _, level := range objLevels[k] {
		attrs, ok := names[level]
		if !ok {
			continue
		}
		subs := m.geom.Nav(k, level, i)
		var vals []string
		for _, name := range attrs {
			for _, s := range subs {
				if v, ok := m.attribs.Val(level, s, name); ok && v != nil {
					vals = append(vals, valFprint(v))
				}
			}
		}
		levels = append(levels, strings.Join(vals, "@"))
	}
	return strings.Join(levels, "#")
}

// entsFprint fingerprints every live object of kind k. The two slices are
// parallel.
func (m *Model) entsFprint(k types.EntType, names map[types.EntType][]string) ([]string, []int) {
	ents := m.geom.Ents(k)
	fps := make([]string, len(ents))
	for n, i := range ents {
		fps[n] = m.entFprint(k, i, names)
	}
	return fps, ents
}

// collFprints fingerprints every live collection by its parent and by the
// common indices of its members. The result is sorted.
func (m *Model) collFprints(comIdx map[types.EntType]map[int]int) []string {
	colls := m.geom.Ents(types.Coll)
	if len(colls) == 0 {
		return nil
	}
	body := make(map[int]string, len(colls))
	for _, c := range colls {
		parts := []string{""}
		for _, k := range types.Objects {
			idx := []int{}
			for _, i := range m.geom.CollMembers(c, k) {
				j, ok := comIdx[k][i]
				if !ok {
					j = -1
				}
				idx = append(idx, j)
			}
			slices.Sort(idx)
			b, _ := json.Marshal(idx)
			parts = append(parts, string(b))
		}
		body[c] = strings.Join(parts, "#")
	}
	order := slices.Clone(colls)
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(body[a], body[b]) })
	rank := make(map[int]int, len(order))
	for n, c := range order {
		rank[c] = n
	}
	out := make([]string, len(order))
	for n, c := range order {
		parent := ".^"
		if p := m.geom.CollParent(c); p >= 0 {
			if r, ok := rank[p]; ok {
				parent = strconv.Itoa(r) + "^"
			}
		}
		out[n] = parent + body[c]
	}
	return out
}
