package model

import (
	"cmp"
	"slices"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

type keyed struct {
	fp  string
	idx int
}

func sortKeyed(ks []keyed) {
	slices.SortFunc(ks, func(a, b keyed) int {
		if c := cmp.Compare(a.fp, b.fp); c != 0 {
			return c
		}
		return cmp.Compare(a.idx, b.idx)
	})
}

// Normalize removes creation-order and direction ambiguity: open wires run
// from their smaller end, closed wires start at their smallest edge, and
// face holes are sorted. Running it twice changes nothing.
func (m *Model) Normalize() error {
	return m.normalize(newPadding(m))
}

func (m *Model) normalize(pad padding) error {
	if err := m.normOpenWires(pad); err != nil {
		return err
	}
	m.normClosedWires(pad)
	return m.normHoles(pad)
}

func (m *Model) normOpenWires(pad padding) error {
	for _, w := range m.geom.Ents(types.Wire) {
		if m.geom.IsWireClosed(w) {
			continue
		}
		verts := m.geom.WireVerts(w)
		if len(verts) == 0 {
			continue
		}
		start := m.normFprint(types.Vert, verts[0], pad)
		end := m.normFprint(types.Vert, verts[len(verts)-1], pad)
		if start > end {
			if err := m.geom.Reverse(w); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Model) normClosedWires(pad padding) {
	for _, w := range m.geom.Ents(types.Wire) {
		if !m.geom.IsWireClosed(w) {
			continue
		}
		edges := m.geom.WireEdges(w)
		if len(edges) == 0 {
			continue
		}
		ks := make([]keyed, len(edges))
		for n, e := range edges {
			ks[n] = keyed{fp: m.normFprint(types.Edge, e, pad), idx: n}
		}
		sortKeyed(ks)
		m.geom.Shift(w, ks[0].idx)
	}
}

func (m *Model) normHoles(pad padding) error {
	for _, f := range m.geom.Ents(types.Face) {
		holes := m.geom.FaceHoles(f)
		if len(holes) == 0 {
			continue
		}
		ks := make([]keyed, len(holes))
		for n, w := range holes {
			ks[n] = keyed{fp: m.normFprint(types.Wire, w, pad), idx: w}
		}
		sortKeyed(ks)
		sorted := make([]int, len(ks))
		for n, k := range ks {
			sorted[n] = k.idx
		}
		if slices.Equal(sorted, holes) {
			continue
		}
		if err := m.geom.SetFaceHoles(f, sorted); err != nil {
			return err
		}
	}
	return nil
}
