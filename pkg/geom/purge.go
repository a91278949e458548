package geom

import (
	"github.com/mesh-intelligence/geokernel/internal/arena"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// Remap maps old entity indices to new ones per kind. Dropped slots map
// to -1.
type Remap map[types.EntType][]int

// Index returns the new index of old index i of kind k, or -1.
func (r Remap) Index(k types.EntType, i int) int {
	m := r[k]
	if i < 0 || i >= len(m) {
		return -1
	}
	return m[i]
}

// Indices maps a list of old indices, dropping those without a new index.
func (r Remap) Indices(k types.EntType, is []int) []int {
	out := make([]int, 0, len(is))
	for _, i := range is {
		if j := r.Index(k, i); j >= 0 {
			out = append(out, j)
		}
	}
	return out
}

func rankOf[T any](t *arena.Table[T]) []int {
	m := make([]int, t.Len())
	n := 0
	for i := range m {
		if t.Has(i) {
			m[i] = n
			n++
		} else {
			m[i] = -1
		}
	}
	return m
}

// Purge renumbers every table contiguously, dropping deleted slots, and
// returns the old-to-new index map. Timestamps and the selection follow
// their entities.
func (g *Geom) Purge() Remap {
	r := Remap{
		types.Posi:  rankOf(g.posis),
		types.Vert:  rankOf(g.verts),
		types.Tri:   rankOf(g.tris),
		types.Edge:  rankOf(g.edges),
		types.Wire:  rankOf(g.wires),
		types.Face:  rankOf(g.faces),
		types.Point: rankOf(g.points),
		types.Pline: rankOf(g.plines),
		types.Pgon:  rankOf(g.pgons),
		types.Coll:  rankOf(g.colls),
	}

	posis := arena.New[[]int]()
	for range g.posis.All() {
		posis.Append([]int{})
	}
	verts := compact(g.verts, func(p int) int { return r.Index(types.Posi, p) })
	tris := compact(g.tris, func(t [3]int) [3]int {
		return [3]int{r.Index(types.Vert, t[0]), r.Index(types.Vert, t[1]), r.Index(types.Vert, t[2])}
	})
	edges := compact(g.edges, func(e [2]int) [2]int {
		return [2]int{r.Index(types.Vert, e[0]), r.Index(types.Vert, e[1])}
	})
	wires := compact(g.wires, func(es []int) []int { return r.Indices(types.Edge, es) })
	faces := compact(g.faces, func(f Face) Face {
		return Face{Wires: r.Indices(types.Wire, f.Wires), Tris: r.Indices(types.Tri, f.Tris)}
	})
	points := compact(g.points, func(v int) int { return r.Index(types.Vert, v) })
	plines := compact(g.plines, func(w int) int { return r.Index(types.Wire, w) })
	pgons := compact(g.pgons, func(f int) int { return r.Index(types.Face, f) })
	colls := compact(g.colls, func(c Coll) Coll {
		return Coll{
			Parent: r.Index(types.Coll, c.Parent),
			Points: r.Indices(types.Point, c.Points),
			Plines: r.Indices(types.Pline, c.Plines),
			Pgons:  r.Indices(types.Pgon, c.Pgons),
		}
	})

	ts := make(map[types.EntType]map[int]int, len(g.ts))
	for k, m := range g.ts {
		ts[k] = make(map[int]int, len(m))
		for i, t := range m {
			if j := r.Index(k, i); j >= 0 {
				ts[k][j] = t
			}
		}
	}
	var selected []types.EntRef
	for _, ref := range g.selected {
		if j := r.Index(ref.Kind, ref.Index); j >= 0 {
			selected = append(selected, types.EntRef{Kind: ref.Kind, Index: j})
		}
	}

	g.posis, g.verts, g.tris, g.edges, g.wires = posis, verts, tris, edges, wires
	g.faces, g.points, g.plines, g.pgons, g.colls = faces, points, plines, pgons, colls
	g.ts = ts
	g.selected = selected
	g.rebuildUp()
	return r
}

func compact[T any](t *arena.Table[T], conv func(T) T) *arena.Table[T] {
	out := arena.New[T]()
	for _, v := range t.All() {
		out.Append(conv(v))
	}
	return out
}

// MergeAndPurge merges other into g and then compacts g.
func (g *Geom) MergeAndPurge(other *Geom) (Remap, error) {
	if err := g.Merge(other); err != nil {
		return nil, err
	}
	return g.Purge(), nil
}
