package geom

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// EntSets is a set of entity indices per kind, backed by roaring bitmaps.
type EntSets map[types.EntType]*roaring.Bitmap

// NewEntSets returns an empty set.
func NewEntSets() EntSets {
	return make(EntSets)
}

// Add inserts indices of kind k.
func (s EntSets) Add(k types.EntType, is ...int) {
	b, ok := s[k]
	if !ok {
		b = roaring.New()
		s[k] = b
	}
	for _, i := range is {
		if i >= 0 {
			b.Add(uint32(i))
		}
	}
}

// Has reports whether index i of kind k is in the set.
func (s EntSets) Has(k types.EntType, i int) bool {
	b, ok := s[k]
	return ok && i >= 0 && b.Contains(uint32(i))
}

// Len returns the number of indices of kind k.
func (s EntSets) Len(k types.EntType) int {
	b, ok := s[k]
	if !ok {
		return 0
	}
	return int(b.GetCardinality())
}

// All iterates the indices of kind k in ascending order.
func (s EntSets) All(k types.EntType) iter.Seq[int] {
	return func(yield func(int) bool) {
		b, ok := s[k]
		if !ok {
			return
		}
		it := b.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// Slice returns the indices of kind k in ascending order.
func (s EntSets) Slice(k types.EntType) []int {
	var out []int
	for i := range s.All(k) {
		out = append(out, i)
	}
	return out
}

// Clone returns a deep copy.
func (s EntSets) Clone() EntSets {
	out := make(EntSets, len(s))
	for k, b := range s {
		out[k] = b.Clone()
	}
	return out
}

// Requires expands a selection of entities to everything they need:
// collection members, the topology under each object, and finally the
// positions. Only live entities are kept.
func (g *Geom) Requires(sel EntSets) EntSets {
	out := NewEntSets()
	add := func(k types.EntType, is ...int) {
		for _, i := range is {
			if g.Has(k, i) {
				out.Add(k, i)
			}
		}
	}
	for _, k := range []types.EntType{types.Posi, types.Point, types.Pline, types.Pgon, types.Coll} {
		add(k, sel.Slice(k)...)
	}
	for c := range out.All(types.Coll) {
		coll, _ := g.colls.Get(c)
		add(types.Point, coll.Points...)
		add(types.Pline, coll.Plines...)
		add(types.Pgon, coll.Pgons...)
	}
	for pg := range out.All(types.Pgon) {
		add(types.Face, g.PgonFace(pg))
	}
	for f := range out.All(types.Face) {
		face, _ := g.faces.Get(f)
		add(types.Wire, face.Wires...)
		add(types.Tri, face.Tris...)
	}
	for pl := range out.All(types.Pline) {
		add(types.Wire, g.PlineWire(pl))
	}
	for w := range out.All(types.Wire) {
		es, _ := g.wires.Get(w)
		add(types.Edge, es...)
	}
	for e := range out.All(types.Edge) {
		ev := g.EdgeVerts(e)
		add(types.Vert, ev[:]...)
	}
	for t := range out.All(types.Tri) {
		tv := g.TriVerts(t)
		add(types.Vert, tv[:]...)
	}
	for pt := range out.All(types.Point) {
		add(types.Vert, g.PointVert(pt))
	}
	for v := range out.All(types.Vert) {
		add(types.Posi, g.VertPosi(v))
	}
	return out
}
