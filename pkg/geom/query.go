package geom

import (
	"slices"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// VertPosi returns the position of vertex v, or -1.
func (g *Geom) VertPosi(v int) int {
	p, ok := g.verts.Get(v)
	if !ok {
		return -1
	}
	return p
}

// PosiVerts returns the vertices that use position p.
func (g *Geom) PosiVerts(p int) []int {
	vs, _ := g.posis.Get(p)
	return slices.Clone(vs)
}

// EdgeVerts returns the start and end vertices of edge e.
func (g *Geom) EdgeVerts(e int) [2]int {
	vs, ok := g.edges.Get(e)
	if !ok {
		return [2]int{-1, -1}
	}
	return vs
}

// TriVerts returns the corners of triangle t.
func (g *Geom) TriVerts(t int) [3]int {
	vs, ok := g.tris.Get(t)
	if !ok {
		return [3]int{-1, -1, -1}
	}
	return vs
}

// WireEdges returns the ordered edges of wire w.
func (g *Geom) WireEdges(w int) []int {
	es, _ := g.wires.Get(w)
	return slices.Clone(es)
}

// WireVerts returns the ordered vertices of wire w. A closed wire does not
// repeat its first vertex.
func (g *Geom) WireVerts(w int) []int {
	es, ok := g.wires.Get(w)
	if !ok || len(es) == 0 {
		return nil
	}
	out := make([]int, 0, len(es)+1)
	for _, e := range es {
		out = append(out, g.EdgeVerts(e)[0])
	}
	if !g.IsWireClosed(w) {
		out = append(out, g.EdgeVerts(es[len(es)-1])[1])
	}
	return out
}

// WirePosis returns the positions of the ordered vertices of wire w.
func (g *Geom) WirePosis(w int) []int {
	vs := g.WireVerts(w)
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = g.VertPosi(v)
	}
	return out
}

// IsWireClosed reports whether the last edge of w ends where the first
// edge starts.
func (g *Geom) IsWireClosed(w int) bool {
	es, ok := g.wires.Get(w)
	if !ok || len(es) == 0 {
		return false
	}
	return g.EdgeVerts(es[0])[0] == g.EdgeVerts(es[len(es)-1])[1]
}

// FaceWires returns the outer wire followed by the holes of face f.
func (g *Geom) FaceWires(f int) []int {
	face, _ := g.faces.Get(f)
	return slices.Clone(face.Wires)
}

// FaceOuter returns the outer wire of face f, or -1.
func (g *Geom) FaceOuter(f int) int {
	face, ok := g.faces.Get(f)
	if !ok || len(face.Wires) == 0 {
		return -1
	}
	return face.Wires[0]
}

// FaceHoles returns the hole wires of face f.
func (g *Geom) FaceHoles(f int) []int {
	face, ok := g.faces.Get(f)
	if !ok || len(face.Wires) < 2 {
		return nil
	}
	return slices.Clone(face.Wires[1:])
}

// FaceTris returns the triangles covering face f.
func (g *Geom) FaceTris(f int) []int {
	face, _ := g.faces.Get(f)
	return slices.Clone(face.Tris)
}

// PointVert returns the vertex of point pt, or -1.
func (g *Geom) PointVert(pt int) int { return getOr(g.points.Get(pt)) }

// PlineWire returns the wire of polyline pl, or -1.
func (g *Geom) PlineWire(pl int) int { return getOr(g.plines.Get(pl)) }

// PgonFace returns the face of polygon pg, or -1.
func (g *Geom) PgonFace(pg int) int { return getOr(g.pgons.Get(pg)) }

func getOr(v int, ok bool) int {
	if !ok {
		return -1
	}
	return v
}

// VertEdges returns the edge up link of vertex v.
func (g *Geom) VertEdges(v int) VertEdges { return g.vertEdge(v) }

// VertTris returns the triangles that use vertex v.
func (g *Geom) VertTris(v int) []int { return slices.Clone(g.vertTris[v]) }

// VertPoint returns the point that owns vertex v.
func (g *Geom) VertPoint(v int) (int, bool) {
	pt, ok := g.vertPoint[v]
	return pt, ok
}

// EdgeWire returns the wire that owns edge e.
func (g *Geom) EdgeWire(e int) (int, bool) {
	w, ok := g.edgeWire[e]
	return w, ok
}

// WireFace returns the face that owns wire w.
func (g *Geom) WireFace(w int) (int, bool) {
	f, ok := g.wireFace[w]
	return f, ok
}

// WirePline returns the polyline that owns wire w.
func (g *Geom) WirePline(w int) (int, bool) {
	pl, ok := g.wirePline[w]
	return pl, ok
}

// TriFace returns the face that owns triangle t.
func (g *Geom) TriFace(t int) (int, bool) {
	f, ok := g.triFace[t]
	return f, ok
}

// FacePgon returns the polygon that owns face f.
func (g *Geom) FacePgon(f int) (int, bool) {
	pg, ok := g.facePgon[f]
	return pg, ok
}

// ObjColls returns the collections that contain object i of kind k.
func (g *Geom) ObjColls(k types.EntType, i int) []int {
	m := g.objColls(k)
	if m == nil {
		return nil
	}
	return slices.Clone(m[i])
}

// Coll returns a copy of the down link of collection c.
func (g *Geom) Coll(c int) (Coll, bool) {
	coll, ok := g.colls.Get(c)
	if !ok {
		return Coll{}, false
	}
	return coll.clone(), true
}

// CollMembers returns the objects of kind k in collection c.
func (g *Geom) CollMembers(c int, k types.EntType) []int {
	p := g.colls.Ptr(c)
	if p == nil {
		return nil
	}
	if m := p.members(k); m != nil {
		return slices.Clone(*m)
	}
	return nil
}

// CollParent returns the parent of collection c, or -1.
func (g *Geom) CollParent(c int) int {
	coll, ok := g.colls.Get(c)
	if !ok {
		return -1
	}
	return coll.Parent
}

// CollAncestors returns the parent chain of c, nearest first. It stops at
// the first repeated collection so a corrupt cycle cannot loop forever.
func (g *Geom) CollAncestors(c int) []int {
	var out []int
	seen := map[int]bool{c: true}
	for p := g.CollParent(c); p >= 0 && !seen[p]; p = g.CollParent(p) {
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// CollChildren returns the collections whose parent is c.
func (g *Geom) CollChildren(c int) []int {
	var out []int
	for i, coll := range g.colls.All() {
		if coll.Parent == c {
			out = append(out, i)
		}
	}
	return out
}

// TopoObj returns the object that owns a sub-entity. Objects return
// themselves; positions and collections report false.
func (g *Geom) TopoObj(k types.EntType, i int) (types.EntType, int, bool) {
	switch k {
	case types.Point, types.Pline, types.Pgon:
		if g.Has(k, i) {
			return k, i, true
		}
	case types.Vert:
		if pt, ok := g.vertPoint[i]; ok {
			return types.Point, pt, true
		}
		ve := g.vertEdge(i)
		for _, e := range []int{ve.Out, ve.In} {
			if e >= 0 {
				return g.TopoObj(types.Edge, e)
			}
		}
		if ts := g.vertTris[i]; len(ts) > 0 {
			return g.TopoObj(types.Tri, ts[0])
		}
	case types.Edge:
		if w, ok := g.edgeWire[i]; ok {
			return g.TopoObj(types.Wire, w)
		}
	case types.Wire:
		if pl, ok := g.wirePline[i]; ok {
			return types.Pline, pl, true
		}
		if f, ok := g.wireFace[i]; ok {
			return g.TopoObj(types.Face, f)
		}
	case types.Tri:
		if f, ok := g.triFace[i]; ok {
			return g.TopoObj(types.Face, f)
		}
	case types.Face:
		if pg, ok := g.facePgon[i]; ok {
			return types.Pgon, pg, true
		}
	}
	return 0, -1, false
}
