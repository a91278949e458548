package geom

import (
	"slices"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// The Rem* operations detach one entity from its neighbours and tombstone
// its slot. They do not cascade: dependents must be removed or relinked
// first. The Del* helpers remove an object together with the topology it
// owns.

// RemPosi tombstones position p.
func (g *Geom) RemPosi(p int) {
	if !g.posis.Has(p) {
		return
	}
	g.posis.Delete(p)
	g.DelEntTs(types.Posi, p)
}

// RemVert tombstones vertex v and drops it from its position.
func (g *Geom) RemVert(v int) {
	p, ok := g.verts.Get(v)
	if !ok {
		return
	}
	if up := g.posis.Ptr(p); up != nil {
		*up = removeVal(*up, v)
	}
	delete(g.vertEdges, v)
	delete(g.vertPoint, v)
	delete(g.vertTris, v)
	g.verts.Delete(v)
}

// RemTri tombstones triangle t and detaches it from its vertices and face.
func (g *Geom) RemTri(t int) {
	tri, ok := g.tris.Get(t)
	if !ok {
		return
	}
	for _, v := range tri {
		if ts := removeVal(g.vertTris[v], t); len(ts) > 0 {
			g.vertTris[v] = ts
		} else {
			delete(g.vertTris, v)
		}
	}
	if f, ok := g.triFace[t]; ok {
		if face := g.faces.Ptr(f); face != nil {
			face.Tris = removeVal(face.Tris, t)
		}
		delete(g.triFace, t)
	}
	g.tris.Delete(t)
}

// RemEdge tombstones edge e, clearing its vertex slots and dropping it
// from its wire.
func (g *Geom) RemEdge(e int) {
	ev, ok := g.edges.Get(e)
	if !ok {
		return
	}
	if ve := g.vertEdge(ev[0]); ve.Out == e {
		ve.Out = -1
		g.setVertEdge(ev[0], ve)
	}
	if ve := g.vertEdge(ev[1]); ve.In == e {
		ve.In = -1
		g.setVertEdge(ev[1], ve)
	}
	if w, ok := g.edgeWire[e]; ok {
		if es := g.wires.Ptr(w); es != nil {
			*es = removeVal(*es, e)
		}
		delete(g.edgeWire, e)
	}
	g.edges.Delete(e)
}

// RemWire tombstones wire w and detaches it from its edges and its face
// or polyline.
func (g *Geom) RemWire(w int) {
	es, ok := g.wires.Get(w)
	if !ok {
		return
	}
	for _, e := range es {
		if g.edgeWire[e] == w {
			delete(g.edgeWire, e)
		}
	}
	if f, ok := g.wireFace[w]; ok {
		if face := g.faces.Ptr(f); face != nil {
			face.Wires = removeVal(face.Wires, w)
		}
		delete(g.wireFace, w)
	}
	delete(g.wirePline, w)
	g.wires.Delete(w)
}

// RemFace tombstones face f and deletes its triangles. Its wires are
// detached but kept.
func (g *Geom) RemFace(f int) {
	face, ok := g.faces.Get(f)
	if !ok {
		return
	}
	for _, t := range slices.Clone(face.Tris) {
		g.RemTri(t)
	}
	for _, w := range face.Wires {
		if g.wireFace[w] == f {
			delete(g.wireFace, w)
		}
	}
	delete(g.facePgon, f)
	g.faces.Delete(f)
}

// RemPoint tombstones point pt and drops it from its collections.
func (g *Geom) RemPoint(pt int) {
	v, ok := g.points.Get(pt)
	if !ok {
		return
	}
	if g.vertPoint[v] == pt {
		delete(g.vertPoint, v)
	}
	g.remObj(types.Point, pt)
	g.points.Delete(pt)
}

// RemPline tombstones polyline pl and drops it from its collections.
func (g *Geom) RemPline(pl int) {
	w, ok := g.plines.Get(pl)
	if !ok {
		return
	}
	if g.wirePline[w] == pl {
		delete(g.wirePline, w)
	}
	g.remObj(types.Pline, pl)
	g.plines.Delete(pl)
}

// RemPgon tombstones polygon pg and drops it from its collections.
func (g *Geom) RemPgon(pg int) {
	f, ok := g.pgons.Get(pg)
	if !ok {
		return
	}
	if g.facePgon[f] == pg {
		delete(g.facePgon, f)
	}
	g.remObj(types.Pgon, pg)
	g.pgons.Delete(pg)
}

// remObj drops an object from every collection that holds it and stamps
// those collections.
func (g *Geom) remObj(k types.EntType, i int) {
	up := g.objColls(k)
	var changed []int
	for _, c := range up[i] {
		if coll := g.colls.Ptr(c); coll != nil {
			m := coll.members(k)
			*m = removeVal(*m, i)
			changed = append(changed, c)
		}
	}
	delete(up, i)
	g.DelEntTs(k, i)
	g.UpdateEntsTs(types.Coll, changed)
}

// RemColl tombstones collection c. Its members leave the collection and
// its children become roots.
func (g *Geom) RemColl(c int) {
	coll, ok := g.colls.Get(c)
	if !ok {
		return
	}
	for _, k := range types.Objects {
		up := g.objColls(k)
		for _, i := range *coll.members(k) {
			if cs := removeVal(up[i], c); len(cs) > 0 {
				up[i] = cs
			} else {
				delete(up, i)
			}
		}
	}
	children := g.CollChildren(c)
	for _, child := range children {
		g.colls.Ptr(child).Parent = -1
	}
	g.UpdateEntsTs(types.Coll, children)
	g.colls.Delete(c)
	g.DelEntTs(types.Coll, c)
}

// DelPoint removes point pt and its vertex.
func (g *Geom) DelPoint(pt int) {
	v := g.PointVert(pt)
	g.RemPoint(pt)
	g.RemVert(v)
}

// DelPline removes polyline pl with its wire, edges and vertices.
func (g *Geom) DelPline(pl int) {
	w := g.PlineWire(pl)
	if w < 0 {
		return
	}
	g.RemPline(pl)
	g.delWire(w)
}

// DelPgon removes polygon pg with its face, triangles, wires, edges and
// vertices.
func (g *Geom) DelPgon(pg int) {
	f := g.PgonFace(pg)
	if f < 0 {
		return
	}
	wires := g.FaceWires(f)
	g.RemPgon(pg)
	g.RemFace(f)
	for _, w := range wires {
		g.delWire(w)
	}
}

func (g *Geom) delWire(w int) {
	verts := g.WireVerts(w)
	edges := g.WireEdges(w)
	g.RemWire(w)
	for _, e := range edges {
		g.RemEdge(e)
	}
	for _, v := range verts {
		g.RemVert(v)
	}
}

// DelUnusedPosis removes the given positions that no vertex uses and
// returns the ones removed.
func (g *Geom) DelUnusedPosis(posis []int) []int {
	var out []int
	for _, p := range posis {
		if vs, ok := g.posis.Get(p); ok && len(vs) == 0 {
			g.RemPosi(p)
			out = append(out, p)
		}
	}
	return out
}
