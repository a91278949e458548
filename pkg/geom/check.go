package geom

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// Check walks every table and returns one message per broken link. An
// empty result means the store is consistent. Absent slots are skipped.
func (g *Geom) Check() []string {
	var c checker
	g.checkPosis(&c)
	g.checkVerts(&c)
	g.checkTris(&c)
	g.checkEdges(&c)
	g.checkWires(&c)
	g.checkFaces(&c)
	g.checkObjs(&c)
	g.checkColls(&c)
	g.checkTimestamps(&c)
	return c.errs
}

type checker struct {
	errs []string
}

func (c *checker) addf(kind string, i int, format string, args ...any) {
	c.errs = append(c.errs, fmt.Sprintf("%s %d: ", kind, i)+fmt.Sprintf(format, args...))
}

func (g *Geom) checkPosis(c *checker) {
	for p, verts := range g.posis.All() {
		for _, v := range verts {
			if !g.verts.Has(v) {
				c.addf("Posi", p, "Vert->Posi undefined.")
				continue
			}
			if g.VertPosi(v) != p {
				c.addf("Posi", p, "Vert->Posi index is incorrect.")
			}
		}
	}
}

func (g *Geom) checkVerts(c *checker) {
	for v, p := range g.verts.All() {
		up, ok := g.posis.Get(p)
		if !ok {
			c.addf("Vert", v, "Vert->Posi undefined.")
		} else if !slices.Contains(up, v) {
			c.addf("Vert", v, "Posi->Vert index is missing.")
		}
		ve, hasEdges := g.vertEdges[v]
		pt, hasPoint := g.vertPoint[v]
		switch {
		case hasEdges && hasPoint:
			c.addf("Vert", v, "Both Vert->Edge and Vert->Point.")
		case hasPoint:
			if g.PointVert(pt) != v {
				c.addf("Vert", v, "Point->Vert index is incorrect.")
			}
		case hasEdges:
			for _, e := range []int{ve.In, ve.Out} {
				if e >= 0 && !g.edges.Has(e) {
					c.addf("Vert", v, "Vert->Edge edge %d is undefined.", e)
				}
			}
		case len(g.vertTris[v]) == 0:
			c.addf("Vert", v, "Both Vert->Edge and Vert->Point undefined.")
		}
	}
}

func (g *Geom) checkTris(c *checker) {
	for t, verts := range g.tris.All() {
		for _, v := range verts {
			if !slices.Contains(g.vertTris[v], t) {
				c.addf("Tri", t, "Vert->Tri index is missing.")
			}
		}
		f, ok := g.triFace[t]
		if !ok {
			c.addf("Tri", t, "Tri->Face undefined.")
			continue
		}
		if face, ok := g.faces.Get(f); !ok || !slices.Contains(face.Tris, t) {
			c.addf("Tri", t, "Face->Tri index is missing.")
		}
	}
}

func (g *Geom) checkEdges(c *checker) {
	for e, ev := range g.edges.All() {
		for _, v := range ev {
			if !g.verts.Has(v) {
				c.addf("Edge", e, "Edge->Vert undefined.")
			}
		}
		if g.vertEdge(ev[0]).Out != e {
			c.addf("Edge", e, "Vert->Edge start vertex is incorrect.")
		}
		if g.vertEdge(ev[1]).In != e {
			c.addf("Edge", e, "Vert->Edge end vertex is incorrect.")
		}
		w, ok := g.edgeWire[e]
		if !ok {
			c.addf("Edge", e, "Edge->Wire undefined.")
			continue
		}
		if es, ok := g.wires.Get(w); !ok || !slices.Contains(es, e) {
			c.addf("Edge", e, "Wire->Edge index is missing.")
		}
	}
}

func (g *Geom) checkWires(c *checker) {
	for w, es := range g.wires.All() {
		for _, e := range es {
			if !g.edges.Has(e) {
				c.addf("Wire", w, "Wire->Edge undefined.")
			} else if g.edgeWire[e] != w {
				c.addf("Wire", w, "Edge->Wire index is incorrect.")
			}
		}
		f, onFace := g.wireFace[w]
		pl, onPline := g.wirePline[w]
		switch {
		case onFace && onPline:
			c.addf("Wire", w, "Both Wire->Face and Wire->Pline.")
		case onFace:
			if face, ok := g.faces.Get(f); !ok || !slices.Contains(face.Wires, w) {
				c.addf("Wire", w, "Face->Wire index is missing.")
			}
		case onPline:
			if g.PlineWire(pl) != w {
				c.addf("Wire", w, "Pline->Wire index is incorrect.")
			}
		default:
			c.addf("Wire", w, "Both Wire->Face and Wire->Pline undefined.")
		}
		g.checkEdgeOrder(c, w, es)
	}
}

// checkEdgeOrder verifies that consecutive edges share a vertex and that
// every vertex holds the wire's edges in the right slots.
func (g *Geom) checkEdgeOrder(c *checker, w int, es []int) {
	if len(es) == 0 {
		return
	}
	for n := 0; n+1 < len(es); n++ {
		if g.EdgeVerts(es[n])[1] != g.EdgeVerts(es[n+1])[0] {
			c.addf("Wire", w, "Edges are not connected.")
			break
		}
	}
	if !g.IsWireClosed(w) {
		if g.vertEdge(g.EdgeVerts(es[0])[0]).In >= 0 {
			c.addf("Open wire", w, "First vertex has incoming edge.")
		}
		if g.vertEdge(g.EdgeVerts(es[len(es)-1])[1]).Out >= 0 {
			c.addf("Open wire", w, "Last vertex has an outgoing edge.")
		}
	}
	for _, e := range es {
		ev := g.EdgeVerts(e)
		if g.vertEdge(ev[0]).Out != e {
			c.addf("Wire", w, "Edge start vertex has wrong outgoing edge.")
		}
		if g.vertEdge(ev[1]).In != e {
			c.addf("Wire", w, "Edge end vertex has wrong incoming edge.")
		}
	}
}

func (g *Geom) checkFaces(c *checker) {
	for f, face := range g.faces.All() {
		for _, w := range face.Wires {
			if wf, ok := g.wireFace[w]; !ok || wf != f {
				c.addf("Face", f, "Wire->Face index is incorrect.")
			}
		}
		for _, t := range face.Tris {
			if tf, ok := g.triFace[t]; !ok || tf != f {
				c.addf("Face", f, "Tri->Face index is incorrect.")
			}
		}
		pg, ok := g.facePgon[f]
		if !ok {
			c.addf("Face", f, "Face->Pgon undefined.")
			continue
		}
		if g.PgonFace(pg) != f {
			c.addf("Face", f, "Pgon->Face index is incorrect.")
		}
	}
}

func (g *Geom) checkObjs(c *checker) {
	for pt, v := range g.points.All() {
		if got, ok := g.vertPoint[v]; !ok || got != pt {
			c.addf("Point", pt, "Vertex->Point index is incorrect.")
		}
	}
	for pl, w := range g.plines.All() {
		if got, ok := g.wirePline[w]; !ok || got != pl {
			c.addf("Pline", pl, "Wire->Pline index is incorrect.")
		}
	}
	for pg, f := range g.pgons.All() {
		if got, ok := g.facePgon[f]; !ok || got != pg {
			c.addf("Pgon", pg, "Face->Pgon index is incorrect.")
		}
	}
	for _, k := range types.Objects {
		up := g.objColls(k)
		for _, i := range slices.Sorted(maps.Keys(up)) {
			colls := up[i]
			if !g.Has(k, i) {
				c.addf(k.Title(), i, "%s->Coll refers to a deleted object.", k.Title())
				continue
			}
			for _, cl := range colls {
				coll := g.colls.Ptr(cl)
				if coll == nil {
					c.addf(k.Title(), i, "Coll->Objs undefined.")
					continue
				}
				if !slices.Contains(*coll.members(k), i) {
					c.addf(k.Title(), i, "Coll->%s missing.", k.Title())
				}
			}
		}
	}
}

func (g *Geom) checkColls(c *checker) {
	for cl, coll := range g.colls.All() {
		for _, k := range types.Objects {
			for _, i := range *coll.members(k) {
				if !g.Has(k, i) {
					c.addf("Coll", cl, "Coll->%s undefined.", k.Title())
				} else if !slices.Contains(g.objColls(k)[i], cl) {
					c.addf("Coll", cl, "%s->Coll index is missing.", k.Title())
				}
			}
		}
		if coll.Parent >= 0 {
			if !g.colls.Has(coll.Parent) {
				c.addf("Coll", cl, "Parent collection is missing.")
			} else if slices.Contains(g.CollAncestors(coll.Parent), cl) || coll.Parent == cl {
				c.addf("Coll", cl, "Parent collections form a cycle.")
			}
		}
	}
}

func (g *Geom) checkTimestamps(c *checker) {
	for _, k := range types.TopLevel {
		for _, i := range g.table(k).Indices() {
			if _, ok := g.ts[k][i]; !ok {
				c.addf(k.Title(), i, "Timestamp is missing.")
			}
		}
	}
}
