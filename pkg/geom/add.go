package geom

import (
	"slices"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// AddPosi creates a position. Its coordinates live in the attribute store.
func (g *Geom) AddPosi() int {
	p := g.posis.Append([]int{})
	g.UpdateEntTs(types.Posi, p)
	return p
}

// AddVert creates a vertex on position posi.
func (g *Geom) AddVert(posi int) int {
	v := g.verts.Append(posi)
	if up := g.posis.Ptr(posi); up != nil {
		*up = append(*up, v)
	}
	return v
}

// AddTri creates a triangle. It is not attached to a face.
func (g *Geom) AddTri(v0, v1, v2 int) int {
	t := g.tris.Append([3]int{v0, v1, v2})
	for _, v := range []int{v0, v1, v2} {
		g.vertTris[v] = appendUnique(g.vertTris[v], t)
	}
	return t
}

// AddEdge creates an edge from v0 to v1. The edge becomes the outgoing
// edge of v0 and the incoming edge of v1.
func (g *Geom) AddEdge(v0, v1 int) int {
	e := g.edges.Append([2]int{v0, v1})
	ve := g.vertEdge(v0)
	ve.Out = e
	g.setVertEdge(v0, ve)
	ve = g.vertEdge(v1)
	ve.In = e
	g.setVertEdge(v1, ve)
	return e
}

// AddWire creates a wire from an ordered chain of edges.
func (g *Geom) AddWire(edges []int) int {
	w := g.wires.Append(slices.Clone(edges))
	for _, e := range edges {
		g.edgeWire[e] = w
	}
	return w
}

// AddFace creates a face from an outer wire followed by hole wires and
// triangulates it. The face exists even when triangulation fails; the
// error then reports why it has no triangles.
func (g *Geom) AddFace(wires []int) (int, error) {
	f := g.faces.Append(Face{Wires: slices.Clone(wires), Tris: []int{}})
	for _, w := range wires {
		g.wireFace[w] = f
	}
	return f, g.FaceTri(f)
}

// AddPoint creates a point object on position posi.
func (g *Geom) AddPoint(posi int) int {
	v := g.AddVert(posi)
	pt := g.points.Append(v)
	g.vertPoint[v] = pt
	g.UpdateEntTs(types.Point, pt)
	return pt
}

// AddPline creates a polyline through posis. A closed polyline gets an
// extra edge from the last vertex back to the first.
func (g *Geom) AddPline(posis []int, closed bool) int {
	w := g.addWireFromPosis(posis, closed)
	pl := g.plines.Append(w)
	g.wirePline[w] = pl
	g.UpdateEntTs(types.Pline, pl)
	return pl
}

// AddPgon creates a polygon with outer boundary posis and optional holes.
// The polygon exists even when triangulation fails.
func (g *Geom) AddPgon(posis []int, holes ...[]int) (int, error) {
	wires := make([]int, 0, 1+len(holes))
	wires = append(wires, g.addWireFromPosis(posis, true))
	for _, h := range holes {
		wires = append(wires, g.addWireFromPosis(h, true))
	}
	f, err := g.AddFace(wires)
	pg := g.pgons.Append(f)
	g.facePgon[f] = pg
	g.UpdateEntTs(types.Pgon, pg)
	return pg, err
}

func (g *Geom) addWireFromPosis(posis []int, closed bool) int {
	verts := make([]int, len(posis))
	for i, p := range posis {
		verts[i] = g.AddVert(p)
	}
	n := len(verts) - 1
	if closed {
		n = len(verts)
	}
	edges := make([]int, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, g.AddEdge(verts[i], verts[(i+1)%len(verts)]))
	}
	return g.AddWire(edges)
}

// AddColl creates a collection. parent is -1 for a root collection.
// Duplicate members are dropped.
func (g *Geom) AddColl(parent int, points, plines, pgons []int) int {
	c := g.colls.Append(Coll{
		Parent: parent,
		Points: appendUnique(nil, points...),
		Plines: appendUnique(nil, plines...),
		Pgons:  appendUnique(nil, pgons...),
	})
	coll := g.colls.Ptr(c)
	for _, k := range types.Objects {
		up := g.objColls(k)
		for _, i := range *coll.members(k) {
			up[i] = appendUnique(up[i], c)
		}
	}
	g.UpdateEntTs(types.Coll, c)
	return c
}
