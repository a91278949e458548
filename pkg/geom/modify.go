package geom

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// Reverse flips the direction of wire w in place. Edge order and edge
// direction are reversed and every vertex swaps its incoming and outgoing
// edge. A wire that bounds a face triggers a retriangulation.
func (g *Geom) Reverse(w int) error {
	es := g.wires.Ptr(w)
	if es == nil {
		return &types.EntityError{Kind: types.Wire, Index: w, Err: types.ErrEntityNotFound}
	}
	verts := g.WireVerts(w)
	slices.Reverse(*es)
	for _, e := range *es {
		if ev := g.edges.Ptr(e); ev != nil {
			ev[0], ev[1] = ev[1], ev[0]
		}
	}
	for _, v := range verts {
		ve := g.vertEdge(v)
		g.setVertEdge(v, VertEdges{In: ve.Out, Out: ve.In})
	}
	g.UpdateObjsTs(types.Wire, w)
	if f, ok := g.wireFace[w]; ok {
		return g.FaceTri(f)
	}
	return nil
}

// Shift rotates a closed wire so that the edge at offset comes first.
// Open wires are left unchanged.
func (g *Geom) Shift(w, offset int) {
	es := g.wires.Ptr(w)
	if es == nil || len(*es) == 0 || !g.IsWireClosed(w) {
		return
	}
	n := len(*es)
	offset = ((offset % n) + n) % n
	if offset == 0 {
		return
	}
	*es = slices.Concat((*es)[offset:], (*es)[:offset])
	g.UpdateObjsTs(types.Wire, w)
}

// SetFaceHoles replaces the hole wires of face f and retriangulates it.
func (g *Geom) SetFaceHoles(f int, holes []int) error {
	face := g.faces.Ptr(f)
	if face == nil || len(face.Wires) == 0 {
		return &types.EntityError{Kind: types.Face, Index: f, Err: types.ErrEntityNotFound}
	}
	for _, w := range face.Wires[1:] {
		if g.wireFace[w] == f {
			delete(g.wireFace, w)
		}
	}
	face.Wires = append(face.Wires[:1:1], holes...)
	for _, w := range holes {
		g.wireFace[w] = f
	}
	g.UpdateObjsTs(types.Face, f)
	return g.FaceTri(f)
}

// SetCollParent moves collection c under parent, or makes it a root when
// parent is -1.
func (g *Geom) SetCollParent(c, parent int) error {
	coll := g.colls.Ptr(c)
	if coll == nil {
		return &types.EntityError{Kind: types.Coll, Index: c, Err: types.ErrEntityNotFound}
	}
	if parent >= 0 {
		if !g.colls.Has(parent) {
			return &types.EntityError{Kind: types.Coll, Index: parent, Err: types.ErrEntityNotFound}
		}
		if parent == c || slices.Contains(g.CollAncestors(parent), c) {
			return fmt.Errorf("set parent of collection %d to %d: %w", c, parent, types.ErrCollCycle)
		}
	}
	coll.Parent = parent
	g.UpdateEntTs(types.Coll, c)
	return nil
}

// CollAddEnts adds objects to collection c, skipping existing members.
func (g *Geom) CollAddEnts(c int, points, plines, pgons []int) error {
	coll := g.colls.Ptr(c)
	if coll == nil {
		return &types.EntityError{Kind: types.Coll, Index: c, Err: types.ErrEntityNotFound}
	}
	for k, is := range objLists(points, plines, pgons) {
		m := coll.members(k)
		up := g.objColls(k)
		for _, i := range is {
			*m = appendUnique(*m, i)
			up[i] = appendUnique(up[i], c)
		}
	}
	g.UpdateEntTs(types.Coll, c)
	return nil
}

// CollRemoveEnts removes objects from collection c.
func (g *Geom) CollRemoveEnts(c int, points, plines, pgons []int) error {
	coll := g.colls.Ptr(c)
	if coll == nil {
		return &types.EntityError{Kind: types.Coll, Index: c, Err: types.ErrEntityNotFound}
	}
	for k, is := range objLists(points, plines, pgons) {
		m := coll.members(k)
		up := g.objColls(k)
		for _, i := range is {
			*m = removeVal(*m, i)
			if cs := removeVal(up[i], c); len(cs) > 0 {
				up[i] = cs
			} else {
				delete(up, i)
			}
		}
	}
	g.UpdateEntTs(types.Coll, c)
	return nil
}

func objLists(points, plines, pgons []int) map[types.EntType][]int {
	return map[types.EntType][]int{
		types.Point: points,
		types.Pline: plines,
		types.Pgon:  pgons,
	}
}
