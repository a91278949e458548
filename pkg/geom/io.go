package geom

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/geokernel/internal/arena"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// GetData exports the store. Every slot up to the arena length is listed,
// deleted slots with a null value.
func (g *Geom) GetData() types.GeomData {
	var d types.GeomData

	for i := 0; i < g.posis.Len(); i++ {
		switch g.posis.State(i) {
		case arena.Present:
			d.PosisI = append(d.PosisI, i)
			d.PosisTs = append(d.PosisTs, g.tsRef(types.Posi, i))
		case arena.Deleted:
			d.PosisI = append(d.PosisI, i)
			d.PosisTs = append(d.PosisTs, types.NullRef)
		}
	}
	exportRefs(g.verts, &d.VertsI, &d.Verts, nil, nil)
	exportSlices(g.tris, &d.TrisI, &d.Tris, func(t [3]int) []int { return t[:] })
	exportSlices(g.edges, &d.EdgesI, &d.Edges, func(e [2]int) []int { return e[:] })
	exportSlices(g.wires, &d.WiresI, &d.Wires, cloneInts)
	exportSlices(g.faces, &d.FacesI, &d.Faces, func(f Face) []int { return slices.Clone(f.Wires) })
	for i := 0; i < g.faces.Len(); i++ {
		switch g.faces.State(i) {
		case arena.Present:
			f, _ := g.faces.Get(i)
			d.FaceTris = append(d.FaceTris, cloneNonNil(f.Tris))
		case arena.Deleted:
			d.FaceTris = append(d.FaceTris, nil)
		}
	}
	exportRefs(g.points, &d.PointsI, &d.Points, &d.PointsTs, g.tsFn(types.Point))
	exportRefs(g.plines, &d.PlinesI, &d.Plines, &d.PlinesTs, g.tsFn(types.Pline))
	exportRefs(g.pgons, &d.PgonsI, &d.Pgons, &d.PgonsTs, g.tsFn(types.Pgon))
	for i := 0; i < g.colls.Len(); i++ {
		switch g.colls.State(i) {
		case arena.Present:
			c, _ := g.colls.Get(i)
			d.CollsI = append(d.CollsI, i)
			d.Colls = append(d.Colls, &types.CollData{
				Parent: c.Parent,
				Points: cloneNonNil(c.Points),
				Plines: cloneNonNil(c.Plines),
				Pgons:  cloneNonNil(c.Pgons),
			})
			d.CollsTs = append(d.CollsTs, g.tsRef(types.Coll, i))
		case arena.Deleted:
			d.CollsI = append(d.CollsI, i)
			d.Colls = append(d.Colls, nil)
			d.CollsTs = append(d.CollsTs, types.NullRef)
		}
	}
	d.Selected = slices.Clone(g.selected)
	return d
}

func (g *Geom) tsRef(k types.EntType, i int) types.Ref {
	t, ok := g.ts[k][i]
	if !ok {
		return 0
	}
	return types.Ref(t)
}

func (g *Geom) tsFn(k types.EntType) func(int) types.Ref {
	return func(i int) types.Ref { return g.tsRef(k, i) }
}

func exportRefs(t *arena.Table[int], idx *[]int, vals *[]types.Ref, tss *[]types.Ref, ts func(int) types.Ref) {
	for i := 0; i < t.Len(); i++ {
		switch t.State(i) {
		case arena.Present:
			v, _ := t.Get(i)
			*idx = append(*idx, i)
			*vals = append(*vals, types.Ref(v))
			if tss != nil {
				*tss = append(*tss, ts(i))
			}
		case arena.Deleted:
			*idx = append(*idx, i)
			*vals = append(*vals, types.NullRef)
			if tss != nil {
				*tss = append(*tss, types.NullRef)
			}
		}
	}
}

func exportSlices[T any](t *arena.Table[T], idx *[]int, vals *[][]int, conv func(T) []int) {
	for i := 0; i < t.Len(); i++ {
		switch t.State(i) {
		case arena.Present:
			v, _ := t.Get(i)
			*idx = append(*idx, i)
			*vals = append(*vals, cloneNonNil(conv(v)))
		case arena.Deleted:
			*idx = append(*idx, i)
			*vals = append(*vals, nil)
		}
	}
}

// SetData replaces the store with a payload and rebuilds every up link.
func (g *Geom) SetData(d types.GeomData) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("set geometry: %w", err)
	}
	g.reset()

	for n, i := range d.PosisI {
		if d.PosisTs[n].IsNull() {
			g.posis.Delete(i)
			continue
		}
		g.posis.Set(i, []int{})
		g.SetEntTs(types.Posi, i, int(d.PosisTs[n]))
	}
	importRefs(g.verts, d.VertsI, d.Verts)
	for n, i := range d.TrisI {
		if t := d.Tris[n]; t != nil {
			g.tris.Set(i, [3]int{t[0], t[1], t[2]})
		} else {
			g.tris.Delete(i)
		}
	}
	for n, i := range d.EdgesI {
		if e := d.Edges[n]; e != nil {
			g.edges.Set(i, [2]int{e[0], e[1]})
		} else {
			g.edges.Delete(i)
		}
	}
	for n, i := range d.WiresI {
		if w := d.Wires[n]; w != nil {
			g.wires.Set(i, slices.Clone(w))
		} else {
			g.wires.Delete(i)
		}
	}
	for n, i := range d.FacesI {
		if ws := d.Faces[n]; ws != nil {
			g.faces.Set(i, Face{Wires: slices.Clone(ws), Tris: cloneNonNil(d.FaceTris[n])})
		} else {
			g.faces.Delete(i)
		}
	}
	g.importObjs(types.Point, g.points, d.PointsI, d.Points, d.PointsTs)
	g.importObjs(types.Pline, g.plines, d.PlinesI, d.Plines, d.PlinesTs)
	g.importObjs(types.Pgon, g.pgons, d.PgonsI, d.Pgons, d.PgonsTs)
	for n, i := range d.CollsI {
		c := d.Colls[n]
		if c == nil {
			g.colls.Delete(i)
			continue
		}
		g.colls.Set(i, Coll{
			Parent: c.Parent,
			Points: slices.Clone(c.Points),
			Plines: slices.Clone(c.Plines),
			Pgons:  slices.Clone(c.Pgons),
		})
		g.SetEntTs(types.Coll, i, int(d.CollsTs[n]))
	}
	g.selected = slices.Clone(d.Selected)
	g.rebuildUp()
	return nil
}

func importRefs(t *arena.Table[int], idx []int, vals []types.Ref) {
	for n, i := range idx {
		if vals[n].IsNull() {
			t.Delete(i)
		} else {
			t.Set(i, int(vals[n]))
		}
	}
}

func (g *Geom) importObjs(k types.EntType, t *arena.Table[int], idx []int, vals, tss []types.Ref) {
	importRefs(t, idx, vals)
	for n, i := range idx {
		if !vals[n].IsNull() {
			g.SetEntTs(k, i, int(tss[n]))
		}
	}
}

// rebuildUp derives every up link from the down tables.
func (g *Geom) rebuildUp() {
	g.resetUp()
	for p := range g.posis.All() {
		*g.posis.Ptr(p) = []int{}
	}
	for v, p := range g.verts.All() {
		if up := g.posis.Ptr(p); up != nil {
			*up = append(*up, v)
		}
	}
	for t, tri := range g.tris.All() {
		for _, v := range tri {
			g.vertTris[v] = appendUnique(g.vertTris[v], t)
		}
	}
	for e, ev := range g.edges.All() {
		ve := g.vertEdge(ev[0])
		ve.Out = e
		g.setVertEdge(ev[0], ve)
		ve = g.vertEdge(ev[1])
		ve.In = e
		g.setVertEdge(ev[1], ve)
	}
	for w, es := range g.wires.All() {
		for _, e := range es {
			g.edgeWire[e] = w
		}
	}
	for f, face := range g.faces.All() {
		for _, w := range face.Wires {
			g.wireFace[w] = f
		}
		for _, t := range face.Tris {
			g.triFace[t] = f
		}
	}
	for pt, v := range g.points.All() {
		g.vertPoint[v] = pt
	}
	for pl, w := range g.plines.All() {
		g.wirePline[w] = pl
	}
	for pg, f := range g.pgons.All() {
		g.facePgon[f] = pg
	}
	for c, coll := range g.colls.All() {
		for _, k := range types.Objects {
			up := g.objColls(k)
			for _, i := range *coll.members(k) {
				up[i] = appendUnique(up[i], c)
			}
		}
	}
}

// Dump copies other into g index for index, timestamps included. g is
// expected to be empty; its previous content is replaced.
func (g *Geom) Dump(other *Geom) {
	g.reset()
	g.copyFrom(other)
}

// DumpSelect copies the selected entities of other, and everything they
// require, into g index for index. g is expected to be empty. Collection
// members outside the selection are dropped and a parent outside the
// selection becomes -1.
func (g *Geom) DumpSelect(other *Geom, sel EntSets) {
	g.reset()
	req := other.Requires(sel)

	copySel(req, types.Posi, other.posis, g.posis, cloneNonNil)
	copySel(req, types.Vert, other.verts, g.verts, nil)
	copySel(req, types.Tri, other.tris, g.tris, nil)
	copySel(req, types.Edge, other.edges, g.edges, nil)
	copySel(req, types.Wire, other.wires, g.wires, cloneInts)
	copySel(req, types.Face, other.faces, g.faces, Face.clone)
	copySel(req, types.Point, other.points, g.points, nil)
	copySel(req, types.Pline, other.plines, g.plines, nil)
	copySel(req, types.Pgon, other.pgons, g.pgons, nil)
	copySel(req, types.Coll, other.colls, g.colls, func(c Coll) Coll {
		out := Coll{Parent: c.Parent}
		if !req.Has(types.Coll, c.Parent) {
			out.Parent = -1
		}
		for _, k := range types.Objects {
			dst := out.members(k)
			for _, i := range *c.members(k) {
				if req.Has(k, i) {
					*dst = append(*dst, i)
				}
			}
		}
		return out
	})
	for _, k := range types.TopLevel {
		for i := range req.All(k) {
			if t, ok := other.ts[k][i]; ok {
				g.SetEntTs(k, i, t)
			}
		}
	}
	for _, r := range other.selected {
		if req.Has(r.Kind, r.Index) {
			g.selected = append(g.selected, r)
		}
	}
	g.rebuildUp()
}

func copySel[T any](sel EntSets, k types.EntType, src, dst *arena.Table[T], copyFn func(T) T) {
	for i := range sel.All(k) {
		v, ok := src.Get(i)
		if !ok {
			continue
		}
		if copyFn != nil {
			v = copyFn(v)
		}
		dst.Set(i, v)
	}
}

// Merge copies other into g. A top-level entity present in both models
// must carry the same timestamp, and an entity deleted on one side must
// not be live on the other; either case fails with a *types.ConflictError
// before g is modified. A sub-entity slot live on both sides must belong
// to the same object and hold the same down link, otherwise the merge
// fails with a conflict naming the owning object.
func (g *Geom) Merge(other *Geom) error {
	for _, m := range []*Geom{g, other} {
		if err := m.checkTsTables(); err != nil {
			return err
		}
	}
	for _, k := range types.TopLevel {
		if err := g.checkConflicts(other, k); err != nil {
			return err
		}
	}
	if err := g.checkSubConflicts(other); err != nil {
		return err
	}

	mergeTable(other.posis, g.posis, cloneNonNil)
	mergeTable(other.verts, g.verts, nil)
	mergeTable(other.tris, g.tris, nil)
	mergeTable(other.edges, g.edges, nil)
	mergeTable(other.wires, g.wires, cloneInts)
	mergeTable(other.faces, g.faces, Face.clone)
	mergeTable(other.points, g.points, nil)
	mergeTable(other.plines, g.plines, nil)
	mergeTable(other.pgons, g.pgons, nil)
	mergeTable(other.colls, g.colls, Coll.clone)
	for k, m := range other.ts {
		for i, t := range m {
			g.SetEntTs(k, i, t)
		}
	}
	g.rebuildUp()
	return nil
}

func (g *Geom) checkTsTables() error {
	for _, k := range types.TopLevel {
		if n, want := len(g.ts[k]), g.table(k).Count(); n != want {
			return fmt.Errorf("%w: %s has %d timestamps for %d entities",
				types.ErrTimestampCorrupt, k.Plural(), n, want)
		}
	}
	return nil
}

func (g *Geom) checkConflicts(other *Geom, k types.EntType) error {
	src, dst := other.table(k), g.table(k)
	for i := 0; i < src.Len(); i++ {
		s, d := src.State(i), dst.State(i)
		switch {
		case s == arena.Absent || d == arena.Absent:
			continue
		case s == arena.Present && d == arena.Present:
			if other.ts[k][i] != g.ts[k][i] {
				return &types.ConflictError{Kind: k, Index: i}
			}
		case s != d:
			return &types.ConflictError{Kind: k, Index: i}
		}
	}
	return nil
}

// subKinds are the tables merged without timestamps of their own.
var subKinds = []types.EntType{types.Vert, types.Edge, types.Wire, types.Face, types.Tri}

// checkSubConflicts catches sub-entities that both models created at the
// same index after they diverged.
func (g *Geom) checkSubConflicts(other *Geom) error {
	for _, k := range subKinds {
		src, dst := other.table(k), g.table(k)
		for i := range min(src.Len(), dst.Len()) {
			if !src.Has(i) || !dst.Has(i) {
				continue
			}
			if g.sameOwner(other, k, i) && g.sameDown(other, k, i) {
				continue
			}
			kind, idx, found := g.TopoObj(k, i)
			if !found {
				kind, idx, found = other.TopoObj(k, i)
			}
			if !found {
				kind, idx = k, i
			}
			return &types.ConflictError{Kind: kind, Index: idx}
		}
	}
	return nil
}

func (g *Geom) sameOwner(other *Geom, k types.EntType, i int) bool {
	k1, i1, ok1 := g.TopoObj(k, i)
	k2, i2, ok2 := other.TopoObj(k, i)
	return ok1 == ok2 && k1 == k2 && i1 == i2
}

func (g *Geom) sameDown(other *Geom, k types.EntType, i int) bool {
	switch k {
	case types.Vert:
		a, _ := g.verts.Get(i)
		b, _ := other.verts.Get(i)
		return a == b
	case types.Edge:
		a, _ := g.edges.Get(i)
		b, _ := other.edges.Get(i)
		return a == b
	case types.Tri:
		a, _ := g.tris.Get(i)
		b, _ := other.tris.Get(i)
		return a == b
	case types.Wire:
		a, _ := g.wires.Get(i)
		b, _ := other.wires.Get(i)
		return slices.Equal(a, b)
	case types.Face:
		a, _ := g.faces.Get(i)
		b, _ := other.faces.Get(i)
		return slices.Equal(a.Wires, b.Wires)
	}
	return true
}

// mergeTable copies every slot of src that dst has never seen, and
// overwrites live slots with the donor value.
func mergeTable[T any](src, dst *arena.Table[T], copyFn func(T) T) {
	for i := 0; i < src.Len(); i++ {
		switch src.State(i) {
		case arena.Present:
			if dst.State(i) == arena.Deleted {
				continue
			}
			v, _ := src.Get(i)
			if copyFn != nil {
				v = copyFn(v)
			}
			dst.Set(i, v)
		case arena.Deleted:
			if dst.State(i) == arena.Absent {
				dst.Delete(i)
			}
		}
	}
}
