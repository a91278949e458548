package geom

import "github.com/mesh-intelligence/geokernel/pkg/types"

// EntTs returns the timestamp of a top-level entity.
func (g *Geom) EntTs(k types.EntType, i int) (int, bool) {
	t, ok := g.ts[k][i]
	return t, ok
}

// SetEntTs records a timestamp and moves the clock past it.
func (g *Geom) SetEntTs(k types.EntType, i, ts int) {
	m, ok := g.ts[k]
	if !ok {
		return
	}
	m[i] = ts
	g.clock.Observe(ts)
}

// DelEntTs forgets the timestamp of a top-level entity.
func (g *Geom) DelEntTs(k types.EntType, i int) {
	delete(g.ts[k], i)
}

// UpdateEntTs stamps one top-level entity with a new tick.
func (g *Geom) UpdateEntTs(k types.EntType, i int) {
	g.UpdateEntsTs(k, []int{i})
}

// UpdateEntsTs stamps several top-level entities with the same new tick.
func (g *Geom) UpdateEntsTs(k types.EntType, is []int) {
	m, ok := g.ts[k]
	if !ok || len(is) == 0 {
		return
	}
	t := g.clock.Next()
	for _, i := range is {
		m[i] = t
	}
}

// UpdateObjsTs records a change to entity i. Top-level entities are
// stamped directly; a collection also stamps its members; a sub-entity
// stamps the object that owns it.
func (g *Geom) UpdateObjsTs(k types.EntType, i int) {
	switch k {
	case types.Posi, types.Point, types.Pline, types.Pgon:
		g.UpdateEntTs(k, i)
	case types.Coll:
		coll, ok := g.colls.Get(i)
		if !ok {
			return
		}
		t := g.clock.Next()
		g.ts[types.Coll][i] = t
		for _, pt := range coll.Points {
			g.ts[types.Point][pt] = t
		}
		for _, pl := range coll.Plines {
			g.ts[types.Pline][pl] = t
		}
		for _, pg := range coll.Pgons {
			g.ts[types.Pgon][pg] = t
		}
	default:
		if obj, j, found := g.TopoObj(k, i); found {
			g.UpdateEntTs(obj, j)
		}
	}
}
