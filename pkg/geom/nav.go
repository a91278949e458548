package geom

import "github.com/mesh-intelligence/geokernel/pkg/types"

// below lists, per kind, every kind reachable by following down links.
var below = map[types.EntType][]types.EntType{
	types.Vert:  {types.Posi},
	types.Tri:   {types.Vert, types.Posi},
	types.Edge:  {types.Vert, types.Posi},
	types.Wire:  {types.Edge, types.Vert, types.Posi},
	types.Face:  {types.Wire, types.Tri, types.Edge, types.Vert, types.Posi},
	types.Point: {types.Vert, types.Posi},
	types.Pline: {types.Wire, types.Edge, types.Vert, types.Posi},
	types.Pgon:  {types.Face, types.Wire, types.Tri, types.Edge, types.Vert, types.Posi},
	types.Coll: {types.Point, types.Pline, types.Pgon, types.Face, types.Wire, types.Tri,
		types.Edge, types.Vert, types.Posi},
}

func reachesDown(from, to types.EntType) bool {
	for _, k := range below[from] {
		if k == to {
			return true
		}
	}
	return false
}

func reachesUp(from, to types.EntType) bool { return reachesDown(to, from) }

type entRef struct {
	kind types.EntType
	idx  int
}

// down returns the direct constituents of an entity. Triangles are only
// followed when they are the target, so face navigation walks wires.
func (g *Geom) down(k types.EntType, i int, to types.EntType) []entRef {
	var out []entRef
	add := func(kind types.EntType, is ...int) {
		for _, j := range is {
			out = append(out, entRef{kind, j})
		}
	}
	switch k {
	case types.Vert:
		if p, ok := g.verts.Get(i); ok {
			add(types.Posi, p)
		}
	case types.Tri:
		if vs, ok := g.tris.Get(i); ok {
			add(types.Vert, vs[:]...)
		}
	case types.Edge:
		if vs, ok := g.edges.Get(i); ok {
			add(types.Vert, vs[:]...)
		}
	case types.Wire:
		es, _ := g.wires.Get(i)
		add(types.Edge, es...)
	case types.Face:
		face, _ := g.faces.Get(i)
		if to == types.Tri {
			add(types.Tri, face.Tris...)
		} else {
			add(types.Wire, face.Wires...)
		}
	case types.Point:
		if v, ok := g.points.Get(i); ok {
			add(types.Vert, v)
		}
	case types.Pline:
		if w, ok := g.plines.Get(i); ok {
			add(types.Wire, w)
		}
	case types.Pgon:
		if f, ok := g.pgons.Get(i); ok {
			add(types.Face, f)
		}
	case types.Coll:
		coll, _ := g.colls.Get(i)
		add(types.Point, coll.Points...)
		add(types.Pline, coll.Plines...)
		add(types.Pgon, coll.Pgons...)
	}
	return out
}

// up returns the direct containers of an entity. Triangles are only
// followed when they are the target.
func (g *Geom) up(k types.EntType, i int, to types.EntType) []entRef {
	var out []entRef
	add := func(kind types.EntType, is ...int) {
		for _, j := range is {
			out = append(out, entRef{kind, j})
		}
	}
	switch k {
	case types.Posi:
		vs, _ := g.posis.Get(i)
		add(types.Vert, vs...)
	case types.Vert:
		if to == types.Tri {
			add(types.Tri, g.vertTris[i]...)
			break
		}
		ve := g.vertEdge(i)
		if ve.In >= 0 {
			add(types.Edge, ve.In)
		}
		if ve.Out >= 0 {
			add(types.Edge, ve.Out)
		}
		if pt, ok := g.vertPoint[i]; ok {
			add(types.Point, pt)
		}
	case types.Tri:
		if f, ok := g.triFace[i]; ok {
			add(types.Face, f)
		}
	case types.Edge:
		if w, ok := g.edgeWire[i]; ok {
			add(types.Wire, w)
		}
	case types.Wire:
		if f, ok := g.wireFace[i]; ok {
			add(types.Face, f)
		}
		if pl, ok := g.wirePline[i]; ok {
			add(types.Pline, pl)
		}
	case types.Face:
		if pg, ok := g.facePgon[i]; ok {
			add(types.Pgon, pg)
		}
	case types.Point, types.Pline, types.Pgon:
		add(types.Coll, g.objColls(k)[i]...)
	}
	return out
}

// Nav returns the entities of kind to that are connected to entity i of
// kind from. Results are ordered by first discovery and contain no
// duplicates. Kinds that are neither above nor below each other are
// connected through their shared positions.
func (g *Geom) Nav(from, to types.EntType, i int) []int {
	if from == to {
		if g.Has(from, i) {
			return []int{i}
		}
		return nil
	}
	c := &collector{seen: make(map[int]bool)}
	switch {
	case reachesDown(from, to):
		g.walk(from, i, to, g.down, reachesDown, c)
	case reachesUp(from, to):
		g.walk(from, i, to, g.up, reachesUp, c)
	default:
		for _, p := range g.Nav(from, types.Posi, i) {
			g.walk(types.Posi, p, to, g.up, reachesUp, c)
		}
	}
	return c.out
}

type collector struct {
	out  []int
	seen map[int]bool
}

func (c *collector) add(i int) {
	if !c.seen[i] {
		c.seen[i] = true
		c.out = append(c.out, i)
	}
}

func (g *Geom) walk(k types.EntType, i int, to types.EntType,
	step func(types.EntType, int, types.EntType) []entRef,
	reaches func(types.EntType, types.EntType) bool, c *collector) {
	for _, r := range step(k, i, to) {
		switch {
		case r.kind == to:
			c.add(r.idx)
		case reaches(r.kind, to):
			g.walk(r.kind, r.idx, to, step, reaches, c)
		}
	}
}

// NavAnyToPosi returns the positions under entity i of kind k.
func (g *Geom) NavAnyToPosi(k types.EntType, i int) []int { return g.Nav(k, types.Posi, i) }

// NavAnyToVert returns the vertices connected to entity i of kind k.
func (g *Geom) NavAnyToVert(k types.EntType, i int) []int { return g.Nav(k, types.Vert, i) }

// NavAnyToEdge returns the edges connected to entity i of kind k.
func (g *Geom) NavAnyToEdge(k types.EntType, i int) []int { return g.Nav(k, types.Edge, i) }

// NavAnyToWire returns the wires connected to entity i of kind k.
func (g *Geom) NavAnyToWire(k types.EntType, i int) []int { return g.Nav(k, types.Wire, i) }
