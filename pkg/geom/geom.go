// Package geom is the topology store of a model: positions, vertices,
// edges, wires, faces, triangles, the three object kinds and collections,
// together with the up links that mirror every down link.
//
// Entities are addressed by integer index into a per-kind arena. Indices
// are never reused; removing an entity leaves a tombstone so exported
// arrays keep their shape. The store does not validate structure on add
// and does not cascade on remove; Check reports inconsistencies after
// the fact.
package geom

import (
	"slices"

	"github.com/mesh-intelligence/geokernel/internal/arena"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// State is the lifecycle state of an entity slot.
type State = arena.State

// Slot states.
const (
	Absent  = arena.Absent
	Deleted = arena.Deleted
	Present = arena.Present
)

// Coords supplies position coordinates for triangulation.
type Coords interface {
	PosiCoords(posi int) [3]float64
}

// Face is the down link of a face: its outer wire first, then holes, plus
// the triangles that cover it.
type Face struct {
	Wires []int
	Tris  []int
}

func (f Face) clone() Face {
	return Face{Wires: slices.Clone(f.Wires), Tris: cloneNonNil(f.Tris)}
}

// Coll is the down link of a collection. Parent is -1 for a root.
type Coll struct {
	Parent int
	Points []int
	Plines []int
	Pgons  []int
}

func (c Coll) clone() Coll {
	return Coll{
		Parent: c.Parent,
		Points: slices.Clone(c.Points),
		Plines: slices.Clone(c.Plines),
		Pgons:  slices.Clone(c.Pgons),
	}
}

func (c *Coll) members(k types.EntType) *[]int {
	switch k {
	case types.Point:
		return &c.Points
	case types.Pline:
		return &c.Plines
	case types.Pgon:
		return &c.Pgons
	}
	return nil
}

// VertEdges is a vertex's edge up link. In is the edge ending at the
// vertex and Out the edge starting at it; -1 marks an empty slot.
type VertEdges struct {
	In  int
	Out int
}

var noEdges = VertEdges{In: -1, Out: -1}

// Geom holds the topology tables of one model.
type Geom struct {
	clock  *Clock
	coords Coords

	// down tables; a position's value is its up list of vertices
	posis  *arena.Table[[]int]
	verts  *arena.Table[int]
	tris   *arena.Table[[3]int]
	edges  *arena.Table[[2]int]
	wires  *arena.Table[[]int]
	faces  *arena.Table[Face]
	points *arena.Table[int]
	plines *arena.Table[int]
	pgons  *arena.Table[int]
	colls  *arena.Table[Coll]

	// up tables
	vertTris   map[int][]int
	vertEdges  map[int]VertEdges
	vertPoint  map[int]int
	edgeWire   map[int]int
	wireFace   map[int]int
	wirePline  map[int]int
	triFace    map[int]int
	facePgon   map[int]int
	pointColls map[int][]int
	plineColls map[int][]int
	pgonColls  map[int][]int

	ts       map[types.EntType]map[int]int
	selected []types.EntRef
}

// New creates an empty topology store stamped by clock. A nil clock gets
// a fresh one.
func New(clock *Clock) *Geom {
	if clock == nil {
		clock = NewClock()
	}
	g := &Geom{clock: clock}
	g.reset()
	return g
}

func (g *Geom) reset() {
	g.posis = arena.New[[]int]()
	g.verts = arena.New[int]()
	g.tris = arena.New[[3]int]()
	g.edges = arena.New[[2]int]()
	g.wires = arena.New[[]int]()
	g.faces = arena.New[Face]()
	g.points = arena.New[int]()
	g.plines = arena.New[int]()
	g.pgons = arena.New[int]()
	g.colls = arena.New[Coll]()
	g.resetUp()
	g.ts = make(map[types.EntType]map[int]int, len(types.TopLevel))
	for _, k := range types.TopLevel {
		g.ts[k] = make(map[int]int)
	}
	g.selected = nil
}

func (g *Geom) resetUp() {
	g.vertTris = make(map[int][]int)
	g.vertEdges = make(map[int]VertEdges)
	g.vertPoint = make(map[int]int)
	g.edgeWire = make(map[int]int)
	g.wireFace = make(map[int]int)
	g.wirePline = make(map[int]int)
	g.triFace = make(map[int]int)
	g.facePgon = make(map[int]int)
	g.pointColls = make(map[int][]int)
	g.plineColls = make(map[int][]int)
	g.pgonColls = make(map[int][]int)
}

// Clock returns the clock that stamps this store.
func (g *Geom) Clock() *Clock { return g.clock }

// SetCoords installs the coordinate source used by triangulation.
func (g *Geom) SetCoords(c Coords) { g.coords = c }

// Clone returns a deep copy stamped by clock. The coordinate source is
// not copied.
func (g *Geom) Clone(clock *Clock) *Geom {
	out := New(clock)
	out.copyFrom(g)
	return out
}

// copyFrom deep-copies every table of other into g.
func (g *Geom) copyFrom(other *Geom) {
	g.posis = other.posis.Clone(cloneNonNil)
	g.verts = other.verts.Clone(nil)
	g.tris = other.tris.Clone(nil)
	g.edges = other.edges.Clone(nil)
	g.wires = other.wires.Clone(cloneInts)
	g.faces = other.faces.Clone(Face.clone)
	g.points = other.points.Clone(nil)
	g.plines = other.plines.Clone(nil)
	g.pgons = other.pgons.Clone(nil)
	g.colls = other.colls.Clone(Coll.clone)

	g.vertTris = cloneListMap(other.vertTris)
	g.vertEdges = cloneMap(other.vertEdges)
	g.vertPoint = cloneMap(other.vertPoint)
	g.edgeWire = cloneMap(other.edgeWire)
	g.wireFace = cloneMap(other.wireFace)
	g.wirePline = cloneMap(other.wirePline)
	g.triFace = cloneMap(other.triFace)
	g.facePgon = cloneMap(other.facePgon)
	g.pointColls = cloneListMap(other.pointColls)
	g.plineColls = cloneListMap(other.plineColls)
	g.pgonColls = cloneListMap(other.pgonColls)

	for k, m := range other.ts {
		g.ts[k] = cloneMap(m)
		for _, t := range m {
			g.clock.Observe(t)
		}
	}
	g.selected = slices.Clone(other.selected)
}

type stateTable interface {
	State(i int) arena.State
	Has(i int) bool
	Len() int
	Count() int
	Indices() []int
	Delete(i int)
}

func (g *Geom) table(k types.EntType) stateTable {
	switch k {
	case types.Posi:
		return g.posis
	case types.Vert:
		return g.verts
	case types.Tri:
		return g.tris
	case types.Edge:
		return g.edges
	case types.Wire:
		return g.wires
	case types.Face:
		return g.faces
	case types.Point:
		return g.points
	case types.Pline:
		return g.plines
	case types.Pgon:
		return g.pgons
	case types.Coll:
		return g.colls
	}
	return nil
}

// Has reports whether entity i of kind k is live.
func (g *Geom) Has(k types.EntType, i int) bool {
	t := g.table(k)
	return t != nil && t.Has(i)
}

// State returns the slot state of entity i of kind k.
func (g *Geom) State(k types.EntType, i int) State {
	t := g.table(k)
	if t == nil {
		return Absent
	}
	return t.State(i)
}

// Ents returns the live indices of kind k in ascending order.
func (g *Geom) Ents(k types.EntType) []int {
	t := g.table(k)
	if t == nil {
		return nil
	}
	return t.Indices()
}

// NumEnts returns the number of live entities of kind k.
func (g *Geom) NumEnts(k types.EntType) int {
	t := g.table(k)
	if t == nil {
		return 0
	}
	return t.Count()
}

// Len returns the arena length of kind k, deleted slots included.
func (g *Geom) Len(k types.EntType) int {
	t := g.table(k)
	if t == nil {
		return 0
	}
	return t.Len()
}

// Selected returns the current selection.
func (g *Geom) Selected() []types.EntRef {
	return slices.Clone(g.selected)
}

// SetSelected replaces the selection.
func (g *Geom) SetSelected(refs []types.EntRef) {
	g.selected = slices.Clone(refs)
}

func (g *Geom) vertEdge(v int) VertEdges {
	if ve, ok := g.vertEdges[v]; ok {
		return ve
	}
	return noEdges
}

func (g *Geom) setVertEdge(v int, ve VertEdges) {
	if ve == noEdges {
		delete(g.vertEdges, v)
		return
	}
	g.vertEdges[v] = ve
}

func (g *Geom) objColls(k types.EntType) map[int][]int {
	switch k {
	case types.Point:
		return g.pointColls
	case types.Pline:
		return g.plineColls
	case types.Pgon:
		return g.pgonColls
	}
	return nil
}

func cloneNonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return slices.Clone(s)
}

func cloneMap[V any](m map[int]V) map[int]V {
	out := make(map[int]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneListMap(m map[int][]int) map[int][]int {
	out := make(map[int][]int, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

func appendUnique(s []int, vals ...int) []int {
	for _, v := range vals {
		if !slices.Contains(s, v) {
			s = append(s, v)
		}
	}
	return s
}

func removeVal(s []int, v int) []int {
	return slices.DeleteFunc(s, func(x int) bool { return x == v })
}

func cloneInts(s []int) []int { return slices.Clone(s) }
