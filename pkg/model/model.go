// Package model ties a topology store and an attribute store into one
// model. It owns the model clock, loads and exports payloads, merges and
// purges whole models, and hosts the comparison engine used for grading.
package model

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/geokernel/internal/logging"
	"github.com/mesh-intelligence/geokernel/pkg/attribs"
	"github.com/mesh-intelligence/geokernel/pkg/geom"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// Model is a geometry store and its attributes, stamped by one clock.
type Model struct {
	geom    *geom.Geom
	attribs *attribs.Attribs
	clock   *geom.Clock
	log     *logging.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger used for merge, purge, triangulation and
// compare events.
func WithLogger(l *logging.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock stamps the model with an existing clock.
func WithClock(c *geom.Clock) Option {
	return func(m *Model) {
		if c != nil {
			m.clock = c
		}
	}
}

// New returns an empty model.
func New(opts ...Option) *Model {
	m := &Model{log: logging.NoopLogger()}
	for _, opt := range opts {
		opt(m)
	}
	if m.clock == nil {
		m.clock = geom.NewClock()
	}
	m.geom = geom.New(m.clock)
	m.attribs = attribs.New()
	m.geom.SetCoords(m.attribs)
	return m
}

// Geom returns the topology store.
func (m *Model) Geom() *geom.Geom { return m.geom }

// Attribs returns the attribute store.
func (m *Model) Attribs() *attribs.Attribs { return m.attribs }

// Clock returns the model clock.
func (m *Model) Clock() *geom.Clock { return m.clock }

// Logger returns the model logger.
func (m *Model) Logger() *logging.Logger { return m.log }

// SetData replaces the model with a payload. Attributes are loaded before
// geometry so that triangulation sees coordinates. On error the model is
// left unchanged.
func (m *Model) SetData(d types.ModelData) error {
	a := attribs.New()
	if err := a.SetData(d.Attributes); err != nil {
		return fmt.Errorf("load attributes: %w", err)
	}
	g := geom.New(m.clock)
	g.SetCoords(a)
	if err := g.SetData(d.Geometry); err != nil {
		return fmt.Errorf("load geometry: %w", err)
	}
	m.geom, m.attribs = g, a
	return nil
}

// GetData exports the model.
func (m *Model) GetData() types.ModelData {
	return types.ModelData{
		Geometry:   m.geom.GetData(),
		Attributes: m.attribs.GetData(),
	}
}

// Check runs the consistency checker.
func (m *Model) Check() []string {
	return m.geom.Check()
}

// Clone returns a deep copy on a forked clock, so edits made to the copy
// conflict with independent edits made to m.
func (m *Model) Clone() *Model {
	out := New(WithClock(m.clock.Fork()), WithLogger(m.log))
	out.Dump(m)
	return out
}

// Merge copies other into m. Conflicting timestamps or attribute types
// fail before m is modified.
func (m *Model) Merge(other *Model) error {
	err := m.merge(other)
	m.log.LogMerge(context.Background(), other.geom.NumEnts(types.Posi), err)
	return err
}

func (m *Model) merge(other *Model) error {
	if err := m.attribs.MergeCheck(other.attribs); err != nil {
		return fmt.Errorf("merge attributes: %w", err)
	}
	if err := m.geom.Merge(other.geom); err != nil {
		return fmt.Errorf("merge geometry: %w", err)
	}
	if err := m.attribs.Merge(other.attribs); err != nil {
		return fmt.Errorf("merge attributes: %w", err)
	}
	return nil
}

// Dump replaces m with a copy of other, index for index.
func (m *Model) Dump(other *Model) {
	m.geom.Dump(other.geom)
	m.attribs.Dump(other.attribs)
}

// DumpSelect replaces m with the selected entities of other and
// everything they depend on.
func (m *Model) DumpSelect(other *Model, sel geom.EntSets) {
	req := other.geom.Requires(sel)
	m.geom.DumpSelect(other.geom, sel)
	m.attribs.DumpSelect(other.attribs, req)
}

// Purge drops deleted slots and renumbers every table and attribute
// column. The returned remap maps old indices to new ones.
func (m *Model) Purge() geom.Remap {
	before := m.slots()
	r := m.geom.Purge()
	m.attribs.Remap(r)
	m.log.LogPurge(context.Background(), before-m.slots())
	return r
}

func (m *Model) slots() int {
	n := 0
	for _, k := range []types.EntType{types.Posi, types.Vert, types.Tri, types.Edge, types.Wire,
		types.Face, types.Point, types.Pline, types.Pgon, types.Coll} {
		n += m.geom.Len(k)
	}
	return n
}

// MergeAndPurge merges other into m and then purges m.
func (m *Model) MergeAndPurge(other *Model) (geom.Remap, error) {
	if err := m.Merge(other); err != nil {
		return nil, err
	}
	return m.Purge(), nil
}

// AddPosi adds a position at xyz.
func (m *Model) AddPosi(xyz [3]float64) int {
	p := m.geom.AddPosi()
	m.attribs.SetPosiCoords(p, xyz)
	return p
}

// SetPosiCoords moves position p and stamps it.
func (m *Model) SetPosiCoords(p int, xyz [3]float64) {
	m.attribs.SetPosiCoords(p, xyz)
	m.geom.UpdateEntTs(types.Posi, p)
}

// AddPgon adds a polygon. A triangulation failure is logged and the
// polygon is kept without triangles.
func (m *Model) AddPgon(posis []int, holes ...[]int) int {
	pg, err := m.geom.AddPgon(posis, holes...)
	if err != nil {
		m.log.LogTriangulate(context.Background(), m.geom.PgonFace(pg), err)
	}
	return pg
}

// SetAttribVal sets an attribute value and stamps the object that owns
// the entity. Kind Mod sets a model attribute.
func (m *Model) SetAttribVal(k types.EntType, i int, name string, v any) error {
	if k == types.Mod {
		return m.attribs.SetModelVal(name, v)
	}
	if err := m.attribs.SetVal(k, i, name, v); err != nil {
		return err
	}
	m.geom.UpdateObjsTs(k, i)
	return nil
}

// Counts returns the number of live entities per top-level kind.
func (m *Model) Counts() map[types.EntType]int {
	out := make(map[types.EntType]int, len(types.TopLevel))
	for _, k := range types.TopLevel {
		out[k] = m.geom.NumEnts(k)
	}
	return out
}
