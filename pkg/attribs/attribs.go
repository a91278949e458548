// Package attribs implements the attribute store of a model: one table of
// named, typed columns per entity kind plus a model-level table. Columns are
// sparse and keyed by the entity indices of the topology store.
package attribs

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// XYZ is the built-in position coordinate attribute.
const XYZ = "xyz"

type column struct {
	dtype types.DataType
	vals  map[int]any
}

func (c *column) clone() *column {
	out := &column{dtype: c.dtype, vals: make(map[int]any, len(c.vals))}
	for i, v := range c.vals {
		out.vals[i] = types.CloneValue(v)
	}
	return out
}

// table holds the columns of one entity kind in creation order.
type table struct {
	cols  map[string]*column
	order []string
}

func newTable() *table {
	return &table{cols: make(map[string]*column)}
}

func (t *table) add(name string, dt types.DataType) *column {
	c := &column{dtype: dt, vals: make(map[int]any)}
	t.cols[name] = c
	t.order = append(t.order, name)
	return c
}

// Attribs is the attribute store of one model.
type Attribs struct {
	tables     map[types.EntType]*table
	model      map[string]any
	modelOrder []string
}

// New returns an empty store holding only the xyz position column.
func New() *Attribs {
	a := &Attribs{}
	a.reset()
	return a
}

func (a *Attribs) reset() {
	a.tables = make(map[types.EntType]*table, len(types.AttribKinds))
	for _, k := range types.AttribKinds {
		a.tables[k] = newTable()
	}
	a.tables[types.Posi].add(XYZ, types.DataTypeList)
	a.model = make(map[string]any)
	a.modelOrder = nil
}

func (a *Attribs) table(k types.EntType) (*table, error) {
	t, ok := a.tables[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no attributes", types.ErrUnknownEntType, k.Plural())
	}
	return t, nil
}

func (a *Attribs) column(k types.EntType, name string) (*column, error) {
	t, err := a.table(k)
	if err != nil {
		return nil, err
	}
	c, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s attribute %q", types.ErrAttribNotFound, k.Plural(), name)
	}
	return c, nil
}

// AddAttrib creates a column. Adding an existing column with the same type
// is a no-op; a different type fails with ErrAttribExists.
func (a *Attribs) AddAttrib(k types.EntType, name string, dt types.DataType) error {
	if !dt.Valid() {
		return fmt.Errorf("%w: %q", types.ErrDataTypeMismatch, dt)
	}
	t, err := a.table(k)
	if err != nil {
		return err
	}
	if c, ok := t.cols[name]; ok {
		if c.dtype != dt {
			return fmt.Errorf("%w: %s attribute %q is %s", types.ErrAttribExists, k.Plural(), name, c.dtype)
		}
		return nil
	}
	t.add(name, dt)
	return nil
}

// HasAttrib reports whether kind k has a column called name.
func (a *Attribs) HasAttrib(k types.EntType, name string) bool {
	if k == types.Mod {
		return a.HasModelAttrib(name)
	}
	_, err := a.column(k, name)
	return err == nil
}

// DataType returns the type of a column.
func (a *Attribs) DataType(k types.EntType, name string) (types.DataType, error) {
	c, err := a.column(k, name)
	if err != nil {
		return "", err
	}
	return c.dtype, nil
}

// Names lists the columns of kind k in creation order.
func (a *Attribs) Names(k types.EntType) []string {
	if k == types.Mod {
		return a.ModelNames()
	}
	t, ok := a.tables[k]
	if !ok {
		return nil
	}
	return slices.Clone(t.order)
}

// DelAttrib drops a column and all of its values. The xyz column cannot be
// deleted.
func (a *Attribs) DelAttrib(k types.EntType, name string) error {
	if k == types.Posi && name == XYZ {
		return fmt.Errorf("delete attribute %q: %w", name, types.ErrAttribExists)
	}
	t, err := a.table(k)
	if err != nil {
		return err
	}
	if _, ok := t.cols[name]; !ok {
		return fmt.Errorf("%w: %s attribute %q", types.ErrAttribNotFound, k.Plural(), name)
	}
	delete(t.cols, name)
	t.order = slices.DeleteFunc(t.order, func(n string) bool { return n == name })
	return nil
}

// RenameAttrib renames a column in place, keeping its position in the
// column order.
func (a *Attribs) RenameAttrib(k types.EntType, from, to string) error {
	if k == types.Posi && from == XYZ {
		return fmt.Errorf("rename attribute %q: %w", from, types.ErrAttribExists)
	}
	t, err := a.table(k)
	if err != nil {
		return err
	}
	c, ok := t.cols[from]
	if !ok {
		return fmt.Errorf("%w: %s attribute %q", types.ErrAttribNotFound, k.Plural(), from)
	}
	if _, ok := t.cols[to]; ok {
		return fmt.Errorf("%w: %s attribute %q", types.ErrAttribExists, k.Plural(), to)
	}
	delete(t.cols, from)
	t.cols[to] = c
	t.order[slices.Index(t.order, from)] = to
	return nil
}

// SetVal stores v for entity i. A missing column is created with the type
// of v. A nil v stores an explicit null.
func (a *Attribs) SetVal(k types.EntType, i int, name string, v any) error {
	return a.SetVals(k, []int{i}, name, v)
}

// SetVals stores v for every index in is.
func (a *Attribs) SetVals(k types.EntType, is []int, name string, v any) error {
	norm, dt, err := types.NormalizeValue(v)
	if err != nil {
		return fmt.Errorf("set %s attribute %q: %w", k.Plural(), name, err)
	}
	t, err := a.table(k)
	if err != nil {
		return err
	}
	c, ok := t.cols[name]
	switch {
	case !ok && norm == nil:
		return fmt.Errorf("%w: %s attribute %q", types.ErrAttribNotFound, k.Plural(), name)
	case !ok:
		c = t.add(name, dt)
	case norm != nil && c.dtype != dt:
		return fmt.Errorf("%w: %s attribute %q is %s, got %s", types.ErrDataTypeMismatch, k.Plural(), name, c.dtype, dt)
	}
	for _, i := range is {
		c.vals[i] = types.CloneValue(norm)
	}
	return nil
}

// Val returns the value of entity i and whether one is set. An explicit
// null reports (nil, true).
func (a *Attribs) Val(k types.EntType, i int, name string) (any, bool) {
	if k == types.Mod {
		return a.ModelVal(name)
	}
	c, err := a.column(k, name)
	if err != nil {
		return nil, false
	}
	v, ok := c.vals[i]
	return types.CloneValue(v), ok
}

// DelVal removes the value of entity i, if any.
func (a *Attribs) DelVal(k types.EntType, i int, name string) {
	if c, err := a.column(k, name); err == nil {
		delete(c.vals, i)
	}
}

// Indices returns the entities that hold a value in a column, ascending.
func (a *Attribs) Indices(k types.EntType, name string) []int {
	c, err := a.column(k, name)
	if err != nil {
		return nil
	}
	return sortedIndices(c.vals)
}

// SetModelVal sets a model-level attribute.
func (a *Attribs) SetModelVal(name string, v any) error {
	norm, _, err := types.NormalizeValue(v)
	if err != nil {
		return fmt.Errorf("set model attribute %q: %w", name, err)
	}
	a.setModel(name, norm)
	return nil
}

func (a *Attribs) setModel(name string, v any) {
	if _, ok := a.model[name]; !ok {
		a.modelOrder = append(a.modelOrder, name)
	}
	a.model[name] = types.CloneValue(v)
}

// ModelVal returns a model-level attribute.
func (a *Attribs) ModelVal(name string) (any, bool) {
	v, ok := a.model[name]
	return types.CloneValue(v), ok
}

// HasModelAttrib reports whether a model-level attribute exists.
func (a *Attribs) HasModelAttrib(name string) bool {
	_, ok := a.model[name]
	return ok
}

// ModelNames lists model-level attributes in creation order.
func (a *Attribs) ModelNames() []string {
	return slices.Clone(a.modelOrder)
}

// PosiCoords returns the coordinates of position p, or the origin when
// none are set.
func (a *Attribs) PosiCoords(p int) [3]float64 {
	var xyz [3]float64
	v, ok := a.tables[types.Posi].cols[XYZ].vals[p]
	if !ok {
		return xyz
	}
	list, _ := v.([]any)
	for n := 0; n < 3 && n < len(list); n++ {
		xyz[n], _ = list[n].(float64)
	}
	return xyz
}

// SetPosiCoords sets the coordinates of position p.
func (a *Attribs) SetPosiCoords(p int, xyz [3]float64) {
	a.tables[types.Posi].cols[XYZ].vals[p] = []any{xyz[0], xyz[1], xyz[2]}
}

// Clone returns a deep copy.
func (a *Attribs) Clone() *Attribs {
	out := New()
	out.Dump(a)
	return out
}
