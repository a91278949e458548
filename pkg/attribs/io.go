package attribs

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/geokernel/pkg/geom"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// GetData exports every column. Entities sharing a value are grouped into
// one entry; entries are ordered by their first index.
func (a *Attribs) GetData() types.AttribsData {
	var d types.AttribsData
	for _, k := range types.AttribKinds {
		t := a.tables[k]
		cols := make([]types.AttribData, 0, len(t.order))
		for _, name := range t.order {
			c := t.cols[name]
			cols = append(cols, types.AttribData{
				Name:     name,
				DataType: c.dtype,
				Data:     groupVals(c.vals),
			})
		}
		*d.Kind(k) = cols
	}
	d.Model = make([]types.ModelAttrib, 0, len(a.modelOrder))
	for _, name := range a.modelOrder {
		d.Model = append(d.Model, types.ModelAttrib{Name: name, Value: types.CloneValue(a.model[name])})
	}
	return d
}

func groupVals(vals map[int]any) []types.AttribEntry {
	out := []types.AttribEntry{}
	byKey := make(map[string]int)
	for _, i := range sortedIndices(vals) {
		v := vals[i]
		key := valueKey(v)
		n, ok := byKey[key]
		if !ok {
			n = len(out)
			byKey[key] = n
			out = append(out, types.AttribEntry{Value: types.CloneValue(v)})
		}
		out[n].Indices = append(out[n].Indices, i)
	}
	return out
}

// valueKey returns a string that is equal for equal canonical values.
// encoding/json sorts map keys, so dicts compare by content.
func valueKey(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}

// SetData replaces the store with a payload.
func (a *Attribs) SetData(d types.AttribsData) error {
	a.reset()
	for _, k := range types.AttribKinds {
		t := a.tables[k]
		for _, ad := range *d.Kind(k) {
			if !ad.DataType.Valid() {
				return fmt.Errorf("%w: %s attribute %q has data type %q", types.ErrInvalidPayload, k.Plural(), ad.Name, ad.DataType)
			}
			c, ok := t.cols[ad.Name]
			if !ok {
				c = t.add(ad.Name, ad.DataType)
			} else if c.dtype != ad.DataType {
				return fmt.Errorf("%w: %s attribute %q must be %s", types.ErrInvalidPayload, k.Plural(), ad.Name, c.dtype)
			}
			for _, e := range ad.Data {
				norm, dt, err := types.NormalizeValue(e.Value)
				if err != nil {
					return fmt.Errorf("load %s attribute %q: %w", k.Plural(), ad.Name, err)
				}
				if norm != nil && dt != c.dtype {
					return fmt.Errorf("%w: %s attribute %q is %s, got %s", types.ErrDataTypeMismatch, k.Plural(), ad.Name, c.dtype, dt)
				}
				for _, i := range e.Indices {
					c.vals[i] = types.CloneValue(norm)
				}
			}
		}
	}
	for _, m := range d.Model {
		norm, _, err := types.NormalizeValue(m.Value)
		if err != nil {
			return fmt.Errorf("load model attribute %q: %w", m.Name, err)
		}
		a.setModel(m.Name, norm)
	}
	return nil
}

// Merge copies every column and value of other into a. Values of other
// win for entities both stores hold. Nothing is changed when a column
// exists on both sides with different types.
func (a *Attribs) Merge(other *Attribs) error {
	if err := a.MergeCheck(other); err != nil {
		return err
	}
	for _, k := range types.AttribKinds {
		this, donor := a.tables[k], other.tables[k]
		for _, name := range donor.order {
			src := donor.cols[name]
			dst, ok := this.cols[name]
			if !ok {
				dst = this.add(name, src.dtype)
			}
			for i, v := range src.vals {
				dst.vals[i] = types.CloneValue(v)
			}
		}
	}
	a.mergeModel(other)
	return nil
}

// MergeCheck reports whether other can be merged into a.
func (a *Attribs) MergeCheck(other *Attribs) error {
	for _, k := range types.AttribKinds {
		this, donor := a.tables[k], other.tables[k]
		for _, name := range donor.order {
			c, ok := this.cols[name]
			if ok && c.dtype != donor.cols[name].dtype {
				return fmt.Errorf("%w: cannot merge attributes with different data types: %s attribute %q",
					types.ErrDataTypeMismatch, k.Plural(), name)
			}
		}
	}
	return nil
}

func (a *Attribs) mergeModel(other *Attribs) {
	for _, name := range other.modelOrder {
		a.setModel(name, other.model[name])
	}
}

// Dump replaces a with a deep copy of other.
func (a *Attribs) Dump(other *Attribs) {
	a.reset()
	for _, k := range types.AttribKinds {
		this, donor := a.tables[k], other.tables[k]
		for _, name := range donor.order {
			src := donor.cols[name]
			if name == XYZ && k == types.Posi {
				this.cols[XYZ] = src.clone()
				continue
			}
			this.cols[name] = src.clone()
			this.order = append(this.order, name)
		}
	}
	a.mergeModel(other)
}

// DumpSelect replaces a with the values of other that belong to the
// entities in sel. Column definitions and model attributes are copied in
// full.
func (a *Attribs) DumpSelect(other *Attribs, sel geom.EntSets) {
	a.reset()
	for _, k := range types.AttribKinds {
		this, donor := a.tables[k], other.tables[k]
		for _, name := range donor.order {
			src := donor.cols[name]
			dst, ok := this.cols[name]
			if !ok {
				dst = this.add(name, src.dtype)
			}
			for i := range sel.All(k) {
				if v, ok := src.vals[i]; ok {
					dst.vals[i] = types.CloneValue(v)
				}
			}
		}
	}
	a.mergeModel(other)
}

// Remap renumbers every column after a purge. Values of dropped entities
// are discarded.
func (a *Attribs) Remap(r geom.Remap) {
	for _, k := range types.AttribKinds {
		for _, c := range a.tables[k].cols {
			vals := make(map[int]any, len(c.vals))
			for i, v := range c.vals {
				if j := r.Index(k, i); j >= 0 {
					vals[j] = v
				}
			}
			c.vals = vals
		}
	}
}

func sortedIndices(vals map[int]any) []int {
	out := make([]int, 0, len(vals))
	for i := range vals {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}
