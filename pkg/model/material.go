package model

import (
	"fmt"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// MaterialAttrib is the polygon attribute naming a polygon's material.
const MaterialAttrib = "material"

// BasicMaterial is the material type that other types may extend.
const BasicMaterial = "MeshBasicMaterial"

// DefineMaterial stores a material definition as a dict model attribute
// named after the material. Settings of an existing definition that props
// does not override are kept. Replacing a non-basic material with one of
// a different type fails with ErrMaterialConflict.
func (m *Model) DefineMaterial(name string, props map[string]any) error {
	settings := make(map[string]any, len(props))
	for k, v := range props {
		settings[k] = v
	}
	if old, ok := m.attribs.ModelVal(name); ok {
		existing, isDict := old.(map[string]any)
		if !isDict {
			return fmt.Errorf("define material %q: %w", name, types.ErrDataTypeMismatch)
		}
		if existing["type"] != BasicMaterial && existing["type"] != settings["type"] {
			return fmt.Errorf("define material %q: %w", name, types.ErrMaterialConflict)
		}
		for k, v := range existing {
			if _, ok := settings[k]; !ok {
				settings[k] = v
			}
		}
	}
	return m.attribs.SetModelVal(name, settings)
}

// SetMaterial defines a material and assigns it to pgons through the
// material polygon attribute.
func (m *Model) SetMaterial(name string, props map[string]any, pgons ...int) error {
	for _, pg := range pgons {
		if !m.geom.Has(types.Pgon, pg) {
			return &types.EntityError{Kind: types.Pgon, Index: pg, Err: types.ErrEntityNotFound}
		}
	}
	if err := m.DefineMaterial(name, props); err != nil {
		return err
	}
	if err := m.attribs.AddAttrib(types.Pgon, MaterialAttrib, types.DataTypeString); err != nil {
		return err
	}
	for _, pg := range pgons {
		if err := m.SetAttribVal(types.Pgon, pg, MaterialAttrib, name); err != nil {
			return err
		}
	}
	return nil
}
