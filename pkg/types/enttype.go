package types

import (
	"encoding/json"
	"fmt"
)

// EntType identifies one kind of entity in a model.
type EntType int

// Entity kinds, ordered from positions up to collections. Mod addresses the
// model-level attribute table and has no topology.
const (
	Posi EntType = iota
	Vert
	Tri
	Edge
	Wire
	Face
	Point
	Pline
	Pgon
	Coll
	Mod
)

var entCodes = [...]string{"ps", "_v", "_t", "_e", "_w", "_f", "pt", "pl", "pg", "co", "mo"}

var entPlurals = [...]string{
	"positions", "vertices", "triangles", "edges", "wires", "faces",
	"points", "polylines", "polygons", "collections", "model",
}

var entTitles = [...]string{"Posi", "Vert", "Tri", "Edge", "Wire", "Face", "Point", "Pline", "Pgon", "Coll", "Mod"}

// TopLevel lists the kinds that carry logical timestamps.
var TopLevel = []EntType{Posi, Point, Pline, Pgon, Coll}

// Objects lists the object kinds.
var Objects = []EntType{Point, Pline, Pgon}

// AttribKinds lists the kinds that own an entity attribute table.
var AttribKinds = []EntType{Posi, Vert, Edge, Wire, Face, Point, Pline, Pgon, Coll}

// Valid reports whether t is a known entity kind.
func (t EntType) Valid() bool {
	return t >= Posi && t <= Mod
}

// String returns the short code for the kind, e.g. "pg".
func (t EntType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("EntType(%d)", int(t))
	}
	return entCodes[t]
}

// Plural returns the display name used in messages, e.g. "polygons".
func (t EntType) Plural() string {
	if !t.Valid() {
		return t.String()
	}
	return entPlurals[t]
}

// Title returns the capitalised singular label used by the checker.
func (t EntType) Title() string {
	if !t.Valid() {
		return t.String()
	}
	return entTitles[t]
}

// IsTopLevel reports whether t carries a timestamp.
func (t EntType) IsTopLevel() bool {
	switch t {
	case Posi, Point, Pline, Pgon, Coll:
		return true
	}
	return false
}

// IsObject reports whether t is a point, polyline or polygon.
func (t EntType) IsObject() bool {
	return t == Point || t == Pline || t == Pgon
}

// ParseEntType parses a short code or a plural name.
func ParseEntType(s string) (EntType, error) {
	for i := range entCodes {
		if entCodes[i] == s || entPlurals[i] == s {
			return EntType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEntType, s)
}

// MarshalText encodes the kind as its short code.
func (t EntType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntType, int(t))
	}
	return []byte(entCodes[t]), nil
}

// UnmarshalText decodes a short code.
func (t *EntType) UnmarshalText(b []byte) error {
	v, err := ParseEntType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// EntRef addresses one entity. It encodes as a two element JSON array.
type EntRef struct {
	Kind  EntType
	Index int
}

// MarshalJSON encodes the reference as ["pg", 3].
func (r EntRef) MarshalJSON() ([]byte, error) {
	code, err := r.Kind.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal([]any{string(code), r.Index})
}

// UnmarshalJSON decodes ["pg", 3].
func (r *EntRef) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: entity reference needs two elements", ErrInvalidPayload)
	}
	var code string
	if err := json.Unmarshal(raw[0], &code); err != nil {
		return err
	}
	if err := r.Kind.UnmarshalText([]byte(code)); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &r.Index)
}
