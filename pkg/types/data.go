package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Ref is an entity index or timestamp inside a payload. A negative Ref
// marks a deleted slot and encodes as JSON null.
type Ref int

// NullRef is the deleted marker.
const NullRef Ref = -1

// IsNull reports whether r marks a deleted slot.
func (r Ref) IsNull() bool { return r < 0 }

func (r Ref) MarshalJSON() ([]byte, error) {
	if r < 0 {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(r))), nil
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*r = NullRef
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("%w: bad index %s", ErrInvalidPayload, b)
	}
	*r = Ref(n)
	return nil
}

// CollData is the down-link value of one collection. Parent is -1 for a
// root collection. It encodes as [parent, [points], [plines], [pgons]].
type CollData struct {
	Parent int
	Points []int
	Plines []int
	Pgons  []int
}

func (c CollData) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Parent, nonNil(c.Points), nonNil(c.Plines), nonNil(c.Pgons)})
}

func (c *CollData) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return fmt.Errorf("%w: collection needs four elements", ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw[0], &c.Parent); err != nil {
		return err
	}
	for i, dst := range []*[]int{&c.Points, &c.Plines, &c.Pgons} {
		if err := json.Unmarshal(raw[i+1], dst); err != nil {
			return err
		}
	}
	return nil
}

func nonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}

// GeomData is the geometry half of a model payload. Each kind contributes
// an index array and a parallel value array; a null value marks a deleted
// slot. Top-level kinds also carry a parallel timestamp array.
type GeomData struct {
	PosisI  []int `json:"posis_i"`
	PosisTs []Ref `json:"posis_ts"`

	Verts  []Ref `json:"verts"`
	VertsI []int `json:"verts_i"`

	Tris  [][]int `json:"tris"`
	TrisI []int   `json:"tris_i"`

	Edges  [][]int `json:"edges"`
	EdgesI []int   `json:"edges_i"`

	Wires  [][]int `json:"wires"`
	WiresI []int   `json:"wires_i"`

	Faces    [][]int `json:"faces"`
	FaceTris [][]int `json:"facetris"`
	FacesI   []int   `json:"faces_i"`

	Points   []Ref `json:"points"`
	PointsI  []int `json:"points_i"`
	PointsTs []Ref `json:"points_ts"`

	Plines   []Ref `json:"plines"`
	PlinesI  []int `json:"plines_i"`
	PlinesTs []Ref `json:"plines_ts"`

	Pgons   []Ref `json:"pgons"`
	PgonsI  []int `json:"pgons_i"`
	PgonsTs []Ref `json:"pgons_ts"`

	Colls   []*CollData `json:"colls"`
	CollsI  []int       `json:"colls_i"`
	CollsTs []Ref       `json:"colls_ts"`

	Selected []EntRef `json:"selected"`
}

// Validate checks that every index array is as long as its value arrays.
func (d *GeomData) Validate() error {
	checks := []struct {
		name string
		n, m int
	}{
		{"posis_ts", len(d.PosisI), len(d.PosisTs)},
		{"verts", len(d.VertsI), len(d.Verts)},
		{"tris", len(d.TrisI), len(d.Tris)},
		{"edges", len(d.EdgesI), len(d.Edges)},
		{"wires", len(d.WiresI), len(d.Wires)},
		{"faces", len(d.FacesI), len(d.Faces)},
		{"facetris", len(d.FacesI), len(d.FaceTris)},
		{"points", len(d.PointsI), len(d.Points)},
		{"points_ts", len(d.PointsI), len(d.PointsTs)},
		{"plines", len(d.PlinesI), len(d.Plines)},
		{"plines_ts", len(d.PlinesI), len(d.PlinesTs)},
		{"pgons", len(d.PgonsI), len(d.Pgons)},
		{"pgons_ts", len(d.PgonsI), len(d.PgonsTs)},
		{"colls", len(d.CollsI), len(d.Colls)},
		{"colls_ts", len(d.CollsI), len(d.CollsTs)},
	}
	for _, c := range checks {
		if c.n != c.m {
			return fmt.Errorf("%w: %s has %d values for %d indices", ErrInvalidPayload, c.name, c.m, c.n)
		}
	}
	for i, tri := range d.Tris {
		if tri != nil && len(tri) != 3 {
			return fmt.Errorf("%w: triangle %d has %d vertices", ErrInvalidPayload, d.TrisI[i], len(tri))
		}
	}
	for i, edge := range d.Edges {
		if edge != nil && len(edge) != 2 {
			return fmt.Errorf("%w: edge %d has %d vertices", ErrInvalidPayload, d.EdgesI[i], len(edge))
		}
	}
	return nil
}

// AttribEntry assigns one value to a run of entity indices. It encodes as
// [[indices...], value].
type AttribEntry struct {
	Indices []int
	Value   any
}

func (e AttribEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{nonNil(e.Indices), e.Value})
}

func (e *AttribEntry) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: attribute entry needs two elements", ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw[0], &e.Indices); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.Value)
}

// AttribData is one attribute column in a payload.
type AttribData struct {
	Name     string        `json:"name"`
	DataType DataType      `json:"data_type"`
	Data     []AttribEntry `json:"data"`
}

// ModelAttrib is one model-level attribute. It encodes as [name, value].
type ModelAttrib struct {
	Name  string
	Value any
}

func (m ModelAttrib) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{m.Name, m.Value})
}

func (m *ModelAttrib) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: model attribute needs two elements", ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw[0], &m.Name); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &m.Value)
}

// AttribsData is the attribute half of a model payload.
type AttribsData struct {
	Posis  []AttribData  `json:"positions"`
	Verts  []AttribData  `json:"vertices"`
	Edges  []AttribData  `json:"edges"`
	Wires  []AttribData  `json:"wires"`
	Faces  []AttribData  `json:"faces"`
	Points []AttribData  `json:"points"`
	Plines []AttribData  `json:"polylines"`
	Pgons  []AttribData  `json:"polygons"`
	Colls  []AttribData  `json:"collections"`
	Model  []ModelAttrib `json:"model"`
}

// Kind returns a pointer to the column list for an entity kind, or nil
// for kinds without attributes.
func (d *AttribsData) Kind(k EntType) *[]AttribData {
	switch k {
	case Posi:
		return &d.Posis
	case Vert:
		return &d.Verts
	case Edge:
		return &d.Edges
	case Wire:
		return &d.Wires
	case Face:
		return &d.Faces
	case Point:
		return &d.Points
	case Pline:
		return &d.Plines
	case Pgon:
		return &d.Pgons
	case Coll:
		return &d.Colls
	}
	return nil
}

// ModelData is a complete model payload: geometry plus attributes.
type ModelData struct {
	Geometry   GeomData    `json:"geometry"`
	Attributes AttribsData `json:"attributes"`
}
