package model

import (
	"slices"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// MaterialGroup is a run of triangle indices drawn with one material.
// Start and Count are offsets into RenderBuffers.Tris.
type MaterialGroup struct {
	Material string `json:"material"`
	Start    int    `json:"start"`
	Count    int    `json:"count"`
}

// RenderBuffers is a flattened snapshot of the model for a renderer.
// Index buffers refer to vertex buffer slots, not vertex indices.
type RenderBuffers struct {
	XYZ    []float32       `json:"xyz"`
	Colors []float32       `json:"colors,omitempty"`
	Tris   []uint32        `json:"tris"`
	Edges  []uint32        `json:"edges"`
	Points []uint32        `json:"points"`
	Groups []MaterialGroup `json:"groups"`

	// Verts maps each vertex buffer slot back to its vertex.
	Verts []int `json:"verts"`
}

// RenderBuffers flattens the live vertices, triangles, edges and points.
// Triangles are ordered by material so that each material is one group;
// polygons without a material form the group named "".
func (m *Model) RenderBuffers() RenderBuffers {
	var rb RenderBuffers
	slot := make(map[int]uint32)
	withRGB := m.attribs.HasAttrib(types.Vert, "rgb")
	for _, v := range m.geom.Ents(types.Vert) {
		slot[v] = uint32(len(rb.Verts))
		rb.Verts = append(rb.Verts, v)
		xyz := m.attribs.PosiCoords(m.geom.VertPosi(v))
		rb.XYZ = append(rb.XYZ, float32(xyz[0]), float32(xyz[1]), float32(xyz[2]))
		if withRGB {
			rb.Colors = append(rb.Colors, vertColor(m, v)...)
		}
	}

	byMat := make(map[string][]int)
	var mats []string
	for _, pg := range m.geom.Ents(types.Pgon) {
		name := ""
		if v, ok := m.attribs.Val(types.Pgon, pg, MaterialAttrib); ok {
			name, _ = v.(string)
		}
		if _, seen := byMat[name]; !seen {
			mats = append(mats, name)
		}
		byMat[name] = append(byMat[name], pg)
	}
	slices.Sort(mats)
	for _, name := range mats {
		g := MaterialGroup{Material: name, Start: len(rb.Tris)}
		for _, pg := range byMat[name] {
			for _, t := range m.geom.FaceTris(m.geom.PgonFace(pg)) {
				for _, v := range m.geom.TriVerts(t) {
					rb.Tris = append(rb.Tris, slot[v])
				}
			}
		}
		g.Count = len(rb.Tris) - g.Start
		rb.Groups = append(rb.Groups, g)
	}

	for _, e := range m.geom.Ents(types.Edge) {
		ev := m.geom.EdgeVerts(e)
		rb.Edges = append(rb.Edges, slot[ev[0]], slot[ev[1]])
	}
	for _, pt := range m.geom.Ents(types.Point) {
		rb.Points = append(rb.Points, slot[m.geom.PointVert(pt)])
	}
	return rb
}

// vertColor returns the rgb of vertex v, white when unset.
func vertColor(m *Model, v int) []float32 {
	out := []float32{1, 1, 1}
	val, _ := m.attribs.Val(types.Vert, v, "rgb")
	list, _ := val.([]any)
	for i := 0; i < 3 && i < len(list); i++ {
		if f, ok := list[i].(float64); ok {
			out[i] = float32(f)
		}
	}
	return out
}
