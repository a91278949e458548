package geom

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/geokernel/pkg/triangulate"
)

// ErrNoCoords is returned when a face is triangulated before a coordinate
// source is installed.
var ErrNoCoords = errors.New("no coordinate source")

// FaceTri replaces the triangles of face f with a fresh triangulation of
// its wires. On failure the face is left with no triangles.
func (g *Geom) FaceTri(f int) error {
	face := g.faces.Ptr(f)
	if face == nil {
		return fmt.Errorf("triangulate face %d: %w", f, ErrNoFace)
	}
	for _, t := range append([]int(nil), face.Tris...) {
		g.RemTri(t)
	}
	face = g.faces.Ptr(f)
	face.Tris = []int{}
	if g.coords == nil {
		return fmt.Errorf("triangulate face %d: %w", f, ErrNoCoords)
	}
	if len(face.Wires) == 0 {
		return fmt.Errorf("triangulate face %d: %w", f, triangulate.ErrDegenerate)
	}

	var corners []int
	loop := func(w int) [][3]float64 {
		vs := g.WireVerts(w)
		out := make([][3]float64, len(vs))
		for i, v := range vs {
			out[i] = g.coords.PosiCoords(g.VertPosi(v))
		}
		corners = append(corners, vs...)
		return out
	}
	outer := loop(face.Wires[0])
	var holes [][][3]float64
	for _, w := range face.Wires[1:] {
		holes = append(holes, loop(w))
	}

	tris, err := triangulate.Triangulate(outer, holes)
	if err != nil {
		return fmt.Errorf("triangulate face %d: %w", f, err)
	}
	ids := make([]int, 0, len(tris))
	for _, t := range tris {
		id := g.AddTri(corners[t[0]], corners[t[1]], corners[t[2]])
		g.triFace[id] = f
		ids = append(ids, id)
	}
	g.faces.Ptr(f).Tris = ids
	return nil
}

// ErrNoFace is returned when an operation names a face that is not live.
var ErrNoFace = errors.New("face not found")
