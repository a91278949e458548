// Package triangulate splits planar 3D polygons with holes into triangles
// using ear clipping.
package triangulate

import (
	"errors"
	"math"
)

// ErrDegenerate is returned for loops that enclose no area.
var ErrDegenerate = errors.New("degenerate polygon")

// Triangulate covers the polygon bounded by outer, minus holes, with
// triangles. Corners index into the concatenation of outer followed by
// each hole in order. Triangles wind the same way as outer.
func Triangulate(outer [][3]float64, holes [][][3]float64) ([][3]int, error) {
	if len(outer) < 3 {
		return nil, ErrDegenerate
	}
	n := Normal(outer)
	if n == ([3]float64{}) {
		return nil, ErrDegenerate
	}
	ax, ay := projectionAxes(n)

	pts := make([][2]float64, 0, len(outer))
	for _, p := range outer {
		pts = append(pts, [2]float64{p[ax], p[ay]})
	}
	var holeStarts []int
	for _, h := range holes {
		holeStarts = append(holeStarts, len(pts))
		for _, p := range h {
			pts = append(pts, [2]float64{p[ax], p[ay]})
		}
	}

	flat := earcut(pts, holeStarts)
	if len(flat) == 0 {
		return nil, ErrDegenerate
	}
	// earcut emits counter-clockwise triangles; follow the outer winding.
	flip := signedArea(pts, 0, len(outer)) < 0
	tris := make([][3]int, 0, len(flat)/3)
	for i := 0; i+2 < len(flat); i += 3 {
		if flip {
			tris = append(tris, [3]int{flat[i], flat[i+2], flat[i+1]})
		} else {
			tris = append(tris, [3]int{flat[i], flat[i+1], flat[i+2]})
		}
	}
	return tris, nil
}

// Normal returns the unnormalised Newell normal of a closed loop.
func Normal(loop [][3]float64) [3]float64 {
	var n [3]float64
	for i := range loop {
		c := loop[i]
		nx := loop[(i+1)%len(loop)]
		n[0] += (c[1] - nx[1]) * (c[2] + nx[2])
		n[1] += (c[2] - nx[2]) * (c[0] + nx[0])
		n[2] += (c[0] - nx[0]) * (c[1] + nx[1])
	}
	return n
}

// projectionAxes picks the two coordinates kept when the dominant axis
// of n is dropped.
func projectionAxes(n [3]float64) (int, int) {
	x, y, z := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
	switch {
	case z >= x && z >= y:
		return 0, 1
	case x >= y:
		return 1, 2
	default:
		return 2, 0
	}
}

// Area returns the area of a 3D triangle.
func Area(a, b, c [3]float64) float64 {
	u := [3]float64{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	v := [3]float64{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	cx := u[1]*v[2] - u[2]*v[1]
	cy := u[2]*v[0] - u[0]*v[2]
	cz := u[0]*v[1] - u[1]*v[0]
	return math.Sqrt(cx*cx+cy*cy+cz*cz) / 2
}
