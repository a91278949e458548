package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

func TestCheckReportsBrokenLinks(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(g *Geom)
		want    string
	}{
		{
			name:    "posi loses its vertex",
			corrupt: func(g *Geom) { *g.posis.Ptr(0) = []int{} },
			want:    "Vert 0: Posi->Vert index is missing.",
		},
		{
			name: "edge slot swapped",
			corrupt: func(g *Geom) {
				e := g.WireEdges(g.PlineWire(0))[0]
				v := g.EdgeVerts(e)[0]
				g.vertEdges[v] = VertEdges{In: e, Out: -1}
			},
			want: "Open wire 0: First vertex has incoming edge.",
		},
		{
			name: "wire edges out of order",
			corrupt: func(g *Geom) {
				es := g.wires.Ptr(0)
				(*es)[0], (*es)[1] = (*es)[1], (*es)[0]
			},
			want: "Wire 0: Edges are not connected.",
		},
		{
			name:    "face without polygon",
			corrupt: func(g *Geom) { delete(g.facePgon, 0) },
			want:    "Face 0: Face->Pgon undefined.",
		},
		{
			name: "tri detached from face",
			corrupt: func(g *Geom) {
				delete(g.triFace, g.FaceTris(0)[0])
			},
			want: "Face 0: Tri->Face index is incorrect.",
		},
		{
			name:    "collection forgets a point",
			corrupt: func(g *Geom) { g.colls.Ptr(0).Points = nil },
			want:    "Point 0: Coll->Point missing.",
		},
		{
			name:    "missing timestamp",
			corrupt: func(g *Geom) { g.DelEntTs(types.Pline, 0) },
			want:    "Pline 0: Timestamp is missing.",
		},
		{
			name: "parent cycle",
			corrupt: func(g *Geom) {
				child := g.AddColl(0, nil, nil, nil)
				g.colls.Ptr(0).Parent = child
			},
			want: "Coll 0: Parent collections form a cycle.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := sample(t)
			tt.corrupt(f.g)
			assert.Contains(t, f.g.Check(), tt.want)
		})
	}
}
