// Package repair implements gap healing for neuron meshes.
//
// Meshes built from chunked segmentations have discontinuities wherever a
// proofreader merged objects that were meshed independently. Healing
// replays the merge log: for each recorded merge, the vertex nearest to
// each merge coordinate is located and a link edge is added between the
// two. Healing only ever adds edges; faces and existing edges are
// untouched.
package repair

import (
	"gonum.org/v1/gonum/spatial/r3"

	"neuromesh/internal/domain"
	"neuromesh/internal/segmentgraph"
)

// Heal adds one link edge per merge event, bridging the mesh vertices
// nearest to the recorded merge coordinates. Duplicate links collapse to
// a single edge, so healing is idempotent. Returns the number of edges
// actually added.
func Heal(m *domain.Mesh, merges []segmentgraph.MergeEdge) int {
	if len(m.Vertices) == 0 {
		return 0
	}

	added := 0
	for _, merge := range merges {
		a := m.NearestVertex(vec(merge.A))
		b := m.NearestVertex(vec(merge.B))
		if m.AddLinkEdge(a, b) {
			added++
		}
	}
	return added
}

func vec(p [3]float64) r3.Vec {
	return r3.Vec{X: p[0], Y: p[1], Z: p[2]}
}
