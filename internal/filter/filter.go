// Package filter implements mask generators over mesh vertices.
//
// Each filter inspects a mesh and returns a domain.Mask selecting a
// subset of its vertices. Masks compose by intersection, so filters can
// be chained to narrow a mesh topologically and spatially.
package filter

import (
	"gonum.org/v1/gonum/spatial/r3"

	"neuromesh/internal/domain"
)

// LargestComponent returns a mask selecting the vertices of the largest
// connected component. Connectivity follows face edges and link edges, so
// a healed mesh treats bridged fragments as one component.
func LargestComponent(m *domain.Mesh) domain.Mask {
	n := len(m.Vertices)
	mask := make(domain.Mask, n)
	if n == 0 {
		return mask
	}

	uf := newUnionFind(n)
	for _, f := range m.Faces {
		uf.union(int(f[0]), int(f[1]))
		uf.union(int(f[1]), int(f[2]))
	}
	for _, e := range m.LinkEdges {
		uf.union(int(e[0]), int(e[1]))
	}

	sizes := make(map[int]int, n)
	largest := uf.find(0)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		sizes[root]++
		if sizes[root] > sizes[largest] {
			largest = root
		}
	}

	for i := 0; i < n; i++ {
		mask[i] = uf.find(i) == largest
	}
	return mask
}

// WithinRadius returns a mask selecting vertices within radius of center
func WithinRadius(m *domain.Mesh, center r3.Vec, radius float64) domain.Mask {
	mask := make(domain.Mask, len(m.Vertices))
	r2 := radius * radius
	for i, v := range m.Vertices {
		mask[i] = r3.Norm2(r3.Sub(v, center)) <= r2
	}
	return mask
}

// InBox returns a mask selecting vertices inside the axis-aligned box
// spanned by min and max (inclusive)
func InBox(m *domain.Mesh, min, max r3.Vec) domain.Mask {
	mask := make(domain.Mask, len(m.Vertices))
	for i, v := range m.Vertices {
		mask[i] = v.X >= min.X && v.X <= max.X &&
			v.Y >= min.Y && v.Y <= max.Y &&
			v.Z >= min.Z && v.Z <= max.Z
	}
	return mask
}

// unionFind is a weighted quick-union structure with path compression
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}
