package domain

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh represents a triangular surface mesh for one segmentation object.
// Vertex coordinates are world coordinates in nanometers. LinkEdges are
// extra graph edges added by gap healing; they carry no surface and only
// affect connectivity.
type Mesh struct {
	SegmentID uint64     `json:"segment_id"`
	Vertices  []r3.Vec   `json:"vertices"`
	Faces     [][3]int32 `json:"faces"`
	LinkEdges [][2]int32 `json:"link_edges,omitempty"`
}

// NewMesh creates an empty mesh for the given segment ID
func NewMesh(segmentID uint64) *Mesh {
	return &Mesh{
		SegmentID: segmentID,
		Vertices:  make([]r3.Vec, 0),
		Faces:     make([][3]int32, 0),
	}
}

// VertexCount returns the number of vertices
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of triangular faces
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// FaceEdges returns the deduplicated undirected edge set derived from faces.
// Each edge is normalized to (lo, hi) vertex order.
func (m *Mesh) FaceEdges() [][2]int32 {
	seen := make(map[[2]int32]struct{}, len(m.Faces)*3)
	edges := make([][2]int32, 0, len(m.Faces)*3)

	for _, f := range m.Faces {
		for i := 0; i < 3; i++ {
			e := normalizeEdge(f[i], f[(i+1)%3])
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			edges = append(edges, e)
		}
	}
	return edges
}

// EdgeCount returns the total edge count: deduplicated face edges plus
// link edges. Healing only ever increases this value.
func (m *Mesh) EdgeCount() int {
	return len(m.FaceEdges()) + len(m.LinkEdges)
}

// AddLinkEdge appends a link edge between two vertices. Duplicate links
// and degenerate self-links are skipped. Returns true if the edge was added.
func (m *Mesh) AddLinkEdge(a, b int32) bool {
	if a == b {
		return false
	}
	e := normalizeEdge(a, b)
	for _, existing := range m.LinkEdges {
		if existing == e {
			return false
		}
	}
	m.LinkEdges = append(m.LinkEdges, e)
	return true
}

// Validate checks that all face and link edge indices are in range
func (m *Mesh) Validate() error {
	n := int32(len(m.Vertices))
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= n {
				return fmt.Errorf("face %d references vertex %d, mesh has %d vertices", i, v, n)
			}
		}
	}
	for i, e := range m.LinkEdges {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n {
			return fmt.Errorf("link edge %d references vertex out of range (%d vertices)", i, n)
		}
	}
	return nil
}

// ApplyMask returns a new mesh containing only the vertices marked true.
// Faces and link edges are re-indexed to the retained subset; any face or
// link edge touching a dropped vertex is removed. Vertices kept by the
// mask are retained even if no face survives - the mask is authoritative.
func (m *Mesh) ApplyMask(mask Mask) (*Mesh, error) {
	if len(mask) != len(m.Vertices) {
		return nil, fmt.Errorf("mask length %d does not match vertex count %d", len(mask), len(m.Vertices))
	}

	remap := make([]int32, len(m.Vertices))
	for i := range remap {
		remap[i] = -1
	}

	out := NewMesh(m.SegmentID)
	for i, keep := range mask {
		if !keep {
			continue
		}
		remap[i] = int32(len(out.Vertices))
		out.Vertices = append(out.Vertices, m.Vertices[i])
	}

	for _, f := range m.Faces {
		a, b, c := remap[f[0]], remap[f[1]], remap[f[2]]
		if a < 0 || b < 0 || c < 0 {
			continue
		}
		out.Faces = append(out.Faces, [3]int32{a, b, c})
	}

	for _, e := range m.LinkEdges {
		a, b := remap[e[0]], remap[e[1]]
		if a < 0 || b < 0 {
			continue
		}
		out.LinkEdges = append(out.LinkEdges, normalizeEdge(a, b))
	}

	return out, nil
}

// Bounds returns the axis-aligned bounding box of the vertex set.
// Both returns are zero vectors for an empty mesh.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	if len(m.Vertices) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.Z < min.Z {
			min.Z = v.Z
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
		if v.Z > max.Z {
			max.Z = v.Z
		}
	}
	return min, max
}

// NearestVertex returns the index of the vertex closest to p, or -1 for
// an empty mesh. Linear scan; meshes are bounded by what fits in memory.
func (m *Mesh) NearestVertex(p r3.Vec) int32 {
	best := int32(-1)
	bestDist := 0.0
	for i, v := range m.Vertices {
		d := r3.Norm2(r3.Sub(v, p))
		if best < 0 || d < bestDist {
			best = int32(i)
			bestDist = d
		}
	}
	return best
}

func normalizeEdge(a, b int32) [2]int32 {
	if a > b {
		a, b = b, a
	}
	return [2]int32{a, b}
}
