package filter

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"neuromesh/internal/domain"
)

// fragmented builds a mesh with a 4-vertex component (two faces) and a
// 3-vertex component (one face), far apart.
func fragmented() *domain.Mesh {
	return &domain.Mesh{
		SegmentID: 7,
		Vertices: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 1, Y: 1, Z: 0},
			{X: 500, Y: 0, Z: 0},
			{X: 501, Y: 0, Z: 0},
			{X: 500, Y: 1, Z: 0},
		},
		Faces: [][3]int32{{0, 1, 2}, {1, 3, 2}, {4, 5, 6}},
	}
}

func TestLargestComponent(t *testing.T) {
	m := fragmented()
	mask := LargestComponent(m)

	if mask.Count() != 4 {
		t.Fatalf("LargestComponent() kept %d vertices, want 4", mask.Count())
	}
	for i := 0; i < 4; i++ {
		if !mask[i] {
			t.Errorf("vertex %d should be in the largest component", i)
		}
	}
	for i := 4; i < 7; i++ {
		if mask[i] {
			t.Errorf("vertex %d should not be in the largest component", i)
		}
	}
}

func TestLargestComponentAfterHealing(t *testing.T) {
	m := fragmented()
	m.AddLinkEdge(3, 4)

	mask := LargestComponent(m)
	if mask.Count() != 7 {
		t.Errorf("after linking, largest component has %d vertices, want all 7", mask.Count())
	}
}

func TestLargestComponentEmpty(t *testing.T) {
	mask := LargestComponent(domain.NewMesh(1))
	if len(mask) != 0 {
		t.Errorf("mask length = %d, want 0", len(mask))
	}
}

func TestWithinRadius(t *testing.T) {
	m := fragmented()

	tests := []struct {
		name   string
		center r3.Vec
		radius float64
		want   int
	}{
		{"around origin cluster", r3.Vec{X: 0.5, Y: 0.5}, 2, 4},
		{"around far cluster", r3.Vec{X: 500, Y: 0.5}, 2, 3},
		{"everything", r3.Vec{}, 1e4, 7},
		{"nothing", r3.Vec{X: -100, Y: -100, Z: -100}, 1, 0},
	}

	for _, tt := range tests {
		mask := WithinRadius(m, tt.center, tt.radius)
		if got := mask.Count(); got != tt.want {
			t.Errorf("%s: WithinRadius() kept %d vertices, want %d", tt.name, got, tt.want)
		}
	}
}

func TestInBox(t *testing.T) {
	m := fragmented()
	mask := InBox(m, r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 2, Y: 2, Z: 2})
	if mask.Count() != 4 {
		t.Errorf("InBox() kept %d vertices, want 4", mask.Count())
	}
}

func TestChainedFiltersMonotonic(t *testing.T) {
	m := fragmented()
	m.AddLinkEdge(3, 4)

	component := LargestComponent(m)
	m2, err := m.ApplyMask(component)
	if err != nil {
		t.Fatalf("ApplyMask() error: %v", err)
	}
	if m2.VertexCount() > m.VertexCount() {
		t.Error("component mask grew the mesh")
	}

	radius := WithinRadius(m2, r3.Vec{X: 0.5, Y: 0.5}, 2)
	m3, err := m2.ApplyMask(radius)
	if err != nil {
		t.Fatalf("ApplyMask() error: %v", err)
	}
	if m3.VertexCount() > m2.VertexCount() {
		t.Error("radius mask grew the mesh")
	}
	if m3.VertexCount() != 4 {
		t.Errorf("final mesh has %d vertices, want 4", m3.VertexCount())
	}
}
