package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"
)

// twoTriangles builds a mesh with two disjoint triangles:
// vertices 0-2 near the origin, vertices 3-5 offset in x.
func twoTriangles() *Mesh {
	return &Mesh{
		SegmentID: 42,
		Vertices: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 100, Y: 0, Z: 0},
			{X: 101, Y: 0, Z: 0},
			{X: 100, Y: 1, Z: 0},
		},
		Faces: [][3]int32{{0, 1, 2}, {3, 4, 5}},
	}
}

func TestFaceEdgesDeduplicated(t *testing.T) {
	// Two faces sharing edge (0,1).
	m := &Mesh{
		Vertices: []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Faces:    [][3]int32{{0, 1, 2}, {1, 0, 3}},
	}

	edges := m.FaceEdges()
	if len(edges) != 5 {
		t.Errorf("FaceEdges() returned %d edges, want 5", len(edges))
	}

	seen := make(map[[2]int32]int)
	for _, e := range edges {
		if e[0] > e[1] {
			t.Errorf("edge %v not normalized to (lo, hi)", e)
		}
		seen[e]++
	}
	if seen[[2]int32{0, 1}] != 1 {
		t.Errorf("shared edge (0,1) appears %d times, want 1", seen[[2]int32{0, 1}])
	}
}

func TestAddLinkEdge(t *testing.T) {
	m := twoTriangles()
	before := m.EdgeCount()

	if !m.AddLinkEdge(2, 3) {
		t.Fatal("AddLinkEdge(2, 3) should add a new edge")
	}
	if m.AddLinkEdge(3, 2) {
		t.Error("AddLinkEdge(3, 2) should skip the duplicate (normalized)")
	}
	if m.AddLinkEdge(4, 4) {
		t.Error("AddLinkEdge(4, 4) should skip a self-link")
	}

	if got := m.EdgeCount(); got != before+1 {
		t.Errorf("EdgeCount() = %d, want %d (original plus one link)", got, before+1)
	}
	if m.FaceCount() != 2 {
		t.Error("adding link edges must not change faces")
	}
}

func TestApplyMaskReindexes(t *testing.T) {
	m := twoTriangles()
	m.AddLinkEdge(2, 3)

	// Keep only the second triangle.
	mask := Mask{false, false, false, true, true, true}
	out, err := m.ApplyMask(mask)
	if err != nil {
		t.Fatalf("ApplyMask() error: %v", err)
	}

	if out.VertexCount() != 3 {
		t.Fatalf("VertexCount() = %d, want 3", out.VertexCount())
	}
	wantFaces := [][3]int32{{0, 1, 2}}
	if diff := cmp.Diff(wantFaces, out.Faces); diff != "" {
		t.Errorf("faces mismatch (-want +got):\n%s", diff)
	}
	// The link edge crossed the mask boundary and must be dropped.
	if len(out.LinkEdges) != 0 {
		t.Errorf("LinkEdges = %v, want none", out.LinkEdges)
	}
	if out.SegmentID != m.SegmentID {
		t.Errorf("SegmentID = %d, want %d", out.SegmentID, m.SegmentID)
	}
}

func TestApplyMaskKeepsFacelessVertices(t *testing.T) {
	m := twoTriangles()

	// Keep one vertex of the first triangle plus the whole second one.
	mask := Mask{true, false, false, true, true, true}
	out, err := m.ApplyMask(mask)
	if err != nil {
		t.Fatalf("ApplyMask() error: %v", err)
	}

	// Vertex 0 has no surviving face but the mask kept it.
	if out.VertexCount() != 4 {
		t.Errorf("VertexCount() = %d, want 4", out.VertexCount())
	}
	if out.FaceCount() != 1 {
		t.Errorf("FaceCount() = %d, want 1", out.FaceCount())
	}
}

func TestApplyMaskLengthMismatch(t *testing.T) {
	m := twoTriangles()
	if _, err := m.ApplyMask(Mask{true, false}); err == nil {
		t.Error("ApplyMask() with short mask should fail")
	}
}

func TestSequentialMasksMonotonic(t *testing.T) {
	m := twoTriangles()
	counts := []int{m.VertexCount()}

	mask := Mask{true, true, true, true, true, false}
	m2, err := m.ApplyMask(mask)
	if err != nil {
		t.Fatalf("first ApplyMask() error: %v", err)
	}
	counts = append(counts, m2.VertexCount())

	mask2 := Mask{true, true, true, false, false}
	m3, err := m2.ApplyMask(mask2)
	if err != nil {
		t.Fatalf("second ApplyMask() error: %v", err)
	}
	counts = append(counts, m3.VertexCount())

	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[i-1] {
			t.Errorf("vertex count grew from %d to %d after masking", counts[i-1], counts[i])
		}
	}
}

func TestMaskIntersect(t *testing.T) {
	a := Mask{true, true, false, true}
	b := Mask{true, false, false, true}

	got, err := a.Intersect(b)
	if err != nil {
		t.Fatalf("Intersect() error: %v", err)
	}
	want := Mask{true, false, false, true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Intersect() mismatch (-want +got):\n%s", diff)
	}
	if got.Count() != 2 {
		t.Errorf("Count() = %d, want 2", got.Count())
	}

	if _, err := a.Intersect(Mask{true}); err == nil {
		t.Error("Intersect() with mismatched lengths should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mesh    *Mesh
		wantErr bool
	}{
		{"valid", twoTriangles(), false},
		{"face out of range", &Mesh{
			Vertices: []r3.Vec{{}, {X: 1}},
			Faces:    [][3]int32{{0, 1, 2}},
		}, true},
		{"link edge out of range", &Mesh{
			Vertices:  []r3.Vec{{}, {X: 1}},
			LinkEdges: [][2]int32{{0, 5}},
		}, true},
	}

	for _, tt := range tests {
		err := tt.mesh.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestNearestVertex(t *testing.T) {
	m := twoTriangles()

	tests := []struct {
		point r3.Vec
		want  int32
	}{
		{r3.Vec{X: 0.1, Y: 0.1}, 0},
		{r3.Vec{X: 99, Y: 0}, 3},
		{r3.Vec{X: 101.2, Y: 0.1}, 4},
	}
	for _, tt := range tests {
		if got := m.NearestVertex(tt.point); got != tt.want {
			t.Errorf("NearestVertex(%v) = %d, want %d", tt.point, got, tt.want)
		}
	}

	empty := NewMesh(1)
	if got := empty.NearestVertex(r3.Vec{}); got != -1 {
		t.Errorf("NearestVertex() on empty mesh = %d, want -1", got)
	}
}

func TestBounds(t *testing.T) {
	m := twoTriangles()
	min, max := m.Bounds()

	if min.X != 0 || min.Y != 0 || min.Z != 0 {
		t.Errorf("Bounds() min = %v, want origin", min)
	}
	if max.X != 101 || max.Y != 1 || max.Z != 0 {
		t.Errorf("Bounds() max = %v, want (101, 1, 0)", max)
	}
}
