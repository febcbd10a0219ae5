package domain

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// unitCube builds a watertight unit cube with outward-facing triangles
func unitCube() *Mesh {
	m := NewMesh(1)
	m.Vertices = []r3.Vec{
		{X: 0, Y: 0, Z: 0}, // 0
		{X: 1, Y: 0, Z: 0}, // 1
		{X: 1, Y: 1, Z: 0}, // 2
		{X: 0, Y: 1, Z: 0}, // 3
		{X: 0, Y: 0, Z: 1}, // 4
		{X: 1, Y: 0, Z: 1}, // 5
		{X: 1, Y: 1, Z: 1}, // 6
		{X: 0, Y: 1, Z: 1}, // 7
	}
	m.Faces = [][3]int32{
		{0, 2, 1}, {0, 3, 2}, // bottom (z=0, normal -z)
		{4, 5, 6}, {4, 6, 7}, // top (z=1, normal +z)
		{0, 1, 5}, {0, 5, 4}, // front (y=0, normal -y)
		{2, 3, 7}, {2, 7, 6}, // back (y=1, normal +y)
		{1, 2, 6}, {1, 6, 5}, // right (x=1, normal +x)
		{0, 4, 7}, {0, 7, 3}, // left (x=0, normal -x)
	}
	return m
}

func TestCubeArea(t *testing.T) {
	m := unitCube()
	if got := m.Area(); math.Abs(got-6.0) > 1e-9 {
		t.Errorf("Area() = %f, want 6.0", got)
	}
}

func TestCubeVolume(t *testing.T) {
	m := unitCube()
	if got := m.Volume(); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Volume() = %f, want 1.0", got)
	}
}

func TestCubeCenterOfMass(t *testing.T) {
	m := unitCube()
	com := m.CenterOfMass()
	for _, c := range []float64{com.X, com.Y, com.Z} {
		if math.Abs(c-0.5) > 1e-9 {
			t.Errorf("CenterOfMass() = %v, want (0.5, 0.5, 0.5)", com)
			break
		}
	}
}

func TestVolumeTranslationInvariant(t *testing.T) {
	m := unitCube()
	shifted := unitCube()
	offset := r3.Vec{X: 1000, Y: -500, Z: 42}
	for i := range shifted.Vertices {
		shifted.Vertices[i] = r3.Add(shifted.Vertices[i], offset)
	}

	if math.Abs(m.Volume()-shifted.Volume()) > 1e-6 {
		t.Errorf("Volume changed under translation: %f vs %f", m.Volume(), shifted.Volume())
	}

	com := shifted.CenterOfMass()
	want := r3.Add(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, offset)
	if math.Abs(com.X-want.X) > 1e-6 || math.Abs(com.Y-want.Y) > 1e-6 || math.Abs(com.Z-want.Z) > 1e-6 {
		t.Errorf("CenterOfMass() = %v, want %v", com, want)
	}
}

func TestEmptyMeshGeometry(t *testing.T) {
	m := NewMesh(1)
	if m.Area() != 0 {
		t.Error("empty mesh Area() should be 0")
	}
	if m.Volume() != 0 {
		t.Error("empty mesh Volume() should be 0")
	}
	if com := m.CenterOfMass(); com != (r3.Vec{}) {
		t.Errorf("empty mesh CenterOfMass() = %v, want zero vector", com)
	}
}

func TestStats(t *testing.T) {
	m := unitCube()
	m.AddLinkEdge(0, 6)
	stats := m.Stats()

	if stats.VertexCount != 8 {
		t.Errorf("VertexCount = %d, want 8", stats.VertexCount)
	}
	if stats.FaceCount != 12 {
		t.Errorf("FaceCount = %d, want 12", stats.FaceCount)
	}
	if stats.LinkEdgeCount != 1 {
		t.Errorf("LinkEdgeCount = %d, want 1", stats.LinkEdgeCount)
	}
	// Cube has 18 face edges (12 outer + 6 face diagonals) plus the link.
	if stats.EdgeCount != 19 {
		t.Errorf("EdgeCount = %d, want 19", stats.EdgeCount)
	}
	if math.Abs(stats.Volume-1.0) > 1e-9 {
		t.Errorf("Volume = %f, want 1.0", stats.Volume)
	}
}
