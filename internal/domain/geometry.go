package domain

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Area returns the total surface area of the mesh in square nanometers
func (m *Mesh) Area() float64 {
	total := 0.0
	for _, f := range m.Faces {
		v0 := m.Vertices[f[0]]
		e1 := r3.Sub(m.Vertices[f[1]], v0)
		e2 := r3.Sub(m.Vertices[f[2]], v0)
		total += 0.5 * r3.Norm(r3.Cross(e1, e2))
	}
	return total
}

// Volume returns the enclosed volume in cubic nanometers, computed as the
// sum of signed tetrahedron volumes against the origin.
//
// The mesh is assumed watertight with consistently oriented faces. This
// is not validated: a mesh with boundary gaps or flipped faces yields a
// meaningless value.
func (m *Mesh) Volume() float64 {
	total := 0.0
	for _, f := range m.Faces {
		total += signedTetraVolume(m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]])
	}
	if total < 0 {
		total = -total
	}
	return total
}

// CenterOfMass returns the centroid of the enclosed solid, weighting each
// signed tetrahedron's centroid by its signed volume.
//
// Like Volume, this assumes a watertight mesh and does not validate it.
// For a degenerate mesh with zero net volume the zero vector is returned.
func (m *Mesh) CenterOfMass() r3.Vec {
	var weighted r3.Vec
	total := 0.0
	for _, f := range m.Faces {
		v0, v1, v2 := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		vol := signedTetraVolume(v0, v1, v2)
		// Tetrahedron centroid with the fourth vertex at the origin.
		centroid := r3.Scale(0.25, r3.Add(r3.Add(v0, v1), v2))
		weighted = r3.Add(weighted, r3.Scale(vol, centroid))
		total += vol
	}
	if total == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/total, weighted)
}

func signedTetraVolume(v0, v1, v2 r3.Vec) float64 {
	return r3.Dot(v0, r3.Cross(v1, v2)) / 6.0
}
