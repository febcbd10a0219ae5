package domain

import (
	"strconv"
	"time"
)

// MeshKind distinguishes source meshes from derived artifacts
type MeshKind string

const (
	MeshKindSource  MeshKind = "source"  // Downloaded from the mesh source
	MeshKindDerived MeshKind = "derived" // Produced by masking a cached mesh
)

// MeshRecord is the cache-manifest entry for one mesh file on disk
type MeshRecord struct {
	ID            string    `json:"id"`
	SegmentID     uint64    `json:"segment_id"`
	Kind          MeshKind  `json:"kind"`
	DerivedFrom   string    `json:"derived_from,omitempty"`
	Path          string    `json:"path"`
	Checksum      string    `json:"checksum"`
	VertexCount   int       `json:"vertex_count"`
	FaceCount     int       `json:"face_count"`
	LinkEdgeCount int       `json:"link_edge_count"`
	FetchedAt     time.Time `json:"fetched_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SourceMeshID returns the manifest ID used for a downloaded segment
func SourceMeshID(segmentID uint64) string {
	return strconv.FormatUint(segmentID, 10)
}

// DiscrepancyKind classifies an integrity finding
type DiscrepancyKind string

const (
	DiscrepancyChecksumMismatch DiscrepancyKind = "checksum_mismatch" // File content differs from manifest
	DiscrepancyMissingFile      DiscrepancyKind = "missing_file"      // Manifest row with no file on disk
)

// Discrepancy records a conflict between the cache manifest and the cache
// directory, found during integrity verification
type Discrepancy struct {
	ID         string          `json:"id"`
	MeshID     string          `json:"mesh_id"`
	Kind       DiscrepancyKind `json:"kind"`
	Expected   string          `json:"expected,omitempty"`
	Actual     string          `json:"actual,omitempty"`
	DetectedAt time.Time       `json:"detected_at"`
	Resolved   bool            `json:"resolved"`
}

// MeshStats is the derived-geometry summary for a mesh.
//
// Volume and CenterOfMass assume a watertight mesh; they are reported
// without validation and are meaningless for meshes with boundary gaps.
type MeshStats struct {
	VertexCount   int        `json:"vertex_count"`
	FaceCount     int        `json:"face_count"`
	EdgeCount     int        `json:"edge_count"`
	LinkEdgeCount int        `json:"link_edge_count"`
	Area          float64    `json:"area"`
	Volume        float64    `json:"volume"`
	CenterOfMass  [3]float64 `json:"center_of_mass"`
}

// Stats computes the geometry summary for a mesh
func (m *Mesh) Stats() MeshStats {
	com := m.CenterOfMass()
	return MeshStats{
		VertexCount:   m.VertexCount(),
		FaceCount:     m.FaceCount(),
		EdgeCount:     m.EdgeCount(),
		LinkEdgeCount: len(m.LinkEdges),
		Area:          m.Area(),
		Volume:        m.Volume(),
		CenterOfMass:  [3]float64{com.X, com.Y, com.Z},
	}
}
