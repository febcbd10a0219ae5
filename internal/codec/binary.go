package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"

	"neuromesh/internal/domain"
)

// Binary mesh frame, little-endian:
//
//	magic   [4]byte "nmsh"
//	version uint32
//	segment uint64
//	nv, nf, nl uint32
//	vertices nv * 3 * float64
//	faces    nf * 3 * int32
//	links    nl * 2 * int32
//
// This is the cache-file and wire encoding for meshes. It is deliberately
// not a general mesh interchange format.

var meshMagic = [4]byte{'n', 'm', 's', 'h'}

const meshVersion uint32 = 1

// Guard against absurd counts from corrupt or hostile frames before
// allocating.
const maxMeshElements = 1 << 28

type meshHeader struct {
	Magic     [4]byte
	Version   uint32
	SegmentID uint64
	NumVerts  uint32
	NumFaces  uint32
	NumLinks  uint32
}

// EncodeMesh writes a mesh as a binary frame
func EncodeMesh(w io.Writer, m *domain.Mesh) error {
	hdr := meshHeader{
		Magic:     meshMagic,
		Version:   meshVersion,
		SegmentID: m.SegmentID,
		NumVerts:  uint32(len(m.Vertices)),
		NumFaces:  uint32(len(m.Faces)),
		NumLinks:  uint32(len(m.LinkEdges)),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("write mesh header: %w", err)
	}

	coords := make([]float64, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		coords = append(coords, v.X, v.Y, v.Z)
	}
	if err := binary.Write(w, binary.LittleEndian, coords); err != nil {
		return fmt.Errorf("write vertices: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, m.Faces); err != nil {
		return fmt.Errorf("write faces: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, m.LinkEdges); err != nil {
		return fmt.Errorf("write link edges: %w", err)
	}
	return nil
}

// DecodeMesh reads a binary mesh frame and validates index bounds
func DecodeMesh(r io.Reader) (*domain.Mesh, error) {
	var hdr meshHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read mesh header: %w", err)
	}
	if hdr.Magic != meshMagic {
		return nil, fmt.Errorf("bad magic %q, not a mesh frame", hdr.Magic)
	}
	if hdr.Version != meshVersion {
		return nil, fmt.Errorf("unsupported mesh frame version %d", hdr.Version)
	}
	if hdr.NumVerts > maxMeshElements || hdr.NumFaces > maxMeshElements || hdr.NumLinks > maxMeshElements {
		return nil, fmt.Errorf("mesh frame counts out of range (%d/%d/%d)", hdr.NumVerts, hdr.NumFaces, hdr.NumLinks)
	}

	m := domain.NewMesh(hdr.SegmentID)

	coords := make([]float64, int(hdr.NumVerts)*3)
	if err := binary.Read(r, binary.LittleEndian, coords); err != nil {
		return nil, fmt.Errorf("read vertices: %w", err)
	}
	m.Vertices = make([]r3.Vec, hdr.NumVerts)
	for i := range m.Vertices {
		m.Vertices[i] = r3.Vec{X: coords[i*3], Y: coords[i*3+1], Z: coords[i*3+2]}
	}

	m.Faces = make([][3]int32, hdr.NumFaces)
	if err := binary.Read(r, binary.LittleEndian, m.Faces); err != nil {
		return nil, fmt.Errorf("read faces: %w", err)
	}

	if hdr.NumLinks > 0 {
		m.LinkEdges = make([][2]int32, hdr.NumLinks)
		if err := binary.Read(r, binary.LittleEndian, m.LinkEdges); err != nil {
			return nil, fmt.Errorf("read link edges: %w", err)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("decoded mesh invalid: %w", err)
	}
	return m, nil
}
