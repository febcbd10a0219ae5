package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"neuromesh/internal/domain"
)

func sampleMesh() *domain.Mesh {
	m := domain.NewMesh(864691135)
	m.Vertices = []r3.Vec{
		{X: 1.5, Y: 2.5, Z: 3.5},
		{X: 4, Y: 5, Z: 6},
		{X: 7, Y: 8, Z: 9},
		{X: -1, Y: -2, Z: -3},
	}
	m.Faces = [][3]int32{{0, 1, 2}, {1, 2, 3}}
	m.AddLinkEdge(0, 3)
	return m
}

func TestMeshFrameRoundTrip(t *testing.T) {
	m := sampleMesh()

	var buf bytes.Buffer
	if err := EncodeMesh(&buf, m); err != nil {
		t.Fatalf("EncodeMesh() error: %v", err)
	}

	got, err := DecodeMesh(&buf)
	if err != nil {
		t.Fatalf("DecodeMesh() error: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("mesh round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMeshRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"wrong magic", []byte("obj wavefront data not a mesh frame")},
		{"truncated header", []byte("nmsh\x01")},
	}

	for _, tt := range tests {
		if _, err := DecodeMesh(bytes.NewReader(tt.data)); err == nil {
			t.Errorf("%s: DecodeMesh() should fail", tt.name)
		}
	}
}

func TestDecodeMeshRejectsBadIndices(t *testing.T) {
	m := sampleMesh()
	m.Faces = append(m.Faces, [3]int32{0, 1, 99})

	var buf bytes.Buffer
	if err := EncodeMesh(&buf, m); err != nil {
		t.Fatalf("EncodeMesh() error: %v", err)
	}
	if _, err := DecodeMesh(&buf); err == nil {
		t.Error("DecodeMesh() should reject out-of-range face index")
	}
}

func TestSceneExportJSON(t *testing.T) {
	scene := domain.NewScene("tutorial")
	scene.AddActor(*domain.NewActor("864691135", domain.Color{R: 1}, 0.5))

	var buf bytes.Buffer
	if err := NewJSONCodec().Export(scene, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"mesh_id": "864691135"`) {
		t.Errorf("JSON export missing mesh reference:\n%s", out)
	}
	if !strings.Contains(out, `"opacity": 0.5`) {
		t.Errorf("JSON export missing opacity:\n%s", out)
	}
}

func TestSceneExportYAML(t *testing.T) {
	scene := domain.NewScene("tutorial")
	scene.AddActor(*domain.NewActor("123", domain.Color{G: 1}, 1.0))

	var buf bytes.Buffer
	if err := NewYAMLCodec().Export(scene, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var decoded domain.Scene
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("exported YAML does not parse: %v", err)
	}
	if decoded.Name != "tutorial" || len(decoded.Actors) != 1 {
		t.Errorf("decoded scene = %+v, want 1 actor named tutorial", decoded)
	}
}

func TestExporterFor(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", "json"},
		{"yaml", "yaml"},
		{"yml", "yaml"},
		{"stl", ""},
	}

	for _, tt := range tests {
		exp := ExporterFor(tt.format)
		if tt.want == "" {
			if exp != nil {
				t.Errorf("ExporterFor(%q) should be nil", tt.format)
			}
			continue
		}
		if exp == nil || exp.Format() != tt.want {
			t.Errorf("ExporterFor(%q) = %v, want format %q", tt.format, exp, tt.want)
		}
	}
}
