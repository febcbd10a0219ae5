package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"neuromesh/internal/domain"
	"neuromesh/internal/meshsource"
)

type staticLister struct {
	records []domain.MeshRecord
}

func (l *staticLister) ListMeshes(ctx context.Context, kind string) ([]domain.MeshRecord, error) {
	return l.records, nil
}

func storeTestMesh(t *testing.T, client *meshsource.Client, name string, segmentID uint64) (string, string) {
	t.Helper()
	m := domain.NewMesh(segmentID)
	m.Vertices = []r3.Vec{{X: 0}, {X: 1}, {Y: 1}}
	m.Faces = [][3]int32{{0, 1, 2}}
	path, checksum, err := client.Store(name, m)
	if err != nil {
		t.Fatalf("Store() error: %v", err)
	}
	return path, checksum
}

func TestVerifierSync(t *testing.T) {
	cacheDir := t.TempDir()
	client, err := meshsource.New("http://unused", cacheDir)
	if err != nil {
		t.Fatalf("meshsource.New() error: %v", err)
	}

	healthyPath, healthyChecksum := storeTestMesh(t, client, "1.nmsh", 1)
	tamperedPath, tamperedChecksum := storeTestMesh(t, client, "2.nmsh", 2)
	missingPath := filepath.Join(cacheDir, "3.nmsh")

	// Flip bytes under the manifest's nose.
	if err := os.WriteFile(tamperedPath, []byte("not a mesh"), 0644); err != nil {
		t.Fatalf("tamper cache file: %v", err)
	}

	lister := &staticLister{records: []domain.MeshRecord{
		{ID: "1", Path: healthyPath, Checksum: healthyChecksum},
		{ID: "2", Path: tamperedPath, Checksum: tamperedChecksum},
		{ID: "3", Path: missingPath, Checksum: "whatever"},
	}}

	v := NewVerifier(lister, DefaultVerifierConfig())
	report, err := v.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if report.Checked != 3 {
		t.Errorf("checked %d entries, want 3", report.Checked)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("findings = %+v, want 2", report.Findings)
	}

	byMesh := make(map[string]domain.DiscrepancyKind)
	for _, f := range report.Findings {
		byMesh[f.MeshID] = f.Kind
	}
	if byMesh["2"] != domain.DiscrepancyChecksumMismatch {
		t.Errorf("mesh 2 finding = %v, want checksum_mismatch", byMesh["2"])
	}
	if byMesh["3"] != domain.DiscrepancyMissingFile {
		t.Errorf("mesh 3 finding = %v, want missing_file", byMesh["3"])
	}
}

func TestVerifierEmptyManifest(t *testing.T) {
	v := NewVerifier(&staticLister{}, DefaultVerifierConfig())
	report, err := v.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if report != nil {
		t.Errorf("Sync() on empty manifest = %+v, want nil report", report)
	}
}

func TestRegistryTriggerSync(t *testing.T) {
	cacheDir := t.TempDir()
	client, err := meshsource.New("http://unused", cacheDir)
	if err != nil {
		t.Fatalf("meshsource.New() error: %v", err)
	}
	path, _ := storeTestMesh(t, client, "7.nmsh", 7)

	lister := &staticLister{records: []domain.MeshRecord{
		{ID: "7", Path: path, Checksum: "stale"},
	}}

	var got *Report
	registry := NewRegistry(func(ctx context.Context, source string, report *Report) error {
		got = report
		return nil
	})
	if err := registry.Register(NewVerifier(lister, DefaultVerifierConfig()), AdapterConfig{Enabled: true}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	if err := registry.TriggerSync(context.Background(), "verifier"); err != nil {
		t.Fatalf("TriggerSync() error: %v", err)
	}
	if got == nil || len(got.Findings) != 1 {
		t.Fatalf("reconcile got %+v, want one checksum finding", got)
	}
	if got.Findings[0].Kind != domain.DiscrepancyChecksumMismatch {
		t.Errorf("finding kind = %v, want checksum_mismatch", got.Findings[0].Kind)
	}

	if err := registry.TriggerSync(context.Background(), "nope"); err == nil {
		t.Error("TriggerSync() for unknown adapter should fail")
	}
	if err := registry.Register(NewVerifier(lister, DefaultVerifierConfig()), AdapterConfig{}); err == nil {
		t.Error("duplicate Register() should fail")
	}
}
