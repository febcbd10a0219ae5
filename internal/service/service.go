package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"neuromesh/internal/domain"
	"neuromesh/internal/filter"
	"neuromesh/internal/meshsource"
	"neuromesh/internal/repair"
	"neuromesh/internal/repository"
	"neuromesh/internal/segmentgraph"
)

// MeshService provides business logic for mesh operations
type MeshService struct {
	repo   repository.Repository
	source *meshsource.Client
	graph  *segmentgraph.Client
	bus    *EventBus

	mu    sync.Mutex
	scene *domain.Scene
}

// NewMeshService creates a new mesh service
func NewMeshService(repo repository.Repository, source *meshsource.Client, graph *segmentgraph.Client, bus *EventBus) *MeshService {
	return &MeshService{
		repo:   repo,
		source: source,
		graph:  graph,
		bus:    bus,
		scene:  domain.NewScene("default"),
	}
}

// Fetch retrieves a mesh by segment ID, serving from cache when present,
// and records it in the manifest
func (s *MeshService) Fetch(ctx context.Context, segmentID uint64) (*domain.MeshRecord, bool, error) {
	res, err := s.source.Fetch(ctx, segmentID)
	if err != nil {
		return nil, false, err
	}

	rec := recordFromResult(domain.SourceMeshID(segmentID), domain.MeshKindSource, "", res)
	if err := s.repo.UpsertMesh(ctx, rec); err != nil {
		return nil, false, err
	}

	s.bus.Publish(Event{
		Type: EventMeshFetched,
		Payload: map[string]any{
			"mesh_id":    rec.ID,
			"segment_id": segmentID,
			"from_cache": res.FromCache,
		},
	})
	return rec, res.FromCache, nil
}

// FetchBulk downloads a batch of segments with bounded parallelism.
// Per-segment failures are reported in the result, not as an error.
func (s *MeshService) FetchBulk(ctx context.Context, segmentIDs []uint64, workers int) (*meshsource.BulkResult, error) {
	jobID := uuid.NewString()

	result, err := s.source.FetchBulk(ctx, segmentIDs, workers, func(done, total int, segmentID uint64, ferr error) {
		payload := map[string]any{
			"job_id":     jobID,
			"done":       done,
			"total":      total,
			"segment_id": segmentID,
		}
		if ferr != nil {
			payload["error"] = ferr.Error()
		}
		s.bus.Publish(Event{Type: EventBulkProgress, Payload: payload})
	})
	if err != nil {
		return result, err
	}

	// Record everything that landed in the cache. These are cache hits
	// now, so no further network traffic happens here.
	for _, id := range result.Fetched {
		if _, _, err := s.Fetch(ctx, id); err != nil {
			log.Printf("Bulk fetch: failed to record segment %d: %v", id, err)
		}
	}

	s.bus.Publish(Event{
		Type: EventBulkComplete,
		Payload: map[string]any{
			"job_id":  jobID,
			"fetched": len(result.Fetched),
			"failed":  len(result.Failed),
		},
	})
	return result, nil
}

// Heal fetches the merge log for a segment and adds link edges bridging
// the recorded merge points. The healed mesh replaces the cached copy.
// Returns the updated record and the number of edges added.
func (s *MeshService) Heal(ctx context.Context, segmentID uint64) (*domain.MeshRecord, int, error) {
	if s.graph == nil {
		return nil, 0, fmt.Errorf("no segmentation graph configured")
	}

	res, err := s.source.Fetch(ctx, segmentID)
	if err != nil {
		return nil, 0, err
	}

	merges, err := s.graph.MergeLog(ctx, segmentID)
	if err != nil {
		return nil, 0, err
	}

	added := repair.Heal(res.Mesh, merges)
	if added > 0 {
		path, checksum, err := s.source.Store(filepath.Base(res.Path), res.Mesh)
		if err != nil {
			return nil, 0, fmt.Errorf("store healed mesh: %w", err)
		}
		res.Path = path
		res.Checksum = checksum
	}

	rec := recordFromResult(domain.SourceMeshID(segmentID), domain.MeshKindSource, "", res)
	if err := s.repo.UpsertMesh(ctx, rec); err != nil {
		return nil, 0, err
	}

	s.bus.Publish(Event{
		Type: EventMeshHealed,
		Payload: map[string]any{
			"mesh_id":     rec.ID,
			"merges":      len(merges),
			"edges_added": added,
		},
	})
	return rec, added, nil
}

// FilterSpec describes one mask generator in a filter chain
type FilterSpec struct {
	Type   string     `json:"type" yaml:"type"` // largest_component, radius, box
	Center [3]float64 `json:"center,omitempty" yaml:"center,omitempty"`
	Radius float64    `json:"radius,omitempty" yaml:"radius,omitempty"`
	Min    [3]float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max    [3]float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Mask applies a chain of filters to a cached mesh and stores the result
// as a new derived mesh. Each filter narrows the vertex set of the mesh
// produced by the previous one.
func (s *MeshService) Mask(ctx context.Context, meshID string, specs []FilterSpec) (*domain.MeshRecord, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one filter required")
	}

	rec, err := s.repo.GetMesh(ctx, meshID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("mesh %s not found", meshID)
	}

	mesh, err := s.source.Load(rec.Path)
	if err != nil {
		return nil, err
	}

	for _, spec := range specs {
		mask, err := buildMask(mesh, spec)
		if err != nil {
			return nil, err
		}
		mesh, err = mesh.ApplyMask(mask)
		if err != nil {
			return nil, err
		}
	}

	// The file-name stem is the manifest ID, so a rebuilt manifest
	// re-adopts the mesh under the same identity.
	derivedID := "derived-" + uuid.NewString()
	path, checksum, err := s.source.Store(derivedID+".nmsh", mesh)
	if err != nil {
		return nil, fmt.Errorf("store masked mesh: %w", err)
	}

	derived := &domain.MeshRecord{
		ID:            derivedID,
		SegmentID:     mesh.SegmentID,
		Kind:          domain.MeshKindDerived,
		DerivedFrom:   meshID,
		Path:          path,
		Checksum:      checksum,
		VertexCount:   mesh.VertexCount(),
		FaceCount:     mesh.FaceCount(),
		LinkEdgeCount: len(mesh.LinkEdges),
		FetchedAt:     time.Now(),
	}
	if err := s.repo.UpsertMesh(ctx, derived); err != nil {
		return nil, err
	}

	s.bus.Publish(Event{
		Type: EventMeshMasked,
		Payload: map[string]any{
			"mesh_id":      derivedID,
			"derived_from": meshID,
			"vertices":     derived.VertexCount,
		},
	})
	return derived, nil
}

func buildMask(mesh *domain.Mesh, spec FilterSpec) (domain.Mask, error) {
	switch spec.Type {
	case "largest_component":
		return filter.LargestComponent(mesh), nil
	case "radius":
		if spec.Radius <= 0 {
			return nil, fmt.Errorf("radius filter requires a positive radius")
		}
		center := r3.Vec{X: spec.Center[0], Y: spec.Center[1], Z: spec.Center[2]}
		return filter.WithinRadius(mesh, center, spec.Radius), nil
	case "box":
		min := r3.Vec{X: spec.Min[0], Y: spec.Min[1], Z: spec.Min[2]}
		max := r3.Vec{X: spec.Max[0], Y: spec.Max[1], Z: spec.Max[2]}
		return filter.InBox(mesh, min, max), nil
	}
	return nil, fmt.Errorf("unknown filter type %q", spec.Type)
}

// Stats loads a cached mesh and computes its geometry summary.
//
// Volume and center of mass assume a watertight mesh; the values are
// reported without validation.
func (s *MeshService) Stats(ctx context.Context, meshID string) (*domain.MeshStats, error) {
	rec, err := s.repo.GetMesh(ctx, meshID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("mesh %s not found", meshID)
	}

	mesh, err := s.source.Load(rec.Path)
	if err != nil {
		return nil, err
	}
	stats := mesh.Stats()
	return &stats, nil
}

// GetMesh returns a manifest record
func (s *MeshService) GetMesh(ctx context.Context, meshID string) (*domain.MeshRecord, error) {
	rec, err := s.repo.GetMesh(ctx, meshID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("mesh %s not found", meshID)
	}
	return rec, nil
}

// ListMeshes returns manifest records, optionally filtered by kind
func (s *MeshService) ListMeshes(ctx context.Context, kind string) ([]domain.MeshRecord, error) {
	return s.repo.ListMeshes(ctx, kind)
}

// Evict removes a mesh from the cache and the manifest
func (s *MeshService) Evict(ctx context.Context, meshID string) error {
	rec, err := s.GetMesh(ctx, meshID)
	if err != nil {
		return err
	}

	if err := os.Remove(rec.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	if err := s.repo.DeleteMesh(ctx, meshID); err != nil {
		return err
	}

	s.bus.Publish(Event{
		Type:    EventMeshEvicted,
		Payload: map[string]string{"mesh_id": meshID},
	})
	return nil
}

// Integrity returns integrity findings from the manifest
func (s *MeshService) Integrity(ctx context.Context, includeResolved bool) ([]domain.Discrepancy, error) {
	return s.repo.ListDiscrepancies(ctx, includeResolved)
}

// RecordFindings stores integrity findings from a verification pass.
// Findings duplicating a still-open one for the same mesh are skipped,
// so repeated verification does not pile up identical rows. Returns the
// number of new findings recorded.
func (s *MeshService) RecordFindings(ctx context.Context, findings []domain.Discrepancy) (int, error) {
	open, err := s.repo.ListDiscrepancies(ctx, false)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(open))
	for _, d := range open {
		seen[d.MeshID+"/"+string(d.Kind)] = true
	}

	recorded := 0
	for i := range findings {
		d := findings[i]
		if seen[d.MeshID+"/"+string(d.Kind)] {
			continue
		}
		if err := s.repo.RecordDiscrepancy(ctx, &d); err != nil {
			return recorded, err
		}
		seen[d.MeshID+"/"+string(d.Kind)] = true
		recorded++
		s.bus.Publish(Event{Type: EventDiscrepancyFound, Payload: d})
	}
	return recorded, nil
}

// ResolveFinding marks an integrity finding as resolved
func (s *MeshService) ResolveFinding(ctx context.Context, id string) error {
	return s.repo.ResolveDiscrepancy(ctx, id)
}

// ReconcileResult summarizes a cache reconciliation pass
type ReconcileResult struct {
	Adopted int `json:"adopted"` // Files on disk that were missing from the manifest
	Missing int `json:"missing"` // Manifest rows whose files are gone
}

// ReconcileCache brings the manifest and the cache directory back in
// step after external changes: orphaned cache files are adopted into the
// manifest, and records whose files vanished are flagged as
// discrepancies.
func (s *MeshService) ReconcileCache(ctx context.Context) (*ReconcileResult, error) {
	result := &ReconcileResult{}

	records, err := s.repo.ListMeshes(ctx, "")
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(records))
	var missing []domain.Discrepancy
	for _, rec := range records {
		known[rec.Path] = true
		if _, err := os.Stat(rec.Path); os.IsNotExist(err) {
			missing = append(missing, domain.Discrepancy{
				MeshID:   rec.ID,
				Kind:     domain.DiscrepancyMissingFile,
				Expected: rec.Path,
			})
			result.Missing++
		}
	}
	// RecordFindings skips findings that duplicate a still-open one, so
	// repeated reconciliation of the same vanished file stays one row.
	if _, err := s.RecordFindings(ctx, missing); err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(s.source.CacheDir(), "*.nmsh"))
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		if known[path] {
			continue
		}
		mesh, err := s.source.Load(path)
		if err != nil {
			log.Printf("Reconcile: skipping undecodable file %s: %v", path, err)
			continue
		}
		checksum, err := meshsource.Checksum(path)
		if err != nil {
			return nil, err
		}

		id := domain.SourceMeshID(mesh.SegmentID)
		base := filepath.Base(path)
		kind := domain.MeshKindSource
		if base != id+".nmsh" {
			// Not named like a source mesh; adopt as derived with the
			// file name as identity.
			id = base[:len(base)-len(filepath.Ext(base))]
			kind = domain.MeshKindDerived
		}

		res := &meshsource.Result{Mesh: mesh, Path: path, Checksum: checksum, FromCache: true}
		rec := recordFromResult(id, kind, "", res)
		if err := s.repo.UpsertMesh(ctx, rec); err != nil {
			return nil, err
		}
		result.Adopted++
	}

	s.bus.Publish(Event{Type: EventCacheReconciled, Payload: result})
	return result, nil
}

// Scene returns a copy of the current scene
func (s *MeshService) Scene() *domain.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := domain.NewScene(s.scene.Name)
	copied.Actors = append(copied.Actors, s.scene.Actors...)
	return copied
}

// AddActor adds a mesh to the scene with the given color and opacity
func (s *MeshService) AddActor(ctx context.Context, meshID string, color domain.Color, opacity float64) (*domain.Actor, error) {
	if _, err := s.GetMesh(ctx, meshID); err != nil {
		return nil, err
	}

	actor := domain.NewActor(meshID, color, opacity)

	s.mu.Lock()
	s.scene.AddActor(*actor)
	s.mu.Unlock()

	s.bus.Publish(Event{
		Type:    EventSceneUpdated,
		Payload: map[string]string{"actor_id": actor.ID, "mesh_id": meshID},
	})
	return actor, nil
}

// RemoveActor removes an actor from the scene
func (s *MeshService) RemoveActor(actorID string) error {
	s.mu.Lock()
	err := s.scene.RemoveActor(actorID)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.bus.Publish(Event{
		Type:    EventSceneUpdated,
		Payload: map[string]string{"removed": actorID},
	})
	return nil
}

func recordFromResult(id string, kind domain.MeshKind, derivedFrom string, res *meshsource.Result) *domain.MeshRecord {
	return &domain.MeshRecord{
		ID:            id,
		SegmentID:     res.Mesh.SegmentID,
		Kind:          kind,
		DerivedFrom:   derivedFrom,
		Path:          res.Path,
		Checksum:      res.Checksum,
		VertexCount:   res.Mesh.VertexCount(),
		FaceCount:     res.Mesh.FaceCount(),
		LinkEdgeCount: len(res.Mesh.LinkEdges),
		FetchedAt:     time.Now(),
	}
}
