// Package repository defines the data access interfaces for neuromesh.
//
// This package provides the repository abstraction for the cache
// manifest: which meshes live on disk, where, with what checksum, and
// any discrepancies found by integrity verification. The actual
// implementation is in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation uses a pure-Go SQLite driver with WAL mode.
// The schema is migrated automatically on open. Mesh records keep the
// indexed columns (segment ID, kind, path, checksum) beside a JSON blob
// of the full record, so new fields survive without schema churn.
package repository

import (
	"context"

	"neuromesh/internal/domain"
)

// Repository defines data access for the cache manifest
type Repository interface {
	// Mesh manifest
	UpsertMesh(ctx context.Context, rec *domain.MeshRecord) error
	GetMesh(ctx context.Context, id string) (*domain.MeshRecord, error)
	ListMeshes(ctx context.Context, kind string) ([]domain.MeshRecord, error)
	DeleteMesh(ctx context.Context, id string) error

	// Integrity findings
	RecordDiscrepancy(ctx context.Context, d *domain.Discrepancy) error
	ListDiscrepancies(ctx context.Context, includeResolved bool) ([]domain.Discrepancy, error)
	ResolveDiscrepancy(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
