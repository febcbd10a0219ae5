package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"neuromesh/internal/domain"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meshes (
		id TEXT PRIMARY KEY,
		segment_id INTEGER NOT NULL,
		kind TEXT NOT NULL DEFAULT 'source',
		derived_from TEXT,
		path TEXT NOT NULL,
		checksum TEXT NOT NULL,
		data JSON NOT NULL,
		fetched_at DATETIME NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS discrepancies (
		id TEXT PRIMARY KEY,
		mesh_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		expected TEXT,
		actual TEXT,
		detected_at DATETIME NOT NULL,
		resolved INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (mesh_id) REFERENCES meshes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value JSON NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_meshes_segment ON meshes(segment_id);
	CREATE INDEX IF NOT EXISTS idx_meshes_kind ON meshes(kind);
	CREATE INDEX IF NOT EXISTS idx_discrepancies_mesh ON discrepancies(mesh_id);
	CREATE INDEX IF NOT EXISTS idx_discrepancies_resolved ON discrepancies(resolved);
	`

	_, err := r.db.Exec(schema)
	return err
}

// UpsertMesh inserts or updates a manifest record
func (r *Repository) UpsertMesh(ctx context.Context, rec *domain.MeshRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("mesh record ID required")
	}
	rec.UpdatedAt = time.Now()
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = rec.UpdatedAt
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal mesh record: %w", err)
	}

	var derivedFrom sql.NullString
	if rec.DerivedFrom != "" {
		derivedFrom = sql.NullString{String: rec.DerivedFrom, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meshes (id, segment_id, kind, derived_from, path, checksum, data, fetched_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			segment_id = excluded.segment_id,
			kind = excluded.kind,
			derived_from = excluded.derived_from,
			path = excluded.path,
			checksum = excluded.checksum,
			data = excluded.data,
			fetched_at = excluded.fetched_at,
			updated_at = CURRENT_TIMESTAMP
	`, rec.ID, rec.SegmentID, string(rec.Kind), derivedFrom, rec.Path, rec.Checksum, data, rec.FetchedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert mesh record: %w", err)
	}
	return nil
}

// GetMesh retrieves a manifest record by ID. Returns nil, nil when the
// record does not exist.
func (r *Repository) GetMesh(ctx context.Context, id string) (*domain.MeshRecord, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM meshes WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mesh record: %w", err)
	}

	rec := &domain.MeshRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mesh record: %w", err)
	}
	return rec, nil
}

// ListMeshes returns all manifest records, optionally filtered by kind
func (r *Repository) ListMeshes(ctx context.Context, kind string) ([]domain.MeshRecord, error) {
	query := `SELECT data FROM meshes ORDER BY fetched_at`
	args := []any{}
	if kind != "" {
		query = `SELECT data FROM meshes WHERE kind = ? ORDER BY fetched_at`
		args = append(args, kind)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mesh records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.MeshRecord, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan mesh record: %w", err)
		}
		var rec domain.MeshRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mesh record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mesh records: %w", err)
	}
	return records, nil
}

// DeleteMesh removes a manifest record and its discrepancies
func (r *Repository) DeleteMesh(ctx context.Context, id string) error {
	// Discrepancies are deleted by CASCADE.
	_, err := r.db.ExecContext(ctx, `DELETE FROM meshes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mesh record: %w", err)
	}
	return nil
}

// RecordDiscrepancy stores an integrity finding. An ID and detection
// time are assigned if missing.
func (r *Repository) RecordDiscrepancy(ctx context.Context, d *domain.Discrepancy) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DetectedAt.IsZero() {
		d.DetectedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO discrepancies (id, mesh_id, kind, expected, actual, detected_at, resolved)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.MeshID, string(d.Kind), d.Expected, d.Actual, d.DetectedAt, boolToInt(d.Resolved))

	if err != nil {
		return fmt.Errorf("failed to record discrepancy: %w", err)
	}
	return nil
}

// ListDiscrepancies returns integrity findings, unresolved only by default
func (r *Repository) ListDiscrepancies(ctx context.Context, includeResolved bool) ([]domain.Discrepancy, error) {
	query := `
		SELECT id, mesh_id, kind, expected, actual, detected_at, resolved
		FROM discrepancies`
	if !includeResolved {
		query += ` WHERE resolved = 0`
	}
	query += ` ORDER BY detected_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query discrepancies: %w", err)
	}
	defer rows.Close()

	findings := make([]domain.Discrepancy, 0)
	for rows.Next() {
		var (
			d                domain.Discrepancy
			kind             string
			expected, actual sql.NullString
			resolved         int
		)
		if err := rows.Scan(&d.ID, &d.MeshID, &kind, &expected, &actual, &d.DetectedAt, &resolved); err != nil {
			return nil, fmt.Errorf("failed to scan discrepancy: %w", err)
		}
		d.Kind = domain.DiscrepancyKind(kind)
		d.Expected = expected.String
		d.Actual = actual.String
		d.Resolved = resolved != 0
		findings = append(findings, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating discrepancies: %w", err)
	}
	return findings, nil
}

// ResolveDiscrepancy marks a finding as resolved
func (r *Repository) ResolveDiscrepancy(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE discrepancies SET resolved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to resolve discrepancy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("discrepancy %s not found", id)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
