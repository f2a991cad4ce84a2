// Package sqlite provides a SQLite implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkessel/retropix/internal/storage"

	_ "modernc.org/sqlite"
)

// Store is a SQLite implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// NewMemoryStore creates an in-memory SQLite store.
func NewMemoryStore() (*Store, error) {
	return newStore(":memory:")
}

// NewFileStore creates a file-based SQLite store.
func NewFileStore(path string) (*Store, error) {
	return newStore(path)
}

func newStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Export job methods

func (s *Store) SaveJob(ctx context.Context, job *storage.ExportJob) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO export_jobs
			(id, source_path, artifact, container, width, height, frames, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.SourcePath, job.Artifact, job.Container, job.Width, job.Height,
		job.Frames, job.DurationMs, job.CreatedAt)
	return err
}

func (s *Store) GetJob(ctx context.Context, id string) (*storage.ExportJob, error) {
	var job storage.ExportJob
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source_path, artifact, container, width, height, frames, duration_ms, created_at
		FROM export_jobs WHERE id = ?
	`, id).Scan(&job.ID, &job.SourcePath, &job.Artifact, &job.Container, &job.Width,
		&job.Height, &job.Frames, &job.DurationMs, &job.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Resource: "export_job", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *Store) ListJobs(ctx context.Context) ([]*storage.ExportJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_path, artifact, container, width, height, frames, duration_ms, created_at
		FROM export_jobs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*storage.ExportJob
	for rows.Next() {
		var job storage.ExportJob
		if err := rows.Scan(&job.ID, &job.SourcePath, &job.Artifact, &job.Container,
			&job.Width, &job.Height, &job.Frames, &job.DurationMs, &job.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

func (s *Store) DeleteJob(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM export_jobs WHERE id = ?", id)
	return err
}

// Preview cache methods

func (s *Store) CachePreview(ctx context.Context, preview *storage.CachedPreview) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO preview_cache (id, png_data, generated_at)
		VALUES (1, ?, ?)
	`, preview.PNGData, preview.GeneratedAt)
	return err
}

func (s *Store) GetCachedPreview(ctx context.Context) (*storage.CachedPreview, error) {
	var preview storage.CachedPreview
	err := s.db.QueryRowContext(ctx, `
		SELECT png_data, generated_at FROM preview_cache WHERE id = 1
	`).Scan(&preview.PNGData, &preview.GeneratedAt)

	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Resource: "preview_cache", ID: "1"}
	}
	if err != nil {
		return nil, err
	}
	return &preview, nil
}

// Verify interface compliance
var _ storage.Store = (*Store)(nil)
