// Package storage provides the export-job ledger for the retropix tool.
// Only artifact metadata is recorded; filter settings and media never
// persist across sessions.
package storage

import (
	"context"
	"time"
)

// Store is the interface for the export ledger.
type Store interface {
	// Export jobs
	SaveJob(ctx context.Context, job *ExportJob) error
	GetJob(ctx context.Context, id string) (*ExportJob, error)
	ListJobs(ctx context.Context) ([]*ExportJob, error)
	DeleteJob(ctx context.Context, id string) error

	// Preview cache (single slot)
	CachePreview(ctx context.Context, preview *CachedPreview) error
	GetCachedPreview(ctx context.Context) (*CachedPreview, error)

	// Lifecycle
	Close() error
}

// ExportJob records one finished export.
type ExportJob struct {
	ID         string
	SourcePath string
	Artifact   string
	Container  string
	Width      int
	Height     int
	Frames     int
	DurationMs int64
	CreatedAt  time.Time
}

// CachedPreview is the last rendered preview frame, PNG-encoded.
type CachedPreview struct {
	PNGData     []byte
	GeneratedAt time.Time
}

// ErrNotFound is returned when a record is not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return e.Resource + " not found: " + e.ID
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
