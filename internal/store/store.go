// Package store persists audit runs, their unified records, and serialized
// artifact snapshots. Two drivers are provided: SQLite for local single-user
// work and Postgres for shared deployments.
package store

import (
	"context"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status    model.RunStatus `json:"status,omitempty"`
	SourceDir string          `json:"source_dir,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the audit pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, sourceDir string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, recordCount int, brandHealth float64) error
	FailRun(ctx context.Context, runID string, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Unified records
	SaveRecords(ctx context.Context, runID string, records []*model.Record) (int, error)

	// Artifact snapshots
	SaveSnapshot(ctx context.Context, runID string, kind model.SnapshotKind, payload []byte) error
	GetSnapshot(ctx context.Context, runID string, kind model.SnapshotKind) (*model.Snapshot, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
