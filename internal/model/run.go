package model

import "time"

// RunStatus tracks an audit run through its lifecycle.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one execution of the audit pipeline over a source directory.
type Run struct {
	ID          string    `json:"id"`
	SourceDir   string    `json:"source_dir"`
	Status      RunStatus `json:"status"`
	RecordCount int       `json:"record_count"`
	BrandHealth float64   `json:"brand_health"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SnapshotKind names a persisted artifact attached to a run.
type SnapshotKind string

const (
	SnapshotAnalytics       SnapshotKind = "analytics"
	SnapshotRecommendations SnapshotKind = "recommendations"
	SnapshotReports         SnapshotKind = "reports"
)

// Snapshot is a serialized artifact persisted alongside a run.
type Snapshot struct {
	RunID     string       `json:"run_id"`
	Kind      SnapshotKind `json:"kind"`
	Payload   []byte       `json:"payload"`
	CreatedAt time.Time    `json:"created_at"`
}
