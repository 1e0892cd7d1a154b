package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "/data/audit-2026-08")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning))
	require.NoError(t, s.CompleteRun(ctx, run.ID, 240, 6.8))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, 240, got.RecordCount)
	assert.InDelta(t, 6.8, got.BrandHealth, 0.0001)
	assert.Equal(t, "/data/audit-2026-08", got.SourceDir)
}

func TestSQLiteFailRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "/data/bad")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, "no base page data found"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "no base page data found", got.Error)
}

func TestSQLiteRunNotFound(t *testing.T) {
	s := newTestSQLite(t)

	err := s.UpdateRunStatus(context.Background(), "missing-id", model.RunStatusRunning)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = s.GetRun(context.Background(), "missing-id")
	require.Error(t, err)
}

func TestSQLiteListRunsFilter(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, "/data/a")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "/data/b")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, a.ID, 10, 5.0))

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, a.ID, complete[0].ID)

	byDir, err := s.ListRuns(ctx, RunFilter{SourceDir: "/data/b"})
	require.NoError(t, err)
	require.Len(t, byDir, 1)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteSaveRecords(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "/data/a")
	require.NoError(t, err)

	records := []*model.Record{
		{PageID: "home", PersonaID: "cfo", CriterionID: "trust_signals", FinalScore: 5, FinalScoreSet: true},
		{PageID: "home", PersonaID: "cfo", CriterionID: "cta_presence", FinalScore: 7, FinalScoreSet: true},
	}
	n, err := s.SaveRecords(ctx, run.ID, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Saving the same keys again replaces rather than duplicates.
	n, err = s.SaveRecords(ctx, run.ID, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLiteSnapshotRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "/data/a")
	require.NoError(t, err)

	payload := []byte(`{"score":6.8,"status":"Good"}`)
	require.NoError(t, s.SaveSnapshot(ctx, run.ID, model.SnapshotAnalytics, payload))

	snap, err := s.GetSnapshot(ctx, run.ID, model.SnapshotAnalytics)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.JSONEq(t, string(payload), string(snap.Payload))

	// Overwrite on same (run, kind).
	require.NoError(t, s.SaveSnapshot(ctx, run.ID, model.SnapshotAnalytics, []byte(`{"score":7.0}`)))
	snap, err = s.GetSnapshot(ctx, run.ID, model.SnapshotAnalytics)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":7.0}`, string(snap.Payload))

	missing, err := s.GetSnapshot(ctx, run.ID, model.SnapshotReports)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
