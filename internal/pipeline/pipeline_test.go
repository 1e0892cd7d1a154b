package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brand-audit-cli/internal/analyze"
	"github.com/sells-group/brand-audit-cli/internal/config"
	"github.com/sells-group/brand-audit-cli/internal/model"
	"github.com/sells-group/brand-audit-cli/internal/store"
	"github.com/sells-group/brand-audit-cli/internal/unify"
)

func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			SuccessThreshold:  7.5,
			CriticalThreshold: 4.0,
			QuickWinLow:       2.0,
			QuickWinHigh:      6.0,
			TopOpportunities:  10,
			MaxSuccessStories: 10,
		},
	}
}

func writeSourceDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write(unify.FilePages,
		"page_id,url,tier,final_score\n"+
			"home,https://example.com/,tier_1,8.5\n"+
			"pricing,https://example.com/pricing,tier_3,3.0\n")
	write(unify.FileCriteria,
		"page_id,criterion_code,raw_score,weight_pct\n"+
			"home,brand_clarity,9.0,20\n"+
			"home,trust_signals,8.0,10\n"+
			"pricing,brand_clarity,3.0,20\n"+
			"pricing,trust_signals,2.5,10\n")
	write(unify.FileExperience,
		"page_id,persona_id,evidence,sentiment_label\n"+
			"home,cfo,Clear value proposition throughout,Positive\n"+
			"pricing,cfo,Pricing is impossible to find,Negative\n"+
			"pricing,ops_manager,No trust signals anywhere on the page,Negative\n")
	return dir
}

func TestRunWithoutStoreOrNarrator(t *testing.T) {
	dir := writeSourceDir(t)

	p := New(testConfig(), nil, nil)
	outcome, err := p.Run(context.Background(), Options{SourceDir: dir})
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.NotEmpty(t, outcome.RunID)
	require.NotNil(t, outcome.Records)
	assert.NotEmpty(t, outcome.Records.Records)

	require.NotNil(t, outcome.Analytics)
	assert.Greater(t, outcome.Analytics.BrandHealth.Score, 0.0)
	assert.NotEmpty(t, outcome.Analytics.PersonaComparison)

	require.NotNil(t, outcome.Recommendations)
	assert.NotEmpty(t, outcome.Recommendations.Items)

	// Without a narrator every artifact is still produced, just without prose.
	require.NotNil(t, outcome.Reports)
	assert.NotEmpty(t, outcome.Reports.Executive.WorstCriteria)
	assert.Empty(t, outcome.Reports.Executive.Narrative)
}

func TestRunMissingBaseData(t *testing.T) {
	p := New(testConfig(), nil, nil)
	_, err := p.Run(context.Background(), Options{SourceDir: t.TempDir()})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingBaseData)
}

func TestRunPersistsToStore(t *testing.T) {
	dir := writeSourceDir(t)

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(context.Background()))

	p := New(testConfig(), st, nil)
	outcome, err := p.Run(context.Background(), Options{SourceDir: dir})
	require.NoError(t, err)

	run, err := st.GetRun(context.Background(), outcome.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, len(outcome.Records.Records), run.RecordCount)
	assert.InDelta(t, outcome.Analytics.BrandHealth.Score, run.BrandHealth, 0.001)

	snap, err := st.GetSnapshot(context.Background(), outcome.RunID, model.SnapshotAnalytics)
	require.NoError(t, err)
	require.NotNil(t, snap)

	var bundle analyze.Bundle
	require.NoError(t, json.Unmarshal(snap.Payload, &bundle))
	assert.InDelta(t, outcome.Analytics.BrandHealth.Score, bundle.BrandHealth.Score, 0.001)

	for _, kind := range []model.SnapshotKind{model.SnapshotRecommendations, model.SnapshotReports} {
		snap, err := st.GetSnapshot(context.Background(), outcome.RunID, kind)
		require.NoError(t, err)
		assert.NotNil(t, snap, string(kind))
	}
}

func TestRunMarksStoreRunFailed(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(context.Background()))

	p := New(testConfig(), st, nil)
	_, err = p.Run(context.Background(), Options{SourceDir: t.TempDir()})
	require.Error(t, err)

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusFailed, runs[0].Status)
	assert.NotEmpty(t, runs[0].Error)
}

func TestRunWritesWorkbook(t *testing.T) {
	dir := writeSourceDir(t)
	xlsxPath := filepath.Join(t.TempDir(), "scorecard.xlsx")

	p := New(testConfig(), nil, nil)
	_, err := p.Run(context.Background(), Options{SourceDir: dir, XLSXPath: xlsxPath})
	require.NoError(t, err)

	info, err := os.Stat(xlsxPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
