package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/brand-audit-cli/internal/analyze"
	"github.com/sells-group/brand-audit-cli/internal/model"
	"github.com/sells-group/brand-audit-cli/internal/recommend"
)

func TestWriteScorecardXLSX(t *testing.T) {
	rs := &model.RecordSet{Records: []*model.Record{
		{
			PageID: "home", URL: "https://acme.test/", PersonaID: "cfo",
			CriterionID: "trust_signals", Tier: model.Tier1,
			FinalScore: 6.5, FinalScoreSet: true,
			Descriptor: model.DescriptorGood, QuickWinFlag: true,
			Evidence: "Solid footer but no testimonials.",
		},
		{
			PageID: "about", URL: "https://acme.test/about", PersonaID: "cfo",
			CriterionID: "trust_signals", Tier: model.Tier2,
		},
	}}
	analytics := &analyze.Bundle{TierPerformance: []analyze.TierPerformance{
		{Tier: model.Tier1, TierName: model.Tier1.DisplayName(), AvgScore: 6.5, Count: 1},
	}}
	recs := &recommend.Set{Items: []recommend.Aggregated{
		{Title: "⚡ Quick Win: Optimize Home", PageID: "home", PriorityScore: 7.0,
			Timeline: "0-30 days", Sources: "quick_win",
			Themes: []string{"Lacks trust signals (testimonials, logos, case studies)"}},
	}}

	path := filepath.Join(t.TempDir(), "scorecard.xlsx")
	require.NoError(t, WriteScorecardXLSX(path, rs, analytics, recs))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3)

	scorecard := f.Sheets[0]
	assert.Equal(t, "Scorecard", scorecard.Name)
	require.Len(t, scorecard.Rows, 3) // header + 2 records
	// Records are sorted by composite key, so "about" precedes "home".
	assert.Equal(t, "about", scorecard.Rows[1].Cells[0].String())
	assert.Equal(t, "home", scorecard.Rows[2].Cells[0].String())
	assert.Equal(t, "6.50", scorecard.Rows[2].Cells[5].String())
	assert.Equal(t, "yes", scorecard.Rows[2].Cells[8].String())
	// Missing score stays blank.
	assert.Equal(t, "", scorecard.Rows[1].Cells[5].String())

	tiers := f.Sheets[1]
	require.Len(t, tiers.Rows, 2)
	assert.Equal(t, "tier_1", tiers.Rows[1].Cells[0].String())

	recSheet := f.Sheets[2]
	require.Len(t, recSheet.Rows, 2)
	assert.Equal(t, "⚡ Quick Win: Optimize Home", recSheet.Rows[1].Cells[1].String())
}

func TestWriteScorecardXLSXEmptyInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteScorecardXLSX(path, &model.RecordSet{}, nil, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3)
	assert.Len(t, f.Sheets[0].Rows, 1) // header only
}
