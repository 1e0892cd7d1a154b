package report

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brand-audit-cli/internal/analyze"
	"github.com/sells-group/brand-audit-cli/internal/model"
	"github.com/sells-group/brand-audit-cli/internal/recommend"
)

func enriched(pageID, persona, criterion string, score float64) *model.Record {
	r := &model.Record{
		PageID:        pageID,
		PersonaID:     persona,
		CriterionID:   criterion,
		URL:           "https://acme.test/" + pageID,
		Tier:          model.Tier1,
		TierName:      model.Tier1.DisplayName(),
		FinalScore:    score,
		FinalScoreSet: true,
		Descriptor:    model.DescriptorFor(score),
	}
	r.CriticalIssueFlag = r.Descriptor.IsCritical()
	r.SuccessFlag = score >= 8
	return r
}

func analyzed(t *testing.T, records []*model.Record) *analyze.Bundle {
	t.Helper()
	rs := &model.RecordSet{Records: records}
	rs.Freeze()
	bundle, err := analyze.New(analyze.DefaultConfig()).Analyze(context.Background(), rs)
	require.NoError(t, err)
	return bundle
}

func TestCrossPersonaIssue(t *testing.T) {
	records := []*model.Record{
		enriched("home", "cfo", "trust_signals", 3),
		enriched("home", "developer", "trust_signals", 3),
		enriched("home", "cfo", "value_proposition", 8),
	}
	bundle := analyzed(t, records)

	out := New(nil).Synthesize(context.Background(), bundle, nil)

	issues := out.Consolidated.Recommendations.CrossPersonaIssues
	require.Len(t, issues, 1)
	assert.Equal(t, "Cross-Persona Issue: Trust Signals", issues[0].Title)
	assert.Equal(t, 2, issues[0].AffectedPersonas)
	assert.Equal(t, "trust_signals", issues[0].CriterionID)
	assert.InDelta(t, 3.0, issues[0].MeanScore, 0.0001)
}

func TestSinglePersonaIssueExcluded(t *testing.T) {
	records := []*model.Record{
		enriched("home", "cfo", "trust_signals", 3),
		enriched("home", "developer", "trust_signals", 7),
	}
	bundle := analyzed(t, records)

	out := New(nil).Synthesize(context.Background(), bundle, nil)
	assert.Empty(t, out.Consolidated.Recommendations.CrossPersonaIssues)
}

func TestExecutiveSummaryWorstCriteria(t *testing.T) {
	var records []*model.Record
	criteria := []string{"c_one", "c_two", "c_three", "c_four", "c_five", "c_six", "c_high"}
	scores := []float64{1, 2, 3, 4, 5, 5.5, 9}
	for i, c := range criteria {
		records = append(records, enriched("home", "cfo", c, scores[i]))
	}
	bundle := analyzed(t, records)

	out := New(nil).Synthesize(context.Background(), bundle, nil)
	exec := out.Executive

	assert.Equal(t, 7, exec.TotalRecords)
	assert.Equal(t, 1, exec.UniquePages)
	assert.Equal(t, 1, exec.UniquePersonas)
	// Six criteria score below 6 but the call-out stops at five, worst first.
	require.Len(t, exec.WorstCriteria, 5)
	assert.Equal(t, "c_one", exec.WorstCriteria[0].CriterionID)
	assert.Equal(t, "C One", exec.WorstCriteria[0].Name)
	assert.InDelta(t, 1.0, exec.WorstCriteria[0].MeanScore, 0.0001)
	assert.Equal(t, "c_five", exec.WorstCriteria[4].CriterionID)
}

func TestPersonaPerformanceInsight(t *testing.T) {
	records := []*model.Record{
		enriched("home", "cfo", "trust_signals", 9),
		enriched("pricing", "cfo", "trust_signals", 7),
		enriched("home", "developer", "trust_signals", 4),
	}
	bundle := analyzed(t, records)

	out := New(nil).Synthesize(context.Background(), bundle, nil)
	perf := out.Personas

	require.Len(t, perf.Rows, 2)
	assert.Equal(t, "cfo", perf.Rows[0].PersonaID)
	assert.Equal(t, 2, perf.Rows[0].PageCount)
	assert.Equal(t, "cfo", perf.Insight.BestPersona)
	assert.Equal(t, "developer", perf.Insight.WorstPersona)
	assert.InDelta(t, 4.0, perf.Insight.Gap, 0.0001)
	assert.Contains(t, perf.Insight.Text, "cfo")
}

func TestTierAnalysis(t *testing.T) {
	stable := []*model.Record{
		enriched("home", "cfo", "a", 8),
		enriched("home2", "cfo", "a", 8),
	}
	var variable []*model.Record
	for i, score := range []float64{2, 9, 3} {
		r := enriched("blog"+string(rune('a'+i)), "cfo", "a", score)
		r.Tier = model.Tier3
		r.TierName = model.Tier3.DisplayName()
		variable = append(variable, r)
	}
	bundle := analyzed(t, append(stable, variable...))

	out := New(nil).Synthesize(context.Background(), bundle, nil)
	ta := out.Tiers

	require.Len(t, ta.Rows, 2)
	assert.Equal(t, string(model.Tier1), ta.BestTier)
	assert.Equal(t, string(model.Tier3), ta.MostVariableTier)
}

func TestSuccessStoriesURLCap(t *testing.T) {
	r := enriched("home", "cfo", "trust_signals", 9)
	r.URL = "https://acme.test/" + strings.Repeat("segment/", 30)
	bundle := analyzed(t, []*model.Record{r})

	out := New(nil).Synthesize(context.Background(), bundle, nil)
	require.Len(t, out.Stories.Stories, 1)

	story := out.Stories.Stories[0]
	assert.Equal(t, 1, story.Rank)
	assert.LessOrEqual(t, len([]rune(story.URL)), 100)
	assert.InDelta(t, 9.0, story.Score, 0.0001)
}

func TestBrandHealthBlockRates(t *testing.T) {
	records := []*model.Record{
		enriched("a", "cfo", "x", 9), // EXCELLENT
		enriched("b", "cfo", "x", 7), // GOOD
		enriched("c", "cfo", "x", 3), // CONCERN
		enriched("d", "cfo", "x", 1), // CRITICAL
	}
	bundle := analyzed(t, records)

	out := New(nil).Synthesize(context.Background(), bundle, nil)
	bh := out.Consolidated.BrandHealth

	assert.InDelta(t, 25.0, bh.ExcellentRate, 0.0001)
	assert.InDelta(t, 25.0, bh.GoodRate, 0.0001)
	assert.InDelta(t, 50.0, bh.ConcerningRate, 0.0001)
	assert.NotEmpty(t, bh.Status)
	assert.Contains(t, bh.ScoreByPersona, "cfo")
}

func TestTopPrioritiesFromRecommendations(t *testing.T) {
	bundle := analyzed(t, []*model.Record{enriched("home", "cfo", "x", 7)})
	recs := &recommend.Set{Items: []recommend.Aggregated{
		{Title: "CRITICAL: Fix Checkout", PageID: "checkout", PriorityScore: 10, Timeline: "0-7 days"},
		{Title: "Quick Win", PageID: "about", PriorityScore: 6.4, Timeline: "0-30 days"},
	}}

	out := New(nil).Synthesize(context.Background(), bundle, recs)
	top := out.Consolidated.Recommendations.TopPriorities
	require.Len(t, top, 2)
	assert.Equal(t, "CRITICAL: Fix Checkout", top[0].Title)
	assert.Equal(t, "0-7 days", top[0].Timeline)
}

type stubNarrator struct {
	text string
	err  error
}

func (s stubNarrator) Narrate(ctx context.Context, section, prompt string) (string, error) {
	return s.text, s.err
}

func TestNarratorPopulatesNarrative(t *testing.T) {
	bundle := analyzed(t, []*model.Record{enriched("home", "cfo", "x", 7)})

	out := New(stubNarrator{text: "  The brand is in good shape. "}).
		Synthesize(context.Background(), bundle, nil)
	assert.Equal(t, "The brand is in good shape.", out.Executive.Narrative)
}

func TestNarratorFailureLeavesNarrativeEmpty(t *testing.T) {
	bundle := analyzed(t, []*model.Record{enriched("home", "cfo", "x", 7)})

	out := New(stubNarrator{err: eris.New("rate limited")}).
		Synthesize(context.Background(), bundle, nil)
	assert.Empty(t, out.Executive.Narrative)
}

func TestEmptyBundle(t *testing.T) {
	bundle := analyzed(t, nil)

	out := New(nil).Synthesize(context.Background(), bundle, nil)
	assert.Zero(t, out.Executive.TotalRecords)
	assert.Empty(t, out.Personas.Rows)
	assert.Empty(t, out.Tiers.Rows)
	assert.Empty(t, out.Stories.Stories)
	assert.Empty(t, out.Consolidated.Recommendations.CrossPersonaIssues)
}
