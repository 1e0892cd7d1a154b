package derive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

func enrichOne(r *model.Record) *model.Record {
	rs := &model.RecordSet{Records: []*model.Record{r}}
	Enrich(rs, DefaultOptions())
	return rs.Records[0]
}

func floatPtr(v float64) *float64 { return &v }

func TestQuickWinFromImpactAndEffort(t *testing.T) {
	// raw 5.0, 200 chars of evidence, weight 20 → effort Low,
	// potential impact (10-5)*20*0.1 = 10.0, quick win.
	r := enrichOne(&model.Record{
		PageID:   "p1",
		Tier:     model.Tier2,
		RawScore: 5.0, RawScoreSet: true,
		Evidence:  strings.Repeat("x", 200),
		WeightPct: floatPtr(20),
	})

	assert.Equal(t, model.EffortLow, r.EffortLevel)
	require.NotNil(t, r.PotentialImpact)
	assert.InDelta(t, 10.0, *r.PotentialImpact, 0.001)
	assert.True(t, r.QuickWinFlag)
}

func TestQuickWinScoreBandFallback(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  bool
	}{
		{"inside band", 4.0, true},
		{"at low edge", 2.0, false},
		{"at high edge", 6.0, false},
		{"excellent", 9.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := enrichOne(&model.Record{
				PageID:     "p1",
				FinalScore: tt.score, FinalScoreSet: true,
			})
			assert.Equal(t, tt.want, r.QuickWinFlag)
		})
	}
}

func TestInputProvidedQuickWinWins(t *testing.T) {
	r := enrichOne(&model.Record{
		PageID:     "p1",
		FinalScore: 4.0, FinalScoreSet: true,
		QuickWinFlag: false, QuickWinSet: true,
	})
	assert.False(t, r.QuickWinFlag)
}

func TestFlagLaws(t *testing.T) {
	concern := enrichOne(&model.Record{FinalScore: 3.0, FinalScoreSet: true})
	assert.Equal(t, model.DescriptorConcern, concern.Descriptor)
	assert.True(t, concern.CriticalIssueFlag)
	assert.False(t, concern.SuccessFlag)

	success := enrichOne(&model.Record{FinalScore: 8.0, FinalScoreSet: true})
	assert.Equal(t, model.DescriptorExcellent, success.Descriptor)
	assert.True(t, success.SuccessFlag)
	assert.False(t, success.CriticalIssueFlag)
}

func TestScoreCanonicalization(t *testing.T) {
	r := enrichOne(&model.Record{RawScore: 6.5, RawScoreSet: true})
	assert.True(t, r.FinalScoreSet)
	assert.InDelta(t, 6.5, r.FinalScore, 0.001)
	assert.Equal(t, model.ScoreOriginRaw, r.ScoreOrigin)
}

func TestEffortLevels(t *testing.T) {
	tests := []struct {
		name     string
		evidence string
		want     model.EffortLevel
	}{
		{"missing evidence", "", model.EffortMedium},
		{"short", strings.Repeat("a", 100), model.EffortLow},
		{"medium", strings.Repeat("a", 500), model.EffortMedium},
		{"long", strings.Repeat("a", 900), model.EffortHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := enrichOne(&model.Record{Evidence: tt.evidence, FinalScore: 5, FinalScoreSet: true})
			assert.Equal(t, tt.want, r.EffortLevel)
		})
	}
}

func TestSentimentDerivation(t *testing.T) {
	high := enrichOne(&model.Record{FinalScore: 8, FinalScoreSet: true})
	require.NotNil(t, high.SentimentNumeric)
	assert.InDelta(t, 8.0, *high.SentimentNumeric, 0.001)
	assert.Equal(t, model.SentimentPositive, high.SentimentLabel)

	mid := enrichOne(&model.Record{FinalScore: 5, FinalScoreSet: true})
	require.NotNil(t, mid.SentimentNumeric)
	assert.InDelta(t, 5.0, *mid.SentimentNumeric, 0.001)

	low := enrichOne(&model.Record{FinalScore: 2, FinalScoreSet: true})
	require.NotNil(t, low.SentimentNumeric)
	assert.InDelta(t, 2.0, *low.SentimentNumeric, 0.001)
	assert.Equal(t, model.SentimentNegative, low.SentimentLabel)

	labeled := enrichOne(&model.Record{SentimentLabel: model.SentimentNegative, FinalScore: 9, FinalScoreSet: true})
	require.NotNil(t, labeled.SentimentNumeric)
	assert.InDelta(t, 2.0, *labeled.SentimentNumeric, 0.001)
}

func TestTierFillins(t *testing.T) {
	r := enrichOne(&model.Record{Tier: model.Tier1, FinalScore: 5, FinalScoreSet: true})
	assert.Nil(t, r.TierWeight, "tier_weight stays unset unless source-supplied")
	require.NotNil(t, r.BrandPct)
	require.NotNil(t, r.PerformancePct)
	assert.InDelta(t, 100, *r.BrandPct+*r.PerformancePct, 0.01)
}

func TestFocusSplitComplement(t *testing.T) {
	// A lone supplied side is completed with its complement, not the tier
	// defaults (Tier3 would otherwise contribute 50/50).
	r := enrichOne(&model.Record{Tier: model.Tier3, BrandPct: floatPtr(80)})
	require.NotNil(t, r.PerformancePct)
	assert.InDelta(t, 20, *r.PerformancePct, 0.001)
	assert.InDelta(t, 100, *r.BrandPct+*r.PerformancePct, 0.01)

	r = enrichOne(&model.Record{Tier: model.Tier1, PerformancePct: floatPtr(35)})
	require.NotNil(t, r.BrandPct)
	assert.InDelta(t, 65, *r.BrandPct, 0.001)

	// Out-of-range input clamps rather than going negative.
	r = enrichOne(&model.Record{Tier: model.Tier2, BrandPct: floatPtr(120)})
	require.NotNil(t, r.PerformancePct)
	assert.InDelta(t, 0, *r.PerformancePct, 0.001)
}

func TestEnrichFreezesSet(t *testing.T) {
	rs := &model.RecordSet{Records: []*model.Record{{PageID: "p1"}}}
	Enrich(rs, DefaultOptions())
	assert.True(t, rs.Frozen())
	assert.ErrorIs(t, rs.Append(&model.Record{}), model.ErrFrozen)

	// Enriching again is a no-op, not a panic.
	Enrich(rs, DefaultOptions())
}

func TestEnrichMissingScores(t *testing.T) {
	r := enrichOne(&model.Record{PageID: "p1", Evidence: "some evidence"})
	assert.Equal(t, model.ScoreOriginNone, r.ScoreOrigin)
	assert.Empty(t, r.Descriptor)
	assert.Equal(t, model.HealthUnknown, r.BrandHealth)
	assert.False(t, r.QuickWinFlag)
	assert.False(t, r.SuccessFlag)
	assert.Nil(t, r.SentimentNumeric)
}
