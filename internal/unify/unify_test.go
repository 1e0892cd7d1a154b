package unify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadJoinsAllSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FilePages,
		"page_id,url,tier,final_score\n"+
			"p1,https://example.com/,tier_1,9.0\n"+
			"p2,https://example.com/pricing,tier_3,3.0\n")
	writeFile(t, dir, FileCriteria,
		"page_id,criterion_code,raw_score,weight_pct\n"+
			"p1,brand_clarity,8.5,20\n"+
			"p1,trust_signals,9.0,10\n"+
			"p2,brand_clarity,2.5,20\n")
	writeFile(t, dir, FileExperience,
		"page_id,persona_id,evidence,sentiment_label\n"+
			"p1,cfo,Strong value proposition,Positive\n"+
			"p2,cfo,Pricing is hidden,Negative\n")
	writeFile(t, dir, FileRecs,
		"page_id,recommendation,strategic_impact\n"+
			"p2,Show pricing,High\n"+
			"p2,Add testimonials,High\n")

	rs, err := Load(dir)
	require.NoError(t, err)

	// p1 has two criteria, p2 has one; one persona each.
	assert.Len(t, rs.Records, 3)
	assert.Equal(t, []string{"p1", "p2"}, rs.Pages())
	assert.Equal(t, []string{"cfo"}, rs.Personas())

	first := rs.Records[0]
	assert.Equal(t, "p1", first.PageID)
	assert.Equal(t, "cfo", first.PersonaID)
	assert.Equal(t, "brand_clarity", first.CriterionID)
	assert.Equal(t, model.Tier1, first.Tier)
	assert.True(t, first.FinalScoreSet)
	assert.InDelta(t, 9.0, first.FinalScore, 0.001)
	assert.Equal(t, model.ScoreOriginFinal, first.ScoreOrigin)
	assert.True(t, first.RawScoreSet)
	assert.InDelta(t, 8.5, first.RawScore, 0.001)
	require.NotNil(t, first.WeightPct)
	assert.InDelta(t, 20, *first.WeightPct, 0.001)
	assert.Equal(t, "Strong value proposition", first.Evidence)
	assert.Equal(t, model.SentimentPositive, first.SentimentLabel)

	// Recommendations aggregate onto p2 records.
	p2 := rs.Records[2]
	assert.Equal(t, "p2", p2.PageID)
	assert.Equal(t, "2", p2.Extra["recommendation_count"])
	assert.Equal(t, "High", p2.Extra["strategic_impact"])
	assert.Len(t, rs.RawRecommendations, 2)
}

func TestLoadScorecardFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileScorecard,
		"page,url,tier,final_score\n"+
			"p9,https://example.com/about,tier_2,6.5\n")

	rs, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, rs.Records, 1)
	assert.Equal(t, "p9", rs.Records[0].PageID)
	assert.Equal(t, model.Tier2, rs.Records[0].Tier)
	assert.Equal(t, "about", rs.Records[0].URLSlug)
}

func TestLoadMissingBaseFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileExperience, "page_id,persona_id\np1,cfo\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingBaseData)
}

func TestLoadMissingColumnSkipsSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FilePages,
		"page_id,url,tier,final_score\np1,https://example.com/,tier_1,5.0\n")
	// criteria_scores.csv lacks raw_score; the source must be skipped with
	// a warning, never failing the run.
	writeFile(t, dir, FileCriteria, "page_id,criterion_code\np1,brand_clarity\n")

	rs, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, rs.Records, 1)
	assert.Empty(t, rs.Records[0].CriterionID)
	require.NotEmpty(t, rs.Warnings)
	assert.Equal(t, model.WarnMalformedInput, rs.Warnings[0].Kind)
	assert.Equal(t, FileCriteria, rs.Warnings[0].Source)
}

func TestLoadCollisionPreservesLeft(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FilePages,
		"page_id,url,tier,final_score\np1,https://example.com/,tier_1,5.0\n")
	writeFile(t, dir, FileExperience,
		"page_id,persona_id,url\np1,cfo,https://other.example.com/\n")

	rs, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, rs.Records, 1)
	r := rs.Records[0]
	assert.Equal(t, "https://example.com/", r.URL)
	assert.Equal(t, "https://other.example.com/", r.Extra["url_src"])
}

func TestLoadPersonaBriefAttached(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FilePages,
		"page_id,url,tier,final_score\np1,https://example.com/,tier_1,5.0\n")
	writeFile(t, dir, FilePersonaBrief,
		"id: cfo\nname: Finance Lead\npain_points:\n  - opaque pricing\n")

	rs, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, rs.PersonaBrief)
	assert.Equal(t, "cfo", rs.PersonaBrief.ID)
	assert.Equal(t, "cfo", rs.Records[0].PersonaBriefRef)
}

func TestNormalizeTextIdempotent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`  plain  `, "plain"},
		{`"quoted value"`, "quoted value"},
		{`'single quoted'`, "single quoted"},
		{`""double wrapped""`, `""double wrapped""`},
		{`"embedded "inner" quotes"`, `"embedded "inner" quotes"`},
		{"", ""},
	}
	for _, tt := range tests {
		got := NormalizeText(tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, NormalizeText(got), "not idempotent for %q", tt.in)
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "home", Slug("https://example.com/"))
	assert.Equal(t, "pricing", Slug("https://example.com/pricing"))
	assert.Equal(t, "team", Slug("https://example.com/about/team/"))
	assert.Equal(t, "faq", Slug("https://example.com/help/FAQ.html"))
	assert.Equal(t, "", Slug(""))
}

func TestParseFloat(t *testing.T) {
	v, ok := ParseFloat(" 7.25 ")
	assert.True(t, ok)
	assert.InDelta(t, 7.25, v, 0.001)

	_, ok = ParseFloat("n/a")
	assert.False(t, ok)
	_, ok = ParseFloat("")
	assert.False(t, ok)
}
