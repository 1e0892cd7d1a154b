// Package report turns the analytics bundle and the recommendation set into
// the five deliverable artifacts. Every artifact is a self-contained value
// with no references back into the inputs, so callers can serialize them
// independently.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/brand-audit-cli/internal/analyze"
	"github.com/sells-group/brand-audit-cli/internal/recommend"
)

const (
	worstCriteriaLimit = 5
	worstCriteriaBar   = 6.0
	maxStoryURLLen     = 100
)

// Narrator generates optional prose for an artifact. The synthesizer works
// without one; a nil Narrator simply leaves the narrative fields empty.
type Narrator interface {
	Narrate(ctx context.Context, section, prompt string) (string, error)
}

// Bundle is the full set of report artifacts for one run.
type Bundle struct {
	Executive    ExecutiveSummary   `json:"executive_summary"`
	Personas     PersonaPerformance `json:"persona_performance"`
	Tiers        TierAnalysis       `json:"tier_analysis"`
	Stories      SuccessStories     `json:"success_stories"`
	Consolidated Consolidated       `json:"consolidated"`
}

// ExecutiveSummary is the headline artifact.
type ExecutiveSummary struct {
	TotalRecords     int              `json:"total_records"`
	UniquePages      int              `json:"unique_pages"`
	UniquePersonas   int              `json:"unique_personas"`
	MeanFinalScore   float64          `json:"mean_final_score"`
	DescriptorCounts map[string]int   `json:"descriptor_counts"`
	WorstCriteria    []WorstCriterion `json:"worst_criteria"`
	Narrative        string           `json:"narrative,omitempty"`
}

// WorstCriterion is one low-scoring criterion called out in the summary.
type WorstCriterion struct {
	CriterionID string  `json:"criterion_id"`
	Name        string  `json:"name"`
	MeanScore   float64 `json:"mean_score"`
	Count       int     `json:"count"`
}

// PersonaPerformance compares personas and names the best and worst.
type PersonaPerformance struct {
	Rows    []PersonaRow   `json:"rows"`
	Insight PersonaInsight `json:"insight"`
}

// PersonaRow is one persona's line in the comparison table.
type PersonaRow struct {
	PersonaID      string  `json:"persona_id"`
	AvgScore       float64 `json:"avg_score"`
	PageCount      int     `json:"page_count"`
	MeanFinalScore float64 `json:"mean_final_score"`
	CriticalIssues int     `json:"critical_issues"`
}

// PersonaInsight names the strongest and weakest persona experience.
type PersonaInsight struct {
	BestPersona  string  `json:"best_persona"`
	WorstPersona string  `json:"worst_persona"`
	Gap          float64 `json:"gap"`
	Text         string  `json:"text"`
}

// TierAnalysis summarizes performance per content tier.
type TierAnalysis struct {
	Rows             []TierRow `json:"rows"`
	BestTier         string    `json:"best_tier"`
	MostVariableTier string    `json:"most_variable_tier"`
}

// TierRow is one tier's aggregate line.
type TierRow struct {
	Tier     string  `json:"tier"`
	TierName string  `json:"tier_name"`
	AvgScore float64 `json:"avg_score"`
	StdDev   float64 `json:"std_dev"`
	Count    int     `json:"count"`
}

// SuccessStories is the ranked top-performer artifact.
type SuccessStories struct {
	Threshold float64 `json:"threshold"`
	Stories   []Story `json:"stories"`
}

// Story is one top-performing page.
type Story struct {
	Rank       int      `json:"rank"`
	PageID     string   `json:"page_id"`
	URL        string   `json:"url"`
	Tier       string   `json:"tier"`
	Score      float64  `json:"score"`
	Percentile float64  `json:"percentile"`
	Quotes     []string `json:"quotes,omitempty"`
}

// Consolidated is the cross-persona roll-up artifact.
type Consolidated struct {
	Executive       ExecutiveSummary       `json:"executive_summary"`
	Personas        []PersonaRow           `json:"persona_comparison"`
	Tiers           []TierRow              `json:"tier_comparison"`
	Recommendations RecommendationPackage  `json:"recommendations"`
	BrandHealth     BrandHealthBlock       `json:"brand_health"`
}

// RecommendationPackage groups the action items carried in the consolidated
// report.
type RecommendationPackage struct {
	CrossPersonaIssues []CrossPersonaIssue `json:"cross_persona_issues"`
	TierWorstCriteria  []TierWorstEntry    `json:"tier_worst_criteria"`
	QuickWins          []QuickWinEntry     `json:"quick_wins"`
	TopPriorities      []PriorityEntry     `json:"top_priorities"`
}

// CrossPersonaIssue is a criterion failing for two or more personas.
type CrossPersonaIssue struct {
	Title            string  `json:"title"`
	CriterionID      string  `json:"criterion_id"`
	AffectedPersonas int     `json:"affected_personas"`
	MeanScore        float64 `json:"mean_score"`
}

// TierWorstEntry names the weakest criterion within one tier.
type TierWorstEntry struct {
	Tier        string  `json:"tier"`
	CriterionID string  `json:"criterion_id"`
	MeanScore   float64 `json:"mean_score"`
}

// QuickWinEntry is a low-effort improvement carried into the roll-up.
type QuickWinEntry struct {
	PageID string  `json:"page_id"`
	URL    string  `json:"url"`
	Score  float64 `json:"score"`
}

// PriorityEntry is one of the highest-priority aggregated recommendations.
type PriorityEntry struct {
	Title         string  `json:"title"`
	PageID        string  `json:"page_id,omitempty"`
	PriorityScore float64 `json:"priority_score"`
	Timeline      string  `json:"timeline"`
}

// BrandHealthBlock is the overall health section of the consolidated report.
type BrandHealthBlock struct {
	Score          float64            `json:"score"`
	Status         string             `json:"status"`
	Emoji          string             `json:"emoji"`
	ExcellentRate  float64            `json:"excellent_rate"`
	GoodRate       float64            `json:"good_rate"`
	ConcerningRate float64            `json:"concerning_rate"`
	ScoreByTier    map[string]float64 `json:"score_by_tier"`
	ScoreByPersona map[string]float64 `json:"score_by_persona"`
}

// Synthesizer builds report bundles. narrator may be nil.
type Synthesizer struct {
	narrator Narrator
}

// New creates a Synthesizer with an optional Narrator.
func New(narrator Narrator) *Synthesizer {
	return &Synthesizer{narrator: narrator}
}

// Synthesize produces all five artifacts from the analytics bundle and the
// aggregated recommendation set. It never fails: a Narrator error only
// leaves the narrative empty.
func (s *Synthesizer) Synthesize(ctx context.Context, analytics *analyze.Bundle, recs *recommend.Set) *Bundle {
	out := &Bundle{
		Executive: s.executiveSummary(ctx, analytics),
		Personas:  s.personaPerformance(analytics),
		Tiers:     s.tierAnalysis(analytics),
		Stories:   s.successStories(analytics),
	}
	out.Consolidated = s.consolidated(analytics, recs, out)

	zap.L().Info("report: synthesis complete",
		zap.Int("worst_criteria", len(out.Executive.WorstCriteria)),
		zap.Int("personas", len(out.Personas.Rows)),
		zap.Int("success_stories", len(out.Stories.Stories)),
		zap.Int("cross_persona_issues", len(out.Consolidated.Recommendations.CrossPersonaIssues)),
	)
	return out
}

func (s *Synthesizer) executiveSummary(ctx context.Context, analytics *analyze.Bundle) ExecutiveSummary {
	ds := analytics.Dataset
	summary := ExecutiveSummary{
		TotalRecords:     ds.TotalRecords,
		UniquePages:      ds.UniquePages,
		UniquePersonas:   ds.UniquePersonas,
		MeanFinalScore:   ds.MeanFinalScore,
		DescriptorCounts: copyIntMap(ds.DescriptorCounts),
	}

	for _, cs := range analytics.Criteria.Scores {
		if cs.MeanScore >= worstCriteriaBar {
			continue
		}
		summary.WorstCriteria = append(summary.WorstCriteria, WorstCriterion{
			CriterionID: cs.CriterionID,
			Name:        humanize(cs.CriterionID),
			MeanScore:   cs.MeanScore,
			Count:       cs.Count,
		})
		if len(summary.WorstCriteria) == worstCriteriaLimit {
			break
		}
	}

	summary.Narrative = s.narrate(ctx, "executive_summary", fmt.Sprintf(
		"Overall brand health is %.1f/10 (%s) across %d pages and %d personas. Summarize the state of the brand in two paragraphs.",
		analytics.BrandHealth.Score, analytics.BrandHealth.Status, ds.UniquePages, ds.UniquePersonas))
	return summary
}

func (s *Synthesizer) personaPerformance(analytics *analyze.Bundle) PersonaPerformance {
	perf := PersonaPerformance{}
	for _, pc := range analytics.PersonaComparison {
		perf.Rows = append(perf.Rows, PersonaRow{
			PersonaID:      pc.PersonaID,
			AvgScore:       pc.AvgScore,
			PageCount:      pc.PageCount,
			MeanFinalScore: analytics.Dataset.ScoreByPersona[pc.PersonaID],
			CriticalIssues: pc.CriticalIssues,
		})
	}
	if len(perf.Rows) == 0 {
		return perf
	}

	// Rows arrive sorted by descending score.
	best := perf.Rows[0]
	worst := perf.Rows[len(perf.Rows)-1]
	perf.Insight = PersonaInsight{
		BestPersona:  best.PersonaID,
		WorstPersona: worst.PersonaID,
		Gap:          best.AvgScore - worst.AvgScore,
		Text: fmt.Sprintf("%s has the strongest experience (%.1f); %s has the weakest (%.1f).",
			best.PersonaID, best.AvgScore, worst.PersonaID, worst.AvgScore),
	}
	return perf
}

func (s *Synthesizer) tierAnalysis(analytics *analyze.Bundle) TierAnalysis {
	ta := TierAnalysis{}
	var mostVariable string
	var maxStd float64
	for _, tp := range analytics.TierPerformance {
		ta.Rows = append(ta.Rows, TierRow{
			Tier:     string(tp.Tier),
			TierName: tp.TierName,
			AvgScore: tp.AvgScore,
			StdDev:   tp.StdDev,
			Count:    tp.Count,
		})
		if tp.StdDev > maxStd {
			maxStd = tp.StdDev
			mostVariable = string(tp.Tier)
		}
	}
	if len(ta.Rows) > 0 {
		// Rows arrive sorted by descending score.
		ta.BestTier = ta.Rows[0].Tier
		ta.MostVariableTier = mostVariable
	}
	return ta
}

func (s *Synthesizer) successStories(analytics *analyze.Bundle) SuccessStories {
	lib := analytics.SuccessLibrary
	out := SuccessStories{Threshold: analytics.Dataset.SuccessThreshold}
	for i, story := range lib.Stories {
		out.Stories = append(out.Stories, Story{
			Rank:       i + 1,
			PageID:     story.PageID,
			URL:        truncateRunes(story.URL, maxStoryURLLen),
			Tier:       string(story.Tier),
			Score:      story.Score,
			Percentile: story.Percentile,
			Quotes:     story.Quotes,
		})
	}
	return out
}

func (s *Synthesizer) consolidated(analytics *analyze.Bundle, recs *recommend.Set, partial *Bundle) Consolidated {
	cons := Consolidated{
		Executive: partial.Executive,
		Personas:  partial.Personas.Rows,
		Tiers:     partial.Tiers.Rows,
	}

	for _, cs := range analytics.Criteria.Scores {
		if cs.AffectedPersonas < 2 {
			continue
		}
		cons.Recommendations.CrossPersonaIssues = append(cons.Recommendations.CrossPersonaIssues, CrossPersonaIssue{
			Title:            "Cross-Persona Issue: " + humanize(cs.CriterionID),
			CriterionID:      cs.CriterionID,
			AffectedPersonas: cs.AffectedPersonas,
			MeanScore:        cs.MeanScore,
		})
	}
	sort.Slice(cons.Recommendations.CrossPersonaIssues, func(i, j int) bool {
		a, b := cons.Recommendations.CrossPersonaIssues[i], cons.Recommendations.CrossPersonaIssues[j]
		if a.AffectedPersonas != b.AffectedPersonas {
			return a.AffectedPersonas > b.AffectedPersonas
		}
		return a.CriterionID < b.CriterionID
	})

	for _, tw := range analytics.Criteria.TierWorst {
		cons.Recommendations.TierWorstCriteria = append(cons.Recommendations.TierWorstCriteria, TierWorstEntry{
			Tier:        string(tw.Tier),
			CriterionID: tw.CriterionID,
			MeanScore:   tw.MeanScore,
		})
	}

	for _, qw := range analytics.Dataset.QuickWins {
		cons.Recommendations.QuickWins = append(cons.Recommendations.QuickWins, QuickWinEntry{
			PageID: qw.PageID,
			URL:    truncateRunes(qw.URL, maxStoryURLLen),
			Score:  qw.Score,
		})
	}

	if recs != nil {
		for i, item := range recs.Items {
			if i == worstCriteriaLimit {
				break
			}
			cons.Recommendations.TopPriorities = append(cons.Recommendations.TopPriorities, PriorityEntry{
				Title:         item.Title,
				PageID:        item.PageID,
				PriorityScore: item.PriorityScore,
				Timeline:      item.Timeline,
			})
		}
	}

	cons.BrandHealth = brandHealthBlock(analytics)
	return cons
}

func brandHealthBlock(analytics *analyze.Bundle) BrandHealthBlock {
	ds := analytics.Dataset
	block := BrandHealthBlock{
		Score:          analytics.BrandHealth.Score,
		Status:         analytics.BrandHealth.Status,
		Emoji:          analytics.BrandHealth.Emoji,
		ScoreByTier:    copyFloatMap(ds.ScoreByTier),
		ScoreByPersona: copyFloatMap(ds.ScoreByPersona),
	}
	if ds.TotalRecords == 0 {
		return block
	}
	total := float64(ds.TotalRecords)
	block.ExcellentRate = float64(ds.DescriptorCounts["EXCELLENT"]) / total * 100
	block.GoodRate = float64(ds.DescriptorCounts["GOOD"]) / total * 100
	block.ConcerningRate = float64(ds.DescriptorCounts["CONCERN"]+ds.DescriptorCounts["CRITICAL"]) / total * 100
	return block
}

// narrate asks the Narrator for prose, absorbing any failure.
func (s *Synthesizer) narrate(ctx context.Context, section, prompt string) string {
	if s.narrator == nil {
		return ""
	}
	text, err := s.narrator.Narrate(ctx, section, prompt)
	if err != nil {
		zap.L().Warn("report: narration failed",
			zap.String("section", section),
			zap.Error(err),
		)
		return ""
	}
	return strings.TrimSpace(text)
}

func humanize(id string) string {
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(id))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyFloatMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
