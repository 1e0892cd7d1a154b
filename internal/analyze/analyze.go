// Package analyze exposes read-only analytical operations over the enriched
// record set: brand health, tier and persona performance, opportunity
// ranking, the success library, persona voice mining, strategic composites,
// and criteria correlations. Every operation is deterministic and none
// mutate shared state.
package analyze

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// Config holds the analyzer thresholds.
type Config struct {
	SuccessThreshold  float64
	CriticalThreshold float64
	TopOpportunities  int
	MaxSuccessStories int
	EvidenceCaps      map[string]int
}

// DefaultConfig returns the standard analyzer thresholds.
func DefaultConfig() Config {
	return Config{
		SuccessThreshold:  7.5,
		CriticalThreshold: 4.0,
		TopOpportunities:  10,
		MaxSuccessStories: 10,
		EvidenceCaps: map[string]int{
			"evidence":                  500,
			"business_impact":           300,
			"effective_copy_examples":   400,
			"ineffective_copy_examples": 400,
			"trust_assessment":          200,
			"information_gaps":          200,
		},
	}
}

func (c Config) cap(field string, fallback int) int {
	if v, ok := c.EvidenceCaps[field]; ok && v > 0 {
		return v
	}
	return fallback
}

// Bundle is the full set of analytical artifacts for one run.
type Bundle struct {
	Dataset           DataSummary                         `json:"dataset"`
	BrandHealth       BrandHealth                         `json:"brand_health"`
	TierPerformance   []TierPerformance                   `json:"tier_performance"`
	Opportunities     []Opportunity                       `json:"opportunities"`
	SuccessLibrary    SuccessLibrary                      `json:"success_library"`
	PersonaComparison []PersonaComparison                 `json:"persona_comparison"`
	PersonaVoices     []VoiceAnalysis                     `json:"persona_voices"`
	PersonaPages      map[string][]PersonaPagePerformance `json:"persona_pages,omitempty"`
	Composites        Composites                          `json:"composites"`
	Criteria          CriteriaAnalysis                    `json:"criteria_analysis"`
	Warnings          []model.Warning                     `json:"warnings,omitempty"`
}

// Analyzer computes the analytics bundle over a frozen record set.
type Analyzer struct {
	cfg Config
}

// New creates an Analyzer.
func New(cfg Config) *Analyzer {
	if cfg.TopOpportunities <= 0 {
		cfg.TopOpportunities = 10
	}
	if cfg.MaxSuccessStories <= 0 {
		cfg.MaxSuccessStories = 10
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = 7.5
	}
	if cfg.CriticalThreshold == 0 {
		cfg.CriticalThreshold = 4.0
	}
	return &Analyzer{cfg: cfg}
}

// Analyze runs every subanalysis and assembles the bundle. The subqueries
// are independent and evaluated concurrently; each holds a read-only view
// of the record set.
func (a *Analyzer) Analyze(ctx context.Context, rs *model.RecordSet) (*Bundle, error) {
	b := &Bundle{}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { b.Dataset = a.DataSummary(rs); return nil })
	g.Go(func() error { b.BrandHealth = a.BrandHealth(rs.Records); return nil })
	g.Go(func() error { b.TierPerformance = a.TierPerformance(rs.Records); return nil })
	g.Go(func() error { b.Opportunities = a.Opportunities(rs.Records); return nil })
	g.Go(func() error { b.SuccessLibrary = a.SuccessLibrary(rs.Records, "", ""); return nil })
	g.Go(func() error { b.PersonaComparison = a.PersonaComparison(rs.Records); return nil })
	g.Go(func() error {
		b.PersonaPages = make(map[string][]PersonaPagePerformance)
		for _, persona := range rs.Personas() {
			view := rs.ByPersona(persona)
			b.PersonaVoices = append(b.PersonaVoices, a.PersonaVoice(persona, view))
			b.PersonaPages[persona] = a.PersonaPages(view, persona)
		}
		return nil
	})
	g.Go(func() error { b.Composites = a.Composites(rs.Records); return nil })
	g.Go(func() error { b.Criteria = a.Criteria(rs.Records); return nil })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	a.noteDegraded(rs, b)

	zap.L().Info("analyze: bundle complete",
		zap.Int("records", len(rs.Records)),
		zap.Int("opportunities", len(b.Opportunities)),
		zap.Int("success_stories", len(b.SuccessLibrary.Stories)),
		zap.Int("personas", len(b.PersonaVoices)),
	)
	return b, nil
}

// noteDegraded records a diagnostic for every condition that was absorbed
// into an empty result during the subanalyses.
func (a *Analyzer) noteDegraded(rs *model.RecordSet, b *Bundle) {
	if len(rs.Records) == 0 {
		b.warn(model.WarnEmptyView, "analyze",
			"record set is empty; all analyses returned empty results")
		return
	}

	scored := false
	for _, r := range rs.Records {
		if _, ok := r.Score(); ok {
			scored = true
			break
		}
	}
	if !scored {
		b.warn(model.WarnMissingDerivedInputs, "analyze",
			"no record carries a final score; score-derived analyses returned empty results")
	}

	mined := false
	for _, va := range b.PersonaVoices {
		if len(va.Quotes.Positive)+len(va.Quotes.Negative)+len(va.Quotes.Strategic) > 0 ||
			len(va.EffectiveCopy)+len(va.IneffectiveCopy)+len(va.BusinessImpact) > 0 {
			mined = true
			break
		}
	}
	if len(b.PersonaVoices) > 0 && !mined {
		b.warn(model.WarnTextMiningNoMatch, "analyze",
			"text mining matched no narrative fields for any persona")
	}
}

// warn appends a bundle warning and mirrors it to the global logger.
func (b *Bundle) warn(kind model.WarningKind, source, message string) {
	b.Warnings = append(b.Warnings, model.Warning{Kind: kind, Source: source, Message: message})
	zap.L().Warn(message,
		zap.String("kind", string(kind)),
		zap.String("source", source),
	)
}

// DataSummary holds dataset-level aggregates consumed by report synthesis.
type DataSummary struct {
	SuccessThreshold float64            `json:"success_threshold"`
	TotalRecords     int                `json:"total_records"`
	UniquePages      int                `json:"unique_pages"`
	UniquePersonas   int                `json:"unique_personas"`
	MeanFinalScore   float64            `json:"mean_final_score"`
	DescriptorCounts map[string]int     `json:"descriptor_counts"`
	ScoreByTier      map[string]float64 `json:"score_by_tier"`
	ScoreByPersona   map[string]float64 `json:"score_by_persona"`
	QuickWins        []QuickWin         `json:"quick_wins,omitempty"`
}

// QuickWin is a flagged easy-fix page surfaced in the consolidated report.
type QuickWin struct {
	PageID string  `json:"page_id"`
	URL    string  `json:"url"`
	Score  float64 `json:"score"`
}

// DataSummary computes dataset-level aggregates.
func (a *Analyzer) DataSummary(rs *model.RecordSet) DataSummary {
	ds := DataSummary{
		SuccessThreshold: a.cfg.SuccessThreshold,
		TotalRecords:     len(rs.Records),
		UniquePages:      len(rs.Pages()),
		UniquePersonas:   len(rs.Personas()),
		DescriptorCounts: make(map[string]int),
		ScoreByTier:      make(map[string]float64),
		ScoreByPersona:   make(map[string]float64),
	}

	var scores []float64
	tierScores := make(map[string][]float64)
	personaScores := make(map[string][]float64)
	quickWinPages := make(map[string]QuickWin)
	var quickWinOrder []string

	for _, r := range rs.Records {
		if r.Descriptor != "" {
			ds.DescriptorCounts[string(r.Descriptor)]++
		}
		score, ok := r.Score()
		if !ok {
			continue
		}
		scores = append(scores, score)
		tierScores[string(r.Tier)] = append(tierScores[string(r.Tier)], score)
		if r.PersonaID != "" {
			personaScores[r.PersonaID] = append(personaScores[r.PersonaID], score)
		}
		if r.QuickWinFlag {
			if _, seen := quickWinPages[r.PageID]; !seen {
				quickWinPages[r.PageID] = QuickWin{PageID: r.PageID, URL: r.URL, Score: score}
				quickWinOrder = append(quickWinOrder, r.PageID)
			}
		}
	}

	ds.MeanFinalScore = mean(scores)
	for tier, vals := range tierScores {
		ds.ScoreByTier[tier] = mean(vals)
	}
	for persona, vals := range personaScores {
		ds.ScoreByPersona[persona] = mean(vals)
	}
	sort.Strings(quickWinOrder)
	for _, pageID := range quickWinOrder {
		ds.QuickWins = append(ds.QuickWins, quickWinPages[pageID])
	}
	return ds
}
