package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// SuccessOverview summarizes the success library population.
type SuccessOverview struct {
	TotalPages    int     `json:"total_pages"`
	SuccessCount  int     `json:"success_count"`
	SuccessRate   float64 `json:"success_rate"`
	ExcellentN    int     `json:"excellent"`  // score >= 9
	VeryGoodN     int     `json:"very_good"`  // score >= 8
	GoodN         int     `json:"good"`       // score >= threshold
}

// SuccessStory is one high-scoring page with its supporting evidence.
type SuccessStory struct {
	PageID          string     `json:"page_id"`
	URL             string     `json:"url"`
	Tier            model.Tier `json:"tier"`
	Score           float64    `json:"score"`
	Percentile      float64    `json:"percentile"`
	Quotes          []string   `json:"quotes,omitempty"`
	Evidence        string     `json:"evidence,omitempty"`
	EffectiveCopy   string     `json:"effective_copy,omitempty"`
	TrustAssessment string     `json:"trust_assessment,omitempty"`
}

// TierPattern describes what high scorers within one tier have in common.
type TierPattern struct {
	Tier     model.Tier `json:"tier"`
	TierName string     `json:"tier_name"`
	Count    int        `json:"count"`
	AvgScore float64    `json:"avg_score"`
}

// EvidenceItem is one tagged piece of success evidence.
type EvidenceItem struct {
	PageID string `json:"page_id"`
	Type   string `json:"type"`
	Text   string `json:"text"`
}

// Evidence item types.
const (
	EvidenceCopyExamples    = "Copy Examples"
	EvidencePerformanceData = "Performance Data"
	EvidenceUserFeedback    = "User Feedback"
	EvidenceTrust           = "Trust Assessment"
)

// ReplicationTemplate is a per-tier recipe distilled from the success set.
type ReplicationTemplate struct {
	Tier           model.Tier `json:"tier"`
	TierName       string     `json:"tier_name"`
	Pattern        string     `json:"pattern"`
	Recommendation string     `json:"recommendation"`
}

// SuccessLibrary is the full success artifact.
type SuccessLibrary struct {
	Overview  SuccessOverview       `json:"overview"`
	Stories   []SuccessStory        `json:"stories"`
	Patterns  []TierPattern         `json:"patterns"`
	Evidence  []EvidenceItem        `json:"evidence"`
	Templates []ReplicationTemplate `json:"templates"`
}

// SuccessLibrary builds the library of pages meeting the success threshold,
// optionally filtered by persona and tier.
func (a *Analyzer) SuccessLibrary(records []*model.Record, persona string, tier model.Tier) SuccessLibrary {
	threshold := a.cfg.SuccessThreshold

	type acc struct {
		url      string
		tier     model.Tier
		scores   []float64
		evidence []string
		copy     []string
		trust    []string
	}
	groups := make(map[string]*acc)
	var order []string
	allPages := make(map[string]bool)

	for _, r := range records {
		allPages[r.PageID] = true
		if persona != "" && r.PersonaID != persona {
			continue
		}
		if tier != "" && r.Tier != tier {
			continue
		}
		score, ok := r.Score()
		if !ok || score < threshold {
			continue
		}
		g := groups[r.PageID]
		if g == nil {
			g = &acc{url: r.URL, tier: r.Tier}
			groups[r.PageID] = g
			order = append(order, r.PageID)
		}
		g.scores = append(g.scores, score)
		appendNonEmpty(&g.evidence, r.Evidence)
		appendNonEmpty(&g.copy, r.EffectiveCopy)
		appendNonEmpty(&g.trust, r.TrustAssessment)
	}

	// Aggregate and drop pages whose mean fell back below the threshold.
	type page struct {
		id    string
		score float64
		acc   *acc
	}
	var pages []page
	for _, id := range order {
		g := groups[id]
		score := mean(g.scores)
		if score < threshold {
			continue
		}
		pages = append(pages, page{id: id, score: score, acc: g})
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].score != pages[j].score {
			return pages[i].score > pages[j].score
		}
		return pages[i].id < pages[j].id
	})

	population := make([]float64, len(pages))
	for i, p := range pages {
		population[i] = p.score
	}

	lib := SuccessLibrary{
		Overview: SuccessOverview{
			TotalPages:   len(allPages),
			SuccessCount: len(pages),
		},
	}
	if lib.Overview.TotalPages > 0 {
		lib.Overview.SuccessRate = float64(lib.Overview.SuccessCount) / float64(lib.Overview.TotalPages)
	}

	tierAcc := make(map[model.Tier][]float64)
	for _, p := range pages {
		switch {
		case p.score >= 9:
			lib.Overview.ExcellentN++
		case p.score >= 8:
			lib.Overview.VeryGoodN++
		default:
			lib.Overview.GoodN++
		}

		story := SuccessStory{
			PageID:          p.id,
			URL:             p.acc.url,
			Tier:            p.acc.tier,
			Score:           p.score,
			Percentile:      percentile(population, p.score),
			Quotes:          extractQuotes(strings.Join(p.acc.copy, " | ")),
			Evidence:        joinUnique(p.acc.evidence, a.cfg.cap("evidence", 500)),
			EffectiveCopy:   joinUnique(p.acc.copy, a.cfg.cap("effective_copy_examples", 400)),
			TrustAssessment: joinUnique(p.acc.trust, a.cfg.cap("trust_assessment", 200)),
		}
		if len(lib.Stories) < a.cfg.MaxSuccessStories {
			lib.Stories = append(lib.Stories, story)
		}
		tierAcc[p.acc.tier] = append(tierAcc[p.acc.tier], p.score)

		lib.Evidence = append(lib.Evidence, collectEvidence(p.id, p.acc.copy, p.acc.evidence, p.acc.trust, p.score)...)
	}

	for _, t := range model.AllTiers() {
		scores, ok := tierAcc[t]
		if !ok {
			continue
		}
		lib.Patterns = append(lib.Patterns, TierPattern{
			Tier:     t,
			TierName: t.DisplayName(),
			Count:    len(scores),
			AvgScore: mean(scores),
		})
		lib.Templates = append(lib.Templates, ReplicationTemplate{
			Tier:           t,
			TierName:       t.DisplayName(),
			Pattern:        patternFor(t, len(scores), mean(scores)),
			Recommendation: templateFor(t),
		})
	}

	return lib
}

// FilterEvidence narrows success evidence by type and a case-insensitive
// substring search. Empty filters match everything.
func FilterEvidence(items []EvidenceItem, evidenceType, query string) []EvidenceItem {
	query = strings.ToLower(query)
	out := make([]EvidenceItem, 0, len(items))
	for _, it := range items {
		if evidenceType != "" && it.Type != evidenceType {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(it.Text), query) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// percentile returns the percentage of the population at or below v.
func percentile(population []float64, v float64) float64 {
	if len(population) == 0 {
		return 0
	}
	atOrBelow := 0
	for _, p := range population {
		if p <= v {
			atOrBelow++
		}
	}
	return 100 * float64(atOrBelow) / float64(len(population))
}

func collectEvidence(pageID string, copies, evidence, trust []string, score float64) []EvidenceItem {
	var items []EvidenceItem
	for _, c := range dedupSegments(copies) {
		items = append(items, EvidenceItem{PageID: pageID, Type: EvidenceCopyExamples, Text: c})
	}
	for _, e := range dedupSegments(evidence) {
		typ := EvidenceUserFeedback
		if containsAny(strings.ToLower(e), "score", "rate", "metric", "conversion", "%") {
			typ = EvidencePerformanceData
		}
		items = append(items, EvidenceItem{PageID: pageID, Type: typ, Text: e})
	}
	for _, tr := range dedupSegments(trust) {
		items = append(items, EvidenceItem{PageID: pageID, Type: EvidenceTrust, Text: tr})
	}
	return items
}

func patternFor(t model.Tier, count int, avg float64) string {
	return fmt.Sprintf("%d %s page(s) sustain an average of %.1f across personas", count, t.DisplayName(), avg)
}

func templateFor(t model.Tier) string {
	switch t {
	case model.Tier1:
		return "Mirror the winning hero framing, proof points, and call-to-action hierarchy on other strategic pages."
	case model.Tier2:
		return "Reuse the persona-specific messaging and supporting evidence on sibling tactical pages."
	case model.Tier3:
		return "Apply the same clarity and scannability patterns to the remaining operational pages."
	case model.Tier4Social:
		return "Carry the brand voice and engagement hooks across all social profiles."
	}
	return "Replicate the highest-scoring page structure within this tier."
}
