package analyze

import (
	"sort"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// PersonaComparison is one row of the cross-persona comparison table.
type PersonaComparison struct {
	PersonaID        string         `json:"persona_id"`
	AvgScore         float64        `json:"avg_score"`
	Count            int            `json:"count"`
	PageCount        int            `json:"page_count"`
	TierDistribution map[string]int `json:"tier_distribution"`
	CriticalIssues   int            `json:"critical_issues"`
}

// PersonaComparison groups records by persona.
func (a *Analyzer) PersonaComparison(records []*model.Record) []PersonaComparison {
	type acc struct {
		scores   []float64
		count    int
		pages    map[string]bool
		tiers    map[string]int
		critical int
	}
	groups := make(map[string]*acc)

	for _, r := range records {
		if r.PersonaID == "" {
			continue
		}
		g := groups[r.PersonaID]
		if g == nil {
			g = &acc{tiers: make(map[string]int), pages: make(map[string]bool)}
			groups[r.PersonaID] = g
		}
		g.count++
		g.pages[r.PageID] = true
		g.tiers[string(r.Tier)]++
		if v, ok := r.Score(); ok {
			g.scores = append(g.scores, v)
		}
		if r.CriticalIssueFlag {
			g.critical++
		}
	}

	out := make([]PersonaComparison, 0, len(groups))
	for persona, g := range groups {
		out = append(out, PersonaComparison{
			PersonaID:        persona,
			AvgScore:         mean(g.scores),
			Count:            g.count,
			PageCount:        len(g.pages),
			TierDistribution: g.tiers,
			CriticalIssues:   g.critical,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgScore != out[j].AvgScore {
			return out[i].AvgScore > out[j].AvgScore
		}
		return out[i].PersonaID < out[j].PersonaID
	})
	return out
}

// PersonaPagePerformance is one page as experienced by a single persona.
type PersonaPagePerformance struct {
	PageID   string     `json:"page_id"`
	URL      string     `json:"url"`
	Tier     model.Tier `json:"tier"`
	AvgScore float64    `json:"avg_score"`
	Evidence string     `json:"evidence,omitempty"`
}

// PersonaPages groups one persona's records by page.
func (a *Analyzer) PersonaPages(records []*model.Record, persona string) []PersonaPagePerformance {
	type acc struct {
		url      string
		tier     model.Tier
		scores   []float64
		evidence []string
	}
	groups := make(map[string]*acc)
	var order []string

	for _, r := range records {
		if r.PersonaID != persona {
			continue
		}
		g := groups[r.PageID]
		if g == nil {
			g = &acc{url: r.URL, tier: r.Tier}
			groups[r.PageID] = g
			order = append(order, r.PageID)
		}
		if v, ok := r.Score(); ok {
			g.scores = append(g.scores, v)
		}
		appendNonEmpty(&g.evidence, r.Evidence)
	}

	out := make([]PersonaPagePerformance, 0, len(groups))
	for _, pageID := range order {
		g := groups[pageID]
		out = append(out, PersonaPagePerformance{
			PageID:   pageID,
			URL:      g.url,
			Tier:     g.tier,
			AvgScore: mean(g.scores),
			Evidence: joinUnique(g.evidence, a.cfg.cap("evidence", 500)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgScore != out[j].AvgScore {
			return out[i].AvgScore > out[j].AvgScore
		}
		return out[i].PageID < out[j].PageID
	})
	return out
}
