package analyze

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// opportunityCeiling is the score below which a record counts as an
// improvement opportunity.
const opportunityCeiling = 7.0

// Opportunity is one page-level improvement opportunity, ranked by impact.
type Opportunity struct {
	PageID          string            `json:"page_id"`
	PageTitle       string            `json:"page_title"`
	URL             string            `json:"url"`
	Tier            model.Tier        `json:"tier"`
	AvgScore        float64           `json:"avg_score"`
	Impact          float64           `json:"opportunity_impact"`
	Descriptor      model.Descriptor  `json:"descriptor"`
	EffortLevel     model.EffortLevel `json:"effort_level"`
	Recommendation  string            `json:"recommendation"`
	Evidence        string            `json:"evidence,omitempty"`
	BusinessImpact  string            `json:"business_impact,omitempty"`
	EffectiveCopy   string            `json:"effective_copy,omitempty"`
	IneffectiveCopy string            `json:"ineffective_copy,omitempty"`
	TrustAssessment string            `json:"trust_assessment,omitempty"`
	InformationGaps string            `json:"information_gaps,omitempty"`
}

// Opportunities ranks the weakest pages by opportunity impact, aggregating
// record-level evidence up to the page. Impact is (10 − score) scaled by the
// tier weight when present.
func (a *Analyzer) Opportunities(records []*model.Record) []Opportunity {
	type acc struct {
		url         string
		tier        model.Tier
		scores      []float64
		impacts     []float64
		descriptors map[model.Descriptor]int
		evidence    []string
		business    []string
		effective   []string
		ineffective []string
		trust       []string
		gaps        []string
	}
	groups := make(map[string]*acc)
	var order []string

	for _, r := range records {
		score, ok := r.Score()
		if !ok || score >= opportunityCeiling {
			continue
		}
		weight := 1.0
		if r.TierWeight != nil {
			weight = *r.TierWeight
		}
		impact := (10 - score) * weight

		g := groups[r.PageID]
		if g == nil {
			g = &acc{url: r.URL, tier: r.Tier, descriptors: make(map[model.Descriptor]int)}
			groups[r.PageID] = g
			order = append(order, r.PageID)
		}
		g.scores = append(g.scores, score)
		g.impacts = append(g.impacts, impact)
		if r.Descriptor != "" {
			g.descriptors[r.Descriptor]++
		}
		appendNonEmpty(&g.evidence, r.Evidence)
		appendNonEmpty(&g.business, r.BusinessImpact)
		appendNonEmpty(&g.effective, r.EffectiveCopy)
		appendNonEmpty(&g.ineffective, r.IneffectiveCopy)
		appendNonEmpty(&g.trust, r.TrustAssessment)
		appendNonEmpty(&g.gaps, r.InformationGaps)
	}

	out := make([]Opportunity, 0, len(groups))
	for _, pageID := range order {
		g := groups[pageID]
		score := mean(g.scores)
		op := Opportunity{
			PageID:          pageID,
			PageTitle:       pageTitle(g.url, pageID),
			URL:             g.url,
			Tier:            g.tier,
			AvgScore:        score,
			Impact:          mean(g.impacts),
			Descriptor:      modalDescriptor(g.descriptors),
			EffortLevel:     effortBand(score),
			Evidence:        joinUnique(g.evidence, a.cfg.cap("evidence", 500)),
			BusinessImpact:  joinUnique(g.business, a.cfg.cap("business_impact", 300)),
			EffectiveCopy:   joinUnique(g.effective, a.cfg.cap("effective_copy_examples", 400)),
			IneffectiveCopy: joinUnique(g.ineffective, a.cfg.cap("ineffective_copy_examples", 400)),
			TrustAssessment: joinUnique(g.trust, a.cfg.cap("trust_assessment", 200)),
			InformationGaps: joinUnique(g.gaps, a.cfg.cap("information_gaps", 200)),
		}
		op.Recommendation = recommendFromEvidence(op.Evidence + " " + op.InformationGaps)
		out = append(out, op)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Impact != out[j].Impact {
			return out[i].Impact > out[j].Impact
		}
		return out[i].PageID < out[j].PageID
	})
	if len(out) > a.cfg.TopOpportunities {
		out = out[:a.cfg.TopOpportunities]
	}
	return out
}

// effortBand estimates page-level effort from the aggregated score.
func effortBand(score float64) model.EffortLevel {
	switch {
	case score < 3:
		return model.EffortHigh
	case score < 5:
		return model.EffortMedium
	}
	return model.EffortLow
}

// recommendationRules maps evidence keywords to a canned recommendation.
// First match wins; ordered from most to least specific.
var recommendationRules = []struct {
	keywords []string
	text     string
}{
	{[]string{"navigation", "menu"}, "Simplify navigation and information architecture so personas can find their path quickly."},
	{[]string{"trust", "credibility", "testimonial"}, "Add trust signals: testimonials, certifications, client logos, and case studies."},
	{[]string{"cta", "call to action", "conversion"}, "Clarify the primary call to action and the next step on the page."},
	{[]string{"brand", "generic"}, "Strengthen brand differentiation and sharpen the unique value proposition."},
	{[]string{"unclear", "confusing", "vague", "copy"}, "Rewrite the copy for clarity and persona relevance."},
}

func recommendFromEvidence(evidence string) string {
	lower := strings.ToLower(evidence)
	for _, rule := range recommendationRules {
		if containsAny(lower, rule.keywords...) {
			return rule.text
		}
	}
	return "Review the page experience against persona expectations and close the scoring gap."
}

var titleCaser = cases.Title(language.English)

// pageTitle derives a display title from the URL slug, falling back to the
// page ID.
func pageTitle(url, pageID string) string {
	slug := lastSegment(url)
	if slug == "" {
		slug = pageID
	}
	slug = strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return titleCaser.String(slug)
}

func lastSegment(url string) string {
	trimmed := strings.Trim(url, "/")
	if i := strings.Index(trimmed, "://"); i >= 0 {
		trimmed = trimmed[i+3:]
	}
	segs := strings.Split(trimmed, "/")
	if len(segs) <= 1 {
		return "home"
	}
	return segs[len(segs)-1]
}

func modalDescriptor(counts map[model.Descriptor]int) model.Descriptor {
	var best model.Descriptor
	bestN := 0
	ordered := []model.Descriptor{
		model.DescriptorCritical, model.DescriptorConcern, model.DescriptorWarn,
		model.DescriptorGood, model.DescriptorExcellent,
	}
	for _, d := range ordered {
		if counts[d] > bestN {
			best, bestN = d, counts[d]
		}
	}
	return best
}

func appendNonEmpty(dst *[]string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = append(*dst, v)
	}
}
