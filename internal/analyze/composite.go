package analyze

import (
	"strings"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// Composite is one strategic composite score.
type Composite struct {
	Score      float64            `json:"score"`
	Status     string             `json:"status"`
	Components map[string]float64 `json:"components"`
}

// Composites bundles the three strategic composites.
type Composites struct {
	Distinctiveness Composite `json:"distinctiveness"`
	Resonance       Composite `json:"resonance"`
	Conversion      Composite `json:"conversion"`
}

// Composites computes distinctiveness, resonance, and conversion. Text
// inputs are mapped to numerics by keyword density only when no numeric
// value is available; the heuristics are deliberately low-fidelity
// fallbacks.
func (a *Analyzer) Composites(records []*model.Record) Composites {
	return Composites{
		Distinctiveness: a.distinctiveness(records),
		Resonance:       a.resonance(records),
		Conversion:      a.conversion(records),
	}
}

// Keyword tables for the text-to-score fallbacks, per composite input.
var (
	impressionPositive = []string{"strong", "clear", "distinctive", "memorable", "professional", "confident", "compelling"}
	impressionNegative = []string{"generic", "bland", "confusing", "weak", "forgettable", "dated", "cluttered"}
	tonePositive       = []string{"consistent", "authentic", "engaging", "distinct", "on-brand", "persuasive"}
	toneNegative       = []string{"inconsistent", "generic", "jargon", "flat", "impersonal", "vague"}
	trustPositive      = []string{"testimonial", "credible", "proof", "certification", "trusted", "transparent"}
	trustNegative      = []string{"missing", "lack", "no testimonial", "unverified", "doubt", "sparse"}
)

func (a *Analyzer) distinctiveness(records []*model.Record) Composite {
	impression := textSignalMean(records, func(r *model.Record) (string, *float64) {
		return r.FirstImpression, nil
	}, impressionPositive, impressionNegative)

	var brand []float64
	for _, r := range records {
		if r.BrandPct != nil {
			brand = append(brand, *r.BrandPct/10)
		}
	}
	brandScore := meanPtr(brand)

	tone := textSignalMean(records, func(r *model.Record) (string, *float64) {
		return r.LanguageTone, nil
	}, tonePositive, toneNegative)

	components := map[string]float64{}
	score, total := 0.0, 0.0
	for _, part := range []struct {
		name   string
		value  *float64
		weight float64
	}{
		{"first_impression", impression, 0.4},
		{"brand_percentage", brandScore, 0.3},
		{"language_tone", tone, 0.3},
	} {
		if part.value == nil {
			continue
		}
		components[part.name] = *part.value
		score += *part.value * part.weight
		total += part.weight
	}

	if total == 0 {
		// Nothing to compose: fall back to the overall score.
		overall := a.BrandHealth(records).Score
		return Composite{Score: overall, Status: compositeBand(overall), Components: components}
	}
	final := clamp10(score / total)
	return Composite{Score: final, Status: compositeBand(final), Components: components}
}

func (a *Analyzer) resonance(records []*model.Record) Composite {
	var sentiment, engagement []float64
	successCount, scored := 0, 0
	for _, r := range records {
		if r.SentimentNumeric != nil {
			sentiment = append(sentiment, *r.SentimentNumeric)
		}
		if r.EngagementNumeric != nil {
			engagement = append(engagement, *r.EngagementNumeric)
		}
		if _, ok := r.Score(); ok {
			scored++
			if r.SuccessFlag {
				successCount++
			}
		}
	}
	var successRate *float64
	if scored > 0 {
		v := 10 * float64(successCount) / float64(scored)
		successRate = &v
	}
	return weighted([]weightedPart{
		{"sentiment", meanPtr(sentiment), 0.5},
		{"engagement", meanPtr(engagement), 0.3},
		{"success_rate", successRate, 0.2},
	})
}

func (a *Analyzer) conversion(records []*model.Record) Composite {
	var conversion, performance []float64
	for _, r := range records {
		if r.ConversionNumeric != nil {
			conversion = append(conversion, *r.ConversionNumeric)
		}
		if r.PerformancePct != nil {
			performance = append(performance, *r.PerformancePct/10)
		}
	}
	trust := textSignalMean(records, func(r *model.Record) (string, *float64) {
		return r.TrustAssessment, nil
	}, trustPositive, trustNegative)

	return weighted([]weightedPart{
		{"conversion", meanPtr(conversion), 0.5},
		{"trust", trust, 0.3},
		{"performance", meanPtr(performance), 0.2},
	})
}

type weightedPart struct {
	name   string
	value  *float64
	weight float64
}

func weighted(parts []weightedPart) Composite {
	components := map[string]float64{}
	score, total := 0.0, 0.0
	for _, p := range parts {
		if p.value == nil {
			continue
		}
		components[p.name] = *p.value
		score += *p.value * p.weight
		total += p.weight
	}
	if total == 0 {
		return Composite{Status: compositeBand(0), Components: components}
	}
	final := clamp10(score / total)
	return Composite{Score: final, Status: compositeBand(final), Components: components}
}

func compositeBand(score float64) string {
	switch {
	case score >= 7:
		return "Strong"
	case score >= 4:
		return "Moderate"
	}
	return "Weak"
}

// textSignalMean scores a free-text field by keyword density across
// records, returning nil when no record has usable text. Disabled per
// record when a numeric override is supplied.
func textSignalMean(records []*model.Record, get func(*model.Record) (string, *float64), positives, negatives []string) *float64 {
	var vals []float64
	for _, r := range records {
		text, numeric := get(r)
		if numeric != nil {
			vals = append(vals, *numeric)
			continue
		}
		if v, ok := textSignal(text, positives, negatives); ok {
			vals = append(vals, v)
		}
	}
	return meanPtr(vals)
}

// textSignal maps keyword hits to [0,10]: 5 is neutral, each net positive
// or negative hit shifts the score proportionally.
func textSignal(text string, positives, negatives []string) (float64, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return 0, false
	}
	pos, neg := 0, 0
	for _, kw := range positives {
		if strings.Contains(lower, kw) {
			pos++
		}
	}
	for _, kw := range negatives {
		if strings.Contains(lower, kw) {
			neg++
		}
	}
	if pos+neg == 0 {
		return 5, true
	}
	return clamp10(5 + 5*float64(pos-neg)/float64(pos+neg)), true
}
