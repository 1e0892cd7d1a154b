package analyze

import (
	"sort"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// TierPerformance aggregates record scores within one tier.
type TierPerformance struct {
	Tier          model.Tier `json:"tier"`
	TierName      string     `json:"tier_name"`
	AvgScore      float64    `json:"avg_score"`
	StdDev        float64    `json:"std_dev"`
	Count         int        `json:"count"`
	AvgSentiment  *float64   `json:"avg_sentiment,omitempty"`
	AvgEngagement *float64   `json:"avg_engagement,omitempty"`
	AvgConversion *float64   `json:"avg_conversion,omitempty"`
}

// TierPerformance groups records by tier and computes the canonical
// avg_score (final score, falling back to raw) plus reaction means when
// present. Ordered by descending score, tier ascending as tie-breaker.
func (a *Analyzer) TierPerformance(records []*model.Record) []TierPerformance {
	type acc struct {
		scores     []float64
		sentiment  []float64
		engagement []float64
		conversion []float64
		count      int
	}
	groups := make(map[model.Tier]*acc)

	for _, r := range records {
		g := groups[r.Tier]
		if g == nil {
			g = &acc{}
			groups[r.Tier] = g
		}
		g.count++
		if v, ok := r.Score(); ok {
			g.scores = append(g.scores, v)
		}
		if r.SentimentNumeric != nil {
			g.sentiment = append(g.sentiment, *r.SentimentNumeric)
		}
		if r.EngagementNumeric != nil {
			g.engagement = append(g.engagement, *r.EngagementNumeric)
		}
		if r.ConversionNumeric != nil {
			g.conversion = append(g.conversion, *r.ConversionNumeric)
		}
	}

	out := make([]TierPerformance, 0, len(groups))
	for tier, g := range groups {
		tp := TierPerformance{
			Tier:     tier,
			TierName: tier.DisplayName(),
			AvgScore: mean(g.scores),
			StdDev:   stddev(g.scores),
			Count:    g.count,
		}
		tp.AvgSentiment = meanPtr(g.sentiment)
		tp.AvgEngagement = meanPtr(g.engagement)
		tp.AvgConversion = meanPtr(g.conversion)
		out = append(out, tp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgScore != out[j].AvgScore {
			return out[i].AvgScore > out[j].AvgScore
		}
		return out[i].Tier < out[j].Tier
	})
	return out
}

func meanPtr(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	m := mean(vals)
	return &m
}
