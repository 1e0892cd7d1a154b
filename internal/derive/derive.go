// Package derive enriches the unified record set with flags, gaps, effort
// levels, descriptors, and sentiment derivations. All derivations are pure
// functions of a single record; input-provided values always win over
// derived ones.
package derive

import (
	"go.uber.org/zap"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// Effort bands over evidence length, in characters.
const (
	effortLowMax  = 300
	effortHighMin = 800
)

// Options tune the score-band fallbacks.
type Options struct {
	QuickWinLow  float64
	QuickWinHigh float64
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{QuickWinLow: 2.0, QuickWinHigh: 6.0}
}

// Enrich fills the derived fields of every record in place, then freezes the
// set. Total: never fails, and enriching an already-frozen set is a no-op.
func Enrich(rs *model.RecordSet, opts Options) *model.RecordSet {
	if rs.Frozen() {
		return rs
	}
	for _, r := range rs.Records {
		enrichRecord(r, opts)
	}
	rs.Freeze()
	zap.L().Info("derive: enrichment complete", zap.Int("records", len(rs.Records)))
	return rs
}

func enrichRecord(r *model.Record, opts Options) {
	canonicalizeScore(r)
	deriveScoring(r)
	deriveClassification(r)
	deriveReactions(r)
	deriveFlags(r, opts)
}

// canonicalizeScore promotes raw_score to final_score when no final score
// arrived from any source. The origin discriminator keeps the promotion
// debuggable.
func canonicalizeScore(r *model.Record) {
	if !r.FinalScoreSet && r.RawScoreSet {
		r.FinalScore = r.RawScore
		r.FinalScoreSet = true
		r.ScoreOrigin = model.ScoreOriginRaw
	}
	if r.ScoreOrigin == "" {
		r.ScoreOrigin = model.ScoreOriginNone
	}
}

func deriveScoring(r *model.Record) {
	if gapBase, ok := r.GapBase(); ok && r.CriterionGap == nil {
		gap := 10 - gapBase
		r.CriterionGap = &gap
	}

	r.EvidenceLength = len(r.Evidence)

	if r.EffortLevel == "" {
		switch {
		case r.EvidenceLength == 0:
			r.EffortLevel = model.EffortMedium
		case r.EvidenceLength < effortLowMax:
			r.EffortLevel = model.EffortLow
		case r.EvidenceLength > effortHighMin:
			r.EffortLevel = model.EffortHigh
		default:
			r.EffortLevel = model.EffortMedium
		}
	}

	if r.CriterionGap != nil && r.PotentialImpact == nil {
		weight := 1.0
		if r.WeightPct != nil {
			weight = *r.WeightPct
		}
		impact := *r.CriterionGap * weight * 0.1
		r.PotentialImpact = &impact
	}

	// tier_weight is deliberately not defaulted here: opportunity impact
	// uses weight 1.0 when the source did not supply one.
	// When only one side of the focus split is supplied, the other is its
	// complement; tier defaults apply only when both are absent.
	switch {
	case r.BrandPct == nil && r.PerformancePct == nil:
		brand, perf := r.Tier.Split()
		r.BrandPct = &brand
		r.PerformancePct = &perf
	case r.BrandPct == nil:
		brand := clampPct(100 - *r.PerformancePct)
		r.BrandPct = &brand
	case r.PerformancePct == nil:
		perf := clampPct(100 - *r.BrandPct)
		r.PerformancePct = &perf
	}
}

func deriveClassification(r *model.Record) {
	score, ok := r.Score()
	if ok && r.Descriptor == "" {
		r.Descriptor = model.DescriptorFor(score)
	}
	if r.BrandHealth == "" {
		if ok {
			r.BrandHealth = model.HealthFor(&score)
		} else {
			r.BrandHealth = model.HealthUnknown
		}
	}
}

// deriveReactions fills sentiment, engagement, and conversion numerics and
// labels in both directions, numerics winning when both are present.
func deriveReactions(r *model.Record) {
	if r.SentimentNumeric == nil {
		var v float64
		switch {
		case r.SentimentLabel == model.SentimentPositive:
			v = 8
		case r.SentimentLabel == model.SentimentNeutral:
			v = 5
		case r.SentimentLabel == model.SentimentNegative:
			v = 2
		default:
			score, ok := r.Score()
			if !ok {
				v = -1
			} else if score >= 7 {
				v = 10 * 0.8
			} else if score >= 4 {
				v = 5
			} else {
				v = 2
			}
		}
		if v >= 0 {
			r.SentimentNumeric = &v
		}
	}
	if r.SentimentLabel == "" && r.SentimentNumeric != nil {
		r.SentimentLabel = sentimentLabelFor(*r.SentimentNumeric)
	}

	if r.EngagementNumeric == nil && r.EngagementLevel != "" {
		v := levelNumeric(r.EngagementLevel)
		r.EngagementNumeric = &v
	}
	if r.EngagementLevel == "" && r.EngagementNumeric != nil {
		r.EngagementLevel = levelFor(*r.EngagementNumeric)
	}

	if r.ConversionNumeric == nil && r.ConversionLikely != "" {
		v := levelNumeric(r.ConversionLikely)
		r.ConversionNumeric = &v
	}
	if r.ConversionLikely == "" && r.ConversionNumeric != nil {
		r.ConversionLikely = levelFor(*r.ConversionNumeric)
	}
}

func deriveFlags(r *model.Record, opts Options) {
	score, hasScore := r.Score()

	if hasScore {
		r.SuccessFlag = score >= 8.0
	}
	r.CriticalIssueFlag = r.Descriptor.IsCritical()

	if r.QuickWinSet {
		return
	}
	if r.PotentialImpact != nil && r.EvidenceLength > 0 {
		r.QuickWinFlag = *r.PotentialImpact >= 1.5 && r.EffortLevel == model.EffortLow
		return
	}
	if hasScore {
		r.QuickWinFlag = score > opts.QuickWinLow && score < opts.QuickWinHigh
	}
}

func sentimentLabelFor(v float64) model.SentimentLabel {
	switch {
	case v >= 7:
		return model.SentimentPositive
	case v >= 4:
		return model.SentimentNeutral
	}
	return model.SentimentNegative
}

func levelNumeric(l model.ReactionLevel) float64 {
	switch l {
	case model.ReactionHigh:
		return 8
	case model.ReactionMedium:
		return 5
	}
	return 2
}

func levelFor(v float64) model.ReactionLevel {
	switch {
	case v >= 7:
		return model.ReactionHigh
	case v >= 4:
		return model.ReactionMedium
	}
	return model.ReactionLow
}

func clampPct(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
