package model

import (
	"fmt"
	"time"
)

// ScoreOrigin records which source column the canonical final_score came from.
type ScoreOrigin string

const (
	ScoreOriginFinal ScoreOrigin = "final_score"
	ScoreOriginRaw   ScoreOrigin = "raw_score"
	ScoreOriginAvg   ScoreOrigin = "avg_score"
	ScoreOriginNone  ScoreOrigin = "none"
)

// EffortLevel estimates the work to act on a record's evidence.
type EffortLevel string

const (
	EffortLow    EffortLevel = "Low"
	EffortMedium EffortLevel = "Medium"
	EffortHigh   EffortLevel = "High"
)

// SentimentLabel is the qualitative persona-reaction sentiment.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNeutral  SentimentLabel = "Neutral"
	SentimentNegative SentimentLabel = "Negative"
)

// ReactionLevel grades engagement and conversion likelihood.
type ReactionLevel string

const (
	ReactionHigh   ReactionLevel = "High"
	ReactionMedium ReactionLevel = "Medium"
	ReactionLow    ReactionLevel = "Low"
)

// Record is one row of the unified dataset, keyed by
// (page_id, persona_id, criterion_id).
type Record struct {
	// Identity.
	PageID      string `json:"page_id"`
	PersonaID   string `json:"persona_id"`
	CriterionID string `json:"criterion_id"`
	URL         string `json:"url"`
	URLSlug     string `json:"url_slug"`
	Tier        Tier   `json:"tier"`
	TierName    string `json:"tier_name"`

	// Scoring. Optional numerics are pointers so "missing" is distinguishable
	// from zero.
	RawScore        float64     `json:"raw_score,omitempty"`
	RawScoreSet     bool        `json:"-"`
	FinalScore      float64     `json:"final_score,omitempty"`
	FinalScoreSet   bool        `json:"-"`
	ScoreOrigin     ScoreOrigin `json:"score_origin"`
	WeightPct       *float64    `json:"weight_pct,omitempty"`
	TierWeight      *float64    `json:"tier_weight,omitempty"`
	BrandPct        *float64    `json:"brand_percentage,omitempty"`
	PerformancePct  *float64    `json:"performance_percentage,omitempty"`
	CriterionGap    *float64    `json:"criterion_gap,omitempty"`
	PotentialImpact *float64    `json:"potential_impact,omitempty"`

	// Classification.
	Descriptor       Descriptor       `json:"descriptor,omitempty"`
	BrandHealth      HealthDescriptor `json:"brand_health_descriptor,omitempty"`
	EffortLevel      EffortLevel      `json:"effort_level,omitempty"`

	// Derived flags.
	CriticalIssueFlag bool `json:"critical_issue_flag"`
	QuickWinFlag      bool `json:"quick_win_flag"`
	QuickWinSet       bool `json:"-"`
	SuccessFlag       bool `json:"success_flag"`

	// Qualitative evidence.
	Evidence           string `json:"evidence,omitempty"`
	EvidenceLength     int    `json:"evidence_length,omitempty"`
	EffectiveCopy      string `json:"effective_copy_examples,omitempty"`
	IneffectiveCopy    string `json:"ineffective_copy_examples,omitempty"`
	TrustAssessment    string `json:"trust_credibility_assessment,omitempty"`
	BusinessImpact     string `json:"business_impact_analysis,omitempty"`
	InformationGaps    string `json:"information_gaps,omitempty"`
	FirstImpression    string `json:"first_impression,omitempty"`
	LanguageTone       string `json:"language_tone_feedback,omitempty"`
	PersonaPainPoints  string `json:"persona_pain_points,omitempty"`

	// Persona-reaction numerics, derived when absent.
	SentimentNumeric   *float64       `json:"sentiment_numeric,omitempty"`
	EngagementNumeric  *float64       `json:"engagement_numeric,omitempty"`
	ConversionNumeric  *float64       `json:"conversion_numeric,omitempty"`
	SentimentLabel     SentimentLabel `json:"sentiment_label,omitempty"`
	EngagementLevel    ReactionLevel  `json:"engagement_level,omitempty"`
	ConversionLikely   ReactionLevel  `json:"conversion_likelihood,omitempty"`

	// Metadata.
	AuditedAt       time.Time `json:"audited_ts,omitempty"`
	PersonaBriefRef string    `json:"persona_brief_ref,omitempty"`

	// Source-only columns preserved as opaque pass-through.
	Extra map[string]string `json:"extra,omitempty"`
}

// Key returns the composite record key.
func (r *Record) Key() string {
	return fmt.Sprintf("%s|%s|%s", r.PageID, r.PersonaID, r.CriterionID)
}

// Score returns the authoritative score for the record: final_score when
// present, raw_score otherwise. ok is false when neither is set.
func (r *Record) Score() (v float64, ok bool) {
	if r.FinalScoreSet {
		return r.FinalScore, true
	}
	if r.RawScoreSet {
		return r.RawScore, true
	}
	return 0, false
}

// GapBase returns the score used for criterion_gap: raw_score when present,
// final_score otherwise.
func (r *Record) GapBase() (v float64, ok bool) {
	if r.RawScoreSet {
		return r.RawScore, true
	}
	if r.FinalScoreSet {
		return r.FinalScore, true
	}
	return 0, false
}

// SetExtra stores a pass-through source column.
func (r *Record) SetExtra(key, value string) {
	if r.Extra == nil {
		r.Extra = make(map[string]string)
	}
	r.Extra[key] = value
}

// RawRecommendation is one row of the optional recommendations.csv, kept as a
// side table alongside the unified records.
type RawRecommendation struct {
	PageID          string `json:"page_id"`
	Recommendation  string `json:"recommendation"`
	StrategicImpact string `json:"strategic_impact,omitempty"`
}
