package model

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Error kinds surfaced to the caller. Only ErrMissingBaseData (and raw I/O
// failures) propagate out of the engine; everything else is absorbed into
// the warning channel.
var (
	ErrMissingBaseData = eris.New("no base page table (pages.csv or scorecard_data.csv)")
	ErrFrozen          = eris.New("record set is frozen after enrichment")
)

// WarningKind classifies a recoverable condition.
type WarningKind string

const (
	WarnMalformedInput       WarningKind = "malformed_input"
	WarnMissingDerivedInputs WarningKind = "missing_derived_inputs"
	WarnEmptyView            WarningKind = "empty_view"
	WarnTextMiningNoMatch    WarningKind = "text_mining_no_match"
)

// Warning is a recoverable condition recorded during a run.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Source  string      `json:"source"`
	Message string      `json:"message"`
}

// RecordSet is the unified dataset produced by the unifier and enriched in
// place by the deriver. After enrichment the set is frozen: analyses hold
// read-only views and must produce new derived tables instead of writing
// back.
type RecordSet struct {
	Records            []*Record           `json:"records"`
	RawRecommendations []RawRecommendation `json:"raw_recommendations,omitempty"`
	PersonaBrief       *PersonaBrief       `json:"persona_brief,omitempty"`
	Warnings           []Warning           `json:"warnings,omitempty"`

	frozen bool
}

// Warn records a recoverable condition and mirrors it to the global logger.
func (rs *RecordSet) Warn(kind WarningKind, source, message string) {
	rs.Warnings = append(rs.Warnings, Warning{Kind: kind, Source: source, Message: message})
	zap.L().Warn(message,
		zap.String("kind", string(kind)),
		zap.String("source", source),
	)
}

// Append adds a record. Returns ErrFrozen after enrichment has completed.
func (rs *RecordSet) Append(r *Record) error {
	if rs.frozen {
		return ErrFrozen
	}
	rs.Records = append(rs.Records, r)
	return nil
}

// Freeze marks the set read-only. Called once by the deriver.
func (rs *RecordSet) Freeze() { rs.frozen = true }

// Frozen reports whether enrichment has completed.
func (rs *RecordSet) Frozen() bool { return rs.frozen }

// Personas returns the distinct persona IDs in record order.
func (rs *RecordSet) Personas() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rs.Records {
		if r.PersonaID == "" || seen[r.PersonaID] {
			continue
		}
		seen[r.PersonaID] = true
		out = append(out, r.PersonaID)
	}
	return out
}

// Pages returns the distinct page IDs in record order.
func (rs *RecordSet) Pages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rs.Records {
		if r.PageID == "" || seen[r.PageID] {
			continue
		}
		seen[r.PageID] = true
		out = append(out, r.PageID)
	}
	return out
}

// ByPersona returns the records belonging to a persona.
func (rs *RecordSet) ByPersona(personaID string) []*Record {
	var out []*Record
	for _, r := range rs.Records {
		if r.PersonaID == personaID {
			out = append(out, r)
		}
	}
	return out
}
