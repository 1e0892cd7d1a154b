package model

import "strings"

// Tier is a coarse content classification. Tier 1 pages are strategic
// (homepage, flagship product), tier 4 covers social profiles.
type Tier string

const (
	Tier1       Tier = "tier_1"
	Tier2       Tier = "tier_2"
	Tier3       Tier = "tier_3"
	Tier4Social Tier = "tier_4_social"
	TierUnknown Tier = "unknown"
)

// AllTiers returns the defined tiers in rank order, excluding unknown.
func AllTiers() []Tier {
	return []Tier{Tier1, Tier2, Tier3, Tier4Social}
}

// ParseTier normalizes a raw tier string from a source CSV. Accepts the
// canonical form plus common variants ("1", "Tier 1", "tier1", "social").
func ParseTier(s string) Tier {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "_")
	norm = strings.ReplaceAll(norm, "-", "_")
	switch norm {
	case "tier_1", "tier1", "1":
		return Tier1
	case "tier_2", "tier2", "2":
		return Tier2
	case "tier_3", "tier3", "3":
		return Tier3
	case "tier_4_social", "tier_4", "tier4", "4", "social":
		return Tier4Social
	}
	return TierUnknown
}

// DisplayName returns the human-readable tier name.
func (t Tier) DisplayName() string {
	switch t {
	case Tier1:
		return "Tier 1 - Strategic"
	case Tier2:
		return "Tier 2 - Tactical"
	case Tier3:
		return "Tier 3 - Operational"
	case Tier4Social:
		return "Tier 4 - Social"
	}
	return "Unknown"
}

// Split returns the brand/performance percentage split for the tier.
// The two values always sum to 100.
func (t Tier) Split() (brandPct, performancePct float64) {
	switch t {
	case Tier1:
		return 70, 30
	case Tier2:
		return 60, 40
	case Tier3:
		return 50, 50
	case Tier4Social:
		return 80, 20
	}
	return 50, 50
}
