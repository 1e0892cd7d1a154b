package recommend

import (
	"sort"
	"strings"
)

// generalFallbackTheme is emitted when no evidence produced any theme.
const generalFallbackTheme = "General improvements needed across multiple areas."

// theme pairs a synthesized title with its trigger keywords. Order matters:
// the first theme whose keywords hit an evidence string wins for that string.
type theme struct {
	Title    string
	Keywords []string
}

var defaultThemes = []theme{
	{
		Title:    "Missing clear calls to action or navigation",
		Keywords: []string{"cta", "call to action", "button", "next step", "conversion", "navigation", "menu", "find", "path", "journey"},
	},
	{
		Title:    "Lacks trust signals (testimonials, logos, case studies)",
		Keywords: []string{"trust", "testimonial", "logo", "certification", "case stud", "proof", "indicator"},
	},
	{
		Title:    "Inconsistent or weak brand messaging",
		Keywords: []string{"messaging", "tagline", "value prop", "tone", "voice", "brand"},
	},
	{
		Title:    "Generic, unclear, or confusing content",
		Keywords: []string{"generic", "unclear", "confusing", "vague", "content", "copy", "text"},
	},
	{
		Title:    "Visual clutter or poor layout design",
		Keywords: []string{"layout", "design", "visual", "spacing", "clutter", "ui"},
	},
}

// DefaultThemeTable returns the built-in theme keyword table in a form
// overridable from configuration.
func DefaultThemeTable() map[string][]string {
	out := make(map[string][]string, len(defaultThemes))
	for _, t := range defaultThemes {
		out[t.Title] = append([]string(nil), t.Keywords...)
	}
	return out
}

// orderedThemes materializes the engine's table back into evaluation order.
// Custom tables are evaluated in sorted-title order for determinism.
func (e *Engine) orderedThemes() []theme {
	if isDefaultTable(e.themeTable) {
		return defaultThemes
	}
	titles := make([]string, 0, len(e.themeTable))
	for t := range e.themeTable {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	out := make([]theme, 0, len(titles))
	for _, t := range titles {
		out = append(out, theme{Title: t, Keywords: e.themeTable[t]})
	}
	return out
}

func isDefaultTable(table map[string][]string) bool {
	if len(table) != len(defaultThemes) {
		return false
	}
	for _, t := range defaultThemes {
		if _, ok := table[t.Title]; !ok {
			return false
		}
	}
	return true
}

// SynthesizeFindings maps raw evidence strings onto human-readable themes.
// Each string contributes at most one theme; strings matching no keyword
// contribute a truncated "Specific Issue" entry instead. The result is
// deduplicated and sorted by title.
func (e *Engine) SynthesizeFindings(evidence []string) []string {
	themes := e.orderedThemes()
	seen := make(map[string]bool)
	for _, ev := range evidence {
		lower := strings.ToLower(strings.TrimSpace(ev))
		if lower == "" {
			continue
		}
		matched := ""
		for _, t := range themes {
			for _, kw := range t.Keywords {
				if strings.Contains(lower, kw) {
					matched = t.Title
					break
				}
			}
			if matched != "" {
				break
			}
		}
		if matched == "" {
			matched = "Specific Issue: " + truncateRunes(strings.TrimSpace(ev), 120)
		}
		seen[matched] = true
	}
	if len(seen) == 0 {
		return []string{generalFallbackTheme}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// categoryRules assigns a category from criterion_id substrings.
var categoryRules = []struct {
	substrings []string
	category   string
}{
	{[]string{"brand", "messag", "value_prop", "tagline"}, "Brand & Messaging"},
	{[]string{"visual", "design", "imagery", "layout"}, "Visual & Design"},
	{[]string{"content", "copy", "language", "tone"}, "Content & Copy"},
	{[]string{"navigation", "ux", "usability", "journey"}, "Navigation & UX"},
	{[]string{"trust", "credib", "proof", "testimonial"}, "Trust & Credibility"},
	{[]string{"technical", "performance", "speed", "load"}, "Technical & Performance"},
	{[]string{"social", "engagement"}, "Social & Engagement"},
}

// CategoryFor maps a criterion identifier to its recommendation category.
// Unknown criteria fall through to a title-cased version of the id.
func CategoryFor(criterionID string) string {
	lower := strings.ToLower(criterionID)
	for _, rule := range categoryRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.category
			}
		}
	}
	if criterionID == "" {
		return "General"
	}
	return humanize(criterionID)
}

// coarseThemes maps a fine category onto the roll-up buckets used by the
// thematic grouping view.
var coarseThemes = map[string]string{
	"Brand & Messaging":       "Brand & Messaging Strategy",
	"Visual & Design":         "Visual Identity & Design",
	"Content & Copy":          "User Experience & Trust",
	"Navigation & UX":         "User Experience & Trust",
	"Trust & Credibility":     "User Experience & Trust",
	"Technical & Performance": "User Experience & Trust",
	"Social & Engagement":     "Social Media Performance",
}

// groupByTheme buckets aggregated recommendations by coarse theme, falling
// back to source substrings for categories without a mapping.
func (e *Engine) groupByTheme(items []Aggregated) map[string][]Aggregated {
	out := make(map[string][]Aggregated)
	for _, item := range items {
		out[coarseThemeFor(item)] = append(out[coarseThemeFor(item)], item)
	}
	return out
}

func coarseThemeFor(item Aggregated) string {
	for _, cat := range item.AllCategories {
		if coarse, ok := coarseThemes[cat]; ok {
			return coarse
		}
	}
	src := strings.ToLower(item.Sources)
	switch {
	case strings.Contains(src, "social"):
		return "Social Media Performance"
	case strings.Contains(src, "visual"):
		return "Visual Identity & Design"
	case strings.Contains(src, "persona") || strings.Contains(src, "content"):
		return "User Experience & Trust"
	default:
		return "Brand & Messaging Strategy"
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
