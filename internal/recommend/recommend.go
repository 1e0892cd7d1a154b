// Package recommend aggregates improvement items from the structured flag
// sources and the free-text markdown audits, merges them per page, and
// synthesizes themes from the collected evidence.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// minEvidenceLen filters trivial evidence strings out of aggregation.
const minEvidenceLen = 20

// Recommendation is one improvement item from a single source.
type Recommendation struct {
	PageID      string   `json:"page_id,omitempty"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Source      string   `json:"source"`
	Impact      float64  `json:"impact"`  // 0-10
	Urgency     float64  `json:"urgency"` // 0-10
	Timeline    string   `json:"timeline"`
	Description string   `json:"description,omitempty"`
	Evidence    []string `json:"evidence,omitempty"`
}

// Aggregated is the page-level merge of all recommendations for one page.
type Aggregated struct {
	PageID        string   `json:"page_id"`
	Title         string   `json:"title"`
	AllCategories []string `json:"all_categories"`
	AllEvidence   []string `json:"all_evidence,omitempty"`
	Impact        float64  `json:"impact"`
	Urgency       float64  `json:"urgency"`
	PriorityScore float64  `json:"priority_score"`
	Sources       string   `json:"sources"`
	Timeline      string   `json:"timeline"`
	Themes        []string `json:"themes"`
}

// Set is the full prioritized, themed recommendation output.
type Set struct {
	Items    []Aggregated            `json:"items"`
	ByTheme  map[string][]Aggregated `json:"by_theme"`
	Warnings []model.Warning         `json:"warnings,omitempty"`
}

// warn records an absorbed condition and mirrors it to the global logger.
func (s *Set) warn(kind model.WarningKind, source, message string) {
	s.Warnings = append(s.Warnings, model.Warning{Kind: kind, Source: source, Message: message})
	zap.L().Warn(message,
		zap.String("kind", string(kind)),
		zap.String("source", source),
	)
}

// Engine aggregates recommendations over an enriched record set.
type Engine struct {
	themeTable map[string][]string
}

// NewEngine creates an Engine. A nil theme table uses the default.
func NewEngine(themeTable map[string][]string) *Engine {
	if len(themeTable) == 0 {
		themeTable = DefaultThemeTable()
	}
	return &Engine{themeTable: themeTable}
}

// Aggregate ingests all sources and produces the prioritized set. The
// markdown paths are optional; an empty path or unreadable file is skipped
// and the engine stays usable on the structured flags alone.
func (e *Engine) Aggregate(rs *model.RecordSet, visualPath, socialPath string) *Set {
	set := &Set{}
	if len(rs.Records) == 0 {
		set.warn(model.WarnEmptyView, "recommend",
			"record set is empty; only markdown audit sources can contribute")
	}

	var recs []Recommendation
	recs = append(recs, e.quickWinRecs(rs)...)
	recs = append(recs, e.criticalRecs(rs)...)
	recs = append(recs, e.successPatternRecs(rs)...)
	recs = append(recs, e.personaRecs(rs)...)
	recs = append(recs, e.contentRecs(rs)...)
	recs = append(recs, e.visualAuditRecs(visualPath, set)...)
	recs = append(recs, e.socialAuditRecs(socialPath, set)...)

	set.Items = e.aggregateByPage(recs)
	set.ByTheme = e.groupByTheme(set.Items)

	zap.L().Info("recommend: aggregation complete",
		zap.Int("sources", len(recs)),
		zap.Int("aggregated", len(set.Items)),
		zap.Int("themes", len(set.ByTheme)),
	)
	return set
}

// quickWinRecs emits one recommendation per quick-win flagged record.
func (e *Engine) quickWinRecs(rs *model.RecordSet) []Recommendation {
	var out []Recommendation
	for _, r := range rs.Records {
		if !r.QuickWinFlag {
			continue
		}
		score, _ := r.Score()
		impact := 10 - score + 2
		if impact > 10 {
			impact = 10
		}
		out = append(out, Recommendation{
			PageID:   r.PageID,
			Title:    "Quick Win: Optimize " + pageLabel(r),
			Category: CategoryFor(r.CriterionID),
			Source:   "quick_win",
			Impact:   impact,
			Urgency:  7,
			Timeline: "0-30 days",
			Evidence: evidenceOf(r),
		})
	}
	return out
}

// criticalRecs emits one recommendation per critical-issue record.
func (e *Engine) criticalRecs(rs *model.RecordSet) []Recommendation {
	var out []Recommendation
	for _, r := range rs.Records {
		if !r.CriticalIssueFlag {
			continue
		}
		out = append(out, Recommendation{
			PageID:   r.PageID,
			Title:    "CRITICAL: Fix " + pageLabel(r),
			Category: CategoryFor(r.CriterionID),
			Source:   "critical_issue",
			Impact:   10,
			Urgency:  10,
			Timeline: "0-7 days",
			Evidence: evidenceOf(r),
		})
	}
	return out
}

// successPatternRecs finds criteria that score high on at least two pages
// and recommends replicating the pattern.
func (e *Engine) successPatternRecs(rs *model.RecordSet) []Recommendation {
	type acc struct {
		pages  map[string]bool
		scores []float64
	}
	patterns := make(map[string]*acc)
	for _, r := range rs.Records {
		if !r.SuccessFlag || r.CriterionID == "" {
			continue
		}
		g := patterns[r.CriterionID]
		if g == nil {
			g = &acc{pages: make(map[string]bool)}
			patterns[r.CriterionID] = g
		}
		g.pages[r.PageID] = true
		if v, ok := r.Score(); ok {
			g.scores = append(g.scores, v)
		}
	}

	ids := make([]string, 0, len(patterns))
	for id := range patterns {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Recommendation
	for _, id := range ids {
		g := patterns[id]
		if len(g.pages) < 2 {
			continue
		}
		impact := mean(g.scores)
		if impact > 10 {
			impact = 10
		}
		out = append(out, Recommendation{
			Title:    "Replicate Success Pattern: " + humanize(id),
			Category: CategoryFor(id),
			Source:   "success_pattern",
			Impact:   impact,
			Urgency:  5,
			Timeline: "30-90 days",
			Description: fmt.Sprintf("%s scores high on %d pages; extend the pattern to the rest of the site.",
				humanize(id), len(g.pages)),
		})
	}
	return out
}

// personaRecs takes, for each persona, the three lowest-scoring pages that
// carry pain-point text.
func (e *Engine) personaRecs(rs *model.RecordSet) []Recommendation {
	type entry struct {
		pageID string
		score  float64
		pain   string
		url    string
	}
	byPersona := make(map[string][]entry)
	for _, r := range rs.Records {
		if strings.TrimSpace(r.PersonaPainPoints) == "" || r.PersonaID == "" {
			continue
		}
		score, ok := r.Score()
		if !ok {
			continue
		}
		byPersona[r.PersonaID] = append(byPersona[r.PersonaID], entry{
			pageID: r.PageID, score: score, pain: r.PersonaPainPoints, url: r.URL,
		})
	}

	personas := make([]string, 0, len(byPersona))
	for p := range byPersona {
		personas = append(personas, p)
	}
	sort.Strings(personas)

	var out []Recommendation
	for _, persona := range personas {
		entries := byPersona[persona]
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].score != entries[j].score {
				return entries[i].score < entries[j].score
			}
			return entries[i].pageID < entries[j].pageID
		})
		seen := make(map[string]bool)
		count := 0
		for _, en := range entries {
			if seen[en.pageID] {
				continue
			}
			seen[en.pageID] = true
			if count >= 3 {
				break
			}
			count++
			out = append(out, Recommendation{
				PageID:   en.pageID,
				Title:    fmt.Sprintf("Address %s pain points on %s", persona, pageLabelFrom(en.url, en.pageID)),
				Category: "Content & Copy",
				Source:   "persona_" + persona,
				Impact:   10 - en.score,
				Urgency:  6,
				Timeline: "30-90 days",
				Evidence: []string{en.pain},
			})
		}
	}
	return out
}

// contentRecs flags the five worst rows with negative sentiment or low
// engagement.
func (e *Engine) contentRecs(rs *model.RecordSet) []Recommendation {
	type entry struct {
		r     *model.Record
		score float64
	}
	var flagged []entry
	for _, r := range rs.Records {
		if r.SentimentLabel != model.SentimentNegative && r.EngagementLevel != model.ReactionLow {
			continue
		}
		score, _ := r.Score()
		flagged = append(flagged, entry{r: r, score: score})
	}
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].score != flagged[j].score {
			return flagged[i].score < flagged[j].score
		}
		return flagged[i].r.PageID < flagged[j].r.PageID
	})
	if len(flagged) > 5 {
		flagged = flagged[:5]
	}

	var out []Recommendation
	for _, en := range flagged {
		out = append(out, Recommendation{
			PageID:   en.r.PageID,
			Title:    "Rework content on " + pageLabel(en.r),
			Category: "Content & Copy",
			Source:   "content_flag",
			Impact:   10 - en.score,
			Urgency:  6,
			Timeline: "0-30 days",
			Evidence: evidenceOf(en.r),
		})
	}
	return out
}

// aggregateByPage merges recommendations sharing a page, keeping unique
// non-trivial evidence, the max impact and urgency, and all categories.
func (e *Engine) aggregateByPage(recs []Recommendation) []Aggregated {
	type acc struct {
		title      string
		categories []string
		evidence   []string
		impact     float64
		urgency    float64
		sources    []string
		timeline   string
	}
	groups := make(map[string]*acc)
	var order []string

	for _, rec := range recs {
		key := rec.PageID
		if key == "" {
			// Site-wide items (markdown audits, success patterns) stay
			// separate, keyed by their title.
			key = "~" + rec.Title
		}
		g := groups[key]
		if g == nil {
			g = &acc{title: rec.Title, timeline: rec.Timeline}
			groups[key] = g
			order = append(order, key)
		}
		if !containsStr(g.categories, rec.Category) {
			g.categories = append(g.categories, rec.Category)
		}
		for _, ev := range rec.Evidence {
			if len(strings.TrimSpace(ev)) > minEvidenceLen && !containsStr(g.evidence, ev) {
				g.evidence = append(g.evidence, ev)
			}
		}
		if rec.Impact > g.impact {
			g.impact = rec.Impact
		}
		if rec.Urgency > g.urgency {
			g.urgency = rec.Urgency
			g.timeline = rec.Timeline
		}
		if !containsStr(g.sources, rec.Source) {
			g.sources = append(g.sources, rec.Source)
		}
		if rec.Source == "quick_win" && !containsStr(g.categories, "Quick Win") {
			g.categories = append(g.categories, "Quick Win")
		}
	}

	out := make([]Aggregated, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		pageID := key
		if strings.HasPrefix(key, "~") {
			pageID = ""
		}
		agg := Aggregated{
			PageID:        pageID,
			Title:         prefixTitle(g.title, g.impact, g.categories),
			AllCategories: g.categories,
			AllEvidence:   g.evidence,
			Impact:        g.impact,
			Urgency:       g.urgency,
			PriorityScore: PriorityScore(g.impact, g.urgency),
			Sources:       strings.Join(g.sources, ", "),
			Timeline:      g.timeline,
		}
		agg.Themes = e.SynthesizeFindings(g.evidence)
		out = append(out, agg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PriorityScore != out[j].PriorityScore {
			return out[i].PriorityScore > out[j].PriorityScore
		}
		return out[i].PageID < out[j].PageID
	})
	return out
}

// PriorityScore combines impact (60%) and urgency (40%) into a 0-10 score.
func PriorityScore(impact, urgency float64) float64 {
	return ((impact/10)*0.6 + (urgency/10)*0.4) * 10
}

// prefixTitle applies the CRITICAL and quick-win title markers.
func prefixTitle(title string, impact float64, categories []string) string {
	isQuickWin := false
	for _, c := range categories {
		if strings.Contains(strings.ToLower(c), "quick win") {
			isQuickWin = true
		}
	}
	switch {
	case impact >= 8 && !strings.HasPrefix(title, "CRITICAL"):
		return "CRITICAL: " + strings.TrimPrefix(title, "Quick Win: ")
	case isQuickWin && !strings.Contains(title, "Quick Win"):
		return "⚡ Quick Win: " + title
	}
	return title
}

func evidenceOf(r *model.Record) []string {
	var out []string
	for _, v := range []string{r.Evidence, r.InformationGaps, r.PersonaPainPoints} {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func pageLabel(r *model.Record) string {
	return pageLabelFrom(r.URL, r.PageID)
}

func pageLabelFrom(url, pageID string) string {
	slug := pageID
	if url != "" {
		trimmed := strings.Trim(url, "/")
		if i := strings.Index(trimmed, "://"); i >= 0 {
			trimmed = trimmed[i+3:]
		}
		if segs := strings.Split(trimmed, "/"); len(segs) > 1 {
			slug = segs[len(segs)-1]
		} else {
			slug = "homepage"
		}
	}
	return humanize(slug)
}

func humanize(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func containsStr(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
