package unify

import (
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// Source file names recognized in the input directory.
const (
	FilePages         = "pages.csv"
	FileCriteria      = "criteria_scores.csv"
	FileExperience    = "experience.csv"
	FileRecs          = "recommendations.csv"
	FileScorecard     = "scorecard_data.csv"
	FilePersonaBrief  = "persona_brief.yaml"
)

// requiredColumns lists the columns each source must carry to be joined.
var requiredColumns = map[string][]string{
	FilePages:      {"page_id", "url", "tier", "final_score"},
	FileCriteria:   {"page_id", "criterion_code", "raw_score"},
	FileExperience: {"page_id", "persona_id"},
	FileRecs:       {"page_id", "recommendation"},
	FileScorecard:  {"page", "url", "tier", "final_score"},
}

// Load reads the audit CSVs from dir and merges them into the unified record
// table. Missing non-base sources and malformed files degrade to warnings;
// only the absence of both base tables is fatal.
func Load(dir string) (*model.RecordSet, error) {
	rs := &model.RecordSet{}

	pages := loadSource(rs, dir, FilePages)
	scorecard := loadSource(rs, dir, FileScorecard)
	criteria := loadSource(rs, dir, FileCriteria)
	experience := loadSource(rs, dir, FileExperience)
	recs := loadSource(rs, dir, FileRecs)

	base := pages
	if base == nil {
		if scorecard == nil {
			return nil, eris.Wrap(model.ErrMissingBaseData, "unify: load "+dir)
		}
		scorecard.Rename("page", "page_id")
		base = scorecard
	}

	criteriaByPage := groupRows(criteria, "page_id")
	experienceByPage := groupRows(experience, "page_id")
	recAgg, rawRecs := aggregateRecommendations(recs)
	rs.RawRecommendations = rawRecs

	if briefPath := filepath.Join(dir, FilePersonaBrief); fileExists(briefPath) {
		if brief, err := model.LoadPersonaBrief(briefPath); err == nil {
			rs.PersonaBrief = brief
		} else {
			rs.Warn(model.WarnMalformedInput, FilePersonaBrief, "unify: invalid persona brief, ignored")
		}
	}

	for _, baseRow := range base.Rows {
		pageID := baseRow["page_id"]
		if pageID == "" {
			continue
		}

		personaRows := experienceByPage[pageID]
		if len(personaRows) == 0 {
			personaRows = []map[string]string{nil}
		}
		criterionRows := criteriaByPage[pageID]
		if len(criterionRows) == 0 {
			criterionRows = []map[string]string{nil}
		}

		for _, personaRow := range personaRows {
			for _, criterionRow := range criterionRows {
				r := &model.Record{PageID: pageID}
				applyRow(r, baseRow)
				applyRow(r, criterionRow)
				applyRow(r, personaRow)
				if agg, ok := recAgg[pageID]; ok {
					r.SetExtra("recommendation_count", agg.count)
					if agg.impact != "" {
						r.SetExtra("strategic_impact", agg.impact)
					}
				}
				finishRecord(r, rs)
				if err := rs.Append(r); err != nil {
					return nil, err
				}
			}
		}
	}

	zap.L().Info("unify: load complete",
		zap.String("dir", dir),
		zap.Int("records", len(rs.Records)),
		zap.Int("pages", len(rs.Pages())),
		zap.Int("personas", len(rs.Personas())),
		zap.Int("warnings", len(rs.Warnings)),
	)

	return rs, nil
}

// loadSource reads one CSV source, validating required columns. Any failure
// other than file absence is downgraded to a warning and the source skipped.
func loadSource(rs *model.RecordSet, dir, name string) *Table {
	path := filepath.Join(dir, name)
	if !fileExists(path) {
		return nil
	}

	t, err := ReadTable(path, name)
	if err != nil {
		rs.Warn(model.WarnMalformedInput, name, "unify: parse failed, source skipped: "+eris.ToString(err, false))
		return nil
	}

	if missing := t.MissingColumns(requiredColumns[name]...); len(missing) > 0 {
		rs.Warn(model.WarnMalformedInput, name,
			"unify: missing required columns "+strings.Join(missing, ", ")+", source skipped")
		return nil
	}
	return t
}

// groupRows indexes table rows by a key column. Nil table yields an empty map.
func groupRows(t *Table, key string) map[string][]map[string]string {
	out := make(map[string][]map[string]string)
	if t == nil {
		return out
	}
	for _, row := range t.Rows {
		k := row[key]
		if k == "" {
			continue
		}
		out[k] = append(out[k], row)
	}
	return out
}

type recSummary struct {
	count  string
	impact string
}

// aggregateRecommendations reduces recommendations.csv to a per-page count
// and the modal strategic_impact, and keeps the raw rows as a side table.
func aggregateRecommendations(t *Table) (map[string]recSummary, []model.RawRecommendation) {
	if t == nil {
		return nil, nil
	}

	counts := make(map[string]int)
	impacts := make(map[string]map[string]int)
	var raw []model.RawRecommendation

	for _, row := range t.Rows {
		pageID := row["page_id"]
		if pageID == "" {
			continue
		}
		counts[pageID]++
		raw = append(raw, model.RawRecommendation{
			PageID:          pageID,
			Recommendation:  row["recommendation"],
			StrategicImpact: row["strategic_impact"],
		})
		if imp := row["strategic_impact"]; imp != "" {
			if impacts[pageID] == nil {
				impacts[pageID] = make(map[string]int)
			}
			impacts[pageID][imp]++
		}
	}

	out := make(map[string]recSummary, len(counts))
	for pageID, n := range counts {
		out[pageID] = recSummary{
			count:  itoa(n),
			impact: modal(impacts[pageID]),
		}
	}
	return out, raw
}

// modal returns the most frequent key, ties broken alphabetically.
func modal(counts map[string]int) string {
	var best string
	bestN := 0
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best
}

// applyRow copies a source row onto a record. Left sources win on
// collisions; the losing value is preserved under a "_src" suffix.
func applyRow(r *model.Record, row map[string]string) {
	if row == nil {
		return
	}
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		applyColumn(r, col, row[col])
	}
}

// applyColumn assigns one source column to its canonical record field, or to
// the pass-through map when no canonical field exists.
func applyColumn(r *model.Record, col, val string) {
	if val == "" {
		return
	}
	switch col {
	case "page_id":
		setString(&r.PageID, col, val, r)
	case "url":
		setString(&r.URL, col, val, r)
	case "tier":
		if r.Tier == "" {
			r.Tier = model.ParseTier(val)
			if r.Tier == model.TierUnknown {
				r.SetExtra("tier_raw", val)
			}
		} else if model.ParseTier(val) != r.Tier {
			r.SetExtra(col+"_src", val)
		}
	case "tier_name":
		setString(&r.TierName, col, val, r)
	case "persona_id":
		setString(&r.PersonaID, col, val, r)
	case "criterion_code", "criterion_id":
		setString(&r.CriterionID, col, val, r)
	case "final_score":
		if v, ok := ParseFloat(val); ok && !r.FinalScoreSet {
			r.FinalScore, r.FinalScoreSet = clampScore(v), true
			r.ScoreOrigin = model.ScoreOriginFinal
		} else if r.FinalScoreSet {
			r.SetExtra(col+"_src", val)
		}
	case "raw_score":
		if v, ok := ParseFloat(val); ok && !r.RawScoreSet {
			r.RawScore, r.RawScoreSet = clampScore(v), true
		} else if r.RawScoreSet {
			r.SetExtra(col+"_src", val)
		}
	case "avg_score":
		if v, ok := ParseFloat(val); ok && !r.FinalScoreSet {
			r.FinalScore, r.FinalScoreSet = clampScore(v), true
			r.ScoreOrigin = model.ScoreOriginAvg
		} else {
			r.SetExtra(col, val)
		}
	case "weight_pct":
		setFloat(&r.WeightPct, col, val, r)
	case "tier_weight":
		setFloat(&r.TierWeight, col, val, r)
	case "brand_percentage":
		setFloat(&r.BrandPct, col, val, r)
	case "performance_percentage":
		setFloat(&r.PerformancePct, col, val, r)
	case "sentiment_numeric":
		setFloat(&r.SentimentNumeric, col, val, r)
	case "engagement_numeric":
		setFloat(&r.EngagementNumeric, col, val, r)
	case "conversion_numeric":
		setFloat(&r.ConversionNumeric, col, val, r)
	case "sentiment_label":
		if r.SentimentLabel == "" {
			r.SentimentLabel = model.SentimentLabel(titleWord(val))
		}
	case "engagement_level":
		if r.EngagementLevel == "" {
			r.EngagementLevel = model.ReactionLevel(titleWord(val))
		}
	case "conversion_likelihood":
		if r.ConversionLikely == "" {
			r.ConversionLikely = model.ReactionLevel(titleWord(val))
		}
	case "quick_win_flag":
		r.QuickWinFlag, r.QuickWinSet = parseBool(val), true
	case "critical_issue_flag":
		r.CriticalIssueFlag = parseBool(val)
	case "success_flag":
		r.SuccessFlag = parseBool(val)
	case "evidence":
		setString(&r.Evidence, col, val, r)
	case "effective_copy_examples":
		setString(&r.EffectiveCopy, col, val, r)
	case "ineffective_copy_examples":
		setString(&r.IneffectiveCopy, col, val, r)
	case "trust_credibility_assessment":
		setString(&r.TrustAssessment, col, val, r)
	case "business_impact_analysis":
		setString(&r.BusinessImpact, col, val, r)
	case "information_gaps":
		setString(&r.InformationGaps, col, val, r)
	case "first_impression":
		setString(&r.FirstImpression, col, val, r)
	case "language_tone_feedback":
		setString(&r.LanguageTone, col, val, r)
	case "persona_pain_points":
		setString(&r.PersonaPainPoints, col, val, r)
	case "audited_ts":
		if r.AuditedAt.IsZero() {
			if ts, ok := parseTimestamp(val); ok {
				r.AuditedAt = ts
			} else {
				r.SetExtra(col, val)
			}
		}
	case "persona_brief_ref":
		setString(&r.PersonaBriefRef, col, val, r)
	default:
		if _, exists := r.Extra[col]; exists {
			r.SetExtra(col+"_src", val)
		} else {
			r.SetExtra(col, val)
		}
	}
}

// finishRecord fills identity fields computed from joined values.
func finishRecord(r *model.Record, rs *model.RecordSet) {
	if r.Tier == "" {
		r.Tier = model.TierUnknown
	}
	if r.TierName == "" {
		r.TierName = r.Tier.DisplayName()
	}
	if r.URLSlug == "" {
		r.URLSlug = Slug(r.URL)
	}
	if r.ScoreOrigin == "" {
		if r.RawScoreSet {
			r.ScoreOrigin = model.ScoreOriginRaw
		} else {
			r.ScoreOrigin = model.ScoreOriginNone
		}
	}
	if r.PersonaBriefRef == "" && rs.PersonaBrief != nil {
		r.PersonaBriefRef = rs.PersonaBrief.ID
	}
}

// Slug derives a short identifier from a URL's last path segment.
func Slug(raw string) string {
	if raw == "" {
		return ""
	}
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return "home"
	}
	segs := strings.Split(path, "/")
	slug := segs[len(segs)-1]
	slug = strings.TrimSuffix(slug, ".html")
	return strings.ToLower(slug)
}

func setString(dst *string, col, val string, r *model.Record) {
	if *dst == "" {
		*dst = val
	} else if *dst != val {
		r.SetExtra(col+"_src", val)
	}
}

func setFloat(dst **float64, col, val string, r *model.Record) {
	v, ok := ParseFloat(val)
	if !ok {
		return
	}
	if *dst == nil {
		*dst = &v
	} else if **dst != v {
		r.SetExtra(col+"_src", val)
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "t":
		return true
	}
	return false
}

func titleWord(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
