package analyze

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// Copy example kinds.
const (
	KindQuotedCopy     = "quoted_copy"
	KindPersonaInsight = "persona_insight"
)

// FieldCompleteness reports how often one free-text field is populated.
type FieldCompleteness struct {
	Field      string  `json:"field"`
	Populated  int     `json:"populated"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// CopyExample is one mined effective/ineffective copy finding.
type CopyExample struct {
	URL       string  `json:"url"`
	PageTitle string  `json:"page_title"`
	Score     float64 `json:"score"`
	Kind      string  `json:"kind"`
	Quote     string  `json:"quote,omitempty"`
	Analysis  string  `json:"analysis,omitempty"`
}

// ImpactEntry is one deduplicated business-impact statement.
type ImpactEntry struct {
	URL   string  `json:"url"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// QuoteBuckets holds copy-ready persona quotes by slant.
type QuoteBuckets struct {
	Positive  []string `json:"positive,omitempty"`
	Negative  []string `json:"negative,omitempty"`
	Strategic []string `json:"strategic,omitempty"`
}

// VoiceAnalysis is the persona-voice artifact for a single persona.
type VoiceAnalysis struct {
	PersonaID       string              `json:"persona_id"`
	Completeness    []FieldCompleteness `json:"completeness"`
	EffectiveCopy   []CopyExample       `json:"effective_copy,omitempty"`
	IneffectiveCopy []CopyExample       `json:"ineffective_copy,omitempty"`
	BusinessImpact  []ImpactEntry       `json:"business_impact,omitempty"`
	Quotes          QuoteBuckets        `json:"quotes"`
}

// PersonaVoice mines one persona's records for voice evidence: copy
// examples, business-impact statements, and copy-ready quotes.
func (a *Analyzer) PersonaVoice(persona string, records []*model.Record) VoiceAnalysis {
	va := VoiceAnalysis{
		PersonaID:    persona,
		Completeness: completeness(records),
	}

	va.EffectiveCopy = a.mineCopy(records, func(r *model.Record) string { return r.EffectiveCopy })
	va.IneffectiveCopy = a.mineCopy(records, func(r *model.Record) string { return r.IneffectiveCopy })
	va.BusinessImpact = mineBusinessImpact(records)
	va.Quotes = mineQuotes(records)
	return va
}

// textFields are the free-text fields tracked for completeness, in report
// order.
var textFields = []struct {
	name string
	get  func(*model.Record) string
}{
	{"evidence", func(r *model.Record) string { return r.Evidence }},
	{"effective_copy_examples", func(r *model.Record) string { return r.EffectiveCopy }},
	{"ineffective_copy_examples", func(r *model.Record) string { return r.IneffectiveCopy }},
	{"trust_credibility_assessment", func(r *model.Record) string { return r.TrustAssessment }},
	{"business_impact_analysis", func(r *model.Record) string { return r.BusinessImpact }},
	{"information_gaps", func(r *model.Record) string { return r.InformationGaps }},
	{"first_impression", func(r *model.Record) string { return r.FirstImpression }},
	{"language_tone_feedback", func(r *model.Record) string { return r.LanguageTone }},
	{"persona_pain_points", func(r *model.Record) string { return r.PersonaPainPoints }},
}

func completeness(records []*model.Record) []FieldCompleteness {
	out := make([]FieldCompleteness, 0, len(textFields))
	for _, f := range textFields {
		fc := FieldCompleteness{Field: f.name, Total: len(records)}
		for _, r := range records {
			if strings.TrimSpace(f.get(r)) != "" {
				fc.Populated++
			}
		}
		if fc.Total > 0 {
			fc.Percentage = 100 * float64(fc.Populated) / float64(fc.Total)
		}
		out = append(out, fc)
	}
	return out
}

// minSegmentText is the minimum field length for a row to enter copy mining.
const minSegmentText = 10

// minPageText drops pages whose deduplicated text is too thin to mine.
const minPageText = 20

// quotedExtract captures quoted runs of at least ten characters together
// with the trailing analysis text.
var quotedExtract = regexp.MustCompile(`"([^"]{10,})"\s*(:?\s*[^|"]*)`)

// mineCopy implements the per-URL copy-processing pipeline: aggregate,
// deduplicate with a quoted-sentinel key, drop thin pages, then split each
// segment into quoted_copy or persona_insight examples.
func (a *Analyzer) mineCopy(records []*model.Record, get func(*model.Record) string) []CopyExample {
	type acc struct {
		segments []string
		scores   []float64
		pageID   string
	}
	groups := make(map[string]*acc)
	var order []string

	for _, r := range records {
		text := strings.TrimSpace(get(r))
		if len(text) <= minSegmentText {
			continue
		}
		g := groups[r.URL]
		if g == nil {
			g = &acc{pageID: r.PageID}
			groups[r.URL] = g
			order = append(order, r.URL)
		}
		// Rows may already carry " | "-joined text from an earlier roll-up.
		for _, part := range strings.Split(text, " | ") {
			if strings.TrimSpace(part) != "" {
				g.segments = append(g.segments, strings.TrimSpace(part))
			}
		}
		if v, ok := r.Score(); ok {
			g.scores = append(g.scores, v)
		}
	}

	var out []CopyExample
	for _, url := range order {
		g := groups[url]
		cleaned := dedupSegments(g.segments)
		if len(strings.Join(cleaned, " | ")) <= minPageText {
			continue
		}
		score := mean(g.scores)
		title := pageTitle(url, g.pageID)

		for _, segment := range cleaned {
			matches := quotedExtract.FindAllStringSubmatch(segment, -1)
			if len(matches) == 0 {
				out = append(out, CopyExample{
					URL:       url,
					PageTitle: title,
					Score:     score,
					Kind:      KindPersonaInsight,
					Analysis:  segment,
				})
				continue
			}
			for _, m := range matches {
				analysis := strings.TrimSpace(m[2])
				analysis = strings.TrimSpace(strings.TrimPrefix(analysis, ":"))
				out = append(out, CopyExample{
					URL:       url,
					PageTitle: title,
					Score:     score,
					Kind:      KindQuotedCopy,
					Quote:     m[1],
					Analysis:  analysis,
				})
			}
		}
	}
	return out
}

// impactDedupPrefix is the prefix length of the business-impact dedup key.
const impactDedupPrefix = 100

// minImpactText filters out trivially short impact statements.
const minImpactText = 30

// mineBusinessImpact applies the less aggressive dedup used for
// business-impact analysis: first 100 chars, case-folded.
func mineBusinessImpact(records []*model.Record) []ImpactEntry {
	seen := make(map[string]bool)
	var out []ImpactEntry
	for _, r := range records {
		text := strings.TrimSpace(r.BusinessImpact)
		if len(text) <= minImpactText {
			continue
		}
		key := foldKey(truncate(text, impactDedupPrefix))
		if seen[key] {
			continue
		}
		seen[key] = true
		score, _ := r.Score()
		out = append(out, ImpactEntry{URL: r.URL, Text: text, Score: score})
	}
	return out
}

// Persona-voice sentence patterns.
var (
	asAPattern      = regexp.MustCompile(`(?i)\bAs an? [^.!?|]{5,160}[.!?]`)
	firstPersonI    = regexp.MustCompile(`(?i)\bI (?:am|was|need|want|expect|feel|can'?t|couldn'?t|don'?t|found|would)[^.!?|]{3,160}[.!?]`)
	firstPersonMy   = regexp.MustCompile(`(?i)\bMy [^.!?|]{5,160}[.!?]`)
	recommendSent   = regexp.MustCompile(`(?i)\b(?:I recommend|should|needs? to|must)[^.!?|]{5,160}[.!?]`)
	negativeMarkers = []string{"confus", "lack", "miss", "unclear", "frustrat", "concern", "disappoint", "hard to", "can't", "cannot", "no ", "not "}
)

// quoteCap limits each bucket of copy-ready quotes.
const quoteCap = 5

// mineQuotes regex-extracts persona-voice sentences from the three narrative
// fields and buckets them into positive, negative, and strategic.
func mineQuotes(records []*model.Record) QuoteBuckets {
	var buckets QuoteBuckets
	seen := make(map[string]bool)

	add := func(bucket *[]string, sentence string) {
		sentence = strings.TrimSpace(sentence)
		key := foldKey(sentence)
		if sentence == "" || seen[key] || len(*bucket) >= quoteCap {
			return
		}
		seen[key] = true
		*bucket = append(*bucket, sentence)
	}

	for _, r := range records {
		for _, text := range []string{r.FirstImpression, r.PersonaPainPoints, r.LanguageTone} {
			if strings.TrimSpace(text) == "" {
				continue
			}
			for _, m := range recommendSent.FindAllString(text, -1) {
				add(&buckets.Strategic, m)
			}
			var personaSentences []string
			for _, re := range []*regexp.Regexp{asAPattern, firstPersonI, firstPersonMy} {
				personaSentences = append(personaSentences, re.FindAllString(text, -1)...)
			}
			sort.Strings(personaSentences)
			for _, s := range personaSentences {
				if isNegative(s) {
					add(&buckets.Negative, s)
				} else {
					add(&buckets.Positive, s)
				}
			}
		}
	}
	return buckets
}

func isNegative(sentence string) bool {
	lower := strings.ToLower(sentence)
	return containsAny(lower, negativeMarkers...)
}

// extractQuotes pulls the quoted runs out of an effective-copy roll-up,
// used by success stories.
func extractQuotes(text string) []string {
	var quotes []string
	seen := make(map[string]bool)
	for _, m := range quotedExtract.FindAllStringSubmatch(text, -1) {
		key := foldKey(m[1])
		if seen[key] {
			continue
		}
		seen[key] = true
		quotes = append(quotes, m[1])
	}
	return quotes
}
