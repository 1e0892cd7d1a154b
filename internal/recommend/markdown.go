package recommend

import (
	"os"
	"regexp"
	"strings"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// Markdown audits are hand-written documents, so the parsers here tolerate
// sloppy emphasis markers. A malformed item is skipped, never fatal.

var (
	visualSectionRe = regexp.MustCompile(`(?m)^#### (Critical|High|Medium|Low) Priority Fixes[^\n]*$`)
	visualItemRe    = regexp.MustCompile(
		`\*\*Issue:\*\*\s*([^\n]+)\n\s*(?:\*\*)?Impact:\*\*\s*([^\n]+)\n\s*(?:\*\*)?Recommended Action:\*\*\s*([^\n]+)\n\s*(?:\*\*)?Timeline:\*\*\s*([^\n]+)`)

	platformHeadingRe = regexp.MustCompile(`(?m)^#{2,3}\s+([^\n#]+)$`)
	engagementLineRe  = regexp.MustCompile(`(?im)^\s*(?:\*\*)?Engagement:(?:\*\*)?\s*([^\n]+)$`)
	lowEngagementRe   = regexp.MustCompile(`(?i)\b(low|limited|modest)\b`)
)

// visualPriority maps a section priority to its (urgency, impact) pair.
var visualPriority = map[string][2]float64{
	"Critical": {10, 9},
	"High":     {8, 8},
	"Medium":   {6, 6},
	"Low":      {4, 4},
}

// visualAuditRecs parses the visual audit markdown into recommendations.
// A missing or unreadable file yields nothing beyond a warning on the set.
func (e *Engine) visualAuditRecs(path string, set *Set) []Recommendation {
	body, ok := readAudit(path, "visual_audit", set)
	if !ok {
		return nil
	}
	recs := ParseVisualAudit(body)
	if len(recs) == 0 {
		set.warn(model.WarnTextMiningNoMatch, "visual_audit",
			"no priority-fix items matched in "+path)
	}
	return recs
}

// ParseVisualAudit extracts fix items from "#### <Priority> Priority Fixes"
// sections of a visual brand audit document.
func ParseVisualAudit(body string) []Recommendation {
	headings := visualSectionRe.FindAllStringSubmatchIndex(body, -1)
	var out []Recommendation
	for i, h := range headings {
		priority := body[h[2]:h[3]]
		end := len(body)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}
		section := body[h[1]:end]
		pair := visualPriority[priority]
		for _, m := range visualItemRe.FindAllStringSubmatch(section, -1) {
			out = append(out, Recommendation{
				Title:       "Visual: " + strings.TrimSpace(m[1]),
				Category:    "Visual & Design",
				Source:      "visual_audit",
				Urgency:     pair[0],
				Impact:      pair[1],
				Timeline:    strings.TrimSpace(m[4]),
				Description: strings.TrimSpace(m[3]),
				Evidence:    []string{strings.TrimSpace(m[1]) + " — " + strings.TrimSpace(m[2])},
			})
		}
	}
	return out
}

// socialAuditRecs parses the social media audit markdown into
// recommendations for platforms with weak engagement. Healthy engagement
// across the board is normal and produces no warning.
func (e *Engine) socialAuditRecs(path string, set *Set) []Recommendation {
	body, ok := readAudit(path, "social_audit", set)
	if !ok {
		return nil
	}
	recs := ParseSocialAudit(body)
	if len(recs) == 0 && !engagementLineRe.MatchString(body) {
		set.warn(model.WarnTextMiningNoMatch, "social_audit",
			"no engagement lines matched in "+path)
	}
	return recs
}

// ParseSocialAudit emits one recommendation per platform section whose
// "Engagement:" line reads low, limited, or modest.
func ParseSocialAudit(body string) []Recommendation {
	headings := platformHeadingRe.FindAllStringSubmatchIndex(body, -1)
	var out []Recommendation
	for i, h := range headings {
		platform := strings.TrimSpace(body[h[2]:h[3]])
		end := len(body)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}
		section := body[h[1]:end]
		m := engagementLineRe.FindStringSubmatch(section)
		if m == nil || !lowEngagementRe.MatchString(m[1]) {
			continue
		}
		out = append(out, Recommendation{
			Title:    "Grow engagement on " + platform,
			Category: "Social & Engagement",
			Source:   "social_audit",
			Impact:   6,
			Urgency:  6,
			Timeline: "30-90 days",
			Evidence: []string{platform + " engagement: " + strings.TrimSpace(m[1])},
		})
	}
	return out
}

func readAudit(path, source string, set *Set) (string, bool) {
	if path == "" {
		return "", false
	}
	body, err := os.ReadFile(path)
	if err != nil {
		set.warn(model.WarnMalformedInput, source, "audit file skipped: "+err.Error())
		return "", false
	}
	return string(body), true
}
