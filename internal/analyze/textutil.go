package analyze

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// foldKey case-folds and trims a string for use as a dedup key.
func foldKey(s string) string {
	return foldCaser.String(strings.TrimSpace(s))
}

// quotedRun matches a double-quoted span used as the dedup sentinel target.
var quotedRun = regexp.MustCompile(`"[^"]*"`)

// dedupKey replaces quoted substrings with a sentinel and case-folds the
// remainder, so segments that differ only in their quoted copy compare
// equal.
func dedupKey(s string) string {
	return foldKey(quotedRun.ReplaceAllString(s, "§"))
}

// dedupSegments keeps the first occurrence of each segment under dedupKey.
// Idempotent: dedupSegments(dedupSegments(x)) == dedupSegments(x).
func dedupSegments(segments []string) []string {
	seen := make(map[string]bool, len(segments))
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		key := dedupKey(seg)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, seg)
	}
	return out
}

// joinUnique concatenates unique segments with " | ", truncated to cap runes.
func joinUnique(segments []string, max int) string {
	return truncate(strings.Join(dedupSegments(segments), " | "), max)
}

// truncate shortens s to max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
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

func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

// pearson computes the correlation coefficient of two equal-length series.
// Returns ok=false when fewer than three pairs or zero variance.
func pearson(xs, ys []float64) (r float64, ok bool) {
	n := len(xs)
	if n != len(ys) || n < 3 {
		return 0, false
	}
	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}

// containsAny checks if s contains any of the given substrings.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// clamp10 bounds a value to [0,10].
func clamp10(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
