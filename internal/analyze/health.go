package analyze

import "github.com/sells-group/brand-audit-cli/internal/model"

// BrandHealth is the headline score for the current view.
type BrandHealth struct {
	Score  float64 `json:"score"`
	Status string  `json:"status"`
	Emoji  string  `json:"emoji"`
}

// BrandHealth computes the mean final score over the view and maps it to a
// status band. A view with no scores at all yields 0 / Critical.
func (a *Analyzer) BrandHealth(records []*model.Record) BrandHealth {
	var scores []float64
	for _, r := range records {
		if v, ok := r.Score(); ok {
			scores = append(scores, v)
		}
	}
	score := mean(scores)
	status, emoji := healthBand(score)
	return BrandHealth{Score: score, Status: status, Emoji: emoji}
}

func healthBand(score float64) (string, string) {
	switch {
	case score >= 8:
		return "Excellent", "🟢"
	case score >= 6:
		return "Good", "🟡"
	case score >= 4:
		return "Fair", "🟠"
	}
	return "Critical", "🔴"
}
