package analyze

import (
	"sort"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

// correlationFloor is the minimum |r| for a pair to be reported.
const correlationFloor = 0.5

// CriterionScore is the aggregate for one criterion, worst first.
type CriterionScore struct {
	CriterionID      string  `json:"criterion_id"`
	MeanScore        float64 `json:"mean_score"`
	Count            int     `json:"count"`
	AffectedPersonas int     `json:"affected_personas"` // personas scoring this criterion critically
}

// CriterionCorrelation is one strongly correlated criterion pair.
type CriterionCorrelation struct {
	CriterionA string  `json:"criterion_a"`
	CriterionB string  `json:"criterion_b"`
	R          float64 `json:"r"`
	N          int     `json:"n"`
}

// TierWorstCriterion names the weakest criterion within a tier.
type TierWorstCriterion struct {
	Tier        model.Tier `json:"tier"`
	CriterionID string     `json:"criterion_id"`
	MeanScore   float64    `json:"mean_score"`
}

// CriteriaAnalysis is the criteria deep-dive artifact.
type CriteriaAnalysis struct {
	Scores        []CriterionScore       `json:"scores"`
	Correlations  []CriterionCorrelation `json:"correlations,omitempty"`
	TierWorst     []TierWorstCriterion   `json:"tier_worst,omitempty"`
}

// Criteria computes per-criterion means sorted ascending to highlight the
// worst criteria, pairwise Pearson correlations over per-(page,persona)
// score vectors, and the weakest criterion per tier.
func (a *Analyzer) Criteria(records []*model.Record) CriteriaAnalysis {
	type acc struct {
		scores   []float64
		personas map[string]bool // personas below the critical threshold
	}
	byCriterion := make(map[string]*acc)
	tierCriterion := make(map[model.Tier]map[string][]float64)

	// Observation vectors keyed by (page, persona) for the correlation
	// matrix.
	obs := make(map[string]map[string]float64)

	for _, r := range records {
		if r.CriterionID == "" {
			continue
		}
		score, ok := r.Score()
		if !ok {
			continue
		}
		g := byCriterion[r.CriterionID]
		if g == nil {
			g = &acc{personas: make(map[string]bool)}
			byCriterion[r.CriterionID] = g
		}
		g.scores = append(g.scores, score)
		if r.PersonaID != "" && (r.CriticalIssueFlag || score < a.cfg.CriticalThreshold) {
			g.personas[r.PersonaID] = true
		}

		if tierCriterion[r.Tier] == nil {
			tierCriterion[r.Tier] = make(map[string][]float64)
		}
		tierCriterion[r.Tier][r.CriterionID] = append(tierCriterion[r.Tier][r.CriterionID], score)

		obsKey := r.PageID + "|" + r.PersonaID
		if obs[obsKey] == nil {
			obs[obsKey] = make(map[string]float64)
		}
		obs[obsKey][r.CriterionID] = score
	}

	ca := CriteriaAnalysis{}
	for id, g := range byCriterion {
		ca.Scores = append(ca.Scores, CriterionScore{
			CriterionID:      id,
			MeanScore:        mean(g.scores),
			Count:            len(g.scores),
			AffectedPersonas: len(g.personas),
		})
	}
	sort.Slice(ca.Scores, func(i, j int) bool {
		if ca.Scores[i].MeanScore != ca.Scores[j].MeanScore {
			return ca.Scores[i].MeanScore < ca.Scores[j].MeanScore
		}
		return ca.Scores[i].CriterionID < ca.Scores[j].CriterionID
	})

	ca.Correlations = correlations(ca.Scores, obs)
	ca.TierWorst = tierWorst(tierCriterion)
	return ca
}

func correlations(scores []CriterionScore, obs map[string]map[string]float64) []CriterionCorrelation {
	ids := make([]string, len(scores))
	for i, s := range scores {
		ids[i] = s.CriterionID
	}
	sort.Strings(ids)

	// Accumulation order must be fixed or the low bits of r drift between
	// runs of the same input.
	rowKeys := make([]string, 0, len(obs))
	for k := range obs {
		rowKeys = append(rowKeys, k)
	}
	sort.Strings(rowKeys)

	var out []CriterionCorrelation
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			var xs, ys []float64
			for _, k := range rowKeys {
				row := obs[k]
				x, okX := row[ids[i]]
				y, okY := row[ids[j]]
				if okX && okY {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			r, ok := pearson(xs, ys)
			if !ok || r < correlationFloor && r > -correlationFloor {
				continue
			}
			out = append(out, CriterionCorrelation{
				CriterionA: ids[i],
				CriterionB: ids[j],
				R:          r,
				N:          len(xs),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].R, out[j].R
		if ri < 0 {
			ri = -ri
		}
		if rj < 0 {
			rj = -rj
		}
		if ri != rj {
			return ri > rj
		}
		return out[i].CriterionA < out[j].CriterionA
	})
	return out
}

func tierWorst(tierCriterion map[model.Tier]map[string][]float64) []TierWorstCriterion {
	var out []TierWorstCriterion
	for _, tier := range append(model.AllTiers(), model.TierUnknown) {
		criteria, ok := tierCriterion[tier]
		if !ok {
			continue
		}
		worstID, worstMean := "", 11.0
		ids := make([]string, 0, len(criteria))
		for id := range criteria {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if m := mean(criteria[id]); m < worstMean {
				worstID, worstMean = id, m
			}
		}
		if worstID != "" {
			out = append(out, TierWorstCriterion{Tier: tier, CriterionID: worstID, MeanScore: worstMean})
		}
	}
	return out
}
