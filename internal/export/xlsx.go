// Package export writes audit outputs to external file formats.
package export

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/brand-audit-cli/internal/analyze"
	"github.com/sells-group/brand-audit-cli/internal/model"
	"github.com/sells-group/brand-audit-cli/internal/recommend"
)

// WriteScorecardXLSX writes a three-sheet workbook: the unified scorecard,
// the tier summary, and the prioritized recommendations.
func WriteScorecardXLSX(path string, rs *model.RecordSet, analytics *analyze.Bundle, recs *recommend.Set) error {
	f := xlsx.NewFile()

	if err := addScorecardSheet(f, rs); err != nil {
		return err
	}
	if err := addTierSheet(f, analytics); err != nil {
		return err
	}
	if err := addRecommendationSheet(f, recs); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	zap.L().Info("export: workbook written",
		zap.String("path", path),
		zap.Int("records", len(rs.Records)),
	)
	return nil
}

var scorecardHeader = []string{
	"page_id", "url", "persona_id", "criterion_id", "tier", "final_score",
	"descriptor", "effort_level", "quick_win", "critical_issue", "evidence",
}

func addScorecardSheet(f *xlsx.File, rs *model.RecordSet) error {
	sheet, err := f.AddSheet("Scorecard")
	if err != nil {
		return eris.Wrap(err, "export: add scorecard sheet")
	}
	writeRow(sheet, scorecardHeader)

	records := append([]*model.Record(nil), rs.Records...)
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key() < records[j].Key()
	})

	for _, r := range records {
		score := ""
		if v, ok := r.Score(); ok {
			score = fmt.Sprintf("%.2f", v)
		}
		writeRow(sheet, []string{
			r.PageID,
			r.URL,
			r.PersonaID,
			r.CriterionID,
			string(r.Tier),
			score,
			string(r.Descriptor),
			string(r.EffortLevel),
			boolCell(r.QuickWinFlag),
			boolCell(r.CriticalIssueFlag),
			r.Evidence,
		})
	}
	return nil
}

func addTierSheet(f *xlsx.File, analytics *analyze.Bundle) error {
	sheet, err := f.AddSheet("Tier Summary")
	if err != nil {
		return eris.Wrap(err, "export: add tier sheet")
	}
	writeRow(sheet, []string{"tier", "tier_name", "avg_score", "std_dev", "count"})

	if analytics == nil {
		return nil
	}
	for _, tp := range analytics.TierPerformance {
		writeRow(sheet, []string{
			string(tp.Tier),
			tp.TierName,
			fmt.Sprintf("%.2f", tp.AvgScore),
			fmt.Sprintf("%.2f", tp.StdDev),
			fmt.Sprintf("%d", tp.Count),
		})
	}
	return nil
}

func addRecommendationSheet(f *xlsx.File, recs *recommend.Set) error {
	sheet, err := f.AddSheet("Recommendations")
	if err != nil {
		return eris.Wrap(err, "export: add recommendations sheet")
	}
	writeRow(sheet, []string{"priority_score", "title", "page_id", "timeline", "sources", "themes"})

	if recs == nil {
		return nil
	}
	for _, item := range recs.Items {
		writeRow(sheet, []string{
			fmt.Sprintf("%.1f", item.PriorityScore),
			item.Title,
			item.PageID,
			item.Timeline,
			item.Sources,
			joinThemes(item.Themes),
		})
	}
	return nil
}

func writeRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func boolCell(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func joinThemes(themes []string) string {
	out := ""
	for i, t := range themes {
		if i > 0 {
			out += "; "
		}
		out += t
	}
	return out
}
