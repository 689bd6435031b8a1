package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/paperwork-flow/internal/model"
	"github.com/Veraticus/paperwork-flow/internal/reconcile"
)

var varianceHeader = []any{
	"Material Number",
	"Material Name",
	"Unit",
	"Theoretical Sources",
	"Theoretical Usage",
	"Actual Usage",
	"Variance",
	"Variance %",
	"Notes",
}

// varianceTableStart is the 1-based row of the variance table header.
const varianceTableStart = 7

// WriteVarianceSheet adds a sheet comparing theoretical and actual material
// usage. Rows whose variance exceeds threshold are highlighted.
func (w *Workbook) WriteVarianceSheet(name string, storeID int, period model.Period, results []model.VarianceResult, threshold float64) error {
	if err := w.newSheet(name); err != nil {
		return err
	}

	summary := reconcile.Summarize(results, threshold)
	values := prepareVarianceRows(storeID, period, results, summary, threshold)
	if err := w.writeRows(name, values); err != nil {
		return err
	}

	if err := w.file.SetCellStyle(name, "A1", "A1", w.styles.title); err != nil {
		return err
	}
	if err := w.styleRow(name, varianceTableStart, len(varianceHeader), w.styles.header); err != nil {
		return err
	}
	for i, r := range results {
		if r.Exceeds(threshold) {
			if err := w.styleRow(name, varianceTableStart+1+i, len(varianceHeader), w.styles.flagged); err != nil {
				return err
			}
		}
	}

	return w.setWidths(name, []float64{16, 28, 8, 40, 18, 14, 12, 12, 28})
}

func prepareVarianceRows(storeID int, period model.Period, results []model.VarianceResult, summary reconcile.Summary, threshold float64) [][]any {
	values := make([][]any, 0, varianceTableStart+len(results))
	values = append(values,
		[]any{"Material Variance Report", fmt.Sprintf("Store %d", storeID), period.String()},
		[]any{},
		[]any{"Materials", summary.Materials},
		[]any{"Flagged", len(summary.Flagged), fmt.Sprintf("variance above %.0f%%", threshold*100)},
		[]any{"Without theoretical usage", summary.Undefined},
		[]any{},
		varianceHeader,
	)

	for _, r := range results {
		values = append(values, []any{
			r.MaterialNumber,
			r.MaterialName,
			r.Unit,
			sources(r.Details),
			round(r.TheoreticalUsage),
			round(r.ActualUsage),
			round(r.Variance),
			r.PercentageLabel(),
			notes(r, threshold),
		})
	}

	return values
}

func sources(details []model.UsageDetail) string {
	parts := make([]string, 0, len(details))
	for _, d := range details {
		parts = append(parts, fmt.Sprintf("%s: %.2f", d.Key(), d.Usage))
	}
	return strings.Join(parts, "; ")
}

func notes(r model.VarianceResult, threshold float64) string {
	switch {
	case r.VariancePercentage == nil && r.ActualUsage != 0:
		return "used without recipe"
	case r.VariancePercentage == nil:
		return ""
	case r.Exceeds(threshold) && r.Variance > 0:
		return "over-used"
	case r.Exceeds(threshold):
		return "under-used"
	default:
		return ""
	}
}

func round(v float64) float64 {
	return math.Round(v*10000) / 10000
}
