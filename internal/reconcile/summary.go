package reconcile

import "github.com/Veraticus/paperwork-flow/internal/model"

// DefaultThreshold is the variance fraction above which a material is flagged.
const DefaultThreshold = 0.2

// Summary aggregates a reconciliation run.
type Summary struct {
	Flagged          []model.VarianceResult
	TotalTheoretical float64
	TotalActual      float64
	Materials        int
	Undefined        int
}

// Summarize totals results and collects rows whose variance exceeds threshold.
func Summarize(results []model.VarianceResult, threshold float64) Summary {
	s := Summary{Materials: len(results)}
	for _, r := range results {
		s.TotalTheoretical += r.TheoreticalUsage
		s.TotalActual += r.ActualUsage
		if r.VariancePercentage == nil {
			s.Undefined++
			continue
		}
		if r.Exceeds(threshold) {
			s.Flagged = append(s.Flagged, r)
		}
	}
	return s
}
