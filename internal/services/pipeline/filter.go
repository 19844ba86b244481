package pipeline

import (
	"math"

	"PremiumPulse/internal/domain/models"
	domrepo "PremiumPulse/internal/domain/repository"
	domsvc "PremiumPulse/internal/domain/service"
)

// MetricValue selects the metric column from a merged row. The second return
// is false when the value is not a usable number.
func MetricValue(row models.RegionRow, metric domrepo.Metric) (float64, bool) {
	var v float64
	switch metric {
	case domrepo.MetricMean:
		v = row.MeanValue
	case domrepo.MetricGrowth:
		v = row.GrowthPct
	case domrepo.MetricVolatility:
		v = row.VolatilityPct
	case domrepo.MetricPriceRange:
		v = row.PriceRange
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FilterValid keeps rows whose selected metric is a usable number and whose
// region code (after normalization) passes the validator. Input order is
// preserved; an empty result is a valid outcome, not an error.
func FilterValid(rows []models.RegionRow, metric domrepo.Metric, validator domsvc.RegionCodeValidator) []models.RegionRow {
	kept, _ := FilterValidDetailed(rows, metric, validator)
	return kept
}

// FilterValidDetailed is FilterValid plus the raw codes of rejected rows,
// for the dashboard's validation report.
func FilterValidDetailed(rows []models.RegionRow, metric domrepo.Metric, validator domsvc.RegionCodeValidator) (kept []models.RegionRow, rejected []string) {
	kept = make([]models.RegionRow, 0, len(rows))
	for _, row := range rows {
		code := NormalizeIdentifier(row.RegionCode)
		if _, ok := MetricValue(row, metric); !ok {
			rejected = append(rejected, row.RegionCode)
			continue
		}
		if !validator.Valid(code) {
			rejected = append(rejected, row.RegionCode)
			continue
		}
		row.RegionCode = code
		kept = append(kept, row)
	}
	return kept, rejected
}
