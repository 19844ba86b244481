package pipeline

import (
	"math"

	"PremiumPulse/internal/domain/models"
)

// BuildRegionTable left-joins region summaries with growth records on the
// normalized region code and derives price range and volatility per row.
// Every summary row is retained; regions without a growth record keep the 0
// sentinel with HasGrowth=false. The growth table is assumed to hold at most
// one row per region and is not deduplicated.
func BuildRegionTable(summaries []models.RegionSummary, growth []models.GrowthRecord) ([]models.RegionRow, bool) {
	growthPresent := len(growth) > 0

	byRegion := make(map[string]float64, len(growth))
	for _, g := range growth {
		byRegion[g.RegionCode] = g.GrowthPct
	}

	rows := make([]models.RegionRow, 0, len(summaries))
	for _, s := range summaries {
		row := models.RegionRow{
			RegionCode:  s.RegionCode,
			MeanValue:   s.MeanValue,
			StddevValue: s.StddevValue,
			MinValue:    s.MinValue,
			MaxValue:    s.MaxValue,
		}
		if pct, ok := byRegion[s.RegionCode]; ok {
			row.GrowthPct = pct
			row.HasGrowth = true
		}
		row.PriceRange = s.MaxValue - s.MinValue
		row.VolatilityPct = volatilityPct(s.StddevValue, s.MeanValue)
		rows = append(rows, row)
	}
	return rows, growthPresent
}

// volatilityPct is the coefficient of variation in percent. Zero mean or a
// non-finite result yields 0 rather than a division failure.
func volatilityPct(stddev, mean float64) float64 {
	if mean == 0 {
		return 0
	}
	v := stddev / mean * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
