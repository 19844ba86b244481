package pipeline

import (
	"strings"

	"PremiumPulse/internal/domain/models"
)

// NormalizeIdentifier converts a raw region or series identifier into its
// canonical form: trim whitespace, drop every double and single quote, trim
// again, uppercase. Idempotent; never fails.
func NormalizeIdentifier(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, `'`, "")
	s = strings.TrimSpace(s)
	return strings.ToUpper(s)
}

// NormalizeSummaries canonicalizes the region code column of a summary table.
func NormalizeSummaries(rows []models.RegionSummary) []models.RegionSummary {
	for i := range rows {
		rows[i].RegionCode = NormalizeIdentifier(rows[i].RegionCode)
	}
	return rows
}

// NormalizeGrowth canonicalizes the region code column of a growth table.
func NormalizeGrowth(rows []models.GrowthRecord) []models.GrowthRecord {
	for i := range rows {
		rows[i].RegionCode = NormalizeIdentifier(rows[i].RegionCode)
	}
	return rows
}

// NormalizeForecast canonicalizes the series code column of a forecast table.
func NormalizeForecast(rows []models.ForecastPoint) []models.ForecastPoint {
	for i := range rows {
		rows[i].SeriesCode = NormalizeIdentifier(rows[i].SeriesCode)
	}
	return rows
}
