package models

import "time"

// RegionSummary is one row of the warehouse premium summary table.
type RegionSummary struct {
	RegionCode  string  `json:"region_code"`
	MeanValue   float64 `json:"mean_value"`
	StddevValue float64 `json:"stddev_value"`
	MinValue    float64 `json:"min_value"`
	MaxValue    float64 `json:"max_value"`
}

// GrowthRecord is one row of the year-over-year growth table.
// Zero-or-one record per region; unmatched regions get no growth figure.
type GrowthRecord struct {
	RegionCode string  `json:"region_code"`
	GrowthPct  float64 `json:"growth_pct"`
}

// ForecastPoint is one row of the monthly forecast table,
// ordered by (series_code, timestamp). Bounds are optional.
type ForecastPoint struct {
	SeriesCode    string    `json:"series_code"`
	Timestamp     time.Time `json:"timestamp"`
	ForecastValue float64   `json:"forecast_value"`
	UpperBound    *float64  `json:"upper_bound,omitempty"`
	LowerBound    *float64  `json:"lower_bound,omitempty"`
}

// RegionRow is one merged row of the analysis table: summary stats,
// growth join result, and derived metrics.
type RegionRow struct {
	RegionCode  string  `json:"region_code"`
	MeanValue   float64 `json:"mean_value"`
	StddevValue float64 `json:"stddev_value"`
	MinValue    float64 `json:"min_value"`
	MaxValue    float64 `json:"max_value"`

	// GrowthPct keeps the 0 sentinel when no growth record matched;
	// HasGrowth tells the two cases apart.
	GrowthPct float64 `json:"growth_pct"`
	HasGrowth bool    `json:"has_growth"`

	PriceRange    float64 `json:"price_range"`
	VolatilityPct float64 `json:"volatility_pct"`
}
