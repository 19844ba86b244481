package models

// Result status values for dashboard tables.
const (
	ResultOK    = "ok"
	ResultEmpty = "empty"
)

// MapRow is a validated region row plus the selected metric value and its
// 0-1 normalized position on the choropleth scale.
type MapRow struct {
	RegionRow
	Value     float64 `json:"value"`
	ValueNorm float64 `json:"value_norm"`
}

// MapTable is the validated analysis table for one metric, ready for rendering.
type MapTable struct {
	Metric        string   `json:"metric"`
	Status        string   `json:"status"`
	Rows          []MapRow `json:"rows"`
	GrowthPresent bool     `json:"growth_present"`
	MinValue      float64  `json:"min_value"`
	AvgValue      float64  `json:"avg_value"`
	MaxValue      float64  `json:"max_value"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Empty reports whether validation left zero rows.
func (t *MapTable) Empty() bool { return len(t.Rows) == 0 }

// SummaryStats are the national roll-up cards shown at the top of the dashboard.
type SummaryStats struct {
	AvgPremium       float64  `json:"avg_premium"`
	AvgGrowthPct     *float64 `json:"avg_growth_pct"` // nil when growth dataset absent
	RegionCount      int      `json:"region_count"`
	AvgVolatilityPct float64  `json:"avg_volatility_pct"`
	GrowthPresent    bool     `json:"growth_present"`
	Warnings         []string `json:"warnings,omitempty"`
}

// MetricEntry pairs a region with its value for one metric.
type MetricEntry struct {
	RegionCode string  `json:"region_code"`
	Value      float64 `json:"value"`
}

// MetricExtremes holds the top-N and bottom-N regions for one metric.
type MetricExtremes struct {
	Metric string        `json:"metric"`
	Top    []MetricEntry `json:"top"`
	Bottom []MetricEntry `json:"bottom"`
}

// ForecastSeries is the ordered forecast for a single region's series.
type ForecastSeries struct {
	SeriesCode string          `json:"series_code"`
	Points     []ForecastPoint `json:"points"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// ValidationReport summarizes how many regions survived validation
// for the selected metric, and which raw codes were rejected.
type ValidationReport struct {
	Metric       string   `json:"metric"`
	TotalRows    int      `json:"total_rows"`
	ValidRows    int      `json:"valid_rows"`
	InvalidRows  int      `json:"invalid_rows"`
	InvalidCodes []string `json:"invalid_codes,omitempty"`
	SampleValid  []string `json:"sample_valid,omitempty"`
}
