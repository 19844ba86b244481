package repository

// Metric identifies one of the derivable map metrics.
type Metric string

const (
	MetricMean       Metric = "mean_value"
	MetricGrowth     Metric = "growth_pct"
	MetricVolatility Metric = "volatility_pct"
	MetricPriceRange Metric = "price_range"
)

// IsValidMetric returns true if m is a supported metric.
func IsValidMetric(m Metric) bool {
	switch m {
	case MetricMean, MetricGrowth, MetricVolatility, MetricPriceRange:
		return true
	default:
		return false
	}
}

// DefaultMetric returns the default map metric.
func DefaultMetric() Metric { return MetricMean }

// NormalizeMetric converts raw string to a valid metric (or default).
func NormalizeMetric(s string) Metric {
	if s == "" {
		return DefaultMetric()
	}
	m := Metric(s)
	if IsValidMetric(m) {
		return m
	}
	return DefaultMetric()
}
