package repository

import (
	"context"

	"PremiumPulse/internal/domain/models"
)

// Warehouse provides read-only access to the pre-computed forecast tables.
// Each method maps to one warehouse query; a call either returns the complete
// table or fails, there is no partial streaming.
type Warehouse interface {
	// GetRegionSummaries returns the mandatory per-region summary table,
	// ordered by region code.
	GetRegionSummaries(ctx context.Context) ([]models.RegionSummary, error)

	// GetGrowthRecords returns the optional year-over-year growth table,
	// ordered by region code.
	GetGrowthRecords(ctx context.Context) ([]models.GrowthRecord, error)

	// GetForecastPoints returns the full forecast table ordered by
	// (series, timestamp). Series selection happens after normalization,
	// so no filter is pushed down to the warehouse.
	GetForecastPoints(ctx context.Context) ([]models.ForecastPoint, error)

	// Health pings the warehouse.
	Health(ctx context.Context) error
}

// Metrics records pipeline observability signals.
type Metrics interface {
	RecordQuery(table, status string)
	RecordStageLatency(stage string, seconds float64)
	RecordValidRegions(n int)
	RecordDegraded(table string)
}
