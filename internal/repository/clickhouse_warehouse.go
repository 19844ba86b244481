package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"PremiumPulse/internal/domain/models"
	pkgch "PremiumPulse/pkg/clickhouse"
	applogger "PremiumPulse/pkg/logger"
)

// Tables names the three warehouse tables the dashboard reads.
type Tables struct {
	Summary  string
	Growth   string
	Forecast string
}

// CHWarehouse implements Warehouse backed by ClickHouse.
type CHWarehouse struct {
	db     *sql.DB
	tables Tables
	l      *applogger.Logger
}

func NewCHWarehouse(ch *pkgch.Client, tables Tables) *CHWarehouse {
	return &CHWarehouse{db: ch.DB(), tables: tables}
}

// SetLogger injects a structured logger.
func (w *CHWarehouse) SetLogger(l *applogger.Logger) { w.l = l }

func (w *CHWarehouse) GetRegionSummaries(ctx context.Context) ([]models.RegionSummary, error) {
	start := time.Now()
	const qtpl = `
        SELECT state, mean_premium, premium_stddev, min_premium, max_premium
        FROM %s
        ORDER BY state ASC
    `
	q := fmt.Sprintf(qtpl, w.tables.Summary)
	rows, err := w.db.QueryContext(ctx, q)
	if err != nil {
		if w.l != nil {
			w.l.Error("clickhouse region_summaries query error",
				applogger.String("table", w.tables.Summary),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get region summaries: %w", err)
	}
	defer rows.Close()

	out := make([]models.RegionSummary, 0, 64)
	for rows.Next() {
		var s models.RegionSummary
		if err := rows.Scan(&s.RegionCode, &s.MeanValue, &s.StddevValue, &s.MinValue, &s.MaxValue); err != nil {
			if w.l != nil {
				w.l.Error("clickhouse region_summaries scan error",
					applogger.String("table", w.tables.Summary),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan region summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		if w.l != nil {
			w.l.Error("clickhouse region_summaries rows error",
				applogger.String("table", w.tables.Summary),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if w.l != nil {
		w.l.Info("clickhouse region_summaries ok",
			applogger.String("table", w.tables.Summary),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (w *CHWarehouse) GetGrowthRecords(ctx context.Context) ([]models.GrowthRecord, error) {
	start := time.Now()
	const qtpl = `
        SELECT state, yoy_growth_pct
        FROM %s
        ORDER BY state ASC
    `
	q := fmt.Sprintf(qtpl, w.tables.Growth)
	rows, err := w.db.QueryContext(ctx, q)
	if err != nil {
		if w.l != nil {
			w.l.Warn("clickhouse growth query error",
				applogger.String("table", w.tables.Growth),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get growth records: %w", err)
	}
	defer rows.Close()

	out := make([]models.GrowthRecord, 0, 64)
	for rows.Next() {
		var g models.GrowthRecord
		if err := rows.Scan(&g.RegionCode, &g.GrowthPct); err != nil {
			return nil, fmt.Errorf("scan growth record: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if w.l != nil {
		w.l.Info("clickhouse growth ok",
			applogger.String("table", w.tables.Growth),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (w *CHWarehouse) GetForecastPoints(ctx context.Context) ([]models.ForecastPoint, error) {
	start := time.Now()
	const qtpl = `
        SELECT series, ts, forecast, upper_bound, lower_bound
        FROM %s
        ORDER BY series ASC, ts ASC
    `
	q := fmt.Sprintf(qtpl, w.tables.Forecast)
	rows, err := w.db.QueryContext(ctx, q)
	if err != nil {
		if w.l != nil {
			w.l.Warn("clickhouse forecast query error",
				applogger.String("table", w.tables.Forecast),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get forecast points: %w", err)
	}
	defer rows.Close()

	out := make([]models.ForecastPoint, 0, 128)
	for rows.Next() {
		var (
			p     models.ForecastPoint
			upper sql.NullFloat64
			lower sql.NullFloat64
		)
		if err := rows.Scan(&p.SeriesCode, &p.Timestamp, &p.ForecastValue, &upper, &lower); err != nil {
			return nil, fmt.Errorf("scan forecast point: %w", err)
		}
		if upper.Valid {
			v := upper.Float64
			p.UpperBound = &v
		}
		if lower.Valid {
			v := lower.Float64
			p.LowerBound = &v
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if w.l != nil {
		w.l.Info("clickhouse forecast ok",
			applogger.String("table", w.tables.Forecast),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// Health pings the warehouse connection.
func (w *CHWarehouse) Health(ctx context.Context) error {
	return w.db.PingContext(ctx)
}
