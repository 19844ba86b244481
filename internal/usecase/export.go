package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"PremiumPulse/internal/domain/models"
	"PremiumPulse/internal/services/pipeline"
)

// Export table identifiers.
const (
	ExportSummary  = "summary"
	ExportGrowth   = "growth"
	ExportForecast = "forecast"
)

// ExportCSV serializes one of the three warehouse tables as flat CSV with a
// header row. The summary table follows the fatal-failure rule; growth and
// forecast degrade to a header-only file when their fetch fails.
func (a *DashboardAggregator) ExportCSV(ctx context.Context, table string) ([]byte, error) {
	switch table {
	case ExportSummary:
		summaries, err := a.wh.GetRegionSummaries(ctx)
		if err != nil {
			a.recordQuery("summary", "error")
			return nil, fatalFetch("summary", err)
		}
		a.recordQuery("summary", "ok")
		return encodeSummariesCSV(pipeline.NormalizeSummaries(summaries))

	case ExportGrowth:
		growth, err := a.wh.GetGrowthRecords(ctx)
		if err != nil {
			a.recordQuery("growth", "error")
			a.recordDegraded("growth")
			growth = nil
		} else {
			a.recordQuery("growth", "ok")
		}
		return encodeGrowthCSV(pipeline.NormalizeGrowth(growth))

	case ExportForecast:
		points, err := a.wh.GetForecastPoints(ctx)
		if err != nil {
			a.recordQuery("forecast", "error")
			a.recordDegraded("forecast")
			points = nil
		} else {
			a.recordQuery("forecast", "ok")
		}
		return encodeForecastCSV(pipeline.NormalizeForecast(points))

	default:
		return nil, fmt.Errorf("unknown export table: %s", table)
	}
}

func encodeSummariesCSV(rows []models.RegionSummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"region_code", "mean_value", "stddev_value", "min_value", "max_value"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.RegionCode,
			formatFloat(r.MeanValue),
			formatFloat(r.StddevValue),
			formatFloat(r.MinValue),
			formatFloat(r.MaxValue),
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeGrowthCSV(rows []models.GrowthRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"region_code", "growth_pct"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write([]string{r.RegionCode, formatFloat(r.GrowthPct)}); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeForecastCSV(rows []models.ForecastPoint) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"series_code", "timestamp", "forecast_value", "upper_bound", "lower_bound"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.SeriesCode,
			r.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(r.ForecastValue),
			formatOptFloat(r.UpperBound),
			formatOptFloat(r.LowerBound),
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
