package usecase

import (
	"context"
	"sort"
	"time"

	"PremiumPulse/internal/domain/models"
	domrepo "PremiumPulse/internal/domain/repository"
	domsvc "PremiumPulse/internal/domain/service"
	"PremiumPulse/internal/services/pipeline"
	applogger "PremiumPulse/pkg/logger"
)

// DashboardAggregator runs the fetch, normalize, merge and validate stages
// once per dashboard request. It holds no state across requests; response
// caching is owned by the HTTP layer.
type DashboardAggregator struct {
	wh        domrepo.Warehouse
	validator domsvc.RegionCodeValidator
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

func NewDashboardAggregator(wh domrepo.Warehouse, validator domsvc.RegionCodeValidator, metrics domrepo.Metrics) *DashboardAggregator {
	return &DashboardAggregator{wh: wh, validator: validator, metrics: metrics}
}

// SetLogger injects a structured logger.
func (a *DashboardAggregator) SetLogger(l *applogger.Logger) { a.l = l }

// loadRegionRows fetches and merges the summary and growth tables. A summary
// failure (or an empty summary table) is fatal; a growth failure degrades to
// an absent dataset with a warning.
func (a *DashboardAggregator) loadRegionRows(ctx context.Context) ([]models.RegionRow, bool, []string, error) {
	start := time.Now()

	summaries, err := a.wh.GetRegionSummaries(ctx)
	if err != nil {
		a.recordQuery("summary", "error")
		return nil, false, nil, fatalFetch("summary", err)
	}
	a.recordQuery("summary", "ok")
	if len(summaries) == 0 {
		return nil, false, nil, fatalFetch("summary", ErrNoSummaryRows)
	}

	var warnings []string
	growth, err := a.wh.GetGrowthRecords(ctx)
	if err != nil {
		a.recordQuery("growth", "error")
		a.recordDegraded("growth")
		if a.l != nil {
			a.l.Warn("growth dataset unavailable, continuing without it", applogger.Error(err))
		}
		warnings = append(warnings, "growth dataset unavailable")
		growth = nil
	} else {
		a.recordQuery("growth", "ok")
	}
	a.recordStage("fetch", time.Since(start))

	nstart := time.Now()
	summaries = pipeline.NormalizeSummaries(summaries)
	growth = pipeline.NormalizeGrowth(growth)
	a.recordStage("normalize", time.Since(nstart))

	mstart := time.Now()
	rows, growthPresent := pipeline.BuildRegionTable(summaries, growth)
	a.recordStage("merge", time.Since(mstart))

	return rows, growthPresent, warnings, nil
}

// MapTable produces the validated analysis table for one metric, with every
// value placed on the 0-1 choropleth scale. Zero rows after validation is an
// explicit empty result, not an error.
func (a *DashboardAggregator) MapTable(ctx context.Context, metric domrepo.Metric) (*models.MapTable, error) {
	rows, growthPresent, warnings, err := a.loadRegionRows(ctx)
	if err != nil {
		return nil, err
	}

	vstart := time.Now()
	valid := pipeline.FilterValid(rows, metric, a.validator)
	a.recordStage("validate", time.Since(vstart))
	a.recordValidRegions(len(valid))

	table := &models.MapTable{
		Metric:        string(metric),
		Status:        models.ResultOK,
		Rows:          make([]models.MapRow, 0, len(valid)),
		GrowthPresent: growthPresent,
		Warnings:      warnings,
	}
	if len(valid) == 0 {
		table.Status = models.ResultEmpty
		if a.l != nil {
			a.l.Warn("no valid region codes after filtering", applogger.String("metric", string(metric)))
		}
		return table, nil
	}

	values := make([]float64, 0, len(valid))
	var sum float64
	for _, r := range valid {
		v, _ := pipeline.MetricValue(r, metric)
		values = append(values, v)
		sum += v
	}
	scale := pipeline.ComputeScale(values)

	for i, r := range valid {
		table.Rows = append(table.Rows, models.MapRow{
			RegionRow: r,
			Value:     values[i],
			ValueNorm: scale.Normalize(values[i]),
		})
	}
	table.MinValue = scale.Min
	table.MaxValue = scale.Max
	table.AvgValue = sum / float64(len(valid))

	return table, nil
}

// Summary computes the national roll-up cards from the merged table.
func (a *DashboardAggregator) Summary(ctx context.Context) (*models.SummaryStats, error) {
	rows, growthPresent, warnings, err := a.loadRegionRows(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.SummaryStats{
		RegionCount:   len(rows),
		GrowthPresent: growthPresent,
		Warnings:      warnings,
	}

	var premiumSum, volSum, growthSum float64
	var growthN int
	for _, r := range rows {
		premiumSum += r.MeanValue
		volSum += r.VolatilityPct
		if r.HasGrowth {
			growthSum += r.GrowthPct
			growthN++
		}
	}
	n := float64(len(rows))
	stats.AvgPremium = premiumSum / n
	stats.AvgVolatilityPct = volSum / n
	if growthPresent && growthN > 0 {
		avg := growthSum / float64(growthN)
		stats.AvgGrowthPct = &avg
	}
	return stats, nil
}

// Extremes returns the top-N and bottom-N valid regions for one metric.
func (a *DashboardAggregator) Extremes(ctx context.Context, metric domrepo.Metric, n int) (*models.MetricExtremes, error) {
	table, err := a.MapTable(ctx, metric)
	if err != nil {
		return nil, err
	}

	entries := make([]models.MetricEntry, 0, len(table.Rows))
	for _, r := range table.Rows {
		entries = append(entries, models.MetricEntry{RegionCode: r.RegionCode, Value: r.Value})
	}
	sortEntriesDesc(entries)

	if n > len(entries) {
		n = len(entries)
	}
	top := make([]models.MetricEntry, n)
	copy(top, entries[:n])

	bottom := make([]models.MetricEntry, n)
	for i := 0; i < n; i++ {
		bottom[i] = entries[len(entries)-1-i]
	}

	return &models.MetricExtremes{Metric: string(metric), Top: top, Bottom: bottom}, nil
}

// Forecast returns the ordered forecast points for one region's series within
// an optional time window. The whole table is fetched and normalized before
// the series is selected, so stored codes with quoting or casing dirt still
// match. A forecast fetch failure degrades to an empty series with a warning
// rather than failing the request.
func (a *DashboardAggregator) Forecast(ctx context.Context, series string, from, to time.Time) (*models.ForecastSeries, error) {
	code := pipeline.NormalizeIdentifier(series)

	points, err := a.wh.GetForecastPoints(ctx)
	if err != nil {
		a.recordQuery("forecast", "error")
		a.recordDegraded("forecast")
		if a.l != nil {
			a.l.Warn("forecast dataset unavailable", applogger.String("series", code), applogger.Error(err))
		}
		return &models.ForecastSeries{
			SeriesCode: code,
			Points:     []models.ForecastPoint{},
			Warnings:   []string{"forecast dataset unavailable"},
		}, nil
	}
	a.recordQuery("forecast", "ok")

	points = pipeline.NormalizeForecast(points)
	out := make([]models.ForecastPoint, 0, len(points))
	for _, p := range points {
		if p.SeriesCode != code {
			continue
		}
		if !from.IsZero() && p.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && p.Timestamp.After(to) {
			continue
		}
		out = append(out, p)
	}
	return &models.ForecastSeries{SeriesCode: code, Points: out}, nil
}

// ValidationReport explains the validation outcome for one metric.
func (a *DashboardAggregator) ValidationReport(ctx context.Context, metric domrepo.Metric) (*models.ValidationReport, error) {
	rows, _, _, err := a.loadRegionRows(ctx)
	if err != nil {
		return nil, err
	}

	kept, rejected := pipeline.FilterValidDetailed(rows, metric, a.validator)

	report := &models.ValidationReport{
		Metric:       string(metric),
		TotalRows:    len(rows),
		ValidRows:    len(kept),
		InvalidRows:  len(rejected),
		InvalidCodes: rejected,
	}
	const sampleSize = 10
	for i, r := range kept {
		if i == sampleSize {
			break
		}
		report.SampleValid = append(report.SampleValid, r.RegionCode)
	}
	return report, nil
}

func sortEntriesDesc(entries []models.MetricEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
}

func (a *DashboardAggregator) recordQuery(table, status string) {
	if a.metrics != nil {
		a.metrics.RecordQuery(table, status)
	}
}

func (a *DashboardAggregator) recordStage(stage string, d time.Duration) {
	if a.metrics != nil {
		a.metrics.RecordStageLatency(stage, d.Seconds())
	}
}

func (a *DashboardAggregator) recordValidRegions(n int) {
	if a.metrics != nil {
		a.metrics.RecordValidRegions(n)
	}
}

func (a *DashboardAggregator) recordDegraded(table string) {
	if a.metrics != nil {
		a.metrics.RecordDegraded(table)
	}
}
