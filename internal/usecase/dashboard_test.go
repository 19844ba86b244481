package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PremiumPulse/internal/domain/models"
	domrepo "PremiumPulse/internal/domain/repository"
	domsvc "PremiumPulse/internal/domain/service"
)

type fakeWarehouse struct {
	summaries   []models.RegionSummary
	growth      []models.GrowthRecord
	forecast    []models.ForecastPoint
	summaryErr  error
	growthErr   error
	forecastErr error
}

func (f *fakeWarehouse) GetRegionSummaries(ctx context.Context) ([]models.RegionSummary, error) {
	return f.summaries, f.summaryErr
}

func (f *fakeWarehouse) GetGrowthRecords(ctx context.Context) ([]models.GrowthRecord, error) {
	return f.growth, f.growthErr
}

func (f *fakeWarehouse) GetForecastPoints(ctx context.Context) ([]models.ForecastPoint, error) {
	return f.forecast, f.forecastErr
}

func (f *fakeWarehouse) Health(ctx context.Context) error { return nil }

func newTestAggregator(wh domrepo.Warehouse) *DashboardAggregator {
	return NewDashboardAggregator(wh, domsvc.NewUSStateCodeValidator(), nil)
}

func ptr(v float64) *float64 { return &v }

func TestMapTableMergesAndDerives(t *testing.T) {
	wh := &fakeWarehouse{
		summaries: []models.RegionSummary{
			{RegionCode: "CA", MeanValue: 1000, StddevValue: 100, MinValue: 800, MaxValue: 1200},
			{RegionCode: "TX", MeanValue: 900, StddevValue: 90, MinValue: 700, MaxValue: 1100},
		},
		growth: []models.GrowthRecord{{RegionCode: "CA", GrowthPct: 5.0}},
	}
	agg := newTestAggregator(wh)

	table, err := agg.MapTable(context.Background(), domrepo.MetricMean)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, models.ResultOK, table.Status)
	assert.True(t, table.GrowthPresent)

	ca := table.Rows[0]
	require.Equal(t, "CA", ca.RegionCode)
	assert.Equal(t, 5.0, ca.GrowthPct)
	assert.True(t, ca.HasGrowth)
	assert.InDelta(t, 400.0, ca.PriceRange, 1e-9)
	assert.InDelta(t, 10.0, ca.VolatilityPct, 1e-9)

	tx := table.Rows[1]
	require.Equal(t, "TX", tx.RegionCode)
	assert.Equal(t, 0.0, tx.GrowthPct)
	assert.False(t, tx.HasGrowth)
	assert.InDelta(t, 400.0, tx.PriceRange, 1e-9)
	assert.InDelta(t, 10.0, tx.VolatilityPct, 1e-9)
}

func TestMapTableNormalizesScale(t *testing.T) {
	wh := &fakeWarehouse{
		summaries: []models.RegionSummary{
			{RegionCode: "CA", MeanValue: 1000},
			{RegionCode: "TX", MeanValue: 900},
			{RegionCode: "NY", MeanValue: 950},
		},
	}
	agg := newTestAggregator(wh)

	table, err := agg.MapTable(context.Background(), domrepo.MetricMean)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, 900.0, table.MinValue)
	assert.Equal(t, 1000.0, table.MaxValue)
	assert.InDelta(t, 950.0, table.AvgValue, 1e-9)

	byCode := map[string]models.MapRow{}
	for _, r := range table.Rows {
		byCode[r.RegionCode] = r
	}
	assert.InDelta(t, 1.0, byCode["CA"].ValueNorm, 1e-9)
	assert.InDelta(t, 0.0, byCode["TX"].ValueNorm, 1e-9)
	assert.InDelta(t, 0.5, byCode["NY"].ValueNorm, 1e-9)
}

func TestMapTableEmptyAfterValidationIsNotError(t *testing.T) {
	wh := &fakeWarehouse{
		summaries: []models.RegionSummary{
			{RegionCode: "USA", MeanValue: 1000, StddevValue: 10, MinValue: 900, MaxValue: 1100},
		},
	}
	agg := newTestAggregator(wh)

	table, err := agg.MapTable(context.Background(), domrepo.MetricMean)
	require.NoError(t, err)
	assert.Equal(t, models.ResultEmpty, table.Status)
	assert.True(t, table.Empty())
	assert.False(t, IsFatalFetch(err))
}

func TestMapTableSummaryFetchFailureIsFatal(t *testing.T) {
	wh := &fakeWarehouse{summaryErr: errors.New("connection refused")}
	agg := newTestAggregator(wh)

	table, err := agg.MapTable(context.Background(), domrepo.MetricMean)
	require.Error(t, err)
	assert.Nil(t, table)
	assert.True(t, IsFatalFetch(err))

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "summary", fe.Table)
}

func TestMapTableEmptySummaryIsFatal(t *testing.T) {
	wh := &fakeWarehouse{summaries: nil}
	agg := newTestAggregator(wh)

	_, err := agg.MapTable(context.Background(), domrepo.MetricMean)
	require.Error(t, err)
	assert.True(t, IsFatalFetch(err))
	assert.ErrorIs(t, err, ErrNoSummaryRows)
}

func TestMapTableGrowthFetchFailureDegrades(t *testing.T) {
	wh := &fakeWarehouse{
		summaries: []models.RegionSummary{
			{RegionCode: "CA", MeanValue: 1000, StddevValue: 100, MinValue: 800, MaxValue: 1200},
		},
		growthErr: errors.New("table missing"),
	}
	agg := newTestAggregator(wh)

	table, err := agg.MapTable(context.Background(), domrepo.MetricMean)
	require.NoError(t, err)
	assert.Equal(t, models.ResultOK, table.Status)
	assert.False(t, table.GrowthPresent)
	require.Len(t, table.Rows, 1)
	assert.False(t, table.Rows[0].HasGrowth)
	require.Len(t, table.Warnings, 1)
	assert.Contains(t, table.Warnings[0], "growth dataset unavailable")
}

func TestSummaryStats(t *testing.T) {
	wh := &fakeWarehouse{
		summaries: []models.RegionSummary{
			{RegionCode: "CA", MeanValue: 1000, StddevValue: 100, MinValue: 800, MaxValue: 1200},
			{RegionCode: "TX", MeanValue: 900, StddevValue: 90, MinValue: 700, MaxValue: 1100},
		},
		growth: []models.GrowthRecord{
			{RegionCode: "CA", GrowthPct: 4.0},
			{RegionCode: "TX", GrowthPct: 6.0},
		},
	}
	agg := newTestAggregator(wh)

	stats, err := agg.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.RegionCount)
	assert.InDelta(t, 950.0, stats.AvgPremium, 1e-9)
	assert.InDelta(t, 10.0, stats.AvgVolatilityPct, 1e-9)
	require.NotNil(t, stats.AvgGrowthPct)
	assert.InDelta(t, 5.0, *stats.AvgGrowthPct, 1e-9)
	assert.True(t, stats.GrowthPresent)
}

func TestSummaryStatsWithoutGrowth(t *testing.T) {
	wh := &fakeWarehouse{
		summaries: []models.RegionSummary{
			{RegionCode: "CA", MeanValue: 1000, StddevValue: 100, MinValue: 800, MaxValue: 1200},
		},
		growthErr: errors.New("table missing"),
	}
	agg := newTestAggregator(wh)

	stats, err := agg.Summary(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stats.AvgGrowthPct)
	assert.False(t, stats.GrowthPresent)
}

func TestExtremesOrdering(t *testing.T) {
	wh := &fakeWarehouse{
		summaries: []models.RegionSummary{
			{RegionCode: "CA", MeanValue: 1000},
			{RegionCode: "TX", MeanValue: 900},
			{RegionCode: "NY", MeanValue: 1200},
			{RegionCode: "FL", MeanValue: 800},
		},
	}
	agg := newTestAggregator(wh)

	ex, err := agg.Extremes(context.Background(), domrepo.MetricMean, 2)
	require.NoError(t, err)
	require.Len(t, ex.Top, 2)
	require.Len(t, ex.Bottom, 2)
	assert.Equal(t, "NY", ex.Top[0].RegionCode)
	assert.Equal(t, "CA", ex.Top[1].RegionCode)
	assert.Equal(t, "FL", ex.Bottom[0].RegionCode)
	assert.Equal(t, "TX", ex.Bottom[1].RegionCode)
}

func TestExtremesNClampedToTableSize(t *testing.T) {
	wh := &fakeWarehouse{
		summaries: []models.RegionSummary{
			{RegionCode: "CA", MeanValue: 1000},
			{RegionCode: "TX", MeanValue: 900},
		},
	}
	agg := newTestAggregator(wh)

	ex, err := agg.Extremes(context.Background(), domrepo.MetricMean, 10)
	require.NoError(t, err)
	assert.Len(t, ex.Top, 2)
	assert.Len(t, ex.Bottom, 2)
}

func TestForecastWindowFilter(t *testing.T) {
	ts := func(s string) time.Time {
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Fatalf("parse time %q: %v", s, err)
		}
		return v
	}
	wh := &fakeWarehouse{
		forecast: []models.ForecastPoint{
			{SeriesCode: "CA", Timestamp: ts("2026-01-01T00:00:00Z"), ForecastValue: 1000},
			{SeriesCode: "CA", Timestamp: ts("2026-02-01T00:00:00Z"), ForecastValue: 1010, UpperBound: ptr(1100), LowerBound: ptr(920)},
			{SeriesCode: "CA", Timestamp: ts("2026-03-01T00:00:00Z"), ForecastValue: 1020},
			{SeriesCode: "TX", Timestamp: ts("2026-02-01T00:00:00Z"), ForecastValue: 900},
		},
	}
	agg := newTestAggregator(wh)

	series, err := agg.Forecast(context.Background(), ` "ca" `,
		ts("2026-01-15T00:00:00Z"), ts("2026-02-15T00:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, "CA", series.SeriesCode)
	require.Len(t, series.Points, 1)
	assert.Equal(t, 1010.0, series.Points[0].ForecastValue)
	require.NotNil(t, series.Points[0].UpperBound)
	assert.Equal(t, 1100.0, *series.Points[0].UpperBound)
}

func TestForecastFindsDirtyStoredSeries(t *testing.T) {
	ts, err := time.Parse(time.RFC3339, "2026-01-01T00:00:00Z")
	require.NoError(t, err)

	wh := &fakeWarehouse{
		forecast: []models.ForecastPoint{
			{SeriesCode: `"ca"`, Timestamp: ts, ForecastValue: 1000},
			{SeriesCode: " TX ", Timestamp: ts, ForecastValue: 900},
		},
	}
	agg := newTestAggregator(wh)

	series, ferr := agg.Forecast(context.Background(), "CA", time.Time{}, time.Time{})
	require.NoError(t, ferr)
	assert.Equal(t, "CA", series.SeriesCode)
	require.Len(t, series.Points, 1)
	assert.Equal(t, 1000.0, series.Points[0].ForecastValue)
}

func TestForecastFetchFailureDegrades(t *testing.T) {
	wh := &fakeWarehouse{forecastErr: errors.New("table missing")}
	agg := newTestAggregator(wh)

	series, err := agg.Forecast(context.Background(), "CA", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, series.Points)
	require.Len(t, series.Warnings, 1)
	assert.Contains(t, series.Warnings[0], "forecast dataset unavailable")
}

func TestValidationReport(t *testing.T) {
	wh := &fakeWarehouse{
		summaries: []models.RegionSummary{
			{RegionCode: "CA", MeanValue: 1000},
			{RegionCode: "USA", MeanValue: 950},
			{RegionCode: "TX", MeanValue: 900},
			{RegionCode: "California", MeanValue: 1},
		},
	}
	agg := newTestAggregator(wh)

	report, err := agg.ValidationReport(context.Background(), domrepo.MetricMean)
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalRows)
	assert.Equal(t, 2, report.ValidRows)
	assert.Equal(t, 2, report.InvalidRows)
	assert.ElementsMatch(t, []string{"USA", "CALIFORNIA"}, report.InvalidCodes)
	assert.ElementsMatch(t, []string{"CA", "TX"}, report.SampleValid)
}

func TestExportSummaryCSV(t *testing.T) {
	wh := &fakeWarehouse{
		summaries: []models.RegionSummary{
			{RegionCode: ` "ca" `, MeanValue: 1000, StddevValue: 100, MinValue: 800, MaxValue: 1200},
		},
	}
	agg := newTestAggregator(wh)

	out, err := agg.ExportCSV(context.Background(), ExportSummary)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "region_code,mean_value,stddev_value,min_value,max_value", lines[0])
	assert.Equal(t, "CA,1000,100,800,1200", lines[1])
}

func TestExportSummaryCSVFatalOnFetchFailure(t *testing.T) {
	wh := &fakeWarehouse{summaryErr: errors.New("connection refused")}
	agg := newTestAggregator(wh)

	_, err := agg.ExportCSV(context.Background(), ExportSummary)
	require.Error(t, err)
	assert.True(t, IsFatalFetch(err))
}

func TestExportGrowthCSVHeaderOnlyOnFailure(t *testing.T) {
	wh := &fakeWarehouse{growthErr: errors.New("table missing")}
	agg := newTestAggregator(wh)

	out, err := agg.ExportCSV(context.Background(), ExportGrowth)
	require.NoError(t, err)
	assert.Equal(t, "region_code,growth_pct", strings.TrimSpace(string(out)))
}

func TestExportForecastCSVNilBounds(t *testing.T) {
	ts, err := time.Parse(time.RFC3339, "2026-01-01T00:00:00Z")
	require.NoError(t, err)

	wh := &fakeWarehouse{
		forecast: []models.ForecastPoint{
			{SeriesCode: "CA", Timestamp: ts, ForecastValue: 1000},
		},
	}
	agg := newTestAggregator(wh)

	out, csvErr := agg.ExportCSV(context.Background(), ExportForecast)
	require.NoError(t, csvErr)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "series_code,timestamp,forecast_value,upper_bound,lower_bound", lines[0])
	assert.Equal(t, "CA,2026-01-01T00:00:00Z,1000,,", lines[1])
}

func TestExportUnknownTable(t *testing.T) {
	agg := newTestAggregator(&fakeWarehouse{})

	_, err := agg.ExportCSV(context.Background(), "ledger")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export table")
}
