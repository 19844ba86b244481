package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PremiumPulse/internal/domain/models"
	domsvc "PremiumPulse/internal/domain/service"
	icache "PremiumPulse/internal/service/cache"
	"PremiumPulse/internal/usecase"
)

type stubWarehouse struct {
	summaries  []models.RegionSummary
	growth     []models.GrowthRecord
	forecast   []models.ForecastPoint
	summaryErr error
}

func (s *stubWarehouse) GetRegionSummaries(ctx context.Context) ([]models.RegionSummary, error) {
	return s.summaries, s.summaryErr
}

func (s *stubWarehouse) GetGrowthRecords(ctx context.Context) ([]models.GrowthRecord, error) {
	return s.growth, nil
}

func (s *stubWarehouse) GetForecastPoints(ctx context.Context) ([]models.ForecastPoint, error) {
	return s.forecast, nil
}

func (s *stubWarehouse) Health(ctx context.Context) error { return nil }

func newTestHandler(wh *stubWarehouse) (*DashboardHandler, *echo.Echo) {
	agg := usecase.NewDashboardAggregator(wh, domsvc.NewUSStateCodeValidator(), nil)
	h := NewDashboardHandler(nil, agg)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doGET(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func twoStateWarehouse() *stubWarehouse {
	return &stubWarehouse{
		summaries: []models.RegionSummary{
			{RegionCode: "CA", MeanValue: 1000, StddevValue: 100, MinValue: 800, MaxValue: 1200},
			{RegionCode: "TX", MeanValue: 900, StddevValue: 90, MinValue: 700, MaxValue: 1100},
		},
		growth: []models.GrowthRecord{{RegionCode: "CA", GrowthPct: 5.0}},
	}
}

func TestMapEndpoint(t *testing.T) {
	_, e := newTestHandler(twoStateWarehouse())

	rec := doGET(e, "/api/map?metric=mean_value")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusOK, env.Status)

	var table models.MapTable
	require.NoError(t, json.Unmarshal(env.Data, &table))
	assert.Equal(t, "ok", table.Status)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "CA", table.Rows[0].RegionCode)
	assert.InDelta(t, 400.0, table.Rows[0].PriceRange, 1e-9)
}

func TestMapEndpointRejectsUnknownMetric(t *testing.T) {
	_, e := newTestHandler(twoStateWarehouse())

	rec := doGET(e, "/api/map?metric=bogus")
	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestMapEndpointEmptyResultIs200(t *testing.T) {
	wh := &stubWarehouse{
		summaries: []models.RegionSummary{{RegionCode: "USA", MeanValue: 1000}},
	}
	_, e := newTestHandler(wh)

	rec := doGET(e, "/api/map")
	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var table models.MapTable
	require.NoError(t, json.Unmarshal(env.Data, &table))
	assert.Equal(t, "empty", table.Status)
	assert.Empty(t, table.Rows)
}

func TestMapEndpointFatalFetchIs502(t *testing.T) {
	wh := &stubWarehouse{summaryErr: errors.New("connection refused")}
	_, e := newTestHandler(wh)

	rec := doGET(e, "/api/map")
	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusBadGateway, env.Status)
}

func TestSummaryEndpoint(t *testing.T) {
	_, e := newTestHandler(twoStateWarehouse())

	rec := doGET(e, "/api/summary")
	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var stats models.SummaryStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.RegionCount)
	assert.InDelta(t, 950.0, stats.AvgPremium, 1e-9)
}

func TestExtremesEndpointValidatesN(t *testing.T) {
	_, e := newTestHandler(twoStateWarehouse())

	rec := doGET(e, "/api/map/extremes?n=99")
	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestForecastEndpointRequiresSeries(t *testing.T) {
	_, e := newTestHandler(twoStateWarehouse())

	rec := doGET(e, "/api/forecast")
	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestForecastEndpointRejectsInvertedWindow(t *testing.T) {
	_, e := newTestHandler(twoStateWarehouse())

	rec := doGET(e, "/api/forecast?series=CA&from=2026-03-01&to=2026-01-01")
	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestForecastEndpoint(t *testing.T) {
	wh := twoStateWarehouse()
	ts, _ := time.Parse(time.RFC3339, "2026-01-01T00:00:00Z")
	wh.forecast = []models.ForecastPoint{
		{SeriesCode: "CA", Timestamp: ts, ForecastValue: 1000},
	}
	_, e := newTestHandler(wh)

	rec := doGET(e, "/api/forecast?series=ca")
	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var series models.ForecastSeries
	require.NoError(t, json.Unmarshal(env.Data, &series))
	assert.Equal(t, "CA", series.SeriesCode)
	require.Len(t, series.Points, 1)
}

func TestValidationEndpoint(t *testing.T) {
	wh := twoStateWarehouse()
	wh.summaries = append(wh.summaries, models.RegionSummary{RegionCode: "USA", MeanValue: 1})
	_, e := newTestHandler(wh)

	rec := doGET(e, "/api/validation")
	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var report models.ValidationReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 2, report.ValidRows)
	assert.Contains(t, report.InvalidCodes, "USA")
}

func TestExportEndpoint(t *testing.T) {
	_, e := newTestHandler(twoStateWarehouse())

	rec := doGET(e, "/api/export/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "summary.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "region_code,mean_value,stddev_value,min_value,max_value", lines[0])
}

func TestExportEndpointUnknownTable(t *testing.T) {
	_, e := newTestHandler(twoStateWarehouse())

	rec := doGET(e, "/api/export/ledger")
	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusNotFound, env.Status)
}

func TestExportEndpointRateLimited(t *testing.T) {
	h, e := newTestHandler(twoStateWarehouse())
	h.SetExportLimit(1, 0)

	rec := doGET(e, "/api/export/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")

	rec = doGET(e, "/api/export/summary")
	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusTooManyRequests, env.Status)
}

func TestMapEndpointServesFromCache(t *testing.T) {
	wh := twoStateWarehouse()
	h, e := newTestHandler(wh)
	h.SetCache(icache.NewTTLCache(), time.Minute)

	rec := doGET(e, "/api/map")
	require.Equal(t, http.StatusOK, decodeEnvelope(t, rec).Status)

	// mutate the backing data; the cached response should win
	wh.summaries = []models.RegionSummary{{RegionCode: "NY", MeanValue: 1}}

	rec = doGET(e, "/api/map")
	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var table models.MapTable
	require.NoError(t, json.Unmarshal(env.Data, &table))
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "CA", table.Rows[0].RegionCode)
}

func TestCacheInvalidateEndpoint(t *testing.T) {
	wh := twoStateWarehouse()
	h, e := newTestHandler(wh)
	h.SetCache(icache.NewTTLCache(), time.Minute)

	rec := doGET(e, "/api/map")
	require.Equal(t, http.StatusOK, decodeEnvelope(t, rec).Status)

	wh.summaries = []models.RegionSummary{{RegionCode: "NY", MeanValue: 1}}

	req := httptest.NewRequest(http.MethodPost, "/api/cache/invalidate", nil)
	resp := httptest.NewRecorder()
	e.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, decodeEnvelope(t, resp).Status)

	rec = doGET(e, "/api/map")
	env := decodeEnvelope(t, rec)
	var table models.MapTable
	require.NoError(t, json.Unmarshal(env.Data, &table))
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "NY", table.Rows[0].RegionCode)
}
