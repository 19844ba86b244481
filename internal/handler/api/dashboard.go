package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	models "PremiumPulse/internal/domain/models"
	domrepo "PremiumPulse/internal/domain/repository"
	icache "PremiumPulse/internal/service/cache"
	"PremiumPulse/internal/service/ratelimit"
	"PremiumPulse/internal/usecase"
	xhttp "PremiumPulse/pkg/http"
	xlogger "PremiumPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

const defaultCacheTTL = 30 * time.Second

// DashboardHandler serves the forecast dashboard API.
type DashboardHandler struct {
	logger *xlogger.Logger
	agg    *usecase.DashboardAggregator
	rl     *ratelimit.Limiter

	cache    icache.BytesCache
	cacheTTL time.Duration

	exportCapacity float64
	exportRefill   float64
}

func NewDashboardHandler(logger *xlogger.Logger, agg *usecase.DashboardAggregator) *DashboardHandler {
	return &DashboardHandler{
		logger:         logger,
		agg:            agg,
		rl:             ratelimit.New(),
		cacheTTL:       defaultCacheTTL,
		exportCapacity: 3,
		exportRefill:   0.5,
	}
}

// SetCache enables response caching.
func (h *DashboardHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	h.cache = c
	if ttl > 0 {
		h.cacheTTL = ttl
	}
}

// SetExportLimit tunes the per-client token bucket for export endpoints.
func (h *DashboardHandler) SetExportLimit(capacity, refillPerSec float64) {
	h.exportCapacity = capacity
	h.exportRefill = refillPerSec
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/map", h.Map)
	g.GET("/map/extremes", h.Extremes)
	g.GET("/summary", h.Summary)
	g.GET("/forecast", h.Forecast)
	g.GET("/validation", h.Validation)
	g.GET("/export/:table", h.Export)
	g.POST("/cache/invalidate", h.InvalidateCache)
}

func (h *DashboardHandler) Map(c echo.Context) error {
	req := &models.MapRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	metric := domrepo.NormalizeMetric(req.Metric)

	cacheKey := "map:" + string(metric)
	if hit, err := h.serveCached(c, cacheKey); err == nil && hit {
		return nil
	}

	table, err := h.agg.MapTable(c.Request().Context(), metric)
	if err != nil {
		return h.upstreamFailure(c, "map", err)
	}
	return h.respondCached(c, cacheKey, table)
}

func (h *DashboardHandler) Extremes(c echo.Context) error {
	req := &models.ExtremesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	metric := domrepo.NormalizeMetric(req.Metric)

	cacheKey := fmt.Sprintf("extremes:%s:%d", metric, req.N)
	if hit, err := h.serveCached(c, cacheKey); err == nil && hit {
		return nil
	}

	res, err := h.agg.Extremes(c.Request().Context(), metric, req.N)
	if err != nil {
		return h.upstreamFailure(c, "extremes", err)
	}
	return h.respondCached(c, cacheKey, res)
}

func (h *DashboardHandler) Summary(c echo.Context) error {
	cacheKey := "summary"
	if hit, err := h.serveCached(c, cacheKey); err == nil && hit {
		return nil
	}

	stats, err := h.agg.Summary(c.Request().Context())
	if err != nil {
		return h.upstreamFailure(c, "summary", err)
	}
	return h.respondCached(c, cacheKey, stats)
}

func (h *DashboardHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from := xhttp.ParseTimeDefault(req.From, time.Time{})
	to := xhttp.ParseTimeDefault(req.To, time.Time{})
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_RANGE",
			Field:   "to",
			Message: "to must not be before from",
		}})
	}

	series, err := h.agg.Forecast(c.Request().Context(), req.Series, from, to)
	if err != nil {
		return h.upstreamFailure(c, "forecast", err)
	}
	return xhttp.SuccessResponse(c, series)
}

func (h *DashboardHandler) Validation(c echo.Context) error {
	req := &models.ValidationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	metric := domrepo.NormalizeMetric(req.Metric)

	report, err := h.agg.ValidationReport(c.Request().Context(), metric)
	if err != nil {
		return h.upstreamFailure(c, "validation", err)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *DashboardHandler) Export(c echo.Context) error {
	table := c.Param("table")
	switch table {
	case usecase.ExportSummary, usecase.ExportGrowth, usecase.ExportForecast:
	default:
		return xhttp.NotFoundResponse(c, []*xhttp.AppError{
			xhttp.NotFoundErrorf("unknown export table: %s", table),
		})
	}

	if !h.rl.Allow(c.RealIP()+":export", h.exportCapacity, h.exportRefill) {
		if h.logger != nil {
			h.logger.Warn("export rate_limited",
				xlogger.String("remote", c.RealIP()),
				xlogger.String("table", table),
			)
		}
		return xhttp.TooManyRequestsResponse(c, "export rate limit exceeded")
	}

	out, err := h.agg.ExportCSV(c.Request().Context(), table)
	if err != nil {
		return h.upstreamFailure(c, "export", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s.csv"`, table))
	return c.Blob(http.StatusOK, "text/csv", out)
}

func (h *DashboardHandler) InvalidateCache(c echo.Context) error {
	if h.cache == nil {
		return xhttp.SuccessResponse(c, map[string]string{"cache": "disabled"})
	}
	if err := h.cache.Invalidate(); err != nil {
		if h.logger != nil {
			h.logger.Error("cache invalidate error", xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cache invalidation failed").WithError(err))
	}
	if h.logger != nil {
		h.logger.Info("cache invalidated", xlogger.String("remote", c.RealIP()))
	}
	return xhttp.SuccessResponse(c, map[string]string{"cache": "invalidated"})
}

// serveCached writes a cached response body if present. The cached bytes are
// the marshaled data payload, re-wrapped in the standard envelope.
func (h *DashboardHandler) serveCached(c echo.Context, key string) (bool, error) {
	if h.cache == nil {
		return false, nil
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("cache get error", xlogger.String("key", key), xlogger.Error(err))
		}
		return false, err
	}
	if !ok {
		return false, nil
	}
	if h.logger != nil {
		h.logger.Debug("cache hit", xlogger.String("key", key))
	}
	return true, xhttp.SuccessResponse(c, json.RawMessage(b))
}

func (h *DashboardHandler) respondCached(c echo.Context, key string, data interface{}) error {
	if h.cache != nil {
		if b, err := json.Marshal(data); err == nil {
			if err := h.cache.SetBytes(key, b, h.cacheTTL); err != nil && h.logger != nil {
				h.logger.Warn("cache set error", xlogger.String("key", key), xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, data)
}

// upstreamFailure maps a fatal warehouse fetch failure to 502. Anything else
// falls through to the generic 500.
func (h *DashboardHandler) upstreamFailure(c echo.Context, endpoint string, err error) error {
	if h.logger != nil {
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	}
	if usecase.IsFatalFetch(err) {
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError("warehouse unavailable").WithError(err))
	}
	return xhttp.AppErrorResponse(c, err)
}
