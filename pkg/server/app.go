package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	domrepo "PremiumPulse/internal/domain/repository"
	"PremiumPulse/internal/handler/api"
	icache "PremiumPulse/internal/service/cache"
	"PremiumPulse/internal/usecase"
	pkgch "PremiumPulse/pkg/clickhouse"
	"PremiumPulse/pkg/config"
	xhttp "PremiumPulse/pkg/http"
	applogger "PremiumPulse/pkg/logger"
)

// loggerTarget lets the app inject the logger into components built by DI.
type loggerTarget interface {
	SetLogger(l *applogger.Logger)
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	agg        *usecase.DashboardAggregator
	warehouse  domrepo.Warehouse
	cache      icache.BytesCache
	chClient   *pkgch.Client
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	agg *usecase.DashboardAggregator,
	warehouse domrepo.Warehouse,
	cache icache.BytesCache,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		agg:       agg,
		warehouse: warehouse,
		cache:     cache,
		chClient:  chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	logFormat := "console"
	if a.cfg.Environment == "production" {
		logFormat = "json"
	}
	l, err := applogger.New(&applogger.Config{Level: "info", Format: logFormat, Output: "stdout"})
	if err != nil {
		return err
	}

	a.agg.SetLogger(l)
	if t, ok := a.warehouse.(loggerTarget); ok {
		t.SetLogger(l)
	}

	h := api.NewDashboardHandler(l, a.agg)
	if a.cache != nil {
		h.SetCache(a.cache, a.cfg.Dashboard.Cache.TTL)
	}
	if a.cfg.Dashboard.ExportRate.Capacity > 0 {
		h.SetExportLimit(a.cfg.Dashboard.ExportRate.Capacity, a.cfg.Dashboard.ExportRate.RefillPerSec)
	}

	a.httpServer = xhttp.NewServer(h,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
	)
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("dashboard api started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("summary_table", a.cfg.Warehouse.SummaryTable),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(l)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(l *applogger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if c, ok := a.cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
