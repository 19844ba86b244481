package di

import (
	"fmt"

	"PremiumPulse/internal/domain/repository"
	domsvc "PremiumPulse/internal/domain/service"
	internalrepo "PremiumPulse/internal/repository"
	icache "PremiumPulse/internal/service/cache"
	"PremiumPulse/internal/usecase"
	pkgch "PremiumPulse/pkg/clickhouse"
	"PremiumPulse/pkg/config"
	"PremiumPulse/pkg/metrics"
	"PremiumPulse/pkg/server"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideWarehouse creates the ClickHouse-backed warehouse repository.
func ProvideWarehouse(chClient *pkgch.Client, cfg *config.Config) repository.Warehouse {
	return internalrepo.NewCHWarehouse(chClient, internalrepo.Tables{
		Summary:  cfg.Warehouse.SummaryTable,
		Growth:   cfg.Warehouse.GrowthTable,
		Forecast: cfg.Warehouse.ForecastTable,
	})
}

// ProvideRegionValidator creates the region code whitelist.
func ProvideRegionValidator() domsvc.RegionCodeValidator {
	return domsvc.NewUSStateCodeValidator()
}

// ProvideAggregator creates the dashboard aggregator use case.
func ProvideAggregator(
	wh repository.Warehouse,
	validator domsvc.RegionCodeValidator,
	m repository.Metrics,
) *usecase.DashboardAggregator {
	return usecase.NewDashboardAggregator(wh, validator, m)
}

// ProvideCache creates the response cache, or nil when disabled.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if !cfg.Dashboard.Cache.Enabled {
		return nil
	}
	if cfg.Dashboard.Cache.Backend == "redis" {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Dashboard.Cache.Redis.Addr,
			Password: cfg.Dashboard.Cache.Redis.Password,
			DB:       cfg.Dashboard.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	agg *usecase.DashboardAggregator,
	wh repository.Warehouse,
	cache icache.BytesCache,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, agg, wh, cache, chClient)
}
