package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ProductCatalog/internal/catalog"
	"ProductCatalog/internal/config"
	"ProductCatalog/pkg/kit"
)

const (
	service     = "catalog"
	startupWait = 30 * time.Second
	writeWindow = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := kit.NewLogger(service, "info")
		boot.Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	db, err := catalog.OpenPostgres(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("connect database failed", zap.Error(err))
	}

	gw := catalog.NewGateway(db, log)
	defer func() { _ = gw.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, cancel := context.WithTimeout(context.Background(), startupWait)
	if err := gw.Migrate(ctx); err != nil {
		cancel()
		log.Fatal("migrate failed", zap.Error(err))
	}
	if _, err := catalog.ReconcileSeed(ctx, gw, log, catalog.NewSeedMetrics(reg)); err != nil {
		cancel()
		log.Fatal("seed reconciliation failed", zap.Error(err))
	}
	cancel()

	s := &catalog.Server{
		Gateway:      gw,
		Log:          log,
		WriteLimiter: kit.NewIPRateLimiter(cfg.WriteLimit, writeWindow),
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
		CORSOrigin:     cfg.CORSOrigin,
	})

	if err := kit.RunHTTPServer(context.Background(), ":"+cfg.Port, h, log, cfg.ShutdownTimeout); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
