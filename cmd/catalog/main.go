package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"MiniCatalog/internal/catalog"
	"MiniCatalog/internal/config"
	"MiniCatalog/pkg/kit"
)

func main() {
	service := "catalog"

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := kit.NewLogger(service, cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("config loaded", zap.Stringer("config", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, closeStore, err := openStore(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal("open store failed", zap.Error(err))
	}
	defer closeStore()

	s := &catalog.Server{
		Catalog: catalog.NewCatalog(catalog.InstrumentStore(store, reg)),
		Log:     log,
	}
	if n := cfg.Limits.WritesPerMinute; n > 0 {
		s.WriteLimiter = kit.NewIPRateLimiter(n, time.Minute)
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	if err := kit.RunHTTPServer(ctx, cfg.Addr(), h, cfg.Server.Timeout, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (catalog.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := catalog.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		ps := catalog.NewPostgresStore(db)
		if err := ps.Migrate(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("using postgres store")
		return ps, func() { _ = db.Close() }, nil

	default:
		fs := catalog.NewFileStore(cfg.Path)
		if err := fs.EnsureFile(); err != nil {
			return nil, nil, err
		}
		log.Info("using file store", zap.String("path", fs.Path()))
		return fs, func() {}, nil
	}
}
