// Package main - Entry point for the spot advisor server
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"spot-advisor/api"
	"spot-advisor/clouds/azure"
	"spot-advisor/core/engine"
	"spot-advisor/internal/cache"
	"spot-advisor/internal/config"
	"spot-advisor/internal/logging"
)

const version = "1.0.0"

func main() {
	addr := flag.String("addr", "", "Listen address (overrides config)")
	configPath := flag.String("config", "", "Path to JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal("failed to load configuration", zap.Error(err))
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		logging.Fatal("failed to initialize logging", zap.Error(err))
	}
	defer logging.Sync()

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		logging.Fatal("failed to construct advisor engine", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(version, eng))
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logging.Info("spot advisor listening",
			zap.String("addr", cfg.Server.Addr), zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logging.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildEngine wires the Azure collaborators, cache, and engine from
// configuration. Missing credentials are a startup error, never a
// per-request one.
func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	creds, err := azure.CredentialsFromConfig(cfg.Azure)
	if err != nil {
		return nil, err
	}
	tokens, err := creds.TokenSource(context.Background())
	if err != nil {
		return nil, err
	}

	catalogClient := azure.NewComputeClient(creds, tokens)
	pricingClient := azure.NewPricingClient(
		cfg.Pricing.RequestsPerSecond,
		time.Duration(cfg.Pricing.TimeoutSeconds)*time.Second)
	evictionClient := azure.NewEvictionClient(creds, tokens)

	var store engine.Cache
	if cfg.Cache.Enabled {
		store = cache.New(cfg.Cache.MaxEntries)
	}

	return engine.New(catalogClient, pricingClient, evictionClient, store, engine.Config{
		DefaultCurrency: cfg.Pricing.DefaultCurrency,
		CatalogTTL:      cfg.Cache.CatalogTTL(),
		PricingTTL:      cfg.Cache.PricingTTL(),
	}), nil
}
