// Package main runs the on-curve analysis REST API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ramonehamilton/oncurve/internal/api"
	"github.com/ramonehamilton/oncurve/internal/api/websocket"
	"github.com/ramonehamilton/oncurve/internal/app"
	"github.com/ramonehamilton/oncurve/internal/cardlookup"
	"github.com/ramonehamilton/oncurve/internal/config"
	"github.com/ramonehamilton/oncurve/internal/logging"
	"github.com/ramonehamilton/oncurve/internal/version"
)

// pruneInterval is how often stale cards are dropped from the cache.
const pruneInterval = time.Hour

var (
	port       = flag.Int("port", 0, "API server port (default from config)")
	dbPath     = flag.String("db-path", "", "Card cache database path (default: ~/.oncurve/cards.db)")
	configPath = flag.String("config", "", "Config file (default: ~/.oncurve/config.toml)")
)

func main() {
	flag.Parse()

	var err error
	if flag.Arg(0) == "migrate" {
		err = migrateCommand(flag.Args()[1:], os.Stdout)
	} else {
		err = run()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Cache.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting oncurve API server",
		zap.String("version", version.GetVersion()),
		zap.Int("port", cfg.Server.Port),
		zap.String("strategy", cfg.Analysis.Strategy),
	)

	hub := websocket.NewHub(logger.Named("ws"))
	services, err := app.New(cfg, logger, app.Options{Observer: websocket.NewAnalysisObserver(hub)})
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(); err != nil {
			logger.Warn("close card cache", zap.Error(err))
		}
	}()

	timeout, err := cfg.GetRequestTimeout()
	if err != nil {
		return err
	}

	deps := api.Dependencies{
		Analyzer: services.Analyzer,
		Metrics:  services.Metrics,
		Lookups:  services.Cards,
		Hub:      hub,
		Logger:   logger.Named("api"),
	}
	if services.DB != nil {
		deps.DB = services.DB
	}
	server := api.NewServer(&api.Config{Port: cfg.Server.Port, RequestTimeout: timeout}, deps)
	if err := server.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pruner := cardlookup.NewPruneScheduler(services.Cards, cardlookup.SchedulerConfig{
		Interval:         pruneInterval,
		StartImmediately: true,
		Logger:           logger.Named("prune"),
	})
	if err := pruner.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = pruner.Stop() }()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("API server stopped")
	return nil
}
