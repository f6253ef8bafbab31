// Command catalog-sync publishes Authentik users and groups as catalog entities.
//
// It runs one sync cycle at startup, then every sync.frequency. With -once it
// runs a single cycle and exits with status 1 when the cycle fails.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keepersecurity.com/ksm-catalog-sync/internal/app"
	"keepersecurity.com/ksm-catalog-sync/internal/config"
	"keepersecurity.com/ksm-catalog-sync/internal/logging"
	"keepersecurity.com/ksm-catalog-sync/internal/server"
	"keepersecurity.com/ksm-catalog-sync/internal/supervisor"
	"keepersecurity.com/ksm-catalog-sync/provider"
)

var (
	configPath = flag.String("config", "", "Path to the YAML config file")
	runOnce    = flag.Bool("once", false, "Run one sync cycle and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(cfg.Logging)

	sink, err := app.NewSink(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create catalog sink")
	}
	p := app.NewProvider(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startupCtx, cancel := ctx, context.CancelFunc(func() {})
	if cfg.Sync.Timeout > 0 {
		startupCtx, cancel = context.WithTimeout(ctx, cfg.Sync.Timeout)
	}
	result := p.Connect(startupCtx, sink)
	cancel()

	if *runOnce {
		if !result.Ok() {
			stop()
			os.Exit(1)
		}
		return
	}

	scheduler := provider.NewScheduler()
	if err := scheduler.ScheduleTask(provider.RefreshTask(p, cfg.Sync.Frequency, cfg.Sync.Timeout)); err != nil {
		logging.Fatal().Err(err).Msg("failed to schedule refresh task")
	}

	root := supervisor.New("catalog-sync")
	root.Add(scheduler)
	if cfg.Server.Enabled {
		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           server.NewRouter(p, cfg.Sync.Timeout),
			ReadHeaderTimeout: 10 * time.Second,
		}
		root.Add(supervisor.NewHTTPService(srv))
		logging.Info().Str("addr", cfg.Server.Addr).Msg("http server enabled")
	}

	logging.Info().Str("provider", p.Name()).Dur("frequency", cfg.Sync.Frequency).Msg("catalog sync started")
	if err := root.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor stopped")
	}
	logging.Info().Msg("catalog sync stopped")
}
