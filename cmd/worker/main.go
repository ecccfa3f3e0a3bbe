// SPDX-License-Identifier: AGPL-3.0-or-later

// Command worker is the reference standalone binary for the spreadsheet-
// backed coordination core: it wires the Gateway, Worker Registry, Leader
// Election, and Pipeline Orchestrator into a supervised process that
// drains Tasks and fans out Sources until asked to stop.
//
// This binary's extractor and task callback are stubs. The coordination
// core is meant to be embedded: a real deployment constructs its own
// orchestrator.Extractor (to turn a Source url into videos) and
// orchestrator.Callback (to process one Task url) and passes them to
// orchestrator.New directly, reusing everything else in this file as-is.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/config"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/election"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/gateway"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/httpapi"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/logging"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/orchestrator"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/ratecache"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/registry"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/sheets"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logging.Info().Str("worker_name", cfg.WorkerName).Msg("starting worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := sheets.NewGoogleBackend(ctx, cfg.ServiceAccountFile, cfg.SpreadsheetID)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize backend credentials")
	}

	gw := gateway.New(backend, cfg.Gateway)

	cache, err := ratecache.Open(cfg.RateCache.Dir)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open rate cache")
	}
	defer cache.Close()

	reg, err := registry.New(ctx, gw, cfg.Registry, cfg.WorkerName)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to register worker")
	}
	// The Gateway invokes its ActiveWorkerSource while holding its own
	// serialization lock (see pace.go), so this callback must be a plain
	// local read with no path back through the Gateway — reg.ActiveWorkers
	// would deadlock on the Gateway's non-reentrant mutex. The live count
	// is instead sampled by activeWorkerRefreshService below, on its own
	// unlocked schedule, and persisted here for the Gateway to read back.
	cachedActiveWorkers := func(ctx context.Context) (int, error) {
		count, _, ok, err := cache.Get(cfg.SpreadsheetID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 1, nil
		}
		return count, nil
	}
	gw.SetActiveWorkerSource(cachedActiveWorkers)

	// Seed the cache once up front (a plain, non-nested Registry call) so
	// the first few Gateway calls don't pace themselves as if only one
	// worker exists while waiting for the first refresh tick.
	if n, err := reg.ActiveWorkers(ctx); err != nil {
		logging.Warn().Err(err).Msg("initial active worker sample failed")
	} else if err := cache.Put(cfg.SpreadsheetID, n, time.Now().UTC()); err != nil {
		logging.Warn().Err(err).Msg("failed to persist initial active worker sample")
	}

	el := election.New(gw, cfg.Election, reg.WorkerID())
	el.SetActiveWorkerSource(cachedActiveWorkers)

	extractor := orchestrator.ExtractorFunc(func(ctx context.Context, url string) (orchestrator.ExtractResult, error) {
		return orchestrator.ExtractResult{}, errors.New("no extractor configured: embed this binary's packages and supply one via orchestrator.New")
	})
	callback := orchestrator.Callback(func(ctx context.Context, url string) error {
		return errors.New("no task callback configured: embed this binary's packages and supply one via orchestrator.New")
	})

	orch := orchestrator.NewWithRenewInterval(gw, cfg.Orchestrator, reg.WorkerID(), reg, el, cfg.Election.RenewInterval, extractor, callback)

	slogLogger := logging.NewSlogLogger()
	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Orchestrator.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(slogLogger, treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}
	tree.AddWorkerLoopService(workerLoopService{orch: orch})
	tree.AddHeartbeatService(heartbeatService{orch: orch, interval: cfg.Election.RenewInterval})
	tree.AddActiveWorkerRefreshService(activeWorkerRefreshService{
		reg:           reg,
		cache:         cache,
		spreadsheetID: cfg.SpreadsheetID,
		interval:      cfg.Gateway.ActiveWorkerRefresh,
	})

	var httpSrv *httpapi.Server
	if cfg.HTTP.Enabled {
		httpSrv = httpapi.New(cfg.HTTP, func() httpapi.Status {
			return httpapi.Status{
				WorkerID:   reg.WorkerID(),
				WorkerName: cfg.WorkerName,
				IsLeader:   el.Held(),
			}
		})
		httpErrCh := httpSrv.Start()
		go func() {
			if err := <-httpErrCh; err != nil {
				logging.Error().Err(err).Msg("introspection HTTP server stopped unexpectedly")
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
		sig = <-sigCh
		logging.Warn().Str("signal", sig.String()).Msg("received second shutdown signal, forcing exit")
		os.Exit(1)
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	if httpSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Orchestrator.ShutdownTimeout)
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("introspection HTTP server shutdown error")
		}
		shutdownCancel()
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
	}

	logging.Info().Msg("worker stopped gracefully")
}

// workerLoopService adapts Orchestrator.Run to suture.Service.
type workerLoopService struct {
	orch *orchestrator.Orchestrator
}

func (s workerLoopService) Serve(ctx context.Context) error {
	return s.orch.Run(ctx)
}

// heartbeatService independently refreshes liveness on a timer, so a
// slow task or a poll_interval sleep never starves the Workers sheet of
// fresh heartbeats. Per spec §5 it submits through the same Gateway as
// everything else rather than bypassing its serialization.
type heartbeatService struct {
	orch     *orchestrator.Orchestrator
	interval time.Duration
}

func (s heartbeatService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.orch.SendHeartbeat(ctx); err != nil {
				logging.Warn().Err(err).Msg("background heartbeat failed")
			}
		}
	}
}

// activeWorkerRefreshService periodically samples the live active-worker
// count through the Registry (which reads through the Gateway like any
// other caller) and persists it to the local rate cache. It runs outside
// the Gateway's serialization lock, so the Gateway's own ActiveWorkerSource
// callback can read the cached sample without re-entering the Gateway.
type activeWorkerRefreshService struct {
	reg           *registry.Registry
	cache         *ratecache.Cache
	spreadsheetID string
	interval      time.Duration
}

func (s activeWorkerRefreshService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.reg.ActiveWorkers(ctx)
			if err != nil {
				logging.Warn().Err(err).Msg("active worker refresh failed")
				continue
			}
			if err := s.cache.Put(s.spreadsheetID, n, time.Now().UTC()); err != nil {
				logging.Warn().Err(err).Msg("failed to persist active worker sample")
			}
		}
	}
}
