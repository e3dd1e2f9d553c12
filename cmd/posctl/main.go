// Command posctl is the runtime's process entrypoint: it builds the
// Runtime, constructs the terminal signal hub and the printer dispatch
// manager, starts the auto-save supervisor, the CUPS health monitor, and
// the diagnostics server, then waits for SIGINT/SIGTERM to drive a
// ForceShutdown.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/viewtouch/posk/internal/checkmodel"
	"github.com/viewtouch/posk/internal/config"
	"github.com/viewtouch/posk/internal/diag"
	"github.com/viewtouch/posk/internal/persistence"
	"github.com/viewtouch/posk/internal/posctx"
	"github.com/viewtouch/posk/internal/printer"
	"github.com/viewtouch/posk/internal/serial"
	"github.com/viewtouch/posk/internal/settings"
	"github.com/viewtouch/posk/internal/termlink"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	settingsPaths := settings.Paths{
		SettingsDat: filepath.Join(cfg.DataDir, "settings.dat"),
		MediaDat:    filepath.Join(cfg.DataDir, "media.dat"),
		ConfDir:     filepath.Join(cfg.DataDir, "conf"),
	}
	set, err := settings.Load(settingsPaths)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load settings, starting from defaults")
		set = settings.New()
	}

	checks := checkmodel.NewCheckList()
	allocator := serial.NewAllocator(0)
	hub := termlink.NewHub()

	rt := posctx.New(checks, allocator, set, hub, log.Logger, cfg.DataDir, cfg.ArchiveDir)

	printMgr := printer.NewManager(func(targetID int) (*printer.Channel, error) {
		return nil, nil // dial function is supplied by the deployment-specific transport (TCP/unix socket to each printer subprocess)
	})
	_ = printMgr

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := persistence.NewShutdownController(
		func() { /* force-exit any open edit mode across connected terminals */ },
		func(ctx context.Context) error {
			var firstErr error
			rt.RLocked(func(rt *posctx.Runtime) {
				for _, c := range rt.Checks.All() {
					if err := checkmodel.Save(c, rt.DataDir); err != nil && firstErr == nil {
						firstErr = err
					}
				}
			})
			return firstErr
		},
		log.Logger,
	)

	supervisor := persistence.New([]persistence.Tuple{
		{Name: "checks", Save: func(ctx context.Context) (persistence.SaveResult, error) {
			var saveErr error
			rt.RLocked(func(rt *posctx.Runtime) {
				for _, c := range rt.Checks.All() {
					if !c.Dirty {
						continue
					}
					if err := checkmodel.Save(c, rt.DataDir); err != nil {
						saveErr = err
					}
				}
			})
			if saveErr != nil {
				return persistence.SaveFailed, saveErr
			}
			return persistence.SaveSuccess, nil
		}},
		{Name: "settings", Save: func(ctx context.Context) (persistence.SaveResult, error) {
			if err := settings.Save(set, settingsPaths); err != nil {
				return persistence.SaveFailed, err
			}
			return persistence.SaveSuccess, nil
		}},
	}, cfg.AutoSaveInterval, shutdown.InProgress, log.Logger)
	supervisor.Start(ctx)

	cupsMonitor := persistence.NewCupsMonitor("lpstat", []string{"-p"}, cfg.CupsCheckInterval, cfg.SystemCallTimeout, log.Logger, func(healthy bool, output string, err error) {
		if !healthy {
			log.Warn().Err(err).Msg("cups health check failed")
		}
	})
	go cupsMonitor.Run(ctx)

	guard, err := diag.NewBearerGuard(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Warn().Err(err).Msg("diagnostics bearer guard disabled")
		guard = nil
	}
	diagServer := diag.New(guard, func() persistence.IntegrityReport {
		var report persistence.IntegrityReport
		rt.RLocked(func(rt *posctx.Runtime) {
			report.TerminalCount = rt.Hub.ConnectedCount()
		})
		return report
	}, func() diag.Metrics {
		var m diag.Metrics
		rt.RLocked(func(rt *posctx.Runtime) {
			m.ConnectedTerminals = rt.Hub.ConnectedCount()
			m.OpenChecks = rt.Checks.Len()
		})
		return m
	})

	go func() {
		if err := diagServer.Start(ctx, ":"+cfg.DiagPort); err != nil {
			log.Error().Err(err).Msg("diagnostics server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	supervisor.Stop()
	forceCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	shutdown.ForceShutdown(forceCtx)

	log.Info().Msg("posctl exited")
}
