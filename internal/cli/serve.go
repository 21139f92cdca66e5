package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deckpilot/deckpilot/internal/api"
	"github.com/deckpilot/deckpilot/internal/config"
	"github.com/deckpilot/deckpilot/internal/credentials"
	"github.com/deckpilot/deckpilot/internal/db"
	"github.com/deckpilot/deckpilot/internal/display"
	"github.com/deckpilot/deckpilot/internal/logging"
	"github.com/deckpilot/deckpilot/internal/replication"
	"github.com/deckpilot/deckpilot/internal/services"
	"github.com/deckpilot/deckpilot/internal/session"
	"github.com/deckpilot/deckpilot/pkg/webkit"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the presentation controller and HTTP surfaces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	// GTK requires the main OS thread.
	runtime.LockOSThread()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := buildLogger(cfg)
	log.Info().
		Str("mode", string(cfg.Mode)).
		Bool("native_webkit", webkit.IsNativeAvailable()).
		Msg("starting deckpilot")

	ctx, cancel := context.WithCancel(logging.WithContext(context.Background(), log))
	defer cancel()

	// Open history is a convenience; a broken database must not stop the
	// show.
	var history *db.HistoryStore
	if cfg.History.Path != "" {
		if database, err := db.InitDB(cfg.History.Path); err != nil {
			log.Warn().Err(err).Msg("open-history database unavailable")
		} else {
			defer database.Close()
			history = db.NewHistoryStore(database, cfg.History.MaxEntries)
		}
	}

	dataDir, err := config.GetDataDir()
	if err != nil {
		return err
	}
	webCfg := webkit.GetDefaultConfig()
	webCfg.DataDir = dataDir
	webCfg.CacheDir = filepath.Join(dataDir, "cache")

	hub := api.NewHub(logging.Component(log, "events"))
	resolver := display.NewResolver(nil)

	ctrl := session.NewController(session.Options{
		System:    session.NativeSystem{},
		Displays:  resolver,
		Prefs:     config.Get,
		Creds:     &credentials.Checker{Path: filepath.Join(dataDir, "cookies.sqlite")},
		Events:    hub,
		WebConfig: webCfg,
		Logger:    logging.Component(log, "session"),
	})
	svc := services.NewPresentationService(ctrl, history, logging.Component(log, "service"))

	var fwd api.Forwarder
	var health *replication.HealthMonitor
	if cfg.Mode == config.ModePrimary {
		backups := func() []string { return config.Get().Replication.Backups }
		port := func() int { return config.Get().Replication.Port }
		replog := logging.Component(log, "replication")

		fwd = replication.NewReplicator(backups, port, replog)
		health = replication.NewHealthMonitor(backups, port, func(host, status string) {
			hub.Publish(session.Event{Type: "backup-status", Data: map[string]any{
				"host": host, "status": status,
			}})
		}, replog)
		go health.Run(ctx)
	}

	var backupSource api.BackupStatusSource
	if health != nil {
		backupSource = health
	}
	var recents api.RecentLister
	if history != nil {
		recents = history
	}

	handler := api.NewHandler(svc, fwd, logging.Component(log, "api"))
	settings := api.NewSettingsHandler(resolver, backupSource, recents, hub, logging.Component(log, "api"))
	allow := api.AllowlistMiddleware(func() []string {
		return config.Get().Control.AllowedIPs
	}, logging.Component(log, "api"))

	controlSrv := api.NewServer(cfg.Server.ControlPort,
		api.ControlRouter(handler, allow), logging.Component(log, "api"))
	settingsSrv := api.NewServer(cfg.Server.SettingsPort,
		api.SettingsRouter(handler, settings, allow), logging.Component(log, "api"))
	controlSrv.Start()
	settingsSrv.Start()

	// Port and mode changes need a restart; say so instead of silently
	// ignoring them.
	config.OnChange(func(next *config.Config) {
		if next.Server != cfg.Server || next.Mode != cfg.Mode {
			log.Warn().Msg("port/mode preference changes take effect after restart")
		}
	})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
		_ = controlSrv.Shutdown(context.Background())
		_ = settingsSrv.Shutdown(context.Background())
		_ = ctrl.Close(context.Background())
		webkit.QuitMainLoop()
	}()

	webkit.RunMainLoop()
	return nil
}

func buildLogger(cfg *config.Config) zerolog.Logger {
	lcfg := logging.DefaultConfig()
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		lcfg.Level = level
	}
	if cfg.Logging.Format != "" {
		lcfg.Format = cfg.Logging.Format
	}
	return logging.New(lcfg)
}
