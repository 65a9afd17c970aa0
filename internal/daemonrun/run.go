// Package daemonrun assembles the backofficed runtime from configuration.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"backoffice/internal/async"
	"backoffice/internal/config"
	"backoffice/internal/contenttype"
	"backoffice/internal/daemon"
	"backoffice/internal/filestore"
	"backoffice/internal/logging"
	"backoffice/internal/mailer"
	"backoffice/internal/metrics"
	"backoffice/internal/news"
	"backoffice/internal/omnisearch"
	"backoffice/internal/readme"
	"backoffice/internal/session"
	"backoffice/internal/stack"
	"backoffice/internal/store"
	"backoffice/internal/uri"
	"backoffice/internal/widget"
)

// AdminBase is the path omnisearch results link into.
const AdminBase = "/admin"

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Runtime is a fully wired set of services.
type Runtime struct {
	Store    *store.Store
	Async    *async.Handler
	Metrics  *metrics.Metrics
	News     *news.Feed
	Sessions *session.Manager
}

// Components returns the pieces the daemon owns.
func (rt *Runtime) Components() daemon.Components {
	return daemon.Components{
		Store:   rt.Store,
		Async:   rt.Async,
		Metrics: rt.Metrics,
		News:    rt.News,
	}
}

// Build wires every service behind the async handler on top of st. The
// caller keeps ownership of st.
func Build(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("build runtime: config and store are required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	types, err := contenttype.Load(cfg.Paths.ContentTypesFile)
	if err != nil {
		return nil, fmt.Errorf("load content types: %w", err)
	}
	m := metrics.New()
	feed, err := news.New(cfg, st.DriverName(), logger, news.WithRecorder(m))
	if err != nil {
		return nil, fmt.Errorf("news feed: %w", err)
	}
	sender, err := mailer.NewSender(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}

	files := filestore.NewManager(cfg)
	sessions := session.NewManager(cfg, st, logger, session.WithRejectionHook(m.ObserveAuthRejection))
	handler := async.New(async.Deps{
		Config:   cfg,
		Store:    st,
		Types:    types,
		News:     feed,
		Widgets:  widget.FromConfig(cfg),
		Files:    files,
		Stack:    stack.New(cfg, st, files, logger),
		URIs:     uri.NewGenerator(types, st),
		Search:   omnisearch.New(types, st, AdminBase),
		Readme:   readme.New(cfg.Paths.ExtensionsDir),
		Mail:     sender,
		Sessions: sessions,
		Recorder: m,
		Logger:   logger,
	})
	return &Runtime{
		Store:    st,
		Async:    handler,
		Metrics:  m,
		News:     feed,
		Sessions: sessions,
	}, nil
}

// Run starts the daemon and blocks until SIGINT/SIGTERM or cmdCtx ends.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	activity := logging.NewActivityHandler(st, logging.ParseLevel(cfg.Logging.ActivityLevel))
	logger, err := logging.NewFromConfig(cfg, activity)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("init logger: %w", err)
	}

	rt, err := Build(cfg, st, logger)
	if err != nil {
		_ = st.Close()
		return err
	}
	d, err := daemon.New(cfg, logger, rt.Components())
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check api_bind and whether another backofficed holds the lock"),
		)
		return err
	}

	pidPath := PIDPath(cfg)
	if err := writePIDFile(pidPath); err != nil {
		logger.Warn("write pid file failed", logging.Error(err))
	}
	defer os.Remove(pidPath)

	<-signalCtx.Done()
	logger.Info("backofficed shutting down")
	return nil
}

// PIDPath is where a running daemon records its process id.
func PIDPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "backofficed.pid")
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
