package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"backoffice/internal/config"
	"backoffice/internal/logging"
	"backoffice/internal/metrics"
	"backoffice/internal/news"
	"backoffice/internal/store"
)

// Mount is an HTTP handler served beneath a path prefix.
type Mount interface {
	http.Handler
	Prefix() string
}

// Components are the long-lived services the daemon owns. Store and Async
// are required.
type Components struct {
	Store   *store.Store
	Async   Mount
	Metrics *metrics.Metrics
	News    *news.Feed
}

// Daemon serves the async API and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	news    *news.Feed
	api     *apiServer
	dbPath  string
	started atomic.Pointer[time.Time]

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	APIAddress   string
	StartedAt    time.Time
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, c Components) (*Daemon, error) {
	if cfg == nil || logger == nil || c.Store == nil || c.Async == nil {
		return nil, errors.New("daemon requires config, logger, store, and async handler")
	}
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    c.Store,
		news:     c.News,
		dbPath:   c.Store.Path(),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, c.Async, c.Metrics, logger)
	return d, nil
}

// Start acquires the daemon lock and begins serving.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another backofficed instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if d.news != nil {
		d.news.Start()
	}
	if err := d.api.start(runCtx); err != nil {
		cancel()
		if d.news != nil {
			d.news.Stop()
		}
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}

	d.cancel = cancel
	now := time.Now().UTC()
	d.started.Store(&now)
	d.running.Store(true)
	d.logger.Info("backofficed started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.addr()),
	)
	return nil
}

// Stop halts the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if d.news != nil {
		d.news.Stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.started.Store(nil)
	d.running.Store(false)
	d.logger.Info("backofficed stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.dbPath,
		LockFilePath: d.lockPath,
		APIAddress:   d.api.addr(),
	}
	if started := d.started.Load(); started != nil {
		status.StartedAt = *started
	}
	return status
}

// Ping checks that the database answers.
func (d *Daemon) Ping(ctx context.Context) error {
	return d.store.Ping(ctx)
}
