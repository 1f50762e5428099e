package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"

	"github.com/dori/kanbo/internal/auth"
	"github.com/dori/kanbo/internal/board"
	"github.com/dori/kanbo/internal/config"
	"github.com/dori/kanbo/internal/db"
	"github.com/dori/kanbo/internal/logging"
	"github.com/dori/kanbo/internal/model"
	"github.com/dori/kanbo/internal/notify"
	"github.com/dori/kanbo/internal/storage"
)

// App holds the application state and dependencies
type App struct {
	Config   *config.Config
	Log      *log.Logger
	Store    storage.BlobStore
	Repo     *storage.Repository
	Auth     *auth.Service
	Notifier *notify.Notifier

	closers  []io.Closer
	lockFile *flock.Flock
}

// Options control how the app starts
type Options struct {
	// Interactive sends logs to <data_dir>/kanbo.log and takes the
	// single-instance lock.
	Interactive bool
	// LogOutput receives logs in non-interactive mode, stderr when nil
	LogOutput io.Writer
}

// New creates a new application instance
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logOpts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Out: opts.LogOutput}
	if opts.Interactive {
		logOpts.File = filepath.Join(cfg.DataDir, "kanbo.log")
	}
	logger, logCloser, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Log:     logger,
		closers: []io.Closer{logCloser},
	}

	if opts.Interactive {
		if err := a.acquireLock(); err != nil {
			a.Close()
			return nil, err
		}
	}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}
	a.Store = store
	a.Repo = storage.NewRepository(store, logger)
	a.Auth = auth.NewService(store, logger)
	a.Notifier = notify.NewNotifier(logger)

	logger.WithFields(log.Fields{
		"backend":  cfg.Storage.Backend,
		"data_dir": cfg.DataDir,
	}).Debug("app started")
	return a, nil
}

func (a *App) openStore(ctx context.Context) (storage.BlobStore, error) {
	switch a.Config.Storage.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil
	case config.BackendRedis:
		store, err := storage.OpenRedis(ctx, a.Config.Storage.RedisURL, a.Config.Storage.RedisPrefix)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	default:
		database, err := db.Open(a.Config.SQLiteFile())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, database)
		return database, nil
	}
}

// OpenBoard opens the board of whoever is logged in. Moves into the
// completed column raise a desktop notification when the owner allows it.
func (a *App) OpenBoard(ctx context.Context) *board.Session {
	identity := a.Auth.Current(ctx)
	session := board.Open(ctx, a.Repo, identity,
		board.WithLogger(a.Log),
		board.WithMoveHook(a.Notifier.TaskMoved),
	)
	if !identity.IsAuthenticated() {
		settings := session.Settings()
		if a.Config.UI.Theme != "" {
			settings.Theme = a.Config.UI.Theme
		}
		session.SetSettings(ctx, settings)
	}
	a.ApplySettings(session.Settings())
	return session
}

// ApplySettings pushes user preferences into app services
func (a *App) ApplySettings(settings model.Settings) {
	a.Notifier.SetEnabled(settings.Notifications)
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.Config.DataDir, "kanbo.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of kanbo is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	// stores first, the log file last
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	a.releaseLock()

	return errors.Join(errs...)
}
