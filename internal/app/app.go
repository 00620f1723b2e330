package app

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"rescache/internal/cache"
	"rescache/internal/config"
	"rescache/internal/database"
	"rescache/internal/model"
	"rescache/internal/storage"
)

// Version is the application version written into version_information at
// schema creation.
const Version = "0.1.0"

// App is the application layer between the CLI and the cache service.
// It constructs all dependencies from config, exposes high-level
// operations, and manages the DB lifecycle on Close.
type App struct {
	cfg      *config.Config
	db       *database.CacheDB
	cache    *cache.Cache
	storages []configuredStorage
	op       *Operation
	logFile  *os.File
	logger   cache.Logger
}

// configuredStorage pairs a constructed backend with the config entry it
// came from, so flags like pre_installed stay attached to the right backend
// even when some entries fail to construct.
type configuredStorage struct {
	cfg config.StorageConfig
	st  cache.Storage
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Synchronize", "DeleteStorage").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	db, err := database.NewCacheDBFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	typeNames := cfg.ResourceTypes
	if len(typeNames) == 0 {
		typeNames = cache.DefaultResourceTypes()
	}

	if err := db.Initialize(typeNames, Version); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache database: %w", err)
	}

	opID := uuid.New().String()
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapter := &slogAdapter{l: logger}

	c := cache.New(db, cache.NewTypeRegistry(typeNames...), adapter, cache.RealClock{})

	// A broken backend (missing bundle file, unreachable bucket) should not
	// keep the rest of the cache from synchronizing.
	var storages []configuredStorage
	for _, scfg := range cfg.Storages {
		st, err := storage.NewStorageFromConfig(scfg)
		if err != nil {
			adapter.Warn("skipping storage", "type", scfg.Type, "location", scfg.Location, "error", err)
			continue
		}
		storages = append(storages, configuredStorage{cfg: scfg, st: st})
	}

	return &App{
		cfg:      cfg,
		db:       db,
		cache:    c,
		storages: storages,
		op:       NewOperation(operation, ""),
		logFile:  logFile,
		logger:   adapter,
	}, nil
}

// persistOperation saves the operation to the journal, giving it an
// auto-increment ID. This should only be called for mutating commands.
func (a *App) persistOperation() error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	id, err := a.db.CreateSyncOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = id
	return nil
}

// backends returns the constructed storage backends in config order.
func (a *App) backends() []cache.Storage {
	out := make([]cache.Storage, len(a.storages))
	for i, cs := range a.storages {
		out[i] = cs.st
	}
	return out
}

// SynchronizeAll reconciles the index against every configured storage.
func (a *App) SynchronizeAll() (*cache.BatchResult, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	result := a.cache.SynchronizeAll(a.backends())
	if !result.Ok() {
		a.op.Status = "error"
	}
	return result, nil
}

// SynchronizeStorage reconciles the index against the configured storage
// with the given location.
func (a *App) SynchronizeStorage(location string) (*cache.BatchResult, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	for _, cs := range a.storages {
		if cs.st.Location() == location {
			result, err := a.cache.SynchronizeStorage(cs.st)
			if err != nil || (result != nil && !result.Ok()) {
				a.op.Status = "error"
			}
			return result, err
		}
	}
	a.op.Status = "error"
	return nil, fmt.Errorf("no configured storage with location %s", location)
}

// RegisterPreinstalled registers every configured storage marked
// pre_installed without scanning it.
func (a *App) RegisterPreinstalled() error {
	if err := a.persistOperation(); err != nil {
		return err
	}
	for _, cs := range a.storages {
		if !cs.cfg.PreInstalled {
			continue
		}
		if err := a.cache.AddStorage(cs.st, true); err != nil {
			a.op.Status = "error"
			return err
		}
	}
	return nil
}

// DeleteStorage removes a storage and its dependent rows from the index.
func (a *App) DeleteStorage(location string) error {
	if err := a.persistOperation(); err != nil {
		return err
	}
	if err := a.cache.DeleteStorage(location); err != nil {
		a.op.Status = "error"
		return err
	}
	return nil
}

// SetStorageActive flips the active flag on a storage row.
func (a *App) SetStorageActive(location string, active bool) error {
	if err := a.persistOperation(); err != nil {
		return err
	}
	if err := a.cache.SetStorageActive(location, active); err != nil {
		a.op.Status = "error"
		return err
	}
	return nil
}

// ListStorages returns all registered storage rows.
func (a *App) ListStorages() ([]*model.Storage, error) {
	return a.cache.ListStorages()
}

// ResourceHistory returns the version history for a resource, newest first.
func (a *App) ResourceHistory(filename, resourceType string) ([]*model.VersionedResource, error) {
	return a.cache.ResourceHistory(filename, resourceType)
}

// Tags returns all tags recorded for a resource type.
func (a *App) Tags(resourceType string) ([]*model.Tag, error) {
	return a.cache.TagsForResourceType(resourceType)
}

// History returns the most recent recorded operations.
func (a *App) History(limit int) ([]*model.SyncOperation, error) {
	return a.cache.History(limit)
}

// Status reports the migration state and version record of the database.
func (a *App) Status() (*model.VersionInformation, error) {
	if err := a.db.CheckMigrations(); err != nil {
		return nil, err
	}
	return a.db.VersionInformation()
}

// Close finalizes the operation record and closes all resources.
func (a *App) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.db.FinishSyncOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
