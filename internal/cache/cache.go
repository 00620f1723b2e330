package cache

import (
	"errors"
	"fmt"

	"rescache/internal/model"
)

// ErrInvalidResource is returned when a resource object fails its own
// validity check before any row is written.
var ErrInvalidResource = errors.New("resource is not valid")

// ErrResourceNotFound is returned by queries that require an existing
// resource row.
var ErrResourceNotFound = errors.New("resource not found")

// Cache is the orchestration layer over the persistent resource index.
// A Cache is only ever constructed over an initialized database; validity
// is carried by the handle itself rather than process-wide state.
type Cache struct {
	db     Database
	types  *TypeRegistry
	logger Logger
	clock  Clock
}

// New creates a Cache over an initialized database. A nil logger discards
// output and a nil clock uses real time.
func New(db Database, types *TypeRegistry, logger Logger, clock Clock) *Cache {
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Cache{
		db:     db,
		types:  types,
		logger: logger,
		clock:  clock,
	}
}

// Types returns the resource type registry this cache was built with.
func (c *Cache) Types() *TypeRegistry {
	return c.types
}

// AddStorage registers a storage backend. If a row with the same location
// already exists this is a no-op.
func (c *Cache) AddStorage(storage Storage, preInstalled bool) error {
	existing, err := c.db.FindStorageByLocation(storage.Location())
	if err != nil {
		return fmt.Errorf("checking for existing storage: %w", err)
	}
	if existing != nil {
		// Already registered, nothing to do
		return nil
	}

	_, err = c.db.InsertStorage(storage.Type(), storage.Location(), storage.Timestamp().Unix(), preInstalled)
	if err != nil {
		return fmt.Errorf("inserting storage: %w", err)
	}

	c.logger.Info("storage registered", "location", storage.Location(), "type", storage.Type().String())
	return nil
}

// DeleteStorage removes the storage row at a location, its version rows,
// and the resources reachable only through them. Rows are gone for good;
// use SetStorageActive to hide a storage without losing its history.
func (c *Cache) DeleteStorage(location string) error {
	if err := c.db.DeleteStorageByLocation(location); err != nil {
		return fmt.Errorf("deleting storage: %w", err)
	}
	c.logger.Info("storage deleted", "location", location)
	return nil
}

// SetStorageActive flips a storage's active flag without touching its rows.
func (c *Cache) SetStorageActive(location string, active bool) error {
	if err := c.db.SetStorageActive(location, active); err != nil {
		return fmt.Errorf("setting storage active flag: %w", err)
	}
	c.logger.Info("storage active flag changed", "location", location, "active", active)
	return nil
}

// ListStorages returns all registered storage rows.
func (c *Cache) ListStorages() ([]*model.Storage, error) {
	return c.db.ListStorages()
}

// ResourceHistory returns the version rows for the resource identified by
// (filename, resourceType), newest first.
func (c *Cache) ResourceHistory(filename, resourceType string) ([]*model.VersionedResource, error) {
	id, err := c.db.ResourceIDForResource(filename, resourceType)
	if err != nil {
		return nil, fmt.Errorf("looking up resource: %w", err)
	}
	if id == ResourceNotFound {
		return nil, fmt.Errorf("%w: %s (%s)", ErrResourceNotFound, filename, resourceType)
	}
	return c.db.VersionsForResource(id)
}

// History returns the most recent recorded cache operations.
func (c *Cache) History(limit int) ([]*model.SyncOperation, error) {
	return c.db.ListSyncOperations(limit)
}
