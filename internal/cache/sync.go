package cache

import "fmt"

// SynchronizeStorage reconciles the persisted index with the current state
// of one storage backend.
//
// Container backends (bundles, vendor libraries) are atomic units: the
// persisted timestamp decides everything. A backend that is unknown is
// registered as not preinstalled; one whose current timestamp is newer
// than the persisted row is destroyed and recreated with its previous
// preinstalled flag, then fully re-scanned. A backend that is current is
// left alone.
//
// Folder backends are open-ended trees, so the timestamp is meaningless;
// every resource of every registered type is merged through AddResource,
// which does per-resource change detection.
func (c *Cache) SynchronizeStorage(storage Storage) (*BatchResult, error) {
	c.logger.Debug("synchronizing storage", "location", storage.Location(), "type", storage.Type().String())

	if storage.Type().IsContainer() {
		return c.synchronizeContainer(storage)
	}
	return c.synchronizeFolder(storage)
}

func (c *Cache) synchronizeContainer(storage Storage) (*BatchResult, error) {
	existing, err := c.db.FindStorageByLocation(storage.Location())
	if err != nil {
		return nil, fmt.Errorf("looking up storage: %w", err)
	}

	switch {
	case existing == nil:
		// Dropped into the storage path since the last run: register it.
		if err := c.AddStorage(storage, false); err != nil {
			return nil, err
		}

	case storage.Timestamp().Unix() > existing.Timestamp:
		// The container changed as a whole: full resync rather than diffing.
		preInstalled := existing.PreInstalled
		if err := c.DeleteStorage(storage.Location()); err != nil {
			return nil, err
		}
		if err := c.AddStorage(storage, preInstalled); err != nil {
			return nil, err
		}

	default:
		// Persisted state is current, nothing to do.
		return &BatchResult{}, nil
	}

	return c.scanStorage(storage)
}

func (c *Cache) synchronizeFolder(storage Storage) (*BatchResult, error) {
	// Version rows reference the storage row, so make sure it exists.
	if err := c.AddStorage(storage, false); err != nil {
		return nil, err
	}
	return c.scanStorage(storage)
}

// scanStorage feeds every resource and tag of every registered type
// through the index, collecting per-item failures.
func (c *Cache) scanStorage(storage Storage) (*BatchResult, error) {
	result := &BatchResult{}
	for _, resourceType := range c.types.Names() {
		resources, err := c.AddResources(storage, resourceType)
		if err != nil {
			return result, err
		}
		result.merge(resources)

		tags, err := c.AddTags(storage, resourceType)
		if err != nil {
			return result, err
		}
		result.merge(tags)
	}
	return result, nil
}

// SynchronizeAll reconciles every given storage in order. A failure to
// synchronize one storage is recorded and does not abort the pass.
func (c *Cache) SynchronizeAll(storages []Storage) *BatchResult {
	result := &BatchResult{}
	for _, storage := range storages {
		r, err := c.SynchronizeStorage(storage)
		result.merge(r)
		if err != nil {
			c.logger.Error("storage synchronization failed", "location", storage.Location(), "error", err)
			result.fail(storage.Location(), err)
			continue
		}
		result.succeed(storage.Location())
	}
	return result
}
