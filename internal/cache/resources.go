package cache

import (
	"fmt"
	"time"
)

// AddResource indexes a single resource sighting. If the resource identity
// (filename, resourceType) is unknown, a resource row and its version 1
// are created. If it is known, a new version is appended only when the
// candidate timestamp is strictly newer than the latest recorded version;
// otherwise the call is a no-op success.
func (c *Cache) AddResource(storage Storage, timestamp time.Time, resource Resource, resourceType string) error {
	if resource == nil || !resource.Valid() {
		return ErrInvalidResource
	}

	resourceID, err := c.db.ResourceIDForResource(resource.Filename(), resourceType)
	if err != nil {
		return fmt.Errorf("looking up resource: %w", err)
	}

	rec := c.record(resource, timestamp)

	if resourceID != ResourceNotFound {
		needsUpdate, err := c.resourceNeedsUpdating(resourceID, timestamp)
		if err != nil {
			return err
		}
		if !needsUpdate {
			return nil
		}
		if err := c.db.AppendResourceVersion(resourceID, storage.Location(), rec); err != nil {
			return fmt.Errorf("appending resource version: %w", err)
		}
		c.logger.Debug("resource version appended", "filename", resource.Filename(), "type", resourceType)
		return nil
	}

	if _, err := c.db.InsertResourceWithVersion(resourceType, storage.Location(), rec); err != nil {
		return fmt.Errorf("inserting resource: %w", err)
	}
	c.logger.Debug("resource indexed", "filename", resource.Filename(), "type", resourceType)
	return nil
}

// resourceNeedsUpdating reports whether the candidate timestamp is strictly
// newer than the resource's latest version. A resource row without any
// version rows is an inconsistency: it is logged and treated as "no update"
// rather than creating a version against a broken lineage.
func (c *Cache) resourceNeedsUpdating(resourceID int64, timestamp time.Time) (bool, error) {
	latest, err := c.db.LatestVersion(resourceID)
	if err != nil {
		return false, fmt.Errorf("loading latest version: %w", err)
	}
	if latest == nil {
		c.logger.Warn("inconsistent database: resource has no version rows", "resource_id", resourceID)
		return false, nil
	}
	return timestamp.Unix() > latest.Timestamp, nil
}

// record builds the row fields for a resource sighting. The tooltip falls
// back to the resource name and the version location to the filename.
func (c *Cache) record(resource Resource, timestamp time.Time) ResourceRecord {
	tooltip := resource.Tooltip()
	if tooltip == "" {
		tooltip = resource.Name()
	}
	return ResourceRecord{
		Name:      resource.Name(),
		Filename:  resource.Filename(),
		Tooltip:   tooltip,
		Thumbnail: resource.Thumbnail(),
		Location:  resource.Filename(),
		Timestamp: timestamp.Unix(),
		Checksum:  resource.Checksum(),
	}
}

// AddResources indexes every resource a storage exposes for a resource
// type. Per-item failures do not abort the batch; they are collected in
// the result and logged.
func (c *Cache) AddResources(storage Storage, resourceType string) (*BatchResult, error) {
	resources, err := storage.Resources(resourceType)
	if err != nil {
		return nil, fmt.Errorf("listing resources for %s: %w", resourceType, err)
	}

	result := &BatchResult{}
	for _, res := range resources {
		if err := c.AddResource(storage, res.LastModified(), res, resourceType); err != nil {
			c.logger.Warn("could not add resource", "filename", res.Filename(), "error", err)
			result.fail(res.Filename(), err)
			continue
		}
		result.succeed(res.Filename())
	}
	return result, nil
}
