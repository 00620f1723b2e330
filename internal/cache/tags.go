package cache

import (
	"fmt"

	"rescache/internal/model"
)

// HasTag reports whether a tag with the given url exists for a resource type.
func (c *Cache) HasTag(url, resourceType string) (bool, error) {
	id, err := c.db.FindTagID(url, resourceType)
	if err != nil {
		return false, fmt.Errorf("looking up tag: %w", err)
	}
	return id != ResourceNotFound, nil
}

// AddTag creates a tag for a resource type. Re-adding an existing
// (url, resourceType) pair is a no-op success.
func (c *Cache) AddTag(resourceType, url, name, comment string) error {
	exists, err := c.HasTag(url, resourceType)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := c.db.InsertTag(url, name, comment, resourceType); err != nil {
		return fmt.Errorf("inserting tag: %w", err)
	}
	c.logger.Debug("tag added", "url", url, "type", resourceType)
	return nil
}

// TagResource associates a resource with a tag. The resource is resolved
// by its fully qualified location within the storage; both the resource
// and the tag must already exist.
func (c *Cache) TagResource(storage Storage, resourceName string, tag StorageTag, resourceType string) error {
	qualified := storage.Location() + "/" + resourceType + "/" + resourceName

	resourceID, err := c.db.ResourceIDForResource(qualified, resourceType)
	if err != nil {
		return fmt.Errorf("looking up resource to tag: %w", err)
	}
	if resourceID == ResourceNotFound {
		return fmt.Errorf("%w: cannot tag %s (%s)", ErrResourceNotFound, qualified, resourceType)
	}

	tagID, err := c.db.FindTagID(tag.URL, resourceType)
	if err != nil {
		return fmt.Errorf("looking up tag: %w", err)
	}
	if tagID == ResourceNotFound {
		return fmt.Errorf("tag not found: %s (%s)", tag.URL, resourceType)
	}

	if err := c.db.InsertResourceTag(resourceID, tagID); err != nil {
		return fmt.Errorf("associating resource with tag: %w", err)
	}
	return nil
}

// AddTags indexes every tag a storage declares for a resource type and
// applies each tag to its declared default resources. Per-item failures do
// not abort the batch.
func (c *Cache) AddTags(storage Storage, resourceType string) (*BatchResult, error) {
	tags, err := storage.Tags(resourceType)
	if err != nil {
		return nil, fmt.Errorf("listing tags for %s: %w", resourceType, err)
	}

	result := &BatchResult{}
	for _, tag := range tags {
		if err := c.AddTag(resourceType, tag.URL, tag.Name, tag.Comment); err != nil {
			c.logger.Warn("could not add tag", "url", tag.URL, "error", err)
			result.fail(tag.URL, err)
			continue
		}
		result.succeed(tag.URL)

		for _, resourceName := range tag.DefaultResources {
			if err := c.TagResource(storage, resourceName, tag, resourceType); err != nil {
				c.logger.Warn("could not tag resource", "resource", resourceName, "tag", tag.URL, "error", err)
				result.fail(tag.URL+":"+resourceName, err)
				continue
			}
			result.succeed(tag.URL + ":" + resourceName)
		}
	}
	return result, nil
}

// TagsForResourceType returns all tags recorded for a resource type.
func (c *Cache) TagsForResourceType(resourceType string) ([]*model.Tag, error) {
	return c.db.TagsForResourceType(resourceType)
}
