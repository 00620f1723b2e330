package storage

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"rescache/internal/cache"
)

// tagsManifestName is the file a folder or bundle places inside a resource
// type directory to declare tags for that type.
const tagsManifestName = "tags.toml"

type tagsManifest struct {
	Tags []manifestTag `toml:"tags"`
}

type manifestTag struct {
	URL              string   `toml:"url"`
	Name             string   `toml:"name"`
	Comment          string   `toml:"comment"`
	DefaultResources []string `toml:"default_resources"`
}

// parseTagsManifest decodes a tags.toml manifest.
func parseTagsManifest(r io.Reader) ([]cache.StorageTag, error) {
	var m tagsManifest
	if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode tags manifest: %w", err)
	}

	tags := make([]cache.StorageTag, 0, len(m.Tags))
	for _, t := range m.Tags {
		tags = append(tags, cache.StorageTag{
			URL:              t.URL,
			Name:             t.Name,
			Comment:          t.Comment,
			DefaultResources: t.DefaultResources,
		})
	}
	return tags, nil
}
