package storage

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"rescache/internal/cache"
	"rescache/internal/model"
)

// MemoryStorage is an in-memory implementation of cache.Storage. Use in tests.
type MemoryStorage struct {
	location  string
	origin    model.OriginType
	timestamp time.Time
	resources map[string][]cache.Resource
	tags      map[string][]cache.StorageTag
}

// NewMemoryStorage creates an empty in-memory storage backend.
func NewMemoryStorage(location string, origin model.OriginType) *MemoryStorage {
	return &MemoryStorage{
		location:  location,
		origin:    origin,
		resources: make(map[string][]cache.Resource),
		tags:      make(map[string][]cache.StorageTag),
	}
}

func (s *MemoryStorage) Location() string        { return s.location }
func (s *MemoryStorage) Type() model.OriginType  { return s.origin }
func (s *MemoryStorage) Timestamp() time.Time    { return s.timestamp }
func (s *MemoryStorage) SetTimestamp(t time.Time) { s.timestamp = t }

// AddResource registers a prebuilt resource under a resource type.
func (s *MemoryStorage) AddResource(resourceType string, res cache.Resource) {
	s.resources[resourceType] = append(s.resources[resourceType], res)
}

// AddContent builds a resource from raw content and registers it. The
// filename is qualified against the storage location the way file-backed
// storages do it.
func (s *MemoryStorage) AddContent(resourceType, name string, content []byte, modified time.Time) *StaticResource {
	sum := md5.Sum(content)
	res := &StaticResource{
		ResourceName: name,
		Path:         s.location + "/" + resourceType + "/" + name,
		MD5:          hex.EncodeToString(sum[:]),
		Modified:     modified,
	}
	s.AddResource(resourceType, res)
	return res
}

// AddTag registers a tag under a resource type.
func (s *MemoryStorage) AddTag(resourceType string, tag cache.StorageTag) {
	s.tags[resourceType] = append(s.tags[resourceType], tag)
}

func (s *MemoryStorage) Resources(resourceType string) ([]cache.Resource, error) {
	return s.resources[resourceType], nil
}

func (s *MemoryStorage) Tags(resourceType string) ([]cache.StorageTag, error) {
	return s.tags[resourceType], nil
}

// Compile-time check that MemoryStorage implements cache.Storage
var _ cache.Storage = (*MemoryStorage)(nil)
