package cache

import (
	"time"

	"rescache/internal/model"
)

// Storage is a backend that exposes resources: a folder tree, a bundle
// archive, or a vendor library file. Implementations live in
// internal/storage; the cache layer never mutates a Storage.
type Storage interface {
	// Location returns the unique path or URI identifying this backend.
	Location() string

	// Type returns the origin kind of this backend.
	Type() model.OriginType

	// Timestamp returns the last-modified time of the backend as a whole.
	// For container backends this drives the resynchronization decision.
	Timestamp() time.Time

	// Resources lists the resources this backend exposes for a resource type.
	Resources(resourceType string) ([]Resource, error)

	// Tags lists the tags this backend declares for a resource type.
	Tags(resourceType string) ([]StorageTag, error)
}

// Resource is a single creative asset exposed by a storage backend.
type Resource interface {
	// Name is the human-readable resource name.
	Name() string

	// Filename is the fully qualified location of the resource:
	// <storage location>/<resource type>/<file name>. It keys the logical
	// resource identity together with the resource type.
	Filename() string

	// Tooltip is an optional display string; empty means "use Name".
	Tooltip() string

	// Checksum is the MD5 hex digest of the resource content.
	Checksum() string

	// Thumbnail is a PNG-encoded preview image, or nil if none exists.
	Thumbnail() []byte

	// LastModified is the content timestamp used for change detection.
	LastModified() time.Time

	// Valid reports whether the resource passed its own integrity check.
	Valid() bool
}

// StorageTag is a tag declared by a storage backend, optionally naming
// resources it applies to by default.
type StorageTag struct {
	URL              string
	Name             string
	Comment          string
	DefaultResources []string
}
