package cache

import "rescache/internal/model"

// ResourceNotFound is the sentinel returned by lookups keyed on
// (filename, resource type) or (url, resource type) when no row exists.
// "Not present" is an expected outcome, not an error.
const ResourceNotFound int64 = -1

// ResourceRecord carries the fields written when a resource or one of its
// versions is inserted. Location and Timestamp describe the version row;
// the rest is the resource's mutable metadata.
type ResourceRecord struct {
	Name      string
	Filename  string
	Tooltip   string
	Thumbnail []byte
	Location  string
	Timestamp int64 // seconds since epoch
	Checksum  string
}

// Database provides the persistent index operations the cache layer needs.
// Multi-statement operations are implemented with appropriate transaction
// handling by the implementation.
type Database interface {
	// Storage registry operations

	// FindStorageByLocation returns the storage row with an exact location
	// match, or nil if none exists.
	FindStorageByLocation(location string) (*model.Storage, error)

	// InsertStorage creates a new storage row. The location must not exist yet.
	InsertStorage(origin model.OriginType, location string, timestamp int64, preInstalled bool) (*model.Storage, error)

	// DeleteStorageByLocation removes a storage row together with its version
	// rows and the resources reachable only through them.
	DeleteStorageByLocation(location string) error

	// SetStorageActive flips the active flag without removing any rows.
	SetStorageActive(location string, active bool) error

	// ListStorages returns all storage rows.
	ListStorages() ([]*model.Storage, error)

	// Resource index operations

	// ResourceIDForResource returns the id of the resource with the given
	// fully qualified filename and type, or ResourceNotFound.
	ResourceIDForResource(filename, resourceType string) (int64, error)

	// LatestVersion returns the version row with MAX(version) for a
	// resource, or nil if the resource has no version rows.
	LatestVersion(resourceID int64) (*model.VersionedResource, error)

	// InsertResourceWithVersion creates a resource row and its version 1 in
	// a single transaction, returning the new resource id.
	InsertResourceWithVersion(resourceType, storageLocation string, rec ResourceRecord) (int64, error)

	// AppendResourceVersion inserts a version row at MAX(version)+1 and
	// updates the resource's mutable metadata, in a single transaction.
	AppendResourceVersion(resourceID int64, storageLocation string, rec ResourceRecord) error

	// VersionsForResource returns all version rows for a resource, newest first.
	VersionsForResource(resourceID int64) ([]*model.VersionedResource, error)

	// Tag catalog operations

	// FindTagID returns the id of the tag with the given url and resource
	// type, or ResourceNotFound.
	FindTagID(url, resourceType string) (int64, error)

	// InsertTag creates a tag row, resolving the resource type by name.
	InsertTag(url, name, comment, resourceType string) error

	// InsertResourceTag associates a resource with a tag. Repeated calls
	// with the same pair are no-ops.
	InsertResourceTag(resourceID, tagID int64) error

	// TagsForResourceType returns all tags declared for a resource type.
	TagsForResourceType(resourceType string) ([]*model.Tag, error)

	// Operations journal

	// CreateSyncOperation records the start of a mutating run.
	CreateSyncOperation(operation, parameters string) (int64, error)

	// FinishSyncOperation records the end of a run with its final status.
	FinishSyncOperation(id int64, status string) error

	// ListSyncOperations returns the most recent runs, newest first.
	ListSyncOperations(limit int) ([]*model.SyncOperation, error)

	// Close closes the database connection.
	Close() error
}
