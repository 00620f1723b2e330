package model

// OriginType identifies the kind of backend a storage row came from.
type OriginType int

const (
	OriginUnknown OriginType = iota
	OriginFolder
	OriginBundle
	OriginAdobeBrushLibrary
	OriginAdobeStyleLibrary
)

// originTypeNames are the rows of the origin_types lookup table, in
// declaration order. The table is filled from this list at schema creation
// and never changes afterwards.
var originTypeNames = []string{
	"UNKNOWN",
	"FOLDER",
	"BUNDLE",
	"ADOBE_BRUSH_LIBRARY",
	"ADOBE_STYLE_LIBRARY",
}

// OriginTypeNames returns the fixed list of origin type names.
func OriginTypeNames() []string {
	names := make([]string, len(originTypeNames))
	copy(names, originTypeNames)
	return names
}

func (t OriginType) String() string {
	if int(t) < 0 || int(t) >= len(originTypeNames) {
		return originTypeNames[OriginUnknown]
	}
	return originTypeNames[t]
}

// IsContainer reports whether the origin is an atomic container file
// (bundle or vendor library) as opposed to an open-ended folder tree.
// Container storages are synchronized by timestamp comparison; folders
// are merged resource by resource.
func (t OriginType) IsContainer() bool {
	return t != OriginFolder && t != OriginUnknown
}

// Storage represents a registered resource origin: a folder tree, a bundle
// archive, or a vendor library file.
type Storage struct {
	ID           int64  `db:"id"`
	OriginTypeID int64  `db:"origin_type_id"`
	Location     string `db:"location"`  // unique path or URI
	Timestamp    int64  `db:"timestamp"` // seconds since epoch
	PreInstalled bool   `db:"pre_installed"`
	Active       bool   `db:"active"`
}

// Resource represents one logical resource identity, keyed by
// (filename, resource type). Mutable metadata (name, tooltip, thumbnail)
// is updated in place; content history lives in versioned_resources.
type Resource struct {
	ID             int64  `db:"id"`
	ResourceTypeID int64  `db:"resource_type_id"`
	Name           string `db:"name"`
	Filename       string `db:"filename"` // fully qualified location
	Tooltip        string `db:"tooltip"`
	Thumbnail      []byte `db:"thumbnail"` // PNG-encoded, may be nil
	Status         int    `db:"status"`
}

// VersionedResource is one immutable content snapshot of a resource.
// Versions are contiguous ascending integers per resource, starting at 1;
// the row with the highest version is authoritative for current content.
type VersionedResource struct {
	ID         int64  `db:"id"`
	ResourceID int64  `db:"resource_id"`
	StorageID  int64  `db:"storage_id"`
	Version    int64  `db:"version"`
	Location   string `db:"location"`
	Timestamp  int64  `db:"timestamp"` // seconds since epoch
	Deleted    bool   `db:"deleted"`
	Checksum   string `db:"checksum"` // MD5 hex of the content
}

// Tag is a named label over resources of one type, keyed by (url, type).
type Tag struct {
	ID             int64  `db:"id"`
	URL            string `db:"url"`
	Name           string `db:"name"`
	Comment        string `db:"comment"`
	ResourceTypeID int64  `db:"resource_type_id"`
	Active         bool   `db:"active"`
}

// VersionInformation is the single row written at schema creation and read
// at every startup to detect schema drift.
type VersionInformation struct {
	ID             int64  `db:"id"`
	SchemaVersion  string `db:"schema_version"`
	CreatorVersion string `db:"creator_version"`
	CreationDate   int64  `db:"creation_date"` // seconds since epoch, UTC
}

// SyncOperation tracks one CLI run that may mutate the cache.
type SyncOperation struct {
	ID         int64  `db:"id"`
	StartedAt  int64  `db:"started_at"`
	FinishedAt *int64 `db:"finished_at"`
	Operation  string `db:"operation"`
	Parameters string `db:"parameters"`
	Status     string `db:"status"` // "success" or "error"
}
