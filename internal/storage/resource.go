package storage

import "time"

// StaticResource is a fully materialized resource description. All backends
// in this package enumerate into StaticResources; the in-memory backend
// accepts them directly from tests.
type StaticResource struct {
	ResourceName string
	Path         string // fully qualified: <storage location>/<type>/<file>
	TooltipText  string
	MD5          string
	Preview      []byte // PNG thumbnail, may be nil
	Modified     time.Time
	Invalid      bool
}

func (r *StaticResource) Name() string            { return r.ResourceName }
func (r *StaticResource) Filename() string        { return r.Path }
func (r *StaticResource) Tooltip() string         { return r.TooltipText }
func (r *StaticResource) Checksum() string        { return r.MD5 }
func (r *StaticResource) Thumbnail() []byte       { return r.Preview }
func (r *StaticResource) LastModified() time.Time { return r.Modified }
func (r *StaticResource) Valid() bool             { return !r.Invalid && r.Path != "" }
