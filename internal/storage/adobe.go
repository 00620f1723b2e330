package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rescache/internal/cache"
	"rescache/internal/model"
)

// AdobeLibraryStorage exposes a vendor library file (.abr brush library or
// .asl style library) as a single-resource container backend. The formats
// are opaque here: the library is indexed as one resource whose identity
// and change detection come from the file itself.
type AdobeLibraryStorage struct {
	path   string
	origin model.OriginType
}

// NewAdobeLibraryStorage creates a backend for a vendor library file.
// origin must be OriginAdobeBrushLibrary or OriginAdobeStyleLibrary.
func NewAdobeLibraryStorage(libraryPath string, origin model.OriginType) (*AdobeLibraryStorage, error) {
	if origin != model.OriginAdobeBrushLibrary && origin != model.OriginAdobeStyleLibrary {
		return nil, fmt.Errorf("not an adobe library origin type: %s", origin)
	}

	absPath, err := filepath.Abs(libraryPath)
	if err != nil {
		return nil, fmt.Errorf("resolving library path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat library: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("library is a directory, not a file: %s", absPath)
	}

	return &AdobeLibraryStorage{path: absPath, origin: origin}, nil
}

func (s *AdobeLibraryStorage) Location() string {
	return s.path
}

func (s *AdobeLibraryStorage) Type() model.OriginType {
	return s.origin
}

func (s *AdobeLibraryStorage) Timestamp() time.Time {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// resourceType returns the resource type the library contributes to.
func (s *AdobeLibraryStorage) resourceType() string {
	if s.origin == model.OriginAdobeBrushLibrary {
		return "brushes"
	}
	return "layerstyles"
}

// Resources returns the library itself as a single resource when asked for
// its resource type, and nothing for any other type.
func (s *AdobeLibraryStorage) Resources(resourceType string) ([]cache.Resource, error) {
	if resourceType != s.resourceType() {
		return nil, nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}
	defer f.Close()

	checksum, err := checksumReader(f)
	if err != nil {
		return nil, fmt.Errorf("checksumming library: %w", err)
	}

	base := filepath.Base(s.path)
	return []cache.Resource{
		&StaticResource{
			ResourceName: strings.TrimSuffix(base, filepath.Ext(base)),
			Path:         s.path + "/" + resourceType + "/" + base,
			MD5:          checksum,
			Modified:     s.Timestamp(),
		},
	}, nil
}

// Tags returns nothing: vendor libraries carry no tag metadata we read.
func (s *AdobeLibraryStorage) Tags(string) ([]cache.StorageTag, error) {
	return nil, nil
}

// Compile-time check that AdobeLibraryStorage implements cache.Storage
var _ cache.Storage = (*AdobeLibraryStorage)(nil)
