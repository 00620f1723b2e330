package storage

import (
	"archive/zip"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"rescache/internal/cache"
	"rescache/internal/model"
)

// BundleStorage exposes a zip bundle archive as a resource backend.
// Entries are laid out <resourceType>/<filename>, with an optional
// <resourceType>/tags.toml manifest per type. A bundle is an atomic unit:
// the archive's file modification time stands for all of its content.
type BundleStorage struct {
	path string
}

// NewBundleStorage creates a bundle backend for the given archive file.
func NewBundleStorage(bundlePath string) (*BundleStorage, error) {
	absPath, err := filepath.Abs(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("resolving bundle path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat bundle: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("bundle is a directory, not an archive: %s", absPath)
	}

	return &BundleStorage{path: absPath}, nil
}

func (s *BundleStorage) Location() string {
	return s.path
}

func (s *BundleStorage) Type() model.OriginType {
	return model.OriginBundle
}

// Timestamp returns the archive file's modification time, which drives the
// destroy-and-recreate synchronization policy for bundles.
func (s *BundleStorage) Timestamp() time.Time {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Resources lists the archive entries under <resourceType>/.
func (s *BundleStorage) Resources(resourceType string) ([]cache.Resource, error) {
	r, err := zip.OpenReader(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening bundle %s: %w", s.path, err)
	}
	defer r.Close()

	// Every entry shares the archive's timestamp: the bundle changes as a whole.
	modified := s.Timestamp()

	var resources []cache.Resource
	prefix := resourceType + "/"
	for _, entry := range r.File {
		name := path.Clean(entry.Name)
		if !strings.HasPrefix(name, prefix) || strings.HasSuffix(entry.Name, "/") {
			continue
		}
		if path.Base(name) == tagsManifestName {
			continue
		}

		res, err := s.describeEntry(entry, resourceType, modified)
		if err != nil {
			return nil, fmt.Errorf("reading bundle entry %s: %w", entry.Name, err)
		}
		resources = append(resources, res)
	}

	return resources, nil
}

func (s *BundleStorage) describeEntry(entry *zip.File, resourceType string, modified time.Time) (*StaticResource, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	sum := md5.Sum(content)

	var preview []byte
	if isImageFile(entry.Name) {
		preview, _ = renderThumbnail(bytes.NewReader(content))
	}

	rel := strings.TrimPrefix(path.Clean(entry.Name), resourceType+"/")
	base := path.Base(rel)
	return &StaticResource{
		ResourceName: strings.TrimSuffix(base, path.Ext(base)),
		Path:         s.path + "/" + resourceType + "/" + rel,
		MD5:          hex.EncodeToString(sum[:]),
		Preview:      preview,
		Modified:     modified,
	}, nil
}

// Tags reads the <resourceType>/tags.toml manifest entry, if present.
func (s *BundleStorage) Tags(resourceType string) ([]cache.StorageTag, error) {
	r, err := zip.OpenReader(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening bundle %s: %w", s.path, err)
	}
	defer r.Close()

	manifestName := resourceType + "/" + tagsManifestName
	for _, entry := range r.File {
		if path.Clean(entry.Name) != manifestName {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("opening tags manifest: %w", err)
		}
		defer rc.Close()

		tags, err := parseTagsManifest(rc)
		if err != nil {
			return nil, fmt.Errorf("reading %s from %s: %w", manifestName, s.path, err)
		}
		return tags, nil
	}

	return nil, nil
}

// Compile-time check that BundleStorage implements cache.Storage
var _ cache.Storage = (*BundleStorage)(nil)
