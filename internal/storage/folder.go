package storage

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rescache/internal/cache"
	"rescache/internal/model"
)

// FolderStorage exposes a live directory tree as a resource backend.
// Resources of a type live under <root>/<resourceType>/, optionally with a
// tags.toml manifest beside them:
//
//	<root>/
//	  brushes/
//	    ink.png
//	    tags.toml
//	  palettes/
//	    default.gpl
type FolderStorage struct {
	root string
}

// NewFolderStorage creates a folder backend rooted at the given directory.
func NewFolderStorage(root string) (*FolderStorage, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving folder storage path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat folder storage: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("folder storage is not a directory: %s", absRoot)
	}

	return &FolderStorage{root: absRoot}, nil
}

func (s *FolderStorage) Location() string {
	return s.root
}

func (s *FolderStorage) Type() model.OriginType {
	return model.OriginFolder
}

// Timestamp returns the root directory's modification time. Folder
// backends are never synchronized by this value; it only seeds the
// storage row.
func (s *FolderStorage) Timestamp() time.Time {
	info, err := os.Stat(s.root)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Resources walks <root>/<resourceType> and describes every regular file
// found there. A missing type directory yields an empty list, not an error.
func (s *FolderStorage) Resources(resourceType string) ([]cache.Resource, error) {
	typeDir := filepath.Join(s.root, resourceType)
	if _, err := os.Stat(typeDir); os.IsNotExist(err) {
		return nil, nil
	}

	var resources []cache.Resource
	err := filepath.WalkDir(typeDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if d.Name() == tagsManifestName || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		res, err := s.describeFile(p, resourceType)
		if err != nil {
			return fmt.Errorf("describing %s: %w", p, err)
		}
		resources = append(resources, res)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", typeDir, err)
	}

	return resources, nil
}

// describeFile reads one resource file and computes its checksum and,
// for image files, a preview thumbnail.
func (s *FolderStorage) describeFile(path, resourceType string) (*StaticResource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sum := md5.Sum(content)

	var preview []byte
	if isImageFile(path) {
		// A broken image is still a valid resource, just without a preview.
		preview, _ = renderThumbnail(bytes.NewReader(content))
	}

	rel, err := filepath.Rel(filepath.Join(s.root, resourceType), path)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	return &StaticResource{
		ResourceName: strings.TrimSuffix(base, filepath.Ext(base)),
		Path:         s.root + "/" + resourceType + "/" + filepath.ToSlash(rel),
		MD5:          hex.EncodeToString(sum[:]),
		Preview:      preview,
		Modified:     info.ModTime(),
	}, nil
}

// Tags reads the tags.toml manifest in the resource type directory, if any.
func (s *FolderStorage) Tags(resourceType string) ([]cache.StorageTag, error) {
	manifestPath := filepath.Join(s.root, resourceType, tagsManifestName)
	f, err := os.Open(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening tags manifest: %w", err)
	}
	defer f.Close()

	tags, err := parseTagsManifest(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", manifestPath, err)
	}
	return tags, nil
}

// checksumReader computes the MD5 hex digest of everything in r.
func checksumReader(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Compile-time check that FolderStorage implements cache.Storage
var _ cache.Storage = (*FolderStorage)(nil)
