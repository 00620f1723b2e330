package storage

import (
	"fmt"

	"rescache/internal/cache"
	"rescache/internal/config"
	"rescache/internal/model"
)

// NewStorageFromConfig creates a Storage implementation based on the storage config type.
func NewStorageFromConfig(cfg config.StorageConfig) (cache.Storage, error) {
	switch cfg.Type {
	case "folder":
		if cfg.Location == "" {
			return nil, fmt.Errorf("folder storage requires location to be set")
		}
		return NewFolderStorage(cfg.Location)
	case "bundle":
		if cfg.Location == "" {
			return nil, fmt.Errorf("bundle storage requires location to be set")
		}
		return NewBundleStorage(cfg.Location)
	case "adobe_brush_library":
		return NewAdobeLibraryStorage(cfg.Location, model.OriginAdobeBrushLibrary)
	case "adobe_style_library":
		return NewAdobeLibraryStorage(cfg.Location, model.OriginAdobeStyleLibrary)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
