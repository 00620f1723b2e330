package database

import (
	"fmt"
	"os"
	"path/filepath"

	"rescache/internal/config"
)

// NewCacheDBFromConfig creates a CacheDB based on the database config type.
func NewCacheDBFromConfig(cfg config.DatabaseConfig) (*CacheDB, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		return NewCacheDB(filepath.Join(cfg.DataDir, CacheFilename))
	case "memory":
		return NewCacheDB(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
