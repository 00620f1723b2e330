package database

import (
	"testing"

	"rescache/internal/config"
)

func TestNewCacheDBFromConfig(t *testing.T) {
	t.Run("memory database", func(t *testing.T) {
		cfg := config.DatabaseConfig{Type: "memory"}
		got, err := NewCacheDBFromConfig(cfg)

		if err != nil {
			t.Errorf("NewCacheDBFromConfig() unexpected error: %v", err)
			return
		}

		if got == nil {
			t.Error("NewCacheDBFromConfig() returned nil")
		}

		if got != nil {
			got.Close()
		}
	})

	t.Run("sqlite database", func(t *testing.T) {
		cfg := config.DatabaseConfig{
			Type:    "sqlite",
			DataDir: t.TempDir(),
		}
		got, err := NewCacheDBFromConfig(cfg)

		if err != nil {
			t.Errorf("NewCacheDBFromConfig() unexpected error: %v", err)
			return
		}

		if got == nil {
			t.Error("NewCacheDBFromConfig() returned nil")
		}

		if got != nil {
			got.Close()
		}
	})

	t.Run("sqlite database without data_dir", func(t *testing.T) {
		cfg := config.DatabaseConfig{Type: "sqlite"}
		got, err := NewCacheDBFromConfig(cfg)

		if err == nil {
			t.Error("NewCacheDBFromConfig() expected error for missing data_dir, got nil")
		}

		if got != nil {
			t.Error("NewCacheDBFromConfig() should return nil on error")
			got.Close()
		}
	})

	t.Run("unknown database type", func(t *testing.T) {
		cfg := config.DatabaseConfig{Type: "unknown"}
		got, err := NewCacheDBFromConfig(cfg)

		if err == nil {
			t.Error("NewCacheDBFromConfig() expected error for unknown type, got nil")
		}

		if got != nil {
			t.Error("NewCacheDBFromConfig() should return nil on error")
			got.Close()
		}
	})
}
