package storage

import (
	"path/filepath"
	"testing"

	"rescache/internal/config"
	"rescache/internal/model"
)

func TestNewStorageFromConfig(t *testing.T) {
	t.Run("folder storage", func(t *testing.T) {
		cfg := config.StorageConfig{Type: "folder", Location: t.TempDir()}
		st, err := NewStorageFromConfig(cfg)
		if err != nil {
			t.Fatalf("NewStorageFromConfig() error = %v", err)
		}
		if st.Type() != model.OriginFolder {
			t.Errorf("Type() = %v, want OriginFolder", st.Type())
		}
	})

	t.Run("folder storage without location", func(t *testing.T) {
		cfg := config.StorageConfig{Type: "folder"}
		_, err := NewStorageFromConfig(cfg)
		if err == nil {
			t.Error("NewStorageFromConfig() expected error for missing location")
		}
	})

	t.Run("bundle storage", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "my.bundle")
		writeBundle(t, path, map[string][]byte{"brushes/ink.gbr": []byte("ink")})

		cfg := config.StorageConfig{Type: "bundle", Location: path}
		st, err := NewStorageFromConfig(cfg)
		if err != nil {
			t.Fatalf("NewStorageFromConfig() error = %v", err)
		}
		if st.Type() != model.OriginBundle {
			t.Errorf("Type() = %v, want OriginBundle", st.Type())
		}
	})

	t.Run("adobe brush library", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "set.abr")
		writeFile(t, path, []byte("abr"))

		cfg := config.StorageConfig{Type: "adobe_brush_library", Location: path}
		st, err := NewStorageFromConfig(cfg)
		if err != nil {
			t.Fatalf("NewStorageFromConfig() error = %v", err)
		}
		if st.Type() != model.OriginAdobeBrushLibrary {
			t.Errorf("Type() = %v, want OriginAdobeBrushLibrary", st.Type())
		}
	})

	t.Run("unknown storage type", func(t *testing.T) {
		cfg := config.StorageConfig{Type: "carrier-pigeon"}
		_, err := NewStorageFromConfig(cfg)
		if err == nil {
			t.Error("NewStorageFromConfig() expected error for unknown type")
		}
	})
}
