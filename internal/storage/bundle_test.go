package storage

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"rescache/internal/model"
	"rescache/internal/testutil"
)

// writeBundle creates a zip archive with the given entries.
func writeBundle(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating bundle: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		ew, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating entry %s: %v", name, err)
		}
		if _, err := ew.Write(content); err != nil {
			t.Fatalf("writing entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing bundle: %v", err)
	}
}

func TestNewBundleStorage(t *testing.T) {
	t.Run("accepts an archive file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "my.bundle")
		writeBundle(t, path, map[string][]byte{"brushes/ink.gbr": []byte("ink")})

		st, err := NewBundleStorage(path)
		if err != nil {
			t.Fatalf("NewBundleStorage() error = %v", err)
		}
		if st.Location() != path {
			t.Errorf("Location() = %q, want %q", st.Location(), path)
		}
		if st.Type() != model.OriginBundle {
			t.Errorf("Type() = %v, want OriginBundle", st.Type())
		}
	})

	t.Run("rejects a directory", func(t *testing.T) {
		_, err := NewBundleStorage(t.TempDir())
		if err == nil {
			t.Error("NewBundleStorage() expected error for directory")
		}
	})

	t.Run("rejects a missing path", func(t *testing.T) {
		_, err := NewBundleStorage("/does/not/exist.bundle")
		if err == nil {
			t.Error("NewBundleStorage() expected error for missing path")
		}
	})
}

func TestBundleStorage_Resources(t *testing.T) {
	t.Run("lists entries for the type", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "my.bundle")
		ink := []byte("ink data")
		writeBundle(t, path, map[string][]byte{
			"brushes/ink.gbr":     ink,
			"gradients/warm.ggr":  []byte("warm"),
			"brushes/tags.toml":   []byte("[[tags]]\nurl = \"x\"\nname = \"X\"\n"),
			"unrelated/notes.txt": []byte("notes"),
		})

		st, _ := NewBundleStorage(path)
		resources, err := st.Resources("brushes")
		if err != nil {
			t.Fatalf("Resources() error = %v", err)
		}
		if len(resources) != 1 {
			t.Fatalf("got %d resources, want 1", len(resources))
		}

		res := resources[0]
		if res.Name() != "ink" {
			t.Errorf("Name() = %q, want %q", res.Name(), "ink")
		}
		if want := path + "/brushes/ink.gbr"; res.Filename() != want {
			t.Errorf("Filename() = %q, want %q", res.Filename(), want)
		}
		if res.Checksum() != testutil.MD5Hex(ink) {
			t.Errorf("Checksum() = %q, want MD5 of content", res.Checksum())
		}
	})

	t.Run("all entries share the archive timestamp", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "my.bundle")
		writeBundle(t, path, map[string][]byte{
			"brushes/a.gbr": []byte("a"),
			"brushes/b.gbr": []byte("b"),
		})

		st, _ := NewBundleStorage(path)
		resources, err := st.Resources("brushes")
		if err != nil {
			t.Fatalf("Resources() error = %v", err)
		}
		if len(resources) != 2 {
			t.Fatalf("got %d resources, want 2", len(resources))
		}
		if !resources[0].LastModified().Equal(resources[1].LastModified()) {
			t.Error("bundle entries should share the archive timestamp")
		}
		if !resources[0].LastModified().Equal(st.Timestamp()) {
			t.Error("entry timestamp should equal the archive timestamp")
		}
	})

	t.Run("missing type yields empty list", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "my.bundle")
		writeBundle(t, path, map[string][]byte{"brushes/ink.gbr": []byte("ink")})

		st, _ := NewBundleStorage(path)
		resources, err := st.Resources("palettes")
		if err != nil {
			t.Fatalf("Resources() error = %v", err)
		}
		if len(resources) != 0 {
			t.Errorf("got %d resources, want 0", len(resources))
		}
	})
}

func TestBundleStorage_Tags(t *testing.T) {
	t.Run("parses the manifest entry", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "my.bundle")
		manifest := `
[[tags]]
url = "bundled"
name = "Bundled"
default_resources = ["ink.gbr"]
`
		writeBundle(t, path, map[string][]byte{
			"brushes/ink.gbr":   []byte("ink"),
			"brushes/tags.toml": []byte(manifest),
		})

		st, _ := NewBundleStorage(path)
		tags, err := st.Tags("brushes")
		if err != nil {
			t.Fatalf("Tags() error = %v", err)
		}
		if len(tags) != 1 {
			t.Fatalf("got %d tags, want 1", len(tags))
		}
		if tags[0].URL != "bundled" {
			t.Errorf("URL = %q, want %q", tags[0].URL, "bundled")
		}
	})

	t.Run("no manifest yields no tags", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "my.bundle")
		writeBundle(t, path, map[string][]byte{"brushes/ink.gbr": []byte("ink")})

		st, _ := NewBundleStorage(path)
		tags, err := st.Tags("brushes")
		if err != nil {
			t.Fatalf("Tags() error = %v", err)
		}
		if len(tags) != 0 {
			t.Errorf("got %d tags, want 0", len(tags))
		}
	})
}
