package cache_test

import (
	"testing"

	"rescache/internal/cache"
)

func TestCache_AddTag(t *testing.T) {
	t.Run("creates and finds a tag", func(t *testing.T) {
		c, _, _ := newFolderWithStorage(t)

		if err := c.AddTag("brushes", "favorites", "Favorites", "my picks"); err != nil {
			t.Fatalf("AddTag() error = %v", err)
		}

		has, err := c.HasTag("favorites", "brushes")
		if err != nil {
			t.Fatalf("HasTag() error = %v", err)
		}
		if !has {
			t.Error("HasTag() = false after AddTag")
		}
	})

	t.Run("re-adding is a no-op", func(t *testing.T) {
		c, _, _ := newFolderWithStorage(t)

		if err := c.AddTag("brushes", "favorites", "Favorites", ""); err != nil {
			t.Fatalf("first AddTag() error = %v", err)
		}
		if err := c.AddTag("brushes", "favorites", "Favorites", ""); err != nil {
			t.Fatalf("second AddTag() error = %v", err)
		}

		tags, _ := c.TagsForResourceType("brushes")
		if len(tags) != 1 {
			t.Errorf("got %d tags, want 1", len(tags))
		}
	})

	t.Run("tags are scoped per resource type", func(t *testing.T) {
		c, _, _ := newFolderWithStorage(t)

		c.AddTag("brushes", "favorites", "Favorites", "")

		has, _ := c.HasTag("favorites", "gradients")
		if has {
			t.Error("tag leaked across resource types")
		}
	})
}

func TestCache_TagResource(t *testing.T) {
	t.Run("tags an indexed resource", func(t *testing.T) {
		c, clock, st := newFolderWithStorage(t)

		res := st.AddContent("brushes", "ink.png", []byte("ink"), clock.Now())
		if err := c.AddResource(st, res.Modified, res, "brushes"); err != nil {
			t.Fatalf("AddResource() error = %v", err)
		}
		if err := c.AddTag("brushes", "favorites", "Favorites", ""); err != nil {
			t.Fatalf("AddTag() error = %v", err)
		}

		tag := cache.StorageTag{URL: "favorites", Name: "Favorites"}
		if err := c.TagResource(st, "ink.png", tag, "brushes"); err != nil {
			t.Fatalf("TagResource() error = %v", err)
		}

		// Tagging again must not fail.
		if err := c.TagResource(st, "ink.png", tag, "brushes"); err != nil {
			t.Fatalf("repeated TagResource() error = %v", err)
		}
	})

	t.Run("fails for unknown resource", func(t *testing.T) {
		c, _, st := newFolderWithStorage(t)

		c.AddTag("brushes", "favorites", "Favorites", "")

		tag := cache.StorageTag{URL: "favorites", Name: "Favorites"}
		err := c.TagResource(st, "missing.png", tag, "brushes")
		if err == nil {
			t.Error("TagResource() expected error for unknown resource")
		}
	})

	t.Run("fails for unknown tag", func(t *testing.T) {
		c, clock, st := newFolderWithStorage(t)

		res := st.AddContent("brushes", "ink.png", []byte("ink"), clock.Now())
		c.AddResource(st, res.Modified, res, "brushes")

		tag := cache.StorageTag{URL: "missing", Name: "Missing"}
		err := c.TagResource(st, "ink.png", tag, "brushes")
		if err == nil {
			t.Error("TagResource() expected error for unknown tag")
		}
	})
}

func TestCache_AddTags(t *testing.T) {
	t.Run("applies default resources", func(t *testing.T) {
		c, clock, st := newFolderWithStorage(t)

		res := st.AddContent("brushes", "ink.png", []byte("ink"), clock.Now())
		if err := c.AddResource(st, res.Modified, res, "brushes"); err != nil {
			t.Fatalf("AddResource() error = %v", err)
		}

		st.AddTag("brushes", cache.StorageTag{
			URL:              "favorites",
			Name:             "Favorites",
			DefaultResources: []string{"ink.png"},
		})

		result, err := c.AddTags(st, "brushes")
		if err != nil {
			t.Fatalf("AddTags() error = %v", err)
		}
		if !result.Ok() {
			t.Fatalf("unexpected failures: %+v", result.Failed)
		}
		if len(result.Succeeded) != 2 { // tag itself plus one association
			t.Errorf("got %d succeeded, want 2", len(result.Succeeded))
		}
	})

	t.Run("records failures for missing default resources", func(t *testing.T) {
		c, _, st := newFolderWithStorage(t)

		st.AddTag("brushes", cache.StorageTag{
			URL:              "favorites",
			Name:             "Favorites",
			DefaultResources: []string{"nope.png"},
		})

		result, err := c.AddTags(st, "brushes")
		if err != nil {
			t.Fatalf("AddTags() error = %v", err)
		}
		if len(result.Failed) != 1 {
			t.Fatalf("got %d failed, want 1", len(result.Failed))
		}
		if result.Failed[0].Item != "favorites:nope.png" {
			t.Errorf("failed item = %q, want %q", result.Failed[0].Item, "favorites:nope.png")
		}

		// The tag itself was still created.
		has, _ := c.HasTag("favorites", "brushes")
		if !has {
			t.Error("tag should exist even when a default resource is missing")
		}
	})
}
