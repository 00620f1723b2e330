package testutil

import (
	"testing"

	"rescache/internal/database"
)

// TestResourceTypes are the resource types seeded into test databases.
var TestResourceTypes = []string{"brushes", "gradients", "paintoppresets"}

// NewTestDatabase creates a new in-memory SQLite cache database with the
// schema applied and lookup tables filled. The database is automatically
// closed when the test completes.
func NewTestDatabase(t *testing.T) *database.CacheDB {
	t.Helper()

	db, err := database.NewCacheDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := db.Initialize(TestResourceTypes, "test"); err != nil {
		db.Close()
		t.Fatalf("failed to initialize database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
