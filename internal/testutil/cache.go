package testutil

import (
	"testing"

	"rescache/internal/cache"
)

// NewTestCache creates a Cache over a fresh in-memory database, with the
// fixed test clock and the test resource types registered.
func NewTestCache(t *testing.T) (*cache.Cache, *StubClock) {
	t.Helper()

	db := NewTestDatabase(t)
	clock := FixedClock()
	c := cache.New(db, cache.NewTypeRegistry(TestResourceTypes...), nil, clock)
	return c, clock
}
