package market

import (
	"context"
	"time"

	"github.com/rustyeddy/tradedesk/pkg/cache"
)

const catalogKey = "catalog"

// SnapshotStore holds the current catalog snapshot behind typed accessors,
// backed by the TTL cache. The snapshot is replaced wholesale under a single
// key, never patched, so concurrent readers see either the old or the new
// catalog but no partial state.
type SnapshotStore struct {
	c *cache.Cache[[]Stock]
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{c: cache.New[[]Stock]()}
}

// Catalog returns the cached snapshot, or false if absent or expired.
func (s *SnapshotStore) Catalog() ([]Stock, bool) {
	return s.c.Get(catalogKey)
}

// SetCatalog replaces the snapshot atomically with the given TTL.
func (s *SnapshotStore) SetCatalog(stocks []Stock, ttl time.Duration) {
	s.c.Set(catalogKey, stocks, ttl)
}

// Invalidate drops the snapshot so the next read refreshes from the vendor.
func (s *SnapshotStore) Invalidate() {
	s.c.Delete(catalogKey)
}

// Clear resets the store. Test helper.
func (s *SnapshotStore) Clear() {
	s.c.Clear()
}

// Janitor runs the underlying cache's sweep loop until ctx is cancelled.
func (s *SnapshotStore) Janitor(ctx context.Context, interval time.Duration) {
	s.c.Janitor(ctx, interval)
}
