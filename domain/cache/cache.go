package cache

import (
	"context"
	"time"
)

// ResponseCache is the capability contract exposed to the calling system.
//
// Implementations persist opaque payloads indexed by cache key and by the
// entities that contributed to each payload, so a mutation touching one
// entity can invalidate every cached result that referenced it.
type ResponseCache interface {
	// Set writes the full entry at key, overwriting any prior entry.
	// A ttl <= 0 means the entry never expires by time.
	Set(ctx context.Context, key string, payload []byte, entities []Entity, ttl time.Duration) error

	// Get returns the payload stored at key. A miss is (nil, false, nil),
	// never an error. An entry found to be expired at read time is
	// evicted best-effort and reported as a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Invalidate deletes every entry whose index overlaps the selector
	// set. It returns once all matching entries known at scan time are
	// removed; on error the caller must assume invalidation may be
	// incomplete and may safely re-invoke.
	Invalidate(ctx context.Context, selectors []Selector) error

	// DeleteExpiredCacheEntry deletes every entry whose expiry instant
	// has passed. Entries without an expiry are never touched. The core
	// starts no timer of its own; callers invoke this on a schedule.
	DeleteExpiredCacheEntry(ctx context.Context) error
}
