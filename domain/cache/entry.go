package cache

import (
	"sort"
	"time"
)

// Entry is one cached result together with the index fields invalidation
// needs. Entries are immutable once written; a later Set on the same key
// replaces the whole entry.
type Entry struct {
	// Key is the caller-supplied cache key, unique per cached result.
	Key string

	// Payload is the serialized result. Opaque to this package; it is
	// never decoded here.
	Payload []byte

	// ExpireAt is the absolute expiry instant. The zero time means the
	// entry never expires by time.
	ExpireAt time.Time

	// Typenames holds every type name referenced by the result,
	// deduplicated. It is always a superset of the type names implied
	// by EntityIDs.
	Typenames []string

	// EntityIDs holds one token per concrete entity instance referenced
	// by the result, deduplicated. Entities without an identifier do not
	// appear here.
	EntityIDs []string

	// CreatedAt records when the entry was written.
	CreatedAt time.Time
}

// Expired reports whether the entry's expiry instant has passed at now.
// Entries without an expiry never expire.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpireAt.IsZero() && e.ExpireAt.Before(now)
}

// NewEntry builds the entry for one cached result. Typenames and EntityIDs
// are deduplicated and sorted; entities with an empty typename are ignored.
// A ttl <= 0 means the entry never expires by time.
func NewEntry(key string, payload []byte, entities []Entity, ttl time.Duration, now time.Time, build IdentifierBuilder) Entry {
	if build == nil {
		build = DefaultIdentifierBuilder
	}

	typenames := make(map[string]struct{})
	tokens := make(map[string]struct{})
	for _, entity := range entities {
		if entity.Typename == "" {
			continue
		}
		typenames[entity.Typename] = struct{}{}
		if entity.ID != "" {
			tokens[build(entity.Typename, entity.ID)] = struct{}{}
		}
	}

	entry := Entry{
		Key:       key,
		Payload:   payload,
		Typenames: sortedKeys(typenames),
		EntityIDs: sortedKeys(tokens),
		CreatedAt: now,
	}
	if ttl > 0 {
		entry.ExpireAt = now.Add(ttl)
	}
	return entry
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
