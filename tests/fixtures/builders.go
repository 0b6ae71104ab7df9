package fixtures

import (
	"fmt"
	"time"

	"dynacache/domain/cache"
)

// EntryBuilder helps create test cache entries with default values
type EntryBuilder struct {
	key      string
	payload  []byte
	entities []cache.Entity
	ttl      time.Duration
	now      time.Time
	build    cache.IdentifierBuilder
}

func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{
		key:     "query-1",
		payload: []byte(`{"data":{"user":{"id":"1"}}}`),
		entities: []cache.Entity{
			{Typename: "User", ID: "1"},
		},
		ttl: time.Minute,
		now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *EntryBuilder) WithKey(key string) *EntryBuilder {
	b.key = key
	return b
}

func (b *EntryBuilder) WithPayload(payload []byte) *EntryBuilder {
	b.payload = payload
	return b
}

func (b *EntryBuilder) WithEntities(entities ...cache.Entity) *EntryBuilder {
	b.entities = entities
	return b
}

func (b *EntryBuilder) WithTTL(ttl time.Duration) *EntryBuilder {
	b.ttl = ttl
	return b
}

func (b *EntryBuilder) WithNow(now time.Time) *EntryBuilder {
	b.now = now
	return b
}

func (b *EntryBuilder) WithIdentifierBuilder(build cache.IdentifierBuilder) *EntryBuilder {
	b.build = build
	return b
}

func (b *EntryBuilder) Build() cache.Entry {
	return cache.NewEntry(b.key, b.payload, b.entities, b.ttl, b.now, b.build)
}

// Selectors builds a selector list from "Typename" or "Typename:id" specs.
func Selectors(specs ...string) []cache.Selector {
	selectors := make([]cache.Selector, 0, len(specs))
	for _, spec := range specs {
		sel := cache.Selector{Typename: spec}
		for i := 0; i < len(spec); i++ {
			if spec[i] == ':' {
				sel = cache.Selector{Typename: spec[:i], ID: spec[i+1:]}
				break
			}
		}
		selectors = append(selectors, sel)
	}
	return selectors
}

// Typenames generates count distinct type names, for chunking tests.
func Typenames(count int) []string {
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("Type%02d", i)
	}
	return names
}
