// Package cache defines the domain model for the entity-indexed response
// cache: cached entries, the entities that contributed to them, and the
// selectors used to invalidate them.
package cache

// Entity is a named, optionally identified domain object referenced by a
// cached result. An Entity with an empty ID contributes only its typename
// to the entry's index.
type Entity struct {
	Typename string `json:"typename"`
	ID       string `json:"id,omitempty"`
}

// IdentifierBuilder maps a (typename, id) pair to a single opaque entity
// token. Implementations must be pure and stable: the same inputs always
// produce the same token, and distinct pairs must not collide.
type IdentifierBuilder func(typename, id string) string

// DefaultIdentifierBuilder joins typename and id with "#".
//
// Callers whose typenames can contain "#" in a way that defeats the
// separator should supply their own builder.
func DefaultIdentifierBuilder(typename, id string) string {
	return typename + "#" + id
}
