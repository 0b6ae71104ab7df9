package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIdentifierBuilder(t *testing.T) {
	assert.Equal(t, "User#1", DefaultIdentifierBuilder("User", "1"))
	assert.Equal(t, "Comment#abc-def", DefaultIdentifierBuilder("Comment", "abc-def"))
}

func TestDefaultIdentifierBuilder_Stable(t *testing.T) {
	first := DefaultIdentifierBuilder("User", "42")
	second := DefaultIdentifierBuilder("User", "42")

	assert.Equal(t, first, second)
}

func TestDefaultIdentifierBuilder_DistinctPairs(t *testing.T) {
	assert.NotEqual(t,
		DefaultIdentifierBuilder("User", "1"),
		DefaultIdentifierBuilder("Comment", "1"),
	)
	assert.NotEqual(t,
		DefaultIdentifierBuilder("User", "1"),
		DefaultIdentifierBuilder("User", "2"),
	)
}
