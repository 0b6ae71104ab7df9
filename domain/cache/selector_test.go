package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionSelectors_BroadAndNarrow(t *testing.T) {
	selectors := []Selector{
		{Typename: "Comment"},
		{Typename: "User", ID: "2"},
	}

	typenames, tokens := PartitionSelectors(selectors, nil)

	assert.Equal(t, []string{"Comment"}, typenames)
	assert.Equal(t, []string{"User#2"}, tokens)
}

func TestPartitionSelectors_BroadSubsumesNarrow(t *testing.T) {
	selectors := []Selector{
		{Typename: "User"},
		{Typename: "User", ID: "9"},
	}

	typenames, tokens := PartitionSelectors(selectors, nil)

	assert.Equal(t, []string{"User"}, typenames)
	assert.Empty(t, tokens, "narrow selector must be subsumed by the broad one")
}

func TestPartitionSelectors_Deduplicates(t *testing.T) {
	selectors := []Selector{
		{Typename: "User"},
		{Typename: "User"},
		{Typename: "Post", ID: "1"},
		{Typename: "Post", ID: "1"},
	}

	typenames, tokens := PartitionSelectors(selectors, nil)

	assert.Equal(t, []string{"User"}, typenames)
	assert.Equal(t, []string{"Post#1"}, tokens)
}

func TestPartitionSelectors_IgnoresEmptyTypename(t *testing.T) {
	typenames, tokens := PartitionSelectors([]Selector{{Typename: "", ID: "1"}, {Typename: ""}}, nil)

	assert.Empty(t, typenames)
	assert.Empty(t, tokens)
}

func TestPartitionSelectors_CustomBuilder(t *testing.T) {
	build := func(typename, id string) string { return typename + "/" + id }

	_, tokens := PartitionSelectors([]Selector{{Typename: "User", ID: "3"}}, build)

	assert.Equal(t, []string{"User/3"}, tokens)
}

func TestChunkStrings(t *testing.T) {
	values := []string{"a", "b", "c", "d", "e"}

	chunks := ChunkStrings(values, 2)

	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, chunks)
}

func TestChunkStrings_Empty(t *testing.T) {
	assert.Nil(t, ChunkStrings(nil, 10))
	assert.Nil(t, ChunkStrings([]string{"a"}, 0))
}

func TestChunkStrings_ExactMultiple(t *testing.T) {
	chunks := ChunkStrings([]string{"a", "b", "c", "d"}, 2)

	assert.Len(t, chunks, 2)
	assert.Equal(t, []string{"c", "d"}, chunks[1])
}
