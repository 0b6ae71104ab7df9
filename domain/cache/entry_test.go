package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNewEntry_DeduplicatesIndexFields(t *testing.T) {
	// Arrange
	entities := []Entity{
		{Typename: "User", ID: "1"},
		{Typename: "User", ID: "1"},
		{Typename: "User", ID: "2"},
		{Typename: "Comment"},
		{Typename: "Comment"},
	}

	// Act
	entry := NewEntry("q1", []byte("payload"), entities, time.Minute, testNow, nil)

	// Assert
	assert.Equal(t, []string{"Comment", "User"}, entry.Typenames)
	assert.Equal(t, []string{"User#1", "User#2"}, entry.EntityIDs)
}

func TestNewEntry_TypenamesSupersetOfEntityIDs(t *testing.T) {
	entities := []Entity{
		{Typename: "User", ID: "1"},
		{Typename: "Post", ID: "9"},
		{Typename: "Comment"},
	}

	entry := NewEntry("q1", nil, entities, 0, testNow, nil)

	// Every token's typename must also appear in Typenames.
	for _, token := range entry.EntityIDs {
		typename := token[:strings.Index(token, "#")]
		assert.Contains(t, entry.Typenames, typename)
	}
}

func TestNewEntry_EntityWithoutIDContributesOnlyTypename(t *testing.T) {
	entry := NewEntry("q1", nil, []Entity{{Typename: "Query"}}, time.Minute, testNow, nil)

	assert.Equal(t, []string{"Query"}, entry.Typenames)
	assert.Empty(t, entry.EntityIDs)
}

func TestNewEntry_SkipsEmptyTypename(t *testing.T) {
	entry := NewEntry("q1", nil, []Entity{{Typename: "", ID: "1"}}, time.Minute, testNow, nil)

	assert.Empty(t, entry.Typenames)
	assert.Empty(t, entry.EntityIDs)
}

func TestNewEntry_TTLSetsExpireAt(t *testing.T) {
	entry := NewEntry("q1", nil, nil, 90*time.Second, testNow, nil)

	assert.Equal(t, testNow.Add(90*time.Second), entry.ExpireAt)
}

func TestNewEntry_NonPositiveTTLNeverExpires(t *testing.T) {
	forever := NewEntry("q1", nil, nil, 0, testNow, nil)
	negative := NewEntry("q2", nil, nil, -time.Second, testNow, nil)

	assert.True(t, forever.ExpireAt.IsZero())
	assert.True(t, negative.ExpireAt.IsZero())
	assert.False(t, forever.Expired(testNow.Add(100*time.Hour)))
}

func TestNewEntry_CustomIdentifierBuilder(t *testing.T) {
	build := func(typename, id string) string { return typename + "/" + id }

	entry := NewEntry("q1", nil, []Entity{{Typename: "User", ID: "7"}}, time.Minute, testNow, build)

	assert.Equal(t, []string{"User/7"}, entry.EntityIDs)
}

func TestEntry_Expired(t *testing.T) {
	entry := NewEntry("q1", nil, nil, time.Second, testNow, nil)

	assert.False(t, entry.Expired(testNow))
	assert.False(t, entry.Expired(testNow.Add(time.Second))) // strictly before
	assert.True(t, entry.Expired(testNow.Add(1500*time.Millisecond)))
}
