package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := OpenCache("", ttl, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_SetGet(t *testing.T) {
	c := newTestCache(t, time.Minute)

	_, ok := c.Get(ProfileKey("alice"))
	assert.False(t, ok)

	c.Set(ProfileKey("alice"), []byte("png-bytes"))

	data, ok := c.Get(ProfileKey("alice"))
	require.True(t, ok)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestCache_Invalidate(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set(ListKey("alice", "top-ten"), []byte("png-bytes"))
	c.Invalidate(ListKey("alice", "top-ten"))

	_, ok := c.Get(ListKey("alice", "top-ten"))
	assert.False(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	c := newTestCache(t, 100*time.Millisecond)

	c.Set(ProfileKey("alice"), []byte("png-bytes"))
	time.Sleep(250 * time.Millisecond)

	_, ok := c.Get(ProfileKey("alice"))
	assert.False(t, ok)
}

func TestCacheKeys(t *testing.T) {
	assert.NotEqual(t, ProfileKey("alice"), ListKey("alice", ""))
	assert.Equal(t, "card:profile:alice", ProfileKey("alice"))
	assert.Equal(t, "card:list:alice:top-ten", ListKey("alice", "top-ten"))
}

func TestCacheKeys_CaseInsensitive(t *testing.T) {
	// Lookups are case-insensitive, so a mixed-case request URL and a
	// session username must hit the same entry.
	assert.Equal(t, ProfileKey("alice"), ProfileKey("Alice"))
	assert.Equal(t, ListKey("alice", "top-ten"), ListKey("ALICE", "top-ten"))
}
