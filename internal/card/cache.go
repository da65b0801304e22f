package card

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache stores rendered card PNGs with a TTL, so repeated crawler hits
// on the same URL skip the draw pipeline.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
	ttl    time.Duration
}

// OpenCache opens the render cache at path. An empty path opens an
// in-memory cache, which also serves the tests.
func OpenCache(path string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logging is too chatty for a cache
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open card cache: %w", err)
	}

	return &Cache{
		db:     db,
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Get returns the cached PNG for key, or false on a miss. Cache errors
// are logged and reported as misses; the caller just renders again.
func (c *Cache) Get(key string) ([]byte, bool) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			c.logger.Warn("card cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

// Set stores a rendered PNG under key for the cache TTL. Failures are
// logged and swallowed; a cold cache is not an error.
func (c *Cache) Set(key string, data []byte) {
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.Warn("card cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops a single key, for when the underlying data changed.
func (c *Cache) Invalidate(key string) {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		c.logger.Warn("card cache invalidate failed", "key", key, "error", err)
	}
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// ProfileKey is the cache key for a profile card. Usernames are folded
// because lookups are case-insensitive; without it a mixed-case request
// URL would cache an entry that invalidation never hits.
func ProfileKey(username string) string {
	return "card:profile:" + strings.ToLower(username)
}

// ListKey is the cache key for a list card.
func ListKey(username, slug string) string {
	return "card:list:" + strings.ToLower(username) + ":" + slug
}
