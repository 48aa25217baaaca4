// Package calculations provides a persistent TTL cache for computed and
// fetched data. Entries are msgpack-encoded and stored in the cache database,
// so they survive restarts but can be dropped at any time without data loss.
package calculations

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// TTLMarketData is the retention applied to cached market-data responses.
const TTLMarketData = 24 * time.Hour

// Cache stores msgpack-encoded values in the cache database with a TTL.
type Cache struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewCache creates a cache backed by the given database and ensures its
// schema exists.
func NewCache(db *sql.DB, log zerolog.Logger) (*Cache, error) {
	c := &Cache{
		db:  db,
		log: log.With().Str("component", "cache").Logger(),
	}
	if err := c.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return c, nil
}

func (c *Cache) initSchema() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS cache_entries (
			namespace  TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BLOB NOT NULL,
			expires_at INTEGER NOT NULL,
			PRIMARY KEY (namespace, key)
		)
	`)
	return err
}

// Get loads the entry into dest and reports whether a live entry was found.
// Expired or undecodable entries are treated as misses.
func (c *Cache) Get(namespace, key string, dest interface{}) bool {
	var value []byte
	var expiresAt int64

	err := c.db.QueryRow(
		`SELECT value, expires_at FROM cache_entries WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&value, &expiresAt)
	if err != nil {
		return false
	}

	if time.Now().Unix() >= expiresAt {
		return false
	}

	if err := msgpack.Unmarshal(value, dest); err != nil {
		c.log.Warn().Err(err).Str("namespace", namespace).Str("key", key).Msg("Failed to decode cache entry, treating as miss")
		return false
	}
	return true
}

// Set stores value under (namespace, key) with the given TTL, replacing any
// previous entry.
func (c *Cache) Set(namespace, key string, value interface{}, ttl time.Duration) error {
	encoded, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO cache_entries (namespace, key, value, expires_at) VALUES (?, ?, ?, ?)`,
		namespace, key, encoded, time.Now().Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Delete removes one entry. Missing entries are not an error.
func (c *Cache) Delete(namespace, key string) error {
	_, err := c.db.Exec(`DELETE FROM cache_entries WHERE namespace = ? AND key = ?`, namespace, key)
	return err
}

// PurgeExpired removes all expired entries and returns how many were deleted.
func (c *Cache) PurgeExpired() (int64, error) {
	res, err := c.db.Exec(`DELETE FROM cache_entries WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired cache entries: %w", err)
	}
	return res.RowsAffected()
}
