package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS response_cache (
	url        TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	fetched_at INTEGER NOT NULL
);`

// ResponseCache is a read-through cache of HTTP response bodies keyed by URL.
type ResponseCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewResponseCache creates a cache over an open database with the given TTL.
func NewResponseCache(db *sql.DB, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ResponseCache{db: db, ttl: ttl, now: time.Now}
}

// Migrate creates the cache table if it does not exist.
func (c *ResponseCache) Migrate() error {
	if _, err := c.db.Exec(cacheSchema); err != nil {
		return fmt.Errorf("failed to create response_cache table: %w", err)
	}
	return nil
}

// Get returns the cached body for a URL, or ok=false on a miss.
// Expired entries count as misses and are deleted in passing.
func (c *ResponseCache) Get(url string) ([]byte, bool) {
	var body []byte
	var fetchedAt int64

	row := c.db.QueryRow(`SELECT body, fetched_at FROM response_cache WHERE url = ?`, url)
	if err := row.Scan(&body, &fetchedAt); err != nil {
		return nil, false
	}

	if c.now().Unix()-fetchedAt > int64(c.ttl.Seconds()) {
		_, _ = c.db.Exec(`DELETE FROM response_cache WHERE url = ?`, url)
		return nil, false
	}

	return body, true
}

// Put stores a response body for a URL, replacing any previous entry.
func (c *ResponseCache) Put(url string, body []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO response_cache (url, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		url, body, c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}

// Count returns the number of cached entries, expired ones included.
func (c *ResponseCache) Count() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM response_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

// PruneExpired deletes entries older than the TTL and reports how many went.
func (c *ResponseCache) PruneExpired() (int64, error) {
	cutoff := c.now().Unix() - int64(c.ttl.Seconds())
	res, err := c.db.Exec(`DELETE FROM response_cache WHERE fetched_at <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	return res.RowsAffected()
}

// Purge deletes every entry and reports how many went.
func (c *ResponseCache) Purge() (int64, error) {
	res, err := c.db.Exec(`DELETE FROM response_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return res.RowsAffected()
}
