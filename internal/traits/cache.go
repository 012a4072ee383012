package traits

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// CacheSchema is the DDL for the trait snapshot cache, applied at startup.
// A single row holds the latest msgpack-encoded snapshot.
const CacheSchema = `
CREATE TABLE IF NOT EXISTS traits_cache (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	data       BLOB    NOT NULL,
	expires_at INTEGER NOT NULL
);
`

// Cache persists the most recent trait snapshot with a TTL. It is purely an
// optimization for read surfaces; derivation never depends on it.
type Cache struct {
	db *sql.DB
}

// NewCache creates a trait snapshot cache over the given database.
func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// Store replaces the cached snapshot with expiration = now + ttl.
func (c *Cache) Store(t UserTraits, ttl time.Duration) error {
	data, err := msgpack.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode trait snapshot: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO traits_cache (id, data, expires_at) VALUES (1, ?, ?)`,
		data, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store trait snapshot: %w", err)
	}
	return nil
}

// GetIfFresh returns the cached snapshot if it has not expired.
// Returns nil, nil when missing or stale.
func (c *Cache) GetIfFresh() (*UserTraits, error) {
	var data []byte
	err := c.db.QueryRow(
		`SELECT data FROM traits_cache WHERE id = 1 AND expires_at > ?`,
		time.Now().Unix(),
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trait snapshot: %w", err)
	}

	var t UserTraits
	if err := msgpack.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode trait snapshot: %w", err)
	}
	return &t, nil
}

// Clear drops the cached snapshot.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM traits_cache`); err != nil {
		return fmt.Errorf("failed to clear trait snapshot: %w", err)
	}
	return nil
}
