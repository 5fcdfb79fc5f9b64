package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// diskEntry is the on-disk file format: one file per encoded key.
type diskEntry struct {
	CachedAt int64           `json:"cachedAt"`
	Payload  json.RawMessage `json:"payload"`
}

// DiskCache implements Store with one JSON file per encoded key. Entries are
// never deleted on expiry during normal operation; they are simply ignored
// until overwritten or removed by Prune. No file locking: concurrent writers
// to the same key race and the last write wins, which is tolerable because
// every write is a valid re-derivation of the same upstream truth.
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates the cache directory if needed and returns a DiskCache
// with the given TTL (DefaultTTL if ttl <= 0).
func NewDiskCache(dir string, ttl time.Duration) (*DiskCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir, ttl: ttl}, nil
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, EncodeKey(key)+".json")
}

// Get implements Store.Get. Returns false, nil for a missing or expired
// entry; false, err for an unreadable or corrupt file (callers treat both as
// a miss).
func (c *DiskCache) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var entry diskEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, err
	}
	if time.Now().Unix()-entry.CachedAt > int64(c.ttl.Seconds()) {
		return nil, false, nil
	}
	return entry.Payload, true, nil
}

// Set implements Store.Set.
func (c *DiskCache) Set(ctx context.Context, key string, payload any) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(diskEntry{CachedAt: time.Now().Unix(), Payload: body})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(key), raw, 0o644)
}

// Dir returns the cache directory. Used by the prune job for logging.
func (c *DiskCache) Dir() string {
	return c.dir
}
