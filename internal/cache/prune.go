package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Prune removes expired and unreadable cache files and returns how many were
// deleted. Corrupt files count as expired: they can never be served again.
// Best-effort; individual remove failures are skipped, not surfaced.
func (c *DiskCache) Prune() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Unix() - int64(c.ttl.Seconds())
	removed := 0
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		path := filepath.Join(c.dir, de.Name())
		if !pruneable(path, cutoff) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed, nil
}

func pruneable(path string, cutoff int64) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var entry diskEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return true
	}
	return entry.CachedAt < cutoff
}
