package iconcache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"
	"time"
)

// HashCache provides ModTime-based caching for file hashes
type HashCache struct {
	mu      sync.RWMutex
	entries map[string]hashEntry
}

type hashEntry struct {
	modTime time.Time
	size    int64
	hash    string
}

// NewHashCache creates an empty hash cache
func NewHashCache() *HashCache {
	return &HashCache{entries: make(map[string]hashEntry)}
}

// GetOrCompute returns cached hash if file hasn't changed, otherwise computes new hash
func (c *HashCache) GetOrCompute(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()

	if ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		return entry.hash, nil
	}

	hash, err := computeFileHash(path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[path] = hashEntry{
		modTime: info.ModTime(),
		size:    info.Size(),
		hash:    hash,
	}
	c.mu.Unlock()

	return hash, nil
}

// Clear clears the hash cache
func (c *HashCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]hashEntry)
	c.mu.Unlock()
}

// Size returns the number of cached entries
func (c *HashCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// computeFileHash computes SHA256 hash without caching
func computeFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
