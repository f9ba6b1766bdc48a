package flagfetch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hightemp/flagpic/internal/config"
	"github.com/hightemp/flagpic/internal/fsutil"
	"github.com/hightemp/flagpic/internal/logger"
)

// CacheEntry records one downloaded flag.
type CacheEntry struct {
	File      string    `json:"file"` // relative to the cache directory
	Size      int       `json:"size"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Cache keeps downloaded flags on disk, indexed by a JSON file.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]*CacheEntry
	dir       string
	indexPath string
	ttl       time.Duration
	dirty     bool
}

// NewCache creates a cache rooted at dir whose entries live for ttlDays.
func NewCache(dir string, ttlDays int) *Cache {
	return &Cache{
		entries:   make(map[string]*CacheEntry),
		dir:       dir,
		indexPath: filepath.Join(dir, config.FlagCacheIndexFileName),
		ttl:       time.Duration(ttlDays) * 24 * time.Hour,
	}
}

// OpenCache loads the cache rooted at dir. An unreadable index is discarded and
// expired entries are dropped before the cache is returned.
func OpenCache(dir string, ttlDays int) *Cache {
	cache := NewCache(dir, ttlDays)
	if err := cache.Load(); err != nil {
		logger.WithError(err).Warn("ignoring unreadable flag cache", "dir", dir)
		cache.Clear()
	}
	if removed := cache.Cleanup(); removed > 0 {
		logger.Debug("removed expired flags from cache", "count", removed)
	}
	logger.Debug("flag cache loaded", "dir", dir, "entries", cache.Size())
	return cache
}

func cacheKey(ratio AspectRatio, code string) string {
	return string(ratio) + "/" + code
}

// Load loads the index from disk. A missing index is an empty cache.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.indexPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries map[string]*CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	if entries == nil {
		entries = make(map[string]*CacheEntry)
	}
	for key, entry := range entries {
		if entry == nil {
			delete(entries, key)
		}
	}

	c.entries = entries
	return nil
}

// Save writes the index to disk if it changed.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}

	if err := fsutil.WriteFileAtomic(c.dir, filepath.Base(c.indexPath), data); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Get returns the cached flag, if present and fresh.
func (c *Cache) Get(ratio AspectRatio, code string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(ratio, code)]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}

	data, err := os.ReadFile(filepath.Join(c.dir, entry.File))
	if err != nil || len(data) != entry.Size {
		return nil, false
	}
	return data, true
}

// Put stores a flag and records it in the index.
func (c *Cache) Put(ratio AspectRatio, code string, data []byte) error {
	rel := filepath.Join(string(ratio), code+".svg")
	if err := fsutil.WriteFileAtomic(filepath.Join(c.dir, string(ratio)), code+".svg", data); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.entries[cacheKey(ratio, code)] = &CacheEntry{
		File:      rel,
		Size:      len(data),
		CachedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.dirty = true
	return nil
}

// Clear removes all cache entries and their files.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.entries {
		_ = os.Remove(filepath.Join(c.dir, entry.File))
	}
	c.entries = make(map[string]*CacheEntry)
	c.dirty = true
}

// Cleanup removes expired entries and their files.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			_ = os.Remove(filepath.Join(c.dir, entry.File))
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.dirty = true
	}
	return removed
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
