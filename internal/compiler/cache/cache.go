package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ManifestName is the file the cache is persisted to inside the output
// directory
const ManifestName = ".derivewhere-cache.json"

// Entry records the output generated from one item description file
type Entry struct {
	Source      string    `json:"source"`
	SourceHash  string    `json:"source_hash"`
	OptionsHash string    `json:"options_hash"`
	Output      string    `json:"output"`
	OutputHash  string    `json:"output_hash"`
	CachedAt    time.Time `json:"cached_at"`
	LastChecked time.Time `json:"last_checked"`
}

// OutputCache maps item description files to the output generated from them
type OutputCache struct {
	entries map[string]*Entry
	hasher  *FileHasher
	mu      sync.RWMutex
}

// NewOutputCache creates an empty cache
func NewOutputCache() *OutputCache {
	return &OutputCache{
		entries: make(map[string]*Entry),
		hasher:  NewFileHasher(),
	}
}

// Load reads a persisted cache. A missing manifest yields an empty cache.
func Load(path string) (*OutputCache, error) {
	c := NewOutputCache()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse cache %s: %w", path, err)
	}
	for _, entry := range entries {
		c.entries[entry.Source] = entry
	}
	return c, nil
}

// Save persists the cache
func (c *OutputCache) Save(path string) error {
	c.mu.RLock()
	entries := make([]*Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	c.mu.RUnlock()

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if _, err := WriteIfChanged(path, data); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Get retrieves the entry of a source file
func (c *OutputCache) Get(source string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[source]
	return entry, exists
}

// Fresh reports whether source was generated from identical content and
// options, and the output it produced is still on disk unchanged
func (c *OutputCache) Fresh(source, sourceHash, optionsHash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[source]
	if !exists || entry.SourceHash != sourceHash || entry.OptionsHash != optionsHash {
		return false
	}

	outputHash, err := c.hasher.HashFile(entry.Output)
	if err != nil || outputHash != entry.OutputHash {
		return false
	}

	entry.LastChecked = time.Now()
	return true
}

// Set records the output generated from source
func (c *OutputCache) Set(source, sourceHash, optionsHash, output string, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.entries[source] = &Entry{
		Source:      source,
		SourceHash:  sourceHash,
		OptionsHash: optionsHash,
		Output:      output,
		OutputHash:  c.hasher.HashContent(content),
		CachedAt:    now,
		LastChecked: now,
	}
}

// Invalidate removes an entry from the cache
func (c *OutputCache) Invalidate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, source)
}

// Size returns the number of cached entries
func (c *OutputCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Prune removes entries that haven't been checked in the given duration
func (c *OutputCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	pruned := 0

	for source, entry := range c.entries {
		if now.Sub(entry.LastChecked) > maxAge {
			delete(c.entries, source)
			pruned++
		}
	}

	return pruned
}

// WriteIfChanged writes content to path unless the file already holds
// exactly that content. It reports whether the file was written.
func WriteIfChanged(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, content) {
		return false, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return false, err
	}
	return true, nil
}
