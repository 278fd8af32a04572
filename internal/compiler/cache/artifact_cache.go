package cache

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/conduit-lang/beanc/internal/compiler/metadata"
)

// DefaultSize is the number of facts documents kept when no size is configured
const DefaultSize = 256

// Entry is the set of artifacts compiled from one facts document
type Entry struct {
	Key       string
	Path      string
	Artifacts []*metadata.Artifact
	CachedAt  time.Time
}

// Stats reports cache effectiveness
type Stats struct {
	Hits   int
	Misses int
	Size   int
}

// HitRate returns the hit rate as a percentage
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// ArtifactCache is a bounded LRU of compiled artifacts keyed by facts content.
// It is safe for concurrent use.
type ArtifactCache struct {
	entries *lru.Cache[string, *Entry]

	mu     sync.Mutex
	hits   int
	misses int
}

// NewArtifactCache creates a cache holding at most size facts documents
func NewArtifactCache(size int) (*ArtifactCache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}
	entries, err := lru.New[string, *Entry](size)
	if err != nil {
		return nil, err
	}
	return &ArtifactCache{entries: entries}, nil
}

// Get returns the artifacts cached under key.
// Only documents that compiled without failures are ever stored.
func (c *ArtifactCache) Get(key string) (*Entry, bool) {
	entry, ok := c.entries.Get(key)

	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	return entry, ok
}

// Set stores the artifacts compiled from the document at path
func (c *ArtifactCache) Set(key, path string, artifacts []*metadata.Artifact) {
	stored := make([]*metadata.Artifact, len(artifacts))
	copy(stored, artifacts)
	c.entries.Add(key, &Entry{
		Key:       key,
		Path:      path,
		Artifacts: stored,
		CachedAt:  time.Now(),
	})
}

// Invalidate removes an entry from the cache
func (c *ArtifactCache) Invalidate(key string) {
	c.entries.Remove(key)
}

// InvalidatePath removes every entry compiled from the document at path and
// returns the removed entries
func (c *ArtifactCache) InvalidatePath(path string) []*Entry {
	path = filepath.Clean(path)

	var removed []*Entry
	for _, key := range c.entries.Keys() {
		entry, ok := c.entries.Peek(key)
		if !ok || filepath.Clean(entry.Path) != path {
			continue
		}
		c.Invalidate(key)
		removed = append(removed, entry)
	}
	return removed
}

// Len returns the number of cached documents
func (c *ArtifactCache) Len() int {
	return c.entries.Len()
}

// Stats returns a snapshot of the hit/miss counters
func (c *ArtifactCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: c.entries.Len()}
}
