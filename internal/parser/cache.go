package parser

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"golang.org/x/crypto/blake2b"
)

// DefaultCacheSize bounds the number of parse trees a Cache retains.
const DefaultCacheSize = 256

// Cache is a bounded, session-scoped parse cache keyed by (path, content
// hash). It is created per analysis session and passed explicitly by the
// caller — never a process-wide singleton — so repeated runs in one process
// cannot observe stale trees across workspace mutations. Evicted and replaced
// entries have their trees closed.
type Cache struct {
	entries *lru.Cache[cacheKey, *Result]
}

type cacheKey struct {
	path string
	sum  [16]byte
}

func keyFor(path string, source []byte) cacheKey {
	h, _ := blake2b.New(16, nil)
	h.Write(source)
	var sum [16]byte
	copy(sum[:], h.Sum(nil))
	return cacheKey{path: path, sum: sum}
}

// NewCache creates a Cache holding at most size trees (DefaultCacheSize when
// size <= 0).
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.NewWithEvict[cacheKey, *Result](size, func(_ cacheKey, r *Result) {
		r.Close()
	})
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Parse returns a cached Result for identical (path, content) pairs, parsing
// on miss. Callers must not Close results obtained from the cache; the cache
// owns them.
func (c *Cache) Parse(ctx context.Context, path string, source []byte) (*Result, error) {
	key := keyFor(path, source)
	if r, ok := c.entries.Get(key); ok {
		return r, nil
	}
	r, err := ParseFile(ctx, path, source)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, r)
	return r, nil
}

// Purge drops every cached tree, closing each one.
func (c *Cache) Purge() {
	c.entries.Purge()
}
