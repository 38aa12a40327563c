package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// Cache memoizes parsed ledgers by content identity. Re-parsing the same
// bytes with the same options returns the same *Ledger without re-reading.
// Failed parses are not cached.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Ledger
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Ledger)}
}

// Parse returns the cached ledger for data, parsing it on first use.
// The Source of a cached ledger is the one given on first parse.
func (c *Cache) Parse(data []byte, opts Options) (*Ledger, bool, error) {
	key := cacheKey(data, opts)

	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.entries[key]; ok {
		return l, true, nil
	}

	l, err := Parse(data, opts)
	if err != nil {
		return nil, false, err
	}
	c.entries[key] = l
	return l, false, nil
}

// Len returns the number of cached ledgers.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// cacheKey combines the content hash with every option that changes the
// parse result.
func cacheKey(data []byte, opts Options) string {
	return fmt.Sprintf("%s|%s|%s|%s|%v",
		contentHash(data),
		opts.Settings.Delimiter,
		opts.Settings.Encoding,
		opts.CurrencyMarker,
		opts.Columns.Required(),
	)
}
