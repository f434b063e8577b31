package signal

import (
	"sort"
	"sync"
)

// Cache keeps the most recent signal per symbol for status reporting. The
// signal loop writes, the HTTP layer reads.
type Cache struct {
	mu     sync.RWMutex
	latest map[string]Signal
}

func NewCache() *Cache {
	return &Cache{latest: make(map[string]Signal)}
}

func (c *Cache) Put(sig Signal) {
	if sig.Symbol == "" {
		return
	}
	c.mu.Lock()
	c.latest[sig.Symbol] = sig
	c.mu.Unlock()
}

// Latest returns the current signals ordered by symbol.
func (c *Cache) Latest() []Signal {
	c.mu.RLock()
	out := make([]Signal, 0, len(c.latest))
	for _, sig := range c.latest {
		out = append(out, sig)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Get returns the latest signal for one symbol.
func (c *Cache) Get(symbol string) (Signal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sig, ok := c.latest[symbol]
	return sig, ok
}
