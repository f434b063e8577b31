package market

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
)

// BarStore keeps a bounded rolling window of bars per symbol+interval.
type BarStore interface {
	Put(ctx context.Context, symbol, interval string, bars []Bar, max int) error
	Get(ctx context.Context, symbol, interval string) ([]Bar, error)
}

type MemoryBarStore struct {
	shards []barShard
}

type barShard struct {
	mu   sync.RWMutex
	data map[string][]Bar
}

const defaultShardCount = 16

func NewMemoryBarStore() *MemoryBarStore {
	out := &MemoryBarStore{shards: make([]barShard, defaultShardCount)}
	for i := range out.shards {
		out.shards[i] = barShard{data: make(map[string][]Bar)}
	}
	return out
}

func (s *MemoryBarStore) shardFor(key string) *barShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &s.shards[h.Sum32()%uint32(len(s.shards))]
}

func storeKey(symbol, interval string) string { return symbol + "@" + interval }

// Put merges bars into the rolling window. A bar with the same OpenTime as the
// last stored bar replaces it; otherwise bars append and the oldest entries
// are evicted past max.
func (s *MemoryBarStore) Put(ctx context.Context, symbol, interval string, bars []Bar, max int) error {
	if symbol == "" || interval == "" {
		return errors.New("symbol and interval are required")
	}
	if len(bars) == 0 {
		return nil
	}
	if max <= 0 {
		max = 200
	}
	k := storeKey(symbol, interval)
	sh := s.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	cur := sh.data[k]
	for _, bar := range bars {
		n := len(cur)
		if n > 0 && cur[n-1].OpenTime == bar.OpenTime {
			cur[n-1] = bar
			continue
		}
		cur = append(cur, bar)
	}
	if len(cur) > max {
		cur = cur[len(cur)-max:]
	}
	sh.data[k] = cur
	return nil
}

func (s *MemoryBarStore) Get(ctx context.Context, symbol, interval string) ([]Bar, error) {
	k := storeKey(symbol, interval)
	sh := s.shardFor(k)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	cur := sh.data[k]
	if len(cur) == 0 {
		return nil, nil
	}
	out := make([]Bar, len(cur))
	copy(out, cur)
	return out, nil
}
