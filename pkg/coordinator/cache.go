package coordinator

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/scanforge/engine/pkg/scanresult"
)

// resultCache is the Coordinator's exclusively-owned bounded LRU, keyed
// by the input fingerprint. golang-lru's Cache guards its own internal map
// with a mutex, so operations here are already O(1)-and-locked; the
// hit/miss counters are the only state this wrapper adds.
type resultCache struct {
	cache    *lru.Cache[string, scanresult.ScanResult]
	capacity int
	hits     atomic.Int64
	misses   atomic.Int64
}

func newResultCache(capacity int) (*resultCache, error) {
	if capacity <= 0 {
		capacity = 1
	}
	c, err := lru.New[string, scanresult.ScanResult](capacity)
	if err != nil {
		return nil, err
	}
	return &resultCache{cache: c, capacity: capacity}, nil
}

func (rc *resultCache) get(key string) (scanresult.ScanResult, bool) {
	v, ok := rc.cache.Get(key)
	if ok {
		rc.hits.Add(1)
	} else {
		rc.misses.Add(1)
	}
	return v, ok
}

func (rc *resultCache) put(key string, v scanresult.ScanResult) {
	rc.cache.Add(key, v)
}

func (rc *resultCache) stats() scanresult.CacheStats {
	return scanresult.CacheStats{
		Capacity: rc.capacity,
		Len:      rc.cache.Len(),
		Hits:     rc.hits.Load(),
		Misses:   rc.misses.Load(),
	}
}
