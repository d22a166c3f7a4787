// Package indexes layers memoized keyed lookups on top of xlist.
package indexes

import (
	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/manuelalexan/xlist"
)

var LookupCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "xlist",
	Subsystem: "indexes",
	Name:      "lookups",
}, []string{"index", "result"})

type cached[T any] struct {
	version uint64
	value   T
}

// KeyIndex memoizes keyed linear searches over a list. Each cache
// entry carries the list version it was taken at and is revalidated on
// every hit, so any structural change simply turns the next lookup
// back into a scan. The index never mutates the list.
type KeyIndex[K comparable, T any] struct {
	name  string
	list  *xlist.List[T]
	keyOf func(T) K
	cache *lru.Cache[K, cached[T]]
}

func NewKeyIndex[K comparable, T any](name string, l *xlist.List[T], keyOf func(T) K, size int) (*KeyIndex[K, T], error) {
	if keyOf == nil {
		panic("xlist: nil key extractor")
	}
	cache, err := lru.New[K, cached[T]](size)
	if err != nil {
		return nil, err
	}
	return &KeyIndex[K, T]{name: name, list: l, keyOf: keyOf, cache: cache}, nil
}

// Lookup returns the first element whose key equals key.
func (ix *KeyIndex[K, T]) Lookup(key K) (T, bool) {
	if e, ok := ix.cache.Get(key); ok && e.version == ix.list.Version() {
		LookupCount.WithLabelValues(ix.name, "hit").Inc()
		return e.value, true
	}
	LookupCount.WithLabelValues(ix.name, "miss").Inc()
	before := ix.list.Version()
	v, ok := ix.list.FindFirst(func(x T) bool { return ix.keyOf(x) == key })
	// Cache only if the list stood still across the scan, otherwise
	// the entry could pin a value the list no longer holds at this
	// version.
	if ok && ix.list.Version() == before {
		ix.cache.Add(key, cached[T]{version: before, value: v})
	}
	return v, ok
}

// Invalidate empties the cache. Lookup self-heals on version changes,
// so this is only needed when cached values themselves went stale,
// e.g. after mutating an element in place.
func (ix *KeyIndex[K, T]) Invalidate() {
	ix.cache.Purge()
}

// CacheLen returns the number of memoized entries, live or stale.
func (ix *KeyIndex[K, T]) CacheLen() int {
	return ix.cache.Len()
}

// HashKey folds an arbitrary byte-string field into a fixed-size key,
// for elements keyed by long byte strings.
func HashKey(field []byte) uint64 {
	return xxhash.Sum64(field)
}
