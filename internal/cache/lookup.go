package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Lookup memoizes read-only backend listings for a short TTL.
type Lookup struct {
	store *gocache.Cache
}

func NewLookup(ttl time.Duration) *Lookup {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Lookup{store: gocache.New(ttl, 2*ttl)}
}

// GetOrLoad returns the cached value for key or calls load and caches its
// result. Errors are not cached.
func GetOrLoad[T any](ctx context.Context, l *Lookup, key string, load func(context.Context) (T, error)) (T, error) {
	if cached, ok := l.store.Get(key); ok {
		if v, ok := cached.(T); ok {
			return v, nil
		}
	}
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	l.store.SetDefault(key, v)
	return v, nil
}

func (l *Lookup) Invalidate(key string) {
	l.store.Delete(key)
}

func (l *Lookup) Flush() {
	l.store.Flush()
}

func ProvidersKey() string {
	return "llm:providers"
}

func TablesKey(collectionID int64) string {
	return fmt.Sprintf("collection:tables:%d", collectionID)
}
