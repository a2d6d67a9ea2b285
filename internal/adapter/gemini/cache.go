package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/couchcryptid/astroweather-service/internal/domain"
	"github.com/couchcryptid/astroweather-service/internal/observability"
)

// CachedAdvisor wraps an Advisor with in-memory LRU caches, one per guidance kind.
type CachedAdvisor struct {
	inner    domain.Advisor
	metrics  *observability.Metrics
	clothing *lruCache[domain.ClothingAndSafetyOutput]
	activity *lruCache[domain.ActivityOutput]
	eco      *lruCache[domain.EcoAwarenessOutput]
}

// NewCachedAdvisor creates a cache decorator around an advisor.
func NewCachedAdvisor(inner domain.Advisor, maxEntries int, metrics *observability.Metrics) *CachedAdvisor {
	return &CachedAdvisor{
		inner:    inner,
		metrics:  metrics,
		clothing: newLRUCache[domain.ClothingAndSafetyOutput](maxEntries),
		activity: newLRUCache[domain.ActivityOutput](maxEntries),
		eco:      newLRUCache[domain.EcoAwarenessOutput](maxEntries),
	}
}

func (c *CachedAdvisor) ClothingAndSafety(ctx context.Context, in domain.ClothingAndSafetyInput) (domain.ClothingAndSafetyOutput, error) {
	key := fmt.Sprintf("%d|%d|%d|%d", in.Temperature, in.Humidity, in.WindSpeed, in.RainfallChance)
	if out, ok := cached(c.metrics, KindClothing, c.clothing, key); ok {
		return out, nil
	}
	out, err := c.inner.ClothingAndSafety(ctx, in)
	if err != nil {
		return out, err
	}
	// Only cache non-empty results so a degenerate model answer can be retried.
	if len(out.ClothingRecommendations) > 0 || len(out.SafetyRecommendations) > 0 {
		c.clothing.put(key, out)
	}
	return out, nil
}

func (c *CachedAdvisor) SuggestActivity(ctx context.Context, in domain.ActivityInput) (domain.ActivityOutput, error) {
	key := fmt.Sprintf("%s|%d|%d|%d|%d|%s", strings.ToLower(strings.TrimSpace(in.Emotion)),
		in.Temperature, in.Humidity, in.WindSpeed, in.RainfallChance, in.ComfortIndex)
	if out, ok := cached(c.metrics, KindActivity, c.activity, key); ok {
		return out, nil
	}
	out, err := c.inner.SuggestActivity(ctx, in)
	if err != nil {
		return out, err
	}
	if out.SuggestedActivity != "" {
		c.activity.put(key, out)
	}
	return out, nil
}

func (c *CachedAdvisor) EcoAwareness(ctx context.Context, in domain.EcoAwarenessInput) (domain.EcoAwarenessOutput, error) {
	key := strings.ToLower(strings.TrimSpace(in.Location))
	if out, ok := cached(c.metrics, KindEco, c.eco, key); ok {
		return out, nil
	}
	out, err := c.inner.EcoAwareness(ctx, in)
	if err != nil {
		return out, err
	}
	if out.Flora != "" || out.Fauna != "" || out.Tip != "" {
		c.eco.put(key, out)
	}
	return out, nil
}

// cached reads a cache entry and counts the hit or miss.
func cached[V any](m *observability.Metrics, kind string, cache *lruCache[V], key string) (V, bool) {
	v, ok := cache.get(key)
	if m != nil {
		result := "miss"
		if ok {
			result = "hit"
		}
		m.GuidanceCache.WithLabelValues(kind, result).Inc()
	}
	return v, ok
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
