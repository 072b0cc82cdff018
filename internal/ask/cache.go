package ask

import (
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a cached answer stays fresh.
const DefaultCacheTTL = time.Hour

type cacheKey struct {
	query  string
	chatID int64
	start  string
	end    string
}

type cacheEntry struct {
	answer   Answer
	storedAt time.Time
}

// Cache memoizes finished answers so a repeated question does not re-invoke
// the model. Expiry is lazy: a stale entry is dropped on its next read, and
// nothing sweeps in the background.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[cacheKey]cacheEntry
}

// NewCache creates a Cache holding entries for ttl.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func newKey(query string, chatID int64, start, end string) cacheKey {
	return cacheKey{
		query:  strings.ToLower(strings.TrimSpace(query)),
		chatID: chatID,
		start:  start,
		end:    end,
	}
}

// Get returns the fresh cached answer for the request, if any.
func (c *Cache) Get(query string, chatID int64, start, end string) (Answer, bool) {
	key := newKey(query, chatID, start, end)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Answer{}, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return Answer{}, false
	}
	return entry.answer, true
}

// Put stores a finished answer for the request.
func (c *Cache) Put(query string, chatID int64, start, end string, answer Answer) {
	key := newKey(query, chatID, start, end)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{answer: answer, storedAt: c.now()}
}
