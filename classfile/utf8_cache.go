package classfile

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultUtf8CacheEntries   = 20000
	DefaultUtf8CacheMaxLength = 200
)

// Utf8Cache interns Utf8 constant values so that many parsed classes share
// one copy of common strings such as "java/lang/Object" or "()V". A nil
// *Utf8Cache is valid and disables interning. A cache may be shared by
// goroutines parsing different class files.
type Utf8Cache struct {
	maxEntries int
	maxLength  int

	once  sync.Once
	mu    sync.Mutex
	cache *lru.Cache[string, string]
}

// NewUtf8Cache returns a cache holding at most maxEntries strings, each no
// longer than maxLength bytes. Non-positive arguments select the defaults.
// The backing store is allocated on first use.
func NewUtf8Cache(maxEntries, maxLength int) *Utf8Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultUtf8CacheEntries
	}
	if maxLength <= 0 {
		maxLength = DefaultUtf8CacheMaxLength
	}
	return &Utf8Cache{maxEntries: maxEntries, maxLength: maxLength}
}

func (c *Utf8Cache) store() *lru.Cache[string, string] {
	c.once.Do(func() {
		// lru.New only fails for a non-positive size, which NewUtf8Cache rules out.
		c.cache, _ = lru.New[string, string](c.maxEntries)
	})
	return c.cache
}

// Intern returns the cached copy of s, inserting s when it is not yet present.
func (c *Utf8Cache) Intern(s string) string {
	if c == nil || len(s) > c.maxLength {
		return s
	}
	store := c.store()
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := store.Get(s); ok {
		return v
	}
	store.Add(s, s)
	return s
}

func (c *Utf8Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.store().Len()
}

func (c *Utf8Cache) Clear() {
	if c == nil {
		return
	}
	c.store().Purge()
}

func (c *Utf8Cache) MaxEntries() int {
	if c == nil {
		return 0
	}
	return c.maxEntries
}

func (c *Utf8Cache) MaxLength() int {
	if c == nil {
		return 0
	}
	return c.maxLength
}
