package assets

import "github.com/seoforge/seoforge/internal/cache"

// Cache is the prompt-keyed result cache a session consults before calling
// the backend. It is injected so tests can observe or replace the policy.
type Cache = cache.Cache

// NewLRUCache returns a Cache evicting least-recently-used entries past
// capacity.
func NewLRUCache(capacity int) Cache {
	return cache.NewLRU(capacity)
}
