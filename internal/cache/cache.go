// Package cache holds the small mutex-guarded LRU shared by the knowledge
// base and the asset prompt cache.
package cache

import (
	"container/list"
	"sync"
)

// Cache is a string-keyed store with full purge. Implementations are safe
// for concurrent use.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Purge()
}

type entry struct {
	key   string
	value interface{}
}

type lru struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

// NewLRU returns a Cache evicting least-recently-used entries past capacity.
func NewLRU(capacity int) Cache {
	if capacity <= 0 {
		capacity = 32
	}
	return &lru{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (c *lru) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry).value, true
}

func (c *lru) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry).value = value
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(&entry{key: key, value: value})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

func (c *lru) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
}
