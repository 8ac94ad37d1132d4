// Package cache provides an LRU cache of serialized values with disk
// persistence. It backs the explanation cache of the CLI, where rendered
// notes are stored under the digest of the fixture they were computed from.
package cache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrKeyNotFound is returned when a key is not found in the cache.
var ErrKeyNotFound = errors.New("key not found")

// Entry is a cached value with metadata.
type Entry struct {
	Key        string    `msgpack:"key"`
	Value      []byte    `msgpack:"value"`
	AccessedAt time.Time `msgpack:"accessed_at"`
	CreatedAt  time.Time `msgpack:"created_at"`
}

// LRUCache is an in-memory LRU cache. It is safe for concurrent use.
type LRUCache struct {
	mu           sync.RWMutex
	items        map[string]*listItem
	lru          *list // Most recent at front
	maxSize      int
	maxBytes     int64
	currentBytes int64
	onEvict      func(key string, value []byte)
	now          func() time.Time
}

// listItem is an item in the doubly-linked list.
type listItem struct {
	Entry
	prev *listItem
	next *listItem
}

type list struct {
	head *listItem // Most recently accessed
	tail *listItem // Least recently accessed
	len  int
}

func (l *list) unlink(item *listItem) {
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		l.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		l.tail = item.prev
	}
	item.prev, item.next = nil, nil
	l.len--
}

func (l *list) pushFront(item *listItem) {
	item.next = l.head
	item.prev = nil
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
	l.len++
}

func (l *list) moveToFront(item *listItem) {
	if item == l.head {
		return
	}
	l.unlink(item)
	l.pushFront(item)
}

// Options configures the LRU cache.
type Options struct {
	// MaxSize is the maximum number of entries. 0 means unlimited.
	MaxSize int

	// MaxBytes is the maximum total size of values. 0 means unlimited.
	MaxBytes int64

	// OnEvict is called when an entry is evicted or deleted.
	OnEvict func(key string, value []byte)
}

// New creates an LRU cache with the given options.
func New(opts Options) *LRUCache {
	return &LRUCache{
		items:    make(map[string]*listItem),
		lru:      &list{},
		maxSize:  opts.MaxSize,
		maxBytes: opts.MaxBytes,
		onEvict:  opts.OnEvict,
		now:      time.Now,
	}
}

// Get retrieves a value and marks it most recently used.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		return nil, false
	}
	item.AccessedAt = c.now()
	c.lru.moveToFront(item)
	return item.Value, true
}

// Set stores a value, evicting least recently used entries if needed.
func (c *LRUCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if item, exists := c.items[key]; exists {
		c.currentBytes += int64(len(value) - len(item.Value))
		item.Value = value
		item.AccessedAt = now
		c.lru.moveToFront(item)
		c.evictIfNeeded()
		return
	}

	item := &listItem{Entry: Entry{Key: key, Value: value, AccessedAt: now, CreatedAt: now}}
	c.items[key] = item
	c.lru.pushFront(item)
	c.currentBytes += int64(len(value))
	c.evictIfNeeded()
}

// Delete removes a key from the cache.
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		return
	}
	c.remove(item)
}

func (c *LRUCache) remove(item *listItem) {
	c.lru.unlink(item)
	delete(c.items, item.Key)
	c.currentBytes -= int64(len(item.Value))
	if c.onEvict != nil {
		c.onEvict(item.Key, item.Value)
	}
}

// Clear removes all entries without calling OnEvict.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = &list{}
	c.currentBytes = 0
}

// Len returns the number of entries.
func (c *LRUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// CurrentBytes returns the total size of the cached values.
func (c *LRUCache) CurrentBytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentBytes
}

func (c *LRUCache) evictIfNeeded() {
	for c.shouldEvict() && c.lru.tail != nil {
		c.remove(c.lru.tail)
	}
}

func (c *LRUCache) shouldEvict() bool {
	if c.maxSize > 0 && c.lru.len > c.maxSize {
		return true
	}
	if c.maxBytes > 0 && c.currentBytes > c.maxBytes {
		return true
	}
	return false
}

// Save writes the entries to w using msgpack, least recently used first.
func (c *LRUCache) Save(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, c.lru.len)
	for item := c.lru.tail; item != nil; item = item.prev {
		entries = append(entries, item.Entry)
	}
	return msgpack.NewEncoder(w).Encode(entries)
}

// Load replaces the cache content with entries read from r. Limits apply:
// when the saved cache is larger, the least recently used entries are dropped.
func (c *LRUCache) Load(r io.Reader) error {
	var entries []Entry
	if err := msgpack.NewDecoder(r).Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = &list{}
	c.currentBytes = 0
	for _, e := range entries {
		if old, ok := c.items[e.Key]; ok {
			c.lru.unlink(old)
			c.currentBytes -= int64(len(old.Value))
		}
		item := &listItem{Entry: e}
		c.items[e.Key] = item
		c.lru.pushFront(item)
		c.currentBytes += int64(len(e.Value))
	}
	// Dropped entries were never handed out, so OnEvict is not called.
	onEvict := c.onEvict
	c.onEvict = nil
	c.evictIfNeeded()
	c.onEvict = onEvict
	return nil
}

// PersistToFile saves the cache to a file, creating parent directories.
func PersistToFile(c *LRUCache, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if err := c.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return f.Close()
}

// LoadFromFile loads the cache from a file. A missing file is not an error.
func LoadFromFile(c *LRUCache, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	return c.Load(f)
}
