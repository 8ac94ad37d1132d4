package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/l3aro/go-path-explain/pkg/render"
)

// NoteKey identifies an explanation: the fixture digest plus every option
// that changes the produced notes.
type NoteKey struct {
	Digest   string
	MaxSteps int
	Prune    bool
}

// String returns the cache key, e.g. "3fa9...:256:prune".
func (k NoteKey) String() string {
	mode := "full"
	if k.Prune {
		mode = "prune"
	}
	return fmt.Sprintf("%s:%d:%s", k.Digest, k.MaxSteps, mode)
}

// Stats holds note cache statistics.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
	Bytes   int64
}

// NoteStore caches rendered notes and persists them to a single file.
type NoteStore struct {
	cache *LRUCache
	path  string

	hits   atomic.Int64
	misses atomic.Int64

	mu    sync.Mutex
	dirty bool
}

// NewNoteStore creates a store backed by path. An empty path keeps the store
// in memory only.
func NewNoteStore(path string, opts Options) *NoteStore {
	return &NoteStore{cache: New(opts), path: path}
}

// OpenNoteStore creates a store and loads any existing file at path.
func OpenNoteStore(path string, opts Options) (*NoteStore, error) {
	s := NewNoteStore(path, opts)
	if path == "" {
		return s, nil
	}
	if err := LoadFromFile(s.cache, path); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the notes cached under key.
func (s *NoteStore) Get(key NoteKey) ([]render.Note, bool) {
	data, ok := s.cache.Get(key.String())
	if !ok {
		s.misses.Add(1)
		return nil, false
	}
	notes, err := render.DecodeNotes(data)
	if err != nil {
		// Entries written by an incompatible version are dropped.
		s.cache.Delete(key.String())
		s.misses.Add(1)
		return nil, false
	}
	s.hits.Add(1)
	return notes, true
}

// Lookup is Get with cancellation. It returns ErrKeyNotFound on a miss.
func (s *NoteStore) Lookup(ctx context.Context, key NoteKey) ([]render.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	notes, ok := s.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return notes, nil
}

// Set caches notes under key.
func (s *NoteStore) Set(key NoteKey, notes []render.Note) error {
	data, err := render.EncodeNotes(notes)
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	s.cache.Set(key.String(), data)

	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
	return nil
}

// GetOrCompute returns the cached notes for key, calling compute on a miss
// and caching its result. The second result reports a cache hit.
func (s *NoteStore) GetOrCompute(ctx context.Context, key NoteKey, compute func(context.Context) ([]render.Note, error)) ([]render.Note, bool, error) {
	if notes, err := s.Lookup(ctx, key); err == nil {
		return notes, true, nil
	} else if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}

	notes, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := s.Set(key, notes); err != nil {
		return nil, false, err
	}
	return notes, false, nil
}

// Flush writes the store to its file if anything changed since the last
// flush.
func (s *NoteStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" || !s.dirty {
		return nil
	}
	if err := PersistToFile(s.cache, s.path); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Clear removes all cached notes.
func (s *NoteStore) Clear() {
	s.cache.Clear()
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// Stats returns hit and size statistics.
func (s *NoteStore) Stats() Stats {
	return Stats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Entries: s.cache.Len(),
		Bytes:   s.cache.CurrentBytes(),
	}
}
