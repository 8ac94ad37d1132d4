package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-path-explain/pkg/render"
)

func TestLRUCache_Basic(t *testing.T) {
	c := New(Options{MaxSize: 3})

	c.Set("a", []byte("value_a"))
	c.Set("b", []byte("value_b"))
	c.Set("c", []byte("value_c"))

	assert.Equal(t, 3, c.Len())

	val, found := c.Get("a")
	require.True(t, found)
	assert.Equal(t, []byte("value_a"), val)

	val, found = c.Get("b")
	require.True(t, found)
	assert.Equal(t, []byte("value_b"), val)
}

func TestLRUCache_LRU_Eviction(t *testing.T) {
	var evicted []string
	c := New(Options{MaxSize: 3, OnEvict: func(key string, _ []byte) { evicted = append(evicted, key) }})

	c.Set("a", []byte("value_a"))
	c.Set("b", []byte("value_b"))
	c.Set("c", []byte("value_c"))

	// Access 'a' to make it most recently used
	c.Get("a")

	// Add new item - should evict 'b' (least recently used)
	c.Set("d", []byte("value_d"))

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"b"}, evicted)

	_, found := c.Get("b")
	assert.False(t, found, "b should have been evicted")

	_, found = c.Get("a")
	assert.True(t, found, "a should still be present")

	_, found = c.Get("c")
	assert.True(t, found, "c should still be present")

	_, found = c.Get("d")
	assert.True(t, found, "d should be present")
}

func TestLRUCache_Delete(t *testing.T) {
	c := New(Options{MaxSize: 10})

	c.Set("a", []byte("value_a"))
	c.Set("b", []byte("value_b"))

	c.Delete("a")
	c.Delete("missing")

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(7), c.CurrentBytes())

	_, found := c.Get("a")
	assert.False(t, found)

	val, found := c.Get("b")
	require.True(t, found)
	assert.Equal(t, []byte("value_b"), val)
}

func TestLRUCache_Clear(t *testing.T) {
	c := New(Options{MaxSize: 10})

	c.Set("a", []byte("value_a"))
	c.Set("b", []byte("value_b"))

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Zero(t, c.CurrentBytes())
}

func TestLRUCache_SaveLoad(t *testing.T) {
	c := New(Options{MaxSize: 10})
	c.Set("key1", []byte("value1"))
	c.Set("key2", []byte("value2"))
	c.Get("key1")

	var buf bytes.Buffer
	err := c.Save(&buf)
	require.NoError(t, err)

	// The smaller cache keeps only the most recently used entry.
	c2 := New(Options{MaxSize: 1})
	err = c2.Load(&buf)
	require.NoError(t, err)

	assert.Equal(t, 1, c2.Len())

	val, found := c2.Get("key1")
	require.True(t, found)
	assert.Equal(t, []byte("value1"), val)
}

func TestLRUCache_LoadInvalid(t *testing.T) {
	c := New(Options{})
	err := c.Load(bytes.NewReader([]byte{0xc1}))
	assert.Error(t, err)
}

func TestLRUCache_MaxBytes(t *testing.T) {
	c := New(Options{MaxBytes: 25})

	c.Set("a", []byte("1234567890"))
	c.Set("b", []byte("1234567890"))
	c.Set("c", []byte("1234567890"))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(20), c.CurrentBytes())

	_, found := c.Get("a")
	assert.False(t, found, "a should have been evicted")
}

func TestLRUCache_Update(t *testing.T) {
	c := New(Options{MaxSize: 10})

	c.Set("a", []byte("value1"))
	c.Set("a", []byte("value22"))

	val, found := c.Get("a")
	require.True(t, found)
	assert.Equal(t, []byte("value22"), val)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(7), c.CurrentBytes())
}

func TestPersistedFileDoesNotExist(t *testing.T) {
	c := New(Options{MaxSize: 10})
	err := LoadFromFile(c, filepath.Join(t.TempDir(), "nonexistent.cache"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func sampleNotes() []render.Note {
	return []render.Note{
		{Index: 1, Line: 5, Column: 3, Frame: "main", Text: "Variable 'p' declared without an initial value", Visitor: "store-origin"},
		{Index: 2, Line: 6, Column: 3, Frame: "main", Text: "Dereference of undefined pointer value", EndOfPath: true},
	}
}

func TestNoteKey(t *testing.T) {
	assert.Equal(t, "abc:256:full", NoteKey{Digest: "abc", MaxSteps: 256}.String())
	assert.Equal(t, "abc:0:prune", NoteKey{Digest: "abc", Prune: true}.String())
}

func TestNoteStore_Basic(t *testing.T) {
	s := NewNoteStore("", Options{MaxSize: 10})
	key := NoteKey{Digest: "abc", MaxSteps: 256}

	_, found := s.Get(key)
	assert.False(t, found)

	require.NoError(t, s.Set(key, sampleNotes()))

	notes, found := s.Get(key)
	require.True(t, found)
	assert.Equal(t, sampleNotes(), notes)

	_, found = s.Get(NoteKey{Digest: "abc", MaxSteps: 256, Prune: true})
	assert.False(t, found, "options are part of the key")

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Positive(t, stats.Bytes)
}

func TestNoteStore_DropsUndecodableEntries(t *testing.T) {
	s := NewNoteStore("", Options{})
	key := NoteKey{Digest: "abc"}
	s.cache.Set(key.String(), []byte{0xc1})

	_, found := s.Get(key)
	assert.False(t, found)
	assert.Equal(t, 0, s.Stats().Entries)
}

func TestNoteStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "notes.msgpack")
	key := NoteKey{Digest: "abc", MaxSteps: 256}

	s, err := OpenNoteStore(path, Options{MaxSize: 10})
	require.NoError(t, err)

	// Nothing written yet, so nothing is flushed.
	require.NoError(t, s.Flush())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, s.Set(key, sampleNotes()))
	require.NoError(t, s.Flush())

	s2, err := OpenNoteStore(path, Options{MaxSize: 10})
	require.NoError(t, err)
	notes, found := s2.Get(key)
	require.True(t, found)
	assert.Equal(t, sampleNotes(), notes)
}

func TestNoteStore_OpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.msgpack")
	require.NoError(t, os.WriteFile(path, []byte{0xc1}, 0644))

	_, err := OpenNoteStore(path, Options{})
	assert.Error(t, err)
}

func TestNoteStore_Lookup(t *testing.T) {
	s := NewNoteStore("", Options{})
	key := NoteKey{Digest: "abc"}

	_, err := s.Lookup(context.Background(), key)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.Set(key, sampleNotes()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Lookup(ctx, key)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoteStore_GetOrCompute(t *testing.T) {
	s := NewNoteStore("", Options{})
	key := NoteKey{Digest: "abc"}
	calls := 0
	compute := func(context.Context) ([]render.Note, error) {
		calls++
		return sampleNotes(), nil
	}

	notes, hit, err := s.GetOrCompute(context.Background(), key, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, notes, 2)

	notes, hit, err = s.GetOrCompute(context.Background(), key, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, notes, 2)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, _, err = s.GetOrCompute(context.Background(), NoteKey{Digest: "other"}, func(context.Context) ([]render.Note, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.Stats().Entries)
}

func TestNoteStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.msgpack")
	s := NewNoteStore(path, Options{})
	require.NoError(t, s.Set(NoteKey{Digest: "abc"}, sampleNotes()))
	require.NoError(t, s.Flush())

	s.Clear()
	require.NoError(t, s.Flush())

	s2, err := OpenNoteStore(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, s2.Stats().Entries)
}
