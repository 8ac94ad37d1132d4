package cache

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/l3aro/go-path-explain/pkg/render"
)

func BenchmarkCacheGet(b *testing.B) {
	c := New(Options{MaxSize: 10000})
	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("key%d", i), bytes.Repeat([]byte("x"), 100))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key999")
	}
}

func BenchmarkCacheSet(b *testing.B) {
	c := New(Options{MaxSize: 10000})
	value := bytes.Repeat([]byte("x"), 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(fmt.Sprintf("key%d", i), value)
	}
}

func BenchmarkNoteStoreGet(b *testing.B) {
	s := NewNoteStore("", Options{MaxSize: 100})
	key := NoteKey{Digest: "d", MaxSteps: 256}
	notes := make([]render.Note, 20)
	for i := range notes {
		notes[i] = render.Note{Index: i + 1, Line: i, Column: 1, Frame: "main", Text: "Variable 'p' initialized to a null pointer value"}
	}
	if err := s.Set(key, notes); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Get(key)
	}
}
