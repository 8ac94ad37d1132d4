// Package render formats explanation steps for people and for tools.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/go-path-explain/pkg/explain"
)

// Note is the rendered form of one step, independent of trace pointers so it
// can be cached and serialized.
type Note struct {
	Index     int    `json:"index" msgpack:"index"`
	Line      int    `json:"line" msgpack:"line"`
	Column    int    `json:"column" msgpack:"column"`
	Frame     string `json:"frame,omitempty" msgpack:"frame,omitempty"`
	Text      string `json:"text" msgpack:"text"`
	Visitor   string `json:"visitor,omitempty" msgpack:"visitor,omitempty"`
	Prunable  bool   `json:"prunable,omitempty" msgpack:"prunable,omitempty"`
	EndOfPath bool   `json:"end_of_path,omitempty" msgpack:"end_of_path,omitempty"`
}

// Document is the explanation of one fixture.
type Document struct {
	Name        string `json:"name" msgpack:"name"`
	Description string `json:"description" msgpack:"description"`
	Notes       []Note `json:"notes" msgpack:"notes"`
	Cached      bool   `json:"cached,omitempty" msgpack:"-"`
	Error       string `json:"error,omitempty" msgpack:"-"`
}

// Notes converts steps into notes numbered from 1.
func Notes(steps []explain.Step) []Note {
	notes := make([]Note, len(steps))
	for i, s := range steps {
		n := Note{
			Index:     i + 1,
			Line:      s.Location.Range.Start.Line,
			Column:    s.Location.Range.Start.Column,
			Text:      s.Text,
			Visitor:   s.Visitor,
			Prunable:  s.Prunable,
			EndOfPath: s.EndOfPath,
		}
		if s.Location.Frame != nil {
			n.Frame = s.Location.Frame.Function
		}
		notes[i] = n
	}
	return notes
}

// Text writes documents as aligned plain text:
//
//	name: description
//	  1  main  5:3   Variable 'p' initialized to a null pointer value
func Text(w io.Writer, docs []Document) error {
	for i, d := range docs {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", d.Name, d.Description); err != nil {
			return err
		}
		if d.Error != "" {
			if _, err := fmt.Fprintf(w, "  error: %s\n", d.Error); err != nil {
				return err
			}
			continue
		}

		idxW, frameW, posW := 0, 0, 0
		for _, n := range d.Notes {
			idxW = max(idxW, runewidth.StringWidth(fmt.Sprint(n.Index)))
			frameW = max(frameW, runewidth.StringWidth(n.Frame))
			posW = max(posW, runewidth.StringWidth(position(n)))
		}

		for _, n := range d.Notes {
			line := "  " + runewidth.FillLeft(fmt.Sprint(n.Index), idxW) +
				"  " + runewidth.FillRight(n.Frame, frameW) +
				"  " + runewidth.FillRight(position(n), posW) +
				"  " + n.Text
			if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func position(n Note) string {
	if n.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", n.Line, n.Column)
}

// JSON writes documents as an indented JSON array.
func JSON(w io.Writer, docs []Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}

// EncodeNotes serializes notes for the cache.
func EncodeNotes(notes []Note) ([]byte, error) {
	return msgpack.Marshal(notes)
}

// DecodeNotes restores notes serialized by EncodeNotes.
func DecodeNotes(data []byte) ([]Note, error) {
	var notes []Note
	if err := msgpack.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return notes, nil
}
