package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/explain"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

func sampleSteps() []explain.Step {
	foo := &trace.Frame{ID: "foo", Function: "foo"}
	main := &trace.Frame{ID: "main", Function: "main"}
	at := func(line, col int) ast.Range {
		return ast.Range{Start: ast.Pos{Line: line, Column: col}, End: ast.Pos{Line: line, Column: col + 4}}
	}
	return []explain.Step{
		{Location: explain.Location{NodeID: 4, Frame: foo, Range: at(2, 3)}, Text: "Returning null pointer", Visitor: "return-value"},
		{Location: explain.Location{NodeID: 6, Frame: main, Range: at(12, 3)}, Text: "Variable 'p' initialized to a null pointer value", Visitor: "store-origin", Prunable: true},
		{Location: explain.Location{NodeID: 8, Frame: main}, Text: "Dereference of null pointer", EndOfPath: true},
	}
}

func TestNotes(t *testing.T) {
	notes := Notes(sampleSteps())
	require.Len(t, notes, 3)

	assert.Equal(t, Note{Index: 1, Line: 2, Column: 3, Frame: "foo", Text: "Returning null pointer", Visitor: "return-value"}, notes[0])
	assert.True(t, notes[1].Prunable)
	assert.True(t, notes[2].EndOfPath)
	assert.Zero(t, notes[2].Line)
}

func TestText(t *testing.T) {
	docs := []Document{
		{Name: "inlined", Description: "Dereference of null pointer", Notes: Notes(sampleSteps())},
		{Name: "broken", Description: "bad fixture", Error: "unknown statement"},
	}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, docs))

	want := strings.Join([]string{
		"inlined: Dereference of null pointer",
		"  1  foo   2:3   Returning null pointer",
		"  2  main  12:3  Variable 'p' initialized to a null pointer value",
		"  3  main  -     Dereference of null pointer",
		"",
		"broken: bad fixture",
		"  error: unknown statement",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTextWideRunes(t *testing.T) {
	docs := []Document{{
		Name:        "wide",
		Description: "d",
		Notes: []Note{
			{Index: 1, Frame: "関数", Line: 1, Column: 1, Text: "a"},
			{Index: 2, Frame: "f", Line: 1, Column: 1, Text: "b"},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, docs))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "  1  関数  1:1  a", lines[1])
	assert.Equal(t, "  2  f     1:1  b", lines[2])
}

func TestJSON(t *testing.T) {
	docs := []Document{{Name: "n", Description: "d", Notes: Notes(sampleSteps()), Cached: true}}

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, docs))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, true, got[0]["cached"])
	assert.Len(t, got[0]["notes"], 3)
}

func TestEncodeDecodeNotes(t *testing.T) {
	notes := Notes(sampleSteps())
	data, err := EncodeNotes(notes)
	require.NoError(t, err)

	got, err := DecodeNotes(data)
	require.NoError(t, err)
	assert.Equal(t, notes, got)

	_, err = DecodeNotes([]byte{0xc1})
	assert.Error(t, err)
}
