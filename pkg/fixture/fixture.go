// Package fixture loads trace fixtures: YAML descriptions of one analysed
// path (declarations, statements as C source, blocks and trace nodes with
// their state) that are turned into a trace.Path ready to be explained.
package fixture

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

var (
	// ErrNoErrorNode is returned for a fixture without nodes.
	ErrNoErrorNode = errors.New("fixture has no error node")

	// ErrUnknownStmt is returned when a statement path does not resolve.
	ErrUnknownStmt = errors.New("unknown statement")

	// ErrUnknownName is returned for references to undeclared frames,
	// blocks, variables or functions.
	ErrUnknownName = errors.New("unknown name")

	// ErrInvalidValue is returned for malformed values, constraints, tags
	// and point kinds.
	ErrInvalidValue = errors.New("invalid value")
)

// DefectKind selects how the error node's interesting value is tracked.
type DefectKind string

const (
	DefectNullDeref   DefectKind = "null-deref"   // Null or undefined pointer dereference
	DefectDivZero     DefectKind = "div-zero"     // Division by zero
	DefectNilReceiver DefectKind = "nil-receiver" // Message sent to nil
	DefectReturn      DefectKind = "return"       // Bad value returned
	DefectNone        DefectKind = "none"         // Default visitors only
)

// File is the YAML document of a fixture.
type File struct {
	Description string      `yaml:"description"`
	Defect      DefectSpec  `yaml:"defect"`
	ObjectTypes []string    `yaml:"object_types,omitempty"`
	Fields      []string    `yaml:"fields,omitempty"` // Struct fields as declarations, e.g. "struct node *next"
	Enums       []string    `yaml:"enums,omitempty"`
	Globals     []string    `yaml:"globals,omitempty"`
	Functions   []string    `yaml:"functions,omitempty"`
	Frames      []FrameSpec `yaml:"frames"`
	Stmts       []StmtSpec  `yaml:"stmts"`
	Blocks      []BlockSpec `yaml:"blocks,omitempty"`
	Nodes       []NodeSpec  `yaml:"nodes"`
}

// DefectSpec names the defect and the statement to highlight.
type DefectSpec struct {
	Kind  DefectKind `yaml:"kind"`
	Range string     `yaml:"range,omitempty"` // Statement path; defaults to the error node's statement
}

// FrameSpec declares a call frame. The first frame is the top frame.
type FrameSpec struct {
	ID       string   `yaml:"id"`
	Function string   `yaml:"function"`
	Parent   string   `yaml:"parent,omitempty"`
	Call     string   `yaml:"call,omitempty"` // Statement path of the call site
	Vars     []string `yaml:"vars,omitempty"` // Locals declared outside the listed statements
}

// StmtSpec is one statement in C syntax.
type StmtSpec struct {
	ID    string `yaml:"id"`
	Frame string `yaml:"frame,omitempty"` // Defaults to the top frame
	Line  int    `yaml:"line,omitempty"`  // Defaults to the previous statement's line plus one
	Src   string `yaml:"src"`
}

// BlockSpec is a basic block. Its first successor is the true branch.
type BlockSpec struct {
	ID         string   `yaml:"id"`
	Terminator string   `yaml:"terminator,omitempty"`
	Succs      []string `yaml:"succs,omitempty"`
}

// NodeSpec is one trace node, listed root first. The state of a node is the
// state of the previous one updated by Bindings, Exprs and Constraints.
type NodeSpec struct {
	Point       string            `yaml:"point"`
	Stmt        string            `yaml:"stmt,omitempty"`
	Tag         string            `yaml:"tag,omitempty"`
	Src         string            `yaml:"src,omitempty"`
	Dst         string            `yaml:"dst,omitempty"`
	Frame       string            `yaml:"frame,omitempty"`
	Callee      string            `yaml:"callee,omitempty"`
	Args        []string          `yaml:"args,omitempty"`
	Aux         string            `yaml:"aux,omitempty"`
	Bindings    map[string]string `yaml:"bindings,omitempty"`
	Exprs       map[string]string `yaml:"exprs,omitempty"`
	Constraints map[string]string `yaml:"constraints,omitempty"`
}

// Fixture is a loaded trace.
type Fixture struct {
	Name        string
	Description string
	Kind        DefectKind
	Digest      string // SHA-256 of the YAML source

	ErrorNode *trace.Node
	Nodes     []*trace.Node

	highlight ast.Range
	stmts     map[string]ast.Stmt
}

// Load reads and builds the fixture at path.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	fx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	fx.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return fx, nil
}

// Parse builds a fixture from YAML source.
func Parse(data []byte) (*Fixture, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	fx, err := Build(&f)
	if err != nil {
		return nil, err
	}
	fx.Digest = Digest(data)
	return fx, nil
}

// Digest returns the hex SHA-256 of a fixture's source, used as cache key.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Stmt resolves a statement path such as "d1/init" against the fixture.
func (fx *Fixture) Stmt(path string) (ast.Stmt, error) {
	return resolve(fx.stmts, path)
}
