// Package cfg defines the basic blocks that block-edge trace points refer to.
// A branch block's first successor is the block taken when its terminator
// condition is true, the second when it is false.
package cfg

import (
	"github.com/l3aro/go-path-explain/pkg/ast"
)

// EdgeType represents the type of a CFG edge.
type EdgeType string

const (
	EdgeTypeUnconditional EdgeType = "unconditional" // Single successor or no terminator
	EdgeTypeTrue          EdgeType = "true"          // True branch of conditional
	EdgeTypeFalse         EdgeType = "false"         // False branch of conditional
	EdgeTypeSwitch        EdgeType = "switch"        // Multi-way terminator
)

// Block represents a basic block: straight-line statements ended by an
// optional terminator.
type Block struct {
	ID         string   `json:"id"`
	Terminator ast.Stmt `json:"-"` // *ast.IfStmt or *ast.Conditional for two-way branches
	Succs      []*Block `json:"-"`
}

// Cond returns the branch condition of the block's terminator, or nil when
// the block does not end in an if statement or a ternary.
func (b *Block) Cond() ast.Expr {
	switch t := b.Terminator.(type) {
	case *ast.IfStmt:
		return t.Cond
	case *ast.Conditional:
		return t.Cond
	}
	return nil
}

// IsTwoWayBranch reports whether b ends in an if statement or a ternary with
// exactly two successors.
func (b *Block) IsTwoWayBranch() bool {
	return b.Cond() != nil && len(b.Succs) == 2
}

// Edge classifies the edge from src to dst by the identity of dst among
// src's successors.
func Edge(src, dst *Block) EdgeType {
	if src == nil || src.Terminator == nil || len(src.Succs) < 2 {
		return EdgeTypeUnconditional
	}
	if !src.IsTwoWayBranch() {
		return EdgeTypeSwitch
	}
	if src.Succs[0] == dst {
		return EdgeTypeTrue
	}
	return EdgeTypeFalse
}

// CFG is the set of blocks of one function.
type CFG struct {
	FunctionName string            `json:"function_name"`
	Blocks       map[string]*Block `json:"blocks"`
}

// New returns an empty CFG for the named function.
func New(functionName string) *CFG {
	return &CFG{FunctionName: functionName, Blocks: make(map[string]*Block)}
}

// Block returns the block with the given ID, creating it if needed.
func (c *CFG) Block(id string) *Block {
	b, ok := c.Blocks[id]
	if !ok {
		b = &Block{ID: id}
		c.Blocks[id] = b
	}
	return b
}

// AddEdge appends dst to src's successors. Order matters: the first edge
// added to a branch block is its true edge.
func (c *CFG) AddEdge(srcID, dstID string) {
	src := c.Block(srcID)
	src.Succs = append(src.Succs, c.Block(dstID))
}
