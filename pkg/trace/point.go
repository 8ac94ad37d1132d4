// Package trace models the output of the symbolic execution engine that the
// path explainer consumes: trace nodes, their program points and immutable
// state snapshots. It also provides an in-memory engine state used by fixtures
// and tests.
package trace

import (
	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/cfg"
)

// Tag marks post-statement points generated for a special purpose.
type Tag int

const (
	TagNone       Tag = iota
	TagEagerTrue      // Branch of an eagerly bifurcated condition where it held
	TagEagerFalse     // Branch of an eagerly bifurcated condition where it failed
	TagChecker        // Bookkeeping added by a checker rather than the core engine
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagEagerTrue:
		return "eager-true"
	case TagEagerFalse:
		return "eager-false"
	case TagChecker:
		return "checker"
	}
	return "unknown"
}

// Point is the program point of a trace node.
type Point interface {
	isPoint()
}

// PostStmt is the point right after Stmt was evaluated.
type PostStmt struct {
	Stmt ast.Stmt
	Tag  Tag
}

// PreStmt is the point right before Stmt is evaluated.
type PreStmt struct {
	Stmt ast.Stmt
}

// BlockEdge is the transition from Src to Dst.
type BlockEdge struct {
	Src *cfg.Block
	Dst *cfg.Block
}

// CallEnter is the entry into an inlined callee.
type CallEnter struct {
	Callee *Frame
	Call   *CallEvent
}

// CallExitEnd is the return from an inlined callee back to its caller.
type CallExitEnd struct {
	Callee *Frame
}

func (PostStmt) isPoint()    {}
func (PreStmt) isPoint()     {}
func (BlockEdge) isPoint()   {}
func (CallEnter) isPoint()   {}
func (CallExitEnd) isPoint() {}

// StmtOf returns the statement of a pre- or post-statement point.
func StmtOf(p Point) ast.Stmt {
	switch x := p.(type) {
	case PostStmt:
		return x.Stmt
	case PreStmt:
		return x.Stmt
	}
	return nil
}

// Frame is a call frame (stack frame) of the analysed program.
type Frame struct {
	ID       string
	Function string
	CallSite ast.Expr // Call expression that created the frame, nil for the top frame
	Parent   *Frame
}

// CallEvent describes a call at a call-enter point.
type CallEvent struct {
	Params []*ast.Decl // Formal parameters of the callee
	Args   []Value     // Actual argument values, parallel to Params
}

// ArgRegion returns the region the i-th argument points to, if any.
func (c *CallEvent) ArgRegion(i int) Region {
	if i >= len(c.Args) {
		return nil
	}
	return AsRegion(c.Args[i])
}
