package trace

import (
	"github.com/l3aro/go-path-explain/pkg/ast"
)

// Node is one trace node: a program point, the state there and the frame it
// executes in. Preds lists all predecessors; FirstPred is the one the report
// walk follows.
type Node struct {
	ID    int
	Point Point
	State Snapshot
	Frame *Frame
	Preds []*Node
}

// FirstPred returns the predecessor selected by the engine, or nil at the root.
func (n *Node) FirstPred() *Node {
	if n == nil || len(n.Preds) == 0 {
		return nil
	}
	return n.Preds[0]
}

// Range returns the source range the node's point refers to.
func (n *Node) Range() ast.Range {
	switch p := n.Point.(type) {
	case PostStmt:
		return p.Stmt.Range()
	case PreStmt:
		return p.Stmt.Range()
	case BlockEdge:
		if c := p.Src.Cond(); c != nil {
			return c.Range()
		}
	case CallEnter:
		if p.Callee.CallSite != nil {
			return p.Callee.CallSite.Range()
		}
	case CallExitEnd:
		if p.Callee.CallSite != nil {
			return p.Callee.CallSite.Range()
		}
	}
	return ast.Range{}
}

// Path is a linear trace under construction, root first.
type Path struct {
	nodes []*Node
}

// Append adds a node whose first predecessor is the current last node.
func (p *Path) Append(pt Point, st Snapshot, f *Frame) *Node {
	n := &Node{ID: len(p.nodes) + 1, Point: pt, State: st, Frame: f}
	if len(p.nodes) > 0 {
		n.Preds = []*Node{p.nodes[len(p.nodes)-1]}
	}
	p.nodes = append(p.nodes, n)
	return n
}

// Last returns the most recently appended node: the error node once the path is complete.
func (p *Path) Last() *Node {
	if len(p.nodes) == 0 {
		return nil
	}
	return p.nodes[len(p.nodes)-1]
}

// Nodes returns the nodes root first.
func (p *Path) Nodes() []*Node {
	return p.nodes
}
