package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented dump of the tree rooted at n, one node per line:
//
//	BinaryOp = int 1:1-1:6
//	  DeclRef x int 1:1-1:2
//	  IntLiteral 0 int 1:5-1:6
func Fprint(w io.Writer, n Node) error {
	p := printer{w: w}
	p.node(n, 0)
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (p *printer) node(n Node, depth int) {
	if n == nil {
		p.line(depth, "<nil>")
		return
	}
	rng := formatRange(n.Range())

	switch x := n.(type) {
	case *DeclStmt:
		p.line(depth, "DeclStmt %s", rng)
		for _, d := range x.Decls {
			p.line(depth+1, "Decl %s %s %s", d.Kind, d.Name, d.Type)
			if d.Init != nil {
				p.node(d.Init, depth+2)
			}
		}
		return
	case *ReturnStmt:
		p.line(depth, "ReturnStmt %s", rng)
	case *IfStmt:
		p.line(depth, "IfStmt %s", rng)
	case Expr:
		p.line(depth, "%s %s %s", exprLabel(x), x.Type(), rng)
	}
	for _, c := range Children(n) {
		p.node(c, depth+1)
	}
}

func exprLabel(e Expr) string {
	switch x := e.(type) {
	case *DeclRef:
		if x.Decl == nil {
			return "DeclRef <nil>"
		}
		return "DeclRef " + x.Decl.Name
	case *IntLiteral:
		return fmt.Sprintf("IntLiteral %d", x.Value)
	case *BinaryOp:
		return "BinaryOp " + x.Op.String()
	case *UnaryOp:
		return "UnaryOp " + x.Op.String()
	case *Paren:
		return "Paren"
	case *Cast:
		if x.Implicit {
			return "ImplicitCast"
		}
		return "Cast"
	case *Call:
		return "Call"
	case *Member:
		if x.Arrow {
			return "Member ->" + x.Field
		}
		return "Member ." + x.Field
	case *ArraySubscript:
		return "ArraySubscript"
	case *Conditional:
		return "Conditional"
	case *Message:
		return "Message " + x.Selector
	}
	return fmt.Sprintf("%T", e)
}

func formatRange(r Range) string {
	if !r.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Column, r.End.Line, r.End.Column)
}
