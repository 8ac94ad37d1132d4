package explain

import (
	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// DerefExpr returns the pointer expression dereferenced by the statement at
// n: the base of `p->f`, `*p` or `a[i]`, looking through the left side of an
// assignment. It returns nil when the statement dereferences nothing.
func DerefExpr(n *trace.Node) ast.Expr {
	e, ok := trace.StmtOf(n.Point).(ast.Expr)
	if !ok {
		return nil
	}
	e = ast.IgnoreParenCasts(e)
	if bo, ok := e.(*ast.BinaryOp); ok && bo.Op.IsAssignment() {
		e = ast.IgnoreParenCasts(bo.LHS)
	}

	switch x := e.(type) {
	case *ast.UnaryOp:
		if x.Op == ast.OpDeref {
			return x.X
		}
	case *ast.Member:
		if x.Arrow {
			return x.X
		}
	case *ast.ArraySubscript:
		return x.X
	}
	return nil
}

// DenomExpr returns the divisor of the division or remainder evaluated at n.
func DenomExpr(n *trace.Node) ast.Expr {
	bo, ok := trace.StmtOf(n.Point).(*ast.BinaryOp)
	if !ok {
		return nil
	}
	switch bo.Op {
	case ast.OpDiv, ast.OpRem, ast.OpDivAssign, ast.OpRemAssign:
		return bo.RHS
	}
	return nil
}

// RetValExpr returns the value expression of the return statement at n.
func RetValExpr(n *trace.Node) ast.Expr {
	if ret, ok := trace.StmtOf(n.Point).(*ast.ReturnStmt); ok {
		return ret.Value
	}
	return nil
}

// RegisterStatementVarDecls registers a store-origin visitor for every
// variable referenced under s whose value at the error node is concrete.
func RegisterStatementVarDecls(r *Report, s ast.Stmt) {
	n := r.errorNode
	if n == nil || s == nil {
		return
	}
	ast.Inspect(s, func(node ast.Node) bool {
		dr, ok := node.(*ast.DeclRef)
		if !ok || !dr.Decl.IsVar() {
			return true
		}
		reg := n.State.LValue(dr.Decl, n.Frame)
		switch v := n.State.Binding(reg); v.(type) {
		case trace.ConcreteInt, trace.ConcreteLoc:
			r.AddVisitor(NewStoreOrigin(reg, v))
		}
		return true
	})
}

// FindLastStoreFor returns a store-origin visitor for the value reg holds at
// n, or nil when that value is unknown.
func FindLastStoreFor(n *trace.Node, reg trace.Region) *StoreOrigin {
	v := n.State.Binding(reg)
	if _, ok := v.(trace.Unknown); ok || v == nil {
		return nil
	}
	return NewStoreOrigin(reg, v)
}
