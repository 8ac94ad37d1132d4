package explain

import (
	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// TrackNullOrUndefValue registers the visitors explaining why s, which the
// caller knows to be null or undefined at n, holds that value. It does
// nothing when the point evaluating s cannot be found.
func TrackNullOrUndefValue(r *Report, n *trace.Node, s ast.Expr) {
	if s == nil {
		return
	}

	n = findEvaluation(n, s)
	if n == nil {
		return
	}
	st := n.State

	if dr, ok := ast.IgnoreParenCasts(s).(*ast.DeclRef); ok && dr.Decl.IsVar() {
		reg := st.LValue(dr.Decl, n.Frame)
		v := st.Binding(reg)

		r.MarkInterestingRegion(reg)
		r.MarkInterestingValue(v)

		r.AddVisitor(NewArgTaint(reg))
		if _, ok := trace.AsLocSymbol(v); ok {
			r.AddVisitor(NewConstraintOrigin(v, false))
		}
		r.AddVisitor(NewStoreOrigin(reg, v))
		return
	}

	v := st.ExprValue(s, n.Frame)
	if reg := trace.AsRegion(v); reg != nil {
		r.AddVisitor(NewArgTaint(reg))

		// An rvalue pointing at symbolic memory is tracked directly. For an
		// lvalue, the pointer stored in it is.
		target := v
		if !isSymbolicRef(target) {
			target = st.Binding(reg)
		}
		if isSymbolicRef(target) {
			r.MarkInterestingRegion(trace.AsRegion(target))
			r.AddVisitor(NewConstraintOrigin(target, false))
		}
		return
	}

	addReturnVisitorIfInlined(r, n, s)
}

// findEvaluation walks back from n to the point that evaluated s, or to the
// exit of s when s is an inlined call.
func findEvaluation(n *trace.Node, s ast.Expr) *trace.Node {
	for ; n != nil; n = n.FirstPred() {
		switch p := n.Point.(type) {
		case trace.PostStmt:
			if p.Stmt == ast.Stmt(s) {
				return n
			}
		case trace.CallExitEnd:
			if p.Callee != nil && p.Callee.CallSite == s {
				return n
			}
		}
	}
	return nil
}

func isSymbolicRef(v trace.Value) bool {
	_, ok := trace.AsRegion(v).(*trace.SymbolicRegion)
	return ok
}
