package explain

import (
	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// ReturnValue explains the value an inlined call returned in frame F.
type ReturnValue struct {
	F         *trace.Frame
	satisfied bool
}

// NewReturnValue returns a visitor explaining the return of frame f.
func NewReturnValue(f *trace.Frame) *ReturnValue {
	return &ReturnValue{F: f}
}

func (*ReturnValue) Name() string      { return "return-value" }
func (v *ReturnValue) Satisfied() bool { return v.satisfied }
func (v *ReturnValue) key() any        { return returnValueKey{frame: v.F} }

func (v *ReturnValue) visit(succ, pred *trace.Node, r *Report) *Step {
	if v.satisfied || succ.Frame != v.F {
		return nil
	}
	ret, ok := trace.StmtOf(succ.Point).(*ast.ReturnStmt)
	if !ok {
		return nil
	}
	if ret.Value == nil {
		panic("explain: tracking a return value for a void function")
	}

	val := succ.State.ExprValue(ret.Value, v.F)
	if trace.IsUnknownOrUndef(val) {
		return nil
	}

	v.satisfied = true

	retE := ast.IgnoreParenCasts(ret.Value)

	var text string
	if isProvablyZero(succ.State, val) {
		TrackNullOrUndefValue(r, succ, retE)

		switch ty := ret.Value.Type(); {
		case ty.IsObjectPointer():
			text = "Returning nil"
		case trace.IsLoc(val) || ty.IsPointer():
			text = "Returning null pointer"
		default:
			text = "Returning zero"
		}
	} else {
		r.MarkInterestingValue(val)
		text = "Value returned here"
	}

	if d := ast.VarDecl(retE); d != nil {
		text += " (loaded from '" + d.Name + "')"
	}

	return &Step{
		Location: locationOf(succ, ret.Range()),
		Text:     text,
	}
}

// isProvablyZero reports whether v can be zero but cannot be non-zero in s.
func isProvablyZero(s trace.Snapshot, v trace.Value) bool {
	_, canBeZero := s.Assume(v, false)
	_, canBeNonZero := s.Assume(v, true)
	return canBeZero && !canBeNonZero
}

// addReturnVisitorIfInlined attaches a ReturnValue visitor when s is a call
// that was inlined. Walking back from n, it first finds the point that
// processed s, then skips the post-statement points that follow the call's
// exit. The call was inlined iff the next point is the exit of s.
func addReturnVisitorIfInlined(r *Report, n *trace.Node, s ast.Expr) {
	if s == nil || !ast.IsCallStmt(s) {
		return
	}

	for ; n != nil; n = n.FirstPred() {
		if processes(n.Point, s) {
			break
		}
	}
	for ; n != nil; n = n.FirstPred() {
		if _, ok := n.Point.(trace.PostStmt); !ok {
			break
		}
	}
	if n == nil {
		return
	}

	if p, ok := n.Point.(trace.CallExitEnd); ok && p.Callee != nil && p.Callee.CallSite == s {
		r.AddVisitor(NewReturnValue(p.Callee))
	}
}

// processes reports whether point p evaluates s or ends the call s.
func processes(p trace.Point, s ast.Expr) bool {
	if ce, ok := p.(trace.CallExitEnd); ok {
		return ce.Callee != nil && ce.Callee.CallSite == s
	}
	return trace.StmtOf(p) == ast.Stmt(s)
}
