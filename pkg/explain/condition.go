package explain

import (
	"fmt"

	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/cfg"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// ConditionExplainer describes the branch decisions and eager assumptions
// made along the path. It is evaluated at every edge and is never satisfied.
type ConditionExplainer struct{}

// NewConditionExplainer returns the branch condition explainer.
func NewConditionExplainer() *ConditionExplainer { return &ConditionExplainer{} }

func (*ConditionExplainer) Name() string    { return "condition" }
func (*ConditionExplainer) Satisfied() bool { return false }
func (*ConditionExplainer) key() any        { return conditionKey{} }

func (c *ConditionExplainer) visit(succ, pred *trace.Node, r *Report) *Step {
	// Only transitions in which the core engine refined its state are of
	// interest. The aux root is compared by identity on purpose.
	if succ.State.Aux() == pred.State.Aux() {
		return nil
	}

	switch p := succ.Point.(type) {
	case trace.BlockEdge:
		switch cfg.Edge(p.Src, p.Dst) {
		case cfg.EdgeTypeTrue:
			return explainCondition(p.Src.Cond(), true, succ, r)
		case cfg.EdgeTypeFalse:
			return explainCondition(p.Src.Cond(), false, succ, r)
		}

	case trace.PostStmt:
		cond, ok := p.Stmt.(ast.Expr)
		if !ok {
			return nil
		}
		switch p.Tag {
		case trace.TagEagerTrue:
			return explainCondition(cond, true, succ, r)
		case trace.TagEagerFalse:
			return explainCondition(cond, false, succ, r)
		}
	}
	return nil
}

// explainCondition renders "Assuming ..." for cond evaluated to tookTrue at n.
func explainCondition(cond ast.Expr, tookTrue bool, n *trace.Node, r *Report) *Step {
	if cond == nil {
		return nil
	}

	e := ast.IgnoreParenCasts(cond)
	for {
		u, ok := e.(*ast.UnaryOp)
		if !ok || u.Op != ast.OpLNot {
			break
		}
		tookTrue = !tookTrue
		e = ast.IgnoreParenCasts(u.X)
	}

	switch x := e.(type) {
	case *ast.DeclRef:
		return explainVarCondition(x, tookTrue, n, r)
	case *ast.BinaryOp:
		return explainBinaryCondition(x, tookTrue, n, r)
	}
	return nil
}

func explainVarCondition(dr *ast.DeclRef, tookTrue bool, n *trace.Node, r *Report) *Step {
	d := dr.Decl
	if !d.IsVar() {
		return nil
	}

	var state string
	switch ty := d.Type; {
	case ty.IsObjectPointer():
		state = choose(tookTrue, "non-nil", "nil")
	case ty.IsPointer():
		state = choose(tookTrue, "non-null", "null")
	default:
		state = choose(tookTrue, "not equal to 0", "0")
	}

	return &Step{
		Location: locationOf(n, dr.Range()),
		Text:     fmt.Sprintf("Assuming '%s' is %s", d.Name, state),
		Ranges:   []ast.Range{dr.Range()},
		Prunable: !varIsInteresting(d, n, r),
	}
}

func explainBinaryCondition(bo *ast.BinaryOp, tookTrue bool, n *trace.Node, r *Report) *Step {
	if bo.Op.IsAssignment() {
		return explainAssignCondition(bo, tookTrue, n, r)
	}

	lhs := renderOperand(bo.LHS, n, r)
	rhs := renderOperand(bo.RHS, n, r)
	if lhs.text == "" || rhs.text == "" {
		return nil
	}

	op := bo.Op
	if !lhs.isVar && rhs.isVar {
		lhs, rhs = rhs, lhs
		op = op.Mirror()
	}

	if !tookTrue {
		neg, ok := op.Negate()
		if !ok {
			return nil
		}
		op = neg
	}

	var rel string
	switch op {
	case ast.OpEQ:
		rel = "equal to "
	case ast.OpNE:
		rel = "not equal to "
	default:
		rel = op.String() + " "
	}

	return &Step{
		Location: locationOf(n, bo.Range()),
		Text:     "Assuming " + lhs.text + " is " + rel + rhs.text,
		Ranges:   []ast.Range{bo.Range()},
		Prunable: !(lhs.keep || rhs.keep),
	}
}

// explainAssignCondition explains `if ((x = e))` through the assigned variable.
func explainAssignCondition(bo *ast.BinaryOp, tookTrue bool, n *trace.Node, r *Report) *Step {
	lhs := renderOperand(bo.LHS, n, r)
	if lhs.text == "" {
		return nil
	}

	var state string
	switch ty := bo.LHS.Type(); {
	case ty.IsObjectPointer():
		state = choose(tookTrue, "not nil", "nil")
	case ty.IsAnyPointer():
		state = choose(tookTrue, "not null", "null")
	case ty.IsBool():
		state = choose(tookTrue, "true", "false")
	default:
		state = choose(tookTrue, "non-zero", "zero")
	}

	keep := false
	if d := ast.VarDecl(bo.LHS); d != nil {
		keep = r.IsInterestingRegion(n.State.LValue(d, n.Frame))
	}

	return &Step{
		Location: locationOf(n, bo.Range()),
		Text:     "Assuming " + lhs.text + " is " + state,
		Ranges:   []ast.Range{bo.Range()},
		Prunable: !keep,
	}
}

// operand is the rendering of one side of a comparison.
type operand struct {
	text  string
	isVar bool
	keep  bool // Touches interesting state, so the step must not be pruned
}

func renderOperand(orig ast.Expr, n *trace.Node, r *Report) operand {
	switch x := ast.IgnoreParenCasts(orig).(type) {
	case *ast.DeclRef:
		switch x.Decl.Kind {
		case ast.DeclEnum:
			return operand{text: x.Decl.Name}
		case ast.DeclVar, ast.DeclParam:
			return operand{
				text:  "'" + x.Decl.Name + "'",
				isVar: true,
				keep:  varIsInteresting(x.Decl, n, r),
			}
		}
	case *ast.IntLiteral:
		if x.Value == 0 {
			switch ty := orig.Type(); {
			case ty.IsObjectPointer():
				return operand{text: "nil"}
			case ty.IsPointer():
				return operand{text: "null"}
			}
		}
		return operand{text: fmt.Sprintf("%d", x.Value)}
	}
	return operand{}
}

// varIsInteresting reports whether d's storage at n, or the value it holds,
// was flagged interesting.
func varIsInteresting(d *ast.Decl, n *trace.Node, r *Report) bool {
	reg := n.State.LValue(d, n.Frame)
	if r.IsInterestingRegion(reg) {
		return true
	}
	return r.IsInterestingValue(n.State.Binding(reg))
}

func choose(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
