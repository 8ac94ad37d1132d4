package explain

import (
	"fmt"

	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// StoreOrigin finds where region R most recently acquired value V.
type StoreOrigin struct {
	R         trace.Region
	V         trace.Value
	satisfied bool
}

// NewStoreOrigin returns a visitor locating the store of v into r.
func NewStoreOrigin(r trace.Region, v trace.Value) *StoreOrigin {
	return &StoreOrigin{R: r, V: v}
}

func (*StoreOrigin) Name() string      { return "store-origin" }
func (s *StoreOrigin) Satisfied() bool { return s.satisfied }
func (s *StoreOrigin) key() any        { return storeOriginKey{region: s.R, value: s.V} }

func (s *StoreOrigin) visit(succ, pred *trace.Node, r *Report) *Step {
	if s.satisfied {
		return nil
	}

	var (
		storeSite *trace.Node
		initE     ast.Expr
	)

	if d := s.declaredAt(pred); d != nil {
		storeSite, initE = pred, d.Init
	} else {
		if succ.State.Binding(s.R) != s.V || pred.State.Binding(s.R) == s.V {
			return nil
		}
		storeSite = succ
		if ps, ok := succ.Point.(trace.PostStmt); ok {
			if bo, ok := ps.Stmt.(*ast.BinaryOp); ok && bo.Op.IsAssignment() {
				initE = bo.RHS
			}
		}
		if d := s.declaredAt(succ); d != nil {
			initE = d.Init
		}
	}

	s.satisfied = true

	if initE != nil {
		addReturnVisitorIfInlined(r, storeSite, ast.IgnoreParenCasts(initE))
	}

	vr, ok := s.R.(*trace.VarRegion)
	if !ok {
		return nil
	}

	var text string
	if d := s.declaredAt(storeSite); d != nil {
		text = fmt.Sprintf("Variable '%s' %s", vr.Decl.Name, declMessage(vr, s.V, d.Init != nil))
	} else {
		text = assignMessage(vr, s.V) + "'" + vr.Decl.Name + "'"
	}

	return &Step{
		Location: locationOf(storeSite, storeSite.Range()),
		Text:     text,
	}
}

// declaredAt returns the declaration of R when n is its declaration point.
func (s *StoreOrigin) declaredAt(n *trace.Node) *ast.Decl {
	vr, ok := s.R.(*trace.VarRegion)
	if !ok {
		return nil
	}
	ps, ok := n.Point.(trace.PostStmt)
	if !ok {
		return nil
	}
	ds, ok := ps.Stmt.(*ast.DeclStmt)
	if !ok {
		return nil
	}
	if d := ds.SingleDecl(); d == vr.Decl && (vr.Frame == nil || n.Frame == vr.Frame) {
		return d
	}
	return nil
}

func declMessage(vr *trace.VarRegion, v trace.Value, hasInit bool) string {
	switch x := v.(type) {
	case trace.ConcreteLoc:
		if x.Addr == 0 {
			if vr.Decl.Type.IsObjectPointer() {
				return "initialized to nil"
			}
			return "initialized to a null pointer value"
		}
	case trace.ConcreteInt:
		return fmt.Sprintf("initialized to %d", x.V)
	case trace.Undefined:
		if hasInit {
			return "initialized to a garbage value"
		}
		return "declared without an initial value"
	}
	return "initialized here"
}

func assignMessage(vr *trace.VarRegion, v trace.Value) string {
	switch x := v.(type) {
	case trace.ConcreteLoc:
		if x.Addr == 0 {
			if vr.Decl.Type.IsObjectPointer() {
				return "nil object reference stored to "
			}
			return "Null pointer value stored to "
		}
	case trace.ConcreteInt:
		return fmt.Sprintf("The value %d is assigned to ", x.V)
	case trace.Undefined:
		return "Uninitialized value stored to "
	}
	return "Value assigned to "
}
