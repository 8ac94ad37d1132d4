package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// branchTrace builds: evaluate cond, take the branch (refining the state),
// then hit the defect.
func branchTrace(t *testing.T, cond ast.Expr, tookTrue bool) *world {
	t.Helper()
	w := newWorld(t)
	src, onTrue, onFalse := branch(cond)

	w.post(cond)
	w.constrain("cond", trace.Constraint{Kind: trace.NonZero})
	dst := onFalse
	if tookTrue {
		dst = onTrue
	}
	w.at(trace.BlockEdge{Src: src, Dst: dst}, w.main)
	w.post(ast.NewInt(0))
	return w
}

func conditionTexts(t *testing.T, cond ast.Expr, tookTrue bool) []string {
	t.Helper()
	w := branchTrace(t, cond, tookTrue)
	r := NewReport(w.errorNode(), "defect")
	r.AddVisitor(NewConditionExplainer())
	steps := Run(r)
	return texts(steps[:len(steps)-1])
}

func TestConditionExplainer(t *testing.T) {
	x := &ast.Decl{Name: "x", Kind: ast.DeclParam, Type: ast.IntType}
	y := local("y", ast.IntType)
	p := local("p", intPtr())
	q := local("q", intPtr())
	objPtr := &ast.Type{Kind: ast.TypeObjectPtr, Name: "id"}
	o := local("o", objPtr)
	red := &ast.Decl{Name: "RED", Kind: ast.DeclEnum, Type: ast.IntType}
	f := &ast.Decl{Name: "f", Kind: ast.DeclFunction, Type: ast.IntType}

	ref := ast.NewDeclRef
	lit := ast.NewInt
	bin := ast.NewBinary
	nullOf := func(ty *ast.Type) ast.Expr { return ast.NewImplicitCast(ty, lit(0)) }

	tests := []struct {
		name     string
		cond     ast.Expr
		tookTrue bool
		want     []string
	}{
		{"equal true", bin(ast.OpEQ, ref(x), lit(0)), true, []string{"Assuming 'x' is equal to 0"}},
		{"equal false", bin(ast.OpEQ, ref(x), lit(0)), false, []string{"Assuming 'x' is not equal to 0"}},
		{"mirrored equality", bin(ast.OpEQ, lit(5), ref(x)), true, []string{"Assuming 'x' is equal to 5"}},
		{"mirrored ordering", bin(ast.OpLT, lit(5), ref(x)), true, []string{"Assuming 'x' is > 5"}},
		{"mirrored and negated", bin(ast.OpLE, lit(5), ref(x)), false, []string{"Assuming 'x' is < 5"}},
		{"less than false", bin(ast.OpLT, ref(x), lit(5)), false, []string{"Assuming 'x' is >= 5"}},
		{"two variables", bin(ast.OpGT, ref(x), ref(y)), true, []string{"Assuming 'x' is > 'y'"}},
		{"enum constant", bin(ast.OpNE, ref(x), ref(red)), true, []string{"Assuming 'x' is not equal to RED"}},
		{"parenthesized", ast.NewParen(bin(ast.OpEQ, ast.NewParen(ref(x)), lit(3))), true, []string{"Assuming 'x' is equal to 3"}},
		{"scalar variable", ref(x), true, []string{"Assuming 'x' is not equal to 0"}},
		{"negated scalar", ast.NewUnary(ast.OpLNot, ref(x)), true, []string{"Assuming 'x' is 0"}},
		{"pointer variable", ref(p), true, []string{"Assuming 'p' is non-null"}},
		{"double negation", ast.NewUnary(ast.OpLNot, ast.NewUnary(ast.OpLNot, ref(p))), false, []string{"Assuming 'p' is null"}},
		{"object pointer", ref(o), false, []string{"Assuming 'o' is nil"}},
		{"null literal", bin(ast.OpEQ, ref(p), nullOf(intPtr())), true, []string{"Assuming 'p' is equal to null"}},
		{"nil literal", bin(ast.OpNE, ref(o), nullOf(objPtr)), false, []string{"Assuming 'o' is equal to nil"}},
		{"assignment pointer", ast.NewParen(bin(ast.OpAssign, ref(p), ref(q))), true, []string{"Assuming 'p' is not null"}},
		{"assignment scalar", bin(ast.OpAssign, ref(x), ref(y)), false, []string{"Assuming 'x' is zero"}},
		{"assignment object", bin(ast.OpAssign, ref(o), nullOf(objPtr)), false, []string{"Assuming 'o' is nil"}},
		{"call operand", bin(ast.OpEQ, ast.NewCall(ref(f), ast.IntType), lit(0)), true, nil},
		{"arithmetic false", bin(ast.OpAdd, ref(x), lit(1)), false, nil},
		{"member access", &ast.Member{Base: ast.Base{Ty: ast.IntType}, X: ref(p), Field: "f", Arrow: true}, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conditionTexts(t, tt.cond, tt.tookTrue)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConditionNegationIsInvolutive(t *testing.T) {
	x := &ast.Decl{Name: "x", Kind: ast.DeclParam, Type: ast.IntType}

	first := conditionTexts(t, ast.NewBinary(ast.OpLT, ast.NewDeclRef(x), ast.NewInt(5)), false)
	require.Equal(t, []string{"Assuming 'x' is >= 5"}, first)

	second := conditionTexts(t, ast.NewBinary(ast.OpGE, ast.NewDeclRef(x), ast.NewInt(5)), false)
	assert.Equal(t, []string{"Assuming 'x' is < 5"}, second)

	for _, op := range []ast.Opcode{ast.OpEQ, ast.OpNE, ast.OpLT, ast.OpGT, ast.OpLE, ast.OpGE} {
		neg, ok := op.Negate()
		require.True(t, ok)
		back, ok := neg.Negate()
		require.True(t, ok)
		assert.Equal(t, op, back, op.String())
	}
}

func TestConditionEagerAssumption(t *testing.T) {
	w := newWorld(t)
	p := local("p", intPtr())
	cond := ast.NewDeclRef(p)

	w.post(cond)
	w.constrain("p", trace.Constraint{Kind: trace.EqualTo, Value: 0})
	w.at(trace.PostStmt{Stmt: cond, Tag: trace.TagEagerFalse}, w.main)
	w.post(ast.NewInt(0))

	r := NewReport(w.errorNode(), "defect")
	r.AddVisitor(NewConditionExplainer())
	assert.Equal(t, []string{"Assuming 'p' is null", "defect"}, texts(Run(r)))
}

func TestConditionIgnoresUnrelatedMutation(t *testing.T) {
	w := newWorld(t)
	x := &ast.Decl{Name: "x", Kind: ast.DeclParam, Type: ast.IntType}
	cond := ast.NewBinary(ast.OpEQ, ast.NewDeclRef(x), ast.NewInt(0))
	src, onTrue, _ := branch(cond)

	w.post(cond)
	// Bindings change, the aux root does not.
	w.bind(x, w.main, trace.ConcreteInt{V: 0})
	w.bindExpr(cond, w.main, trace.ConcreteInt{V: 1})
	w.at(trace.BlockEdge{Src: src, Dst: onTrue}, w.main)
	w.at(trace.PostStmt{Stmt: cond, Tag: trace.TagEagerTrue}, w.main)
	w.post(ast.NewInt(0))

	r := NewReport(w.errorNode(), "defect")
	r.AddVisitor(NewConditionExplainer())
	assert.Len(t, Run(r), 1)
}

func TestConditionIgnoresNonBranchEdges(t *testing.T) {
	w := newWorld(t)
	x := &ast.Decl{Name: "x", Kind: ast.DeclParam, Type: ast.IntType}
	cond := ast.NewBinary(ast.OpEQ, ast.NewDeclRef(x), ast.NewInt(0))
	g := newStraightLine()

	w.post(cond)
	w.constrain("c", trace.Constraint{Kind: trace.NonZero})
	w.at(trace.BlockEdge{Src: g[0], Dst: g[1]}, w.main)
	w.post(cond)
	w.constrain("d", trace.Constraint{Kind: trace.NonZero})
	w.at(trace.PostStmt{Stmt: cond}, w.main)

	r := NewReport(w.errorNode(), "defect")
	r.AddVisitor(NewConditionExplainer())
	assert.Len(t, Run(r), 1)
}

func TestConditionIgnoresMultiWayEdges(t *testing.T) {
	w := newWorld(t)
	x := &ast.Decl{Name: "x", Kind: ast.DeclParam, Type: ast.IntType}
	cond := ast.NewBinary(ast.OpEQ, ast.NewDeclRef(x), ast.NewInt(0))
	src, onTrue, _ := branch(cond)
	src.Succs = append(src.Succs, onTrue)

	w.post(cond)
	w.constrain("c", trace.Constraint{Kind: trace.NonZero})
	w.at(trace.BlockEdge{Src: src, Dst: onTrue}, w.main)
	w.post(ast.NewInt(0))

	r := NewReport(w.errorNode(), "defect")
	r.AddVisitor(NewConditionExplainer())
	assert.Len(t, Run(r), 1)
}

func TestConditionInterestingVariableIsKept(t *testing.T) {
	x := &ast.Decl{Name: "x", Kind: ast.DeclParam, Type: ast.IntType}
	cond := ast.NewBinary(ast.OpEQ, ast.NewDeclRef(x), ast.NewInt(0))

	w := branchTrace(t, cond, true)
	r := NewReport(w.errorNode(), "defect")
	r.AddVisitor(NewConditionExplainer())
	r.MarkInterestingRegion(w.regions.Var(x, w.main))

	steps := Run(r)
	require.Len(t, steps, 2)
	assert.False(t, steps[0].Prunable)
	assert.Len(t, Prune(steps), 2)
}

func TestConditionInterestingValueIsKept(t *testing.T) {
	p := local("p", intPtr())
	w := newWorld(t)
	sym := trace.RegionVal{R: w.regions.Symbolic("s1")}
	w.bind(p, w.main, sym)

	src, onTrue, _ := branch(ast.NewDeclRef(p))
	w.post(src.Cond())
	w.constrain("s1", trace.Constraint{Kind: trace.NonZero})
	w.at(trace.BlockEdge{Src: src, Dst: onTrue}, w.main)
	w.post(ast.NewInt(0))

	r := NewReport(w.errorNode(), "defect")
	r.AddVisitor(NewConditionExplainer())
	r.MarkInterestingValue(sym)

	steps := Run(r)
	require.Len(t, steps, 2)
	assert.Equal(t, "Assuming 'p' is non-null", steps[0].Text)
	assert.False(t, steps[0].Prunable)
}
