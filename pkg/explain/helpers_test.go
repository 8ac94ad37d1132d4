package explain

import (
	"testing"

	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/cfg"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// world is a tiny in-memory engine run used to build traces by hand.
type world struct {
	t       *testing.T
	regions *trace.Regions
	main    *trace.Frame
	path    trace.Path
	state   *trace.State
}

func newWorld(t *testing.T) *world {
	t.Helper()
	m := trace.NewRegions()
	return &world{
		t:       t,
		regions: m,
		main:    &trace.Frame{ID: "main", Function: "main"},
		state:   trace.NewState(m),
	}
}

func (w *world) at(pt trace.Point, f *trace.Frame) *trace.Node {
	return w.path.Append(pt, w.state, f)
}

func (w *world) post(s ast.Stmt) *trace.Node { return w.at(trace.PostStmt{Stmt: s}, w.main) }
func (w *world) pre(s ast.Stmt) *trace.Node  { return w.at(trace.PreStmt{Stmt: s}, w.main) }

func (w *world) bind(d *ast.Decl, f *trace.Frame, v trace.Value) {
	w.state = w.state.Bind(w.regions.Var(d, f), v)
}

func (w *world) bindExpr(e ast.Expr, f *trace.Frame, v trace.Value) {
	w.state = w.state.BindExpr(e, f, v)
}

func (w *world) constrain(sym trace.SymbolID, c trace.Constraint) {
	w.state = w.state.Constrain(sym, c)
}

func (w *world) errorNode() *trace.Node { return w.path.Last() }

func intPtr() *ast.Type { return ast.PointerTo(ast.IntType) }

func local(name string, ty *ast.Type) *ast.Decl {
	return &ast.Decl{Name: name, Kind: ast.DeclVar, Type: ty}
}

func line(n int) ast.Range {
	return ast.Range{Start: ast.Pos{Line: n, Column: 1}, End: ast.Pos{Line: n, Column: 10}}
}

// branch returns a two-way block on cond and its true and false successors.
func branch(cond ast.Expr) (*cfg.Block, *cfg.Block, *cfg.Block) {
	g := cfg.New("main")
	g.AddEdge("B1", "B2")
	g.AddEdge("B1", "B3")
	b1 := g.Block("B1")
	b1.Terminator = &ast.IfStmt{Cond: cond}
	return b1, g.Block("B2"), g.Block("B3")
}

func texts(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Text
	}
	return out
}

func visitorStepCount(steps []Step, name string) int {
	n := 0
	for _, s := range steps {
		if s.Visitor == name {
			n++
		}
	}
	return n
}

// newStraightLine returns two blocks joined by an unconditional edge.
func newStraightLine() []*cfg.Block {
	g := cfg.New("main")
	g.AddEdge("B1", "B2")
	return []*cfg.Block{g.Block("B1"), g.Block("B2")}
}
