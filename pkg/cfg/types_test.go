package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l3aro/go-path-explain/pkg/ast"
)

func TestEdgeClassification(t *testing.T) {
	x := &ast.Decl{Name: "x", Kind: ast.DeclVar, Type: ast.IntType}
	g := New("main")
	g.Block("B1").Terminator = &ast.IfStmt{Cond: ast.NewDeclRef(x)}
	g.AddEdge("B1", "B2")
	g.AddEdge("B1", "B3")
	g.AddEdge("B2", "B4")

	b1, b2, b3, b4 := g.Block("B1"), g.Block("B2"), g.Block("B3"), g.Block("B4")

	assert.True(t, b1.IsTwoWayBranch())
	assert.Equal(t, EdgeTypeTrue, Edge(b1, b2))
	assert.Equal(t, EdgeTypeFalse, Edge(b1, b3))
	assert.Equal(t, EdgeTypeUnconditional, Edge(b2, b4))
	assert.Nil(t, b2.Cond())
}

func TestEdgeMultiWay(t *testing.T) {
	g := New("main")
	g.Block("S").Terminator = &ast.ReturnStmt{}
	g.AddEdge("S", "A")
	g.AddEdge("S", "B")
	g.AddEdge("S", "C")

	assert.False(t, g.Block("S").IsTwoWayBranch())
	assert.Equal(t, EdgeTypeSwitch, Edge(g.Block("S"), g.Block("A")))
}
