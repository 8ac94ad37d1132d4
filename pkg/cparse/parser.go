// Package cparse turns C source snippets into the syntax shapes of package
// ast, using the tree-sitter C grammar. It understands declarations, return
// statements, if conditions and expression statements: enough to describe
// the statements of a trace fixture.
package cparse

import (
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/l3aro/go-path-explain/pkg/ast"
)

var (
	// ErrSyntax is returned when tree-sitter reports a parse error.
	ErrSyntax = errors.New("syntax error")

	// ErrUnsupported is returned for constructs outside the modelled subset.
	ErrUnsupported = errors.New("unsupported construct")

	// ErrUndeclared is returned for identifiers missing from the scope.
	ErrUndeclared = errors.New("undeclared identifier")
)

// msgSendFunc is the runtime entry point object message sends lower to.
// Calls to it are parsed as message sends.
const msgSendFunc = "objc_msgSend"

// Scope maps names to declarations. Scopes nest; lookups fall back to the parent.
type Scope struct {
	decls  map[string]*ast.Decl
	parent *Scope
}

// NewScope returns an empty scope nested in parent, which may be nil.
func NewScope(parent *Scope) *Scope {
	return &Scope{decls: make(map[string]*ast.Decl), parent: parent}
}

// Declare adds d to the scope, shadowing any outer declaration of the same name.
func (s *Scope) Declare(d *ast.Decl) {
	s.decls[d.Name] = d
}

// Lookup resolves name, or returns nil.
func (s *Scope) Lookup(name string) *ast.Decl {
	for sc := s; sc != nil; sc = sc.parent {
		if d, ok := sc.decls[name]; ok {
			return d
		}
	}
	return nil
}

// Options configures a Parser.
type Options struct {
	// ObjectTypes names the classes whose pointers are object pointers,
	// e.g. "NSString" for `NSString *`. `id` is always an object pointer.
	ObjectTypes []string

	// FieldTypes gives the type of struct fields by name. Unknown fields
	// are typed as "other".
	FieldTypes map[string]*ast.Type
}

// Parser parses snippets against a scope.
type Parser struct {
	scope       *Scope
	objectTypes map[string]bool
	fieldTypes  map[string]*ast.Type

	// ReturnType is the result type of the enclosing function, used to
	// convert `return 0;` into a null pointer where needed.
	ReturnType *ast.Type

	// Line is the source line the next snippet starts on. Defaults to 1.
	Line int
}

// New returns a parser resolving names in scope.
func New(scope *Scope, opts Options) *Parser {
	if scope == nil {
		scope = NewScope(nil)
	}
	p := &Parser{
		scope:       scope,
		objectTypes: make(map[string]bool),
		fieldTypes:  opts.FieldTypes,
		Line:        1,
	}
	for _, t := range opts.ObjectTypes {
		p.objectTypes[t] = true
	}
	return p
}

// Scope returns the parser's current scope.
func (p *Parser) Scope() *Scope { return p.scope }

// snippet is a parsed piece of source together with its bytes.
type snippet struct {
	tree    *sitter.Tree
	content []byte
	rowBase int // Row of the first snippet line in the wrapped source
}

const bodyPrefix = "void __snippet(void) {\n"

func parseSource(src string, rowBase int) (*snippet, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())
	content := []byte(src)
	tree := parser.Parse(nil, content)
	if tree == nil {
		return nil, fmt.Errorf("parsing snippet: %w", ErrSyntax)
	}
	if tree.RootNode().HasError() {
		tree.Close()
		return nil, fmt.Errorf("%w in %q", ErrSyntax, strings.TrimSpace(src))
	}
	return &snippet{tree: tree, content: content, rowBase: rowBase}, nil
}

// ParseStmt parses one statement: a declaration, a return statement, an if
// header (its condition becomes the statement) or an expression statement.
// A trailing semicolon is optional. Declared names enter the parser's scope.
func (p *Parser) ParseStmt(src string) (ast.Stmt, error) {
	body := strings.TrimSpace(src)
	if !strings.HasSuffix(body, ";") && !strings.HasSuffix(body, "}") {
		body += ";"
	}

	sn, err := parseSource(bodyPrefix+body+"\n}\n", 1)
	if err != nil {
		return nil, err
	}
	defer sn.tree.Close()

	block := findBlock(sn.tree.RootNode())
	if block == nil || block.NamedChildCount() == 0 {
		return nil, fmt.Errorf("%w: empty statement %q", ErrSyntax, src)
	}

	b := &builder{p: p, sn: sn}
	return b.stmt(block.NamedChild(0))
}

// ParseExpr parses a single expression.
func (p *Parser) ParseExpr(src string) (ast.Expr, error) {
	s, err := p.ParseStmt(strings.TrimSuffix(strings.TrimSpace(src), ";"))
	if err != nil {
		return nil, err
	}
	e, ok := s.(ast.Expr)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an expression", ErrUnsupported, src)
	}
	return e, nil
}

// ParseDecl parses a declaration such as "int *p", "const char *s" or
// "int *foo(int **out)" and declares it in the parser's scope with the given
// kind. Function declarations always get kind DeclFunction.
func (p *Parser) ParseDecl(src string, kind ast.DeclKind) (*ast.Decl, error) {
	body := strings.TrimSuffix(strings.TrimSpace(src), ";") + ";"
	sn, err := parseSource(body, 0)
	if err != nil {
		return nil, err
	}
	defer sn.tree.Close()

	root := sn.tree.RootNode()
	if root.NamedChildCount() == 0 || root.NamedChild(0).Type() != "declaration" {
		return nil, fmt.Errorf("%w: %q is not a declaration", ErrSyntax, src)
	}

	b := &builder{p: p, sn: sn}
	decls, err := b.declaration(root.NamedChild(0), kind)
	if err != nil {
		return nil, err
	}
	if len(decls) != 1 {
		return nil, fmt.Errorf("%w: %q must declare exactly one name", ErrUnsupported, src)
	}
	return decls[0], nil
}

// DeclareEnum adds an enumerator constant, rendered by name in explanations.
func (p *Parser) DeclareEnum(name string) *ast.Decl {
	d := &ast.Decl{Name: name, Kind: ast.DeclEnum, Type: ast.IntType}
	p.scope.Declare(d)
	return d
}

func findBlock(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "compound_statement" {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if result := findBlock(node.Child(i)); result != nil {
			return result
		}
	}
	return nil
}

// builder converts one snippet's tree-sitter nodes.
type builder struct {
	p  *Parser
	sn *snippet
}

func (b *builder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if start >= uint32(len(b.sn.content)) || end > uint32(len(b.sn.content)) {
		return ""
	}
	return string(b.sn.content[start:end])
}

func (b *builder) pos(pt sitter.Point) ast.Pos {
	return ast.Pos{
		Line:   int(pt.Row) - b.sn.rowBase + b.p.Line,
		Column: int(pt.Column) + 1,
	}
}

func (b *builder) rng(n *sitter.Node) ast.Range {
	return ast.Range{Start: b.pos(n.StartPoint()), End: b.pos(n.EndPoint())}
}

func (b *builder) stmt(n *sitter.Node) (ast.Stmt, error) {
	switch n.Type() {
	case "declaration":
		decls, err := b.declaration(n, ast.DeclVar)
		if err != nil {
			return nil, err
		}
		return &ast.DeclStmt{Decls: decls, Rng: b.rng(n)}, nil

	case "return_statement":
		ret := &ast.ReturnStmt{Rng: b.rng(n)}
		if n.NamedChildCount() > 0 {
			v, err := b.expr(n.NamedChild(0))
			if err != nil {
				return nil, err
			}
			ret.Value = convertNull(b.p.ReturnType, v)
		}
		return ret, nil

	case "if_statement":
		cond := n.ChildByFieldName("condition")
		if cond == nil {
			return nil, fmt.Errorf("%w: if without condition", ErrSyntax)
		}
		// The parentheses belong to the if statement, not to the condition.
		if cond.Type() == "parenthesized_expression" && cond.NamedChildCount() > 0 {
			cond = cond.NamedChild(0)
		}
		e, err := b.expr(cond)
		if err != nil {
			return nil, err
		}
		return &ast.IfStmt{Cond: e, Rng: b.rng(n)}, nil

	case "expression_statement":
		if n.NamedChildCount() == 0 {
			return nil, fmt.Errorf("%w: empty expression statement", ErrSyntax)
		}
		return b.expr(n.NamedChild(0))
	}
	return nil, fmt.Errorf("%w: statement %s", ErrUnsupported, n.Type())
}

// convertNull wraps a literal zero in an implicit conversion to pointer type
// ty, the way a compiler does for `p = 0` or `return 0`.
func convertNull(ty *ast.Type, e ast.Expr) ast.Expr {
	if !ty.IsAnyPointer() || e.Type().IsAnyPointer() {
		return e
	}
	if lit, ok := ast.IgnoreParenCasts(e).(*ast.IntLiteral); ok && lit.Value == 0 {
		return ast.NewImplicitCast(ty, e)
	}
	return e
}
