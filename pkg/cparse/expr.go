package cparse

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/go-path-explain/pkg/ast"
)

func (b *builder) expr(n *sitter.Node) (ast.Expr, error) {
	e, err := b.rawExpr(n)
	if err != nil {
		return nil, err
	}
	return ast.WithRange(e, b.rng(n)), nil
}

func (b *builder) rawExpr(n *sitter.Node) (ast.Expr, error) {
	switch n.Type() {
	case "identifier":
		return b.identifier(n)

	case "null":
		return nullPointer(), nil

	case "number_literal":
		return b.number(n)

	case "char_literal":
		return b.char(n)

	case "true", "false":
		v := int64(0)
		if n.Type() == "true" {
			v = 1
		}
		return &ast.IntLiteral{Base: ast.Base{Ty: ast.BoolType}, Value: v}, nil

	case "parenthesized_expression":
		if n.NamedChildCount() == 0 {
			return nil, fmt.Errorf("%w: empty parentheses", ErrSyntax)
		}
		x, err := b.expr(n.NamedChild(0))
		if err != nil {
			return nil, err
		}
		return ast.NewParen(x), nil

	case "binary_expression", "assignment_expression":
		return b.binary(n)

	case "comma_expression":
		lhs, err := b.expr(n.ChildByFieldName("left"))
		if err != nil {
			return nil, err
		}
		rhs, err := b.expr(n.ChildByFieldName("right"))
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(ast.OpComma, lhs, rhs), nil

	case "unary_expression", "pointer_expression":
		return b.unary(n)

	case "update_expression":
		return b.update(n)

	case "cast_expression":
		ty, err := b.typeDescriptor(n.ChildByFieldName("type"))
		if err != nil {
			return nil, err
		}
		x, err := b.expr(n.ChildByFieldName("value"))
		if err != nil {
			return nil, err
		}
		return ast.NewCast(ty, x), nil

	case "call_expression":
		return b.call(n)

	case "field_expression":
		x, err := b.expr(n.ChildByFieldName("argument"))
		if err != nil {
			return nil, err
		}
		field := b.text(n.ChildByFieldName("field"))
		ty := b.p.fieldTypes[field]
		if ty == nil {
			ty = &ast.Type{Kind: ast.TypeOther}
		}
		arrow := b.text(n.ChildByFieldName("operator")) == "->"
		return &ast.Member{Base: ast.Base{Ty: ty}, X: x, Field: field, Arrow: arrow}, nil

	case "subscript_expression":
		x, err := b.expr(n.ChildByFieldName("argument"))
		if err != nil {
			return nil, err
		}
		idx, err := b.expr(n.ChildByFieldName("index"))
		if err != nil {
			return nil, err
		}
		ty := &ast.Type{Kind: ast.TypeOther}
		if pt := x.Type(); pt != nil && pt.Pointee != nil {
			ty = pt.Pointee
		}
		return &ast.ArraySubscript{Base: ast.Base{Ty: ty}, X: x, Index: idx}, nil

	case "conditional_expression":
		cond, err := b.expr(n.ChildByFieldName("condition"))
		if err != nil {
			return nil, err
		}
		then, err := b.expr(n.ChildByFieldName("consequence"))
		if err != nil {
			return nil, err
		}
		els, err := b.expr(n.ChildByFieldName("alternative"))
		if err != nil {
			return nil, err
		}
		return &ast.Conditional{Base: ast.Base{Ty: then.Type()}, Cond: cond, Then: then, Else: els}, nil
	}
	return nil, fmt.Errorf("%w: expression %s", ErrUnsupported, n.Type())
}

// nullPointer is `NULL`: the literal 0 cast to `void *`.
func nullPointer() ast.Expr {
	return ast.NewCast(ast.PointerTo(ast.VoidType), ast.NewInt(0))
}

func (b *builder) identifier(n *sitter.Node) (ast.Expr, error) {
	name := b.text(n)
	if d := b.p.scope.Lookup(name); d != nil {
		return ast.NewDeclRef(d), nil
	}
	switch name {
	case "NULL", "nil", "Nil":
		return nullPointer(), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUndeclared, name)
}

func (b *builder) number(n *sitter.Node) (ast.Expr, error) {
	text := strings.TrimRight(strings.ToLower(b.text(n)), "ul")
	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: number literal %q", ErrUnsupported, b.text(n))
	}
	return ast.NewInt(v), nil
}

func (b *builder) char(n *sitter.Node) (ast.Expr, error) {
	s, err := strconv.Unquote(b.text(n))
	if err != nil || len(s) == 0 {
		return nil, fmt.Errorf("%w: character literal %s", ErrUnsupported, b.text(n))
	}
	return ast.NewInt(int64(s[0])), nil
}

func (b *builder) binary(n *sitter.Node) (ast.Expr, error) {
	opText := b.text(n.ChildByFieldName("operator"))
	op, ok := ast.BinaryOpcode(opText)
	if !ok {
		return nil, fmt.Errorf("%w: operator %q", ErrUnsupported, opText)
	}

	lhs, err := b.expr(n.ChildByFieldName("left"))
	if err != nil {
		return nil, err
	}
	rhs, err := b.expr(n.ChildByFieldName("right"))
	if err != nil {
		return nil, err
	}

	// Null pointer constants compared with or assigned to pointers.
	if op.IsComparison() || op.IsAssignment() {
		rhs = convertNull(lhs.Type(), rhs)
		if !op.IsAssignment() {
			lhs = convertNull(rhs.Type(), lhs)
		}
	}
	return ast.NewBinary(op, lhs, rhs), nil
}

var unaryOps = map[string]ast.Opcode{
	"!": ast.OpLNot,
	"~": ast.OpNot,
	"-": ast.OpMinus,
	"+": ast.OpPlus,
	"*": ast.OpDeref,
	"&": ast.OpAddrOf,
}

func (b *builder) unary(n *sitter.Node) (ast.Expr, error) {
	opText := b.text(n.ChildByFieldName("operator"))
	op, ok := unaryOps[opText]
	if !ok {
		return nil, fmt.Errorf("%w: unary operator %q", ErrUnsupported, opText)
	}
	x, err := b.expr(n.ChildByFieldName("argument"))
	if err != nil {
		return nil, err
	}
	return ast.NewUnary(op, x), nil
}

func (b *builder) update(n *sitter.Node) (ast.Expr, error) {
	arg := n.ChildByFieldName("argument")
	x, err := b.expr(arg)
	if err != nil {
		return nil, err
	}
	prefix := n.StartByte() < arg.StartByte()
	inc := b.text(n.ChildByFieldName("operator")) == "++"

	var op ast.Opcode
	switch {
	case prefix && inc:
		op = ast.OpPreInc
	case prefix:
		op = ast.OpPreDec
	case inc:
		op = ast.OpPostInc
	default:
		op = ast.OpPostDec
	}
	return ast.NewUnary(op, x), nil
}

func (b *builder) call(n *sitter.Node) (ast.Expr, error) {
	fn := n.ChildByFieldName("function")
	argList := n.ChildByFieldName("arguments")

	var argNodes []*sitter.Node
	if argList != nil {
		for i := 0; i < int(argList.NamedChildCount()); i++ {
			argNodes = append(argNodes, argList.NamedChild(i))
		}
	}

	if fn.Type() == "identifier" && b.text(fn) == msgSendFunc {
		return b.message(argNodes)
	}

	callee, err := b.expr(fn)
	if err != nil {
		return nil, err
	}

	var params []*ast.Decl
	ret := &ast.Type{Kind: ast.TypeOther}
	if dr, ok := callee.(*ast.DeclRef); ok && dr.Decl.Kind == ast.DeclFunction {
		ret = dr.Decl.Type
		params = dr.Decl.Params
	}

	args := make([]ast.Expr, 0, len(argNodes))
	for i, an := range argNodes {
		a, err := b.expr(an)
		if err != nil {
			return nil, err
		}
		if i < len(params) {
			a = convertNull(params[i].Type, a)
		}
		args = append(args, a)
	}
	return ast.NewCall(callee, ret, args...), nil
}

// message parses objc_msgSend(receiver, "selector", args...).
func (b *builder) message(argNodes []*sitter.Node) (ast.Expr, error) {
	if len(argNodes) < 2 || argNodes[1].Type() != "string_literal" {
		return nil, fmt.Errorf("%w: %s needs a receiver and a selector string", ErrSyntax, msgSendFunc)
	}

	recv, err := b.expr(argNodes[0])
	if err != nil {
		return nil, err
	}
	sel, err := strconv.Unquote(b.text(argNodes[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: selector %s", ErrSyntax, b.text(argNodes[1]))
	}

	var args []ast.Expr
	for _, an := range argNodes[2:] {
		a, err := b.expr(an)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return &ast.Message{
		Base:     ast.Base{Ty: &ast.Type{Kind: ast.TypeObjectPtr, Name: "id"}},
		Receiver: recv,
		Selector: sel,
		Args:     args,
	}, nil
}
