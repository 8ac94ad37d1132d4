package cparse

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/go-path-explain/pkg/ast"
)

// declaration converts a declaration node into one Decl per declarator and
// declares each of them.
func (b *builder) declaration(n *sitter.Node, kind ast.DeclKind) ([]*ast.Decl, error) {
	base, err := b.baseType(n)
	if err != nil {
		return nil, err
	}

	var decls []*ast.Decl
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if !declaratorTypes[child.Type()] {
			continue
		}
		d, err := b.declarator(child, base, kind)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	if len(decls) == 0 {
		return nil, fmt.Errorf("%w: declaration without a name", ErrUnsupported)
	}
	return decls, nil
}

var declaratorTypes = map[string]bool{
	"identifier":          true,
	"init_declarator":     true,
	"pointer_declarator":  true,
	"function_declarator": true,
	"array_declarator":    true,
}

// baseType resolves the type specifier and qualifiers of a declaration or
// parameter declaration.
func (b *builder) baseType(n *sitter.Node) (*ast.Type, error) {
	spec := n.ChildByFieldName("type")
	if spec == nil {
		return nil, fmt.Errorf("%w: missing type", ErrSyntax)
	}
	ty, err := b.specifier(spec)
	if err != nil {
		return nil, err
	}
	if hasQualifier(n, "const", b) {
		cp := *ty
		cp.Const = true
		ty = &cp
	}
	return ty, nil
}

func hasQualifier(n *sitter.Node, q string, b *builder) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "type_qualifier" && b.text(child) == q {
			return true
		}
	}
	return false
}

func (b *builder) specifier(spec *sitter.Node) (*ast.Type, error) {
	name := b.text(spec)
	switch spec.Type() {
	case "primitive_type":
		switch name {
		case "void":
			return ast.VoidType, nil
		case "_Bool", "bool":
			return &ast.Type{Kind: ast.TypeBool, Name: name}, nil
		case "float", "double":
			return &ast.Type{Kind: ast.TypeFloat, Name: name}, nil
		}
		return &ast.Type{Kind: ast.TypeInt, Name: name}, nil
	case "sized_type_specifier", "enum_specifier":
		return &ast.Type{Kind: ast.TypeInt, Name: name}, nil
	case "struct_specifier", "union_specifier":
		return &ast.Type{Kind: ast.TypeOther, Name: name}, nil
	case "type_identifier":
		if name == "id" {
			return &ast.Type{Kind: ast.TypeObjectPtr, Name: name}, nil
		}
		if name == "bool" {
			return &ast.Type{Kind: ast.TypeBool, Name: name}, nil
		}
		return &ast.Type{Kind: ast.TypeOther, Name: name}, nil
	}
	return nil, fmt.Errorf("%w: type %s", ErrUnsupported, spec.Type())
}

// declarator unwraps pointer, function and init declarators down to the
// declared identifier.
func (b *builder) declarator(n *sitter.Node, ty *ast.Type, kind ast.DeclKind) (*ast.Decl, error) {
	var (
		init   *sitter.Node
		params *sitter.Node
	)

	for n != nil {
		switch n.Type() {
		case "init_declarator":
			init = n.ChildByFieldName("value")
			n = n.ChildByFieldName("declarator")

		case "pointer_declarator":
			ty = b.pointerTo(ty)
			if hasQualifier(n, "const", b) {
				ty.Const = true
			}
			n = n.ChildByFieldName("declarator")

		case "function_declarator":
			params = n.ChildByFieldName("parameters")
			kind = ast.DeclFunction
			n = n.ChildByFieldName("declarator")

		case "array_declarator":
			ty = &ast.Type{Kind: ast.TypeOther, Pointee: ty, Name: ty.String() + " []"}
			n = n.ChildByFieldName("declarator")

		case "identifier", "field_identifier":
			d := &ast.Decl{
				Name: b.text(n),
				Kind: kind,
				Type: ty,
				Pos:  b.pos(n.StartPoint()),
			}
			if params != nil {
				ps, err := b.parameters(params)
				if err != nil {
					return nil, err
				}
				d.Params = ps
			}
			b.p.scope.Declare(d)

			if init != nil {
				e, err := b.expr(init)
				if err != nil {
					return nil, err
				}
				d.Init = convertNull(ty, e)
			}
			return d, nil

		default:
			return nil, fmt.Errorf("%w: declarator %s", ErrUnsupported, n.Type())
		}
	}
	return nil, fmt.Errorf("%w: abstract declarator", ErrUnsupported)
}

// pointerTo returns a pointer to ty. Pointers to classes are object pointers.
func (b *builder) pointerTo(ty *ast.Type) *ast.Type {
	if ty.Kind == ast.TypeOther && b.p.objectTypes[ty.Name] {
		return &ast.Type{Kind: ast.TypeObjectPtr, Name: ty.Name + " *"}
	}
	return ast.PointerTo(ty)
}

func (b *builder) parameters(n *sitter.Node) ([]*ast.Decl, error) {
	var out []*ast.Decl
	for i := 0; i < int(n.NamedChildCount()); i++ {
		pn := n.NamedChild(i)
		if pn.Type() != "parameter_declaration" {
			continue
		}
		ty, err := b.baseType(pn)
		if err != nil {
			return nil, err
		}
		decl := pn.ChildByFieldName("declarator")
		if decl == nil {
			// `void` or an unnamed parameter.
			if ty.Kind == ast.TypeVoid {
				continue
			}
			out = append(out, &ast.Decl{Kind: ast.DeclParam, Type: ty})
			continue
		}
		if decl.Type() == "abstract_pointer_declarator" {
			out = append(out, &ast.Decl{Kind: ast.DeclParam, Type: b.abstractType(decl, ty)})
			continue
		}
		// Parameters live in the callee's scope, not the declaring one.
		saved := b.p.scope
		b.p.scope = NewScope(saved)
		d, err := b.declarator(decl, ty, ast.DeclParam)
		b.p.scope = saved
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// typeDescriptor resolves the type named in a cast, e.g. `(const int *)`.
func (b *builder) typeDescriptor(n *sitter.Node) (*ast.Type, error) {
	ty, err := b.baseType(n)
	if err != nil {
		return nil, err
	}
	return b.abstractType(n.ChildByFieldName("declarator"), ty), nil
}

func (b *builder) abstractType(n *sitter.Node, ty *ast.Type) *ast.Type {
	for n != nil && n.Type() == "abstract_pointer_declarator" {
		ty = b.pointerTo(ty)
		n = n.ChildByFieldName("declarator")
	}
	return ty
}
