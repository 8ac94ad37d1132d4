package fixture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/l3aro/go-path-explain/pkg/ast"
)

// resolve walks a statement path: a statement ID followed by child
// selectors, e.g. "d1/init/callee" or "s2/lhs/sub".
func resolve(stmts map[string]ast.Stmt, path string) (ast.Stmt, error) {
	parts := strings.Split(path, "/")
	cur, ok := stmts[parts[0]]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownStmt, parts[0])
	}
	for _, sel := range parts[1:] {
		next := child(cur, sel)
		if next == nil {
			return nil, fmt.Errorf("%w: %q has no %q", ErrUnknownStmt, path, sel)
		}
		cur = next
	}
	return cur, nil
}

// resolveExpr is resolve restricted to expressions.
func resolveExpr(stmts map[string]ast.Stmt, path string) (ast.Expr, error) {
	s, err := resolve(stmts, path)
	if err != nil {
		return nil, err
	}
	e, ok := s.(ast.Expr)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an expression", ErrUnknownStmt, path)
	}
	return e, nil
}

func child(s ast.Stmt, sel string) ast.Stmt {
	if strings.HasPrefix(sel, "arg") {
		i, err := strconv.Atoi(strings.TrimPrefix(sel, "arg"))
		if err != nil {
			return nil
		}
		var args []ast.Expr
		switch x := s.(type) {
		case *ast.Call:
			args = x.Args
		case *ast.Message:
			args = x.Args
		}
		if i < 0 || i >= len(args) {
			return nil
		}
		return args[i]
	}

	var e ast.Expr
	switch x := s.(type) {
	case *ast.DeclStmt:
		if sel == "init" && len(x.Decls) > 0 {
			e = x.Decls[0].Init
		}
	case *ast.ReturnStmt:
		if sel == "value" {
			e = x.Value
		}
	case *ast.IfStmt:
		if sel == "cond" {
			e = x.Cond
		}
	case *ast.BinaryOp:
		switch sel {
		case "lhs":
			e = x.LHS
		case "rhs":
			e = x.RHS
		}
	case *ast.UnaryOp:
		if sel == "sub" {
			e = x.X
		}
	case *ast.Paren:
		if sel == "sub" {
			e = x.X
		}
	case *ast.Cast:
		if sel == "sub" {
			e = x.X
		}
	case *ast.Member:
		if sel == "sub" {
			e = x.X
		}
	case *ast.ArraySubscript:
		switch sel {
		case "sub":
			e = x.X
		case "index":
			e = x.Index
		}
	case *ast.Call:
		if sel == "callee" {
			e = x.Callee
		}
	case *ast.Message:
		if sel == "recv" {
			e = x.Receiver
		}
	case *ast.Conditional:
		switch sel {
		case "cond":
			e = x.Cond
		case "then":
			e = x.Then
		case "else":
			e = x.Else
		}
	}
	if e == nil {
		return nil
	}
	return e
}
