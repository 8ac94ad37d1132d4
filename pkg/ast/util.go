package ast

// NewDeclRef returns a reference to d typed as d's declared type.
func NewDeclRef(d *Decl) *DeclRef {
	return &DeclRef{Base: Base{Ty: d.Type}, Decl: d}
}

// NewInt returns an integer literal of type int.
func NewInt(v int64) *IntLiteral {
	return &IntLiteral{Base: Base{Ty: IntType}, Value: v}
}

// NewBinary returns lhs op rhs. Comparisons and logical operators are typed
// int, assignments take the type of the left operand.
func NewBinary(op Opcode, lhs, rhs Expr) *BinaryOp {
	ty := IntType
	switch {
	case op.IsAssignment():
		ty = lhs.Type()
	case op == OpComma:
		ty = rhs.Type()
	case !op.IsComparison() && op != OpLAnd && op != OpLOr:
		ty = arithmeticType(lhs, rhs)
	}
	return &BinaryOp{Base: Base{Ty: ty}, Op: op, LHS: lhs, RHS: rhs}
}

func arithmeticType(lhs, rhs Expr) *Type {
	if lt := lhs.Type(); lt.IsAnyPointer() {
		return lt
	}
	if rt := rhs.Type(); rt.IsAnyPointer() {
		return rt
	}
	return lhs.Type()
}

// NewUnary returns op x.
func NewUnary(op Opcode, x Expr) *UnaryOp {
	ty := x.Type()
	switch op {
	case OpLNot:
		ty = IntType
	case OpDeref:
		if ty != nil && ty.Pointee != nil {
			ty = ty.Pointee
		} else {
			ty = &Type{Kind: TypeOther}
		}
	case OpAddrOf:
		ty = PointerTo(ty)
	}
	return &UnaryOp{Base: Base{Ty: ty}, Op: op, X: x}
}

// NewParen returns (x).
func NewParen(x Expr) *Paren {
	return &Paren{Base: Base{Ty: x.Type()}, X: x}
}

// NewCast returns an explicit conversion of x to ty.
func NewCast(ty *Type, x Expr) *Cast {
	return &Cast{Base: Base{Ty: ty}, X: x}
}

// NewImplicitCast returns a compiler-inserted conversion of x to ty, such as
// the null-pointer conversion of `0` in `p == 0`.
func NewImplicitCast(ty *Type, x Expr) *Cast {
	return &Cast{Base: Base{Ty: ty, Rng: x.Range()}, X: x, Implicit: true}
}

// NewCall returns callee(args...). The result type is taken from the
// callee's declared function type when available.
func NewCall(callee Expr, ret *Type, args ...Expr) *Call {
	return &Call{Base: Base{Ty: ret}, Callee: callee, Args: args}
}

// WithRange sets the source range of e and returns it.
func WithRange[E Expr](e E, r Range) E {
	switch x := any(e).(type) {
	case *DeclRef:
		x.Rng = r
	case *IntLiteral:
		x.Rng = r
	case *BinaryOp:
		x.Rng = r
	case *UnaryOp:
		x.Rng = r
	case *Paren:
		x.Rng = r
	case *Cast:
		x.Rng = r
	case *Call:
		x.Rng = r
	case *Member:
		x.Rng = r
	case *ArraySubscript:
		x.Rng = r
	case *Conditional:
		x.Rng = r
	case *Message:
		x.Rng = r
	}
	return e
}

// IgnoreParenCasts strips parentheses and casts, explicit or implicit.
func IgnoreParenCasts(e Expr) Expr {
	for {
		switch x := e.(type) {
		case *Paren:
			e = x.X
		case *Cast:
			e = x.X
		default:
			return e
		}
	}
}

// IsCallStmt reports whether s is a call or a message send.
func IsCallStmt(s Stmt) bool {
	switch s.(type) {
	case *Call, *Message:
		return true
	}
	return false
}

// VarDecl returns the variable referenced by e after stripping parentheses
// and casts, or nil when e is not a direct variable reference.
func VarDecl(e Expr) *Decl {
	if e == nil {
		return nil
	}
	dr, ok := IgnoreParenCasts(e).(*DeclRef)
	if !ok || !dr.Decl.IsVar() {
		return nil
	}
	return dr.Decl
}

// Children returns the direct syntactic children of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(xs ...Expr) {
		for _, x := range xs {
			if x != nil {
				out = append(out, x)
			}
		}
	}

	switch x := n.(type) {
	case *DeclRef, *IntLiteral:
	case *BinaryOp:
		add(x.LHS, x.RHS)
	case *UnaryOp:
		add(x.X)
	case *Paren:
		add(x.X)
	case *Cast:
		add(x.X)
	case *Call:
		add(x.Callee)
		add(x.Args...)
	case *Member:
		add(x.X)
	case *ArraySubscript:
		add(x.X, x.Index)
	case *Conditional:
		add(x.Cond, x.Then, x.Else)
	case *Message:
		add(x.Receiver)
		add(x.Args...)
	case *DeclStmt:
		for _, d := range x.Decls {
			add(d.Init)
		}
	case *ReturnStmt:
		add(x.Value)
	case *IfStmt:
		add(x.Cond)
	}
	return out
}

// Inspect walks the tree rooted at n in depth-first order, calling f for
// each node. Children are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}
