package ast

// Node is implemented by every syntax node.
type Node interface {
	Range() Range
	isNode()
}

// Stmt marks nodes usable as statements. Every expression is a statement.
type Stmt interface {
	Node
	isStmt()
}

// Expr marks nodes producing a value.
type Expr interface {
	Stmt
	Type() *Type
	isExpr()
}

// Base carries the static type and source range shared by all expressions.
type Base struct {
	Ty  *Type
	Rng Range
}

// Type returns the static type of the expression.
func (b *Base) Type() *Type { return b.Ty }

// Range returns the source range of the expression.
func (b *Base) Range() Range { return b.Rng }

// DeclRef references a declaration by name, e.g. `p`.
type DeclRef struct {
	Base
	Decl *Decl
}

// IntLiteral is an integer constant, e.g. `0`.
type IntLiteral struct {
	Base
	Value int64
}

// BinaryOp is a binary operator application, assignments included.
type BinaryOp struct {
	Base
	Op  Opcode
	LHS Expr
	RHS Expr
}

// UnaryOp is a prefix or postfix operator application.
type UnaryOp struct {
	Base
	Op Opcode
	X  Expr
}

// Paren is a parenthesized expression.
type Paren struct {
	Base
	X Expr
}

// Cast is an explicit or implicit conversion to Ty.
type Cast struct {
	Base
	X        Expr
	Implicit bool
}

// Call is a function call.
type Call struct {
	Base
	Callee Expr
	Args   []Expr
}

// Member is a field access, `x.f` or `p->f`.
type Member struct {
	Base
	X     Expr
	Field string
	Arrow bool
}

// ArraySubscript is `x[i]`.
type ArraySubscript struct {
	Base
	X     Expr
	Index Expr
}

// Conditional is the ternary operator `c ? a : b`.
type Conditional struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

// Message is an object message send `[recv sel]`. Receiver is nil for
// class messages.
type Message struct {
	Base
	Receiver Expr
	Selector string
	Args     []Expr
}

// DeclStmt declares one or more names.
type DeclStmt struct {
	Decls []*Decl
	Rng   Range
}

// SingleDecl returns the declared name when the statement declares exactly one.
func (s *DeclStmt) SingleDecl() *Decl {
	if len(s.Decls) != 1 {
		return nil
	}
	return s.Decls[0]
}

// Range returns the source range of the statement.
func (s *DeclStmt) Range() Range { return s.Rng }

// ReturnStmt is `return` with an optional value.
type ReturnStmt struct {
	Value Expr
	Rng   Range
}

// Range returns the source range of the statement.
func (s *ReturnStmt) Range() Range { return s.Rng }

// IfStmt is a two-way branch. Only the condition matters to the explainer.
type IfStmt struct {
	Cond Expr
	Rng  Range
}

// Range returns the source range of the statement.
func (s *IfStmt) Range() Range { return s.Rng }

// Interface markers.
func (*DeclRef) isNode()        {}
func (*DeclRef) isStmt()        {}
func (*DeclRef) isExpr()        {}
func (*IntLiteral) isNode()     {}
func (*IntLiteral) isStmt()     {}
func (*IntLiteral) isExpr()     {}
func (*BinaryOp) isNode()       {}
func (*BinaryOp) isStmt()       {}
func (*BinaryOp) isExpr()       {}
func (*UnaryOp) isNode()        {}
func (*UnaryOp) isStmt()        {}
func (*UnaryOp) isExpr()        {}
func (*Paren) isNode()          {}
func (*Paren) isStmt()          {}
func (*Paren) isExpr()          {}
func (*Cast) isNode()           {}
func (*Cast) isStmt()           {}
func (*Cast) isExpr()           {}
func (*Call) isNode()           {}
func (*Call) isStmt()           {}
func (*Call) isExpr()           {}
func (*Member) isNode()         {}
func (*Member) isStmt()         {}
func (*Member) isExpr()         {}
func (*ArraySubscript) isNode() {}
func (*ArraySubscript) isStmt() {}
func (*ArraySubscript) isExpr() {}
func (*Conditional) isNode()    {}
func (*Conditional) isStmt()    {}
func (*Conditional) isExpr()    {}
func (*Message) isNode()        {}
func (*Message) isStmt()        {}
func (*Message) isExpr()        {}
func (*DeclStmt) isNode()       {}
func (*DeclStmt) isStmt()       {}
func (*ReturnStmt) isNode()     {}
func (*ReturnStmt) isStmt()     {}
func (*IfStmt) isNode()         {}
func (*IfStmt) isStmt()         {}
