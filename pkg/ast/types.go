// Package ast defines the minimal syntax shapes the path explainer inspects.
// It covers operators, variable references, literals, call sites, return
// statements and branch conditions; nothing more of the source language is modelled.
package ast

// TypeKind represents the static category of a type.
type TypeKind string

const (
	TypeInt       TypeKind = "int"        // Integer scalar (char, short, int, long, enum)
	TypeBool      TypeKind = "bool"       // Boolean scalar
	TypeFloat     TypeKind = "float"      // Floating-point scalar
	TypePointer   TypeKind = "pointer"    // Raw pointer
	TypeObjectPtr TypeKind = "object_ptr" // Object pointer, nil instead of null
	TypeReference TypeKind = "reference"  // Reference binding
	TypeVoid      TypeKind = "void"       // No value
	TypeOther     TypeKind = "other"      // Records, arrays, functions
)

// Type is the static type of a declaration or expression.
type Type struct {
	Kind    TypeKind `json:"kind"`
	Pointee *Type    `json:"pointee,omitempty"` // For pointers and references
	Const   bool     `json:"const,omitempty"`   // Const-qualified
	Name    string   `json:"name,omitempty"`    // Spelling, for diagnostics only
}

// IsPointer reports whether t is a raw pointer type.
func (t *Type) IsPointer() bool { return t != nil && t.Kind == TypePointer }

// IsObjectPointer reports whether t is an object pointer type.
func (t *Type) IsObjectPointer() bool { return t != nil && t.Kind == TypeObjectPtr }

// IsAnyPointer reports whether t is a raw or object pointer.
func (t *Type) IsAnyPointer() bool { return t.IsPointer() || t.IsObjectPointer() }

// IsReference reports whether t is a reference type.
func (t *Type) IsReference() bool { return t != nil && t.Kind == TypeReference }

// IsBool reports whether t is a boolean type.
func (t *Type) IsBool() bool { return t != nil && t.Kind == TypeBool }

// IsInteger reports whether t is an integer type. Booleans are integers too.
func (t *Type) IsInteger() bool { return t != nil && (t.Kind == TypeInt || t.Kind == TypeBool) }

// IsScalar reports whether values of t fit in a register: arithmetic types and pointers.
func (t *Type) IsScalar() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case TypeInt, TypeBool, TypeFloat, TypePointer, TypeObjectPtr:
		return true
	}
	return false
}

// PointeeConst reports whether t points or refers to a const-qualified type.
func (t *Type) PointeeConst() bool {
	return t != nil && t.Pointee != nil && t.Pointee.Const
}

// String returns the spelling of the type.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Name != "" {
		return t.Name
	}
	switch t.Kind {
	case TypePointer:
		return t.Pointee.String() + " *"
	case TypeReference:
		return t.Pointee.String() + " &"
	}
	return string(t.Kind)
}

// Common scalar types.
var (
	IntType  = &Type{Kind: TypeInt, Name: "int"}
	BoolType = &Type{Kind: TypeBool, Name: "_Bool"}
	VoidType = &Type{Kind: TypeVoid, Name: "void"}
)

// PointerTo returns a pointer type to t.
func PointerTo(t *Type) *Type {
	return &Type{Kind: TypePointer, Pointee: t}
}

// DeclKind classifies a declaration.
type DeclKind string

const (
	DeclVar      DeclKind = "var"      // Local or global variable
	DeclParam    DeclKind = "param"    // Formal parameter
	DeclFunction DeclKind = "function" // Function
	DeclEnum     DeclKind = "enum"     // Enumerator or other non-storage name
)

// Decl is a named declaration.
type Decl struct {
	Name   string   `json:"name"`
	Kind   DeclKind `json:"kind"`
	Type   *Type    `json:"type"`             // For functions, the result type
	Init   Expr     `json:"-"`                // Initializer, nil when declared without one
	Pos    Pos      `json:"pos"`
	Params []*Decl  `json:"params,omitempty"` // Formal parameters of a function
	Global bool     `json:"global,omitempty"` // File-scope storage shared by all frames
}

// IsVar reports whether d names storage: a variable or a parameter.
func (d *Decl) IsVar() bool {
	return d != nil && (d.Kind == DeclVar || d.Kind == DeclParam)
}

// Pos is a line/column position in source, both 1-based.
type Pos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// IsValid reports whether the position was set.
func (p Pos) IsValid() bool { return p.Line > 0 }

// Range is a half-open source range.
type Range struct {
	Start Pos `json:"start"`
	End   Pos `json:"end"`
}

// IsValid reports whether the range was set.
func (r Range) IsValid() bool { return r.Start.IsValid() }
