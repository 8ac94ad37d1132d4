package ast

import "fmt"

// Opcode is a binary or unary operator.
type Opcode int

const (
	OpInvalid Opcode = iota

	// Binary.
	OpMul
	OpDiv
	OpRem
	OpAdd
	OpSub
	OpShl
	OpShr
	OpLT
	OpGT
	OpLE
	OpGE
	OpEQ
	OpNE
	OpAnd
	OpXor
	OpOr
	OpLAnd
	OpLOr
	OpAssign
	OpMulAssign
	OpDivAssign
	OpRemAssign
	OpAddAssign
	OpSubAssign
	OpShlAssign
	OpShrAssign
	OpAndAssign
	OpXorAssign
	OpOrAssign
	OpComma

	// Unary.
	OpLNot
	OpNot
	OpMinus
	OpPlus
	OpDeref
	OpAddrOf
	OpPreInc
	OpPreDec
	OpPostInc
	OpPostDec
)

var opcodeSpelling = map[Opcode]string{
	OpMul:       "*",
	OpDiv:       "/",
	OpRem:       "%",
	OpAdd:       "+",
	OpSub:       "-",
	OpShl:       "<<",
	OpShr:       ">>",
	OpLT:        "<",
	OpGT:        ">",
	OpLE:        "<=",
	OpGE:        ">=",
	OpEQ:        "==",
	OpNE:        "!=",
	OpAnd:       "&",
	OpXor:       "^",
	OpOr:        "|",
	OpLAnd:      "&&",
	OpLOr:       "||",
	OpAssign:    "=",
	OpMulAssign: "*=",
	OpDivAssign: "/=",
	OpRemAssign: "%=",
	OpAddAssign: "+=",
	OpSubAssign: "-=",
	OpShlAssign: "<<=",
	OpShrAssign: ">>=",
	OpAndAssign: "&=",
	OpXorAssign: "^=",
	OpOrAssign:  "|=",
	OpComma:     ",",
	OpLNot:      "!",
	OpNot:       "~",
	OpMinus:     "-",
	OpPlus:      "+",
	OpDeref:     "*",
	OpAddrOf:    "&",
	OpPreInc:    "++",
	OpPreDec:    "--",
	OpPostInc:   "++",
	OpPostDec:   "--",
}

func (op Opcode) String() string {
	v, ok := opcodeSpelling[op]
	if !ok {
		return fmt.Sprintf("invalid(%d)", int(op))
	}

	return v
}

// IsAssignment reports whether op is plain or compound assignment.
func (op Opcode) IsAssignment() bool {
	return op >= OpAssign && op <= OpOrAssign
}

// IsComparison reports whether op is a relational or equality operator.
func (op Opcode) IsComparison() bool {
	return op >= OpLT && op <= OpNE
}

// Mirror returns the operator that keeps the comparison's meaning when
// its operands are swapped. Equality, inequality and non-ordering operators
// are returned unchanged.
func (op Opcode) Mirror() Opcode {
	switch op {
	case OpLT:
		return OpGT
	case OpGT:
		return OpLT
	case OpLE:
		return OpGE
	case OpGE:
		return OpLE
	}
	return op
}

// Negate returns the logical negation of a comparison. The second result is
// false for operators outside the comparison set.
func (op Opcode) Negate() (Opcode, bool) {
	switch op {
	case OpEQ:
		return OpNE, true
	case OpNE:
		return OpEQ, true
	case OpLT:
		return OpGE, true
	case OpGT:
		return OpLE, true
	case OpLE:
		return OpGT, true
	case OpGE:
		return OpLT, true
	}
	return OpInvalid, false
}

// BinaryOpcode maps an operator spelling to its binary opcode.
func BinaryOpcode(s string) (Opcode, bool) {
	for op := OpMul; op <= OpComma; op++ {
		if opcodeSpelling[op] == s {
			return op, true
		}
	}
	return OpInvalid, false
}
