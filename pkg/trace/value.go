package trace

import (
	"fmt"
)

// SymbolID names a symbolic value.
type SymbolID string

// Value is a symbolic value. All variants are comparable and equality is by
// representation.
type Value interface {
	String() string
	isValue()
}

// ConcreteInt is a known integer (non-location) value.
type ConcreteInt struct {
	V int64
}

// ConcreteLoc is a known address. Address 0 is the null pointer.
type ConcreteLoc struct {
	Addr uint64
}

// RegionVal is the address of a region.
type RegionVal struct {
	R Region
}

// Symbol is a symbolic integer value of unknown content.
type Symbol struct {
	ID SymbolID
}

// Unknown is a value the engine gave up tracking.
type Unknown struct{}

// Undefined is the content of uninitialized storage.
type Undefined struct{}

func (v ConcreteInt) String() string { return fmt.Sprintf("%d", v.V) }
func (v ConcreteLoc) String() string {
	if v.Addr == 0 {
		return "null"
	}
	return fmt.Sprintf("&0x%x", v.Addr)
}
func (v RegionVal) String() string { return "&" + v.R.String() }
func (v Symbol) String() string    { return "$" + string(v.ID) }
func (Unknown) String() string     { return "unknown" }
func (Undefined) String() string   { return "undef" }

func (ConcreteInt) isValue() {}
func (ConcreteLoc) isValue() {}
func (RegionVal) isValue()   {}
func (Symbol) isValue()      {}
func (Unknown) isValue()     {}
func (Undefined) isValue()   {}

// Null is the null pointer value.
var Null Value = ConcreteLoc{}

// IsUndef reports whether v is undefined.
func IsUndef(v Value) bool {
	_, ok := v.(Undefined)
	return ok
}

// IsUnknownOrUndef reports whether nothing is known about v.
func IsUnknownOrUndef(v Value) bool {
	switch v.(type) {
	case nil, Unknown, Undefined:
		return true
	}
	return false
}

// IsLoc reports whether v is a location value.
func IsLoc(v Value) bool {
	switch v.(type) {
	case ConcreteLoc, RegionVal:
		return true
	}
	return false
}

// IsZeroConstant reports whether v is the integer zero or the null pointer.
func IsZeroConstant(v Value) bool {
	switch x := v.(type) {
	case ConcreteInt:
		return x.V == 0
	case ConcreteLoc:
		return x.Addr == 0
	}
	return false
}

// AsRegion returns the region v points to, or nil when v is not a region address.
func AsRegion(v Value) Region {
	if rv, ok := v.(RegionVal); ok {
		return rv.R
	}
	return nil
}

// AsLocSymbol returns the symbol behind a symbolic pointer value.
func AsLocSymbol(v Value) (SymbolID, bool) {
	r := AsRegion(v)
	if r == nil {
		return "", false
	}
	if sr, ok := BaseRegion(r).(*SymbolicRegion); ok {
		return sr.Sym, true
	}
	return "", false
}

// SymbolOf returns the symbol carried by v, location or not.
func SymbolOf(v Value) (SymbolID, bool) {
	if s, ok := v.(Symbol); ok {
		return s.ID, true
	}
	return AsLocSymbol(v)
}
