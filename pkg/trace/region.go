package trace

import (
	"fmt"

	"github.com/l3aro/go-path-explain/pkg/ast"
)

// Region is an opaque handle for a storage location. Regions are canonical:
// two handles denote the same location iff they are the same pointer.
type Region interface {
	String() string
	isRegion()
}

// VarRegion is the storage of a variable in a given frame. Frame is nil for globals.
type VarRegion struct {
	Decl  *ast.Decl
	Frame *Frame
}

// SymbolicRegion is memory of unknown origin, tracked by its symbol only.
type SymbolicRegion struct {
	Sym SymbolID
}

// SubRegion is a field or element inside Super.
type SubRegion struct {
	Super Region
	Name  string
}

func (r *VarRegion) String() string      { return r.Decl.Name }
func (r *SymbolicRegion) String() string { return fmt.Sprintf("SymRegion{%s}", r.Sym) }
func (r *SubRegion) String() string      { return r.Super.String() + "." + r.Name }

func (*VarRegion) isRegion()      {}
func (*SymbolicRegion) isRegion() {}
func (*SubRegion) isRegion()      {}

// IsSubRegionOf reports whether r lies strictly inside super.
func IsSubRegionOf(r, super Region) bool {
	for {
		sub, ok := r.(*SubRegion)
		if !ok {
			return false
		}
		if sub.Super == super {
			return true
		}
		r = sub.Super
	}
}

// BaseRegion returns the outermost region containing r.
func BaseRegion(r Region) Region {
	for {
		sub, ok := r.(*SubRegion)
		if !ok {
			return r
		}
		r = sub.Super
	}
}

// ValueType returns the declared type of the value stored in r, or nil when
// the region is not typed.
func ValueType(r Region) *ast.Type {
	if vr, ok := r.(*VarRegion); ok {
		return vr.Decl.Type
	}
	return nil
}

type varKey struct {
	decl  *ast.Decl
	frame *Frame
}

type subKey struct {
	super Region
	name  string
}

// Regions hands out canonical region handles.
type Regions struct {
	vars map[varKey]*VarRegion
	syms map[SymbolID]*SymbolicRegion
	subs map[subKey]*SubRegion
}

// NewRegions returns an empty region manager.
func NewRegions() *Regions {
	return &Regions{
		vars: make(map[varKey]*VarRegion),
		syms: make(map[SymbolID]*SymbolicRegion),
		subs: make(map[subKey]*SubRegion),
	}
}

// Var returns the region of d in frame f. Globals live outside any frame, so
// f is ignored for them.
func (m *Regions) Var(d *ast.Decl, f *Frame) *VarRegion {
	if d.Global {
		f = nil
	}
	k := varKey{decl: d, frame: f}
	r, ok := m.vars[k]
	if !ok {
		r = &VarRegion{Decl: d, Frame: f}
		m.vars[k] = r
	}
	return r
}

// Symbolic returns the region pointed to by symbol s.
func (m *Regions) Symbolic(s SymbolID) *SymbolicRegion {
	r, ok := m.syms[s]
	if !ok {
		r = &SymbolicRegion{Sym: s}
		m.syms[s] = r
	}
	return r
}

// Sub returns the named field or element of super.
func (m *Regions) Sub(super Region, name string) *SubRegion {
	k := subKey{super: super, name: name}
	r, ok := m.subs[k]
	if !ok {
		r = &SubRegion{Super: super, Name: name}
		m.subs[k] = r
	}
	return r
}
