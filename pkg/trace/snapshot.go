package trace

import (
	"fmt"
	"maps"

	"github.com/l3aro/go-path-explain/pkg/ast"
)

// Snapshot is the immutable engine state at a trace node.
type Snapshot interface {
	// Binding returns the value stored in r.
	Binding(r Region) Value

	// ExprValue returns the value expression e evaluated to in frame f.
	ExprValue(e ast.Expr, f *Frame) Value

	// LValue returns the region of variable d in frame f.
	LValue(d *ast.Decl, f *Frame) Region

	// Assume returns the state refined by v being true (non-zero) or false.
	// The second result is false when the assumption is infeasible.
	Assume(v Value, assumption bool) (Snapshot, bool)

	// Aux returns the root of the auxiliary data map. Roots are compared by
	// identity: an unchanged root means the core engine made no new assumption.
	Aux() *Aux
}

// Aux is the engine's persistent auxiliary data map. Every update returns a
// new root and never mutates the receiver.
type Aux struct {
	entries map[string]any
}

// NewAux returns an empty root.
func NewAux() *Aux {
	return &Aux{entries: map[string]any{}}
}

// Get returns the value stored under key.
func (a *Aux) Get(key string) (any, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.entries[key]
	return v, ok
}

// Set returns a new root holding v under key.
func (a *Aux) Set(key string, v any) *Aux {
	next := &Aux{entries: map[string]any{}}
	if a != nil {
		for k, e := range a.entries {
			next.entries[k] = e
		}
	}
	next.entries[key] = v
	return next
}

// ConstraintKind classifies what is known about a symbol.
type ConstraintKind int

const (
	Unconstrained ConstraintKind = iota
	NonZero
	EqualTo
)

// Constraint is the feasible range of one symbol.
type Constraint struct {
	Kind  ConstraintKind
	Value int64 // For EqualTo
}

func (c Constraint) String() string {
	switch c.Kind {
	case NonZero:
		return "!= 0"
	case EqualTo:
		return fmt.Sprintf("== %d", c.Value)
	}
	return "any"
}

// Allows reports whether the symbol may be non-zero (truth) or zero (!truth).
func (c Constraint) Allows(truth bool) bool {
	switch c.Kind {
	case NonZero:
		return truth
	case EqualTo:
		return (c.Value != 0) == truth
	}
	return true
}

// Implies reports whether the constraint already forces the given truth.
func (c Constraint) Implies(truth bool) bool {
	switch c.Kind {
	case NonZero:
		return truth
	case EqualTo:
		return (c.Value != 0) == truth
	}
	return false
}

func (c Constraint) refine(truth bool) Constraint {
	if c.Implies(truth) {
		return c
	}
	if truth {
		return Constraint{Kind: NonZero}
	}
	return Constraint{Kind: EqualTo, Value: 0}
}

const constraintsKey = "constraints"

type constraintMap map[SymbolID]Constraint

type exprKey struct {
	expr  ast.Expr
	frame *Frame
}

// State is an in-memory Snapshot. Region bindings and expression values live
// in the state itself, constraints live in the aux map, so only assumptions
// produce a new aux root.
type State struct {
	regions  *Regions
	bindings map[Region]Value
	exprs    map[exprKey]Value
	aux      *Aux
}

// NewState returns an empty state using the given region manager.
func NewState(regions *Regions) *State {
	return &State{
		regions:  regions,
		bindings: map[Region]Value{},
		exprs:    map[exprKey]Value{},
		aux:      NewAux(),
	}
}

func (s *State) clone() *State {
	next := &State{
		regions:  s.regions,
		bindings: make(map[Region]Value, len(s.bindings)),
		exprs:    make(map[exprKey]Value, len(s.exprs)),
		aux:      s.aux,
	}
	for k, v := range s.bindings {
		next.bindings[k] = v
	}
	for k, v := range s.exprs {
		next.exprs[k] = v
	}
	return next
}

// Bind returns a state where r holds v. The aux root is shared.
func (s *State) Bind(r Region, v Value) *State {
	next := s.clone()
	next.bindings[r] = v
	return next
}

// BindExpr returns a state where e evaluated to v in frame f. The aux root is shared.
func (s *State) BindExpr(e ast.Expr, f *Frame, v Value) *State {
	next := s.clone()
	next.exprs[exprKey{expr: e, frame: f}] = v
	return next
}

// Constrain returns a state with a new aux root recording c for sym.
func (s *State) Constrain(sym SymbolID, c Constraint) *State {
	next := s.clone()
	old := s.constraints()
	cm := make(constraintMap, len(old)+1)
	for k, v := range old {
		cm[k] = v
	}
	cm[sym] = c
	next.aux = s.aux.Set(constraintsKey, cm)
	return next
}

// WithAux returns a state whose aux root carries an extra entry, as engine
// bookkeeping would.
func (s *State) WithAux(key string, v any) *State {
	next := s.clone()
	next.aux = s.aux.Set(key, v)
	return next
}

// ShareAux returns a copy of s using other's aux root.
func (s *State) ShareAux(other *State) *State {
	next := s.clone()
	next.aux = other.aux
	return next
}

// ConstraintOf returns what is known about sym.
func (s *State) ConstraintOf(sym SymbolID) Constraint {
	return s.constraints()[sym]
}

// SameConstraints reports whether s and other know the same about every symbol.
func (s *State) SameConstraints(other *State) bool {
	return maps.Equal(s.constraints(), other.constraints())
}

func (s *State) constraints() constraintMap {
	v, ok := s.aux.Get(constraintsKey)
	if !ok {
		return nil
	}
	return v.(constraintMap)
}

// Binding returns the value stored in r, Unknown if r was never bound.
func (s *State) Binding(r Region) Value {
	if v, ok := s.bindings[r]; ok {
		return v
	}
	return Unknown{}
}

// ExprValue returns the recorded value of e, Unknown if none.
func (s *State) ExprValue(e ast.Expr, f *Frame) Value {
	if v, ok := s.exprs[exprKey{expr: e, frame: f}]; ok {
		return v
	}
	return Unknown{}
}

// LValue returns the canonical region of d in f.
func (s *State) LValue(d *ast.Decl, f *Frame) Region {
	return s.regions.Var(d, f)
}

// Assume refines the state by v's truth.
func (s *State) Assume(v Value, assumption bool) (Snapshot, bool) {
	switch x := v.(type) {
	case ConcreteInt:
		return s.feasibleIf((x.V != 0) == assumption)
	case ConcreteLoc:
		return s.feasibleIf((x.Addr != 0) == assumption)
	case RegionVal:
		sym, ok := AsLocSymbol(x)
		if !ok {
			// Addresses of variables and their fields are never null.
			return s.feasibleIf(assumption)
		}
		return s.assumeSymbol(sym, assumption)
	case Symbol:
		return s.assumeSymbol(x.ID, assumption)
	}
	return s, true
}

func (s *State) feasibleIf(ok bool) (Snapshot, bool) {
	if !ok {
		return nil, false
	}
	return s, true
}

func (s *State) assumeSymbol(sym SymbolID, assumption bool) (Snapshot, bool) {
	c := s.ConstraintOf(sym)
	if !c.Allows(assumption) {
		return nil, false
	}
	if c.Implies(assumption) {
		return s, true
	}
	return s.Constrain(sym, c.refine(assumption)), true
}

// Aux returns the aux root.
func (s *State) Aux() *Aux {
	return s.aux
}

// Regions returns the region manager shared by all states of one trace.
func (s *State) Regions() *Regions {
	return s.regions
}

var _ Snapshot = (*State)(nil)
