package fixture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/l3aro/go-path-explain/pkg/trace"
)

// value parses the value syntax:
//
//	undef | unknown | null | int:N | loc:N | nsym:NAME
//	sym:NAME[.field...]         address of the region a symbol points to
//	var:[FRAME/]NAME[.field...] address of a variable
//
// A YAML null decodes to the empty string and means the null pointer.
func (b *builder) value(raw string, fr *trace.Frame) (trace.Value, error) {
	switch raw {
	case "undef":
		return trace.Undefined{}, nil
	case "unknown":
		return trace.Unknown{}, nil
	case "null", "":
		return trace.Null, nil
	}

	kind, arg, ok := strings.Cut(raw, ":")
	if !ok || arg == "" {
		return nil, fmt.Errorf("%w: value %q", ErrInvalidValue, raw)
	}
	switch kind {
	case "int":
		n, err := strconv.ParseInt(arg, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %q", ErrInvalidValue, raw)
		}
		return trace.ConcreteInt{V: n}, nil
	case "loc":
		n, err := strconv.ParseUint(arg, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %q", ErrInvalidValue, raw)
		}
		return trace.ConcreteLoc{Addr: n}, nil
	case "nsym":
		return trace.Symbol{ID: trace.SymbolID(arg)}, nil
	case "sym", "var":
		reg, err := b.region(raw, fr)
		if err != nil {
			return nil, err
		}
		return trace.RegionVal{R: reg}, nil
	}
	return nil, fmt.Errorf("%w: value %q", ErrInvalidValue, raw)
}

// region parses [FRAME/]NAME[.field...] or sym:NAME[.field...]. A leading
// "var:" is accepted. The frame defaults to fr.
func (b *builder) region(raw string, fr *trace.Frame) (trace.Region, error) {
	spec := strings.TrimPrefix(raw, "var:")
	symbolic := false
	if s, ok := strings.CutPrefix(spec, "sym:"); ok {
		spec, symbolic = s, true
	}

	fields := strings.Split(spec, ".")
	base := fields[0]

	var reg trace.Region
	if symbolic {
		reg = b.regions.Symbolic(trace.SymbolID(base))
	} else {
		if frameID, name, ok := strings.Cut(base, "/"); ok {
			f, err := b.frame(frameID)
			if err != nil {
				return nil, err
			}
			fr, base = f, name
		}
		d := b.parsers[fr.ID].Scope().Lookup(base)
		if !d.IsVar() {
			return nil, fmt.Errorf("%w: variable %q in frame %s", ErrUnknownName, base, fr.ID)
		}
		reg = b.regions.Var(d, fr)
	}

	for _, f := range fields[1:] {
		if f == "" {
			return nil, fmt.Errorf("%w: region %q", ErrInvalidValue, raw)
		}
		reg = b.regions.Sub(reg, f)
	}
	return reg, nil
}

// parseConstraint parses null | nonnull | zero | nonzero | eq:N.
func parseConstraint(raw string) (trace.Constraint, error) {
	switch raw {
	case "null", "", "zero":
		return trace.Constraint{Kind: trace.EqualTo, Value: 0}, nil
	case "nonnull", "nonzero":
		return trace.Constraint{Kind: trace.NonZero}, nil
	}
	if n, ok := strings.CutPrefix(raw, "eq:"); ok {
		v, err := strconv.ParseInt(n, 0, 64)
		if err == nil {
			return trace.Constraint{Kind: trace.EqualTo, Value: v}, nil
		}
	}
	return trace.Constraint{}, fmt.Errorf("%w: constraint %q", ErrInvalidValue, raw)
}
