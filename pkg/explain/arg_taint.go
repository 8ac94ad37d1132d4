package explain

import (
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// ArgTaint flags callee frames that received R, or a field of R, through a
// mutable pointer or reference parameter while R held undefined or zero. It
// never emits a step.
type ArgTaint struct {
	R trace.Region
}

// NewArgTaint returns a visitor watching calls that receive r.
func NewArgTaint(r trace.Region) *ArgTaint {
	return &ArgTaint{R: r}
}

func (*ArgTaint) Name() string    { return "arg-taint" }
func (*ArgTaint) Satisfied() bool { return false }
func (a *ArgTaint) key() any      { return argTaintKey{region: a.R} }

func (a *ArgTaint) visit(succ, pred *trace.Node, r *Report) *Step {
	enter, ok := succ.Point.(trace.CallEnter)
	if !ok || enter.Call == nil {
		return nil
	}

	for i, param := range enter.Call.Params {
		argReg := enter.Call.ArgRegion(i)
		if argReg == nil || (argReg != a.R && !trace.IsSubRegionOf(argReg, a.R)) {
			continue
		}

		ty := param.Type
		if !(ty.IsAnyPointer() || ty.IsReference()) || ty.PointeeConst() {
			continue
		}

		v := succ.State.Binding(a.R)
		if trace.IsUndef(v) || trace.IsZeroConstant(v) {
			r.MarkInterestingFrame(enter.Callee)
			return nil
		}
	}
	return nil
}
