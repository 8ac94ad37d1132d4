package explain

import (
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// ConstraintOrigin finds where value C was first forced to have truth
// Assumption, i.e. the edge after which its negation became infeasible.
type ConstraintOrigin struct {
	C          trace.Value
	Assumption bool
	satisfied  bool
}

// NewConstraintOrigin returns a visitor locating where c became forced to assumption.
func NewConstraintOrigin(c trace.Value, assumption bool) *ConstraintOrigin {
	return &ConstraintOrigin{C: c, Assumption: assumption}
}

func (*ConstraintOrigin) Name() string      { return "constraint-origin" }
func (c *ConstraintOrigin) Satisfied() bool { return c.satisfied }
func (c *ConstraintOrigin) key() any {
	return constraintOriginKey{constraint: c.C, assumption: c.Assumption}
}

// negationFeasible reports whether n's state still admits !Assumption.
func (c *ConstraintOrigin) negationFeasible(n *trace.Node) bool {
	_, ok := n.State.Assume(c.C, !c.Assumption)
	return ok
}

func (c *ConstraintOrigin) visit(succ, pred *trace.Node, r *Report) *Step {
	if c.satisfied {
		return nil
	}
	if !c.negationFeasible(pred) {
		return nil
	}
	if c.negationFeasible(succ) {
		// Either not yet forced here, or the transition was missed. Keep looking.
		return nil
	}

	c.satisfied = true

	if !trace.IsLoc(c.C) {
		return nil
	}
	text := "Assuming pointer value is null"
	if c.Assumption {
		text = "Assuming pointer value is non-null"
	}
	return &Step{
		Location: locationOf(succ, succ.Range()),
		Text:     text,
	}
}
