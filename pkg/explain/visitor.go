package explain

import (
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// Visitor is one analysis run over consecutive trace node pairs. The set of
// visitors is closed; construct them with the New* functions of this package.
type Visitor interface {
	// Name identifies the visitor kind in logs and rendered steps.
	Name() string

	// Satisfied reports whether a single-shot visitor already fired.
	// Visitors evaluated independently at every node never become satisfied.
	Satisfied() bool

	// key identifies the visitor kind and its parameters for deduplication.
	key() any

	// visit inspects the edge from pred to succ (succ is later in program order).
	visit(succ, pred *trace.Node, r *Report) *Step
}

// Deduplication keys. The dynamic type of the key distinguishes the visitor kind.
type (
	storeOriginKey struct {
		region trace.Region
		value  trace.Value
	}
	constraintOriginKey struct {
		constraint trace.Value
		assumption bool
	}
	returnValueKey struct {
		frame *trace.Frame
	}
	argTaintKey struct {
		region trace.Region
	}
	conditionKey   struct{}
	nilReceiverKey struct{}
)

// AddDefaultVisitors registers the visitors every report carries: the
// condition explainer and the nil-receiver explainer.
func AddDefaultVisitors(r *Report) {
	r.AddVisitor(NewNilReceiver())
	r.AddVisitor(NewConditionExplainer())
}
