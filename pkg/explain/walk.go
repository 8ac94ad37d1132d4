package explain

import (
	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// Run walks the trace backward from the error node and returns the steps
// emitted by the report's visitors in chronological order, followed by the
// end-of-path step describing the defect itself.
//
// Every visitor registered at the time an edge is processed sees that edge,
// including visitors registered by other visitors on the same edge.
func Run(r *Report) []Step {
	var steps []Step

	budgetLeft := func() bool { return r.maxSteps <= 0 || len(steps) < r.maxSteps }

	r.drain()

	succ := r.errorNode
	for succ != nil && budgetLeft() {
		pred := succ.FirstPred()
		if pred == nil {
			break
		}
		r.cursor = succ

		// Visitors registered while servicing an edge see that same edge
		// before the walk moves on.
		for batch := r.visitors; len(batch) > 0; batch = r.drain() {
			for _, v := range batch {
				if !budgetLeft() {
					break
				}
				if v.Satisfied() {
					continue
				}
				if s := v.visit(succ, pred, r); s != nil {
					s.Visitor = v.Name()
					steps = append(steps, *s)
					r.logger.Debug("step emitted", "report", r.ID, "visitor", v.Name(), "node", succ.ID)
				}
				if v.Satisfied() {
					r.logger.Debug("visitor satisfied", "report", r.ID, "visitor", v.Name(), "node", succ.ID)
				}
			}
		}

		if r.allSatisfied() {
			break
		}
		succ = pred
	}
	r.drain()
	r.cursor = nil

	r.logger.Debug("walk finished", "report", r.ID, "steps", len(steps), "visitors", len(r.visitors))

	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return append(steps, endOfPath(r))
}

// endOfPath describes the defect at the error node. A single report range is
// highlighted automatically; with several ranges nothing is.
func endOfPath(r *Report) Step {
	n := r.errorNode
	var rng ast.Range
	if n != nil {
		rng = n.Range()
	}
	if len(r.ranges) > 0 {
		rng = r.ranges[0]
	}

	s := Step{
		Text:      r.Description,
		Ranges:    append([]ast.Range(nil), r.ranges...),
		EndOfPath: true,
	}
	if n != nil {
		s.Location = locationOf(n, rng)
	}
	if len(r.ranges) == 1 {
		h := r.ranges[0]
		s.Highlight = &h
	}
	return s
}

// Explain is a convenience for building a report with the default visitors,
// the given extra visitors and running it.
func Explain(errorNode *trace.Node, description string, extra []Visitor, opts ...Option) []Step {
	r := NewReport(errorNode, description, opts...)
	AddDefaultVisitors(r)
	for _, v := range extra {
		r.AddVisitor(v)
	}
	return Run(r)
}
