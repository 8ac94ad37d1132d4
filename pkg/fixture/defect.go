package fixture

import (
	"github.com/l3aro/go-path-explain/pkg/explain"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// Report returns a report for the fixture's defect with the default visitors
// and the tracking visitors its defect kind calls for.
func (fx *Fixture) Report(opts ...explain.Option) *explain.Report {
	r := explain.NewReport(fx.ErrorNode, fx.Description, opts...)
	if fx.highlight.IsValid() {
		r.AddRange(fx.highlight)
	}
	explain.AddDefaultVisitors(r)

	n := fx.ErrorNode
	switch fx.Kind {
	case DefectNullDeref:
		if e := explain.DerefExpr(n); e != nil {
			explain.TrackNullOrUndefValue(r, n, e)
		}
	case DefectDivZero:
		if e := explain.DenomExpr(n); e != nil {
			explain.TrackNullOrUndefValue(r, n, e)
		}
		if s := trace.StmtOf(n.Point); s != nil {
			explain.RegisterStatementVarDecls(r, s)
		}
	case DefectReturn:
		if e := explain.RetValExpr(n); e != nil {
			explain.TrackNullOrUndefValue(r, n, e)
		}
	}
	return r
}

// Explain runs the walk for the fixture's defect.
func (fx *Fixture) Explain(opts ...explain.Option) []explain.Step {
	return explain.Run(fx.Report(opts...))
}
