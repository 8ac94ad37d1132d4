// Package explain turns an error trace into a short causal narrative.
//
// A Report owns the error node and an ordered, deduplicated set of visitors.
// Run walks the trace backward from the error node, handing every visitor
// each (node, predecessor) pair. Visitors detect the exact edge where
// something of interest happened (a store, a constraint, a branch, a return)
// and emit one diagnostic Step for it. Visitors may register further
// visitors while the walk is in progress.
//
// Explanations are best-effort: a visitor that cannot recognise what it
// sees emits nothing. No operation in this package returns an error.
//
// A Report must only be used by one goroutine.
package explain

import (
	"github.com/google/uuid"

	"github.com/l3aro/go-path-explain/internal/log"
	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// Location anchors a step in the analysed program.
type Location struct {
	NodeID int          `json:"node_id"`
	Frame  *trace.Frame `json:"-"`
	Range  ast.Range    `json:"range"`
}

// Step is one unit of causal explanation.
type Step struct {
	Location  Location    `json:"location"`
	Text      string      `json:"text"`
	Ranges    []ast.Range `json:"ranges,omitempty"`
	Highlight *ast.Range  `json:"highlight,omitempty"` // Auto-highlighted span, end of path only
	Prunable  bool        `json:"prunable"`
	EndOfPath bool        `json:"end_of_path,omitempty"`
	Visitor   string      `json:"visitor,omitempty"`
}

// Option configures a Report.
type Option func(*Report)

// WithLogger sets the logger receiving walk events at debug level.
func WithLogger(l log.Logger) Option {
	return func(r *Report) { r.logger = l }
}

// WithMaxSteps caps the number of steps visitors may emit. Zero means no cap.
func WithMaxSteps(n int) Option {
	return func(r *Report) { r.maxSteps = n }
}

// Report is a defect together with everything needed to explain it.
type Report struct {
	ID          string
	Description string

	errorNode *trace.Node
	ranges    []ast.Range

	visitors []Visitor // Active, in registration order
	queued   []Visitor // Registered but not yet active
	keys     map[any]struct{}

	regions map[trace.Region]struct{}
	values  map[trace.Value]struct{}
	symbols map[trace.SymbolID]struct{}
	frames  map[*trace.Frame]struct{}

	logger   log.Logger
	maxSteps int
	cursor   *trace.Node // Node currently being walked, for registration logs
}

// NewReport creates a report for a defect found at errorNode.
func NewReport(errorNode *trace.Node, description string, opts ...Option) *Report {
	r := &Report{
		ID:          uuid.NewString(),
		Description: description,
		errorNode:   errorNode,
		keys:        make(map[any]struct{}),
		regions:     make(map[trace.Region]struct{}),
		values:      make(map[trace.Value]struct{}),
		symbols:     make(map[trace.SymbolID]struct{}),
		frames:      make(map[*trace.Frame]struct{}),
		logger:      log.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ErrorNode returns the node where the defect was detected.
func (r *Report) ErrorNode() *trace.Node { return r.errorNode }

// AddRange records a source range describing the defect.
func (r *Report) AddRange(rng ast.Range) { r.ranges = append(r.ranges, rng) }

// Ranges returns the defect's source ranges.
func (r *Report) Ranges() []ast.Range { return r.ranges }

// Visitors returns the registered visitors in registration order.
func (r *Report) Visitors() []Visitor {
	out := make([]Visitor, 0, len(r.visitors)+len(r.queued))
	return append(append(out, r.visitors...), r.queued...)
}

// AddVisitor registers v unless an equivalent visitor (same kind and same
// parameters) is already registered. It reports whether v was added.
func (r *Report) AddVisitor(v Visitor) bool {
	k := v.key()
	if _, dup := r.keys[k]; dup {
		return false
	}
	r.keys[k] = struct{}{}
	r.queued = append(r.queued, v)

	nodeID := 0
	if r.cursor != nil {
		nodeID = r.cursor.ID
	}
	r.logger.Debug("visitor registered", "report", r.ID, "visitor", v.Name(), "node", nodeID)
	return true
}

// MarkInterestingRegion flags r so explanations touching it are kept.
func (r *Report) MarkInterestingRegion(reg trace.Region) {
	if reg == nil {
		return
	}
	r.regions[reg] = struct{}{}
	if sr, ok := trace.BaseRegion(reg).(*trace.SymbolicRegion); ok {
		r.symbols[sr.Sym] = struct{}{}
	}
}

// MarkInterestingValue flags v, and the region or symbol it carries.
func (r *Report) MarkInterestingValue(v trace.Value) {
	if v == nil {
		return
	}
	r.values[v] = struct{}{}
	if reg := trace.AsRegion(v); reg != nil {
		r.MarkInterestingRegion(reg)
	}
	if sym, ok := v.(trace.Symbol); ok {
		r.symbols[sym.ID] = struct{}{}
	}
}

// MarkInterestingFrame flags a call frame so it is not elided from the path.
func (r *Report) MarkInterestingFrame(f *trace.Frame) {
	if f != nil {
		r.frames[f] = struct{}{}
	}
}

// IsInterestingRegion reports whether reg, or the symbol behind it, was flagged.
func (r *Report) IsInterestingRegion(reg trace.Region) bool {
	if reg == nil {
		return false
	}
	if _, ok := r.regions[reg]; ok {
		return true
	}
	if sr, ok := trace.BaseRegion(reg).(*trace.SymbolicRegion); ok {
		_, ok := r.symbols[sr.Sym]
		return ok
	}
	return false
}

// IsInterestingValue reports whether v, or the region or symbol it carries, was flagged.
func (r *Report) IsInterestingValue(v trace.Value) bool {
	if v == nil {
		return false
	}
	if _, ok := r.values[v]; ok {
		return true
	}
	if reg := trace.AsRegion(v); reg != nil {
		return r.IsInterestingRegion(reg)
	}
	if sym, ok := v.(trace.Symbol); ok {
		_, ok := r.symbols[sym.ID]
		return ok
	}
	return false
}

// IsInterestingFrame reports whether f was flagged.
func (r *Report) IsInterestingFrame(f *trace.Frame) bool {
	_, ok := r.frames[f]
	return ok
}

// InterestingFrames returns the number of flagged frames.
func (r *Report) InterestingFrames() int { return len(r.frames) }

// drain activates queued visitors and returns them.
func (r *Report) drain() []Visitor {
	batch := r.queued
	r.queued = nil
	r.visitors = append(r.visitors, batch...)
	return batch
}

func (r *Report) allSatisfied() bool {
	if len(r.queued) > 0 {
		return false
	}
	for _, v := range r.visitors {
		if !v.Satisfied() {
			return false
		}
	}
	return true
}

func locationOf(n *trace.Node, rng ast.Range) Location {
	return Location{NodeID: n.ID, Frame: n.Frame, Range: rng}
}
