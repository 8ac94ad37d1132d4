package explain

import (
	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// NilReceiver notes message sends that were skipped because the receiver
// was nil, and tracks where the nil came from.
type NilReceiver struct{}

// NewNilReceiver returns the nil receiver explainer.
func NewNilReceiver() *NilReceiver { return &NilReceiver{} }

func (*NilReceiver) Name() string    { return "nil-receiver" }
func (*NilReceiver) Satisfied() bool { return false }
func (*NilReceiver) key() any        { return nilReceiverKey{} }

func (*NilReceiver) visit(succ, pred *trace.Node, r *Report) *Step {
	p, ok := succ.Point.(trace.PreStmt)
	if !ok {
		return nil
	}
	recv := nilReceiver(p.Stmt, succ)
	if recv == nil {
		return nil
	}

	TrackNullOrUndefValue(r, succ, recv)

	return &Step{
		Location: locationOf(succ, recv.Range()),
		Text:     "No method is called because the receiver is nil",
		Ranges:   []ast.Range{recv.Range()},
	}
}

// nilReceiver returns the receiver of message send s when it is provably nil at n.
func nilReceiver(s ast.Stmt, n *trace.Node) ast.Expr {
	msg, ok := s.(*ast.Message)
	if !ok || msg.Receiver == nil {
		return nil
	}
	v := n.State.ExprValue(msg.Receiver, n.Frame)
	if trace.IsUndef(v) {
		return nil
	}
	if _, canBeNonNil := n.State.Assume(v, true); canBeNonNil {
		return nil
	}
	if _, canBeNil := n.State.Assume(v, false); !canBeNil {
		return nil
	}
	return msg.Receiver
}
