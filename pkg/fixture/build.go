package fixture

import (
	"fmt"

	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/cfg"
	"github.com/l3aro/go-path-explain/pkg/cparse"
	"github.com/l3aro/go-path-explain/pkg/trace"
)

// builder holds the name tables of a fixture under construction.
type builder struct {
	file    *File
	opts    cparse.Options
	global  *cparse.Scope
	frames  map[string]*trace.Frame
	top     *trace.Frame
	parsers map[string]*cparse.Parser // By frame ID
	stmts   map[string]ast.Stmt
	graph   *cfg.CFG
	regions *trace.Regions

	auxOwner map[*trace.Aux]string
	auxRoots map[string]*trace.State
}

// Build turns a decoded fixture document into a trace.
func Build(f *File) (*Fixture, error) {
	if len(f.Nodes) == 0 {
		return nil, ErrNoErrorNode
	}
	if len(f.Frames) == 0 {
		f.Frames = []FrameSpec{{ID: "main", Function: "main"}}
	}

	b := &builder{
		file:     f,
		global:   cparse.NewScope(nil),
		frames:   make(map[string]*trace.Frame),
		parsers:  make(map[string]*cparse.Parser),
		stmts:    make(map[string]ast.Stmt),
		graph:    cfg.New(f.Frames[0].Function),
		regions:  trace.NewRegions(),
		auxOwner: make(map[*trace.Aux]string),
		auxRoots: make(map[string]*trace.State),
	}

	steps := []func() error{
		b.declareGlobals,
		b.declareFrames,
		b.parseStmts,
		b.linkFrames,
		b.buildBlocks,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	nodes, err := b.buildNodes()
	if err != nil {
		return nil, err
	}

	fx := &Fixture{
		Description: f.Description,
		Kind:        f.Defect.Kind,
		ErrorNode:   nodes[len(nodes)-1],
		Nodes:       nodes,
		stmts:       b.stmts,
	}
	if fx.Kind == "" {
		fx.Kind = DefectNone
	}
	if f.Defect.Range != "" {
		s, err := resolve(b.stmts, f.Defect.Range)
		if err != nil {
			return nil, fmt.Errorf("defect range: %w", err)
		}
		fx.highlight = s.Range()
	} else {
		fx.highlight = fx.ErrorNode.Range()
	}
	return fx, nil
}

func (b *builder) declareGlobals() error {
	b.opts = cparse.Options{ObjectTypes: b.file.ObjectTypes}

	if len(b.file.Fields) > 0 {
		b.opts.FieldTypes = make(map[string]*ast.Type)
		scratch := cparse.New(nil, b.opts)
		for _, src := range b.file.Fields {
			d, err := scratch.ParseDecl(src, ast.DeclVar)
			if err != nil {
				return fmt.Errorf("field %q: %w", src, err)
			}
			b.opts.FieldTypes[d.Name] = d.Type
		}
	}

	p := cparse.New(b.global, b.opts)
	for _, name := range b.file.Enums {
		p.DeclareEnum(name)
	}
	for _, src := range b.file.Globals {
		d, err := p.ParseDecl(src, ast.DeclVar)
		if err != nil {
			return fmt.Errorf("global %q: %w", src, err)
		}
		d.Global = true
	}
	for _, src := range b.file.Functions {
		if _, err := p.ParseDecl(src, ast.DeclFunction); err != nil {
			return fmt.Errorf("function %q: %w", src, err)
		}
	}
	return nil
}

func (b *builder) declareFrames() error {
	for i, fs := range b.file.Frames {
		if fs.ID == "" {
			return fmt.Errorf("%w: frame %d has no id", ErrInvalidValue, i)
		}
		if _, dup := b.frames[fs.ID]; dup {
			return fmt.Errorf("%w: duplicate frame %q", ErrInvalidValue, fs.ID)
		}

		fr := &trace.Frame{ID: fs.ID, Function: fs.Function}
		b.frames[fs.ID] = fr
		if i == 0 {
			b.top = fr
		}

		p := cparse.New(cparse.NewScope(b.global), b.opts)
		if fn := b.global.Lookup(fs.Function); fn != nil && fn.Kind == ast.DeclFunction {
			p.ReturnType = fn.Type
			for _, param := range fn.Params {
				if param.Name != "" {
					p.Scope().Declare(param)
				}
			}
		}
		for _, src := range fs.Vars {
			if _, err := p.ParseDecl(src, ast.DeclVar); err != nil {
				return fmt.Errorf("frame %s: var %q: %w", fs.ID, src, err)
			}
		}
		b.parsers[fs.ID] = p
	}
	return nil
}

func (b *builder) parseStmts() error {
	line := 0
	for _, ss := range b.file.Stmts {
		if ss.ID == "" {
			return fmt.Errorf("%w: statement %q has no id", ErrInvalidValue, ss.Src)
		}
		if _, dup := b.stmts[ss.ID]; dup {
			return fmt.Errorf("%w: duplicate statement %q", ErrInvalidValue, ss.ID)
		}

		frameID := ss.Frame
		if frameID == "" {
			frameID = b.top.ID
		}
		p, ok := b.parsers[frameID]
		if !ok {
			return fmt.Errorf("statement %s: %w: frame %q", ss.ID, ErrUnknownName, frameID)
		}

		line++
		if ss.Line > 0 {
			line = ss.Line
		}
		p.Line = line

		s, err := p.ParseStmt(ss.Src)
		if err != nil {
			return fmt.Errorf("statement %s: %w", ss.ID, err)
		}
		b.stmts[ss.ID] = s
	}
	return nil
}

// linkFrames sets parents and call sites once all statements exist.
func (b *builder) linkFrames() error {
	for _, fs := range b.file.Frames {
		fr := b.frames[fs.ID]
		if fs.Parent != "" {
			parent, ok := b.frames[fs.Parent]
			if !ok {
				return fmt.Errorf("frame %s: %w: parent %q", fs.ID, ErrUnknownName, fs.Parent)
			}
			fr.Parent = parent
		}
		if fs.Call != "" {
			site, err := resolveExpr(b.stmts, fs.Call)
			if err != nil {
				return fmt.Errorf("frame %s: %w", fs.ID, err)
			}
			fr.CallSite = site
		}
	}
	return nil
}

func (b *builder) buildBlocks() error {
	for _, bs := range b.file.Blocks {
		blk := b.graph.Block(bs.ID)
		if bs.Terminator != "" {
			t, err := resolve(b.stmts, bs.Terminator)
			if err != nil {
				return fmt.Errorf("block %s: %w", bs.ID, err)
			}
			blk.Terminator = t
		}
		for _, succ := range bs.Succs {
			b.graph.AddEdge(bs.ID, succ)
		}
	}
	return nil
}

func (b *builder) block(id string) (*cfg.Block, error) {
	blk, ok := b.graph.Blocks[id]
	if !ok {
		return nil, fmt.Errorf("%w: block %q", ErrUnknownName, id)
	}
	return blk, nil
}

func (b *builder) frame(id string) (*trace.Frame, error) {
	fr, ok := b.frames[id]
	if !ok {
		return nil, fmt.Errorf("%w: frame %q", ErrUnknownName, id)
	}
	return fr, nil
}

func (b *builder) buildNodes() ([]*trace.Node, error) {
	var path trace.Path
	state := trace.NewState(b.regions)

	for i, ns := range b.file.Nodes {
		pt, fr, err := b.point(ns)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i+1, err)
		}

		state, err = b.update(state, ns, fr)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i+1, err)
		}
		if ns.Aux != "" {
			state, err = b.labelAux(state, ns)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i+1, err)
			}
		}

		path.Append(pt, state, fr)
	}
	return path.Nodes(), nil
}

// point builds the program point of ns and picks the frame the node runs in.
// Call entries default to the callee frame, call exits to its parent.
func (b *builder) point(ns NodeSpec) (trace.Point, *trace.Frame, error) {
	fr := b.top
	if ns.Frame != "" {
		f, err := b.frame(ns.Frame)
		if err != nil {
			return nil, nil, err
		}
		fr = f
	}

	switch ns.Point {
	case "post-stmt", "pre-stmt":
		s, err := resolve(b.stmts, ns.Stmt)
		if err != nil {
			return nil, nil, err
		}
		if ns.Point == "pre-stmt" {
			return trace.PreStmt{Stmt: s}, fr, nil
		}
		tag, err := parseTag(ns.Tag)
		if err != nil {
			return nil, nil, err
		}
		return trace.PostStmt{Stmt: s, Tag: tag}, fr, nil

	case "block-edge":
		src, err := b.block(ns.Src)
		if err != nil {
			return nil, nil, err
		}
		dst, err := b.block(ns.Dst)
		if err != nil {
			return nil, nil, err
		}
		return trace.BlockEdge{Src: src, Dst: dst}, fr, nil

	case "call-enter":
		callee, err := b.frame(ns.Callee)
		if err != nil {
			return nil, nil, err
		}
		ev := &trace.CallEvent{}
		if fn := b.global.Lookup(callee.Function); fn != nil {
			ev.Params = fn.Params
		}
		for _, a := range ns.Args {
			v, err := b.value(a, fr)
			if err != nil {
				return nil, nil, err
			}
			ev.Args = append(ev.Args, v)
		}
		if ns.Frame == "" {
			fr = callee
		}
		return trace.CallEnter{Callee: callee, Call: ev}, fr, nil

	case "call-exit-end":
		callee, err := b.frame(ns.Callee)
		if err != nil {
			return nil, nil, err
		}
		if ns.Frame == "" && callee.Parent != nil {
			fr = callee.Parent
		}
		return trace.CallExitEnd{Callee: callee}, fr, nil
	}
	return nil, nil, fmt.Errorf("%w: point %q", ErrInvalidValue, ns.Point)
}

func parseTag(s string) (trace.Tag, error) {
	switch s {
	case "", "none":
		return trace.TagNone, nil
	case "eager-true":
		return trace.TagEagerTrue, nil
	case "eager-false":
		return trace.TagEagerFalse, nil
	case "checker":
		return trace.TagChecker, nil
	}
	return trace.TagNone, fmt.Errorf("%w: tag %q", ErrInvalidValue, s)
}

// update applies the node's bindings, expression values and constraints.
func (b *builder) update(st *trace.State, ns NodeSpec, fr *trace.Frame) (*trace.State, error) {
	for key, raw := range ns.Bindings {
		reg, err := b.region(key, fr)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
		v, err := b.value(raw, fr)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
		st = st.Bind(reg, v)
	}

	for path, raw := range ns.Exprs {
		e, err := resolveExpr(b.stmts, path)
		if err != nil {
			return nil, err
		}
		v, err := b.value(raw, fr)
		if err != nil {
			return nil, fmt.Errorf("expr %s: %w", path, err)
		}
		st = st.BindExpr(e, fr, v)
	}

	for sym, raw := range ns.Constraints {
		c, err := parseConstraint(raw)
		if err != nil {
			return nil, fmt.Errorf("constraint %s: %w", sym, err)
		}
		st = st.Constrain(trace.SymbolID(sym), c)
	}
	return st, nil
}

// labelAux makes nodes with equal aux labels share one aux root and nodes
// with different labels use distinct roots.
func (b *builder) labelAux(st *trace.State, ns NodeSpec) (*trace.State, error) {
	if owner, ok := b.auxRoots[ns.Aux]; ok {
		if owner.Aux() != st.Aux() {
			if len(ns.Constraints) > 0 {
				return nil, fmt.Errorf("%w: aux %q is reused by a node adding constraints", ErrInvalidValue, ns.Aux)
			}
			if !owner.SameConstraints(st) {
				return nil, fmt.Errorf("%w: aux %q would drop constraints added since its first node", ErrInvalidValue, ns.Aux)
			}
		}
		return st.ShareAux(owner), nil
	}
	if _, taken := b.auxOwner[st.Aux()]; taken {
		st = st.WithAux("fixture.aux", ns.Aux)
	}
	b.auxOwner[st.Aux()] = ns.Aux
	b.auxRoots[ns.Aux] = st
	return st, nil
}
