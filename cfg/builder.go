package cfg

import "github.com/viant/ecmaopt/ast"

// pending is an open edge waiting for its destination: `from` will be
// connected, under `label`, to whatever vertex comes next in sequence.
type pending struct {
	from  *Vertex
	label EdgeLabel
}

type loopFrame struct {
	label          string
	breakPending   *[]pending
	continueTarget *Vertex
}

type buildCtx struct {
	g          *Graph
	loops      []*loopFrame
	tryTargets []*Vertex // stack of innermost enclosing catch-entry vertices
	pendingLbl string    // label attached to the statement about to be built
	loopDepth  int       // >0 while building a loop's own header/body/update
}

// vertex creates a vertex and, when built while inside a loop, tags it
// so reference.AssignedOnce (§4.5) can disqualify writes that might run
// more than once without re-deriving loop membership from the graph.
func (ctx *buildCtx) vertex(n *ast.Node) *Vertex {
	v := ctx.g.newVertex(n)
	if ctx.loopDepth > 0 {
		v.SetAnnotation("in-loop", true)
	}
	return v
}

func connect(g *Graph, froms []pending, to *Vertex) {
	if to == nil {
		return
	}
	for _, p := range froms {
		g.addEdge(p.from, to, p.label)
	}
}

// Build constructs the control-flow graph for a function (or program)
// scope from its body statements (§4.2). Function
// expressions nested inside are not descended into — they get their own
// Build call when their own scope is analyzed (§4.2: "function
// expressions produce no intra-procedural flow").
func Build(body []*ast.Node) *Graph {
	g := newGraph()
	ctx := &buildCtx{g: g}
	entry, exits := buildSequence(ctx, body)
	if entry == nil {
		// empty body: entry falls straight through to exit
		g.Entry = g.Exit
		return g
	}
	g.Entry = entry
	connect(g, exits, g.Exit)
	return g
}

func buildSequence(ctx *buildCtx, stmts []*ast.Node) (*Vertex, []pending) {
	var entry *Vertex
	var exits []pending
	for _, stmt := range stmts {
		sEntry, sExits := buildStmt(ctx, stmt)
		if sEntry == nil {
			continue
		}
		if entry == nil {
			entry = sEntry
		} else {
			connect(ctx.g, exits, sEntry)
		}
		exits = sExits
	}
	return entry, exits
}

func addToTry(ctx *buildCtx, v *Vertex) {
	if len(ctx.tryTargets) == 0 {
		return
	}
	catchEntry := ctx.tryTargets[len(ctx.tryTargets)-1]
	ctx.g.addEdge(v, catchEntry, OnEx)
}

func buildStmt(ctx *buildCtx, n *ast.Node) (*Vertex, []pending) {
	g := ctx.g
	switch n.Kind {
	case ast.KindFunctionDecl, ast.KindFunctionExpr, ast.KindArrowFunction, ast.KindClassDecl:
		// no intra-procedural flow contribution (§4.2)
		return nil, nil

	case ast.KindBlock:
		return buildSequence(ctx, n.Children)

	case ast.KindIf:
		return buildIf(ctx, n)

	case ast.KindWhile:
		label := ctx.pendingLbl
		ctx.pendingLbl = ""
		return buildWhile(ctx, n, label)

	case ast.KindDoWhile:
		label := ctx.pendingLbl
		ctx.pendingLbl = ""
		return buildDoWhile(ctx, n, label)

	case ast.KindFor:
		label := ctx.pendingLbl
		ctx.pendingLbl = ""
		return buildFor(ctx, n, label)

	case ast.KindForIn, ast.KindForOf:
		label := ctx.pendingLbl
		ctx.pendingLbl = ""
		return buildForInOf(ctx, n, label)

	case ast.KindSwitch:
		return buildSwitch(ctx, n)

	case ast.KindTry:
		return buildTry(ctx, n)

	case ast.KindThrow:
		v := ctx.vertex(n)
		addToTry(ctx, v)
		g.addEdge(v, g.ExceptionExit, Unconditional)
		return v, nil // throw has no fall-through exit

	case ast.KindReturn:
		v := ctx.vertex(n)
		addToTry(ctx, v)
		g.addEdge(v, g.Exit, Unconditional)
		return v, nil

	case ast.KindBreak:
		v := ctx.vertex(n)
		addToTry(ctx, v)
		frame := findLoop(ctx, n.Name)
		if frame != nil {
			*frame.breakPending = append(*frame.breakPending, pending{from: v, label: Unconditional})
		}
		return v, nil

	case ast.KindContinue:
		v := ctx.vertex(n)
		addToTry(ctx, v)
		frame := findLoop(ctx, n.Name)
		if frame != nil && frame.continueTarget != nil {
			g.addEdge(v, frame.continueTarget, Unconditional)
		}
		return v, nil

	case ast.KindLabel:
		// labeled statement: propagate the label to the sole child, which
		// must be a loop for break/continue re-targeting to apply (§4.2
		// "Break/continue with labels re-target edges accordingly").
		prevLabel := ctx.pendingLbl
		ctx.pendingLbl = n.Name
		var entry *Vertex
		var exits []pending
		if len(n.Children) > 0 {
			entry, exits = buildStmt(ctx, n.Children[0])
		}
		ctx.pendingLbl = prevLabel
		return entry, exits

	case ast.KindExprStatement:
		return buildExprStatement(ctx, n)

	default:
		// plain statement: var/let/const decl, empty, etc. — one vertex,
		// falls through.
		v := ctx.vertex(n)
		addToTry(ctx, v)
		return v, []pending{{from: v, label: Unconditional}}
	}
}

func findLoop(ctx *buildCtx, label string) *loopFrame {
	if label == "" {
		if len(ctx.loops) == 0 {
			return nil
		}
		return ctx.loops[len(ctx.loops)-1]
	}
	for i := len(ctx.loops) - 1; i >= 0; i-- {
		if ctx.loops[i].label == label {
			return ctx.loops[i]
		}
	}
	return nil
}

// buildExprStatement gives each operand of an expression statement whose
// expression is a top-level `&&`/`||` (e.g. `a && (x = b);`) its own
// vertex, so a dataflow analysis observes the conditional kill (§4.2 "Key
// edge cases"). Only that shape is split: an if/loop condition such as
// `if (a = b && c)`, or a short-circuit nested under an assignment, stays
// a single vertex.
func buildExprStatement(ctx *buildCtx, n *ast.Node) (*Vertex, []pending) {
	expr := n
	if len(n.Children) == 1 {
		expr = n.Children[0]
	}
	if expr.Kind == ast.KindLogicalAnd || expr.Kind == ast.KindLogicalOr {
		return buildShortCircuit(ctx, n, expr)
	}
	v := ctx.vertex(n)
	addToTry(ctx, v)
	return v, []pending{{from: v, label: Unconditional}}
}

func buildShortCircuit(ctx *buildCtx, stmt, expr *ast.Node) (*Vertex, []pending) {
	g := ctx.g
	if len(expr.Children) < 2 {
		v := ctx.vertex(stmt)
		addToTry(ctx, v)
		return v, []pending{{from: v, label: Unconditional}}
	}
	left := expr.Children[0]
	right := expr.Children[1]
	leftV := ctx.vertex(left)
	addToTry(ctx, leftV)
	rightV := ctx.vertex(right)
	addToTry(ctx, rightV)
	if expr.Kind == ast.KindLogicalAnd {
		g.addEdge(leftV, rightV, OnTrue)
		// FALSE: left alone short-circuits, right's (conditional) kill does
		// not execute.
		return leftV, []pending{{from: leftV, label: OnFalse}, {from: rightV, label: Unconditional}}
	}
	g.addEdge(leftV, rightV, OnFalse)
	return leftV, []pending{{from: leftV, label: OnTrue}, {from: rightV, label: Unconditional}}
}

func buildIf(ctx *buildCtx, n *ast.Node) (*Vertex, []pending) {
	g := ctx.g
	cond := n.Children[0]
	thenStmt := n.Children[1]
	var elseStmt *ast.Node
	if len(n.Children) > 2 {
		elseStmt = n.Children[2]
	}
	condV := ctx.vertex(cond)
	addToTry(ctx, condV)

	thenEntry, thenExits := buildStmt(ctx, thenStmt)
	var allExits []pending
	if thenEntry != nil {
		g.addEdge(condV, thenEntry, OnTrue)
		allExits = append(allExits, thenExits...)
	} else {
		allExits = append(allExits, pending{from: condV, label: OnTrue})
	}

	if elseStmt != nil {
		elseEntry, elseExits := buildStmt(ctx, elseStmt)
		if elseEntry != nil {
			g.addEdge(condV, elseEntry, OnFalse)
			allExits = append(allExits, elseExits...)
		} else {
			allExits = append(allExits, pending{from: condV, label: OnFalse})
		}
	} else {
		allExits = append(allExits, pending{from: condV, label: OnFalse})
	}
	return condV, allExits
}

func buildWhile(ctx *buildCtx, n *ast.Node, label string) (*Vertex, []pending) {
	g := ctx.g
	cond := n.Children[0]
	body := n.Children[1]
	header := ctx.vertex(cond)
	addToTry(ctx, header)

	var breakPending []pending
	frame := &loopFrame{label: label, breakPending: &breakPending, continueTarget: header}
	ctx.loops = append(ctx.loops, frame)
	ctx.loopDepth++
	bodyEntry, bodyExits := buildStmt(ctx, body)
	ctx.loopDepth--
	ctx.loops = ctx.loops[:len(ctx.loops)-1]

	if bodyEntry != nil {
		g.addEdge(header, bodyEntry, OnTrue)
		connect(g, bodyExits, header) // back-edge to header
	} else {
		g.addEdge(header, header, OnTrue)
	}
	exits := append([]pending{{from: header, label: OnFalse}}, breakPending...)
	return header, exits
}

// buildDoWhile guarantees one iteration: the body dominates the
// post-exit (§4.2 "`do`-loops guarantee one iteration").
func buildDoWhile(ctx *buildCtx, n *ast.Node, label string) (*Vertex, []pending) {
	g := ctx.g
	body := n.Children[0]
	cond := n.Children[1]
	condV := ctx.vertex(cond)
	addToTry(ctx, condV)

	var breakPending []pending
	frame := &loopFrame{label: label, breakPending: &breakPending, continueTarget: condV}
	ctx.loops = append(ctx.loops, frame)
	ctx.loopDepth++
	bodyEntry, bodyExits := buildStmt(ctx, body)
	ctx.loopDepth--
	ctx.loops = ctx.loops[:len(ctx.loops)-1]

	if bodyEntry == nil {
		bodyEntry = condV
	} else {
		connect(g, bodyExits, condV)
	}
	g.addEdge(condV, bodyEntry, OnTrue)
	exits := append([]pending{{from: condV, label: OnFalse}}, breakPending...)
	return bodyEntry, exits
}

func buildFor(ctx *buildCtx, n *ast.Node, label string) (*Vertex, []pending) {
	g := ctx.g
	// children: init?, cond?, update?, body — represented with nil-able
	// slots via KindEmpty markers from the parser.
	init := n.Children[0]
	cond := n.Children[1]
	update := n.Children[2]
	body := n.Children[3]

	var initV *Vertex
	if init.Kind != ast.KindEmpty {
		initV = ctx.vertex(init)
		addToTry(ctx, initV)
	}
	header := ctx.vertex(cond)
	addToTry(ctx, header)
	if initV != nil {
		g.addEdge(initV, header, Unconditional)
	}

	var updateV *Vertex
	if update.Kind != ast.KindEmpty {
		updateV = ctx.vertex(update)
		addToTry(ctx, updateV)
	}
	continueTarget := header
	if updateV != nil {
		continueTarget = updateV
	}

	var breakPending []pending
	frame := &loopFrame{label: label, breakPending: &breakPending, continueTarget: continueTarget}
	ctx.loops = append(ctx.loops, frame)
	ctx.loopDepth++
	bodyEntry, bodyExits := buildStmt(ctx, body)
	ctx.loopDepth--
	ctx.loops = ctx.loops[:len(ctx.loops)-1]

	if bodyEntry == nil {
		bodyEntry = header
	}
	g.addEdge(header, bodyEntry, OnTrue)
	if updateV != nil {
		connect(g, bodyExits, updateV)
		g.addEdge(updateV, header, Unconditional)
	} else {
		connect(g, bodyExits, header)
	}

	entry := header
	if initV != nil {
		entry = initV
	}
	exits := append([]pending{{from: header, label: OnFalse}}, breakPending...)
	return entry, exits
}

// buildForInOf creates one vertex for the iterable (evaluated once) and
// another for the per-iteration binding, connected by a back-edge from
// the body (§4.2 "Key edge cases").
func buildForInOf(ctx *buildCtx, n *ast.Node, label string) (*Vertex, []pending) {
	g := ctx.g
	iterable := n.Children[0]
	binding := n.Children[1]
	body := n.Children[2]

	iterV := ctx.vertex(iterable)
	addToTry(ctx, iterV)
	bindV := ctx.vertex(binding)
	// liveness (§4.4) must not treat the per-iteration binding as an
	// unconditional kill: the loop may run zero iterations, so whatever
	// was live going in has to stay live across the header.
	bindV.SetAnnotation("binding-target", true)
	addToTry(ctx, bindV)
	g.addEdge(iterV, bindV, Unconditional)

	var breakPending []pending
	frame := &loopFrame{label: label, breakPending: &breakPending, continueTarget: bindV}
	ctx.loops = append(ctx.loops, frame)
	ctx.loopDepth++
	bodyEntry, bodyExits := buildStmt(ctx, body)
	ctx.loopDepth--
	ctx.loops = ctx.loops[:len(ctx.loops)-1]

	if bodyEntry == nil {
		bodyEntry = bindV
	}
	g.addEdge(bindV, bodyEntry, OnTrue)
	connect(g, bodyExits, bindV)

	exits := append([]pending{{from: bindV, label: OnFalse}}, breakPending...)
	return iterV, exits
}

func buildSwitch(ctx *buildCtx, n *ast.Node) (*Vertex, []pending) {
	g := ctx.g
	disc := n.Children[0]
	cases := n.Children[1:]
	switchV := ctx.vertex(disc)
	addToTry(ctx, switchV)

	var breakPending []pending
	frame := &loopFrame{label: "", breakPending: &breakPending}
	ctx.loops = append(ctx.loops, frame)

	var prevCaseExits []pending
	var allExits []pending
	hasDefault := false
	for _, c := range cases {
		isDefault := c.Kind == ast.KindDefault
		hasDefault = hasDefault || isDefault
		var testV *Vertex
		var bodyStmts []*ast.Node
		if isDefault {
			bodyStmts = c.Children
		} else {
			testV = ctx.vertex(c.Children[0])
			addToTry(ctx, testV)
			g.addEdge(switchV, testV, OnTrue)
			bodyStmts = c.Children[1:]
		}
		bodyEntry, bodyExits := buildSequence(ctx, bodyStmts)
		if testV != nil {
			if bodyEntry != nil {
				g.addEdge(testV, bodyEntry, OnTrue)
			} else {
				allExits = append(allExits, pending{from: testV, label: OnTrue})
			}
		}
		// fallthrough: previous case's body exits flow into this case's
		// entry when there is no explicit break.
		if bodyEntry != nil {
			connect(g, prevCaseExits, bodyEntry)
		} else {
			allExits = append(allExits, prevCaseExits...)
		}
		prevCaseExits = bodyExits
		if isDefault && bodyEntry != nil {
			g.addEdge(switchV, bodyEntry, Unconditional)
		}
	}
	allExits = append(allExits, prevCaseExits...)
	if !hasDefault {
		allExits = append(allExits, pending{from: switchV, label: OnFalse})
	}

	ctx.loops = ctx.loops[:len(ctx.loops)-1]
	allExits = append(allExits, breakPending...)
	return switchV, allExits
}

// buildTry adds EX edges from every statement inside the try block to
// the catch (§4.2 "`try` adds EX edges from every statement inside the
// try block to the catch").
func buildTry(ctx *buildCtx, n *ast.Node) (*Vertex, []pending) {
	g := ctx.g
	tryBlock := n.Children[0]
	var catchClause, finallyBlock *ast.Node
	for _, c := range n.Children[1:] {
		switch c.Kind {
		case ast.KindCatch:
			catchClause = c
		case ast.KindFinally:
			finallyBlock = c
		}
	}

	var catchEntry *Vertex
	var catchExits []pending
	if catchClause != nil {
		catchEntry, catchExits = buildSequence(ctx, catchClause.Children)
		if catchEntry == nil {
			catchEntry = ctx.vertex(catchClause)
		}
	}

	if catchEntry != nil {
		ctx.tryTargets = append(ctx.tryTargets, catchEntry)
	}
	tryEntry, tryExits := buildSequence(ctx, tryBlock.Children)
	if catchEntry != nil {
		ctx.tryTargets = ctx.tryTargets[:len(ctx.tryTargets)-1]
	}
	if tryEntry == nil {
		tryEntry = ctx.vertex(tryBlock)
	}

	allExits := append([]pending{}, tryExits...)
	allExits = append(allExits, catchExits...)

	if finallyBlock != nil {
		finEntry, finExits := buildSequence(ctx, finallyBlock.Children)
		if finEntry != nil {
			connect(g, allExits, finEntry)
			return tryEntry, finExits
		}
	}
	return tryEntry, allExits
}
