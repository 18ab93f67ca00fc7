// Package cfg builds a per-function control-flow graph from a typed AST
// (§4.2). Expressions become vertices only where an analysis needs a
// boundary (case tests, for-in/of RHS and binding, and the operands of an
// expression statement whose expression is a top-level `&&`/`||`);
// ordinary statements each become exactly one vertex. Conditional
// expression arms, and short-circuit operands inside conditions or other
// expressions, are not split into vertices of their own.
package cfg

import "github.com/viant/ecmaopt/ast"

// EdgeLabel tags the branch condition under which control flows along an
// edge (§3 "ControlFlowGraph").
type EdgeLabel int

const (
	Unconditional EdgeLabel = iota
	OnTrue
	OnFalse
	OnEx
)

func (l EdgeLabel) String() string {
	switch l {
	case OnTrue:
		return "TRUE"
	case OnFalse:
		return "FALSE"
	case OnEx:
		return "EX"
	default:
		return "UNCONDITIONAL"
	}
}

// Vertex wraps a node that is a statement or expression boundary (§3).
type Vertex struct {
	ID   int
	Node *ast.Node
	Out  []*Edge
	In   []*Edge

	// annotations holds per-analysis state keyed by analysis name (§3
	// "Each vertex may carry a per-analysis annotation."), e.g. liveness's
	// live-in/live-out bitmaps or infer's in/out TypeEnv.
	annotations map[string]interface{}
}

// Annotation fetches the named analysis's annotation for this vertex.
func (v *Vertex) Annotation(analysis string) (interface{}, bool) {
	if v.annotations == nil {
		return nil, false
	}
	a, ok := v.annotations[analysis]
	return a, ok
}

// SetAnnotation records the named analysis's annotation for this vertex
// (§4.3 "The engine reports the final annotation at each vertex to the
// caller via an annotation hook on the CFG.").
func (v *Vertex) SetAnnotation(analysis string, value interface{}) {
	if v.annotations == nil {
		v.annotations = map[string]interface{}{}
	}
	v.annotations[analysis] = value
}

// Edge connects two vertices under a branch label (§3).
type Edge struct {
	From, To *Vertex
	Label    EdgeLabel
}

// Graph is a function's control-flow graph (§3 "ControlFlowGraph"). Entry
// is the vertex of the body's first statement (Exit itself for an empty
// body); the scope root has no vertex of its own. Exit is the
// implicit-return sink every normal
// termination flows to. ExceptionExit is a distinct sink that `throw`
// flows to directly, per §4.2: "`throw` produces an edge to exit (not to
// implicit return)".
type Graph struct {
	Entry         *Vertex
	Exit          *Vertex
	ExceptionExit *Vertex
	Vertices      []*Vertex

	labels map[string]*loopTarget // label name -> break/continue targets, retained for inspection
	domBuilt bool
	idom     map[*Vertex]*Vertex
}

type loopTarget struct {
	breakTo, continueTo *Vertex
}

func newGraph() *Graph {
	g := &Graph{labels: map[string]*loopTarget{}}
	g.Exit = g.newVertex(nil)
	g.ExceptionExit = g.newVertex(nil)
	return g
}

func (g *Graph) newVertex(n *ast.Node) *Vertex {
	v := &Vertex{ID: len(g.Vertices), Node: n}
	g.Vertices = append(g.Vertices, v)
	return v
}

func (g *Graph) addEdge(from, to *Vertex, label EdgeLabel) {
	if from == nil || to == nil {
		return
	}
	e := &Edge{From: from, To: to, Label: label}
	from.Out = append(from.Out, e)
	to.In = append(to.In, e)
}

// ReversePostorder returns vertices in the deterministic order the
// dataflow worklist engine seeds from (§4.3: "approximate reverse
// postorder... must be deterministic"), computed over the forward CFG
// from Entry.
func (g *Graph) ReversePostorder() []*Vertex {
	visited := make(map[*Vertex]bool, len(g.Vertices))
	var order []*Vertex
	var visit func(v *Vertex)
	visit = func(v *Vertex) {
		if v == nil || visited[v] {
			return
		}
		visited[v] = true
		for _, e := range v.Out {
			visit(e.To)
		}
		order = append(order, v)
	}
	visit(g.Entry)
	// reverse in place
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
