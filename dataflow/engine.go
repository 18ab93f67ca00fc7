// Package dataflow provides a generic monotone worklist engine over a
// cfg.Graph (§4.3). Concrete analyses (liveness, infer) supply a Lattice
// and a TransferFunc; the engine owns iteration order, convergence, and
// annotation publication back onto the graph's vertices.
package dataflow

import "github.com/viant/ecmaopt/cfg"

// Direction selects whether a Lattice's state flows with or against the
// CFG's edges.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Lattice is the per-analysis state type. State values must form a
// join-semilattice: repeated Join calls must be monotone (never lose
// information already joined in) for the engine's termination guarantee
// to hold (§4.3 "Monotone transfer functions ensure termination").
type Lattice interface {
	// Bottom returns a fresh bottom-element value, used to seed every
	// vertex before the first transfer.
	Bottom() interface{}
	// Join merges two state values.
	Join(a, b interface{}) interface{}
	// Equal reports whether two state values are the same, i.e. the cheap
	// "changed?" test the worklist uses to decide whether to keep
	// propagating (§4.3).
	Equal(a, b interface{}) bool
}

// TransferFunc computes a vertex's out-state (forward) or in-state
// (backward) from its in-state (forward) or out-state (backward).
type TransferFunc func(v *cfg.Vertex, state interface{}) interface{}

// Result holds the converged per-vertex states, keyed by vertex ID so
// callers don't need to retain *cfg.Vertex identity.
type Result struct {
	In  map[int]interface{}
	Out map[int]interface{}
}

// Run executes the worklist algorithm described in §4.3: initialize
// every vertex to bottom, seed the worklist in (reverse-)postorder, and
// iterate until no vertex's state changes. annotation, when non-empty,
// is also published onto each cfg.Vertex via SetAnnotation so later
// passes can read it directly off the graph instead of through Result.
func Run(g *cfg.Graph, lattice Lattice, transfer TransferFunc, dir Direction, annotation string) *Result {
	order := g.ReversePostorder()
	if dir == Backward {
		reverse(order)
	}

	in := make(map[int]interface{}, len(order))
	out := make(map[int]interface{}, len(order))
	for _, v := range order {
		in[v.ID] = lattice.Bottom()
		out[v.ID] = lattice.Bottom()
	}

	worklist := append([]*cfg.Vertex(nil), order...)
	onList := make(map[int]bool, len(order))
	for _, v := range worklist {
		onList[v.ID] = true
	}

	for len(worklist) > 0 {
		v := worklist[0]
		worklist = worklist[1:]
		onList[v.ID] = false

		if dir == Forward {
			merged := lattice.Bottom()
			for _, e := range v.In {
				merged = lattice.Join(merged, out[e.From.ID])
			}
			in[v.ID] = merged
			newOut := transfer(v, merged)
			if !lattice.Equal(newOut, out[v.ID]) {
				out[v.ID] = newOut
				for _, e := range v.Out {
					if !onList[e.To.ID] {
						worklist = append(worklist, e.To)
						onList[e.To.ID] = true
					}
				}
			}
		} else {
			merged := lattice.Bottom()
			for _, e := range v.Out {
				merged = lattice.Join(merged, in[e.To.ID])
			}
			out[v.ID] = merged
			newIn := transfer(v, merged)
			if !lattice.Equal(newIn, in[v.ID]) {
				in[v.ID] = newIn
				for _, e := range v.In {
					if !onList[e.From.ID] {
						worklist = append(worklist, e.From)
						onList[e.From.ID] = true
					}
				}
			}
		}
	}

	if annotation != "" {
		for _, v := range order {
			v.SetAnnotation(annotation+".in", in[v.ID])
			v.SetAnnotation(annotation+".out", out[v.ID])
		}
	}
	return &Result{In: in, Out: out}
}

func reverse(vs []*cfg.Vertex) {
	for i, j := 0, len(vs)-1; i < j; i, j = i+1, j-1 {
		vs[i], vs[j] = vs[j], vs[i]
	}
}
