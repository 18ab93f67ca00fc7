// Package liveness implements the backward live-variables analysis
// (§4.4) on top of the generic dataflow engine.
package liveness

import (
	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/cfg"
	"github.com/viant/ecmaopt/dataflow"
)

const annotationKey = "liveness"

// Result is the converged live-in/live-out bitmap for every vertex in
// a function's CFG, plus the scope the bitmap indices are relative to.
type Result struct {
	Scope   *ast.Scope
	LiveIn  map[int]*BitSet
	LiveOut map[int]*BitSet
}

type bitsetLattice struct{ size int }

func (l bitsetLattice) Bottom() interface{} { return NewBitSet(l.size) }

func (l bitsetLattice) Join(a, b interface{}) interface{} {
	return a.(*BitSet).Or(b.(*BitSet))
}

func (l bitsetLattice) Equal(a, b interface{}) bool {
	return a.(*BitSet).Equal(b.(*BitSet))
}

// Analyze runs live-variables over g for the bindings declared in
// scope (only; outer-scope variables are not tracked here, consistent
// with §4.4's requirement that the bitmap be indexed
// within-scope — a reference to an outer binding never appears in this
// scope's own bitmap and is instead picked up by EscapeSet/the
// enclosing scope's own Analyze call).
func Analyze(g *cfg.Graph, scope *ast.Scope) *Result {
	lattice := bitsetLattice{size: scope.Len()}

	transfer := func(v *cfg.Vertex, liveOut interface{}) interface{} {
		out := liveOut.(*BitSet).Clone()
		if v.Node == nil {
			return out
		}
		isBinding, _ := v.Annotation("binding-target")
		reads, kills := classify(v.Node, scope, isBinding == true)
		for _, idx := range kills {
			out.Clear(idx)
		}
		for _, idx := range reads {
			out.Set(idx)
		}
		return out
	}

	res := dataflow.Run(g, lattice, transfer, dataflow.Backward, annotationKey)

	liveIn := make(map[int]*BitSet, len(res.In))
	liveOut := make(map[int]*BitSet, len(res.Out))
	for id, v := range res.In {
		liveIn[id] = v.(*BitSet)
	}
	for id, v := range res.Out {
		liveOut[id] = v.(*BitSet)
	}
	return &Result{Scope: scope, LiveIn: liveIn, LiveOut: liveOut}
}

