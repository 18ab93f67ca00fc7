// Package infer performs abstract interpretation over a function's CFG
// to recover and check abstract types (§4.6). It does not reuse
// dataflow.Run directly: step 5 of the algorithm below requires
// publishing a different environment on the TRUE, FALSE, and EX
// successors of a conditional vertex, which the single-state-per-
// vertex generic engine doesn't model, so this package runs its own
// small forward fixed-point loop keyed by cfg.Edge instead.
package infer

import (
	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/cfg"
	"github.com/viant/ecmaopt/diagnostic"
	"github.com/viant/ecmaopt/types"
)

// FunctionInfo is everything the engine needs about one function scope
// to run the algorithm in §4.6.
type FunctionInfo struct {
	Graph  *cfg.Graph
	Scope  *ast.Scope
	Node   *ast.Node // the function's declaration/expression node (for receiver/generics)
	Return *types.Type
}

// Engine runs the inference algorithm across a bottom-up ordered set of
// function scopes, threading summaries and deferred checks between
// them (§4.6 "bottom-up over the scope tree").
type Engine struct {
	Sink      diagnostic.Sink
	summaries map[*ast.Node]*types.Summary
	deferred  []*DeferredCheck
}

func NewEngine(sink diagnostic.Sink) *Engine {
	return &Engine{Sink: sink, summaries: map[*ast.Node]*types.Summary{}}
}

// SummaryFor returns the summary computed for fn's declaring node, or
// nil if it hasn't been analyzed yet (the not-yet-summarized case a
// deferred check exists to handle).
func (e *Engine) SummaryFor(fnNode *ast.Node) (*types.Summary, bool) {
	s, ok := e.summaries[fnNode]
	return s, ok
}

// InferFunction runs steps 1-7 of §4.6 for a single function and
// records its Summary. Call sites in this function whose callee isn't
// summarized yet are recorded as deferred checks rather than causing
// an error.
func (e *Engine) InferFunction(info FunctionInfo) *types.Summary {
	fc := &funcCtx{
		engine: e,
		info:   info,
		inEnv:  map[int]*types.Env{},
		outEnv: map[int]*types.Env{},
		edgeEnv: map[*cfg.Edge]*types.Env{},
	}
	fc.seedEntry()
	fc.run()
	summary := fc.summarize()
	e.summaries[info.Node] = summary
	return summary
}

// ResolveDeferred re-verifies every deferred check now that every
// function in this compilation has a summary (§4.6 "After all scopes
// are summarized, each deferred check re-verifies arg/return
// compatibility against the final summary.").
func (e *Engine) ResolveDeferred() {
	for _, d := range e.deferred {
		d.resolve(e)
	}
	e.deferred = nil
}
