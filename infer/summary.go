package infer

import (
	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/cfg"
	"github.com/viant/ecmaopt/diagnostic"
	"github.com/viant/ecmaopt/types"
)

// summarize implements §4.6 step 7: at the implicit return, infer (or
// validate) the function's return type, collect formal parameter types,
// and record the outer-variable preconditions the body assumed so a
// caller's deferred check can re-verify them later.
func (fc *funcCtx) summarize() *types.Summary {
	ret := types.Bottom()
	for _, rt := range fc.returnTypes {
		ret = types.Join(ret, rt)
	}
	if fc.info.Return != nil && fc.info.Return.IsConcrete() {
		if fc.info.Return.Kind != types.KindVoid && hasFallthroughToExit(fc.info.Graph) {
			fc.report(fc.info.Node, diagnostic.KeyMissingReturn, diagnostic.LevelError,
				"control flow reaches the end of the function without a return, but its declared return type is "+fc.info.Return.String())
		} else if ret.IsConcrete() && !types.SubtypeOf(ret, fc.info.Return) {
			fc.report(fc.info.Node, diagnostic.KeyTypeMismatch, diagnostic.LevelError,
				"returned type "+ret.String()+" is not assignable to declared return type "+fc.info.Return.String())
		}
		ret = fc.info.Return
	} else if len(fc.returnTypes) == 0 {
		ret = types.Void()
	}

	var params []types.Param
	var typeParams []string
	var receiver *types.Type
	if fc.info.Node != nil {
		if fn, ok := fc.info.Node.Type.(*types.Type); ok && fn != nil && fn.Kind == types.KindFunction {
			params = fn.Params
			typeParams = fn.TypeParams
			receiver = fn.Receiver
		}
	}

	return &types.Summary{
		Params:             params,
		Return:             ret,
		Receiver:           receiver,
		TypeParams:         typeParams,
		OuterPreconditions: fc.outerPreconditions(),
	}
}

// hasFallthroughToExit reports whether some control-flow path reaches
// Exit without going through an explicit `return` (§8 boundary
// behavior: "a function with declared return type ≠ undefined and a
// control-flow path with no return triggers the missing-return
// diagnostic"). An empty body wires Entry straight to Exit; otherwise
// every statement that falls off the end of the function (rather than
// returning, throwing, or looping forever) connects directly to Exit,
// so any such edge not sourced from a `return` vertex is a no-return
// path.
func hasFallthroughToExit(g *cfg.Graph) bool {
	if g == nil || g.Exit == nil {
		return false
	}
	if g.Entry == g.Exit {
		return true
	}
	for _, e := range g.Exit.In {
		if e.From == nil || e.From.Node == nil || e.From.Node.Kind != ast.KindReturn {
			return true
		}
	}
	return false
}

// outerPreconditions records, for every free variable the body assigned
// (bound outside this function's own scope and present in the exit
// environment; a variable that is only read is not recorded), the
// declared type it was assumed to have — the "bound outer-variable preconditions" a
// deferred check re-verifies (§4.6 step 7).
func (fc *funcCtx) outerPreconditions() map[string]*types.Type {
	out := map[string]*types.Type{}
	exit := fc.outEnv[fc.info.Graph.Exit.ID]
	if exit == nil {
		return out
	}
	own := map[string]bool{}
	for _, v := range fc.info.Scope.Variables() {
		own[v.Name] = true
	}
	for _, name := range exit.Names() {
		if own[name] {
			continue
		}
		out[name] = exit.Declared(name)
	}
	return out
}
