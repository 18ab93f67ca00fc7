package infer

import (
	"strings"

	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/diagnostic"
	"github.com/viant/ecmaopt/types"
)

// evalCall types a call expression (§4.6 step 4's Call rule). When the
// callee is a forward reference to a function this engine hasn't
// summarized yet, it records a DeferredCheck instead of reporting
// argument-count/type errors immediately (§4.6 "Deferred checks").
func (ec *exprCtx) evalCall(n *ast.Node, env *types.Env) (*types.Env, *types.Type) {
	callee := n.Children[0]
	args := n.Children[1:]

	var calleeType *types.Type
	env, calleeType = ec.eval(callee, env, types.Unknown(), nil)

	argTypes := make([]*types.Type, len(args))
	for i, a := range args {
		env, argTypes[i] = ec.eval(a, env, types.Unknown(), nil)
	}

	// A call to a function declared later in the same scope finds no
	// concrete type at its declaring Name yet; defer the check rather
	// than mistake "not analyzed yet" for "not callable" (§4.6 "Deferred
	// checks").
	if fnNode, deferredReturn, pending := ec.pendingCallee(callee); pending {
		ec.fc.engine.deferred = append(ec.fc.engine.deferred, &DeferredCheck{
			Call:     n,
			CalleeFn: fnNode,
			ArgTypes: argTypes,
			Report:   ec.fc.report,
		})
		return env, deferredReturn
	}

	if calleeType.Kind != types.KindFunction {
		if calleeType.IsConcrete() {
			ec.fc.report(n, diagnostic.KeyConstructorNotCallable, diagnostic.LevelError,
				"value of type "+calleeType.String()+" is not callable")
		}
		return env, types.Unknown()
	}

	return env, ec.checkCall(n, calleeType, argTypes)
}

// pendingCallee reports whether callee names a function-declaration
// variable whose summary isn't computed yet (the forward-reference
// case), returning the declaring node so a DeferredCheck can re-resolve
// its summary later.
func (ec *exprCtx) pendingCallee(callee *ast.Node) (fnNode *ast.Node, fallback *types.Type, pending bool) {
	if callee.Kind != ast.KindName {
		return nil, nil, false
	}
	v := ec.fc.info.Scope.Resolve(callee.Name)
	if v == nil || v.Kind != ast.VariableFunctionDecl || v.Defining == nil {
		return nil, nil, false
	}
	if _, ok := ec.fc.engine.SummaryFor(v.Defining); ok {
		return nil, nil, false
	}
	return v.Defining, types.Unknown(), true
}

// checkCall unifies generics (if any), validates argument count/types
// against the resolved signature, and returns the call's result type
// (§4.6 "generics unification via UnifyWith/Resolve", "mandatory checks").
func (ec *exprCtx) checkCall(n *ast.Node, fn *types.Type, argTypes []*types.Type) *types.Type {
	params := fn.Params
	ret := fn.Return
	if len(fn.TypeParams) > 0 {
		typeVars := map[string]bool{}
		for _, p := range fn.TypeParams {
			typeVars[p] = true
		}
		result := types.UnifyResult{}
		for i, p := range params {
			if i < len(argTypes) {
				types.UnifyWith(p.Type, argTypes[i], typeVars, result)
			}
		}
		bound, ambiguous := result.Resolve(false)
		for _, a := range ambiguous {
			ec.fc.report(n, diagnostic.KeyAmbiguousInstantiation, diagnostic.LevelWarning,
				"type variable '"+a.Name+"' was instantiated with more than one type: "+candidateList(a.Candidates))
		}
		params = make([]types.Param, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = types.Param{Name: p.Name, Optional: p.Optional, Type: types.InstantiateGenerics(p.Type, bound)}
		}
		ret = types.InstantiateGenerics(fn.Return, bound)
		if fn.TTL != nil {
			ret = fn.TTL(bound)
		}
	}

	minRequired := 0
	for _, p := range params {
		if !p.Optional {
			minRequired++
		}
	}
	maxAllowed := len(params)
	if fn.Rest != nil {
		maxAllowed = -1 // unbounded
	}
	if len(argTypes) < minRequired || (maxAllowed >= 0 && len(argTypes) > maxAllowed) {
		ec.fc.report(n, diagnostic.KeyInvalidArgumentCount, diagnostic.LevelError,
			"wrong number of arguments")
	}

	for i, at := range argTypes {
		var pt *types.Type
		switch {
		case i < len(params):
			pt = params[i].Type
		case fn.Rest != nil:
			pt = fn.Rest
		default:
			continue
		}
		if pt.IsConcrete() && at.IsConcrete() && !types.SubtypeOf(at, pt) {
			ec.fc.report(n, diagnostic.KeyInvalidArgument, diagnostic.LevelError,
				"argument "+at.String()+" is not assignable to parameter of type "+pt.String())
		}
	}

	return ret
}

// candidateList renders a type-var's conflicting candidates for an
// ambiguity diagnostic, e.g. "number, string".
func candidateList(candidates []*types.Type) string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
