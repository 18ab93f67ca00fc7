package infer

import (
	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/diagnostic"
	"github.com/viant/ecmaopt/types"
)

// DeferredCheck records a call site whose callee hadn't been summarized
// yet when the call was type-checked (§4.6 "Deferred checks: a call to a
// function declared later in the same scope... is re-verified once all
// scopes are summarized."). Resolve re-runs the same argument-count/type
// validation checkCall would have run inline, now that CalleeFn's
// summary exists.
type DeferredCheck struct {
	Call     *ast.Node
	CalleeFn *ast.Node
	ArgTypes []*types.Type
	Report   func(n *ast.Node, key diagnostic.Key, level diagnostic.Level, msg string)
}

func (d *DeferredCheck) resolve(e *Engine) {
	summary, ok := e.SummaryFor(d.CalleeFn)
	if !ok {
		return
	}
	fn := summary.FuncType()

	minRequired := 0
	for _, p := range fn.Params {
		if !p.Optional {
			minRequired++
		}
	}
	maxAllowed := len(fn.Params)
	if fn.Rest != nil {
		maxAllowed = -1
	}
	if len(d.ArgTypes) < minRequired || (maxAllowed >= 0 && len(d.ArgTypes) > maxAllowed) {
		d.Report(d.Call, diagnostic.KeyInvalidArgumentCount, diagnostic.LevelError,
			"wrong number of arguments")
	}

	for i, at := range d.ArgTypes {
		var pt *types.Type
		switch {
		case i < len(fn.Params):
			pt = fn.Params[i].Type
		case fn.Rest != nil:
			pt = fn.Rest
		default:
			continue
		}
		if pt.IsConcrete() && at.IsConcrete() && !types.SubtypeOf(at, pt) {
			d.Report(d.Call, diagnostic.KeyInvalidArgument, diagnostic.LevelError,
				"argument "+at.String()+" is not assignable to parameter of type "+pt.String())
		}
	}
}
