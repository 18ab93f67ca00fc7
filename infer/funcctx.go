package infer

import (
	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/cfg"
	"github.com/viant/ecmaopt/diagnostic"
	"github.com/viant/ecmaopt/types"
)

// funcCtx holds one InferFunction run's mutable state: per-vertex
// in/out environments and the per-edge environments a conditional
// vertex's branches publish (§4.6 step 5/6).
type funcCtx struct {
	engine *Engine
	info   FunctionInfo

	inEnv   map[int]*types.Env
	outEnv  map[int]*types.Env
	edgeEnv map[*cfg.Edge]*types.Env

	returnTypes []*types.Type
}

func (fc *funcCtx) seedEntry() {
	env := types.NewEnv()
	for _, v := range fc.info.Scope.Variables() {
		declared := types.Unknown()
		if dt, ok := v.DeclaredType.(*types.Type); ok && dt != nil {
			declared = dt
		}
		env.SetDeclared(v.Name, declared)
	}
	fc.inEnv[fc.info.Graph.Entry.ID] = env
}

// run iterates the forward fixed point: each vertex's in-environment is
// the join of whatever its predecessors published (either a per-edge
// environment, for TRUE/FALSE/EX successors of a conditional, or the
// predecessor's plain out-environment otherwise). Iteration proceeds in
// reverse-postorder and repeats until no vertex's out-environment
// changes, which terminates because types.Join is monotone (§4.6, §4.3
// "Monotone transfer functions ensure termination").
func (fc *funcCtx) run() {
	order := fc.info.Graph.ReversePostorder()
	changed := true
	for changed {
		changed = false
		for _, v := range order {
			in := fc.joinIncoming(v)
			if v == fc.info.Graph.Entry {
				if seeded, ok := fc.inEnv[v.ID]; ok {
					in = types.JoinEnv(in, seeded)
				}
			}
			fc.inEnv[v.ID] = in

			out := fc.transfer(v, in)
			prev, ok := fc.outEnv[v.ID]
			if !ok || !types.EnvEqual(prev, out) {
				fc.outEnv[v.ID] = out
				changed = true
			}
			fc.publishEdges(v, in, out)
		}
	}
}

func (fc *funcCtx) joinIncoming(v *cfg.Vertex) *types.Env {
	var result *types.Env
	for _, e := range v.In {
		env, ok := fc.edgeEnv[e]
		if !ok {
			env, ok = fc.outEnv[e.From.ID]
			if !ok {
				continue
			}
		}
		if result == nil {
			result = env
		} else {
			result = types.JoinEnv(result, env)
		}
	}
	if result == nil {
		result = types.NewEnv()
	}
	return result
}

// publishEdges implements §4.6 step 5: "On conditional exits (TRUE/
// FALSE/EX edges), publish different environments: the TRUE successor
// sees the condition specialized truthy; the FALSE successor sees it
// falsy; the EX successor sees the entry-env (throws lose refinement)."
func (fc *funcCtx) publishEdges(v *cfg.Vertex, in, out *types.Env) {
	var trueEdge, falseEdge *cfg.Edge
	for _, e := range v.Out {
		switch e.Label {
		case cfg.OnTrue:
			trueEdge = e
		case cfg.OnFalse:
			falseEdge = e
		case cfg.OnEx:
			fc.edgeEnv[e] = in
		}
	}
	if trueEdge == nil && falseEdge == nil {
		return
	}
	truthy, falsy := specialize(v.Node, out)
	if trueEdge != nil {
		fc.edgeEnv[trueEdge] = truthy
	}
	if falseEdge != nil {
		fc.edgeEnv[falseEdge] = falsy
	}
}

// transfer walks v's statement/expression and returns the resulting
// out-environment (§4.6 step 4).
func (fc *funcCtx) transfer(v *cfg.Vertex, in *types.Env) *types.Env {
	if v.Node == nil {
		return in
	}
	ec := &exprCtx{fc: fc, vertex: v}
	out, _ := ec.evalStatement(v.Node, in.Clone())
	if v.Node.Kind == ast.KindReturn && len(v.Node.Children) > 0 {
		_, rt := ec.eval(v.Node.Children[0], out, types.Unknown(), nil)
		fc.returnTypes = append(fc.returnTypes, rt)
	} else if v.Node.Kind == ast.KindReturn {
		fc.returnTypes = append(fc.returnTypes, types.Void())
	}
	return out
}

func (fc *funcCtx) report(n *ast.Node, key diagnostic.Key, level diagnostic.Level, msg string) {
	if fc.engine.Sink == nil {
		return
	}
	rec := diagnostic.Record{Key: key, Level: level, Message: msg}
	if n != nil {
		rec.File = n.Source.File
		rec.Line = n.Source.Line
		rec.Column = n.Source.Col
	}
	fc.engine.Sink.Report(rec)
}
