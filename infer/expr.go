package infer

import (
	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/cfg"
	"github.com/viant/ecmaopt/diagnostic"
	"github.com/viant/ecmaopt/types"
)

type exprCtx struct {
	fc     *funcCtx
	vertex *cfg.Vertex
}

// evalStatement unwraps the handful of statement shapes a CFG vertex's
// Node can take (§4.2: vertices are statements, or the specific
// expression boundaries the builder chose) down to the expression(s)
// eval actually type-checks.
func (ec *exprCtx) evalStatement(n *ast.Node, env *types.Env) (*types.Env, *types.Type) {
	switch n.Kind {
	case ast.KindExprStatement:
		if len(n.Children) == 0 {
			return env, types.Void()
		}
		return ec.eval(n.Children[0], env, types.Unknown(), nil)

	case ast.KindVarDecl, ast.KindLetDecl, ast.KindConstDecl:
		for _, d := range n.Children {
			env, _ = ec.evalDeclarator(d, env)
		}
		return env, types.Void()

	case ast.KindReturn:
		if len(n.Children) == 0 {
			return env, types.Void()
		}
		return ec.eval(n.Children[0], env, ec.fc.info.Return, nil)

	case ast.KindThrow:
		if len(n.Children) == 0 {
			return env, types.Void()
		}
		return ec.eval(n.Children[0], env, types.Unknown(), nil)

	case ast.KindBreak, ast.KindContinue, ast.KindEmpty:
		return env, types.Void()

	default:
		// if/while/for/for-in/for-of headers, switch case tests, and
		// catch bindings all hand the builder the bare expression/binding
		// node as Vertex.Node.
		return ec.eval(n, env, types.Unknown(), nil)
	}
}

func (ec *exprCtx) evalDeclarator(n *ast.Node, env *types.Env) (*types.Env, *types.Type) {
	if n.Kind != ast.KindDeclarator {
		return ec.eval(n, env, types.Unknown(), nil)
	}
	target := n.Children[0]
	var initType *types.Type = types.Void()
	if len(n.Children) > 1 {
		env, initType = ec.eval(n.Children[1], env, types.Unknown(), nil)
	}
	if target.Kind == ast.KindName {
		env.SetDeclared(target.Name, initType)
		env.Specialize(target.Name, initType)
	}
	return env, initType
}

// eval implements §4.6 step 4's expression-rule contract:
// (expr, inEnv, requiredType, specializedType) -> (outEnv, resultType).
func (ec *exprCtx) eval(n *ast.Node, env *types.Env, required *types.Type, specialized *types.Type) (*types.Env, *types.Type) {
	if n == nil {
		return env, types.Unknown()
	}
	switch n.Kind {
	case ast.KindNumberLiteral:
		return env, types.Number()
	case ast.KindStringLiteral:
		return env, types.String()
	case ast.KindBooleanLiteral:
		return env, types.Boolean()
	case ast.KindNullLiteral:
		return env, types.Null()
	case ast.KindUndefinedLiteral:
		return env, types.Void()
	case ast.KindRegexLiteral:
		return env, types.Nominal("RegExp", nil, nil)
	case ast.KindTemplateLiteral:
		for _, ch := range n.Children {
			env, _ = ec.eval(ch, env, types.Unknown(), nil)
		}
		return env, types.String()

	case ast.KindName:
		if got := env.Get(n.Name); got != nil {
			return env, got
		}
		return env, types.Unknown()

	case ast.KindBinary:
		left := n.Children[0]
		right := n.Children[1]
		var lt, rt *types.Type
		env, lt = ec.eval(left, env, types.Unknown(), nil)
		env, rt = ec.eval(right, env, types.Unknown(), nil)
		op, _ := n.Value.(string)
		return env, binaryResultType(op, lt, rt)

	case ast.KindLogicalAnd, ast.KindLogicalOr:
		left := n.Children[0]
		right := n.Children[1]
		var lt, rt *types.Type
		env, lt = ec.eval(left, env, types.Unknown(), nil)
		env, rt = ec.eval(right, env, types.Unknown(), nil)
		return env, types.Join(lt, rt)

	case ast.KindUnary:
		op, _ := n.Value.(string)
		var operandEnv *types.Env = env
		if len(n.Children) > 0 {
			operandEnv, _ = ec.eval(n.Children[0], env, types.Unknown(), nil)
		}
		return operandEnv, unaryResultType(op)

	case ast.KindTypeOf:
		if len(n.Children) > 0 {
			env, _ = ec.eval(n.Children[0], env, types.Unknown(), nil)
		}
		return env, types.String()

	case ast.KindInstanceOf:
		env, _ = ec.eval(n.Children[0], env, types.Unknown(), nil)
		env, _ = ec.eval(n.Children[1], env, types.Unknown(), nil)
		return env, types.Boolean()

	case ast.KindUpdate:
		target := n.Children[0]
		if target.Kind == ast.KindName {
			env.Specialize(target.Name, types.Number())
		}
		return env, types.Number()

	case ast.KindAssign:
		return ec.evalAssign(n, env)

	case ast.KindConditional:
		env, _ = ec.eval(n.Children[0], env, types.Unknown(), nil)
		truthy, falsy := specialize(n.Children[0], env)
		thenEnv, thenType := ec.eval(n.Children[1], truthy, required, nil)
		elseEnv, elseType := ec.eval(n.Children[2], falsy, required, nil)
		return types.JoinEnv(thenEnv, elseEnv), types.Join(thenType, elseType)

	case ast.KindCall:
		return ec.evalCall(n, env)

	case ast.KindNew:
		calleeType := types.Unknown()
		if len(n.Children) > 0 {
			env, calleeType = ec.eval(n.Children[0], env, types.Unknown(), nil)
		}
		for _, arg := range n.Children[1:] {
			env, _ = ec.eval(arg, env, types.Unknown(), nil)
		}
		if calleeType.Kind == types.KindFunction && calleeType.Receiver != nil {
			return env, calleeType.Receiver
		}
		if calleeType.Kind == types.KindNominal {
			return env, calleeType
		}
		return env, types.Unknown()

	case ast.KindSelector:
		env, objType := ec.eval(n.Children[0], env, types.Unknown(), nil)
		if !types.MayHaveProp(objType, n.Name) {
			ec.fc.report(n, diagnostic.KeyInexistentProperty, diagnostic.LevelError,
				"property '"+n.Name+"' does not exist on type "+objType.String())
		} else if objType.OpenProperties && objType.Properties[n.Name] == nil {
			ec.fc.report(n, diagnostic.KeyPossibleInexistentProp, diagnostic.LevelWarning,
				"property '"+n.Name+"' may not exist on type "+objType.String())
		}
		return env, types.GetProp(objType, n.Name)

	case ast.KindIndex:
		env, _ = ec.eval(n.Children[0], env, types.Unknown(), nil)
		env, _ = ec.eval(n.Children[1], env, types.Unknown(), nil)
		return env, types.Unknown()

	case ast.KindSpread:
		if len(n.Children) > 0 {
			return ec.eval(n.Children[0], env, types.Unknown(), nil)
		}
		return env, types.Unknown()

	case ast.KindArrayLiteral:
		for _, ch := range n.Children {
			env, _ = ec.eval(ch, env, types.Unknown(), nil)
		}
		return env, types.Object(nil, true)

	case ast.KindObjectLiteral:
		props := map[string]*types.Type{}
		for _, prop := range n.Children {
			if prop.Kind != ast.KindProperty || len(prop.Children) == 0 {
				continue
			}
			var vt *types.Type
			env, vt = ec.eval(prop.Children[0], env, types.Unknown(), nil)
			props[prop.Name] = vt
		}
		return env, types.Object(props, false)

	case ast.KindSequence:
		var last *types.Type = types.Void()
		for _, ch := range n.Children {
			env, last = ec.eval(ch, env, types.Unknown(), nil)
		}
		return env, last

	case ast.KindFunctionExpr, ast.KindArrowFunction, ast.KindClassExpr:
		if s, ok := ec.fc.engine.SummaryFor(n); ok {
			return env, s.FuncType()
		}
		return env, types.Unknown()

	default:
		for _, ch := range n.Children {
			env, _ = ec.eval(ch, env, types.Unknown(), nil)
		}
		return env, types.Unknown()
	}
}

func (ec *exprCtx) evalAssign(n *ast.Node, env *types.Env) (*types.Env, *types.Type) {
	target := n.Children[0]
	value := n.Children[1]
	env, valueType := ec.eval(value, env, types.Unknown(), nil)
	op, _ := n.Value.(string)
	resultType := valueType
	if op != "" && op != "=" && target.Kind == ast.KindName {
		if cur := env.Get(target.Name); cur != nil {
			resultType = binaryResultType(compoundBaseOp(op), cur, valueType)
		}
	}
	if target.Kind == ast.KindName {
		if declared := env.Declared(target.Name); declared != nil && declared.IsConcrete() && resultType.IsConcrete() {
			if !types.SubtypeOf(resultType, declared) {
				ec.fc.report(n, diagnostic.KeyTypeMismatch, diagnostic.LevelError,
					"cannot assign "+resultType.String()+" to "+declared.String())
			}
		}
		env.Specialize(target.Name, resultType)
	} else {
		env, _ = ec.eval(target, env, types.Unknown(), nil)
	}
	return env, resultType
}

func compoundBaseOp(op string) string {
	if len(op) > 1 && op[len(op)-1] == '=' {
		return op[:len(op)-1]
	}
	return op
}

func binaryResultType(op string, lt, rt *types.Type) *types.Type {
	switch op {
	case "<", ">", "<=", ">=", "==", "===", "!=", "!==":
		return types.Boolean()
	case "+":
		if types.Equal(lt, types.String()) || types.Equal(rt, types.String()) {
			return types.String()
		}
		if lt.IsConcrete() && rt.IsConcrete() {
			return types.Number()
		}
		return types.Unknown()
	case "-", "*", "/", "%", "<<", ">>", ">>>", "&", "|", "^", "**":
		return types.Number()
	case "&&", "||":
		return types.Join(lt, rt)
	default:
		return types.Unknown()
	}
}

func unaryResultType(op string) *types.Type {
	switch op {
	case "!":
		return types.Boolean()
	case "typeof":
		return types.String()
	case "void":
		return types.Void()
	case "delete":
		return types.Boolean()
	default:
		return types.Number()
	}
}
