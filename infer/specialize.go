package infer

import (
	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/types"
)

// specialize implements §4.6's five mandatory specialization rules: it
// takes the condition node guarding a conditional vertex's TRUE/FALSE
// successors and the environment at that vertex's exit, and returns the
// environment each successor should see.
func specialize(cond *ast.Node, env *types.Env) (truthy, falsy *types.Env) {
	if cond == nil || env == nil {
		return env, env
	}
	switch cond.Kind {
	case ast.KindUnary:
		if op, _ := cond.Value.(string); op == "!" && len(cond.Children) > 0 {
			// "!x swaps TRUE/FALSE specialization."
			inner := cond.Children[0]
			t, f := specialize(inner, env)
			return f, t
		}

	case ast.KindBinary:
		op, _ := cond.Value.(string)
		left, right := cond.Children[0], cond.Children[1]

		if isTypeOf(left) && isStringLiteral(right) && (op == "===" || op == "==") {
			return specializeTypeOf(left, right, env)
		}
		if isTypeOf(right) && isStringLiteral(left) && (op == "===" || op == "==") {
			return specializeTypeOf(right, left, env)
		}
		if (op == "==" || op == "===") && isNullish(right) {
			return specializeNullCheck(left, env, true)
		}
		if (op == "==" || op == "===") && isNullish(left) {
			return specializeNullCheck(right, env, true)
		}
		if (op == "!=" || op == "!==") && isNullish(right) {
			f, t := specializeNullCheck(left, env, true)
			return t, f
		}
		if (op == "!=" || op == "!==") && isNullish(left) {
			f, t := specializeNullCheck(right, env, true)
			return t, f
		}

	case ast.KindInstanceOf:
		return specializeInstanceOf(cond, env)

	case ast.KindLogicalAnd:
		// "TRUE side of && specializes both operands truthy."
		left, right := cond.Children[0], cond.Children[1]
		leftTruthy, _ := specialize(left, env)
		bothTruthy, _ := specialize(right, leftTruthy)
		return bothTruthy, env

	case ast.KindLogicalOr:
		// "FALSE side of || specializes both falsy."
		left, right := cond.Children[0], cond.Children[1]
		_, leftFalsy := specialize(left, env)
		_, bothFalsy := specialize(right, leftFalsy)
		return env, bothFalsy
	}
	return env, env
}

func isTypeOf(n *ast.Node) bool {
	if n.Kind == ast.KindTypeOf {
		return true
	}
	op, _ := n.Value.(string)
	return n.Kind == ast.KindUnary && op == "typeof"
}

func isStringLiteral(n *ast.Node) bool {
	return n.Kind == ast.KindStringLiteral
}

func isNullish(n *ast.Node) bool {
	return n.Kind == ast.KindNullLiteral || n.Kind == ast.KindUndefinedLiteral
}

var typeOfNames = map[string]*types.Type{
	"string":    types.String(),
	"number":    types.Number(),
	"boolean":   types.Boolean(),
	"undefined": types.Void(),
	"function":  types.Function(nil, nil, types.Unknown(), nil, false, nil),
	"object":    types.Object(nil, true),
}

// specializeTypeOf handles "typeof x === 'string'" (§4.6: "typeof x ===
// 'string' on the TRUE branch narrows x to string").
func specializeTypeOf(typeOfExpr, literal *ast.Node, env *types.Env) (truthy, falsy *types.Env) {
	operand := operandOf(typeOfExpr)
	if operand == nil || operand.Kind != ast.KindName {
		return env, env
	}
	lit, _ := literal.Value.(string)
	target, ok := typeOfNames[lit]
	if !ok {
		return env, env
	}
	truthy = env.Clone()
	truthy.Specialize(operand.Name, types.Specialize(env.Get(operand.Name), target))
	return truthy, env
}

func operandOf(n *ast.Node) *ast.Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// specializeInstanceOf handles "x instanceof Ctor" (§4.6: narrows x to
// the instance type of Ctor on TRUE).
func specializeInstanceOf(n *ast.Node, env *types.Env) (truthy, falsy *types.Env) {
	target := n.Children[0]
	ctor := n.Children[1]
	if target.Kind != ast.KindName || ctor.Kind != ast.KindName {
		return env, env
	}
	instanceType := types.Nominal(ctor.Name, nil, nil)
	truthy = env.Clone()
	truthy.Specialize(target.Name, types.Specialize(env.Get(target.Name), instanceType))
	return truthy, env
}

// specializeNullCheck handles "x == null" (§4.6: narrows to
// null|undefined on TRUE, removes them on FALSE).
func specializeNullCheck(target *ast.Node, env *types.Env, removeOnFalse bool) (truthy, falsy *types.Env) {
	if target.Kind != ast.KindName {
		return env, env
	}
	cur := env.Get(target.Name)
	truthy = env.Clone()
	truthy.Specialize(target.Name, types.Union(types.Null(), types.Void()))
	falsy = env
	if removeOnFalse {
		falsy = env.Clone()
		without := types.RemoveType(cur, types.Null())
		without = types.RemoveType(without, types.Void())
		falsy.Specialize(target.Name, without)
	}
	return truthy, falsy
}
