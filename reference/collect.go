package reference

import (
	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/cfg"
)

type refCollector struct {
	collection      *Collection
	vertex          *cfg.Vertex
	functionInvoked bool
	inAccessor      bool
}

func (rc *refCollector) resolve(n *ast.Node) *ast.Variable {
	if n == nil || n.Kind != ast.KindName {
		return nil
	}
	return rc.collection.Scope.Resolve(n.Name)
}

func (rc *refCollector) record(n *ast.Node, access Access) {
	v := rc.resolve(n)
	if v == nil {
		return
	}
	rc.collection.add(&Reference{
		Node:            n,
		Variable:        v,
		Access:          access,
		Vertex:          rc.vertex,
		FunctionInvoked: rc.functionInvoked,
		InAccessor:      rc.inAccessor,
	})
}

// walkBindingTarget records a for-in/for-of loop variable as a Declare
// (the liveness package handles the "must not kill incoming liveness"
// side of this same node separately; this package's job is only to
// record the occurrence).
func (rc *refCollector) walkBindingTarget(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindName:
		rc.record(n, Declare)
	case ast.KindDestructuringArray, ast.KindDestructuringObject:
		for _, ch := range n.Children {
			rc.walkBindingTarget(ch)
		}
	default:
		rc.walk(n)
	}
}

func (rc *refCollector) walk(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindName:
		rc.record(n, Read)

	case ast.KindAssign:
		target := n.Children[0]
		value := n.Children[1]
		rc.walk(value)
		op, _ := n.Value.(string)
		if target.Kind == ast.KindName {
			if op != "" && op != "=" {
				rc.record(target, Read) // read-modify-write
			}
			rc.record(target, Write)
		} else {
			rc.walk(target)
		}

	case ast.KindUpdate:
		target := n.Children[0]
		if target.Kind == ast.KindName {
			rc.record(target, Read)
			rc.record(target, Write)
		} else {
			rc.walk(target)
		}

	case ast.KindDeclarator:
		target := n.Children[0]
		if len(n.Children) > 1 {
			rc.walk(n.Children[1])
		}
		if target.Kind == ast.KindName {
			rc.record(target, Declare)
		} else {
			rc.walk(target)
		}

	case ast.KindVarDecl, ast.KindLetDecl, ast.KindConstDecl:
		for _, ch := range n.Children {
			rc.walk(ch)
		}

	case ast.KindFunctionExpr, ast.KindArrowFunction, ast.KindClassExpr:
		// nested function bodies are collected through their own Collect
		// call over their own scope/CFG.
		return

	default:
		for _, ch := range n.Children {
			rc.walk(ch)
		}
	}
}
