package liveness

import "github.com/viant/ecmaopt/ast"

// EscapeSet is the side-output of §4.4: the bindings a caller must not
// subject to dead-code elimination because an inner function might
// observe them, directly or via `arguments`.
type EscapeSet map[*ast.Variable]bool

// ScopeOf resolves the ast.Scope rooted at a scope-root node. Callers
// pass the lookup their scope.Creator already maintains (§4.8
// incremental scope creation) rather than have this package re-derive
// parentage from the tree.
type ScopeOf func(root *ast.Node) *ast.Scope

// ComputeEscapes walks root (a function or program scope root) and its
// nested function bodies, marking a binding as escaping when:
//   - it is read from inside a function nested below its declaring
//     scope, or
//   - the containing function reads (not assigns) `arguments`, in which
//     case every one of that function's declared parameters escapes
//     (§4.4 "Assignments to arguments do not add parameters to the
//     escape set; reads of arguments do").
func ComputeEscapes(root *ast.Node, rootScope *ast.Scope, scopeOf ScopeOf) EscapeSet {
	escapes := EscapeSet{}
	w := &escapeWalker{escapes: escapes, scopeOf: scopeOf}
	w.walk(root, rootScope, rootScope)
	return escapes
}

type escapeWalker struct {
	escapes EscapeSet
	scopeOf ScopeOf
}

func isFunctionKind(k ast.NodeKind) bool {
	return k == ast.KindFunctionDecl || k == ast.KindFunctionExpr || k == ast.KindArrowFunction
}

// walk tracks both the innermost active scope (scope, which changes at
// every scope-root node, including nested blocks) and the nearest
// enclosing function scope (funcScope, which only changes at function
// boundaries), so a Name can be classified as local-to-the-function vs
// captured-from-an-enclosing-function.
func (w *escapeWalker) walk(n *ast.Node, scope, funcScope *ast.Scope) {
	if n == nil {
		return
	}

	nextScope, nextFunc := scope, funcScope
	if n.Kind.IsScopeRoot() {
		if s := w.scopeOf(n); s != nil {
			nextScope = s
			if isFunctionKind(n.Kind) || n.Kind == ast.KindProgram || n.Kind == ast.KindModule {
				nextFunc = s
			}
		}
	}

	switch n.Kind {
	case ast.KindName:
		if n.Name == "arguments" {
			w.markParameters(funcScope)
			return
		}
		v := scope.Resolve(n.Name)
		if v != nil && !withinScope(funcScope, v.Scope) {
			w.escapes[v] = true
		}
		return
	}

	for _, ch := range n.Children {
		w.walk(ch, nextScope, nextFunc)
	}
}

func (w *escapeWalker) markParameters(funcScope *ast.Scope) {
	if funcScope == nil {
		return
	}
	for _, v := range funcScope.Variables() {
		if v.Kind == ast.VariableParameter {
			w.escapes[v] = true
		}
	}
}

// withinScope reports whether candidate is funcScope or one of its
// descendants in the lexical nesting (a variable declared in an inner
// block of the same function does not escape just because it is read
// from that block).
func withinScope(funcScope, candidate *ast.Scope) bool {
	for s := candidate; s != nil; s = s.ParentScope() {
		if s == funcScope {
			return true
		}
	}
	return false
}
