package reference

import "github.com/viant/ecmaopt/ast"

// AssignedOnce reports whether v has exactly one write, and that write
// is not inside any loop, nor inside a function that could run more
// than once (§4.5 "Assigned-once-in-lifetime"). The latter condition
// is the caller's to assert via functionMayRunMultiple — a Collection
// is scoped to a single function's CFG and has no visibility into
// whether that function itself is invoked more than once.
func (c *Collection) AssignedOnce(v *ast.Variable, functionMayRunMultiple bool) bool {
	if functionMayRunMultiple {
		return false
	}
	var writes int
	var theWrite *Reference
	for _, ref := range c.byVar[v] {
		if ref.Access == Write || ref.Access == Declare {
			writes++
			theWrite = ref
		}
	}
	if writes != 1 {
		return false
	}
	inLoop, _ := theWrite.Vertex.Annotation("in-loop")
	return inLoop != true
}

// WellDefined reports whether every read of v is dominated by some
// write (or declaration) of v (§4.5 "Well-defined").
func (c *Collection) WellDefined(v *ast.Variable) bool {
	refs := c.byVar[v]
	var writes []*Reference
	for _, ref := range refs {
		if ref.Access == Write || ref.Access == Declare {
			writes = append(writes, ref)
		}
	}
	if len(writes) == 0 {
		return false
	}
	for _, ref := range refs {
		if ref.Access != Read {
			continue
		}
		dominated := false
		for _, w := range writes {
			if c.Graph.Dominates(w.Vertex, ref.Vertex) {
				dominated = true
				break
			}
		}
		if !dominated {
			return false
		}
	}
	return true
}

// isPureLiteralOrFunction reports whether n is a literal, a function
// expression/arrow function (evaluated once, with no observable side
// effect at definition time), or a sequence of such.
func isPureLiteralOrFunction(n *ast.Node) bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case ast.KindNumberLiteral, ast.KindStringLiteral, ast.KindBooleanLiteral,
		ast.KindNullLiteral, ast.KindUndefinedLiteral, ast.KindRegexLiteral,
		ast.KindFunctionExpr, ast.KindArrowFunction, ast.KindName:
		return true
	case ast.KindArrayLiteral, ast.KindObjectLiteral, ast.KindProperty:
		for _, ch := range n.Children {
			if !isPureLiteralOrFunction(ch) {
				return false
			}
		}
		return true
	}
	return false
}

// isPrototypeHelperCall recognizes the common `Object.create(...)` /
// `util.inherits(...)`-style prototype-wiring call pattern: a Call
// whose callee is a Selector, with no further side effects of concern
// to code motion.
func isPrototypeHelperCall(n *ast.Node) bool {
	if n == nil || n.Kind != ast.KindCall || len(n.Children) == 0 {
		return false
	}
	return n.Children[0].Kind == ast.KindSelector
}

// MovableDeclaration reports whether v's initializer is safe to hoist
// or sink across statements: it references only well-defined,
// assigned-once bindings, uses only pure literals/functions, or is a
// prototype-inheritance helper call (§4.5 "Movable declaration").
func (c *Collection) MovableDeclaration(v *ast.Variable, functionMayRunMultiple bool) bool {
	var decl *Reference
	for _, ref := range c.byVar[v] {
		if ref.Access == Declare {
			decl = ref
			break
		}
	}
	if decl == nil || decl.Node.Parent == nil {
		return false
	}
	declarator := decl.Node.Parent
	if declarator.Kind != ast.KindDeclarator || len(declarator.Children) < 2 {
		// no initializer: trivially movable.
		return true
	}
	init := declarator.Children[1]
	if isPureLiteralOrFunction(init) || isPrototypeHelperCall(init) {
		return referencedBindingsAreSafe(c, init, functionMayRunMultiple)
	}
	return false
}

func referencedBindingsAreSafe(c *Collection, n *ast.Node, functionMayRunMultiple bool) bool {
	if n == nil {
		return true
	}
	if n.Kind == ast.KindName {
		ref := c.Scope.Resolve(n.Name)
		if ref == nil {
			return true // extern/global, assumed stable
		}
		return c.WellDefined(ref) && c.AssignedOnce(ref, functionMayRunMultiple)
	}
	for _, ch := range n.Children {
		if !referencedBindingsAreSafe(c, ch, functionMayRunMultiple) {
			return false
		}
	}
	return true
}
