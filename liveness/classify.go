package liveness

import "github.com/viant/ecmaopt/ast"

// classify walks the expression/statement rooted at n and splits every
// variable reference belonging to scope into a read or an unconditional
// kill. Conditional kills (short-circuit assignments, §4.4) get no
// special handling here: cfg.Build isolates each operand of an expression
// statement whose expression is a top-level `&&`/`||` into its own
// vertex, so the backward engine applies such a kill only along the path
// where it executes. An assignment inside a short-circuit operand
// anywhere else (a condition, an initializer, an assignment's right-hand
// side) shares its vertex with the rest of the expression and is
// classified as an unconditional kill.
//
// isBindingTarget marks a for-in/for-of loop's per-iteration binding
// node: the loop may run zero iterations, so its target must not kill
// whatever liveness reached the header from before the loop (§4.4).
func classify(n *ast.Node, scope *ast.Scope, isBindingTarget bool) (reads, kills []int) {
	c := &classifier{scope: scope}
	if isBindingTarget {
		c.walkBindingTarget(n)
	} else {
		c.walk(n)
	}
	return c.reads, c.kills
}

type classifier struct {
	scope *ast.Scope
	reads []int
	kills []int
}

func (c *classifier) resolve(n *ast.Node) (int, bool) {
	if n == nil || n.Kind != ast.KindName {
		return 0, false
	}
	v := c.scope.Resolve(n.Name)
	if v == nil || v.Scope != c.scope {
		// outer-scope or unresolved binding: not part of this scope's
		// bitmap (picked up by the enclosing scope's own Analyze call).
		return 0, false
	}
	return v.Index, true
}

func (c *classifier) addRead(n *ast.Node) {
	if idx, ok := c.resolve(n); ok {
		c.reads = append(c.reads, idx)
	}
}

func (c *classifier) addKill(n *ast.Node) {
	if idx, ok := c.resolve(n); ok {
		c.kills = append(c.kills, idx)
	}
}

// walkBindingTarget records the loop binding as declared without
// killing it; nested destructuring still contributes reads for any
// computed property keys.
func (c *classifier) walkBindingTarget(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindName:
		// no kill: see isBindingTarget doc above.
	case ast.KindDestructuringArray, ast.KindDestructuringObject:
		for _, ch := range n.Children {
			c.walkBindingTarget(ch)
		}
	default:
		c.walk(n)
	}
}

func (c *classifier) walk(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindName:
		c.addRead(n)

	case ast.KindAssign:
		target := n.Children[0]
		value := n.Children[1]
		c.walk(value)
		op, _ := n.Value.(string)
		if target.Kind == ast.KindName {
			if op == "" || op == "=" {
				c.addKill(target)
			} else {
				// read-modify-write (e.g. `+=`): reads, then writes, the
				// same binding — not an unconditional kill (§4.4).
				c.addRead(target)
				c.addKill(target)
			}
		} else {
			c.walk(target)
		}

	case ast.KindUpdate:
		target := n.Children[0]
		if target.Kind == ast.KindName {
			c.addRead(target)
			c.addKill(target)
		} else {
			c.walk(target)
		}

	case ast.KindDeclarator:
		target := n.Children[0]
		if len(n.Children) > 1 {
			c.walk(n.Children[1])
		}
		if target.Kind == ast.KindName {
			c.addKill(target)
		} else {
			c.walk(target)
		}

	case ast.KindVarDecl, ast.KindLetDecl, ast.KindConstDecl:
		for _, ch := range n.Children {
			c.walk(ch)
		}

	case ast.KindFunctionExpr, ast.KindArrowFunction, ast.KindClassExpr:
		// nested function: its own body is analyzed by its own Analyze
		// call over its own scope; captured outer bindings are handled by
		// EscapeSet, not by this scope's bitmap.
		return

	default:
		for _, ch := range n.Children {
			c.walk(ch)
		}
	}
}
