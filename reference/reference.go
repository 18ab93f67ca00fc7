// Package reference collects, per function scope, every read/write/
// declare reference to every binding and derives the classifications
// later transforms (cross-module code motion, safe inlining) need
// (§4.5).
package reference

import (
	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/cfg"
	"github.com/viant/ecmaopt/liveness"
)

// Access is the read/write/declare tag a Reference carries.
type Access int

const (
	Read Access = iota
	Write
	Declare
)

// Reference is one occurrence of a binding name (§4.5: "Each reference
// records: the node, whether it is a read/write/declare, its basic
// block, whether its enclosing function is itself invoked in the
// program, and whether it participates in a getter/setter").
type Reference struct {
	Node            *ast.Node
	Variable        *ast.Variable
	Access          Access
	Vertex          *cfg.Vertex
	FunctionInvoked bool // the enclosing function is itself invoked somewhere in the program
	InAccessor      bool // occurs inside a getter/setter body
}

// Collection is every reference gathered for one function's CFG plus
// the derived predicates §4.5 defines over them.
type Collection struct {
	Graph   *cfg.Graph
	Scope   *ast.Scope
	escapes liveness.EscapeSet
	refs    []*Reference
	byVar   map[*ast.Variable][]*Reference
}

// Collect walks every vertex's node in g, classifying each Name
// occurrence resolved within scope into a Reference. functionInvoked
// and inAccessor are supplied by the caller (the compiler instance
// knows the call graph and which scope is a getter/setter body; this
// package only needs the answer, not how to compute it). escapes is
// threaded through from liveness.ComputeEscapes so Escapes can answer
// without recomputing it (SPEC_FULL.md §4.5 addition).
func Collect(g *cfg.Graph, scope *ast.Scope, escapes liveness.EscapeSet, functionInvoked, inAccessor bool) *Collection {
	c := &Collection{Graph: g, Scope: scope, escapes: escapes, byVar: map[*ast.Variable][]*Reference{}}
	for _, v := range g.Vertices {
		if v.Node == nil {
			continue
		}
		isBinding, _ := v.Annotation("binding-target")
		rc := &refCollector{collection: c, vertex: v, functionInvoked: functionInvoked, inAccessor: inAccessor}
		if isBinding == true {
			rc.walkBindingTarget(v.Node)
		} else {
			rc.walk(v.Node)
		}
	}
	return c
}

func (c *Collection) add(ref *Reference) {
	c.refs = append(c.refs, ref)
	c.byVar[ref.Variable] = append(c.byVar[ref.Variable], ref)
}

// References returns every collected reference, in collection order.
func (c *Collection) References() []*Reference { return c.refs }

// For returns every reference to v, in collection order.
func (c *Collection) For(v *ast.Variable) []*Reference { return c.byVar[v] }

// Escapes reports whether v is read from inside a nested function or
// via `arguments` (§4.5 addition, wired to liveness.EscapeSet).
func (c *Collection) Escapes(v *ast.Variable) bool {
	return c.escapes[v]
}
