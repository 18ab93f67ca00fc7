package ast

// VariableKind classifies how a binding came to exist (§3 DATA MODEL).
type VariableKind int

const (
	VariableParameter VariableKind = iota
	VariableVarDecl
	VariableLexicalDecl // let/const/class block binding
	VariableFunctionDecl
	VariableClassDecl
	VariableCatchBinding
	VariableExtern
)

// Variable is a name binding (§3 DATA MODEL).
type Variable struct {
	Name         string
	Defining     *Node
	DeclaredType interface{} // *types.Type once resolved; nil means inferred
	Kind         VariableKind
	Scope        *Scope

	// Index is a stable, per-scope dense index used by liveness's bitmap
	// state (§4.4: "a bitmap indexed by variable-index-within-scope").
	Index int
}

// Scope is a region of lexical binding attached to a scope-root node
// (§3 DATA MODEL, GLOSSARY "Scope root"). Scopes are long-lived and
// shared: scope.Creator hands out the same *Scope across calls while
// frozen (§4.7).
type Scope struct {
	Root          *Node
	Parent        *Scope
	BlockScoping  bool // true for let/const/class/catch/module-level scopes
	vars          map[string]*Variable
	order         []string // declaration order, for deterministic AccessibleVars
}

// NewScope creates an empty scope rooted at root.
func NewScope(root *Node, parent *Scope, blockScoping bool) *Scope {
	return &Scope{Root: root, Parent: parent, BlockScoping: blockScoping, vars: map[string]*Variable{}}
}

// Declare registers v in this scope under v.Name, assigning it the next
// dense index. Re-declaring the same name replaces the prior binding
// (callers are responsible for conformance around duplicate declarations,
// §9 Open Questions).
func (s *Scope) Declare(v *Variable) {
	if _, exists := s.vars[v.Name]; !exists {
		v.Index = len(s.order)
		s.order = append(s.order, v.Name)
	} else {
		// preserve the original index so existing liveness bitmaps stay valid
		v.Index = s.vars[v.Name].Index
	}
	v.Scope = s
	s.vars[v.Name] = v
}

// Lookup resolves name in this scope only (no ancestor walk).
func (s *Scope) Lookup(name string) *Variable {
	return s.vars[name]
}

// Forget removes name's binding from this scope, if present (§4.7
// "every binding previously attributed to that script is forgotten").
// Declaration order of the remaining bindings is preserved; forgotten
// names simply leave a gap rather than shifting other bindings' Index.
func (s *Scope) Forget(name string) {
	if _, ok := s.vars[name]; !ok {
		return
	}
	delete(s.vars, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Resolve walks this scope and its ancestors, returning the nearest
// binding for name, or nil if undeclared (§4.1 "lookup(name) -> Variable?").
func (s *Scope) Resolve(name string) *Variable {
	for cur := s; cur != nil; cur = cur.Parent {
		if v := cur.vars[name]; v != nil {
			return v
		}
	}
	return nil
}

// Declared reports whether name is bound in this scope, optionally also
// searching ancestors (§4.1 "declared(name, includeAncestors) -> bool").
func (s *Scope) Declared(name string, includeAncestors bool) bool {
	if _, ok := s.vars[name]; ok {
		return true
	}
	if !includeAncestors {
		return false
	}
	for cur := s.Parent; cur != nil; cur = cur.Parent {
		if _, ok := cur.vars[name]; ok {
			return true
		}
	}
	return false
}

// AccessibleVars returns every in-scope binding, walking up through
// parents, innermost scope wins on name collision (§4.1
// "accessibleVars()").
func (s *Scope) AccessibleVars() []*Variable {
	seen := map[string]bool{}
	var out []*Variable
	for cur := s; cur != nil; cur = cur.Parent {
		for _, name := range cur.order {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, cur.vars[name])
		}
	}
	return out
}

// ParentScope returns the lexically enclosing scope, or nil for the program
// root (§4.1 "parent()").
func (s *Scope) ParentScope() *Scope {
	return s.Parent
}

// Len reports the number of directly-declared bindings; liveness uses
// this to size its per-scope bitmaps.
func (s *Scope) Len() int {
	return len(s.order)
}

// Variables returns the directly-declared bindings in declaration order.
func (s *Scope) Variables() []*Variable {
	out := make([]*Variable, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.vars[name])
	}
	return out
}
