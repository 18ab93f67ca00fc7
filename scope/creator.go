// Package scope implements the incremental scope creator (§4.7): a
// memoizing façade over scope construction that preserves scope object
// identity across repeated requests while frozen, and lazily rebuilds a
// scope's variable table when its enclosing script has been invalidated.
package scope

import "github.com/viant/ecmaopt/ast"

// Populate (re)builds root's own variable table into scope, discarding
// whatever names scope held before the call (§4.7: "stale bindings
// disappear and new ones appear"). The scope creator is binder-agnostic
// (§1, lexing/parsing out of scope), so the actual declaration rules are
// supplied by the caller — the same injected-callback shape as
// liveness.ScopeOf.
type Populate func(scope *ast.Scope, root *ast.Node)

// ScriptOf resolves root's enclosing script (compilation unit) — the
// granularity at which changes are reported and invalidation is scoped
// (§4.7 "enclosing script").
type ScriptOf func(root *ast.Node) *ast.Node

type bindingKey struct {
	scope *ast.Scope
	name  string
}

// Creator is the memoizing scope façade (§4.7: "Exposes freeze()... ,
// thaw()..., and createScope(root, parent)").
type Creator struct {
	populate Populate
	scriptOf ScriptOf

	frozen bool

	scopes        map[*ast.Node]*ast.Scope
	scopeScript   map[*ast.Scope]*ast.Node
	scopeVersion  map[*ast.Scope]int
	scriptVersion map[*ast.Node]int

	// attribution records which (scope, name) bindings a script has ever
	// declared, across any scope — not just the scopes rooted directly
	// inside it — so Invalidate can forget a binding even after it has
	// moved to a scope under a different script (§4.7 "forget... even if
	// that binding has since moved to a different script").
	attribution map[*ast.Node]map[bindingKey]bool
}

func NewCreator(populate Populate, scriptOf ScriptOf) *Creator {
	return &Creator{
		populate:      populate,
		scriptOf:      scriptOf,
		scopes:        map[*ast.Node]*ast.Scope{},
		scopeScript:   map[*ast.Scope]*ast.Node{},
		scopeVersion:  map[*ast.Scope]int{},
		scriptVersion: map[*ast.Node]int{},
		attribution:   map[*ast.Node]map[bindingKey]bool{},
	}
}

// Freeze disallows further rebuilds: every subsequent CreateScope call
// returns the memoized object verbatim, even if its script was
// invalidated while frozen (the refresh is deferred to the next
// Thaw+CreateScope cycle).
func (c *Creator) Freeze() { c.frozen = true }

// Thaw permits CreateScope to lazily refresh scopes whose script has
// been invalidated since their last populate.
func (c *Creator) Thaw() { c.frozen = false }

// Invalidate marks script as changed (§4.7 "scripts whose enclosing
// script has been reported as changed"). Any binding ever attributed to
// script is forgotten immediately, from whatever scope currently holds
// it — including one under a different script, if the binding moved —
// and scopes rooted directly in script become eligible for lazy refresh
// the next time they're requested while thawed.
func (c *Creator) Invalidate(script *ast.Node) {
	c.scriptVersion[script]++
	for key := range c.attribution[script] {
		key.scope.Forget(key.name)
	}
	delete(c.attribution, script)
}

// CreateScope returns the memoized scope for root, creating it on first
// request. While frozen, a second call with the same root always
// returns the identical object with no rebuild (§8 "scope identity under
// freeze"). While thawed, if root's scope exists but its script was
// invalidated since the scope's variables were last populated, the
// scope is refreshed in place: same object, rebuilt variable table.
func (c *Creator) CreateScope(root *ast.Node, parent *ast.Scope) *ast.Scope {
	script := c.scriptOf(root)
	if s, ok := c.scopes[root]; ok {
		if !c.frozen && c.scopeVersion[s] != c.scriptVersion[script] {
			c.refresh(s, root, script)
		}
		return s
	}
	s := ast.NewScope(root, parent, blockScopingFor(root))
	c.scopes[root] = s
	c.scopeScript[s] = script
	c.refresh(s, root, script)
	return s
}

func (c *Creator) refresh(s *ast.Scope, root *ast.Node, script *ast.Node) {
	c.populate(s, root)
	for _, v := range s.Variables() {
		c.attribute(script, s, v.Name)
	}
	c.scopeVersion[s] = c.scriptVersion[script]
}

func (c *Creator) attribute(script *ast.Node, s *ast.Scope, name string) {
	set, ok := c.attribution[script]
	if !ok {
		set = map[bindingKey]bool{}
		c.attribution[script] = set
	}
	set[bindingKey{scope: s, name: name}] = true
}

// ScopeOf satisfies liveness.ScopeOf: it looks up the already-created
// scope for root, or nil if CreateScope has not been called for it yet.
// Callers that need escape analysis must create every scope in the
// function before calling liveness.ComputeEscapes.
func (c *Creator) ScopeOf(root *ast.Node) *ast.Scope {
	return c.scopes[root]
}

// blockScopingFor decides §3's BlockScoping flag for a freshly created
// scope from its root's kind: function-like roots hoist var/function
// declarations across their whole body, while Block/Catch/For(-In/-Of)
// roots only ever hold let/const/catch-binding block scoping.
func blockScopingFor(root *ast.Node) bool {
	switch root.Kind {
	case ast.KindBlock, ast.KindCatch, ast.KindFor, ast.KindForIn, ast.KindForOf:
		return true
	default:
		return false
	}
}
