package types

// Env is a typing environment: a mapping from binding name to abstract
// type, layered with a change-log bit used to discard specialization
// history at function-boundary join points (§3 "TypeEnv").
type Env struct {
	bindings map[string]*Type
	// changed marks names whose type differs from the scope's declared
	// type — i.e. names carrying specialization history rather than just
	// their nominal declared type. Joining across a function boundary
	// clears this bit set (see ClearSpecialization).
	changed map[string]bool
	// declared holds each name's declared (un-specialized) type, used as
	// the fallback when joining two envs where one is missing a key
	// (§3: "missing keys on one side are treated as the key's declared
	// type on the other (or unknown)").
	declared map[string]*Type
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{bindings: map[string]*Type{}, changed: map[string]bool{}, declared: map[string]*Type{}}
}

// Clone returns an independent copy; the forward pass clones the
// in-environment before producing each vertex's out-environment so
// sibling CFG successors never alias the same map (§4.6 step 4).
func (e *Env) Clone() *Env {
	cp := NewEnv()
	for k, v := range e.bindings {
		cp.bindings[k] = v
	}
	for k := range e.changed {
		cp.changed[k] = true
	}
	for k, v := range e.declared {
		cp.declared[k] = v
	}
	return cp
}

// Get returns the current type bound to name, or Unknown if never set.
func (e *Env) Get(name string) *Type {
	if t, ok := e.bindings[name]; ok {
		return t
	}
	if t, ok := e.declared[name]; ok {
		return t
	}
	return Unknown()
}

// SetDeclared records a binding's un-specialized declared type. Called
// once per binding when the environment is seeded (§4.6 step 3).
func (e *Env) SetDeclared(name string, t *Type) {
	e.declared[name] = t
	if _, ok := e.bindings[name]; !ok {
		e.bindings[name] = t
	}
}

// Specialize narrows name's current binding (e.g. after typeof/
// instanceof/truthy refinement) and marks it as carrying specialization
// history.
func (e *Env) Specialize(name string, t *Type) {
	e.bindings[name] = t
	e.changed[name] = true
}

// Declared returns name's declared (un-refined) type, or Unknown.
func (e *Env) Declared(name string) *Type {
	if t, ok := e.declared[name]; ok {
		return t
	}
	return Unknown()
}

// ClearSpecialization drops every specialized binding back to its
// declared type (§3: "a change-log bit used to discard specialization
// history at join points on function boundaries").
func (e *Env) ClearSpecialization() {
	for name := range e.changed {
		if d, ok := e.declared[name]; ok {
			e.bindings[name] = d
		} else {
			delete(e.bindings, name)
		}
	}
	e.changed = map[string]bool{}
}

// JoinEnv combines two environments pointwise using type Join; a name
// missing from one side falls back to that side's declared type (or
// Unknown) before joining (§3 "TypeEnv").
func JoinEnv(a, b *Env) *Env {
	if a == nil {
		return b.Clone()
	}
	if b == nil {
		return a.Clone()
	}
	out := NewEnv()
	names := map[string]bool{}
	for n := range a.bindings {
		names[n] = true
	}
	for n := range b.bindings {
		names[n] = true
	}
	for n := range names {
		at := fallback(a, n)
		bt := fallback(b, n)
		out.bindings[n] = Join(at, bt)
		if a.changed[n] || b.changed[n] {
			out.changed[n] = true
		}
	}
	for n, d := range a.declared {
		out.declared[n] = d
	}
	for n, d := range b.declared {
		if _, ok := out.declared[n]; !ok {
			out.declared[n] = d
		}
	}
	return out
}

func fallback(e *Env, name string) *Type {
	if t, ok := e.bindings[name]; ok {
		return t
	}
	if t, ok := e.declared[name]; ok {
		return t
	}
	return Unknown()
}


// Names returns every binding name currently tracked, for deterministic
// iteration by callers that need to print or compare environments.
func (e *Env) Names() []string {
	seen := map[string]bool{}
	var out []string
	for n := range e.bindings {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for n := range e.declared {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sortStrings(out)
	return out
}

// EnvEqual reports whether two environments bind the same names to equal
// types — used by the dataflow worklist's "changed?" test (§4.3) and by
// re-summary-stability tests (§8).
func EnvEqual(a, b *Env) bool {
	an, bn := a.Names(), b.Names()
	if len(an) != len(bn) {
		return false
	}
	for _, n := range an {
		if !Equal(a.Get(n), b.Get(n)) {
			return false
		}
	}
	return true
}
