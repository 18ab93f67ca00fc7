package types

// Join computes the least upper bound of a and b (§3 "Lattice state",
// §4.6 "join(a, b)"). Unknown is the identity element for Join (§4.6:
// "unknown (= top in meet, identity in join for specialization)"), so
// joining a concrete type with Unknown yields that concrete type back —
// this is what lets per-variable type join at CFG merge points (§4.6
// step 6) recover precision instead of collapsing to Unknown the moment
// one predecessor hasn't run yet.
func Join(a, b *Type) *Type {
	if a == nil {
		a = Bottom()
	}
	if b == nil {
		b = Bottom()
	}
	if a.Kind == KindBottom {
		return b
	}
	if b.Kind == KindBottom {
		return a
	}
	if a.Kind == KindUnknown {
		return b
	}
	if b.Kind == KindUnknown {
		return a
	}
	if a.Kind == KindTop || b.Kind == KindTop {
		return Top()
	}
	if Equal(a, b) {
		return stripRefinement(a)
	}
	// nominal supertype chains: join walks up to a common ancestor
	if a.Kind == KindNominal && b.Kind == KindNominal {
		if anc := commonAncestor(a, b); anc != nil {
			return anc
		}
	}
	return Union(a, b)
}

func stripRefinement(t *Type) *Type {
	if t.Refinement == RefinementNone {
		return t
	}
	cp := *t
	cp.Refinement = RefinementNone
	return &cp
}

func commonAncestor(a, b *Type) *Type {
	ancestors := map[string]*Type{}
	for cur := a; cur != nil; cur = cur.Super {
		ancestors[cur.Name] = cur
	}
	for cur := b; cur != nil; cur = cur.Super {
		if anc, ok := ancestors[cur.Name]; ok {
			return anc
		}
	}
	return nil
}

// Meet computes the greatest lower bound (§4.6 "meet(a, b)"). Unknown
// behaves as Top under meet.
func Meet(a, b *Type) *Type {
	if a == nil {
		a = Top()
	}
	if b == nil {
		b = Top()
	}
	if a.Kind == KindUnknown {
		return b
	}
	if b.Kind == KindUnknown {
		return a
	}
	if a.Kind == KindTop {
		return b
	}
	if b.Kind == KindTop {
		return a
	}
	if Equal(a, b) {
		return a
	}
	if SubtypeOf(a, b) {
		return a
	}
	if SubtypeOf(b, a) {
		return b
	}
	return Bottom()
}

// SubtypeOf reports whether a is a subtype of b (§4.6 "subtypeOf(a, b)").
// Unknown is treated as both a subtype and a supertype of every type:
// it never blocks a subtype check from the caller's point of view.
func SubtypeOf(a, b *Type) bool {
	if a == nil || b == nil {
		return true
	}
	if a.Kind == KindUnknown || b.Kind == KindTop || b.Kind == KindUnknown {
		return true
	}
	if a.Kind == KindBottom {
		return true
	}
	if Equal(a, b) {
		return true
	}
	if b.Kind == KindUnion {
		for _, m := range b.Members {
			if SubtypeOf(a, m) {
				return true
			}
		}
		return false
	}
	if a.Kind == KindUnion {
		for _, m := range a.Members {
			if !SubtypeOf(m, b) {
				return false
			}
		}
		return true
	}
	if a.Kind == KindNominal && b.Kind == KindNominal {
		for cur := a; cur != nil; cur = cur.Super {
			if cur.Name == b.Name {
				return true
			}
		}
		return false
	}
	if a.Kind == KindObject && b.Kind == KindObject {
		for name, bt := range b.Properties {
			at, ok := a.Properties[name]
			if !ok {
				if b.OpenProperties {
					continue
				}
				return false
			}
			if !SubtypeOf(at, bt) {
				return false
			}
		}
		return true
	}
	if a.Kind == KindFunction && b.Kind == KindFunction {
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			// contravariant in parameter types
			if !SubtypeOf(b.Params[i].Type, a.Params[i].Type) {
				return false
			}
		}
		return SubtypeOf(a.Return, b.Return)
	}
	return false
}

// Specialize sharpens a within the remaining possibilities implied by
// toward (§4.6 "specialize(a, toward)"), used for typeof/instanceof/
// truthy narrowing. It never returns a type outside of a's possibility
// space unless a is Unknown, in which case toward is adopted outright.
func Specialize(a, toward *Type) *Type {
	if a == nil || a.Kind == KindUnknown || a.Kind == KindTop {
		return toward
	}
	if toward == nil {
		return a
	}
	if a.Kind == KindUnion {
		var kept []*Type
		for _, m := range a.Members {
			if SubtypeOf(m, toward) || SubtypeOf(toward, m) {
				kept = append(kept, Meet(m, toward))
			}
		}
		return Union(kept...)
	}
	if SubtypeOf(a, toward) || SubtypeOf(toward, a) {
		return Meet(a, toward)
	}
	return Bottom()
}

// RemoveType removes toRemove from a's possibility space (§4.6
// "removeType(a, toRemove)"), used by the `x == null` FALSE-branch rule.
func RemoveType(a, toRemove *Type) *Type {
	if a == nil {
		return a
	}
	if a.Kind == KindUnion {
		var kept []*Type
		for _, m := range a.Members {
			if !Equal(m, toRemove) {
				kept = append(kept, m)
			}
		}
		return Union(kept...)
	}
	if Equal(a, toRemove) {
		return Bottom()
	}
	return a
}

// WithProperty returns a copy of t with name bound to propType (§4.6
// "withProperty"). Non-object/nominal receivers are returned unchanged.
func WithProperty(t *Type, name string, propType *Type) *Type {
	if t == nil || (t.Kind != KindObject && t.Kind != KindNominal) {
		return t
	}
	cp := *t
	cp.Properties = make(map[string]*Type, len(t.Properties)+1)
	for k, v := range t.Properties {
		cp.Properties[k] = v
	}
	cp.Properties[name] = propType
	return &cp
}

// GetProp returns the type of property name on t, walking the nominal
// superclass chain, or Unknown if t has no knowledge of it (§4.6
// "getProp"). For an open (loose) object/nominal type, a miss still
// returns Unknown rather than Bottom, since the property may exist.
func GetProp(t *Type, name string) *Type {
	if t == nil {
		return Unknown()
	}
	for cur := t; cur != nil; cur = cur.Super {
		if v, ok := cur.Properties[name]; ok {
			return v
		}
		if cur.Kind != KindNominal {
			break
		}
	}
	return Unknown()
}

// MayHaveProp reports whether t could possibly carry property name —
// true if it definitely does, or if t's property set is open/unknown
// (§4.6 "mayHaveProp"). Used to distinguish a definite
// KeyInexistentProperty from a KeyPossibleInexistentProp warning (§7).
func MayHaveProp(t *Type, name string) bool {
	if t == nil || t.Kind == KindUnknown || t.Kind == KindTop {
		return true
	}
	for cur := t; cur != nil; cur = cur.Super {
		if _, ok := cur.Properties[name]; ok {
			return true
		}
		if cur.OpenProperties {
			return true
		}
		if cur.Kind != KindNominal {
			break
		}
	}
	if t.Kind == KindUnion {
		for _, m := range t.Members {
			if MayHaveProp(m, name) {
				return true
			}
		}
	}
	return false
}

// HasConstantProp reports whether t's property name is known to be a
// compile-time constant (§4.6 "hasConstantProp"), consulted by the
// conformance engine's "banned property non-constant write" rule.
func HasConstantProp(t *Type, name string) bool {
	if t == nil {
		return false
	}
	if v, ok := t.Properties[name]; ok {
		return v != nil && v.IsConstant
	}
	return false
}

// InstantiateGenerics substitutes each KindTypeVar occurrence in t with
// its binding from bound, leaving unbound type-vars as Unknown (§4.6
// "instantiateGenerics(map)"; also used after unification resolves the
// type-var multimap, and to evaluate a function's TTL expression).
func InstantiateGenerics(t *Type, bound map[string]*Type) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindTypeVar:
		if v, ok := bound[t.Name]; ok {
			return v
		}
		return Unknown()
	case KindFunction:
		cp := *t
		cp.Params = make([]Param, len(t.Params))
		for i, p := range t.Params {
			cp.Params[i] = Param{Name: p.Name, Optional: p.Optional, Type: InstantiateGenerics(p.Type, bound)}
		}
		cp.Rest = InstantiateGenerics(t.Rest, bound)
		cp.Return = InstantiateGenerics(t.Return, bound)
		if t.TTL != nil {
			return t.TTL(bound)
		}
		return &cp
	case KindObject, KindNominal:
		cp := *t
		cp.Properties = make(map[string]*Type, len(t.Properties))
		for k, v := range t.Properties {
			cp.Properties[k] = InstantiateGenerics(v, bound)
		}
		return &cp
	case KindUnion:
		members := make([]*Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = InstantiateGenerics(m, bound)
		}
		return Union(members...)
	default:
		return t
	}
}

// UnifyResult captures a generic type-var's accumulated candidate
// bindings across a call's actual arguments (§4.6 "accumulating a
// multimap of type-var -> type").
type UnifyResult map[string][]*Type

// UnifyWith unifies formal against actual, recording every type bound to
// a type-var it encounters into result (§4.6 "unifyWith(other, typeVars,
// resultMultimap)"). typeVars names the generic parameters in scope;
// other names encountered outside that set are structural and unified
// recursively without being recorded.
func UnifyWith(formal, actual *Type, typeVars map[string]bool, result UnifyResult) {
	if formal == nil || actual == nil {
		return
	}
	if formal.Kind == KindTypeVar && typeVars[formal.Name] {
		result[formal.Name] = append(result[formal.Name], actual)
		return
	}
	switch formal.Kind {
	case KindFunction:
		if actual.Kind != KindFunction {
			return
		}
		for i := 0; i < len(formal.Params) && i < len(actual.Params); i++ {
			UnifyWith(formal.Params[i].Type, actual.Params[i].Type, typeVars, result)
		}
		UnifyWith(formal.Return, actual.Return, typeVars, result)
	case KindObject, KindNominal:
		for name, ft := range formal.Properties {
			if at, ok := actual.Properties[name]; ok {
				UnifyWith(ft, at, typeVars, result)
			}
		}
	}
}

// Ambiguity names a type-var that Resolve found more than one distinct
// candidate for, plus the conflicting candidates themselves — enough
// for a caller to name both the variable and its candidate types in a
// diagnostic (§8 scenario 5: "the type variable and the two candidate
// types").
type Ambiguity struct {
	Name       string
	Candidates []*Type
}

// Resolve collapses a UnifyResult into a single binding per type-var,
// reporting ambiguity when a variable received more than one distinct
// candidate (§4.6: "A type-var with multiple bindings triggers an
// ambiguity warning; compatibility mode joins them, strict mode picks
// unknown."). ambiguous lists, in first-seen order, every type-var that
// had >1 distinct candidate together with those candidates, for the
// caller to turn into a diagnostic (§8 scenario 5).
func (r UnifyResult) Resolve(compatibilityMode bool) (bound map[string]*Type, ambiguous []Ambiguity) {
	bound = map[string]*Type{}
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sortStrings(names)
	for _, name := range names {
		candidates := dedupe(r[name])
		switch {
		case len(candidates) == 0:
			bound[name] = Unknown()
		case len(candidates) == 1:
			bound[name] = candidates[0]
		default:
			ambiguous = append(ambiguous, Ambiguity{Name: name, Candidates: candidates})
			if compatibilityMode {
				joined := candidates[0]
				for _, c := range candidates[1:] {
					joined = Join(joined, c)
				}
				bound[name] = joined
			} else {
				bound[name] = Unknown()
			}
		}
	}
	return bound, ambiguous
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
