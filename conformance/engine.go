package conformance

import (
	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/diagnostic"
	"github.com/viant/ecmaopt/types"
)

// Engine evaluates a fixed rule set over a traversal (§4.9).
type Engine struct {
	rules []*Rule
}

func NewEngine(rules []*Rule) *Engine { return &Engine{rules: rules} }

// Check walks root and evaluates every applicable rule against every
// node, producing one diagnostic per hit (§4.9 "Output").
func (e *Engine) Check(t *Traversal, root *ast.Node) []diagnostic.Record {
	var out []diagnostic.Record
	applicable := make([]*Rule, 0, len(e.rules))
	for _, r := range e.rules {
		if r.AppliesTo(t.File) {
			applicable = append(applicable, r)
		}
	}
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		for _, r := range applicable {
			if v := checkNode(r, t, n); v != NoViolation {
				out = append(out, recordFor(r, t, n, v))
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

func recordFor(r *Rule, t *Traversal, n *ast.Node, v Verdict) diagnostic.Record {
	key := diagnostic.KeyConformanceViolation
	level := diagnostic.LevelError
	if v == PossibleViolation {
		key = diagnostic.KeyConformancePossible
		level = diagnostic.LevelWarning
	}
	msg := r.ErrorMessage
	if msg == "" {
		msg = "conformance violation: " + r.ID
	}
	return diagnostic.Record{
		File:    n.Source.File,
		Line:    n.Source.Line,
		Column:  n.Source.Col,
		Key:     key,
		Level:   level,
		Message: msg,
	}
}

func checkNode(r *Rule, t *Traversal, n *ast.Node) Verdict {
	switch r.Kind {
	case RuleKindBannedName:
		return checkBannedName(r, n)
	case RuleKindBannedCall:
		return checkBannedCall(r, n)
	case RuleKindBannedPropertyRead:
		return checkBannedProperty(r, t, n, true, false)
	case RuleKindBannedPropertyWrite:
		return checkBannedProperty(r, t, n, false, true)
	case RuleKindBannedProperty:
		return checkBannedProperty(r, t, n, true, true)
	case RuleKindBannedPropertyNonConstantWrite:
		return checkBannedPropertyNonConstantWrite(r, t, n)
	case RuleKindBannedCodePattern:
		return checkBannedCodePattern(r, n)
	case RuleKindBannedDependency:
		return checkBannedDependency(r, t, n)
	case RuleKindRestrictedMethodCall:
		return checkRestrictedMethodCall(r, t, n)
	case RuleKindCustom:
		if r.Predicate == nil {
			return NoViolation
		}
		return r.Predicate(t, n)
	default:
		return NoViolation
	}
}

// isGlobalRead reports whether n is a bare identifier read, not the
// declared-name slot of a declarator, not a function parameter, and not
// the property-name slot of a selector (§4.9 "global reads of a named
// identifier").
func isGlobalRead(n *ast.Node) bool {
	if n.Kind != ast.KindName {
		return false
	}
	p := n.Parent
	if p == nil {
		return true
	}
	switch p.Kind {
	case ast.KindDeclarator:
		return false
	case ast.KindSelector:
		// the property name lives in p.Name, so a Name child in the
		// object slot is a read of that identifier
		return p.Children[0] == n
	}
	return true
}

func checkBannedName(r *Rule, n *ast.Node) Verdict {
	if !isGlobalRead(n) {
		return NoViolation
	}
	for _, banned := range r.Values {
		if n.Name == banned {
			return Violation
		}
	}
	return NoViolation
}

func checkBannedCall(r *Rule, n *ast.Node) Verdict {
	if n.Kind != ast.KindCall && n.Kind != ast.KindNew {
		return NoViolation
	}
	if len(n.Children) == 0 {
		return NoViolation
	}
	callee := n.Children[0]
	name := calleeName(callee)
	for _, banned := range r.Values {
		if name == banned {
			return Violation
		}
	}
	return NoViolation
}

func calleeName(callee *ast.Node) string {
	switch callee.Kind {
	case ast.KindName:
		return callee.Name
	case ast.KindSelector:
		return calleeName(callee.Children[0]) + "." + callee.Name
	default:
		return ""
	}
}

func checkBannedProperty(r *Rule, t *Traversal, n *ast.Node, read, write bool) Verdict {
	if n.Kind != ast.KindSelector {
		return NoViolation
	}
	if !matchesPropertyName(r, n.Name) {
		return NoViolation
	}
	isWrite := n.Parent != nil && n.Parent.Kind == ast.KindAssign && len(n.Parent.Children) > 0 && n.Parent.Children[0] == n
	if isWrite && !write {
		return NoViolation
	}
	if !isWrite && !read {
		return NoViolation
	}
	return propertyVerdict(r, t, n)
}

func checkBannedPropertyNonConstantWrite(r *Rule, t *Traversal, n *ast.Node) Verdict {
	if n.Kind != ast.KindAssign || len(n.Children) < 2 {
		return NoViolation
	}
	target := n.Children[0]
	if target.Kind != ast.KindSelector || !matchesPropertyName(r, target.Name) {
		return NoViolation
	}
	value := n.Children[1]
	if t.TypeOf != nil {
		if vt := t.TypeOf(value); vt != nil && vt.IsConstant {
			return NoViolation
		}
	}
	return propertyVerdict(r, t, target)
}

func matchesPropertyName(r *Rule, name string) bool {
	for _, p := range r.Values {
		if p == name {
			return true
		}
	}
	return false
}

func propertyVerdict(r *Rule, t *Traversal, selector *ast.Node) Verdict {
	if t.TypeOf == nil {
		return Violation
	}
	objType := t.TypeOf(selector.Children[0])
	if objType == nil {
		return Violation
	}
	if !objType.OpenProperties || types.HasConstantProp(objType, selector.Name) {
		return Violation
	}
	if r.ReportLooseTypeViolations {
		return PossibleViolation
	}
	return Violation
}

func checkBannedCodePattern(r *Rule, n *ast.Node) Verdict {
	if r.Pattern == nil {
		return NoViolation
	}
	if structurallyEqual(r.Pattern, n) {
		return Violation
	}
	return NoViolation
}

func structurallyEqual(pattern, n *ast.Node) bool {
	if pattern == nil || n == nil {
		return pattern == n
	}
	if pattern.Kind != n.Kind {
		return false
	}
	if pattern.Kind == ast.KindName && pattern.Name != n.Name {
		return false
	}
	if len(pattern.Children) != len(n.Children) {
		return false
	}
	for i := range pattern.Children {
		if !structurallyEqual(pattern.Children[i], n.Children[i]) {
			return false
		}
	}
	return true
}

func checkBannedDependency(r *Rule, t *Traversal, n *ast.Node) Verdict {
	if n.Kind != ast.KindName || t.DeclFile == nil {
		return NoViolation
	}
	declFile := t.DeclFile(n)
	if declFile == "" {
		return NoViolation
	}
	for _, banned := range r.Values {
		if declFile == banned {
			return Violation
		}
	}
	return NoViolation
}

func checkRestrictedMethodCall(r *Rule, t *Traversal, n *ast.Node) Verdict {
	if n.Kind != ast.KindCall || len(n.Children) == 0 {
		return NoViolation
	}
	callee := n.Children[0]
	name := calleeName(callee)
	matched := false
	for _, v := range r.Values {
		if v == name {
			matched = true
			break
		}
	}
	if !matched {
		return NoViolation
	}
	args := n.Children[1:]
	if len(args) != len(r.Params) {
		return Violation
	}
	if t.TypeOf == nil {
		return NoViolation
	}
	loose := false
	for i, p := range r.Params {
		at := t.TypeOf(args[i])
		if at == nil {
			loose = true
			continue
		}
		if !types.SubtypeOf(at, p) {
			if !at.IsConcrete() {
				loose = true
				continue
			}
			return Violation
		}
	}
	if loose && r.ReportLooseTypeViolations {
		return PossibleViolation
	}
	return NoViolation
}
