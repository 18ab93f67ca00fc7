// Package conformance implements the declarative rules engine of §4.9:
// banned names, banned property access, banned code patterns, banned
// dependencies, restricted call signatures, and caller-supplied custom
// predicates, evaluated over the typed AST during a dedicated pass.
package conformance

import (
	"regexp"

	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/types"
)

// RuleKind is the closed sum of declarative rule kinds (REDESIGN FLAGS
// §9: "represent rules as a closed sum variant with one open arm for
// custom rules bearing a boxed predicate").
type RuleKind int

const (
	RuleKindBannedName RuleKind = iota
	RuleKindBannedCall
	RuleKindBannedPropertyRead
	RuleKindBannedPropertyWrite
	RuleKindBannedProperty // read + write + call, combined
	RuleKindBannedPropertyNonConstantWrite
	RuleKindBannedCodePattern
	RuleKindBannedDependency
	RuleKindRestrictedMethodCall
	RuleKindCustom
)

// Verdict is what a single rule-node match produces.
type Verdict int

const (
	NoViolation Verdict = iota
	PossibleViolation
	Violation
)

// Traversal is the per-file context a Rule's check runs against: typed
// AST accessors the conformance engine has no binder of its own to
// compute (§1, lexing/parsing/type-binding out of scope for this
// package specifically — it consumes infer's and scope's output).
type Traversal struct {
	File string

	// TypeOf returns n's inferred type, or nil if the node was never
	// typed (e.g. it sits in dead code never reached by infer).
	TypeOf func(n *ast.Node) *types.Type

	// DeclFile returns the source file that declared the binding n
	// resolves to (for RuleKindBannedDependency), or "" if n does not
	// resolve to a declaration reachable from this traversal.
	DeclFile func(n *ast.Node) string
}

// Rule is one declarative (or custom) conformance requirement (§4.9,
// §6's "requirement" protocol-record fields).
type Rule struct {
	ID   string
	Kind RuleKind

	// Values holds the kind-specific match targets: banned names,
	// banned/restricted call signatures' qualified names, banned
	// property names, or the single banned dependency file.
	Values []string

	ErrorMessage string

	Whitelist         []string
	WhitelistRegexp   []*regexp.Regexp
	OnlyApplyTo       []string
	OnlyApplyToRegexp []*regexp.Regexp

	ReportLooseTypeViolations bool

	// Extends names another rule's ID whose whitelist this rule's
	// whitelist is merged into (§4.9 "merge semantics"); consumed by
	// MergeRules and not consulted at check time.
	Extends string

	// Pattern is the pre-parsed template for RuleKindBannedCodePattern;
	// parsing the fragment text is the caller's job (§1).
	Pattern *ast.Node

	// Params/Return describe the one allowed signature for
	// RuleKindRestrictedMethodCall; a call whose argument types don't
	// match is flagged.
	Params []*types.Type
	Return *types.Type

	// Predicate is RuleKindCustom's boxed check (REDESIGN FLAGS §9).
	Predicate func(t *Traversal, n *ast.Node) Verdict
}

// AppliesTo reports whether the rule is in scope for file, honoring
// only-apply-to restriction and whitelist exclusion (§4.9).
func (r *Rule) AppliesTo(file string) bool {
	if len(r.OnlyApplyTo) > 0 || len(r.OnlyApplyToRegexp) > 0 {
		if !matchesAny(file, r.OnlyApplyTo, r.OnlyApplyToRegexp) {
			return false
		}
	}
	if matchesAny(file, r.Whitelist, r.WhitelistRegexp) {
		return false
	}
	return true
}

func matchesAny(file string, exact []string, patterns []*regexp.Regexp) bool {
	for _, e := range exact {
		if e == file {
			return true
		}
	}
	for _, p := range patterns {
		if p.MatchString(file) {
			return true
		}
	}
	return false
}
