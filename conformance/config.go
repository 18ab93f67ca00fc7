package conformance

import (
	"regexp"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// rawConfig mirrors §6's text-protocol record: repeated "requirement"
// entries with the recognized field names.
type rawConfig struct {
	Requirement []rawRequirement `yaml:"requirement"`
}

type rawRequirement struct {
	Type                      string   `yaml:"type"`
	Value                     []string `yaml:"value"`
	ErrorMessage              string   `yaml:"error_message"`
	Whitelist                 []string `yaml:"whitelist"`
	WhitelistRegexp           []string `yaml:"whitelist_regexp"`
	OnlyApplyTo               []string `yaml:"only_apply_to"`
	OnlyApplyToRegexp         []string `yaml:"only_apply_to_regexp"`
	ReportLooseTypeViolations bool     `yaml:"report_loose_type_violations"`
	RuleID                    string   `yaml:"rule_id"`
	Extends                   string   `yaml:"extends"`
}

var kindNames = map[string]RuleKind{
	"BANNED_NAME":                        RuleKindBannedName,
	"BANNED_CALL":                        RuleKindBannedCall,
	"BANNED_PROPERTY_READ":               RuleKindBannedPropertyRead,
	"BANNED_PROPERTY_WRITE":              RuleKindBannedPropertyWrite,
	"BANNED_PROPERTY":                    RuleKindBannedProperty,
	"BANNED_PROPERTY_NON_CONSTANT_WRITE": RuleKindBannedPropertyNonConstantWrite,
	"BANNED_CODE_PATTERN":                RuleKindBannedCodePattern,
	"BANNED_DEPENDENCY":                  RuleKindBannedDependency,
	"RESTRICTED_METHOD_CALL":             RuleKindRestrictedMethodCall,
	"CUSTOM":                             RuleKindCustom,
}

// LoadConfig parses the declarative rule set from YAML (§6's
// conformance configuration format, chosen over the original's
// text-protocol encoding — see DESIGN.md) and applies merge semantics
// (§4.9 "merge by identifier and extends").
func LoadConfig(data []byte) ([]*Rule, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "conformance: decoding config")
	}
	rules := make([]*Rule, 0, len(raw.Requirement))
	for _, req := range raw.Requirement {
		r, err := compileRule(req)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return MergeRules(rules), nil
}

func compileRule(req rawRequirement) (*Rule, error) {
	kind, ok := kindNames[req.Type]
	if !ok {
		return nil, errors.Errorf("conformance: unknown requirement type %q", req.Type)
	}
	r := &Rule{
		ID:                        req.RuleID,
		Kind:                      kind,
		Values:                    req.Value,
		ErrorMessage:              req.ErrorMessage,
		Whitelist:                 req.Whitelist,
		OnlyApplyTo:               req.OnlyApplyTo,
		ReportLooseTypeViolations: req.ReportLooseTypeViolations,
		Extends:                   req.Extends,
	}
	var err error
	if r.WhitelistRegexp, err = compileAll(req.WhitelistRegexp); err != nil {
		return nil, err
	}
	if r.OnlyApplyToRegexp, err = compileAll(req.OnlyApplyToRegexp); err != nil {
		return nil, err
	}
	return r, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "conformance: invalid regexp %q", p)
		}
		out[i] = re
	}
	return out, nil
}

// MergeRules implements §4.9's merge semantics: a rule with an Extends
// link has its whitelist (plain and regex) unioned into the rule it
// extends, deduplicated, and is then dropped — the base rule is the one
// callers see and match against.
func MergeRules(rules []*Rule) []*Rule {
	byID := make(map[string]*Rule, len(rules))
	for _, r := range rules {
		if r.ID != "" {
			byID[r.ID] = r
		}
	}
	out := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if r.Extends == "" {
			out = append(out, r)
			continue
		}
		base, ok := byID[r.Extends]
		if !ok {
			out = append(out, r)
			continue
		}
		base.Whitelist = unionStrings(base.Whitelist, r.Whitelist)
		base.WhitelistRegexp = unionRegexp(base.WhitelistRegexp, r.WhitelistRegexp)
	}
	return out
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func unionRegexp(a, b []*regexp.Regexp) []*regexp.Regexp {
	seen := make(map[string]bool, len(a))
	out := make([]*regexp.Regexp, 0, len(a)+len(b))
	for _, re := range a {
		if !seen[re.String()] {
			seen[re.String()] = true
			out = append(out, re)
		}
	}
	for _, re := range b {
		if !seen[re.String()] {
			seen[re.String()] = true
			out = append(out, re)
		}
	}
	return out
}
