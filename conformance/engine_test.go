package conformance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/diagnostic"
	"github.com/viant/ecmaopt/types"
)

func nameNode(name string) *ast.Node {
	n := ast.NewNode(ast.KindName)
	n.Name = name
	return n
}

func call(callee *ast.Node, args ...*ast.Node) *ast.Node {
	n := ast.NewNode(ast.KindCall)
	n.AppendChild(callee)
	for _, a := range args {
		n.AppendChild(a)
	}
	return n
}

func TestBannedNameFlagsGlobalRead(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	use := nameNode("eval")
	root.AppendChild(use)

	eng := NewEngine([]*Rule{{ID: "no-eval", Kind: RuleKindBannedName, Values: []string{"eval"}, ErrorMessage: "eval is banned"}})
	recs := eng.Check(&Traversal{File: "app.js"}, root)
	require.Len(t, recs, 1)
	assert.Equal(t, diagnostic.KeyConformanceViolation, recs[0].Key)
	assert.Equal(t, "eval is banned", recs[0].Message)
}

func TestBannedNameHonorsWhitelistRegexp(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	root.AppendChild(call(nameNode("eval")))

	r := &Rule{ID: "no-eval", Kind: RuleKindBannedName, Values: []string{"eval"}}
	var err error
	r.WhitelistRegexp, err = compileAll([]string{"test_"})
	require.NoError(t, err)

	eng := NewEngine([]*Rule{r})
	recs := eng.Check(&Traversal{File: "test_file.js"}, root)
	assert.Empty(t, recs)
}

func TestBannedCallFlagsQualifiedCallee(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	sel := ast.NewNode(ast.KindSelector)
	sel.Name = "exec"
	sel.AppendChild(nameNode("child_process"))
	root.AppendChild(call(sel))

	eng := NewEngine([]*Rule{{ID: "no-exec", Kind: RuleKindBannedCall, Values: []string{"child_process.exec"}}})
	recs := eng.Check(&Traversal{File: "app.js"}, root)
	assert.Len(t, recs, 1)
}

func TestBannedPropertyWriteDowngradesToPossibleForLooseType(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	sel := ast.NewNode(ast.KindSelector)
	sel.Name = "innerHTML"
	sel.AppendChild(nameNode("el"))
	assign := ast.NewNode(ast.KindAssign)
	assign.AppendChild(sel)
	assign.AppendChild(ast.NewNode(ast.KindStringLiteral))
	root.AppendChild(assign)

	looseObj := types.Object(map[string]*types.Type{}, true)
	typeOf := func(n *ast.Node) *types.Type {
		if n.Kind == ast.KindName && n.Name == "el" {
			return looseObj
		}
		return nil
	}

	rule := &Rule{ID: "no-innerHTML", Kind: RuleKindBannedPropertyWrite, Values: []string{"innerHTML"}, ReportLooseTypeViolations: true}
	eng := NewEngine([]*Rule{rule})
	recs := eng.Check(&Traversal{File: "app.js", TypeOf: typeOf}, root)
	require.Len(t, recs, 1)
	assert.Equal(t, diagnostic.KeyConformancePossible, recs[0].Key)
}

func TestBannedDependencyFlagsReferenceIntoBannedFile(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	use := nameNode("legacyHelper")
	root.AppendChild(use)

	declFile := func(n *ast.Node) string {
		if n.Name == "legacyHelper" {
			return "legacy/helpers.js"
		}
		return ""
	}
	eng := NewEngine([]*Rule{{ID: "no-legacy", Kind: RuleKindBannedDependency, Values: []string{"legacy/helpers.js"}}})
	recs := eng.Check(&Traversal{File: "app.js", DeclFile: declFile}, root)
	assert.Len(t, recs, 1)
}

func TestCustomRulePredicateIsConsulted(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	target := nameNode("x")
	root.AppendChild(target)

	calls := 0
	rule := &Rule{ID: "custom", Kind: RuleKindCustom, Predicate: func(t *Traversal, n *ast.Node) Verdict {
		if n.Kind == ast.KindName && n.Name == "x" {
			calls++
			return Violation
		}
		return NoViolation
	}}
	eng := NewEngine([]*Rule{rule})
	recs := eng.Check(&Traversal{File: "app.js"}, root)
	assert.Len(t, recs, 1)
	assert.Equal(t, 1, calls)
}

func TestMergeRulesUnionsWhitelistAcrossExtends(t *testing.T) {
	base := &Rule{ID: "base", Kind: RuleKindBannedName, Values: []string{"eval"}, Whitelist: []string{"a.js"}}
	extension := &Rule{ID: "ext", Kind: RuleKindBannedName, Extends: "base", Whitelist: []string{"b.js"}}

	merged := MergeRules([]*Rule{base, extension})
	require.Len(t, merged, 1)
	assert.ElementsMatch(t, []string{"a.js", "b.js"}, merged[0].Whitelist)
}

func TestLoadConfigParsesYAMLRequirements(t *testing.T) {
	rules, err := LoadConfig([]byte(`
requirement:
  - type: BANNED_NAME
    value: ["eval"]
    error_message: "eval is banned"
    rule_id: no-eval
`))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, RuleKindBannedName, rules[0].Kind)
	assert.Equal(t, "eval is banned", rules[0].ErrorMessage)
}

func TestLoadConfigRejectsUnknownType(t *testing.T) {
	_, err := LoadConfig([]byte(`
requirement:
  - type: NOT_A_REAL_TYPE
`))
	assert.Error(t, err)
}
