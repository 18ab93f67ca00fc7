package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/diagnostic"
	"github.com/viant/ecmaopt/pass"
	"github.com/viant/ecmaopt/scope"
)

type mutatingPass struct{ ran bool }

func (p *mutatingPass) Name() string              { return "mutate" }
func (p *mutatingPass) FeatureSet() ast.FeatureSet { return ast.FeatureES3 }
func (p *mutatingPass) Repeatable() bool           { return false }
func (p *mutatingPass) Run(ctx *pass.Context) error {
	p.ran = true
	ctx.Tree.Root.AppendChild(ast.NewNode(ast.KindEmpty))
	return nil
}

func noPopulate(*ast.Scope, *ast.Node) {}

func TestInstanceRunsPassesAndReportsNoAuditFailureWhenChangesAreProperlyMarked(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	tree := ast.NewTree(root)
	scopes := scope.NewCreator(noPopulate, func(*ast.Node) *ast.Node { return root })
	sink := &diagnostic.Collector{}
	manager := pass.NewManager(sink)
	p := &mutatingPass{}
	manager.Register(p)

	inst := New(tree, scopes, sink, manager)
	inst.BeginVerification()

	err := inst.RunPasses(&pass.Context{Tree: tree, FeatureSet: ast.FeatureES2017})
	require.NoError(t, err)
	assert.True(t, p.ran)
	assert.Empty(t, sink.Records, "AppendChild's automatic reporting satisfies the audit")
}

func TestInstanceIsInstalledAsTreeReporter(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	tree := ast.NewTree(root)
	scopes := scope.NewCreator(noPopulate, func(*ast.Node) *ast.Node { return root })
	sink := &diagnostic.Collector{}
	manager := pass.NewManager(sink)

	inst := New(tree, scopes, sink, manager)
	inst.BeginVerification()

	root.AppendChild(ast.NewNode(ast.KindEmpty))
	assert.True(t, inst.recorder.Changed[root])
}
