package pass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/diagnostic"
)

// recordingPass logs every invocation into *order and optionally mutates
// the tree n times before going dormant, to drive a fixed-point loop a
// deterministic number of iterations.
type recordingPass struct {
	name       string
	featureSet ast.FeatureSet
	repeatable bool
	order      *[]string
	mutations  int // remaining mutate-and-report-change calls
}

func (p *recordingPass) Name() string             { return p.name }
func (p *recordingPass) FeatureSet() ast.FeatureSet { return p.featureSet }
func (p *recordingPass) Repeatable() bool         { return p.repeatable }

func (p *recordingPass) Run(ctx *Context) error {
	*p.order = append(*p.order, p.name)
	if p.mutations > 0 {
		p.mutations--
		child := ast.NewNode(ast.KindEmpty)
		ctx.Tree.Root.AppendChild(child)
	}
	return nil
}

func newTestContext() *Context {
	root := ast.NewNode(ast.KindProgram)
	return &Context{Tree: ast.NewTree(root), FeatureSet: ast.FeatureES2017}
}

func TestRunExecutesNonRepeatablePassesInDeclaredOrder(t *testing.T) {
	var order []string
	m := NewManager(&diagnostic.Collector{})
	m.Register(&recordingPass{name: "a", featureSet: ast.FeatureES3, order: &order})
	m.Register(&recordingPass{name: "b", featureSet: ast.FeatureES3, order: &order})

	ctx := newTestContext()
	require.NoError(t, m.Run(ctx))
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestRunLoopsRepeatablePassGroupToFixedPoint(t *testing.T) {
	var order []string
	m := NewManager(&diagnostic.Collector{})
	m.Register(&recordingPass{name: "shrink", featureSet: ast.FeatureES3, repeatable: true, order: &order, mutations: 2})

	ctx := newTestContext()
	require.NoError(t, m.Run(ctx))
	// 2 iterations report a change, a 3rd confirms the fixed point.
	assert.Equal(t, []string{"shrink", "shrink", "shrink"}, order)
}

func TestRunRefusesPassAboveCurrentFeatureSet(t *testing.T) {
	var order []string
	m := NewManager(&diagnostic.Collector{})
	m.Register(&recordingPass{name: "es2017-only", featureSet: ast.FeatureES2017, order: &order})

	ctx := newTestContext()
	ctx.FeatureSet = ast.FeatureES3
	err := m.Run(ctx)
	assert.Error(t, err)
	assert.Empty(t, order)
}

func TestRunToFixedPointReportsInternalErrorOnIterationLimit(t *testing.T) {
	var order []string
	sink := &diagnostic.Collector{}
	m := NewManager(sink, WithConfig(Config{MaxIterations: 3, DefaultFeatureSet: ast.FeatureES2017}))
	// always reports a change, so it never converges.
	m.Register(&recordingPass{name: "oscillate", featureSet: ast.FeatureES3, repeatable: true, order: &order, mutations: 1000})

	ctx := newTestContext()
	err := m.Run(ctx)
	assert.Error(t, err)
	found := sink.ByKey(diagnostic.KeyInternalCompilerError)
	assert.Len(t, found, 1)
}

func TestRunInvokesValidityCheckAfterEveryPass(t *testing.T) {
	var order []string
	var validityCalls int
	m := NewManager(&diagnostic.Collector{}, WithValidityCheck(func(root *ast.Node) []diagnostic.Record {
		validityCalls++
		return nil
	}))
	m.Register(&recordingPass{name: "a", featureSet: ast.FeatureES3, order: &order})
	m.Register(&recordingPass{name: "b", featureSet: ast.FeatureES3, repeatable: true, order: &order, mutations: 1})

	ctx := newTestContext()
	require.NoError(t, m.Run(ctx))
	// "a" once, "b" twice (1 mutating iteration + 1 confirming iteration).
	assert.Equal(t, 3, validityCalls)
}

type fakeEmitter struct{ text []byte }

func (f *fakeEmitter) Emit(root *ast.Node) ([]byte, error) { return f.text, nil }

func TestRunEmitsDebugSourceAfterEachPassWhenConfigured(t *testing.T) {
	var order []string
	var names []string
	var sources [][]byte
	m := NewManager(&diagnostic.Collector{},
		WithEmitter(&fakeEmitter{text: []byte("// emitted")}),
		WithDebugSink(func(passName string, src []byte) {
			names = append(names, passName)
			sources = append(sources, src)
		}),
	)
	m.Register(&recordingPass{name: "a", featureSet: ast.FeatureES3, order: &order})

	ctx := newTestContext()
	require.NoError(t, m.Run(ctx))
	assert.Equal(t, []string{"a"}, names)
	require.Len(t, sources, 1)
	assert.Equal(t, "// emitted", string(sources[0]))
}

func TestLoadConfigParsesTOML(t *testing.T) {
	cfg, err := LoadConfig([]byte(`
max_iterations = 50
default_feature_set = "es2015"
`))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxIterations)
	assert.Equal(t, ast.FeatureES2015, cfg.DefaultFeatureSet)
}

func TestLoadConfigRejectsUnknownFeatureSet(t *testing.T) {
	_, err := LoadConfig([]byte(`default_feature_set = "es9000"`))
	assert.Error(t, err)
}
