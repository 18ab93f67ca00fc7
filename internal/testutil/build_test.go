package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ecmaopt/ast"
)

func TestProgramWiresStatementsUnderATree(t *testing.T) {
	decl := VarDecl("x", nil)
	tree, root := Program(decl)
	require.NotNil(t, tree)
	assert.Equal(t, ast.KindProgram, root.Kind)
	require.Len(t, root.Children, 1)
	assert.Same(t, decl, root.Children[0])
	assert.Same(t, root, tree.Root)
}

func TestCallBuildsCalleeWithArgs(t *testing.T) {
	c := Call(Name("foo"), Name("a"), Name("b"))
	require.Len(t, c.Children, 3)
	assert.Equal(t, "foo", c.Children[0].Name)
	assert.Equal(t, "a", c.Children[1].Name)
}

func TestSelectorCarriesPropertyNameOnNode(t *testing.T) {
	s := Selector(Name("obj"), "prop")
	assert.Equal(t, "prop", s.Name)
	require.Len(t, s.Children, 1)
	assert.Equal(t, "obj", s.Children[0].Name)
}

func TestFunctionDeclWrapsBodyInABlock(t *testing.T) {
	fn := FunctionDecl("f", VarDecl("y", nil))
	assert.Equal(t, "f", fn.Name)
	require.Len(t, fn.Children, 1)
	assert.Equal(t, ast.KindBlock, fn.Children[0].Kind)
	assert.Len(t, fn.Children[0].Children, 1)
}
