package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeResolveWalksAncestors(t *testing.T) {
	program := NewScope(NewNode(KindProgram), nil, true)
	program.Declare(&Variable{Name: "a", Kind: VariableVarDecl})

	fn := NewScope(NewNode(KindFunctionDecl), program, false)
	fn.Declare(&Variable{Name: "b", Kind: VariableParameter})

	assert.NotNil(t, fn.Resolve("a"))
	assert.NotNil(t, fn.Resolve("b"))
	assert.Nil(t, program.Resolve("b"), "parent scope must not see child bindings")
}

func TestScopeDeclaredIncludeAncestors(t *testing.T) {
	program := NewScope(NewNode(KindProgram), nil, true)
	program.Declare(&Variable{Name: "a"})
	block := NewScope(NewNode(KindBlock), program, true)

	assert.False(t, block.Declared("a", false))
	assert.True(t, block.Declared("a", true))
}

func TestScopeAccessibleVarsInnermostWins(t *testing.T) {
	program := NewScope(NewNode(KindProgram), nil, true)
	program.Declare(&Variable{Name: "x"})
	block := NewScope(NewNode(KindBlock), program, true)
	block.Declare(&Variable{Name: "x"})
	block.Declare(&Variable{Name: "y"})

	vars := block.AccessibleVars()
	names := map[string]*Variable{}
	for _, v := range vars {
		names[v.Name] = v
	}
	assert.Len(t, vars, 2)
	assert.Same(t, block.Lookup("x"), names["x"])
}

func TestScopeDeclareAssignsStableIndex(t *testing.T) {
	s := NewScope(NewNode(KindFunctionDecl), nil, false)
	v1 := &Variable{Name: "a"}
	s.Declare(v1)
	v2 := &Variable{Name: "b"}
	s.Declare(v2)
	assert.Equal(t, 0, v1.Index)
	assert.Equal(t, 1, v2.Index)

	// re-declaring "a" (e.g. var hoisting revisit) keeps its original index
	v1Again := &Variable{Name: "a"}
	s.Declare(v1Again)
	assert.Equal(t, 0, v1Again.Index)
	assert.Equal(t, 2, s.Len())
}
