package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/cfg"
)

// stringSetLattice is a minimal join-semilattice of string sets, used to
// exercise the engine without depending on the liveness package.
type stringSetLattice struct{}

func (stringSetLattice) Bottom() interface{} { return map[string]bool{} }

func (stringSetLattice) Join(a, b interface{}) interface{} {
	as, bs := a.(map[string]bool), b.(map[string]bool)
	out := map[string]bool{}
	for k := range as {
		out[k] = true
	}
	for k := range bs {
		out[k] = true
	}
	return out
}

func (stringSetLattice) Equal(a, b interface{}) bool {
	as, bs := a.(map[string]bool), b.(map[string]bool)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if !bs[k] {
			return false
		}
	}
	return true
}

func nameStmt(n string) *ast.Node {
	s := ast.NewNode(ast.KindExprStatement)
	child := ast.NewNode(ast.KindName)
	child.Name = n
	s.Children = []*ast.Node{child}
	return s
}

func TestRunForwardPropagatesReachingValues(t *testing.T) {
	body := []*ast.Node{nameStmt("a"), nameStmt("b")}
	g := cfg.Build(body)

	transfer := func(v *cfg.Vertex, state interface{}) interface{} {
		s := state.(map[string]bool)
		out := map[string]bool{}
		for k := range s {
			out[k] = true
		}
		if v.Node != nil {
			out[v.Node.Children[0].Name] = true
		}
		return out
	}

	result := Run(g, stringSetLattice{}, transfer, Forward, "reaching")
	exitOut := result.Out[g.Exit.ID].(map[string]bool)
	assert.True(t, exitOut["a"])
	assert.True(t, exitOut["b"])

	ann, ok := g.Exit.Annotation("reaching.out")
	assert.True(t, ok)
	assert.Equal(t, exitOut, ann)
}

func TestRunBackwardPropagatesFromExit(t *testing.T) {
	body := []*ast.Node{nameStmt("a"), nameStmt("b")}
	g := cfg.Build(body)

	transfer := func(v *cfg.Vertex, state interface{}) interface{} {
		s := state.(map[string]bool)
		out := map[string]bool{}
		for k := range s {
			out[k] = true
		}
		if v.Node != nil {
			out[v.Node.Children[0].Name] = true
		}
		return out
	}

	result := Run(g, stringSetLattice{}, transfer, Backward, "")
	firstIn := result.In[g.Entry.ID].(map[string]bool)
	assert.True(t, firstIn["a"])
	assert.True(t, firstIn["b"])
}
