package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/ecmaopt/ast"
)

func name(n string) *ast.Node {
	v := ast.NewNode(ast.KindName)
	v.Name = n
	return v
}

func exprStmt(child *ast.Node) *ast.Node {
	n := ast.NewNode(ast.KindExprStatement)
	n.Children = []*ast.Node{child}
	return n
}

func reachable(from *Vertex) map[*Vertex]bool {
	seen := map[*Vertex]bool{}
	var walk func(v *Vertex)
	walk = func(v *Vertex) {
		if v == nil || seen[v] {
			return
		}
		seen[v] = true
		for _, e := range v.Out {
			walk(e.To)
		}
	}
	walk(from)
	return seen
}

func TestBuildLinearSequenceFallsThroughToExit(t *testing.T) {
	body := []*ast.Node{exprStmt(name("a")), exprStmt(name("b"))}
	g := Build(body)
	r := reachable(g.Entry)
	assert.True(t, r[g.Exit])
	assert.Len(t, g.Vertices, 2+2) // two statements + Exit + ExceptionExit
}

func TestBuildIfProducesTrueFalseEdges(t *testing.T) {
	ifNode := ast.NewNode(ast.KindIf)
	cond := name("cond")
	thenStmt := exprStmt(name("t"))
	ifNode.Children = []*ast.Node{cond, thenStmt}
	g := Build([]*ast.Node{ifNode})

	entry := g.Entry
	var sawTrue, sawFalse bool
	for _, e := range entry.Out {
		if e.Label == OnTrue {
			sawTrue = true
		}
		if e.Label == OnFalse {
			sawFalse = true
		}
	}
	assert.True(t, sawTrue)
	assert.True(t, sawFalse)
}

func TestBuildThrowFlowsToExceptionExitNotExit(t *testing.T) {
	throwNode := ast.NewNode(ast.KindThrow)
	throwNode.Children = []*ast.Node{name("e")}
	g := Build([]*ast.Node{throwNode})

	assert.Equal(t, g.ExceptionExit, g.Entry.Out[0].To)
	assert.NotEqual(t, g.Exit, g.Entry.Out[0].To)
}

func TestBuildWhileBackEdge(t *testing.T) {
	whileNode := ast.NewNode(ast.KindWhile)
	cond := name("cond")
	body := exprStmt(name("body"))
	whileNode.Children = []*ast.Node{cond, body}
	g := Build([]*ast.Node{whileNode})

	header := g.Entry
	// header -TRUE-> body, body -UNCOND-> header (back edge)
	var bodyVertex *Vertex
	for _, e := range header.Out {
		if e.Label == OnTrue {
			bodyVertex = e.To
		}
	}
	assert.NotNil(t, bodyVertex)
	var backEdge bool
	for _, e := range bodyVertex.Out {
		if e.To == header {
			backEdge = true
		}
	}
	assert.True(t, backEdge)
}

func TestBuildDoWhileGuaranteesOneIteration(t *testing.T) {
	doNode := ast.NewNode(ast.KindDoWhile)
	body := exprStmt(name("body"))
	cond := name("cond")
	doNode.Children = []*ast.Node{body, cond}
	g := Build([]*ast.Node{doNode})

	// entry must be the body vertex, not the condition vertex.
	assert.Equal(t, ast.KindExprStatement, g.Entry.Node.Kind)
}

func TestBuildTryAddsExEdgesFromEveryTryStatement(t *testing.T) {
	tryNode := ast.NewNode(ast.KindTry)
	tryBlock := ast.NewNode(ast.KindBlock)
	tryBlock.Children = []*ast.Node{exprStmt(name("a")), exprStmt(name("b"))}
	catch := ast.NewNode(ast.KindCatch)
	catch.Children = []*ast.Node{exprStmt(name("handle"))}
	tryNode.Children = []*ast.Node{tryBlock, catch}
	g := Build([]*ast.Node{tryNode})

	for _, v := range g.Vertices {
		if v == g.Exit || v == g.ExceptionExit {
			continue
		}
		if v.Node != nil && len(v.Node.Children) == 1 && (v.Node.Children[0].Name == "a" || v.Node.Children[0].Name == "b") {
			var sawEx bool
			for _, e := range v.Out {
				if e.Label == OnEx {
					sawEx = true
				}
			}
			assert.True(t, sawEx, "expected EX edge from %v", v.Node)
		}
	}
}

func TestBuildBreakRetargetsToLoopExit(t *testing.T) {
	whileNode := ast.NewNode(ast.KindWhile)
	cond := name("cond")
	brk := ast.NewNode(ast.KindBreak)
	whileNode.Children = []*ast.Node{cond, brk}
	g := Build([]*ast.Node{whileNode})

	r := reachable(g.Entry)
	assert.True(t, r[g.Exit])
}

func TestBuildSwitchFansOutToEachCase(t *testing.T) {
	sw := ast.NewNode(ast.KindSwitch)
	disc := name("disc")
	case1 := ast.NewNode(ast.KindCase)
	case1.Children = []*ast.Node{name("1"), exprStmt(name("one"))}
	case2 := ast.NewNode(ast.KindCase)
	case2.Children = []*ast.Node{name("2"), exprStmt(name("two"))}
	sw.Children = []*ast.Node{disc, case1, case2}
	g := Build([]*ast.Node{sw})

	switchV := g.Entry
	var trueEdges int
	for _, e := range switchV.Out {
		if e.Label == OnTrue {
			trueEdges++
		}
	}
	assert.Equal(t, 2, trueEdges)
}

func TestReversePostorderIsDeterministic(t *testing.T) {
	body := []*ast.Node{exprStmt(name("a")), exprStmt(name("b")), exprStmt(name("c"))}
	g := Build(body)
	first := g.ReversePostorder()
	second := g.ReversePostorder()
	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i])
	}
}
