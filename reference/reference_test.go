package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/cfg"
	"github.com/viant/ecmaopt/liveness"
)

func nameNode(n string) *ast.Node {
	v := ast.NewNode(ast.KindName)
	v.Name = n
	return v
}

func exprOf(n *ast.Node) *ast.Node {
	s := ast.NewNode(ast.KindExprStatement)
	s.Children = []*ast.Node{n}
	return s
}

func declStmt(name string, init *ast.Node) *ast.Node {
	decl := ast.NewNode(ast.KindDeclarator)
	decl.AppendChild(nameNode(name))
	if init != nil {
		decl.AppendChild(init)
	}
	vd := ast.NewNode(ast.KindVarDecl)
	vd.AppendChild(decl)
	return vd
}

func assignStmt(target, value *ast.Node, op string) *ast.Node {
	a := ast.NewNode(ast.KindAssign)
	a.Value = op
	a.Children = []*ast.Node{target, value}
	s := ast.NewNode(ast.KindExprStatement)
	s.Children = []*ast.Node{a}
	return s
}

func TestWellDefinedWhenWriteDominatesRead(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	scope := ast.NewScope(root, nil, false)
	scope.Declare(&ast.Variable{Name: "x", Kind: ast.VariableVarDecl})

	decl := declStmt("x", &ast.Node{Kind: ast.KindNumberLiteral})
	use := exprOf(nameNode("x"))
	g := cfg.Build([]*ast.Node{decl, use})

	col := Collect(g, scope, liveness.EscapeSet{}, false, false)
	v := scope.Lookup("x")
	assert.True(t, col.WellDefined(v))
}

func TestWellDefinedFalseWhenReadNotDominated(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	scope := ast.NewScope(root, nil, false)
	scope.Declare(&ast.Variable{Name: "x", Kind: ast.VariableVarDecl})

	ifNode := ast.NewNode(ast.KindIf)
	cond := nameNode("cond")
	thenStmt := declStmt("x", &ast.Node{Kind: ast.KindNumberLiteral})
	ifNode.Children = []*ast.Node{cond, thenStmt}
	use := exprOf(nameNode("x"))
	g := cfg.Build([]*ast.Node{ifNode, use})

	col := Collect(g, scope, liveness.EscapeSet{}, false, false)
	v := scope.Lookup("x")
	assert.False(t, col.WellDefined(v))
}

func TestAssignedOnceFalseInsideLoop(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	scope := ast.NewScope(root, nil, false)
	scope.Declare(&ast.Variable{Name: "x", Kind: ast.VariableVarDecl})

	whileNode := ast.NewNode(ast.KindWhile)
	cond := nameNode("cond")
	body := assignStmt(nameNode("x"), &ast.Node{Kind: ast.KindNumberLiteral}, "=")
	whileNode.Children = []*ast.Node{cond, body}
	g := cfg.Build([]*ast.Node{whileNode})

	col := Collect(g, scope, liveness.EscapeSet{}, false, false)
	v := scope.Lookup("x")
	assert.False(t, col.AssignedOnce(v, false))
}

func TestAssignedOnceTrueForSingleTopLevelWrite(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	scope := ast.NewScope(root, nil, false)
	scope.Declare(&ast.Variable{Name: "x", Kind: ast.VariableVarDecl})

	decl := declStmt("x", &ast.Node{Kind: ast.KindNumberLiteral})
	g := cfg.Build([]*ast.Node{decl})

	col := Collect(g, scope, liveness.EscapeSet{}, false, false)
	v := scope.Lookup("x")
	assert.True(t, col.AssignedOnce(v, false))
}

func TestMovableDeclarationForPureLiteral(t *testing.T) {
	root := ast.NewNode(ast.KindProgram)
	scope := ast.NewScope(root, nil, false)
	scope.Declare(&ast.Variable{Name: "x", Kind: ast.VariableVarDecl})

	decl := declStmt("x", &ast.Node{Kind: ast.KindNumberLiteral})
	g := cfg.Build([]*ast.Node{decl})

	col := Collect(g, scope, liveness.EscapeSet{}, false, false)
	v := scope.Lookup("x")
	assert.True(t, col.MovableDeclaration(v, false))
}
