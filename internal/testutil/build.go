// Package testutil supplies small AST-building helpers shared across
// this module's test suites (SPEC_FULL.md's internal/testutil/ —
// "shared test fixtures: small parsed-program builders"), standing in
// for the real parser this module never has (§1).
package testutil

import "github.com/viant/ecmaopt/ast"

// Name builds a bare identifier reference node.
func Name(name string) *ast.Node {
	n := ast.NewNode(ast.KindName)
	n.Name = name
	return n
}

// Program wires stmts under a fresh KindProgram root and returns both
// the owning Tree and the root, ready for a pass manager run.
func Program(stmts ...*ast.Node) (*ast.Tree, *ast.Node) {
	root := ast.NewNode(ast.KindProgram)
	for _, s := range stmts {
		root.AppendChild(s)
	}
	return ast.NewTree(root), root
}

// Call builds a call expression node: callee(args...).
func Call(callee *ast.Node, args ...*ast.Node) *ast.Node {
	n := ast.NewNode(ast.KindCall)
	n.AppendChild(callee)
	for _, a := range args {
		n.AppendChild(a)
	}
	return n
}

// Selector builds an obj.prop member-access node.
func Selector(obj *ast.Node, prop string) *ast.Node {
	n := ast.NewNode(ast.KindSelector)
	n.Name = prop
	n.AppendChild(obj)
	return n
}

// Assign builds target = value.
func Assign(target, value *ast.Node) *ast.Node {
	n := ast.NewNode(ast.KindAssign)
	n.AppendChild(target)
	n.AppendChild(value)
	return n
}

// VarDecl builds `var name = init;` as a single-declarator VarDecl
// statement, init may be nil for an uninitialized declaration.
func VarDecl(name string, init *ast.Node) *ast.Node {
	decl := ast.NewNode(ast.KindDeclarator)
	decl.AppendChild(Name(name))
	if init != nil {
		decl.AppendChild(init)
	}
	stmt := ast.NewNode(ast.KindVarDecl)
	stmt.AppendChild(decl)
	return stmt
}

// FunctionDecl builds a named function declaration with body as its
// statement list.
func FunctionDecl(name string, body ...*ast.Node) *ast.Node {
	fn := ast.NewNode(ast.KindFunctionDecl)
	fn.Name = name
	block := ast.NewNode(ast.KindBlock)
	for _, s := range body {
		block.AppendChild(s)
	}
	fn.AppendChild(block)
	return fn
}
