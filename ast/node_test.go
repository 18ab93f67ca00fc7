package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingReporter struct {
	changed []*Node
	deleted []*Node
}

func (r *recordingReporter) ReportChange(root *Node) { r.changed = append(r.changed, root) }
func (r *recordingReporter) ReportDeleted(root *Node, kind string) {
	r.deleted = append(r.deleted, root)
}

func TestAppendChildReportsChangeOnScopeRoot(t *testing.T) {
	fn := NewNode(KindFunctionDecl)
	body := NewNode(KindBlock)
	fn.AppendChild(body)
	tree := NewTree(fn)
	rep := &recordingReporter{}
	tree.SetReporter(rep)

	stmt := NewNode(KindExprStatement)
	body.AppendChild(stmt)

	assert.Equal(t, uint64(1), fn.ChangeStamp, "change stamp must land on the enclosing scope root, not the block")
	assert.Len(t, rep.changed, 1)
	assert.Same(t, fn, rep.changed[0])
}

func TestDetachReportsDeletionAndKeepsNodeAddressable(t *testing.T) {
	root := NewNode(KindProgram)
	stmt := NewNode(KindExprStatement)
	root.AppendChild(stmt)
	tree := NewTree(root)
	rep := &recordingReporter{}
	tree.SetReporter(rep)

	err := stmt.Detach()
	assert.NoError(t, err)
	assert.True(t, stmt.IsDetached())
	assert.Len(t, root.Children, 0)
	assert.Len(t, rep.deleted, 1)
	// still addressable by analyses that captured it before detaching
	assert.Equal(t, KindExprStatement, stmt.Kind)
}

func TestDetachRootIsAnError(t *testing.T) {
	root := NewNode(KindProgram)
	NewTree(root)
	assert.Error(t, root.Detach())
}

func TestSetTypeIsWriteOnceForConcreteTypes(t *testing.T) {
	n := NewNode(KindName)
	n.SetType("number", true)
	n.SetType("unknown", false)
	assert.Equal(t, "number", n.Type, "a less-precise type must not overwrite a concrete one")

	m := NewNode(KindName)
	m.SetType("unknown", false)
	m.SetType("string", true)
	assert.Equal(t, "string", m.Type)
}

func TestWalkVisitsPreOrderAndRespectsSkip(t *testing.T) {
	root := NewNode(KindProgram)
	a := NewNode(KindBlock)
	b := NewNode(KindExprStatement)
	root.AppendChild(a)
	root.AppendChild(b)
	inner := NewNode(KindReturn)
	a.AppendChild(inner)

	var visited []NodeKind
	Walk(root, func(n, _ *Node) bool {
		visited = append(visited, n.Kind)
		return n.Kind != KindBlock // skip descending into block
	})
	assert.Equal(t, []NodeKind{KindProgram, KindBlock, KindExprStatement}, visited)
}
