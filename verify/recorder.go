package verify

import "github.com/viant/ecmaopt/ast"

// Recorder wraps whatever ast.ChangeReporter a Tree already has
// installed (via Tree.SetReporter) to additionally capture exactly
// which scope roots were reported changed or deleted during the
// recorded span, so Audit has something to compare a Snapshot against.
// Install with tree.SetReporter(recorder) before a pass runs, and
// restore the original afterward.
type Recorder struct {
	inner   ast.ChangeReporter
	Changed map[*ast.Node]bool
	Deleted map[*ast.Node]string
}

func NewRecorder(inner ast.ChangeReporter) *Recorder {
	return &Recorder{inner: inner, Changed: map[*ast.Node]bool{}, Deleted: map[*ast.Node]string{}}
}

func (r *Recorder) ReportChange(root *ast.Node) {
	r.Changed[root] = true
	if r.inner != nil {
		r.inner.ReportChange(root)
	}
}

func (r *Recorder) ReportDeleted(root *ast.Node, kind string) {
	r.Deleted[root] = kind
	if r.inner != nil {
		r.inner.ReportDeleted(root, kind)
	}
}
