package verify

import (
	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/diagnostic"
)

// Audit compares a Snapshot taken before a pass ran against the tree's
// current state and the Recorder that observed that pass's reports,
// checking §4.10's three conditions for every scope root that was in
// the snapshot, plus the third condition for every root the recorder
// saw reported deleted.
func Audit(before *Snapshot, root *ast.Node, rec *Recorder) []diagnostic.Record {
	after := TakeSnapshot(root)
	var out []diagnostic.Record

	for n := range before.roots {
		if after.roots[n] {
			contentChanged := before.count[n] != after.count[n] || before.digest[n] != after.digest[n]
			stampBumped := after.stamp[n] != before.stamp[n]
			if contentChanged && !stampBumped {
				out = append(out, auditRecord(n, "changed scope not marked as changed"))
			}
			continue
		}
		if _, reported := rec.Deleted[n]; !reported {
			out = append(out, auditRecord(n, "deleted scope was not reported"))
		}
	}

	for n := range rec.Deleted {
		if after.Reachable(n) {
			out = append(out, auditRecord(n, "existing scope is improperly marked as deleted"))
		}
	}

	return out
}

func auditRecord(n *ast.Node, msg string) diagnostic.Record {
	return diagnostic.Record{
		File:    n.Source.File,
		Line:    n.Source.Line,
		Column:  n.Source.Col,
		Key:     diagnostic.KeyInternalCompilerError,
		Level:   diagnostic.LevelError,
		Message: msg,
	}
}
