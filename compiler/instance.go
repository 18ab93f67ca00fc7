// Package compiler ties the core modules together behind one explicit
// Context value (REDESIGN FLAGS §9: "Mutable-global compiler state...
// Model as an explicit Context value threaded through every pass").
package compiler

import (
	"go.uber.org/zap"

	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/diagnostic"
	"github.com/viant/ecmaopt/pass"
	"github.com/viant/ecmaopt/scope"
	"github.com/viant/ecmaopt/verify"
)

// Instance owns the AST root, the scope table, the pass manager, the
// diagnostic sink, and the scope creator's memoization state (§5
// [ADD]). Passes themselves receive a *pass.Context (the tree and the
// feature set), not the Instance; no package-level mutable state exists
// anywhere in this module.
type Instance struct {
	Tree    *ast.Tree
	Scopes  *scope.Creator
	Manager *pass.Manager
	Sink    diagnostic.Sink
	Logger  *zap.SugaredLogger

	recorder *verify.Recorder
	baseline *verify.Snapshot
}

// New wires a freshly parsed Tree and scope creator into a compiler
// instance, installing itself as the Tree's change reporter so every
// pass's mutations — reported automatically by ast.Node's own
// AppendChild/Detach/ReplaceChild — are observed for the change
// verifier (§4.10) without any pass needing to know verify exists.
func New(tree *ast.Tree, scopes *scope.Creator, sink diagnostic.Sink, manager *pass.Manager) *Instance {
	inst := &Instance{
		Tree:     tree,
		Scopes:   scopes,
		Manager:  manager,
		Sink:     sink,
		recorder: verify.NewRecorder(nil),
	}
	tree.SetReporter(inst)
	return inst
}

// ReportChange and ReportDeleted make Instance itself an
// ast.ChangeReporter, so installing it via Tree.SetReporter is enough
// to keep the change verifier's recorder current across every pass the
// manager runs, including ones wrapped internally by
// Tree.TrackChanges's temporary substitution (which always restores
// whatever reporter was installed before it ran, i.e. this Instance).
func (i *Instance) ReportChange(root *ast.Node) { i.recorder.ReportChange(root) }

func (i *Instance) ReportDeleted(root *ast.Node, kind string) {
	i.recorder.ReportDeleted(root, kind)
}

// BeginVerification takes a fresh baseline snapshot; call before
// RunPasses if you want Audit scoped to just the passes that follow
// (e.g. once per compilation unit, or once per debugging session).
func (i *Instance) BeginVerification() {
	i.baseline = verify.TakeSnapshot(i.Tree.Root)
	i.recorder = verify.NewRecorder(nil)
	i.Tree.SetReporter(i)
}

// RunPasses drives the pass manager and, if a baseline was taken,
// audits the result against §4.10's three contract conditions,
// forwarding any violation to the diagnostic sink.
func (i *Instance) RunPasses(ctx *pass.Context) error {
	if i.Logger != nil {
		i.Logger.Info("running pass manager")
	}
	err := i.Manager.Run(ctx)
	if i.baseline != nil {
		for _, r := range verify.Audit(i.baseline, i.Tree.Root, i.recorder) {
			i.Sink.Report(r)
		}
	}
	if err != nil {
		return wrapFatal(err)
	}
	return nil
}
