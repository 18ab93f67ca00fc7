package ast

// TrackChanges runs fn with the tree's reporter temporarily wrapped so
// every ReportChange/ReportDeleted call made during fn is observed, then
// restores the original reporter before returning. It answers "did fn
// mutate anything?" without exposing Tree's unexported reporter field,
// which is what pass.Manager needs to implement the fixed-point contract
// (§4.8: "a pass reports which scope roots it mutated").
func (t *Tree) TrackChanges(fn func() error) (changed bool, err error) {
	original := t.reporter
	tracker := &changeTrackingReporter{inner: original}
	t.reporter = tracker
	defer func() { t.reporter = original }()
	err = fn()
	return tracker.changed, err
}

type changeTrackingReporter struct {
	inner   ChangeReporter
	changed bool
}

func (c *changeTrackingReporter) ReportChange(root *Node) {
	c.changed = true
	c.inner.ReportChange(root)
}

func (c *changeTrackingReporter) ReportDeleted(root *Node, kind string) {
	c.changed = true
	c.inner.ReportDeleted(root, kind)
}
