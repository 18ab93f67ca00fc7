// Package pass implements the pass manager ("phase optimizer", §4.8):
// an ordered pass schedule with a fixed-point loop over repeatable
// groups, feature-set gating, an optional between-passes validity
// check, and optional debug source emission.
package pass

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/diagnostic"
	"github.com/viant/ecmaopt/source"
)

// Pass is one transformation or analysis stage the manager schedules
// (§4.8: "Each pass declares: Name..., a supported feature set...,
// whether it is one-shot or repeatable in a loop.").
type Pass interface {
	Name() string
	FeatureSet() ast.FeatureSet
	Repeatable() bool
	Run(ctx *Context) error
}

// Context is what a Pass receives to do its work: the tree it mutates
// (through ast.Node's own reporting mutation methods) and the program's
// currently active feature set.
type Context struct {
	Tree       *ast.Tree
	FeatureSet ast.FeatureSet
}

// Config is the manager's optional TOML-parsed run configuration
// (§4.8 [ADD]).
type Config struct {
	MaxIterations     int
	DefaultFeatureSet ast.FeatureSet
}

// ValidityCheck re-traverses the tree between passes in debug/testing
// mode and returns any invariant violations found (§4.8: "asserts
// invariants (no duplicate declarations, all references resolve,
// feature set matches annotation)").
type ValidityCheck func(root *ast.Node) []diagnostic.Record

// Manager runs registered passes in declared order (§4.8).
type Manager struct {
	passes []Pass

	sink     diagnostic.Sink
	logger   *zap.SugaredLogger
	config   Config
	emitter  source.Emitter
	debug    func(passName string, src []byte)
	validity ValidityCheck
}

// Option configures an optional Manager field at construction.
type Option func(*Manager)

func WithLogger(l *zap.SugaredLogger) Option { return func(m *Manager) { m.logger = l } }
func WithConfig(c Config) Option             { return func(m *Manager) { m.config = c } }
func WithEmitter(e source.Emitter) Option    { return func(m *Manager) { m.emitter = e } }

// WithDebugSink installs the "emit program source after each pass"
// hook (§6: "the pass manager emits the program source after each pass
// to a caller-provided sink. Ordering is 'pass name, then source
// text.'"). Only takes effect together with WithEmitter, since emission
// itself is out of scope for this module (§1).
func WithDebugSink(f func(passName string, src []byte)) Option {
	return func(m *Manager) { m.debug = f }
}

func WithValidityCheck(v ValidityCheck) Option {
	return func(m *Manager) { m.validity = v }
}

func NewManager(sink diagnostic.Sink, opts ...Option) *Manager {
	m := &Manager{
		sink:   sink,
		config: Config{MaxIterations: 100, DefaultFeatureSet: ast.FeatureES2017},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register appends p to the end of the declared pass order.
func (m *Manager) Register(p Pass) { m.passes = append(m.passes, p) }

// Run executes every registered pass in declared order (§4.8 "Run
// passes in declared order"), looping contiguous runs of repeatable
// passes to a fixed point.
func (m *Manager) Run(ctx *Context) error {
	i := 0
	for i < len(m.passes) {
		p := m.passes[i]
		if !p.Repeatable() {
			if err := m.checkFeatureSet(ctx, p); err != nil {
				return err
			}
			if _, err := m.runOne(ctx, p); err != nil {
				return err
			}
			m.runValidity(ctx)
			i++
			continue
		}

		j := i
		for j < len(m.passes) && m.passes[j].Repeatable() {
			j++
		}
		if err := m.runToFixedPoint(ctx, m.passes[i:j]); err != nil {
			return err
		}
		i = j
	}
	return nil
}

// runToFixedPoint implements §4.8's fixed-point contract: "loop until no
// pass reports any change in an entire iteration", bounded by
// Config.MaxIterations to catch an oscillating pass pair.
func (m *Manager) runToFixedPoint(ctx *Context, group []Pass) error {
	for iter := 0; ; iter++ {
		if m.config.MaxIterations > 0 && iter >= m.config.MaxIterations {
			m.sink.Report(diagnostic.Record{
				Key:     diagnostic.KeyInternalCompilerError,
				Level:   diagnostic.LevelError,
				Message: "pass group did not reach a fixed point within the configured iteration limit",
			})
			return errors.New("pass: fixed-point iteration limit exceeded")
		}
		anyChange := false
		for _, p := range group {
			if err := m.checkFeatureSet(ctx, p); err != nil {
				return err
			}
			changed, err := m.runOne(ctx, p)
			if err != nil {
				return err
			}
			anyChange = anyChange || changed
			m.runValidity(ctx)
		}
		if !anyChange {
			return nil
		}
	}
}

func (m *Manager) checkFeatureSet(ctx *Context, p Pass) error {
	if p.FeatureSet() > ctx.FeatureSet {
		return errors.Errorf("pass: %s requires feature set %s, program is at %s",
			p.Name(), p.FeatureSet(), ctx.FeatureSet)
	}
	return nil
}

func (m *Manager) runOne(ctx *Context, p Pass) (bool, error) {
	if m.logger != nil {
		m.logger.Infow("running pass", "pass", p.Name(), "featureSet", p.FeatureSet().String())
	}
	changed, err := ctx.Tree.TrackChanges(func() error { return p.Run(ctx) })
	if err != nil {
		return false, errors.Wrapf(err, "pass: %s failed", p.Name())
	}
	if m.emitter != nil && m.debug != nil {
		if src, emitErr := m.emitter.Emit(ctx.Tree.Root); emitErr == nil {
			m.debug(p.Name(), src)
		}
	}
	return changed, nil
}

func (m *Manager) runValidity(ctx *Context) {
	if m.validity == nil {
		return
	}
	for _, r := range m.validity(ctx.Tree.Root) {
		m.sink.Report(r)
	}
}
