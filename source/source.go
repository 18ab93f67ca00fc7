// Package source defines the external collaborator boundaries named in
// §1 and §6 of SPEC_FULL.md: the lexer/parser, the emitter, and the
// module dependency graph the core consumes but never constructs itself.
// Grounded on inspector/repository/detector.go's project/module
// discovery, generalized from "find markers on disk" to "resolve a
// caller-supplied DAG" since file I/O itself stays external.
package source

import (
	"github.com/pkg/errors"
	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/diagnostic"
)

// Parser is the external lexer/parser collaborator boundary (§1: "Lexing
// and parsing to raw AST" is out of scope for the core).
type Parser interface {
	Parse(filename string, src []byte) (*ast.Node, error)
}

// Emitter is the external source-map/text-emission collaborator boundary
// (§1: "source-map generation; emission of final text").
type Emitter interface {
	Emit(root *ast.Node) ([]byte, error)
}

// ErrorManager is an alias kept for readability at call sites that treat
// the diagnostic sink specifically as "the error manager collaborator"
// (§6 wording).
type ErrorManager = diagnostic.Sink

// Module is a named group of input/extern files with an explicit
// dependency list (§6: "a set of modules (named groups with an explicit
// dependency DAG)").
type Module struct {
	Name      string
	Inputs    []string
	Externs   []string
	DependsOn []string
}

// ModuleSet is the collaborator-supplied module graph.
type ModuleSet struct {
	Modules map[string]*Module
}

// NewModuleSet builds an empty set ready for Add.
func NewModuleSet() *ModuleSet {
	return &ModuleSet{Modules: map[string]*Module{}}
}

// Add registers a module, erroring on duplicate names.
func (ms *ModuleSet) Add(m *Module) error {
	if _, exists := ms.Modules[m.Name]; exists {
		return errors.Errorf("source: duplicate module %q", m.Name)
	}
	ms.Modules[m.Name] = m
	return nil
}

// TopoOrder returns module names in dependency order (dependencies
// before dependents), so whole-program passes in pass.Manager can run
// module-at-a-time without observing a forward reference. Returns an
// error if the dependency graph has a cycle.
func (ms *ModuleSet) TopoOrder() ([]string, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	state := make(map[string]int, len(ms.Modules))
	var order []string

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case black:
			return nil
		case gray:
			return errors.Errorf("source: module dependency cycle: %v -> %s", path, name)
		}
		state[name] = gray
		m, ok := ms.Modules[name]
		if !ok {
			return errors.Errorf("source: unknown module %q referenced as a dependency", name)
		}
		for _, dep := range m.DependsOn {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = black
		order = append(order, name)
		return nil
	}

	// deterministic iteration: sort module names first
	names := make([]string, 0, len(ms.Modules))
	for name := range ms.Modules {
		names = append(names, name)
	}
	sortStrings(names)
	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
