// Command ecmaoptcheck is a thin CLI wiring the analytical core end to
// end for manual use (SPEC_FULL.md "[ADD] thin CLI"): read a source
// file, parse it, run the pass manager (optionally with a conformance
// pass loaded from a YAML rule file), and print diagnostics.
//
// Lexing/parsing stays an external collaborator (§1), so this binary
// only runs once a source.Parser implementation is registered — see
// Parser below.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/viant/ecmaopt/ast"
	"github.com/viant/ecmaopt/compiler"
	"github.com/viant/ecmaopt/conformance"
	"github.com/viant/ecmaopt/diagnostic"
	"github.com/viant/ecmaopt/pass"
	"github.com/viant/ecmaopt/scope"
	"github.com/viant/ecmaopt/source"
)

// Parser is the external lexer/parser collaborator this command needs
// in order to do anything (§1: "lexing and parsing to raw AST" is out
// of scope for this module). A build that wants a working binary sets
// this from an init() in a file that imports a real implementation;
// left nil here, run reports a clear error instead of guessing.
var Parser source.Parser

func main() {
	input := flag.String("input", "", "path to the JavaScript source file to check")
	conformancePath := flag.String("conformance", "", "path to a YAML conformance rule configuration")
	featureSetName := flag.String("feature-set", "es2017", "lowest feature set to enforce (es3|es5|es2015|es2017)")
	flag.Parse()

	hasErrors, err := run(*input, *conformancePath, *featureSetName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ecmaoptcheck:", err)
		os.Exit(1)
	}
	if hasErrors {
		os.Exit(1)
	}
}

// run returns (hasErrors, err): err is a hard failure (bad flags, I/O,
// a parse or internal error), hasErrors is "the run completed but the
// diagnostic sink collected at least one error-level record."
func run(inputPath, conformancePath, featureSetName string) (bool, error) {
	if Parser == nil {
		return false, fmt.Errorf("no source.Parser registered; this core does not parse JavaScript itself (SPEC_FULL.md §1)")
	}
	if inputPath == "" {
		return false, fmt.Errorf("-input is required")
	}

	src, err := os.ReadFile(inputPath)
	if err != nil {
		return false, err
	}

	root, err := Parser.Parse(inputPath, src)
	if err != nil {
		return false, err
	}

	featureSet, err := parseFeatureSet(featureSetName)
	if err != nil {
		return false, err
	}

	tree := ast.NewTree(root)
	sink := &diagnostic.Collector{}

	logger, err := zap.NewProduction()
	if err != nil {
		return false, err
	}
	defer logger.Sync() //nolint:errcheck

	manager := pass.NewManager(sink, pass.WithLogger(logger.Sugar()), pass.WithConfig(pass.Config{
		MaxIterations:     100,
		DefaultFeatureSet: featureSet,
	}))

	if conformancePath != "" {
		data, err := os.ReadFile(conformancePath)
		if err != nil {
			return false, err
		}
		rules, err := conformance.LoadConfig(data)
		if err != nil {
			return false, err
		}
		manager.Register(&conformancePass{engine: conformance.NewEngine(rules), file: inputPath, sink: sink})
	}

	scopes := scope.NewCreator(func(*ast.Scope, *ast.Node) {}, func(*ast.Node) *ast.Node { return root })
	inst := compiler.New(tree, scopes, sink, manager)
	inst.Logger = logger.Sugar()
	inst.BeginVerification()

	runErr := inst.RunPasses(&pass.Context{Tree: tree, FeatureSet: featureSet})

	for _, r := range sink.Records {
		fmt.Fprintln(os.Stderr, r.String())
	}
	if runErr != nil {
		return false, runErr
	}
	return sink.HasErrors(), nil
}

// conformancePass wraps conformance.Engine as a one-shot pass so it
// can be registered on the same manager as every other transformation.
type conformancePass struct {
	engine *conformance.Engine
	file   string
	sink   diagnostic.Sink
}

func (p *conformancePass) Name() string              { return "conformance" }
func (p *conformancePass) FeatureSet() ast.FeatureSet { return ast.FeatureES3 }
func (p *conformancePass) Repeatable() bool           { return false }

func (p *conformancePass) Run(ctx *pass.Context) error {
	for _, r := range p.engine.Check(&conformance.Traversal{File: p.file}, ctx.Tree.Root) {
		p.sink.Report(r)
	}
	return nil
}

func parseFeatureSet(name string) (ast.FeatureSet, error) {
	switch name {
	case "es3":
		return ast.FeatureES3, nil
	case "es5":
		return ast.FeatureES5, nil
	case "es2015":
		return ast.FeatureES2015, nil
	case "es2017", "":
		return ast.FeatureES2017, nil
	default:
		return 0, fmt.Errorf("unknown feature set %q", name)
	}
}
