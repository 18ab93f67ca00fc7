package pass

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/viant/ecmaopt/ast"
)

// tomlConfig mirrors Config with plain strings for the fields that
// don't have a natural TOML scalar representation.
type tomlConfig struct {
	MaxIterations     int    `toml:"max_iterations"`
	DefaultFeatureSet string `toml:"default_feature_set"`
}

// LoadConfig parses a Config from TOML (§4.8 [ADD]: "the pass manager's
// iteration bound and default feature set are configurable").
func LoadConfig(data []byte) (Config, error) {
	var tc tomlConfig
	if _, err := toml.Decode(string(data), &tc); err != nil {
		return Config{}, errors.Wrap(err, "pass: decoding config")
	}
	fs, err := parseFeatureSet(tc.DefaultFeatureSet)
	if err != nil {
		return Config{}, err
	}
	return Config{MaxIterations: tc.MaxIterations, DefaultFeatureSet: fs}, nil
}

func parseFeatureSet(name string) (ast.FeatureSet, error) {
	switch name {
	case "", "es2017", "ES2017":
		return ast.FeatureES2017, nil
	case "es2015", "ES2015":
		return ast.FeatureES2015, nil
	case "es5", "ES5":
		return ast.FeatureES5, nil
	case "es3", "ES3":
		return ast.FeatureES3, nil
	default:
		return 0, errors.Errorf("pass: unknown feature set %q", name)
	}
}
