package compiler

import (
	"testing"

	"go.uber.org/goleak"
)

// This package holds Instance, the module's top-level driver (the one
// that carries the optional zap logger), so it's the natural spot for a
// goroutine-leak guard over a test run.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
