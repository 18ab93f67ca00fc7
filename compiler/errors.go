package compiler

import (
	goerrors "github.com/go-errors/errors"
)

// FatalError is an internal invariant violation (§7: "fatal internal
// errors are tied to the current scope") carrying a captured stack
// trace for the host's diagnostic renderer, even though rendering
// itself stays external (§1).
type FatalError struct {
	inner *goerrors.Error
}

func (f *FatalError) Error() string { return f.inner.Error() }
func (f *FatalError) Stack() string { return string(f.inner.Stack()) }
func (f *FatalError) Unwrap() error { return f.inner.Err }

func wrapFatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{inner: goerrors.Wrap(err, 1)}
}
