package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func TestEnvSpecializeThenClearRestoresDeclared(t *testing.T) {
	e := NewEnv()
	e.SetDeclared("x", Union(String(), Null()))
	e.Specialize("x", String())
	assert.True(t, Equal(e.Get("x"), String()))

	e.ClearSpecialization()
	assert.True(t, Equal(e.Get("x"), Union(String(), Null())))
}

func TestJoinEnvMissingKeyFallsBackToDeclared(t *testing.T) {
	a := NewEnv()
	a.SetDeclared("x", Number())
	a.SetDeclared("y", String())
	a.Specialize("y", String())

	b := NewEnv()
	b.SetDeclared("x", Number())
	b.Specialize("x", Number())
	// b never saw y at all, but has it declared — join falls back to
	// declared type rather than Unknown.
	b.SetDeclared("y", String())

	joined := JoinEnv(a, b)
	assert.True(t, Equal(joined.Get("x"), Number()))
	assert.True(t, Equal(joined.Get("y"), String()))
}

// go-cmp's diff beats assert.Equal's flat "expected/actual" dump once an
// environment snapshot spans more than a couple of names, so the join
// fixture here — where one name falls back to its declared type and
// another is jointly specialized — is checked with cmp.Diff instead.
// Type.TTL is a func field, which cmp refuses to compare by default, so
// it's excluded; every fixture type below leaves it nil anyway.
func TestJoinEnvMatchesExpectedSnapshotViaDiff(t *testing.T) {
	a := NewEnv()
	a.SetDeclared("x", Number())
	a.SetDeclared("y", String())
	a.Specialize("y", String())

	b := NewEnv()
	b.SetDeclared("x", Number())
	b.Specialize("x", Number())
	b.SetDeclared("y", String())

	joined := JoinEnv(a, b)
	got := map[string]*Type{}
	for _, name := range joined.Names() {
		got[name] = joined.Get(name)
	}
	want := map[string]*Type{
		"x": Number(),
		"y": String(),
	}

	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Type{}, "TTL")); diff != "" {
		t.Fatalf("joined environment snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvEqual(t *testing.T) {
	a := NewEnv()
	a.SetDeclared("x", Number())
	b := NewEnv()
	b.SetDeclared("x", Number())
	assert.True(t, EnvEqual(a, b))

	b.Specialize("x", String())
	assert.False(t, EnvEqual(a, b))
}
