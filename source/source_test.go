package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopoOrderOrdersDependenciesFirst(t *testing.T) {
	ms := NewModuleSet()
	require.NoError(t, ms.Add(&Module{Name: "app", DependsOn: []string{"lib"}}))
	require.NoError(t, ms.Add(&Module{Name: "lib", DependsOn: []string{"util"}}))
	require.NoError(t, ms.Add(&Module{Name: "util"}))

	order, err := ms.TopoOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"util", "lib", "app"}, order)
}

func TestTopoOrderDetectsCycle(t *testing.T) {
	ms := NewModuleSet()
	require.NoError(t, ms.Add(&Module{Name: "a", DependsOn: []string{"b"}}))
	require.NoError(t, ms.Add(&Module{Name: "b", DependsOn: []string{"a"}}))

	_, err := ms.TopoOrder()
	assert.Error(t, err)
}

func TestAddRejectsDuplicateNames(t *testing.T) {
	ms := NewModuleSet()
	require.NoError(t, ms.Add(&Module{Name: "a"}))
	assert.Error(t, ms.Add(&Module{Name: "a"}))
}
