package addendum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreationStack(t *testing.T) {
	stack := newCreationStack()

	require.NoError(t, stack.push("Outer"))
	require.NoError(t, stack.push("Inner"))
	assert.True(t, stack.Contains("Outer"))
	assert.Equal(t, []string{"Outer", "Inner"}, stack.Snapshot())

	err := stack.push("Outer")
	var circular *CircularReferenceError
	require.ErrorAs(t, err, &circular)
	assert.Equal(t, "Outer", circular.Type)
	assert.Equal(t, 2, stack.Len())

	stack.pop("Inner")
	stack.pop("Outer")
	assert.Equal(t, 0, stack.Len())
	assert.False(t, stack.Contains("Outer"))
}

type mapProvider map[string]*ClassInfo

func (p mapProvider) Class(name string) (*ClassInfo, bool) {
	info, ok := p[name]
	return info, ok
}

func TestEngine_GuardReleasedOnError(t *testing.T) {
	reg := NewRegistry()
	reg.MustDefine("Outer", WithProperties("inner"))
	reg.MustDefine("Inner", WithDoc(`@Target("class")`))
	provider := mapProvider{
		"C": {Name: "C", Doc: "@Outer(inner=@Inner)"},
	}
	engine := New(reg, WithProvider(provider))

	_, err := engine.Reflect("C")
	var noNesting *NoNestingAllowedError
	require.ErrorAs(t, err, &noNesting)
	assert.Equal(t, 0, engine.guard.Len())
	assert.Empty(t, engine.meta)
}
