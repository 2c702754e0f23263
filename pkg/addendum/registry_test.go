package addendum

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	names := make([]string, 0)
	for _, typ := range reg.AllTypes() {
		names = append(names, typ.Name())
	}
	assert.Equal(t, []string{BaseType, TargetType, AliasType, NamespaceType}, names)

	base, ok := reg.Lookup(BaseType)
	require.True(t, ok)
	assert.Empty(t, base.Extends())
	assert.True(t, reg.IsAnnotation(TargetType))
}

func TestRegistry_Define(t *testing.T) {
	reg := NewRegistry()

	typ, err := reg.Define("Web_Route", WithProperties("path", "method", "path", ValueProperty))
	require.NoError(t, err)
	assert.Equal(t, BaseType, typ.Extends())
	assert.Equal(t, []string{"method", "path"}, typ.Properties())
	assert.True(t, typ.HasProperty(ValueProperty))
	assert.True(t, typ.HasProperty("path"))
	assert.False(t, typ.HasProperty("bogus"))
	assert.False(t, typ.Typed())

	tests := []struct {
		name string
		def  func() error
		msg  string
	}{
		{
			name: "duplicate",
			def:  func() error { _, err := reg.Define("Web_Route"); return err },
			msg:  "already registered",
		},
		{
			name: "empty name",
			def:  func() error { _, err := reg.Define(""); return err },
			msg:  "cannot be empty",
		},
		{
			name: "unknown parent",
			def:  func() error { _, err := reg.Define("Child", Extends("Missing")); return err },
			msg:  "parent type 'Missing'",
		},
		{
			name: "no parent",
			def:  func() error { _, err := reg.Define("Orphan", Extends("")); return err },
			msg:  "only the base type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def()
			var regErr *RegistrationError
			require.ErrorAs(t, err, &regErr)
			assert.Contains(t, regErr.Error(), tt.msg)
			assert.True(t, errors.Is(err, ErrRegistration))
		})
	}
}

func TestRegistry_IsSubtype(t *testing.T) {
	reg := NewRegistry()
	reg.MustDefine("Route")
	reg.MustDefine("Get", Extends("Route"))
	reg.MustDefine("CachedGet", Extends("Get"))

	assert.True(t, reg.IsSubtype("CachedGet", "Route"))
	assert.True(t, reg.IsSubtype("CachedGet", BaseType))
	assert.True(t, reg.IsSubtype("Route", "Route"))
	assert.False(t, reg.IsSubtype("Route", "Get"))
	assert.False(t, reg.IsSubtype("Unknown", BaseType))
	assert.False(t, reg.IsAnnotation("Unknown"))
}

func TestRegistry_SnapshotInvalidation(t *testing.T) {
	reg := NewRegistry()
	before := reg.AllTypes()
	assert.Len(t, before, 4)

	reg.MustDefine("Late")
	after := reg.AllTypes()
	assert.Len(t, after, 5)
	assert.Equal(t, "Late", after[4].Name())
}

func TestRegister_Typed(t *testing.T) {
	type cacheSpec struct {
		Annotation
		Timeout int
		Key     string `annotation:"cacheKey"`
		hidden  string
	}

	reg := NewRegistry()
	typ, err := Register[cacheSpec](reg, "Cache")
	require.NoError(t, err)
	assert.True(t, typ.Typed())
	assert.Equal(t, []string{"cacheKey", "timeout"}, typ.Properties())

	_, err = Register[string](reg, "NotAStruct")
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)

	type clash struct {
		A string `annotation:"same"`
		B string `annotation:"same"`
	}
	_, err = Register[clash](reg, "Clash")
	require.ErrorAs(t, err, &regErr)
	assert.Contains(t, err.Error(), "more than one field")

	assert.Panics(t, func() { MustRegister[cacheSpec](reg, "Cache") })
	assert.Panics(t, func() { reg.MustDefine("Cache") })
}
