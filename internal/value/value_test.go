package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual_Scalars(t *testing.T) {
	assert.True(t, Equal(Int(4), Int(4)))
	assert.False(t, Equal(Int(4), Float(4)))
	assert.True(t, Equal(Null{}, Null{}))
	assert.False(t, Equal(Null{}, nil))
	assert.True(t, Equal(String("a"), String("a")))
	assert.False(t, Equal(Bool(true), Bool(false)))
}

func TestEqual_MapIgnoresKeyOrder(t *testing.T) {
	a := NewMap()
	a.Set("x", Int(1))
	a.Set("y", Int(2))

	b := NewMap()
	b.Set("y", Int(2))
	b.Set("x", Int(1))

	assert.True(t, Equal(a, b))

	b.Set("x", Int(3))
	assert.False(t, Equal(a, b))
}

func TestEqual_NestedList(t *testing.T) {
	a := List{Int(1), List{String("a")}}
	b := List{Int(1), List{String("a")}}
	c := List{Int(1), List{String("b")}}

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}

func TestEqual_Objects(t *testing.T) {
	f1 := &Object{Class: "Function", Source: "() => 1"}
	f2 := &Object{Class: "Function", Source: "() => 1"}
	f3 := &Object{Class: "Function", Source: "() => 2"}

	assert.True(t, Equal(f1, f2))
	assert.False(t, Equal(f1, f3))
	assert.True(t, Equal(&Resource{Kind: "int", Handle: 1}, &Resource{Kind: "int", Handle: 1}))
}

func TestMap_SetKeepsInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("b", Int(1))
	m.Set("a", Int(2))
	m.Set("b", Int(3))

	assert.Equal(t, []string{"b", "a"}, m.Keys)
	v, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, Int(3), v)
}

func TestBindings_CloneIsIndependent(t *testing.T) {
	b := Bindings{"x": Int(1)}
	c := b.Clone()
	c["x"] = Int(2)
	c["y"] = Int(3)

	assert.Equal(t, Int(1), b["x"])
	assert.NotContains(t, b, "y")
	assert.Equal(t, []string{"x", "y"}, c.Names())
}

func TestParseJSON(t *testing.T) {
	v, err := ParseJSON(`{"name": "ada", "age": 36, "scores": [1.5, 2], "ok": true, "none": null}`)
	require.NoError(t, err)

	m, ok := v.(*Map)
	require.True(t, ok)
	assert.Equal(t, []string{"age", "name", "none", "ok", "scores"}, m.Keys)
	assert.Equal(t, Int(36), m.Values["age"])
	assert.Equal(t, List{Float(1.5), Int(2)}, m.Values["scores"])
	assert.Equal(t, Null{}, m.Values["none"])

	_, err = ParseJSON(`1 2`)
	assert.Error(t, err)
}

func TestFromAnyUnknownTypeIsResource(t *testing.T) {
	type handle struct{ fd int }
	v := FromAny(handle{fd: 3})

	r, ok := v.(*Resource)
	require.True(t, ok)
	assert.Equal(t, "value.handle", r.Kind)
	assert.Equal(t, "resource", TypeName(v))
}
