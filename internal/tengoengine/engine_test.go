package tengoengine

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmostafa/prayog/internal/engine"
	"github.com/itsmostafa/prayog/internal/value"
)

func run(t *testing.T, e *Engine, src string, bindings value.Bindings) (*engine.Result, string) {
	t.Helper()
	var out bytes.Buffer
	res, err := e.Run(context.Background(), engine.Request{Source: src, Bindings: bindings, Stdout: &out})
	require.NoError(t, err)
	return res, out.String()
}

func TestEngine_ReturnsExpressionValue(t *testing.T) {
	e := New(DefaultConfig())

	res, _ := run(t, e, "return 2 + 2;", nil)
	assert.Equal(t, value.Int(4), res.Value)

	res, _ = run(t, e, "return a + 1;", value.Bindings{"a": value.Int(41)})
	assert.Equal(t, value.Int(42), res.Value)

	res, _ = run(t, e, `return "go" + "pher";`, nil)
	assert.Equal(t, value.String("gopher"), res.Value)
}

func TestEngine_MapsComeBackSorted(t *testing.T) {
	e := New(DefaultConfig())

	res, _ := run(t, e, `return {b: 1, a: [true, 2.5]};`, nil)
	m, ok := res.Value.(*value.Map)
	require.True(t, ok, "got %T", res.Value)
	assert.Equal(t, []string{"a", "b"}, m.Keys)
	assert.Equal(t, value.List{value.Bool(true), value.Float(2.5)}, m.Values["a"])
}

func TestEngine_StatementsRunWithoutValue(t *testing.T) {
	e := New(DefaultConfig())

	res, _ := run(t, e, "a := 5", nil)
	assert.Nil(t, res.Value)
	assert.Equal(t, value.Int(5), res.Bindings["a"])

	// not a single expression: runs as a statement
	res, _ = run(t, e, "return b := 6;", nil)
	assert.Nil(t, res.Value)
	assert.Equal(t, value.Int(6), res.Bindings["b"])
	assert.NotContains(t, res.Bindings, resultName)
}

func TestEngine_AssignmentUpdatesBinding(t *testing.T) {
	e := New(DefaultConfig())

	res, _ := run(t, e, "a = a * 2", value.Bindings{"a": value.Int(21)})
	assert.Equal(t, value.Int(42), res.Bindings["a"])
}

func TestEngine_OutputBuiltins(t *testing.T) {
	e := New(DefaultConfig())

	_, out := run(t, e, `println("hi", 1); print("a", "b"); echo("c", "d")`, nil)
	assert.Equal(t, "hi 1\na bcd", out)

	res, out := run(t, e, `return echo("hi");`, nil)
	assert.Nil(t, res.Value)
	assert.Equal(t, "hi", out)
}

func TestEngine_ImportedModulesPersist(t *testing.T) {
	e := New(DefaultConfig())

	res, _ := run(t, e, `text := import("text")`, nil)
	require.Contains(t, res.Bindings, "text")

	res, _ = run(t, e, `return text.to_upper("go");`, res.Bindings)
	assert.Equal(t, value.String("GO"), res.Value)
}

func TestEngine_UnlistedModulesAreUnavailable(t *testing.T) {
	e := New(DefaultConfig())

	_, err := e.Run(context.Background(), engine.Request{Source: `os := import("os")`})
	require.Error(t, err)
	assert.Equal(t, engine.SyntaxError, engine.Classify(err).Kind)
}

func TestEngine_CompiledFunctionsAreHandles(t *testing.T) {
	e := New(DefaultConfig())

	res, _ := run(t, e, "add := func(a, b) { return a + b }", nil)
	fn, ok := res.Bindings["add"].(*value.Object)
	require.True(t, ok)
	assert.Equal(t, "compiled-function", fn.Class)
}

func TestEngine_ErrorKinds(t *testing.T) {
	e := New(DefaultConfig())

	_, err := e.Run(context.Background(), engine.Request{Source: "return 1 +;"})
	require.Error(t, err)
	assert.Equal(t, engine.SyntaxError, engine.Classify(err).Kind)

	m := value.NewMap()
	_, err = e.Run(context.Background(), engine.Request{
		Source:   "return a + b;",
		Bindings: value.Bindings{"a": value.Int(1), "b": m},
	})
	require.Error(t, err)
	assert.Equal(t, engine.RuntimeError, engine.Classify(err).Kind)
}

func TestEngine_Timeout(t *testing.T) {
	config := DefaultConfig()
	config.Timeout = 50 * time.Millisecond
	e := New(config)

	_, err := e.Run(context.Background(), engine.Request{Source: "for {}"})
	require.Error(t, err)
	assert.Equal(t, engine.RuntimeError, engine.Classify(err).Kind)
	assert.Contains(t, err.Error(), "timed out")
}

func TestEngine_Reserved(t *testing.T) {
	e := New(DefaultConfig())
	assert.ElementsMatch(t, []string{"println", "print", "echo", resultName}, e.Reserved())
	assert.Equal(t, "tengo", e.Name())
	assert.Equal(t, ";", e.Dialect().Terminator)
}

func TestEngine_ReassigningBuiltinsFails(t *testing.T) {
	e := New(DefaultConfig())

	_, err := e.Run(context.Background(), engine.Request{Source: "println = 5"})
	require.Error(t, err)
	assert.Equal(t, engine.RuntimeError, engine.Classify(err).Kind)
	assert.Contains(t, err.Error(), "println is a builtin")

	res, out := run(t, e, `println("still here")`, nil)
	assert.Nil(t, res.Value)
	assert.Equal(t, "still here\n", out)
}

func TestConvert_RoundTrip(t *testing.T) {
	m := value.NewMap()
	m.Set("k", value.List{value.Int(1), value.String("x"), value.Null{}})

	got := fromTengo(toTengo(m))
	assert.True(t, value.Equal(m, got), "got %#v", got)

	now := time.Unix(1700000000, 0)
	res := fromTengo(toTengo(&value.Resource{Kind: "time", Handle: now}))
	r, ok := res.(*value.Resource)
	require.True(t, ok)
	assert.Equal(t, now, r.Handle)
}
