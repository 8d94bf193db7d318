// Package tengoengine runs Tengo units on a freshly compiled script per call.
package tengoengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/itsmostafa/prayog/internal/engine"
	"github.com/itsmostafa/prayog/internal/value"
)

// resultName receives the value of an explicit return.
const resultName = "__result__"

var dialect = engine.Dialect{
	ContinuationMarker: `\`,
	Terminator:         ";",
	ReturnKeyword:      "return",
	BlockKeywords:      []string{"if", "for", "func", "export"},
	StatementKeywords:  []string{"if", "for", "return", "export", "break", "continue"},
}

// Modules are the stdlib modules a unit may import. fmt and os are left out:
// output goes through the print builtins and the host stays out of reach.
var Modules = []string{"math", "text", "times", "rand", "json", "base64", "hex", "enum"}

var builtinNames = []string{"println", "print", "echo"}

// Config holds configuration for the Tengo engine.
type Config struct {
	// Timeout bounds a single Run (0 = no limit)
	Timeout time.Duration

	// MaxAllocs limits object allocations per Run (-1 = no limit)
	MaxAllocs int64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		MaxAllocs: 1000000,
	}
}

// Engine executes Tengo code.
type Engine struct {
	config  Config
	modules *tengo.ModuleMap
}

// New creates a Tengo engine with the given config.
func New(config Config) *Engine {
	return &Engine{config: config, modules: stdlib.GetModuleMap(Modules...)}
}

var _ engine.Engine = (*Engine)(nil)

// Name returns "tengo".
func (e *Engine) Name() string { return "tengo" }

// Dialect returns the Tengo lexical rules.
func (e *Engine) Dialect() engine.Dialect { return dialect }

// Reserved returns the builtin names and the result slot.
func (e *Engine) Reserved() []string {
	return append(append([]string(nil), builtinNames...), resultName)
}

// Run compiles and runs req.Source. An explicit return is compiled as an
// assignment to the result slot; when the returned text is not a single
// expression it runs as plain statements and reports no value.
func (e *Engine) Run(ctx context.Context, req engine.Request) (*engine.Result, error) {
	stdout := req.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	expr, isReturn := engine.SplitReturn(req.Source, dialect.Terminator)

	var (
		compiled  *tengo.Compiled
		wantValue bool
		err       error
	)
	switch {
	case !isReturn:
		compiled, err = e.compile(req.Source, req.Bindings, stdout)
	case expr == "":
		compiled, err = e.compile("", req.Bindings, stdout)
	default:
		compiled, err = e.compile(resultName+" := ("+expr+")", req.Bindings, stdout)
		wantValue = err == nil
		if err != nil {
			compiled, err = e.compile(expr, req.Bindings, stdout)
		}
	}
	if err != nil {
		return nil, engine.Syntax(err)
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}
	if err := compiled.RunContext(ctx); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, engine.Runtime(fmt.Errorf("execution timed out after %s", e.config.Timeout))
		}
		return nil, engine.Runtime(err)
	}
	if name := replacedBuiltin(compiled); name != "" {
		return nil, engine.Runtime(fmt.Errorf("%s is a builtin and cannot be reassigned", name))
	}

	result := &engine.Result{Bindings: make(value.Bindings)}
	for _, v := range compiled.GetAll() {
		name := v.Name()
		if name == "" || name == resultName {
			continue
		}
		result.Bindings[name] = fromTengo(v.Object())
	}
	if wantValue {
		obj := compiled.Get(resultName).Object()
		if _, undefined := obj.(*tengo.Undefined); !undefined {
			result.Value = fromTengo(obj)
		}
	}
	return result, nil
}

// replacedBuiltin returns the first output builtin the unit assigned over.
func replacedBuiltin(compiled *tengo.Compiled) string {
	for _, name := range builtinNames {
		fn, ok := compiled.Get(name).Object().(*tengo.UserFunction)
		if !ok || fn.Name != name {
			return name
		}
	}
	return ""
}

func (e *Engine) compile(src string, bindings value.Bindings, stdout io.Writer) (*tengo.Compiled, error) {
	script := tengo.NewScript([]byte(src))
	script.SetImports(e.modules)
	if e.config.MaxAllocs != 0 {
		script.SetMaxAllocs(e.config.MaxAllocs)
	}

	for _, name := range bindings.Names() {
		if slices.Contains(builtinNames, name) || name == resultName {
			continue
		}
		if err := script.Add(name, toTengo(bindings[name])); err != nil {
			return nil, fmt.Errorf("failed to add variable %s: %w", name, err)
		}
	}
	addBuiltinFunctions(script, stdout)

	return script.Compile()
}
