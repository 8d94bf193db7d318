// Package jsengine runs JavaScript units on a fresh goja runtime per call.
package jsengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"time"

	"github.com/dop251/goja"

	"github.com/itsmostafa/prayog/internal/engine"
	"github.com/itsmostafa/prayog/internal/value"
)

const scriptName = "<repl>"

var dialect = engine.Dialect{
	ContinuationMarker: `\`,
	Terminator:         ";",
	ReturnKeyword:      "return",
	BlockKeywords: []string{
		"if", "else", "for", "while", "do", "switch", "try",
		"function", "async", "class", "import", "export",
	},
	StatementKeywords: []string{
		"if", "else", "for", "while", "do", "switch", "try",
		"function", "async", "class", "import", "export",
		"let", "const", "var", "return", "throw", "break", "continue",
	},
}

// builtinNames are the globals installed by setupEnvironment.
var builtinNames = []string{"print", "echo", "console", "re", "fs"}

// Config holds configuration for the JavaScript engine.
type Config struct {
	// Timeout bounds a single Run (0 = no limit)
	Timeout time.Duration

	// FS configures the fs host module
	FS *FSModule
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
		FS:      NewFSModule(),
	}
}

// Engine executes JavaScript code in a sandboxed goja environment.
type Engine struct {
	config Config
	re     *RegexModule
}

// New creates a JavaScript engine with the given config.
func New(config Config) *Engine {
	if config.FS == nil {
		config.FS = NewFSModule()
	}
	return &Engine{config: config, re: &RegexModule{}}
}

var _ engine.Engine = (*Engine)(nil)

// Name returns "js".
func (e *Engine) Name() string { return "js" }

// Dialect returns the JavaScript lexical rules.
func (e *Engine) Dialect() engine.Dialect { return dialect }

// Reserved returns the host builtin names.
func (e *Engine) Reserved() []string {
	return append([]string(nil), builtinNames...)
}

// Run executes req.Source. A source starting with return reports the value of
// the returned expression; anything else runs as a script with no value.
func (e *Engine) Run(ctx context.Context, req engine.Request) (*engine.Result, error) {
	// Create a new goja runtime for each execution (isolation)
	vm := goja.New()

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt("execution timeout or cancelled")
		case <-stop:
		}
	}()

	stdout := req.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	r := newRealm(vm)
	if err := e.setupEnvironment(vm, stdout); err != nil {
		return nil, &engine.Error{Kind: engine.EngineFailure, Message: err.Error(), Err: err}
	}
	builtins := snapshotBuiltins(vm)
	if err := inject(r, req.Bindings); err != nil {
		return nil, &engine.Error{Kind: engine.EngineFailure, Message: err.Error(), Err: err}
	}

	prog, wantValue, err := compile(req.Source)
	if err != nil {
		return nil, engine.Syntax(err)
	}

	val, err := vm.RunProgram(prog)
	if err != nil {
		return nil, runtimeError(err)
	}
	if name := replacedBuiltin(vm, builtins, req.Source); name != "" {
		return nil, engine.Runtime(fmt.Errorf("%s is a builtin and cannot be reassigned", name))
	}

	conv := newConverter(ctx, r)
	result := &engine.Result{Bindings: collect(vm, conv, req.Source)}
	if wantValue && val != nil && !goja.IsUndefined(val) {
		result.Value = conv.fromJS(val)
	}
	if conv.err != nil {
		return nil, runtimeError(conv.err)
	}
	return result, nil
}

func runtimeError(err error) *engine.Error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return engine.Runtime(fmt.Errorf("execution interrupted: %v", interrupted.Value()))
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return engine.Runtime(fmt.Errorf("execution interrupted: %w", err))
	}
	return engine.Runtime(err)
}

// compile turns a unit into a program. For explicit returns the expression is
// compiled in parentheses so object literals are not read as blocks; if that
// fails (several statements after return) the plain text is used and the
// completion value is reported.
func compile(src string) (*goja.Program, bool, error) {
	expr, ok := engine.SplitReturn(src, dialect.Terminator)
	if !ok {
		prog, err := goja.Compile(scriptName, src, false)
		return prog, false, err
	}
	if expr == "" {
		prog, err := goja.Compile(scriptName, "", false)
		return prog, false, err
	}
	if prog, err := goja.Compile(scriptName, "("+expr+"\n)", false); err == nil {
		return prog, true, nil
	}
	prog, err := goja.Compile(scriptName, expr, false)
	return prog, true, err
}

// inject installs bindings as globals. Builtin names are never overwritten
// and values that cannot be rebuilt are left out, so the store keeps them.
// Functions go first so that objects whose class is a bound constructor can
// get its prototype back.
func inject(r *realm, bindings value.Bindings) error {
	names := slices.DeleteFunc(bindings.Names(), func(name string) bool {
		return slices.Contains(builtinNames, name)
	})
	sort.SliceStable(names, func(i, j int) bool {
		return isFunction(bindings[names[i]]) && !isFunction(bindings[names[j]])
	})
	for _, name := range names {
		v := r.toJS(bindings[name])
		if v == nil {
			continue
		}
		if err := r.vm.Set(name, v); err != nil {
			return fmt.Errorf("failed to set variable %s: %w", name, err)
		}
	}
	return nil
}

// snapshotBuiltins records the values installed by setupEnvironment.
func snapshotBuiltins(vm *goja.Runtime) map[string]goja.Value {
	out := make(map[string]goja.Value, len(builtinNames))
	for _, name := range builtinNames {
		out[name] = vm.Get(name)
	}
	return out
}

// replacedBuiltin returns the first builtin name the unit rebound, either by
// assigning the global or by declaring a top-level binding of that name.
func replacedBuiltin(vm *goja.Runtime, builtins map[string]goja.Value, src string) string {
	declared := ExtractDeclarations(src)
	for _, name := range builtinNames {
		current := vm.GlobalObject().Get(name)
		if slices.Contains(declared, name) {
			if v, err := vm.RunString(name); err == nil {
				current = v
			}
		}
		if current == nil || !current.SameAs(builtins[name]) {
			return name
		}
	}
	return ""
}

// collect reports every binding visible after the run: enumerable globals plus
// lexical declarations, which live outside the global object.
func collect(vm *goja.Runtime, c *converter, src string) value.Bindings {
	out := make(value.Bindings)

	global := vm.GlobalObject()
	for _, name := range global.Keys() {
		if c.stopped() {
			return out
		}
		out[name] = c.fromJS(global.Get(name))
	}

	for _, name := range ExtractDeclarations(src) {
		if c.stopped() {
			return out
		}
		v, err := vm.RunString(name)
		if err != nil {
			continue
		}
		out[name] = c.fromJS(v)
	}
	return out
}

func isFunction(v value.Value) bool {
	o, ok := v.(*value.Object)
	return ok && o.Class == functionClass
}
