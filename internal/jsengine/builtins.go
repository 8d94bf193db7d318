package jsengine

import (
	"fmt"
	"io"
	"strings"

	"github.com/dop251/goja"
)

// setupEnvironment installs the host builtins. Everything they print goes
// to out.
func (e *Engine) setupEnvironment(vm *goja.Runtime, out io.Writer) error {
	printFunc := func(call goja.FunctionCall) goja.Value {
		fmt.Fprintln(out, joinArgs(call.Arguments, " "))
		return goja.Undefined()
	}
	if err := vm.Set("print", printFunc); err != nil {
		return fmt.Errorf("failed to set print: %w", err)
	}

	echoFunc := func(call goja.FunctionCall) goja.Value {
		io.WriteString(out, joinArgs(call.Arguments, ""))
		return goja.Undefined()
	}
	if err := vm.Set("echo", echoFunc); err != nil {
		return fmt.Errorf("failed to set echo: %w", err)
	}

	// console.log is an alias for print
	console := vm.NewObject()
	if err := console.Set("log", printFunc); err != nil {
		return fmt.Errorf("failed to set console.log: %w", err)
	}
	if err := vm.Set("console", console); err != nil {
		return fmt.Errorf("failed to set console: %w", err)
	}

	if err := e.setupRegexModule(vm); err != nil {
		return fmt.Errorf("failed to setup regex module: %w", err)
	}
	if err := e.setupFSModule(vm); err != nil {
		return fmt.Errorf("failed to setup fs module: %w", err)
	}
	return nil
}

func joinArgs(args []goja.Value, sep string) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, sep)
}

// setupRegexModule adds the 're' object with regex helper functions.
func (e *Engine) setupRegexModule(vm *goja.Runtime) error {
	re := vm.NewObject()

	// re.findAll(pattern, text) -> array of matches
	findAll := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("findAll requires 2 arguments: pattern, text"))
		}
		matches, err := e.re.FindAll(call.Arguments[0].String(), call.Arguments[1].String())
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return stringArray(vm, matches)
	}
	if err := re.Set("findAll", findAll); err != nil {
		return err
	}

	// re.search(pattern, text) -> first match or empty string
	search := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("search requires 2 arguments: pattern, text"))
		}
		match, err := e.re.Search(call.Arguments[0].String(), call.Arguments[1].String())
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(match)
	}
	if err := re.Set("search", search); err != nil {
		return err
	}

	// re.split(pattern, text, n) -> array of strings
	split := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("split requires at least 2 arguments: pattern, text"))
		}
		n := -1
		if len(call.Arguments) >= 3 {
			n = int(call.Arguments[2].ToInteger())
		}
		parts, err := e.re.Split(call.Arguments[0].String(), call.Arguments[1].String(), n)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return stringArray(vm, parts)
	}
	if err := re.Set("split", split); err != nil {
		return err
	}

	// re.replace(pattern, text, replacement) -> replaced string
	replace := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 3 {
			panic(vm.NewTypeError("replace requires 3 arguments: pattern, text, replacement"))
		}
		result, err := e.re.Replace(call.Arguments[0].String(), call.Arguments[1].String(), call.Arguments[2].String())
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(result)
	}
	if err := re.Set("replace", replace); err != nil {
		return err
	}

	return vm.Set("re", re)
}

// setupFSModule adds the 'fs' object with filesystem functions.
func (e *Engine) setupFSModule(vm *goja.Runtime) error {
	fsModule := e.config.FS
	fs := vm.NewObject()

	// fs.list(path) -> array of {name, isDir, size}
	list := func(call goja.FunctionCall) goja.Value {
		path := "."
		if len(call.Arguments) > 0 {
			path = call.Arguments[0].String()
		}
		entries, err := fsModule.List(path)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		items := make([]any, len(entries))
		for i, entry := range entries {
			obj := vm.NewObject()
			_ = obj.Set("name", entry.Name)
			_ = obj.Set("isDir", entry.IsDir)
			_ = obj.Set("size", entry.Size)
			items[i] = obj
		}
		return vm.NewArray(items...)
	}
	if err := fs.Set("list", list); err != nil {
		return err
	}

	// fs.read(path) -> string content
	read := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.NewTypeError("fs.read requires 1 argument: path"))
		}
		content, err := fsModule.Read(call.Arguments[0].String())
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(content)
	}
	if err := fs.Set("read", read); err != nil {
		return err
	}

	// fs.glob(pattern) -> array of matching paths
	glob := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.NewTypeError("fs.glob requires 1 argument: pattern"))
		}
		matches, err := fsModule.Glob(call.Arguments[0].String())
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return stringArray(vm, matches)
	}
	if err := fs.Set("glob", glob); err != nil {
		return err
	}

	// fs.exists(path) -> boolean
	exists := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.NewTypeError("fs.exists requires 1 argument: path"))
		}
		return vm.ToValue(fsModule.Exists(call.Arguments[0].String()))
	}
	if err := fs.Set("exists", exists); err != nil {
		return err
	}

	// fs.stat(path) -> host file info
	stat := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.NewTypeError("fs.stat requires 1 argument: path"))
		}
		info, err := fsModule.Stat(call.Arguments[0].String())
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(info)
	}
	if err := fs.Set("stat", stat); err != nil {
		return err
	}

	return vm.Set("fs", fs)
}

func stringArray(vm *goja.Runtime, items []string) goja.Value {
	values := make([]any, len(items))
	for i, s := range items {
		values[i] = s
	}
	return vm.NewArray(values...)
}
