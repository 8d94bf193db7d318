package tengoengine

import (
	"fmt"
	"io"
	"strings"

	"github.com/d5/tengo/v2"
)

// addBuiltinFunctions adds the output functions. All of them write to out.
func addBuiltinFunctions(script *tengo.Script, out io.Writer) {
	// println function
	_ = script.Add("println", &tengo.UserFunction{
		Name: "println",
		Value: func(args ...tengo.Object) (tengo.Object, error) {
			fmt.Fprintln(out, joinObjects(args, " "))
			return tengo.UndefinedValue, nil
		},
	})

	// print function (no newline)
	_ = script.Add("print", &tengo.UserFunction{
		Name: "print",
		Value: func(args ...tengo.Object) (tengo.Object, error) {
			io.WriteString(out, joinObjects(args, " "))
			return tengo.UndefinedValue, nil
		},
	})

	// echo concatenates its arguments
	_ = script.Add("echo", &tengo.UserFunction{
		Name: "echo",
		Value: func(args ...tengo.Object) (tengo.Object, error) {
			io.WriteString(out, joinObjects(args, ""))
			return tengo.UndefinedValue, nil
		},
	})
}

func joinObjects(args []tengo.Object, sep string) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = objectToString(arg)
	}
	return strings.Join(parts, sep)
}

// objectToString converts a Tengo object to its string representation
func objectToString(obj tengo.Object) string {
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return fmt.Sprintf("%d", v.Value)
	case *tengo.Float:
		return fmt.Sprintf("%g", v.Value)
	case *tengo.Bool:
		if !v.IsFalsy() {
			return "true"
		}
		return "false"
	case *tengo.Undefined:
		return "undefined"
	default:
		return obj.String()
	}
}
