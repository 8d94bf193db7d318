package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/itsmostafa/prayog/internal/engine"
	"github.com/itsmostafa/prayog/internal/value"
)

var testDialect = engine.Dialect{
	ContinuationMarker: `\`,
	Terminator:         ";",
	ReturnKeyword:      "return",
	BlockKeywords:      []string{"if", "function", "for"},
	StatementKeywords:  []string{"if", "function", "for", "echo", "throw", "panic"},
}

var fakeAssign = regexp.MustCompile(`^(\$\w+)\s*=\s*(.+?);?$`)

// fakeEngine understands just enough of a PHP-like language for the tests:
// returns of sums, assignments, echo, throw and panic.
type fakeEngine struct {
	sources []string
}

func (f *fakeEngine) Name() string             { return "fake" }
func (f *fakeEngine) Dialect() engine.Dialect { return testDialect }
func (f *fakeEngine) Reserved() []string       { return []string{"__internal"} }

func (f *fakeEngine) Run(_ context.Context, req engine.Request) (*engine.Result, error) {
	src := strings.TrimSpace(req.Source)
	f.sources = append(f.sources, src)

	bindings := req.Bindings.Clone()
	if bindings == nil {
		bindings = make(value.Bindings)
	}
	bindings["__internal"] = value.Int(1)
	res := &engine.Result{Bindings: bindings}

	switch {
	case strings.HasPrefix(src, "panic"):
		panic("engine exploded")
	case strings.HasPrefix(src, "throw"):
		io.WriteString(req.Stdout, "partial output")
		return nil, engine.Runtime(errors.New("boom"))
	case strings.HasPrefix(src, "echo "):
		arg := strings.TrimSuffix(strings.TrimPrefix(src, "echo "), ";")
		v, err := f.eval(arg, bindings)
		if err != nil {
			return nil, err
		}
		io.WriteString(req.Stdout, display(v))
		return res, nil
	case strings.HasPrefix(src, "if"), strings.HasPrefix(src, "function"):
		return res, nil
	}

	if expr, ok := engine.SplitReturn(src, ";"); ok {
		if m := fakeAssign.FindStringSubmatch(expr); m != nil {
			v, err := f.eval(m[2], bindings)
			if err != nil {
				return nil, err
			}
			bindings[m[1]] = v
			res.Value = v
			return res, nil
		}
		v, err := f.eval(expr, bindings)
		if err != nil {
			return nil, err
		}
		res.Value = v
		return res, nil
	}

	if m := fakeAssign.FindStringSubmatch(src); m != nil {
		v, err := f.eval(m[2], bindings)
		if err != nil {
			return nil, err
		}
		bindings[m[1]] = v
		return res, nil
	}
	return nil, engine.Syntax(fmt.Errorf("unexpected %q", src))
}

// eval adds up integer literals and variables, or returns a quoted string.
func (f *fakeEngine) eval(expr string, bindings value.Bindings) (value.Value, error) {
	expr = strings.TrimSpace(expr)
	if s, err := strconv.Unquote(expr); err == nil {
		return value.String(s), nil
	}
	var sum int64
	for _, part := range strings.Split(expr, "+") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "$") {
			v, ok := bindings[part]
			if !ok {
				return nil, engine.Runtime(fmt.Errorf("undefined variable %s", part))
			}
			n, ok := v.(value.Int)
			if !ok {
				return nil, engine.Runtime(fmt.Errorf("%s is not a number", part))
			}
			sum += int64(n)
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, engine.Syntax(fmt.Errorf("unexpected %q", part))
		}
		sum += n
	}
	return value.Int(sum), nil
}

func display(v value.Value) string {
	if s, ok := v.(value.String); ok {
		return string(s)
	}
	return fmt.Sprint(v)
}

// scriptedSource replays lines and records what the loop asked for.
type scriptedSource struct {
	lines    []any // string or error
	prompts  []string
	recorded []string
	saved    int
	saveErr  error
}

func (s *scriptedSource) ReadLine(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	next := s.lines[0]
	s.lines = s.lines[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

func (s *scriptedSource) RecordLine(line string) {
	s.recorded = append(s.recorded, line)
}

func (s *scriptedSource) SaveHistory() error {
	s.saved++
	return s.saveErr
}

var _ LineSource = (*scriptedSource)(nil)

// plainPresenter renders without styling.
type plainPresenter struct{}

func (plainPresenter) Format(v value.Value) string {
	switch x := v.(type) {
	case value.String:
		return strconv.Quote(string(x))
	default:
		return fmt.Sprint(v)
	}
}

func (plainPresenter) FormatError(kind engine.Kind, message string) string {
	return fmt.Sprintf("Error (%s): %s", kind, message)
}
