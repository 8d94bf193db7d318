package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/itsmostafa/prayog/internal/engine"
	"github.com/itsmostafa/prayog/internal/value"
)

var exitCommands = []string{"exit", "exit()", "quit", "quit()"}

// Coordinator drives single evaluations against an engine and keeps the
// store in step with what each evaluation did.
type Coordinator struct {
	engine engine.Engine
	store  *Store
	stdout io.Writer
	logger *slog.Logger
}

// NewCoordinator returns a coordinator that runs units on eng, persists
// bindings in store and writes produced output to stdout.
func NewCoordinator(eng engine.Engine, store *Store, stdout io.Writer, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		engine: eng,
		store:  store,
		stdout: stdout,
		logger: logger,
	}
}

// Store returns the store this coordinator reconciles into.
func (c *Coordinator) Store() *Store {
	return c.store
}

// Engine returns the engine units run on.
func (c *Coordinator) Engine() engine.Engine {
	return c.engine
}

// Evaluate runs one unit and returns its outcome. Failures never escape as
// errors or panics; they become a Failed outcome with the store untouched and
// any output the unit produced discarded.
func (c *Coordinator) Evaluate(ctx context.Context, raw string) Outcome {
	code := strings.TrimSpace(raw)
	if code == "" {
		return VoidOutcome()
	}
	if slices.Contains(exitCommands, code) {
		return ExitOutcome()
	}

	dialect := c.engine.Dialect()
	class, body := Classify(code, dialect)
	source := code
	if class == Expression {
		source = Wrap(body, dialect)
	}

	before := c.store.Get()

	start := time.Now()
	res, output, err := c.run(ctx, source, before)
	elapsed := time.Since(start)

	if err != nil {
		failure := engine.Classify(err)
		c.logger.Debug("evaluation failed",
			slog.String("class", class.String()),
			slog.String("kind", failure.Kind.String()),
			slog.Duration("elapsed", elapsed))
		return FailureOutcome(failure)
	}

	c.emit(output)

	changed := c.store.Reconcile(before, res.Bindings)
	c.logger.Debug("evaluation finished",
		slog.String("class", class.String()),
		slog.Duration("elapsed", elapsed),
		slog.Int("output_bytes", len(output)),
		slog.Any("changed", changed))

	if res.Value == nil {
		return VoidOutcome()
	}
	return ValueOutcome(res.Value)
}

// run invokes the engine inside a scoped output capture. The capture is
// released on every path, including a panicking engine.
func (c *Coordinator) run(ctx context.Context, source string, before value.Bindings) (res *engine.Result, output string, err error) {
	buf := &capture{}
	defer func() {
		captured := buf.release()
		if r := recover(); r != nil {
			res, output = nil, ""
			err = &engine.Error{Kind: engine.EngineFailure, Message: fmt.Sprint(r)}
			return
		}
		if err == nil {
			output = captured
		}
	}()

	res, err = c.engine.Run(ctx, engine.Request{
		Source:   source,
		Bindings: before.Clone(),
		Stdout:   buf,
	})
	if err == nil && res == nil {
		res = &engine.Result{}
	}
	return res, "", err
}

// emit writes produced output, adding a newline so the next prompt starts
// on its own line.
func (c *Coordinator) emit(output string) {
	if output == "" || c.stdout == nil {
		return
	}
	io.WriteString(c.stdout, output)
	if !strings.HasSuffix(output, "\n") {
		io.WriteString(c.stdout, "\n")
	}
}
