// Package engine defines the contract between the interactive session and the
// execution engines that actually run code.
//
// Engines are stateless between calls: each Run receives the full set of
// bindings to start from and reports every binding visible when the call ends.
// The session owns persistence and decides which of those bindings to keep.
package engine

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/itsmostafa/prayog/internal/value"
)

// Engine runs one unit of source code.
type Engine interface {
	// Name returns a short identifier for this engine (e.g., "js", "tengo")
	Name() string

	// Dialect returns the lexical rules the session uses to accumulate and
	// classify units for this engine's language.
	Dialect() Dialect

	// Reserved returns names the engine injects for its own machinery. They
	// are reported back in Result.Bindings but must never become user state.
	Reserved() []string

	// Run executes req.Source with req.Bindings as its initial scope. Text the
	// code prints goes to req.Stdout. Failures are returned as *Error.
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request is the input of a single engine call.
type Request struct {
	// Source is the unit to run, already wrapped by the session if needed
	Source string

	// Bindings is the initial variable scope
	Bindings value.Bindings

	// Stdout receives anything the code writes to standard output
	Stdout io.Writer
}

// Result is the successful outcome of a single engine call.
type Result struct {
	// Value is the explicitly returned value, nil when none was produced
	Value value.Value

	// Bindings holds every name visible at the end of the call
	Bindings value.Bindings
}

// Dialect holds the lexical facts about a language that the completeness
// heuristic and the expression classifier need.
type Dialect struct {
	// ContinuationMarker at the end of a line requests another line
	ContinuationMarker string

	// Terminator ends a simple statement
	Terminator string

	// ReturnKeyword asks the engine to report a value
	ReturnKeyword string

	// BlockKeywords introduce constructs that are complete once balanced
	BlockKeywords []string

	// StatementKeywords mark a unit as a statement rather than an expression
	StatementKeywords []string
}

var returnPattern = regexp.MustCompile(`(?s)^\s*return\b(.*)$`)

// SplitReturn reports whether src starts with an explicit return and, if so,
// returns the returned expression with trailing terminators removed. An empty
// expression means the unit returns nothing.
func SplitReturn(src, terminator string) (string, bool) {
	m := returnPattern.FindStringSubmatch(src)
	if m == nil {
		return "", false
	}
	expr := strings.TrimSpace(m[1])
	if terminator != "" {
		for strings.HasSuffix(expr, terminator) {
			expr = strings.TrimSpace(strings.TrimSuffix(expr, terminator))
		}
	}
	return expr, true
}
