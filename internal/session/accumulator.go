package session

import (
	"strings"

	"github.com/itsmostafa/prayog/internal/engine"
)

// Completion explains why IsComplete reached its decision.
type Completion int

const (
	// Incomplete means more input is needed
	Incomplete Completion = iota
	// CompleteTerminated means the buffer ends with a statement terminator
	CompleteTerminated
	// CompleteBlock means the buffer starts with a block keyword and is balanced
	CompleteBlock
	// CompleteExpression means the buffer is a balanced bare expression
	CompleteExpression
)

func (c Completion) String() string {
	switch c {
	case CompleteTerminated:
		return "terminated"
	case CompleteBlock:
		return "block"
	case CompleteExpression:
		return "expression"
	default:
		return "incomplete"
	}
}

// Complete reports whether c yields a unit.
func (c Completion) Complete() bool {
	return c != Incomplete
}

// Accumulator buffers raw lines until they form one structurally complete unit.
// It is not safe for concurrent use.
type Accumulator struct {
	dialect engine.Dialect
	buffer  strings.Builder
	counter int
}

// NewAccumulator returns an empty accumulator whose unit counter starts at 1.
func NewAccumulator(dialect engine.Dialect) *Accumulator {
	return &Accumulator{dialect: dialect, counter: 1}
}

// Accept appends line to the pending buffer. When the buffer forms a complete
// unit it is returned with complete set, and the buffer is cleared.
func (a *Accumulator) Accept(line string) (unit string, complete bool) {
	if body, ok := cutContinuation(line, a.dialect.ContinuationMarker); ok {
		a.buffer.WriteString(body)
		return "", false
	}

	a.buffer.WriteString(line)
	a.buffer.WriteString("\n")

	if !IsComplete(a.buffer.String(), a.dialect).Complete() {
		return "", false
	}

	unit = a.buffer.String()
	a.buffer.Reset()
	a.counter++
	return unit, true
}

// Pending returns the text accumulated so far.
func (a *Accumulator) Pending() string {
	return a.buffer.String()
}

// HasPending reports whether any text is waiting for more input.
func (a *Accumulator) HasPending() bool {
	return a.buffer.Len() > 0
}

// Reset abandons any pending text.
func (a *Accumulator) Reset() {
	a.buffer.Reset()
}

// Counter returns the number of the unit currently being typed.
func (a *Accumulator) Counter() int {
	return a.counter
}

// cutContinuation strips an unescaped trailing continuation marker from line.
// A marker preceded by another marker is an escaped marker, not a request.
func cutContinuation(line, marker string) (string, bool) {
	if marker == "" {
		return line, false
	}
	trimmed := strings.TrimRight(line, " \t\r")
	if !strings.HasSuffix(trimmed, marker) {
		return line, false
	}
	run := 0
	for rest := trimmed; strings.HasSuffix(rest, marker); rest = strings.TrimSuffix(rest, marker) {
		run++
	}
	if run%2 == 0 {
		return line, false
	}
	return strings.TrimSuffix(trimmed, marker), true
}

// IsComplete decides whether buffer holds one complete unit. Delimiters are
// counted per kind over the whole buffer; string and comment contents are not
// special-cased and mismatched kinds such as "(]" are left for the engine to reject.
func IsComplete(buffer string, dialect engine.Dialect) Completion {
	code := strings.TrimSpace(buffer)
	if code == "" {
		return Incomplete
	}

	braces := strings.Count(code, "{") - strings.Count(code, "}")
	brackets := strings.Count(code, "[") - strings.Count(code, "]")
	parens := strings.Count(code, "(") - strings.Count(code, ")")
	if braces != 0 || brackets != 0 || parens != 0 {
		return Incomplete
	}

	if dialect.Terminator != "" && strings.HasSuffix(code, dialect.Terminator) {
		return CompleteTerminated
	}
	if hasKeyword(leadingWord(code), dialect.BlockKeywords) {
		return CompleteBlock
	}
	return CompleteExpression
}
