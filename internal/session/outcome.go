package session

import (
	"github.com/itsmostafa/prayog/internal/engine"
	"github.com/itsmostafa/prayog/internal/value"
)

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	// Void means the unit ran and produced no value
	Void OutcomeKind = iota
	// Produced means the unit produced a value
	Produced
	// ExitRequested means the user asked to end the session
	ExitRequested
	// Failed means the unit did not run to completion
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Produced:
		return "value"
	case ExitRequested:
		return "exit"
	case Failed:
		return "failure"
	default:
		return "void"
	}
}

// Outcome is the result of one evaluation.
type Outcome struct {
	Kind OutcomeKind

	// Value is set when Kind is Produced
	Value value.Value

	// Failure is set when Kind is Failed
	Failure *engine.Error
}

// ValueOutcome returns a Produced outcome carrying v.
func ValueOutcome(v value.Value) Outcome {
	return Outcome{Kind: Produced, Value: v}
}

// VoidOutcome returns a Void outcome.
func VoidOutcome() Outcome {
	return Outcome{Kind: Void}
}

// ExitOutcome returns an ExitRequested outcome.
func ExitOutcome() Outcome {
	return Outcome{Kind: ExitRequested}
}

// FailureOutcome returns a Failed outcome for err.
func FailureOutcome(err error) Outcome {
	return Outcome{Kind: Failed, Failure: engine.Classify(err)}
}
