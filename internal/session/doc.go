// Package session implements the interactive session engine: it accumulates
// raw lines into complete units, decides whether a unit is an expression whose
// value should be shown, runs it on a stateless engine with the persisted
// bindings, and reconciles the bindings the engine reports back.
//
// The flow for one cycle is:
//
//	line -> Accumulator -> unit -> Classify -> Coordinator.Evaluate -> Outcome -> Loop
//
// Only the Store lives for the whole session. Everything else is created and
// discarded within one cycle.
//
// A unit is an expression unless it starts with a statement keyword of the
// engine's dialect or is an assignment closed by the terminator, so `x = 1;`
// runs silently while `x = 1` shows the assigned value.
//
// Known limits of the completeness heuristic: delimiters inside string or
// comment literals are counted like any other, and mismatched delimiter kinds
// are reported as complete so that the engine rejects them.
package session
