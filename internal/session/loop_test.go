package session

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmostafa/prayog/internal/input"
)

func newTestLoop(lines ...any) (*Loop, *scriptedSource, *bytes.Buffer) {
	out := &bytes.Buffer{}
	eng := &fakeEngine{}
	store := NewStore(NamePolicy{PrivatePrefix: "_"}.WithInternal(eng.Reserved()...))
	coord := NewCoordinator(eng, store, out, discardLogger())
	source := &scriptedSource{lines: lines}
	loop := NewLoop(source, coord, plainPresenter{}, out, LoopOptions{
		Prompt:   "prayog> ",
		Welcome:  "welcome\n",
		Farewell: "\nGoodbye!\n",
		Logger:   discardLogger(),
	})
	return loop, source, out
}

func TestLoop_EvaluatesUntilEOF(t *testing.T) {
	loop, source, out := newTestLoop("2 + 2", "$x = 42;", "$x + 1")

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, "welcome\n4\n43\n\nGoodbye!\n", out.String())
	assert.Equal(t, Terminated, loop.State())
	assert.Equal(t, 1, source.saved)
	assert.Equal(t, []string{"2 + 2", "$x = 42;", "$x + 1"}, source.recorded)
}

func TestLoop_ExitStopsReading(t *testing.T) {
	loop, source, out := newTestLoop("1", "exit", "2")

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, "welcome\n1\n\nGoodbye!\n", out.String())
	assert.Len(t, source.lines, 1, "the line after exit is never read")
	assert.Equal(t, 1, source.saved)
}

func TestLoop_PromptFormat(t *testing.T) {
	loop, source, _ := newTestLoop("if (true) {", "}", "1")

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, []string{
		"[1] prayog> ",
		"[1]      *> ",
		"[2] prayog> ",
		"[3] prayog> ",
	}, source.prompts)
}

func TestLoop_ContinuationPromptWithShortPrompt(t *testing.T) {
	out := &bytes.Buffer{}
	eng := &fakeEngine{}
	coord := NewCoordinator(eng, NewStore(NamePolicy{}), out, discardLogger())
	source := &scriptedSource{lines: []any{"foo(", ")"}}
	loop := NewLoop(source, coord, plainPresenter{}, out, LoopOptions{Prompt: "> ", Logger: discardLogger()})

	_ = loop.Run(context.Background())
	require.GreaterOrEqual(t, len(source.prompts), 2)
	assert.Equal(t, "[1] *> ", source.prompts[1])
}

func TestLoop_FailureIsReportedAndLoopContinues(t *testing.T) {
	loop, _, out := newTestLoop("$missing + 1", "1 + 1")

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, "welcome\nError (RuntimeError): undefined variable $missing\n2\n\nGoodbye!\n", out.String())
	assert.Equal(t, 1, loop.Failures())
}

func TestLoop_PendingInputIsEvaluatedAtEOF(t *testing.T) {
	loop, _, out := newTestLoop(`1 + \`)

	require.NoError(t, loop.Run(context.Background()))
	assert.Contains(t, out.String(), "Error (SyntaxError)")

	loop, _, out = newTestLoop("$a = 1;", `$a + \`, "1 + 2", `$a + \`)
	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, "welcome\n4\nError (SyntaxError): unexpected \"\"\n\nGoodbye!\n", out.String())
}

func TestLoop_InterruptDropsPendingInput(t *testing.T) {
	loop, source, out := newTestLoop("foo(", input.ErrInterrupt, "5")

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, "welcome\n5\n\nGoodbye!\n", out.String())
	assert.Equal(t, "[1] prayog> ", source.prompts[2])
}

func TestLoop_BlankLinesAreSkipped(t *testing.T) {
	loop, source, out := newTestLoop("", "   ", "7")

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, "welcome\n7\n\nGoodbye!\n", out.String())
	assert.Equal(t, []string{"7"}, source.recorded)
	assert.Equal(t, "[1] prayog> ", source.prompts[2])
}

func TestLoop_ReadErrorEndsSession(t *testing.T) {
	loop, source, out := newTestLoop("1", errors.New("tty gone"))

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, "welcome\n1\n\nGoodbye!\n", out.String())
	assert.Equal(t, 1, source.saved)
}

func TestLoop_HistorySaveFailureIsReturned(t *testing.T) {
	loop, source, out := newTestLoop("1")
	source.saveErr = errors.New("read-only")

	err := loop.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
	assert.Contains(t, out.String(), "Goodbye!")
	assert.Equal(t, Terminated, loop.State())
}

func TestLoop_CancelledContextTerminates(t *testing.T) {
	loop, source, _ := newTestLoop("1", "2")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, loop.Run(ctx))
	assert.Len(t, source.lines, 2)
	assert.Equal(t, Terminated, loop.State())
}

func TestLoop_StringResultsArePresented(t *testing.T) {
	loop, _, out := newTestLoop(`"hi"`)

	require.NoError(t, loop.Run(context.Background()))
	assert.Contains(t, out.String(), "\"hi\"\n")
}
