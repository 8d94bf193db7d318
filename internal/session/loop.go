package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/itsmostafa/prayog/internal/engine"
	"github.com/itsmostafa/prayog/internal/input"
	"github.com/itsmostafa/prayog/internal/value"
)

// LineSource supplies raw lines typed by the user.
type LineSource interface {
	// ReadLine returns the next line without its terminator. It returns
	// io.EOF at end of input and input.ErrInterrupt when the user aborts
	// the current line.
	ReadLine(prompt string) (string, error)

	// RecordLine adds line to the history
	RecordLine(line string)

	// SaveHistory persists the history
	SaveHistory() error
}

// Presenter turns values and failures into display text.
type Presenter interface {
	Format(v value.Value) string
	FormatError(kind engine.Kind, message string) string
}

// State is the state of a Loop.
type State int

const (
	Running State = iota
	Terminating
	Terminated
)

func (s State) String() string {
	switch s {
	case Terminating:
		return "terminating"
	case Terminated:
		return "terminated"
	default:
		return "running"
	}
}

const continuationPrompt = "*> "

// LoopOptions configures a Loop.
type LoopOptions struct {
	// Prompt is shown before the first line of a unit
	Prompt string

	// Welcome is printed once before the first prompt
	Welcome string

	// Farewell is printed once when the loop terminates
	Farewell string

	// Logger receives diagnostics; defaults to slog.Default()
	Logger *slog.Logger
}

// Loop is the read-evaluate-print loop.
type Loop struct {
	source    LineSource
	acc       *Accumulator
	coord     *Coordinator
	presenter Presenter
	out       io.Writer
	opts      LoopOptions
	logger    *slog.Logger

	state    State
	failures int
}

// NewLoop wires a loop reading from source, evaluating with coord and
// presenting results on out.
func NewLoop(source LineSource, coord *Coordinator, presenter Presenter, out io.Writer, opts LoopOptions) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		source:    source,
		acc:       NewAccumulator(coord.Engine().Dialect()),
		coord:     coord,
		presenter: presenter,
		out:       out,
		opts:      opts,
		logger:    logger,
	}
}

// State returns the current state of the loop.
func (l *Loop) State() State {
	return l.state
}

// Failures returns how many evaluations failed so far.
func (l *Loop) Failures() int {
	return l.failures
}

// Run reads and evaluates units until the input ends or the user asks to
// exit. Evaluation failures are reported and never stop the loop; the only
// error returned is a failure to persist history.
func (l *Loop) Run(ctx context.Context) error {
	if l.opts.Welcome != "" {
		fmt.Fprint(l.out, l.opts.Welcome)
	}

	l.state = Running
	for l.state == Running {
		if ctx.Err() != nil {
			l.finish(ctx)
			break
		}
		l.step(ctx)
	}

	err := l.source.SaveHistory()
	if err != nil {
		l.logger.Warn("failed to save history", slog.Any("error", err))
		err = fmt.Errorf("save history: %w", err)
	}
	if l.opts.Farewell != "" {
		fmt.Fprint(l.out, l.opts.Farewell)
	}
	l.state = Terminated
	return err
}

func (l *Loop) step(ctx context.Context) {
	line, err := l.source.ReadLine(l.prompt())
	if err != nil {
		if errors.Is(err, input.ErrInterrupt) {
			l.acc.Reset()
			return
		}
		if !errors.Is(err, io.EOF) {
			l.logger.Warn("failed to read line", slog.Any("error", err))
		}
		l.finish(ctx)
		return
	}

	if strings.TrimSpace(line) == "" && !l.acc.HasPending() {
		return
	}
	l.source.RecordLine(line)

	unit, complete := l.acc.Accept(line)
	if !complete {
		l.logger.Debug("waiting for more input", slog.Int("pending_bytes", len(l.acc.Pending())))
		return
	}

	l.handle(l.coord.Evaluate(ctx, unit))
}

// finish evaluates whatever is still pending at end of input and moves the
// loop to Terminating regardless of that evaluation's outcome.
func (l *Loop) finish(ctx context.Context) {
	if l.acc.HasPending() {
		pending := l.acc.Pending()
		l.acc.Reset()
		outcome := l.coord.Evaluate(ctx, pending)
		if outcome.Kind != ExitRequested {
			l.handle(outcome)
		}
	}
	l.state = Terminating
}

func (l *Loop) handle(outcome Outcome) {
	switch outcome.Kind {
	case Produced:
		fmt.Fprintln(l.out, l.presenter.Format(outcome.Value))
	case ExitRequested:
		l.state = Terminating
	case Failed:
		l.acc.Reset()
		l.failures++
		fmt.Fprintln(l.out, l.presenter.FormatError(outcome.Failure.Kind, outcome.Failure.Message))
	}
}

func (l *Loop) prompt() string {
	current := l.opts.Prompt
	if l.acc.HasPending() {
		current = continuationPrompt
		if pad := len(l.opts.Prompt) - len(continuationPrompt); pad > 0 {
			current = strings.Repeat(" ", pad) + continuationPrompt
		}
	}
	return fmt.Sprintf("[%d] %s", l.acc.Counter(), current)
}
