package input

import (
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
)

// Readline is an interactive terminal line source with editing and history.
type Readline struct {
	rl      *readline.Instance
	history *History
}

// ReadlineOptions configures NewReadline.
type ReadlineOptions struct {
	// HistoryFile is where history is loaded from and saved to (empty = none)
	HistoryFile string

	// HistoryLimit caps the number of saved lines
	HistoryLimit int

	// Stdin and Stdout override the terminal, mainly for tests
	Stdin  io.ReadCloser
	Stdout io.Writer
}

// NewReadline opens an interactive line source and loads its history.
func NewReadline(opts ReadlineOptions) (*Readline, error) {
	history := NewHistory(opts.HistoryFile, opts.HistoryLimit)
	if err := history.Load(); err != nil {
		return nil, err
	}

	// History is fed and saved by us; readline only keeps it in memory.
	rl, err := readline.NewEx(&readline.Config{
		HistoryLimit:           opts.HistoryLimit,
		DisableAutoSaveHistory: true,
		Stdin:                  opts.Stdin,
		Stdout:                 opts.Stdout,
	})
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}

	for _, line := range history.Lines() {
		_ = rl.SaveHistory(line)
	}

	return &Readline{rl: rl, history: history}, nil
}

// ReadLine shows prompt and reads one line.
func (r *Readline) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupt
	}
	return line, err
}

// RecordLine adds line to the in-memory history.
func (r *Readline) RecordLine(line string) {
	r.history.Add(line)
	_ = r.rl.SaveHistory(line)
}

// SaveHistory writes the history file.
func (r *Readline) SaveHistory() error {
	return r.history.Save()
}

// Close releases the terminal.
func (r *Readline) Close() error {
	return r.rl.Close()
}
