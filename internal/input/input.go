// Package input provides line sources for the interactive session.
package input

import (
	"bufio"
	"errors"
	"io"
)

// ErrInterrupt is returned by ReadLine when the user aborts the current line.
var ErrInterrupt = errors.New("input interrupted")

// Scanner reads lines from any reader without echoing prompts. It is used for
// pipes, script files and tests. History is not kept.
type Scanner struct {
	scanner *bufio.Scanner
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Scanner{scanner: s}
}

// ReadLine returns the next line, or io.EOF when the reader is exhausted.
func (s *Scanner) ReadLine(_ string) (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// RecordLine is a no-op.
func (s *Scanner) RecordLine(string) {}

// SaveHistory is a no-op.
func (s *Scanner) SaveHistory() error { return nil }
