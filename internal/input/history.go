package input

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	historyFileMode   = 0o600
	historyDirMode    = 0o700
	historyTempPrefix = ".prayog-history-*.tmp"
)

// History keeps entered lines in memory and persists them on demand.
type History struct {
	path  string
	limit int
	lines []string
}

// NewHistory returns a history backed by path keeping at most limit lines.
// A non-positive limit keeps everything.
func NewHistory(path string, limit int) *History {
	return &History{path: path, limit: limit}
}

// Load reads previously saved lines. A missing file is not an error.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		if line := s.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("read history file: %w", err)
	}
	h.lines = append(lines, h.lines...)
	h.trim()
	return nil
}

// Add appends line, skipping blank lines and immediate repeats.
func (h *History) Add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if n := len(h.lines); n > 0 && h.lines[n-1] == line {
		return
	}
	h.lines = append(h.lines, line)
	h.trim()
}

// Lines returns the recorded lines, oldest first.
func (h *History) Lines() []string {
	return append([]string(nil), h.lines...)
}

// Save writes the history file atomically.
func (h *History) Save() error {
	if h.path == "" {
		return nil
	}
	dir := filepath.Dir(h.path)
	if err := os.MkdirAll(dir, historyDirMode); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, historyTempPrefix)
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	w := bufio.NewWriter(tempFile)
	for _, line := range h.lines {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp history file: %w", err)
	}
	if err := tempFile.Chmod(historyFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp history file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp history file: %w", err)
	}
	if err := os.Rename(tempName, h.path); err != nil {
		return fmt.Errorf("replace history file: %w", err)
	}
	cleanup = false
	return nil
}

func (h *History) trim() {
	if h.limit > 0 && len(h.lines) > h.limit {
		h.lines = append([]string(nil), h.lines[len(h.lines)-h.limit:]...)
	}
}
