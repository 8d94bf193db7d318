package jsengine

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FSModule provides the filesystem helpers behind the fs global.
type FSModule struct {
	// WorkDir is the working directory for relative paths (defaults to current directory)
	WorkDir string

	// MaxFileSize is the maximum file size in bytes to read (default: 1MB)
	MaxFileSize int64

	// ExcludeDirs is a list of directory names to exclude from listings
	ExcludeDirs []string
}

// Entry describes one directory entry returned by List.
type Entry struct {
	Name  string
	IsDir bool
	Size  int64
}

// NewFSModule creates a new filesystem module with default settings.
func NewFSModule() *FSModule {
	wd, _ := os.Getwd()
	return &FSModule{
		WorkDir:     wd,
		MaxFileSize: 1024 * 1024, // 1MB default
		ExcludeDirs: []string{".git", "node_modules", "vendor"},
	}
}

// resolvePath converts a path to an absolute path under the working directory.
func (f *FSModule) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(f.WorkDir, path))
}

// List returns the files and directories in the specified path.
func (f *FSModule) List(path string) ([]Entry, error) {
	entries, err := os.ReadDir(f.resolvePath(path))
	if err != nil {
		return nil, err
	}

	result := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && f.isExcludedDir(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		result = append(result, Entry{Name: entry.Name(), IsDir: entry.IsDir(), Size: info.Size()})
	}
	return result, nil
}

// Read reads the contents of a file, truncating past MaxFileSize.
func (f *FSModule) Read(path string) (string, error) {
	resolved := f.resolvePath(path)

	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", os.ErrInvalid
	}

	if f.MaxFileSize > 0 && info.Size() > f.MaxFileSize {
		file, err := os.Open(resolved)
		if err != nil {
			return "", err
		}
		defer file.Close()

		buf := make([]byte, f.MaxFileSize)
		n, err := io.ReadFull(file, buf)
		if err != nil && err != io.ErrUnexpectedEOF {
			return "", err
		}
		return string(buf[:n]) + "\n... [truncated]", nil
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Glob finds files matching a glob pattern, relative to WorkDir.
func (f *FSModule) Glob(pattern string) ([]string, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(f.WorkDir, pattern)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	result := []string{}
	for _, match := range matches {
		if f.containsExcludedDir(match) {
			continue
		}
		if rel, err := filepath.Rel(f.WorkDir, match); err == nil {
			result = append(result, rel)
		} else {
			result = append(result, match)
		}
	}
	return result, nil
}

// Exists checks if a file or directory exists.
func (f *FSModule) Exists(path string) bool {
	_, err := os.Stat(f.resolvePath(path))
	return err == nil
}

// Stat returns the file info for path. The session keeps it as a host handle.
func (f *FSModule) Stat(path string) (os.FileInfo, error) {
	return os.Stat(f.resolvePath(path))
}

func (f *FSModule) isExcludedDir(name string) bool {
	return slices.Contains(f.ExcludeDirs, name)
}

func (f *FSModule) containsExcludedDir(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if f.isExcludedDir(part) {
			return true
		}
	}
	return false
}
