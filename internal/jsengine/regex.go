package jsengine

import (
	"regexp"
)

// RegexModule provides the regex helpers behind the re global.
type RegexModule struct{}

// FindAll finds all matches of pattern in text.
func (r *RegexModule) FindAll(pattern, text string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	matches := re.FindAllString(text, -1)
	if matches == nil {
		matches = []string{}
	}
	return matches, nil
}

// Search finds the first match of pattern in text.
func (r *RegexModule) Search(pattern, text string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", err
	}
	return re.FindString(text), nil
}

// Split splits text by pattern.
func (r *RegexModule) Split(pattern, text string, n int) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return re.Split(text, n), nil
}

// Replace replaces matches of pattern in text with repl.
func (r *RegexModule) Replace(pattern, text, repl string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", err
	}
	return re.ReplaceAllString(text, repl), nil
}
