package session

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/itsmostafa/prayog/internal/engine"
)

// Class is the result of classifying a complete unit.
type Class int

const (
	// Expression units are evaluated for their value
	Expression Class = iota
	// Statement units run as-is and produce no value unless they return one
	Statement
)

func (c Class) String() string {
	if c == Statement {
		return "statement"
	}
	return "expression"
}

// assignment matches a unit that starts by assigning to a name or member.
var assignment = regexp.MustCompile(
	`^[\pL_$][\pL\pN_$]*(?:\.[\pL\pN_$]+|\[[^\]]*\])*\s*(?:\*\*|<<|>>>?|\?\?|&&|\|\||[-+*/%.&|^:])?=(?:[^=>]|$)`)

// Classify decides whether unit is a statement or a bare expression. For
// expressions it also returns the body with one trailing terminator removed.
// This is a prefix check on the first word, not a parse. An assignment closed
// by the terminator counts as a statement, so `$x = 42;` shows nothing while
// `$x = 42` shows the assigned value.
func Classify(unit string, dialect engine.Dialect) (Class, string) {
	code := strings.TrimSpace(unit)
	if hasKeyword(leadingWord(code), dialect.StatementKeywords) {
		return Statement, code
	}
	if dialect.Terminator != "" && strings.HasSuffix(code, dialect.Terminator) {
		body := strings.TrimSpace(strings.TrimSuffix(code, dialect.Terminator))
		if assignment.MatchString(body) {
			return Statement, code
		}
		code = body
	}
	return Expression, code
}

// Wrap turns an expression body into a unit that asks the engine to return its value.
func Wrap(body string, dialect engine.Dialect) string {
	return dialect.ReturnKeyword + " " + body + dialect.Terminator
}

// leadingWord returns the identifier-like token at the start of code.
func leadingWord(code string) string {
	code = strings.TrimLeftFunc(code, unicode.IsSpace)
	end := strings.IndexFunc(code, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$')
	})
	if end < 0 {
		return code
	}
	return code[:end]
}

func hasKeyword(word string, keywords []string) bool {
	return word != "" && slices.Contains(keywords, word)
}
