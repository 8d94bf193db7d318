package jsengine

import (
	"regexp"
	"sort"
)

const identifier = `([A-Za-z_$][\w$]*)`

var declarationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:let|const|var)\s+` + identifier),
	regexp.MustCompile(`\bclass\s+` + identifier),
	regexp.MustCompile(`\bfunction\s*\*?\s*` + identifier + `\s*\(`),
}

// ExtractDeclarations returns the names declared by let, const, var, class
// and function statements in code, in order of first appearance. Lexical
// declarations do not live on the global object, so the engine reads them
// back by name.
func ExtractDeclarations(code string) []string {
	type hit struct {
		pos  int
		name string
	}
	var hits []hit
	for _, re := range declarationPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(code, -1) {
			hits = append(hits, hit{pos: m[2], name: code[m[2]:m[3]]})
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]bool)
	var names []string
	for _, h := range hits {
		if isReservedWord(h.name) || seen[h.name] {
			continue
		}
		seen[h.name] = true
		names = append(names, h.name)
	}
	return names
}

// isReservedWord checks if a name is a JavaScript reserved word.
func isReservedWord(name string) bool {
	reserved := map[string]bool{
		"break": true, "case": true, "catch": true, "continue": true,
		"debugger": true, "default": true, "delete": true, "do": true,
		"else": true, "finally": true, "for": true, "function": true,
		"if": true, "in": true, "instanceof": true, "new": true,
		"return": true, "switch": true, "this": true, "throw": true,
		"try": true, "typeof": true, "var": true, "void": true,
		"while": true, "with": true, "let": true, "const": true,
		"class": true, "export": true, "extends": true, "import": true,
		"super": true, "yield": true, "true": true, "false": true,
		"null": true, "undefined": true,
	}
	return reserved[name]
}
