package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		unit      string
		wantClass Class
		wantBody  string
	}{
		{"2 + 2", Expression, "2 + 2"},
		{"2 + 2;", Expression, "2 + 2"},
		{"  $x + 1 \n", Expression, "$x + 1"},
		{"$x = 5", Expression, "$x = 5"},
		{"$x = 42;", Statement, "$x = 42;"},
		{"$x += 1;", Statement, "$x += 1;"},
		{"$obj.name = 'a';", Statement, "$obj.name = 'a';"},
		{"$x == 1;", Expression, "$x == 1"},
		{"$x <= 1;", Expression, "$x <= 1"},
		{"f = x => x;", Statement, "f = x => x;"},
		{"x => x;", Expression, "x => x"},
		{`echo "hi";`, Statement, `echo "hi";`},
		{"if (true) {\n}", Statement, "if (true) {\n}"},
		{"iffy + 1", Expression, "iffy + 1"},
		{"foo(a = 1);", Expression, "foo(a = 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			class, body := Classify(tt.unit, testDialect)
			assert.Equal(t, tt.wantClass, class)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestClassify_StripsOnlyOneTerminator(t *testing.T) {
	_, body := Classify("1;;", testDialect)
	assert.Equal(t, "1;", body)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "return 2 + 2;", Wrap("2 + 2", testDialect))
}

func TestLeadingWord(t *testing.T) {
	assert.Equal(t, "echo", leadingWord(`  echo "x"`))
	assert.Equal(t, "$x", leadingWord("$x = 1"))
	assert.Equal(t, "", leadingWord("(1)"))
}
