package extract

import (
	"testing"

	"i18n-extract/internal/lexer"
	"i18n-extract/internal/pickup"

	"github.com/stretchr/testify/assert"
)

// seq builds a token sequence from shorthand: "(", ")", ",", "+" and
// "function" map to their kinds, `"x"` is a string literal, a leading `.`
// marks a member name, and anything else is a bare identifier.
func seq(parts ...string) []lexer.Token {
	tokens := make([]lexer.Token, len(parts))
	for i, p := range parts {
		tok := lexer.Token{Value: p, Index: i, Pos: lexer.Position{Line: 1, Column: i + 1}}
		switch {
		case p == "(":
			tok.Kind = lexer.LParen
		case p == ")":
			tok.Kind = lexer.RParen
		case p == ",":
			tok.Kind = lexer.Comma
		case p == "+":
			tok.Kind = lexer.Plus
		case p == "function":
			tok.Kind = lexer.Function
		case len(p) >= 2 && p[0] == '"':
			tok.Kind = lexer.String
			tok.Value = p[1 : len(p)-1]
		case len(p) > 1 && p[0] == '.':
			tok.Kind = lexer.Name
			tok.Value = p[1:]
		case p[0] >= '0' && p[0] <= '9', p == "*", p == "-", p == ";", p == "=":
			tok.Kind = lexer.Other
		default:
			tok.Kind = lexer.Name
			tok.StartsExpr = true
		}
		tokens[i] = tok
	}
	return tokens
}

func TestGrabStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tokens   []lexer.Token
		spec     string
		end      int
		expected []string
	}{
		{
			name:     "single literal",
			tokens:   seq("t", "(", `"hello"`, ")"),
			spec:     "t",
			end:      3,
			expected: []string{"hello"},
		},
		{
			name:     "concatenation",
			tokens:   seq("t", "(", `"a"`, "+", `"b"`, ")"),
			spec:     "t",
			end:      5,
			expected: []string{"ab"},
		},
		{
			name:     "parenthesised concatenation",
			tokens:   seq("t", "(", "(", `"a"`, ")", "+", `"b"`, ",", "lang", ")"),
			spec:     "t:1,2",
			end:      9,
			expected: []string{"ab", ""},
		},
		{
			name:     "context argument excluded",
			tokens:   seq("t", "(", `"a"`, ",", `"b"`, ",", "lang", ")"),
			spec:     "t:1,2c",
			end:      7,
			expected: []string{"a"},
		},
		{
			name:     "nested call invalidates only its slot",
			tokens:   seq("t", "(", "foo", "(", "1", ",", "2", ")", ",", `"x"`, ")"),
			spec:     "t:1,2",
			end:      10,
			expected: []string{"", "x"},
		},
		{
			name:     "comma expression in parens",
			tokens:   seq("t", "(", "(", `"a"`, ",", `"b"`, ")", ",", `"c"`, ")"),
			spec:     "t:1,2",
			end:      9,
			expected: []string{"", "c"},
		},
		{
			name:     "unresolved slot stays unresolved",
			tokens:   seq("t", "(", "name", "+", `"suffix"`, ")"),
			spec:     "t",
			end:      5,
			expected: []string{""},
		},
		{
			name:     "literal before identifier is discarded",
			tokens:   seq("t", "(", `"prefix"`, "+", "name", ")"),
			spec:     "t",
			end:      5,
			expected: []string{""},
		},
		{
			name:     "empty call",
			tokens:   seq("t", "(", ")"),
			spec:     "t:1,2",
			end:      2,
			expected: []string{"", ""},
		},
		{
			name:     "positions beyond the call",
			tokens:   seq("t", "(", `"a"`, ")"),
			spec:     "t:3st",
			end:      3,
			expected: []string{"a", "", ""},
		},
		{
			name:     "plural forms",
			tokens:   seq("n", "(", `"one"`, ",", `"many"`, ",", "count", ")"),
			spec:     "n:1,2",
			end:      7,
			expected: []string{"one", "many"},
		},
		{
			name:     "stops at the matching paren",
			tokens:   seq("t", "(", `"a"`, ")", "+", "t", "(", `"b"`, ")"),
			spec:     "t",
			end:      3,
			expected: []string{"a"},
		},
		{
			name:     "unterminated call runs to the end",
			tokens:   seq("t", "(", `"a"`, ",", `"b"`),
			spec:     "t:1,2",
			end:      5,
			expected: []string{"a", "b"},
		},
		{
			name:     "empty literal",
			tokens:   seq("t", "(", `""`, ")"),
			spec:     "t",
			end:      3,
			expected: []string{""},
		},
		{
			name:     "no emitted positions",
			tokens:   seq("t", "(", `"a"`, ")"),
			spec:     "t:abc",
			end:      3,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			end, values := GrabStrings(tt.tokens, 0, pickup.Parse(tt.spec))
			assert.Equal(t, tt.end, end)
			assert.Equal(t, tt.expected, values)
		})
	}
}

func TestGrabStrings_StartsAtCallIndex(t *testing.T) {
	t.Parallel()

	tokens := seq("x", "=", "t", "(", `"a"`, ")", ";")
	end, values := GrabStrings(tokens, 2, pickup.Parse("t"))

	assert.Equal(t, 5, end)
	assert.Equal(t, []string{"a"}, values)
}

func TestGrab_MarksUnresolved(t *testing.T) {
	t.Parallel()

	tokens := seq("t", "(", "dynamic", ",", `""`, ")")
	_, values := grab(tokens, 0, pickup.Parse("t:1,2,4"))

	assert.Equal(t, []Value{
		{Arg: 0, Text: "", Unresolved: true},
		{Arg: 1, Text: "", Unresolved: false},
		{Arg: 3, Text: "", Unresolved: true},
	}, values)
}

func TestGrab_NestedCommaMarksSlotUnresolved(t *testing.T) {
	t.Parallel()

	_, values := grab(seq("t", "(", "(", `"a"`, ",", `"b"`, ")", ")"), 0, pickup.Parse("t:1,2"))

	assert.Equal(t, []Value{
		{Arg: 0, Text: "", Unresolved: true},
		{Arg: 1, Text: "", Unresolved: true},
	}, values)
}

func TestGrabStrings_ArityMatchesDescriptor(t *testing.T) {
	t.Parallel()

	inputs := [][]lexer.Token{
		seq("t", "(", ")"),
		seq("t", "(", "a", ",", "b", ",", "c", ",", "d", ")"),
		seq("t", "(", "(", "(", ")"),
		seq("t", "(", `"a"`, ",", "f", "(", `"b"`, ",", `"c"`, ")", ")"),
	}
	specs := []string{"t", "t:2", "t:1,2c", "t:4st", "t:2c,3st", "t:1,3,5"}

	for _, spec := range specs {
		d := pickup.Parse(spec)
		for _, tokens := range inputs {
			_, values := GrabStrings(tokens, 0, d)
			assert.Len(t, values, len(d.UseArgs()), "spec %q", spec)
		}
	}
}
