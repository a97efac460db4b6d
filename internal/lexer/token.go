package lexer

import "fmt"

// Kind discriminates the token classes the extractor cares about.
type Kind int

const (
	// Other is any token the extractor has no special rule for.
	Other Kind = iota
	// String is a quoted string literal; Value holds its decoded contents.
	String
	// Name is an identifier. StartsExpr tells a bare identifier apart from a
	// property or type name.
	Name
	LParen
	RParen
	Comma
	Plus
	// Function is the `function` keyword.
	Function
)

var kindNames = map[Kind]string{
	Other:    "other",
	String:   "string",
	Name:     "name",
	LParen:   "(",
	RParen:   ")",
	Comma:    ",",
	Plus:     "+",
	Function: "function",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Position is a 1-based source location.
type Position struct {
	Line   int
	Column int
}

// Token is one element of a lexed source file.
type Token struct {
	Kind Kind
	// Value is the decoded literal for String tokens and the raw source text
	// for everything else.
	Value string
	Pos   Position
	// Index is the token's offset within its sequence.
	Index int
	// StartsExpr is set for names that can begin an expression.
	StartsExpr bool
}

// Lexer turns source text into an ordered token sequence.
type Lexer interface {
	Tokenize(source []byte, file string) ([]Token, error)
}

// SyntaxError reports source that could not be tokenized.
type SyntaxError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error: %s", e.File, e.Line, e.Column, e.Msg)
}
