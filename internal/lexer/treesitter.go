package lexer

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// TreeSitter tokenizes JavaScript and TypeScript sources by flattening a
// tree-sitter syntax tree into its leaves. A fresh parser is created for each
// call, so a single TreeSitter can be shared between goroutines.
type TreeSitter struct {
	language *sitter.Language
	dialect  string
}

// NewJavaScript returns a lexer for JavaScript and JSX. The TSX grammar is a
// superset of both.
func NewJavaScript() *TreeSitter {
	return &TreeSitter{
		language: sitter.NewLanguage(typescript.LanguageTSX()),
		dialect:  "javascript",
	}
}

// NewTypeScript returns a lexer for TypeScript sources without JSX.
func NewTypeScript() *TreeSitter {
	return &TreeSitter{
		language: sitter.NewLanguage(typescript.LanguageTypescript()),
		dialect:  "typescript",
	}
}

// ForExtension picks the lexer for a lowercase file extension, or nil when
// the extension is not a supported script type.
func ForExtension(ext string) *TreeSitter {
	switch ext {
	case ".js", ".jsx", ".mjs", ".cjs", ".tsx":
		return NewJavaScript()
	case ".ts", ".mts", ".cts":
		return NewTypeScript()
	}
	return nil
}

// Dialect names the grammar this lexer uses.
func (l *TreeSitter) Dialect() string { return l.dialect }

// Tokenize implements Lexer.
func (l *TreeSitter) Tokenize(source []byte, file string) ([]Token, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(l.language); err != nil {
		return nil, fmt.Errorf("set %s language: %w", l.dialect, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &SyntaxError{File: file, Line: 1, Column: 1, Msg: "parser produced no tree"}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxErrorAt(root, source, file)
	}

	var tokens []Token
	walkLeaves(root, func(n *sitter.Node) {
		tok, ok := classify(n, source)
		if !ok {
			return
		}
		tok.Index = len(tokens)
		tokens = append(tokens, tok)
	})
	return tokens, nil
}

// atomicKinds are nodes emitted as a single token instead of being descended.
// Template strings are descended so calls inside ${...} are visible; their
// backticks and fragments become Other tokens.
var atomicKinds = map[string]bool{
	"string": true,
	"regex":  true,
}

// memberNameKinds are identifier-like leaves that cannot begin an expression.
var memberNameKinds = map[string]bool{
	"property_identifier":                   true,
	"private_property_identifier":           true,
	"shorthand_property_identifier":         true,
	"shorthand_property_identifier_pattern": true,
	"type_identifier":                       true,
	"statement_identifier":                  true,
}

func walkLeaves(node *sitter.Node, visit func(*sitter.Node)) {
	if node == nil {
		return
	}
	if node.ChildCount() == 0 || (node.IsNamed() && atomicKinds[node.Kind()]) {
		visit(node)
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkLeaves(node.Child(i), visit)
	}
}

func classify(n *sitter.Node, source []byte) (Token, bool) {
	kind := n.Kind()
	if kind == "comment" || kind == "html_comment" {
		return Token{}, false
	}

	pos := n.StartPosition()
	tok := Token{
		Kind:  Other,
		Value: n.Utf8Text(source),
		Pos:   Position{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1},
	}

	switch {
	case kind == "string" && n.IsNamed():
		tok.Kind = String
		tok.Value = unquote(tok.Value)
	case kind == "identifier":
		tok.Kind = Name
		tok.StartsExpr = true
	case memberNameKinds[kind]:
		tok.Kind = Name
	case n.IsNamed():
		// numbers, template fragments, regexes, jsx text
	case kind == "(":
		tok.Kind = LParen
	case kind == ")":
		tok.Kind = RParen
	case kind == ",":
		tok.Kind = Comma
	case kind == "+":
		tok.Kind = Plus
	case kind == "function":
		tok.Kind = Function
	}
	return tok, true
}

func syntaxErrorAt(root *sitter.Node, source []byte, file string) *SyntaxError {
	var bad *sitter.Node
	var find func(n *sitter.Node) bool
	find = func(n *sitter.Node) bool {
		if n.IsError() || n.IsMissing() {
			bad = n
			return true
		}
		if !n.HasError() {
			return false
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if find(n.Child(i)) {
				return true
			}
		}
		return false
	}
	find(root)

	if bad == nil {
		return &SyntaxError{File: file, Line: 1, Column: 1, Msg: "invalid source"}
	}

	pos := bad.StartPosition()
	msg := "unexpected " + quoteSnippet(bad.Utf8Text(source))
	if bad.IsMissing() {
		msg = "missing " + bad.Kind()
	}
	return &SyntaxError{
		File:   file,
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
		Msg:    msg,
	}
}

func quoteSnippet(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 20 {
		s = s[:20] + "..."
	}
	return fmt.Sprintf("%q", s)
}
