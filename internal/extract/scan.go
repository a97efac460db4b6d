package extract

import (
	"i18n-extract/internal/lexer"
	"i18n-extract/internal/pickup"
)

// Message is one argument value extracted from one call site.
type Message struct {
	// Text is the reconstructed string, empty when the argument was dynamic.
	Text string `json:"text"`
	// File is the label the caller scanned the source under.
	File string `json:"file"`
	// Line is the 1-based line of the call's function name.
	Line int `json:"line"`
	// Pickup is the matched function name.
	Pickup string `json:"pickup"`
	// Arg is the zero-based argument position the text came from.
	Arg int `json:"arg"`
	// Unresolved is set when the argument was not a constant string.
	Unresolved bool `json:"unresolved,omitempty"`
}

// Scan finds every call to a pickup in tokens and returns one message per
// mapped argument, in source order. Calls nested inside the arguments of a
// matched call are not reported separately.
func Scan(tokens []lexer.Token, table *pickup.Table, file string) []Message {
	var messages []Message

	for index := 0; index < len(tokens); index++ {
		d, ok := callSite(tokens, index, table)
		if !ok {
			continue
		}

		end, values := grab(tokens, index, d)
		line := tokens[index].Pos.Line
		for _, v := range values {
			messages = append(messages, Message{
				Text:       v.Text,
				File:       file,
				Line:       line,
				Pickup:     d.ID(),
				Arg:        v.Arg,
				Unresolved: v.Unresolved,
			})
		}
		index = end
	}

	return messages
}

// callSite reports whether tokens[index] names a pickup being invoked.
func callSite(tokens []lexer.Token, index int, table *pickup.Table) (pickup.Descriptor, bool) {
	tok := tokens[index]
	if tok.Kind != lexer.Name || !tok.StartsExpr {
		return pickup.Descriptor{}, false
	}
	d, ok := table.Lookup(tok.Value)
	if !ok {
		return pickup.Descriptor{}, false
	}
	if index+1 >= len(tokens) || tokens[index+1].Kind != lexer.LParen {
		return pickup.Descriptor{}, false
	}
	// `function t(...)` declares a pickup rather than calling it
	if index > 0 && tokens[index-1].Kind == lexer.Function {
		return pickup.Descriptor{}, false
	}
	return d, true
}

// ParseFile tokenizes source with lx and scans it. Tokenizer failures, such as
// *lexer.SyntaxError, are returned unchanged.
func ParseFile(source []byte, lx lexer.Lexer, table *pickup.Table, file string) ([]Message, error) {
	tokens, err := lx.Tokenize(source, file)
	if err != nil {
		return nil, err
	}
	return Scan(tokens, table, file), nil
}
