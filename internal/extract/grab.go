package extract

import (
	"i18n-extract/internal/lexer"
	"i18n-extract/internal/pickup"
)

// slotState tracks whether an argument is still a constant string.
type slotState int

const (
	slotEmpty slotState = iota
	slotAccumulating
	slotUnresolved
)

type slot struct {
	state slotState
	text  string
}

func (s *slot) appendLiteral(v string) {
	if s.state == slotUnresolved {
		return
	}
	s.state = slotAccumulating
	s.text += v
}

// invalidate marks the slot as dynamic. There is no way back.
func (s *slot) invalidate() {
	s.state = slotUnresolved
	s.text = ""
}

// callState is the extractor's position relative to the call's own parens.
type callState int

const (
	inCall callState = iota
	inNested
)

// Value is one mapped argument of a call site.
type Value struct {
	Arg        int
	Text       string
	Unresolved bool
}

// GrabStrings reconstructs the string arguments of the call whose name is at
// tokens[callIndex]; tokens[callIndex+1] must be its opening paren. It returns
// the index of the matching closing paren (or len(tokens) if the call is never
// closed) and the texts at the descriptor's argument positions in ascending
// order. Arguments that are not constant string expressions yield "".
func GrabStrings(tokens []lexer.Token, callIndex int, d pickup.Descriptor) (int, []string) {
	end, values := grab(tokens, callIndex, d)
	texts := make([]string, len(values))
	for i, v := range values {
		texts[i] = v.Text
	}
	return end, texts
}

func grab(tokens []lexer.Token, callIndex int, d pickup.Descriptor) (int, []Value) {
	slots := []slot{{}}
	nesting := 0
	state := inCall

	index := callIndex + 1
	for ; index < len(tokens); index++ {
		current := &slots[len(slots)-1]
		tok := tokens[index]

		switch tok.Kind {
		case lexer.String:
			current.appendLiteral(tok.Value)
		case lexer.Plus:
			// "a" + "b" has already been joined by appendLiteral
		case lexer.Comma:
			if state == inCall {
				slots = append(slots, slot{})
			} else {
				// ("a", "b") evaluates to "b"; neither operand is reported
				current.invalidate()
			}
		case lexer.LParen:
			nesting++
		case lexer.RParen:
			nesting--
		default:
			current.invalidate()
		}

		if nesting < 1 {
			break
		}
		if nesting == 1 {
			state = inCall
		} else {
			state = inNested
		}
	}

	positions := d.UseArgs()
	values := make([]Value, 0, len(positions))
	for _, p := range positions {
		v := Value{Arg: p}
		if p >= 0 && p < len(slots) && slots[p].state != slotUnresolved {
			v.Text = slots[p].text
		} else {
			v.Unresolved = true
		}
		values = append(values, v)
	}
	return index, values
}
