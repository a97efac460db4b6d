package lexer

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// unquote decodes a single- or double-quoted JavaScript string literal.
// Malformed escapes are kept verbatim rather than rejected since the source
// has already been accepted by the parser.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	var pendingHigh rune = -1

	flushHigh := func() {
		if pendingHigh >= 0 {
			b.WriteRune(utf8.RuneError)
			pendingHigh = -1
		}
	}
	writeUnit := func(r rune) {
		switch {
		case utf16.IsSurrogate(r) && r < 0xdc00:
			flushHigh()
			pendingHigh = r
		case utf16.IsSurrogate(r) && pendingHigh >= 0:
			b.WriteRune(utf16.DecodeRune(pendingHigh, r))
			pendingHigh = -1
		default:
			flushHigh()
			b.WriteRune(r)
		}
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			flushHigh()
			b.WriteByte(c)
			continue
		}
		i++
		switch e := body[i]; e {
		case 'n':
			writeUnit('\n')
		case 't':
			writeUnit('\t')
		case 'r':
			writeUnit('\r')
		case 'b':
			writeUnit('\b')
		case 'f':
			writeUnit('\f')
		case 'v':
			writeUnit('\v')
		case '0':
			if i+1 < len(body) && body[i+1] >= '0' && body[i+1] <= '9' {
				b.WriteString(`\0`)
				continue
			}
			writeUnit(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case 'x':
			if r, ok := parseHex(body, i+1, 2); ok {
				writeUnit(r)
				i += 2
				continue
			}
			b.WriteString(`\x`)
		case 'u':
			if i+1 < len(body) && body[i+1] == '{' {
				end := strings.IndexByte(body[i+1:], '}')
				if end > 1 {
					if v, err := strconv.ParseUint(body[i+2:i+1+end], 16, 32); err == nil && v <= utf8.MaxRune {
						writeUnit(rune(v))
						i += 1 + end
						continue
					}
				}
			} else if r, ok := parseHex(body, i+1, 4); ok {
				writeUnit(r)
				i += 4
				continue
			}
			b.WriteString(`\u`)
		default:
			// \' \" \\ and any other identity escape
			flushHigh()
			r, size := utf8.DecodeRuneInString(body[i:])
			b.WriteRune(r)
			i += size - 1
		}
	}
	flushHigh()
	return b.String()
}

func parseHex(s string, start, n int) (rune, bool) {
	if start+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[start:start+n], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
