package condition

import (
	"strconv"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokKey
	tokOp
	tokIn    // ?
	tokNotIn // !
	tokLBrack
	tokRBrack
	tokComma
	tokOr
	tokInt
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of condition"
	case tokKey:
		return "attribute key"
	case tokOp:
		return "comparison operator"
	case tokIn:
		return "'?'"
	case tokNotIn:
		return "'!'"
	case tokLBrack:
		return "'['"
	case tokRBrack:
		return "']'"
	case tokComma:
		return "','"
	case tokOr:
		return "'|'"
	case tokInt:
		return "integer"
	default:
		return "token"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
	num  int
}

// lex splits a condition into tokens. Whitespace between tokens is ignored.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c >= 'A' && c <= 'Z':
			start := i
			for i < len(src) && src[i] >= 'A' && src[i] <= 'Z' {
				i++
			}
			toks = append(toks, token{kind: tokKey, text: src[start:i], pos: start})
		case c == '-' || (c >= '0' && c <= '9'):
			start := i
			if c == '-' {
				i++
				if i >= len(src) || src[i] < '0' || src[i] > '9' {
					return nil, newError(src, start, "'-' must be followed by a digit")
				}
			}
			for i < len(src) && src[i] >= '0' && src[i] <= '9' {
				i++
			}
			n, err := strconv.Atoi(src[start:i])
			if err != nil {
				return nil, newError(src, start, "integer out of range")
			}
			toks = append(toks, token{kind: tokInt, text: src[start:i], pos: start, num: n})
		case c == '=' || c == '<' || c == '>':
			start := i
			i++
			if i < len(src) && src[i] == '=' {
				i++
			}
			op := src[start:i]
			if op == "=" {
				op = "=="
			}
			toks = append(toks, token{kind: tokOp, text: op, pos: start})
		case c == '!':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{kind: tokOp, text: "!=", pos: i})
				i += 2
				continue
			}
			toks = append(toks, token{kind: tokNotIn, text: "!", pos: i})
			i++
		case c == '?':
			toks = append(toks, token{kind: tokIn, text: "?", pos: i})
			i++
		case c == '[':
			toks = append(toks, token{kind: tokLBrack, text: "[", pos: i})
			i++
		case c == ']':
			toks = append(toks, token{kind: tokRBrack, text: "]", pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		case c == '|':
			toks = append(toks, token{kind: tokOr, text: "|", pos: i})
			i++
		default:
			r, _ := utf8.DecodeRuneInString(src[i:])
			return nil, newError(src, i, "unexpected character "+strconv.QuoteRune(r))
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}
