package query

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	kindTerm tokenKind = iota
	kindPhrase
	kindOperator
	kindOpen
	kindClose
	kindPrefix
)

const minus = "-"

type token struct {
	kind tokenKind
	text string
}

func (t token) isOperator(op string) bool {
	return t.kind == kindTerm && t.text == op
}

// negatable reports whether NOT may be folded into this token
func (t token) negatable() bool {
	switch t.kind {
	case kindPhrase, kindOpen:
		return true
	case kindTerm:
		return t.text != "AND" && t.text != "OR" && t.text != "NOT"
	}
	return false
}

// tokenize splits raw text into terms, quoted phrases and parentheses.
// An unterminated quote swallows the rest of the input as one phrase.
func tokenize(raw string) []token {
	var (
		tokens []token
		cur    strings.Builder
	)

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, token{kind: kindTerm, text: cur.String()})
			cur.Reset()
		}
	}

	// an already negated group or phrase ("-(" or "-\"") keeps its prefix
	flushPrefix := func() {
		if cur.String() == minus {
			tokens = append(tokens, token{kind: kindPrefix, text: minus})
			cur.Reset()
			return
		}
		flush()
	}

	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			flush()
		case r == '(':
			flushPrefix()
			tokens = append(tokens, token{kind: kindOpen, text: "("})
		case r == ')':
			flush()
			tokens = append(tokens, token{kind: kindClose, text: ")"})
		case r == '"' && (cur.Len() == 0 || cur.String() == minus):
			flushPrefix()
			end := i + 1
			for end < len(runes) && runes[end] != '"' {
				end++
			}
			inner := strings.Join(strings.Fields(string(runes[i+1:min(end, len(runes))])), " ")
			text := `"` + inner
			if end < len(runes) {
				text += `"`
			}
			tokens = append(tokens, token{kind: kindPhrase, text: text})
			i = end
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	return tokens
}
