// Package query turns boolean search phrases typed by users into the syntax
// the job search provider understands.
//
// Operators are only recognised in upper case and when delimited by spaces or
// parentheses, so "android" or "Oregon" never turn into OR. Everything the
// normalizer does not understand is passed through untouched; it never
// validates parenthesis balance and never fails.
package query

import "strings"

// Dialect describes how boolean operators are spelled for a provider
type Dialect struct {
	And string
	Or  string
	// Not is glued in front of the negated term or group, e.g. "-" yields "-Junior"
	Not string
}

// DefaultDialect is the syntax of the job search provider: AND/OR are kept as
// keywords and negation uses a leading minus.
var DefaultDialect = Dialect{And: "AND", Or: "OR", Not: "-"}

// Normalizer converts raw search text using a fixed dialect
type Normalizer struct {
	dialect Dialect
}

// NewNormalizer creates a normalizer for the given dialect
func NewNormalizer(d Dialect) *Normalizer {
	return &Normalizer{dialect: d}
}

// Normalize converts raw text using DefaultDialect
func Normalize(raw string) string {
	return NewNormalizer(DefaultDialect).Normalize(raw)
}

// Normalize collapses whitespace, keeps grouping and rewrites operators into
// the normalizer's dialect. The result is deterministic for a given input.
func (n *Normalizer) Normalize(raw string) string {
	tokens := tokenize(raw)
	if len(tokens) == 0 {
		return strings.TrimSpace(raw)
	}

	out := make([]token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok.isOperator("AND"):
			out = append(out, token{kind: kindOperator, text: n.dialect.And})
		case tok.isOperator("OR"):
			out = append(out, token{kind: kindOperator, text: n.dialect.Or})
		case tok.isOperator("NOT"):
			if i+1 < len(tokens) && tokens[i+1].negatable() {
				out = append(out, token{kind: kindPrefix, text: n.dialect.Not})
				continue
			}
			// dangling or doubled NOT has nothing to negate
			out = append(out, tok)
		default:
			out = append(out, tok)
		}
	}

	return render(out)
}

// render joins tokens with single spaces. Opening parentheses and negation
// prefixes hug the following token, closing parentheses hug the previous one.
func render(tokens []token) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 && needsSpace(tokens[i-1], tok) {
			b.WriteByte(' ')
		}
		b.WriteString(tok.text)
	}
	return b.String()
}

func needsSpace(prev, cur token) bool {
	if prev.kind == kindPrefix || prev.kind == kindOpen {
		return false
	}
	if cur.kind == kindClose {
		return false
	}
	return true
}
