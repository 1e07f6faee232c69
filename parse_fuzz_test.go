//go:build go1.18
// +build go1.18

package calc

import (
	"testing"
)

func FuzzPostfix(f *testing.F) {
	f.Add("(2 + 3) * 4")
	f.Add("2 ** 3 ** 2")
	f.Add("-(.5)")
	f.Fuzz(func(t *testing.T, s string) {
		toks, err := Tokenize(s)
		if err != nil {
			return
		}
		p, err := Postfix(toks)
		if err != nil {
			return
		}
		for _, tok := range p {
			if tok.Kind == TokenLParen || tok.Kind == TokenRParen {
				t.Fatalf("%q converted to postfix with parenthesis %v", s, tok)
			}
		}
	})
}
