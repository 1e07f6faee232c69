package calc

// operator is the precedence and associativity of a binary operator.
type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
}

// binop gets the operator for a token string. ok is false if there is no such
// operator.
func binop(text string) (op operator, ok bool) {
	switch text {
	case "+", "-":
		return operator{1, false}, true
	case "*", "/", "%":
		return operator{2, false}, true
	case "**":
		return operator{3, true}, true
	default:
		return operator{}, false
	}
}

// opOf gets the operator for an operator token.
func opOf(tok Token) (operator, bool) {
	if tok.Kind == TokenSign {
		return operator{3, true}, true
	}
	return binop(tok.Text)
}

// yields reports whether p, on top of the operator stack, must move to the
// output before q is pushed.
func (p operator) yields(q operator) bool {
	if p.prec != q.prec {
		return p.prec > q.prec
	}
	return !q.right
}

// Postfix converts a sequence of tokens in infix order to postfix order using
// the Shunting Yard algorithm. Parentheses do not appear in the result. The
// only errors are of type *SyntaxError.
func Postfix(tokens []Token) ([]Token, error) {
	out := make([]Token, 0, len(tokens))
	var stack []Token
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenNum:
			out = append(out, tok)
		case TokenOp, TokenSign:
			op, ok := opOf(tok)
			if !ok {
				return nil, &SyntaxError{Col: tok.Pos, Text: tok.Text, Msg: "unknown operator"}
			}
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.Kind == TokenLParen {
					break
				}
				if p, _ := opOf(top); !p.yields(op) {
					break
				}
				out = append(out, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		case TokenLParen:
			stack = append(stack, tok)
		case TokenRParen:
			for {
				if len(stack) == 0 {
					return nil, &SyntaxError{Col: tok.Pos, Text: tok.Text, Msg: "mismatched parentheses"}
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Kind == TokenLParen {
					break
				}
				out = append(out, top)
			}
		default:
			return nil, &SyntaxError{Col: tok.Pos, Text: tok.Text, Msg: "unexpected token"}
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Kind == TokenLParen {
			return nil, &SyntaxError{Col: top.Pos, Text: top.Text, Msg: "mismatched parentheses"}
		}
		out = append(out, top)
	}
	return out, nil
}
