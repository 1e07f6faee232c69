package calc

import (
	"math/big"
)

// operand is a value on the evaluation stack with the position of the token
// that produced it.
type operand struct {
	v   *big.Rat
	pos int
}

// EvalPostfix evaluates a sequence of tokens in postfix order, as produced by
// Postfix. Errors are of type *SyntaxError for malformed sequences and
// *ArithmeticError for operations without a value.
func EvalPostfix(postfix []Token) (*big.Rat, error) {
	stack := make([]operand, 0, len(postfix)/2+1)
	for _, tok := range postfix {
		switch tok.Kind {
		case TokenNum:
			v, ok := tok.rat()
			if !ok {
				return nil, &SyntaxError{Col: tok.Pos, Text: tok.Text, Msg: "malformed number"}
			}
			stack = append(stack, operand{v, tok.Pos})
		case TokenOp, TokenSign:
			if len(stack) < 2 {
				return nil, &SyntaxError{Col: tok.Pos, Text: tok.Text, Msg: "insufficient operands"}
			}
			r := stack[len(stack)-1].v
			l := stack[len(stack)-2].v
			stack = stack[:len(stack)-1]
			// Every value on the stack is owned by this call, so the result
			// can overwrite the left operand.
			if err := apply(l, tok, l, r); err != nil {
				return nil, err
			}
		default:
			return nil, &SyntaxError{Col: tok.Pos, Text: tok.Text, Msg: "unexpected token"}
		}
	}
	switch len(stack) {
	case 1:
		return stack[0].v, nil
	case 0:
		return nil, &SyntaxError{Msg: "malformed expression"}
	default:
		return nil, &SyntaxError{Col: stack[1].pos, Msg: "malformed expression"}
	}
}

// Evaluate evaluates a sequence of tokens in infix order, as produced by
// Tokenize. Errors are of type *SyntaxError for malformed expressions and
// *ArithmeticError for expressions without a value.
func Evaluate(tokens []Token) (*big.Rat, error) {
	if len(tokens) == 0 {
		return nil, &SyntaxError{Msg: "empty expression"}
	}
	postfix, err := Postfix(tokens)
	if err != nil {
		return nil, err
	}
	return EvalPostfix(postfix)
}

// EvalString is a shortcut to tokenize and evaluate a string expression.
func EvalString(src string) (*big.Rat, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Evaluate(tokens)
}
