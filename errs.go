package calc

import (
	"strconv"
)

// SyntaxError is an error indicating malformed input: an unexpected character,
// a malformed number, mismatched parentheses, an operator without operands,
// or an empty expression. It implements InputError.
type SyntaxError struct {
	// Col is the position of the offending token, or 0 if the error does not
	// belong to any single token.
	Col int
	// Text is the offending text, if any.
	Text string
	// Msg describes the problem.
	Msg string
}

func (err *SyntaxError) Error() string {
	if err.Text == "" {
		return errpos(err.Col, err.Msg)
	}
	return errpos(err.Col, err.Msg+" "+strconv.Quote(err.Text))
}

func (err *SyntaxError) Pos() int {
	return err.Col
}

// ArithmeticError is an error indicating a well-formed expression that has no
// value, e.g. a division by zero. It implements InputError.
type ArithmeticError struct {
	// Col is the position of the operator.
	Col int
	// Op is the operator that failed.
	Op string
	// Msg describes the problem.
	Msg string
}

func (err *ArithmeticError) Error() string {
	return errpos(err.Col, err.Msg)
}

func (err *ArithmeticError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	if pos <= 0 {
		return msg
	}
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the 1-based rune column of the token that caused the error,
	// or 0 if there is no such token.
	Pos() int
}

var (
	_ InputError = (*SyntaxError)(nil)
	_ InputError = (*ArithmeticError)(nil)
)
