package calc

import (
	"errors"
	"io"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Token is a lexical token of an expression. Tokens are comparable, so two
// tokenizations of the same text are element-wise equal.
type Token struct {
	// Kind is the kind of token.
	Kind TokenKind
	// Text is the numeral of a number token, including any sign folded into
	// it, or the symbol of an operator or parenthesis.
	Text string
	// Pos is the 1-based rune column at which the token starts.
	Pos int
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Text + "@" + strconv.Itoa(t.Pos)
}

// Value returns the exact value of a number token. Panics if t is not a
// number token with a valid numeral.
func (t Token) Value() *big.Rat {
	r, ok := t.rat()
	if !ok {
		panic("calc: Value of " + t.String())
	}
	return r
}

// rat parses the numeral of a number token into a new rational.
func (t Token) rat() (*big.Rat, bool) {
	if t.Kind != TokenNum || t.Text == "" {
		return nil, false
	}
	s := t.Text
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	// Rat.SetString is stricter about bare points than the lexer.
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, false
	}
	if neg {
		r.Neg(r)
	}
	return r, true
}

// TokenKind is the kind of a Token.
type TokenKind int

const (
	tokenNone TokenKind = iota
	// TokenNum is a decimal number, possibly with a sign.
	TokenNum
	// TokenOp is a binary operator.
	TokenOp
	// TokenLParen is an open parenthesis.
	TokenLParen
	// TokenRParen is a close parenthesis.
	TokenRParen
	// TokenSign is the multiplication joining a sign to a parenthesized
	// exponent, as in "2 ** -(3)". Its text is "*", but it binds like "**".
	TokenSign
)

func (k TokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case TokenNum:
		return "Num"
	case TokenOp:
		return "Op"
	case TokenLParen:
		return "LParen"
	case TokenRParen:
		return "RParen"
	case TokenSign:
		return "Sign"
	default:
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	// last is the last token returned, or the zero token at the start of
	// input. It decides whether + and - are signs or operators.
	last Token
	p    Token
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{src: src}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok Token) {
	if l.p.Kind != tokenNone {
		panic("calc: double push")
	}
	l.p = tok
}

// emit records tok as the last token scanned and returns it.
func (l *lexer) emit(tok Token) Token {
	l.last = tok
	return tok
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// signs reports whether a + or - at the current position is a sign rather
// than a binary operator.
func (l *lexer) signs() bool {
	switch l.last.Kind {
	case tokenNone, TokenOp, TokenLParen, TokenSign:
		return true
	default:
		return false
	}
}

// next scans the next token from the input. At the end of the input, the
// result is an empty token with io.EOF.
func (l *lexer) next() (Token, error) {
	if l.p.Kind != tokenNone {
		tok := l.p
		l.p = Token{}
		return l.emit(tok), nil
	}
	defer l.buf.Reset()
	for {
		r, err := l.readRune()
		if err != nil {
			return Token{}, err
		}
		pos := l.rune
		switch {
		case unicode.IsSpace(r):
			continue
		case '0' <= r && r <= '9', r == '.':
			l.unreadRune()
			return l.scanNum(pos)
		case r == '+', r == '-':
			if l.signs() {
				return l.scanSign(r, pos)
			}
			return l.emit(Token{Kind: TokenOp, Text: string(r), Pos: pos}), nil
		case r == '*':
			// Try ** before *.
			s, err := l.readRune()
			switch {
			case err == nil && s == '*':
				return l.emit(Token{Kind: TokenOp, Text: "**", Pos: pos}), nil
			case err == nil:
				l.unreadRune()
			case !errors.Is(err, io.EOF):
				return Token{}, err
			}
			return l.emit(Token{Kind: TokenOp, Text: "*", Pos: pos}), nil
		case r == '/', r == '%':
			return l.emit(Token{Kind: TokenOp, Text: string(r), Pos: pos}), nil
		case r == '(':
			return l.emit(Token{Kind: TokenLParen, Text: "(", Pos: pos}), nil
		case r == ')':
			return l.emit(Token{Kind: TokenRParen, Text: ")", Pos: pos}), nil
		default:
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return Token{}, l.error(pos, "unexpected character")
		}
	}
}

// scanSign scans what follows a sign s at column pos. A sign before a number
// becomes part of the number, and a sign before a parenthesis becomes a
// multiplication by ±1, a TokenSign if the sign follows **. Otherwise the sign
// is returned as an operator, which cannot evaluate.
func (l *lexer) scanSign(s rune, pos int) (Token, error) {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				l.buf.WriteRune(s)
				return Token{}, l.error(pos, "operator at end")
			}
			return Token{}, err
		}
		switch {
		case unicode.IsSpace(r):
			continue
		case '0' <= r && r <= '9', r == '.':
			l.unreadRune()
			l.buf.WriteRune(s)
			return l.scanNum(pos)
		case r == '(':
			l.unreadRune()
			k := TokenOp
			if l.last.Kind == TokenOp && l.last.Text == "**" {
				k = TokenSign
			}
			l.push(Token{Kind: k, Text: "*", Pos: pos})
			return l.emit(Token{Kind: TokenNum, Text: string(s) + "1", Pos: pos}), nil
		default:
			l.unreadRune()
			return l.emit(Token{Kind: TokenOp, Text: string(s), Pos: pos}), nil
		}
	}
}

// scanNum scans digits and at most one decimal point into the buffer, which
// may already hold a sign.
func (l *lexer) scanNum(pos int) (Token, error) {
	var dig, dot bool
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Token{}, err
		}
		if r == '.' {
			if dot {
				l.buf.WriteRune(r)
				return Token{}, l.error(l.rune, "multiple decimal points in number")
			}
			dot = true
		} else if '0' <= r && r <= '9' {
			dig = true
		} else {
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
	}
	if !dig {
		return Token{}, l.error(pos, "malformed number")
	}
	return l.emit(Token{Kind: TokenNum, Text: l.buf.String(), Pos: pos}), nil
}

func (l *lexer) error(col int, msg string) error {
	return &SyntaxError{
		Col:  col,
		Text: l.buf.String(),
		Msg:  msg,
	}
}

// Tokenize converts an expression to its sequence of tokens. The only errors
// are of type *SyntaxError.
func Tokenize(text string) ([]Token, error) {
	scan := lex(strings.NewReader(text))
	var toks []Token
	for {
		tok, err := scan.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return toks, nil
			}
			return nil, err
		}
		toks = append(toks, tok)
	}
}
