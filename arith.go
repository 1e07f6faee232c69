package calc

import (
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

const (
	// powPrec is the precision in bits of powers with non-integer exponents.
	powPrec = 256
	// maxPowBits bounds the size in bits of the result of a power.
	maxPowBits = 1 << 20
)

// apply sets z to the result of the operator tok applied to l and r. z may
// alias l or r.
func apply(z *big.Rat, tok Token, l, r *big.Rat) error {
	switch tok.Text {
	case "+":
		z.Add(l, r)
	case "-":
		z.Sub(l, r)
	case "*":
		z.Mul(l, r)
	case "/":
		if r.Sign() == 0 {
			return &ArithmeticError{Col: tok.Pos, Op: tok.Text, Msg: "division by zero"}
		}
		z.Quo(l, r)
	case "%":
		if r.Sign() == 0 {
			return &ArithmeticError{Col: tok.Pos, Op: tok.Text, Msg: "modulo by zero"}
		}
		rem(z, l, r)
	case "**":
		return pow(z, tok, l, r)
	default:
		return &SyntaxError{Col: tok.Pos, Text: tok.Text, Msg: "unknown operator"}
	}
	return nil
}

// rem sets z to the remainder of l/r with the quotient truncated toward zero,
// so the result has the sign of l. r must be nonzero.
func rem(z, l, r *big.Rat) *big.Rat {
	q := new(big.Rat).Quo(l, r)
	t := new(big.Int).Quo(q.Num(), q.Denom())
	q.SetInt(t).Mul(q, r)
	return z.Sub(l, q)
}

// pow sets z to l raised to the power r. Integer exponents are exact.
func pow(z *big.Rat, tok Token, l, r *big.Rat) error {
	switch {
	case r.Sign() == 0:
		z.SetInt64(1)
		return nil
	case l.Sign() == 0:
		if r.Sign() < 0 {
			return &ArithmeticError{Col: tok.Pos, Op: tok.Text, Msg: "division by zero"}
		}
		z.SetInt64(0)
		return nil
	case l.Sign() < 0 && !r.IsInt():
		return &ArithmeticError{Col: tok.Pos, Op: tok.Text, Msg: "complex result"}
	case l.IsInt() && l.Num().IsInt64() && (l.Num().Int64() == 1 || l.Num().Int64() == -1):
		// ±1 to any power is ±1, however large the exponent.
		if l.Sign() < 0 && r.Num().Bit(0) == 1 {
			z.SetInt64(-1)
		} else {
			z.SetInt64(1)
		}
		return nil
	}
	if r.IsInt() {
		return intpow(z, tok, l, r)
	}

	// The result is about 2^(r log2 l), so reject it early if that is too big.
	m := new(big.Float)
	e := new(big.Float).SetRat(l).MantExp(m)
	mf, _ := m.Abs(m).Float64()
	rf, _ := r.Float64()
	if bits := rf * (float64(e) + math.Log2(mf)); math.IsNaN(bits) || math.Abs(bits) > maxPowBits {
		return &ArithmeticError{Col: tok.Pos, Op: tok.Text, Msg: "result overflow"}
	}
	x := new(big.Float).SetPrec(powPrec).SetRat(l)
	y := new(big.Float).SetPrec(powPrec).SetRat(r)
	f := bigfloat.Pow(new(big.Float).SetPrec(powPrec), x, y)
	if f.IsInf() {
		return &ArithmeticError{Col: tok.Pos, Op: tok.Text, Msg: "result overflow"}
	}
	f.Rat(z)
	return nil
}

// intpow sets z to l raised to the integer power r exactly.
func intpow(z *big.Rat, tok Token, l, r *big.Rat) error {
	bits := l.Num().BitLen()
	if d := l.Denom().BitLen(); d > bits {
		bits = d
	}
	n := new(big.Int).Abs(r.Num())
	if !n.IsInt64() || n.Int64() > maxPowBits/int64(bits) {
		return &ArithmeticError{Col: tok.Pos, Op: tok.Text, Msg: "result overflow"}
	}
	num := new(big.Int).Exp(l.Num(), n, nil)
	den := new(big.Int).Exp(l.Denom(), n, nil)
	if r.Sign() < 0 {
		num, den = den, num
	}
	z.SetFrac(num, den)
	return nil
}
