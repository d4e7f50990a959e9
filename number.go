package compute

import (
	"errors"
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// Number is the value of a numeric literal. It is either exact, holding a
// rational, or inexact, holding an arbitrary-precision float and, for complex
// values, an imaginary part. Numbers are immutable.
type Number struct {
	rat *big.Rat
	re  *big.Float
	im  *big.Float
}

// defaultPrec is the precision of inexact values created from float64 or
// from exact values combined with inexact ones.
const defaultPrec = 64

func exactNum(r *big.Rat) *Number {
	return &Number{rat: r}
}

func floatNum(f *big.Float) *Number {
	return &Number{re: f}
}

func complexNum(re, im *big.Float) *Number {
	if im == nil || im.Sign() == 0 && !im.Signbit() {
		return &Number{re: re}
	}
	return &Number{re: re, im: im}
}

// IsExact reports whether n is an exact rational.
func (n *Number) IsExact() bool {
	return n.rat != nil
}

// IsComplex reports whether n has a non-zero imaginary part.
func (n *Number) IsComplex() bool {
	return n.im != nil
}

// IsInteger reports whether n is an exact integer.
func (n *Number) IsInteger() bool {
	return n.rat != nil && n.rat.IsInt()
}

// Rat returns a copy of the exact value of n, or nil if n is inexact.
func (n *Number) Rat() *big.Rat {
	if n.rat == nil {
		return nil
	}
	return new(big.Rat).Set(n.rat)
}

// Real returns the real part of n as a float with the given precision.
func (n *Number) Real(prec uint) *big.Float {
	if n.rat != nil {
		return new(big.Float).SetPrec(prec).SetRat(n.rat)
	}
	return new(big.Float).SetPrec(prec).Set(n.re)
}

// Imag returns the imaginary part of n as a float with the given precision.
func (n *Number) Imag(prec uint) *big.Float {
	if n.im == nil {
		return new(big.Float).SetPrec(prec)
	}
	return new(big.Float).SetPrec(prec).Set(n.im)
}

// Float64 returns the nearest float64 to the real part of n.
func (n *Number) Float64() float64 {
	if n.rat != nil {
		f, _ := n.rat.Float64()
		return f
	}
	f, _ := n.re.Float64()
	return f
}

// Sign returns the sign of the real part of n, or 0 for complex values whose
// sign is not defined.
func (n *Number) Sign() int {
	switch {
	case n.rat != nil:
		return n.rat.Sign()
	case n.im != nil:
		return 0
	default:
		return n.re.Sign()
	}
}

// IsZero reports whether n is zero.
func (n *Number) IsZero() bool {
	if n.rat != nil {
		return n.rat.Sign() == 0
	}
	return n.re.Sign() == 0 && n.im == nil
}

// IsOne reports whether n is exactly or inexactly one.
func (n *Number) IsOne() bool {
	return n.isInt(1)
}

// IsNegOne reports whether n is exactly or inexactly minus one.
func (n *Number) IsNegOne() bool {
	return n.isInt(-1)
}

func (n *Number) isInt(k int64) bool {
	if n.rat != nil {
		return n.rat.IsInt() && n.rat.Num().IsInt64() && n.rat.Num().Int64() == k
	}
	if n.im != nil {
		return false
	}
	return n.re.Cmp(new(big.Float).SetInt64(k)) == 0
}

// prec returns the working precision of an inexact number, or 0 if exact.
func (n *Number) prec() uint {
	if n.rat != nil {
		return 0
	}
	return n.re.Prec()
}

func workPrec(a, b *Number) uint {
	p := a.prec()
	if q := b.prec(); q > p {
		p = q
	}
	if p == 0 {
		p = defaultPrec
	}
	return p
}

func numNeg(a *Number) *Number {
	if a.rat != nil {
		return exactNum(new(big.Rat).Neg(a.rat))
	}
	re := new(big.Float).Neg(a.re)
	if a.im == nil {
		return floatNum(re)
	}
	return complexNum(re, new(big.Float).Neg(a.im))
}

func numAbs(a *Number) *Number {
	if a.Sign() < 0 {
		return numNeg(a)
	}
	return a
}

func numAdd(a, b *Number) *Number {
	if a.rat != nil && b.rat != nil {
		return exactNum(new(big.Rat).Add(a.rat, b.rat))
	}
	p := workPrec(a, b)
	re := new(big.Float).SetPrec(p).Add(a.Real(p), b.Real(p))
	if a.im == nil && b.im == nil {
		return floatNum(re)
	}
	return complexNum(re, new(big.Float).SetPrec(p).Add(a.Imag(p), b.Imag(p)))
}

func numMul(a, b *Number) *Number {
	if a.rat != nil && b.rat != nil {
		return exactNum(new(big.Rat).Mul(a.rat, b.rat))
	}
	p := workPrec(a, b)
	if a.im == nil && b.im == nil {
		return floatNum(new(big.Float).SetPrec(p).Mul(a.Real(p), b.Real(p)))
	}
	// (ar + ai i)(br + bi i)
	ar, ai, br, bi := a.Real(p), a.Imag(p), b.Real(p), b.Imag(p)
	re := new(big.Float).SetPrec(p).Mul(ar, br)
	re.Sub(re, new(big.Float).SetPrec(p).Mul(ai, bi))
	im := new(big.Float).SetPrec(p).Mul(ar, bi)
	im.Add(im, new(big.Float).SetPrec(p).Mul(ai, br))
	return complexNum(re, im)
}

// numInv returns 1/a, or false if a is zero.
func numInv(a *Number) (*Number, bool) {
	if a.IsZero() {
		return nil, false
	}
	if a.rat != nil {
		return exactNum(new(big.Rat).Inv(a.rat)), true
	}
	p := a.prec()
	if a.im == nil {
		return floatNum(new(big.Float).SetPrec(p).Quo(new(big.Float).SetPrec(p).SetInt64(1), a.re)), true
	}
	// 1/(x+yi) = (x-yi)/(x²+y²)
	d := new(big.Float).SetPrec(p).Mul(a.re, a.re)
	d.Add(d, new(big.Float).SetPrec(p).Mul(a.im, a.im))
	re := new(big.Float).SetPrec(p).Quo(a.re, d)
	im := new(big.Float).SetPrec(p).Quo(a.im, d)
	return complexNum(re, im.Neg(im)), true
}

// numPowInt raises a to an integer power, or reports false for 0^-k.
func numPowInt(a *Number, k int64) (*Number, bool) {
	if k < 0 {
		inv, ok := numInv(a)
		if !ok {
			return nil, false
		}
		return numPowInt(inv, -k)
	}
	if a.rat != nil {
		num := new(big.Int).Exp(a.rat.Num(), big.NewInt(k), nil)
		den := new(big.Int).Exp(a.rat.Denom(), big.NewInt(k), nil)
		return exactNum(new(big.Rat).SetFrac(num, den)), true
	}
	r := floatNum(new(big.Float).SetPrec(a.prec()).SetInt64(1))
	b := a
	for k > 0 {
		if k&1 != 0 {
			r = numMul(r, b)
		}
		b = numMul(b, b)
		k >>= 1
	}
	return r, true
}

// numPow computes a^b when the result is representable without leaving the
// reals or losing exactness of an exact input. It reports false otherwise.
func numPow(a, b *Number) (*Number, bool) {
	if b.IsInteger() {
		if !b.rat.Num().IsInt64() {
			return nil, false
		}
		return numPowInt(a, b.rat.Num().Int64())
	}
	if a.IsComplex() || b.IsComplex() {
		return nil, false
	}
	if a.rat != nil && b.rat != nil {
		return exactRoot(a.rat, b.rat)
	}
	if a.Sign() < 0 {
		// A negative base stays real only under an integer exponent.
		k, ok := integral(b)
		if !ok {
			return nil, false
		}
		return numPowInt(floatNum(a.Real(workPrec(a, b))), k)
	}
	if a.IsZero() {
		if b.Sign() > 0 {
			return exactNum(new(big.Rat)), true
		}
		return nil, false
	}
	p := workPrec(a, b)
	out := new(big.Float).SetPrec(p)
	if err := guardNaN(func() { bigfloat.Pow(out, a.Real(p), b.Real(p)) }); err != nil {
		return nil, false
	}
	return floatNum(out), true
}

// integral returns the value of an integer-valued inexact real.
func integral(n *Number) (int64, bool) {
	if n.re == nil || n.im != nil || !n.re.IsInt() {
		return 0, false
	}
	k, acc := n.re.Int64()
	return k, acc == big.Exact
}

// exactRoot computes base^(p/q) for a non-negative rational base when both
// numerator and denominator of the base are perfect q-th powers.
func exactRoot(base, exp *big.Rat) (*Number, bool) {
	if base.Sign() < 0 {
		return nil, false
	}
	q := exp.Denom()
	if !q.IsInt64() || q.Int64() > 64 {
		return nil, false
	}
	n, ok1 := intRoot(base.Num(), q.Int64())
	d, ok2 := intRoot(base.Denom(), q.Int64())
	if !ok1 || !ok2 {
		return nil, false
	}
	if !exp.Num().IsInt64() {
		return nil, false
	}
	return numPowInt(exactNum(new(big.Rat).SetFrac(n, d)), exp.Num().Int64())
}

// intRoot returns the exact k-th root of a non-negative integer, if any.
func intRoot(x *big.Int, k int64) (*big.Int, bool) {
	if x.Sign() == 0 || x.Cmp(big.NewInt(1)) == 0 {
		return new(big.Int).Set(x), true
	}
	if k == 2 {
		r := new(big.Int).Sqrt(x)
		return r, new(big.Int).Mul(r, r).Cmp(x) == 0
	}
	// Newton iteration from a float estimate, then fix up.
	f, _ := new(big.Float).SetInt(x).Float64()
	est := math.Round(math.Pow(f, 1/float64(k)))
	if math.IsInf(est, 0) || math.IsNaN(est) {
		return nil, false
	}
	r, _ := big.NewFloat(est).Int(nil)
	for _, d := range []int64{0, -1, 1} {
		c := new(big.Int).Add(r, big.NewInt(d))
		if new(big.Int).Exp(c, big.NewInt(k), nil).Cmp(x) == 0 {
			return c, true
		}
	}
	return nil, false
}

// numCmp orders numbers by real part, then imaginary part, then exact before
// inexact. It is a total order on numbers.
func numCmp(a, b *Number) int {
	if a.rat != nil && b.rat != nil {
		return a.rat.Cmp(b.rat)
	}
	p := workPrec(a, b)
	if c := a.Real(p).Cmp(b.Real(p)); c != 0 {
		return c
	}
	if c := a.Imag(p).Cmp(b.Imag(p)); c != 0 {
		return c
	}
	switch {
	case a.rat != nil:
		return -1
	case b.rat != nil:
		return 1
	}
	return 0
}

// numClose reports whether |a-b| <= tol in both real and imaginary parts.
func numClose(a, b *Number, tol float64) bool {
	if a.rat != nil && b.rat != nil && tol == 0 {
		return a.rat.Cmp(b.rat) == 0
	}
	p := workPrec(a, b)
	if p < 128 {
		p = 128
	}
	t := new(big.Float).SetPrec(p).SetFloat64(tol)
	d := new(big.Float).SetPrec(p).Sub(a.Real(p), b.Real(p))
	if d.Abs(d).Cmp(t) > 0 {
		return false
	}
	d.Sub(a.Imag(p), b.Imag(p))
	return d.Abs(d).Cmp(t) <= 0
}

// guardNaN runs f and converts a big.ErrNaN panic, which bigfloat and
// math/big use for domain errors, into an error. Other panics propagate.
func guardNaN(f func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok {
			var nan big.ErrNaN
			if errors.As(e, &nan) {
				err = e
				return
			}
		}
		panic(r)
	}()
	f()
	return nil
}
