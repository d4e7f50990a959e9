package compute

import (
	"errors"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Func is the numeric definition of an operator on reals. The function
// should set r to its result and should not use the value of r otherwise.
type Func interface {
	// Call evaluates the function. args has a length for which CanCall
	// returned true, and each element has precision prec. Call may modify
	// the elements of args.
	Call(prec uint, args []*big.Float, r *big.Float) error

	// CanCall returns whether the function can be called with n arguments.
	// Constant symbols are evaluated by functions that can be called with
	// none.
	CanCall(n int) bool
}

// numericFuncs are the numeric definitions of the standard operators and
// constants.
var numericFuncs = map[string]Func{
	OpLn: Monadic(func(out, in *big.Float) *big.Float {
		if in.Sign() <= 0 {
			panic(big.ErrNaN{})
		}
		return bigfloat.Log(out, in)
	}),
	OpLog: Monadic(func(out, in *big.Float) *big.Float {
		if in.Sign() <= 0 {
			panic(big.ErrNaN{})
		}
		bigfloat.Log(out, in)
		in.SetFloat64(10).SetPrec(out.Prec())
		bigfloat.Log(in, in)
		return out.Quo(out, in)
	}),
	OpSin: Monadic(func(out, in *big.Float) *big.Float {
		s, _ := sinCos(in, out.Prec())
		return out.Set(s)
	}),
	OpCos: Monadic(func(out, in *big.Float) *big.Float {
		_, c := sinCos(in, out.Prec())
		return out.Set(c)
	}),
	OpTan: Monadic(func(out, in *big.Float) *big.Float {
		s, c := sinCos(in, out.Prec())
		if c.Sign() == 0 {
			panic(big.ErrNaN{})
		}
		return out.Quo(s, c)
	}),
	OpArctan: Monadic(arctan),
	OpArcsin: Monadic(func(out, in *big.Float) *big.Float {
		// asin x = atan(x / sqrt(1 - x^2)), with |x| = 1 at the poles.
		p := out.Prec() + 32
		d := new(big.Float).SetPrec(p).Mul(in, in)
		d.Sub(new(big.Float).SetPrec(p).SetInt64(1), d)
		if d.Sign() < 0 {
			panic(big.ErrNaN{})
		}
		if d.Sign() == 0 {
			bigfloat.Pi(out)
			out.Quo(out, new(big.Float).SetInt64(2))
			if in.Sign() < 0 {
				out.Neg(out)
			}
			return out
		}
		d.Sqrt(d)
		return arctan(out, d.Quo(in, d))
	}),
	OpSinh: Monadic(func(out, in *big.Float) *big.Float {
		a, b := expPair(in, out.Prec())
		out.Sub(a, b)
		return out.Quo(out, new(big.Float).SetInt64(2))
	}),
	OpCosh: Monadic(func(out, in *big.Float) *big.Float {
		a, b := expPair(in, out.Prec())
		out.Add(a, b)
		return out.Quo(out, new(big.Float).SetInt64(2))
	}),
	OpTanh: Monadic(func(out, in *big.Float) *big.Float {
		a, b := expPair(in, out.Prec())
		n := new(big.Float).SetPrec(out.Prec()).Sub(a, b)
		return out.Quo(n, a.Add(a, b))
	}),
	OpAbs: Monadic((*big.Float).Abs),

	SymPi: Niladic(bigfloat.Pi),
	SymE: Niladic(func(out *big.Float) *big.Float {
		var one big.Float
		one.SetFloat64(1)
		return bigfloat.Exp(out, &one)
	}),
	SymGoldenRatio: Niladic(func(out *big.Float) *big.Float {
		out.SetInt64(5)
		out.Sqrt(out)
		out.Add(out, new(big.Float).SetInt64(1))
		return out.Quo(out, new(big.Float).SetInt64(2))
	}),
}

type monadic struct {
	f func(out, in *big.Float) *big.Float
}

func (m monadic) Call(prec uint, args []*big.Float, r *big.Float) error {
	in := args[0]
	r.SetPrec(prec)
	if err := guardNaN(func() { m.f(r, in) }); err != nil {
		return DomainError{X: in, Arg: 1}
	}
	return nil
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func. f must set out to its
// result, to the precision of out; its return value is always ignored. If f is
// called on an argument outside f's domain, it should panic with an error of
// type big.ErrNaN, or that unwraps to it.
func Monadic(f func(out, in *big.Float) *big.Float) Func {
	return monadic{f}
}

type niladic struct {
	f func(out *big.Float) *big.Float
}

func (n niladic) Call(prec uint, args []*big.Float, r *big.Float) error {
	r.SetPrec(prec)
	n.f(r)
	return nil
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic wraps a function of zero variables, generally a function which
// computes a constant, into a Func. f must set out to its result; its return
// value is always ignored. Unlike Monadic, the wrapped function is expected
// never to panic.
func Niladic(f func(out *big.Float) *big.Float) Func {
	return niladic{f}
}

// DomainError is an error returned when a function is called on arguments
// outside its domain. DomainError unwraps to big.ErrNaN.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

func (err DomainError) Unwrap() error {
	return big.ErrNaN{}
}

// isDomainError reports whether err is a DomainError and returns it.
func isDomainError(err error) (DomainError, bool) {
	var d DomainError
	ok := errors.As(err, &d)
	return d, ok
}

// sinCos computes the sine and cosine of x to prec bits.
func sinCos(x *big.Float, prec uint) (sin, cos *big.Float) {
	wp := prec + 64
	if x.IsInf() {
		panic(big.ErrNaN{})
	}
	// Reduce x into [-pi, pi] by whole turns.
	twoPi := bigfloat.Pi(new(big.Float).SetPrec(wp + uint(max(x.MantExp(nil), 0))))
	twoPi.Mul(twoPi, new(big.Float).SetInt64(2))
	k := new(big.Float).SetPrec(twoPi.Prec()).Quo(x, twoPi)
	n, _ := k.Add(k, new(big.Float).SetFloat64(0.5)).Int(nil)
	if k.Sign() < 0 && !k.IsInt() {
		n.Sub(n, big.NewInt(1))
	}
	y := new(big.Float).SetPrec(twoPi.Prec()).SetInt(n)
	y.Sub(x, y.Mul(y, twoPi))
	y.SetPrec(wp)

	y2 := new(big.Float).SetPrec(wp).Mul(y, y)
	sin = new(big.Float).SetPrec(wp).Set(y)
	cos = new(big.Float).SetPrec(wp).SetInt64(1)
	ts := new(big.Float).SetPrec(wp).Set(y)
	tc := new(big.Float).SetPrec(wp).SetInt64(1)
	d := new(big.Float).SetPrec(wp)
	for i := int64(1); ; i++ {
		ts.Mul(ts, y2)
		ts.Quo(ts, d.SetInt64(-2*i*(2*i+1)))
		tc.Mul(tc, y2)
		tc.Quo(tc, d.SetInt64(-(2*i-1)*(2*i)))
		sin.Add(sin, ts)
		cos.Add(cos, tc)
		if negligible(ts, wp) && negligible(tc, wp) {
			break
		}
	}
	return sin.SetPrec(prec), cos.SetPrec(prec)
}

// negligible reports whether t is below 2^-wp.
func negligible(t *big.Float, wp uint) bool {
	return t.Sign() == 0 || t.MantExp(nil) < -int(wp)
}

// arctan sets out to the arctangent of in.
func arctan(out, in *big.Float) *big.Float {
	prec := out.Prec()
	wp := prec + 64
	if in.IsInf() {
		bigfloat.Pi(out)
		out.Quo(out, new(big.Float).SetInt64(2))
		if in.Sign() < 0 {
			out.Neg(out)
		}
		return out
	}
	// atan x = 2 atan(x / (1 + sqrt(1 + x^2))) until |x| is small.
	x := new(big.Float).SetPrec(wp).Set(in)
	one := new(big.Float).SetPrec(wp).SetInt64(1)
	half := new(big.Float).SetFloat64(0.5)
	scale := int64(1)
	for new(big.Float).Abs(x).Cmp(half) > 0 {
		t := new(big.Float).SetPrec(wp).Mul(x, x)
		t.Add(t, one)
		t.Sqrt(t)
		t.Add(t, one)
		x.Quo(x, t)
		scale *= 2
	}
	x2 := new(big.Float).SetPrec(wp).Mul(x, x)
	sum := new(big.Float).SetPrec(wp).Set(x)
	pow := new(big.Float).SetPrec(wp).Set(x)
	t := new(big.Float).SetPrec(wp)
	for i := int64(1); ; i++ {
		pow.Mul(pow, x2)
		pow.Neg(pow)
		t.Quo(pow, t.SetInt64(2*i+1))
		sum.Add(sum, t)
		if negligible(t, wp) {
			break
		}
	}
	sum.Mul(sum, new(big.Float).SetInt64(scale))
	return out.Set(sum)
}

// expPair returns e^x and e^-x to prec bits.
func expPair(x *big.Float, prec uint) (a, b *big.Float) {
	wp := prec + 32
	a = bigfloat.Exp(new(big.Float).SetPrec(wp), x)
	b = new(big.Float).SetPrec(wp).Quo(new(big.Float).SetPrec(wp).SetInt64(1), a)
	return a, b
}
