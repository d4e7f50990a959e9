package compute

import (
	"math/big"
	"sync"

	"golang.org/x/exp/slices"
)

// StandardRules returns the default simplification rules: trigonometric
// parity, periodicity and exact values, the Pythagorean identities, the
// inverse relation of exponentials and logarithms, and absolute values and
// signs under assumptions.
func StandardRules() RuleSet {
	return slices.Clone(standardRules())
}

var standardRules = sync.OnceValue(func() RuleSet {
	return NewRuleSet(
		RuleFunc("parity", parity),
		RuleFunc("periodicity", periodicity, Worsening(4)),
		RuleFunc("exact trigonometric value", trigValue, Worsening(8)),

		MustRule("Sin(_x)^2 + Cos(_x)^2 + ___r -> 1 + ___r", Because("Pythagorean identity")),
		MustRule("1 - Sin(_x)^2 + ___r -> Cos(_x)^2 + ___r", Because("Pythagorean identity")),
		MustRule("1 - Cos(_x)^2 + ___r -> Sin(_x)^2 + ___r", Because("Pythagorean identity")),
		MustRule("Cosh(_x)^2 - Sinh(_x)^2 + ___r -> 1 + ___r", Because("hyperbolic Pythagorean identity")),
		MustRule("Sin(_x) / Cos(_x) * ___r -> Tan(_x) * ___r", Because("definition of Tan")),

		MustRule("Ln(1) -> 0"),
		MustRule("Ln(e) -> 1"),
		MustRule("e^Ln(_x) -> _x", Because("exponential of logarithm")),
		MustRule("e^(_n Ln(_x)) -> _x^_n", Because("exponential of logarithm")),
		MustRule("Ln(e^_x) -> _x", Because("logarithm of exponential"), When(knownReal("x"))),
		MustRule("Ln(_x^_n) -> _n Ln(_x)", Because("logarithm of power"), When(allOf(knownPositive("x"), knownReal("n")))),
		MustRule("Ln(_x) + Ln(_y) + ___r -> Ln(_x _y) + ___r", Because("sum of logarithms"), When(allOf(knownPositive("x"), knownPositive("y")))),

		MustRule("(_x^2)^(1/2) -> Abs(_x)", Because("square root of square"), When(knownReal("x"))),
		MustRule("Abs(_x) -> _x", Because("absolute value of non-negative"), When(holds("_x >= 0"))),
		MustRule("Abs(_x) -> -_x", Because("absolute value of non-positive"), When(holds("_x <= 0"))),
		MustRule("Sign(_x) -> 1", Because("sign of positive"), When(holds("_x > 0"))),
		MustRule("Sign(_x) -> -1", Because("sign of negative"), When(holds("_x < 0"))),
		MustRule("Sign(_x) -> 0", Because("sign of zero"), When(holds("_x = 0"))),
	)
})

// holds returns a condition that the proposition src, with its wildcards
// replaced by their bindings, is true under the assumptions in scope.
func holds(src string) func(Bindings, *Session) bool {
	prop := Compile(MustParse(src, Wildcards()))
	return func(b Bindings, s *Session) bool {
		v, unbound := substitute(prop, b)
		return len(unbound) == 0 && s.Is(v) == TruthTrue
	}
}

func knownReal(name string) func(Bindings, *Session) bool {
	return holds("Element(_" + name + ", RealNumbers)")
}

func knownPositive(name string) func(Bindings, *Session) bool {
	return holds("_" + name + " > 0")
}

func allOf(conds ...func(Bindings, *Session) bool) func(Bindings, *Session) bool {
	return func(b Bindings, s *Session) bool {
		for _, c := range conds {
			if !c(b, s) {
				return false
			}
		}
		return true
	}
}

// parity applies f(-x) = -f(x) for odd functions and f(-x) = f(x) for even
// ones, as declared by their definitions.
func parity(e *Expr, s *Session) *RewriteStep {
	if e.kind != KindCompound || len(e.args) != 1 || e.name == OpNegate {
		return nil
	}
	d := s.Scope().LookupFunction(e.name)
	if d == nil || d.Parity == 0 {
		return nil
	}
	x := e.args[0]
	switch {
	case x.Is(OpNegate):
		x = x.args[0]
	case x.kind == KindNumber && !x.num.IsComplex() && x.num.Sign() < 0:
		x = Num(numNeg(x.num))
	default:
		return nil
	}
	f := call(e.name, []*Expr{x})
	if d.Parity == parityEven {
		return &RewriteStep{Value: f, Because: "even function: " + e.name + "(-x) = " + e.name + "(x)"}
	}
	return &RewriteStep{Value: Call(OpNegate, f), Because: "odd function: " + e.name + "(-x) = -" + e.name + "(x)"}
}

// antiperiodic functions change sign when shifted by half their period.
var antiperiodic = map[string]bool{OpSin: true, OpCos: true, OpSec: true, OpCsc: true}

// piMultiple returns c if e is c Pi for an exact rational c.
func piMultiple(e *Expr) (*big.Rat, bool) {
	switch {
	case e.IsSymbol(SymPi):
		return big.NewRat(1, 1), true
	case e.Is(OpNegate):
		c, ok := piMultiple(e.args[0])
		if !ok {
			return nil, false
		}
		return c.Neg(c), true
	case e.Is(OpMultiply) && len(e.args) == 2 && e.args[0].kind == KindNumber && e.args[0].num.IsExact() && e.args[1].IsSymbol(SymPi):
		return new(big.Rat).Set(e.args[0].num.rat), true
	}
	return nil, false
}

// ratMod returns r reduced modulo m into (-m/2, m/2].
func ratMod(r, m *big.Rat) *big.Rat {
	q := new(big.Rat).Quo(r, m)
	k := new(big.Int).Div(q.Num(), q.Denom())
	x := new(big.Rat).Sub(r, new(big.Rat).Mul(new(big.Rat).SetInt(k), m))
	if x.Cmp(new(big.Rat).Quo(m, big.NewRat(2, 1))) > 0 {
		x.Sub(x, m)
	}
	return x
}

// periodicity removes whole periods from the argument of a periodic
// function, and half periods from antiperiodic ones.
func periodicity(e *Expr, s *Session) *RewriteStep {
	if e.kind != KindCompound || len(e.args) != 1 {
		return nil
	}
	d := s.Scope().LookupFunction(e.name)
	if d == nil || d.Period == nil {
		return nil
	}
	period, ok := piMultiple(d.Period)
	if !ok {
		return nil
	}
	terms := []*Expr{e.args[0]}
	if e.args[0].Is(OpAdd) {
		terms = e.args[0].args
	}
	i := slices.IndexFunc(terms, func(t *Expr) bool {
		_, ok := piMultiple(t)
		return ok
	})
	if i < 0 {
		return nil
	}
	c, _ := piMultiple(terms[i])
	r := ratMod(c, period)
	neg := false
	if antiperiodic[e.name] {
		halfp := new(big.Rat).Quo(period, big.NewRat(2, 1))
		r = ratMod(r, halfp)
		// c - r is a whole number of half periods; an odd number flips the sign.
		n := new(big.Rat).Sub(c, r)
		n.Quo(n, halfp)
		neg = n.Num().Bit(0) == 1
	}
	if r.Cmp(c) == 0 {
		return nil
	}
	rest := slices.Clone(terms)
	rest[i] = Call(OpMultiply, BigRat(r), Sym(SymPi))
	v := Call(e.name, Call(OpAdd, rest...))
	if neg {
		v = Call(OpNegate, v)
	}
	return &RewriteStep{Value: v, Because: "periodicity of " + e.name}
}

// sinTable holds Sin(k Pi) for k in [0, 1/2] with a closed form.
var sinTable = map[string]string{
	"0":   "0",
	"1/6": "1/2",
	"1/4": "Sqrt(2)/2",
	"1/3": "Sqrt(3)/2",
	"1/2": "1",
}

// sinPi returns the closed form of Sin(k Pi), if known.
func sinPi(k *big.Rat) (*Expr, bool) {
	k = ratMod(k, big.NewRat(2, 1))
	neg := k.Sign() < 0
	if neg {
		k.Neg(k)
	}
	// Sin(Pi - t) = Sin(t).
	if k.Cmp(big.NewRat(1, 2)) > 0 {
		k.Sub(big.NewRat(1, 1), k)
	}
	src, ok := sinTable[k.RatString()]
	if !ok {
		return nil, false
	}
	v := MustParse(src)
	if neg {
		v = Call(OpNegate, v)
	}
	return v, true
}

// trigValue evaluates Sin, Cos and Tan at rational multiples of Pi whose
// values have a closed form.
func trigValue(e *Expr, s *Session) *RewriteStep {
	if !(e.Is(OpSin) || e.Is(OpCos) || e.Is(OpTan)) || len(e.args) != 1 {
		return nil
	}
	k, ok := piMultiple(e.args[0])
	if !ok {
		if !e.args[0].isInt(0) || !e.args[0].num.IsExact() {
			return nil
		}
		k = new(big.Rat)
	}
	cosArg := new(big.Rat).Add(k, big.NewRat(1, 2))
	var v *Expr
	switch e.name {
	case OpSin:
		if v, ok = sinPi(k); !ok {
			return nil
		}
	case OpCos:
		if v, ok = sinPi(cosArg); !ok {
			return nil
		}
	case OpTan:
		sn, ok1 := sinPi(k)
		cs, ok2 := sinPi(cosArg)
		if !ok1 || !ok2 {
			return nil
		}
		cs = s.Canonicalize(cs)
		if cs.isInt(0) {
			return nil
		}
		v = Call(OpDivide, sn, cs)
	}
	return &RewriteStep{Value: v, Because: "exact value of " + e.name}
}
