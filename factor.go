package compute

import (
	"math/big"

	"github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
)

// Factor factors sums using the standard definitions. See
// Canonicalizer.Factor.
func Factor(e *Expr) *Expr {
	return NewCanonicalizer(nil).Factor(e)
}

// Factor pulls the common numeric content and the common factors out of
// sums and splits differences of squares. Operands are factored first. The
// result is canonical.
func (c *Canonicalizer) Factor(e *Expr) *Expr {
	return c.factor(c.Canonicalize(e))
}

func (c *Canonicalizer) factor(e *Expr) *Expr {
	if e.kind != KindCompound || e.name == OpHold {
		return e
	}
	e = c.node(e.Map(c.factor))
	if !e.Is(OpAdd) || len(e.args) < 2 {
		return e
	}
	var outer []*Expr
	terms := e.args
	if content, ok := commonContent(terms); ok {
		terms = lo.Map(terms, func(t *Expr, _ int) *Expr {
			coef, rest := splitCoeff(t)
			q, _ := numInv(content)
			return c.term(numMul(coef, q), rest, nil)
		})
		outer = append(outer, Num(content))
	}
	if common := c.commonFactors(terms); len(common) > 0 {
		inv := lo.Map(common, func(f *Expr, _ int) *Expr { return c.build(OpPower, f, negOne) })
		terms = lo.Map(terms, func(t *Expr, _ int) *Expr {
			return c.build(OpMultiply, append([]*Expr{t}, inv...)...)
		})
		outer = append(outer, common...)
	}
	sum := c.build(OpAdd, terms...)
	if a, b, ok := c.differenceOfSquares(sum); ok {
		sum = c.build(OpMultiply, c.build(OpAdd, a, c.build(OpNegate, b)), c.build(OpAdd, a, b))
	}
	if len(outer) == 0 {
		return sum
	}
	return c.build(OpMultiply, append(outer, sum)...)
}

// commonContent returns the rational gcd of the coefficients of terms, with
// the sign of the leading term, if it is not one.
func commonContent(terms []*Expr) (*Number, bool) {
	var num, den *big.Int
	for _, t := range terms {
		coef, _ := splitCoeff(t)
		if !coef.IsExact() {
			return nil, false
		}
		n, d := new(big.Int).Abs(coef.rat.Num()), coef.rat.Denom()
		if num == nil {
			num, den = n, new(big.Int).Set(d)
			continue
		}
		num.GCD(nil, nil, num, n)
		g := new(big.Int).GCD(nil, nil, den, d)
		den.Mul(den, new(big.Int).Quo(d, g))
	}
	if num == nil || num.Sign() == 0 {
		return nil, false
	}
	r := new(big.Rat).SetFrac(num, den)
	if lead, _ := splitCoeff(terms[0]); lead.Sign() < 0 {
		r.Neg(r)
	}
	if r.Cmp(big.NewRat(1, 1)) == 0 {
		return nil, false
	}
	return exactNum(r), true
}

// powerOf splits a factor into its base and exact positive integer exponent.
func powerOf(f *Expr) (*Expr, *big.Int) {
	if f.Is(OpPower) && len(f.args) == 2 && f.args[1].IsNumber() && f.args[1].num.IsInteger() && f.args[1].num.Sign() > 0 {
		return f.args[0], f.args[1].num.rat.Num()
	}
	return f, big.NewInt(1)
}

// factorsOf returns the non-numeric factors of a term.
func factorsOf(t *Expr) []*Expr {
	_, rest := splitCoeff(t)
	if rest.Is(OpMultiply) {
		return rest.args
	}
	if rest.isInt(1) {
		return nil
	}
	return []*Expr{rest}
}

// commonFactors returns the powers of bases that divide every term, each
// with the least exponent it has among the terms.
func (c *Canonicalizer) commonFactors(terms []*Expr) []*Expr {
	var common set.Collection[string]
	for _, t := range terms {
		bases := set.New[string](0)
		for _, f := range factorsOf(t) {
			b, _ := powerOf(f)
			bases.Insert(b.String())
		}
		if common == nil {
			common = bases
		} else {
			common = common.Intersect(bases)
		}
		if common.Size() == 0 {
			return nil
		}
	}
	var r []*Expr
	for _, f := range factorsOf(terms[0]) {
		base, _ := powerOf(f)
		if !common.Contains(base.String()) {
			continue
		}
		var least *big.Int
		for _, t := range terms {
			for _, g := range factorsOf(t) {
				b, k := powerOf(g)
				if Equal(b, base) && (least == nil || k.Cmp(least) < 0) {
					least = k
				}
			}
		}
		r = append(r, c.build(OpPower, base, BigInt(least)))
	}
	return r
}

// differenceOfSquares reports whether sum is a^2 - b^2.
func (c *Canonicalizer) differenceOfSquares(sum *Expr) (a, b *Expr, ok bool) {
	if !sum.Is(OpAdd) || len(sum.args) != 2 {
		return nil, nil, false
	}
	p, n := sum.args[0], sum.args[1]
	if leadsNegative(p) {
		p, n = n, p
	}
	if leadsNegative(p) || !leadsNegative(n) {
		return nil, nil, false
	}
	if a, ok = c.squareRoot(p); !ok {
		return nil, nil, false
	}
	if b, ok = c.squareRoot(c.negate(n)); !ok {
		return nil, nil, false
	}
	return a, b, true
}

// squareRoot returns r such that r^2 is e, for e a product of even powers
// and a positive rational perfect square.
func (c *Canonicalizer) squareRoot(e *Expr) (*Expr, bool) {
	switch {
	case e.kind == KindNumber:
		if !e.num.IsExact() || e.num.Sign() <= 0 {
			return nil, false
		}
		r, ok := exactRoot(e.num.rat, big.NewRat(1, 2))
		if !ok {
			return nil, false
		}
		return Num(r), true
	case e.Is(OpMultiply):
		roots := make([]*Expr, len(e.args))
		for i, f := range e.args {
			r, ok := c.squareRoot(f)
			if !ok {
				return nil, false
			}
			roots[i] = r
		}
		return c.build(OpMultiply, roots...), true
	case e.Is(OpPower) && len(e.args) == 2 && e.args[1].IsNumber() && e.args[1].num.IsInteger():
		k := e.args[1].num.rat.Num()
		if k.Sign() <= 0 || k.Bit(0) != 0 {
			return nil, false
		}
		return c.build(OpPower, e.args[0], BigInt(new(big.Int).Rsh(k, 1))), true
	}
	return nil, false
}
