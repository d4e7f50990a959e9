package compute

import (
	"github.com/samber/lo"
)

// D returns the derivative of e with respect to the symbol x using the
// standard definitions. See Canonicalizer.D.
func D(e *Expr, x string) *Expr {
	return NewCanonicalizer(nil).D(e, x)
}

// D returns the canonical derivative of e with respect to the symbol x, by
// the sum, product, power and chain rules and the Derivative templates of
// the operator definitions. Parts with no known derivative are left as
// D(f, x).
func (c *Canonicalizer) D(e *Expr, x string) *Expr {
	return c.derivative(c.Canonicalize(e), x)
}

func (c *Canonicalizer) derivative(e *Expr, x string) *Expr {
	if !DependsOn(e, x) {
		return zero
	}
	switch e.kind {
	case KindSymbol:
		// Only x itself depends on x.
		return one
	case KindCompound:
	default:
		return c.build(OpD, e, Sym(x))
	}
	switch e.name {
	case OpAdd:
		return c.build(OpAdd, lo.Map(e.args, func(a *Expr, _ int) *Expr { return c.derivative(a, x) })...)
	case OpNegate:
		return c.build(OpNegate, c.derivative(e.args[0], x))
	case OpMultiply:
		terms := make([]*Expr, len(e.args))
		for i := range e.args {
			factors := make([]*Expr, len(e.args))
			copy(factors, e.args)
			factors[i] = c.derivative(e.args[i], x)
			terms[i] = c.build(OpMultiply, factors...)
		}
		return c.build(OpAdd, terms...)
	case OpPower:
		if len(e.args) != 2 {
			break
		}
		b, n := e.args[0], e.args[1]
		switch {
		case !DependsOn(n, x):
			// n b^(n-1) b'
			return c.build(OpMultiply, n, c.build(OpPower, b, c.build(OpAdd, n, negOne)), c.derivative(b, x))
		case !DependsOn(b, x):
			// b^n ln(b) n'
			return c.build(OpMultiply, e, c.logOf(b), c.derivative(n, x))
		}
		// b^n (n' ln(b) + n b' / b)
		return c.build(OpMultiply, e, c.build(OpAdd,
			c.build(OpMultiply, c.derivative(n, x), c.logOf(b)),
			c.build(OpMultiply, n, c.derivative(b, x), c.build(OpPower, b, negOne)),
		))
	}
	if d := c.def(e.name); d.Derivative != nil && len(e.args) == 1 {
		outer := c.Canonicalize(Substitute(d.Derivative, Bindings{"x": e.args[0]}))
		return c.build(OpMultiply, outer, c.derivative(e.args[0], x))
	}
	return c.build(OpD, e, Sym(x))
}

// logOf returns Ln(b), or 1 for the exponential base.
func (c *Canonicalizer) logOf(b *Expr) *Expr {
	if b.IsSymbol(SymE) {
		return one
	}
	return c.build(OpLn, b)
}

// Integrate returns an antiderivative of e with respect to the symbol x
// using the standard definitions. See Canonicalizer.Integrate.
func Integrate(e *Expr, x string) *Expr {
	return NewCanonicalizer(nil).Integrate(e, x)
}

// Integrate returns a canonical antiderivative of e with respect to the
// symbol x, by linearity, the power rule and the Antiderivative templates of
// the operator definitions, applied to arguments linear in x. Parts it
// cannot integrate are left as Integrate(f, x).
func (c *Canonicalizer) Integrate(e *Expr, x string) *Expr {
	return c.integrate(c.Canonicalize(e), x)
}

func (c *Canonicalizer) integrate(e *Expr, x string) *Expr {
	v := Sym(x)
	if !DependsOn(e, x) {
		return c.build(OpMultiply, e, v)
	}
	switch {
	case e.kind == KindSymbol:
		return c.build(OpMultiply, half, c.build(OpPower, v, Int(2)))
	case e.Is(OpAdd):
		return c.build(OpAdd, lo.Map(e.args, func(a *Expr, _ int) *Expr { return c.integrate(a, x) })...)
	case e.Is(OpNegate):
		return c.build(OpNegate, c.integrate(e.args[0], x))
	case e.Is(OpMultiply):
		consts, dep := lo.FilterReject(e.args, func(a *Expr, _ int) bool { return !DependsOn(a, x) })
		if len(consts) > 0 && len(dep) == 1 {
			return c.build(OpMultiply, append(consts, c.integrate(dep[0], x))...)
		}
	case e.Is(OpPower) && len(e.args) == 2:
		b, n := e.args[0], e.args[1]
		if slope, ok := c.linearSlope(b, x); ok && !DependsOn(n, x) {
			if n.isInt(-1) {
				// ∫ 1/(a x + k) = ln|a x + k| / a
				return c.build(OpMultiply, c.build(OpLn, c.build(OpAbs, b)), c.build(OpPower, slope, negOne))
			}
			n1 := c.build(OpAdd, n, one)
			return c.build(OpMultiply, c.build(OpPower, b, n1), c.build(OpPower, c.build(OpMultiply, n1, slope), negOne))
		}
		if slope, ok := c.linearSlope(n, x); ok && !DependsOn(b, x) {
			// ∫ b^(a x + k) = b^(a x + k) / (a ln b)
			return c.build(OpMultiply, e, c.build(OpPower, c.build(OpMultiply, slope, c.logOf(b)), negOne))
		}
	case len(e.args) == 1:
		d := c.def(e.name)
		slope, ok := c.linearSlope(e.args[0], x)
		if d.Antiderivative != nil && ok {
			prim := c.Canonicalize(Substitute(d.Antiderivative, Bindings{"x": e.args[0]}))
			return c.build(OpMultiply, prim, c.build(OpPower, slope, negOne))
		}
	}
	return c.build(OpIntegrate, e, v)
}

// linearSlope reports whether e is a x + k with a and k free of x and a
// non-zero, and returns a.
func (c *Canonicalizer) linearSlope(e *Expr, x string) (*Expr, bool) {
	a := c.derivative(e, x)
	if DependsOn(a, x) || a.isInt(0) {
		return nil, false
	}
	return a, true
}
