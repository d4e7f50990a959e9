package compute

import (
	"github.com/samber/lo"
)

// maxExpandPower bounds the exponent of a sum that Expand multiplies out.
const maxExpandPower = 64

// productOfSum matches a product with at least one sum among its factors.
var productOfSum = PCall(OpMultiply, PCall(OpAdd, Seq("terms")), OptSeq("rest"))

// Expand distributes products and positive integer powers over sums using
// the standard definitions.
func Expand(e *Expr) *Expr {
	return NewCanonicalizer(nil).Expand(e)
}

// Expand distributes products and positive integer powers over sums. The
// result is canonical.
func (c *Canonicalizer) Expand(e *Expr) *Expr {
	return c.expand(c.Canonicalize(e))
}

func (c *Canonicalizer) expand(e *Expr) *Expr {
	if e.kind != KindCompound || e.name == OpHold {
		return e
	}
	e = c.node(e.Map(c.expand))
	switch {
	case e.Is(OpMultiply):
		b, ok := Match(e, productOfSum, MatchDefinitions(c.defs))
		if !ok {
			return e
		}
		rest := b["rest"].args
		terms := lo.Map(b["terms"].args, func(t *Expr, _ int) *Expr {
			return c.expand(c.build(OpMultiply, append([]*Expr{t}, rest...)...))
		})
		return c.build(OpAdd, terms...)
	case e.Is(OpPower) && len(e.args) == 2 && e.args[0].Is(OpAdd):
		n := e.args[1]
		if !n.IsNumber() || !n.num.IsInteger() || n.num.Sign() <= 0 || !n.num.rat.Num().IsInt64() || n.num.rat.Num().Int64() > maxExpandPower {
			return e
		}
		k := n.num.rat.Num().Int64()
		acc := e.args[0]
		for i := int64(1); i < k; i++ {
			acc = c.distribute(acc, e.args[0])
		}
		return acc
	case e.Is(OpNegate) && len(e.args) == 1 && e.args[0].Is(OpAdd):
		return c.negate(e.args[0])
	}
	return e
}

// distribute multiplies two expanded expressions term by term. Building the
// product of a sum with itself directly would collapse back into a power.
func (c *Canonicalizer) distribute(a, b *Expr) *Expr {
	var terms []*Expr
	for _, s := range termsOf(a) {
		for _, t := range termsOf(b) {
			terms = append(terms, c.expand(c.build(OpMultiply, s, t)))
		}
	}
	return c.build(OpAdd, terms...)
}

func termsOf(e *Expr) []*Expr {
	if e.Is(OpAdd) {
		return e.args
	}
	return []*Expr{e}
}

// negate returns the canonical negation of e, distributing over sums.
func (c *Canonicalizer) negate(e *Expr) *Expr {
	if !e.Is(OpAdd) {
		return c.build(OpNegate, e)
	}
	return c.build(OpAdd, lo.Map(e.args, func(t *Expr, _ int) *Expr {
		return c.build(OpNegate, t)
	})...)
}
