package compute

import (
	"math/big"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// basisPass rewrites derived operators into Add, Negate, Multiply and Power.
func basisPass(c *Canonicalizer, e *Expr) *Expr {
	a := e.args
	switch e.name {
	case OpSubtract:
		switch len(a) {
		case 0:
			return e
		case 1:
			return c.build(OpNegate, a[0])
		}
		terms := []*Expr{a[0]}
		for _, t := range a[1:] {
			terms = append(terms, c.build(OpNegate, t))
		}
		return c.build(OpAdd, terms...)
	case OpDivide:
		switch len(a) {
		case 0:
			return e
		case 1:
			return a[0]
		}
		factors := []*Expr{a[0]}
		for _, t := range a[1:] {
			factors = append(factors, c.build(OpPower, t, negOne))
		}
		return c.build(OpMultiply, factors...)
	case OpSqrt:
		if len(a) == 1 {
			return c.build(OpPower, a[0], half)
		}
	case OpRoot:
		if len(a) == 2 {
			return c.build(OpPower, a[0], c.build(OpPower, a[1], negOne))
		}
	case OpSquare:
		if len(a) == 1 {
			return c.build(OpPower, a[0], Int(2))
		}
	case OpReciprocal:
		if len(a) == 1 {
			return c.build(OpPower, a[0], negOne)
		}
	case OpExp:
		if len(a) == 1 {
			return c.build(OpPower, Sym(SymE), a[0])
		}
	}
	return e
}

// flattenPass splices nested applications of associative operators and
// collapses idempotent and involutive unary operators.
func flattenPass(c *Canonicalizer, e *Expr) *Expr {
	d := c.def(e.name)
	switch {
	case d.Associative:
		if !lo.SomeBy(e.args, func(a *Expr) bool { return a.Is(e.name) }) {
			return e
		}
		var args []*Expr
		for _, a := range e.args {
			if a.Is(e.name) {
				args = append(args, a.args...)
			} else {
				args = append(args, a)
			}
		}
		return call(e.name, args)
	case d.Involution && len(e.args) == 1 && e.args[0].Is(e.name) && len(e.args[0].args) == 1:
		return e.args[0].args[0]
	case d.Idempotent && len(e.args) == 1 && e.args[0].Is(e.name):
		return e.args[0]
	case e.name == OpPower && len(e.args) == 2 && e.args[0].Is(OpPower) && len(e.args[0].args) == 2 && e.args[1].IsNumber() && e.args[1].num.IsInteger():
		// (b^p)^n = b^(p n) holds for every integer n.
		inner := e.args[0]
		return c.build(OpPower, inner.args[0], c.build(OpMultiply, inner.args[1], e.args[1]))
	}
	return e
}

// signPass hoists negations out of products and integer powers so that a
// product carries at most one leading Negate and no negative factors.
func signPass(c *Canonicalizer, e *Expr) *Expr {
	switch e.name {
	case OpMultiply:
		neg, changed := false, false
		args := make([]*Expr, len(e.args))
		for i, a := range e.args {
			switch {
			case a.Is(OpNegate) && len(a.args) == 1:
				neg, changed = !neg, true
				a = a.args[0]
			case a.kind == KindNumber && a.num.Sign() < 0:
				neg, changed = !neg, true
				a = Num(numNeg(a.num))
			}
			args[i] = a
		}
		if !changed {
			return e
		}
		r := c.build(OpMultiply, args...)
		if neg {
			return c.build(OpNegate, r)
		}
		return r
	case OpPower:
		if len(e.args) != 2 || !e.args[0].Is(OpNegate) || !e.args[1].IsNumber() || !e.args[1].num.IsInteger() {
			return e
		}
		p := c.build(OpPower, e.args[0].args[0], e.args[1])
		if e.args[1].num.rat.Num().Bit(0) == 0 {
			return p
		}
		return c.build(OpNegate, p)
	case OpNegate:
		// Negate(0) and a negated number are numbers.
		if len(e.args) == 1 && e.args[0].kind == KindNumber {
			return Num(numNeg(e.args[0].num))
		}
	}
	return e
}

// numericPass folds numeric subexpressions and collects like terms and like
// factors.
func numericPass(c *Canonicalizer, e *Expr) *Expr {
	switch e.name {
	case OpAdd:
		return c.collectTerms(e)
	case OpMultiply:
		return c.collectFactors(e)
	case OpPower:
		if len(e.args) == 2 && e.args[0].kind == KindNumber && e.args[1].kind == KindNumber {
			if r, ok := numPow(e.args[0].num, e.args[1].num); ok {
				return Num(r)
			}
		}
		if len(e.args) == 2 && e.args[0].kind == KindNumber && e.args[0].num.IsExact() && e.args[1].IsNumber() && e.args[1].num.IsExact() {
			return c.splitRationalPower(e)
		}
	case OpAbs:
		if len(e.args) == 1 && e.args[0].kind == KindNumber && !e.args[0].num.IsComplex() {
			return Num(numAbs(e.args[0].num))
		}
	case OpSign:
		if len(e.args) == 1 && e.args[0].kind == KindNumber && !e.args[0].num.IsComplex() {
			return Int(int64(e.args[0].num.Sign()))
		}
	case OpFloor, OpCeil, OpRound:
		if len(e.args) == 1 && e.args[0].kind == KindNumber && e.args[0].num.IsExact() {
			return BigInt(roundRat(e.name, e.args[0].num.rat))
		}
	}
	return e
}

// splitRationalPower pulls the integer part of the exponent out of a power
// of an exact number: 2^(3/2) is 2 * 2^(1/2).
func (c *Canonicalizer) splitRationalPower(e *Expr) *Expr {
	exp := e.args[1].num.rat
	if exp.IsInt() {
		return e
	}
	q := new(big.Int).Quo(exp.Num(), exp.Denom())
	if exp.Sign() < 0 {
		q.Sub(q, big.NewInt(1))
	}
	if q.Sign() == 0 {
		return e
	}
	frac := new(big.Rat).Sub(exp, new(big.Rat).SetInt(q))
	whole, ok := numPow(e.args[0].num, exactNum(new(big.Rat).SetInt(q)))
	if !ok {
		return e
	}
	return c.build(OpMultiply, Num(whole), c.build(OpPower, e.args[0], BigRat(frac)))
}

func roundRat(op string, r *big.Rat) *big.Int {
	n, d := r.Num(), r.Denom()
	q, m := new(big.Int).DivMod(n, d, new(big.Int)) // floor for positive d
	switch op {
	case OpCeil:
		if m.Sign() != 0 {
			q.Add(q, big.NewInt(1))
		}
	case OpRound:
		// Round half away from zero.
		twice := new(big.Int).Mul(m, big.NewInt(2))
		if c := twice.Cmp(d); c > 0 || c == 0 && r.Sign() > 0 {
			q.Add(q, big.NewInt(1))
		}
	}
	return q
}

type likeGroup struct {
	coef *Number
	rest *Expr
	n    int
}

// collectTerms sums numeric terms and merges terms that differ only in their
// numeric coefficient.
func (c *Canonicalizer) collectTerms(e *Expr) *Expr {
	var num *Number
	nums := 0
	var groups []*likeGroup
	index := map[string]*likeGroup{}
	merged := false
	for _, a := range e.args {
		if a.kind == KindNumber {
			nums++
			if num == nil {
				num = a.num
			} else {
				num = numAdd(num, a.num)
			}
			continue
		}
		coef, rest := splitCoeff(a)
		key := rest.String()
		if g := index[key]; g != nil {
			g.coef = numAdd(g.coef, coef)
			g.n++
			merged = true
			continue
		}
		g := &likeGroup{coef: coef, rest: rest, n: 1}
		index[key] = g
		groups = append(groups, g)
	}
	if !merged && nums <= 1 {
		return e
	}
	var terms []*Expr
	for _, g := range groups {
		if g.n == 1 {
			// Unmerged terms are kept as they were.
			terms = append(terms, c.term(g.coef, g.rest, e.args))
			continue
		}
		if g.coef.IsZero() && g.coef.IsExact() {
			continue
		}
		terms = append(terms, c.term(g.coef, g.rest, nil))
	}
	if num != nil && !(num.IsZero() && num.IsExact()) {
		terms = append(terms, Num(num))
	}
	return c.build(OpAdd, terms...)
}

// term builds coef * rest. If orig contains a term equal to the result, that
// term is reused.
func (c *Canonicalizer) term(coef *Number, rest *Expr, orig []*Expr) *Expr {
	var t *Expr
	switch {
	case coef.IsZero() && coef.IsExact():
		return zero
	case coef.IsOne() && coef.IsExact():
		t = rest
	case coef.Sign() < 0:
		t = c.build(OpNegate, c.term(numNeg(coef), rest, nil))
	default:
		t = c.build(OpMultiply, Num(coef), rest)
	}
	if i := slices.IndexFunc(orig, func(o *Expr) bool { return Equal(o, t) }); i >= 0 {
		return orig[i]
	}
	return t
}

// collectFactors multiplies numeric factors and merges powers of the same
// base by adding their exponents.
func (c *Canonicalizer) collectFactors(e *Expr) *Expr {
	coef := exactNum(big.NewRat(1, 1))
	nums := 0
	type group struct {
		base *Expr
		exps []*Expr
	}
	var groups []*group
	index := map[string]*group{}
	merged := false
	for _, a := range e.args {
		if a.kind == KindNumber {
			coef = numMul(coef, a.num)
			nums++
			continue
		}
		base, exp := a, one
		if a.Is(OpPower) && len(a.args) == 2 {
			base, exp = a.args[0], a.args[1]
		}
		key := base.String()
		if g := index[key]; g != nil {
			g.exps = append(g.exps, exp)
			merged = true
			continue
		}
		g := &group{base: base, exps: []*Expr{exp}}
		index[key] = g
		groups = append(groups, g)
	}
	if coef.IsZero() {
		return Num(coef)
	}
	if !merged && nums <= 1 {
		return e
	}
	var factors []*Expr
	if !(coef.IsOne() && coef.IsExact()) {
		factors = append(factors, Num(coef))
	}
	for _, g := range groups {
		if len(g.exps) == 1 {
			factors = append(factors, c.build(OpPower, g.base, g.exps[0]))
			continue
		}
		factors = append(factors, c.build(OpPower, g.base, c.build(OpAdd, g.exps...)))
	}
	return c.build(OpMultiply, factors...)
}

// identityPass drops identity operands, applies absorbing elements and the
// trivial powers, and collapses degenerate operand lists.
func identityPass(c *Canonicalizer, e *Expr) *Expr {
	if e.name == OpPower && len(e.args) == 2 {
		base, exp := e.args[0], e.args[1]
		switch {
		case exp.isInt(1) && exp.num.IsExact():
			return base
		case exp.isInt(0) && exp.num.IsExact():
			return one
		case base.isInt(1) && base.num.IsExact():
			return one
		}
		return e
	}
	d := c.def(e.name)
	if d.Absorbing != nil && lo.ContainsBy(e.args, func(a *Expr) bool { return Equal(a, d.Absorbing) }) {
		return d.Absorbing
	}
	args := e.args
	if d.Identity != nil {
		args = lo.Filter(e.args, func(a *Expr, _ int) bool { return !Equal(a, d.Identity) })
	}
	if d.Associative {
		switch len(args) {
		case 0:
			if d.Identity != nil {
				return d.Identity
			}
		case 1:
			return args[0]
		}
	}
	if len(args) == len(e.args) {
		return e
	}
	return call(e.name, args)
}

// sortPass orders the operands of commutative operators and removes
// duplicates from set-like ones.
func sortPass(c *Canonicalizer, e *Expr) *Expr {
	d := c.def(e.name)
	if !d.Commutative {
		return e
	}
	cmp := Compare
	if e.name == OpAdd {
		cmp = compareTerms
	}
	sorted := slices.IsSortedFunc(e.args, cmp)
	dup := false
	if d.SetLike {
		for i := 1; i < len(e.args); i++ {
			if Equal(e.args[i-1], e.args[i]) {
				dup = true
				break
			}
		}
	}
	if sorted && !dup {
		return e
	}
	args := slices.Clone(e.args)
	if !sorted {
		sortExprs(args, cmp)
	}
	if d.SetLike {
		args = slices.CompactFunc(args, Equal)
	}
	return call(e.name, args)
}
