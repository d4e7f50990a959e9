package compute

import (
	"math/big"

	"github.com/samber/lo"
)

// Domain is a numeric domain. Each domain is a subset of the next larger
// value: DomainInteger ⊂ DomainRational ⊂ DomainReal ⊂ DomainComplex.
type Domain int8

const (
	DomainUnknown Domain = iota
	DomainComplex
	DomainReal
	DomainRational
	DomainInteger
)

func (d Domain) String() string {
	switch d {
	case DomainUnknown:
		return "Unknown"
	case DomainComplex:
		return SymComplexes
	case DomainReal:
		return SymReals
	case DomainRational:
		return SymRationals
	case DomainInteger:
		return SymIntegers
	default:
		return "Domain(invalid)"
	}
}

// within reports whether every value of d belongs to o.
func (d Domain) within(o Domain) bool {
	return d != DomainUnknown && o != DomainUnknown && d >= o
}

func domainOf(name string) Domain {
	switch name {
	case SymComplexes:
		return DomainComplex
	case SymReals:
		return DomainReal
	case SymRationals:
		return DomainRational
	case SymIntegers:
		return DomainInteger
	}
	return DomainUnknown
}

// Truth is the answer of the assumption oracle.
type Truth int8

const (
	TruthUnknown Truth = iota
	TruthTrue
	TruthFalse
)

func (t Truth) String() string {
	switch t {
	case TruthTrue:
		return "true"
	case TruthFalse:
		return "false"
	default:
		return "unknown"
	}
}

func truth(b bool) Truth {
	if b {
		return TruthTrue
	}
	return TruthFalse
}

// Oracle answers questions about propositions under assumptions.
type Oracle interface {
	Is(prop *Expr) Truth
}

// signs is the set of signs an expression may take: some combination of
// negative, zero, and positive.
type signs uint8

const (
	sNeg signs = 1 << iota
	sZero
	sPos

	sAny     = sNeg | sZero | sPos
	sNonNeg  = sZero | sPos
	sNonPos  = sNeg | sZero
	sNonZero = sNeg | sPos
)

func (s signs) negate() signs {
	r := s & sZero
	if s&sNeg != 0 {
		r |= sPos
	}
	if s&sPos != 0 {
		r |= sNeg
	}
	return r
}

func combineSigns(a, b signs, f func(x, y signs) signs) signs {
	var r signs
	for _, x := range []signs{sNeg, sZero, sPos} {
		if a&x == 0 {
			continue
		}
		for _, y := range []signs{sNeg, sZero, sPos} {
			if b&y != 0 {
				r |= f(x, y)
			}
		}
	}
	return r
}

func addSign(x, y signs) signs {
	switch {
	case x == sZero:
		return y
	case y == sZero:
		return x
	case x == y:
		return x
	}
	return sAny
}

func mulSign(x, y signs) signs {
	switch {
	case x == sZero || y == sZero:
		return sZero
	case x == y:
		return sPos
	}
	return sNeg
}

// Assume records a proposition in the current scope. Inequalities should
// already be normalized to compare against zero (see Engine.Assume).
func (s *Scope) Assume(prop *Expr) {
	f := s.top()
	f.facts = f.facts.Set(prop.String(), prop)
	s.invalidate()
}

// Forget removes a proposition from the current scope.
func (s *Scope) Forget(prop *Expr) {
	f := s.top()
	f.facts = f.facts.Delete(prop.String())
	s.invalidate()
}

// Facts returns the propositions assumed in the current scope, in canonical
// order.
func (s *Scope) Facts() []*Expr {
	var r []*Expr
	each(s.top().facts, func(_ string, p *Expr) bool {
		r = append(r, p)
		return true
	})
	sortExprs(r, Compare)
	return r
}

func (s *Scope) hasFact(prop *Expr) bool {
	_, ok := s.top().facts.Get(prop.String())
	return ok
}

// Domain returns the inferred domain of a symbol from its definition and the
// assumptions in scope. Results are cached until the assumptions change.
func (s *Scope) Domain(name string) Domain {
	if d, ok := s.domains[name]; ok {
		return d
	}
	d := DomainUnknown
	if def := s.LookupSymbol(name); def != nil {
		d = def.Domain
		if def.Value != nil && def.Value.kind == KindNumber {
			d = numberDomain(def.Value.num)
		}
	}
	sym := Sym(name)
	each(s.top().facts, func(_ string, p *Expr) bool {
		if p.Is(OpElement) && len(p.args) == 2 && Equal(p.args[0], sym) && p.args[1].kind == KindSymbol {
			if fd := domainOf(p.args[1].name); fd > d {
				d = fd
			}
		}
		return true
	})
	if d == DomainUnknown && s.symbolSigns(sym) != sAny {
		// Order facts only make sense for reals.
		d = DomainReal
	}
	if s.domains == nil {
		s.domains = map[string]Domain{}
	}
	s.domains[name] = d
	return d
}

func numberDomain(n *Number) Domain {
	switch {
	case n.IsInteger():
		return DomainInteger
	case n.IsExact():
		return DomainRational
	case n.IsComplex():
		return DomainComplex
	}
	return DomainReal
}

// Is answers whether a proposition holds under the assumptions in scope.
// Comparisons must be normalized to compare against zero.
func (s *Scope) Is(prop *Expr) Truth {
	switch {
	case prop.IsSymbol(SymTrue):
		return TruthTrue
	case prop.IsSymbol(SymFalse):
		return TruthFalse
	case s.hasFact(prop):
		return TruthTrue
	case s.hasFact(Call(OpNot, prop)):
		return TruthFalse
	case prop.Is(OpNot) && len(prop.args) == 1:
		switch s.Is(prop.args[0]) {
		case TruthTrue:
			return TruthFalse
		case TruthFalse:
			return TruthTrue
		}
		return TruthUnknown
	case prop.Is(OpAnd):
		r := TruthTrue
		for _, a := range prop.args {
			switch s.Is(a) {
			case TruthFalse:
				return TruthFalse
			case TruthUnknown:
				r = TruthUnknown
			}
		}
		return r
	case prop.Is(OpOr):
		r := TruthFalse
		for _, a := range prop.args {
			switch s.Is(a) {
			case TruthTrue:
				return TruthTrue
			case TruthUnknown:
				r = TruthUnknown
			}
		}
		return r
	case prop.Is(OpElement) && len(prop.args) == 2:
		return s.isElement(prop.args[0], prop.args[1])
	}
	if len(prop.args) != 2 || !prop.args[1].isInt(0) {
		return TruthUnknown
	}
	sg := s.signsOf(prop.args[0])
	var want signs
	switch prop.Op() {
	case OpGreater:
		want = sPos
	case OpGreaterEqual:
		want = sNonNeg
	case OpLess:
		want = sNeg
	case OpLessEqual:
		want = sNonPos
	case OpEqual:
		want = sZero
	case OpNotEqual:
		want = sNonZero
	default:
		return TruthUnknown
	}
	switch {
	case sg&^want == 0:
		return TruthTrue
	case sg&want == 0:
		return TruthFalse
	}
	return TruthUnknown
}

func (s *Scope) isElement(x, dom *Expr) Truth {
	if dom.kind != KindSymbol {
		return TruthUnknown
	}
	want := domainOf(dom.name)
	if want == DomainUnknown {
		return TruthUnknown
	}
	var d Domain
	switch x.kind {
	case KindNumber:
		return truth(numberDomain(x.num).within(want))
	case KindSymbol:
		d = s.Domain(x.name)
	case KindCompound:
		d = s.exprDomain(x)
	}
	if d.within(want) {
		return TruthTrue
	}
	return TruthUnknown
}

// exprDomain infers the domain of a compound from its operands.
func (s *Scope) exprDomain(e *Expr) Domain {
	ops := lo.Map(e.args, func(a *Expr, _ int) Domain {
		switch a.kind {
		case KindNumber:
			return numberDomain(a.num)
		case KindSymbol:
			return s.Domain(a.name)
		case KindCompound:
			return s.exprDomain(a)
		}
		return DomainUnknown
	})
	least := lo.Min(ops)
	switch e.name {
	case OpAdd, OpMultiply, OpNegate:
		return least
	case OpPower:
		if len(e.args) == 2 && e.args[1].IsNumber() && e.args[1].num.IsInteger() && e.args[1].num.Sign() >= 0 {
			return least
		}
	case OpSin, OpCos, OpExp, OpAbs, OpArctan, OpSinh, OpCosh, OpTanh:
		if least.within(DomainReal) {
			return DomainReal
		}
	case OpFloor, OpCeil, OpRound, OpSign:
		if least.within(DomainReal) {
			return DomainInteger
		}
	}
	return DomainUnknown
}

// signsOf infers the possible signs of a real expression.
func (s *Scope) signsOf(e *Expr) signs {
	switch e.kind {
	case KindNumber:
		if e.num.IsComplex() {
			return sAny
		}
		switch e.num.Sign() {
		case -1:
			return sNeg
		case 0:
			return sZero
		}
		return sPos
	case KindSymbol:
		switch e.name {
		case SymPi, SymE, SymGoldenRatio, SymCatalan, SymEulerGamma:
			return sPos
		}
		return s.symbolSigns(e)
	case KindCompound:
		return s.compoundSigns(e)
	}
	return sAny
}

// symbolSigns intersects the signs allowed by each fact bounding sym, that
// is each fact sym op 0 or sym + c op 0 for a real number c.
func (s *Scope) symbolSigns(sym *Expr) signs {
	r := sAny
	each(s.top().facts, func(_ string, p *Expr) bool {
		if len(p.args) != 2 || !p.args[1].isInt(0) {
			return true
		}
		d := p.args[0]
		bound := exactNum(new(big.Rat))
		if d.Is(OpAdd) && len(d.args) == 2 && d.args[1].kind == KindNumber && !d.args[1].num.IsComplex() {
			d, bound = d.args[0], numNeg(d.args[1].num)
		}
		if Equal(d, sym) {
			r &= boundSigns(p.name, bound.Sign())
		}
		return true
	})
	if r == 0 {
		// Contradictory assumptions; claim nothing.
		return sAny
	}
	return r
}

// boundSigns is the set of signs of x given x op b, where b has sign sb.
func boundSigns(op string, sb int) signs {
	switch op {
	case OpGreater:
		if sb >= 0 {
			return sPos
		}
	case OpGreaterEqual:
		switch {
		case sb > 0:
			return sPos
		case sb == 0:
			return sNonNeg
		}
	case OpLess:
		if sb <= 0 {
			return sNeg
		}
	case OpLessEqual:
		switch {
		case sb < 0:
			return sNeg
		case sb == 0:
			return sNonPos
		}
	case OpEqual:
		switch sb {
		case -1:
			return sNeg
		case 0:
			return sZero
		}
		return sPos
	case OpNotEqual:
		if sb == 0 {
			return sNonZero
		}
	}
	return sAny
}

func (s *Scope) compoundSigns(e *Expr) signs {
	switch e.name {
	case OpNegate:
		return s.signsOf(e.args[0]).negate()
	case OpAdd:
		return lo.Reduce(e.args[1:], func(acc signs, a *Expr, _ int) signs {
			return combineSigns(acc, s.signsOf(a), addSign)
		}, s.signsOf(e.args[0]))
	case OpMultiply:
		return lo.Reduce(e.args[1:], func(acc signs, a *Expr, _ int) signs {
			return combineSigns(acc, s.signsOf(a), mulSign)
		}, s.signsOf(e.args[0]))
	case OpPower:
		base := s.signsOf(e.args[0])
		if ex := e.args[1]; ex.kind == KindNumber && ex.num.IsInteger() {
			if ex.num.rat.Num().Bit(0) == 0 {
				if s.isReal(e.args[0]) {
					if base&sZero == 0 {
						return sPos
					}
					return sNonNeg
				}
				return sAny
			}
			if ex.num.Sign() < 0 {
				return base &^ sZero
			}
			return base
		}
		if base == sPos {
			return sPos
		}
		if base&sNeg == 0 && base != sAny {
			return sNonNeg
		}
	case OpExp, OpCosh:
		return sPos
	case OpAbs:
		if s.signsOf(e.args[0])&sZero == 0 {
			return sPos
		}
		return sNonNeg
	}
	return sAny
}

func (s *Scope) isReal(e *Expr) bool {
	switch e.kind {
	case KindNumber:
		return !e.num.IsComplex()
	case KindSymbol:
		if s.signsOf(e) != sAny {
			return true
		}
		return s.Domain(e.name).within(DomainReal)
	case KindCompound:
		return s.exprDomain(e).within(DomainReal)
	}
	return false
}
