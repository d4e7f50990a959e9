package compute

import (
	"math/big"
	"strings"
)

// Compare is the canonical order on expressions. It returns a negative number
// if a orders before b, zero if they are structurally identical, and a
// positive number otherwise. The order is total: numbers, then constants,
// then other symbols, strings, compounds, and dictionaries. Numbers order by
// value, with an exact number before an inexact one of equal value.
// Compounds order by operator, then number of operands, then operands.
func Compare(a, b *Expr) int {
	if a == b {
		return 0
	}
	if ra, rb := rank(a), rank(b); ra != rb {
		return ra - rb
	}
	switch a.kind {
	case KindNumber:
		return numCmp(a.num, b.num)
	case KindSymbol:
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
		return strings.Compare(a.tag, b.tag)
	case KindString:
		return strings.Compare(a.name, b.name)
	case KindCompound:
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
		if len(a.args) != len(b.args) {
			return len(a.args) - len(b.args)
		}
		for i := range a.args {
			if c := Compare(a.args[i], b.args[i]); c != 0 {
				return c
			}
		}
		return 0
	case KindDictionary:
		if len(a.keys) != len(b.keys) {
			return len(a.keys) - len(b.keys)
		}
		for i := range a.keys {
			if c := strings.Compare(a.keys[i], b.keys[i]); c != 0 {
				return c
			}
		}
		for _, k := range a.keys {
			if c := Compare(a.dict[k], b.dict[k]); c != 0 {
				return c
			}
		}
		return 0
	default:
		panic("compute: invalid expression kind " + a.kind.String())
	}
}

func rank(e *Expr) int {
	switch e.kind {
	case KindNumber:
		return 0
	case KindSymbol:
		if e.IsConstant() {
			return 1
		}
		return 2
	case KindString:
		return 3
	case KindCompound:
		return 4
	case KindDictionary:
		return 5
	default:
		panic("compute: invalid expression kind " + e.kind.String())
	}
}

// compareTerms is the order of the operands of Add. Terms order by
// decreasing degree, terms differing only in their numeric coefficient are
// adjacent, and numbers come last, so that sums read like polynomials:
// x^2 + 2x + 1.
func compareTerms(a, b *Expr) int {
	na, nb := a.kind == KindNumber, b.kind == KindNumber
	switch {
	case na && !nb:
		return 1
	case nb && !na:
		return -1
	case na && nb:
		return numCmp(a.num, b.num)
	}
	if c := degree(b).Cmp(degree(a)); c != 0 {
		return c
	}
	_, ra := splitCoeff(a)
	_, rb := splitCoeff(b)
	if c := Compare(ra, rb); c != 0 {
		return c
	}
	return Compare(a, b)
}

// degree is the total polynomial degree of a term, treating every
// non-polynomial subexpression that contains a variable as degree one.
func degree(e *Expr) *big.Rat {
	switch e.kind {
	case KindSymbol:
		if e.IsConstant() {
			return new(big.Rat)
		}
		return big.NewRat(1, 1)
	case KindCompound:
		switch e.name {
		case OpNegate:
			return degree(e.args[0])
		case OpMultiply:
			d := new(big.Rat)
			for _, a := range e.args {
				d.Add(d, degree(a))
			}
			return d
		case OpPower:
			if len(e.args) == 2 && e.args[1].kind == KindNumber && e.args[1].num.IsExact() {
				return new(big.Rat).Mul(degree(e.args[0]), e.args[1].num.rat)
			}
		}
		if hasVariable(e) {
			return big.NewRat(1, 1)
		}
	}
	return new(big.Rat)
}

func hasVariable(e *Expr) bool {
	switch e.kind {
	case KindSymbol:
		return !e.IsConstant()
	case KindCompound:
		for _, a := range e.args {
			if hasVariable(a) {
				return true
			}
		}
	case KindDictionary:
		for _, v := range e.dict {
			if hasVariable(v) {
				return true
			}
		}
	}
	return false
}

// splitCoeff separates a term into its numeric coefficient and the rest. For
// a number the rest is the exact integer 1.
func splitCoeff(e *Expr) (*Number, *Expr) {
	switch {
	case e.kind == KindNumber:
		return e.num, one
	case e.Is(OpNegate):
		c, r := splitCoeff(e.args[0])
		return numNeg(c), r
	case e.Is(OpMultiply) && len(e.args) >= 2 && e.args[0].kind == KindNumber:
		if len(e.args) == 2 {
			return e.args[0].num, e.args[1]
		}
		return e.args[0].num, call(OpMultiply, e.args[1:])
	}
	return exactNum(big.NewRat(1, 1)), e
}

var (
	zero   = Int(0)
	one    = Int(1)
	negOne = Int(-1)
	half   = Rat(1, 2)
)
