package compute

import (
	"math/big"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/text/unicode/norm"
)

// Expr is an immutable symbolic expression: a number, symbol, string,
// compound (an operator applied to an ordered list of operands), or
// dictionary. Expressions are built with the constructors in this package and
// never change afterward, so subtrees may be shared freely.
type Expr struct {
	kind Kind

	// num is the value of a number.
	num *Number
	// name is the symbol name, the string value, or the compound operator.
	name string
	// tag disambiguates symbols with the same name.
	tag string

	args []*Expr

	dict map[string]*Expr
	keys []string
}

// Kind identifies the variant of an expression.
type Kind int8

const (
	KindNone Kind = iota

	KindNumber
	KindSymbol
	KindString
	KindCompound
	KindDictionary
)

//go:generate go run golang.org/x/tools/cmd/stringer -type=Kind -trimprefix=Kind

// Int creates an exact integer.
func Int(n int64) *Expr {
	return &Expr{kind: KindNumber, num: exactNum(new(big.Rat).SetInt64(n))}
}

// BigInt creates an exact integer from a big.Int.
func BigInt(n *big.Int) *Expr {
	return &Expr{kind: KindNumber, num: exactNum(new(big.Rat).SetInt(n))}
}

// Rat creates an exact rational p/q. Panics if q is zero.
func Rat(p, q int64) *Expr {
	if q == 0 {
		panic("compute: zero denominator")
	}
	return &Expr{kind: KindNumber, num: exactNum(big.NewRat(p, q))}
}

// BigRat creates an exact rational from a copy of r.
func BigRat(r *big.Rat) *Expr {
	return &Expr{kind: KindNumber, num: exactNum(new(big.Rat).Set(r))}
}

// Float creates an inexact real.
func Float(f float64) *Expr {
	return &Expr{kind: KindNumber, num: floatNum(new(big.Float).SetPrec(defaultPrec).SetFloat64(f))}
}

// BigFloat creates an inexact real from a copy of f, keeping its precision.
func BigFloat(f *big.Float) *Expr {
	return &Expr{kind: KindNumber, num: floatNum(new(big.Float).Copy(f))}
}

// Complex creates an inexact complex number.
func Complex(re, im float64) *Expr {
	return &Expr{kind: KindNumber, num: complexNum(
		new(big.Float).SetPrec(defaultPrec).SetFloat64(re),
		new(big.Float).SetPrec(defaultPrec).SetFloat64(im),
	)}
}

// Num wraps a Number into an expression.
func Num(n *Number) *Expr {
	return &Expr{kind: KindNumber, num: n}
}

// Sym creates a symbol. The name is normalized to Unicode NFC so that
// differently-encoded spellings of a name are the same symbol.
func Sym(name string) *Expr {
	return &Expr{kind: KindSymbol, name: norm.NFC.String(name)}
}

// TaggedSym creates a symbol with a disambiguating tag. Symbols with equal
// names but different tags are different symbols.
func TaggedSym(name, tag string) *Expr {
	return &Expr{kind: KindSymbol, name: norm.NFC.String(name), tag: tag}
}

// Str creates a string literal.
func Str(s string) *Expr {
	return &Expr{kind: KindString, name: s}
}

// Call creates a compound expression applying op to args. The result is not
// canonical; pass it through a Canonicalizer for that.
func Call(op string, args ...*Expr) *Expr {
	for _, a := range args {
		if a == nil {
			panic("compute: nil operand to " + op)
		}
	}
	return &Expr{kind: KindCompound, name: norm.NFC.String(op), args: slices.Clone(args)}
}

// call is Call without copying or normalizing; args must not be retained by
// the caller.
func call(op string, args []*Expr) *Expr {
	return &Expr{kind: KindCompound, name: op, args: args}
}

// Dict creates a dictionary expression from a copy of m.
func Dict(m map[string]*Expr) *Expr {
	d := make(map[string]*Expr, len(m))
	for k, v := range m {
		d[k] = v
	}
	keys := maps.Keys(d)
	slices.Sort(keys)
	return &Expr{kind: KindDictionary, dict: d, keys: keys}
}

// Kind returns the variant of e.
func (e *Expr) Kind() Kind {
	return e.kind
}

// Number returns the value of a numeric literal, or nil.
func (e *Expr) Number() *Number {
	return e.num
}

// Name returns the name of a symbol, the operator of a compound, the value of
// a string, or the empty string.
func (e *Expr) Name() string {
	return e.name
}

// Tag returns the disambiguating tag of a symbol.
func (e *Expr) Tag() string {
	return e.tag
}

// Op returns the operator of a compound expression, or the empty string for
// any other kind.
func (e *Expr) Op() string {
	if e.kind != KindCompound {
		return ""
	}
	return e.name
}

// Len returns the number of operands of a compound or entries of a
// dictionary.
func (e *Expr) Len() int {
	switch e.kind {
	case KindCompound:
		return len(e.args)
	case KindDictionary:
		return len(e.keys)
	}
	return 0
}

// Arg returns the i'th operand of a compound, or nil if out of range.
func (e *Expr) Arg(i int) *Expr {
	if i < 0 || i >= len(e.args) {
		return nil
	}
	return e.args[i]
}

// Args returns a copy of the operands of a compound.
func (e *Expr) Args() []*Expr {
	return slices.Clone(e.args)
}

// Keys returns the sorted keys of a dictionary.
func (e *Expr) Keys() []string {
	return slices.Clone(e.keys)
}

// Get returns the value of a dictionary entry, or nil.
func (e *Expr) Get(key string) *Expr {
	return e.dict[key]
}

// Is reports whether e is a compound with the given operator.
func (e *Expr) Is(op string) bool {
	return e.kind == KindCompound && e.name == op
}

// IsSymbol reports whether e is the symbol with the given name.
func (e *Expr) IsSymbol(name string) bool {
	return e.kind == KindSymbol && e.name == name
}

// IsNumber reports whether e is a numeric literal.
func (e *Expr) IsNumber() bool {
	return e.kind == KindNumber
}

// IsConstant reports whether e is one of the distinguished constant symbols.
func (e *Expr) IsConstant() bool {
	return e.kind == KindSymbol && e.tag == "" && constants[e.name]
}

// isInt reports whether e is the exact or inexact integer k.
func (e *Expr) isInt(k int64) bool {
	return e.kind == KindNumber && e.num.isInt(k)
}

// withArgs returns a compound with e's operator and new operands. It returns
// e itself if the operands are the same.
func (e *Expr) withArgs(args []*Expr) *Expr {
	if len(args) == len(e.args) {
		same := true
		for i := range args {
			if args[i] != e.args[i] {
				same = false
				break
			}
		}
		if same {
			return e
		}
	}
	return call(e.name, args)
}

// Map applies f to each operand of a compound and returns the rebuilt
// compound. Non-compounds are returned unchanged.
func (e *Expr) Map(f func(*Expr) *Expr) *Expr {
	if e.kind != KindCompound {
		return e
	}
	args := make([]*Expr, len(e.args))
	for i, a := range e.args {
		args[i] = f(a)
	}
	return e.withArgs(args)
}

// Equal reports whether a and b are structurally identical. Numbers compare
// by exact value and representation.
func Equal(a, b *Expr) bool {
	return Compare(a, b) == 0
}

// EqualTol reports whether a and b are structurally identical with numeric
// leaves compared within tol.
func EqualTol(a, b *Expr, tol float64) bool {
	if a == b {
		return true
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNumber:
		return numClose(a.num, b.num, tol)
	case KindSymbol:
		return a.name == b.name && a.tag == b.tag
	case KindString:
		return a.name == b.name
	case KindCompound:
		if a.name != b.name || len(a.args) != len(b.args) {
			return false
		}
		for i := range a.args {
			if !EqualTol(a.args[i], b.args[i], tol) {
				return false
			}
		}
		return true
	case KindDictionary:
		if !slices.Equal(a.keys, b.keys) {
			return false
		}
		for _, k := range a.keys {
			if !EqualTol(a.dict[k], b.dict[k], tol) {
				return false
			}
		}
		return true
	default:
		panic("compute: invalid expression kind " + a.kind.String())
	}
}
