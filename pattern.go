package compute

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Arity is the capture kind of a wildcard.
type Arity int8

const (
	// One captures exactly one expression.
	One Arity = iota + 1
	// OneOrMore captures a contiguous run of at least one operand.
	OneOrMore
	// ZeroOrMore captures a contiguous run of operands, possibly empty.
	ZeroOrMore
)

func (a Arity) String() string {
	switch a {
	case One:
		return "One"
	case OneOrMore:
		return "OneOrMore"
	case ZeroOrMore:
		return "ZeroOrMore"
	default:
		return "Arity(invalid)"
	}
}

// sigil returns the prefix used to spell a wildcard of this arity.
func (a Arity) sigil() string {
	return strings.Repeat("_", int(a))
}

// Wildcard is a placeholder in a pattern. An anonymous wildcard, with an
// empty Name, matches without recording a binding.
type Wildcard struct {
	Name  string
	Arity Arity
}

// Token returns the symbol spelling of w, e.g. "__rest".
func (w Wildcard) Token() string {
	return w.Arity.sigil() + w.Name
}

func (w Wildcard) isSeq() bool {
	return w.Arity == OneOrMore || w.Arity == ZeroOrMore
}

type patKind int8

const (
	patNone patKind = iota

	patLiteral  // lit is a number, string, or non-wildcard symbol
	patWildcard // wc
	patCompound // op is the operator pattern, args the operands
	patDict     // dict maps keys to value patterns
)

// Pattern is an expression template that may contain wildcards. It is the
// left-hand side of a rule and, with bindings, the template of a declarative
// replacement. Patterns are immutable.
type Pattern struct {
	kind patKind

	lit  *Expr
	wc   Wildcard
	op   *Pattern
	args []*Pattern
	dict map[string]*Pattern
	keys []string
}

// Literal returns a pattern matching e itself (numbers within tolerance).
// Symbols in e are never treated as wildcards.
func Literal(e *Expr) *Pattern {
	switch e.kind {
	case KindCompound:
		args := make([]*Pattern, len(e.args))
		for i, a := range e.args {
			args[i] = Literal(a)
		}
		return &Pattern{kind: patCompound, op: &Pattern{kind: patLiteral, lit: Sym(e.name)}, args: args}
	case KindDictionary:
		d := make(map[string]*Pattern, len(e.dict))
		for k, v := range e.dict {
			d[k] = Literal(v)
		}
		return &Pattern{kind: patDict, dict: d, keys: slices.Clone(e.keys)}
	default:
		return &Pattern{kind: patLiteral, lit: e}
	}
}

// W returns a single-capture wildcard pattern. W("") is the anonymous
// wildcard that matches anything.
func W(name string) *Pattern {
	return &Pattern{kind: patWildcard, wc: Wildcard{Name: name, Arity: One}}
}

// Seq returns a wildcard capturing one or more operands.
func Seq(name string) *Pattern {
	return &Pattern{kind: patWildcard, wc: Wildcard{Name: name, Arity: OneOrMore}}
}

// OptSeq returns a wildcard capturing zero or more operands.
func OptSeq(name string) *Pattern {
	return &Pattern{kind: patWildcard, wc: Wildcard{Name: name, Arity: ZeroOrMore}}
}

// PCall returns a compound pattern with a fixed operator.
func PCall(op string, args ...*Pattern) *Pattern {
	return &Pattern{kind: patCompound, op: &Pattern{kind: patLiteral, lit: Sym(op)}, args: slices.Clone(args)}
}

// PApply returns a compound pattern whose operator is itself a pattern,
// usually a single-capture wildcard.
func PApply(op *Pattern, args ...*Pattern) *Pattern {
	return &Pattern{kind: patCompound, op: op, args: slices.Clone(args)}
}

// Compile converts an expression using the sigil spelling of wildcards into a
// pattern. A symbol or operator named "_" is the anonymous wildcard, "_a"
// captures one expression, "__a" one or more operands, and "___a" zero or
// more operands.
func Compile(e *Expr) *Pattern {
	switch e.kind {
	case KindSymbol:
		if w, ok := parseWildcard(e.name); ok && e.tag == "" {
			return &Pattern{kind: patWildcard, wc: w}
		}
		return &Pattern{kind: patLiteral, lit: e}
	case KindCompound:
		op := &Pattern{kind: patLiteral, lit: Sym(e.name)}
		if w, ok := parseWildcard(e.name); ok && w.Arity == One {
			op = &Pattern{kind: patWildcard, wc: w}
		}
		args := make([]*Pattern, len(e.args))
		for i, a := range e.args {
			args[i] = Compile(a)
		}
		return &Pattern{kind: patCompound, op: op, args: args}
	case KindDictionary:
		d := make(map[string]*Pattern, len(e.dict))
		for k, v := range e.dict {
			d[k] = Compile(v)
		}
		return &Pattern{kind: patDict, dict: d, keys: slices.Clone(e.keys)}
	case KindNumber, KindString:
		return &Pattern{kind: patLiteral, lit: e}
	default:
		panic("compute: invalid expression kind " + e.kind.String())
	}
}

// parseWildcard decodes the sigil spelling of a wildcard.
func parseWildcard(name string) (Wildcard, bool) {
	n := 0
	for n < len(name) && name[n] == '_' {
		n++
	}
	switch {
	case n == 0:
		return Wildcard{}, false
	case n == len(name):
		// "_" is anonymous; "__" and "___" are anonymous sequences.
		if n > 3 {
			return Wildcard{}, false
		}
		return Wildcard{Arity: Arity(n)}, true
	case n > 3:
		return Wildcard{}, false
	}
	return Wildcard{Name: name[n:], Arity: Arity(n)}, true
}

// Expr converts p back to its sigil spelling. Compile(p.Expr()) is equivalent
// to p.
func (p *Pattern) Expr() *Expr {
	switch p.kind {
	case patLiteral:
		return p.lit
	case patWildcard:
		return Sym(p.wc.Token())
	case patCompound:
		args := make([]*Expr, len(p.args))
		for i, a := range p.args {
			args[i] = a.Expr()
		}
		return call(p.opName(), args)
	case patDict:
		d := make(map[string]*Expr, len(p.dict))
		for k, v := range p.dict {
			d[k] = v.Expr()
		}
		return Dict(d)
	default:
		panic("compute: invalid pattern")
	}
}

// opName is the spelling of a compound pattern's operator.
func (p *Pattern) opName() string {
	if p.op.kind == patWildcard {
		return p.op.wc.Token()
	}
	return p.op.lit.name
}

// String returns the sigil spelling of p.
func (p *Pattern) String() string {
	return p.Expr().String()
}

// Wildcards returns the names of the named wildcards in p, sorted.
func (p *Pattern) Wildcards() []string {
	seen := map[string]bool{}
	p.walk(func(q *Pattern) {
		if q.kind == patWildcard && q.wc.Name != "" {
			seen[q.wc.Name] = true
		}
	})
	names := maps.Keys(seen)
	slices.Sort(names)
	return names
}

func (p *Pattern) walk(f func(*Pattern)) {
	f(p)
	switch p.kind {
	case patCompound:
		p.op.walk(f)
		for _, a := range p.args {
			a.walk(f)
		}
	case patDict:
		for _, k := range p.keys {
			p.dict[k].walk(f)
		}
	}
}

// Bindings maps wildcard names to the expressions they captured. A sequence
// wildcard is bound to a Sequence compound holding the captured run.
type Bindings map[string]*Expr

// Get returns the binding for a wildcard name. The name may be given with or
// without its sigil.
func (b Bindings) Get(name string) *Expr {
	return b[strings.TrimLeft(name, "_")]
}

// Names returns the bound names in sorted order.
func (b Bindings) Names() []string {
	names := maps.Keys(b)
	slices.Sort(names)
	return names
}

// clone copies b so that a failed sub-match cannot leave partial bindings.
func (b Bindings) clone() Bindings {
	c := make(Bindings, len(b)+2)
	for k, v := range b {
		c[k] = v
	}
	return c
}
