package compute

import (
	"math/big"
	"strconv"

	"github.com/samber/lo"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type numfuncopt struct {
	name string
	f    Func
}

func (o numfuncopt) engineOption(e *Engine) {
	funcs := maps.Clone(e.funcs)
	if funcs == nil {
		funcs = make(map[string]Func)
	}
	if o.f == nil {
		delete(funcs, o.name)
	} else {
		funcs[o.name] = o.f
	}
	e.funcs = funcs
}

// NumericFunc sets the numeric definition of an operator or constant symbol
// for N. A nil f removes the definition.
func NumericFunc(name string, f Func) Option {
	return numfuncopt{name, f}
}

// N evaluates e numerically at the precision of the engine's scope. Symbols
// with assigned values are replaced by them and constants by their values.
// Subexpressions involving other symbols, or operators with no numeric
// definition, stay symbolic with their numeric parts evaluated. If a
// function is evaluated outside its domain, the error is a DomainError.
func (eng *Engine) N(e *Expr) (*Expr, error) {
	r, err := eng.numeric(eng.canon.Canonicalize(eng.assigned(e)), eng.scope.Prec())
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NValue evaluates e numerically to a real number. If e has a symbol with no
// value, the error is a *NameError.
func (eng *Engine) NValue(e *Expr) (*big.Float, error) {
	r, err := eng.N(e)
	if err != nil {
		return nil, err
	}
	if r.kind == KindNumber && !r.num.IsComplex() {
		return r.num.Real(eng.scope.Prec()), nil
	}
	if name, ok := freeSymbol(r); ok {
		return nil, &NameError{Name: name}
	}
	return nil, &NumericError{Expr: r}
}

// numeric evaluates the canonical expression e. The result is canonical.
func (eng *Engine) numeric(e *Expr, prec uint) (*Expr, error) {
	switch e.kind {
	case KindNumber:
		if e.num.IsExact() {
			return Num(floatNum(e.num.Real(prec))), nil
		}
		return e, nil
	case KindSymbol:
		if f := eng.funcs[e.name]; f != nil && f.CanCall(0) && e.tag == "" {
			r := new(big.Float).SetPrec(prec)
			if err := f.Call(prec, nil, r); err != nil {
				return nil, err
			}
			return BigFloat(r), nil
		}
		return e, nil
	case KindString:
		return e, nil
	case KindDictionary:
		d := make(map[string]*Expr, len(e.dict))
		for k, v := range e.dict {
			r, err := eng.numeric(v, prec)
			if err != nil {
				return nil, err
			}
			d[k] = r
		}
		return Dict(d), nil
	case KindCompound:
		if e.name == OpHold {
			return e, nil
		}
		args := make([]*Expr, len(e.args))
		for i, a := range e.args {
			r, err := eng.numeric(a, prec)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		r := eng.canon.build(e.name, args...)
		if !r.Is(e.name) || !lo.EveryBy(r.args, func(a *Expr) bool { return a.kind == KindNumber && !a.num.IsComplex() }) {
			return r, nil
		}
		f := eng.funcs[e.name]
		if f == nil || !f.CanCall(len(r.args)) {
			return r, nil
		}
		in := lo.Map(r.args, func(a *Expr, _ int) *big.Float { return a.num.Real(prec) })
		out := new(big.Float).SetPrec(prec)
		if err := f.Call(prec, in, out); err != nil {
			if d, ok := isDomainError(err); ok {
				d.Func = e.name
				return nil, d
			}
			return nil, err
		}
		return BigFloat(out), nil
	default:
		panic("compute: invalid expression kind " + e.kind.String())
	}
}

// freeSymbol returns the first symbol in e in canonical order that is not a
// constant.
func freeSymbol(e *Expr) (string, bool) {
	syms := Symbols(e).Slice()
	slices.Sort(syms)
	for _, s := range syms {
		if !constants[s] {
			return s, true
		}
	}
	return "", false
}

// NameError is an error from numeric evaluation of an expression with a
// symbol that has no value.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// NumericError is the error for an expression that does not evaluate to a
// real number, such as a complex number or an operator with no numeric
// definition.
type NumericError struct {
	Expr *Expr
}

func (err *NumericError) Error() string {
	return "compute: not a real number: " + err.Expr.String()
}
