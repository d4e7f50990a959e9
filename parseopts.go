package compute

import (
	"strconv"
	"unicode"
)

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	funcopt struct {
		name, op string
	}
	funcsopt map[string]string
	eofopt   struct {
		c, s bool
		ws   string
	}
	wildopt struct{}
)

// parsectx holds general data for parsing.
type parsectx struct {
	// funcs maps the lowercase names that parse as calls, with or without
	// brackets, to the operators they call.
	funcs map[string]string
	// consts maps names to the constant symbols they spell.
	consts map[string]string
	// wildcards allows identifiers beginning with an underscore.
	wildcards bool
	// wseof is a string containing the whitespace characters that trigger an
	// EOF token from the lexer.
	wseof string
	// ceof and seof indicate whether commas and semicolons, respectively, are
	// allowed at the end of an expression.
	ceof, seof bool
	// owned is true once funcs and consts are private copies.
	owned bool
}

func (p *parsectx) own() {
	if p.owned {
		return
	}
	f := make(map[string]string, len(p.funcs))
	for k, v := range p.funcs {
		f[k] = v
	}
	c := make(map[string]string, len(p.consts))
	for k, v := range p.consts {
		c[k] = v
	}
	p.funcs, p.consts, p.owned = f, c, true
}

var globalfuncs = map[string]string{
	"exp":   OpExp,
	"ln":    OpLn,
	"log":   OpLog,
	"sqrt":  OpSqrt,
	"sin":   OpSin,
	"cos":   OpCos,
	"tan":   OpTan,
	"cot":   OpCot,
	"sec":   OpSec,
	"csc":   OpCsc,
	"asin":  OpArcsin,
	"acos":  OpArccos,
	"atan":  OpArctan,
	"sinh":  OpSinh,
	"cosh":  OpCosh,
	"tanh":  OpTanh,
	"abs":   OpAbs,
	"sign":  OpSign,
	"floor": OpFloor,
	"ceil":  OpCeil,
	"round": OpRound,
}

var globalconsts = map[string]string{
	"pi": SymPi,
	"π":  SymPi,
	"e":  SymE,
}

// ParseFunc makes a lowercase name parse as a call of op, so that "name x"
// and "name(x)" both mean op(x). To parse the name as a symbol instead, pass
// the empty string for op.
func ParseFunc(name, op string) ParseOption {
	return &funcopt{name, op}
}

func (o *funcopt) parseOption(p parsectx) parsectx {
	p.own()
	if o.op == "" {
		delete(p.funcs, o.name)
	} else {
		p.funcs[o.name] = o.op
	}
	return p
}

// ParseFuncs sets a group of function names for parsing. Names mapped to the
// empty string parse as symbols.
func ParseFuncs(fns map[string]string) ParseOption {
	return funcsopt(fns)
}

func (o funcsopt) parseOption(p parsectx) parsectx {
	p.own()
	for k, v := range o {
		if v == "" {
			delete(p.funcs, k)
		} else {
			p.funcs[k] = v
		}
	}
	return p
}

// DisableDefaultFuncs disables all default function names and the constant
// spellings pi, π, and e. Those names will be parsed as symbols instead.
func DisableDefaultFuncs() ParseOption {
	return disablefns{}
}

type disablefns struct{}

func (disablefns) parseOption(p parsectx) parsectx {
	p.funcs = map[string]string{}
	p.consts = map[string]string{}
	p.owned = true
	return p
}

// Wildcards allows identifiers spelled with leading underscores, which
// Compile turns into pattern wildcards. Without it, such identifiers are a
// *WildcardError.
func Wildcards() ParseOption {
	return wildopt{}
}

func (wildopt) parseOption(p parsectx) parsectx {
	p.wildcards = true
	return p
}

// StopOn tells the parser to treat a list of characters as ending the
// expression. Each rune must be a comma, semicolon, or whitespace codepoint.
// Whitespace does not end an expression where a term is expected, e.g. at the
// beginning of an expression or following an operator or bracket. Commas and
// semicolons do not end expressions inside bracketed function argument lists.
//
// StopOn overrides the effect of any previous StopOn in the parsing options.
// With no arguments, StopOn produces the default termination behavior, which
// is to parse to EOF.
func StopOn(chars ...rune) ParseOption {
	var o eofopt
	v := make([]rune, 0, len(chars))
	have := func(r rune) bool {
		for _, c := range v {
			if r == c {
				return true
			}
		}
		return false
	}
	for _, r := range chars {
		switch {
		case r == ',':
			o.c = true
		case r == ';':
			o.s = true
		case unicode.IsSpace(r):
			if have(r) {
				continue
			}
			v = append(v, r)
		default:
			panic("compute: cannot stop on " + strconv.QuoteRune(r))
		}
	}
	o.ws = string(v)
	return &o
}

func (o *eofopt) parseOption(p parsectx) parsectx {
	p.ceof = o.c
	p.seof = o.s
	p.wseof = o.ws
	return p
}
