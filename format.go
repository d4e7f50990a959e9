package compute

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// String returns the MathJSON spelling of e with no insignificant
// whitespace. Structurally equal expressions have equal strings.
func (e *Expr) String() string {
	var b strings.Builder
	e.writeJSON(&b)
	return b.String()
}

// MarshalJSON encodes e as MathJSON.
func (e *Expr) MarshalJSON() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Expr) writeJSON(b *strings.Builder) {
	switch e.kind {
	case KindNumber:
		writeNumJSON(b, e.num)
	case KindSymbol:
		if e.tag == "" {
			writeQuoted(b, e.name)
			return
		}
		b.WriteString(`{"sym":`)
		writeQuoted(b, e.name)
		b.WriteString(`,"tag":`)
		writeQuoted(b, e.tag)
		b.WriteByte('}')
	case KindString:
		b.WriteString(`{"str":`)
		writeQuoted(b, e.name)
		b.WriteByte('}')
	case KindCompound:
		b.WriteByte('[')
		writeQuoted(b, e.name)
		for _, a := range e.args {
			b.WriteByte(',')
			a.writeJSON(b)
		}
		b.WriteByte(']')
	case KindDictionary:
		b.WriteString(`{"dict":{`)
		for i, k := range e.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeQuoted(b, k)
			b.WriteByte(':')
			e.dict[k].writeJSON(b)
		}
		b.WriteString("}}")
	default:
		panic("compute: invalid expression kind " + e.kind.String())
	}
}

func writeNumJSON(b *strings.Builder, n *Number) {
	switch {
	case n.IsInteger():
		b.WriteString(n.rat.Num().String())
	case n.rat != nil:
		b.WriteString(`["Rational",`)
		b.WriteString(n.rat.Num().String())
		b.WriteByte(',')
		b.WriteString(n.rat.Denom().String())
		b.WriteByte(']')
	case n.im != nil:
		b.WriteString(`["Complex",`)
		b.WriteString(floatText(n.re))
		b.WriteByte(',')
		b.WriteString(floatText(n.im))
		b.WriteByte(']')
	default:
		b.WriteString(floatText(n.re))
	}
}

// floatText formats an inexact value so that it reads back as inexact.
// Infinities use the MathJSON object spelling.
func floatText(f *big.Float) string {
	if f.IsInf() {
		if f.Sign() < 0 {
			return `{"num":"-Infinity"}`
		}
		return `{"num":"+Infinity"}`
	}
	s := f.Text('g', -1)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func writeQuoted(b *strings.Builder, s string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		panic(err)
	}
	b.Write(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}))
}

// ParseJSON decodes a MathJSON expression. Numbers written with a decimal
// point or exponent are inexact; integers are exact. A JSON string is a
// symbol; {"str": s} is a string literal.
func ParseJSON(data []byte) (*Expr, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ReadJSON decodes one MathJSON expression from r.
func ReadJSON(r io.Reader) (*Expr, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "decoding MathJSON")
	}
	return fromJSON(v)
}

// JSONError is the error for JSON that is not a valid MathJSON expression.
type JSONError struct {
	// Value is the offending JSON value.
	Value any
	// Reason describes what is wrong with it.
	Reason string
}

func (err *JSONError) Error() string {
	return "compute: invalid MathJSON: " + err.Reason
}

func fromJSON(v any) (*Expr, error) {
	switch v := v.(type) {
	case json.Number:
		return numFromText(string(v))
	case string:
		return Sym(v), nil
	case []any:
		if len(v) == 0 {
			return nil, &JSONError{Value: v, Reason: "empty compound"}
		}
		op, ok := v[0].(string)
		if !ok {
			return nil, &JSONError{Value: v, Reason: "operator is not a string"}
		}
		args := make([]*Expr, len(v)-1)
		for i, a := range v[1:] {
			x, err := fromJSON(a)
			if err != nil {
				return nil, err
			}
			args[i] = x
		}
		return numericCompound(op, args), nil
	case map[string]any:
		return objectFromJSON(v)
	default:
		return nil, &JSONError{Value: v, Reason: "unsupported JSON value"}
	}
}

// numericCompound folds the MathJSON spellings of rationals and complex
// numbers with literal parts into numbers.
func numericCompound(op string, args []*Expr) *Expr {
	if len(args) != 2 || args[0].kind != KindNumber || args[1].kind != KindNumber {
		return Call(op, args...)
	}
	a, b := args[0].num, args[1].num
	switch op {
	case "Rational":
		if a.IsInteger() && b.IsInteger() && !b.IsZero() {
			return Num(exactNum(new(big.Rat).Quo(a.rat, b.rat)))
		}
	case "Complex":
		if !a.IsComplex() && !b.IsComplex() {
			p := workPrec(a, b)
			return Num(complexNum(a.Real(p), b.Real(p)))
		}
	}
	return Call(op, args...)
}

func objectFromJSON(v map[string]any) (*Expr, error) {
	switch {
	case v["num"] != nil:
		s, ok := v["num"].(string)
		if !ok {
			return nil, &JSONError{Value: v, Reason: `"num" is not a string`}
		}
		return numFromText(s)
	case v["sym"] != nil:
		s, ok := v["sym"].(string)
		if !ok {
			return nil, &JSONError{Value: v, Reason: `"sym" is not a string`}
		}
		tag, _ := v["tag"].(string)
		return TaggedSym(s, tag), nil
	case v["str"] != nil:
		s, ok := v["str"].(string)
		if !ok {
			return nil, &JSONError{Value: v, Reason: `"str" is not a string`}
		}
		return Str(s), nil
	case v["fn"] != nil:
		fn, ok := v["fn"].([]any)
		if !ok {
			return nil, &JSONError{Value: v, Reason: `"fn" is not an array`}
		}
		return fromJSON(fn)
	case v["dict"] != nil:
		d, ok := v["dict"].(map[string]any)
		if !ok {
			return nil, &JSONError{Value: v, Reason: `"dict" is not an object`}
		}
		m := make(map[string]*Expr, len(d))
		for k, x := range d {
			e, err := fromJSON(x)
			if err != nil {
				return nil, err
			}
			m[k] = e
		}
		return Dict(m), nil
	}
	return nil, &JSONError{Value: v, Reason: "object has none of num, sym, str, fn, dict"}
}

func numFromText(s string) (*Expr, error) {
	switch s {
	case "+Infinity", "Infinity":
		return Num(floatNum(new(big.Float).SetInf(false))), nil
	case "-Infinity":
		return Num(floatNum(new(big.Float).SetInf(true))), nil
	}
	if !strings.ContainsAny(s, ".eE") {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, &JSONError{Value: s, Reason: "malformed integer " + strconv.Quote(s)}
		}
		return BigInt(n), nil
	}
	prec := uint(defaultPrec)
	if d := uint(len(s)) * 4; d > prec {
		prec = d
	}
	f, _, err := big.ParseFloat(s, 10, prec, big.ToNearestEven)
	if err != nil {
		return nil, &JSONError{Value: s, Reason: "malformed number " + strconv.Quote(s)}
	}
	return Num(floatNum(f)), nil
}

// Infix returns a human-readable infix spelling of e in the syntax that
// Parse reads.
func (e *Expr) Infix() string {
	var b strings.Builder
	e.writeInfix(&b)
	return b.String()
}

// Infix precedences, matching the parser's binary operators.
const (
	infixCmp  = 0
	infixAdd  = 1
	infixMul  = 5
	infixNeg  = 10
	infixPow  = 15
	infixAtom = 20
)

var infixCmpOps = map[string]string{
	OpEqual:        " = ",
	OpNotEqual:     " != ",
	OpLess:         " < ",
	OpLessEqual:    " <= ",
	OpGreater:      " > ",
	OpGreaterEqual: " >= ",
}

func (e *Expr) infixPrec() int {
	switch e.kind {
	case KindNumber:
		switch {
		case e.num.IsComplex():
			return infixAdd
		case e.num.Sign() < 0:
			return infixNeg
		case e.num.rat != nil && !e.num.rat.IsInt():
			return infixMul
		}
		return infixAtom
	case KindCompound:
		switch {
		case infixCmpOps[e.name] != "" && len(e.args) == 2:
			return infixCmp
		case e.name == OpAdd || e.name == OpSubtract:
			return infixAdd
		case e.name == OpMultiply || e.name == OpDivide:
			return infixMul
		case e.name == OpNegate && len(e.args) == 1:
			return infixNeg
		case e.name == OpPower && len(e.args) == 2:
			return infixPow
		}
	}
	return infixAtom
}

// writeOperand writes e, bracketed if it binds less tightly than prec.
func (e *Expr) writeOperand(b *strings.Builder, prec int) {
	if e.infixPrec() < prec {
		b.WriteByte('(')
		e.writeInfix(b)
		b.WriteByte(')')
		return
	}
	e.writeInfix(b)
}

func (e *Expr) writeInfix(b *strings.Builder) {
	switch e.kind {
	case KindNumber:
		writeNumInfix(b, e.num)
	case KindSymbol:
		if e.name == SymE {
			b.WriteString("e")
			return
		}
		b.WriteString(e.name)
	case KindString:
		b.WriteString(strconv.Quote(e.name))
	case KindDictionary:
		e.writeJSON(b)
	case KindCompound:
		e.writeCompoundInfix(b)
	default:
		panic("compute: invalid expression kind " + e.kind.String())
	}
}

func writeNumInfix(b *strings.Builder, n *Number) {
	switch {
	case n.rat != nil:
		b.WriteString(n.rat.RatString())
	case n.im != nil:
		b.WriteString(n.re.Text('g', -1))
		if n.im.Sign() < 0 {
			b.WriteString(" - ")
			b.WriteString(new(big.Float).Neg(n.im).Text('g', -1))
		} else {
			b.WriteString(" + ")
			b.WriteString(n.im.Text('g', -1))
		}
		b.WriteString(" ImaginaryUnit")
	default:
		b.WriteString(n.re.Text('g', -1))
	}
}

func (e *Expr) writeCompoundInfix(b *strings.Builder) {
	a := e.args
	if sep := infixCmpOps[e.name]; sep != "" && len(a) == 2 {
		a[0].writeOperand(b, infixCmp+1)
		b.WriteString(sep)
		a[1].writeOperand(b, infixCmp+1)
		return
	}
	switch {
	case e.name == OpAdd && len(a) >= 2:
		a[0].writeOperand(b, infixAdd)
		for _, t := range a[1:] {
			switch {
			case t.Is(OpNegate) && len(t.args) == 1:
				b.WriteString(" - ")
				t.args[0].writeOperand(b, infixAdd+1)
			case t.kind == KindNumber && t.num.Sign() < 0 && !t.num.IsComplex():
				b.WriteString(" - ")
				writeNumInfix(b, numNeg(t.num))
			default:
				b.WriteString(" + ")
				t.writeOperand(b, infixAdd+1)
			}
		}
		return
	case e.name == OpSubtract && len(a) == 2:
		a[0].writeOperand(b, infixAdd)
		b.WriteString(" - ")
		a[1].writeOperand(b, infixAdd+1)
		return
	case e.name == OpMultiply && len(a) >= 2:
		for i, f := range a {
			if i > 0 {
				if juxtaposes(a[i-1], f) {
					b.WriteByte(' ')
				} else {
					b.WriteString(" * ")
				}
			}
			f.writeOperand(b, infixMul+1)
		}
		return
	case e.name == OpDivide && len(a) == 2:
		a[0].writeOperand(b, infixMul)
		b.WriteString(" / ")
		a[1].writeOperand(b, infixMul+1)
		return
	case e.name == OpNegate && len(a) == 1:
		b.WriteByte('-')
		a[0].writeOperand(b, infixNeg)
		return
	case e.name == OpPower && len(a) == 2:
		a[0].writeOperand(b, infixPow+1)
		b.WriteByte('^')
		a[1].writeOperand(b, infixAtom)
		return
	}
	b.WriteString(e.name)
	b.WriteByte('(')
	for i, x := range a {
		if i > 0 {
			b.WriteString(", ")
		}
		x.writeInfix(b)
	}
	b.WriteByte(')')
}

// juxtaposes reports whether the product of l and r may be written as
// "l r": a leading integer coefficient before a symbol or a power of one.
func juxtaposes(l, r *Expr) bool {
	if l.kind != KindNumber || !l.num.IsInteger() || l.num.Sign() < 0 {
		return false
	}
	if r.Is(OpPower) && len(r.args) == 2 {
		r = r.args[0]
	}
	return r.kind == KindSymbol
}
