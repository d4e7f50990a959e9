package compute

// FunctionDef describes the algebraic properties of an operator. The
// canonicalizer, the matcher, the cost function and the calculus helpers all
// read these properties; none of them special-case operator names that a
// definition can describe.
type FunctionDef struct {
	Name string

	// Associative operators are flattened: f(a, f(b, c)) is f(a, b, c).
	Associative bool
	// Commutative operators have their operands sorted.
	Commutative bool
	// Idempotent unary operators collapse: f(f(x)) is f(x).
	Idempotent bool
	// Involution unary operators cancel: f(f(x)) is x.
	Involution bool
	// SetLike operators have duplicate operands removed.
	SetLike bool

	// Identity, if set, is dropped from the operands.
	Identity *Expr
	// Absorbing, if set, makes the whole expression equal to it.
	Absorbing *Expr

	// Parity is 1 for odd functions, 2 for even functions, 0 otherwise.
	Parity int
	// Period, if set, is the period of a periodic unary function.
	Period *Expr

	// Derivative is the derivative with respect to the single operand,
	// written as a template over the wildcard _x.
	Derivative *Pattern
	// Antiderivative is a primitive with respect to the single operand,
	// written as a template over the wildcard _x.
	Antiderivative *Pattern

	// Weight is the cost of one application of the operator, excluding its
	// operands. Zero means the default weight.
	Weight int
}

const (
	parityOdd  = 1
	parityEven = 2
)

// SymbolDef describes a symbol.
type SymbolDef struct {
	Name string
	// Value, if set, is substituted for the symbol by evaluation.
	Value *Expr
	// Constant symbols cannot be assigned.
	Constant bool
	// Domain is the declared numeric domain.
	Domain Domain
}

// Definitions provides symbol and function definitions.
type Definitions interface {
	// LookupFunction returns the definition of an operator, or nil.
	LookupFunction(name string) *FunctionDef
	// LookupSymbol returns the definition of a symbol, or nil.
	LookupSymbol(name string) *SymbolDef
}

type libDefs struct {
	funcs map[string]*FunctionDef
	syms  map[string]*SymbolDef
}

func (l *libDefs) LookupFunction(name string) *FunctionDef { return l.funcs[name] }
func (l *libDefs) LookupSymbol(name string) *SymbolDef     { return l.syms[name] }

// stdDefs are the definitions of the standard library.
var stdDefs = newStdDefs()

// StandardDefinitions returns the definitions of the standard operators and
// constants.
func StandardDefinitions() Definitions {
	return stdDefs
}

func tmpl(src string) *Pattern {
	return Compile(MustParse(src, Wildcards()))
}

func newStdDefs() *libDefs {
	l := &libDefs{funcs: map[string]*FunctionDef{}, syms: map[string]*SymbolDef{}}
	add := func(d *FunctionDef) { l.funcs[d.Name] = d }

	add(&FunctionDef{Name: OpAdd, Associative: true, Commutative: true, Identity: Int(0), Weight: 1})
	add(&FunctionDef{Name: OpMultiply, Associative: true, Commutative: true, Identity: Int(1), Absorbing: Int(0), Weight: 1})
	add(&FunctionDef{Name: OpNegate, Involution: true, Parity: parityOdd, Weight: 1})
	add(&FunctionDef{Name: OpPower, Weight: 2})
	add(&FunctionDef{Name: OpSubtract, Weight: 1})
	add(&FunctionDef{Name: OpDivide, Weight: 2})
	add(&FunctionDef{Name: OpSqrt, Weight: 2})
	add(&FunctionDef{Name: OpRoot, Weight: 3})
	add(&FunctionDef{Name: OpSquare, Weight: 2})
	add(&FunctionDef{Name: OpReciprocal, Weight: 2})
	add(&FunctionDef{Name: OpExp, Weight: 3,
		Derivative: tmpl("Exp(_x)"), Antiderivative: tmpl("Exp(_x)")})
	add(&FunctionDef{Name: OpLn, Weight: 3,
		Derivative: tmpl("Power(_x, -1)"), Antiderivative: tmpl("_x Ln(_x) - _x")})
	add(&FunctionDef{Name: OpLog, Weight: 3})

	add(&FunctionDef{Name: OpSin, Parity: parityOdd, Period: MustParse("2 Pi"), Weight: 4,
		Derivative: tmpl("Cos(_x)"), Antiderivative: tmpl("-Cos(_x)")})
	add(&FunctionDef{Name: OpCos, Parity: parityEven, Period: MustParse("2 Pi"), Weight: 4,
		Derivative: tmpl("-Sin(_x)"), Antiderivative: tmpl("Sin(_x)")})
	add(&FunctionDef{Name: OpTan, Parity: parityOdd, Period: Sym(SymPi), Weight: 4,
		Derivative: tmpl("Power(Sec(_x), 2)"), Antiderivative: tmpl("-Ln(Abs(Cos(_x)))")})
	add(&FunctionDef{Name: OpCot, Parity: parityOdd, Period: Sym(SymPi), Weight: 4,
		Derivative: tmpl("-Power(Csc(_x), 2)"), Antiderivative: tmpl("Ln(Abs(Sin(_x)))")})
	add(&FunctionDef{Name: OpSec, Parity: parityEven, Period: MustParse("2 Pi"), Weight: 4,
		Derivative: tmpl("Sec(_x) Tan(_x)")})
	add(&FunctionDef{Name: OpCsc, Parity: parityOdd, Period: MustParse("2 Pi"), Weight: 4,
		Derivative: tmpl("-Csc(_x) Cot(_x)")})
	add(&FunctionDef{Name: OpArcsin, Parity: parityOdd, Weight: 5,
		Derivative: tmpl("Power(1 - _x^2, -1/2)")})
	add(&FunctionDef{Name: OpArccos, Weight: 5,
		Derivative: tmpl("-Power(1 - _x^2, -1/2)")})
	add(&FunctionDef{Name: OpArctan, Parity: parityOdd, Weight: 5,
		Derivative: tmpl("Power(1 + _x^2, -1)")})
	add(&FunctionDef{Name: OpSinh, Parity: parityOdd, Weight: 3,
		Derivative: tmpl("Cosh(_x)"), Antiderivative: tmpl("Cosh(_x)")})
	add(&FunctionDef{Name: OpCosh, Parity: parityEven, Weight: 3,
		Derivative: tmpl("Sinh(_x)"), Antiderivative: tmpl("Sinh(_x)")})
	add(&FunctionDef{Name: OpTanh, Parity: parityOdd, Weight: 3,
		Derivative: tmpl("1 - Power(Tanh(_x), 2)")})

	add(&FunctionDef{Name: OpAbs, Idempotent: true, Parity: parityEven, Weight: 2})
	add(&FunctionDef{Name: OpSign, Idempotent: true, Parity: parityOdd, Weight: 2})
	add(&FunctionDef{Name: OpFloor, Idempotent: true, Weight: 2})
	add(&FunctionDef{Name: OpCeil, Idempotent: true, Weight: 2})
	add(&FunctionDef{Name: OpRound, Idempotent: true, Weight: 2})
	add(&FunctionDef{Name: OpConjugate, Involution: true, Weight: 2})
	add(&FunctionDef{Name: OpMax, Associative: true, Commutative: true, SetLike: true, Weight: 2})
	add(&FunctionDef{Name: OpMin, Associative: true, Commutative: true, SetLike: true, Weight: 2})

	add(&FunctionDef{Name: OpNot, Involution: true, Weight: 1})
	add(&FunctionDef{Name: OpAnd, Associative: true, Commutative: true, SetLike: true,
		Identity: Sym(SymTrue), Absorbing: Sym(SymFalse), Weight: 1})
	add(&FunctionDef{Name: OpOr, Associative: true, Commutative: true, SetLike: true,
		Identity: Sym(SymFalse), Absorbing: Sym(SymTrue), Weight: 1})
	add(&FunctionDef{Name: OpEqual, Commutative: true, Weight: 1})
	add(&FunctionDef{Name: OpNotEqual, Commutative: true, Weight: 1})
	add(&FunctionDef{Name: OpSet, Commutative: true, SetLike: true, Weight: 1})

	for name := range constants {
		l.syms[name] = &SymbolDef{Name: name, Constant: true, Domain: DomainReal}
	}
	l.syms[SymI].Domain = DomainComplex
	l.syms[SymTrue] = &SymbolDef{Name: SymTrue, Constant: true}
	l.syms[SymFalse] = &SymbolDef{Name: SymFalse, Constant: true}
	return l
}
