package compute

// Operator names of the standard library. Compound expressions may use any
// operator name; these are the ones the canonicalizer and the default rules
// know about.
const (
	OpAdd        = "Add"
	OpSubtract   = "Subtract"
	OpNegate     = "Negate"
	OpMultiply   = "Multiply"
	OpDivide     = "Divide"
	OpPower      = "Power"
	OpSqrt       = "Sqrt"
	OpRoot       = "Root"
	OpSquare     = "Square"
	OpReciprocal = "Reciprocal"
	OpExp        = "Exp"
	OpLn         = "Ln"
	OpLog        = "Log"

	OpSin    = "Sin"
	OpCos    = "Cos"
	OpTan    = "Tan"
	OpCot    = "Cot"
	OpSec    = "Sec"
	OpCsc    = "Csc"
	OpArcsin = "Arcsin"
	OpArccos = "Arccos"
	OpArctan = "Arctan"
	OpSinh   = "Sinh"
	OpCosh   = "Cosh"
	OpTanh   = "Tanh"

	OpAbs       = "Abs"
	OpSign      = "Sign"
	OpFloor     = "Floor"
	OpCeil      = "Ceil"
	OpRound     = "Round"
	OpConjugate = "Conjugate"
	OpMax       = "Max"
	OpMin       = "Min"

	OpNot          = "Not"
	OpAnd          = "And"
	OpOr           = "Or"
	OpEqual        = "Equal"
	OpNotEqual     = "NotEqual"
	OpLess         = "Less"
	OpLessEqual    = "LessEqual"
	OpGreater      = "Greater"
	OpGreaterEqual = "GreaterEqual"
	OpElement      = "Element"

	OpSet      = "Set"
	OpSequence = "Sequence"
	OpHold     = "Hold"

	OpD         = "D"
	OpIntegrate = "Integrate"
)

// Constant and domain symbol names.
const (
	SymPi          = "Pi"
	SymE           = "ExponentialE"
	SymI           = "ImaginaryUnit"
	SymGoldenRatio = "GoldenRatio"
	SymCatalan     = "CatalanConstant"
	SymEulerGamma  = "EulerGamma"
	SymTrue        = "True"
	SymFalse       = "False"
	SymIntegers    = "Integers"
	SymRationals   = "RationalNumbers"
	SymReals       = "RealNumbers"
	SymComplexes   = "ComplexNumbers"
)

// constants are the symbols that order before ordinary variables.
var constants = map[string]bool{
	SymPi:          true,
	SymE:           true,
	SymI:           true,
	SymGoldenRatio: true,
	SymCatalan:     true,
	SymEulerGamma:  true,
}
