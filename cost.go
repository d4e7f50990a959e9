package compute

// CostFunc measures the complexity of an expression. The rewriter accepts a
// rewrite only if it does not increase the cost.
type CostFunc func(e *Expr) int

// defaultWeight is the cost of an operator with no declared weight.
const defaultWeight = 2

// DefaultCost is the weighted node count of e under the standard
// definitions.
func DefaultCost(e *Expr) int {
	return weightedCost(stdDefs, e)
}

// WeightedCost returns the weighted node count under defs. Each operator
// costs its FunctionDef.Weight, leaves cost one, and non-integer numbers
// cost more than integers.
func WeightedCost(defs Definitions) CostFunc {
	return func(e *Expr) int {
		return weightedCost(defs, e)
	}
}

func weightedCost(defs Definitions, e *Expr) int {
	switch e.kind {
	case KindNumber:
		switch {
		case e.num.IsInteger():
			if e.num.Sign() < 0 {
				return 2
			}
			return 1
		case e.num.IsExact():
			return 2
		}
		return 3
	case KindSymbol, KindString:
		return 1
	case KindCompound:
		w := defaultWeight
		if d := defs.LookupFunction(e.name); d != nil && d.Weight > 0 {
			w = d.Weight
		}
		for _, a := range e.args {
			w += weightedCost(defs, a)
		}
		return w
	case KindDictionary:
		w := 1
		for _, v := range e.dict {
			w += weightedCost(defs, v)
		}
		return w
	default:
		panic("compute: invalid expression kind " + e.kind.String())
	}
}
