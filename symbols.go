package compute

import (
	"github.com/hashicorp/go-set/v3"
)

// Symbols returns the set of symbol names in e, including constants but not
// operator names.
func Symbols(e *Expr) *set.Set[string] {
	s := set.New[string](0)
	collectSymbols(e, s)
	return s
}

func collectSymbols(e *Expr, s *set.Set[string]) {
	switch e.kind {
	case KindSymbol:
		s.Insert(e.name)
	case KindCompound:
		for _, a := range e.args {
			collectSymbols(a, s)
		}
	case KindDictionary:
		for _, v := range e.dict {
			collectSymbols(v, s)
		}
	}
}

// DependsOn reports whether e contains any of the symbols in vars.
func DependsOn(e *Expr, vars ...string) bool {
	if len(vars) == 0 {
		return false
	}
	return Symbols(e).Intersect(set.From(vars)).Size() > 0
}
