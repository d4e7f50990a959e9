package compute

import (
	"github.com/benbjohnson/immutable"
	"golang.org/x/exp/slices"
)

// frame is one level of the scope stack. Its maps are persistent, so pushing
// a frame copies the parent's maps in constant time and updates in the new
// frame never show through to the parent.
type frame struct {
	syms   *immutable.Map[string, *SymbolDef]
	funcs  *immutable.Map[string, *FunctionDef]
	facts  *immutable.Map[string, *Expr]
	budget Budget
	prec   uint
}

// each calls fn on the entries of m until it returns false.
func each[V any](m *immutable.Map[string, V], fn func(string, V) bool) {
	for it := m.Iterator(); !it.Done(); {
		k, v, _ := it.Next()
		if !fn(k, v) {
			return
		}
	}
}

// Scope is a stack of lexical scopes holding symbol and function definitions,
// assumptions, the rewrite budget, and the numeric precision. Definitions not
// found in any frame fall back to the base definitions. A Scope is not safe
// for concurrent use.
type Scope struct {
	frames []frame
	base   Definitions

	// domains caches the inferred domain of each symbol. It is dropped
	// whenever the assumptions or the precision change.
	domains map[string]Domain
}

// NewScope creates a scope stack with one frame. If base is nil, the
// standard definitions are used.
func NewScope(base Definitions) *Scope {
	if base == nil {
		base = stdDefs
	}
	return &Scope{
		frames: []frame{{
			syms:   immutable.NewMap[string, *SymbolDef](nil),
			funcs:  immutable.NewMap[string, *FunctionDef](nil),
			facts:  immutable.NewMap[string, *Expr](nil),
			budget: DefaultBudget,
			prec:   defaultPrec,
		}},
		base: base,
	}
}

func (s *Scope) top() *frame {
	return &s.frames[len(s.frames)-1]
}

// Push enters a new scope inheriting everything from the current one.
func (s *Scope) Push() {
	s.frames = append(s.frames, *s.top())
}

// Pop leaves the current scope, restoring the enclosing one exactly. Panics
// if only the outermost scope remains.
func (s *Scope) Pop() {
	if len(s.frames) == 1 {
		panic("compute: Pop on outermost scope")
	}
	inner := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	if outer := s.top(); inner.facts != outer.facts || inner.syms != outer.syms || inner.prec != outer.prec {
		s.invalidate()
	}
}

// Depth returns the number of frames on the stack.
func (s *Scope) Depth() int {
	return len(s.frames)
}

// Clone returns an independent copy of the scope stack.
func (s *Scope) Clone() *Scope {
	return &Scope{frames: slices.Clone(s.frames), base: s.base}
}

// LookupFunction returns the innermost definition of an operator.
func (s *Scope) LookupFunction(name string) *FunctionDef {
	if d, ok := s.top().funcs.Get(name); ok {
		return d
	}
	return s.base.LookupFunction(name)
}

// LookupSymbol returns the innermost definition of a symbol.
func (s *Scope) LookupSymbol(name string) *SymbolDef {
	if d, ok := s.top().syms.Get(name); ok {
		return d
	}
	return s.base.LookupSymbol(name)
}

// DefineFunction defines an operator in the current scope.
func (s *Scope) DefineFunction(def *FunctionDef) {
	f := s.top()
	f.funcs = f.funcs.Set(def.Name, def)
}

// Define defines a symbol in the current scope. Redefining a constant symbol
// is an error.
func (s *Scope) Define(def *SymbolDef) error {
	if old := s.LookupSymbol(def.Name); old != nil && old.Constant {
		return &ConstantError{Name: def.Name}
	}
	f := s.top()
	f.syms = f.syms.Set(def.Name, def)
	s.invalidate()
	return nil
}

// Assign gives a symbol a value in the current scope, keeping any other part
// of its definition.
func (s *Scope) Assign(name string, value *Expr) error {
	def := SymbolDef{Name: name}
	if old := s.LookupSymbol(name); old != nil {
		def = *old
	}
	def.Value = value
	return s.Define(&def)
}

// Budget returns the budget of the current scope.
func (s *Scope) Budget() Budget {
	return s.top().budget
}

// SetBudget tightens the budget of the current scope. An inner scope can
// never loosen the budget it inherited.
func (s *Scope) SetBudget(b Budget) {
	f := s.top()
	if len(s.frames) == 1 {
		f.budget = b
		return
	}
	f.budget = s.frames[len(s.frames)-2].budget.Tighten(b)
}

// Prec returns the numeric precision of the current scope in bits.
func (s *Scope) Prec() uint {
	return s.top().prec
}

// SetPrec sets the numeric precision of the current scope.
func (s *Scope) SetPrec(prec uint) {
	f := s.top()
	if f.prec != prec {
		f.prec = prec
		s.invalidate()
	}
}

func (s *Scope) invalidate() {
	s.domains = nil
}

// ConstantError is the error returned when redefining a constant symbol.
type ConstantError struct {
	Name string
}

func (err *ConstantError) Error() string {
	return "compute: cannot redefine constant " + err.Name
}
