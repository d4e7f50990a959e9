package compute

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Engine rewrites expressions under a scope of definitions and assumptions.
// An Engine is not safe for concurrent use; Clone it for each goroutine.
type Engine struct {
	scope *Scope
	canon *Canonicalizer
	cost  CostFunc
	// ownCost is set when the cost function was given with WithCost rather
	// than derived from the scope.
	ownCost bool
	tol     float64
	rules   RuleSet
	funcs   map[string]Func
	log     *slog.Logger
	tracer  trace.Tracer
}

// Option is an option used when creating an engine.
type Option interface {
	engineOption(*Engine)
}

type (
	tolengopt   float64
	costopt     CostFunc
	budgetopt   Budget
	loggeropt   struct{ l *slog.Logger }
	scopeopt    struct{ s *Scope }
	precopt     uint
	rulesopt    RuleSet
	tracerWrapt struct{ t trace.Tracer }
)

func (o tolengopt) engineOption(e *Engine) { e.tol = float64(o) }
func (o costopt) engineOption(e *Engine)   { e.cost, e.ownCost = CostFunc(o), true }
func (o budgetopt) engineOption(e *Engine) { e.scope.SetBudget(Budget(o)) }
func (o loggeropt) engineOption(e *Engine) { e.log = o.l.With("section", "rewrite") }
func (o scopeopt) engineOption(e *Engine)  { e.scope = o.s }
func (o precopt) engineOption(e *Engine)   { e.scope.SetPrec(uint(o)) }
func (o rulesopt) engineOption(e *Engine)  { e.rules = RuleSet(o) }
func (o tracerWrapt) engineOption(e *Engine) {
	e.tracer = o.t
}

// Tolerance sets the tolerance for numeric leaves in rule patterns.
func Tolerance(tol float64) Option {
	return tolengopt(tol)
}

// WithCost sets the cost function of the rewriter's acceptance test.
func WithCost(f CostFunc) Option {
	return costopt(f)
}

// WithBudget sets the budget of top-level rewrites in the engine's current
// scope.
func WithBudget(b Budget) Option {
	return budgetopt(b)
}

// WithLogger sets the logger for rule diagnostics.
func WithLogger(l *slog.Logger) Option {
	return loggeropt{l}
}

// WithScope makes the engine use an existing scope stack. Options that
// change the budget or precision apply to that scope, so WithScope should
// come first.
func WithScope(s *Scope) Option {
	return scopeopt{s}
}

// Prec sets the precision of numeric evaluation in bits.
func Prec(prec uint) Option {
	return precopt(prec)
}

// WithRules sets the rules used by Simplify. The default is
// StandardRules().
func WithRules(rs RuleSet) Option {
	return rulesopt(rs)
}

// WithTracer sets the tracer for rewrite spans. The default is the global
// OpenTelemetry tracer provider's tracer for this package.
func WithTracer(t trace.Tracer) Option {
	return tracerWrapt{t}
}

const tracerName = "github.com/cortex-js/compute-engine-sub005"

// NewEngine creates an engine with a fresh scope holding the standard
// definitions.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scope: NewScope(nil),
		tol:   DefaultTolerance,
		rules: StandardRules(),
		funcs: numericFuncs,
		log:   slog.Default().With("section", "rewrite"),
	}
	return e.apply(opts)
}

// Clone creates a copy of an engine with its own scope stack and applies
// options to it.
func (eng *Engine) Clone(opts ...Option) *Engine {
	n := *eng
	n.scope = eng.scope.Clone()
	if !n.ownCost {
		n.cost = nil
	}
	return n.apply(opts)
}

func (eng *Engine) apply(opts []Option) *Engine {
	// The scope comes first so that other options apply to the right one.
	for _, opt := range opts {
		if s, ok := opt.(scopeopt); ok {
			s.engineOption(eng)
		}
	}
	for _, opt := range opts {
		if _, ok := opt.(scopeopt); !ok {
			opt.engineOption(eng)
		}
	}
	eng.canon = NewCanonicalizer(eng.scope)
	eng.canon.log = eng.log
	if eng.cost == nil {
		eng.cost = WeightedCost(eng.scope)
	}
	if eng.tracer == nil {
		eng.tracer = otel.Tracer(tracerName)
	}
	return eng
}

// Scope returns the engine's scope stack.
func (eng *Engine) Scope() *Scope {
	return eng.scope
}

// Rules returns the rules used by Simplify.
func (eng *Engine) Rules() RuleSet {
	return eng.rules
}

// Cost returns the cost of e under the engine's cost function.
func (eng *Engine) Cost(e *Expr) int {
	return eng.cost(e)
}

// Canonicalize returns the canonical form of e under the engine's
// definitions.
func (eng *Engine) Canonicalize(e *Expr) *Expr {
	return eng.canon.Canonicalize(e)
}

// Simplify rewrites e with the engine's rules.
func (eng *Engine) Simplify(ctx context.Context, e *Expr) (*Expr, error) {
	return eng.Rewrite(ctx, e, eng.rules)
}

// Evaluate replaces symbols by their assigned values and simplifies the
// result.
func (eng *Engine) Evaluate(ctx context.Context, e *Expr) (*Expr, error) {
	return eng.Simplify(ctx, eng.assigned(e))
}

// assigned replaces each symbol with a value in scope by that value.
func (eng *Engine) assigned(e *Expr) *Expr {
	switch e.kind {
	case KindSymbol:
		if d := eng.scope.LookupSymbol(e.name); d != nil && d.Value != nil && e.tag == "" {
			return d.Value
		}
		return e
	case KindCompound:
		if e.name == OpHold {
			return e
		}
		return e.Map(eng.assigned)
	}
	return e
}

// Assume records a proposition in the current scope. Comparisons are
// normalized to compare a canonical difference against zero.
func (eng *Engine) Assume(prop *Expr) {
	eng.scope.Assume(eng.normalizeProp(prop))
}

// Forget removes a proposition recorded with Assume.
func (eng *Engine) Forget(prop *Expr) {
	eng.scope.Forget(eng.normalizeProp(prop))
}

// Is answers whether a proposition holds under the assumptions in scope.
func (eng *Engine) Is(prop *Expr) Truth {
	return eng.scope.Is(eng.normalizeProp(prop))
}

var flipped = map[string]string{
	OpLess:         OpGreater,
	OpLessEqual:    OpGreaterEqual,
	OpGreater:      OpLess,
	OpGreaterEqual: OpLessEqual,
	OpEqual:        OpEqual,
	OpNotEqual:     OpNotEqual,
}

// normalizeProp rewrites a comparison a op b into (a - b) op 0 in canonical
// form, with a leading negation moved onto the operator.
func (eng *Engine) normalizeProp(prop *Expr) *Expr {
	prop = eng.canon.Canonicalize(prop)
	switch {
	case prop.Is(OpNot) && len(prop.args) == 1:
		return call(OpNot, []*Expr{eng.normalizeProp(prop.args[0])})
	case prop.Is(OpAnd), prop.Is(OpOr):
		return prop.Map(eng.normalizeProp)
	}
	if _, ok := flipped[prop.Op()]; !ok || len(prop.args) != 2 {
		return prop
	}
	op := prop.name
	d := eng.canon.Canonicalize(call(OpSubtract, []*Expr{prop.args[0], prop.args[1]}))
	if leadsNegative(d) {
		op, d = flipped[op], eng.canon.negate(d)
	}
	return call(op, []*Expr{d, zero})
}

// leadsNegative reports whether the leading term of e has a negative
// coefficient.
func leadsNegative(e *Expr) bool {
	if e.Is(OpAdd) && len(e.args) > 0 {
		e = e.args[0]
	}
	c, _ := splitCoeff(e)
	return !c.IsComplex() && c.Sign() < 0
}

// Expand distributes products and powers over sums under the engine's
// definitions.
func (eng *Engine) Expand(e *Expr) *Expr {
	return eng.canon.Expand(e)
}

// Factor factors sums under the engine's definitions.
func (eng *Engine) Factor(e *Expr) *Expr {
	return eng.canon.Factor(e)
}

// D differentiates e with respect to x and simplifies the result.
func (eng *Engine) D(ctx context.Context, e *Expr, x string) (*Expr, error) {
	return eng.Simplify(ctx, eng.canon.D(e, x))
}

// Integrate finds an antiderivative of e with respect to x and simplifies
// the result.
func (eng *Engine) Integrate(ctx context.Context, e *Expr, x string) (*Expr, error) {
	return eng.Simplify(ctx, eng.canon.Integrate(e, x))
}
