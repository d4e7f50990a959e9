package compute

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Session is the state of one top-level rewrite. Rules receive the session
// to query assumptions and to simplify subexpressions under the same
// budget.
type Session struct {
	eng    *Engine
	ctx    context.Context
	budget Budget
	iters  int
	depth  int
	steps  []RewriteStep
	worse  map[*Rule]int
	spent  []*Rule // worsening steps in the order accepted
	err    error
}

func (eng *Engine) session(ctx context.Context) *Session {
	b := eng.scope.Budget().start(time.Now())
	if dl, ok := ctx.Deadline(); ok {
		b = b.Tighten(Budget{Deadline: dl})
	}
	return &Session{eng: eng, ctx: ctx, budget: b, worse: map[*Rule]int{}}
}

// Context returns the context of the top-level call.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Engine returns the engine running the session.
func (s *Session) Engine() *Engine {
	return s.eng
}

// Scope returns the scope of the engine running the session.
func (s *Session) Scope() *Scope {
	return s.eng.scope
}

// Is answers whether a proposition holds under the assumptions in scope.
func (s *Session) Is(prop *Expr) Truth {
	return s.eng.Is(prop)
}

// Canonicalize returns the canonical form of e.
func (s *Session) Canonicalize(e *Expr) *Expr {
	return s.eng.canon.Canonicalize(e)
}

// Simplify rewrites e with the engine's rules, sharing the budget of the
// session. Steps taken are not recorded. Once the budget is exhausted, it
// returns e unchanged.
func (s *Session) Simplify(e *Expr) *Expr {
	if s.err != nil {
		return e
	}
	steps := s.steps
	r := s.rewrite(s.eng.canon.Canonicalize(e), s.eng.rules)
	s.steps = steps
	if s.err != nil {
		return e
	}
	return r
}

// Tighten restricts the remaining budget of the session by b until the
// returned function is called.
func (s *Session) Tighten(b Budget) (restore func()) {
	old := s.budget
	b = b.start(time.Now())
	if b.MaxIterations > 0 {
		b.MaxIterations += s.iters
	}
	s.budget = s.budget.Tighten(b)
	return func() { s.budget = old }
}

// Steps returns the steps accepted so far.
func (s *Session) Steps() []RewriteStep {
	return s.steps
}

// Rewrite canonicalizes e and rewrites it with rules until no rule
// applies. Each step is accepted only if it does not increase the cost,
// apart from the bounded allowance of Worsening rules, and the result is
// never costlier than the canonical form of e. If the budget
// or ctx is exhausted, the result is discarded and the error is a
// *BudgetError.
func (eng *Engine) Rewrite(ctx context.Context, e *Expr, rules RuleSet) (*Expr, error) {
	r, _, err := eng.RewriteSteps(ctx, e, rules)
	return r, err
}

// RewriteSteps is like Rewrite and also returns the accepted steps in
// order.
func (eng *Engine) RewriteSteps(ctx context.Context, e *Expr, rules RuleSet) (*Expr, []RewriteStep, error) {
	ctx, span := eng.tracer.Start(ctx, "compute.Rewrite")
	defer span.End()
	s := eng.session(ctx)
	r := s.rewrite(eng.canon.Canonicalize(e), rules)
	span.SetAttributes(
		attribute.Int("compute.iterations", s.iters),
		attribute.Int("compute.steps", len(s.steps)),
	)
	if s.err != nil {
		span.RecordError(s.err)
		span.SetStatus(codes.Error, s.err.Error())
		eng.log.Warn("rewrite aborted", "err", s.err, "expr", e)
		return nil, nil, s.err
	}
	return r, s.steps, nil
}

// ApplyRules tries rules in order on e itself, not its operands, and
// returns the first accepted step, or nil if none applies.
func (eng *Engine) ApplyRules(ctx context.Context, e *Expr, rules RuleSet) (*RewriteStep, error) {
	s := eng.session(ctx)
	st := s.applyRules(eng.canon.Canonicalize(e), rules)
	if s.err != nil {
		return nil, s.err
	}
	return st, nil
}

// rewrite rewrites the operands of e and then e itself until no rule
// applies. e must be canonical. The result is the cheapest form reached,
// preferring later forms among equals, so worsening steps that lead nowhere
// cheaper are undone along with their recorded steps and their allowance.
func (s *Session) rewrite(e *Expr, rules RuleSet) *Expr {
	if s.err != nil {
		return e
	}
	s.depth++
	defer func() { s.depth-- }()
	if max := s.budget.MaxDepth; max > 0 && s.depth > max {
		s.fail("depth", max)
		return e
	}
	best, bestCost := e, s.eng.cost(e)
	bestSteps, bestSpent := len(s.steps), len(s.spent)
	for {
		if e.kind == KindCompound && e.name != OpHold {
			n := e.Map(func(a *Expr) *Expr { return s.rewrite(a, rules) })
			if s.err != nil {
				return e
			}
			if n != e {
				e = s.eng.canon.Canonicalize(n)
			}
		}
		if c := s.eng.cost(e); c <= bestCost {
			best, bestCost = e, c
			bestSteps, bestSpent = len(s.steps), len(s.spent)
		}
		st := s.applyRules(e, rules)
		if s.err != nil {
			return e
		}
		if st == nil {
			break
		}
		// The new value may have operands no rule has seen yet.
		e = st.Value
	}
	if best != e {
		s.eng.log.Debug("rewrite undone", "from", e, "to", best, "cost", bestCost)
		s.steps = s.steps[:bestSteps]
		for _, r := range s.spent[bestSpent:] {
			s.worse[r]--
		}
		s.spent = s.spent[:bestSpent]
	}
	return best
}

// applyRules tries each rule at the root of e and returns the first step
// that passes the cost test.
func (s *Session) applyRules(e *Expr, rules RuleSet) *RewriteStep {
	for _, r := range rules {
		if !s.tick() {
			return nil
		}
		cand, because := s.candidate(e, r)
		if cand == nil {
			continue
		}
		if st := s.accept(e, cand, r, because); st != nil {
			return st
		}
	}
	return nil
}

// tick counts one rule attempt and reports whether the budget allows it.
func (s *Session) tick() bool {
	if s.err != nil {
		return false
	}
	s.iters++
	if err := s.ctx.Err(); err != nil {
		s.fail("deadline", 0)
		return false
	}
	if !s.budget.Deadline.IsZero() && time.Now().After(s.budget.Deadline) {
		s.fail("deadline", 0)
		return false
	}
	if max := s.budget.MaxIterations; max > 0 && s.iters > max {
		s.fail("iterations", max)
		return false
	}
	return true
}

func (s *Session) fail(limit string, max int) {
	s.err = &BudgetError{Limit: limit, Max: max, Steps: len(s.steps)}
}

// candidate computes what rule r would rewrite e to, or nil.
func (s *Session) candidate(e *Expr, r *Rule) (*Expr, string) {
	if r.Func != nil {
		st := r.Func(e, s)
		if st == nil || st.Value == nil {
			return nil, ""
		}
		because := st.Because
		if because == "" {
			because = r.Because
		}
		return st.Value, because
	}
	if r.Match == nil {
		return nil, ""
	}
	b, ok := Match(e, r.Match, MatchTolerance(s.eng.tol), MatchDefinitions(s.eng.scope))
	if !ok {
		return nil, ""
	}
	if r.Condition != nil && !r.Condition(b, s) {
		return nil, ""
	}
	if r.Replacer != nil {
		return r.Replacer(e, b, s), r.Because
	}
	if r.Replace == nil {
		return nil, ""
	}
	v, unbound := substitute(r.Replace, b)
	if len(unbound) > 0 {
		s.eng.log.Warn("rule template has unbound wildcards", "rule", r.Because, "wildcards", unbound)
		return nil, ""
	}
	return v, r.Because
}

// accept canonicalizes a candidate in the rule's form and records it as a
// step if it is different from e and no costlier.
func (s *Session) accept(e, cand *Expr, r *Rule, because string) *RewriteStep {
	canon := s.eng.canon
	if r.Form != nil {
		c, err := canon.Pipeline(r.Form...)
		if err != nil {
			s.eng.log.Warn("rule names an unknown canonical form", "rule", because, "err", err)
			return nil
		}
		canon = c
	}
	cand = canon.Canonicalize(cand)
	if Equal(cand, e) {
		return nil
	}
	before, after := s.eng.cost(e), s.eng.cost(cand)
	if after > before {
		if s.worse[r] >= r.Worsening {
			return nil
		}
		s.worse[r]++
		s.spent = append(s.spent, r)
	}
	st := RewriteStep{Value: cand, Because: because}
	s.steps = append(s.steps, st)
	s.eng.log.Debug("rewrite", "because", because, "from", e, "to", cand, "cost", after)
	return &st
}
