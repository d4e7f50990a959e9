package compute_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cortex-js/compute-engine-sub005"
)

func TestSimplify(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"odd", "Sin(-x)", "-Sin(x)"},
		{"even", "Cos(-x)", "Cos(x)"},
		{"odd-number", "Tan(-2)", "-Tan(2)"},
		{"pythagorean", "Sin(x)^2 + Cos(x)^2", "1"},
		{"pythagorean-rest", "Sin(x)^2 + Cos(x)^2 + y", "y + 1"},
		{"pythagorean-cos", "1 - Sin(y)^2", "Cos(y)^2"},
		{"hyperbolic", "Cosh(x)^2 - Sinh(x)^2", "1"},
		{"tan", "Sin(x) / Cos(x)", "Tan(x)"},
		{"ln-one", "Ln(1)", "0"},
		{"ln-e", "Ln(e)", "1"},
		{"exp-ln", "Exp(Ln(y))", "y"},
		{"nested", "F(Sin(-x)^2 + Cos(-x)^2)", "F(1)"},
		{"sin-pi", "Sin(Pi)", "0"},
		{"cos-pi", "Cos(Pi)", "-1"},
		{"sin-pi-6", "Sin(Pi/6)", "1/2"},
		{"period", "Cos(x + 2 Pi)", "Cos(x)"},
		{"unchanged", "x + y", "x + y"},
	}
	eng := compute.NewEngine()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := eng.Simplify(context.Background(), compute.MustParse(c.src))
			if err != nil {
				t.Fatal(err)
			}
			if want := canon(c.want); !compute.Equal(r, want) {
				t.Errorf("Simplify(%s): got %s, want %s", c.src, r, want)
			}
		})
	}
}

func TestRewriteSteps(t *testing.T) {
	eng := compute.NewEngine()
	r, steps, err := eng.RewriteSteps(context.Background(), compute.MustParse("Sin(-x)"), eng.Rules())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := r.String(), `["Negate",["Sin","x"]]`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if len(steps) != 1 {
		t.Fatalf("wrong number of steps: %v", steps)
	}
	if got, want := steps[0].Because, "odd function: Sin(-x) = -Sin(x)"; got != want {
		t.Errorf("step labeled %q, want %q", got, want)
	}
	if !compute.Equal(steps[0].Value, r) {
		t.Errorf("last step is %s, not the result %s", steps[0].Value, r)
	}

	_, steps, err = eng.RewriteSteps(context.Background(), compute.MustParse("Sin(x)^2 + Cos(x)^2"), eng.Rules())
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 1 || steps[0].Because != "Pythagorean identity" {
		t.Errorf("wrong steps %v", steps)
	}
}

func TestRewriteCost(t *testing.T) {
	ctx := context.Background()
	eng := compute.NewEngine()
	srcs := []string{
		"Sin(-x) + Cos(-x)^2",
		"Abs(-y) Sign(-y)",
		"Ln(e^x) + Exp(Ln(2 y))",
		"F(Sin(x)^2, Cos(x)^2 + Sin(x)^2)",
		"Sin(x + (3/2) Pi)",
	}
	for _, src := range srcs {
		e := canon(src)
		r, steps, err := eng.RewriteSteps(ctx, e, eng.Rules())
		if err != nil {
			t.Errorf("%s: %v", src, err)
			continue
		}
		if eng.Cost(r) > eng.Cost(e) {
			t.Errorf("%s (cost %d) rewrote to %s (cost %d)", e, eng.Cost(e), r, eng.Cost(r))
		}
		if r2, err := eng.Rewrite(ctx, r, eng.Rules()); err != nil || !compute.Equal(r, r2) {
			t.Errorf("%s rewrote to %s, which rewrites again to %v, %v", src, r, r2, err)
		}
		if len(steps) > 0 && !compute.Equal(steps[len(steps)-1].Value, compute.Canonicalize(steps[len(steps)-1].Value)) {
			t.Errorf("%s: step value %s is not canonical", src, steps[len(steps)-1].Value)
		}
	}
}

func TestRewriteWorsening(t *testing.T) {
	ctx := context.Background()
	eng := compute.NewEngine()
	e := compute.MustParse("F(y)")

	rs := compute.NewRuleSet(compute.MustRule("F(_x) -> G(_x, _x)"))
	r, err := eng.Rewrite(ctx, e, rs)
	if err != nil {
		t.Fatal(err)
	}
	if !compute.Equal(r, e) {
		t.Errorf("costlier rewrite accepted: got %s", r)
	}

	// A worsening step that leads nowhere cheaper is undone.
	rs = compute.NewRuleSet(compute.MustRule("F(_x) -> G(_x, _x)", compute.Worsening(1)))
	r, steps, err := eng.RewriteSteps(ctx, e, rs)
	if err != nil {
		t.Fatal(err)
	}
	if !compute.Equal(r, e) || len(steps) != 0 {
		t.Errorf("dead-end worsening kept: got %s after %v", r, steps)
	}

	rs = compute.NewRuleSet(
		compute.MustRule("F(_x) -> G(_x, _x)", compute.Worsening(1)),
		compute.MustRule("G(_x, _x) -> H(_x)"),
	)
	r, steps, err = eng.RewriteSteps(ctx, e, rs)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := r.String(), `["H","y"]`; got != want {
		t.Errorf("with worsening allowed: got %s, want %s", got, want)
	}
	if len(steps) != 2 {
		t.Errorf("wrong steps %v", steps)
	}
	// The allowance is per top-level rewrite.
	r, err = eng.Rewrite(ctx, compute.MustParse("F(y) + F(z)"), rs)
	if err != nil {
		t.Fatal(err)
	}
	if want := canon("H(y) + F(z)"); !compute.Equal(r, want) {
		t.Errorf("with one worsening step: got %s, want %s", r, want)
	}
}

func TestRewriteRejects(t *testing.T) {
	ctx := context.Background()
	eng := compute.NewEngine()
	cases := []struct {
		name string
		rule *compute.Rule
	}{
		{"unknown-form", compute.MustRule("F(_x) -> _x", compute.Form("nope"))},
		{"unbound-sequence", compute.MustRule("F(_x) -> G(__r)")},
		{"condition", compute.MustRule("F(_x) -> _x", compute.When(func(compute.Bindings, *compute.Session) bool { return false }))},
		{"no-match", compute.MustRule("H(_x) -> _x")},
		{"nil-replacement", compute.NewProcRule(pat("F(_x)"), func(*compute.Expr, compute.Bindings, *compute.Session) *compute.Expr { return nil })},
		{"nil-step", compute.RuleFunc("never", func(*compute.Expr, *compute.Session) *compute.RewriteStep { return nil })},
	}
	e := compute.MustParse("F(y)")
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := eng.Rewrite(ctx, e, compute.NewRuleSet(c.rule))
			if err != nil {
				t.Fatal(err)
			}
			if !compute.Equal(r, e) {
				t.Errorf("rule applied: got %s", r)
			}
		})
	}
}

func TestRewriteForm(t *testing.T) {
	// With only the sort pass, the identity 0 survives in the result.
	rule := compute.MustRule("F(_x, _x, _x) -> Add(_x, 0)", compute.Verbatim(), compute.Form(compute.PassSort))
	r, err := compute.NewEngine().Rewrite(context.Background(), compute.MustParse("F(y, y, y)"), compute.NewRuleSet(rule))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := r.String(), `["Add","y",0]`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRewriteBudget(t *testing.T) {
	loop := compute.NewRuleSet(
		compute.MustRule("A -> B"),
		compute.MustRule("B -> A"),
	)
	cases := []struct {
		name   string
		budget compute.Budget
		ctx    func() (context.Context, context.CancelFunc)
		e      string
		limit  string
		rules  compute.RuleSet
	}{
		{
			name:   "iterations",
			budget: compute.Budget{MaxIterations: 100},
			e:      "A",
			limit:  "iterations",
			rules:  loop,
		},
		{
			name:   "timeout",
			budget: compute.Budget{Timeout: time.Millisecond},
			e:      "A",
			limit:  "deadline",
			rules:  loop,
		},
		{
			name:   "context",
			budget: compute.DefaultBudget,
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
			e:     "A",
			limit: "deadline",
			rules: loop,
		},
		{
			name:   "context-deadline",
			budget: compute.DefaultBudget,
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), time.Millisecond)
			},
			e:     "A",
			limit: "deadline",
			rules: loop,
		},
		{
			name:   "depth",
			budget: compute.Budget{MaxDepth: 2},
			e:      "F(F(F(x)))",
			limit:  "depth",
			rules:  compute.NewRuleSet(compute.MustRule("G(_x) -> _x")),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx, cancel := context.Background(), func() {}
			if c.ctx != nil {
				ctx, cancel = c.ctx()
			}
			defer cancel()
			eng := compute.NewEngine(compute.WithBudget(c.budget))
			r, err := eng.Rewrite(ctx, compute.MustParse(c.e), c.rules)
			if err == nil {
				t.Fatalf("rewrite finished with %s", r)
			}
			if r != nil {
				t.Errorf("failed rewrite returned %s", r)
			}
			if !errors.Is(err, compute.ErrBudget) {
				t.Errorf("error %v is not ErrBudget", err)
			}
			var be *compute.BudgetError
			if !errors.As(err, &be) {
				t.Fatalf("error %#v is not a BudgetError", err)
			}
			if be.Limit != c.limit {
				t.Errorf("exhausted %q, want %q", be.Limit, c.limit)
			}
		})
	}
}

func TestApplyRules(t *testing.T) {
	ctx := context.Background()
	eng := compute.NewEngine()
	st, err := eng.ApplyRules(ctx, compute.MustParse("Sin(-x)"), eng.Rules())
	if err != nil {
		t.Fatal(err)
	}
	if st == nil {
		t.Fatal("no rule applied")
	}
	if want := canon("-Sin(x)"); !compute.Equal(st.Value, want) {
		t.Errorf("got %s, want %s", st.Value, want)
	}
	// Only the root is rewritten.
	st, err = eng.ApplyRules(ctx, compute.MustParse("F(Sin(-x))"), eng.Rules())
	if err != nil || st != nil {
		t.Errorf("rules applied below the root: %v, %v", st, err)
	}
}

func TestSessionSimplify(t *testing.T) {
	// Box simplifies its operand with the engine's rules, not the rule set
	// being applied.
	box := compute.NewProcRule(pat("Box(_x)"), func(e *compute.Expr, b compute.Bindings, s *compute.Session) *compute.Expr {
		return s.Simplify(b.Get("x"))
	}, compute.Because("unbox"))
	eng := compute.NewEngine()
	r, steps, err := eng.RewriteSteps(context.Background(), compute.MustParse("Box(Sin(x)^2 + Cos(x)^2)"), compute.NewRuleSet(box))
	if err != nil {
		t.Fatal(err)
	}
	if !compute.Equal(r, compute.Int(1)) {
		t.Errorf("got %s, want 1", r)
	}
	if len(steps) != 1 || steps[0].Because != "unbox" {
		t.Errorf("wrong steps %v", steps)
	}
}

func TestSessionTighten(t *testing.T) {
	var inner error
	probe := compute.RuleFunc("probe", func(e *compute.Expr, s *compute.Session) *compute.RewriteStep {
		if !e.IsSymbol("P") {
			return nil
		}
		restore := s.Tighten(compute.Budget{MaxIterations: 1})
		r := s.Simplify(compute.Sym("A"))
		restore()
		if !r.IsSymbol("A") {
			inner = errors.New("inner simplification was not abandoned: " + r.String())
		}
		return &compute.RewriteStep{Value: r}
	})
	eng := compute.NewEngine(compute.WithRules(compute.NewRuleSet(
		compute.MustRule("A -> B"),
		compute.MustRule("B -> A"),
	)))
	_, err := eng.Rewrite(context.Background(), compute.Sym("P"), compute.NewRuleSet(probe))
	if !errors.Is(err, compute.ErrBudget) {
		t.Errorf("exhausting the tightened budget gave %v", err)
	}
	if inner != nil {
		t.Error(inner)
	}
}

func TestEvaluate(t *testing.T) {
	eng := compute.NewEngine()
	if err := eng.Scope().Assign("x", compute.Int(2)); err != nil {
		t.Fatal(err)
	}
	r, err := eng.Evaluate(context.Background(), compute.MustParse("x^2 + y + Sin(-y)"))
	if err != nil {
		t.Fatal(err)
	}
	if want := canon("4 + y - Sin(y)"); !compute.Equal(r, want) {
		t.Errorf("got %s, want %s", r, want)
	}
	if err := eng.Scope().Assign(compute.SymPi, compute.Int(3)); err == nil {
		t.Error("assigned a value to Pi")
	}
}

func TestParseRule(t *testing.T) {
	r, err := compute.ParseRule("Sin(_x)^2 + Cos(_x)^2 -> 1")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := r.Match.String(), `["Add",["Power",["Cos","_x"],2],["Power",["Sin","_x"],2]]`; got != want {
		t.Errorf("pattern: got %s, want %s", got, want)
	}
	if r.Because != "Sin(_x)^2 + Cos(_x)^2 -> 1" {
		t.Errorf("default label %q", r.Because)
	}
	r, err = compute.ParseRule("F(_x, 0) -> _x", compute.Verbatim(), compute.Because("drop zero"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := r.Match.String(), `["F","_x",0]`; got != want || r.Because != "drop zero" {
		t.Errorf("verbatim rule: got %s %q", got, r.Because)
	}

	bad := []string{"F(_x)", "F(_x -> _x", "F(_x) -> ", "F(_x) -> G(_y"}
	for _, src := range bad {
		_, err := compute.ParseRule(src)
		var rse *compute.RuleSyntaxError
		if !errors.As(err, &rse) {
			t.Errorf("%q gave %#v, not a RuleSyntaxError", src, err)
		}
	}
	defer func() {
		if recover() == nil {
			t.Error("MustRule didn't panic")
		}
	}()
	compute.MustRule("no arrow")
}

func TestReadRules(t *testing.T) {
	src := `# trigonometry
Sin(_x)^2 + Cos(_x)^2 -> 1

F(_x) -> _x
`
	rs, err := compute.ReadRules(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 2 {
		t.Fatalf("read %d rules, want 2", len(rs))
	}
	r, err := compute.NewEngine().Rewrite(context.Background(), compute.MustParse("F(Sin(y)^2 + Cos(y)^2)"), rs)
	if err != nil {
		t.Fatal(err)
	}
	if !compute.Equal(r, compute.Int(1)) {
		t.Errorf("got %s, want 1", r)
	}

	_, err = compute.ReadRules(strings.NewReader("A -> B\nC ->\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("bad rule gave %v", err)
	}
}

func TestRuleSet(t *testing.T) {
	a, b := compute.MustRule("A -> B"), compute.MustRule("B -> C")
	rs := compute.NewRuleSet(a)
	more := rs.With(b)
	if len(rs) != 1 || len(more) != 2 || more[0] != a || more[1] != b {
		t.Errorf("With modified the set: %d, %d", len(rs), len(more))
	}
	std := compute.StandardRules()
	std[0] = nil
	if compute.StandardRules()[0] == nil {
		t.Error("StandardRules returned a shared slice")
	}
}
