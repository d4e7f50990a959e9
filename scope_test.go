package compute_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cortex-js/compute-engine-sub005"
)

func TestScopePushPop(t *testing.T) {
	s := compute.NewScope(nil)
	if err := s.Assign("x", compute.Int(1)); err != nil {
		t.Fatal(err)
	}
	s.Push()
	if s.Depth() != 2 {
		t.Errorf("depth %d after Push", s.Depth())
	}
	if d := s.LookupSymbol("x"); d == nil || !compute.Equal(d.Value, compute.Int(1)) {
		t.Errorf("inner scope does not see x: %v", d)
	}
	if err := s.Assign("x", compute.Int(2)); err != nil {
		t.Fatal(err)
	}
	s.DefineFunction(&compute.FunctionDef{Name: "F", Commutative: true})
	s.Assume(compute.MustParse("y > 0"))
	s.Pop()
	if d := s.LookupSymbol("x"); d == nil || !compute.Equal(d.Value, compute.Int(1)) {
		t.Errorf("Pop did not restore x: %v", d)
	}
	if s.LookupFunction("F") != nil {
		t.Error("F is defined after Pop")
	}
	if len(s.Facts()) != 0 {
		t.Errorf("facts after Pop: %v", s.Facts())
	}
	defer func() {
		if recover() == nil {
			t.Error("Pop on the outermost scope did not panic")
		}
	}()
	s.Pop()
}

func TestScopeConstants(t *testing.T) {
	s := compute.NewScope(nil)
	for _, name := range []string{compute.SymPi, compute.SymE, compute.SymTrue} {
		err := s.Define(&compute.SymbolDef{Name: name})
		var ce *compute.ConstantError
		if !errors.As(err, &ce) || ce.Name != name {
			t.Errorf("redefining %s gave %v", name, err)
		}
	}
	if err := s.Define(&compute.SymbolDef{Name: "k", Constant: true, Value: compute.Int(3)}); err != nil {
		t.Fatal(err)
	}
	if err := s.Assign("k", compute.Int(4)); err == nil {
		t.Error("assigned to a constant")
	}
}

func TestScopeBudget(t *testing.T) {
	s := compute.NewScope(nil)
	if s.Budget() != compute.DefaultBudget {
		t.Errorf("default budget %+v", s.Budget())
	}
	s.SetBudget(compute.Budget{MaxIterations: 50, MaxDepth: 10})
	s.Push()
	s.SetBudget(compute.Budget{MaxIterations: 1000, MaxDepth: 5, Timeout: time.Second})
	want := compute.Budget{MaxIterations: 50, MaxDepth: 5, Timeout: time.Second}
	if s.Budget() != want {
		t.Errorf("inner budget %+v, want %+v", s.Budget(), want)
	}
	s.Pop()
	if got := s.Budget(); got.MaxIterations != 50 || got.MaxDepth != 10 || got.Timeout != 0 {
		t.Errorf("outer budget changed to %+v", got)
	}
}

func TestBudgetTighten(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		a, b compute.Budget
		want compute.Budget
	}{
		{"unlimited", compute.Budget{}, compute.Budget{}, compute.Budget{}},
		{"fills", compute.Budget{}, compute.Budget{MaxIterations: 3}, compute.Budget{MaxIterations: 3}},
		{"keeps", compute.Budget{MaxDepth: 3}, compute.Budget{}, compute.Budget{MaxDepth: 3}},
		{"min", compute.Budget{MaxDepth: 3, MaxIterations: 5}, compute.Budget{MaxDepth: 4, MaxIterations: 2}, compute.Budget{MaxDepth: 3, MaxIterations: 2}},
		{"deadline", compute.Budget{Deadline: now.Add(time.Hour)}, compute.Budget{Deadline: now}, compute.Budget{Deadline: now}},
		{"timeout", compute.Budget{Timeout: time.Second}, compute.Budget{Timeout: time.Minute}, compute.Budget{Timeout: time.Second}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Tighten(c.b); got != c.want {
				t.Errorf("got %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestScopePrec(t *testing.T) {
	eng := compute.NewEngine()
	s := eng.Scope()
	outer := s.Prec()
	s.Push()
	s.SetPrec(300)
	r, err := eng.NValue(compute.MustParse("pi"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Prec() != 300 {
		t.Errorf("precision %d in inner scope", r.Prec())
	}
	s.Pop()
	if s.Prec() != outer {
		t.Errorf("Pop left precision %d, want %d", s.Prec(), outer)
	}
}

func TestScopeClone(t *testing.T) {
	eng := compute.NewEngine()
	c := eng.Clone()
	if err := c.Scope().Assign("x", compute.Int(5)); err != nil {
		t.Fatal(err)
	}
	c.Assume(compute.MustParse("y > 0"))
	if eng.Scope().LookupSymbol("x") != nil {
		t.Error("clone's assignment is visible in the original")
	}
	if eng.Is(compute.MustParse("y > 0")) != compute.TruthUnknown {
		t.Error("clone's assumption is visible in the original")
	}
	if c.Is(compute.MustParse("y > 0")) != compute.TruthTrue {
		t.Error("clone lost its own assumption")
	}
}

func TestAssumptions(t *testing.T) {
	eng := compute.NewEngine()
	fact := compute.MustParse("x > 2")
	eng.Assume(fact)
	cases := []struct {
		prop string
		want compute.Truth
	}{
		{"x > 0", compute.TruthTrue},
		{"x >= 0", compute.TruthTrue},
		{"x < 0", compute.TruthFalse},
		{"x = 0", compute.TruthFalse},
		{"x != 0", compute.TruthTrue},
		{"0 < x", compute.TruthTrue},
		{"-x < 0", compute.TruthTrue},
		{"x > 2", compute.TruthTrue},
		{"x > 3", compute.TruthUnknown},
		{"y > 0", compute.TruthUnknown},
		{"x^2 > 0", compute.TruthTrue},
		{"2 x + 1 > 0", compute.TruthTrue},
		{"Element(x, RealNumbers)", compute.TruthTrue},
		{"Element(x, Integers)", compute.TruthUnknown},
		{"Element(3, Integers)", compute.TruthTrue},
		{"Element(1/2, Integers)", compute.TruthFalse},
		{"And(x > 0, x != 0)", compute.TruthTrue},
		{"And(x > 0, y > 0)", compute.TruthUnknown},
		{"Or(x < 0, y > 0)", compute.TruthUnknown},
		{"Or(x > 0, y > 0)", compute.TruthTrue},
		{"Not(x < 0)", compute.TruthTrue},
		{"True", compute.TruthTrue},
	}
	for _, c := range cases {
		t.Run(c.prop, func(t *testing.T) {
			if got := eng.Is(compute.MustParse(c.prop)); got != c.want {
				t.Errorf("Is(%s) = %v, want %v", c.prop, got, c.want)
			}
		})
	}

	ctx := context.Background()
	for src, want := range map[string]string{"Abs(x)": "x", "Sign(x)": "1", "Abs(-x)": "x", "Sign(-x)": "-1"} {
		r, err := eng.Simplify(ctx, compute.MustParse(src))
		if err != nil {
			t.Fatal(err)
		}
		if w := canon(want); !compute.Equal(r, w) {
			t.Errorf("under x > 2, %s simplified to %s, want %s", src, r, w)
		}
	}

	eng.Forget(fact)
	if got := eng.Is(compute.MustParse("x > 0")); got != compute.TruthUnknown {
		t.Errorf("after Forget, Is(x > 0) = %v", got)
	}
	r, err := eng.Simplify(ctx, compute.MustParse("Abs(x)"))
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != `["Abs","x"]` {
		t.Errorf("after Forget, Abs(x) simplified to %s", got)
	}
}

func TestAssumeDomain(t *testing.T) {
	eng := compute.NewEngine()
	eng.Assume(compute.MustParse("Element(n, Integers)"))
	if d := eng.Scope().Domain("n"); d != compute.DomainInteger {
		t.Errorf("domain of n is %v", d)
	}
	if eng.Is(compute.MustParse("Element(n, RealNumbers)")) != compute.TruthTrue {
		t.Error("an integer is not known to be real")
	}
	eng.Assume(compute.MustParse("Element(y, RealNumbers)"))
	r, err := eng.Simplify(context.Background(), compute.MustParse("Ln(e^y)"))
	if err != nil {
		t.Fatal(err)
	}
	if !compute.Equal(r, compute.Sym("y")) {
		t.Errorf("Ln(e^y) for real y simplified to %s", r)
	}
	r, err = eng.Simplify(context.Background(), compute.MustParse("Sqrt(y^2)"))
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != `["Abs","y"]` {
		t.Errorf("Sqrt(y^2) for real y simplified to %s", got)
	}
}
