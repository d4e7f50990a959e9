package compute_test

import (
	"testing"

	"golang.org/x/exp/slices"

	"github.com/cortex-js/compute-engine-sub005"
)

func pat(src string) *compute.Pattern {
	return compute.Compile(compute.MustParse(src, compute.Wildcards()))
}

func seq(args ...*compute.Expr) *compute.Expr {
	return compute.Call(compute.OpSequence, args...)
}

func TestMatch(t *testing.T) {
	x, y := compute.Sym("x"), compute.Sym("y")
	one, two, three := compute.Int(1), compute.Int(2), compute.Int(3)
	cases := []struct {
		name string
		subj *compute.Expr
		pat  *compute.Pattern
		opts []compute.MatchOption
		want compute.Bindings // nil means no match
	}{
		{
			name: "add",
			subj: compute.Call(compute.OpAdd, two, three),
			pat:  pat("Add(_a, _b)"),
			want: compute.Bindings{"a": two, "b": three},
		},
		{
			name: "literal",
			subj: compute.Call(compute.OpSin, x),
			pat:  pat("Sin(x)"),
			want: compute.Bindings{},
		},
		{
			name: "literal-mismatch",
			subj: compute.Call(compute.OpSin, y),
			pat:  pat("Sin(x)"),
		},
		{
			name: "operator-mismatch",
			subj: compute.Call(compute.OpCos, x),
			pat:  pat("Sin(_x)"),
		},
		{
			name: "arity-mismatch",
			subj: compute.Call("F", x, y),
			pat:  pat("F(_x)"),
		},
		{
			name: "repeated",
			subj: compute.Call("F", x, x),
			pat:  pat("F(_x, _x)"),
			want: compute.Bindings{"x": x},
		},
		{
			name: "repeated-conflict",
			subj: compute.Call("F", x, y),
			pat:  pat("F(_x, _x)"),
		},
		{
			name: "anonymous",
			subj: compute.Call("F", x, y),
			pat:  pat("F(_, _)"),
			want: compute.Bindings{},
		},
		{
			name: "nested",
			subj: compute.Call(compute.OpPower, compute.Call(compute.OpSin, x), two),
			pat:  pat("Power(Sin(_u), _n)"),
			want: compute.Bindings{"u": x, "n": two},
		},
		{
			name: "seq-prefix",
			subj: compute.Call("F", one, two, three),
			pat:  pat("F(__a, 3)"),
			want: compute.Bindings{"a": seq(one, two)},
		},
		{
			name: "seq-all",
			subj: compute.Call("F", one, two, three),
			pat:  pat("F(__a)"),
			want: compute.Bindings{"a": seq(one, two, three)},
		},
		{
			name: "seq-needs-one",
			subj: compute.Call("F", one),
			pat:  pat("F(__a, 1)"),
		},
		{
			name: "optseq-empty",
			subj: compute.Call("F", one),
			pat:  pat("F(___a, 1)"),
			want: compute.Bindings{"a": seq()},
		},
		{
			name: "optseq-middle",
			subj: compute.Call("F", one, two, three),
			pat:  pat("F(_a, ___m, _z)"),
			want: compute.Bindings{"a": one, "m": seq(two), "z": three},
		},
		{
			name: "seq-first-match",
			subj: compute.Call("F", one, x, two, x),
			pat:  pat("F(__a, x, ___b)"),
			want: compute.Bindings{"a": seq(one), "b": seq(two, x)},
		},
		{
			name: "commutative",
			subj: compute.Call(compute.OpAdd,
				compute.Call(compute.OpPower, compute.Call(compute.OpSin, y), two),
				compute.Call(compute.OpPower, compute.Call(compute.OpCos, y), two)),
			pat:  pat("Add(Cos(_x)^2, Sin(_x)^2)"),
			opts: []compute.MatchOption{compute.MatchDefinitions(compute.StandardDefinitions())},
			want: compute.Bindings{"x": y},
		},
		{
			name: "commutative-rest",
			subj: compute.Call(compute.OpMultiply, two, x, y),
			pat:  pat("Multiply(y, ___r)"),
			opts: []compute.MatchOption{compute.MatchDefinitions(compute.StandardDefinitions())},
			want: compute.Bindings{"r": seq(two, x)},
		},
		{
			name: "positional-default",
			subj: compute.Call(compute.OpAdd, x, one),
			pat:  pat("Add(1, _x)"),
		},
		{
			name: "commutative-off",
			subj: compute.Call(compute.OpAdd, x, one),
			pat:  pat("Add(1, _x)"),
			opts: []compute.MatchOption{compute.MatchDefinitions(nil)},
		},
		{
			name: "not-commutative",
			subj: compute.Call("F", two, one),
			pat:  pat("F(1, _x)"),
		},
		{
			name: "tolerance",
			subj: compute.Float(1 + 1e-12),
			pat:  compute.Literal(compute.Int(1)),
			want: compute.Bindings{},
		},
		{
			name: "no-tolerance",
			subj: compute.Float(1 + 1e-12),
			pat:  compute.Literal(compute.Int(1)),
			opts: []compute.MatchOption{compute.MatchTolerance(0)},
		},
		{
			name: "exact-inexact",
			subj: compute.Float(0.5),
			pat:  compute.Literal(compute.Rat(1, 2)),
			opts: []compute.MatchOption{compute.MatchTolerance(0)},
			want: compute.Bindings{},
		},
		{
			name: "literal-symbol",
			subj: compute.Sym("_x"),
			pat:  compute.Literal(compute.Sym("_x")),
			want: compute.Bindings{},
		},
		{
			name: "tagged",
			subj: x,
			pat:  compute.Literal(compute.TaggedSym("x", "t")),
		},
		{
			name: "string",
			subj: compute.Str("a"),
			pat:  compute.Literal(compute.Str("a")),
			want: compute.Bindings{},
		},
		{
			name: "operator-wildcard",
			subj: compute.Call(compute.OpSin, y),
			pat:  pat("_f(_x)"),
			want: compute.Bindings{"f": compute.Sym(compute.OpSin), "x": y},
		},
		{
			name: "operator-wildcard-built",
			subj: compute.Call(compute.OpSin, y),
			pat:  compute.PApply(compute.W("f"), compute.W("x")),
			want: compute.Bindings{"f": compute.Sym(compute.OpSin), "x": y},
		},
		{
			name: "built",
			subj: compute.Call(compute.OpAdd, x, one, two),
			pat:  compute.PCall(compute.OpAdd, compute.W("a"), compute.Seq("r")),
			want: compute.Bindings{"a": x, "r": seq(one, two)},
		},
		{
			name: "dict",
			subj: compute.Dict(map[string]*compute.Expr{"k": one, "v": x}),
			pat:  compute.Compile(compute.Dict(map[string]*compute.Expr{"k": compute.Sym("_a"), "v": x})),
			want: compute.Bindings{"a": one},
		},
		{
			name: "dict-keys",
			subj: compute.Dict(map[string]*compute.Expr{"k": one, "w": x}),
			pat:  compute.Compile(compute.Dict(map[string]*compute.Expr{"k": compute.Sym("_a"), "v": x})),
		},
		{
			name: "seeded",
			subj: compute.Call("F", one, two),
			pat:  pat("F(_a, _b)"),
			opts: []compute.MatchOption{compute.MatchBindings(compute.Bindings{"a": one})},
			want: compute.Bindings{"a": one, "b": two},
		},
		{
			name: "seeded-literal-mismatch",
			subj: y,
			pat:  compute.Literal(x),
			opts: []compute.MatchOption{compute.MatchBindings(compute.Bindings{"a": one})},
		},
		{
			name: "seeded-nested-literal-mismatch",
			subj: compute.Call("F", one, y),
			pat:  pat("F(_a, x)"),
			opts: []compute.MatchOption{compute.MatchBindings(compute.Bindings{"a": one})},
		},
		{
			name: "seeded-conflict",
			subj: compute.Call("F", one, two),
			pat:  pat("F(_a, _b)"),
			opts: []compute.MatchOption{compute.MatchBindings(compute.Bindings{"b": one})},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, ok := compute.Match(c.subj, c.pat, c.opts...)
			if c.want == nil {
				if ok {
					t.Fatalf("%s matched %s with bindings %v", c.pat, c.subj, b)
				}
				if b != nil {
					t.Errorf("failed match gave non-nil bindings %v", b)
				}
				return
			}
			if !ok {
				t.Fatalf("%s did not match %s", c.pat, c.subj)
			}
			if b == nil {
				t.Fatal("successful match gave nil bindings")
			}
			if !slices.Equal(b.Names(), c.want.Names()) {
				t.Errorf("bound %v, want %v", b.Names(), c.want.Names())
			}
			for k, v := range c.want {
				if got := b.Get(k); got == nil || !compute.Equal(got, v) {
					t.Errorf("%s bound to %v, want %s", k, got, v)
				}
			}
		})
	}
}

func TestMatchDoesNotModifySeed(t *testing.T) {
	seed := compute.Bindings{"a": compute.Int(1)}
	b, ok := compute.Match(compute.Call("F", compute.Int(1), compute.Int(2)), pat("F(_a, _b)"), compute.MatchBindings(seed))
	if !ok {
		t.Fatal("no match")
	}
	if len(seed) != 1 {
		t.Errorf("seed modified: %v", seed)
	}
	if len(b) != 2 {
		t.Errorf("wrong bindings %v", b)
	}
}

// TestMatchSubstituteInverse checks that substituting the bindings of a
// successful match into the pattern reproduces the subject. A pattern whose
// operands are out of order must not match by default.
func TestMatchSubstituteInverse(t *testing.T) {
	cases := []struct {
		subj  string
		pat   string
		match bool
	}{
		{"Add(2, 3)", "Add(_a, _b)", true},
		{"F(1, 2, 3, 4)", "F(_a, __m, _z)", true},
		{"F(1)", "F(___a, 1)", true},
		{"Sin(x)^2", "_f(Sin(_x), _n)", true},
		{"G(x, F(y, y))", "G(_a, F(_b, _b))", true},
		{"Multiply(2, x, y)", "Multiply(2, ___r)", true},
		{"Add(x, Sin(y))", "Add(_b, Sin(_a))", true},
		{"Add(x, Sin(y))", "Add(Sin(_a), _b)", false},
		{"Multiply(x, 2)", "Multiply(2, _r)", false},
	}
	for _, c := range cases {
		subj, p := compute.MustParse(c.subj), pat(c.pat)
		b, ok := compute.Match(subj, p)
		if ok != c.match {
			t.Errorf("matching %s against %s gave %v", p, subj, ok)
			continue
		}
		if !ok {
			continue
		}
		if r := compute.Substitute(p, b); !compute.Equal(r, subj) {
			t.Errorf("%s with %v gave %s, want %s", p, b, r, subj)
		}
	}
}

func TestSubstitute(t *testing.T) {
	x := compute.Sym("x")
	cases := []struct {
		name string
		tmpl string
		b    compute.Bindings
		want string
	}{
		{"single", "F(_x, _x)", compute.Bindings{"x": x}, `["F","x","x"]`},
		{"splice", "F(__a, 0)", compute.Bindings{"a": seq(compute.Int(1), compute.Int(2))}, `["F",1,2,0]`},
		{"splice-empty", "F(___a, 0)", compute.Bindings{"a": seq()}, `["F",0]`},
		{"unbound", "F(_y)", compute.Bindings{"x": x}, `["F","_y"]`},
		{"unbound-seq", "F(__r)", compute.Bindings{}, `["F","__r"]`},
		{"operator", "_f(_x)", compute.Bindings{"f": compute.Sym("G"), "x": x}, `["G","x"]`},
		{"not-canonical", "Add(_x, 0)", compute.Bindings{"x": x}, `["Add","x",0]`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := compute.Substitute(pat(c.tmpl), c.b)
			if got := r.String(); got != c.want {
				t.Errorf("got %s, want %s", got, c.want)
			}
		})
	}
}

func TestPattern(t *testing.T) {
	p := pat("F(_a, __b, ___c, _, G(_a))")
	if got, want := p.Wildcards(), []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("wildcards: got %v, want %v", got, want)
	}
	if got, want := p.String(), `["F","_a","__b","___c","_",["G","_a"]]`; got != want {
		t.Errorf("string: got %s, want %s", got, want)
	}
	q := compute.Compile(p.Expr())
	if got := q.String(); got != p.String() {
		t.Errorf("recompiled pattern %s differs from %s", got, p)
	}
	if got := compute.Literal(compute.Sym("_a")).Wildcards(); len(got) != 0 {
		t.Errorf("literal pattern has wildcards %v", got)
	}
	if got := compute.Bindings(nil).Get("_x"); got != nil {
		t.Errorf("empty bindings gave %v", got)
	}
}

func TestCompare(t *testing.T) {
	exprs := []*compute.Expr{
		compute.Int(-1),
		compute.Int(0),
		compute.Rat(1, 2),
		compute.Float(0.5),
		compute.Int(2),
		compute.Float(3.25),
		compute.Sym(compute.SymPi),
		compute.Sym(compute.SymE),
		compute.Sym("a"),
		compute.Sym("x"),
		compute.TaggedSym("x", "1"),
		compute.Str("x"),
		compute.Call(compute.OpAdd, compute.Sym("x"), compute.Int(1)),
		compute.Call(compute.OpAdd, compute.Sym("x"), compute.Int(2)),
		compute.Call(compute.OpAdd, compute.Sym("x"), compute.Int(1), compute.Int(1)),
		compute.Call(compute.OpSin, compute.Sym("x")),
		compute.Call("F"),
		compute.Dict(map[string]*compute.Expr{"a": compute.Int(1)}),
		compute.Dict(map[string]*compute.Expr{"b": compute.Int(1)}),
	}
	sign := func(n int) int {
		switch {
		case n < 0:
			return -1
		case n > 0:
			return 1
		}
		return 0
	}
	for i, a := range exprs {
		for j, b := range exprs {
			ab, ba := sign(compute.Compare(a, b)), sign(compute.Compare(b, a))
			if ab != -ba {
				t.Errorf("Compare(%s, %s) = %d but Compare(%s, %s) = %d", a, b, ab, b, a, ba)
			}
			if (ab == 0) != (i == j) {
				t.Errorf("Compare(%s, %s) = %d", a, b, ab)
			}
			for _, c := range exprs {
				if ab < 0 && sign(compute.Compare(b, c)) < 0 && compute.Compare(a, c) >= 0 {
					t.Errorf("%s < %s < %s but not %s < %s", a, b, c, a, c)
				}
			}
		}
	}
	if compute.Compare(compute.Rat(1, 2), compute.Float(0.5)) >= 0 {
		t.Error("exact number does not order before the equal inexact one")
	}
	if compute.Compare(compute.Sym(compute.SymPi), compute.Sym("a")) >= 0 {
		t.Error("constant does not order before a variable")
	}
}
