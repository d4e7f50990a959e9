package compute_test

import (
	"context"
	"testing"

	"github.com/cortex-js/compute-engine-sub005"
)

// canon parses and canonicalizes src.
func canon(src string) *compute.Expr {
	return compute.Canonicalize(compute.MustParse(src))
}

func TestFactor(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"content", "2 x + 4", `["Multiply",2,["Add","x",2]]`},
		{"negative-content", "-3 x - 6", `["Negate",["Multiply",3,["Add","x",2]]]`},
		{"common-factor", "x^2 + x", `["Multiply","x",["Add","x",1]]`},
		{"difference-of-squares", "x^2 - 1", `["Multiply",["Add","x",-1],["Add","x",1]]`},
		{"irreducible", "x + 1", `["Add","x",1]`},
		{"not-a-sum", "2 x", `["Multiply",2,"x"]`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := compute.Factor(compute.MustParse(c.src))
			if got := r.String(); got != c.want {
				t.Errorf("Factor(%s): got %s, want %s", c.src, got, c.want)
			}
			if e := compute.Expand(r); !compute.Equal(e, compute.Expand(canon(c.src))) {
				t.Errorf("Factor(%s) = %s expands to %s", c.src, r, e)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"2 (x + 1)", "2 x + 2"},
		{"(x + 1)^2", "x^2 + 2 x + 1"},
		{"(x + 1)^3", "x^3 + 3 x^2 + 3 x + 1"},
		{"(x + 1) (x - 1)", "x^2 - 1"},
		{"(a + b) (c + d)", "a c + a d + b c + b d"},
		{"-(x + 1)", "-x - 1"},
		{"x (y + Sin(x + 1)^2)", "x y + x Sin(x + 1)^2"},
		{"(x + 1)^-1", "(x + 1)^-1"},
		{"(x + 1)^y", "(x + 1)^y"},
	}
	for _, c := range cases {
		r := compute.Expand(compute.MustParse(c.src))
		if want := canon(c.want); !compute.Equal(r, want) {
			t.Errorf("Expand(%s): got %s, want %s", c.src, r, want)
		}
	}
}

func TestD(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x^2", "2 x"},
		{"x^3 + 2 x", "3 x^2 + 2"},
		{"y", "0"},
		{"3", "0"},
		{"Sin(x)", "Cos(x)"},
		{"Cos(2 x)", "-2 Sin(2 x)"},
		{"Exp(x)", "e^x"},
		{"2^x", "2^x Ln(2)"},
		{"Ln(x)", "x^-1"},
		{"x Sin(x)", "Sin(x) + x Cos(x)"},
		{"x y", "y"},
		{"F(x)", "D(F(x), x)"},
	}
	for _, c := range cases {
		r := compute.D(compute.MustParse(c.src), "x")
		if want := canon(c.want); !compute.Equal(r, want) {
			t.Errorf("D(%s): got %s, want %s", c.src, r, want)
		}
	}
}

func TestIntegrate(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"3", "3 x"},
		{"y", "x y"},
		{"x", "x^2 / 2"},
		{"x^2", "x^3 / 3"},
		{"x^-1", "Ln(Abs(x))"},
		{"Cos(x)", "Sin(x)"},
		{"Sin(2 x)", "-Cos(2 x) / 2"},
		{"Exp(x)", "e^x"},
		{"x + 1", "x^2/2 + x"},
		{"F(x)", "Integrate(F(x), x)"},
	}
	for _, c := range cases {
		r := compute.Integrate(compute.MustParse(c.src), "x")
		if want := canon(c.want); !compute.Equal(r, want) {
			t.Errorf("Integrate(%s): got %s, want %s", c.src, r, want)
		}
	}
}

func TestIntegrateDifferentiates(t *testing.T) {
	srcs := []string{"x^4", "3 x^2 + 2 x + 1", "Cos(x)", "Sinh(x)", "e^(3 x)"}
	for _, src := range srcs {
		prim := compute.Integrate(compute.MustParse(src), "x")
		if got, want := compute.Expand(compute.D(prim, "x")), compute.Expand(canon(src)); !compute.Equal(got, want) {
			t.Errorf("D(Integrate(%s)) = D(%s) = %s", src, prim, got)
		}
	}
}

func TestEngineCalculus(t *testing.T) {
	eng := compute.NewEngine()
	ctx := context.Background()
	r, err := eng.D(ctx, compute.MustParse("Sin(x)^2 + Cos(x)^2"), "x")
	if err != nil {
		t.Fatal(err)
	}
	if !compute.Equal(r, compute.Int(0)) {
		t.Errorf("derivative of the Pythagorean identity is %s", r)
	}
	r, err = eng.Integrate(ctx, compute.MustParse("2 x"), "x")
	if err != nil {
		t.Fatal(err)
	}
	if want := canon("x^2"); !compute.Equal(r, want) {
		t.Errorf("Integrate(2 x): got %s, want %s", r, want)
	}
	if r := eng.Factor(compute.MustParse("2 x + 4")); r.String() != `["Multiply",2,["Add","x",2]]` {
		t.Errorf("engine Factor gave %s", r)
	}
	if r := eng.Expand(compute.MustParse("2 (x + 2)")); !compute.Equal(r, canon("2 x + 4")) {
		t.Errorf("engine Expand gave %s", r)
	}
}

func TestSymbols(t *testing.T) {
	e := compute.MustParse("F(x, y^2) + Pi z")
	s := compute.Symbols(e)
	for _, name := range []string{"x", "y", "z", compute.SymPi} {
		if !s.Contains(name) {
			t.Errorf("Symbols missing %s", name)
		}
	}
	if s.Contains("F") || s.Size() != 4 {
		t.Errorf("wrong symbols %v", s.Slice())
	}
	if !compute.DependsOn(e, "q", "z") || compute.DependsOn(e, "q") || compute.DependsOn(e) {
		t.Error("wrong DependsOn")
	}
}
