package compute_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/cortex-js/compute-engine-sub005"
)

// randExpr builds a random expression in x and y whose numeric value is
// defined for all real x and y. Divisors are of the form 1 + u^2 and square
// roots take an absolute value.
func randExpr(r *rand.Rand, depth int) *compute.Expr {
	if depth == 0 || r.Intn(4) == 0 {
		switch r.Intn(7) {
		case 0:
			return compute.Int(int64(r.Intn(7) - 3))
		case 1:
			return compute.Rat(int64(r.Intn(9)-4), int64(r.Intn(4)+2))
		case 2:
			return compute.Float(float64(r.Intn(17)-8) / 4)
		case 3:
			return compute.Sym(compute.SymPi)
		case 4, 5:
			return compute.Sym("x")
		default:
			return compute.Sym("y")
		}
	}
	switch r.Intn(9) {
	case 0, 1:
		return compute.Call(compute.OpAdd, randExpr(r, depth-1), randExpr(r, depth-1), randExpr(r, depth-1))
	case 2:
		return compute.Call(compute.OpMultiply, randExpr(r, depth-1), randExpr(r, depth-1))
	case 3:
		return compute.Call(compute.OpSubtract, randExpr(r, depth-1), randExpr(r, depth-1))
	case 4:
		return compute.Call(compute.OpPower, randExpr(r, depth-1), compute.Int(int64(r.Intn(3)+1)))
	case 5:
		d := compute.Call(compute.OpAdd, compute.Int(1), compute.Call(compute.OpPower, randExpr(r, depth-1), compute.Int(2)))
		return compute.Call(compute.OpDivide, randExpr(r, depth-1), d)
	case 6:
		return compute.Call(compute.OpSqrt, compute.Call(compute.OpAbs, randExpr(r, depth-1)))
	default:
		ops := []string{compute.OpSin, compute.OpCos, compute.OpNegate, compute.OpAbs}
		return compute.Call(ops[r.Intn(len(ops))], randExpr(r, depth-1))
	}
}

func TestCanonicalProperties(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	eng := compute.NewEngine(compute.Prec(128))
	if err := eng.Scope().Assign("x", compute.Rat(3, 7)); err != nil {
		t.Fatal(err)
	}
	if err := eng.Scope().Assign("y", compute.Float(-1.25)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 300; i++ {
		e := randExpr(r, 3)
		c := compute.Canonicalize(e)
		if cc := compute.Canonicalize(c); !compute.Equal(c, cc) {
			t.Errorf("%s: canonical form %s canonicalizes to %s", e, c, cc)
		}
		if _, ok := compute.Match(c, compute.Literal(c)); !ok {
			t.Errorf("%s does not match itself", c)
		}
		a, err := eng.NValue(e)
		if err != nil {
			t.Errorf("N(%s): %v", e, err)
			continue
		}
		x := compute.Expand(c)
		b, err := eng.NValue(x)
		if err != nil {
			t.Errorf("N(%s): %v", x, err)
			continue
		}
		fa, _ := a.Float64()
		fb, _ := b.Float64()
		if math.Abs(fa-fb) > 1e-9*math.Max(1, math.Abs(fa)) {
			t.Errorf("%s = %g but its expansion %s = %g", e, fa, x, fb)
		}
	}
}

func TestRewriteProperties(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	eng := compute.NewEngine()
	ctx := context.Background()
	for i := 0; i < 200; i++ {
		e := compute.Canonicalize(randExpr(r, 3))
		s, err := eng.Simplify(ctx, e)
		if err != nil {
			t.Errorf("Simplify(%s): %v", e, err)
			continue
		}
		if eng.Cost(s) > eng.Cost(e) {
			t.Errorf("%s (cost %d) simplified to %s (cost %d)", e, eng.Cost(e), s, eng.Cost(s))
		}
		if ss, err := eng.Simplify(ctx, s); err != nil || !compute.Equal(s, ss) {
			t.Errorf("%s simplified to %s, which simplifies again to %v, %v", e, s, ss, err)
		}
	}
}

func TestCompareProperties(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	exprs := make([]*compute.Expr, 60)
	for i := range exprs {
		exprs[i] = compute.Canonicalize(randExpr(r, 2))
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
	for _, a := range exprs {
		for _, b := range exprs {
			ab, ba := compute.Compare(a, b), compute.Compare(b, a)
			if sign(ab) != -sign(ba) {
				t.Errorf("Compare(%s, %s) = %d but reversed is %d", a, b, ab, ba)
			}
			if (ab == 0) != compute.Equal(a, b) {
				t.Errorf("Compare(%s, %s) = %d disagrees with Equal", a, b, ab)
			}
		}
	}
}
