//go:build go1.18
// +build go1.18

package compute_test

import (
	"testing"

	"github.com/cortex-js/compute-engine-sub005"
)

func FuzzN(f *testing.F) {
	f.Add("x")
	f.Add("sin(pi/6)")
	f.Add("1×2")
	f.Add("ln(-1) + 2^(1/2)")
	eng := compute.NewEngine(compute.Prec(32))
	eng.Scope().Assign("x", compute.Rat(3, 7))
	f.Fuzz(func(t *testing.T, s string) {
		e, err := compute.ParseString(s)
		if err != nil {
			return
		}
		eng.N(e)
	})
}
