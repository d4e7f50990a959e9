//go:build go1.18
// +build go1.18

package compute_test

import (
	"strings"
	"testing"

	"github.com/cortex-js/compute-engine-sub005"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("y")
	f.Add("1×2")
	f.Add("F(x, G(y; 1))")
	f.Fuzz(func(t *testing.T, s string) {
		compute.Parse(strings.NewReader(s))
		compute.Parse(strings.NewReader(s), compute.Wildcards())
	})
}

// FuzzCanonicalize checks that canonical forms are fixed points.
func FuzzCanonicalize(f *testing.F) {
	f.Add("x + 0 + 3")
	f.Add("2 x + 4 - x")
	f.Add("Sin(-x)^2 * 1/y")
	f.Add("-(a - b) / -c")
	f.Fuzz(func(t *testing.T, s string) {
		e, err := compute.ParseString(s)
		if err != nil {
			return
		}
		c := compute.Canonicalize(e)
		if cc := compute.Canonicalize(c); !compute.Equal(c, cc) {
			t.Errorf("%q: canonical form %s canonicalizes again to %s", s, c, cc)
		}
	})
}
