package compute

import (
	"log/slog"
	"strconv"

	"golang.org/x/exp/slices"
)

// Pass is a named normalization step of the canonicalizer. Apply receives a
// compound whose operands are already canonical and returns either the same
// pointer, meaning no change, or a replacement built from canonical parts.
// Every pass is idempotent.
type Pass struct {
	Name  string
	Apply func(c *Canonicalizer, e *Expr) *Expr
}

// Names of the standard passes, in pipeline order.
const (
	PassBasis    = "basis"
	PassFlatten  = "flatten"
	PassSign     = "sign"
	PassNumeric  = "numeric"
	PassIdentity = "identity"
	PassSort     = "sort"
)

var standardPasses = []Pass{
	{PassBasis, basisPass},
	{PassFlatten, flattenPass},
	{PassSign, signPass},
	{PassNumeric, numericPass},
	{PassIdentity, identityPass},
	{PassSort, sortPass},
}

// maxLocal bounds the number of times the pipeline is rerun on one node. A
// node still changing after that many runs is returned as is and logged at
// warning level.
const maxLocal = 16

// Canonicalizer rewrites expressions into canonical form. It makes a single
// bottom-up traversal; at each compound it runs the pipeline until the node
// stops changing, so canonical operands are never revisited.
type Canonicalizer struct {
	defs   Definitions
	passes []Pass
	log    *slog.Logger
}

// NewCanonicalizer creates a canonicalizer with the standard pipeline. defs
// supplies operator properties; if nil, the standard definitions are used.
func NewCanonicalizer(defs Definitions) *Canonicalizer {
	if defs == nil {
		defs = stdDefs
	}
	return &Canonicalizer{defs: defs, passes: standardPasses, log: slog.Default()}
}

// Canonicalize returns the canonical form of e using the standard
// definitions.
func Canonicalize(e *Expr) *Expr {
	return NewCanonicalizer(nil).Canonicalize(e)
}

// Pipeline returns a canonicalizer that runs only the named passes, in
// pipeline order. An unknown name is an *UnknownPassError.
func (c *Canonicalizer) Pipeline(names ...string) (*Canonicalizer, error) {
	for _, n := range names {
		if !slices.ContainsFunc(standardPasses, func(p Pass) bool { return p.Name == n }) {
			return nil, &UnknownPassError{Name: n}
		}
	}
	var passes []Pass
	for _, p := range c.passes {
		if slices.Contains(names, p.Name) {
			passes = append(passes, p)
		}
	}
	return &Canonicalizer{defs: c.defs, passes: passes, log: c.log}, nil
}

// Passes returns the names of the passes c runs.
func (c *Canonicalizer) Passes() []string {
	names := make([]string, len(c.passes))
	for i, p := range c.passes {
		names[i] = p.Name
	}
	return names
}

// Canonicalize returns the canonical form of e.
func (c *Canonicalizer) Canonicalize(e *Expr) *Expr {
	switch e.kind {
	case KindNumber, KindSymbol, KindString:
		return e
	case KindCompound:
		if e.name == OpHold {
			return e
		}
		return c.node(e.Map(c.Canonicalize))
	case KindDictionary:
		d := make(map[string]*Expr, len(e.dict))
		changed := false
		for k, v := range e.dict {
			d[k] = c.Canonicalize(v)
			changed = changed || d[k] != v
		}
		if !changed {
			return e
		}
		return Dict(d)
	default:
		panic("compute: invalid expression kind " + e.kind.String())
	}
}

// node runs the pipeline on a compound with canonical operands until it
// reaches a local fixpoint.
func (c *Canonicalizer) node(e *Expr) *Expr {
	for i := 0; i < maxLocal; i++ {
		if e.kind != KindCompound {
			return e
		}
		next := e
		for _, p := range c.passes {
			next = p.Apply(c, next)
			if next.kind != KindCompound || next.name != e.name {
				break
			}
		}
		if next == e {
			return e
		}
		e = next
	}
	if e.kind == KindCompound {
		c.log.Warn("canonical pipeline did not settle", "op", e.name, "runs", maxLocal, "expr", e)
	}
	return e
}

// build creates a compound from canonical operands and canonicalizes the new
// node.
func (c *Canonicalizer) build(op string, args ...*Expr) *Expr {
	return c.node(call(op, args))
}

func (c *Canonicalizer) def(op string) *FunctionDef {
	if d := c.defs.LookupFunction(op); d != nil {
		return d
	}
	return &FunctionDef{Name: op}
}

// sortExprs sorts xs stably by cmp.
func sortExprs(xs []*Expr, cmp func(a, b *Expr) int) {
	slices.SortStableFunc(xs, cmp)
}

// UnknownPassError is the error for a pipeline naming a pass that does not
// exist.
type UnknownPassError struct {
	Name string
}

func (err *UnknownPassError) Error() string {
	return "compute: unknown canonical pass " + strconv.Quote(err.Name)
}
