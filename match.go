package compute

// DefaultTolerance is the default bound on the difference between a numeric
// pattern leaf and the number it matches.
const DefaultTolerance = 1e-10

// maxPermuteArity bounds the number of operands for which matching tries
// operand assignments of a commutative operator.
const maxPermuteArity = 8

// MatchOption is an option for Match.
type MatchOption interface {
	matchOption(*matcher)
}

type (
	tolopt  float64
	defsopt struct{ defs Definitions }
	seedopt Bindings
)

func (o tolopt) matchOption(m *matcher) { m.tol = float64(o) }
func (o defsopt) matchOption(m *matcher) { m.defs = o.defs }
func (o seedopt) matchOption(m *matcher) { m.seed = Bindings(o) }

// MatchTolerance sets the tolerance for numeric leaves.
func MatchTolerance(tol float64) MatchOption {
	return tolopt(tol)
}

// MatchDefinitions sets the definitions consulted to find commutative
// operators. Without it, or with a nil argument, operands always match
// positionally.
func MatchDefinitions(defs Definitions) MatchOption {
	return defsopt{defs}
}

// MatchBindings seeds the match with existing bindings, which the match must
// agree with.
func MatchBindings(b Bindings) MatchOption {
	return seedopt(b)
}

type matcher struct {
	tol  float64
	defs Definitions
	seed Bindings
}

// Match matches subject against pattern. On success it returns the bindings
// of the named wildcards, which is empty but non-nil if the pattern has
// none. On failure, including when two occurrences of one wildcard would
// bind different expressions, it returns nil, false.
//
// Numeric leaves of the pattern match numbers within the tolerance,
// regardless of whether either is exact. Sequence wildcards consume operands
// up to the first position where the following pattern operand matches.
// When definitions are given with MatchDefinitions and positional matching
// of an operator they declare commutative fails, the operands are also tried
// in other orders.
func Match(subject *Expr, pattern *Pattern, opts ...MatchOption) (Bindings, bool) {
	m := matcher{tol: DefaultTolerance}
	for _, opt := range opts {
		if opt != nil {
			opt.matchOption(&m)
		}
	}
	b := Bindings{}
	if m.seed != nil {
		b = m.seed.clone()
	}
	return m.match(subject, pattern, b)
}

// match never modifies b; bindings are added to copies.
func (m *matcher) match(s *Expr, p *Pattern, b Bindings) (Bindings, bool) {
	switch p.kind {
	case patLiteral:
		if !m.literal(s, p.lit) {
			return nil, false
		}
		return b, true
	case patWildcard:
		if p.wc.isSeq() {
			return m.bindSeq(p.wc, []*Expr{s}, b)
		}
		return m.bind(p.wc.Name, s, b)
	case patCompound:
		if s.kind != KindCompound {
			return nil, false
		}
		b, ok := m.match(Sym(s.name), p.op, b)
		if !ok {
			return nil, false
		}
		if r, ok := m.matchArgs(s.args, p.args, b); ok {
			return r, true
		}
		if m.commutative(s.name) {
			return m.matchCommutative(s.args, p.args, b)
		}
		return nil, false
	case patDict:
		if s.kind != KindDictionary || len(s.keys) != len(p.keys) {
			return nil, false
		}
		for i, k := range p.keys {
			if s.keys[i] != k {
				return nil, false
			}
		}
		for _, k := range p.keys {
			var ok bool
			if b, ok = m.match(s.dict[k], p.dict[k], b); !ok {
				return nil, false
			}
		}
		return b, true
	default:
		panic("compute: invalid pattern")
	}
}

func (m *matcher) literal(s, lit *Expr) bool {
	if s.kind != lit.kind {
		return false
	}
	switch lit.kind {
	case KindNumber:
		return numClose(s.num, lit.num, m.tol)
	case KindString:
		return s.name == lit.name
	case KindSymbol:
		return s.name == lit.name && s.tag == lit.tag
	default:
		panic("compute: invalid literal pattern of kind " + lit.kind.String())
	}
}

// bind records name => s. An existing binding must match s.
func (m *matcher) bind(name string, s *Expr, b Bindings) (Bindings, bool) {
	if name == "" {
		return b, true
	}
	if prior, ok := b[name]; ok {
		// Matching against the literal prior binding is structural equality
		// with tolerant numbers.
		if !EqualTol(s, prior, m.tol) {
			return nil, false
		}
		return b, true
	}
	r := b.clone()
	r[name] = s
	return r, true
}

func (m *matcher) bindSeq(w Wildcard, run []*Expr, b Bindings) (Bindings, bool) {
	if w.Arity == OneOrMore && len(run) == 0 {
		return nil, false
	}
	seq := make([]*Expr, len(run))
	copy(seq, run)
	return m.bind(w.Name, call(OpSequence, seq), b)
}

// matchArgs matches operand lists left to right.
func (m *matcher) matchArgs(subj []*Expr, pats []*Pattern, b Bindings) (Bindings, bool) {
	if len(pats) == 0 {
		if len(subj) != 0 {
			return nil, false
		}
		return b, true
	}
	p := pats[0]
	if p.kind != patWildcard || !p.wc.isSeq() {
		if len(subj) == 0 {
			return nil, false
		}
		b, ok := m.match(subj[0], p, b)
		if !ok {
			return nil, false
		}
		return m.matchArgs(subj[1:], pats[1:], b)
	}
	if len(pats) == 1 {
		return m.bindSeq(p.wc, subj, b)
	}
	need, open := restNeeds(pats[1:])
	least := 0
	if p.wc.Arity == OneOrMore {
		least = 1
	}
	most := len(subj) - need
	next := pats[1]
	for k := least; k <= most; k++ {
		if !open && k != most {
			// Nothing after p can absorb extra operands.
			continue
		}
		if next.kind != patWildcard || !next.wc.isSeq() {
			if k >= len(subj) {
				break
			}
			if _, ok := m.match(subj[k], next, b); !ok {
				continue
			}
		}
		b2, ok := m.bindSeq(p.wc, subj[:k], b)
		if !ok {
			continue
		}
		return m.matchArgs(subj[k:], pats[1:], b2)
	}
	return nil, false
}

// restNeeds returns the least number of operands that pats can match, and
// whether pats contains a sequence wildcard that can absorb more.
func restNeeds(pats []*Pattern) (need int, open bool) {
	for _, p := range pats {
		switch {
		case p.kind != patWildcard || !p.wc.isSeq():
			need++
		case p.wc.Arity == OneOrMore:
			need++
			open = true
		default:
			open = true
		}
	}
	return need, open
}

// matchCommutative assigns each non-sequence pattern operand to a distinct
// subject operand, backtracking over choices. A single sequence wildcard
// captures the unassigned operands in their original order.
func (m *matcher) matchCommutative(subj []*Expr, pats []*Pattern, b Bindings) (Bindings, bool) {
	if len(subj) > maxPermuteArity {
		return nil, false
	}
	var fixed []*Pattern
	var seq *Pattern
	for _, p := range pats {
		if p.kind == patWildcard && p.wc.isSeq() {
			if seq != nil {
				return nil, false
			}
			seq = p
			continue
		}
		fixed = append(fixed, p)
	}
	if seq == nil && len(fixed) != len(subj) || len(fixed) > len(subj) {
		return nil, false
	}
	used := make([]bool, len(subj))
	var assign func(i int, b Bindings) (Bindings, bool)
	assign = func(i int, b Bindings) (Bindings, bool) {
		if i == len(fixed) {
			if seq == nil {
				return b, true
			}
			var rest []*Expr
			for j, s := range subj {
				if !used[j] {
					rest = append(rest, s)
				}
			}
			return m.bindSeq(seq.wc, rest, b)
		}
		for j, s := range subj {
			if used[j] {
				continue
			}
			b2, ok := m.match(s, fixed[i], b)
			if !ok {
				continue
			}
			used[j] = true
			if r, ok := assign(i+1, b2); ok {
				return r, true
			}
			used[j] = false
		}
		return nil, false
	}
	return assign(0, b)
}

func (m *matcher) commutative(op string) bool {
	if m.defs == nil {
		return false
	}
	def := m.defs.LookupFunction(op)
	return def != nil && def.Commutative
}
