package compute

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Rule is one rewrite rule. A declarative rule has a Match pattern and a
// Replace template; a procedural rule has a Match pattern and a Replacer; a
// raw rule has only Func and inspects whole expressions itself. Rules must
// not be modified once in use.
type Rule struct {
	// Match is the pattern the rule applies to.
	Match *Pattern
	// Replace is the template instantiated with the bindings of a match.
	Replace *Pattern
	// Replacer computes the replacement for a match. A nil result means the
	// rule does not apply.
	Replacer func(e *Expr, b Bindings, s *Session) *Expr
	// Func is a raw rule. A nil result means the rule does not apply.
	Func func(e *Expr, s *Session) *RewriteStep
	// Condition, if set, must hold for a match to be used.
	Condition func(b Bindings, s *Session) bool
	// Because labels the steps the rule produces.
	Because string
	// Form names the canonical passes applied to the rule's candidates.
	// Nil means the full pipeline.
	Form []string
	// Worsening is the number of times per top-level rewrite the rule may be
	// accepted even though it increases the cost. The rewrite still returns
	// the cheapest form it reached.
	Worsening int
}

// RewriteStep is one accepted rewrite.
type RewriteStep struct {
	Value   *Expr
	Because string
}

// RuleOption is an option for constructing a rule.
type RuleOption interface {
	ruleOption(*ruleConfig)
}

type ruleConfig struct {
	verbatim bool
	rule     Rule
}

type (
	verbatimopt  struct{}
	becauseopt   string
	whenopt      func(Bindings, *Session) bool
	formopt      []string
	worseningopt int
)

func (verbatimopt) ruleOption(c *ruleConfig)    { c.verbatim = true }
func (o becauseopt) ruleOption(c *ruleConfig)   { c.rule.Because = string(o) }
func (o whenopt) ruleOption(c *ruleConfig)      { c.rule.Condition = o }
func (o formopt) ruleOption(c *ruleConfig)      { c.rule.Form = o }
func (o worseningopt) ruleOption(c *ruleConfig) { c.rule.Worsening = int(o) }

// Verbatim keeps the pattern and template of a rule exactly as written.
// Without it they are canonicalized, so that they are spelled the way the
// expressions they meet are.
func Verbatim() RuleOption {
	return verbatimopt{}
}

// Because sets the label of the steps a rule produces.
func Because(label string) RuleOption {
	return becauseopt(label)
}

// When sets the condition of a rule.
func When(cond func(b Bindings, s *Session) bool) RuleOption {
	return whenopt(cond)
}

// Form restricts the canonical passes applied to a rule's candidates.
func Form(passes ...string) RuleOption {
	return formopt(passes)
}

// Worsening allows a rule to be accepted at most n times per top-level
// rewrite even when it increases the cost. A worsening step survives only
// if later steps bring the cost back down to at most where it started.
func Worsening(n int) RuleOption {
	return worseningopt(n)
}

func configure(opts []RuleOption) ruleConfig {
	var c ruleConfig
	for _, opt := range opts {
		opt.ruleOption(&c)
	}
	return c
}

// canonicalPattern canonicalizes the expression spelling of p.
func canonicalPattern(p *Pattern) *Pattern {
	return Compile(Canonicalize(p.Expr()))
}

// NewRule creates a declarative rule. The label defaults to the rule's own
// spelling.
func NewRule(match, replace *Pattern, opts ...RuleOption) *Rule {
	c := configure(opts)
	if !c.verbatim {
		match, replace = canonicalPattern(match), canonicalPattern(replace)
	}
	r := c.rule
	r.Match, r.Replace = match, replace
	if r.Because == "" {
		r.Because = match.String() + " -> " + replace.String()
	}
	return &r
}

// NewProcRule creates a procedural rule that computes its replacement.
func NewProcRule(match *Pattern, f func(e *Expr, b Bindings, s *Session) *Expr, opts ...RuleOption) *Rule {
	c := configure(opts)
	if !c.verbatim {
		match = canonicalPattern(match)
	}
	r := c.rule
	r.Match, r.Replacer = match, f
	if r.Because == "" {
		r.Because = match.String()
	}
	return &r
}

// RuleFunc creates a raw rule from a function of whole expressions.
func RuleFunc(because string, f func(e *Expr, s *Session) *RewriteStep, opts ...RuleOption) *Rule {
	c := configure(opts)
	r := c.rule
	r.Func = f
	if because != "" {
		r.Because = because
	}
	return &r
}

// ParseRule parses a declarative rule written "pattern -> template" in infix
// syntax with wildcards.
func ParseRule(src string, opts ...RuleOption) (*Rule, error) {
	lhs, rhs, ok := strings.Cut(src, "->")
	if !ok {
		return nil, &RuleSyntaxError{Rule: src, Reason: `missing "->"`}
	}
	m, err := ParseString(lhs, Wildcards())
	if err != nil {
		return nil, &RuleSyntaxError{Rule: src, Reason: "pattern", Err: err}
	}
	t, err := ParseString(rhs, Wildcards())
	if err != nil {
		return nil, &RuleSyntaxError{Rule: src, Reason: "template", Err: err}
	}
	if !hasBecause(opts) {
		opts = append(slices.Clip(opts), Because(strings.TrimSpace(src)))
	}
	return NewRule(Compile(m), Compile(t), opts...), nil
}

func hasBecause(opts []RuleOption) bool {
	for _, o := range opts {
		if _, ok := o.(becauseopt); ok {
			return true
		}
	}
	return false
}

// MustRule is like ParseRule but panics on error.
func MustRule(src string, opts ...RuleOption) *Rule {
	r, err := ParseRule(src, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// RuleSyntaxError is the error for a rule that cannot be parsed.
type RuleSyntaxError struct {
	// Rule is the rule text.
	Rule string
	// Reason names the part of the rule that is wrong.
	Reason string
	// Err is the parse error, if any.
	Err error
}

func (err *RuleSyntaxError) Error() string {
	s := "compute: bad rule " + err.Rule + ": " + err.Reason
	if err.Err != nil {
		s += ": " + err.Err.Error()
	}
	return s
}

func (err *RuleSyntaxError) Unwrap() error {
	return err.Err
}

// RuleSet is an ordered list of rules. Earlier rules are tried first.
type RuleSet []*Rule

// NewRuleSet creates a rule set trying rules in the given order.
func NewRuleSet(rules ...*Rule) RuleSet {
	return slices.Clone(RuleSet(rules))
}

// With returns a new rule set trying the rules of rs and then more.
func (rs RuleSet) With(more ...*Rule) RuleSet {
	return append(slices.Clip(rs), more...)
}

// ReadRules reads one rule per line in the syntax of ParseRule. Blank lines
// and lines beginning with # are ignored.
func ReadRules(r io.Reader) (RuleSet, error) {
	var rs RuleSet
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		rule, err := ParseRule(s)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		rs = append(rs, rule)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading rules")
	}
	return rs, nil
}
