package compute

import (
	"errors"
	"strconv"
	"time"
)

// Budget bounds the work of one top-level rewrite. Zero fields are
// unlimited.
type Budget struct {
	// Deadline is the wall-clock time by which the call must finish.
	Deadline time.Time
	// Timeout, if set, is converted to a deadline when the call starts.
	Timeout time.Duration
	// MaxIterations bounds the number of rule applications attempted.
	MaxIterations int
	// MaxDepth bounds the recursion depth of the rewriter.
	MaxDepth int
}

// DefaultBudget is the budget of an engine created without WithBudget.
var DefaultBudget = Budget{
	Timeout:       2 * time.Second,
	MaxIterations: 10000,
	MaxDepth:      512,
}

// Tighten returns the budget whose every limit is the stricter of b's and
// o's. An unlimited field never loosens a limited one.
func (b Budget) Tighten(o Budget) Budget {
	r := b
	if !o.Deadline.IsZero() && (r.Deadline.IsZero() || o.Deadline.Before(r.Deadline)) {
		r.Deadline = o.Deadline
	}
	if o.Timeout > 0 && (r.Timeout == 0 || o.Timeout < r.Timeout) {
		r.Timeout = o.Timeout
	}
	r.MaxIterations = minLimit(r.MaxIterations, o.MaxIterations)
	r.MaxDepth = minLimit(r.MaxDepth, o.MaxDepth)
	return r
}

func minLimit(a, b int) int {
	switch {
	case a <= 0:
		return b
	case b <= 0:
		return a
	}
	return min(a, b)
}

// start resolves the timeout into a deadline relative to now.
func (b Budget) start(now time.Time) Budget {
	if b.Timeout > 0 {
		d := now.Add(b.Timeout)
		if b.Deadline.IsZero() || d.Before(b.Deadline) {
			b.Deadline = d
		}
		b.Timeout = 0
	}
	return b
}

// ErrBudget is matched by every BudgetError with errors.Is.
var ErrBudget = errors.New("compute: budget exhausted")

// BudgetError is the error returned when a rewrite exceeds its budget. The
// top-level call is aborted and its result discarded.
type BudgetError struct {
	// Limit names the exhausted limit: "deadline", "iterations", or "depth".
	Limit string
	// Max is the configured iteration or depth limit. It is zero for the
	// deadline.
	Max int
	// Steps is the number of rewrite steps accepted before the abort.
	Steps int
}

func (err *BudgetError) Error() string {
	s := "compute: " + err.Limit + " limit exceeded"
	if err.Max > 0 {
		s += " (" + strconv.Itoa(err.Max) + ")"
	}
	return s + " after " + strconv.Itoa(err.Steps) + " steps"
}

// Is reports whether target is ErrBudget.
func (err *BudgetError) Is(target error) bool {
	return target == ErrBudget
}
