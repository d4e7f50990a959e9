// Package compute implements a symbolic expression kernel: immutable
// expression trees, a canonicalizer, a wildcard pattern matcher, and a
// rewriter that applies rules to a fixpoint under a resource budget.
//
// Expressions are built with constructors such as Int, Sym and Call, read
// from infix text with Parse, or decoded from MathJSON with ParseJSON. The
// infix syntax is meant to look like math you'd write in your notes. "2 x y"
// is a multiplication of three terms, "-2^2^n" is "-(2^(2^n))", and
// capitalized names followed by brackets are calls, so "Sin(x)" and "sin x"
// are the same expression.
//
// Canonicalize puts an expression into a unique normal form: derived
// operators are reduced to Add, Negate, Multiply and Power, associative
// operators are flattened, numbers are folded, and commutative operands are
// sorted. Structurally equal canonical forms mean equal expressions.
//
// Patterns are expressions with wildcards. In text, "_x" captures one
// expression, "__x" captures one or more operands, and "___x" captures zero
// or more. Rules pair a pattern with a template or a function, and an
// Engine rewrites expressions with a RuleSet, accepting a step only when it
// does not make the expression costlier. Every top-level rewrite is bounded
// by a Budget and fails with a *BudgetError when it runs out.
//
// On top of the rewriter, an Engine simplifies, evaluates numerically with
// N, expands, factors, differentiates and integrates, consulting the
// definitions and assumptions held in its Scope.
package compute
