package compute

import (
	"io"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/slices"
)

// Expr = num | name | string | Call | Neg | Plus | Not | Add | Sub | Mul | Div | Pow | Cmp | '(' Expr ')' | '[' Expr ']' | '{' Expr '}'
// Call = Name ArgList | funcname Expr | funcname ArgList | funcname '^' Expr Call
// ArgList = '(' [ Expr { (',' | ';') Expr } ] ')' | '[' ... ']' | '{' ... '}'
// Neg = '-' Expr
// Plus = '+' Expr
// Not = '!' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr | Expr '×' Expr | Expr Expr
// Div = Expr '/' Expr | Expr '÷' Expr
// Pow = Expr '^' Expr
// Cmp = Expr ('=' | '==' | '!=' | '≠' | '<' | '<=' | '≤' | '>' | '>=' | '≥') Expr
//
// Name is an identifier beginning with an upper-case letter or an underscore
// and immediately followed by an argument list. funcname is one of the
// lowercase function names known to the parser.

// Parse parses infix text into an expression. The result is not canonical.
// The given options are applied in order.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	scan := lex(src)
	p := parsectx{funcs: globalfuncs, consts: globalconsts}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	n, err := parseterm(scan, &p, exprprec)
	if err != nil {
		return nil, err
	}
	switch tok := scan.must(); tok.kind {
	case tokenEOF:
	case tokenSep:
		switch {
		case p.ceof && tok.text == ",":
		case p.seof && tok.text == ";":
		default:
			return nil, itShouldNotHaveEndedThisWay(tok, -1)
		}
	default:
		return nil, itShouldNotHaveEndedThisWay(tok, -1)
	}
	if n == nil {
		return nil, &EmptyExpressionError{Col: 1}
	}
	return n, nil
}

// ParseString parses infix text from a string.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// MustParse is like ParseString but panics if the text cannot be parsed.
func MustParse(src string, opts ...ParseOption) *Expr {
	e, err := ParseString(src, opts...)
	if err != nil {
		panic("compute: parsing " + strconv.Quote(src) + ": " + err.Error())
	}
	return e
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, p *parsectx, until operator) (*Expr, error) {
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		tok, err := scan.next(p.wseof)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenIdent, tokenStr:
			// (parsed) x -> (parsed) * (x)
			// (parsed) x^(expr) -> (parsed) * (x^(expr))
			// a^(parsed) x -> (a^(parsed)) * (x)
			scan.push(tok)
			prec := termprec
			if !prec.moreBinding(until) {
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			n = binary(OpMultiply, n, rhs)
		case tokenOp:
			// Binary operator.
			prec := binop(tok.text)
			if prec.op == "" {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				end := scan.must()
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			n = binary(prec.op, n, rhs)
		case tokenOpen:
			// Since parselhs parses calls aggressively, this is a
			// multiplication by a parenthesized term: 2 (expr) -> (2) * (expr).
			match := rightbracket(tok.text)
			prec := termprec
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, exprprec)
			if err != nil {
				return nil, err
			}
			end := scan.must()
			if end.kind != tokenClose || end.text != closebrackets[match] {
				return nil, itShouldNotHaveEndedThisWay(end, match)
			}
			if rhs == nil {
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			n = binary(OpMultiply, n, rhs)
		case tokenClose, tokenSep, tokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("compute: unknown token: " + tok.String())
		}
	}
}

// binary builds the application of a binary operator. Chains of Add and
// Multiply are collected into one compound.
func binary(op string, l, r *Expr) *Expr {
	if (op == OpAdd || op == OpMultiply) && l.Is(op) {
		args := slices.Clone(l.args)
		return call(op, append(args, r))
	}
	return call(op, []*Expr{l, r})
}

// parselhs parses the first component of a term. I.e., operators are unary,
// any encountered token must be valid as the start of a subexpression, and
// whitespace normally lexed as EOF is ignored.
func parselhs(scan *lexer, p *parsectx, until operator) (*Expr, error) {
	// Don't use EOF whitespace for LHS.
	tok, err := scan.next("")
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		return parsenum(tok)
	case tokenStr:
		return Str(tok.text), nil
	case tokenIdent:
		return parseident(scan, p, until, tok)
	case tokenOp:
		// unary operator
		prec := unop(tok.text)
		if prec.op == "" {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			end := scan.must()
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		switch {
		case prec.op == opPlus:
			return rhs, nil
		case prec.op == OpNegate && rhs.kind == KindNumber:
			return Num(numNeg(rhs.num)), nil
		}
		return call(prec.op, []*Expr{rhs}), nil
	case tokenOpen:
		match := rightbracket(tok.text)
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose || end.text != closebrackets[match] {
			return nil, itShouldNotHaveEndedThisWay(end, match)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		return rhs, nil
	case tokenClose:
		// This might be the end of an empty argument list, so just let the
		// caller decide what to do.
		scan.push(tok)
		return nil, nil
	case tokenSep:
		switch tok.text {
		case ",":
			if p.ceof {
				scan.push(tok)
				return nil, nil
			}
		case ";":
			if p.seof {
				scan.push(tok)
				return nil, nil
			}
		default:
			panic("compute: invalid separator " + strconv.Quote(tok.text))
		}
		return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("compute: unknown token: " + tok.String())
	}
}

// parsenum converts a number token. Integers are exact; anything with a
// decimal point or an exponent is an inexact real.
func parsenum(tok lexToken) (*Expr, error) {
	if !strings.ContainsAny(tok.text, ".eE") {
		n, ok := new(big.Int).SetString(tok.text, 10)
		if !ok {
			return nil, &LexError{Text: tok.text, Kind: "number", Col: tok.pos}
		}
		return BigInt(n), nil
	}
	prec := uint(defaultPrec)
	if d := uint(len(tok.text)) * 4; d > prec {
		// Keep every written digit.
		prec = d
	}
	f, _, err := big.ParseFloat(tok.text, 10, prec, big.ToNearestEven)
	if err != nil {
		return nil, &LexError{Text: tok.text, Kind: "number", Col: tok.pos}
	}
	return Num(floatNum(f)), nil
}

// parseident parses a symbol or a call beginning with an identifier.
func parseident(scan *lexer, p *parsectx, until operator, tok lexToken) (*Expr, error) {
	name := tok.text
	if strings.HasPrefix(name, "_") && !p.wildcards {
		return nil, &WildcardError{Col: tok.pos, Name: name}
	}
	if c, ok := p.consts[name]; ok {
		return Sym(c), nil
	}
	if op, ok := p.funcs[name]; ok {
		return parsecall(scan, p, until, op, name)
	}
	r, _ := utf8.DecodeRuneInString(name)
	if r != '_' && !unicode.IsUpper(r) || constants[name] {
		return Sym(name), nil
	}
	// Capitalized names and wildcards are calls only when an argument list
	// follows immediately.
	next, err := scan.next(p.wseof)
	if err != nil {
		return nil, err
	}
	if next.kind != tokenOpen {
		scan.push(next)
		return Sym(name), nil
	}
	args, err := parsebracketed(scan, p, next)
	if err != nil {
		return nil, err
	}
	return Call(name, args...), nil
}

// parsecall parses the arguments to a call of a lowercase function name. The
// arguments may be bracketed, or a single bare term: sin x is sin(x). An
// exponent between the name and the arguments applies to the call: sin^2 x
// is (sin(x))^2.
func parsecall(scan *lexer, p *parsectx, until operator, op, name string) (*Expr, error) {
	// We respect whitespace here so that pi\nx doesn't string
	// together expressions.
	tok, err := scan.next(p.wseof)
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenOp:
		// Check for e.g. ^2 in cos^2 x. Must be an exponentiation or higher.
		// Note that the fact that exponentiation is important here:
		// func^x^y(z) parses as [func(z)]^(x^y).
		if prec := binop(tok.text); prec.moreBinding(powprec) {
			up, err := parseterm(scan, p, powprec)
			if err != nil {
				return nil, err
			}
			if up == nil {
				end := scan.must()
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			fn, err := parsecall(scan, p, until, op, name)
			if err != nil {
				return nil, err
			}
			return call(OpPower, []*Expr{fn, up}), nil
		}
		// Other than exponentiations, finding an operator is the same as
		// finding a number or identifier.
		fallthrough
	case tokenNum, tokenIdent, tokenStr:
		// Single argument. exp x -> exp(x)
		scan.push(tok)
		if termprec.moreBinding(until) {
			until = termprec
		}
		rhs, err := parseterm(scan, p, until)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, &CallError{Col: tok.pos, Func: name}
		}
		return call(op, []*Expr{rhs}), nil
	case tokenOpen:
		args, err := parsebracketed(scan, p, tok)
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, &CallError{Col: tok.pos, Func: name}
		}
		return call(op, args), nil
	case tokenClose, tokenSep, tokenEOF:
		return nil, &CallError{Col: tok.pos, Func: name}
	default:
		panic("compute: unknown token: " + tok.String())
	}
}

// parsebracketed parses an argument list after its open bracket and checks
// the closing bracket.
func parsebracketed(scan *lexer, p *parsectx, open lexToken) ([]*Expr, error) {
	match := rightbracket(open.text)
	args, err := parsearglist(scan, p, open.text)
	if err != nil {
		return nil, err
	}
	end := scan.must()
	if end.kind != tokenClose {
		panic("compute: parsearglist ended on " + end.String() + " instead of close bracket")
	}
	if end.text != closebrackets[match] {
		return nil, &BracketError{Col: end.pos, Left: open.text, Right: end.text}
	}
	return args, nil
}

// parsearglist parses a bracketed list of zero or more args.
func parsearglist(scan *lexer, p *parsectx, open string) ([]*Expr, error) {
	var args []*Expr
	// Separators always separate arguments inside brackets.
	q := *p
	q.ceof, q.seof = false, false
	for {
		rhs, err := parseterm(scan, &q, exprprec)
		if err != nil {
			// As a special case, reporting mismatched brackets is more helpful
			// than empty expression, if that's what we'd do here.
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: open}
			}
			return nil, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			// Caller checks that brackets match.
			scan.push(end)
			if rhs == nil {
				// No expression parsed.
				// f() is allowed, but f(a,) isn't.
				if len(args) != 0 {
					return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, nil
			}
			return append(args, rhs), nil
		case tokenSep:
			if rhs == nil {
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			args = append(args, rhs)
		case tokenEOF:
			return nil, &BracketError{Col: end.pos, Left: open, Right: ""}
		default:
			panic("compute: parseexpr ended on non-end token " + end.String())
		}
	}
}

// rightbracket gets the closing bracket index for an opening bracket.
func rightbracket(left string) int {
	r, sz := utf8.DecodeRuneInString(left)
	k := strings.IndexRune(OpenBrackets, r)
	if k < 0 || sz != len(left) {
		panic("compute: invalid bracket " + strconv.Quote(left))
	}
	return k
}

// leftbracket gets the opening bracket matching right. If right is no bracket,
// then the result is the empty string.
func leftbracket(right int) string {
	if right == -1 {
		return ""
	}
	return openbrackets[right]
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. match is the bracket rune index that
// the expression should have matched, or -1 if none.
func itShouldNotHaveEndedThisWay(tok lexToken, match int) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: ""}
	case tokenClose:
		// A bracket could be the wrong bracket for the opening brace or any
		// bracket at the end of an input.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: tok.text}
	case tokenSep:
		// Separator outside a function call.
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	default:
		panic("compute: it really should not have ended this way: " + tok.String())
	}
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the operator of the compound built for this operator.
	op string
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// opPlus is the pseudo-operator of unary plus, which builds nothing.
const opPlus = "+"

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an empty op.
func binop(text string) operator {
	switch text {
	case "=":
		return operator{0, false, OpEqual}
	case "≠":
		return operator{0, false, OpNotEqual}
	case "<":
		return operator{0, false, OpLess}
	case "≤":
		return operator{0, false, OpLessEqual}
	case ">":
		return operator{0, false, OpGreater}
	case "≥":
		return operator{0, false, OpGreaterEqual}
	case "+":
		return operator{1, false, OpAdd}
	case "-":
		return operator{1, false, OpSubtract}
	case "*", "×":
		return operator{5, false, OpMultiply}
	case "/", "÷":
		return operator{5, false, OpDivide}
	case "^":
		return operator{15, true, OpPower}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an empty op.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{10, true, opPlus}
	case "-":
		return operator{10, true, OpNegate}
	case "!":
		return operator{10, true, OpNot}
	default:
		return operator{}
	}
}

var (
	// termprec is the default precedence for parsing terms. Its prec
	// should match that of multiplication.
	termprec = operator{5, true, OpMultiply}
	// powprec is the precedence of exponentiation.
	powprec = binop("^")
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, ""}
)
