package scicalc

import (
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// The parser reads the calculator grammar by precedence climbing:
//
//	term    = operand { infix operand | operand | "!" }
//	operand = number | name | call | prefix operand | "(" term ")"
//	call    = func [ "^" operand ] [ operand | "(" [ term { sep term } ] ")" ]
//	infix   = "+" | "-" | "*" | "×" | "/" | "÷" | "^"
//	prefix  = "+" | "-"
//	sep     = "," | ";"
//
// Any of () [] {} may bracket a term or an argument list. Two operands side
// by side multiply, binding like * and ×. A niladic function followed by a
// bracketed term multiplies it, so pi(2) is pi × 2.

// Expr is a parsed expression, ready to evaluate in a Context.
type Expr struct {
	n *node
	// names is the sorted list of variables the expression uses.
	names []string
}

// Parse reads one expression from src. Options apply in order. Unless an
// option stops it sooner, Parse reads to the end of src.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	p := parsectx{names: make(map[string]bool)}
	for _, opt := range opts {
		opt(&p)
	}
	if p.funcs == nil {
		p.funcs, p.shared, p.nodefaults = globalfuncs, true, true
	} else {
		p.fillDefaults()
	}
	p.scan = lex(src, p.known)
	n, err := p.term(exprprec)
	if err != nil {
		return nil, err
	}
	if err := p.finish(n); err != nil {
		return nil, err
	}
	e := Expr{n: n, names: make([]string, 0, len(p.names))}
	for k := range p.names {
		e.names = append(e.names, k)
	}
	slices.Sort(e.names)
	return &e, nil
}

// ParseString parses an expression from a string.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// stops reports whether a separator token ends the expression.
func (p *parsectx) stops(tok lexToken) bool {
	return tok.text == "," && p.ceof || tok.text == ";" && p.seof
}

// finish checks the token after a complete expression n.
func (p *parsectx) finish(n *node) error {
	tok := p.scan.must()
	switch {
	case tok.kind == tokenEOF:
		return nil
	case tok.kind == tokenSep && p.stops(tok):
		if n == nil {
			return &EmptyExpressionError{Col: tok.pos, End: tok.text}
		}
		return nil
	}
	return unexpected(tok, -1)
}

// term parses operands and operators until it reaches an operator that binds
// no tighter than until. The token that stopped it, including EOF, is pushed
// back. An empty term is nil with no error; the caller decides whether that
// is allowed.
func (p *parsectx) term(until operator) (*node, error) {
	n, err := p.operand(until)
	if err != nil || n == nil {
		return nil, err
	}
	return p.rest(n, until)
}

// rest continues a term whose leftmost operand n is already parsed.
func (p *parsectx) rest(n *node, until operator) (*node, error) {
	for {
		if p.resv != nil {
			// A niladic function took a bracketed term, which multiplies in
			// and may still take operators of its own: zero(x)^y is
			// zero × x^y.
			if !termprec.moreBinding(until) {
				return n, nil
			}
			r := p.resv
			p.resv = nil
			rhs, err := p.rest(r, termprec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeMul, left: n, right: rhs}
			continue
		}
		tok, err := p.scan.next(p.wseof)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenIdent, tokenOpen:
			// Juxtaposition. The next operand starts a term of its own so
			// that it takes tighter operators first: 2x^2 is 2 × x^2 and
			// 2(3)^2 is 2 × 3^2.
			p.scan.push(tok)
			if !termprec.moreBinding(until) {
				return n, nil
			}
			rhs, err := p.term(termprec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeMul, left: n, right: rhs}
		case tokenOp:
			op := binop(tok.text)
			if op.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text}
			}
			if !op.moreBinding(until) {
				p.scan.push(tok)
				return n, nil
			}
			rhs, err := p.term(op)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				// 2+) or 2×, with a comma ending the expression.
				return nil, p.emptyAt()
			}
			n = &node{kind: op.op, left: n, right: rhs}
		case tokenPostfix:
			// 2^3! is 2^(3!).
			n = &node{kind: nodeFact, left: n}
		case tokenClose, tokenSep, tokenEOF:
			p.scan.push(tok)
			return n, nil
		default:
			panic("scicalc: unknown token: " + tok.String())
		}
	}
}

// operand parses the first operand of a term. Operators here are prefix, and
// whitespace never ends the expression.
func (p *parsectx) operand(until operator) (*node, error) {
	tok, err := p.scan.next("")
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		return &node{kind: nodeNum, name: tok.text}, nil
	case tokenIdent:
		fn := p.funcs[tok.text]
		if fn == nil {
			p.names[tok.text] = true
			return &node{kind: nodeName, name: tok.text}, nil
		}
		args, exp, err := p.call(tok.text, fn, until)
		if err != nil {
			return nil, err
		}
		// For pi(2), args is nil and the 2 waits in p.resv.
		n := &node{kind: nodeCall, name: tok.text, fn: fn, right: args}
		if exp != nil {
			exp.left = n
			n = exp
		}
		return n, nil
	case tokenOp:
		op := unop(tok.text)
		if op.op == nodeNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !op.moreBinding(until) {
			// In x^-y, the negation takes only what the exponent would.
			op.prec, op.right = until.prec, until.right
		}
		rhs, err := p.term(op)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, p.emptyAt()
		}
		return &node{kind: op.op, left: rhs}, nil
	case tokenPostfix:
		return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
	case tokenOpen:
		match := rightbracket(tok.text)
		n, err := p.term(exprprec)
		if err != nil {
			return nil, err
		}
		end := p.scan.must()
		if end.kind != tokenClose || end.text != closebrackets[match] {
			return nil, unexpected(end, match)
		}
		if n == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		return n, nil
	case tokenClose:
		// Possibly the end of f(). The caller decides.
		p.scan.push(tok)
		return nil, nil
	case tokenSep:
		if p.stops(tok) {
			p.scan.push(tok)
			return nil, nil
		}
		return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos}
	default:
		panic("scicalc: unknown token: " + tok.String())
	}
}

// call parses what follows the name of fn. The first result is the argument
// list. The second, if not nil, is a power node whose left operand the caller
// sets to the call, for forms like sin^2 x.
func (p *parsectx) call(name string, fn Func, until operator) (*node, *node, error) {
	// Whitespace that ends the expression applies here so that pi\nx is two
	// expressions.
	tok, err := p.scan.next(p.wseof)
	if err != nil {
		return nil, nil, err
	}
	switch tok.kind {
	case tokenOp:
		if op := binop(tok.text); op.moreBinding(powprec) {
			// fn^a^b x is (fn x)^(a^b): the exponent comes first, then the
			// arguments.
			up, err := p.term(powprec)
			if err != nil {
				return nil, nil, err
			}
			if up == nil {
				return nil, nil, p.emptyAt()
			}
			exp := &node{kind: nodePow, right: up}
			if p.resv != nil {
				// The exponent ended in a niladic call with a bracketed term,
				// as in fn^zero(x). The term is the argument if fn takes one
				// and otherwise stays in p.resv to multiply.
				switch {
				case fn.CanCall(1):
					args := &node{kind: nodeArg, left: p.resv}
					p.resv = nil
					return args, exp, nil
				case fn.CanCall(0):
					return nil, exp, nil
				}
				return nil, nil, &CallError{Col: tok.pos, Func: name}
			}
			args, again, err := p.call(name, fn, until)
			if err != nil {
				return nil, nil, err
			}
			if again != nil {
				// ^ is right associative, so a second exponent only follows
				// a term that ended early.
				return nil, nil, &OperatorError{Col: tok.pos, Operator: tok.text}
			}
			return args, exp, nil
		}
		// Any other operator starts a bare argument, as a number would.
		fallthrough
	case tokenNum, tokenIdent:
		switch {
		case fn.CanCall(1):
			// exp x is exp(x). The argument ends where a product would.
			p.scan.push(tok)
			if termprec.moreBinding(until) {
				until = termprec
			}
			arg, err := p.term(until)
			if err != nil {
				return nil, nil, err
			}
			if arg == nil {
				return nil, nil, &CallError{Col: tok.pos, Func: name}
			}
			return &node{kind: nodeArg, left: arg}, nil, nil
		case fn.CanCall(0):
			// pi x is pi × x.
			p.scan.push(tok)
			return nil, nil, nil
		}
		return nil, nil, &CallError{Col: tok.pos, Func: name, Len: 1}
	case tokenOpen:
		args, n, err := p.args(tok.text)
		if err != nil {
			return nil, nil, err
		}
		end := p.scan.must()
		if end.text != closebrackets[rightbracket(tok.text)] {
			return nil, nil, &BracketError{Col: end.pos, Left: tok.text, Right: end.text}
		}
		if fn.CanCall(n) {
			p.resv = nil
			return args, nil, nil
		}
		if p.resv != nil && fn.CanCall(0) {
			return nil, nil, nil
		}
		p.resv = nil
		return nil, nil, &CallError{Col: tok.pos, Func: name, Len: n}
	case tokenPostfix, tokenClose, tokenSep, tokenEOF:
		if !fn.CanCall(0) {
			return nil, nil, &CallError{Col: tok.pos, Func: name}
		}
		p.scan.push(tok)
		return nil, nil, nil
	default:
		panic("scicalc: unknown token: " + tok.String())
	}
}

// args parses a bracketed argument list after its open bracket and returns
// the list with its length. The close bracket is pushed back for the caller
// to match. A list of exactly one term also goes in p.resv in case the
// function turns out to be niladic.
func (p *parsectx) args(open string) (*node, int, error) {
	var head node
	last := &head
	n := 0
	sep := ""
	for {
		arg, err := p.term(exprprec)
		if err != nil {
			// An unclosed list says more than an empty expression.
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: open}
			}
			return nil, 0, err
		}
		end := p.scan.must()
		switch end.kind {
		case tokenClose:
			p.scan.push(end)
			if arg == nil {
				// f() has no arguments, but f(a,) has an empty one.
				if n != 0 {
					return nil, 0, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, 0, nil
			}
			last.right = &node{kind: nodeArg, name: sep, left: arg}
			if n == 0 {
				p.resv = arg
			}
			return head.right, n + 1, nil
		case tokenSep:
			if arg == nil {
				return nil, 0, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			last.right = &node{kind: nodeArg, name: sep, left: arg}
			last = last.right
			sep = end.text
			n++
		case tokenEOF:
			return nil, 0, &BracketError{Col: end.pos, Left: open}
		default:
			panic("scicalc: argument ended on " + end.String())
		}
	}
}

// emptyAt reports an empty expression before the next token, which stays
// pushed.
func (p *parsectx) emptyAt() error {
	end := p.scan.must()
	p.scan.push(end)
	return &EmptyExpressionError{Col: end.pos, End: end.text}
}

// unexpected explains a token that ended a term where it could not. match is
// the index of the open bracket awaiting its close, or -1 for none.
func unexpected(tok lexToken, match int) error {
	left := ""
	if match >= 0 {
		left = openbrackets[match]
	}
	switch tok.kind {
	case tokenEOF:
		return &BracketError{Col: tok.pos, Left: left}
	case tokenClose:
		return &BracketError{Col: tok.pos, Left: left, Right: tok.text}
	case tokenSep:
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	}
	return &OperatorError{Col: tok.pos, Operator: tok.text}
}

// rightbracket gets the index of an open bracket, which is also the index of
// its close bracket.
func rightbracket(left string) int {
	r, sz := utf8.DecodeRuneInString(left)
	k := strings.IndexRune(OpenBrackets, r)
	if k < 0 || sz != len(left) {
		panic("scicalc: invalid bracket " + strconv.Quote(left))
	}
	return k
}

// Vars returns the names of the variables the expression uses, sorted.
func (e *Expr) Vars() []string {
	return slices.Clone(e.names)
}

// String formats the expression with every term bracketed, alternating round
// and square brackets by depth.
func (e *Expr) String() string {
	var b strings.Builder
	e.n.fmt(&b, false, true)
	return b.String()
}

// Normalized returns the expression in plain ASCII syntax: × and ÷ become *
// and /, π and √ are spelled pi and sqrt, and postfix factorial becomes a
// call to factorial. The result parses to an expression with the same value.
func (e *Expr) Normalized() string {
	var b strings.Builder
	e.n.normal(&b)
	return b.String()
}

// operator is how an operator binds.
type operator struct {
	// prec is the binding strength. Higher binds tighter.
	prec  int8
	right bool
	op    nodeKind
}

// moreBinding reports whether o, found after an operand, takes that operand
// from a pending operator than.
func (o operator) moreBinding(than operator) bool {
	if o.prec != than.prec {
		return o.prec > than.prec
	}
	return o.right
}

var (
	infix = map[string]operator{
		"+": {1, false, nodeAdd},
		"-": {1, false, nodeSub},
		"*": {5, false, nodeMul},
		"×": {5, false, nodeMul},
		"/": {5, false, nodeDiv},
		"÷": {5, false, nodeDiv},
		"^": {15, true, nodePow},
	}
	prefix = map[string]operator{
		"+": {10, true, nodeNop},
		"-": {10, true, nodeNeg},
	}
)

// binop gets an infix operator. Unknown operators have op nodeNone.
func binop(text string) operator {
	return infix[text]
}

// unop gets a prefix operator. Unknown operators have op nodeNone.
func unop(text string) operator {
	return prefix[text]
}

var (
	// termprec is the precedence of juxtaposition, the same as *.
	termprec = operator{5, true, nodeMul}
	powprec  = binop("^")
	// exprprec binds looser than everything, to parse a whole expression.
	exprprec = operator{-128, true, nodeNone}
)
