package scicalc

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is an integer or real token.
	tokenNum
	// tokenIdent is a variable, constant, or function name.
	tokenIdent
	// tokenOp is a prefix or infix operator.
	tokenOp
	// tokenPostfix is a postfix operator, i.e. !.
	tokenPostfix
	// tokenOpen is an open bracket, e.g. (.
	tokenOpen
	// tokenClose is a close bracket, e.g. ).
	tokenClose
	// tokenSep is a function arguments separator, either , or ;.
	tokenSep
)

func (k tokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case tokenEOF:
		return "EOF"
	case tokenNum:
		return "Num"
	case tokenIdent:
		return "Ident"
	case tokenOp:
		return "Op"
	case tokenPostfix:
		return "Postfix"
	case tokenOpen:
		return "Open"
	case tokenClose:
		return "Close"
	case tokenSep:
		return "Sep"
	default:
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Operators contains the runes which are considered to be prefix or infix
// operators.
const Operators = "+-*/^×÷"

// Postfix contains the runes which are considered to be postfix operators.
const Postfix = "!"

// Radical is the square root sign. It lexes as a name on its own, so that
// √x and √(x) are both calls to sqrt.
const Radical = '√'

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The parser checks that a bracket in byte position k in OpenBrackets is
// matched with the bracket in byte position k in ClosedBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

func byteidcs(s string) []string {
	v := make([]string, len(s))
	for i, r := range s {
		v[i] = string(r)
	}
	return v
}

var (
	operstrs      = byteidcs(Operators)
	openbrackets  = byteidcs(OpenBrackets)
	closebrackets = byteidcs(CloseBrackets)
)

type lexer struct {
	src io.RuneScanner
	// look holds runes read from src but not yet consumed.
	look []rune
	off  int
	err  error
	buf  strings.Builder
	p    lexToken
	q    []lexToken
	eof  bool
	// known reports whether a name is a function or constant. A run of
	// letters that is not known itself but splits completely into known
	// names is lexed as several identifiers.
	known func(string) bool
}

// lex creates a lexer over src. Runes are read only as tokens need them, so
// that a parse which stops early leaves the rest of src for the next one.
// Reading stops at the first error from src other than io.EOF; that error is
// returned in place of the token that would have followed.
func lex(src io.RuneScanner, known func(string) bool) *lexer {
	return &lexer{src: src, known: known}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("scicalc: double push")
	}
	l.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (l *lexer) must() lexToken {
	tok := l.p
	if tok.kind == tokenNone {
		panic("scicalc: no pushed token")
	}
	l.p = lexToken{}
	return tok
}

// peek returns the rune k positions ahead of the read offset, or -1 past the
// end of the input.
func (l *lexer) peek(k int) rune {
	for len(l.look) <= k {
		if l.src == nil || l.err != nil {
			return -1
		}
		r, _, err := l.src.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.err = err
			}
			l.src = nil
			return -1
		}
		l.look = append(l.look, r)
	}
	return l.look[k]
}

// adv consumes the rune at the read offset.
func (l *lexer) adv() {
	l.look = l.look[1:]
	l.off++
}

// next scans the next token from the input. The first time EOF is encountered
// before any non-whitespace characters, the result is an EOF token with a nil
// error. Subsequent times, if the EOF token is not pushed, the result is an
// empty token with io.EOF.
func (l *lexer) next(wseof string) (lexToken, error) {
	if l.p.kind != tokenNone {
		tok := l.p
		l.p = lexToken{}
		return tok, nil
	}
	if len(l.q) > 0 {
		tok := l.q[0]
		l.q = l.q[1:]
		return tok, nil
	}
	if l.eof {
		return lexToken{}, io.EOF
	}
	defer l.buf.Reset()
	for {
		tok := lexToken{pos: l.off + 1}
		r := l.peek(0)
		if r < 0 {
			if l.err != nil {
				return tok, l.err
			}
			tok.kind = tokenEOF
			l.eof = true
			return tok, nil
		}
		switch {
		case unicode.IsSpace(r):
			l.adv()
			if strings.ContainsRune(wseof, r) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			continue
		case '0' <= r && r <= '9', r == '.':
			if err := l.scanNum(); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenNum
			return tok, nil
		case r == '_', unicode.IsLetter(r):
			l.scanIdent()
			tok.text = l.buf.String()
			// inf looks like an identifier, so check for it here.
			switch tok.text {
			case "inf", "Inf":
				tok.kind = tokenNum
				return tok, nil
			}
			tok.kind = tokenIdent
			return l.split(tok), nil
		case r == Radical:
			l.adv()
			tok.text = string(Radical)
			tok.kind = tokenIdent
			return tok, nil
		case r == ',':
			l.adv()
			tok.text = ","
			tok.kind = tokenSep
			return tok, nil
		case r == ';':
			l.adv()
			tok.text = ";"
			tok.kind = tokenSep
			return tok, nil
		case r == '∞':
			l.adv()
			tok.text = "∞"
			tok.kind = tokenNum
			return tok, nil
		default:
			l.adv()
			if k := strings.IndexRune(Operators, r); k >= 0 {
				tok.text = operstrs[k]
				tok.kind = tokenOp
				return tok, nil
			}
			if strings.ContainsRune(Postfix, r) {
				tok.text = string(r)
				tok.kind = tokenPostfix
				return tok, nil
			}
			if k := strings.IndexRune(OpenBrackets, r); k >= 0 {
				tok.text = openbrackets[k]
				tok.kind = tokenOpen
				return tok, nil
			}
			if k := strings.IndexRune(CloseBrackets, r); k >= 0 {
				tok.text = closebrackets[k]
				tok.kind = tokenClose
				return tok, nil
			}
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("")
		}
	}
}

func isdigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// scanNum scans a decimal number with an optional exponent. An e or E is
// part of the number only when digits follow it, optionally after a sign;
// otherwise the number ends before it, so 2e is the number 2 followed by the
// name e.
func (l *lexer) scanNum() error {
	var dig, dot bool
	for {
		r := l.peek(0)
		switch {
		case isdigit(r):
			dig = true
		case r == '.':
			if dot {
				l.buf.WriteRune(r)
				l.adv()
				return l.error("number")
			}
			dot = true
		default:
			if !dig {
				return l.error("number")
			}
			if r == 'e' || r == 'E' {
				l.scanExp()
			}
			if l.peek(0) == '.' {
				l.buf.WriteRune('.')
				l.adv()
				return l.error("number")
			}
			return nil
		}
		l.buf.WriteRune(r)
		l.adv()
	}
}

// scanExp scans an exponent suffix if one is present at the read offset.
func (l *lexer) scanExp() {
	k := 1
	if s := l.peek(1); s == '+' || s == '-' {
		k = 2
	}
	if !isdigit(l.peek(k)) {
		return
	}
	for i := 0; i < k; i++ {
		l.buf.WriteRune(l.peek(0))
		l.adv()
	}
	for isdigit(l.peek(0)) {
		l.buf.WriteRune(l.peek(0))
		l.adv()
	}
}

// scanIdent scans a run of letters. Digits end a name so that e2 is e times 2.
func (l *lexer) scanIdent() {
	for {
		r := l.peek(0)
		switch {
		case r == '_', unicode.IsLetter(r):
			l.buf.WriteRune(r)
			l.adv()
		default:
			return
		}
	}
}

// split breaks an identifier token into several when it is not a known name
// but is a concatenation of known names, e.g. eπ. The first piece is
// returned and the rest are queued.
func (l *lexer) split(tok lexToken) lexToken {
	if l.known == nil || l.known(tok.text) {
		return tok
	}
	parts := splitNames([]rune(tok.text), l.known)
	if len(parts) < 2 {
		return tok
	}
	pos := tok.pos
	for _, s := range parts {
		l.q = append(l.q, lexToken{text: s, kind: tokenIdent, pos: pos})
		pos += len([]rune(s))
	}
	tok = l.q[0]
	l.q = l.q[1:]
	return tok
}

// maxSplitName is the longest piece, in runes, that splitNames tries.
const maxSplitName = 16

// splitNames finds a division of s into known names, preferring longer names
// first. The result is nil if there is no such division.
func splitNames(s []rune, known func(string) bool) []string {
	// next[i] is the length of the longest known name at s[i:] which leaves
	// a remainder that also divides, or 0 if there is none.
	next := make([]int, len(s)+1)
	for i := len(s) - 1; i >= 0; i-- {
		for k := min(len(s)-i, maxSplitName); k > 0; k-- {
			if (i+k == len(s) || next[i+k] != 0) && known(string(s[i:i+k])) {
				next[i] = k
				break
			}
		}
	}
	if len(s) != 0 && next[0] == 0 {
		return nil
	}
	parts := []string{}
	for i := 0; i < len(s); i += next[i] {
		parts = append(parts, string(s[i:i+next[i]]))
	}
	return parts
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.off,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number"
	// or the empty string (if a token kind hadn't been decided).
	Kind string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
