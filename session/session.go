// Package session holds the state of one calculator: the expression being
// typed and the last result shown for it.
package session

import (
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/zephyrtronium/scicalc"
)

// ErrorMarker is the result text shown when an explicit evaluation fails.
const ErrorMarker = "Error"

// AnsName is the variable name bound to the last successful result.
const AnsName = "ans"

// State is the position of a session in its edit/evaluate cycle.
type State int

const (
	// Empty means the buffer is empty.
	Empty State = iota
	// Editing means the buffer has changed since the last evaluation.
	Editing
	// Evaluated means the last evaluation succeeded.
	Evaluated
	// Error means the last evaluation failed.
	Error
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Editing:
		return "editing"
	case Evaluated:
		return "evaluated"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of an explicit evaluation.
type Result struct {
	// Value is the formatted number. It is empty when Err is non-nil.
	Value string
	// Err is the evaluation error, if any. It is usually a
	// scicalc.InputError, *scicalc.DomainError, or *scicalc.NameError.
	Err error
}

// OK reports whether the evaluation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// String returns the text a calculator shows for the result.
func (r Result) String() string {
	if r.Err != nil {
		return ErrorMarker
	}
	return r.Value
}

// Session is a single calculator session. It is not safe for concurrent use.
type Session struct {
	buffer string
	result string
	state  State

	// ans is the last successful result and ansText its formatted text.
	ans     *big.Float
	ansText string
	// parse makes ans a known name once there is an answer, so that it
	// combines with other names as in eans or ansπ.
	parse scicalc.ParseOption

	ctx    *scicalc.Context
	digits int
	chain  bool
	log    zerolog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithPrecision sets the precision of evaluation in bits.
func WithPrecision(prec uint) Option {
	return func(s *Session) {
		if prec > 0 {
			s.ctx = scicalc.NewContext(scicalc.Prec(prec))
		}
	}
}

// WithDigits sets the number of significant digits in results.
func WithDigits(digits int) Option {
	return func(s *Session) {
		s.digits = digits
	}
}

// WithChain sets whether a successful evaluation replaces the buffer with
// its result. Chaining is on by default.
func WithChain(chain bool) Option {
	return func(s *Session) {
		s.chain = chain
	}
}

// WithLogger sets the logger that receives evaluation failures.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// New creates an empty session.
func New(opts ...Option) *Session {
	s := &Session{
		ctx:    scicalc.NewContext(),
		digits: scicalc.DefaultDigits,
		chain:  true,
		log:    zerolog.Nop(),
		parse:  scicalc.ParsingPreset(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Buffer returns the expression text.
func (s *Session) Buffer() string {
	return s.buffer
}

// Result returns the last result text: a number, ErrorMarker, or empty.
func (s *Session) Result() string {
	return s.result
}

// State returns the session state.
func (s *Session) State() State {
	return s.state
}

// Append adds token to the end of the buffer as typed. Nothing is checked
// until evaluation.
func (s *Session) Append(token string) {
	s.buffer += token
	s.edited()
}

// Backspace removes the last character of the buffer, if any.
func (s *Session) Backspace() {
	if s.buffer == "" {
		return
	}
	_, n := utf8.DecodeLastRuneInString(s.buffer)
	s.buffer = s.buffer[:len(s.buffer)-n]
	s.edited()
}

// Clear empties the buffer and the result. The last answer is kept for Ans.
func (s *Session) Clear() {
	s.buffer = ""
	s.result = ""
	s.state = Empty
}

// PressFunction appends the text for a function key. Factorial is postfix,
// so "!" is appended alone; sqrt is written as the radical sign. Every other
// name is appended with an open parenthesis for the caller to close.
func (s *Session) PressFunction(name string) {
	switch name {
	case "!", "factorial":
		s.Append("!")
	case "sqrt", "√":
		s.Append("√(")
	default:
		s.Append(name + "(")
	}
}

// Ans appends the last successful result. It does nothing before the first
// successful evaluation.
func (s *Session) Ans() {
	if s.ansText == "" {
		return
	}
	s.Append(s.ansText)
}

// Evaluate evaluates the buffer. On success the result becomes the formatted
// value and, with chaining, the buffer is replaced with it. On failure the
// result becomes ErrorMarker and the buffer is left for correction. An empty
// buffer evaluates to nothing and changes nothing.
func (s *Session) Evaluate() Result {
	if strings.TrimSpace(s.buffer) == "" {
		return Result{}
	}
	v, err := s.eval()
	if err != nil {
		s.log.Debug().
			Err(err).
			Str("buffer", s.buffer).
			Int("pos", scicalc.ErrorPos(err)).
			Msg("evaluation failed")
		s.result = ErrorMarker
		s.state = Error
		return Result{Err: err}
	}
	text := scicalc.Format(v, s.digits)
	s.result = text
	s.ans = v
	s.ansText = text
	s.parse = ansPreset(v)
	s.state = Evaluated
	if s.chain {
		s.buffer = text
	}
	return Result{Value: text}
}

// Preview evaluates the buffer without changing anything. Any failure gives
// an empty string, so a half-typed expression shows nothing.
func (s *Session) Preview() string {
	if strings.TrimSpace(s.buffer) == "" {
		return ""
	}
	v, err := s.eval()
	if err != nil {
		return ""
	}
	return scicalc.Format(v, s.digits)
}

// Display returns the text for the result line: the result of the last
// evaluation if nothing has been typed since, otherwise the preview.
func (s *Session) Display() string {
	switch s.state {
	case Evaluated, Error:
		return s.result
	default:
		return s.Preview()
	}
}

func (s *Session) eval() (*big.Float, error) {
	e, err := scicalc.ParseString(s.buffer, s.parse)
	if err != nil {
		return nil, err
	}
	v := s.ctx.Eval(e)
	if v == nil {
		return nil, s.ctx.Err()
	}
	return v, nil
}

// ansPreset returns parsing options under which ans is a constant with the
// value v.
func ansPreset(v *big.Float) scicalc.ParseOption {
	ans := scicalc.Niladic(func(out *big.Float) *big.Float {
		return out.Set(v)
	})
	return scicalc.ParsingPreset(scicalc.ParseFuncs(map[string]scicalc.Func{AnsName: ans}))
}

func (s *Session) edited() {
	if s.buffer == "" {
		s.state = Empty
		return
	}
	s.state = Editing
}
