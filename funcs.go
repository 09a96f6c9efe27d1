package scicalc

import (
	"errors"
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a function from reals to reals. Functions may but generally should
// not look up variables. The function should set r to its result and should
// not use the value of r otherwise.
type Func interface {
	// Call evaluates the function. The function arguments are passed in invoc.
	// semis is the indices of arguments which are preceded by semicolons.
	// The function may but generally should not look up variables. The
	// function must set r to its result and should not use the value of r
	// otherwise. invoc has a length for which CanCall returned true. Call may
	// modify the elements of invoc.
	Call(ctx *Context, invoc []*big.Float, semis []int, r *big.Float) error

	// CanCall returns whether the function can be called with n arguments.
	// This controls how the expression parser handles instances of this
	// function:
	//
	// 	1.	If a bracketed list of n > 0 expressions follows a function, the
	//		parser treats it as an argument list if CanCall(n). (If n is 1 and
	//		!CanCall(1) and CanCall(0), then the list is a multiplication;
	//		otherwise, it is rejected.)
	//
	// 	2.	If a bare term follows a function and CanCall(1), then the parser
	//		treats the term as an argument to the function. E.g., "exp x" is
	//		parsed as "exp(x)". (If !CanCall(1), then it is a multiplication.)
	CanCall(n int) bool
}

// MaxFactorial is the largest argument accepted by factorial.
const MaxFactorial = 100000

var (
	sqrtfn = restricted("sqrt", (*big.Float).Sqrt, nonneg)
	factfn = restricted("!", factorial, natural)
)

var globalfuncs = map[string]Func{
	"exp":  Monadic(exp),
	"ln":   restricted("ln", bigfloat.Log, positive),
	"log":  logfn{},
	"sqrt": sqrtfn,
	"√":    sqrtfn,

	"sin": Monadic(sin),
	"cos": Monadic(cos),
	"tan": restricted("tan", tan, nil),

	"factorial": factfn,

	// constants
	"pi": Niladic(pi),
	"π":  Niladic(pi),
	"e": Niladic(func(out *big.Float) *big.Float {
		return exp(out, new(big.Float).SetPrec(out.Prec()).SetInt64(1))
	}),
}

type monadic struct {
	f func(out, in *big.Float) *big.Float
	// domain reports whether an argument is acceptable. nil means any real.
	domain func(in *big.Float) bool
	name   string
}

func (m monadic) Call(ctx *Context, invoc []*big.Float, semis []int, r *big.Float) (err error) {
	in := invoc[0]
	if m.domain != nil && !m.domain(in) {
		return &DomainError{X: new(big.Float).Copy(in), Func: m.name}
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err = r.(error) // panic if not error
		if errors.As(err, new(*DomainError)) || errors.As(err, new(big.ErrNaN)) {
			return
		}
		panic(err)
	}()
	r.SetPrec(ctx.Prec())
	m.f(r, in)
	return nil
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func. f must set out to its
// result, to the precision of out; its return value is always ignored. If f is
// called on an argument outside f's domain, it should panic with an error of
// type big.ErrNaN or *DomainError, or that unwraps to one.
func Monadic(f func(out, in *big.Float) *big.Float) Func {
	return monadic{f: f}
}

// restricted wraps a function of one variable that is only defined where
// domain returns true. Arguments outside the domain give a *DomainError
// naming the function without calling f.
func restricted(name string, f func(out, in *big.Float) *big.Float, domain func(*big.Float) bool) Func {
	return monadic{f: f, domain: domain, name: name}
}

type niladic struct {
	f func(out *big.Float) *big.Float
}

func (n niladic) Call(ctx *Context, invoc []*big.Float, semis []int, r *big.Float) (err error) {
	r.SetPrec(ctx.Prec())
	n.f(r)
	return nil
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic wraps a function of zero variables, generally a function which
// computes a constant, into a Func. f must set out to its result; its return
// value is always ignored. Unlike Monadic, the wrapped function is expected
// never to panic.
func Niladic(f func(out *big.Float) *big.Float) Func {
	return niladic{f}
}

// logfn is the common logarithm, or the logarithm to the base given as a
// second argument.
type logfn struct{}

func (logfn) Call(ctx *Context, invoc []*big.Float, semis []int, r *big.Float) error {
	x := invoc[0]
	if !positive(x) {
		return &DomainError{X: new(big.Float).Copy(x), Arg: 1, Func: "log"}
	}
	b := new(big.Float).SetPrec(ctx.Prec() + 32).SetInt64(10)
	if len(invoc) == 2 {
		b.Set(invoc[1])
		if !positive(b) || b.Cmp(big.NewFloat(1)) == 0 {
			return &DomainError{X: new(big.Float).Copy(invoc[1]), Arg: 2, Func: "log"}
		}
	}
	num := new(big.Float).SetPrec(ctx.Prec() + 32)
	bigfloat.Log(num, x)
	bigfloat.Log(b, b)
	r.SetPrec(ctx.Prec())
	r.Quo(num, b)
	return nil
}

func (logfn) CanCall(n int) bool {
	return n == 1 || n == 2
}

func nonneg(x *big.Float) bool {
	return x.Sign() >= 0 && !x.IsInf()
}

func positive(x *big.Float) bool {
	return x.Sign() > 0 && !x.IsInf()
}

// natural reports whether x is an integer in [0, MaxFactorial].
func natural(x *big.Float) bool {
	if x.Signbit() || !x.IsInt() || x.IsInf() {
		return false
	}
	n, acc := x.Int64()
	return acc == big.Exact && n <= MaxFactorial
}

// factorial sets out to in!. in must satisfy natural.
func factorial(out, in *big.Float) *big.Float {
	n, _ := in.Int64()
	var z big.Int
	z.MulRange(1, n)
	return out.SetInt(&z)
}

// exp sets out to e^in. Results beyond MaxMagnitude are an infinity or zero,
// the same as powers.
func exp(out, in *big.Float) *big.Float {
	if f, _ := in.Float64(); math.Abs(f) > MaxMagnitude*math.Ln2 {
		if f > 0 {
			return out.SetInf(false)
		}
		return out.SetInt64(0)
	}
	return out.Set(bigfloat.Exp(out, in))
}

func pi(out *big.Float) *big.Float {
	return bigfloat.Pi(out)
}

// reduce sets r to x reduced into [-π, π] and returns the working precision
// used for the reduction.
func reduce(r, x *big.Float, prec uint) uint {
	wp := prec + 32
	if exp := x.MantExp(nil); exp > 0 {
		wp += uint(exp)
	}
	tau := pi(new(big.Float).SetPrec(wp))
	tau.Mul(tau, big.NewFloat(2))
	q := new(big.Float).SetPrec(wp).Quo(x, tau)
	half := big.NewFloat(0.5)
	if q.Signbit() {
		q.Sub(q, half)
	} else {
		q.Add(q, half)
	}
	k, _ := q.Int(nil)
	q.SetInt(k)
	q.Mul(q, tau)
	r.SetPrec(wp).Sub(x, q)
	return wp
}

// taylor sets out to the sum over n ≥ 0 of (-1)^n x^(2n+k) / (2n+k)!, which
// is sin x for k = 1 and cos x for k = 0.
func taylor(out, x *big.Float, k int64, wp uint) *big.Float {
	sum := new(big.Float).SetPrec(wp)
	term := new(big.Float).SetPrec(wp).SetInt64(1)
	if k == 1 {
		term.Set(x)
	}
	x2 := new(big.Float).SetPrec(wp).Mul(x, x)
	den := new(big.Float).SetPrec(wp)
	for i := k; ; i += 2 {
		sum.Add(sum, term)
		term.Mul(term, x2)
		den.SetInt64(-(i + 1) * (i + 2))
		term.Quo(term, den)
		if term.Sign() == 0 || term.MantExp(nil)-sum.MantExp(nil) < -int(wp) {
			break
		}
	}
	return out.Set(sum)
}

// MaxTrigExp is the largest binary exponent of an argument to a trigonometric
// function. Reducing x modulo 2π takes π to about as many bits as x has
// before its binary point.
const MaxTrigExp = 1 << 14

// trigdomain panics with a DomainError if in is too large to reduce.
func trigdomain(name string, in *big.Float) {
	if in.IsInf() || in.MantExp(nil) > MaxTrigExp {
		panic(&DomainError{X: new(big.Float).Copy(in), Func: name})
	}
}

func sin(out, in *big.Float) *big.Float {
	trigdomain("sin", in)
	var r big.Float
	wp := reduce(&r, in, out.Prec())
	return taylor(out, &r, 1, wp)
}

func cos(out, in *big.Float) *big.Float {
	trigdomain("cos", in)
	var r big.Float
	wp := reduce(&r, in, out.Prec())
	return taylor(out, &r, 0, wp)
}

func tan(out, in *big.Float) *big.Float {
	trigdomain("tan", in)
	var r big.Float
	wp := reduce(&r, in, out.Prec())
	s := taylor(new(big.Float).SetPrec(wp), &r, 1, wp)
	c := taylor(new(big.Float).SetPrec(wp), &r, 0, wp)
	if c.Sign() == 0 {
		panic(&DomainError{X: new(big.Float).Copy(in), Func: "tan"})
	}
	return out.Quo(s, c)
}

// DomainError is an error returned when a function is called on arguments
// outside its domain. DomainError unwraps to big.ErrNaN.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

func (err *DomainError) Unwrap() error {
	return big.ErrNaN{}
}
