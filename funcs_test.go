package scicalc

import (
	"math/big"
	"testing"
)

func TestNatural(t *testing.T) {
	cases := []struct {
		x    *big.Float
		want bool
	}{
		{big.NewFloat(0), true},
		{big.NewFloat(1), true},
		{big.NewFloat(MaxFactorial), true},
		{big.NewFloat(MaxFactorial + 1), false},
		{big.NewFloat(-1), false},
		{big.NewFloat(0.5), false},
		{new(big.Float).SetInf(false), false},
		{new(big.Float).Neg(big.NewFloat(0)), false},
	}
	for _, c := range cases {
		if got := natural(c.x); got != c.want {
			t.Errorf("natural(%g): want %t, got %t", c.x, c.want, got)
		}
	}
}

func TestFactorial(t *testing.T) {
	cases := []struct {
		n    float64
		want string
	}{
		{0, "1"},
		{1, "1"},
		{5, "120"},
		{10, "3628800"},
		{20, "2432902008176640000"},
	}
	for _, c := range cases {
		r := new(big.Float).SetPrec(128)
		factorial(r, big.NewFloat(c.n))
		if got := r.Text('f', 0); got != c.want {
			t.Errorf("%g!: want %s, got %s", c.n, c.want, got)
		}
	}
}

func TestReduce(t *testing.T) {
	cases := []float64{0, 1, -1, 3, 4, -4, 7, 100, -1000}
	for _, x := range cases {
		var r big.Float
		reduce(&r, big.NewFloat(x), 64)
		f, _ := r.Float64()
		if f < -3.1416 || f > 3.1416 {
			t.Errorf("reduce(%g) = %g, outside [-π, π]", x, f)
		}
	}
}

func TestDomainErrorUnwrapsToNaN(t *testing.T) {
	var err error = &DomainError{X: big.NewFloat(-1), Arg: 1, Func: "sqrt"}
	if _, ok := err.(interface{ Unwrap() error }).Unwrap().(big.ErrNaN); !ok {
		t.Errorf("%v does not unwrap to big.ErrNaN", err)
	}
	if got, want := err.Error(), "-1 outside domain of sqrt (argument 1)"; got != want {
		t.Errorf("wrong message: want %q, got %q", want, got)
	}
}
