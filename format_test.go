package scicalc_test

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/zephyrtronium/scicalc"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		digits int
		want   string
	}{
		{"int", "1024", 15, "1024"},
		{"neg", "-8", 15, "-8"},
		{"frac", "1/4", 15, "0.25"},
		{"third", "1/3", 15, "0.333333333333333"},
		{"third-short", "1/3", 4, "0.3333"},
		{"default-digits", "2/3", 0, "0.666666666666667"},
		{"zero", "0", 15, "0"},
		{"negzero", "-0", 15, "0"},
		{"big", "10^20", 15, "1e+20"},
		{"small", "10^-20", 15, "1e-20"},
		{"fact", "20!", 15, "2.43290200817664e+18"},
		{"inf", "inf", 15, "∞"},
		{"neginf", "-∞", 15, "-∞"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := scicalc.EvalString(c.src)
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			if got := scicalc.Format(r, c.digits); got != c.want {
				t.Errorf("formatting %q: want %q, got %q", c.src, c.want, got)
			}
		})
	}
}

func TestFormatReparses(t *testing.T) {
	srcs := []string{"1/3", "2π", "10^30", "-1e-9", "inf", "-inf", "7!"}
	for _, src := range srcs {
		r, err := scicalc.EvalString(src)
		if err != nil {
			t.Fatalf("evaluating %q: %v", src, err)
		}
		s := scicalc.Format(r, scicalc.DefaultDigits)
		if _, err := scicalc.EvalString(s); err != nil {
			t.Errorf("%q formats as %q which does not evaluate: %v", src, s, err)
		}
	}
}

func ExampleFormat() {
	for _, src := range []string{"3!+2", "2^10", "1/3", "√2", "1e21"} {
		r, _ := scicalc.EvalString(src)
		fmt.Println(scicalc.Format(r, 10))
	}

	// Output:
	// 8
	// 1024
	// 0.3333333333
	// 1.414213562
	// 1e+21
}

func ExampleFormat_infinity() {
	fmt.Println(scicalc.Format(new(big.Float).SetInf(true), scicalc.DefaultDigits))

	// Output:
	// -∞
}
