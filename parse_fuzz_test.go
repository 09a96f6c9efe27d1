package scicalc_test

import (
	"strings"
	"testing"

	"github.com/zephyrtronium/scicalc"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("y")
	f.Add("1×2")
	f.Add("3!+2")
	f.Add("2π√(16)")
	f.Add("(-2)^3÷0")
	f.Fuzz(func(t *testing.T, s string) {
		scicalc.Parse(strings.NewReader(s))
	})
}
