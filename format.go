package scicalc

import "math/big"

// DefaultDigits is the number of significant digits Format uses when asked
// for zero or fewer.
const DefaultDigits = 15

// Format renders x as text with at most digits significant digits, using
// exponent notation only for very large or small magnitudes. Trailing zeros
// are dropped, -0 prints as 0, and infinities print as ∞ and -∞. The output
// always parses back to a number, so a result can be edited further.
func Format(x *big.Float, digits int) string {
	if digits <= 0 {
		digits = DefaultDigits
	}
	switch {
	case x.IsInf():
		if x.Signbit() {
			return "-∞"
		}
		return "∞"
	case x.Sign() == 0:
		return "0"
	}
	return x.Text('g', digits)
}
