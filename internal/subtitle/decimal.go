package subtitle

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// maxDigits keeps every unscaled value and its rescaling inside int64.
const maxDigits = 17

var (
	errNotDecimal = errors.New("not a plain decimal number")
	errOverflow   = errors.New("decimal result out of range")
)

// Decimal is an exact base-10 number: unscaled / 10^scale. Style values are
// added as Decimals so "1.50"+5 stays "6.50" and "2"+5 stays "7", which
// float formatting cannot guarantee.
type Decimal struct {
	unscaled int64
	scale    int
	point    bool // Written with a trailing "." and no fractional digits ("2.").
}

// ParseDecimal accepts an optionally signed plain decimal ("20", "-3",
// "3.70", ".5"). Exponents, separators and blanks are rejected.
func ParseDecimal(s string) (Decimal, error) {
	v := strings.TrimSpace(s)
	neg := false
	switch {
	case strings.HasPrefix(v, "-"):
		neg = true
		v = v[1:]
	case strings.HasPrefix(v, "+"):
		v = v[1:]
	}

	intPart, fracPart, _ := strings.Cut(v, ".")
	digits := intPart + fracPart
	if digits == "" || len(digits) > maxDigits {
		return Decimal{}, errNotDecimal
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return Decimal{}, errNotDecimal
		}
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Decimal{}, errNotDecimal
	}
	if neg {
		n = -n
	}
	point := strings.HasSuffix(v, ".") && fracPart == ""
	return Decimal{unscaled: n, scale: len(fracPart), point: point}, nil
}

// MustDecimal is ParseDecimal for constants known to be valid.
func MustDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic("subtitle: invalid decimal " + strconv.Quote(s))
	}
	return d
}

// Add returns d+o at the larger of the two scales. The result keeps d's
// trailing point when no fractional digits are needed. It fails instead of
// wrapping when the sum does not fit in int64.
func (d Decimal) Add(o Decimal) (Decimal, error) {
	scale := max(d.scale, o.scale)
	a, ok := d.rescale(scale)
	if !ok {
		return Decimal{}, errOverflow
	}
	b, ok := o.rescale(scale)
	if !ok {
		return Decimal{}, errOverflow
	}
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return Decimal{}, errOverflow
	}
	return Decimal{unscaled: a + b, scale: scale, point: scale == 0 && d.point}, nil
}

func (d Decimal) rescale(scale int) (int64, bool) {
	n := d.unscaled
	for i := d.scale; i < scale; i++ {
		if n > math.MaxInt64/10 || n < math.MinInt64/10 {
			return 0, false
		}
		n *= 10
	}
	return n, true
}

// String formats with exactly scale fractional digits and no exponent.
func (d Decimal) String() string {
	n := d.unscaled
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if d.scale > 0 {
		if len(s) <= d.scale {
			s = strings.Repeat("0", d.scale-len(s)+1) + s
		}
		s = s[:len(s)-d.scale] + "." + s[len(s)-d.scale:]
	} else if d.point {
		s += "."
	}
	if neg {
		s = "-" + s
	}
	return s
}
