package report

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in centavos. Sums never touch floating point; the
// decimal form only appears when the value is formatted.
type Money int64

var ErrInvalidMoney = errors.New("invalid money amount")

func Centavos(c int64) Money { return Money(c) }

func Reais(r int64) Money { return Money(r * 100) }

// ParseMoney reads a decimal amount such as "12", "12.5" or "-0.05". More
// than two fractional digits are rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidMoney)
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("%w: more than two decimals in %q", ErrInvalidMoney, s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	if w > (math.MaxInt64-f)/100 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidMoney, s)
	}

	v := w*100 + f
	if neg {
		v = -v
	}
	return Money(v), nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (m Money) Centavos() int64 { return int64(m) }

// Mul multiplies by an integer quantity.
func (m Money) Mul(q int) Money { return m * Money(q) }

// Div splits m into n parts, rounding half away from zero. Zero parts yield zero.
func (m Money) Div(n int) Money {
	if n <= 0 {
		return 0
	}
	d := int64(n)
	v := int64(m)
	q, r := v/d, v%d
	if r < 0 {
		r = -r
	}
	if 2*r >= d {
		if v < 0 {
			q--
		} else {
			q++
		}
	}
	return Money(q)
}

func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		if v == math.MinInt64 {
			return "-92233720368547758.08"
		}
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON emits an exact decimal number, e.g. 1234.50.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if string(data) == "null" {
		return nil
	}
	v, err := ParseMoney(string(data))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Percent is a percentage, e.g. 12.5 for 12.5%. It is rounded to one decimal
// only when formatted.
type Percent float64

// Ratio returns num/den as a percentage, or 0 when den is 0.
func Ratio(num, den int64) Percent {
	if den == 0 {
		return 0
	}
	return Percent(float64(num) / float64(den) * 100)
}

// Growth returns the percentage change from previous to current, or 0 when
// previous is 0.
func Growth(current, previous Money) Percent {
	if previous == 0 {
		return 0
	}
	return Percent(float64(current-previous) / math.Abs(float64(previous)) * 100)
}

func (p Percent) Rounded() float64 {
	f := float64(p)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	r := math.Round(f*10) / 10
	if r == 0 {
		return 0
	}
	return r
}

func (p Percent) String() string {
	return strconv.FormatFloat(p.Rounded(), 'f', 1, 64)
}

func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(bytes.Trim(data, `"`)), 64)
	if err != nil {
		return err
	}
	*p = Percent(f)
	return nil
}
