package common

import (
	"fmt"
	"math/big"
	"strings"
)

// maxUint256Plus1 is 2**256, the exclusive ceiling every asset quantity
// (scaled to its integer representation) must stay under.
var maxUint256Plus1 = new(big.Int).Lsh(big.NewInt(1), 256)

// Amount is a non-negative decimal quantity carried as an integer number
// of the asset's smallest unit (value * 10^precision). A quantity is
// only ever stored at the precision its asset defines, and overflow is
// checked against 2**256 smallest units.
type Amount struct {
	units     *big.Int
	precision uint8
}

// ZeroAmount returns the zero value at the given precision.
func ZeroAmount(precision uint8) Amount {
	return Amount{units: big.NewInt(0), precision: precision}
}

// ParseAmount parses a plain decimal string ("10", "10.00", "0.001") at
// the given precision. The string must not have more fractional digits
// than precision allows.
func ParseAmount(s string, precision uint8) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("common: empty amount")
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		return Amount{}, fmt.Errorf("common: negative amount %q not allowed", s)
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if len(fracPart) > int(precision) {
		return Amount{}, fmt.Errorf("common: amount %q has more than %d fractional digits", s, precision)
	}
	fracPart = fracPart + strings.Repeat("0", int(precision)-len(fracPart))
	digits := intPart + fracPart
	if digits == "" {
		digits = "0"
	}
	units, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Amount{}, fmt.Errorf("common: invalid amount %q", s)
	}
	if units.Sign() < 0 {
		return Amount{}, fmt.Errorf("common: negative amount %q not allowed", s)
	}
	return Amount{units: units, precision: precision}, nil
}

// Precision returns the asset's decimal precision.
func (a Amount) Precision() uint8 { return a.precision }

// Units returns the underlying integer count of smallest units.
func (a Amount) Units() *big.Int {
	if a.units == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.units)
}

// String renders the amount back to a plain decimal string.
func (a Amount) String() string {
	units := a.Units()
	if a.precision == 0 {
		return units.String()
	}
	s := units.String()
	for len(s) <= int(a.precision) {
		s = "0" + s
	}
	split := len(s) - int(a.precision)
	intPart, fracPart := s[:split], s[split:]
	return intPart + "." + fracPart
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.Units().Sign() == 0 }

// SamePrecision reports whether a and b share a precision.
func (a Amount) SamePrecision(b Amount) bool { return a.precision == b.precision }

// Add returns a+b. Both operands must share precision.
func (a Amount) Add(b Amount) (Amount, error) {
	if !a.SamePrecision(b) {
		return Amount{}, fmt.Errorf("common: precision mismatch %d != %d", a.precision, b.precision)
	}
	sum := new(big.Int).Add(a.Units(), b.Units())
	if sum.Cmp(maxUint256Plus1) >= 0 {
		return Amount{}, fmt.Errorf("common: amount overflow")
	}
	return Amount{units: sum, precision: a.precision}, nil
}

// Sub returns a-b, failing if the result would be negative. Both
// operands must share precision.
func (a Amount) Sub(b Amount) (Amount, error) {
	if !a.SamePrecision(b) {
		return Amount{}, fmt.Errorf("common: precision mismatch %d != %d", a.precision, b.precision)
	}
	diff := new(big.Int).Sub(a.Units(), b.Units())
	if diff.Sign() < 0 {
		return Amount{}, fmt.Errorf("common: insufficient quantity")
	}
	return Amount{units: diff, precision: a.precision}, nil
}

// GobEncode serializes the precision byte followed by the decimal unit
// digits; without it gob would reject the struct's unexported fields.
func (a Amount) GobEncode() ([]byte, error) {
	return append([]byte{a.precision}, a.Units().String()...), nil
}

// GobDecode is the inverse of GobEncode.
func (a *Amount) GobDecode(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("common: truncated amount encoding")
	}
	units, ok := new(big.Int).SetString(string(data[1:]), 10)
	if !ok || units.Sign() < 0 {
		return fmt.Errorf("common: corrupt amount encoding")
	}
	a.precision = data[0]
	a.units = units
	return nil
}

// Cmp compares a to b; operands must share precision.
func (a Amount) Cmp(b Amount) (int, error) {
	if !a.SamePrecision(b) {
		return 0, fmt.Errorf("common: precision mismatch %d != %d", a.precision, b.precision)
	}
	return a.Units().Cmp(b.Units()), nil
}
