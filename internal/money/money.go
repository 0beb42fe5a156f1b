// Package money provides an exact fixed-point currency type.
// All monetary fields in the system use Money — never float64 — so that
// reconciliation and tender-sum checks can rely on exact equality.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// scale is the number of minor-unit digits (cents).
const scale = 2

// Money is a signed amount in currency units with two decimal places.
// The zero value is a valid zero amount.
type Money struct {
	d decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Zero is the zero amount.
var Zero = Money{}

// New builds a Money from a decimal, rounded to the minor unit.
func New(d decimal.Decimal) Money {
	return Money{d: d.Round(scale)}
}

// FromCents builds a Money from integer minor units (e.g. 2550 → 25.50).
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -scale)}
}

// FromInt builds a Money from whole currency units.
func FromInt(units int64) Money {
	return Money{d: decimal.NewFromInt(units)}
}

// Parse builds a Money from its string representation ("25.50").
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return New(d), nil
}

// MustParse is Parse for test fixtures and constants; panics on bad input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(x Money) Money { return Money{d: m.d.Add(x.d)} }
func (m Money) Sub(x Money) Money { return Money{d: m.d.Sub(x.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }
func (m Money) Abs() Money        { return Money{d: m.d.Abs()} }

// MulInt scales the amount by an integer quantity (unit sales).
func (m Money) MulInt(qty int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(qty))}
}

// MulDecimal scales the amount by a decimal quantity (weighted sales),
// rounding half-up to the minor unit.
func (m Money) MulDecimal(qty decimal.Decimal) Money {
	return Money{d: m.d.Mul(qty).Round(scale)}
}

// Percent returns pct% of the amount, rounded half-up to the minor unit.
// This is the single rounding rule for discounts and commissions.
func (m Money) Percent(pct decimal.Decimal) Money {
	return Money{d: m.d.Mul(pct).Div(hundred).Round(scale)}
}

func (m Money) Equal(x Money) bool    { return m.d.Equal(x.d) }
func (m Money) LessThan(x Money) bool { return m.d.LessThan(x.d) }
func (m Money) Cmp(x Money) int       { return m.d.Cmp(x.d) }
func (m Money) IsZero() bool          { return m.d.IsZero() }
func (m Money) IsNegative() bool      { return m.d.IsNegative() }
func (m Money) IsPositive() bool      { return m.d.IsPositive() }

// Cents returns the amount in integer minor units.
func (m Money) Cents() int64 {
	return m.d.Shift(scale).IntPart()
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// String renders with exactly two decimal places ("25.50").
func (m Money) String() string { return m.d.StringFixed(scale) }

// ── JSON / SQL round-trip ────────────────────────────────────────────────────
// Delegates to shopspring/decimal so that postgres decimal(12,2) columns and
// JSON payloads preserve the exact value.

func (m Money) MarshalJSON() ([]byte, error) {
	return m.d.MarshalJSON()
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.d = d.Round(scale)
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.d.Value()
}

func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	m.d = d
	return nil
}

// Sum adds a slice of amounts.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
