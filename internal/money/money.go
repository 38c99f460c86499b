package money

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Money keeps amounts in cents so totals never accumulate float error.
type Money struct{ Cents int64 }

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Mul(qty int) Money { return Money{Cents: m.Cents * int64(qty)} }

// FromDecimal rounds a currency amount (e.g. 19.99) to whole cents.
func FromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

func (m Money) Decimal() decimal.Decimal { return decimal.New(m.Cents, -2) }

// String renders "$1,234.56".
func (m Money) String() string {
	c := m.Cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(c/100), c%100)
}
