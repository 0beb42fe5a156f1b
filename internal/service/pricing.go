package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"tillpos/internal/model"
	"tillpos/internal/money"
)

// pricing.go — pure line and sale arithmetic. No I/O: these functions are
// re-run on every cart mutation and their results are what the settlement
// engine validates tenders against.

// Discount is the tagged percent-or-value representation shared by line items
// and the overall sale discount.
type Discount struct {
	Kind  model.DiscountKind
	Value decimal.Decimal
}

// NoDiscount is the zero-value absolute discount.
var NoDiscount = Discount{Kind: model.DiscountValue, Value: decimal.Zero}

// Amount resolves the discount against a base amount. Percent discounts round
// half-up to the minor unit; value discounts are taken as-is.
func (d Discount) Amount(base money.Money) (money.Money, error) {
	switch d.Kind {
	case model.DiscountPercent:
		if d.Value.IsNegative() || d.Value.GreaterThan(decimal.NewFromInt(100)) {
			return money.Zero, fmt.Errorf("%w: percent %s out of [0,100]", ErrInvalidDiscount, d.Value)
		}
		return base.Percent(d.Value), nil
	case model.DiscountValue:
		if d.Value.IsNegative() {
			return money.Zero, fmt.Errorf("%w: negative discount value", ErrInvalidDiscount)
		}
		return money.New(d.Value), nil
	default:
		return money.Zero, fmt.Errorf("unknown discount kind %q", d.Kind)
	}
}

// CartLine is one line of a sale draft before settlement. Exactly one of
// Quantity / Weight must be set, and Weight only for weighted products.
type CartLine struct {
	Product  *model.Product
	Quantity *int64
	Weight   *decimal.Decimal
	Discount Discount
}

// LineAmounts is the computed result for one line.
type LineAmounts struct {
	Base     money.Money
	Discount money.Money
	Subtotal money.Money
}

// ComputeItemSubtotal computes base = (quantity | weight) × unit price and
// applies the line discount. A discount that would push the subtotal negative
// is rejected with ErrInvalidDiscount rather than clamped, so bad input is
// caught at entry time and stays auditable.
func ComputeItemSubtotal(line CartLine) (LineAmounts, error) {
	if line.Product == nil {
		return LineAmounts{}, fmt.Errorf("cart line has no product")
	}
	if (line.Quantity == nil) == (line.Weight == nil) {
		return LineAmounts{}, fmt.Errorf("cart line for %s: exactly one of quantity or weight must be set", line.Product.Code)
	}

	var base money.Money
	switch {
	case line.Weight != nil:
		if !line.Product.Weighted {
			return LineAmounts{}, fmt.Errorf("product %s is not sold by weight", line.Product.Code)
		}
		if !line.Weight.IsPositive() {
			return LineAmounts{}, fmt.Errorf("%w: weight must be positive", ErrInvalidAmount)
		}
		base = line.Product.Price.MulDecimal(*line.Weight)
	default:
		if *line.Quantity <= 0 {
			return LineAmounts{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidAmount)
		}
		base = line.Product.Price.MulInt(*line.Quantity)
	}

	disc, err := line.Discount.Amount(base)
	if err != nil {
		return LineAmounts{}, err
	}
	if base.LessThan(disc) {
		return LineAmounts{}, fmt.Errorf("%w: discount %s exceeds line base %s", ErrInvalidDiscount, disc, base)
	}

	return LineAmounts{Base: base, Discount: disc, Subtotal: base.Sub(disc)}, nil
}

// SaleAmounts is the computed result for a whole sale.
type SaleAmounts struct {
	Lines    []LineAmounts
	Subtotal money.Money
	Discount money.Money
	Total    money.Money
}

// ComputeSaleTotals computes all line subtotals, the overall discount and the
// sale total. The overall discount floors the total at zero — an overall
// discount larger than the subtotal is rejected, same rule as line discounts.
func ComputeSaleTotals(lines []CartLine, overall Discount) (SaleAmounts, error) {
	out := SaleAmounts{Lines: make([]LineAmounts, 0, len(lines))}
	for i, line := range lines {
		amounts, err := ComputeItemSubtotal(line)
		if err != nil {
			return SaleAmounts{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		out.Lines = append(out.Lines, amounts)
		out.Subtotal = out.Subtotal.Add(amounts.Subtotal)
	}

	disc, err := overall.Amount(out.Subtotal)
	if err != nil {
		return SaleAmounts{}, err
	}
	if out.Subtotal.LessThan(disc) {
		return SaleAmounts{}, fmt.Errorf("%w: overall discount %s exceeds subtotal %s", ErrInvalidDiscount, disc, out.Subtotal)
	}
	out.Discount = disc
	out.Total = out.Subtotal.Sub(disc)
	return out, nil
}

// CalculateCommission derives a seller commission: round(total × percent / 100),
// half-up to the minor unit — the same rounding rule as percentage discounts.
func CalculateCommission(saleTotal money.Money, percent decimal.Decimal) money.Money {
	return saleTotal.Percent(percent)
}
