package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tillpos/internal/model"
	"tillpos/internal/money"
	"tillpos/internal/service"
)

func qty(n int64) *int64 { return &n }

func weight(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func unitProduct(code, price string) *model.Product {
	return &model.Product{Code: code, Name: code, Price: money.MustParse(price), UnitType: model.UnitCount, Active: true}
}

func weightedProduct(code, price string) *model.Product {
	return &model.Product{Code: code, Name: code, Price: money.MustParse(price), UnitType: model.UnitWeight, Weighted: true, Active: true}
}

func TestComputeItemSubtotal_Quantity(t *testing.T) {
	amounts, err := service.ComputeItemSubtotal(service.CartLine{
		Product:  unitProduct("A1", "10.00"),
		Quantity: qty(2),
		Discount: service.NoDiscount,
	})
	require.NoError(t, err)
	assert.Equal(t, "20.00", amounts.Base.String())
	assert.Equal(t, "0.00", amounts.Discount.String())
	assert.Equal(t, "20.00", amounts.Subtotal.String())
}

func TestComputeItemSubtotal_Weight(t *testing.T) {
	// 0.750 kg × 9.99/kg = 7.4925 → rounds half-up to 7.49
	amounts, err := service.ComputeItemSubtotal(service.CartLine{
		Product:  weightedProduct("BAN", "9.99"),
		Weight:   weight("0.750"),
		Discount: service.NoDiscount,
	})
	require.NoError(t, err)
	assert.Equal(t, "7.49", amounts.Subtotal.String())
}

func TestComputeItemSubtotal_PercentDiscount(t *testing.T) {
	amounts, err := service.ComputeItemSubtotal(service.CartLine{
		Product:  unitProduct("A1", "10.00"),
		Quantity: qty(3),
		Discount: service.Discount{Kind: model.DiscountPercent, Value: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)
	assert.Equal(t, "30.00", amounts.Base.String())
	assert.Equal(t, "3.00", amounts.Discount.String())
	assert.Equal(t, "27.00", amounts.Subtotal.String())
}

func TestComputeItemSubtotal_ValueDiscount(t *testing.T) {
	amounts, err := service.ComputeItemSubtotal(service.CartLine{
		Product:  unitProduct("A1", "15.50"),
		Quantity: qty(1),
		Discount: service.Discount{Kind: model.DiscountValue, Value: decimal.RequireFromString("5.50")},
	})
	require.NoError(t, err)
	assert.Equal(t, "10.00", amounts.Subtotal.String())
}

func TestComputeItemSubtotal_DiscountExceedsBase(t *testing.T) {
	// A value discount that would push the line negative is rejected, not clamped.
	_, err := service.ComputeItemSubtotal(service.CartLine{
		Product:  unitProduct("A1", "10.00"),
		Quantity: qty(1),
		Discount: service.Discount{Kind: model.DiscountValue, Value: decimal.RequireFromString("10.01")},
	})
	assert.ErrorIs(t, err, service.ErrInvalidDiscount)
}

func TestComputeItemSubtotal_QuantityAndWeightBothSet(t *testing.T) {
	_, err := service.ComputeItemSubtotal(service.CartLine{
		Product:  weightedProduct("BAN", "9.99"),
		Quantity: qty(1),
		Weight:   weight("0.5"),
	})
	assert.ErrorContains(t, err, "exactly one of quantity or weight")

	_, err = service.ComputeItemSubtotal(service.CartLine{
		Product: unitProduct("A1", "10.00"),
	})
	assert.ErrorContains(t, err, "exactly one of quantity or weight")
}

func TestComputeItemSubtotal_WeightOnUnitProduct(t *testing.T) {
	_, err := service.ComputeItemSubtotal(service.CartLine{
		Product: unitProduct("A1", "10.00"),
		Weight:  weight("0.5"),
	})
	assert.ErrorContains(t, err, "not sold by weight")
}

func TestComputeItemSubtotal_NonPositiveQuantity(t *testing.T) {
	_, err := service.ComputeItemSubtotal(service.CartLine{
		Product:  unitProduct("A1", "10.00"),
		Quantity: qty(0),
	})
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}

func TestComputeSaleTotals_OverallPercent(t *testing.T) {
	// 2 × 10.00 with 10% overall → 18.00
	lines := []service.CartLine{{
		Product:  unitProduct("A1", "10.00"),
		Quantity: qty(2),
		Discount: service.NoDiscount,
	}}
	amounts, err := service.ComputeSaleTotals(lines, service.Discount{
		Kind: model.DiscountPercent, Value: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "20.00", amounts.Subtotal.String())
	assert.Equal(t, "2.00", amounts.Discount.String())
	assert.Equal(t, "18.00", amounts.Total.String())
}

func TestComputeSaleTotals_LineAndOverallDiscountsStack(t *testing.T) {
	// Line: 30.00 − 10% = 27.00; second line 12.50.
	// Subtotal 39.50, overall value 4.50 → total 35.00.
	lines := []service.CartLine{
		{
			Product:  unitProduct("A1", "10.00"),
			Quantity: qty(3),
			Discount: service.Discount{Kind: model.DiscountPercent, Value: decimal.NewFromInt(10)},
		},
		{
			Product:  unitProduct("B2", "12.50"),
			Quantity: qty(1),
			Discount: service.NoDiscount,
		},
	}
	amounts, err := service.ComputeSaleTotals(lines, service.Discount{
		Kind: model.DiscountValue, Value: decimal.RequireFromString("4.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "39.50", amounts.Subtotal.String())
	assert.Equal(t, "35.00", amounts.Total.String())
}

func TestComputeSaleTotals_OverallDiscountExceedsSubtotal(t *testing.T) {
	lines := []service.CartLine{{
		Product:  unitProduct("A1", "10.00"),
		Quantity: qty(1),
		Discount: service.NoDiscount,
	}}
	_, err := service.ComputeSaleTotals(lines, service.Discount{
		Kind: model.DiscountValue, Value: decimal.RequireFromString("10.01"),
	})
	assert.ErrorIs(t, err, service.ErrInvalidDiscount)
}

func TestComputeSaleTotals_PercentOutOfRange(t *testing.T) {
	lines := []service.CartLine{{
		Product:  unitProduct("A1", "10.00"),
		Quantity: qty(1),
		Discount: service.NoDiscount,
	}}
	_, err := service.ComputeSaleTotals(lines, service.Discount{
		Kind: model.DiscountPercent, Value: decimal.NewFromInt(101),
	})
	assert.ErrorIs(t, err, service.ErrInvalidDiscount)

	_, err = service.ComputeSaleTotals(lines, service.Discount{
		Kind: model.DiscountPercent, Value: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, service.ErrInvalidDiscount)
}

func TestCalculateCommission(t *testing.T) {
	// 5% of 200.00 → 10.00
	c := service.CalculateCommission(money.MustParse("200.00"), decimal.NewFromInt(5))
	assert.Equal(t, "10.00", c.String())

	// Half-up rounding at the minor unit: 3.5% of 33.33 = 1.16655 → 1.17
	c = service.CalculateCommission(money.MustParse("33.33"), decimal.RequireFromString("3.5"))
	assert.Equal(t, "1.17", c.String())
}
