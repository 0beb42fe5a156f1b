package handler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tillpos/internal/dto"
	"tillpos/internal/money"
)

func TestValidatePayment_ZeroAmountSplitAccepted(t *testing.T) {
	// A 0.00 tender in a split is legal input — rejecting it here would
	// block the request before the service ever sees it.
	req := dto.SettleSaleRequest{
		Items: []dto.CartItemRequest{
			{ProductID: "a3bb189e-8bf9-3888-9912-ace4e6543002", Quantity: ptrInt64(1)},
		},
		Payments: []dto.PaymentRequest{
			{Method: "cash", Amount: money.MustParse("18.00")},
			{Method: "pix", Amount: money.Zero},
		},
	}
	assert.NoError(t, validate.Struct(req))
}

func TestValidatePayment_NegativeAmountRejected(t *testing.T) {
	req := dto.PaymentRequest{Method: "cash", Amount: money.MustParse("-0.01")}
	assert.Error(t, validate.Struct(req))
}

func TestValidatePayment_UnknownMethodRejected(t *testing.T) {
	req := dto.PaymentRequest{Method: "crypto", Amount: money.MustParse("10.00")}
	assert.Error(t, validate.Struct(req))
}

func TestValidateDiscount_ValueIsNumericForTags(t *testing.T) {
	// decimal.Decimal registers as a numeric type, so min=0 applies.
	neg := decimal.NewFromInt(-5)
	req := dto.DiscountRequest{Kind: "percent", Value: neg}
	require.Error(t, validate.Struct(req))
}

func ptrInt64(n int64) *int64 { return &n }
