package dto

import (
	"github.com/shopspring/decimal"
	"tillpos/internal/money"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DiscountRequest struct {
	Kind  string          `json:"kind"  validate:"required,oneof=percent value"`
	Value decimal.Decimal `json:"value" validate:"min=0"`
}

type CartItemRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  *int64           `json:"quantity"   validate:"omitempty,gt=0"`
	Weight    *decimal.Decimal `json:"weight"`
	Discount  *DiscountRequest `json:"discount"`
}

type PaymentRequest struct {
	Method string      `json:"method" validate:"required,oneof=cash pix credit debit fiado boleto check other"`
	Amount money.Money `json:"amount" validate:"min=0"`
}

type SettleSaleRequest struct {
	Items      []CartItemRequest `json:"items"      validate:"required,min=1,dive"`
	Discount   *DiscountRequest  `json:"discount"`
	Payments   []PaymentRequest  `json:"payments"   validate:"required,min=1,dive"`
	CustomerID *string           `json:"customer_id" validate:"omitempty,uuid"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

type SaleFilter struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleLineResponse struct {
	LineNo    int              `json:"line_no"`
	Product   string           `json:"product"`
	Code      string           `json:"code,omitempty"`
	Quantity  *int64           `json:"quantity,omitempty"`
	Weight    *decimal.Decimal `json:"weight,omitempty"`
	UnitPrice money.Money      `json:"unit_price"`
	Discount  money.Money      `json:"discount"`
	Subtotal  money.Money      `json:"subtotal"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	TicketNumber  int64              `json:"ticket_number"`
	RegisterID    string             `json:"register_id"`
	Items         []SaleLineResponse `json:"items"`
	Subtotal      money.Money        `json:"subtotal"`
	DiscountTotal money.Money        `json:"discount_total"`
	Total         money.Money        `json:"total"`
	Payments      []PaymentRequest   `json:"payments"`
	Status        string             `json:"status"`
	CreatedAt     string             `json:"created_at"`
}

// ReceiptResponse is the receipt-ready projection returned by settle, handed
// to external rendering/printing.
type ReceiptResponse struct {
	Store    string       `json:"store"`
	Operator string       `json:"operator"`
	Customer *string      `json:"customer,omitempty"`
	Sale     SaleResponse `json:"sale"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
