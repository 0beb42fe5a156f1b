package dto

import (
	"github.com/shopspring/decimal"
	"tillpos/internal/money"
)

type PayBatchRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

type CommissionResponse struct {
	ID        string          `json:"id"`
	SellerID  string          `json:"seller_id"`
	Seller    string          `json:"seller,omitempty"`
	SaleID    string          `json:"sale_id"`
	SaleTotal money.Money     `json:"sale_total"`
	Percent   decimal.Decimal `json:"percent"`
	Amount    money.Money     `json:"amount"`
	Status    string          `json:"status"`
	PaidAt    *string         `json:"paid_at,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// PayBatchResponse reports per-id outcomes; the batch is best-effort, one
// failing id never blocks the others.
type PayBatchResponse struct {
	Paid   []CommissionResponse `json:"paid"`
	Failed map[string]string    `json:"failed,omitempty"`
}

type CommissionListResponse struct {
	Data  []CommissionResponse `json:"data"`
	Total money.Money          `json:"total_amount"`
}
