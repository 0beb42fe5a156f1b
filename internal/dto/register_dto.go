package dto

import "tillpos/internal/money"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenRegisterRequest struct {
	OpeningBalance money.Money `json:"opening_balance" validate:"min=0"`
}

type CashMovementRequest struct {
	Type         string      `json:"type"          validate:"required,oneof=withdrawal deposit"`
	Amount       money.Money `json:"amount"        validate:"required"`
	Reason       string      `json:"reason"        validate:"required,min=3"`
	SupervisorID *string     `json:"supervisor_id" validate:"omitempty,uuid"`
}

type CloseRegisterRequest struct {
	ClosingBalance money.Money `json:"closing_balance" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TenderTotals struct {
	Sales  money.Money `json:"sales"`
	Cash   money.Money `json:"cash"`
	Pix    money.Money `json:"pix"`
	Credit money.Money `json:"credit"`
	Debit  money.Money `json:"debit"`
	Fiado  money.Money `json:"fiado"`
}

type CashMovementResponse struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	Amount       money.Money `json:"amount"`
	Reason       string      `json:"reason"`
	OperatorID   string      `json:"operator_id"`
	SupervisorID *string     `json:"supervisor_id,omitempty"`
	CreatedAt    string      `json:"created_at"`
}

type RegisterReportResponse struct {
	ID             string       `json:"id"`
	SessionNumber  int64        `json:"session_number"`
	OperatorID     string       `json:"operator_id"`
	Operator       string       `json:"operator,omitempty"`
	OpeningBalance money.Money  `json:"opening_balance"`
	Totals         TenderTotals `json:"totals"`
	Withdrawals    money.Money  `json:"withdrawals"`
	Deposits       money.Money  `json:"deposits"`
	SaleCount      int          `json:"sale_count"`
	Movements      []CashMovementResponse `json:"movements,omitempty"`
	Status         string       `json:"status"`
	OpenedAt       string       `json:"opened_at"`
	ClosedAt       *string      `json:"closed_at,omitempty"`

	// Present only after close.
	ClosingBalance  *money.Money `json:"closing_balance,omitempty"`
	ExpectedBalance *money.Money `json:"expected_balance,omitempty"`
	Difference      *money.Money `json:"difference,omitempty"`
}

type RegisterHistoryResponse struct {
	Data  []RegisterReportResponse `json:"data"`
	Total int64                    `json:"total"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
}
