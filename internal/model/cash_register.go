package model

import (
	"time"

	"github.com/google/uuid"
	"tillpos/internal/money"
)

// RegisterStatus: "open" | "closed". Closed is terminal — a new till session
// requires a fresh open.
type RegisterStatus string

const (
	RegisterOpen   RegisterStatus = "open"
	RegisterClosed RegisterStatus = "closed"
)

// MovementType: manual cash movements only. Movements are NEVER modified or
// deleted — corrections create inverse entries.
type MovementType string

const (
	MovementWithdrawal MovementType = "withdrawal"
	MovementDeposit    MovementType = "deposit"
)

// CashRegister represents one till session: the span between opening and
// closing a physical cash drawer.
//
// Accounting rule: TotalCash holds the opening balance plus cash *sale*
// payments only. Manual movements are tracked solely in Movements and folded
// in once, when the session closes:
//
//	expected = TotalCash − Σwithdrawals + Σdeposits
type CashRegister struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionNumber int64     `gorm:"uniqueIndex;not null"`
	OperatorID    uuid.UUID `gorm:"type:uuid;index;not null"`
	OpeningBalance money.Money `gorm:"type:decimal(12,2);not null"`

	// Running per-tender totals, maintained by the ledger while open.
	// SaleCount tracks attributed sales the same way: incremented on settle,
	// decremented on void, so reports never need the Sales association loaded.
	SaleCount   int         `gorm:"not null;default:0"`
	TotalSales  money.Money `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCash   money.Money `gorm:"type:decimal(12,2);not null;default:0"`
	TotalPix    money.Money `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCredit money.Money `gorm:"type:decimal(12,2);not null;default:0"`
	TotalDebit  money.Money `gorm:"type:decimal(12,2);not null;default:0"`
	TotalFiado  money.Money `gorm:"type:decimal(12,2);not null;default:0"`

	// Set on close.
	ClosingBalance  *money.Money `gorm:"type:decimal(12,2)"`
	ExpectedBalance *money.Money `gorm:"type:decimal(12,2)"`
	Difference      *money.Money `gorm:"type:decimal(12,2)"`

	Status   RegisterStatus `gorm:"type:varchar(10);not null;default:'open'"`
	OpenedAt time.Time
	ClosedAt *time.Time

	Sales     []Sale         `gorm:"foreignKey:RegisterID"`
	Movements []CashMovement `gorm:"foreignKey:RegisterID"`
	Operator  *User          `gorm:"foreignKey:OperatorID"`
}

// CashMovement is an immutable manual drawer event (withdrawal or deposit).
type CashMovement struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegisterID uuid.UUID    `gorm:"type:uuid;index;not null"`
	Type       MovementType `gorm:"type:varchar(12);not null"`
	Amount     money.Money  `gorm:"type:decimal(12,2);not null"`
	Reason     string       `gorm:"not null"`
	OperatorID uuid.UUID    `gorm:"type:uuid;not null"`
	// SupervisorID is required by policy for large withdrawals; the
	// authorization check itself lives in the external approval flow.
	SupervisorID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}

// IsOpen reports whether the session still accepts mutations.
func (r *CashRegister) IsOpen() bool { return r.Status == RegisterOpen }

// WithdrawalsTotal sums the session's withdrawal movements.
func (r *CashRegister) WithdrawalsTotal() money.Money {
	return r.movementTotal(MovementWithdrawal)
}

// DepositsTotal sums the session's deposit movements.
func (r *CashRegister) DepositsTotal() money.Money {
	return r.movementTotal(MovementDeposit)
}

func (r *CashRegister) movementTotal(t MovementType) money.Money {
	total := money.Zero
	for _, m := range r.Movements {
		if m.Type == t {
			total = total.Add(m.Amount)
		}
	}
	return total
}
