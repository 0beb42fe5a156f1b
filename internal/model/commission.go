package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"tillpos/internal/money"
)

// CommissionStatus: "pending" | "paid". Paid is terminal.
type CommissionStatus string

const (
	CommissionPending CommissionStatus = "pending"
	CommissionPaid    CommissionStatus = "paid"
)

// Commission is a seller's cut of a settled sale. SaleTotal and Percent are
// snapshots taken at creation time — a later amendment of the sale does not
// recompute the commission.
type Commission struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SellerID uuid.UUID `gorm:"type:uuid;index;not null"`
	SaleID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	SaleTotal money.Money     `gorm:"type:decimal(12,2);not null"`
	Percent   decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Amount    money.Money     `gorm:"type:decimal(12,2);not null"`
	Status    CommissionStatus `gorm:"type:varchar(10);not null;default:'pending'"`
	PaidAt    *time.Time
	CreatedAt time.Time

	Seller *User `gorm:"foreignKey:SellerID"`
}
