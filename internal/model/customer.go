package model

import (
	"time"

	"github.com/google/uuid"
	"tillpos/internal/money"
)

// Customer is an optional reference on a sale. Credit-limit enforcement for
// fiado tenders happens outside this service; the limit is stored here only
// so receipts and reports can show it.
type Customer struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"index;not null"`
	Email       *string
	Phone       *string
	CreditLimit money.Money `gorm:"type:decimal(12,2);not null;default:0"`
	Active      bool        `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
