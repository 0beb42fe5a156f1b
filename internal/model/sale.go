package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"tillpos/internal/money"
)

// SaleStatus lifecycle: pending → completed (settled) | cancelled (voided).
type SaleStatus string

const (
	SalePending   SaleStatus = "pending"
	SaleCompleted SaleStatus = "completed"
	SaleCancelled SaleStatus = "cancelled"
)

// PaymentMethod is the closed set of tenders.
type PaymentMethod string

const (
	PayCash   PaymentMethod = "cash"
	PayPix    PaymentMethod = "pix"
	PayCredit PaymentMethod = "credit"
	PayDebit  PaymentMethod = "debit"
	PayFiado  PaymentMethod = "fiado"
	PayBoleto PaymentMethod = "boleto"
	PayCheck  PaymentMethod = "check"
	PayOther  PaymentMethod = "other"
)

// Valid reports whether m is one of the known tenders.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayPix, PayCredit, PayDebit, PayFiado, PayBoleto, PayCheck, PayOther:
		return true
	}
	return false
}

// DiscountKind tags the two discount representations.
type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountValue   DiscountKind = "value"
)

// Sale is an immutable record once completed. Item order is preserved
// (LineNo) for receipt reproduction.
type Sale struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketNumber  int64     `gorm:"uniqueIndex;not null"`
	RegisterID    uuid.UUID `gorm:"type:uuid;index;not null"`
	OperatorID    uuid.UUID `gorm:"type:uuid;not null"`
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	Subtotal      money.Money     `gorm:"type:decimal(12,2);not null"`
	DiscountKind  DiscountKind    `gorm:"type:varchar(10);not null;default:'value'"`
	DiscountInput decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountTotal money.Money     `gorm:"type:decimal(12,2);not null;default:0"`
	Total         money.Money     `gorm:"type:decimal(12,2);not null"`
	Status        SaleStatus      `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt     time.Time

	Items    []SaleItem    `gorm:"foreignKey:SaleID"`
	Payments []SalePayment `gorm:"foreignKey:SaleID"`
	Operator *User         `gorm:"foreignKey:OperatorID"`
	Customer *Customer     `gorm:"foreignKey:CustomerID"`
}

// SaleItem is one receipt line. Exactly one of Quantity / Weight is set:
// Quantity for unit products, Weight for weight-based products.
type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID `gorm:"type:uuid;index;not null"`
	LineNo    int       `gorm:"not null"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	UnitPrice money.Money      `gorm:"type:decimal(12,2);not null"`
	Quantity  *int64           `gorm:"type:bigint"`
	Weight    *decimal.Decimal `gorm:"type:decimal(10,3)"`
	DiscountKind  DiscountKind    `gorm:"type:varchar(10);not null;default:'value'"`
	DiscountInput decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount money.Money    `gorm:"type:decimal(12,2);not null;default:0"`
	Subtotal       money.Money    `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// SalePayment is one tender split of a sale.
type SalePayment struct {
	ID     uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID uuid.UUID     `gorm:"type:uuid;index;not null"`
	Method PaymentMethod `gorm:"type:varchar(10);not null"`
	Amount money.Money   `gorm:"type:decimal(12,2);not null"`
}

// PaymentsTotal is the exact sum of all tender amounts.
func (s *Sale) PaymentsTotal() money.Money {
	total := money.Zero
	for _, p := range s.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// TenderTotal sums the payments made with a single tender.
func (s *Sale) TenderTotal(m PaymentMethod) money.Money {
	total := money.Zero
	for _, p := range s.Payments {
		if p.Method == m {
			total = total.Add(p.Amount)
		}
	}
	return total
}
