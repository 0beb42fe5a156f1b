package model

import (
	"time"

	"github.com/google/uuid"
	"tillpos/internal/money"
)

// UnitType distinguishes count-based from weight-based products.
type UnitType string

const (
	UnitCount  UnitType = "unit"
	UnitWeight UnitType = "kg"
)

// Product is the read-only catalog reference consumed at checkout.
// Catalog management lives in a separate system; this service only reads
// code, name, price and unit type.
type Product struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string      `gorm:"uniqueIndex;not null"`
	Name      string      `gorm:"index;not null"`
	Price     money.Money `gorm:"type:decimal(12,2);not null"`
	UnitType  UnitType    `gorm:"type:varchar(10);not null;default:'unit'"`
	Weighted  bool        `gorm:"not null;default:false"`
	Active    bool        `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
