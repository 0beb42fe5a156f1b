package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"tillpos/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for all tables, then applies the idempotent SQL patches GORM cannot express
// (sequences for ticket and session numbers).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates the schema. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.Product{},
		&model.CashRegister{},
		&model.CashMovement{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SalePayment{},
		&model.Commission{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	// Monotonic counters for receipts and till sessions — AutoMigrate cannot
	// create standalone sequences.
	patches := []string{
		`CREATE SEQUENCE IF NOT EXISTS sale_ticket_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS register_session_seq START 1`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql, err)
		}
	}
	return nil
}
