package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"tillpos/internal/dto"
	"tillpos/internal/model"
)

// SaleRepository is the durable sale store. Completed sales are immutable —
// the only status mutation allowed is the cancellation transition.
type SaleRepository interface {
	DB() *gorm.DB
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	NextTicketNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.SaleStatus) error
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Items.Product").
		Preload("Payments").
		Preload("Operator").
		Preload("Customer").
		First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.WithContext(ctx).Raw("SELECT nextval('sale_ticket_seq')").Scan(&n).Error
	return n, err
}

func (r *saleRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.SaleStatus) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).Update("status", status).Error
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != "" {
		if from, err := time.Parse("2006-01-02", filter.From); err == nil {
			q = q.Where("created_at >= ?", from)
		}
	}
	if filter.To != "" {
		if to, err := time.Parse("2006-01-02", filter.To); err == nil {
			q = q.Where("created_at < ?", to.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []model.Sale
	err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Items.Product").
		Preload("Payments").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}
