package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"tillpos/internal/model"
)

type CommissionRepository interface {
	Create(ctx context.Context, c *model.Commission) error
	CreateTx(tx *gorm.DB, c *model.Commission) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Commission, error)
	Update(ctx context.Context, c *model.Commission) error
	ListBySeller(ctx context.Context, sellerID uuid.UUID, status model.CommissionStatus) ([]model.Commission, error)
	ListByStatus(ctx context.Context, status model.CommissionStatus) ([]model.Commission, error)
}

type commissionRepo struct{ db *gorm.DB }

func NewCommissionRepository(db *gorm.DB) CommissionRepository { return &commissionRepo{db: db} }

func (r *commissionRepo) Create(ctx context.Context, c *model.Commission) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *commissionRepo) CreateTx(tx *gorm.DB, c *model.Commission) error {
	return tx.Create(c).Error
}

func (r *commissionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Commission, error) {
	var c model.Commission
	err := r.db.WithContext(ctx).Preload("Seller").First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commissionRepo) Update(ctx context.Context, c *model.Commission) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *commissionRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, status model.CommissionStatus) ([]model.Commission, error) {
	q := r.db.WithContext(ctx).Where("seller_id = ?", sellerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []model.Commission
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *commissionRepo) ListByStatus(ctx context.Context, status model.CommissionStatus) ([]model.Commission, error) {
	var out []model.Commission
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
