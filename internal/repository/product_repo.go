package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"tillpos/internal/model"
)

// ProductRepository is the read-only catalog boundary. Catalog writes belong
// to the external catalog system.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	List(ctx context.Context, activeOnly bool) ([]model.Product, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, activeOnly bool) ([]model.Product, error) {
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = true")
	}
	var out []model.Product
	err := q.Order("name ASC").Find(&out).Error
	return out, err
}
