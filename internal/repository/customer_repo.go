package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"tillpos/internal/model"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context) ([]model.Customer, error) {
	var out []model.Customer
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&out).Error
	return out, err
}
