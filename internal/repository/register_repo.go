package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"tillpos/internal/model"
)

// RegisterRepository is the durable store for till sessions. Money values and
// timestamps must round-trip exactly (decimal columns, timestamptz).
type RegisterRepository interface {
	DB() *gorm.DB
	Create(ctx context.Context, r *model.CashRegister) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	// FindOpenByOperator returns (nil, nil) when the operator has no open session.
	FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashRegister, error)
	// FindLatestByOperator returns the operator's most recent session regardless
	// of status, or (nil, nil) when they never opened one.
	FindLatestByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashRegister, error)
	Update(ctx context.Context, r *model.CashRegister) error
	UpdateTx(tx *gorm.DB, r *model.CashRegister) error
	CreateMovement(ctx context.Context, m *model.CashMovement) error
	CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error
	NextSessionNumber(ctx context.Context) (int64, error)
	ListClosed(ctx context.Context, page, limit int) ([]model.CashRegister, int64, error)
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) DB() *gorm.DB { return r.db }

func (r *registerRepo) Create(ctx context.Context, reg *model.CashRegister) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *registerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).
		Preload("Movements", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Operator").
		First(&reg, id).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).
		Preload("Movements", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("operator_id = ? AND status = 'open'", operatorID).
		First(&reg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) FindLatestByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).
		Where("operator_id = ?", operatorID).
		Order("opened_at DESC").
		First(&reg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) Update(ctx context.Context, reg *model.CashRegister) error {
	return r.db.WithContext(ctx).Save(reg).Error
}

func (r *registerRepo) UpdateTx(tx *gorm.DB, reg *model.CashRegister) error {
	return tx.Save(reg).Error
}

func (r *registerRepo) CreateMovement(ctx context.Context, m *model.CashMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *registerRepo) CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *registerRepo) NextSessionNumber(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Raw("SELECT nextval('register_session_seq')").Scan(&n).Error
	return n, err
}

func (r *registerRepo) ListClosed(ctx context.Context, page, limit int) ([]model.CashRegister, int64, error) {
	var regs []model.CashRegister
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CashRegister{}).Where("status = 'closed'")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Operator").
		Order("closed_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&regs).Error
	return regs, total, err
}
