package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"tillpos/internal/dto"
	"tillpos/internal/model"
	"tillpos/internal/money"
	"tillpos/internal/repository"
)

// CommissionService tracks seller commissions from settled sales.
// Creation happens inside the settlement transaction (see checkout_service);
// this service owns the pending → paid transition and the queries.
type CommissionService interface {
	// Pay is idempotent: paying an already-paid commission returns the
	// existing record unchanged, keeping the original paid timestamp.
	Pay(ctx context.Context, id uuid.UUID) (*dto.CommissionResponse, error)
	// PayBatch applies Pay to each id independently — best-effort, not atomic.
	PayBatch(ctx context.Context, ids []uuid.UUID) (*dto.PayBatchResponse, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, status string) (*dto.CommissionListResponse, error)
	ListPending(ctx context.Context) (*dto.CommissionListResponse, error)
}

type commissionService struct {
	repo repository.CommissionRepository
}

func NewCommissionService(repo repository.CommissionRepository) CommissionService {
	return &commissionService{repo: repo}
}

func (s *commissionService) Pay(ctx context.Context, id uuid.UUID) (*dto.CommissionResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("commission not found")
	}
	if c.Status == model.CommissionPaid {
		// No-op by contract: same final state, same timestamp.
		return commissionToResponse(c), nil
	}

	now := time.Now().UTC()
	c.Status = model.CommissionPaid
	c.PaidAt = &now
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, &PersistenceError{Op: "pay commission", Err: err}
	}
	return commissionToResponse(c), nil
}

func (s *commissionService) PayBatch(ctx context.Context, ids []uuid.UUID) (*dto.PayBatchResponse, error) {
	resp := &dto.PayBatchResponse{Failed: make(map[string]string)}
	for _, id := range ids {
		paid, err := s.Pay(ctx, id)
		if err != nil {
			resp.Failed[id.String()] = err.Error()
			continue
		}
		resp.Paid = append(resp.Paid, *paid)
	}
	if len(resp.Failed) == 0 {
		resp.Failed = nil
	}
	return resp, nil
}

func (s *commissionService) ListBySeller(ctx context.Context, sellerID uuid.UUID, status string) (*dto.CommissionListResponse, error) {
	list, err := s.repo.ListBySeller(ctx, sellerID, model.CommissionStatus(status))
	if err != nil {
		return nil, err
	}
	return buildCommissionList(list), nil
}

func (s *commissionService) ListPending(ctx context.Context) (*dto.CommissionListResponse, error) {
	list, err := s.repo.ListByStatus(ctx, model.CommissionPending)
	if err != nil {
		return nil, err
	}
	return buildCommissionList(list), nil
}

func buildCommissionList(list []model.Commission) *dto.CommissionListResponse {
	resp := &dto.CommissionListResponse{Data: make([]dto.CommissionResponse, 0, len(list))}
	total := money.Zero
	for i := range list {
		resp.Data = append(resp.Data, *commissionToResponse(&list[i]))
		total = total.Add(list[i].Amount)
	}
	resp.Total = total
	return resp
}

func commissionToResponse(c *model.Commission) *dto.CommissionResponse {
	resp := &dto.CommissionResponse{
		ID:        c.ID.String(),
		SellerID:  c.SellerID.String(),
		SaleID:    c.SaleID.String(),
		SaleTotal: c.SaleTotal,
		Percent:   c.Percent,
		Amount:    c.Amount,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if c.Seller != nil {
		resp.Seller = c.Seller.Name
	}
	if c.PaidAt != nil {
		t := c.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &t
	}
	return resp
}
