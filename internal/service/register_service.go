package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"tillpos/internal/dto"
	"tillpos/internal/model"
	"tillpos/internal/money"
	"tillpos/internal/repository"
)

// RegisterService is the till-session ledger: the state machine
// none → open → (addSale | movement)* → closed.
//
// All mutations against one operator's session are serialized through a
// per-operator lock, because each one reads-then-writes the running totals.
// The session is never cached — it is loaded from the store per call, so a
// failed write leaves nothing stale in memory.
type RegisterService interface {
	Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenRegisterRequest) (*dto.RegisterReportResponse, error)
	RecordMovement(ctx context.Context, operatorID uuid.UUID, req dto.CashMovementRequest) error
	Close(ctx context.Context, operatorID uuid.UUID, req dto.CloseRegisterRequest) (*dto.RegisterReportResponse, error)
	Active(ctx context.Context, operatorID uuid.UUID) (*dto.RegisterReportResponse, error)
	Report(ctx context.Context, id uuid.UUID) (*dto.RegisterReportResponse, error)
	History(ctx context.Context, page, limit int) (*dto.RegisterHistoryResponse, error)

	// WithOpenSession runs fn against the operator's open session while
	// holding the operator lock. It is the single coordination point used by
	// the settlement engine; fn is responsible for persisting what it mutates.
	WithOpenSession(ctx context.Context, operatorID uuid.UUID, fn func(reg *model.CashRegister) error) error
}

type registerService struct {
	repo repository.RegisterRepository

	// locks holds one mutex per operator ever seen; entries are never
	// evicted. Bounded by the store's staff count, so growth is a non-issue.
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewRegisterService(repo repository.RegisterRepository) RegisterService {
	return &registerService{
		repo:  repo,
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// operatorLock returns the mutex serializing one operator's session.
func (s *registerService) operatorLock(operatorID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[operatorID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[operatorID] = l
	}
	return l
}

// ── Open ─────────────────────────────────────────────────────────────────────

func (s *registerService) Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenRegisterRequest) (*dto.RegisterReportResponse, error) {
	if req.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance %s", ErrInvalidAmount, req.OpeningBalance)
	}

	l := s.operatorLock(operatorID)
	l.Lock()
	defer l.Unlock()

	existing, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRegisterAlreadyOpen
	}

	session, err := s.repo.NextSessionNumber(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "open register", Err: err}
	}

	reg := &model.CashRegister{
		SessionNumber:  session,
		OperatorID:     operatorID,
		OpeningBalance: req.OpeningBalance,
		// Cash drawer starts with the counted opening float.
		TotalCash: req.OpeningBalance,
		Status:    model.RegisterOpen,
		OpenedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, &PersistenceError{Op: "open register", Err: err}
	}
	return buildRegisterReport(reg), nil
}

// ── RecordMovement ───────────────────────────────────────────────────────────
// Manual withdrawal / deposit. Movements are immutable — a mistake is fixed
// by recording the inverse movement, never by editing.
//
// TotalCash is NOT touched here: movements live only in the movement sequence
// and are folded into the expected balance once, at close.

func (s *registerService) RecordMovement(ctx context.Context, operatorID uuid.UUID, req dto.CashMovementRequest) error {
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: movement amount %s", ErrInvalidAmount, req.Amount)
	}

	l := s.operatorLock(operatorID)
	l.Lock()
	defer l.Unlock()

	reg, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil {
		return err
	}
	if reg == nil {
		return ErrNoOpenRegister
	}

	mov := &model.CashMovement{
		RegisterID: reg.ID,
		Type:       model.MovementType(req.Type),
		Amount:     req.Amount,
		Reason:     req.Reason,
		OperatorID: operatorID,
	}
	if req.SupervisorID != nil {
		sid, err := uuid.Parse(*req.SupervisorID)
		if err != nil {
			return fmt.Errorf("invalid supervisor_id: %w", err)
		}
		mov.SupervisorID = &sid
	}

	if err := s.repo.CreateMovement(ctx, mov); err != nil {
		return &PersistenceError{Op: "record movement", Err: err}
	}
	return nil
}

// ── Close ────────────────────────────────────────────────────────────────────

func (s *registerService) Close(ctx context.Context, operatorID uuid.UUID, req dto.CloseRegisterRequest) (*dto.RegisterReportResponse, error) {
	if req.ClosingBalance.IsNegative() {
		return nil, fmt.Errorf("%w: closing balance %s", ErrInvalidAmount, req.ClosingBalance)
	}

	l := s.operatorLock(operatorID)
	l.Lock()
	defer l.Unlock()

	reg, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		// Distinguish "never opened" from "already closed".
		latest, err := s.repo.FindLatestByOperator(ctx, operatorID)
		if err != nil {
			return nil, err
		}
		if latest != nil && latest.Status == model.RegisterClosed {
			return nil, ErrRegisterClosed
		}
		return nil, ErrNoOpenRegister
	}

	if err := CloseSession(reg, req.ClosingBalance, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, reg); err != nil {
		return nil, &PersistenceError{Op: "close register", Err: err}
	}
	return buildRegisterReport(reg), nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *registerService) Active(ctx context.Context, operatorID uuid.UUID) (*dto.RegisterReportResponse, error) {
	reg, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrNoOpenRegister
	}
	return buildRegisterReport(reg), nil
}

func (s *registerService) Report(ctx context.Context, id uuid.UUID) (*dto.RegisterReportResponse, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("register session not found")
	}
	return buildRegisterReport(reg), nil
}

func (s *registerService) History(ctx context.Context, page, limit int) (*dto.RegisterHistoryResponse, error) {
	regs, total, err := s.repo.ListClosed(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.RegisterReportResponse, 0, len(regs))
	for i := range regs {
		data = append(data, *buildRegisterReport(&regs[i]))
	}
	return &dto.RegisterHistoryResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── WithOpenSession ──────────────────────────────────────────────────────────

func (s *registerService) WithOpenSession(ctx context.Context, operatorID uuid.UUID, fn func(reg *model.CashRegister) error) error {
	l := s.operatorLock(operatorID)
	l.Lock()
	defer l.Unlock()

	reg, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil {
		return err
	}
	if reg == nil {
		return ErrNoOpenRegister
	}
	return fn(reg)
}

// ── Session state machine (pure) ─────────────────────────────────────────────

// ApplySale attributes a settled sale to the session: TotalSales grows by the
// sale total and each per-tender running total by that tender's payment sum.
// A sale may split across tenders; each split contributes independently.
//
// Tender math (Σpayments == total) is the settlement engine's contract; the
// ledger only checks attribution legality.
func ApplySale(reg *model.CashRegister, sale *model.Sale) error {
	if !reg.IsOpen() {
		return ErrRegisterClosed
	}
	if sale.Status != model.SaleCompleted {
		return ErrSaleNotCompleted
	}
	// Validate every tender up front so a bad split never leaves the
	// register partially mutated.
	for _, p := range sale.Payments {
		if !p.Method.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownTender, p.Method)
		}
	}

	reg.SaleCount++
	reg.TotalSales = reg.TotalSales.Add(sale.Total)
	for _, p := range sale.Payments {
		switch p.Method {
		case model.PayCash:
			reg.TotalCash = reg.TotalCash.Add(p.Amount)
		case model.PayPix:
			reg.TotalPix = reg.TotalPix.Add(p.Amount)
		case model.PayCredit:
			reg.TotalCredit = reg.TotalCredit.Add(p.Amount)
		case model.PayDebit:
			reg.TotalDebit = reg.TotalDebit.Add(p.Amount)
		case model.PayFiado:
			reg.TotalFiado = reg.TotalFiado.Add(p.Amount)
		case model.PayBoleto, model.PayCheck, model.PayOther:
			// Counted in TotalSales only; no dedicated running total.
		}
	}
	return nil
}

// ReverseSale undoes a sale's attribution when a completed sale is voided.
func ReverseSale(reg *model.CashRegister, sale *model.Sale) error {
	if !reg.IsOpen() {
		return ErrRegisterClosed
	}
	reg.SaleCount--
	reg.TotalSales = reg.TotalSales.Sub(sale.Total)
	for _, p := range sale.Payments {
		switch p.Method {
		case model.PayCash:
			reg.TotalCash = reg.TotalCash.Sub(p.Amount)
		case model.PayPix:
			reg.TotalPix = reg.TotalPix.Sub(p.Amount)
		case model.PayCredit:
			reg.TotalCredit = reg.TotalCredit.Sub(p.Amount)
		case model.PayDebit:
			reg.TotalDebit = reg.TotalDebit.Sub(p.Amount)
		case model.PayFiado:
			reg.TotalFiado = reg.TotalFiado.Sub(p.Amount)
		}
	}
	return nil
}

// ExpectedBalance is the cash the drawer should physically hold:
// opening-inclusive TotalCash minus withdrawals plus deposits. Movements are
// folded in here and nowhere else, so they are never double counted.
func ExpectedBalance(reg *model.CashRegister) money.Money {
	return reg.TotalCash.Sub(reg.WithdrawalsTotal()).Add(reg.DepositsTotal())
}

// CloseSession performs the terminal open → closed transition: computes the
// expected balance and the counted-vs-expected difference, stamps ClosedAt.
// Closed sessions are immutable.
func CloseSession(reg *model.CashRegister, counted money.Money, at time.Time) error {
	if !reg.IsOpen() {
		return ErrRegisterClosed
	}
	expected := ExpectedBalance(reg)
	diff := counted.Sub(expected)

	reg.ClosingBalance = &counted
	reg.ExpectedBalance = &expected
	reg.Difference = &diff
	reg.Status = model.RegisterClosed
	reg.ClosedAt = &at
	return nil
}

// ── Report mapping ───────────────────────────────────────────────────────────

func buildRegisterReport(reg *model.CashRegister) *dto.RegisterReportResponse {
	resp := &dto.RegisterReportResponse{
		ID:             reg.ID.String(),
		SessionNumber:  reg.SessionNumber,
		OperatorID:     reg.OperatorID.String(),
		OpeningBalance: reg.OpeningBalance,
		Totals: dto.TenderTotals{
			Sales:  reg.TotalSales,
			Cash:   reg.TotalCash,
			Pix:    reg.TotalPix,
			Credit: reg.TotalCredit,
			Debit:  reg.TotalDebit,
			Fiado:  reg.TotalFiado,
		},
		Withdrawals: reg.WithdrawalsTotal(),
		Deposits:    reg.DepositsTotal(),
		SaleCount:   reg.SaleCount,
		Status:      string(reg.Status),
		OpenedAt:    reg.OpenedAt.Format(time.RFC3339),
	}
	if reg.Operator != nil {
		resp.Operator = reg.Operator.Name
	}
	for _, m := range reg.Movements {
		mov := dto.CashMovementResponse{
			ID:         m.ID.String(),
			Type:       string(m.Type),
			Amount:     m.Amount,
			Reason:     m.Reason,
			OperatorID: m.OperatorID.String(),
			CreatedAt:  m.CreatedAt.Format(time.RFC3339),
		}
		if m.SupervisorID != nil {
			sid := m.SupervisorID.String()
			mov.SupervisorID = &sid
		}
		resp.Movements = append(resp.Movements, mov)
	}
	if reg.ClosedAt != nil {
		t := reg.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	resp.ClosingBalance = reg.ClosingBalance
	resp.ExpectedBalance = reg.ExpectedBalance
	resp.Difference = reg.Difference
	return resp
}
