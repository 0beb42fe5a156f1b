package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"tillpos/internal/dto"
	"tillpos/internal/model"
	"tillpos/internal/money"
	"tillpos/internal/repository"
	"tillpos/internal/worker"
)

// CheckoutService is the settlement engine: it validates a finalized sale's
// multi-tender payment split against the sale total, attributes the settled
// sale to the open till session and persists both atomically.
type CheckoutService interface {
	Settle(ctx context.Context, operatorID uuid.UUID, req dto.SettleSaleRequest) (*dto.ReceiptResponse, error)
	Cancel(ctx context.Context, saleID uuid.UUID, reason string) error
	Get(ctx context.Context, saleID uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type checkoutService struct {
	saleRepo       repository.SaleRepository
	registerRepo   repository.RegisterRepository
	productRepo    repository.ProductRepository
	customerRepo   repository.CustomerRepository
	userRepo       repository.UserRepository
	commissionRepo repository.CommissionRepository
	registers      RegisterService
	dispatcher     *worker.Dispatcher
	storeName      string
}

func NewCheckoutService(
	saleRepo repository.SaleRepository,
	registerRepo repository.RegisterRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	userRepo repository.UserRepository,
	commissionRepo repository.CommissionRepository,
	registers RegisterService,
	dispatcher *worker.Dispatcher,
	storeName string,
) CheckoutService {
	return &checkoutService{
		saleRepo:       saleRepo,
		registerRepo:   registerRepo,
		productRepo:    productRepo,
		customerRepo:   customerRepo,
		userRepo:       userRepo,
		commissionRepo: commissionRepo,
		registers:      registers,
		dispatcher:     dispatcher,
		storeName:      storeName,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Settle ───────────────────────────────────────────────────────────────────
//  1. Resolve catalog products and compute line/sale totals (pure)
//  2. Validate Σ payments == total — exact Money equality, no tolerance
//  3. Under the operator's session lock: attribute to the open register
//  4. BEGIN TX: ticket number, sale + items + payments, register totals,
//     commission snapshot — COMMIT or nothing
//  5. (async) settle event fan-out + e-mail receipt, fire & forget

func (s *checkoutService) Settle(ctx context.Context, operatorID uuid.UUID, req dto.SettleSaleRequest) (*dto.ReceiptResponse, error) {
	lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	overall := NoDiscount
	if req.Discount != nil {
		overall = Discount{Kind: model.DiscountKind(req.Discount.Kind), Value: req.Discount.Value}
	}
	amounts, err := ComputeSaleTotals(lines, overall)
	if err != nil {
		return nil, err
	}

	payments, err := buildPayments(req.Payments)
	if err != nil {
		return nil, err
	}
	paid := money.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	if !paid.Equal(amounts.Total) {
		return nil, &PaymentMismatchError{Expected: amounts.Total, Actual: paid}
	}

	var customer *model.Customer
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("invalid customer_id: %w", err)
		}
		if customer, err = s.customerRepo.FindByID(ctx, cid); err != nil {
			return nil, fmt.Errorf("customer %s not found", cid)
		}
	}

	operator, err := s.userRepo.FindByID(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("operator %s not found", operatorID)
	}

	var sale model.Sale
	err = s.registers.WithOpenSession(ctx, operatorID, func(reg *model.CashRegister) error {
		sale = model.Sale{
			RegisterID:    reg.ID,
			OperatorID:    operatorID,
			Subtotal:      amounts.Subtotal,
			DiscountKind:  overall.Kind,
			DiscountInput: overall.Value,
			DiscountTotal: amounts.Discount,
			Total:         amounts.Total,
			Status:        model.SaleCompleted,
			CreatedAt:     time.Now().UTC(),
			Payments:      payments,
		}
		if customer != nil {
			sale.CustomerID = &customer.ID
		}
		for i, line := range lines {
			sale.Items = append(sale.Items, model.SaleItem{
				LineNo:         i + 1,
				ProductID:      line.Product.ID,
				UnitPrice:      line.Product.Price,
				Quantity:       line.Quantity,
				Weight:         line.Weight,
				DiscountKind:   line.Discount.Kind,
				DiscountInput:  line.Discount.Value,
				DiscountAmount: amounts.Lines[i].Discount,
				Subtotal:       amounts.Lines[i].Subtotal,
			})
		}

		if err := ApplySale(reg, &sale); err != nil {
			return err
		}

		txErr := runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
			ticket, err := s.saleRepo.NextTicketNumber(ctx, tx)
			if err != nil {
				return err
			}
			sale.TicketNumber = ticket

			if err := s.saleRepo.CreateTx(tx, &sale); err != nil {
				return err
			}
			if err := s.registerRepo.UpdateTx(tx, reg); err != nil {
				return err
			}
			// Commission snapshot: taken now, never recomputed if the sale is
			// later amended.
			if operator.CommissionPct != nil && operator.CommissionPct.IsPositive() {
				commission := &model.Commission{
					SellerID:  operatorID,
					SaleID:    sale.ID,
					SaleTotal: sale.Total,
					Percent:   *operator.CommissionPct,
					Amount:    CalculateCommission(sale.Total, *operator.CommissionPct),
					Status:    model.CommissionPending,
				}
				if err := s.commissionRepo.CreateTx(tx, commission); err != nil {
					return err
				}
			}
			return nil
		})
		if txErr != nil {
			return &PersistenceError{Op: "settle sale", Err: txErr}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Domain event fan-out — delivery is not required for settle to succeed.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueSaleEvent(ctx, worker.SaleEvent{
			SaleID:    sale.ID.String(),
			Total:     sale.Total.String(),
			Timestamp: sale.CreatedAt.Format(time.RFC3339),
		})
		if customer != nil && customer.Email != nil && *customer.Email != "" {
			_ = s.dispatcher.EnqueueReceipt(ctx, worker.ReceiptJob{
				SaleID: sale.ID.String(),
				Email:  *customer.Email,
			})
		}
	}

	receipt := &dto.ReceiptResponse{
		Store:    s.storeName,
		Operator: operator.Name,
		Sale:     *saleToResponse(&sale, lines),
	}
	if customer != nil {
		receipt.Customer = &customer.Name
	}
	return receipt, nil
}

// ── Cancel ───────────────────────────────────────────────────────────────────
// Voids a completed sale: reverses the session attribution and flips the sale
// status, atomically. Only legal while the originating session is still open.

func (s *checkoutService) Cancel(ctx context.Context, saleID uuid.UUID, reason string) error {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return errors.New("sale not found")
	}
	if sale.Status == model.SaleCancelled {
		return errors.New("sale is already cancelled")
	}
	if sale.Status != model.SaleCompleted {
		return ErrSaleNotCompleted
	}
	if reason == "" {
		return errors.New("cancellation reason is required")
	}

	return s.registers.WithOpenSession(ctx, sale.OperatorID, func(reg *model.CashRegister) error {
		if reg.ID != sale.RegisterID {
			// The originating session already closed; its snapshot is immutable.
			return ErrRegisterClosed
		}
		if err := ReverseSale(reg, sale); err != nil {
			return err
		}
		txErr := runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
			if err := s.saleRepo.UpdateStatusTx(tx, sale.ID, model.SaleCancelled); err != nil {
				return err
			}
			return s.registerRepo.UpdateTx(tx, reg)
		})
		if txErr != nil {
			return &PersistenceError{Op: "cancel sale", Err: txErr}
		}
		return nil
	})
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *checkoutService) Get(ctx context.Context, saleID uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, errors.New("sale not found")
	}
	return saleToResponse(sale, nil), nil
}

func (s *checkoutService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		data = append(data, *saleToResponse(&sales[i], nil))
	}
	return &dto.SaleListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *checkoutService) resolveLines(ctx context.Context, items []dto.CartItemRequest) ([]CartLine, error) {
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", err)
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("product %s not found", item.ProductID)
		}
		if !p.Active {
			return nil, fmt.Errorf("product %s is inactive and cannot be sold", p.Name)
		}
		line := CartLine{
			Product:  p,
			Quantity: item.Quantity,
			Weight:   item.Weight,
			Discount: NoDiscount,
		}
		if item.Discount != nil {
			line.Discount = Discount{Kind: model.DiscountKind(item.Discount.Kind), Value: item.Discount.Value}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func buildPayments(reqs []dto.PaymentRequest) ([]model.SalePayment, error) {
	out := make([]model.SalePayment, 0, len(reqs))
	for _, p := range reqs {
		method := model.PaymentMethod(p.Method)
		if !method.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTender, p.Method)
		}
		if p.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: payment amount %s", ErrInvalidAmount, p.Amount)
		}
		out = append(out, model.SalePayment{Method: method, Amount: p.Amount})
	}
	return out, nil
}

// saleToResponse maps a sale to its wire shape. When called right after
// settle, lines carries the resolved products so item names can be filled in
// without a reload; otherwise the preloaded associations are used.
func saleToResponse(v *model.Sale, lines []CartLine) *dto.SaleResponse {
	items := make([]dto.SaleLineResponse, 0, len(v.Items))
	for i, item := range v.Items {
		name, code := "", ""
		if item.Product != nil {
			name, code = item.Product.Name, item.Product.Code
		} else if lines != nil && i < len(lines) {
			name, code = lines[i].Product.Name, lines[i].Product.Code
		}
		items = append(items, dto.SaleLineResponse{
			LineNo:    item.LineNo,
			Product:   name,
			Code:      code,
			Quantity:  item.Quantity,
			Weight:    item.Weight,
			UnitPrice: item.UnitPrice,
			Discount:  item.DiscountAmount,
			Subtotal:  item.Subtotal,
		})
	}
	payments := make([]dto.PaymentRequest, 0, len(v.Payments))
	for _, p := range v.Payments {
		payments = append(payments, dto.PaymentRequest{Method: string(p.Method), Amount: p.Amount})
	}
	return &dto.SaleResponse{
		ID:            v.ID.String(),
		TicketNumber:  v.TicketNumber,
		RegisterID:    v.RegisterID.String(),
		Items:         items,
		Subtotal:      v.Subtotal,
		DiscountTotal: v.DiscountTotal,
		Total:         v.Total,
		Payments:      payments,
		Status:        string(v.Status),
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
}
