package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"tillpos/internal/dto"
	"tillpos/internal/model"
	"tillpos/internal/money"
	"tillpos/internal/repository"
	"tillpos/internal/service"
)

// ── In-memory repositories for the settlement path ───────────────────────────

type fakeSaleRepo struct {
	mu     sync.Mutex
	sales  map[uuid.UUID]model.Sale
	ticket int64

	failCreate bool
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]model.Sale)}
}

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

func (r *fakeSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if r.failCreate {
		return errors.New("connection refused")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sales[s.ID] = *s
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &s, nil
}

func (r *fakeSaleRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticket++
	return r.ticket, nil
}

func (r *fakeSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status model.SaleStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return errors.New("not found")
	}
	s.Status = status
	r.sales[id] = s
	return nil
}

func (r *fakeSaleRepo) List(_ context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		if filter.Status != "" && string(s.Status) != filter.Status {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

type fakeProductRepo struct {
	products map[uuid.UUID]model.Product
}

func newFakeProductRepo(products ...model.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uuid.UUID]model.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &p, nil
}

func (r *fakeProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeProductRepo) List(_ context.Context, activeOnly bool) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

type fakeCustomerRepo struct {
	customers map[uuid.UUID]model.Customer
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &c, nil
}

func (r *fakeCustomerRepo) List(_ context.Context) ([]model.Customer, error) { return nil, nil }

var _ repository.CustomerRepository = (*fakeCustomerRepo)(nil)

type fakeUserRepo struct {
	users map[uuid.UUID]model.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) { return nil, nil }

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = *u
	return nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

type fakeCommissionRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.Commission

	failUpdate bool
}

func newFakeCommissionRepo() *fakeCommissionRepo {
	return &fakeCommissionRepo{items: make(map[uuid.UUID]model.Commission)}
}

func (r *fakeCommissionRepo) Create(_ context.Context, c *model.Commission) error {
	return r.CreateTx(nil, c)
}

func (r *fakeCommissionRepo) CreateTx(_ *gorm.DB, c *model.Commission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.items[c.ID] = *c
	return nil
}

func (r *fakeCommissionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Commission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &c, nil
}

func (r *fakeCommissionRepo) Update(_ context.Context, c *model.Commission) error {
	if r.failUpdate {
		return errors.New("connection refused")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = *c
	return nil
}

func (r *fakeCommissionRepo) ListBySeller(_ context.Context, sellerID uuid.UUID, status model.CommissionStatus) ([]model.Commission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Commission
	for _, c := range r.items {
		if c.SellerID != sellerID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCommissionRepo) ListByStatus(_ context.Context, status model.CommissionStatus) ([]model.Commission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Commission
	for _, c := range r.items {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

var _ repository.CommissionRepository = (*fakeCommissionRepo)(nil)

// ── Fixture ──────────────────────────────────────────────────────────────────

type checkoutFixture struct {
	svc          service.CheckoutService
	registers    service.RegisterService
	registerRepo *fakeRegisterRepo
	saleRepo     *fakeSaleRepo
	commissions  *fakeCommissionRepo

	operatorID uuid.UUID
	product    model.Product
}

// newCheckoutFixture wires the settlement engine against in-memory stores:
// one operator (5% commission) and one 10.00 unit product.
func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	pct := decimal.NewFromInt(5)
	operator := model.User{
		ID:            uuid.New(),
		Username:      "maria",
		Name:          "Maria",
		Role:          "cashier",
		CommissionPct: &pct,
		Active:        true,
	}
	product := model.Product{
		ID:       uuid.New(),
		Code:     "A1",
		Name:     "Coffee 500g",
		Price:    money.MustParse("10.00"),
		UnitType: model.UnitCount,
		Active:   true,
	}

	registerRepo := newFakeRegisterRepo()
	saleRepo := newFakeSaleRepo()
	commissions := newFakeCommissionRepo()
	registers := service.NewRegisterService(registerRepo)

	svc := service.NewCheckoutService(
		saleRepo,
		registerRepo,
		newFakeProductRepo(product),
		&fakeCustomerRepo{customers: map[uuid.UUID]model.Customer{}},
		&fakeUserRepo{users: map[uuid.UUID]model.User{operator.ID: operator}},
		commissions,
		registers,
		nil, // no dispatcher in unit tests
		"Till Test Store",
	)

	return &checkoutFixture{
		svc:          svc,
		registers:    registers,
		registerRepo: registerRepo,
		saleRepo:     saleRepo,
		commissions:  commissions,
		operatorID:   operator.ID,
		product:      product,
	}
}

func (f *checkoutFixture) openRegister(t *testing.T, opening string) {
	t.Helper()
	_, err := f.registers.Open(context.Background(), f.operatorID, dto.OpenRegisterRequest{
		OpeningBalance: money.MustParse(opening),
	})
	require.NoError(t, err)
}

func (f *checkoutFixture) settleRequest(payments ...dto.PaymentRequest) dto.SettleSaleRequest {
	return dto.SettleSaleRequest{
		Items: []dto.CartItemRequest{
			{ProductID: f.product.ID.String(), Quantity: qty(2)},
		},
		Discount: &dto.DiscountRequest{Kind: "percent", Value: decimal.NewFromInt(10)},
		Payments: payments,
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestSettle(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t, "100.00")

	// 2 × 10.00 with 10% overall → 18.00, paid in cash.
	receipt, err := f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
		dto.PaymentRequest{Method: "cash", Amount: money.MustParse("18.00")},
	))
	require.NoError(t, err)

	assert.Equal(t, "Till Test Store", receipt.Store)
	assert.Equal(t, "Maria", receipt.Operator)
	assert.Equal(t, int64(1), receipt.Sale.TicketNumber)
	assert.Equal(t, "20.00", receipt.Sale.Subtotal.String())
	assert.Equal(t, "2.00", receipt.Sale.DiscountTotal.String())
	assert.Equal(t, "18.00", receipt.Sale.Total.String())
	assert.Equal(t, "completed", receipt.Sale.Status)
	require.Len(t, receipt.Sale.Items, 1)
	assert.Equal(t, "Coffee 500g", receipt.Sale.Items[0].Product)

	// Register picked up the attribution.
	active, err := f.registers.Active(context.Background(), f.operatorID)
	require.NoError(t, err)
	assert.Equal(t, "18.00", active.Totals.Sales.String())
	assert.Equal(t, "118.00", active.Totals.Cash.String())
	assert.Equal(t, 1, active.SaleCount)

	// Sale persisted.
	assert.Len(t, f.saleRepo.sales, 1)
}

func TestSettle_SplitTenders(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t, "0.00")

	_, err := f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
		dto.PaymentRequest{Method: "cash", Amount: money.MustParse("10.00")},
		dto.PaymentRequest{Method: "pix", Amount: money.MustParse("8.00")},
	))
	require.NoError(t, err)

	active, err := f.registers.Active(context.Background(), f.operatorID)
	require.NoError(t, err)
	assert.Equal(t, "18.00", active.Totals.Sales.String())
	assert.Equal(t, "10.00", active.Totals.Cash.String())
	assert.Equal(t, "8.00", active.Totals.Pix.String())
}

func TestSettle_PaymentMismatch(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t, "100.00")

	for _, amount := range []string{"17.99", "18.01"} {
		_, err := f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
			dto.PaymentRequest{Method: "cash", Amount: money.MustParse(amount)},
		))

		var mismatch *service.PaymentMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "18.00", mismatch.Expected.String())
		assert.Equal(t, amount, mismatch.Actual.String())
	}

	// Nothing persisted, register untouched.
	assert.Empty(t, f.saleRepo.sales)
	active, err := f.registers.Active(context.Background(), f.operatorID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", active.Totals.Sales.String())
	assert.Equal(t, "100.00", active.Totals.Cash.String())
}

func TestSettle_NoOpenRegister(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
		dto.PaymentRequest{Method: "cash", Amount: money.MustParse("18.00")},
	))
	assert.ErrorIs(t, err, service.ErrNoOpenRegister)
}

func TestSettle_UnknownTender(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t, "0.00")

	_, err := f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
		dto.PaymentRequest{Method: "crypto", Amount: money.MustParse("18.00")},
	))
	assert.ErrorIs(t, err, service.ErrUnknownTender)
}

func TestSettle_PersistenceFailure(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t, "100.00")
	f.saleRepo.failCreate = true

	_, err := f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
		dto.PaymentRequest{Method: "cash", Amount: money.MustParse("18.00")},
	))

	var persistence *service.PersistenceError
	require.ErrorAs(t, err, &persistence)

	// The stored session is unchanged — the request can simply be retried.
	active, aErr := f.registers.Active(context.Background(), f.operatorID)
	require.NoError(t, aErr)
	assert.Equal(t, "0.00", active.Totals.Sales.String())
	assert.Equal(t, "100.00", active.Totals.Cash.String())

	f.saleRepo.failCreate = false
	_, err = f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
		dto.PaymentRequest{Method: "cash", Amount: money.MustParse("18.00")},
	))
	require.NoError(t, err)
}

func TestSettle_CommissionSnapshot(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t, "0.00")

	receipt, err := f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
		dto.PaymentRequest{Method: "cash", Amount: money.MustParse("18.00")},
	))
	require.NoError(t, err)

	// Operator has 5% commission → 0.90 pending, snapshotting the sale total.
	require.Len(t, f.commissions.items, 1)
	for _, c := range f.commissions.items {
		assert.Equal(t, f.operatorID, c.SellerID)
		assert.Equal(t, receipt.Sale.ID, c.SaleID.String())
		assert.Equal(t, "18.00", c.SaleTotal.String())
		assert.Equal(t, "5", c.Percent.String())
		assert.Equal(t, "0.90", c.Amount.String())
		assert.Equal(t, model.CommissionPending, c.Status)
	}
}

func TestCancelSale(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t, "100.00")

	receipt, err := f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
		dto.PaymentRequest{Method: "cash", Amount: money.MustParse("18.00")},
	))
	require.NoError(t, err)

	saleID := uuid.MustParse(receipt.Sale.ID)
	err = f.svc.Cancel(context.Background(), saleID, "customer returned items")
	require.NoError(t, err)

	// Attribution reversed, sale flagged cancelled.
	active, err := f.registers.Active(context.Background(), f.operatorID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", active.Totals.Sales.String())
	assert.Equal(t, "100.00", active.Totals.Cash.String())
	assert.Equal(t, 0, active.SaleCount)

	sale, err := f.svc.Get(context.Background(), saleID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", sale.Status)
}

func TestCancelSale_Twice(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t, "0.00")

	receipt, err := f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
		dto.PaymentRequest{Method: "cash", Amount: money.MustParse("18.00")},
	))
	require.NoError(t, err)

	saleID := uuid.MustParse(receipt.Sale.ID)
	require.NoError(t, f.svc.Cancel(context.Background(), saleID, "void"))

	err = f.svc.Cancel(context.Background(), saleID, "void again")
	assert.ErrorContains(t, err, "already cancelled")
}

func TestCancelSale_AfterSessionClosed(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t, "0.00")

	receipt, err := f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
		dto.PaymentRequest{Method: "cash", Amount: money.MustParse("18.00")},
	))
	require.NoError(t, err)

	_, err = f.registers.Close(context.Background(), f.operatorID, dto.CloseRegisterRequest{
		ClosingBalance: money.MustParse("18.00"),
	})
	require.NoError(t, err)

	// The originating session is closed and immutable; a later session cannot
	// absorb the reversal either.
	err = f.svc.Cancel(context.Background(), uuid.MustParse(receipt.Sale.ID), "too late")
	require.Error(t, err)
}

func TestListSales_FilterByStatus(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t, "0.00")

	receipt, err := f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
		dto.PaymentRequest{Method: "cash", Amount: money.MustParse("18.00")},
	))
	require.NoError(t, err)
	_, err = f.svc.Settle(context.Background(), f.operatorID, f.settleRequest(
		dto.PaymentRequest{Method: "pix", Amount: money.MustParse("18.00")},
	))
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(context.Background(), uuid.MustParse(receipt.Sale.ID), "void"))

	completed, err := f.svc.List(context.Background(), dto.SaleFilter{Status: "completed", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), completed.Total)

	cancelled, err := f.svc.List(context.Background(), dto.SaleFilter{Status: "cancelled", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), cancelled.Total)
}
