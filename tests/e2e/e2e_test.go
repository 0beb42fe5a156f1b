//go:build integration

package e2e

// e2e_test.go
// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered flows:
//   - full till cycle: login → open register → settle sale → report → close
//   - tender-sum mismatch rejected over HTTP, register untouched

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tillpos/internal/config"
	"tillpos/internal/infra"
	"tillpos/internal/model"
	"tillpos/internal/money"
	"tillpos/internal/router"
	"tillpos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// amountEq compares a JSON money string against an expected amount without
// depending on trailing-zero rendering.
func amountEq(t *testing.T, want, got string) {
	t.Helper()
	assert.True(t, money.MustParse(want).Equal(money.MustParse(got)), "want %s, got %s", want, got)
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server  *httptest.Server
	token   string // operator JWT (admin role, so every route is reachable)
	engine  *gin.Engine
	product model.Product
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	// Start Postgres container
	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("tillpos_test"),
		tcPostgres.WithUsername("tillpos"),
		tcPostgres.WithPassword("tillpos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Start Redis container
	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		StoreName:          "Till E2E Store",
		SaleEventChannel:   "events:sales",
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
	}

	// Connect DB (runs migrations) + Redis
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed a commissioned admin operator. Hash generated here so the test
	// carries no password-hash constant.
	hash, err := bcrypt.GenerateFromPassword([]byte("e2e-password"), bcrypt.MinCost)
	require.NoError(t, err)
	pct := decimal.NewFromInt(5)
	operator := model.User{
		Username:      "maria.e2e",
		Name:          "Maria E2E",
		PasswordHash:  string(hash),
		Role:          "admin",
		CommissionPct: &pct,
		Active:        true,
	}
	require.NoError(t, db.Create(&operator).Error)

	// Seed one catalog product
	product := model.Product{
		Code:     "7890001000001",
		Name:     "Coffee 500g",
		Price:    money.MustParse("10.00"),
		UnitType: model.UnitCount,
		Active:   true,
	}
	require.NoError(t, db.Create(&product).Error)

	notifier := infra.NewSaleNotifier(rdb, cfg.SaleEventChannel)
	dispatcher := worker.NewDispatcher(rdb)

	r := router.New(cfg, db, rdb, notifier, dispatcher)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "maria.e2e", "password": "e2e-password"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{
		server:  srv,
		token:   loginBody.AccessToken,
		engine:  r,
		product: product,
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FullTillCycle(t *testing.T) {
	env := setupTestEnv(t)

	// 1. Open the register with a 100.00 float
	openResp := do(t, env.server, "POST", "/v1/registers/open",
		jsonBody(t, map[string]any{"opening_balance": "100.00"}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, openResp.StatusCode)
	var opened struct {
		ID            string `json:"id"`
		SessionNumber int64  `json:"session_number"`
		Status        string `json:"status"`
	}
	decodeJSON(t, openResp, &opened)
	assert.Equal(t, "open", opened.Status)
	assert.Equal(t, int64(1), opened.SessionNumber)

	// 2. Settle a sale: 2 × 10.00 with 10% overall discount → 18.00 cash
	saleBody := map[string]any{
		"items": []map[string]any{
			{"product_id": env.product.ID.String(), "quantity": 2},
		},
		"discount": map[string]any{"kind": "percent", "value": 10},
		"payments": []map[string]any{
			{"method": "cash", "amount": "18.00"},
		},
	}
	settleResp := do(t, env.server, "POST", "/v1/sales", jsonBody(t, saleBody), env.token)
	require.Equal(t, http.StatusCreated, settleResp.StatusCode)
	var receipt struct {
		Store string `json:"store"`
		Sale  struct {
			ID           string `json:"id"`
			TicketNumber int64  `json:"ticket_number"`
			Total        string `json:"total"`
			Status       string `json:"status"`
		} `json:"sale"`
	}
	decodeJSON(t, settleResp, &receipt)
	assert.Equal(t, "Till E2E Store", receipt.Store)
	assert.Equal(t, int64(1), receipt.Sale.TicketNumber)
	assert.Equal(t, "completed", receipt.Sale.Status)
	amountEq(t, "18.00", receipt.Sale.Total)

	// 3. Active report reflects the attribution
	activeResp := do(t, env.server, "GET", "/v1/registers/active", nil, env.token)
	require.Equal(t, http.StatusOK, activeResp.StatusCode)
	var active struct {
		SaleCount int `json:"sale_count"`
		Totals    struct {
			Sales string `json:"sales"`
			Cash  string `json:"cash"`
		} `json:"totals"`
	}
	decodeJSON(t, activeResp, &active)
	assert.Equal(t, 1, active.SaleCount)
	amountEq(t, "18.00", active.Totals.Sales)
	amountEq(t, "118.00", active.Totals.Cash)

	// 4. Close counting the exact drawer → difference 0
	closeResp := do(t, env.server, "POST", "/v1/registers/close",
		jsonBody(t, map[string]any{"closing_balance": "118.00"}),
		env.token,
	)
	require.Equal(t, http.StatusOK, closeResp.StatusCode)
	var closed struct {
		Status          string `json:"status"`
		ExpectedBalance string `json:"expected_balance"`
		Difference      string `json:"difference"`
	}
	decodeJSON(t, closeResp, &closed)
	assert.Equal(t, "closed", closed.Status)
	amountEq(t, "118.00", closed.ExpectedBalance)
	amountEq(t, "0.00", closed.Difference)

	// 5. Closing again is a conflict
	again := do(t, env.server, "POST", "/v1/registers/close",
		jsonBody(t, map[string]any{"closing_balance": "118.00"}),
		env.token,
	)
	defer again.Body.Close()
	assert.Equal(t, http.StatusConflict, again.StatusCode)
}

func TestE2E_PaymentMismatchRejected(t *testing.T) {
	env := setupTestEnv(t)

	openResp := do(t, env.server, "POST", "/v1/registers/open",
		jsonBody(t, map[string]any{"opening_balance": "50.00"}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, openResp.StatusCode)
	openResp.Body.Close()

	// 17.99 against an 18.00 total must bounce with 422
	saleBody := map[string]any{
		"items": []map[string]any{
			{"product_id": env.product.ID.String(), "quantity": 2},
		},
		"discount": map[string]any{"kind": "percent", "value": 10},
		"payments": []map[string]any{
			{"method": "cash", "amount": "17.99"},
		},
	}
	settleResp := do(t, env.server, "POST", "/v1/sales", jsonBody(t, saleBody), env.token)
	defer settleResp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, settleResp.StatusCode)

	// Register untouched
	activeResp := do(t, env.server, "GET", "/v1/registers/active", nil, env.token)
	require.Equal(t, http.StatusOK, activeResp.StatusCode)
	var active struct {
		SaleCount int `json:"sale_count"`
		Totals    struct {
			Cash string `json:"cash"`
		} `json:"totals"`
	}
	decodeJSON(t, activeResp, &active)
	assert.Equal(t, 0, active.SaleCount)
	amountEq(t, "50.00", active.Totals.Cash)
}
