package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/kapehub/coffee-pricing-api/internal/core/domain"
	"github.com/kapehub/coffee-pricing-api/internal/core/ports"
)

type stubPriceService struct {
	submitFn  func(ctx context.Context, input ports.SubmitPriceInput) (*ports.SubmitPriceResult, error)
	listFn    func(ctx context.Context) ([]ports.ActivePriceView, error)
	historyFn func(ctx context.Context) ([]ports.PriceHistoryView, error)
}

func (s *stubPriceService) SubmitPrice(ctx context.Context, input ports.SubmitPriceInput) (*ports.SubmitPriceResult, error) {
	return s.submitFn(ctx, input)
}

func (s *stubPriceService) ListActivePrices(ctx context.Context) ([]ports.ActivePriceView, error) {
	return s.listFn(ctx)
}

func (s *stubPriceService) ListPriceHistory(ctx context.Context) ([]ports.PriceHistoryView, error) {
	return s.historyFn(ctx)
}

func newPriceContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", domain.RoleAdmin)
	c.Set("user_id", "admin_1")
	return c, rec
}

func TestPriceHandler_Submit_Success(t *testing.T) {
	stub := &stubPriceService{
		submitFn: func(_ context.Context, input ports.SubmitPriceInput) (*ports.SubmitPriceResult, error) {
			if input.CoffeeType != "raw" {
				t.Fatalf("unexpected coffee type: %s", input.CoffeeType)
			}
			if !input.PricePerKg.Equal(decimal.NewFromFloat(150.00)) {
				t.Fatalf("unexpected price: %s", input.PricePerKg)
			}
			if input.AdminID != "admin_1" {
				t.Fatalf("unexpected admin id: %s", input.AdminID)
			}
			return &ports.SubmitPriceResult{
				Record: &domain.PriceRecord{
					ID:         "p1",
					CoffeeType: domain.CoffeeRaw,
					PricePerKg: input.PricePerKg,
					Currency:   input.Currency,
					IsActive:   true,
					CreatedBy:  input.AdminID,
					UpdatedAt:  time.Now().UTC(),
				},
			}, nil
		},
	}
	h := NewPriceHandler(stub)

	c, rec := newPriceContext(t, http.MethodPost, "/v1/prices",
		`{"coffee_type":"raw","price_per_kg":150.00,"currency":"PHP"}`)

	if err := h.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp submitPriceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AlreadyExisted {
		t.Error("expected already_existed=false")
	}
	if resp.Price.ID != "p1" || !resp.Price.IsActive {
		t.Errorf("unexpected record: %+v", resp.Price)
	}
}

func TestPriceHandler_Submit_ReplayReturnsOK(t *testing.T) {
	stub := &stubPriceService{
		submitFn: func(_ context.Context, input ports.SubmitPriceInput) (*ports.SubmitPriceResult, error) {
			if input.IdempotencyKey != "req-42" {
				t.Fatalf("idempotency key not forwarded, got %q", input.IdempotencyKey)
			}
			return &ports.SubmitPriceResult{
				Record:         &domain.PriceRecord{ID: "p1", CoffeeType: domain.CoffeeRaw, IsActive: true},
				AlreadyExisted: true,
			}, nil
		},
	}
	h := NewPriceHandler(stub)

	c, rec := newPriceContext(t, http.MethodPost, "/v1/prices",
		`{"coffee_type":"raw","price_per_kg":150.00,"currency":"PHP"}`)
	c.Request().Header.Set("Idempotency-Key", "req-42")

	if err := h.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", rec.Code)
	}
}

func TestPriceHandler_Submit_RejectsBadPayloads(t *testing.T) {
	h := NewPriceHandler(&stubPriceService{
		submitFn: func(context.Context, ports.SubmitPriceInput) (*ports.SubmitPriceResult, error) {
			t.Fatal("service must not be called for invalid payloads")
			return nil, nil
		},
	})

	cases := []struct {
		name string
		body string
	}{
		{"unknown coffee type", `{"coffee_type":"espresso","price_per_kg":10,"currency":"PHP"}`},
		{"negative price", `{"coffee_type":"raw","price_per_kg":-1,"currency":"PHP"}`},
		{"missing price", `{"coffee_type":"raw","currency":"PHP"}`},
		{"wrong currency", `{"coffee_type":"raw","price_per_kg":10,"currency":"USD"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newPriceContext(t, http.MethodPost, "/v1/prices", tc.body)
			err := h.Submit(c)
			he, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if he.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", he.Code)
			}
		})
	}
}

func TestPriceHandler_Submit_ZeroPriceAccepted(t *testing.T) {
	called := false
	h := NewPriceHandler(&stubPriceService{
		submitFn: func(_ context.Context, input ports.SubmitPriceInput) (*ports.SubmitPriceResult, error) {
			called = true
			if !input.PricePerKg.IsZero() {
				t.Fatalf("expected zero price, got %s", input.PricePerKg)
			}
			return &ports.SubmitPriceResult{
				Record: &domain.PriceRecord{ID: "p1", CoffeeType: domain.CoffeeRaw, IsActive: true},
			}, nil
		},
	})

	c, rec := newPriceContext(t, http.MethodPost, "/v1/prices",
		`{"coffee_type":"raw","price_per_kg":0,"currency":"PHP"}`)

	if err := h.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("service not called")
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestPriceHandler_Submit_MissingIdentity(t *testing.T) {
	h := NewPriceHandler(&stubPriceService{
		submitFn: func(context.Context, ports.SubmitPriceInput) (*ports.SubmitPriceResult, error) {
			t.Fatal("service must not be called without identity")
			return nil, nil
		},
	})

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/prices",
		strings.NewReader(`{"coffee_type":"raw","price_per_kg":10,"currency":"PHP"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Submit(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", he.Code)
	}
}

func TestPriceHandler_ListActive(t *testing.T) {
	now := time.Now().UTC()
	h := NewPriceHandler(&stubPriceService{
		listFn: func(context.Context) ([]ports.ActivePriceView, error) {
			return []ports.ActivePriceView{
				{ID: "p1", CoffeeType: domain.CoffeeDried, PricePerKg: decimal.NewFromInt(90), Currency: "PHP", CreatedBy: "u1", CreatedByName: "Mia Reyes", UpdatedAt: now},
				{ID: "p2", CoffeeType: domain.CoffeeRaw, PricePerKg: decimal.NewFromInt(150), Currency: "PHP", CreatedBy: "u1", CreatedByName: "Mia Reyes", UpdatedAt: now},
			}, nil
		},
	})

	c, rec := newPriceContext(t, http.MethodGet, "/v1/prices", "")
	if err := h.ListActive(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp listActivePricesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(resp.Data))
	}
	if resp.Data[0].CoffeeType != "dried" || resp.Data[1].CoffeeType != "raw" {
		t.Errorf("order not preserved: %+v", resp.Data)
	}
	if resp.Data[0].CreatedByName != "Mia Reyes" {
		t.Errorf("creator name missing: %+v", resp.Data[0])
	}
}

func TestPriceHandler_History(t *testing.T) {
	now := time.Now().UTC()
	h := NewPriceHandler(&stubPriceService{
		historyFn: func(context.Context) ([]ports.PriceHistoryView, error) {
			return []ports.PriceHistoryView{
				{
					ID:            "h1",
					PriceID:       "p2",
					CoffeeType:    domain.CoffeeRaw,
					OldPrice:      decimal.NewFromInt(150),
					NewPrice:      decimal.NewFromInt(160),
					ChangedBy:     "u1",
					ChangedByName: "Mia Reyes",
					ChangeDate:    now,
					Reason:        domain.ReasonPriceUpdate,
				},
			}, nil
		},
	})

	c, rec := newPriceContext(t, http.MethodGet, "/v1/prices/history", "")
	if err := h.History(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp listPriceHistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(resp.Data))
	}
	entry := resp.Data[0]
	if !entry.OldPrice.Equal(decimal.NewFromInt(150)) || !entry.NewPrice.Equal(decimal.NewFromInt(160)) {
		t.Errorf("unexpected prices: %+v", entry)
	}
	if entry.Reason != domain.ReasonPriceUpdate {
		t.Errorf("unexpected reason: %q", entry.Reason)
	}
}
