package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

// submitPriceRequest carries a new price submission. PricePerKg is a pointer
// so that an explicit zero price passes validation while a missing field does
// not.
type submitPriceRequest struct {
	CoffeeType string   `json:"coffee_type"  validate:"required,oneof=raw dried premium fine commercial"`
	PricePerKg *float64 `json:"price_per_kg" validate:"required,gte=0"`
	Currency   string   `json:"currency"     validate:"required,oneof=PHP"`
}

type priceRecordResponse struct {
	ID         string          `json:"id"`
	CoffeeType string          `json:"coffee_type"`
	PricePerKg decimal.Decimal `json:"price_per_kg"`
	Currency   string          `json:"currency"`
	IsActive   bool            `json:"is_active"`
	CreatedBy  string          `json:"created_by"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type submitPriceResponse struct {
	Price          priceRecordResponse `json:"price"`
	AlreadyExisted bool                `json:"already_existed"`
}

// activePriceResponse is one row of the current-prices listing, enriched
// with the creator's display name.
type activePriceResponse struct {
	ID            string          `json:"id"`
	CoffeeType    string          `json:"coffee_type"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"`
	Currency      string          `json:"currency"`
	CreatedBy     string          `json:"created_by"`
	CreatedByName string          `json:"created_by_name,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type listActivePricesResponse struct {
	Data []activePriceResponse `json:"data"`
}

// priceHistoryResponse is one row of the audit listing, newest first.
type priceHistoryResponse struct {
	ID            string          `json:"id"`
	PriceID       string          `json:"price_id"`
	CoffeeType    string          `json:"coffee_type"`
	OldPrice      decimal.Decimal `json:"old_price"`
	NewPrice      decimal.Decimal `json:"new_price"`
	ChangedBy     string          `json:"changed_by"`
	ChangedByName string          `json:"changed_by_name,omitempty"`
	ChangeDate    time.Time       `json:"change_date"`
	Reason        string          `json:"reason"`
}

type listPriceHistoryResponse struct {
	Data []priceHistoryResponse `json:"data"`
}
