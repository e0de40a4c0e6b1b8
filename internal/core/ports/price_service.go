package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kapehub/coffee-pricing-api/internal/core/domain"
)

// SubmitPriceInput carries all data needed to record a new price.
type SubmitPriceInput struct {
	CoffeeType string
	PricePerKg decimal.Decimal
	Currency   string
	// AdminID identifies the admitted administrator performing the update.
	AdminID string
	// IdempotencyKey, when non-empty, lets a retried submission replay the
	// previously created record instead of versioning the price twice.
	IdempotencyKey string
}

// SubmitPriceResult is returned after a price submission.
type SubmitPriceResult struct {
	Record *domain.PriceRecord
	// AlreadyExisted is true when the idempotency key matched an earlier
	// submission and no new version was created.
	AlreadyExisted bool
}

// ActivePriceView is an active price enriched with its creator's display name.
type ActivePriceView struct {
	ID            string
	CoffeeType    domain.CoffeeType
	PricePerKg    decimal.Decimal
	Currency      string
	CreatedBy     string
	CreatedByName string
	UpdatedAt     time.Time
}

// PriceHistoryView is an audit entry enriched with the changer's display name.
type PriceHistoryView struct {
	ID            string
	PriceID       string
	CoffeeType    domain.CoffeeType
	OldPrice      decimal.Decimal
	NewPrice      decimal.Decimal
	ChangedBy     string
	ChangedByName string
	ChangeDate    time.Time
	Reason        string
}

// PriceService defines the price-versioning use cases.
type PriceService interface {
	// SubmitPrice records a new active price for a coffee type, retires the
	// prior active record, and appends an audit entry when one existed.
	SubmitPrice(ctx context.Context, input SubmitPriceInput) (*SubmitPriceResult, error)
	// ListActivePrices returns the active price per coffee type, ordered by
	// coffee type ascending.
	ListActivePrices(ctx context.Context) ([]ActivePriceView, error)
	// ListPriceHistory returns the full audit trail, most recent first.
	ListPriceHistory(ctx context.Context) ([]PriceHistoryView, error)
}
