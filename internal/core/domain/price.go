package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CoffeeType classifies a priced coffee commodity.
type CoffeeType string

const (
	CoffeeRaw        CoffeeType = "raw"
	CoffeeDried      CoffeeType = "dried"
	CoffeePremium    CoffeeType = "premium"
	CoffeeFine       CoffeeType = "fine"
	CoffeeCommercial CoffeeType = "commercial"
)

// coffeeTypes is the closed set of valid categories.
var coffeeTypes = map[CoffeeType]struct{}{
	CoffeeRaw:        {},
	CoffeeDried:      {},
	CoffeePremium:    {},
	CoffeeFine:       {},
	CoffeeCommercial: {},
}

// Valid reports whether t is a known coffee type.
func (t CoffeeType) Valid() bool {
	_, ok := coffeeTypes[t]
	return ok
}

// CurrencyPHP is the only currency the pricing workflow supports.
const CurrencyPHP = "PHP"

// ReasonPriceUpdate is the fixed reason recorded on every history entry
// produced by the price-versioning workflow.
const ReasonPriceUpdate = "Price update"

var ErrPriceNotFound = errors.New("price not found")
var ErrUnknownCoffeeType = errors.New("unknown coffee type")
var ErrNegativePrice = errors.New("price must not be negative")
var ErrUnsupportedCurrency = errors.New("unsupported currency")
var ErrForbidden = errors.New("access forbidden")

// PriceRecord is one version of a coffee price. A record is created once per
// update and never mutated afterwards except for the single is_active flip
// performed when a newer record supersedes it. At most one record per
// coffee type is active at any time.
type PriceRecord struct {
	ID             string          `json:"id"`
	CoffeeType     CoffeeType      `json:"coffee_type"`
	PricePerKg     decimal.Decimal `json:"price_per_kg"`
	Currency       string          `json:"currency"`
	IsActive       bool            `json:"is_active"`
	CreatedBy      string          `json:"created_by"`
	UpdatedAt      time.Time       `json:"updated_at"`
	IdempotencyKey string          `json:"-"`
}

// PriceHistoryEntry is the immutable audit record of one price transition.
// Entries are append-only; they are never updated or deleted.
type PriceHistoryEntry struct {
	ID         string          `json:"id"`
	PriceID    string          `json:"price_id"`
	CoffeeType CoffeeType      `json:"coffee_type"`
	OldPrice   decimal.Decimal `json:"old_price"`
	NewPrice   decimal.Decimal `json:"new_price"`
	ChangedBy  string          `json:"changed_by"`
	ChangeDate time.Time       `json:"change_date"`
	Reason     string          `json:"reason"`
}
