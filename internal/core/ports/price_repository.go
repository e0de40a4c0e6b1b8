package ports

import (
	"context"

	"github.com/kapehub/coffee-pricing-api/internal/core/domain"
)

// PriceRepository defines persistence operations for price records.
type PriceRepository interface {
	Insert(ctx context.Context, rec *domain.PriceRecord) error
	// FindActiveByType returns the single active record for a coffee type,
	// or domain.ErrPriceNotFound when no price has been set yet.
	FindActiveByType(ctx context.Context, t domain.CoffeeType) (*domain.PriceRecord, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.PriceRecord, error)
	// ListActive returns every active record ordered by coffee_type ascending.
	ListActive(ctx context.Context) ([]*domain.PriceRecord, error)
	// SetActive flips the is_active flag on one record. Used to retire a
	// superseded record and to restore it when a later saga step fails.
	SetActive(ctx context.Context, id string, active bool) error
	// Delete removes a record. Only the saga's compensation path uses it.
	Delete(ctx context.Context, id string) error
}

// PriceHistoryRepository persists the append-only audit trail.
type PriceHistoryRepository interface {
	Insert(ctx context.Context, entry *domain.PriceHistoryEntry) error
	// List returns all entries ordered by change_date descending.
	List(ctx context.Context) ([]*domain.PriceHistoryEntry, error)
}
