package ports

import (
	"context"

	"github.com/kapehub/coffee-pricing-api/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByIDs returns the users for the given IDs keyed by ID. Unknown IDs
	// are simply absent from the result; the caller decides how to render a
	// missing author.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
}
