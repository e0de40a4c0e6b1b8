package ports

import (
	"context"

	"github.com/kapehub/coffee-pricing-api/internal/core/domain"
)

// RegisterInput carries the fields needed to create a user account.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	Role      string
	FirstName string
	LastName  string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
