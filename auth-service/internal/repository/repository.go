package repository

import (
	"context"
	"errors"

	"github.com/amaljyothis2003/AkasaEats/auth-service/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository persists user profile documents.
type UserRepository interface {
	Get(ctx context.Context, uid string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, uid string, fields map[string]any) error
	Delete(ctx context.Context, uid string) error
}
