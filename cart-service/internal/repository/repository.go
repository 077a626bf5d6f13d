package repository

import (
	"context"
	"errors"

	"github.com/amaljyothis2003/AkasaEats/cart-service/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository defines the interface for cart document operations.
// Consumers define this interface, not the Firestore implementation.
// SaveCart writes the whole document; the read-modify-write sequence around it
// is not protected by any lock or version token.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}
