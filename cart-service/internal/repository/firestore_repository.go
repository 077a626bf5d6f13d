package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/amaljyothis2003/AkasaEats/cart-service/internal/domain"
)

const cartsCollection = "carts"

type firestoreRepository struct {
	carts *firestore.CollectionRef
}

// NewFirestoreRepository stores carts in the "carts" collection, one document
// per user keyed by user id.
func NewFirestoreRepository(client *firestore.Client) CartRepository {
	return &firestoreRepository{
		carts: client.Collection(cartsCollection),
	}
}

func (r *firestoreRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	snap, err := r.carts.Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var cart domain.Cart
	if err := snap.DataTo(&cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	cart.UserID = userID
	return &cart, nil
}

func (r *firestoreRepository) SaveCart(ctx context.Context, cart *domain.Cart) error {
	// Zero UpdatedAt so the serverTimestamp tag refreshes it on write;
	// CreatedAt is preserved when already set, stamped by the server when new.
	cart.UpdatedAt = time.Time{}

	if _, err := r.carts.Doc(cart.UserID).Set(ctx, cart); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *firestoreRepository) DeleteCart(ctx context.Context, userID string) error {
	// Firestore deletes are idempotent; clearing an absent cart succeeds.
	if _, err := r.carts.Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
