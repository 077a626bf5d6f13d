package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaljyothis2003/AkasaEats/cart-service/internal/domain"
)

// Integration tests run against the Firestore emulator only.
func setupRepository(t *testing.T) CartRepository {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	client, err := firestore.NewClient(context.Background(), "akasaeats-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewFirestoreRepository(client)
}

func TestGetCart_NotFound(t *testing.T) {
	repo := setupRepository(t)

	cart, err := repo.GetCart(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestSaveCart_RoundTrip(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	userID := uuid.NewString()

	cart := &domain.Cart{
		UserID: userID,
		Items: []domain.CartItem{
			{ItemID: "apple", Quantity: 2, AddedAt: time.Now().UTC()},
		},
	}
	require.NoError(t, repo.SaveCart(ctx, cart))

	got, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "apple", got.Items[0].ItemID)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.False(t, got.UpdatedAt.IsZero(), "server timestamp was not set")
}

func TestSaveCart_OverwritesWholeDocument(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	userID := uuid.NewString()

	first := &domain.Cart{UserID: userID, Items: []domain.CartItem{
		{ItemID: "apple", Quantity: 2},
		{ItemID: "banana", Quantity: 1},
	}}
	require.NoError(t, repo.SaveCart(ctx, first))

	second := &domain.Cart{UserID: userID, Items: []domain.CartItem{
		{ItemID: "apple", Quantity: 5},
	}}
	require.NoError(t, repo.SaveCart(ctx, second))

	got, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 5, got.Items[0].Quantity)
}

func TestDeleteCart_Idempotent(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	userID := uuid.NewString()

	require.NoError(t, repo.SaveCart(ctx, &domain.Cart{UserID: userID, Items: []domain.CartItem{
		{ItemID: "apple", Quantity: 1},
	}}))
	require.NoError(t, repo.DeleteCart(ctx, userID))

	_, err := repo.GetCart(ctx, userID)
	assert.ErrorIs(t, err, ErrCartNotFound)

	// Deleting an absent cart still succeeds.
	assert.NoError(t, repo.DeleteCart(ctx, userID))
}
