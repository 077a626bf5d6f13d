package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amaljyothis2003/AkasaEats/cart-service/internal/domain"
	"github.com/amaljyothis2003/AkasaEats/cart-service/internal/itemclient"
	"github.com/amaljyothis2003/AkasaEats/cart-service/internal/repository"
	"github.com/amaljyothis2003/AkasaEats/pkg/apperr"
)

type mockRepository struct {
	m       sync.RWMutex
	cart    *domain.Cart
	err     error
	deleted bool
}

func (m *mockRepository) GetCart(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	return m.cart, nil
}

func (m *mockRepository) SaveCart(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return nil
}

func (m *mockRepository) DeleteCart(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	m.deleted = true
	return nil
}

func (m *mockRepository) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

// mockItemClient serves item lookups from a fixed map; stock checks are
// computed against the map the way the real collaborator would.
type mockItemClient struct {
	items map[string]*itemclient.Item
	err   error
}

func (m *mockItemClient) GetItem(_ context.Context, itemID, _ string) (*itemclient.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	item, ok := m.items[itemID]
	if !ok {
		return nil, itemclient.ErrItemNotFound
	}
	return item, nil
}

func (m *mockItemClient) GetItems(_ context.Context, itemIDs []string, _ string) ([]*itemclient.Item, []itemclient.LookupFailure) {
	var found []*itemclient.Item
	var failures []itemclient.LookupFailure
	for _, id := range itemIDs {
		if item, ok := m.items[id]; ok {
			found = append(found, item)
			continue
		}
		failures = append(failures, itemclient.LookupFailure{ItemID: id, Error: "item not found"})
	}
	return found, failures
}

func (m *mockItemClient) CheckStock(_ context.Context, requests []itemclient.StockRequest, _ string) ([]itemclient.StockStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	var statuses []itemclient.StockStatus
	for _, req := range requests {
		item, ok := m.items[req.ItemID]
		if !ok {
			statuses = append(statuses, itemclient.StockStatus{
				ItemID:    req.ItemID,
				Available: false,
				Reason:    "Item not found",
			})
			continue
		}
		statuses = append(statuses, itemclient.StockStatus{
			ItemID:            req.ItemID,
			Available:         item.Stock >= req.Quantity,
			CurrentStock:      item.Stock,
			RequestedQuantity: req.Quantity,
		})
	}
	return statuses, nil
}

func appleOnly(stock int) *mockItemClient {
	return &mockItemClient{items: map[string]*itemclient.Item{
		"apple": {ID: "apple", Name: "Fresh Apple", Price: 3.99, Stock: stock, Available: true},
	}}
}

func TestAddItem_NewCart_Success(t *testing.T) {
	mockRepo := &mockRepository{}
	sut := NewCartService(mockRepo, appleOnly(10), zap.NewNop())

	result, err := sut.AddItem(context.Background(), "user-1", "apple", 3, "tok")
	require.NoError(t, err)
	assert.Equal(t, "user-1", result.UserID)
	assert.Equal(t, 3, result.ItemCount)
	assert.Equal(t, 1, result.ItemsInCart)

	saved := mockRepo.getCart()
	require.NotNil(t, saved)
	require.Len(t, saved.Items, 1)
	assert.Equal(t, "apple", saved.Items[0].ItemID)
	assert.Equal(t, 3, saved.Items[0].Quantity)
	assert.False(t, saved.Items[0].AddedAt.IsZero())
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	sut := NewCartService(&mockRepository{}, appleOnly(10), zap.NewNop())

	_, err := sut.AddItem(context.Background(), "user-1", "apple", 0, "tok")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalid, apperr.From(err).Code)
}

func TestAddItem_ItemNotFound(t *testing.T) {
	sut := NewCartService(&mockRepository{}, appleOnly(10), zap.NewNop())

	_, err := sut.AddItem(context.Background(), "user-1", "durian", 1, "tok")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
}

func TestAddItem_IncrementsExistingLine(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartItem{{ItemID: "apple", Quantity: 2, AddedAt: time.Now()}},
	}}
	sut := NewCartService(mockRepo, appleOnly(10), zap.NewNop())

	result, err := sut.AddItem(context.Background(), "user-1", "apple", 3, "tok")
	require.NoError(t, err)
	assert.Equal(t, 5, result.ItemCount)
	assert.Equal(t, 1, result.ItemsInCart)
	assert.Equal(t, 5, mockRepo.getCart().Items[0].Quantity)
}

func TestAddItem_ExistingLineExceedsStock(t *testing.T) {
	// Stock 5 with 3 already in the cart leaves room for 2, not 3.
	mockRepo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartItem{{ItemID: "apple", Quantity: 3}},
	}}
	sut := NewCartService(mockRepo, appleOnly(5), zap.NewNop())

	_, err := sut.AddItem(context.Background(), "user-1", "apple", 3, "tok")
	require.Error(t, err)

	appErr := apperr.From(err)
	assert.Equal(t, apperr.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "Cannot add 3 more. Maximum stock is 5. You already have 3 in cart.", appErr.Message)
	assert.Equal(t, 3, appErr.Details["currentQuantity"])
	assert.Equal(t, 5, appErr.Details["availableStock"])
	// The cart is untouched on rejection.
	assert.Equal(t, 3, mockRepo.getCart().Items[0].Quantity)
}

func TestAddItem_NewLineExceedsStock(t *testing.T) {
	sut := NewCartService(&mockRepository{}, appleOnly(2), zap.NewNop())

	_, err := sut.AddItem(context.Background(), "user-1", "apple", 3, "tok")
	require.Error(t, err)

	appErr := apperr.From(err)
	assert.Equal(t, apperr.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "Insufficient stock. Only 2 available", appErr.Message)
	assert.Equal(t, 2, appErr.Details["availableStock"])
}

func TestUpdateQuantity_SetsAbsoluteAmount(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartItem{{ItemID: "apple", Quantity: 2}},
	}}
	sut := NewCartService(mockRepo, appleOnly(10), zap.NewNop())

	result, err := sut.UpdateQuantity(context.Background(), "user-1", "apple", 7, "tok")
	require.NoError(t, err)
	assert.Equal(t, 7, result.NewQuantity)
	assert.Equal(t, 7, mockRepo.getCart().Items[0].Quantity)
}

func TestUpdateQuantity_CartNotFound(t *testing.T) {
	sut := NewCartService(&mockRepository{}, appleOnly(10), zap.NewNop())

	_, err := sut.UpdateQuantity(context.Background(), "user-1", "apple", 2, "tok")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
}

func TestUpdateQuantity_ItemNotInCart(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartItem{{ItemID: "banana", Quantity: 1}},
	}}
	items := &mockItemClient{items: map[string]*itemclient.Item{
		"apple":  {ID: "apple", Stock: 10},
		"banana": {ID: "banana", Stock: 10},
	}}
	sut := NewCartService(mockRepo, items, zap.NewNop())

	_, err := sut.UpdateQuantity(context.Background(), "user-1", "apple", 2, "tok")
	require.ErrorContains(t, err, "Item not found in cart")
}

func TestUpdateQuantity_ExceedsStock(t *testing.T) {
	// The absolute amount is checked against stock, not the delta.
	mockRepo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartItem{{ItemID: "apple", Quantity: 4}},
	}}
	sut := NewCartService(mockRepo, appleOnly(5), zap.NewNop())

	_, err := sut.UpdateQuantity(context.Background(), "user-1", "apple", 6, "tok")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInsufficientStock, apperr.From(err).Code)
	assert.Equal(t, 4, mockRepo.getCart().Items[0].Quantity)
}

func TestRemoveItem_Success(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items: []domain.CartItem{
			{ItemID: "apple", Quantity: 2},
			{ItemID: "banana", Quantity: 1},
		},
	}}
	sut := NewCartService(mockRepo, appleOnly(10), zap.NewNop())

	result, err := sut.RemoveItem(context.Background(), "user-1", "apple")
	require.NoError(t, err)
	assert.Equal(t, 1, result.RemainingItems)

	saved := mockRepo.getCart()
	require.Len(t, saved.Items, 1)
	assert.Equal(t, "banana", saved.Items[0].ItemID)
}

func TestRemoveItem_NotInCart(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartItem{{ItemID: "banana", Quantity: 1}},
	}}
	sut := NewCartService(mockRepo, appleOnly(10), zap.NewNop())

	_, err := sut.RemoveItem(context.Background(), "user-1", "apple")
	require.ErrorContains(t, err, "Item not found in cart")
}

func TestClearCart_Success(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartItem{{ItemID: "apple", Quantity: 2}},
	}}
	sut := NewCartService(mockRepo, appleOnly(10), zap.NewNop())

	require.NoError(t, sut.ClearCart(context.Background(), "user-1"))
	assert.True(t, mockRepo.deleted)
	assert.Nil(t, mockRepo.getCart())
}

func TestGetCart_NoDocument_ReturnsEmptyView(t *testing.T) {
	sut := NewCartService(&mockRepository{}, appleOnly(10), zap.NewNop())

	view, err := sut.GetCart(context.Background(), "user-1", "tok")
	require.NoError(t, err)
	assert.Equal(t, "user-1", view.UserID)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Total)
	assert.Zero(t, view.ItemCount)
}

func TestGetCart_RepoError(t *testing.T) {
	mockRepo := &mockRepository{err: fmt.Errorf("database error")}
	sut := NewCartService(mockRepo, appleOnly(10), zap.NewNop())

	_, err := sut.GetCart(context.Background(), "user-1", "tok")
	require.ErrorContains(t, err, "database error")
}

func TestGetCart_EnrichesLinesAndTotals(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items: []domain.CartItem{
			{ItemID: "apple", Quantity: 2},
			{ItemID: "banana", Quantity: 3},
		},
	}}
	items := &mockItemClient{items: map[string]*itemclient.Item{
		"apple":  {ID: "apple", Name: "Fresh Apple", Price: 3.99, Stock: 10, Available: true},
		"banana": {ID: "banana", Name: "Banana", Price: 2.49, Stock: 20, Available: true},
	}}
	sut := NewCartService(mockRepo, items, zap.NewNop())

	view, err := sut.GetCart(context.Background(), "user-1", "tok")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "Fresh Apple", view.Items[0].Name)
	assert.Equal(t, 7.98, view.Items[0].Subtotal)
	assert.InDelta(t, 7.47, view.Items[1].Subtotal, 1e-9)
	assert.Equal(t, 15.45, view.Total)
	assert.Equal(t, 5, view.ItemCount)
	assert.Empty(t, view.Warnings)
}

func TestGetCart_LookupFailureBecomesWarning(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items: []domain.CartItem{
			{ItemID: "apple", Quantity: 2},
			{ItemID: "ghost", Quantity: 1},
		},
	}}
	sut := NewCartService(mockRepo, appleOnly(10), zap.NewNop())

	view, err := sut.GetCart(context.Background(), "user-1", "tok")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	require.Len(t, view.Warnings, 1)
	assert.Equal(t, "ghost", view.Warnings[0].ItemID)

	// The failed line stays in the view with zeroed detail fields.
	assert.Equal(t, "ghost", view.Items[1].ItemID)
	assert.Empty(t, view.Items[1].Name)
	assert.Zero(t, view.Items[1].Subtotal)
	assert.Equal(t, 7.98, view.Total)
}

func TestValidateCart_MissingCart(t *testing.T) {
	sut := NewCartService(&mockRepository{}, appleOnly(10), zap.NewNop())

	_, err := sut.ValidateCart(context.Background(), "user-1", "tok")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeEmptyCart, apperr.From(err).Code)
}

func TestValidateCart_EmptyCart(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{UserID: "user-1", Items: []domain.CartItem{}}}
	sut := NewCartService(mockRepo, appleOnly(10), zap.NewNop())

	_, err := sut.ValidateCart(context.Background(), "user-1", "tok")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeEmptyCart, apperr.From(err).Code)
}

func TestValidateCart_UnavailableItems(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items: []domain.CartItem{
			{ItemID: "apple", Quantity: 2},
			{ItemID: "ghost", Quantity: 1},
		},
	}}
	sut := NewCartService(mockRepo, appleOnly(10), zap.NewNop())

	_, err := sut.ValidateCart(context.Background(), "user-1", "tok")
	require.Error(t, err)

	appErr := apperr.From(err)
	assert.Equal(t, apperr.CodeItemsUnavailable, appErr.Code)
	unavailable, ok := appErr.Details["unavailableItems"].([]itemclient.StockStatus)
	require.True(t, ok)
	require.Len(t, unavailable, 1)
	assert.Equal(t, "ghost", unavailable[0].ItemID)
	assert.Equal(t, "Item not found", unavailable[0].Reason)
}

func TestValidateCart_ReturnsPricedSnapshot(t *testing.T) {
	mockRepo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items: []domain.CartItem{
			{ItemID: "apple", Quantity: 2},
			{ItemID: "banana", Quantity: 4},
		},
	}}
	items := &mockItemClient{items: map[string]*itemclient.Item{
		"apple":  {ID: "apple", Name: "Fresh Apple", Price: 3.99, Stock: 10},
		"banana": {ID: "banana", Name: "Banana", Price: 2.49, Stock: 20},
	}}
	sut := NewCartService(mockRepo, items, zap.NewNop())

	view, err := sut.ValidateCart(context.Background(), "user-1", "tok")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 7.98, view.Items[0].Subtotal)
	assert.Equal(t, 9.96, view.Items[1].Subtotal)
	assert.Equal(t, 17.94, view.Total)
	assert.Equal(t, 6, view.ItemCount)
}
