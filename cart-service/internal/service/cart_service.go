package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/amaljyothis2003/AkasaEats/cart-service/internal/domain"
	"github.com/amaljyothis2003/AkasaEats/cart-service/internal/itemclient"
	"github.com/amaljyothis2003/AkasaEats/cart-service/internal/repository"
	"github.com/amaljyothis2003/AkasaEats/pkg/apperr"
)

// CartService keeps a user's cart consistent with the inventory collaborator's
// stock on a best-effort basis. Every mutation reads the cart document,
// modifies the list in memory and writes it back wholesale; the window between
// the stock check and the write is unprotected (last write wins).
type CartService struct {
	repo  repository.CartRepository
	items itemclient.Client
	log   *zap.Logger
}

func NewCartService(repo repository.CartRepository, items itemclient.Client, log *zap.Logger) *CartService {
	return &CartService{
		repo:  repo,
		items: items,
		log:   log,
	}
}

// AddResult echoes the aggregate counts after an add.
type AddResult struct {
	UserID      string `json:"userId"`
	ItemCount   int    `json:"itemCount"`
	ItemsInCart int    `json:"itemsInCart"`
}

// UpdateResult echoes the line written by UpdateQuantity.
type UpdateResult struct {
	UserID      string `json:"userId"`
	ItemID      string `json:"itemId"`
	NewQuantity int    `json:"newQuantity"`
}

// RemoveResult echoes the remaining line count after a removal.
type RemoveResult struct {
	UserID         string `json:"userId"`
	RemainingItems int    `json:"remainingItems"`
}

// EnrichedItem is a cart line merged with the collaborator's live item details.
// Detail fields stay empty when the lookup for that line failed.
type EnrichedItem struct {
	ItemID      string    `json:"itemId"`
	Quantity    int       `json:"quantity"`
	AddedAt     time.Time `json:"addedAt"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category,omitempty"`
	Stock       int       `json:"stock"`
	Unit        string    `json:"unit,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Available   bool      `json:"available"`
	Subtotal    float64   `json:"subtotal"`
}

// CartView is the enriched read model. Totals are recomputed from the
// collaborator's current prices, never from prices stored at add time.
type CartView struct {
	UserID    string                     `json:"userId"`
	Items     []EnrichedItem             `json:"items"`
	Total     float64                    `json:"total"`
	ItemCount int                        `json:"itemCount"`
	UpdatedAt *time.Time                 `json:"updatedAt,omitempty"`
	Warnings  []itemclient.LookupFailure `json:"-"`
}

// PricedItem is one line of a checkout-ready snapshot.
type PricedItem struct {
	ItemID   string  `json:"itemId"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Name     string  `json:"name"`
	Subtotal float64 `json:"subtotal"`
}

// ValidationView is the priced snapshot returned when every line is in stock.
type ValidationView struct {
	Items     []PricedItem `json:"items"`
	Total     float64      `json:"total"`
	ItemCount int          `json:"itemCount"`
}

// AddItem verifies the item exists upstream, checks that the requested
// quantity plus whatever is already in the cart fits the current stock (read
// once, not locked), then appends or increments the line and persists the
// full list.
func (s *CartService) AddItem(ctx context.Context, userID, itemID string, quantity int, token string) (*AddResult, error) {
	if quantity < 1 {
		return nil, apperr.Invalid("Quantity must be at least 1")
	}

	item, err := s.items.GetItem(ctx, itemID, token)
	if err != nil {
		if errors.Is(err, itemclient.ErrItemNotFound) {
			return nil, apperr.NotFound("Item not found")
		}
		return nil, err
	}

	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			return nil, err
		}
		cart = &domain.Cart{UserID: userID}
	}

	if idx := cart.FindItem(itemID); idx >= 0 {
		current := cart.Items[idx].Quantity
		newQuantity := current + quantity
		if newQuantity > item.Stock {
			return nil, apperr.New(apperr.CodeInsufficientStock,
				fmt.Sprintf("Cannot add %d more. Maximum stock is %d. You already have %d in cart.", quantity, item.Stock, current)).
				WithDetail("currentQuantity", current).
				WithDetail("availableStock", item.Stock)
		}
		cart.Items[idx].Quantity = newQuantity
	} else {
		if quantity > item.Stock {
			return nil, apperr.New(apperr.CodeInsufficientStock,
				fmt.Sprintf("Insufficient stock. Only %d available", item.Stock)).
				WithDetail("availableStock", item.Stock)
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ItemID:   itemID,
			Quantity: quantity,
			AddedAt:  time.Now(),
		})
	}

	if err := s.repo.SaveCart(ctx, cart); err != nil {
		return nil, err
	}

	return &AddResult{
		UserID:      userID,
		ItemCount:   cart.TotalQuantity(),
		ItemsInCart: len(cart.Items),
	}, nil
}

// UpdateQuantity overwrites a line with a new absolute quantity after
// re-checking stock for that absolute amount. Quantity zero is handled by the
// caller as a removal.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int, token string) (*UpdateResult, error) {
	if quantity < 0 {
		return nil, apperr.Invalid("Quantity must be a non-negative number")
	}

	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, apperr.NotFound("Cart not found")
		}
		return nil, err
	}

	item, err := s.items.GetItem(ctx, itemID, token)
	if err != nil {
		if errors.Is(err, itemclient.ErrItemNotFound) {
			return nil, apperr.NotFound("Item not found")
		}
		return nil, err
	}

	if quantity > item.Stock {
		return nil, apperr.New(apperr.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock. Only %d available", item.Stock)).
			WithDetail("availableStock", item.Stock)
	}

	idx := cart.FindItem(itemID)
	if idx < 0 {
		return nil, apperr.NotFound("Item not found in cart")
	}
	cart.Items[idx].Quantity = quantity

	if err := s.repo.SaveCart(ctx, cart); err != nil {
		return nil, err
	}

	return &UpdateResult{
		UserID:      userID,
		ItemID:      itemID,
		NewQuantity: quantity,
	}, nil
}

// RemoveItem filters the line out and persists the remainder.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*RemoveResult, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, apperr.NotFound("Cart not found")
		}
		return nil, err
	}

	filtered := make([]domain.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		if it.ItemID != itemID {
			filtered = append(filtered, it)
		}
	}
	if len(filtered) == len(cart.Items) {
		return nil, apperr.NotFound("Item not found in cart")
	}
	cart.Items = filtered

	if err := s.repo.SaveCart(ctx, cart); err != nil {
		return nil, err
	}

	return &RemoveResult{
		UserID:         userID,
		RemainingItems: len(cart.Items),
	}, nil
}

// ClearCart deletes the cart document outright.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	return s.repo.DeleteCart(ctx, userID)
}

// GetCart returns a synthetic empty cart when no document exists. Otherwise
// every line is enriched with the collaborator's current price and name;
// individual lookup failures become warnings instead of failing the read.
func (s *CartService) GetCart(ctx context.Context, userID, token string) (*CartView, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return &CartView{
				UserID:    userID,
				Items:     []EnrichedItem{},
				Total:     0,
				ItemCount: 0,
			}, nil
		}
		return nil, err
	}

	ids := make([]string, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ItemID)
	}
	details, failures := s.items.GetItems(ctx, ids, token)
	if len(failures) > 0 {
		s.log.Warn("some item lookups failed during cart enrichment",
			zap.String("user_id", userID),
			zap.Int("failed", len(failures)))
	}

	byID := make(map[string]*itemclient.Item, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	enriched := make([]EnrichedItem, 0, len(cart.Items))
	total := 0.0
	itemCount := 0
	for _, line := range cart.Items {
		e := EnrichedItem{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			AddedAt:  line.AddedAt,
		}
		if d, ok := byID[line.ItemID]; ok {
			e.Name = d.Name
			e.Description = d.Description
			e.Price = d.Price
			e.Category = d.Category
			e.Stock = d.Stock
			e.Unit = d.Unit
			e.ImageURL = d.ImageURL
			e.Available = d.Available
			e.Subtotal = d.Price * float64(line.Quantity)
		}
		total += e.Subtotal
		itemCount += line.Quantity
		enriched = append(enriched, e)
	}

	updatedAt := cart.UpdatedAt
	return &CartView{
		UserID:    userID,
		Items:     enriched,
		Total:     round2(total),
		ItemCount: itemCount,
		UpdatedAt: &updatedAt,
		Warnings:  failures,
	}, nil
}

// ValidateCart batch-checks stock for every line and, when everything is
// available, returns a snapshot priced at the collaborator's current prices.
func (s *CartService) ValidateCart(ctx context.Context, userID, token string) (*ValidationView, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, apperr.New(apperr.CodeEmptyCart, "Cart is empty")
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperr.New(apperr.CodeEmptyCart, "Cart is empty")
	}

	checks := make([]itemclient.StockRequest, 0, len(cart.Items))
	for _, it := range cart.Items {
		checks = append(checks, itemclient.StockRequest{ItemID: it.ItemID, Quantity: it.Quantity})
	}

	statuses, err := s.items.CheckStock(ctx, checks, token)
	if err != nil {
		return nil, err
	}

	var unavailable []itemclient.StockStatus
	for _, st := range statuses {
		if !st.Available {
			unavailable = append(unavailable, st)
		}
	}
	if len(unavailable) > 0 {
		return nil, apperr.New(apperr.CodeItemsUnavailable, "Some items are not available").
			WithDetail("unavailableItems", unavailable)
	}

	ids := make([]string, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ItemID)
	}
	details, _ := s.items.GetItems(ctx, ids, token)
	byID := make(map[string]*itemclient.Item, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	priced := make([]PricedItem, 0, len(cart.Items))
	total := 0.0
	itemCount := 0
	for _, line := range cart.Items {
		p := PricedItem{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Name:     "Unknown",
		}
		if d, ok := byID[line.ItemID]; ok {
			p.Price = d.Price
			p.Name = d.Name
		}
		p.Subtotal = p.Price * float64(line.Quantity)
		total += p.Subtotal
		itemCount += line.Quantity
		priced = append(priced, p)
	}

	return &ValidationView{
		Items:     priced,
		Total:     round2(total),
		ItemCount: itemCount,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
