package repository

import (
	"context"
	"errors"

	"github.com/amaljyothis2003/AkasaEats/inventory-service/internal/domain"
)

var ErrItemNotFound = errors.New("item not found")

// ListFilter narrows a catalog listing at the store query level. Free-text
// search is applied by the service after the query, not here.
type ListFilter struct {
	Category string
	InStock  bool
}

// ItemRepository defines the interface for item document operations.
// Update takes a field map so partial updates touch only the provided fields;
// implementations stamp updatedAt themselves.
type ItemRepository interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Item, error)
	Get(ctx context.Context, id string) (*domain.Item, error)
	Create(ctx context.Context, item *domain.Item) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}
