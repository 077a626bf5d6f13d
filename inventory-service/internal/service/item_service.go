package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/amaljyothis2003/AkasaEats/inventory-service/internal/domain"
	"github.com/amaljyothis2003/AkasaEats/inventory-service/internal/repository"
	"github.com/amaljyothis2003/AkasaEats/inventory-service/internal/storage"
	"github.com/amaljyothis2003/AkasaEats/pkg/apperr"
)

// ItemService owns catalog CRUD and the stock-availability batch check.
type ItemService struct {
	repo   repository.ItemRepository
	images storage.ImageStore
	log    *zap.Logger
}

func NewItemService(repo repository.ItemRepository, images storage.ImageStore, log *zap.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		images: images,
		log:    log,
	}
}

// ImageUpload carries a decoded multipart image file.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CreateItemInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
	Unit        string
}

// UpdateItemInput uses pointers so absent fields are left untouched.
type UpdateItemInput struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Stock       *int
	Unit        *string
	Available   *bool
}

// ListItems applies category/inStock at the store query and the free-text
// search in memory over name and description, case-insensitively.
func (s *ItemService) ListItems(ctx context.Context, category, search string, inStock bool) ([]domain.Item, error) {
	items, err := s.repo.List(ctx, repository.ListFilter{Category: category, InStock: inStock})
	if err != nil {
		return nil, err
	}

	if search == "" {
		return items, nil
	}

	needle := strings.ToLower(search)
	filtered := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) ||
			strings.Contains(strings.ToLower(item.Description), needle) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func (s *ItemService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperr.NotFound("Item not found")
		}
		return nil, err
	}
	return item, nil
}

// Categories returns the sorted distinct category labels in use.
func (s *ItemService) Categories(ctx context.Context) ([]string, error) {
	items, err := s.repo.List(ctx, repository.ListFilter{})
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var categories []string
	for _, item := range items {
		if item.Category == "" {
			continue
		}
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		categories = append(categories, item.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *ItemService) ItemsByCategory(ctx context.Context, category string) ([]domain.Item, error) {
	return s.repo.List(ctx, repository.ListFilter{Category: category})
}

func (s *ItemService) CreateItem(ctx context.Context, input CreateItemInput, image *ImageUpload) (*domain.Item, error) {
	if input.Name == "" || input.Category == "" {
		return nil, apperr.Invalid("Please provide name, price, category, and stock")
	}
	if input.Price < 0 || input.Stock < 0 {
		return nil, apperr.Invalid("Price and stock must be non-negative")
	}

	item := &domain.Item{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Stock:       input.Stock,
		Unit:        input.Unit,
		Available:   true,
	}

	if image != nil {
		url, err := s.images.Upload(ctx, image.Filename, image.ContentType, image.Data)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		item.ImageURL = url
	}

	id, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = id
	return item, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, id string, input UpdateItemInput, image *ImageUpload) (*domain.Item, error) {
	if _, err := s.GetItem(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperr.Invalid("Price must be non-negative")
		}
		fields["price"] = *input.Price
	}
	if input.Category != nil {
		fields["category"] = *input.Category
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, apperr.Invalid("Stock must be non-negative")
		}
		fields["stock"] = *input.Stock
	}
	if input.Unit != nil {
		fields["unit"] = *input.Unit
	}
	if input.Available != nil {
		fields["available"] = *input.Available
	}

	if image != nil {
		url, err := s.images.Upload(ctx, image.Filename, image.ContentType, image.Data)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		fields["imageUrl"] = url
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

// DeleteItem removes the document; its image is deleted best-effort first.
func (s *ItemService) DeleteItem(ctx context.Context, id string) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}

	if item.ImageURL != "" {
		if err := s.images.Delete(ctx, item.ImageURL); err != nil {
			s.log.Warn("failed to delete item image",
				zap.String("item_id", id),
				zap.Error(err))
		}
	}

	return s.repo.Delete(ctx, id)
}

func (s *ItemService) UpdateStock(ctx context.Context, id string, stock int) (*domain.Item, error) {
	if stock < 0 {
		return nil, apperr.Invalid("Stock must be a non-negative number")
	}

	if _, err := s.GetItem(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"stock": stock}); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

// CheckStock reports availability per requested line. A missing item is
// reported as unavailable rather than failing the batch.
func (s *ItemService) CheckStock(ctx context.Context, requests []domain.StockRequest) ([]domain.StockStatus, bool, error) {
	results := make([]domain.StockStatus, 0, len(requests))
	allAvailable := true

	for _, req := range requests {
		item, err := s.repo.Get(ctx, req.ItemID)
		if err != nil {
			if errors.Is(err, repository.ErrItemNotFound) {
				results = append(results, domain.StockStatus{
					ItemID:    req.ItemID,
					Available: false,
					Reason:    "Item not found",
				})
				allAvailable = false
				continue
			}
			return nil, false, err
		}

		available := item.Stock >= req.Quantity
		if !available {
			allAvailable = false
		}
		results = append(results, domain.StockStatus{
			ItemID:            req.ItemID,
			Available:         available,
			CurrentStock:      item.Stock,
			RequestedQuantity: req.Quantity,
		})
	}

	return results, allAvailable, nil
}
