package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/amaljyothis2003/AkasaEats/inventory-service/internal/domain"
)

const itemsCollection = "items"

type firestoreRepository struct {
	items *firestore.CollectionRef
}

func NewFirestoreRepository(client *firestore.Client) ItemRepository {
	return &firestoreRepository{
		items: client.Collection(itemsCollection),
	}
}

func (r *firestoreRepository) List(ctx context.Context, filter ListFilter) ([]domain.Item, error) {
	q := r.items.Query
	if filter.Category != "" {
		q = q.Where("category", "==", filter.Category)
	}
	if filter.InStock {
		q = q.Where("stock", ">", 0)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var items []domain.Item
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list items: %w", err)
		}

		var item domain.Item
		if err := snap.DataTo(&item); err != nil {
			return nil, fmt.Errorf("failed to decode item %s: %w", snap.Ref.ID, err)
		}
		item.ID = snap.Ref.ID
		items = append(items, item)
	}
	return items, nil
}

func (r *firestoreRepository) Get(ctx context.Context, id string) (*domain.Item, error) {
	snap, err := r.items.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	var item domain.Item
	if err := snap.DataTo(&item); err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}
	item.ID = snap.Ref.ID
	return &item, nil
}

func (r *firestoreRepository) Create(ctx context.Context, item *domain.Item) (string, error) {
	ref, _, err := r.items.Add(ctx, item)
	if err != nil {
		return "", fmt.Errorf("failed to create item: %w", err)
	}
	return ref.ID, nil
}

func (r *firestoreRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields)+1)
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})

	if _, err := r.items.Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

func (r *firestoreRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.items.Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}
