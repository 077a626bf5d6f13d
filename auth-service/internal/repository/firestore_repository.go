package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/amaljyothis2003/AkasaEats/auth-service/internal/domain"
)

const usersCollection = "users"

type firestoreRepository struct {
	users *firestore.CollectionRef
}

// NewFirestoreRepository stores user profiles in the "users" collection,
// one document per account keyed by uid.
func NewFirestoreRepository(client *firestore.Client) UserRepository {
	return &firestoreRepository{
		users: client.Collection(usersCollection),
	}
}

func (r *firestoreRepository) Get(ctx context.Context, uid string) (*domain.User, error) {
	snap, err := r.users.Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user domain.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	user.UID = uid
	return &user, nil
}

func (r *firestoreRepository) Create(ctx context.Context, user *domain.User) error {
	if _, err := r.users.Doc(user.UID).Set(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *firestoreRepository) Update(ctx context.Context, uid string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields)+1)
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})

	if _, err := r.users.Doc(uid).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *firestoreRepository) Delete(ctx context.Context, uid string) error {
	if _, err := r.users.Doc(uid).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
