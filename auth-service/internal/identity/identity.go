// Package identity wraps the identity provider's account management API
// behind an interface the service layer can be tested against.
package identity

import (
	"context"
	"errors"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/amaljyothis2003/AkasaEats/pkg/apperr"
)

var ErrAccountNotFound = errors.New("account not found")

// Account is the provider-side view of a user.
type Account struct {
	UID           string
	Email         string
	DisplayName   string
	EmailVerified bool
	Disabled      bool
}

// AccountUpdates lists the mutable account fields. Nil means leave unchanged.
type AccountUpdates struct {
	DisplayName *string
	PhotoURL    *string
}

type Provider interface {
	CreateAccount(ctx context.Context, email, password, name string) (*Account, error)
	Account(ctx context.Context, uid string) (*Account, error)
	AccountByEmail(ctx context.Context, email string) (*Account, error)
	UpdateAccount(ctx context.Context, uid string, updates AccountUpdates) error
	DeleteAccount(ctx context.Context, uid string) error
	// CustomToken mints a token the client exchanges for an ID token.
	CustomToken(ctx context.Context, uid string) (string, error)
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	// RevokeRefreshTokens invalidates every session of the account.
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type firebaseProvider struct {
	client *fbauth.Client
}

func NewFirebaseProvider(client *fbauth.Client) Provider {
	return &firebaseProvider{client: client}
}

func (p *firebaseProvider) CreateAccount(ctx context.Context, email, password, name string) (*Account, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(name)

	rec, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return nil, apperr.Invalid("Email already in use")
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return accountFrom(rec), nil
}

func (p *firebaseProvider) Account(ctx context.Context, uid string) (*Account, error) {
	rec, err := p.client.GetUser(ctx, uid)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return accountFrom(rec), nil
}

func (p *firebaseProvider) AccountByEmail(ctx context.Context, email string) (*Account, error) {
	rec, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return accountFrom(rec), nil
}

func (p *firebaseProvider) UpdateAccount(ctx context.Context, uid string, updates AccountUpdates) error {
	params := &fbauth.UserToUpdate{}
	if updates.DisplayName != nil {
		params = params.DisplayName(*updates.DisplayName)
	}
	if updates.PhotoURL != nil {
		params = params.PhotoURL(*updates.PhotoURL)
	}

	if _, err := p.client.UpdateUser(ctx, uid, params); err != nil {
		if fbauth.IsUserNotFound(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (p *firebaseProvider) DeleteAccount(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil {
		if fbauth.IsUserNotFound(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (p *firebaseProvider) CustomToken(ctx context.Context, uid string) (string, error) {
	token, err := p.client.CustomToken(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("failed to mint custom token: %w", err)
	}
	return token, nil
}

func (p *firebaseProvider) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	link, err := p.client.EmailVerificationLink(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification link: %w", err)
	}
	return link, nil
}

func (p *firebaseProvider) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := p.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

func accountFrom(rec *fbauth.UserRecord) *Account {
	return &Account{
		UID:           rec.UID,
		Email:         rec.Email,
		DisplayName:   rec.DisplayName,
		EmailVerified: rec.EmailVerified,
		Disabled:      rec.Disabled,
	}
}
