package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/amaljyothis2003/AkasaEats/auth-service/internal/domain"
	"github.com/amaljyothis2003/AkasaEats/auth-service/internal/identity"
	"github.com/amaljyothis2003/AkasaEats/auth-service/internal/repository"
	"github.com/amaljyothis2003/AkasaEats/pkg/apperr"
)

// AuthService keeps the identity provider account and the profile document
// in step: registration writes both, deletion removes both.
type AuthService struct {
	repo repository.UserRepository
	ids  identity.Provider
	log  *zap.Logger
}

func NewAuthService(repo repository.UserRepository, ids identity.Provider, log *zap.Logger) *AuthService {
	return &AuthService{
		repo: repo,
		ids:  ids,
		log:  log,
	}
}

type RegisterResult struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	CustomToken string `json:"customToken"`
}

type UserSummary struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"emailVerified"`
}

type LoginResult struct {
	User        UserSummary `json:"user"`
	CustomToken string      `json:"customToken"`
	// The client signs in with the custom token and obtains its ID token
	// from the provider itself.
	IDToken string `json:"idToken"`
}

type UserDetail struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	Disabled      bool      `json:"disabled"`
}

type ProfileView struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ProfileUpdate echoes the account fields that were changed.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*RegisterResult, error) {
	acct, err := s.ids.CreateAccount(ctx, email, password, name)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		UID:   acct.UID,
		Name:  name,
		Email: email,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.ids.CustomToken(ctx, acct.UID)
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("uid", acct.UID))
	return &RegisterResult{
		UID:         acct.UID,
		Email:       acct.Email,
		Name:        name,
		CustomToken: token,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, email string) (*LoginResult, error) {
	acct, err := s.ids.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, err
	}

	user, err := s.repo.Get(ctx, acct.UID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("User data not found")
		}
		return nil, err
	}

	token, err := s.ids.CustomToken(ctx, acct.UID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User: UserSummary{
			UID:           acct.UID,
			Email:         acct.Email,
			Name:          user.Name,
			EmailVerified: acct.EmailVerified,
		},
		CustomToken: token,
		IDToken:     token,
	}, nil
}

func (s *AuthService) GetUser(ctx context.Context, uid string) (*UserDetail, error) {
	acct, err := s.ids.Account(ctx, uid)
	if err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}

	user, err := s.repo.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("User not found in database")
		}
		return nil, err
	}

	return &UserDetail{
		UID:           acct.UID,
		Email:         acct.Email,
		Name:          user.Name,
		EmailVerified: acct.EmailVerified,
		CreatedAt:     user.CreatedAt,
		Disabled:      acct.Disabled,
	}, nil
}

func (s *AuthService) Profile(ctx context.Context, uid string) (*ProfileView, error) {
	user, err := s.repo.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("User profile not found")
		}
		return nil, err
	}

	acct, err := s.ids.Account(ctx, uid)
	if err != nil {
		return nil, err
	}

	return &ProfileView{
		UID:           acct.UID,
		Email:         acct.Email,
		Name:          user.Name,
		EmailVerified: acct.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, uid, name, photoURL string) (*ProfileUpdate, error) {
	if name == "" && photoURL == "" {
		return nil, apperr.Invalid("Please provide at least one field to update (name or photoURL)")
	}

	updates := identity.AccountUpdates{}
	fields := map[string]any{}
	result := &ProfileUpdate{}
	if name != "" {
		updates.DisplayName = &name
		fields["name"] = name
		result.DisplayName = &name
	}
	if photoURL != "" {
		updates.PhotoURL = &photoURL
		fields["photoURL"] = photoURL
		result.PhotoURL = &photoURL
	}

	if err := s.ids.UpdateAccount(ctx, uid, updates); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, uid, fields); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteAccount removes the profile document before the provider account,
// so a half-finished delete leaves a usable account rather than an orphaned
// document.
func (s *AuthService) DeleteAccount(ctx context.Context, uid string) error {
	if err := s.repo.Delete(ctx, uid); err != nil {
		return err
	}
	if err := s.ids.DeleteAccount(ctx, uid); err != nil {
		return err
	}

	s.log.Info("user account deleted", zap.String("uid", uid))
	return nil
}

func (s *AuthService) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	if _, err := s.ids.AccountByEmail(ctx, email); err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			return "", apperr.NotFound("User not found")
		}
		return "", err
	}

	return s.ids.EmailVerificationLink(ctx, email)
}

func (s *AuthService) CustomToken(ctx context.Context, uid string) (string, error) {
	return s.ids.CustomToken(ctx, uid)
}

// Logout revokes every refresh token of the account, forcing re-authentication.
func (s *AuthService) Logout(ctx context.Context, uid string) error {
	return s.ids.RevokeRefreshTokens(ctx, uid)
}
