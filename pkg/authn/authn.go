// Package authn verifies identity-provider bearer tokens and exposes the
// authenticated caller to handlers through the request context.
package authn

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	"github.com/amaljyothis2003/AkasaEats/pkg/apperr"
	"github.com/amaljyothis2003/AkasaEats/pkg/web"
)

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
}

// Verifier checks a raw ID token. Implemented by the Firebase adapter below;
// tests substitute their own.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

type firebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier wraps an explicitly constructed Firebase Auth client.
func NewFirebaseVerifier(client *fbauth.Client) Verifier {
	return &firebaseVerifier{client: client}
}

func (v *firebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		if fbauth.IsIDTokenExpired(err) {
			return nil, apperr.Unauthorized("Token expired. Please login again.")
		}
		return nil, apperr.Unauthorized("Unauthorized. Invalid token.")
	}

	id := &Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok {
		id.EmailVerified = verified
	}
	return id, nil
}

type ctxKey int

const (
	ctxKeyIdentity ctxKey = iota
	ctxKeyRawToken
)

// Middleware rejects requests without a valid bearer token and stores the
// Identity plus the raw token (forwarded to collaborators) in the context.
func Middleware(verifier Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				web.RespondError(w, log, apperr.Unauthorized("Unauthorized. No token provided."))
				return
			}

			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if raw == "" {
				web.RespondError(w, log, apperr.Unauthorized("Unauthorized. Invalid token format."))
				return
			}

			identity, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				web.RespondError(w, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity, raw)))
		})
	}
}

// WithIdentity returns a context carrying the caller, as Middleware sets it.
func WithIdentity(ctx context.Context, id *Identity, rawToken string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyIdentity, id)
	return context.WithValue(ctx, ctxKeyRawToken, rawToken)
}

// FromContext returns the verified caller, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(*Identity)
	return id, ok
}

// RawToken returns the bearer token the caller presented.
func RawToken(ctx context.Context) string {
	raw, _ := ctx.Value(ctxKeyRawToken).(string)
	return raw
}
