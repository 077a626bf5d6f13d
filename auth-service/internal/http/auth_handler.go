package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/amaljyothis2003/AkasaEats/auth-service/internal/service"
	"github.com/amaljyothis2003/AkasaEats/pkg/apperr"
	"github.com/amaljyothis2003/AkasaEats/pkg/authn"
	"github.com/amaljyothis2003/AkasaEats/pkg/web"
)

// AuthService is what the handler needs from the service layer.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*service.RegisterResult, error)
	Login(ctx context.Context, email string) (*service.LoginResult, error)
	GetUser(ctx context.Context, uid string) (*service.UserDetail, error)
	Profile(ctx context.Context, uid string) (*service.ProfileView, error)
	UpdateProfile(ctx context.Context, uid, name, photoURL string) (*service.ProfileUpdate, error)
	DeleteAccount(ctx context.Context, uid string) error
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	CustomToken(ctx context.Context, uid string) (string, error)
	Logout(ctx context.Context, uid string) error
}

type AuthHandler struct {
	svc      AuthService
	validate *validator.Validate
	log      *zap.Logger
}

func NewAuthHandler(svc AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		svc:      svc,
		validate: validator.New(),
		log:      log,
	}
}

// Routes mounts the auth endpoints. requireAuth guards the session-bound ones;
// register, login and the token helpers stay public.
func (h *AuthHandler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/user/{uid}", h.GetUser)
	r.Post("/verify-email", h.VerifyEmail)
	r.Post("/custom-token", h.CustomToken)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/profile", h.Profile)
		r.Put("/profile", h.UpdateProfile)
		r.Delete("/user", h.DeleteAccount)
		r.Post("/logout", h.Logout)
	})
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.RespondError(w, h.log, apperr.Invalid("Please provide email, password, and name"))
		return
	}
	if err := h.validateRegister(req); err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	result, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusCreated, web.OK("User registered successfully").WithData(result))
}

func (h *AuthHandler) validateRegister(req registerRequest) error {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch {
			case fe.Tag() == "required":
				return apperr.Invalid("Please provide email, password, and name")
			case fe.Field() == "Password" && fe.Tag() == "min":
				return apperr.Invalid("Password must be at least 6 characters")
			case fe.Field() == "Email" && fe.Tag() == "email":
				return apperr.Invalid("Invalid email address")
			}
		}
	}
	return apperr.Invalid("Validation error")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		web.RespondError(w, h.log, apperr.Invalid("Please provide email and password"))
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("Login successful").WithData(result))
}

func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if uid == "" {
		web.RespondError(w, h.log, apperr.Invalid("User ID is required"))
		return
	}

	detail, err := h.svc.GetUser(r.Context(), uid)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("").WithData(detail))
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.FromContext(r.Context())
	if !ok {
		web.RespondError(w, h.log, apperr.Unauthorized("Unauthorized. No token provided."))
		return
	}

	profile, err := h.svc.Profile(r.Context(), id.UID)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("").WithData(profile))
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.FromContext(r.Context())
	if !ok {
		web.RespondError(w, h.log, apperr.Unauthorized("Unauthorized. No token provided."))
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.RespondError(w, h.log, apperr.Invalid("Please provide at least one field to update (name or photoURL)"))
		return
	}

	updated, err := h.svc.UpdateProfile(r.Context(), id.UID, req.Name, req.PhotoURL)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("Profile updated successfully").WithData(updated))
}

func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.FromContext(r.Context())
	if !ok {
		web.RespondError(w, h.log, apperr.Unauthorized("Unauthorized. No token provided."))
		return
	}

	if err := h.svc.DeleteAccount(r.Context(), id.UID); err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("User account deleted successfully"))
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		web.RespondError(w, h.log, apperr.Invalid("Email is required"))
		return
	}

	link, err := h.svc.EmailVerificationLink(r.Context(), req.Email)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("Email verification link generated").WithData(web.Envelope{
		"verificationLink": link,
	}))
}

func (h *AuthHandler) CustomToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UID == "" {
		web.RespondError(w, h.log, apperr.Invalid("User ID is required"))
		return
	}

	token, err := h.svc.CustomToken(r.Context(), req.UID)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("Custom token created").WithData(web.Envelope{
		"customToken": token,
	}))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.FromContext(r.Context())
	if !ok {
		web.RespondError(w, h.log, apperr.Unauthorized("Unauthorized. No token provided."))
		return
	}

	if err := h.svc.Logout(r.Context(), id.UID); err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("All refresh tokens revoked. User logged out."))
}
