package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/amaljyothis2003/AkasaEats/cart-service/internal/service"
	"github.com/amaljyothis2003/AkasaEats/pkg/apperr"
	"github.com/amaljyothis2003/AkasaEats/pkg/authn"
	"github.com/amaljyothis2003/AkasaEats/pkg/web"
)

// CartService is what the handler needs from the service layer.
type CartService interface {
	GetCart(ctx context.Context, userID, token string) (*service.CartView, error)
	AddItem(ctx context.Context, userID, itemID string, quantity int, token string) (*service.AddResult, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int, token string) (*service.UpdateResult, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*service.RemoveResult, error)
	ClearCart(ctx context.Context, userID string) error
	ValidateCart(ctx context.Context, userID, token string) (*service.ValidationView, error)
}

type CartHandler struct {
	svc CartService
	log *zap.Logger
}

func NewCartHandler(svc CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{svc: svc, log: log}
}

// Routes mounts the cart endpoints. The caller wraps them in the auth middleware.
func (h *CartHandler) Routes(r chi.Router) {
	r.Get("/", h.GetCart)
	r.Post("/", h.AddItem)
	r.Get("/validate", h.ValidateCart)
	r.Put("/{itemId}", h.UpdateQuantity)
	r.Delete("/{itemId}", h.RemoveItem)
	r.Delete("/", h.ClearCart)
}

type addItemRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type updateQuantityRequest struct {
	// Pointer distinguishes an absent quantity from an explicit zero.
	Quantity *int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.FromContext(r.Context())
	if !ok {
		web.RespondError(w, h.log, apperr.Unauthorized("Unauthorized. No token provided."))
		return
	}

	view, err := h.svc.GetCart(r.Context(), id.UID, authn.RawToken(r.Context()))
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	body := web.OK("").WithData(view)
	if len(view.Warnings) > 0 {
		body = body.With("warnings", view.Warnings)
	}
	web.RespondJSON(w, http.StatusOK, body)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.FromContext(r.Context())
	if !ok {
		web.RespondError(w, h.log, apperr.Unauthorized("Unauthorized. No token provided."))
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.RespondError(w, h.log, apperr.Invalid("Invalid JSON body"))
		return
	}
	if req.ItemID == "" || req.Quantity == 0 {
		web.RespondError(w, h.log, apperr.Invalid("Please provide itemId and quantity"))
		return
	}

	result, err := h.svc.AddItem(r.Context(), id.UID, req.ItemID, req.Quantity, authn.RawToken(r.Context()))
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("Item added to cart").WithData(result))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.FromContext(r.Context())
	if !ok {
		web.RespondError(w, h.log, apperr.Unauthorized("Unauthorized. No token provided."))
		return
	}
	itemID := chi.URLParam(r, "itemId")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.RespondError(w, h.log, apperr.Invalid("Invalid JSON body"))
		return
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		web.RespondError(w, h.log, apperr.Invalid("Quantity must be a non-negative number"))
		return
	}

	// Quantity zero removes the line.
	if *req.Quantity == 0 {
		h.removeItem(w, r, id.UID, itemID)
		return
	}

	result, err := h.svc.UpdateQuantity(r.Context(), id.UID, itemID, *req.Quantity, authn.RawToken(r.Context()))
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("Cart updated").WithData(result))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.FromContext(r.Context())
	if !ok {
		web.RespondError(w, h.log, apperr.Unauthorized("Unauthorized. No token provided."))
		return
	}
	h.removeItem(w, r, id.UID, chi.URLParam(r, "itemId"))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request, userID, itemID string) {
	result, err := h.svc.RemoveItem(r.Context(), userID, itemID)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.RespondJSON(w, http.StatusOK, web.OK("Item removed from cart").WithData(result))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.FromContext(r.Context())
	if !ok {
		web.RespondError(w, h.log, apperr.Unauthorized("Unauthorized. No token provided."))
		return
	}

	if err := h.svc.ClearCart(r.Context(), id.UID); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.RespondJSON(w, http.StatusOK, web.OK("Cart cleared"))
}

func (h *CartHandler) ValidateCart(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.FromContext(r.Context())
	if !ok {
		web.RespondError(w, h.log, apperr.Unauthorized("Unauthorized. No token provided."))
		return
	}

	view, err := h.svc.ValidateCart(r.Context(), id.UID, authn.RawToken(r.Context()))
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("Cart is valid and ready for checkout").WithData(view))
}
