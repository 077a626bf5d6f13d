package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/amaljyothis2003/AkasaEats/inventory-service/internal/domain"
	"github.com/amaljyothis2003/AkasaEats/inventory-service/internal/service"
	"github.com/amaljyothis2003/AkasaEats/pkg/apperr"
	"github.com/amaljyothis2003/AkasaEats/pkg/web"
)

// maxImageSize caps uploaded item images at 5MB.
const maxImageSize = 5 << 20

// ItemService is what the handler needs from the service layer.
type ItemService interface {
	ListItems(ctx context.Context, category, search string, inStock bool) ([]domain.Item, error)
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	Categories(ctx context.Context) ([]string, error)
	ItemsByCategory(ctx context.Context, category string) ([]domain.Item, error)
	CreateItem(ctx context.Context, input service.CreateItemInput, image *service.ImageUpload) (*domain.Item, error)
	UpdateItem(ctx context.Context, id string, input service.UpdateItemInput, image *service.ImageUpload) (*domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
	UpdateStock(ctx context.Context, id string, stock int) (*domain.Item, error)
	CheckStock(ctx context.Context, requests []domain.StockRequest) ([]domain.StockStatus, bool, error)
}

type ItemHandler struct {
	svc ItemService
	log *zap.Logger
}

func NewItemHandler(svc ItemService, log *zap.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, log: log}
}

// Routes mounts the item endpoints. The caller wraps them in the auth middleware.
func (h *ItemHandler) Routes(r chi.Router) {
	r.Get("/", h.ListItems)
	r.Get("/categories", h.Categories)
	r.Get("/category/{category}", h.ItemsByCategory)
	r.Post("/check-stock", h.CheckStock)
	r.Get("/{id}", h.GetItem)
	r.Post("/", h.CreateItem)
	r.Put("/{id}", h.UpdateItem)
	r.Delete("/{id}", h.DeleteItem)
	r.Patch("/{id}/stock", h.UpdateStock)
}

// itemForm is the write payload for create and update. Pointers distinguish
// absent fields from zero values; it fills from JSON or multipart form data.
type itemForm struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
	Unit        *string  `json:"unit"`
	Available   *bool    `json:"available"`
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.ListItems(r.Context(), q.Get("category"), q.Get("search"), q.Get("inStock") == "true")
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	if items == nil {
		items = []domain.Item{}
	}

	web.RespondJSON(w, http.StatusOK, web.OK("").With("count", len(items)).WithData(items))
}

func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("").WithData(item))
}

func (h *ItemHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}

	web.RespondJSON(w, http.StatusOK, web.OK("").WithData(categories))
}

func (h *ItemHandler) ItemsByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	items, err := h.svc.ItemsByCategory(r.Context(), category)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	if items == nil {
		items = []domain.Item{}
	}

	web.RespondJSON(w, http.StatusOK, web.OK("").
		With("category", category).
		With("count", len(items)).
		WithData(items))
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	form, image, err := h.parseItemPayload(w, r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	if form.Name == nil || form.Price == nil || form.Category == nil || form.Stock == nil {
		web.RespondError(w, h.log, apperr.Invalid("Please provide name, price, category, and stock"))
		return
	}

	input := service.CreateItemInput{
		Name:     *form.Name,
		Price:    *form.Price,
		Category: *form.Category,
		Stock:    *form.Stock,
	}
	if form.Description != nil {
		input.Description = *form.Description
	}
	if form.Unit != nil {
		input.Unit = *form.Unit
	}

	item, err := h.svc.CreateItem(r.Context(), input, image)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusCreated, web.OK("Item created successfully").WithData(item))
}

func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	form, image, err := h.parseItemPayload(w, r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	input := service.UpdateItemInput{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Category:    form.Category,
		Stock:       form.Stock,
		Unit:        form.Unit,
		Available:   form.Available,
	}

	item, err := h.svc.UpdateItem(r.Context(), chi.URLParam(r, "id"), input, image)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("Item updated successfully").WithData(item))
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("Item deleted successfully"))
}

func (h *ItemHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stock *int `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stock == nil {
		web.RespondError(w, h.log, apperr.Invalid("Stock must be a non-negative number"))
		return
	}

	item, err := h.svc.UpdateStock(r.Context(), chi.URLParam(r, "id"), *req.Stock)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("Stock updated successfully").WithData(item))
}

func (h *ItemHandler) CheckStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []domain.StockRequest `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Items == nil {
		web.RespondError(w, h.log, apperr.Invalid("Please provide items array"))
		return
	}

	results, allAvailable, err := h.svc.CheckStock(r.Context(), req.Items)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, web.OK("").
		With("allAvailable", allAvailable).
		WithData(results))
}

// parseItemPayload decodes the write payload from either a JSON body or a
// multipart form carrying an optional "image" file.
func (h *ItemHandler) parseItemPayload(w http.ResponseWriter, r *http.Request) (*itemForm, *service.ImageUpload, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var form itemForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			return nil, nil, apperr.Invalid("Invalid request body")
		}
		return &form, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+(1<<20))
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return nil, nil, apperr.Invalid("Image must be smaller than 5MB")
	}

	form := &itemForm{}
	if v := r.FormValue("name"); v != "" {
		form.Name = &v
	}
	if _, ok := r.MultipartForm.Value["description"]; ok {
		v := r.FormValue("description")
		form.Description = &v
	}
	if v := r.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, apperr.Invalid("Price must be a number")
		}
		form.Price = &price
	}
	if v := r.FormValue("category"); v != "" {
		form.Category = &v
	}
	if v := r.FormValue("stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, apperr.Invalid("Stock must be a number")
		}
		form.Stock = &stock
	}
	if v := r.FormValue("unit"); v != "" {
		form.Unit = &v
	}
	if v := r.FormValue("available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			return nil, nil, apperr.Invalid("Available must be true or false")
		}
		form.Available = &available
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return form, nil, nil
		}
		return nil, nil, apperr.Invalid("Invalid image upload")
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, nil, apperr.Invalid("Only image files are allowed")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}

	return form, &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
