package http

import (
	"net/http"
	"strconv"

	"github.com/MarharytaFilipovych/store-application/internal/catalog"
	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ItemHandler struct {
	catalog *catalog.Service
}

func NewItemHandler(catalogService *catalog.Service) *ItemHandler {
	return &ItemHandler{catalog: catalogService}
}

type ItemPageDTO struct {
	Items  []*domain.Item `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func pageParams(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	items, total, err := h.catalog.ListItems(r.Context(), limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if items == nil {
		items = []*domain.Item{}
	}
	respondJSON(w, http.StatusOK, ItemPageDTO{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a UUID")
		return
	}

	item, err := h.catalog.GetItem(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}
