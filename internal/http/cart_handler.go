package http

import (
	"encoding/json"
	"net/http"

	"github.com/MarharytaFilipovych/store-application/internal/cart"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxCartQuantity = 1000

type CartHandler struct {
	engine *cart.Engine
}

func NewCartHandler(engine *cart.Engine) *CartHandler {
	return &CartHandler{engine: engine}
}

type CartItemRequestDTO struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

func (req *CartItemRequestDTO) validate(w http.ResponseWriter) (uuid.UUID, bool) {
	id, err := uuid.Parse(req.ItemID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must be a UUID")
		return uuid.Nil, false
	}
	if req.Quantity < 1 || req.Quantity > maxCartQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 1000")
		return uuid.Nil, false
	}
	return id, true
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	view, err := h.engine.View(r.Context(), sess.Cart)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	var req CartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	itemID, ok := req.validate(w)
	if !ok {
		return
	}

	if err := h.engine.AddItem(r.Context(), sess.Cart, itemID, req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}

	view, err := h.engine.View(r.Context(), sess.Cart)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (h *CartHandler) ModifyItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	var req CartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	itemID, ok := req.validate(w)
	if !ok {
		return
	}

	if err := h.engine.ModifyItem(r.Context(), sess.Cart, itemID, req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}

	view, err := h.engine.View(r.Context(), sess.Cart)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a UUID")
		return
	}

	if err := h.engine.RemoveItem(r.Context(), sess.Cart, itemID); err != nil {
		handleServiceError(w, err)
		return
	}

	view, err := h.engine.View(r.Context(), sess.Cart)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
