package http

import (
	"net/http"

	"github.com/MarharytaFilipovych/store-application/internal/cart"
	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/MarharytaFilipovych/store-application/internal/order"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orders *order.Service
	engine *cart.Engine
}

func NewOrderHandler(orderService *order.Service, engine *cart.Engine) *OrderHandler {
	return &OrderHandler{orders: orderService, engine: engine}
}

type OrderPageDTO struct {
	Orders []*domain.Order `json:"orders"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	o, err := h.orders.CreateOrder(r.Context(), sess.Cart, sess.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// The reservation now belongs to the order; the cart starts fresh.
	h.engine.Clear(sess.Cart)

	respondJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	o, err := h.orders.GetOrderByID(r.Context(), id, sess.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	if err := h.orders.CancelOrder(r.Context(), id, sess.UserID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	limit, offset := pageParams(r)

	orders, total, err := h.orders.ListUserOrders(r.Context(), sess.UserID, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, OrderPageDTO{Orders: orders, Total: total, Limit: limit, Offset: offset})
}
