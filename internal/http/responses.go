package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MarharytaFilipovych/store-application/internal/auth"
	"github.com/MarharytaFilipovych/store-application/internal/cart"
	"github.com/MarharytaFilipovych/store-application/internal/order"
	"github.com/MarharytaFilipovych/store-application/internal/store"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500 and gets logged, never echoed to the client.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, store.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, store.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, cart.ErrItemNotInCart):
		respondError(w, http.StatusNotFound, "item_not_in_cart", err.Error())
	case errors.Is(err, store.ErrInsufficientStock):
		respondError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, cart.ErrItemAlreadyInCart):
		respondError(w, http.StatusBadRequest, "item_already_in_cart", err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, order.ErrAlreadyCancelled):
		respondError(w, http.StatusConflict, "order_already_cancelled", err.Error())
	case errors.Is(err, order.ErrAccessDenied):
		respondError(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, auth.ErrUserAlreadyExists):
		respondError(w, http.StatusConflict, "user_already_exists", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, auth.ErrInvalidResetCode):
		respondError(w, http.StatusBadRequest, "invalid_reset_code", err.Error())
	default:
		log.WithError(err).Error("unhandled service error")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
