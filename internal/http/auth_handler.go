package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MarharytaFilipovych/store-application/internal/auth"
	"github.com/google/uuid"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

type RegisterRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequestDTO struct {
	Email string `json:"email"`
}

type ResetPasswordRequestDTO struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func validCredentials(email, password string) (string, bool) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", false
	}
	if password == "" {
		return "", false
	}
	return email, true
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	email, ok := validCredentials(req.Email, req.Password)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_credentials_format", "email must be valid and password non-empty")
		return
	}

	user, err := h.auth.Register(r.Context(), email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess, err := h.auth.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	setSessionCookie(w, sess.ID)
	respondJSON(w, http.StatusOK, map[string]string{
		"session_id": sess.ID,
		"user_id":    sess.UserID.String(),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		h.auth.Logout(r.Context(), cookie.Value)
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	code, err := h.auth.ForgotPassword(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// No mail delivery here; the code comes back in the response so the
	// client can relay it.
	respondJSON(w, http.StatusOK, map[string]string{"code": code.String()})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	code, err := uuid.Parse(req.Code)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_reset_code", "code must be a UUID")
		return
	}
	if req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "invalid_credentials_format", "password must be non-empty")
		return
	}

	if err := h.auth.ResetPassword(r.Context(), strings.TrimSpace(req.Email), code, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
