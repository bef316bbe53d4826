package http

import (
	"net/http"
	"time"

	"github.com/MarharytaFilipovych/store-application/internal/ratelimit"
	"github.com/MarharytaFilipovych/store-application/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the whole API under /store.
func NewRouter(
	authHandler *AuthHandler,
	itemHandler *ItemHandler,
	cartHandler *CartHandler,
	orderHandler *OrderHandler,
	sessions *session.Manager,
	limiter *ratelimit.Limiter,
	requestTimeout time.Duration,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(RateLimitMiddleware(limiter))
	r.Use(SessionMiddleware(sessions))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/store", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		r.Get("/items", itemHandler.ListItems)
		r.Get("/items/{id}", itemHandler.GetItem)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession)

			r.Get("/cart", cartHandler.GetCart)
			r.Post("/cart-items", cartHandler.AddItem)
			r.Put("/cart-items", cartHandler.ModifyItem)
			r.Delete("/cart-items/{id}", cartHandler.RemoveItem)

			r.Post("/orders", orderHandler.CreateOrder)
			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{id}", orderHandler.GetOrder)
			r.Delete("/orders/{id}", orderHandler.CancelOrder)
		})
	})

	return r
}
