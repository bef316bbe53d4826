package http

import (
	"context"
	"net/http"

	"github.com/MarharytaFilipovych/store-application/internal/ratelimit"
	"github.com/MarharytaFilipovych/store-application/internal/session"
)

const sessionCookieName = "session_id"

type contextKey string

const sessionContextKey contextKey = "session"

// SessionMiddleware resolves the session cookie and, when it points at a live
// session, attaches it to the request context. Requests without a valid
// session pass through untouched; RequireSession is the gate.
func SessionMiddleware(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err == nil {
				if s, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(context.WithValue(r.Context(), sessionContextKey, s))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFromContext(r.Context()) == nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFromContext(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(sessionContextKey).(*session.Session); ok {
		return s
	}
	return nil
}

// RateLimitMiddleware throttles authentication endpoints per client. The
// denial payload shape is part of the public contract.
func RateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.ShouldLimit(r.URL.Path) && !limiter.Admit(ratelimit.ClientID(r)) {
				respondJSON(w, http.StatusTooManyRequests, map[string]string{
					"message": "Too many attempts. Try later!!!",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
