package middleware

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/veritasos/ordem-backend/internal/apperr"
	"github.com/veritasos/ordem-backend/internal/httputil"
	"github.com/veritasos/ordem-backend/internal/utils"
)

// SessionCookieName is read when no Authorization header is sent.
const SessionCookieName = "veritas_session"

type SessionFetcher interface {
	FindSessionByToken(token string) (utils.SessionData, error)
}

// SessionMiddleware resolves a bearer session token (Authorization header or
// session cookie) and injects the user id into the request context.
func SessionMiddleware(fetcher SessionFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httputil.WriteError(w, apperr.Unauthorized("Missing session token"))
				return
			}

			session, err := fetcher.FindSessionByToken(token)
			if err != nil {
				httputil.WriteError(w, apperr.Unauthorized("Couldn't find session"))
				return
			}

			if session.ExpiresAt.Before(time.Now()) {
				httputil.WriteError(w, apperr.Unauthorized("Session expired"))
				return
			}

			session.Token = token
			next.ServeHTTP(w, r.WithContext(utils.WithSession(r.Context(), session)))
		})
	}
}

// bearerToken prefers an Authorization Bearer token and otherwise falls back
// to the session cookie, so other Authorization schemes don't mask it.
func bearerToken(r *http.Request) string {
	if rest, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		if token := strings.TrimSpace(rest); token != "" {
			return token
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// CORSMiddleware echoes the request origin back only when it is on the
// allow-list.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods",
					"GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers",
					"Content-Type, Authorization")
			}

			w.Header().Set("Access-Control-Expose-Headers", "Server-Timing, Retry-After")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit rejects requests with 429 once limiter runs out of tokens. A nil
// limiter disables limiting.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				w.Header().Set("Retry-After", "60")
				httputil.WriteError(w, apperr.RateLimited("Too many requests, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PerMinute builds a limiter allowing n requests per minute with a burst of n.
// n <= 0 returns nil (unlimited).
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}
