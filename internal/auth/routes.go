package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veritasos/ordem-backend/internal/middleware"
)

// SetupRoutes mounts under /auth.
func SetupRoutes(sessionTTL time.Duration) http.Handler {
	r := chi.NewRouter()
	sessionFetcher := SessionInfo{}

	r.Post("/login", LoginHandler(sessionTTL))

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Post("/logout", LogoutHandler)
		r.Get("/me", MeHandler)
	})

	return r
}

// SetupUserRoutes mounts under /users.
func SetupUserRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", RegisterHandler)
	r.Get("/", GetUserHandler)
	return r
}
