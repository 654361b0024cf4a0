// Package server assembles the HTTP surface.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/veritasos/ordem-backend/internal/auth"
	"github.com/veritasos/ordem-backend/internal/campaign"
	"github.com/veritasos/ordem-backend/internal/dice"
	"github.com/veritasos/ordem-backend/internal/generator"
	"github.com/veritasos/ordem-backend/internal/middleware"
)

type Deps struct {
	AllowedOrigins  []string
	SessionTTL      time.Duration
	Generator       *generator.Service
	GenerateLimiter *rate.Limiter
}

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(d.AllowedOrigins))

	r.Get("/", RootHandler)

	r.Mount("/users", auth.SetupUserRoutes())
	r.Mount("/auth", auth.SetupRoutes(d.SessionTTL))
	r.Mount("/tables", campaign.SetupTableRoutes())
	r.Mount("/characters", campaign.SetupCharacterRoutes())
	r.Mount("/npcs", campaign.SetupNPCRoutes())
	r.Mount("/notes", campaign.SetupNoteRoutes())
	r.Mount("/generate-npc", generator.SetupRoutes(d.Generator, d.GenerateLimiter))
	r.Mount("/dice", dice.SetupRoutes())

	return r
}
