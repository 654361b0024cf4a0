package generator

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/veritasos/ordem-backend/internal/httputil"
	"github.com/veritasos/ordem-backend/internal/middleware"
)

func (s *Service) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Theme      string `json:"theme"`
		TableToken string `json:"table_token"`
	}
	if err := httputil.DecodeJSON(w, r, &input); err != nil {
		httputil.WriteError(w, err)
		return
	}

	start := time.Now()
	res, err := s.Generate(r.Context(), input.Theme, input.TableToken)
	httputil.AddServerTiming(w, "generate", time.Since(start))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"npc":     res.NPC,
		"model":   res.Model,
	})
}

// SetupRoutes mounts under /generate-npc. A nil limiter disables rate
// limiting.
func SetupRoutes(s *Service, limiter *rate.Limiter) http.Handler {
	r := chi.NewRouter()
	r.With(middleware.RateLimit(limiter)).Post("/", s.GenerateHandler)
	return r
}
