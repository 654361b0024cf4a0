package dice

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/veritasos/ordem-backend/internal/apperr"
	"github.com/veritasos/ordem-backend/internal/httputil"
)

type rollResponse struct {
	Success bool `json:"success"`
	Score   int  `json:"score"`
	Result
}

// RollHandler answers GET /dice/roll?score=N.
func RollHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("score")
	if raw == "" {
		httputil.WriteError(w, apperr.Validation("score is required"))
		return
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		httputil.WriteError(w, apperr.Validation("score must be an integer"))
		return
	}
	if score > MaxDice {
		httputil.WriteError(w, apperr.Validation("score must be at most "+strconv.Itoa(MaxDice)))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, rollResponse{
		Success: true,
		Score:   score,
		Result:  RollAttribute(score),
	})
}

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Get("/roll", RollHandler)
	return r
}
