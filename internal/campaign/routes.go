package campaign

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupTableRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", CreateTableHandler)
	r.Get("/", GetTableHandler)
	return r
}

func SetupCharacterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", CreateCharacterHandler)
	r.Get("/", GetCharacterHandler)
	return r
}

func SetupNPCRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", CreateNPCHandler)
	r.Get("/", ListNPCsHandler)
	return r
}

func SetupNoteRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", CreateNoteHandler)
	r.Get("/", ListNotesHandler)
	return r
}
