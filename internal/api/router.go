package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/kwm/internal/cardservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *cardservice.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/decks", h.ListDecks)
	r.Get("/decks/{deck}/fields", h.ListFields)

	r.Get("/settings", h.Settings)
	r.Post("/update", h.Update)
	r.Post("/undo/{token}", h.Undo)

	r.Post("/sync", h.Sync)

	return r
}
