package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/kwm/internal/cardservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *cardservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *cardservice.Service) *Handler {
	return &Handler{svc: svc}
}

// urlParam returns a decoded path parameter. Deck names may arrive with
// encoded colons or slashes.
func urlParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListDecks handles GET /api/decks.
//
//	@Summary		List deck names
//	@Tags			decks
//	@Produce		json
//	@Success		200	{object}	DeckListResponse
//	@Security		BearerAuth
//	@Router			/decks [get]
func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.svc.ListDecks(r.Context())
	if err != nil {
		writeError(w, "list decks", err)
		return
	}
	if decks == nil {
		decks = []string{}
	}
	writeJSON(w, http.StatusOK, DeckListResponse{Decks: decks})
}

// ListFields handles GET /api/decks/{deck}/fields.
//
//	@Summary		List the field names used by a deck
//	@Tags			decks
//	@Produce		json
//	@Param			deck	path		string	true	"Deck name"
//	@Success		200		{object}	FieldListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{deck}/fields [get]
func (h *Handler) ListFields(w http.ResponseWriter, r *http.Request) {
	deck := urlParam(r, "deck")
	if deck == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("deck is required"))
		return
	}
	fields, err := h.svc.ListFields(r.Context(), deck)
	if err != nil {
		writeError(w, "list fields", err)
		return
	}
	writeJSON(w, http.StatusOK, FieldListResponse{Fields: fields})
}

// Settings handles GET /api/settings.
//
//	@Summary		Get the options the next update starts from
//	@Tags			manager
//	@Produce		json
//	@Success		200	{object}	SettingsResponse
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.Settings(r.Context())
	if err != nil {
		writeError(w, "load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// Update handles POST /api/update.
//
//	@Summary		Suspend and unsuspend sentence cards by known words
//	@Tags			manager
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UpdateRequest	false	"Options overriding the last-used settings"
//	@Param			dry_run	query		bool			false	"Compute the report without changing cards"
//	@Success		200		{object}	UpdateResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/update [post]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	dryRun := false
	if v := r.URL.Query().Get("dry_run"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("dry_run must be a boolean"))
			return
		}
		dryRun = b
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	changes, err := h.svc.Update(r.Context(), req.Overrides(), dryRun)
	if err != nil {
		writeError(w, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}

// Undo handles POST /api/undo/{token}.
//
//	@Summary		Revert the card changes of an update
//	@Tags			manager
//	@Param			token	path	string	true	"Change token returned by update"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/undo/{token} [post]
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if _, err := h.svc.Undo(r.Context(), token); err != nil {
		writeError(w, "undo", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sync handles POST /api/sync.
//
//	@Summary		Re-import the vault into the collection
//	@Tags			manager
//	@Produce		json
//	@Success		200	{object}	collection.SyncStats
//	@Security		BearerAuth
//	@Router			/sync [post]
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Sync(r.Context())
	if err != nil {
		writeError(w, "sync", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
