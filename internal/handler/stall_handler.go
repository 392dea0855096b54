package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/stall"
)

// StallHandler serves the public browsing surface: stalls, menus,
// categories and search. No authentication required.
type StallHandler struct {
	stalls stall.Service
}

func NewStallHandler(stalls stall.Service) *StallHandler {
	return &StallHandler{stalls: stalls}
}

func (h *StallHandler) RegisterRoutes(router chi.Router) {
	router.Get("/stalls", h.handleListStalls)
	router.Get("/stalls/{id}", h.handleGetStall)
	router.Get("/stalls/{id}/categories", h.handleListCategories)
	router.Get("/menu-items", h.handleListMenuItems)
	router.Get("/menu-items/{id}", h.handleGetMenuItem)
	router.Get("/search", h.handleSearch)
}

func (h *StallHandler) handleListStalls(w http.ResponseWriter, r *http.Request) {
	stalls, err := h.stalls.ListStalls(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list stalls via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list stalls")
		return
	}

	respondWithJSON(w, http.StatusOK, stalls)
}

func (h *StallHandler) handleGetStall(w http.ResponseWriter, r *http.Request) {
	stallID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	st, err := h.stalls.GetStall(r.Context(), stallID)
	if err != nil {
		log.Error().Err(err).Stringer("stall_id", stallID).Msg("Failed to get stall via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get stall")
		return
	}

	respondWithJSON(w, http.StatusOK, st)
}

func (h *StallHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	stallID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	categories, err := h.stalls.ListCategories(r.Context(), stallID)
	if err != nil {
		log.Error().Err(err).Stringer("stall_id", stallID).Msg("Failed to list categories via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list categories")
		return
	}

	respondWithJSON(w, http.StatusOK, categories)
}

func (h *StallHandler) handleListMenuItems(w http.ResponseWriter, r *http.Request) {
	var stallID *uuid.UUID
	if raw := r.URL.Query().Get("stall_id"); raw != "" {
		id, ok := parseUUIDParam(w, "stall_id", raw)
		if !ok {
			return
		}
		stallID = &id
	}
	category := r.URL.Query().Get("category")

	items, err := h.stalls.ListMenuItems(r.Context(), stallID, category)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list menu items via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list menu items")
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

func (h *StallHandler) handleGetMenuItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	item, err := h.stalls.GetMenuItem(r.Context(), itemID)
	if err != nil {
		log.Error().Err(err).Stringer("menu_item_id", itemID).Msg("Failed to get menu item via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get menu item")
		return
	}

	respondWithJSON(w, http.StatusOK, item)
}

func (h *StallHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	var stallID *uuid.UUID
	if raw := r.URL.Query().Get("stall_id"); raw != "" {
		id, ok := parseUUIDParam(w, "stall_id", raw)
		if !ok {
			return
		}
		stallID = &id
	}

	result, err := h.stalls.Search(r.Context(), query, stallID)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Failed to search via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to search")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
