package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/auth"
	"github.com/ppum-cafe/foodcourt/internal/cart"
)

type AddCartItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required,uuid4"`
}

type SetCartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// CartResponse carries the cart lines together with the recomputed totals,
// so the client never sums prices itself.
type CartResponse struct {
	Lines     []cart.Line       `json:"items"`
	Totals    cart.Totals       `json:"totals"`
	LastAdded *cart.AddedMarker `json:"last_added,omitempty"`
}

type CartSummaryResponse struct {
	Stalls []cart.StallGroup `json:"stalls"`
	Totals cart.Totals       `json:"totals"`
}

type CartHandler struct {
	carts    cart.Service
	validate *validator.Validate
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{
		carts:    carts,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGetCart)
	router.Get("/cart/summary", h.handleGetSummary)
	router.Post("/cart/items", h.handleAddItem)
	router.Put("/cart/items/{id}", h.handleSetQuantity)
	router.Delete("/cart/items/{id}", h.handleRemoveItem)
	router.Delete("/cart", h.handleClear)
}

func cartResponse(c *cart.Cart) CartResponse {
	return CartResponse{
		Lines:     c.Lines,
		Totals:    c.Totals(),
		LastAdded: c.LastAdded,
	}
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	c, err := h.carts.Get(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get cart via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get cart")
		return
	}

	respondWithJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	c, err := h.carts.Get(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get cart via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get cart")
		return
	}

	respondWithJSON(w, http.StatusOK, CartSummaryResponse{
		Stalls: c.GroupedByStall(),
		Totals: c.Totals(),
	})
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var requestPayload AddCartItemRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	menuItemID, ok := parseUUIDParam(w, "menu_item_id", requestPayload.MenuItemID)
	if !ok {
		return
	}

	c, err := h.carts.Add(r.Context(), claims.UserID, menuItemID)
	if err != nil {
		log.Error().Err(err).Stringer("menu_item_id", menuItemID).Msg("Failed to add cart item via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to add item to cart")
		return
	}

	respondWithJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	menuItemID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var requestPayload SetCartQuantityRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	c, err := h.carts.SetQuantity(r.Context(), claims.UserID, menuItemID, requestPayload.Quantity)
	if err != nil {
		log.Error().Err(err).Stringer("menu_item_id", menuItemID).Msg("Failed to set cart quantity via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update cart item")
		return
	}

	respondWithJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	menuItemID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	c, err := h.carts.Remove(r.Context(), claims.UserID, menuItemID)
	if err != nil {
		log.Error().Err(err).Stringer("menu_item_id", menuItemID).Msg("Failed to remove cart item via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to remove item from cart")
		return
	}

	respondWithJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.carts.Clear(r.Context(), claims.UserID); err != nil {
		log.Error().Err(err).Msg("Failed to clear cart via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
