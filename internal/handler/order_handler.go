package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/auth"
	"github.com/ppum-cafe/foodcourt/internal/order"
	"github.com/ppum-cafe/foodcourt/internal/user"
)

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type OrderHandler struct {
	orders   order.Service
	validate *validator.Validate
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleCheckout)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.Get("/orders/{id}/tracking", h.handleGetTracking)
	router.Get("/orders/user/{id}", h.handleListUserOrders)
}

// RegisterAdminRoutes mounts the tracker override endpoint. Access control
// is the router's job; the handler passes no stall restriction.
func (h *OrderHandler) RegisterAdminRoutes(router chi.Router) {
	router.Put("/orders/food-trackers/{id}/status", h.handleUpdateTrackerStatus)
}

func (h *OrderHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var requestPayload CheckoutRequest

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

	tracking, err := h.orders.Checkout(r.Context(), claims.UserID, order.PaymentMethod(requestPayload.PaymentMethod))
	if err != nil {
		log.Error().Err(err).Stringer("user_id", claims.UserID).Msg("Failed to checkout via service")

		clientMessage := "Failed to place order"
		switch mapErrorToStatusCode(err) {
		case http.StatusBadRequest:
			clientMessage = err.Error()
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, tracking)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	orderID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(r.Context(), orderID, claims.UserID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to get order via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleGetTracking(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	orderID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	tracking, err := h.orders.GetTracking(r.Context(), orderID, claims.UserID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to get order tracking via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get order tracking")
		return
	}

	respondWithJSON(w, http.StatusOK, tracking)
}

func (h *OrderHandler) handleListUserOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Order history is private. Admins may read any user's history.
	if userID != claims.UserID && claims.Role != user.RoleAdmin {
		respondWithError(w, http.StatusForbidden, "Access denied")
		return
	}

	orders, err := h.orders.ListUserOrders(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to list user orders via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleUpdateTrackerStatus(w http.ResponseWriter, r *http.Request) {
	trackerID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		respondWithError(w, http.StatusBadRequest, "status query parameter is required")
		return
	}

	tracker, err := h.orders.UpdateTrackerStatus(r.Context(), trackerID, order.TrackerStatus(status), nil)
	if err != nil {
		log.Error().Err(err).Stringer("tracker_id", trackerID).Msg("Failed to update tracker status via service")

		clientMessage := "Failed to update food tracker"
		switch mapErrorToStatusCode(err) {
		case http.StatusBadRequest:
			clientMessage = err.Error()
		case http.StatusNotFound:
			clientMessage = "Food tracker not found"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, tracker)
}
