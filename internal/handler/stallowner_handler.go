package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/auth"
	"github.com/ppum-cafe/foodcourt/internal/order"
	"github.com/ppum-cafe/foodcourt/internal/stall"
	"github.com/ppum-cafe/foodcourt/internal/user"
)

type MenuItemRequest struct {
	StallID              string   `json:"stall_id" validate:"omitempty,uuid4"`
	Name                 string   `json:"name" validate:"required,min=2"`
	NameBM               string   `json:"name_bm"`
	Description          string   `json:"description"`
	DescriptionBM        string   `json:"description_bm"`
	Price                float64  `json:"price" validate:"required,gt=0"`
	Category             string   `json:"category" validate:"required"`
	CategoryBM           string   `json:"category_bm"`
	IsBestSeller         bool     `json:"is_best_seller"`
	IsAvailable          *bool    `json:"is_available"`
	ImageURL             string   `json:"image_url"`
	BasePrepTime         int      `json:"base_prep_time" validate:"omitempty,gt=0"`
	ComplexityMultiplier float64  `json:"complexity_multiplier" validate:"omitempty,gt=0"`
	Calories             *int     `json:"calories"`
	Protein              *float64 `json:"protein"`
	Carbs                *float64 `json:"carbs"`
	Fat                  *float64 `json:"fat"`
	Allergens            []string `json:"allergens"`
}

func (req *MenuItemRequest) toModel() stall.MenuItem {
	m := stall.MenuItem{
		Name:                 req.Name,
		NameBM:               req.NameBM,
		Description:          req.Description,
		DescriptionBM:        req.DescriptionBM,
		Price:                req.Price,
		Category:             req.Category,
		CategoryBM:           req.CategoryBM,
		IsBestSeller:         req.IsBestSeller,
		IsAvailable:          true,
		ImageURL:             req.ImageURL,
		BasePrepTime:         req.BasePrepTime,
		ComplexityMultiplier: req.ComplexityMultiplier,
		Calories:             req.Calories,
		Protein:              req.Protein,
		Carbs:                req.Carbs,
		Fat:                  req.Fat,
		Allergens:            req.Allergens,
	}
	if req.IsAvailable != nil {
		m.IsAvailable = *req.IsAvailable
	}
	return m
}

// StallOwnerHandler is the kitchen-side surface: the owner's stall, its
// incoming orders, its food trackers and its menu. Every route resolves
// the caller's stall from the user record, never from the request.
type StallOwnerHandler struct {
	users    user.Service
	stalls   stall.Service
	orders   order.Service
	validate *validator.Validate
}

func NewStallOwnerHandler(users user.Service, stalls stall.Service, orders order.Service) *StallOwnerHandler {
	return &StallOwnerHandler{
		users:    users,
		stalls:   stalls,
		orders:   orders,
		validate: validator.New(),
	}
}

func (h *StallOwnerHandler) RegisterRoutes(router chi.Router) {
	router.Get("/stall-owner/stall", h.handleGetStall)
	router.Get("/stall-owner/orders", h.handleListOrders)
	router.Get("/stall-owner/food-trackers", h.handleListTrackers)
	router.Put("/stall-owner/food-trackers/{id}/status", h.handleUpdateTrackerStatus)
	router.Get("/stall-owner/menu-items", h.handleListMenuItems)
	router.Post("/stall-owner/menu-items", h.handleCreateMenuItem)
	router.Put("/stall-owner/menu-items/{id}", h.handleUpdateMenuItem)
	router.Delete("/stall-owner/menu-items/{id}", h.handleDeleteMenuItem)
}

// ownerStallID resolves the authenticated owner's stall assignment.
func (h *StallOwnerHandler) ownerStallID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}

	u, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", claims.UserID).Msg("Failed to resolve stall owner via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to resolve stall owner")
		return uuid.Nil, false
	}
	if u.StallID == nil {
		respondWithError(w, http.StatusForbidden, "No stall assigned to this account")
		return uuid.Nil, false
	}
	return *u.StallID, true
}

func (h *StallOwnerHandler) handleGetStall(w http.ResponseWriter, r *http.Request) {
	stallID, ok := h.ownerStallID(w, r)
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

func (h *StallOwnerHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	stallID, ok := h.ownerStallID(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListStallOrders(r.Context(), stallID)
	if err != nil {
		log.Error().Err(err).Stringer("stall_id", stallID).Msg("Failed to list stall orders via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list stall orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *StallOwnerHandler) handleListTrackers(w http.ResponseWriter, r *http.Request) {
	stallID, ok := h.ownerStallID(w, r)
	if !ok {
		return
	}

	status := order.TrackerStatus(r.URL.Query().Get("status"))

	trackers, err := h.orders.ListStallTrackers(r.Context(), stallID, status)
	if err != nil {
		log.Error().Err(err).Stringer("stall_id", stallID).Msg("Failed to list stall trackers via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list food trackers")
		return
	}

	respondWithJSON(w, http.StatusOK, trackers)
}

func (h *StallOwnerHandler) handleUpdateTrackerStatus(w http.ResponseWriter, r *http.Request) {
	stallID, ok := h.ownerStallID(w, r)
	if !ok {
		return
	}

	trackerID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		respondWithError(w, http.StatusBadRequest, "status query parameter is required")
		return
	}

	tracker, err := h.orders.UpdateTrackerStatus(r.Context(), trackerID, order.TrackerStatus(status), &stallID)
	if err != nil {
		log.Error().Err(err).Stringer("tracker_id", trackerID).Msg("Failed to update tracker status via service")

		clientMessage := "Failed to update food tracker"
		switch mapErrorToStatusCode(err) {
		case http.StatusBadRequest:
			clientMessage = err.Error()
		case http.StatusNotFound:
			clientMessage = "Food tracker not found"
		case http.StatusForbidden:
			clientMessage = "Food tracker belongs to another stall"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, tracker)
}

func (h *StallOwnerHandler) handleListMenuItems(w http.ResponseWriter, r *http.Request) {
	stallID, ok := h.ownerStallID(w, r)
	if !ok {
		return
	}

	items, err := h.stalls.ListStallMenuItems(r.Context(), stallID)
	if err != nil {
		log.Error().Err(err).Stringer("stall_id", stallID).Msg("Failed to list stall menu items via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list menu items")
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

func (h *StallOwnerHandler) handleCreateMenuItem(w http.ResponseWriter, r *http.Request) {
	stallID, ok := h.ownerStallID(w, r)
	if !ok {
		return
	}

	var requestPayload MenuItemRequest

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

	item := requestPayload.toModel()
	item.StallID = stallID

	created, err := h.stalls.CreateMenuItem(r.Context(), &item)
	if err != nil {
		log.Error().Err(err).Stringer("stall_id", stallID).Msg("Failed to create menu item via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create menu item")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *StallOwnerHandler) handleUpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	stallID, ok := h.ownerStallID(w, r)
	if !ok {
		return
	}

	itemID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var requestPayload MenuItemRequest

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

	item := requestPayload.toModel()
	item.ID = itemID
	item.StallID = stallID

	updated, err := h.stalls.UpdateMenuItem(r.Context(), &item, &stallID)
	if err != nil {
		log.Error().Err(err).Stringer("menu_item_id", itemID).Msg("Failed to update menu item via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update menu item")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *StallOwnerHandler) handleDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	stallID, ok := h.ownerStallID(w, r)
	if !ok {
		return
	}

	itemID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.stalls.DeleteMenuItem(r.Context(), itemID, &stallID); err != nil {
		log.Error().Err(err).Stringer("menu_item_id", itemID).Msg("Failed to delete menu item via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete menu item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
