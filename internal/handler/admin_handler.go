package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/stall"
	"github.com/ppum-cafe/foodcourt/internal/user"
)

type CreateStallRequest struct {
	Name            string  `json:"name" validate:"required,min=2"`
	NameBM          string  `json:"name_bm"`
	CuisineType     string  `json:"cuisine_type" validate:"required"`
	CuisineTypeBM   string  `json:"cuisine_type_bm"`
	Description     string  `json:"description"`
	DescriptionBM   string  `json:"description_bm"`
	ImageURL        string  `json:"image_url"`
	AveragePrepTime int     `json:"average_prep_time" validate:"omitempty,gt=0"`
	Rating          float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required,oneof=user stall_owner admin"`
	StallID  string `json:"stall_id" validate:"omitempty,uuid4"`
}

// AdminHandler covers food-court management: stall onboarding, staff
// accounts and cross-stall menu edits.
type AdminHandler struct {
	users    user.Service
	stalls   stall.Service
	validate *validator.Validate
}

func NewAdminHandler(users user.Service, stalls stall.Service) *AdminHandler {
	return &AdminHandler{
		users:    users,
		stalls:   stalls,
		validate: validator.New(),
	}
}

func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Post("/admin/stalls", h.handleCreateStall)
	router.Get("/admin/users", h.handleListUsers)
	router.Post("/admin/users", h.handleCreateUser)
	router.Post("/admin/menu-items", h.handleCreateMenuItem)
	router.Put("/admin/menu-items/{id}", h.handleUpdateMenuItem)
	router.Delete("/admin/menu-items/{id}", h.handleDeleteMenuItem)
}

func (h *AdminHandler) handleCreateStall(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateStallRequest

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

	st := stall.Stall{
		Name:            requestPayload.Name,
		NameBM:          requestPayload.NameBM,
		CuisineType:     requestPayload.CuisineType,
		CuisineTypeBM:   requestPayload.CuisineTypeBM,
		Description:     requestPayload.Description,
		DescriptionBM:   requestPayload.DescriptionBM,
		ImageURL:        requestPayload.ImageURL,
		AveragePrepTime: requestPayload.AveragePrepTime,
		Rating:          requestPayload.Rating,
		IsActive:        true,
	}

	created, err := h.stalls.CreateStall(r.Context(), &st)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create stall via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create stall")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role != "" && !user.ValidRole(role) {
		respondWithError(w, http.StatusBadRequest, "Invalid role parameter")
		return
	}

	users, err := h.users.ListByRole(r.Context(), role)
	if err != nil {
		log.Error().Err(err).Str("role", role).Msg("Failed to list users via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list users")
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateUserRequest

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

	domainUser := user.User{
		Name:  requestPayload.Name,
		Email: requestPayload.Email,
		Phone: requestPayload.Phone,
		Role:  requestPayload.Role,
	}
	if requestPayload.StallID != "" {
		stallID, err := uuid.FromString(requestPayload.StallID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid stall_id parameter")
			return
		}
		domainUser.StallID = &stallID
	}

	created, err := h.users.CreateWithRole(r.Context(), &domainUser, requestPayload.Password)
	if err != nil {
		log.Error().Err(err).Str("role", requestPayload.Role).Msg("Failed to create user via service")

		clientMessage := "Failed to create user"
		if errors.Is(err, user.ErrEmailExists) {
			clientMessage = "Email already exists"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) handleCreateMenuItem(w http.ResponseWriter, r *http.Request) {
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
	if requestPayload.StallID == "" {
		respondWithError(w, http.StatusBadRequest, "stall_id is required")
		return
	}

	stallID, ok := parseUUIDParam(w, "stall_id", requestPayload.StallID)
	if !ok {
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

func (h *AdminHandler) handleUpdateMenuItem(w http.ResponseWriter, r *http.Request) {
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
	if requestPayload.StallID != "" {
		stallID, ok := parseUUIDParam(w, "stall_id", requestPayload.StallID)
		if !ok {
			return
		}
		item.StallID = stallID
	}

	updated, err := h.stalls.UpdateMenuItem(r.Context(), &item, nil)
	if err != nil {
		log.Error().Err(err).Stringer("menu_item_id", itemID).Msg("Failed to update menu item via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update menu item")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) handleDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.stalls.DeleteMenuItem(r.Context(), itemID, nil); err != nil {
		log.Error().Err(err).Stringer("menu_item_id", itemID).Msg("Failed to delete menu item via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete menu item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
