package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/auth"
	"github.com/ppum-cafe/foodcourt/internal/user"
)

type UpdateLanguageRequest struct {
	Language string `json:"language" validate:"required,oneof=en bm"`
}

type UserHandler struct {
	users    user.Service
	validate *validator.Validate
}

func NewUserHandler(users user.Service) *UserHandler {
	return &UserHandler{
		users:    users,
		validate: validator.New(),
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Get("/users/me", h.handleGetMe)
	router.Put("/users/me/language", h.handleUpdateLanguage)
}

func (h *UserHandler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	u, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", claims.UserID).Msg("Failed to get user via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get user")
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) handleUpdateLanguage(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var requestPayload UpdateLanguageRequest

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

	if err := h.users.UpdateLanguage(r.Context(), claims.UserID, requestPayload.Language); err != nil {
		log.Error().Err(err).Stringer("user_id", claims.UserID).Msg("Failed to update language via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update language preference")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
