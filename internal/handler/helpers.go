package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/cart"
	"github.com/ppum-cafe/foodcourt/internal/notification"
	"github.com/ppum-cafe/foodcourt/internal/order"
	"github.com/ppum-cafe/foodcourt/internal/stall"
	"github.com/ppum-cafe/foodcourt/internal/user"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func formatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fmt.Sprintf("failed on the '%s' rule", fieldErr.Tag())
	}
	return details
}

// respondWithValidationError renders validator output as a structured 400.
func respondWithValidationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: formatValidationErrors(validationErrors),
		})
		return
	}
	log.Error().Err(err).Msg("Unexpected error type during validation")
	respondWithError(w, http.StatusInternalServerError, "Internal validation error")
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, stall.ErrStallNotFound),
		errors.Is(err, stall.ErrMenuItemNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrTrackerNotFound),
		errors.Is(err, notification.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, order.ErrNotOrderOwner),
		errors.Is(err, order.ErrNotStallTracker),
		errors.Is(err, stall.ErrNotStallItem),
		errors.Is(err, notification.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, cart.ErrBadQuantity),
		errors.Is(err, cart.ErrItemUnavailable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseUUIDParam(w http.ResponseWriter, param, value string) (uuid.UUID, bool) {
	id, err := uuid.FromString(value)
	if err != nil {
		log.Warn().Err(err).Str(param, value).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s parameter", param))
		return uuid.Nil, false
	}
	return id, true
}
