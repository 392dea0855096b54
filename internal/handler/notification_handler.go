package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/auth"
	"github.com/ppum-cafe/foodcourt/internal/notification"
	"github.com/ppum-cafe/foodcourt/internal/user"
)

type NotificationHandler struct {
	notifications notification.Service
}

func NewNotificationHandler(notifications notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) RegisterRoutes(router chi.Router) {
	router.Get("/notifications/user/{id}", h.handleListForUser)
	router.Put("/notifications/{id}/read", h.handleMarkRead)
}

func (h *NotificationHandler) handleListForUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if userID != claims.UserID && claims.Role != user.RoleAdmin {
		respondWithError(w, http.StatusForbidden, "Access denied")
		return
	}

	unreadOnly := false
	if raw := r.URL.Query().Get("unread_only"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid unread_only parameter")
			return
		}
		unreadOnly = parsed
	}

	notifications, err := h.notifications.ListForUser(r.Context(), userID, unreadOnly)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to list notifications via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list notifications")
		return
	}

	respondWithJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	notificationID, ok := parseUUIDParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), notificationID, claims.UserID); err != nil {
		log.Error().Err(err).Stringer("notification_id", notificationID).Msg("Failed to mark notification read via service")

		clientMessage := "Failed to mark notification read"
		switch mapErrorToStatusCode(err) {
		case http.StatusNotFound:
			clientMessage = "Notification not found"
		case http.StatusForbidden:
			clientMessage = "Notification belongs to another user"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
