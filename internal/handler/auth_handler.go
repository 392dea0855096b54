package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/auth"
	"github.com/ppum-cafe/foodcourt/internal/user"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"omitempty,min=7"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string     `json:"access_token"`
	User  *user.User `json:"user"`
}

type AuthHandler struct {
	users    user.Service
	tokens   *auth.TokenManager
	validate *validator.Validate
}

func NewAuthHandler(users user.Service, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest

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
	}

	createdUser, err := h.users.Register(r.Context(), &domainUser, requestPayload.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register user via service")

		clientMessage := "Failed to register user"
		if errors.Is(err, user.ErrEmailExists) {
			clientMessage = "Email already exists"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	token, err := h.tokens.Generate(createdUser.ID, createdUser.Email, createdUser.Role)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue token after registration")
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondWithJSON(w, http.StatusCreated, AuthResponse{Token: token, User: createdUser})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest

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

	authedUser, err := h.users.Authenticate(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		clientMessage := "Failed to log in"
		if errors.Is(err, user.ErrInvalidCredentials) {
			clientMessage = "Invalid email or password"
		} else {
			log.Error().Err(err).Msg("Failed to authenticate user via service")
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	token, err := h.tokens.Generate(authedUser.ID, authedUser.Email, authedUser.Role)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue token after login")
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondWithJSON(w, http.StatusOK, AuthResponse{Token: token, User: authedUser})
}
