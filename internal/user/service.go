package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service interface {
	Register(ctx context.Context, u *User, password string) (*User, error)
	CreateWithRole(ctx context.Context, u *User, password string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	ListByRole(ctx context.Context, role string) ([]User, error)
	UpdateLanguage(ctx context.Context, id uuid.UUID, language string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register creates a customer account. Role assignment goes through
// CreateWithRole, which is reserved for admin callers.
func (s *service) Register(ctx context.Context, u *User, password string) (*User, error) {
	u.Role = RoleUser
	u.StallID = nil
	return s.create(ctx, u, password)
}

func (s *service) CreateWithRole(ctx context.Context, u *User, password string) (*User, error) {
	if !ValidRole(u.Role) {
		return nil, fmt.Errorf("service: invalid role %q", u.Role)
	}
	if u.Role == RoleStallOwner && u.StallID == nil {
		return nil, errors.New("service: stall owner requires a stall assignment")
	}
	return s.create(ctx, u, password)
}

func (s *service) create(ctx context.Context, u *User, password string) (*User, error) {
	if password == "" {
		return nil, errors.New("service: password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate user ID: %w", err)
	}
	u.ID = id
	u.IsActive = true
	if u.LanguagePreference == "" {
		u.LanguagePreference = "English"
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Stringer("user_id", u.ID).Str("role", u.Role).Msg("User created")
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("service: failed to fetch user for authentication")
		return nil, fmt.Errorf("service: failed to authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("service: password mismatch")
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		// Login still succeeds; the timestamp is informational.
		log.Warn().Err(err).Stringer("user_id", u.ID).Msg("service: failed to update last login")
	} else {
		u.LastLogin = &now
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to fetch user by id")
		return nil, fmt.Errorf("service: failed to fetch user by id: %w", err)
	}
	return u, nil
}

func (s *service) ListByRole(ctx context.Context, role string) ([]User, error) {
	if role != "" && !ValidRole(role) {
		return nil, fmt.Errorf("service: invalid role %q", role)
	}
	users, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		log.Error().Err(err).Str("role", role).Msg("service: failed to list users by role")
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}
	return users, nil
}

func (s *service) UpdateLanguage(ctx context.Context, id uuid.UUID, language string) error {
	err := s.repo.UpdateLanguage(ctx, id, language)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to update language")
		return fmt.Errorf("service: failed to update language: %w", err)
	}
	return nil
}
