package stall

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNotStallItem is returned when a stall owner touches a menu item that
// belongs to a different stall.
var ErrNotStallItem = errors.New("menu item does not belong to this stall")

type Service interface {
	ListStalls(ctx context.Context) ([]Stall, error)
	GetStall(ctx context.Context, id uuid.UUID) (*Stall, error)
	CreateStall(ctx context.Context, s *Stall) (*Stall, error)
	ListMenuItems(ctx context.Context, stallID *uuid.UUID, category string) ([]MenuItem, error)
	ListStallMenuItems(ctx context.Context, stallID uuid.UUID) ([]MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	CreateMenuItem(ctx context.Context, m *MenuItem) (*MenuItem, error)
	UpdateMenuItem(ctx context.Context, m *MenuItem, ownerStallID *uuid.UUID) (*MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID, ownerStallID *uuid.UUID) error
	ListCategories(ctx context.Context, stallID uuid.UUID) ([]string, error)
	Search(ctx context.Context, query string, stallID *uuid.UUID) (*SearchResult, error)
}

type SearchResult struct {
	MenuItems []MenuItem `json:"menu_items"`
	Stalls    []Stall    `json:"stalls"`
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListStalls(ctx context.Context) ([]Stall, error) {
	stalls, err := s.repo.ListStalls(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list stalls")
		return nil, fmt.Errorf("service: failed to list stalls: %w", err)
	}
	return stalls, nil
}

func (s *service) GetStall(ctx context.Context, id uuid.UUID) (*Stall, error) {
	st, err := s.repo.GetStall(ctx, id)
	if err != nil {
		if errors.Is(err, ErrStallNotFound) {
			return nil, ErrStallNotFound
		}
		log.Error().Err(err).Stringer("stall_id", id).Msg("service: failed to fetch stall")
		return nil, fmt.Errorf("service: failed to fetch stall: %w", err)
	}
	return st, nil
}

func (s *service) CreateStall(ctx context.Context, st *Stall) (*Stall, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate stall ID: %w", err)
	}
	st.ID = id
	st.IsActive = true
	if st.AveragePrepTime == 0 {
		st.AveragePrepTime = 10
	}

	if err := s.repo.CreateStall(ctx, st); err != nil {
		log.Error().Err(err).Msg("service: failed to create stall")
		return nil, fmt.Errorf("service: failed to create stall: %w", err)
	}

	log.Info().Stringer("stall_id", st.ID).Str("name", st.Name).Msg("Stall created")
	return st, nil
}

func (s *service) ListMenuItems(ctx context.Context, stallID *uuid.UUID, category string) ([]MenuItem, error) {
	items, err := s.repo.ListMenuItems(ctx, MenuItemFilter{
		StallID:       stallID,
		Category:      category,
		AvailableOnly: true,
	})
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list menu items")
		return nil, fmt.Errorf("service: failed to list menu items: %w", err)
	}
	return items, nil
}

// ListStallMenuItems returns every item of one stall, including those
// currently unavailable. Used by the stall-owner management view.
func (s *service) ListStallMenuItems(ctx context.Context, stallID uuid.UUID) ([]MenuItem, error) {
	items, err := s.repo.ListMenuItems(ctx, MenuItemFilter{StallID: &stallID})
	if err != nil {
		log.Error().Err(err).Stringer("stall_id", stallID).Msg("service: failed to list stall menu items")
		return nil, fmt.Errorf("service: failed to list stall menu items: %w", err)
	}
	return items, nil
}

func (s *service) GetMenuItem(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	m, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMenuItemNotFound) {
			return nil, ErrMenuItemNotFound
		}
		log.Error().Err(err).Stringer("menu_item_id", id).Msg("service: failed to fetch menu item")
		return nil, fmt.Errorf("service: failed to fetch menu item: %w", err)
	}
	return m, nil
}

func (s *service) CreateMenuItem(ctx context.Context, m *MenuItem) (*MenuItem, error) {
	if _, err := s.repo.GetStall(ctx, m.StallID); err != nil {
		if errors.Is(err, ErrStallNotFound) {
			return nil, ErrStallNotFound
		}
		return nil, fmt.Errorf("service: failed to verify stall: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate menu item ID: %w", err)
	}
	m.ID = id
	if m.BasePrepTime == 0 {
		m.BasePrepTime = 5
	}
	if m.ComplexityMultiplier == 0 {
		m.ComplexityMultiplier = 1.0
	}

	if err := s.repo.CreateMenuItem(ctx, m); err != nil {
		log.Error().Err(err).Msg("service: failed to create menu item")
		return nil, fmt.Errorf("service: failed to create menu item: %w", err)
	}

	log.Info().Stringer("menu_item_id", m.ID).Stringer("stall_id", m.StallID).Str("name", m.Name).Msg("Menu item created")
	return m, nil
}

// UpdateMenuItem applies an update. A non-nil ownerStallID restricts the
// change to items of that stall.
func (s *service) UpdateMenuItem(ctx context.Context, m *MenuItem, ownerStallID *uuid.UUID) (*MenuItem, error) {
	existing, err := s.repo.GetMenuItem(ctx, m.ID)
	if err != nil {
		if errors.Is(err, ErrMenuItemNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch menu item for update: %w", err)
	}

	if ownerStallID != nil && existing.StallID != *ownerStallID {
		log.Warn().Stringer("menu_item_id", m.ID).Stringer("stall_id", *ownerStallID).Msg("service: menu item update denied, wrong stall")
		return nil, ErrNotStallItem
	}
	m.StallID = existing.StallID

	if err := s.repo.UpdateMenuItem(ctx, m); err != nil {
		if errors.Is(err, ErrMenuItemNotFound) {
			return nil, ErrMenuItemNotFound
		}
		log.Error().Err(err).Stringer("menu_item_id", m.ID).Msg("service: failed to update menu item")
		return nil, fmt.Errorf("service: failed to update menu item: %w", err)
	}

	return s.repo.GetMenuItem(ctx, m.ID)
}

func (s *service) DeleteMenuItem(ctx context.Context, id uuid.UUID, ownerStallID *uuid.UUID) error {
	existing, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMenuItemNotFound) {
			return ErrMenuItemNotFound
		}
		return fmt.Errorf("service: failed to fetch menu item for delete: %w", err)
	}

	if ownerStallID != nil && existing.StallID != *ownerStallID {
		return ErrNotStallItem
	}

	if err := s.repo.DeleteMenuItem(ctx, id); err != nil {
		if errors.Is(err, ErrMenuItemNotFound) {
			return ErrMenuItemNotFound
		}
		log.Error().Err(err).Stringer("menu_item_id", id).Msg("service: failed to delete menu item")
		return fmt.Errorf("service: failed to delete menu item: %w", err)
	}

	log.Info().Stringer("menu_item_id", id).Msg("Menu item deleted")
	return nil
}

func (s *service) ListCategories(ctx context.Context, stallID uuid.UUID) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx, stallID)
	if err != nil {
		log.Error().Err(err).Stringer("stall_id", stallID).Msg("service: failed to list categories")
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *service) Search(ctx context.Context, query string, stallID *uuid.UUID) (*SearchResult, error) {
	items, err := s.repo.SearchMenuItems(ctx, query, stallID)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("service: failed to search menu items")
		return nil, fmt.Errorf("service: search failed: %w", err)
	}

	stalls := make([]Stall, 0)
	if stallID == nil {
		stalls, err = s.repo.SearchStalls(ctx, query)
		if err != nil {
			log.Error().Err(err).Str("query", query).Msg("service: failed to search stalls")
			return nil, fmt.Errorf("service: search failed: %w", err)
		}
	}

	return &SearchResult{MenuItems: items, Stalls: stalls}, nil
}
