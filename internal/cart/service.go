package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/stall"
)

var (
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrBadQuantity     = errors.New("quantity cannot be negative")
)

// Catalog is the slice of the menu catalog the cart needs to resolve an
// item into a priced line.
type Catalog interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (*stall.MenuItem, error)
	GetStall(ctx context.Context, id uuid.UUID) (*stall.Stall, error)
}

type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)
	Add(ctx context.Context, userID, menuItemID uuid.UUID) (*Cart, error)
	Remove(ctx context.Context, userID, menuItemID uuid.UUID) (*Cart, error)
	SetQuantity(ctx context.Context, userID, menuItemID uuid.UUID, quantity int) (*Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// service keeps carts in memory and writes every mutation through to the
// store before returning. The cart is not the system of record, so store
// failures are logged and swallowed: cart operations themselves never fail
// on persistence.
type service struct {
	mu      sync.Mutex
	carts   map[uuid.UUID]*Cart
	store   Store
	catalog Catalog
	now     func() time.Time
}

func NewService(store Store, catalog Catalog) Service {
	return &service{
		carts:   make(map[uuid.UUID]*Cart),
		store:   store,
		catalog: catalog,
		now:     time.Now,
	}
}

// locked returns the live cart for a user, loading it from the store on
// first touch after a restart. Callers must hold s.mu.
func (s *service) locked(ctx context.Context, userID uuid.UUID) *Cart {
	if c, ok := s.carts[userID]; ok {
		return c
	}

	c, err := s.store.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrCartNotStored) {
			log.Warn().Err(err).Stringer("user_id", userID).Msg("Failed to load persisted cart, starting empty")
		}
		c = &Cart{Lines: make([]Line, 0)}
	}

	s.carts[userID] = c
	return c
}

// persist writes the cart through to the store. The write completes before
// the mutation returns, so mutations never interleave with a pending save.
func (s *service) persist(ctx context.Context, userID uuid.UUID, c *Cart) {
	if err := s.store.Save(ctx, userID, c); err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("Failed to persist cart")
	}
}

// snapshot copies the cart so callers cannot mutate shared state, dropping
// an expired added-marker on the way out.
func (s *service) snapshot(c *Cart) *Cart {
	out := &Cart{Lines: make([]Line, len(c.Lines))}
	copy(out.Lines, c.Lines)
	if c.LastAdded != nil && s.now().Before(c.LastAdded.ExpiresAt) {
		marker := *c.LastAdded
		out.LastAdded = &marker
	}
	return out
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(s.locked(ctx, userID)), nil
}

func (s *service) Add(ctx context.Context, userID, menuItemID uuid.UUID) (*Cart, error) {
	item, err := s.catalog.GetMenuItem(ctx, menuItemID)
	if err != nil {
		if errors.Is(err, stall.ErrMenuItemNotFound) {
			return nil, stall.ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("cart: failed to resolve menu item: %w", err)
	}
	if !item.IsAvailable {
		return nil, ErrItemUnavailable
	}

	st, err := s.catalog.GetStall(ctx, item.StallID)
	if err != nil {
		return nil, fmt.Errorf("cart: failed to resolve stall: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.locked(ctx, userID)
	if i := c.findLine(menuItemID); i >= 0 {
		c.Lines[i].Quantity++
	} else {
		calories := 0
		if item.Calories != nil {
			calories = *item.Calories
		}
		c.Lines = append(c.Lines, Line{
			MenuItemID: item.ID,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Quantity:   1,
			StallID:    st.ID,
			StallName:  st.Name,
			Calories:   calories,
		})
	}
	c.LastAdded = &AddedMarker{
		ItemID:    item.ID,
		ItemName:  item.Name,
		ExpiresAt: s.now().Add(addedMarkerTTL),
	}

	s.persist(ctx, userID, c)
	log.Info().Stringer("user_id", userID).Stringer("menu_item_id", menuItemID).Msg("Item added to cart")
	return s.snapshot(c), nil
}

func (s *service) Remove(ctx context.Context, userID, menuItemID uuid.UUID) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.locked(ctx, userID)
	if i := c.findLine(menuItemID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		s.persist(ctx, userID, c)
	}
	return s.snapshot(c), nil
}

func (s *service) SetQuantity(ctx context.Context, userID, menuItemID uuid.UUID, quantity int) (*Cart, error) {
	if quantity < 0 {
		return nil, ErrBadQuantity
	}
	if quantity == 0 {
		return s.Remove(ctx, userID, menuItemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.locked(ctx, userID)
	if i := c.findLine(menuItemID); i >= 0 {
		c.Lines[i].Quantity = quantity
		s.persist(ctx, userID, c)
	}
	return s.snapshot(c), nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[userID] = &Cart{Lines: make([]Line, 0)}
	if err := s.store.Delete(ctx, userID); err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("Failed to delete persisted cart")
	}
	return nil
}
