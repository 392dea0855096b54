package order

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/cart"
	"github.com/ppum-cafe/foodcourt/internal/stall"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrNotOrderOwner        = errors.New("order belongs to another user")
	ErrNotStallTracker      = errors.New("food tracker belongs to another stall")
)

// Catalog resolves menu items for authoritative pricing during checkout.
type Catalog interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (*stall.MenuItem, error)
}

// Notifier fans out order lifecycle events. Implementations must not fail
// the calling operation.
type Notifier interface {
	OrderConfirmed(ctx context.Context, o *Order)
	FoodReady(ctx context.Context, o *Order, t *FoodTracker)
	ItemCollected(ctx context.Context, o *Order, t *FoodTracker)
}

type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, method PaymentMethod) (*TrackingView, error)
	GetOrder(ctx context.Context, orderID, requesterID uuid.UUID) (*Order, error)
	GetTracking(ctx context.Context, orderID, requesterID uuid.UUID) (*TrackingView, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListStallOrders(ctx context.Context, stallID uuid.UUID) ([]Order, error)
	ListStallTrackers(ctx context.Context, stallID uuid.UUID, status TrackerStatus) ([]FoodTracker, error)
	// UpdateTrackerStatus applies one state-machine transition. A non-nil
	// ownerStallID restricts the update to trackers of that stall.
	UpdateTrackerStatus(ctx context.Context, trackerID uuid.UUID, status TrackerStatus, ownerStallID *uuid.UUID) (*FoodTracker, error)
}

type service struct {
	repo     Repository
	carts    cart.Service
	catalog  Catalog
	notifier Notifier
}

func NewService(repo Repository, carts cart.Service, catalog Catalog, notifier Notifier) Service {
	return &service{
		repo:     repo,
		carts:    carts,
		catalog:  catalog,
		notifier: notifier,
	}
}

// Orders get a short human-readable number for the pickup counter.
// Uniqueness is enforced by the database; a collision fails the insert and
// the customer retries.
func generateOrderNumber() string {
	return fmt.Sprintf("%04d", rand.Intn(10000))
}

func (s *service) Checkout(ctx context.Context, userID uuid.UUID, method PaymentMethod) (*TrackingView, error) {
	if !ValidPaymentMethod(method) {
		return nil, ErrInvalidPaymentMethod
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to read cart: %w", err)
	}
	if c.IsEmpty() {
		log.Warn().Stringer("user_id", userID).Msg("service: checkout attempted with empty cart")
		return nil, ErrEmptyCart
	}

	orderID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order ID: %w", err)
	}

	now := time.Now().UTC()
	o := &Order{
		ID:            orderID,
		UserID:        userID,
		OrderNumber:   generateOrderNumber(),
		Status:        OrderAccepted,
		PaymentMethod: method,
		ServiceFee:    cart.ServiceFee,
		Items:         make([]OrderItem, 0, len(c.Lines)),
	}

	trackers := make([]FoodTracker, 0, len(c.Lines))
	maxCompletion := now

	for _, line := range c.Lines {
		// The catalog price is authoritative; the cart's copy is only
		// what the customer saw while browsing.
		item, err := s.catalog.GetMenuItem(ctx, line.MenuItemID)
		if err != nil {
			if errors.Is(err, stall.ErrMenuItemNotFound) {
				return nil, fmt.Errorf("service: menu item %s no longer exists: %w", line.MenuItemID, err)
			}
			return nil, fmt.Errorf("service: failed to resolve menu item %s: %w", line.MenuItemID, err)
		}

		itemID, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("service: failed to generate order item ID: %w", err)
		}

		orderItem := OrderItem{
			ID:           itemID,
			OrderID:      o.ID,
			MenuItemID:   item.ID,
			StallID:      item.StallID,
			MenuItemName: item.Name,
			StallName:    line.StallName,
			Quantity:     line.Quantity,
			UnitPrice:    item.Price,
			TotalPrice:   item.Price * float64(line.Quantity),
		}
		o.Subtotal += orderItem.TotalPrice
		o.Items = append(o.Items, orderItem)

		prepMinutes := item.PrepMinutes()
		for n := 1; n <= line.Quantity; n++ {
			trackerID, err := uuid.NewV4()
			if err != nil {
				return nil, fmt.Errorf("service: failed to generate tracker ID: %w", err)
			}

			queuePosition := item.CurrentQueueCount + n
			estimatedReady := now.Add(time.Duration(prepMinutes+queuePosition*2) * time.Minute)
			if estimatedReady.After(maxCompletion) {
				maxCompletion = estimatedReady
			}

			trackers = append(trackers, FoodTracker{
				ID:                  trackerID,
				OrderID:             o.ID,
				OrderItemID:         itemID,
				MenuItemID:          item.ID,
				StallID:             item.StallID,
				MenuItemName:        item.Name,
				ItemNumber:          n,
				Status:              TrackerQueued,
				QueuePosition:       queuePosition,
				PrepDurationMinutes: prepMinutes,
				EstimatedReadyTime:  estimatedReady,
			})
		}
	}

	o.TotalAmount = o.Subtotal + o.ServiceFee
	o.EstimatedCompletionTime = &maxCompletion

	if err := s.repo.CreateOrder(ctx, o, trackers); err != nil {
		// Cart is untouched on failure; the customer can retry.
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to create order")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	// Order exists: clearing the cart and handing back the tracking
	// snapshot is one transition from the caller's point of view.
	if err := s.carts.Clear(ctx, userID); err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("service: failed to clear cart after checkout")
	}

	s.notifier.OrderConfirmed(ctx, o)

	log.Info().
		Stringer("order_id", o.ID).
		Stringer("user_id", userID).
		Str("order_number", o.OrderNumber).
		Float64("total", o.TotalAmount).
		Int("trackers", len(trackers)).
		Msg("Order created")

	return NewTrackingView(o, trackers), nil
}

func (s *service) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	if o.UserID != requesterID {
		return nil, ErrNotOrderOwner
	}
	return o, nil
}

func (s *service) GetTracking(ctx context.Context, orderID, requesterID uuid.UUID) (*TrackingView, error) {
	o, err := s.GetOrder(ctx, orderID, requesterID)
	if err != nil {
		return nil, err
	}

	trackers, err := s.repo.GetTrackersByOrderID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch trackers")
		return nil, fmt.Errorf("service: failed to fetch trackers: %w", err)
	}

	return NewTrackingView(o, trackers), nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListStallOrders(ctx context.Context, stallID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListStallOrders(ctx, stallID)
	if err != nil {
		log.Error().Err(err).Stringer("stall_id", stallID).Msg("service: failed to fetch stall orders")
		return nil, fmt.Errorf("service: failed to fetch stall orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListStallTrackers(ctx context.Context, stallID uuid.UUID, status TrackerStatus) ([]FoodTracker, error) {
	if status != "" && !ValidTrackerStatus(status) {
		return nil, fmt.Errorf("service: invalid tracker status %q", status)
	}
	trackers, err := s.repo.ListStallTrackers(ctx, stallID, status)
	if err != nil {
		log.Error().Err(err).Stringer("stall_id", stallID).Msg("service: failed to fetch stall trackers")
		return nil, fmt.Errorf("service: failed to fetch stall trackers: %w", err)
	}
	return trackers, nil
}

func (s *service) UpdateTrackerStatus(ctx context.Context, trackerID uuid.UUID, status TrackerStatus, ownerStallID *uuid.UUID) (*FoodTracker, error) {
	if !ValidTrackerStatus(status) {
		return nil, fmt.Errorf("service: invalid tracker status %q: %w", status, ErrInvalidStatusTransition)
	}

	t, err := s.repo.GetTrackerByID(ctx, trackerID)
	if err != nil {
		if errors.Is(err, ErrTrackerNotFound) {
			return nil, ErrTrackerNotFound
		}
		log.Error().Err(err).Stringer("tracker_id", trackerID).Msg("service: failed to fetch tracker")
		return nil, fmt.Errorf("service: failed to fetch tracker: %w", err)
	}

	if ownerStallID != nil && t.StallID != *ownerStallID {
		log.Warn().Stringer("tracker_id", trackerID).Stringer("stall_id", *ownerStallID).Msg("service: tracker update denied, wrong stall")
		return nil, ErrNotStallTracker
	}

	if t.Status == status {
		log.Info().Stringer("tracker_id", trackerID).Stringer("status", status).Msg("service: tracker status already set, no update needed")
		return t, nil
	}

	if err := ValidateTransition(t.Status, status); err != nil {
		log.Warn().
			Stringer("tracker_id", trackerID).
			Stringer("current_status", t.Status).
			Stringer("new_status", status).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("service: cannot move tracker from %s to %s: %w", t.Status, status, err)
	}

	now := time.Now().UTC()
	oldStatus := t.Status
	t.Status = status

	switch status {
	case TrackerPreparing:
		t.PrepStartTime = &now
		t.EstimatedReadyTime = now.Add(time.Duration(t.PrepDurationMinutes) * time.Minute)
	case TrackerReady:
		t.ActualReadyTime = &now
	}

	if err := s.repo.UpdateTracker(ctx, t); err != nil {
		if errors.Is(err, ErrTrackerNotFound) {
			return nil, ErrTrackerNotFound
		}
		log.Error().Err(err).Stringer("tracker_id", trackerID).Msg("service: failed to update tracker")
		return nil, fmt.Errorf("service: failed to update tracker: %w", err)
	}

	if status == TrackerReady {
		// The unit left the stall's queue.
		if err := s.repo.AdjustMenuItemQueue(ctx, t.MenuItemID, -1); err != nil {
			log.Warn().Err(err).Stringer("menu_item_id", t.MenuItemID).Msg("service: failed to decrement queue count")
		}
	}

	o := s.refreshOrderStatus(ctx, t.OrderID)

	if o != nil {
		switch status {
		case TrackerReady:
			s.notifier.FoodReady(ctx, o, t)
		case TrackerCollected:
			s.notifier.ItemCollected(ctx, o, t)
		}
	}

	log.Info().
		Stringer("tracker_id", t.ID).
		Stringer("old_status", oldStatus).
		Stringer("new_status", status).
		Msg("Food tracker status updated")

	return t, nil
}

// refreshOrderStatus re-derives the parent order's aggregate status after a
// tracker transition and persists it when it changed. Failures are logged,
// not propagated: the tracker update itself already succeeded.
func (s *service) refreshOrderStatus(ctx context.Context, orderID uuid.UUID) *Order {
	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order for status refresh")
		return nil
	}

	trackers, err := s.repo.GetTrackersByOrderID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch trackers for status refresh")
		return o
	}

	derived := DeriveOrderStatus(trackers)
	if derived != o.Status {
		if err := s.repo.UpdateOrderStatus(ctx, orderID, derived); err != nil {
			log.Error().Err(err).Stringer("order_id", orderID).Stringer("status", derived).Msg("service: failed to persist derived order status")
			return o
		}
		log.Info().Stringer("order_id", orderID).Stringer("old_status", o.Status).Stringer("new_status", derived).Msg("Order status updated")
		o.Status = derived
	}

	return o
}
