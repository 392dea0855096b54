package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/order"
)

var ErrNotOwner = errors.New("notification belongs to another user")

// EventPublisher is satisfied by Publisher. A nil publisher degrades the
// service to rows only, which keeps the API working when the broker is down.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type Service interface {
	order.Notifier

	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, notificationID, requesterID uuid.UUID) error
}

type service struct {
	repo      Repository
	publisher EventPublisher
}

func NewService(repo Repository, publisher EventPublisher) Service {
	return &service{repo: repo, publisher: publisher}
}

func (s *service) OrderConfirmed(ctx context.Context, o *order.Order) {
	s.create(ctx, &Notification{
		UserID:  o.UserID,
		OrderID: o.ID,
		Title:   "Order Confirmed",
		Message: fmt.Sprintf("Your order #%s has been placed and sent to the stalls.", o.OrderNumber),
		Type:    TypeSuccess,
	})
}

func (s *service) FoodReady(ctx context.Context, o *order.Order, t *order.FoodTracker) {
	s.create(ctx, &Notification{
		UserID:        o.UserID,
		OrderID:       o.ID,
		FoodTrackerID: &t.ID,
		Title:         "Food Ready!",
		Message:       fmt.Sprintf("Your %s from order #%s is ready for pickup.", t.MenuItemName, o.OrderNumber),
		Type:          TypeFoodReady,
	})
}

func (s *service) ItemCollected(ctx context.Context, o *order.Order, t *order.FoodTracker) {
	s.create(ctx, &Notification{
		UserID:        o.UserID,
		OrderID:       o.ID,
		FoodTrackerID: &t.ID,
		Title:         "Item Collected",
		Message:       fmt.Sprintf("%s from order #%s has been collected. Enjoy your meal!", t.MenuItemName, o.OrderNumber),
		Type:          TypeInfo,
	})
}

// create stores the row and mirrors it to the broker. Neither failure is
// surfaced to the caller: notifications never break the operation that
// triggered them.
func (s *service) create(ctx context.Context, n *Notification) {
	id, err := uuid.NewV4()
	if err != nil {
		log.Error().Err(err).Msg("service: failed to generate notification ID")
		return
	}
	n.ID = id
	n.CreatedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, n); err != nil {
		log.Error().Err(err).Stringer("user_id", n.UserID).Str("title", n.Title).Msg("service: failed to store notification")
		return
	}

	if s.publisher == nil {
		return
	}
	event := Event{
		NotificationID: n.ID,
		UserID:         n.UserID,
		OrderID:        n.OrderID,
		FoodTrackerID:  n.FoodTrackerID,
		Title:          n.Title,
		Message:        n.Message,
		Type:           n.Type,
		OccurredAt:     n.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Stringer("notification_id", n.ID).Msg("service: failed to publish notification event")
	}
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error) {
	notifications, err := s.repo.ListByUserID(ctx, userID, unreadOnly)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list notifications")
		return nil, fmt.Errorf("service: failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *service) MarkRead(ctx context.Context, notificationID, requesterID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("notification_id", notificationID).Msg("service: failed to fetch notification")
		return fmt.Errorf("service: failed to fetch notification: %w", err)
	}
	if n.UserID != requesterID {
		return ErrNotOwner
	}
	if err := s.repo.MarkRead(ctx, notificationID); err != nil {
		log.Error().Err(err).Stringer("notification_id", notificationID).Msg("service: failed to mark notification read")
		return fmt.Errorf("service: failed to mark notification read: %w", err)
	}
	return nil
}
