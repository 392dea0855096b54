package notification

import (
	"time"

	"github.com/gofrs/uuid"
)

type Type string

const (
	TypeInfo      Type = "info"
	TypeSuccess   Type = "success"
	TypeWarning   Type = "warning"
	TypeFoodReady Type = "food_ready"
)

type Notification struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	OrderID       uuid.UUID  `json:"order_id"`
	FoodTrackerID *uuid.UUID `json:"food_tracker_id,omitempty"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	Type          Type       `json:"notification_type"`
	IsRead        bool       `json:"is_read"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Event is the broker-side shape of a notification, published to the
// fanout exchange alongside the stored row.
type Event struct {
	NotificationID uuid.UUID  `json:"notification_id"`
	UserID         uuid.UUID  `json:"user_id"`
	OrderID        uuid.UUID  `json:"order_id"`
	FoodTrackerID  *uuid.UUID `json:"food_tracker_id,omitempty"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Type           Type       `json:"notification_type"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
