package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "Online Payment"
	PaymentCash   PaymentMethod = "Cash at Counter"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentOnline || m == PaymentCash
}

type OrderStatus string

const (
	OrderAccepted       OrderStatus = "Accepted"
	OrderPreparing      OrderStatus = "Preparing"
	OrderPartiallyReady OrderStatus = "Partially Ready"
	OrderReadyForPickup OrderStatus = "Ready for Pickup"
	OrderCompleted      OrderStatus = "Completed"
)

func (s OrderStatus) String() string {
	return string(s)
}

type TrackerStatus string

const (
	TrackerQueued    TrackerStatus = "Queued"
	TrackerPreparing TrackerStatus = "Preparing"
	TrackerReady     TrackerStatus = "Ready"
	TrackerCollected TrackerStatus = "Collected"
)

func (s TrackerStatus) String() string {
	return string(s)
}

type Order struct {
	ID                      uuid.UUID     `json:"id"`
	UserID                  uuid.UUID     `json:"user_id"`
	OrderNumber             string        `json:"order_number"`
	Status                  OrderStatus   `json:"status"`
	PaymentMethod           PaymentMethod `json:"payment_method"`
	Subtotal                float64       `json:"subtotal"`
	ServiceFee              float64       `json:"service_fee"`
	TotalAmount             float64       `json:"total_amount"`
	EstimatedCompletionTime *time.Time    `json:"estimated_completion_time,omitempty"`
	CreatedAt               time.Time     `json:"created_at"`
	UpdatedAt               time.Time     `json:"updated_at"`
	Items                   []OrderItem   `json:"items"`
}

type OrderItem struct {
	ID           uuid.UUID `json:"id"`
	OrderID      uuid.UUID `json:"order_id"`
	MenuItemID   uuid.UUID `json:"menu_item_id"`
	StallID      uuid.UUID `json:"stall_id"`
	MenuItemName string    `json:"menu_item_name"`
	StallName    string    `json:"stall_name"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	TotalPrice   float64   `json:"total_price"`
}

// FoodTracker follows one unit of preparation through the kitchen. An order
// line with quantity three owns three trackers, numbered 1..3.
type FoodTracker struct {
	ID                  uuid.UUID     `json:"id"`
	OrderID             uuid.UUID     `json:"order_id"`
	OrderItemID         uuid.UUID     `json:"order_item_id"`
	MenuItemID          uuid.UUID     `json:"menu_item_id"`
	StallID             uuid.UUID     `json:"stall_id"`
	MenuItemName        string        `json:"menu_item_name"`
	ItemNumber          int           `json:"item_number"`
	Status              TrackerStatus `json:"status"`
	QueuePosition       int           `json:"queue_position"`
	PrepDurationMinutes int           `json:"prep_duration_minutes"`
	PrepStartTime       *time.Time    `json:"prep_start_time,omitempty"`
	EstimatedReadyTime  time.Time     `json:"estimated_ready_time"`
	ActualReadyTime     *time.Time    `json:"actual_ready_time,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// Progress reports how far along preparation is at the given instant, as a
// fraction in [0, 1]. Display only: actual status comes from transitions,
// never from elapsed time.
func (t *FoodTracker) Progress(now time.Time) float64 {
	if t.PrepStartTime == nil || t.PrepDurationMinutes <= 0 {
		return 0
	}
	elapsed := now.Sub(*t.PrepStartTime)
	fraction := elapsed.Minutes() / float64(t.PrepDurationMinutes)
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}

// TrackingView is the polling payload for one order: the trackers that are
// still in flight, partitioned by status. Collected items drop out.
type TrackingView struct {
	Order          *Order        `json:"order"`
	ReadyItems     []FoodTracker `json:"ready_items"`
	PreparingItems []FoodTracker `json:"preparing_items"`
	QueuedItems    []FoodTracker `json:"queued_items"`
}

// NewTrackingView buckets trackers by status in one pass.
func NewTrackingView(o *Order, trackers []FoodTracker) *TrackingView {
	v := &TrackingView{
		Order:          o,
		ReadyItems:     make([]FoodTracker, 0),
		PreparingItems: make([]FoodTracker, 0),
		QueuedItems:    make([]FoodTracker, 0),
	}
	for _, t := range trackers {
		switch t.Status {
		case TrackerReady:
			v.ReadyItems = append(v.ReadyItems, t)
		case TrackerPreparing:
			v.PreparingItems = append(v.PreparingItems, t)
		case TrackerQueued:
			v.QueuedItems = append(v.QueuedItems, t)
		}
	}
	return v
}
