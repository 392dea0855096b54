package order_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ppum-cafe/foodcourt/internal/order"
)

func TestFoodTracker_Progress(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tracker := order.FoodTracker{
		Status:              order.TrackerPreparing,
		PrepStartTime:       &start,
		PrepDurationMinutes: 10,
	}

	assert.InDelta(t, 0.0, tracker.Progress(start), 1e-9)
	assert.InDelta(t, 0.5, tracker.Progress(start.Add(5*time.Minute)), 1e-9)
	assert.InDelta(t, 1.0, tracker.Progress(start.Add(10*time.Minute)), 1e-9)

	// Clamped at both ends.
	assert.InDelta(t, 0.0, tracker.Progress(start.Add(-time.Minute)), 1e-9)
	assert.InDelta(t, 1.0, tracker.Progress(start.Add(time.Hour)), 1e-9)
}

func TestFoodTracker_Progress_NotStarted(t *testing.T) {
	tracker := order.FoodTracker{Status: order.TrackerQueued, PrepDurationMinutes: 10}
	assert.Zero(t, tracker.Progress(time.Now()))
}

func TestNewTrackingView_BucketsByStatus(t *testing.T) {
	trackers := trackersWithStatuses(
		order.TrackerReady,
		order.TrackerPreparing,
		order.TrackerQueued,
		order.TrackerCollected,
		order.TrackerQueued,
	)

	o := &order.Order{Status: order.OrderPartiallyReady}
	view := order.NewTrackingView(o, trackers)

	assert.Same(t, o, view.Order)
	assert.Len(t, view.ReadyItems, 1)
	assert.Len(t, view.PreparingItems, 1)
	assert.Len(t, view.QueuedItems, 2)
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, order.ValidPaymentMethod(order.PaymentOnline))
	assert.True(t, order.ValidPaymentMethod(order.PaymentCash))
	assert.False(t, order.ValidPaymentMethod(order.PaymentMethod("Barter")))
}
