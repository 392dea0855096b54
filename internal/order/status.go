package order

import "errors"

var (
	ErrStatusAlreadySet        = errors.New("status is already set to the desired value")
	ErrInvalidStatusTransition = errors.New("invalid food tracker status transition")
)

// Tracker statuses move strictly forward, one step at a time. A request to
// skip a step (Queued straight to Ready) or move backward is rejected, not
// coerced to the nearest legal state.
var allowedTrackerTransitions = map[TrackerStatus]map[TrackerStatus]bool{
	TrackerQueued: {
		TrackerPreparing: true,
	},
	TrackerPreparing: {
		TrackerReady: true,
	},
	TrackerReady: {
		TrackerCollected: true,
	},
	TrackerCollected: {},
}

func ValidTrackerStatus(s TrackerStatus) bool {
	_, ok := allowedTrackerTransitions[s]
	return ok
}

// ValidateTransition checks whether a tracker may move from one status to
// another.
func ValidateTransition(from, to TrackerStatus) error {
	if from == to {
		return ErrStatusAlreadySet
	}
	next, ok := allowedTrackerTransitions[from]
	if !ok || !next[to] {
		return ErrInvalidStatusTransition
	}
	return nil
}

// DeriveOrderStatus computes an order's displayed status from its trackers.
// The rules are evaluated top to bottom; an order whose trackers are all
// gone (none uncollected) is Completed, so the empty set lands there rather
// than vacuously matching a later rule.
func DeriveOrderStatus(trackers []FoodTracker) OrderStatus {
	var ready, collected, preparing int
	for _, t := range trackers {
		switch t.Status {
		case TrackerReady:
			ready++
		case TrackerCollected:
			collected++
		case TrackerPreparing:
			preparing++
		}
	}
	total := len(trackers)

	switch {
	case collected == total:
		return OrderCompleted
	case ready+collected == total:
		return OrderReadyForPickup
	case ready+collected > 0:
		return OrderPartiallyReady
	case preparing > 0:
		return OrderPreparing
	default:
		return OrderAccepted
	}
}
