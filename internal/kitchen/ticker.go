package kitchen

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/order"
)

// TrackerSource lists trackers still moving through the kitchen.
// Satisfied by order.Repository.
type TrackerSource interface {
	ListActiveTrackers(ctx context.Context) ([]order.FoodTracker, error)
}

// TrackerAdvancer applies a state-machine transition to one tracker.
// Satisfied by order.Service.
type TrackerAdvancer interface {
	UpdateTrackerStatus(ctx context.Context, trackerID uuid.UUID, status order.TrackerStatus, ownerStallID *uuid.UUID) (*order.FoodTracker, error)
}

// Ticker simulates kitchen progress: queued items start preparing once
// their queue slot comes up, preparing items become ready once their prep
// duration elapses. Stalls can still move trackers manually; the ticker
// only catches up items whose time has passed.
type Ticker struct {
	source   TrackerSource
	advancer TrackerAdvancer
	interval time.Duration
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewTicker(source TrackerSource, advancer TrackerAdvancer, interval time.Duration) *Ticker {
	return &Ticker{
		source:   source,
		advancer: advancer,
		interval: interval,
		now:      time.Now,
	}
}

// Start launches the background loop. It returns immediately; call Stop
// to cancel the loop and wait for it to exit.
func (t *Ticker) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		log.Info().Dur("interval", t.interval).Msg("Kitchen ticker started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Kitchen ticker stopped")
				return
			case <-ticker.C:
				t.Tick(ctx)
			}
		}
	}()
}

func (t *Ticker) Stop() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
}

// Tick advances every active tracker whose time has come. One bad tracker
// never blocks the rest of the pass.
func (t *Ticker) Tick(ctx context.Context) {
	trackers, err := t.source.ListActiveTrackers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("kitchen: failed to list active trackers")
		return
	}

	now := t.now().UTC()
	for i := range trackers {
		tr := &trackers[i]

		next, due := nextTransition(tr, now)
		if !due {
			continue
		}

		if _, err := t.advancer.UpdateTrackerStatus(ctx, tr.ID, next, nil); err != nil {
			log.Warn().
				Err(err).
				Stringer("tracker_id", tr.ID).
				Stringer("next_status", next).
				Msg("kitchen: failed to advance tracker")
		}
	}
}

func nextTransition(tr *order.FoodTracker, now time.Time) (order.TrackerStatus, bool) {
	switch tr.Status {
	case order.TrackerQueued:
		// Each queue slot ahead of the item costs two minutes.
		startAt := tr.CreatedAt.Add(time.Duration(tr.QueuePosition*2) * time.Minute)
		if !now.Before(startAt) {
			return order.TrackerPreparing, true
		}
	case order.TrackerPreparing:
		if tr.PrepStartTime != nil {
			readyAt := tr.PrepStartTime.Add(time.Duration(tr.PrepDurationMinutes) * time.Minute)
			if !now.Before(readyAt) {
				return order.TrackerReady, true
			}
		}
	}
	return "", false
}
