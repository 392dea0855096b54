package cart

import (
	"time"

	"github.com/gofrs/uuid"
)

// ServiceFee is the fixed per-order charge, independent of item count.
const ServiceFee = 1.50

// addedMarkerTTL is how long the transient "added to cart" marker lives.
const addedMarkerTTL = 3 * time.Second

type Line struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	UnitPrice  float64   `json:"unit_price"`
	Quantity   int       `json:"quantity"`
	StallID    uuid.UUID `json:"stall_id"`
	StallName  string    `json:"stall_name"`
	Calories   int       `json:"calories"`
}

// AddedMarker is the transient feedback for the most recently added item.
type AddedMarker struct {
	ItemID    uuid.UUID `json:"item_id"`
	ItemName  string    `json:"item_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Cart struct {
	Lines     []Line       `json:"lines"`
	LastAdded *AddedMarker `json:"last_added,omitempty"`
}

type Totals struct {
	Subtotal      float64 `json:"subtotal"`
	ServiceFee    float64 `json:"service_fee"`
	Total         float64 `json:"total"`
	TotalCalories int     `json:"total_calories"`
	ItemCount     int     `json:"item_count"`
}

type StallGroup struct {
	StallID   uuid.UUID `json:"stall_id"`
	StallName string    `json:"stall_name"`
	Lines     []Line    `json:"lines"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Totals recomputes all derived amounts from the current lines. Nothing is
// cached: the values can never go stale relative to the lines.
func (c *Cart) Totals() Totals {
	t := Totals{ServiceFee: ServiceFee}
	for _, line := range c.Lines {
		t.Subtotal += line.UnitPrice * float64(line.Quantity)
		t.TotalCalories += line.Calories * line.Quantity
		t.ItemCount += line.Quantity
	}
	t.Total = t.Subtotal + t.ServiceFee
	return t
}

// GroupedByStall partitions the lines by stall. Stalls appear in the order
// their first line entered the cart; within a stall, lines keep cart order.
// Both the cart view and the checkout summary render from this projection.
func (c *Cart) GroupedByStall() []StallGroup {
	groups := make([]StallGroup, 0)
	index := make(map[uuid.UUID]int)

	for _, line := range c.Lines {
		i, ok := index[line.StallID]
		if !ok {
			i = len(groups)
			index[line.StallID] = i
			groups = append(groups, StallGroup{
				StallID:   line.StallID,
				StallName: line.StallName,
				Lines:     make([]Line, 0, 1),
			})
		}
		groups[i].Lines = append(groups[i].Lines, line)
	}

	return groups
}

func (c *Cart) findLine(menuItemID uuid.UUID) int {
	for i := range c.Lines {
		if c.Lines[i].MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}
