package cart_test

import (
	"math/rand"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppum-cafe/foodcourt/internal/cart"
)

func TestCart_Totals_Example(t *testing.T) {
	c := &cart.Cart{
		Lines: []cart.Line{
			{MenuItemID: uuid.Must(uuid.NewV4()), Name: "Nasi Lemak", UnitPrice: 5.00, Quantity: 2, Calories: 400},
			{MenuItemID: uuid.Must(uuid.NewV4()), Name: "Teh Tarik", UnitPrice: 3.00, Quantity: 1, Calories: 120},
		},
	}

	totals := c.Totals()

	assert.InDelta(t, 13.00, totals.Subtotal, 1e-9)
	assert.InDelta(t, 1.50, totals.ServiceFee, 1e-9)
	assert.InDelta(t, 14.50, totals.Total, 1e-9)
	assert.Equal(t, 920, totals.TotalCalories)
	assert.Equal(t, 3, totals.ItemCount)
}

func TestCart_Totals_EmptyCartStillCarriesServiceFee(t *testing.T) {
	c := &cart.Cart{}

	totals := c.Totals()

	assert.Zero(t, totals.Subtotal)
	assert.InDelta(t, cart.ServiceFee, totals.Total, 1e-9)
	assert.Zero(t, totals.ItemCount)
}

// Totals must stay in sync with the lines no matter how the cart got into
// its current shape.
func TestCart_Totals_MatchesLinesUnderRandomMutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 100; trial++ {
		c := &cart.Cart{}

		lineCount := rng.Intn(8)
		for i := 0; i < lineCount; i++ {
			c.Lines = append(c.Lines, cart.Line{
				MenuItemID: uuid.Must(uuid.NewV4()),
				UnitPrice:  float64(rng.Intn(2000)) / 100,
				Quantity:   1 + rng.Intn(9),
				Calories:   rng.Intn(900),
			})
		}

		// Random quantity rewrites and removals.
		for i := 0; i < rng.Intn(5) && len(c.Lines) > 0; i++ {
			j := rng.Intn(len(c.Lines))
			if rng.Intn(2) == 0 {
				c.Lines[j].Quantity = 1 + rng.Intn(9)
			} else {
				c.Lines = append(c.Lines[:j], c.Lines[j+1:]...)
			}
		}

		var wantSubtotal float64
		var wantCalories, wantCount int
		for _, line := range c.Lines {
			wantSubtotal += line.UnitPrice * float64(line.Quantity)
			wantCalories += line.Calories * line.Quantity
			wantCount += line.Quantity
		}

		totals := c.Totals()
		require.InDelta(t, wantSubtotal, totals.Subtotal, 1e-9)
		require.InDelta(t, wantSubtotal+cart.ServiceFee, totals.Total, 1e-9)
		require.Equal(t, wantCalories, totals.TotalCalories)
		require.Equal(t, wantCount, totals.ItemCount)
	}
}

func TestCart_GroupedByStall(t *testing.T) {
	stallA := uuid.Must(uuid.NewV4())
	stallB := uuid.Must(uuid.NewV4())

	lineA1 := cart.Line{MenuItemID: uuid.Must(uuid.NewV4()), StallID: stallA, StallName: "Malay Delights", Quantity: 1}
	lineB1 := cart.Line{MenuItemID: uuid.Must(uuid.NewV4()), StallID: stallB, StallName: "Chinese Kitchen", Quantity: 2}
	lineA2 := cart.Line{MenuItemID: uuid.Must(uuid.NewV4()), StallID: stallA, StallName: "Malay Delights", Quantity: 1}

	c := &cart.Cart{Lines: []cart.Line{lineA1, lineB1, lineA2}}

	groups := c.GroupedByStall()

	want := []cart.StallGroup{
		{StallID: stallA, StallName: "Malay Delights", Lines: []cart.Line{lineA1, lineA2}},
		{StallID: stallB, StallName: "Chinese Kitchen", Lines: []cart.Line{lineB1}},
	}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("GroupedByStall mismatch (-want +got):\n%s", diff)
	}

	// Grouping is a projection: the flat lines are untouched.
	require.Len(t, c.Lines, 3)
}

func TestCart_GroupedByStall_Empty(t *testing.T) {
	c := &cart.Cart{}
	assert.Empty(t, c.GroupedByStall())
}
