package stall_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppum-cafe/foodcourt/internal/stall"
)

func TestMenuItem_PrepMinutes(t *testing.T) {
	tests := []struct {
		name       string
		base       int
		multiplier float64
		queue      int
		want       int
	}{
		{name: "simple item empty queue", base: 5, multiplier: 1.0, queue: 0, want: 5},
		{name: "complex item", base: 10, multiplier: 1.5, queue: 0, want: 15},
		{name: "queue adds two minutes per unit", base: 5, multiplier: 1.0, queue: 3, want: 11},
		{name: "fast item clamps to floor", base: 1, multiplier: 1.0, queue: 0, want: 3},
		{name: "zero base clamps to floor", base: 0, multiplier: 2.0, queue: 1, want: 3},
		{name: "fractional product truncates", base: 5, multiplier: 1.3, queue: 0, want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := stall.MenuItem{
				BasePrepTime:         tt.base,
				ComplexityMultiplier: tt.multiplier,
				CurrentQueueCount:    tt.queue,
			}
			assert.Equal(t, tt.want, m.PrepMinutes())
		})
	}
}
