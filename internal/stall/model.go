package stall

import (
	"time"

	"github.com/gofrs/uuid"
)

type Stall struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	NameBM          string    `json:"name_bm,omitempty"`
	CuisineType     string    `json:"cuisine_type"`
	CuisineTypeBM   string    `json:"cuisine_type_bm,omitempty"`
	Description     string    `json:"description,omitempty"`
	DescriptionBM   string    `json:"description_bm,omitempty"`
	Rating          float64   `json:"rating"`
	ImageURL        string    `json:"image_url,omitempty"`
	IsActive        bool      `json:"is_active"`
	AveragePrepTime int       `json:"average_prep_time"`
	CreatedAt       time.Time `json:"created_at"`

	// Name of the stall's best-seller item, if any. Read-side projection.
	BestSeller *string `json:"best_seller,omitempty"`
}

type MenuItem struct {
	ID                   uuid.UUID `json:"id"`
	StallID              uuid.UUID `json:"stall_id"`
	Name                 string    `json:"name"`
	NameBM               string    `json:"name_bm,omitempty"`
	Description          string    `json:"description,omitempty"`
	DescriptionBM        string    `json:"description_bm,omitempty"`
	Price                float64   `json:"price"`
	Category             string    `json:"category"`
	CategoryBM           string    `json:"category_bm,omitempty"`
	IsBestSeller         bool      `json:"is_best_seller"`
	IsAvailable          bool      `json:"is_available"`
	ImageURL             string    `json:"image_url,omitempty"`
	BasePrepTime         int       `json:"base_prep_time"`
	ComplexityMultiplier float64   `json:"complexity_multiplier"`
	CurrentQueueCount    int       `json:"current_queue_count"`
	Calories             *int      `json:"calories,omitempty"`
	Protein              *float64  `json:"protein,omitempty"`
	Carbs                *float64  `json:"carbs,omitempty"`
	Fat                  *float64  `json:"fat,omitempty"`
	IsHospitalFriendly   bool      `json:"is_hospital_friendly"`
	Allergens            []string  `json:"allergens"`
	AllergensBM          []string  `json:"allergens_bm,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// PrepMinutes is the dynamic preparation estimate for one more unit of this
// item: base time scaled by complexity plus two minutes per unit already
// queued at the stall, never below three minutes.
func (m *MenuItem) PrepMinutes() int {
	base := float64(m.BasePrepTime) * m.ComplexityMultiplier
	queueFactor := m.CurrentQueueCount * 2

	total := int(base) + queueFactor
	if total < 3 {
		return 3
	}
	return total
}
