package models

import (
	"time"
)

// Meal source tags carried in the provenance block.
const (
	SourceManual        = "manual"
	SourceTextEstimate  = "text_estimate"
	SourcePhotoEstimate = "photo_estimate"
)

// Meal is one logged eating event. Records are immutable once stored;
// correction is delete + recreate.
type Meal struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OwnerID   string    `gorm:"index;not null" json:"owner_id"`
	Label     string    `json:"label,omitempty"`
	AteAt     time.Time `gorm:"index" json:"ate_at"`
	CreatedAt time.Time `json:"created_at"`

	Items []NutritionItem `gorm:"foreignKey:MealID;references:ID;constraint:OnDelete:CASCADE" json:"items"`

	// Provenance: how this record came to exist.
	Source          string   `json:"source,omitempty"` // manual|text_estimate|photo_estimate
	Confidence      int      `json:"confidence,omitempty"`
	IdentifiedFoods []string `gorm:"serializer:json" json:"identified_foods,omitempty"`
	SuggestedSwaps  []string `gorm:"serializer:json" json:"suggested_swaps,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
}

// NutritionItem is a single food's macro snapshot. All nutrient fields are
// non-negative integers once a meal has passed through Sanitize or the
// response normalizer.
type NutritionItem struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	MealID string `gorm:"index;type:varchar(64)" json:"-"`

	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein_g"`
	Carbs    int    `json:"carbs_g"`
	Fat      int    `json:"fat_g"`
	Fiber    int    `json:"fiber_g,omitempty"`
	Sugar    int    `json:"sugar_g,omitempty"`
	Sodium   int    `json:"sodium_mg,omitempty"`
}

// Sanitize floors every nutrient at zero and drops items without a name.
// Called on every append so a negative or junk macro can never be stored.
func (m *Meal) Sanitize() {
	items := m.Items[:0]
	for _, it := range m.Items {
		if it.Name == "" {
			continue
		}
		it.Calories = clampNonNegative(it.Calories)
		it.Protein = clampNonNegative(it.Protein)
		it.Carbs = clampNonNegative(it.Carbs)
		it.Fat = clampNonNegative(it.Fat)
		it.Fiber = clampNonNegative(it.Fiber)
		it.Sugar = clampNonNegative(it.Sugar)
		it.Sodium = clampNonNegative(it.Sodium)
		items = append(items, it)
	}
	m.Items = items
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
