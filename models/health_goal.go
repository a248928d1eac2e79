package models

import (
	"time"
)

// DailyGoal holds an owner's daily nutrient-intake targets. Targets are set
// by the goal-setting surface; the nutrition pipeline only reads them to
// compute remaining = max(target - consumed, 0).
type DailyGoal struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	OwnerID   string    `gorm:"uniqueIndex;not null" json:"owner_id"`
	UpdatedAt time.Time `json:"updated_at"`

	Calories int `json:"calories"`  // kcal
	Protein  int `json:"protein_g"` // g
	Carbs    int `json:"carbs_g"`   // g
	Fat      int `json:"fat_g"`     // g
}
