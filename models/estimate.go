package models

// VisionResult is the canonical output of the vision capability after
// normalization. Clarity is the provider's confidence in what it saw on the
// photo, not in any nutrition numbers.
type VisionResult struct {
	IdentifiedFoods []string `json:"identified_foods"`
	PortionNotes    string   `json:"portion_notes"`
	Clarity         int      `json:"clarity"` // 0..100
}

// MacroResult is the canonical output of the reasoning capability after
// normalization. The text path and the photo path both converge on this
// shape, so nothing downstream branches on origin.
type MacroResult struct {
	MealName        string   `json:"meal_name"`
	Calories        int      `json:"calories"`
	Protein         int      `json:"protein_g"`
	Carbs           int      `json:"carbs_g"`
	Fat             int      `json:"fat_g"`
	IdentifiedFoods []string `json:"identified_foods,omitempty"`
	SuggestedSwaps  []string `json:"suggested_swaps,omitempty"`
	Explanation     string   `json:"explanation"`
}
