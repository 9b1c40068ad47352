package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultPortionSize is the portion (grams) assigned when a food is added
// without an explicit amount.
const DefaultPortionSize = 100

// Diet is a named meal grouping ("breakfast diet", ...) owned by a user.
// Deleting a diet cascades to its items; the foods themselves stay in
// the catalog.
type Diet struct {
	gorm.Model
	UserID   uint       `gorm:"index;not null" json:"user_id"`
	Name     string     `gorm:"not null" json:"name"`
	ImageURL string     `json:"image_url,omitempty"`
	Date     time.Time  `gorm:"type:date" json:"date"`
	Items    []DietItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// DietItem links a Diet to a Food with a portion size. At most one row
// exists per (diet, food) pair; re-adding a food updates the portion
// instead of duplicating the row. The four nutrient fields are a snapshot
// scaled to the portion and are rewritten on every portion change.
type DietItem struct {
	gorm.Model
	DietID uint `gorm:"uniqueIndex:idx_diet_food;not null" json:"diet_id"`
	FoodID uint `gorm:"uniqueIndex:idx_diet_food;not null" json:"food_id"`
	Food   Food `json:"food"`

	PortionSize float64 `gorm:"default:100" json:"portion_size"` // grams
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
}

// ApplyPortion sets the portion size and rewrites the scaled nutrient
// snapshot from the food's per-100g values. Portion validation happens
// before this is called.
func (it *DietItem) ApplyPortion(food Food, portion float64) {
	scale := portion / 100.0
	it.PortionSize = portion
	it.Calories = food.Calories * scale
	it.Protein = food.Protein * scale
	it.Carbs = food.Carbs * scale
	it.Fat = food.Fat * scale
}

// NutritionTotals holds per-diet aggregate macros.
type NutritionTotals struct {
	Calories float64 `json:"total_calories"`
	Protein  float64 `json:"total_protein"`
	Carbs    float64 `json:"total_carbs"`
	Fat      float64 `json:"total_fat"`
}
