package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDietItem_ApplyPortion(t *testing.T) {
	food := Food{Calories: 250, Protein: 8, Carbs: 45, Fat: 3}

	var item DietItem
	item.ApplyPortion(food, 100)
	assert.InDelta(t, 250, item.Calories, 1e-9)
	assert.InDelta(t, 8, item.Protein, 1e-9)
	assert.InDelta(t, 45, item.Carbs, 1e-9)
	assert.InDelta(t, 3, item.Fat, 1e-9)

	// doubling the portion doubles every macro
	item.ApplyPortion(food, 200)
	assert.InDelta(t, 500, item.Calories, 1e-9)
	assert.InDelta(t, 16, item.Protein, 1e-9)
	assert.InDelta(t, 90, item.Carbs, 1e-9)
	assert.InDelta(t, 6, item.Fat, 1e-9)

	item.ApplyPortion(food, 50)
	assert.InDelta(t, 125, item.Calories, 1e-9)
	assert.InDelta(t, 50, item.PortionSize, 1e-9)
}

func TestFoodCandidate_Food(t *testing.T) {
	c := FoodCandidate{
		ExternalID:     "123",
		Name:           "oat milk",
		Calories:       46,
		ContainsDairy:  false,
		ContainsGluten: true,
		Categories:     []string{"en:plant-milks"},
	}

	f := c.Food()
	assert.Equal(t, "123", f.ExternalID)
	assert.Equal(t, "oat milk", f.Name)
	assert.InDelta(t, 46, f.Calories, 1e-9)
	assert.True(t, f.ContainsGluten)
	assert.True(t, f.Allergen(AllergyGluten))
	assert.False(t, f.Allergen(AllergyDairy))
	assert.JSONEq(t, `["en:plant-milks"]`, string(f.Categories))
}
