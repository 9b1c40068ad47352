package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/07-main-teamproject/backend/models"
)

func TestAllowed(t *testing.T) {
	nutty := &models.Food{ContainsNuts: true}
	dairy := &models.FoodCandidate{ContainsDairy: true}
	clean := &models.Food{}

	assert.False(t, Allowed(nutty, []string{models.AllergyNuts}))
	assert.True(t, Allowed(nutty, []string{models.AllergyDairy}))
	assert.False(t, Allowed(dairy, []string{models.AllergyGluten, models.AllergyDairy}))
	assert.True(t, Allowed(clean, []string{models.AllergyNuts, models.AllergyGluten, models.AllergyDairy}))
	assert.True(t, Allowed(nutty, nil))
}

func TestFilterAllowedFoods(t *testing.T) {
	foods := []models.Food{
		{ExternalID: "1", ContainsGluten: true},
		{ExternalID: "2"},
		{ExternalID: "3", ContainsNuts: true},
	}

	got := FilterAllowedFoods(foods, []string{models.AllergyGluten})
	if assert.Len(t, got, 2) {
		assert.Equal(t, "2", got[0].ExternalID)
		assert.Equal(t, "3", got[1].ExternalID)
	}
}

func TestFilterAllowedCandidates(t *testing.T) {
	candidates := []models.FoodCandidate{
		{ExternalID: "1", ContainsDairy: true},
		{ExternalID: "2"},
	}

	got := FilterAllowedCandidates(candidates, []string{models.AllergyDairy})
	if assert.Len(t, got, 1) {
		assert.Equal(t, "2", got[0].ExternalID)
	}
}

func TestSearchQueries(t *testing.T) {
	assert.Equal(t, []string{"vegan"}, SearchQueries([]string{models.PreferenceVegan}))
	assert.Equal(t,
		[]string{"low salt", "high protein"},
		SearchQueries([]string{models.PreferenceLowSalt, models.PreferenceHighProtein}))

	// unmapped or empty preferences fall back to the default rotation
	assert.Equal(t, defaultQueries, SearchQueries(nil))
	assert.Equal(t, defaultQueries, SearchQueries([]string{"keto"}))
}
