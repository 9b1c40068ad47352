package services

import (
	"github.com/07-main-teamproject/backend/models"
)

// AllergenCarrier is anything with allergen flags: a persisted Food or a
// freshly fetched FoodCandidate.
type AllergenCarrier interface {
	Allergen(tag string) bool
}

// Allowed returns false if any of the declared allergies is flagged on
// the food. Allergies are a hard exclusion applied to every candidate;
// preferences only steer which search query is issued (see SearchQueries).
func Allowed(food AllergenCarrier, allergies []string) bool {
	for _, tag := range allergies {
		if food.Allergen(tag) {
			return false
		}
	}
	return true
}

// FilterAllowedFoods keeps only catalog foods the user may eat.
func FilterAllowedFoods(foods []models.Food, allergies []string) []models.Food {
	out := make([]models.Food, 0, len(foods))
	for i := range foods {
		if Allowed(&foods[i], allergies) {
			out = append(out, foods[i])
		}
	}
	return out
}

// FilterAllowedCandidates keeps only external candidates the user may eat.
func FilterAllowedCandidates(candidates []models.FoodCandidate, allergies []string) []models.FoodCandidate {
	out := make([]models.FoodCandidate, 0, len(candidates))
	for i := range candidates {
		if Allowed(&candidates[i], allergies) {
			out = append(out, candidates[i])
		}
	}
	return out
}

var preferenceKeywords = map[string]string{
	models.PreferenceVegetarian:  "vegetarian",
	models.PreferenceVegan:       "vegan",
	models.PreferenceLowSalt:     "low salt",
	models.PreferenceHighProtein: "high protein",
}

var defaultQueries = []string{"organic", "green dot", "nutriscore"}

// SearchQueries maps the user's preferences to external search keywords.
// Users with no mapped preference get the default rotation.
func SearchQueries(preferences []string) []string {
	var queries []string
	for _, p := range preferences {
		if kw, ok := preferenceKeywords[p]; ok {
			queries = append(queries, kw)
		}
	}
	if len(queries) == 0 {
		return defaultQueries
	}
	return queries
}
