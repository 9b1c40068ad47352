package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Food is a canonical catalog entry sourced from OpenFoodFacts.
// Nutrition values are per 100g. Rows are shared across diets and
// never deleted by normal flow.
type Food struct {
	gorm.Model
	ExternalID string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"external_id"`
	Name       string  `gorm:"not null" json:"name"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`

	ContainsNuts   bool `json:"contains_nuts"`
	ContainsGluten bool `json:"contains_gluten"`
	ContainsDairy  bool `json:"contains_dairy"`

	Categories  datatypes.JSON `json:"categories"`
	Ingredients datatypes.JSON `json:"ingredients"`
	Labels      datatypes.JSON `json:"labels"`
}

// Allergen reports whether the food is flagged for the given allergy tag.
func (f *Food) Allergen(tag string) bool {
	switch tag {
	case AllergyNuts:
		return f.ContainsNuts
	case AllergyGluten:
		return f.ContainsGluten
	case AllergyDairy:
		return f.ContainsDairy
	}
	return false
}

// FoodCandidate is a normalized external search result that has not been
// persisted yet.
type FoodCandidate struct {
	ExternalID string  `json:"external_id"`
	Name       string  `json:"name"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`

	ContainsNuts   bool `json:"contains_nuts"`
	ContainsGluten bool `json:"contains_gluten"`
	ContainsDairy  bool `json:"contains_dairy"`

	Categories  []string `json:"categories"`
	Ingredients []string `json:"ingredients"`
	Labels      []string `json:"labels"`
}

func (c *FoodCandidate) Allergen(tag string) bool {
	switch tag {
	case AllergyNuts:
		return c.ContainsNuts
	case AllergyGluten:
		return c.ContainsGluten
	case AllergyDairy:
		return c.ContainsDairy
	}
	return false
}

// Food converts the candidate into a catalog row.
func (c *FoodCandidate) Food() Food {
	return Food{
		ExternalID:     c.ExternalID,
		Name:           c.Name,
		Calories:       c.Calories,
		Protein:        c.Protein,
		Carbs:          c.Carbs,
		Fat:            c.Fat,
		ContainsNuts:   c.ContainsNuts,
		ContainsGluten: c.ContainsGluten,
		ContainsDairy:  c.ContainsDairy,
		Categories:     encodeStringList(c.Categories),
		Ingredients:    encodeStringList(c.Ingredients),
		Labels:         encodeStringList(c.Labels),
	}
}
