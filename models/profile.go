package models

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Closed vocabularies for dietary constraints. Anything outside these
// sets is rejected at input validation.
const (
	AllergyDairy  = "dairy"
	AllergyGluten = "gluten"
	AllergyNuts   = "nuts"

	PreferenceVegetarian  = "vegetarian"
	PreferenceVegan       = "vegan"
	PreferenceLowSalt     = "low-salt"
	PreferenceHighProtein = "high-protein"
)

var (
	AllergyTags    = []string{AllergyDairy, AllergyGluten, AllergyNuts}
	PreferenceTags = []string{PreferenceVegetarian, PreferenceVegan, PreferenceLowSalt, PreferenceHighProtein}
)

// Profile is one-to-one with User and holds the allergy/preference tags
// used by diet generation.
type Profile struct {
	gorm.Model
	UserID      uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Allergies   datatypes.JSON `json:"allergies"`
	Preferences datatypes.JSON `json:"preferences"`
}

func (p *Profile) AllergyList() []string {
	return decodeStringList(p.Allergies)
}

func (p *Profile) PreferenceList() []string {
	return decodeStringList(p.Preferences)
}

// SetAllergies validates tags against the allergy vocabulary before storing them.
func (p *Profile) SetAllergies(tags []string) error {
	if err := validateTags(tags, AllergyTags); err != nil {
		return fmt.Errorf("invalid allergy: %w", err)
	}
	p.Allergies = encodeStringList(tags)
	return nil
}

// SetPreferences validates tags against the preference vocabulary before storing them.
func (p *Profile) SetPreferences(tags []string) error {
	if err := validateTags(tags, PreferenceTags); err != nil {
		return fmt.Errorf("invalid preference: %w", err)
	}
	p.Preferences = encodeStringList(tags)
	return nil
}

func validateTags(tags, vocabulary []string) error {
	for _, t := range tags {
		found := false
		for _, v := range vocabulary {
			if t == v {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown tag %q", t)
		}
	}
	return nil
}

func encodeStringList(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return datatypes.JSON(b)
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
