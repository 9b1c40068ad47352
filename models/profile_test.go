package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_SetAllergies(t *testing.T) {
	var p Profile

	require.NoError(t, p.SetAllergies([]string{AllergyNuts, AllergyGluten}))
	assert.Equal(t, []string{AllergyNuts, AllergyGluten}, p.AllergyList())

	err := p.SetAllergies([]string{"shellfish"})
	assert.Error(t, err, "values outside the vocabulary are rejected")
	// the stored set is untouched by the failed update
	assert.Equal(t, []string{AllergyNuts, AllergyGluten}, p.AllergyList())
}

func TestProfile_SetPreferences(t *testing.T) {
	var p Profile

	require.NoError(t, p.SetPreferences([]string{PreferenceVegan, PreferenceLowSalt}))
	assert.Equal(t, []string{PreferenceVegan, PreferenceLowSalt}, p.PreferenceList())

	assert.Error(t, p.SetPreferences([]string{"paleo"}))
}

func TestProfile_EmptyLists(t *testing.T) {
	var p Profile
	assert.Nil(t, p.AllergyList())
	assert.Nil(t, p.PreferenceList())

	require.NoError(t, p.SetAllergies(nil))
	assert.Empty(t, p.AllergyList())
}
