package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/07-main-teamproject/backend/config"
	"github.com/07-main-teamproject/backend/models"
	"github.com/07-main-teamproject/backend/utils"
)

func RegisterUser(email, password, name, nickname string) (*models.User, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:    email,
		Password: hashed,
		Name:     name,
		Nickname: nickname,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetOrCreateProfile returns the user's profile, creating an empty one on
// first access.
func GetOrCreateProfile(userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := config.DB.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.Profile{UserID: userID}
		if err := config.DB.Create(&profile).Error; err != nil {
			return nil, err
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile replaces the allergy and preference sets. Tags outside
// the closed vocabularies are rejected before anything is written.
func UpdateProfile(userID uint, allergies, preferences []string) (*models.Profile, error) {
	profile, err := GetOrCreateProfile(userID)
	if err != nil {
		return nil, err
	}
	if allergies != nil {
		if err := profile.SetAllergies(allergies); err != nil {
			return nil, err
		}
	}
	if preferences != nil {
		if err := profile.SetPreferences(preferences); err != nil {
			return nil, err
		}
	}
	if err := config.DB.Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func DeleteProfile(userID uint) error {
	// hard delete so the unique user_id index allows a fresh profile later
	res := config.DB.Unscoped().Where("user_id = ?", userID).Delete(&models.Profile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
