package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `json:"name"`
	Nickname string `gorm:"uniqueIndex" json:"nickname"`

	Profile *Profile `json:"profile,omitempty"`
	Diets   []Diet   `json:"-"`
}
