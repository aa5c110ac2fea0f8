package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email         string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash  *string   `gorm:"type:varchar(255)" json:"-"` // nil for identity-provider accounts
	IsAdmin       bool      `gorm:"not null;default:false" json:"isAdmin"`
	Address       string    `gorm:"type:text" json:"address"`
	EmailVerified bool      `gorm:"not null;default:false" json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
