package models

import (
	"time"

	"github.com/google/uuid"
)

// UserModel represents the database model for User
type UserModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name             string     `gorm:"type:varchar(255)"`
	Email            string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash     string     `gorm:"type:varchar(255);not null"`
	ResetToken       *string    `gorm:"type:varchar(64);index"`
	ResetTokenExpiry *time.Time `gorm:"index"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}
