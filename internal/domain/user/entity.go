package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the sole persisted entity. ResetToken and ResetTokenExpiry are
// either both set (a reset is pending) or both nil.
type User struct {
	ID               uuid.UUID
	Name             string
	Email            string
	PasswordHash     string
	ResetToken       *string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasPendingReset reports whether a reset token is stored and unexpired at now.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetToken != nil && u.ResetTokenExpiry != nil && now.Before(*u.ResetTokenExpiry)
}
